package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"absence_notifier/internal/app"
	"absence_notifier/internal/domain/notification"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type JobHandler struct {
	job    app.JobRunner
	reader app.ReconciliationReader
	logger *logrus.Entry
}

func NewJobHandler(job app.JobRunner, reader app.ReconciliationReader, logger *logrus.Entry) *JobHandler {
	return &JobHandler{job: job, reader: reader, logger: logger}
}

// Trigger runs the reconciliation job for ?date= (default today) with optional ?force=true|1.
func (h *JobHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := app.RunRequest{
		Date:  q.Get("date"),
		Force: parseForce(q.Get("force")),
	}

	summary, err := h.job.Run(r.Context(), req)
	switch {
	case errors.Is(err, app.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, summary.Error)
	default:
		writeJSON(w, http.StatusOK, summary)
	}
}

// GetReconciliation returns the stored document for {date}.
func (h *JobHandler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	doc, err := h.reader.Get(r.Context(), chi.URLParam(r, "date"))
	switch {
	case errors.Is(err, app.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, notification.ErrReconciliationNotFound):
		writeError(w, http.StatusNotFound, "reconciliation not found")
	case err != nil:
		h.logger.WithError(err).Error("Failed to load reconciliation")
		writeError(w, http.StatusInternalServerError, "failed to load reconciliation")
	default:
		writeJSON(w, http.StatusOK, doc)
	}
}

func parseForce(v string) bool {
	return v == "true" || v == "1"
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
