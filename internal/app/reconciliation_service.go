// internal/app/reconciliation_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"absence_notifier/internal/domain/notification"
	"absence_notifier/internal/domain/operator"
	"absence_notifier/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DateLayout is the ISO calendar date used as the reconciliation key.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for a target date that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("date must be formatted YYYY-MM-DD")

// Outcome is the terminal state of one run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeNoOp    Outcome = "noop"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

// RunRequest selects the date to process. An empty Date means today in UTC.
type RunRequest struct {
	Date  string
	Force bool
}

// RunSummary is returned for every run, including failed ones.
type RunSummary struct {
	Success            bool    `json:"success"`
	Date               string  `json:"date,omitempty"`
	TotalNotifications int     `json:"totalNotifications"`
	SuccessCount       int     `json:"successCount"`
	FailedCount        int     `json:"failedCount"`
	Message            string  `json:"message,omitempty"`
	Skipped            bool    `json:"skipped,omitempty"`
	GatewaySummary     string  `json:"gatewaySummary,omitempty"`
	Error              string  `json:"error,omitempty"`
	Outcome            Outcome `json:"-"`
}

// JobRunner runs the reconciliation job. The HTTP trigger, the scheduler and
// the operator bot all depend on this rather than on the service type.
type JobRunner interface {
	Run(ctx context.Context, req RunRequest) (*RunSummary, error)
}

// ReconciliationService is the job entrypoint: check existing document,
// aggregate, dispatch, persist.
type ReconciliationService struct {
	aggregator *Aggregator
	dispatcher *Dispatcher
	repo       notification.Repository
	operator   operator.Notifier
	logger     *logrus.Entry
	now        func() time.Time
}

func NewReconciliationService(
	aggregator *Aggregator,
	dispatcher *Dispatcher,
	repo notification.Repository,
	op operator.Notifier,
	logger *logrus.Entry,
) *ReconciliationService {
	if op == nil {
		op = operator.Nop{}
	}
	return &ReconciliationService{
		aggregator: aggregator,
		dispatcher: dispatcher,
		repo:       repo,
		operator:   op,
		logger:     logger,
		now:        time.Now,
	}
}

var _ JobRunner = (*ReconciliationService)(nil)

// ResolveDate parses s as YYYY-MM-DD, or returns today's UTC date when s is empty.
func ResolveDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Run executes one reconciliation. The summary is always non-nil; the error is
// set when the run failed so transports can pick a status code.
func (s *ReconciliationService) Run(ctx context.Context, req RunRequest) (*RunSummary, error) {
	start := s.now()
	date, err := ResolveDate(req.Date, start)
	if err != nil {
		return s.fail(ctx, req.Date, s.logger, err), err
	}
	dateKey := date.Format(DateLayout)

	log := s.logger.WithFields(logrus.Fields{
		"run_id": uuid.NewString(),
		"date":   dateKey,
		"force":  req.Force,
	})
	log.Info("Starting absence reconciliation run")
	defer func() { metrics.JobDuration.Observe(time.Since(start).Seconds()) }()

	// 1. Check for an existing document
	existing, err := s.repo.GetByDate(ctx, dateKey)
	switch {
	case err == nil && !req.Force:
		log.WithField("created_at", existing.CreatedAt).Info("Date already processed, skipping")
		summary := &RunSummary{
			Success:            true,
			Date:               dateKey,
			TotalNotifications: existing.TotalNotifications,
			SuccessCount:       existing.SuccessCount,
			FailedCount:        existing.FailedCount,
			Message:            fmt.Sprintf("Notifications for %s were already processed", dateKey),
			Skipped:            true,
			Outcome:            OutcomeSkipped,
		}
		return s.finish(ctx, log, summary), nil
	case err == nil:
		log.Warn("Date already processed, force set: document will be replaced")
	case !errors.Is(err, notification.ErrReconciliationNotFound):
		return s.fail(ctx, dateKey, log, fmt.Errorf("failed to check existing reconciliation: %w", err)), err
	}

	// 2. Aggregate
	records, err := s.aggregator.Aggregate(ctx, dateKey)
	if err != nil {
		return s.fail(ctx, dateKey, log, err), err
	}
	if len(records) == 0 {
		summary := &RunSummary{
			Success: true,
			Date:    dateKey,
			Message: fmt.Sprintf("No absence notifications needed for %s", dateKey),
			Outcome: OutcomeNoOp,
		}
		return s.finish(ctx, log, summary), nil
	}

	// 3. Dispatch
	outcome, err := s.dispatcher.Dispatch(ctx, date, records)
	if err != nil {
		return s.fail(ctx, dateKey, log, err), err
	}

	// 4. Persist
	doc := notification.NewReconciliation(dateKey, records, s.now().UTC())
	if err := s.repo.Save(ctx, doc); err != nil {
		// Messages are already out; a retry would send them again.
		log.WithField("sent", outcome.Sent).Error("Notifications were sent but the reconciliation could not be saved")
		return s.fail(ctx, dateKey, log, fmt.Errorf("failed to save reconciliation: %w", err)), err
	}

	summary := &RunSummary{
		Success:            true,
		Date:               dateKey,
		TotalNotifications: doc.TotalNotifications,
		SuccessCount:       doc.SuccessCount,
		FailedCount:        doc.FailedCount,
		Message:            fmt.Sprintf("Sent %d of %d absence notifications", doc.SuccessCount, doc.TotalNotifications),
		GatewaySummary:     outcome.GatewaySummary,
		Outcome:            OutcomeSuccess,
	}
	return s.finish(ctx, log, summary), nil
}

// Get returns the stored document for date.
func (s *ReconciliationService) Get(ctx context.Context, date string) (*notification.Reconciliation, error) {
	d, err := ResolveDate(date, s.now())
	if err != nil {
		return nil, err
	}
	return s.repo.GetByDate(ctx, d.Format(DateLayout))
}

func (s *ReconciliationService) finish(ctx context.Context, log *logrus.Entry, summary *RunSummary) *RunSummary {
	metrics.JobRuns.WithLabelValues(string(summary.Outcome)).Inc()
	log.WithFields(logrus.Fields{
		"outcome": summary.Outcome,
		"total":   summary.TotalNotifications,
		"sent":    summary.SuccessCount,
		"failed":  summary.FailedCount,
	}).Info(summary.Message)
	s.report(ctx, log, summary)
	return summary
}

func (s *ReconciliationService) fail(ctx context.Context, date string, log *logrus.Entry, err error) *RunSummary {
	metrics.JobRuns.WithLabelValues(string(OutcomeError)).Inc()
	log.WithError(err).Error("Absence reconciliation run failed")
	summary := &RunSummary{
		Success: false,
		Date:    date,
		Error:   err.Error(),
		Outcome: OutcomeError,
	}
	s.report(ctx, log, summary)
	return summary
}

// report forwards the outcome to the operator channel, best effort.
func (s *ReconciliationService) report(ctx context.Context, log *logrus.Entry, summary *RunSummary) {
	if err := s.operator.Notify(ctx, FormatSummary(summary)); err != nil {
		log.WithError(err).Warn("Failed to notify operator")
	}
}

// FormatSummary renders a one-line, human readable run report.
func FormatSummary(s *RunSummary) string {
	switch s.Outcome {
	case OutcomeError:
		return fmt.Sprintf("Absence job %s FAILED: %s", s.Date, s.Error)
	case OutcomeSkipped:
		return fmt.Sprintf("Absence job %s skipped: already processed (%d sent, %d failed).", s.Date, s.SuccessCount, s.FailedCount)
	case OutcomeNoOp:
		return fmt.Sprintf("Absence job %s: nothing to send.", s.Date)
	default:
		text := fmt.Sprintf("Absence job %s: %d/%d sent, %d failed.", s.Date, s.SuccessCount, s.TotalNotifications, s.FailedCount)
		if s.GatewaySummary != "" {
			text += " Gateway: " + s.GatewaySummary
		}
		return text
	}
}
