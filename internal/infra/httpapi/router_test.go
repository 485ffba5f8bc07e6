package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"absence_notifier/internal/app"
	"absence_notifier/internal/domain/notification"
	"absence_notifier/internal/infra/memstore"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockJobRunner struct {
	mock.Mock
}

func (m *mockJobRunner) Run(ctx context.Context, req app.RunRequest) (*app.RunSummary, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(*app.RunSummary)
	return s, args.Error(1)
}

type mockReader struct {
	mock.Mock
}

func (m *mockReader) Get(ctx context.Context, date string) (*notification.Reconciliation, error) {
	args := m.Called(ctx, date)
	d, _ := args.Get(0).(*notification.Reconciliation)
	return d, args.Error(1)
}

func discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestServer(t *testing.T, job app.JobRunner, reader app.ReconciliationReader, store Pinger, secret string) *httptest.Server {
	t.Helper()
	h := NewRouter(
		NewJobHandler(job, reader, discard()),
		NewHealthHandler(store, discard()),
		app.NewTriggerAuth(secret),
		discard(),
		time.Minute,
	)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp, body
}

func TestTrigger_Success(t *testing.T) {
	job := new(mockJobRunner)
	job.On("Run", mock.Anything, app.RunRequest{Date: "2024-01-10", Force: true}).Return(&app.RunSummary{
		Success:            true,
		Date:               "2024-01-10",
		TotalNotifications: 2,
		SuccessCount:       2,
		Message:            "Sent 2 of 2 absence notifications",
		Outcome:            app.OutcomeSuccess,
	}, nil).Once()
	srv := newTestServer(t, job, new(mockReader), memstore.New(), "s3cret")

	resp, body := do(t, http.MethodPost, srv.URL+"/jobs/absence-notifications?date=2024-01-10&force=1", "s3cret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["totalNotifications"])
	assert.Equal(t, float64(0), body["failedCount"])
	assert.NotContains(t, body, "skipped")
	job.AssertExpectations(t)
}

func TestTrigger_ForceParsing(t *testing.T) {
	for value, want := range map[string]bool{"true": true, "1": true, "yes": false, "": false, "TRUE": false} {
		t.Run(fmt.Sprintf("force=%q", value), func(t *testing.T) {
			job := new(mockJobRunner)
			job.On("Run", mock.Anything, app.RunRequest{Force: want}).
				Return(&app.RunSummary{Success: true}, nil).Once()
			srv := newTestServer(t, job, new(mockReader), memstore.New(), "")

			resp, _ := do(t, http.MethodGet, srv.URL+"/jobs/absence-notifications?force="+value, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			job.AssertExpectations(t)
		})
	}
}

func TestTrigger_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		runErr     error
		wantStatus int
	}{
		{"missing token", "", nil, http.StatusUnauthorized},
		{"wrong token", "nope", nil, http.StatusUnauthorized},
		{"bad date", "s3cret", fmt.Errorf("%w: %q", app.ErrInvalidDate, "soon"), http.StatusBadRequest},
		{"internal error", "s3cret", errors.New("failed to send absence batch"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := new(mockJobRunner)
			if tt.runErr != nil {
				job.On("Run", mock.Anything, mock.Anything).Return(&app.RunSummary{
					Success: false,
					Error:   tt.runErr.Error(),
					Outcome: app.OutcomeError,
				}, tt.runErr)
			}
			srv := newTestServer(t, job, new(mockReader), memstore.New(), "s3cret")

			resp, body := do(t, http.MethodPost, srv.URL+"/jobs/absence-notifications", tt.token)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
			if tt.runErr == nil {
				job.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestGetReconciliation(t *testing.T) {
	reader := new(mockReader)
	reader.On("Get", mock.Anything, "2024-01-10").Return(&notification.Reconciliation{
		Date:               "2024-01-10",
		TotalNotifications: 1,
		SuccessCount:       1,
		Notifications:      []*notification.Record{{USN: "S1", Status: notification.StatusSent}},
	}, nil)
	reader.On("Get", mock.Anything, "2024-01-11").Return(nil, notification.ErrReconciliationNotFound)
	reader.On("Get", mock.Anything, "tomorrow").Return(nil, app.ErrInvalidDate)
	srv := newTestServer(t, new(mockJobRunner), reader, memstore.New(), "s3cret")

	resp, body := do(t, http.MethodGet, srv.URL+"/reconciliations/2024-01-10", "s3cret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-01-10", body["date"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/reconciliations/2024-01-11", "s3cret")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/reconciliations/tomorrow", "s3cret")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/reconciliations/2024-01-10", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthProbes(t *testing.T) {
	store := memstore.New()
	srv := newTestServer(t, new(mockJobRunner), new(mockReader), store, "s3cret")

	resp, _ := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/readyz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := memstore.New()
	down.Fail = errors.New("unreachable")
	srv = newTestServer(t, new(mockJobRunner), new(mockReader), down, "s3cret")
	resp, _ = do(t, http.MethodGet, srv.URL+"/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
