package scheduler

import (
	"context"
	"fmt"
	"time"

	"absence_notifier/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// JobScheduler runs the reconciliation job once a day for the current UTC date.
type JobScheduler struct {
	cronEngine *cron.Cron
	job        app.JobRunner
	logger     *logrus.Entry
	cronSpec   string
	timeout    time.Duration
}

func NewJobScheduler(
	job app.JobRunner,
	logger *logrus.Entry,
	cronSpec string, // e.g. "30 18 * * *" (18:30 UTC daily)
	timeout time.Duration,
) *JobScheduler {
	return &JobScheduler{
		cronEngine: cron.New(cron.WithLocation(time.UTC)),
		job:        job,
		logger:     logger,
		cronSpec:   cronSpec,
		timeout:    timeout,
	}
}

// Start registers the daily job and starts the engine.
func (s *JobScheduler) Start() error {
	s.logger.WithField("cron_spec", s.cronSpec).Info("Starting job scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.runDaily); err != nil {
		return fmt.Errorf("could not add absence job with spec %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.Info("Job scheduler started")
	return nil
}

func (s *JobScheduler) runDaily() {
	s.logger.Info("Cron job triggered for absence notifications")
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	summary, err := s.job.Run(ctx, app.RunRequest{})
	if err != nil {
		s.logger.WithError(err).Error("Scheduled absence run failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"date":    summary.Date,
		"outcome": summary.Outcome,
	}).Info("Scheduled absence run finished")
}

// Stop stops the engine and waits for a running job to finish.
func (s *JobScheduler) Stop() {
	s.logger.Info("Stopping job scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Job scheduler gracefully stopped")
}
