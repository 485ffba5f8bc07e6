package app

import (
	"context"
	"errors"

	"absence_notifier/internal/domain/notification"
)

// ErrAdminNotAuthorized is returned when a chat command comes from anyone but the admin.
var ErrAdminNotAuthorized = errors.New("performing user is not authorized as an admin")

// ReconciliationReader looks up stored documents.
type ReconciliationReader interface {
	Get(ctx context.Context, date string) (*notification.Reconciliation, error)
}

// OperatorService backs the admin chat commands.
type OperatorService struct {
	job             JobRunner
	reader          ReconciliationReader
	adminTelegramID int64
}

func NewOperatorService(job JobRunner, reader ReconciliationReader, adminID int64) *OperatorService {
	return &OperatorService{
		job:             job,
		reader:          reader,
		adminTelegramID: adminID,
	}
}

// IsAdmin reports whether senderID may use operator commands.
func (s *OperatorService) IsAdmin(senderID int64) bool {
	return s.adminTelegramID != 0 && senderID == s.adminTelegramID
}

// Status returns the reconciliation document for date (today when empty).
func (s *OperatorService) Status(ctx context.Context, performingAdminID int64, date string) (*notification.Reconciliation, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	return s.reader.Get(ctx, date)
}

// Trigger runs the job on behalf of the admin.
func (s *OperatorService) Trigger(ctx context.Context, performingAdminID int64, date string, force bool) (*RunSummary, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	return s.job.Run(ctx, RunRequest{Date: date, Force: force})
}
