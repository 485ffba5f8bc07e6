// internal/domain/notification/repository.go
package notification

import (
	"context"
	"errors"
)

// ErrReconciliationNotFound is returned when no document exists for a date.
var ErrReconciliationNotFound = errors.New("reconciliation document not found")

// Repository persists one Reconciliation per date.
type Repository interface {
	// GetByDate returns ErrReconciliationNotFound when the date was never processed.
	GetByDate(ctx context.Context, date string) (*Reconciliation, error)
	// Save replaces any existing document for doc.Date. No merge.
	Save(ctx context.Context, doc *Reconciliation) error
}
