package docstore

import (
	"context"
	"errors"
	"fmt"

	"absence_notifier/internal/domain/attendance"
	"absence_notifier/internal/domain/notification"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Repository implements both the attendance reads and the reconciliation
// writes on top of one shared client.
type Repository struct {
	client *firestore.Client
}

var (
	_ attendance.Repository   = (*Repository)(nil)
	_ notification.Repository = (*Repository)(nil)
)

func NewRepository(client *firestore.Client) *Repository {
	return &Repository{client: client}
}

func (r *Repository) ListSessionsByDate(ctx context.Context, date string) ([]*attendance.Session, error) {
	iter := r.client.Collection(SessionsCollection).Where("date", "==", date).Documents(ctx)
	defer iter.Stop()

	var sessions []*attendance.Session
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing sessions for %s: %w", date, err)
		}
		var d sessionDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decoding session %s: %w", snap.Ref.ID, err)
		}
		sessions = append(sessions, d.toDomain(snap.Ref.ID))
	}
	return sessions, nil
}

func (r *Repository) ListStudentsBySection(ctx context.Context, section string) ([]*attendance.Student, error) {
	iter := r.client.Collection(StudentsCollection).Where("section", "==", section).Documents(ctx)
	defer iter.Stop()

	var students []*attendance.Student
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing students for section %s: %w", section, err)
		}
		var d studentDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decoding student %s: %w", snap.Ref.ID, err)
		}
		students = append(students, d.toDomain(snap.Ref.ID))
	}
	return students, nil
}

func (r *Repository) GetByDate(ctx context.Context, date string) (*notification.Reconciliation, error) {
	snap, err := r.client.Collection(ReconciliationsCollection).Doc(date).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, notification.ErrReconciliationNotFound
		}
		return nil, fmt.Errorf("getting reconciliation %s: %w", date, err)
	}
	var d reconciliationDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decoding reconciliation %s: %w", date, err)
	}
	return d.toDomain(), nil
}

// Save overwrites the date's document. Set without merge options replaces it whole.
func (r *Repository) Save(ctx context.Context, doc *notification.Reconciliation) error {
	if _, err := r.client.Collection(ReconciliationsCollection).Doc(doc.Date).Set(ctx, newReconciliationDoc(doc)); err != nil {
		return fmt.Errorf("saving reconciliation %s: %w", doc.Date, err)
	}
	return nil
}

// Ping reads a single document to check connectivity for readiness probes.
func (r *Repository) Ping(ctx context.Context) error {
	iter := r.client.Collection(ReconciliationsCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("pinging firestore: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.client.Close()
}
