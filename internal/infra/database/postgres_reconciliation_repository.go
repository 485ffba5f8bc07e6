package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"absence_notifier/internal/domain/notification"

	"github.com/jmoiron/sqlx"
)

type PostgresReconciliationRepository struct {
	db *sqlx.DB
}

func NewPostgresReconciliationRepository(db *sqlx.DB) *PostgresReconciliationRepository {
	return &PostgresReconciliationRepository{db: db}
}

type reconciliationRow struct {
	Date               string    `db:"reconciliation_date"`
	TotalNotifications int       `db:"total_notifications"`
	SuccessCount       int       `db:"success_count"`
	FailedCount        int       `db:"failed_count"`
	Notifications      []byte    `db:"notifications"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (row reconciliationRow) toDomain() (*notification.Reconciliation, error) {
	doc := &notification.Reconciliation{
		Date:               row.Date,
		TotalNotifications: row.TotalNotifications,
		SuccessCount:       row.SuccessCount,
		FailedCount:        row.FailedCount,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if len(row.Notifications) > 0 {
		if err := json.Unmarshal(row.Notifications, &doc.Notifications); err != nil {
			return nil, fmt.Errorf("error decoding notifications for %s: %w", row.Date, err)
		}
	}
	return doc, nil
}

func (r *PostgresReconciliationRepository) GetByDate(ctx context.Context, date string) (*notification.Reconciliation, error) {
	query := `SELECT to_char(reconciliation_date, 'YYYY-MM-DD') AS reconciliation_date, total_notifications,
                      success_count, failed_count, notifications, created_at, updated_at
               FROM absence_reconciliations WHERE reconciliation_date = $1`
	var row reconciliationRow
	if err := r.db.GetContext(ctx, &row, query, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notification.ErrReconciliationNotFound
		}
		return nil, fmt.Errorf("error getting reconciliation for %s: %w", date, err)
	}
	return row.toDomain()
}

// Save upserts the whole row; every column is replaced on conflict.
func (r *PostgresReconciliationRepository) Save(ctx context.Context, doc *notification.Reconciliation) error {
	payload, err := json.Marshal(doc.Notifications)
	if err != nil {
		return fmt.Errorf("error encoding notifications for %s: %w", doc.Date, err)
	}
	if doc.Notifications == nil {
		payload = []byte("[]")
	}
	query := `INSERT INTO absence_reconciliations
                   (reconciliation_date, total_notifications, success_count, failed_count, notifications, created_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               ON CONFLICT (reconciliation_date) DO UPDATE SET
                   total_notifications = EXCLUDED.total_notifications,
                   success_count       = EXCLUDED.success_count,
                   failed_count        = EXCLUDED.failed_count,
                   notifications       = EXCLUDED.notifications,
                   created_at          = EXCLUDED.created_at,
                   updated_at          = EXCLUDED.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		doc.Date, doc.TotalNotifications, doc.SuccessCount, doc.FailedCount, payload, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error saving reconciliation for %s: %w", doc.Date, err)
	}
	return nil
}

// Ping checks database connectivity for readiness probes.
func (r *PostgresReconciliationRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
