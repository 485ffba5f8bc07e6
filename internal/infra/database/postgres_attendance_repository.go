package database

import (
	"context"
	"database/sql"
	"fmt"

	"absence_notifier/internal/domain/attendance"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // For pq.StringArray
)

type PostgresAttendanceRepository struct {
	db *sqlx.DB
}

func NewPostgresAttendanceRepository(db *sqlx.DB) *PostgresAttendanceRepository {
	return &PostgresAttendanceRepository{db: db}
}

type sessionRow struct {
	ID              int64          `db:"id"`
	Section         string         `db:"section"`
	Date            string         `db:"session_date"`
	Slot            string         `db:"slot"`
	PresentStudents pq.StringArray `db:"present_students"`
	TotalStudents   int            `db:"total_students"`
}

func (r sessionRow) toDomain() *attendance.Session {
	return &attendance.Session{
		ID:              fmt.Sprintf("%d", r.ID),
		Section:         r.Section,
		Date:            r.Date,
		Slot:            r.Slot,
		PresentStudents: []string(r.PresentStudents),
		TotalStudents:   r.TotalStudents,
	}
}

type studentRow struct {
	USN     string         `db:"usn"`
	Name    string         `db:"name"`
	Phone   sql.NullString `db:"phone"`
	Section string         `db:"section"`
}

func (r studentRow) toDomain() *attendance.Student {
	return &attendance.Student{
		USN:     r.USN,
		Name:    r.Name,
		Phone:   r.Phone.String,
		Section: r.Section,
	}
}

func (r *PostgresAttendanceRepository) ListSessionsByDate(ctx context.Context, date string) ([]*attendance.Session, error) {
	query := `SELECT id, section, to_char(session_date, 'YYYY-MM-DD') AS session_date, slot, present_students, total_students
               FROM attendance_sessions
               WHERE session_date = $1
               ORDER BY section, slot`
	var rows []sessionRow
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("error listing sessions for %s: %w", date, err)
	}
	sessions := make([]*attendance.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toDomain())
	}
	return sessions, nil
}

func (r *PostgresAttendanceRepository) ListStudentsBySection(ctx context.Context, section string) ([]*attendance.Student, error) {
	query := `SELECT usn, name, phone, section FROM students WHERE section = $1 ORDER BY usn`
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query, section); err != nil {
		return nil, fmt.Errorf("error listing students for section %s: %w", section, err)
	}
	students := make([]*attendance.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toDomain())
	}
	return students, nil
}
