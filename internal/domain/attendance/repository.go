package attendance

import (
	"context"
)

// Repository defines the read operations the job needs from the attendance store.
type Repository interface {
	ListSessionsByDate(ctx context.Context, date string) ([]*Session, error)
	ListStudentsBySection(ctx context.Context, section string) ([]*Student, error)
}
