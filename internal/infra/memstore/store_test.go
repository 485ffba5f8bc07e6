package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"absence_notifier/internal/domain/attendance"
	"absence_notifier/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ListsFilterByKey(t *testing.T) {
	s := New()
	s.AddSession(attendance.Session{Section: "X", Date: "2024-01-10", Slot: "P1", PresentStudents: []string{"S1"}})
	s.AddSession(attendance.Session{Section: "X", Date: "2024-01-11", Slot: "P1"})
	s.AddStudent(attendance.Student{USN: "S1", Section: "X"})
	s.AddStudent(attendance.Student{USN: "T1", Section: "Y"})

	sessions, err := s.ListSessionsByDate(context.Background(), "2024-01-10")
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	// Callers must not be able to mutate stored sessions.
	sessions[0].PresentStudents[0] = "changed"
	again, _ := s.ListSessionsByDate(context.Background(), "2024-01-10")
	assert.Equal(t, "S1", again[0].PresentStudents[0])

	students, err := s.ListStudentsBySection(context.Background(), "Y")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "T1", students[0].USN)
}

func TestStore_SaveReplacesDocument(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.GetByDate(ctx, "2024-01-10")
	assert.ErrorIs(t, err, notification.ErrReconciliationNotFound)

	now := time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC)
	first := notification.NewReconciliation("2024-01-10", []*notification.Record{{USN: "OLD", Status: notification.StatusSent}}, now)
	require.NoError(t, s.Save(ctx, first))
	second := notification.NewReconciliation("2024-01-10", []*notification.Record{{USN: "NEW", Status: "DND"}}, now.Add(time.Hour))
	require.NoError(t, s.Save(ctx, second))

	got, err := s.GetByDate(ctx, "2024-01-10")
	require.NoError(t, err)
	require.Len(t, got.Notifications, 1)
	assert.Equal(t, "NEW", got.Notifications[0].USN)
	assert.Equal(t, 1, got.FailedCount)
	assert.Equal(t, 2, s.Writes)
}

func TestStore_Fail(t *testing.T) {
	s := New()
	s.Fail = errors.New("outage")
	_, err := s.ListSessionsByDate(context.Background(), "2024-01-10")
	assert.ErrorIs(t, err, s.Fail)
	assert.ErrorIs(t, s.Save(context.Background(), &notification.Reconciliation{Date: "x"}), s.Fail)
	assert.ErrorIs(t, s.Ping(context.Background()), s.Fail)
}
