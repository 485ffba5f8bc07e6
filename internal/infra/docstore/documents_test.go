package docstore

import (
	"testing"
	"time"

	"absence_notifier/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciliationDoc_RoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC)
	sent := now.Add(time.Second)
	in := notification.NewReconciliation("2024-01-10", []*notification.Record{
		{USN: "S1", Name: "Asha", Phone: "9000000001", Section: "X", MissedSessions: []string{"P1", "P2"}, Status: notification.StatusSent, GUID: "g-1", SentAt: &sent},
		{USN: "S3", Name: "Ravi", Phone: "9000000003", Section: "X", MissedSessions: []string{"P1", "P2", "P3"}, Status: notification.Status("DND")},
	}, now)

	out := newReconciliationDoc(in).toDomain()

	require.Len(t, out.Notifications, 2)
	assert.Equal(t, in.Date, out.Date)
	assert.Equal(t, 1, out.SuccessCount)
	assert.Equal(t, 1, out.FailedCount)
	assert.Equal(t, sent, *out.Notifications[0].SentAt)
	assert.Equal(t, "g-1", out.Notifications[0].GUID)
	assert.Nil(t, out.Notifications[1].SentAt)
	assert.Equal(t, notification.Status("DND"), out.Notifications[1].Status)
}

func TestStudentDoc_FallsBackToDocumentID(t *testing.T) {
	st := studentDoc{Name: "Asha", Section: "X"}.toDomain("1XX21CS001")
	assert.Equal(t, "1XX21CS001", st.USN)
	assert.False(t, st.HasPhone())
}
