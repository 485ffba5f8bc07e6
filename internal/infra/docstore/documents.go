package docstore

import (
	"time"

	"absence_notifier/internal/domain/attendance"
	"absence_notifier/internal/domain/notification"
)

type sessionDoc struct {
	Section         string   `firestore:"section"`
	Date            string   `firestore:"date"`
	Slot            string   `firestore:"sessionSlot"`
	PresentStudents []string `firestore:"presentStudents"`
	TotalStudents   int      `firestore:"totalStudents"`
}

func (d sessionDoc) toDomain(id string) *attendance.Session {
	return &attendance.Session{
		ID:              id,
		Section:         d.Section,
		Date:            d.Date,
		Slot:            d.Slot,
		PresentStudents: d.PresentStudents,
		TotalStudents:   d.TotalStudents,
	}
}

type studentDoc struct {
	USN     string `firestore:"usn"`
	Name    string `firestore:"name"`
	Phone   string `firestore:"phone"`
	Section string `firestore:"section"`
}

func (d studentDoc) toDomain(id string) *attendance.Student {
	usn := d.USN
	if usn == "" {
		usn = id
	}
	return &attendance.Student{USN: usn, Name: d.Name, Phone: d.Phone, Section: d.Section}
}

type recordDoc struct {
	USN            string    `firestore:"usn"`
	Name           string    `firestore:"name"`
	Phone          string    `firestore:"phone"`
	Section        string    `firestore:"section"`
	MissedSessions []string  `firestore:"missedSessions"`
	Status         string    `firestore:"status"`
	GUID           string    `firestore:"guid,omitempty"`
	SentAt         time.Time `firestore:"sentAt,omitempty"`
}

type reconciliationDoc struct {
	Date               string      `firestore:"date"`
	TotalNotifications int         `firestore:"totalNotifications"`
	SuccessCount       int         `firestore:"successCount"`
	FailedCount        int         `firestore:"failedCount"`
	Notifications      []recordDoc `firestore:"notifications"`
	CreatedAt          time.Time   `firestore:"createdAt"`
	UpdatedAt          time.Time   `firestore:"updatedAt"`
}

func newReconciliationDoc(doc *notification.Reconciliation) reconciliationDoc {
	out := reconciliationDoc{
		Date:               doc.Date,
		TotalNotifications: doc.TotalNotifications,
		SuccessCount:       doc.SuccessCount,
		FailedCount:        doc.FailedCount,
		Notifications:      make([]recordDoc, 0, len(doc.Notifications)),
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
	for _, r := range doc.Notifications {
		rd := recordDoc{
			USN:            r.USN,
			Name:           r.Name,
			Phone:          r.Phone,
			Section:        r.Section,
			MissedSessions: r.MissedSessions,
			Status:         string(r.Status),
			GUID:           r.GUID,
		}
		if r.SentAt != nil {
			rd.SentAt = *r.SentAt
		}
		out.Notifications = append(out.Notifications, rd)
	}
	return out
}

func (d reconciliationDoc) toDomain() *notification.Reconciliation {
	doc := &notification.Reconciliation{
		Date:               d.Date,
		TotalNotifications: d.TotalNotifications,
		SuccessCount:       d.SuccessCount,
		FailedCount:        d.FailedCount,
		Notifications:      make([]*notification.Record, 0, len(d.Notifications)),
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	for _, rd := range d.Notifications {
		r := &notification.Record{
			USN:            rd.USN,
			Name:           rd.Name,
			Phone:          rd.Phone,
			Section:        rd.Section,
			MissedSessions: rd.MissedSessions,
			Status:         notification.Status(rd.Status),
			GUID:           rd.GUID,
		}
		if !rd.SentAt.IsZero() {
			sentAt := rd.SentAt
			r.SentAt = &sentAt
		}
		doc.Notifications = append(doc.Notifications, r)
	}
	return doc
}
