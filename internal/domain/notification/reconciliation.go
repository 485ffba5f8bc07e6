// internal/domain/notification/reconciliation.go
package notification

import "time"

// Reconciliation is the persisted daily record of all notification attempts
// and their outcomes. Date (YYYY-MM-DD) is the natural key; at most one
// document exists per date.
type Reconciliation struct {
	Date               string    `json:"date"`
	TotalNotifications int       `json:"totalNotifications"`
	SuccessCount       int       `json:"successCount"`
	FailedCount        int       `json:"failedCount"`
	Notifications      []*Record `json:"notifications"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// NewReconciliation builds the document for date from the final records.
// Records still pending count towards the total only.
func NewReconciliation(date string, records []*Record, now time.Time) *Reconciliation {
	doc := &Reconciliation{
		Date:               date,
		TotalNotifications: len(records),
		Notifications:      records,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, r := range records {
		switch {
		case r.Status.IsSent():
			doc.SuccessCount++
		case r.Status.IsFailed():
			doc.FailedCount++
		}
	}
	return doc
}

// FailedRecords returns the records that did not reach sent.
func (d *Reconciliation) FailedRecords() []*Record {
	var failed []*Record
	for _, r := range d.Notifications {
		if !r.Status.IsSent() {
			failed = append(failed, r)
		}
	}
	return failed
}
