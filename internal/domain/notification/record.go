// internal/domain/notification/record.go
package notification

import "time"

// Record is one notification for one eligible absent student on one date.
// It is created pending during aggregation and receives its terminal status
// once, after the dispatch call.
type Record struct {
	USN            string     `json:"usn"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Section        string     `json:"section"`
	MissedSessions []string   `json:"missedSessions"`
	Status         Status     `json:"status"`
	GUID           string     `json:"guid,omitempty"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
}

// MissedCount is the number of sessions the student missed that day.
func (r *Record) MissedCount() int {
	return len(r.MissedSessions)
}
