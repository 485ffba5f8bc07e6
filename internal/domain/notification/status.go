// internal/domain/notification/status.go
package notification

// Status is the delivery state of a NotificationRecord. Besides the constants
// below it may hold a raw gateway error string.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// IsSent reports whether the gateway accepted the message.
func (s Status) IsSent() bool {
	return s == StatusSent
}

// IsFailed reports whether the record reached a terminal non-success state,
// which includes gateway error strings.
func (s Status) IsFailed() bool {
	return s != StatusSent && s != StatusPending && s != ""
}
