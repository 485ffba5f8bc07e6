package sms

import "context"

// Recipient is one entry of a templated batch.
type Recipient struct {
	Phone        string   `json:"phone"`
	TemplateVars []string `json:"templateVars"`
}

// Result is the gateway outcome for one recipient. Results come back in the
// same order as the recipients were sent.
type Result struct {
	Phone     string `json:"phone"`
	Success   bool   `json:"success"`
	GUID      string `json:"guid,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

// BatchResponse is the gateway reply to a batch or text send.
type BatchResponse struct {
	Results []Result `json:"results"`
	Message string   `json:"message"`
	Summary string   `json:"summary"`
}

// Gateway defines the SMS provider operations used by the job.
// This keeps the dispatch logic independent of the provider's HTTP client.
type Gateway interface {
	// SendTemplate sends one templated message per recipient in a single call.
	SendTemplate(ctx context.Context, recipients []Recipient) (*BatchResponse, error)
	// SendText sends the same plain message to every phone.
	SendText(ctx context.Context, phones []string, message string) (*BatchResponse, error)
}
