// internal/infra/sms/client.go
package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	domainSMS "absence_notifier/internal/domain/sms"

	"github.com/sendgrid/rest"
)

// ErrGatewayStatus wraps any non-2xx reply. The whole batch is treated as failed.
var ErrGatewayStatus = errors.New("sms gateway returned non-success status")

const maxErrorBody = 512

// Config holds the gateway endpoints and template identity.
type Config struct {
	TemplateURL string
	TextURL     string
	APIKey      string
	Template    string
	TemplateID  string
}

// Client implements domainSMS.Gateway over the provider's JSON HTTP API.
type Client struct {
	rest *rest.Client
	cfg  Config
}

var _ domainSMS.Gateway = (*Client)(nil)

// NewClient builds a gateway client. A nil httpClient uses http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.TextURL == "" {
		cfg.TextURL = cfg.TemplateURL
	}
	return &Client{
		rest: &rest.Client{HTTPClient: httpClient},
		cfg:  cfg,
	}
}

type templateRequest struct {
	Template   string                `json:"template"`
	TemplateID string                `json:"templateId"`
	Recipients []domainSMS.Recipient `json:"recipients"`
}

type textRecipient struct {
	Phone string `json:"phone"`
}

type textRequest struct {
	Message    string          `json:"message"`
	Recipients []textRecipient `json:"recipients"`
}

// SendTemplate posts the whole batch in one request.
func (c *Client) SendTemplate(ctx context.Context, recipients []domainSMS.Recipient) (*domainSMS.BatchResponse, error) {
	return c.post(ctx, c.cfg.TemplateURL, templateRequest{
		Template:   c.cfg.Template,
		TemplateID: c.cfg.TemplateID,
		Recipients: recipients,
	})
}

// SendText posts a plain message to every phone in one request.
func (c *Client) SendText(ctx context.Context, phones []string, message string) (*domainSMS.BatchResponse, error) {
	req := textRequest{Message: message, Recipients: make([]textRecipient, 0, len(phones))}
	for _, p := range phones {
		req.Recipients = append(req.Recipients, textRecipient{Phone: p})
	}
	return c.post(ctx, c.cfg.TextURL, req)
}

func (c *Client) post(ctx context.Context, url string, payload interface{}) (*domainSMS.BatchResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding sms request: %w", err)
	}

	res, err := c.rest.SendWithContext(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: url,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.cfg.APIKey,
			"Content-Type":  "application/json",
			"Accept":        "application/json",
		},
		Body: body,
	})
	if err != nil {
		return nil, fmt.Errorf("calling sms gateway: %w", err)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d: %s", ErrGatewayStatus, res.StatusCode, truncate(res.Body, maxErrorBody))
	}

	var out domainSMS.BatchResponse
	if err := json.Unmarshal([]byte(res.Body), &out); err != nil {
		return nil, fmt.Errorf("decoding sms gateway response: %w", err)
	}
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
