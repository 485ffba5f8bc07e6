package sms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domainSMS "absence_notifier/internal/domain/sms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		TemplateURL: srv.URL + "/template",
		TextURL:     srv.URL + "/text",
		APIKey:      "secret-key",
		Template:    "absence_alert",
		TemplateID:  "1207",
	}, srv.Client())
}

func TestClient_SendTemplate(t *testing.T) {
	var got templateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/template", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"phone":"9000000001","success":true,"guid":"g-1"},{"phone":"9000000002","success":false,"error":"DND","errorCode":"E17"}],"message":"ok","summary":"1 sent, 1 failed"}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv).SendTemplate(context.Background(), []domainSMS.Recipient{
		{Phone: "9000000001", TemplateVars: []string{"2", "10/01/2024"}},
		{Phone: "9000000002", TemplateVars: []string{"3", "10/01/2024"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "absence_alert", got.Template)
	assert.Equal(t, "1207", got.TemplateID)
	require.Len(t, got.Recipients, 2)
	assert.Equal(t, []string{"2", "10/01/2024"}, got.Recipients[0].TemplateVars)

	require.Len(t, res.Results, 2)
	assert.True(t, res.Results[0].Success)
	assert.Equal(t, "g-1", res.Results[0].GUID)
	assert.Equal(t, "DND", res.Results[1].Error)
	assert.Equal(t, "E17", res.Results[1].ErrorCode)
	assert.Equal(t, "1 sent, 1 failed", res.Summary)
}

func TestClient_SendText(t *testing.T) {
	var got textRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"results":[],"message":"queued","summary":""}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv).SendText(context.Background(), []string{"9000000009"}, "hello")
	require.NoError(t, err)
	assert.Equal(t, "queued", res.Message)
	assert.Equal(t, "hello", got.Message)
	assert.Equal(t, []textRecipient{{Phone: "9000000009"}}, got.Recipients)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SendTemplate(context.Background(), []domainSMS.Recipient{{Phone: "1"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGatewayStatus))
	assert.Contains(t, err.Error(), "500")
}

func TestClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SendTemplate(context.Background(), nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrGatewayStatus))
}

func TestNewClient_TextURLDefaultsToTemplateURL(t *testing.T) {
	c := NewClient(Config{TemplateURL: "https://sms.example.com/send"}, nil)
	assert.Equal(t, "https://sms.example.com/send", c.cfg.TextURL)
}
