package notification

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
)

// Sink delivers one event to a recipient
type Sink interface {
	Name() string
	Deliver(ctx context.Context, ev Event) error
}

// LogSink writes events to the application log
type LogSink struct {
	logger coreport.Logger
}

// NewLogSink creates a sink backed by logger
func NewLogSink(logger coreport.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(_ context.Context, ev Event) error {
	s.logger.Info("Notification", map[string]any{
		"event_id":        ev.ID,
		"kind":            ev.Kind,
		"transaction_id":  ev.TransactionID,
		"shop_process_id": ev.ShopProcessID,
		"status":          ev.Status,
		"delivery_status": ev.DeliveryStatus,
	})
	return nil
}

// Webhook headers
const (
	HeaderEventID   = "X-Payment-Event-Id"
	HeaderEventKind = "X-Payment-Event-Kind"
	HeaderSignature = "X-Payment-Signature"
)

// WebhookSink posts events as JSON to a fixed URL.
// When a secret is set the body is signed with HMAC-SHA256.
type WebhookSink struct {
	url    string
	secret []byte
	client *http.Client
}

// NewWebhookSink creates a webhook sink. A zero timeout defaults to 5s.
func NewWebhookSink(url, secret string, timeout time.Duration, transport http.RoundTripper) *WebhookSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &WebhookSink{
		url:    url,
		secret: []byte(secret),
		client: &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEventID, ev.ID)
	req.Header.Set(HeaderEventKind, string(ev.Kind))
	if len(s.secret) > 0 {
		req.Header.Set(HeaderSignature, Sign(s.secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
