// Package webhook delivers signed job notifications to client callback URLs.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	EventJobSucceeded = "job.succeeded"
	EventJobFailed    = "job.failed"

	SignatureHeader = "X-Webhook-Signature"
)

var ErrInvalidURL = errors.New("callback_url must be an absolute http or https URL")

type Dispatcher struct {
	secret     []byte
	httpClient *http.Client
}

// NewDispatcher signs payloads with secret. An empty secret sends unsigned
// requests.
func NewDispatcher(secret string) *Dispatcher {
	return &Dispatcher{
		secret: []byte(secret),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Deliver POSTs payload as JSON to target. Non-2xx responses are errors.
func (d *Dispatcher) Deliver(ctx context.Context, target, event string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", event)
	req.Header.Set("X-Webhook-ID", uuid.NewString())
	if len(d.secret) > 0 {
		req.Header.Set(SignatureHeader, Sign(body, d.secret))
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook %s returned status %d", target, resp.StatusCode)
	}
	return nil
}

// Sign returns the signature header value for body.
func Sign(body, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}

// Verify reports whether signature matches body.
func Verify(body, secret []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(body, secret)), []byte(signature))
}

// ValidateURL checks that a callback URL can be delivered to.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
