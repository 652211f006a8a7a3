// Package notify implements outbound email notifications. Delivery is
// delegated to an external notification function reachable over HTTPS; this
// package owns the Mailer contract, the HTTP client for that function, and the
// French email bodies (see templates.go).
//
// The Mailer is intentionally narrow so the service layer can treat delivery
// as a best-effort collaborator: completion notices log-and-continue on
// failure, while user-triggered sends surface the error.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/likerotech-cyber/Check-Lariviere/internal/config"
)

// Email is one outbound message. RepairID and ClientName are metadata the
// notification function uses for its own audit log; they are not rendered.
type Email struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	RepairID   string `json:"repairId,omitempty"`
	ClientName string `json:"clientName,omitempty"`
}

// Mailer sends a single email. Implementations must be safe for concurrent
// use and must respect ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// FuncMailer delivers mail by POSTing JSON to a serverless notification
// function, authenticated with a service bearer token.
type FuncMailer struct {
	URL    string
	Token  string
	Client *http.Client
	Log    zerolog.Logger
}

// NewFuncMailer builds a FuncMailer from config with a bounded HTTP client.
func NewFuncMailer(cfg config.MailConfig, log zerolog.Logger) *FuncMailer {
	return &FuncMailer{
		URL:    cfg.FuncURL,
		Token:  cfg.Token,
		Client: &http.Client{Timeout: 10 * time.Second},
		Log:    log,
	}
}

// Send posts the email to the notification function. Any non-2xx response is
// an error; the response body is read (and truncated) only to enrich it.
func (m *FuncMailer) Send(ctx context.Context, e Email) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("notify: encode email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.Token)

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: function returned %d: %s", resp.StatusCode, detail)
	}

	m.Log.Debug().Str("to", e.To).Str("subject", e.Subject).Msg("email delivered")
	return nil
}

// NopMailer drops every email and logs it at debug level. Used when mail
// delivery is disabled (local development, tests).
type NopMailer struct {
	Log zerolog.Logger
}

// Send implements Mailer by discarding the email.
func (m NopMailer) Send(_ context.Context, e Email) error {
	m.Log.Debug().Str("to", e.To).Str("subject", e.Subject).Msg("mail disabled, dropping email")
	return nil
}
