// Package email renders and delivers notification emails through an
// external mail-sending function.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Config holds the mail function endpoint
type Config struct {
	FunctionURL string
	Token       string
}

// FunctionMailer posts {to, subject, html} to a serverless mail function.
type FunctionMailer struct {
	config Config
	client *http.Client
}

// NewFunctionMailer creates a new FunctionMailer
func NewFunctionMailer(config Config) *FunctionMailer {
	return &FunctionMailer{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// IsConfigured returns true if a function URL is set
func (m *FunctionMailer) IsConfigured() bool {
	return m.config.FunctionURL != ""
}

type sendPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send invokes the mail function. Callers treat failures as best-effort.
func (m *FunctionMailer) Send(ctx context.Context, to, subject, html string) error {
	if !m.IsConfigured() {
		return fmt.Errorf("mail function not configured")
	}
	if to == "" {
		return nil
	}

	body, err := json.Marshal(sendPayload{To: to, Subject: subject, HTML: html})
	if err != nil {
		return fmt.Errorf("failed to encode mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.FunctionURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+m.config.Token)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail function call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail function returned status %d", resp.StatusCode)
	}
	return nil
}
