package alerting

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/compresr/gateway-hooks/internal/utils"
)

// EmailNotifier posts alerts to a transactional email API
// (bearer auth, JSON {from, to, subject, html}).
type EmailNotifier struct {
	apiURL     string
	apiKey     string
	from       string
	to         []string
	httpClient *http.Client
}

// NewEmailNotifier creates an email channel.
func NewEmailNotifier(apiURL, apiKey, from string, to []string, httpClient *http.Client) *EmailNotifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &EmailNotifier{
		apiURL:     apiURL,
		apiKey:     apiKey,
		from:       from,
		to:         append([]string(nil), to...),
		httpClient: httpClient,
	}
}

// Name implements Notifier.
func (e *EmailNotifier) Name() string { return "email" }

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Notify implements Notifier.
func (e *EmailNotifier) Notify(ctx context.Context, n Notification) error {
	body, err := utils.MarshalNoEscape(emailRequest{
		From:    e.from,
		To:      e.to,
		Subject: n.Subject,
		HTML:    n.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}
