package alerting

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/sjson"
)

// WebhookNotifier posts alerts to a chat incoming-webhook URL using a
// text summary plus header and markdown section blocks.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier creates a chat webhook channel.
func NewWebhookNotifier(url string, httpClient *http.Client) *WebhookNotifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WebhookNotifier{url: url, httpClient: httpClient}
}

// Name implements Notifier.
func (w *WebhookNotifier) Name() string { return "webhook" }

// Notify implements Notifier.
func (w *WebhookNotifier) Notify(ctx context.Context, n Notification) error {
	var body strings.Builder
	fmt.Fprintf(&body, "*Model:* `%s`\n", n.Model)
	fmt.Fprintf(&body, "*Endpoint:* `%s`\n", n.Endpoint)
	fmt.Fprintf(&body, "*Key alias:* %s\n", n.CallerAlias)
	fmt.Fprintf(&body, "*Time:* %s\n", n.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&body, "```%s```", n.Error)

	payload, err := BuildChatPayload(n.Subject, n.Category.Title(), body.String())
	if err != nil {
		return err
	}
	return w.post(ctx, payload)
}

// PostRaw delivers a prebuilt JSON payload.
func (w *WebhookNotifier) PostRaw(ctx context.Context, payload []byte) error {
	return w.post(ctx, payload)
}

func (w *WebhookNotifier) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// BuildChatPayload assembles {"text", "blocks": [header, section]}.
func BuildChatPayload(text, header, markdown string) ([]byte, error) {
	payload := []byte(`{}`)
	var err error
	set := func(path string, value any) {
		if err != nil {
			return
		}
		payload, err = sjson.SetBytes(payload, path, value)
	}

	set("text", text)
	set("blocks.0.type", "header")
	set("blocks.0.text.type", "plain_text")
	set("blocks.0.text.text", header)
	set("blocks.1.type", "section")
	set("blocks.1.text.type", "mrkdwn")
	set("blocks.1.text.text", markdown)
	if err != nil {
		return nil, fmt.Errorf("build chat payload: %w", err)
	}
	return payload, nil
}
