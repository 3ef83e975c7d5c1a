package alerting

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/compresr/gateway-hooks/internal/config"
	"github.com/compresr/gateway-hooks/internal/utils"
)

// Notification is a formatted alert ready for any channel.
type Notification struct {
	ID          string
	Category    Category
	Subject     string
	Text        string
	HTML        string
	Model       string
	Endpoint    string
	CallerAlias string
	Error       string // truncated exception text
	Timestamp   time.Time
}

// Notifier delivers notifications to one external channel.
type Notifier interface {
	// Name returns the channel identifier used in logs.
	Name() string

	// Notify delivers n. Implementations must honour ctx cancellation.
	Notify(ctx context.Context, n Notification) error
}

// NewNotification formats rec as a single-event alert.
func NewNotification(rec FailureRecord, category Category) Notification {
	errText := utils.Truncate(rec.Exception, config.MaxErrorTextLen)
	alias := rec.CallerAlias
	if alias == "" {
		alias = "(none)"
	}
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	n := Notification{
		ID:          uuid.New().String(),
		Category:    category,
		Subject:     fmt.Sprintf("[Gateway Alert] %s: %s", category.Title(), rec.Model),
		Model:       rec.Model,
		Endpoint:    rec.Endpoint,
		CallerAlias: alias,
		Error:       errText,
		Timestamp:   ts.UTC(),
	}
	n.Text = formatText(n)
	n.HTML = formatHTML(n)
	return n
}

func formatText(n Notification) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", n.Subject)
	fmt.Fprintf(&sb, "Model: %s\n", n.Model)
	fmt.Fprintf(&sb, "Endpoint: %s\n", n.Endpoint)
	fmt.Fprintf(&sb, "Key alias: %s\n", n.CallerAlias)
	fmt.Fprintf(&sb, "Time: %s\n", n.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Error: %s", n.Error)
	return sb.String()
}

func formatHTML(n Notification) string {
	row := func(label, value string) string {
		return fmt.Sprintf("<tr><td><b>%s</b></td><td>%s</td></tr>", label, html.EscapeString(value))
	}

	var sb strings.Builder
	sb.WriteString("<h2>" + html.EscapeString(n.Category.Title()) + "</h2>")
	sb.WriteString("<table>")
	sb.WriteString(row("Model", n.Model))
	sb.WriteString(row("Endpoint", n.Endpoint))
	sb.WriteString(row("Key alias", n.CallerAlias))
	sb.WriteString(row("Time", n.Timestamp.Format(time.RFC3339)))
	sb.WriteString(row("Alert ID", n.ID))
	sb.WriteString("</table>")
	sb.WriteString("<pre>" + html.EscapeString(n.Error) + "</pre>")
	return sb.String()
}
