package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// maxWarnings bounds the warnings section of a Slack message.
const maxWarnings = 5

// SlackConfig configures the Slack webhook notifier.
type SlackConfig struct {
	// WebhookURL is the Slack incoming-webhook endpoint.
	WebhookURL string

	// Timeout bounds a single delivery attempt.
	// Default: 10 seconds
	Timeout time.Duration
}

// SlackNotifier posts cost reports to a Slack incoming webhook using the
// block layout: a header with totals and trend, the top-N cost drivers,
// detected warnings and a context footer.
//
// SlackNotifier never retries a failed delivery.
type SlackNotifier struct {
	config SlackConfig
	client *http.Client
	logger *slog.Logger
}

// NewSlackNotifier creates a Slack webhook notifier.
func NewSlackNotifier(config SlackConfig) (*SlackNotifier, error) {
	if config.WebhookURL == "" {
		return nil, fmt.Errorf("slack webhook URL cannot be empty")
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &SlackNotifier{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: slog.Default().With("component", "notify.slack"),
	}, nil
}

// Send posts one payload to the webhook. A transport failure or non-2xx
// response is returned as a *TransportError and the payload is dropped.
func (n *SlackNotifier) Send(ctx context.Context, p Payload) error {
	message := buildSlackMessage(p)
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	n.logger.Debug("sending notification", "report_id", p.ReportID, "test", p.Test)

	resp, err := n.client.Do(req)
	if err != nil {
		return &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	n.logger.Debug("notification delivered", "report_id", p.ReportID)
	return nil
}

// slackMessage is the webhook document: fallback text plus rich blocks.
type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func mrkdwn(text string) slackText {
	return slackText{Type: "mrkdwn", Text: text}
}

func sectionBlock(text string) slackBlock {
	t := mrkdwn(text)
	return slackBlock{Type: "section", Text: &t}
}

// buildSlackMessage renders a payload into the Slack block layout.
func buildSlackMessage(p Payload) slackMessage {
	var header strings.Builder
	if p.Test {
		header.WriteString("*[Test]* ")
	}
	fmt.Fprintf(&header, "*LogCost Report - %s*\n", strings.ToUpper(p.Provider))
	fmt.Fprintf(&header, "Total: %s (%s)\n", formatBytes(p.TotalBytes), formatCost(p.TotalCost))
	fmt.Fprintf(&header, "Log calls: %s\n", humanize.Comma(p.CallCount))
	if p.TrendPct != nil {
		emoji := "📉"
		if *p.TrendPct > 0 {
			emoji = "📈"
		}
		fmt.Fprintf(&header, "Trend: %s %+.1f%% from previous period\n", emoji, *p.TrendPct)
	}

	var top strings.Builder
	fmt.Fprintf(&top, "\n*🔥 Top %d Most Expensive Logs:*\n", len(p.TopEntries))
	for i, entry := range p.TopEntries {
		fmt.Fprintf(&top, "%d. `%s:%d` - %s (%s, %s calls)\n   _%s..._\n",
			i+1, entry.File, entry.Line,
			formatCost(entry.Cost), formatBytes(entry.Bytes), humanize.Comma(entry.Count),
			truncate(entry.Template, 60))
	}

	blocks := []slackBlock{
		sectionBlock(header.String()),
		sectionBlock(top.String()),
	}

	if len(p.AntiPatterns) > 0 {
		var warnings strings.Builder
		warnings.WriteString("\n*⚠️  Warnings:*\n")
		for i, finding := range p.AntiPatterns {
			if i == maxWarnings {
				break
			}
			fmt.Fprintf(&warnings, "• %s\n", finding.Message)
		}
		blocks = append(blocks, sectionBlock(warnings.String()))
	}

	footer := fmt.Sprintf("Total logs tracked: %d unique locations | Analyzed with LogCost", p.SiteCount)
	blocks = append(blocks, slackBlock{Type: "context", Elements: []slackText{mrkdwn(footer)}})

	textPrefix := ""
	if p.Test {
		textPrefix = "[Test] "
	}
	return slackMessage{
		Text:   fmt.Sprintf("%sLogCost Report - %s total cost", textPrefix, formatCost(p.TotalCost)),
		Blocks: blocks,
	}
}

// formatBytes renders a byte count as B/KB/MB/GB with two decimals.
func formatBytes(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	case n < 1024*1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	default:
		return fmt.Sprintf("%.2f GB", float64(n)/(1024*1024*1024))
	}
}

func formatCost(c float64) string {
	return fmt.Sprintf("$%.2f", c)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
