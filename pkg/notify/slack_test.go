package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/logcost/logcost-go/pkg/analyzer"
	"github.com/logcost/logcost-go/pkg/tracker"
)

func samplePayload() Payload {
	return Payload{
		Provider:   "gcp",
		TotalBytes: 1500,
		TotalCost:  0.25,
		CallCount:  1500,
		SiteCount:  12,
		TopEntries: []analyzer.Entry{
			{
				Entry: tracker.Entry{
					File: "app/server.go", Line: 42, Level: tracker.LevelInfo,
					Template: "request handled", Count: 1200, Bytes: 1400, Cost: 0.20,
				},
				BytesPerCall: 1.17,
			},
		},
		ReportID: "report-1",
	}
}

// captureServer starts a webhook endpoint that decodes received messages
// into the returned slackMessage.
func captureServer(t *testing.T, status int) (*httptest.Server, *slackMessage) {
	t.Helper()
	var msg slackMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading webhook body failed: %v", err)
		}
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Errorf("decoding webhook body failed: %v", err)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected application/json content type, got %s", ct)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &msg
}

func newNotifier(t *testing.T, url string) *SlackNotifier {
	t.Helper()
	n, err := NewSlackNotifier(SlackConfig{WebhookURL: url})
	if err != nil {
		t.Fatalf("NewSlackNotifier failed: %v", err)
	}
	return n
}

// ============================================================================
// Delivery Tests
// ============================================================================

func TestSlackNotifier_SendBuildsReportMessage(t *testing.T) {
	server, msg := captureServer(t, http.StatusOK)
	n := newNotifier(t, server.URL)

	if err := n.Send(context.Background(), samplePayload()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if msg.Text != "LogCost Report - $0.25 total cost" {
		t.Errorf("Unexpected fallback text: %q", msg.Text)
	}
	// Header, top entries, context footer. No warnings block without findings.
	if len(msg.Blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(msg.Blocks))
	}

	header := msg.Blocks[0].Text.Text
	for _, want := range []string{
		"*LogCost Report - GCP*",
		"Total: 1.46 KB ($0.25)",
		"Log calls: 1,500",
	} {
		if !strings.Contains(header, want) {
			t.Errorf("Expected header to contain %q, got %q", want, header)
		}
	}
	if strings.Contains(header, "Trend:") {
		t.Errorf("Expected no trend line without baseline, got %q", header)
	}

	top := msg.Blocks[1].Text.Text
	if !strings.Contains(top, "1. `app/server.go:42` - $0.20 (1.37 KB, 1,200 calls)") {
		t.Errorf("Unexpected top entry line: %q", top)
	}
	if !strings.Contains(top, "_request handled..._") {
		t.Errorf("Expected truncated template line, got %q", top)
	}

	footer := msg.Blocks[2]
	if footer.Type != "context" || len(footer.Elements) != 1 {
		t.Fatalf("Expected context footer, got %+v", footer)
	}
	if footer.Elements[0].Text != "Total logs tracked: 12 unique locations | Analyzed with LogCost" {
		t.Errorf("Unexpected footer: %q", footer.Elements[0].Text)
	}
}

func TestSlackNotifier_TestPayloadMarked(t *testing.T) {
	server, msg := captureServer(t, http.StatusOK)
	n := newNotifier(t, server.URL)

	p := samplePayload()
	p.Test = true
	if err := n.Send(context.Background(), p); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if !strings.HasPrefix(msg.Text, "[Test] ") {
		t.Errorf("Expected [Test] prefix on fallback text, got %q", msg.Text)
	}
	if !strings.HasPrefix(msg.Blocks[0].Text.Text, "*[Test]* ") {
		t.Errorf("Expected *[Test]* prefix on header, got %q", msg.Blocks[0].Text.Text)
	}
}

func TestSlackNotifier_TrendLine(t *testing.T) {
	tests := []struct {
		name  string
		trend float64
		want  string
	}{
		{"rising", 12.34, "Trend: 📈 +12.3% from previous period"},
		{"falling", -8.0, "Trend: 📉 -8.0% from previous period"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, msg := captureServer(t, http.StatusOK)
			n := newNotifier(t, server.URL)

			p := samplePayload()
			p.TrendPct = &tt.trend
			if err := n.Send(context.Background(), p); err != nil {
				t.Fatalf("Send failed: %v", err)
			}
			if !strings.Contains(msg.Blocks[0].Text.Text, tt.want) {
				t.Errorf("Expected header to contain %q, got %q", tt.want, msg.Blocks[0].Text.Text)
			}
		})
	}
}

func TestSlackNotifier_WarningsCapped(t *testing.T) {
	server, msg := captureServer(t, http.StatusOK)
	n := newNotifier(t, server.URL)

	p := samplePayload()
	for i := 0; i < 7; i++ {
		p.AntiPatterns = append(p.AntiPatterns, analyzer.Finding{
			Kind:    analyzer.KindHighFrequency,
			Message: "High log volume at app/worker.go:7",
		})
	}
	if err := n.Send(context.Background(), p); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(msg.Blocks) != 4 {
		t.Fatalf("Expected warnings block, got %d blocks", len(msg.Blocks))
	}
	warnings := msg.Blocks[2].Text.Text
	if !strings.Contains(warnings, "*⚠️  Warnings:*") {
		t.Errorf("Expected warnings title, got %q", warnings)
	}
	if got := strings.Count(warnings, "• "); got != 5 {
		t.Errorf("Expected 5 warning bullets, got %d", got)
	}
}

// ============================================================================
// Failure Tests
// ============================================================================

func TestSlackNotifier_Non2xxIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer server.Close()

	n := newNotifier(t, server.URL)
	err := n.Send(context.Background(), samplePayload())
	if err == nil {
		t.Fatal("Expected error for non-2xx response")
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TransportError, got %T", err)
	}
	if te.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", te.StatusCode)
	}
	if !strings.Contains(te.Message, "invalid_payload") {
		t.Errorf("Expected response body in message, got %q", te.Message)
	}
}

func TestSlackNotifier_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // The endpoint is unreachable.

	n := newNotifier(t, server.URL)
	err := n.Send(context.Background(), samplePayload())
	if err == nil {
		t.Fatal("Expected error for unreachable endpoint")
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TransportError, got %T", err)
	}
	if te.StatusCode != 0 {
		t.Errorf("Expected status 0 for transport failure, got %d", te.StatusCode)
	}
	if te.Unwrap() == nil {
		t.Error("Expected transport error to carry a cause")
	}
}

func TestSlackNotifier_NoRetry(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := newNotifier(t, server.URL)
	if err := n.Send(context.Background(), samplePayload()); err == nil {
		t.Fatal("Expected error for 500 response")
	}
	if requests != 1 {
		t.Errorf("Expected exactly 1 delivery attempt, got %d", requests)
	}
}

func TestNewSlackNotifier_RequiresWebhookURL(t *testing.T) {
	if _, err := NewSlackNotifier(SlackConfig{}); err == nil {
		t.Error("Expected error for empty webhook URL")
	}
}

// ============================================================================
// Payload Tests
// ============================================================================

func TestPayloadFromReport(t *testing.T) {
	pricing, err := analyzer.PricingFor("aws")
	if err != nil {
		t.Fatalf("PricingFor failed: %v", err)
	}
	snap := tracker.Snapshot{
		Entries: []tracker.Entry{
			{File: "a.go", Line: 1, Level: tracker.LevelInfo, Template: "m1", Count: 10, Bytes: 100},
			{File: "b.go", Line: 2, Level: tracker.LevelDebug, Template: "m2", Count: 5, Bytes: 50},
		},
	}
	report := analyzer.New(pricing, analyzer.DefaultThresholds()).BuildReport(snap, 1)

	p := PayloadFromReport(report, nil, false)
	if p.Provider != "aws" {
		t.Errorf("Expected provider aws, got %s", p.Provider)
	}
	if p.CallCount != 15 {
		t.Errorf("Expected 15 calls, got %d", p.CallCount)
	}
	if p.SiteCount != 2 {
		t.Errorf("Expected 2 sites, got %d", p.SiteCount)
	}
	if len(p.TopEntries) != 1 {
		t.Errorf("Expected 1 top entry, got %d", len(p.TopEntries))
	}
	if p.TrendPct != nil {
		t.Errorf("Expected nil trend, got %v", *p.TrendPct)
	}
	if p.ReportID == "" {
		t.Error("Expected non-empty report ID")
	}

	other := PayloadFromReport(report, nil, false)
	if other.ReportID == p.ReportID {
		t.Errorf("Expected unique report IDs, got %s twice", p.ReportID)
	}
}

func TestPayload_TrendOmittedFromJSON(t *testing.T) {
	p := samplePayload()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "trend_pct") {
		t.Errorf("Expected trend_pct omitted when nil, got %s", data)
	}

	trend := 5.0
	p.TrendPct = &trend
	data, _ = json.Marshal(p)
	if !strings.Contains(string(data), `"trend_pct":5`) {
		t.Errorf("Expected trend_pct serialized when set, got %s", data)
	}
}
