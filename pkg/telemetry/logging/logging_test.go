package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid JSON config",
			config:  Config{Level: "info", Format: "json"},
			wantErr: false,
		},
		{
			name:    "valid text config",
			config:  Config{Level: "debug", Format: "text"},
			wantErr: false,
		},
		{
			name:    "empty strings use defaults",
			config:  Config{},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			config:  Config{Level: "invalid", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "info", Format: "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.config.Writer = buf

			logger, err := Setup(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("Setup() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("Setup() returned nil logger without error")
			}
		})
	}
}

func TestSetupJSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := Setup(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	logger.Info("snapshot change captured", "total_bytes", 2048)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if record["msg"] != "snapshot change captured" {
		t.Errorf("msg = %v, want %q", record["msg"], "snapshot change captured")
	}
	if record["total_bytes"] != float64(2048) {
		t.Errorf("total_bytes = %v, want 2048", record["total_bytes"])
	}
}

func TestSetupTextOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := Setup(Config{Level: "info", Format: "text", Writer: buf})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	logger.Info("watcher started", "watch_path", "/tmp/stats.json")

	out := buf.String()
	if !strings.Contains(out, "msg=\"watcher started\"") {
		t.Errorf("text output missing message: %q", out)
	}
	if strings.HasPrefix(out, "{") {
		t.Errorf("text format produced JSON output: %q", out)
	}
}

func TestSetupLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := Setup(Config{Level: "warn", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	logger.Info("should be filtered")
	if buf.Len() != 0 {
		t.Errorf("info record logged at warn level: %q", buf.String())
	}

	logger.Warn("should pass")
	if buf.Len() == 0 {
		t.Error("warn record filtered at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"ERROR", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    LogFormat
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"", FormatJSON, false},
		{"text", FormatText, false},
		{"TEXT", FormatText, false},
		{"console", FormatJSON, true},
		{"yaml", FormatJSON, true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
