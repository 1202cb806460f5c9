package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/logcost/logcost-go/pkg/analyzer"
)

func setReportFlags(format string) {
	reportFlags.provider = "gcp"
	reportFlags.currency = "USD"
	reportFlags.format = format
	reportFlags.top = 10
}

func TestRunReportJSON(t *testing.T) {
	stats := writeTestSnapshot(t)
	output := filepath.Join(t.TempDir(), "report.json")
	setReportFlags("json")

	if err := runReport(nil, []string{stats, output}); err != nil {
		t.Fatalf("runReport() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}

	var report analyzer.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.Provider != "gcp" {
		t.Errorf("report provider = %q, want %q", report.Provider, "gcp")
	}
	if report.TotalBytes != 3072 {
		t.Errorf("report total bytes = %d, want 3072", report.TotalBytes)
	}
	if len(report.Entries) != 2 {
		t.Errorf("report entries = %d, want 2", len(report.Entries))
	}
}

func TestRunReportCSV(t *testing.T) {
	stats := writeTestSnapshot(t)
	output := filepath.Join(t.TempDir(), "report.csv")
	setReportFlags("csv")

	if err := runReport(nil, []string{stats, output}); err != nil {
		t.Fatalf("runReport() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("csv file not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "key,file,line,level") {
		t.Errorf("csv should start with the header row, got %q", string(data)[:40])
	}
}

func TestRunReportPrometheus(t *testing.T) {
	stats := writeTestSnapshot(t)
	output := filepath.Join(t.TempDir(), "logcost.prom")
	setReportFlags("prometheus")

	if err := runReport(nil, []string{stats, output}); err != nil {
		t.Fatalf("runReport() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("textfile not written: %v", err)
	}
	if !strings.Contains(string(data), "logcost_statement_bytes_total") {
		t.Errorf("textfile should contain statement byte counters, got %q", string(data))
	}
}

func TestRunReportHTML(t *testing.T) {
	stats := writeTestSnapshot(t)
	output := filepath.Join(t.TempDir(), "report.html")
	setReportFlags("html")

	if err := runReport(nil, []string{stats, output}); err != nil {
		t.Fatalf("runReport() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("html file not written: %v", err)
	}
	if !strings.Contains(string(data), "<html") {
		t.Error("output should be an HTML document")
	}
}

func TestRunReportUnknownFormat(t *testing.T) {
	stats := writeTestSnapshot(t)
	output := filepath.Join(t.TempDir(), "report.out")
	setReportFlags("yaml")

	err := runReport(nil, []string{stats, output})
	if err == nil {
		t.Error("runReport() with unknown format should return error")
	}
}
