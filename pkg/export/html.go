package export

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/logcost/logcost-go/pkg/analyzer"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>LogCost Report</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 2rem; }
    table { border-collapse: collapse; width: 100%; }
    th, td { border: 1px solid #ddd; padding: 8px; }
    th { background: #f0f0f0; text-align: left; }
  </style>
</head>
<body>
  <h1>LogCost Report</h1>
  <p>Provider: {{.Provider}} | Currency: {{.Currency}}</p>
  <p>Total bytes: {{.TotalBytes}} | Estimated cost: {{printf "%.2f" .TotalCost}} {{.Currency}}</p>
  <h2>Top {{len .TopEntries}} Statements</h2>
  <table>
    <thead>
      <tr><th>Location</th><th>Level</th><th>Template</th><th>Count</th><th>Bytes</th><th>Cost ({{.Currency}})</th></tr>
    </thead>
    <tbody>
{{- range .TopEntries}}
      <tr><td>{{.File}}:{{.Line}}</td><td>{{.Level}}</td><td>{{.Template}}</td><td>{{.Count}}</td><td>{{.Bytes}}</td><td>{{printf "%.4f" .Cost}}</td></tr>
{{- end}}
    </tbody>
  </table>
  <h2>Anti-patterns</h2>
  <ul>
{{- if .AntiPatterns}}
{{- range .AntiPatterns}}
    <li>{{.}}</li>
{{- end}}
{{- else}}
    <li>None detected</li>
{{- end}}
  </ul>
  <h2>Recommendations</h2>
  <ul>
{{- range .Recommendations}}
    <li>{{.}}</li>
{{- end}}
  </ul>
</body>
</html>
`))

// htmlEntry is one table row with display-ready fields.
type htmlEntry struct {
	File     string
	Line     int
	Level    string
	Template string
	Count    int64
	Bytes    int64
	Cost     float64
}

// htmlReport is the template's view of a report.
type htmlReport struct {
	Provider        string
	Currency        string
	TotalBytes      string
	TotalCost       float64
	TopEntries      []htmlEntry
	AntiPatterns    []string
	Recommendations []string
}

// WriteHTML renders the report as a standalone HTML document. The
// template engine escapes every field, so hostile log templates cannot
// inject markup.
func WriteHTML(w io.Writer, report analyzer.Report) error {
	view := htmlReport{
		Provider:        strings.ToUpper(report.Provider),
		Currency:        report.Currency,
		TotalBytes:      humanize.Comma(report.TotalBytes),
		TotalCost:       report.TotalCost,
		Recommendations: report.Recommendations,
	}
	for _, e := range report.TopEntries {
		view.TopEntries = append(view.TopEntries, htmlEntry{
			File:     e.File,
			Line:     e.Line,
			Level:    e.Level,
			Template: truncate(e.Template, 80),
			Count:    e.Count,
			Bytes:    e.Bytes,
			Cost:     e.Cost,
		})
	}
	for _, f := range report.AntiPatterns {
		view.AntiPatterns = append(view.AntiPatterns, f.Message)
	}
	return reportTemplate.Execute(w, view)
}

// WriteHTMLFile writes the HTML report to a file, creating parent
// directories as needed.
func WriteHTMLFile(path string, report analyzer.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := WriteHTML(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
