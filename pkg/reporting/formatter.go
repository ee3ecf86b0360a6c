package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"text/template"
)

// ReportFormat selects Formatter's output rendering.
type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
)

// Formatter renders a RunReport to disk in one of ReportFormat's shapes.
// The teacher's formatter dispatches html/text/json via html/template;
// there is no HTML consumer in this domain (no browser-facing dashboard),
// so this keeps the text/json dispatch and renders the text variant with
// text/template instead of html/template.
type Formatter struct {
	logger *Logger
}

func NewFormatter(logger *Logger) *Formatter {
	return &Formatter{logger: logger}
}

// GenerateReport writes report to outputPath in format.
func (f *Formatter) GenerateReport(report *RunReport, format ReportFormat, outputPath string) error {
	switch format {
	case ReportFormatJSON:
		return f.generateJSONReport(report, outputPath)
	default:
		return f.generateTextReport(report, outputPath)
	}
}

var textReportTemplate = template.Must(template.New("report").Parse(
	`{{.Command}} run {{.RunID}}
status:   {{.Status}}
start:    {{.StartTime}}
end:      {{.EndTime}}
duration: {{.Duration}}
steps:    {{len .Steps}}
{{- range .Steps}}
  [{{.Index}}] {{.Time.Format "15:04:05"}} {{.Kind}}{{if .Description}} - {{.Description}}{{end}}
{{- end}}
{{- if .Errors}}
errors:
{{- range .Errors}}
  - {{.}}
{{- end}}
{{- end}}
`))

func (f *Formatter) generateTextReport(report *RunReport, outputPath string) error {
	var buf bytes.Buffer
	if err := textReportTemplate.Execute(&buf, report); err != nil {
		return fmt.Errorf("failed to render text report: %w", err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}
	f.logger.Info("report written", "path", outputPath, "format", ReportFormatText)
	return nil
}

func (f *Formatter) generateJSONReport(report *RunReport, outputPath string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal json report: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write json report: %w", err)
	}
	f.logger.Info("report written", "path", outputPath, "format", ReportFormatJSON)
	return nil
}
