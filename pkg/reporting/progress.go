package reporting

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OutputFormat selects how ProgressReporter renders events.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ProgressReporter renders per-iteration progress for a generate or
// reduce run, dispatching on format the way the teacher's reporter does.
type ProgressReporter struct {
	format OutputFormat
	logger *Logger
}

// NewProgressReporter builds a ProgressReporter. An unrecognised format
// falls back to FormatText.
func NewProgressReporter(format OutputFormat, logger *Logger) *ProgressReporter {
	return &ProgressReporter{format: format, logger: logger}
}

// ReportStep reports one applied command or reducer step.
func (pr *ProgressReporter) ReportStep(state LiveRunState) {
	switch pr.format {
	case FormatJSON:
		data, err := json.Marshal(state)
		if err != nil {
			pr.logger.Error("failed to marshal progress state", "error", err)
			return
		}
		fmt.Println(string(data))
	default:
		fmt.Printf("[%s] iter %d/%d | %s | elapsed %s\n",
			time.Now().Format("15:04:05"), state.Iteration, state.MaxIter,
			state.LastStep.Kind, state.Elapsed.Round(time.Second))
	}
}

// ReportRunCompleted prints the final summary for report.
func (pr *ProgressReporter) ReportRunCompleted(report *RunReport) {
	switch pr.format {
	case FormatJSON:
		data, err := json.Marshal(map[string]interface{}{
			"event":  "run_completed",
			"report": report,
		})
		if err != nil {
			pr.logger.Error("failed to marshal run report", "error", err)
			return
		}
		fmt.Println(string(data))
	default:
		pr.printTextSummary(report)
	}
}

func (pr *ProgressReporter) printTextSummary(report *RunReport) {
	status := "COMPLETED"
	if report.Status == StatusFailed {
		status = "FAILED"
	}

	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("[%s] %s\n", report.Command, status)
	fmt.Printf("  run id:   %s\n", report.RunID)
	fmt.Printf("  duration: %s\n", report.Duration)
	fmt.Printf("  steps:    %d\n", len(report.Steps))
	if report.Message != "" {
		fmt.Printf("  message:  %s\n", report.Message)
	}
	for _, e := range report.Errors {
		fmt.Printf("  error:    %s\n", e)
	}
	fmt.Println(strings.Repeat("-", 60))
}
