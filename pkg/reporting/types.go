package reporting

import "time"

// RunReport summarises one generate or reduce invocation end-to-end,
// the JSON body behind Storage.SaveJSON's "run report" artifact.
// Mirrors the shape (if not the domain) of the teacher's TestReport:
// identity, timing, outcome, and a free-form step log.
type RunReport struct {
	RunID     string    `json:"run_id"`
	Command   string    `json:"command"` // "generate" or "reduce"
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`

	Status  RunStatus `json:"status"`
	Message string    `json:"message,omitempty"`

	Steps []StepInfo `json:"steps,omitempty"`
	Stats interface{} `json:"stats,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

// RunStatus is the terminal state of a run.
type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// StepInfo records one command application or reducer step, the unit
// both ProgressReporter and the final RunReport log at.
type StepInfo struct {
	Index       int       `json:"index"`
	Kind        string    `json:"kind"`
	Description string    `json:"description,omitempty"`
	Time        time.Time `json:"time"`
}

// LiveRunState is what ProgressReporter renders on every iteration
// boundary while a run is in flight.
type LiveRunState struct {
	RunID     string        `json:"run_id"`
	Iteration int           `json:"iteration"`
	MaxIter   int           `json:"max_iter"`
	Elapsed   time.Duration `json:"elapsed"`
	LastStep  StepInfo      `json:"last_step"`
}
