package inspectlog

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/lukasberglund/inspect-ai/pkg/core"
)

// Log lifecycle states. A log is written as "started" when execution begins
// and finalized as "success" or "error". A log left at "started" marks
// abandoned or interrupted work.
const (
	StatusStarted = "started"
	StatusSuccess = "success"
	StatusError   = "error"
)

const timeLayout = time.RFC3339Nano

// EvalLog is the persisted outcome of executing one task against one model.
type EvalLog struct {
	Version int                 `json:"version"`
	Status  string              `json:"status"`
	Eval    EvalSpec            `json:"eval"`
	Samples []core.SampleResult `json:"samples,omitempty"`
	Error   *EvalError          `json:"error,omitempty"`
	Stats   EvalStats           `json:"stats"`

	// Location is the artifact path on the log store, set on read and write.
	Location string `json:"-"`
}

// EvalSpec identifies what was run: (TaskID, Model, Sequence) is recoverable
// from the artifact alone, which is what makes cross-invocation resumption
// possible without an external database.
type EvalSpec struct {
	Created  string         `json:"created"`
	Task     string         `json:"task"`
	TaskID   string         `json:"task_id"`
	TaskArgs map[string]any `json:"task_args,omitempty"`
	Model    string         `json:"model"`
	Sequence int            `json:"sequence"`
	RunID    string         `json:"run_id"`
}

// EvalError records a task-level execution failure.
type EvalError struct {
	Message string `json:"message"`
}

// EvalStats captures timing and usage for one execution.
type EvalStats struct {
	StartedAt   string                     `json:"started_at"`
	CompletedAt string                     `json:"completed_at,omitempty"`
	ModelUsage  map[string]core.TokenUsage `json:"model_usage,omitempty"`
}

// Completed reports whether the log reached a terminal status.
func (l *EvalLog) Completed() bool {
	return l.Status == StatusSuccess || l.Status == StatusError
}

// CreatedTime parses the log creation timestamp; zero time when unparsable.
func (l *EvalLog) CreatedTime() time.Time {
	t, err := time.Parse(timeLayout, l.Eval.Created)
	if err != nil {
		return time.Time{}
	}
	return t
}

// NewLog returns a freshly started log for the given spec.
func NewLog(spec EvalSpec) *EvalLog {
	now := time.Now().UTC().Format(timeLayout)
	if spec.Created == "" {
		spec.Created = now
	}
	if spec.RunID == "" {
		spec.RunID = generateID()
	}
	return &EvalLog{
		Version: 1,
		Status:  StatusStarted,
		Eval:    spec,
		Stats:   EvalStats{StartedAt: now},
	}
}

// Finalize fills the log from a completed report. Status becomes "error" when
// the task-level error is set or any sample failed, otherwise "success".
func (l *EvalLog) Finalize(report core.EvalReport, taskErr error) {
	l.Samples = report.Results
	l.Stats.CompletedAt = time.Now().UTC().Format(timeLayout)
	if report.ModelName != "" {
		l.Stats.ModelUsage = map[string]core.TokenUsage{
			report.ModelName: report.Metrics.TokenUsage,
		}
	}
	switch {
	case taskErr != nil:
		l.Status = StatusError
		l.Error = &EvalError{Message: taskErr.Error()}
	case report.Failed():
		l.Status = StatusError
		l.Error = &EvalError{Message: firstSampleError(report)}
	default:
		l.Status = StatusSuccess
	}
}

func firstSampleError(report core.EvalReport) string {
	for _, result := range report.Results {
		if result.Error != "" {
			return fmt.Sprintf("sample %s: %s", result.Sample.ID, result.Error)
		}
	}
	return ""
}

func sanitizeName(input string) string {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			out = append(out, r)
		}
	}
	return string(out)
}

func generateID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
