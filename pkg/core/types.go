package core

import "time"

// Response is a model response plus basic telemetry.
type Response struct {
	Content    string        `json:"content"`
	TokenUsage TokenUsage    `json:"token_usage"`
	Latency    time.Duration `json:"latency"`
}

// TokenUsage captures token accounting for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Score represents a numeric score and pass/fail status.
type Score struct {
	Value   float64 `json:"value"`
	Max     float64 `json:"max"`
	Passed  bool    `json:"passed"`
	Details string  `json:"details,omitempty"`
}

// SampleResult captures the outcome for one sample. Error is non-empty when
// the solver or scorer failed for this sample; sibling samples are unaffected
// unless the evaluator runs with FailOnError.
type SampleResult struct {
	Sample   Sample        `json:"sample"`
	Response Response      `json:"response"`
	Score    Score         `json:"score"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// EvalReport summarizes one task execution against one model.
type EvalReport struct {
	TaskName   string            `json:"task_name"`
	ModelName  string            `json:"model_name"`
	ScorerName string            `json:"scorer_name"`
	Metrics    Metrics           `json:"metrics"`
	Results    []SampleResult    `json:"results"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// Failed reports whether any sample in the report ended in an error.
func (r EvalReport) Failed() bool {
	for _, result := range r.Results {
		if result.Error != "" {
			return true
		}
	}
	return false
}

// Metrics aggregates evaluation statistics.
type Metrics struct {
	TotalSamples     int           `json:"total_samples"`
	CompletedSamples int           `json:"completed_samples"`
	SuccessRate      float64       `json:"success_rate"`
	AverageScore     float64       `json:"average_score"`
	TokenUsage       TokenUsage    `json:"token_usage"`
	AvgLatency       time.Duration `json:"avg_latency"`
	P95Latency       time.Duration `json:"p95_latency"`
}

// GenerateOptions controls model generation behavior.
type GenerateOptions struct {
	Temperature  float32  `json:"temperature"`
	MaxTokens    int      `json:"max_tokens"`
	TopP         float32  `json:"top_p"`
	Stop         []string `json:"stop"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
}
