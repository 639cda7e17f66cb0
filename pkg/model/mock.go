package model

import (
	"context"
	"time"

	"github.com/lukasberglund/inspect-ai/pkg/core"
)

// MockModel returns a fixed response or echoes the prompt. Delay, when set,
// simulates backend latency.
type MockModel struct {
	NameValue    string
	ResponseText string
	Delay        time.Duration
}

func (m MockModel) Name() string {
	if m.NameValue == "" {
		return "mockllm/model"
	}
	return m.NameValue
}

func (m MockModel) Generate(ctx context.Context, prompt string, _ core.GenerateOptions) (core.Response, error) {
	start := time.Now()
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return core.Response{}, ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	content := prompt
	if m.ResponseText != "" {
		content = m.ResponseText
	}
	return core.Response{
		Content: content,
		Latency: time.Since(start),
	}, nil
}
