package solver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lukasberglund/inspect-ai/pkg/core"
)

// PipelineSolver composes solvers sequentially. Between stages, the previous
// response content becomes the next sample's Input while preserving Target,
// ID, and Metadata.
type PipelineSolver struct {
	Solvers []core.Solver
}

func (p PipelineSolver) Name() string {
	if len(p.Solvers) == 0 {
		return "pipeline"
	}
	names := make([]string, len(p.Solvers))
	for i, s := range p.Solvers {
		names[i] = s.Name()
	}
	return strings.Join(names, " | ")
}

func (p PipelineSolver) Solve(ctx context.Context, sample core.Sample) (core.Response, error) {
	if len(p.Solvers) == 0 {
		return core.Response{}, fmt.Errorf("pipeline: at least one solver is required")
	}

	var usage core.TokenUsage
	var latency time.Duration
	current := sample

	var last core.Response
	for _, s := range p.Solvers {
		response, err := s.Solve(ctx, current)
		if err != nil {
			return core.Response{}, err
		}
		usage.PromptTokens += response.TokenUsage.PromptTokens
		usage.CompletionTokens += response.TokenUsage.CompletionTokens
		usage.TotalTokens += response.TokenUsage.TotalTokens
		latency += response.Latency
		last = response

		current = core.Sample{
			ID:       sample.ID,
			Input:    response.Content,
			Target:   sample.Target,
			Metadata: sample.Metadata,
		}
	}

	return core.Response{
		Content:    last.Content,
		TokenUsage: usage,
		Latency:    latency,
	}, nil
}
