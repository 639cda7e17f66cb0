package solver

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lukasberglund/inspect-ai/pkg/core"
	"github.com/lukasberglund/inspect-ai/pkg/model"
)

func TestBasicSolverAppliesTemplate(t *testing.T) {
	s := BasicSolver{
		Model:          model.MockModel{},
		PromptTemplate: "Q: {{input}}\nA:",
	}

	response, err := s.Solve(context.Background(), core.Sample{Input: "2+2"})
	require.NoError(t, err)
	require.Equal(t, "Q: 2+2\nA:", response.Content)
}

func TestBasicSolverRequiresModel(t *testing.T) {
	_, err := BasicSolver{}.Solve(context.Background(), core.Sample{Input: "x"})
	require.Error(t, err)
}

func TestChainOfThoughtSolverExtractsAnswer(t *testing.T) {
	s := ChainOfThoughtSolver{
		Model: model.MockModel{
			ResponseText: "First, 2+2 is basic addition.\nThe answer is: 4",
		},
		ExtractAnswer: true,
	}

	response, err := s.Solve(context.Background(), core.Sample{Input: "2+2"})
	require.NoError(t, err)
	require.Equal(t, "4", response.Content)
}

func TestExtractFinalAnswer(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"answer-is", "Reasoning...\nThe answer is: Paris", "Paris"},
		{"final-answer", "thus the final answer is 42", "42"},
		{"hash-marks", "step 1\nstep 2\n#### 17", "17"},
		{"therefore", "x = 3. Therefore, x equals 3.", "x equals 3."},
		{"last-line", "some reasoning\n\nParis\n", "Paris"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExtractFinalAnswer(tc.text))
		})
	}
}

func TestFewShotSolverAssemblesExamples(t *testing.T) {
	s := FewShotSolver{
		Model: model.MockModel{},
		Examples: []FewShotExample{
			{Input: "2+2", Output: "4"},
			{Input: "3+3", Output: "6"},
		},
	}

	response, err := s.Solve(context.Background(), core.Sample{Input: "4+4"})
	require.NoError(t, err)
	require.Equal(t, "Q: 2+2\nA: 4\n\nQ: 3+3\nA: 6\n\nQ: 4+4\nA:", response.Content)
}

func TestPipelineSolverChainsStages(t *testing.T) {
	upper := solverFunc(func(_ context.Context, sample core.Sample) (core.Response, error) {
		return core.Response{
			Content:    "draft: " + sample.Input,
			TokenUsage: core.TokenUsage{TotalTokens: 5},
		}, nil
	})
	trim := solverFunc(func(_ context.Context, sample core.Sample) (core.Response, error) {
		return core.Response{
			Content:    strings.TrimPrefix(sample.Input, "draft: "),
			TokenUsage: core.TokenUsage{TotalTokens: 3},
		}, nil
	})

	p := PipelineSolver{Solvers: []core.Solver{upper, trim}}
	response, err := p.Solve(context.Background(), core.Sample{Input: "hello", Target: "hello"})
	require.NoError(t, err)
	require.Equal(t, "hello", response.Content)
	require.Equal(t, 8, response.TokenUsage.TotalTokens)
}

type solverFunc func(ctx context.Context, sample core.Sample) (core.Response, error)

func (f solverFunc) Name() string { return "func" }

func (f solverFunc) Solve(ctx context.Context, sample core.Sample) (core.Response, error) {
	return f(ctx, sample)
}

func TestApplyTemplate(t *testing.T) {
	out := applyTemplate("{{a}} and {{b}} and {{a}}", map[string]string{"a": "1", "b": "2"})
	require.Equal(t, "1 and 2 and 1", out)
}
