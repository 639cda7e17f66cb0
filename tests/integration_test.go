package tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lukasberglund/inspect-ai/pkg/core"
	"github.com/lukasberglund/inspect-ai/pkg/dataset"
	"github.com/lukasberglund/inspect-ai/pkg/evalset"
	"github.com/lukasberglund/inspect-ai/pkg/inspectlog"
	"github.com/lukasberglund/inspect-ai/pkg/model"
	"github.com/lukasberglund/inspect-ai/pkg/scorer"
	"github.com/lukasberglund/inspect-ai/pkg/solver"
)

func writeDataset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func echoTask(t *testing.T, dir, name string) *evalset.Task {
	t.Helper()
	path := writeDataset(t, dir, name+".jsonl",
		`{"id":"1","input":"ping","target":"ping"}
{"id":"2","input":"pong","target":"pong"}`)
	return &evalset.Task{
		Name:    name,
		Dataset: dataset.NewFileDataset(path),
		Solver: func(m core.Model) core.Solver {
			return solver.BasicSolver{Model: m, PromptTemplate: "{{input}}"}
		},
		Scorer: scorer.ExactMatch{CaseSensitive: true, NormalizeWhitespace: true},
	}
}

func TestEndToEndEvalSet(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")

	tasks := []*evalset.Task{echoTask(t, dir, "echo1"), echoTask(t, dir, "echo2")}
	models := []core.Model{
		model.MockModel{NameValue: "mockllm/a"},
		model.MockModel{NameValue: "mockllm/b"},
	}

	success, logs, err := evalset.Run(context.Background(), evalset.Options{
		Tasks:   tasks,
		Models:  models,
		LogDir:  logDir,
		Workers: 2,
	})
	require.NoError(t, err)
	require.True(t, success)
	require.Len(t, logs, 4)
	for _, log := range logs {
		require.Equal(t, inspectlog.StatusSuccess, log.Status)
		require.Len(t, log.Samples, 2)
		for _, result := range log.Samples {
			require.True(t, result.Score.Passed)
		}
	}

	// Second invocation resumes from the same log directory without
	// producing new artifacts.
	before, err := evalset.ListAllLogs(logDir)
	require.NoError(t, err)
	success, logs, err = evalset.Run(context.Background(), evalset.Options{
		Tasks:   tasks,
		Models:  models,
		LogDir:  logDir,
		Workers: 2,
	})
	require.NoError(t, err)
	require.True(t, success)
	require.Len(t, logs, 4)
	after, err := evalset.ListAllLogs(logDir)
	require.NoError(t, err)
	require.Len(t, after, len(before))
}

func TestEndToEndChainOfThought(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, "math.jsonl",
		`{"id":"1","input":"What is 2+3?","target":"5"}`)

	eval := core.Evaluator{
		Dataset: dataset.NewFileDataset(path),
		Solver: solver.ChainOfThoughtSolver{
			Model:         model.MockModel{ResponseText: "Adding gives five.\nThe answer is: 5"},
			ExtractAnswer: true,
		},
		Scorer:  scorer.Includes{NormalizeWhitespace: true},
		Workers: 1,
	}

	report, err := eval.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Metrics.TotalSamples)
	require.Equal(t, 1.0, report.Metrics.SuccessRate)
}
