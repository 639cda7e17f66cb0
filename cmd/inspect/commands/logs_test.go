package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lukasberglund/inspect-ai/pkg/inspectlog"
)

func TestSortLogsForDisplay(t *testing.T) {
	logs := []*inspectlog.EvalLog{
		{Eval: inspectlog.EvalSpec{TaskID: "task2", Model: "b", Created: "2026-08-27T10:00:00Z"}},
		{Eval: inspectlog.EvalSpec{TaskID: "task1", Model: "b", Created: "2026-08-27T10:00:00Z"}},
		{Eval: inspectlog.EvalSpec{TaskID: "task1", Model: "a", Created: "2026-08-27T11:00:00Z"}},
		{Eval: inspectlog.EvalSpec{TaskID: "task1", Model: "a", Created: "2026-08-27T10:00:00Z"}},
	}

	sortLogsForDisplay(logs)

	require.Equal(t, "task1", logs[0].Eval.TaskID)
	require.Equal(t, "a", logs[0].Eval.Model)
	require.Equal(t, "2026-08-27T10:00:00Z", logs[0].Eval.Created)
	require.Equal(t, "2026-08-27T11:00:00Z", logs[1].Eval.Created)
	require.Equal(t, "b", logs[2].Eval.Model)
	require.Equal(t, "task2", logs[3].Eval.TaskID)
}
