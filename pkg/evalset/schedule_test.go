package evalset

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lukasberglund/inspect-ai/pkg/core"
	"github.com/lukasberglund/inspect-ai/pkg/model"
)

func namedModel(name string) core.Model {
	return model.MockModel{NameValue: name}
}

func namedTask(name string) *Task {
	return &Task{Name: name}
}

func resolved(task *Task, m core.Model) ResolvedTask {
	return ResolvedTask{Task: task, Model: m}
}

func batchTaskNames(batch ScheduledBatch) []string {
	seen := map[string]bool{}
	var names []string
	for _, rt := range batch.Tasks {
		if !seen[rt.Task.Name] {
			seen[rt.Task.Name] = true
			names = append(names, rt.Task.Name)
		}
	}
	sort.Strings(names)
	return names
}

func TestSchedulePendingTasksSingleGroup(t *testing.T) {
	openai := namedModel("mockllm/openai")
	anthropic := namedModel("mockllm/anthropic")
	mock := namedModel("mockllm/model")

	var tasks []ResolvedTask
	for _, name := range []string{"task1", "task2", "task3", "task4", "task5"} {
		task := namedTask(name)
		for _, m := range []core.Model{openai, anthropic, mock} {
			tasks = append(tasks, resolved(task, m))
		}
	}

	schedule := schedulePendingTasks(tasks)
	require.Len(t, schedule, 1)
	require.Equal(t, []string{"mockllm/openai", "mockllm/anthropic", "mockllm/model"}, schedule[0].Models.Names())
	require.Equal(t, []string{"task1", "task2", "task3", "task4", "task5"}, batchTaskNames(schedule[0]))
	require.Len(t, schedule[0].Tasks, 15)
}

func TestSchedulePendingTasksVaryingModels(t *testing.T) {
	openai := namedModel("mockllm/openai")
	anthropic := namedModel("mockllm/anthropic")
	mock := namedModel("mockllm/model")

	task1 := namedTask("task1")
	task2 := namedTask("task2")
	task3 := namedTask("task3")
	task4 := namedTask("task4")
	task5 := namedTask("task5")

	tasks := []ResolvedTask{
		resolved(task1, openai),
		resolved(task1, anthropic),
		resolved(task1, mock),
		resolved(task2, openai),
		resolved(task4, openai),
		resolved(task2, anthropic),
		resolved(task4, anthropic),
		resolved(task3, mock),
		resolved(task5, mock),
	}

	schedule := schedulePendingTasks(tasks)
	require.Len(t, schedule, 3)

	// Ascending by model fan-out: singletons first, widest last.
	require.Equal(t, []string{"mockllm/model"}, schedule[0].Models.Names())
	require.Equal(t, []string{"task3", "task5"}, batchTaskNames(schedule[0]))

	require.Equal(t, []string{"mockllm/openai", "mockllm/anthropic"}, schedule[1].Models.Names())
	require.Equal(t, []string{"task2", "task4"}, batchTaskNames(schedule[1]))

	require.Equal(t, []string{"mockllm/openai", "mockllm/anthropic", "mockllm/model"}, schedule[2].Models.Names())
	require.Equal(t, []string{"task1"}, batchTaskNames(schedule[2]))
}

func TestSchedulePendingTasksPreservesEncounterOrderOnTies(t *testing.T) {
	a := namedModel("a")
	b := namedModel("b")

	task1 := namedTask("task1")
	task2 := namedTask("task2")

	tasks := []ResolvedTask{
		resolved(task1, b),
		resolved(task2, a),
	}

	schedule := schedulePendingTasks(tasks)
	require.Len(t, schedule, 2)
	require.Equal(t, []string{"b"}, schedule[0].Models.Names())
	require.Equal(t, []string{"a"}, schedule[1].Models.Names())
}

func TestScheduleRetryTasks(t *testing.T) {
	openai := namedModel("mockllm/openai")
	anthropic := namedModel("mockllm/anthropic")
	mock := namedModel("mockllm/model")

	task1 := namedTask("task1")
	task2 := namedTask("task2")
	task3 := namedTask("task3")
	task4 := namedTask("task4")
	task5 := namedTask("task5")

	tasks := []ResolvedTask{
		resolved(task1, openai),
		resolved(task1, anthropic),
		resolved(task1, mock),
		resolved(task2, openai),
		resolved(task4, openai),
		resolved(task2, anthropic),
		resolved(task4, anthropic),
		resolved(task3, mock),
		resolved(task5, mock),
	}

	schedule := scheduleRetryTasks(tasks)
	require.Len(t, schedule, 3)

	// One singleton batch per model, alphabetical by model name.
	require.Equal(t, []string{"mockllm/anthropic"}, schedule[0].Models.Names())
	require.Equal(t, []string{"task1", "task2", "task4"}, batchTaskNames(schedule[0]))

	require.Equal(t, []string{"mockllm/model"}, schedule[1].Models.Names())
	require.Equal(t, []string{"task1", "task3", "task5"}, batchTaskNames(schedule[1]))

	require.Equal(t, []string{"mockllm/openai"}, schedule[2].Models.Names())
	require.Equal(t, []string{"task1", "task2", "task4"}, batchTaskNames(schedule[2]))
}
