package evalset

import (
	"errors"
	"fmt"

	"github.com/lukasberglund/inspect-ai/pkg/core"
)

// ErrDuplicateTask indicates two submitted tasks share the same identity,
// which makes log matching ambiguous. Surfaced before any execution.
var ErrDuplicateTask = errors.New("evalset: duplicate task identifier")

// SandboxEnv is an opaque execution-environment handle attached to a
// resolved task. Its lifecycle is owned by the execution collaborator, not
// the scheduler.
type SandboxEnv struct {
	Type   string
	Config string
}

// ResolvedTask is one concrete (task, model) execution unit. Created once
// when a run is planned and never mutated; Sequence records submission order
// and is used for log naming and deterministic output ordering, never for
// scheduling priority.
type ResolvedTask struct {
	Task        *Task
	Model       core.Model
	Sandbox     *SandboxEnv
	Sequence    int
	FailOnError bool
}

// Identifier returns the logical task identity of this unit.
func (rt ResolvedTask) Identifier() string {
	return rt.Task.Identifier()
}

func (rt ResolvedTask) logKey() string {
	return rt.Identifier() + "/" + rt.Model.Name()
}

// resolveTasks builds the cross product of tasks and models in submission
// order. Identity uniqueness is validated first; on violation no resolved
// tasks are produced.
func resolveTasks(tasks []*Task, models []core.Model, failOnError bool) ([]ResolvedTask, error) {
	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		id := task.Identifier()
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, id)
		}
		seen[id] = true
	}

	resolved := make([]ResolvedTask, 0, len(tasks)*len(models))
	sequence := 0
	for _, task := range tasks {
		for _, model := range models {
			resolved = append(resolved, ResolvedTask{
				Task:        task,
				Model:       model,
				Sequence:    sequence,
				FailOnError: failOnError,
			})
			sequence++
		}
	}
	return resolved, nil
}
