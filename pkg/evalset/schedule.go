package evalset

import (
	"sort"

	"github.com/lukasberglund/inspect-ai/pkg/core"
)

// ScheduledBatch is one unit of the round plan: every task in Tasks is
// dispatched while the batch runs, and Models records which backends the
// batch touches.
type ScheduledBatch struct {
	Models ModelList
	Tasks  []ResolvedTask
}

// schedulePendingTasks partitions first-pass work. Task identities sharing a
// structurally equal pending model set form one batch; batches run in
// ascending order of model fan-out, so tasks that only need one backend
// proceed immediately while wide-spanning tasks go last. Ties between
// equal-size model sets keep the first-encounter order of the input.
func schedulePendingTasks(tasks []ResolvedTask) []ScheduledBatch {
	// Pending model set per task identity, in encounter order.
	var idOrder []string
	idModels := make(map[string]ModelList)
	for _, rt := range tasks {
		id := rt.Identifier()
		if _, ok := idModels[id]; !ok {
			idOrder = append(idOrder, id)
		}
		idModels[id] = idModels[id].add(rt.Model)
	}

	// Cluster identities whose pending model sets are structurally equal.
	var batchOrder []string
	batches := make(map[string]*ScheduledBatch)
	idBatch := make(map[string]string, len(idOrder))
	for _, id := range idOrder {
		key := idModels[id].Key()
		if _, ok := batches[key]; !ok {
			batchOrder = append(batchOrder, key)
			batches[key] = &ScheduledBatch{Models: idModels[id]}
		}
		idBatch[id] = key
	}

	// Every resolved task for a clustered identity joins its batch, in
	// input order.
	for _, rt := range tasks {
		batch := batches[idBatch[rt.Identifier()]]
		batch.Tasks = append(batch.Tasks, rt)
	}

	scheduled := make([]ScheduledBatch, 0, len(batchOrder))
	for _, key := range batchOrder {
		scheduled = append(scheduled, *batches[key])
	}
	sort.SliceStable(scheduled, func(i, j int) bool {
		return len(scheduled[i].Models) < len(scheduled[j].Models)
	})
	return scheduled
}

// scheduleRetryTasks partitions retry work one model at a time: after
// partial completions the pending model sets have usually diverged per task,
// so the safest unit of parallel dispatch is all remaining work for a single
// backend. Batches are ordered by model name.
func scheduleRetryTasks(tasks []ResolvedTask) []ScheduledBatch {
	var names []string
	models := make(map[string]core.Model)
	byModel := make(map[string][]ResolvedTask)
	for _, rt := range tasks {
		name := rt.Model.Name()
		if _, ok := byModel[name]; !ok {
			names = append(names, name)
			models[name] = rt.Model
		}
		byModel[name] = append(byModel[name], rt)
	}
	sort.Strings(names)

	scheduled := make([]ScheduledBatch, 0, len(names))
	for _, name := range names {
		scheduled = append(scheduled, ScheduledBatch{
			Models: ModelList{models[name]},
			Tasks:  byModel[name],
		})
	}
	return scheduled
}
