package evalset

import (
	"github.com/lukasberglund/inspect-ai/pkg/inspectlog"
)

// ListAllLogs enumerates log headers under logDir, recursively. Corrupt or
// partially-written artifacts are excluded rather than failing the scan.
func ListAllLogs(logDir string) ([]*inspectlog.EvalLog, error) {
	return inspectlog.List(logDir)
}

// LatestCompleted selects the authoritative log per (task identity, model):
// the most recently created log with a terminal status. Logs still at
// "started" represent abandoned or in-flight work and are never
// authoritative. With cleanupOlder set, every superseded log in a group that
// has an authoritative selection is deleted, stale "started" logs included.
func LatestCompleted(logs []*inspectlog.EvalLog, cleanupOlder bool) map[string]*inspectlog.EvalLog {
	groups := make(map[string][]*inspectlog.EvalLog)
	var order []string
	for _, log := range logs {
		key := log.Eval.TaskID + "/" + log.Eval.Model
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], log)
	}

	latest := make(map[string]*inspectlog.EvalLog, len(order))
	for _, key := range order {
		var selected *inspectlog.EvalLog
		for _, log := range groups[key] {
			if !log.Completed() {
				continue
			}
			if selected == nil || log.CreatedTime().After(selected.CreatedTime()) {
				selected = log
			}
		}
		if selected == nil {
			continue
		}
		latest[key] = selected
		if cleanupOlder {
			for _, log := range groups[key] {
				if log != selected && log.Location != "" {
					_ = inspectlog.Remove(log.Location)
				}
			}
		}
	}
	return latest
}

// matchPrevious finds the authoritative prior log for a resolved task, if
// any exists.
func matchPrevious(rt ResolvedTask, latest map[string]*inspectlog.EvalLog) *inspectlog.EvalLog {
	return latest[rt.logKey()]
}
