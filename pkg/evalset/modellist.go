package evalset

import (
	"strings"

	"github.com/lukasberglund/inspect-ai/pkg/core"
)

// ModelList is an ordered, duplicate-free list of models used as a
// scheduling batch key. Members keep first-encountered order; the grouping
// algorithm never reorders them, which keeps batch output deterministic for
// deterministic input order.
type ModelList []core.Model

func (ml ModelList) contains(model core.Model) bool {
	for _, m := range ml {
		if m.Name() == model.Name() {
			return true
		}
	}
	return false
}

func (ml ModelList) add(model core.Model) ModelList {
	if ml.contains(model) {
		return ml
	}
	return append(ml, model)
}

// Names returns the member model names in order.
func (ml ModelList) Names() []string {
	names := make([]string, len(ml))
	for i, m := range ml {
		names[i] = m.Name()
	}
	return names
}

// Key is a stable string form used to compare lists structurally.
func (ml ModelList) Key() string {
	return strings.Join(ml.Names(), ",")
}

func (ml ModelList) String() string {
	return ml.Key()
}
