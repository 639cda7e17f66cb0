package evalset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lukasberglund/inspect-ai/pkg/core"
)

// Task is a logical benchmark definition, independent of which model runs
// it. Identity is (Name, Args): two tasks with the same name and structurally
// equal args are the same instance, and submitting both in one invocation is
// a configuration error.
type Task struct {
	Name    string
	Args    map[string]any
	Dataset core.Dataset
	Solver  func(model core.Model) core.Solver
	Scorer  core.Scorer
}

// Identifier derives the stable identity used for log matching. Args are
// serialized canonically (sorted keys) so the identity is deterministic
// across processes.
func (t *Task) Identifier() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	return t.Name + "@" + argsHash(t.Args)
}

func argsHash(args map[string]any) string {
	sum := sha256.Sum256([]byte(canonicalArgs(args)))
	return hex.EncodeToString(sum[:])[:8]
}

func canonicalArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value, err := json.Marshal(args[key])
		if err != nil {
			value = []byte(fmt.Sprintf("%v", args[key]))
		}
		parts = append(parts, key+"="+string(value))
	}
	return strings.Join(parts, ",")
}
