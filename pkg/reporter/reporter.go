package reporter

import "github.com/lukasberglund/inspect-ai/pkg/core"

// Reporter writes an evaluation report.
type Reporter interface {
	Report(report core.EvalReport) error
}

const (
	FormatJSON  = "json"
	FormatTable = "table"
)
