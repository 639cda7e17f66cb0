package reporter

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/lukasberglund/inspect-ai/pkg/core"
)

type TableReporter struct {
	Writer io.Writer
}

func (r TableReporter) Report(report core.EvalReport) error {
	table := tablewriter.NewWriter(r.Writer)
	table.Header([]string{"Metric", "Value"})
	table.Append([]string{"Task", report.TaskName})
	table.Append([]string{"Model", report.ModelName})
	table.Append([]string{"Total samples", fmt.Sprintf("%d", report.Metrics.TotalSamples)})
	table.Append([]string{"Completed", fmt.Sprintf("%d", report.Metrics.CompletedSamples)})
	table.Append([]string{"Success rate", fmt.Sprintf("%.2f", report.Metrics.SuccessRate)})
	table.Append([]string{"Average score", fmt.Sprintf("%.2f", report.Metrics.AverageScore)})
	table.Append([]string{"Avg latency", report.Metrics.AvgLatency.String()})
	table.Append([]string{"P95 latency", report.Metrics.P95Latency.String()})
	table.Render()
	return nil
}
