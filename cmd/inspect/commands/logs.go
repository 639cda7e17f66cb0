package commands

import (
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lukasberglund/inspect-ai/pkg/evalset"
	"github.com/lukasberglund/inspect-ai/pkg/inspectlog"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	startedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// newLogsCommand exposes the log index to external tooling: list every
// artifact, or only the authoritative (latest completed) one per task and
// model, optionally deleting the rest.
func newLogsCommand() *cobra.Command {
	var (
		logDir     string
		latestOnly bool
		cleanup    bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List eval log artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			logDirResolved := resolveString(logDir, appConfig.LogDir)
			if logDirResolved == "" {
				logDirResolved = "./logs"
			}

			logs, err := evalset.ListAllLogs(logDirResolved)
			if err != nil {
				return err
			}
			if latestOnly || cleanup {
				latest := evalset.LatestCompleted(logs, cleanup)
				logs = logs[:0]
				for _, log := range latest {
					logs = append(logs, log)
				}
			}
			sortLogsForDisplay(logs)
			printLogTable(cmd.OutOrStdout(), logs)
			return nil
		},
	}

	cmd.Flags().StringVar(&logDir, "log-dir", "", "log directory (local path)")
	cmd.Flags().BoolVar(&latestOnly, "latest", false, "show only the authoritative log per task and model")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "delete superseded log artifacts (implies --latest)")

	return cmd
}

// sortLogsForDisplay orders rows by task, model, then creation time so
// listings are stable across runs.
func sortLogsForDisplay(logs []*inspectlog.EvalLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].Eval.TaskID != logs[j].Eval.TaskID {
			return logs[i].Eval.TaskID < logs[j].Eval.TaskID
		}
		if logs[i].Eval.Model != logs[j].Eval.Model {
			return logs[i].Eval.Model < logs[j].Eval.Model
		}
		return logs[i].Eval.Created < logs[j].Eval.Created
	})
}

func printLogTable(w io.Writer, logs []*inspectlog.EvalLog) {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Task", "Model", "Status", "Created", "Location"})
	for _, log := range logs {
		table.Append([]string{
			log.Eval.Task,
			log.Eval.Model,
			renderStatus(log.Status),
			log.Eval.Created,
			log.Location,
		})
	}
	table.Render()
}

func renderStatus(status string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return status
	}
	switch status {
	case inspectlog.StatusSuccess:
		return successStyle.Render(status)
	case inspectlog.StatusError:
		return errorStyle.Render(status)
	default:
		return startedStyle.Render(status)
	}
}
