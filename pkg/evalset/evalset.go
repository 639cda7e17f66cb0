package evalset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lukasberglund/inspect-ai/pkg/core"
	"github.com/lukasberglund/inspect-ai/pkg/inspectlog"
)

// Runner executes one resolved task and returns its per-sample outcomes.
// The default runner drives a core.Evaluator; tests substitute their own.
type Runner interface {
	Run(ctx context.Context, task ResolvedTask) (core.EvalReport, error)
}

// Options configures one orchestration invocation.
type Options struct {
	Tasks  []*Task
	Models []core.Model

	// LogDir is the log store location. Matching logs already present make
	// the invocation resumable: (task, model) pairs with an authoritative
	// success log are not re-executed.
	LogDir string

	// RetryAttempts is the maximum number of additional rounds after the
	// first. RetryWait is slept between rounds.
	RetryAttempts int
	RetryWait     time.Duration

	// MaxTasks bounds how many resolved tasks run concurrently; zero or
	// negative means unbounded.
	MaxTasks int

	// FailOnError aborts a task on its first sample error instead of
	// recording the error and continuing with sibling samples.
	FailOnError bool

	// Workers sets per-task sample concurrency for the default runner.
	Workers int

	// RateLimiter, when set, throttles model calls made by the default
	// runner across all concurrently running tasks.
	RateLimiter core.RateLimiter

	// CleanupLogs deletes superseded log artifacts while planning rounds.
	CleanupLogs bool

	Logger *zap.Logger
	Runner Runner
}

// Run executes every (task, model) pairing until all succeed, retries are
// exhausted, or ctx is cancelled. Configuration errors (duplicate task
// identity, unusable log directory) are returned before any execution; task
// and sample failures are absorbed into the log/retry cycle and only shape
// the boolean outcome. Returned logs hold one authoritative record per
// pairing, ordered by submission sequence.
func Run(ctx context.Context, opts Options) (bool, []*inspectlog.EvalLog, error) {
	if len(opts.Tasks) == 0 {
		return false, nil, errors.New("evalset: no tasks provided")
	}
	if len(opts.Models) == 0 {
		return false, nil, errors.New("evalset: no models provided")
	}
	if opts.LogDir == "" {
		return false, nil, errors.New("evalset: log directory is required")
	}
	if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
		return false, nil, fmt.Errorf("evalset: log directory: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := opts.Runner
	if runner == nil {
		runner = &evalRunner{workers: opts.Workers, limiter: opts.RateLimiter}
	}

	resolved, err := resolveTasks(opts.Tasks, opts.Models, opts.FailOnError)
	if err != nil {
		return false, nil, err
	}

	for round := 0; ; round++ {
		pending, latest, err := pendingTasks(opts.LogDir, resolved, opts.CleanupLogs)
		if err != nil {
			return false, nil, err
		}
		if len(pending) == 0 {
			logs, ok := collectFinalLogs(resolved, latest)
			logger.Info("eval set complete",
				zap.Int("tasks", len(resolved)),
				zap.Int("rounds", round))
			return ok, logs, nil
		}
		if round > opts.RetryAttempts {
			logs, _ := collectFinalLogs(resolved, latest)
			logger.Warn("eval set retries exhausted",
				zap.Int("pending", len(pending)),
				zap.Int("rounds", round))
			return false, logs, nil
		}
		if round > 0 {
			logger.Info("retrying failed tasks",
				zap.Int("round", round),
				zap.Int("pending", len(pending)),
				zap.Duration("wait", opts.RetryWait))
			select {
			case <-time.After(opts.RetryWait):
			case <-ctx.Done():
				return false, nil, ctx.Err()
			}
		}

		var schedule []ScheduledBatch
		if round == 0 {
			schedule = schedulePendingTasks(pending)
		} else {
			schedule = scheduleRetryTasks(pending)
		}
		for _, batch := range schedule {
			logger.Debug("running batch",
				zap.String("models", batch.Models.Key()),
				zap.Int("tasks", len(batch.Tasks)))
			if err := runBatch(ctx, batch, opts, runner, logger); err != nil {
				return false, nil, err
			}
		}
	}
}

// pendingTasks rescans the log store and filters out every resolved task
// whose authoritative prior log is a success. Error and abandoned "started"
// logs both leave the task pending.
func pendingTasks(logDir string, resolved []ResolvedTask, cleanup bool) ([]ResolvedTask, map[string]*inspectlog.EvalLog, error) {
	logs, err := ListAllLogs(logDir)
	if err != nil {
		return nil, nil, fmt.Errorf("evalset: scanning logs: %w", err)
	}
	latest := LatestCompleted(logs, cleanup)

	var pending []ResolvedTask
	for _, rt := range resolved {
		if prev := matchPrevious(rt, latest); prev != nil && prev.Status == inspectlog.StatusSuccess {
			continue
		}
		pending = append(pending, rt)
	}
	return pending, latest, nil
}

// runBatch executes one batch with bounded concurrency. Cancellation is
// observed at dispatch boundaries: no new task starts once signalled, and
// in-flight tasks keep whatever log state they last flushed.
func runBatch(ctx context.Context, batch ScheduledBatch, opts Options, runner Runner, logger *zap.Logger) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if opts.MaxTasks > 0 {
		group.SetLimit(opts.MaxTasks)
	}
	for _, rt := range batch.Tasks {
		if ctx.Err() != nil {
			break
		}
		rt := rt
		group.Go(func() error {
			return executeTask(groupCtx, rt, opts.LogDir, runner, logger)
		})
	}
	return group.Wait()
}

// executeTask writes the "started" log, runs the task, and finalizes the
// same artifact. An abort between the two writes leaves the started log as
// the durable signal of incomplete work.
func executeTask(ctx context.Context, rt ResolvedTask, logDir string, runner Runner, logger *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log := inspectlog.NewLog(inspectlog.EvalSpec{
		Task:     rt.Task.Name,
		TaskID:   rt.Identifier(),
		TaskArgs: rt.Task.Args,
		Model:    rt.Model.Name(),
		Sequence: rt.Sequence,
	})
	if _, err := inspectlog.Write(logDir, log); err != nil {
		return fmt.Errorf("evalset: writing started log: %w", err)
	}
	logger.Debug("task started",
		zap.String("task", rt.Identifier()),
		zap.String("model", rt.Model.Name()))

	report, err := runner.Run(ctx, rt)
	if err != nil && ctx.Err() != nil {
		// Interrupted: leave the started log intact.
		return ctx.Err()
	}

	log.Finalize(report, err)
	if _, err := inspectlog.Write(logDir, log); err != nil {
		return fmt.Errorf("evalset: finalizing log: %w", err)
	}
	logger.Debug("task finished",
		zap.String("task", rt.Identifier()),
		zap.String("model", rt.Model.Name()),
		zap.String("status", log.Status))
	return nil
}

// collectFinalLogs assembles one authoritative log per resolved task in
// submission order, reading full sample bodies. Errored logs are included,
// never dropped; ok is true only when every pairing has a success log.
func collectFinalLogs(resolved []ResolvedTask, latest map[string]*inspectlog.EvalLog) ([]*inspectlog.EvalLog, bool) {
	logs := make([]*inspectlog.EvalLog, 0, len(resolved))
	ok := true
	for _, rt := range resolved {
		header := matchPrevious(rt, latest)
		if header == nil {
			ok = false
			continue
		}
		if header.Status != inspectlog.StatusSuccess {
			ok = false
		}
		if full, err := inspectlog.Read(header.Location); err == nil {
			logs = append(logs, full)
		} else {
			logs = append(logs, header)
		}
	}
	return logs, ok
}

// evalRunner is the default execution collaborator, backed by the sample
// evaluator.
type evalRunner struct {
	workers int
	limiter core.RateLimiter
}

func (r *evalRunner) Run(ctx context.Context, rt ResolvedTask) (core.EvalReport, error) {
	if rt.Task.Dataset == nil || rt.Task.Solver == nil || rt.Task.Scorer == nil {
		return core.EvalReport{}, fmt.Errorf("evalset: task %s: dataset, solver, and scorer are required", rt.Task.Name)
	}
	eval := core.Evaluator{
		Dataset:     rt.Task.Dataset,
		Solver:      rt.Task.Solver(rt.Model),
		Scorer:      rt.Task.Scorer,
		Workers:     r.workers,
		FailOnError: rt.FailOnError,
		RateLimiter: r.limiter,
	}
	return eval.Run(ctx)
}
