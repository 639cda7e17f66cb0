package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukasberglund/inspect-ai/pkg/cache"
	"github.com/lukasberglund/inspect-ai/pkg/core"
	"github.com/lukasberglund/inspect-ai/pkg/dataset"
	"github.com/lukasberglund/inspect-ai/pkg/evalset"
	"github.com/lukasberglund/inspect-ai/pkg/model"
	"github.com/lukasberglund/inspect-ai/pkg/registry"
	"github.com/lukasberglund/inspect-ai/pkg/scorer"
	"github.com/lukasberglund/inspect-ai/pkg/solver"
)

func newEvalSetCommand() *cobra.Command {
	var (
		modelRefs      []string
		logDir         string
		retryAttempts  int
		retryWait      time.Duration
		maxTasks       int
		workers        int
		failOnError    bool
		cleanupLogs    bool
		scorerName     string
		solverName     string
		promptTemplate string
		cacheDir       string
		rateLimitRPS   float64
		rateLimitBurst int
	)

	cmd := &cobra.Command{
		Use:   "eval-set dataset...",
		Short: "Run evaluation tasks across models with retry and resume",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := modelRefs
			if len(refs) == 0 {
				refs = appConfig.Models
			}
			if len(refs) == 0 {
				return errors.New("at least one --model is required")
			}
			logDirResolved := resolveString(logDir, appConfig.LogDir)
			if logDirResolved == "" {
				logDirResolved = "./logs"
			}
			scorerResolved := resolveString(scorerName, appConfig.Scorer)
			if scorerResolved == "" {
				scorerResolved = "exact"
			}
			solverResolved := resolveString(solverName, appConfig.Solver)
			if solverResolved == "" {
				solverResolved = "basic"
			}

			sc, err := buildScorer(scorerResolved)
			if err != nil {
				return err
			}

			models := make([]core.Model, 0, len(refs))
			reg := registry.Default()
			for _, ref := range refs {
				m, err := reg.Get(ref)
				if err != nil {
					return err
				}
				models = append(models, m)
			}
			if dir := resolveString(cacheDir, appConfig.CacheDir); dir != "" {
				models, err = wrapWithCache(models, dir)
				if err != nil {
					return err
				}
			}

			var limiter core.RateLimiter
			if rps := resolveFloat(rateLimitRPS, appConfig.RateLimitRPS); rps > 0 {
				rl, stop, err := core.NewRateLimiter(rps, rateLimitBurst)
				if err != nil {
					return err
				}
				defer stop()
				limiter = rl
			}

			tasks := make([]*evalset.Task, 0, len(args))
			for _, path := range args {
				ds := dataset.NewFileDataset(path)
				tasks = append(tasks, &evalset.Task{
					Name: ds.Name(),
					Args: map[string]any{
						"scorer": scorerResolved,
						"solver": solverResolved,
					},
					Dataset: ds,
					Solver:  solverFactory(solverResolved, promptTemplate),
					Scorer:  sc,
				})
			}

			success, logs, err := evalset.Run(cmd.Context(), evalset.Options{
				Tasks:         tasks,
				Models:        models,
				LogDir:        logDirResolved,
				RetryAttempts: resolveInt(retryAttempts, appConfig.RetryAttempts, 0),
				RetryWait:     retryWait,
				MaxTasks:      resolveInt(maxTasks, appConfig.MaxTasks, 0),
				Workers:       resolveInt(workers, appConfig.Workers, 1),
				FailOnError:   failOnError,
				CleanupLogs:   cleanupLogs,
				RateLimiter:   limiter,
				Logger:        logger,
			})
			if err != nil {
				return err
			}

			printLogTable(cmd.OutOrStdout(), logs)
			if !success {
				return errors.New("eval set finished with failures")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&modelRefs, "model", nil, "model reference (provider/model), repeatable")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "log directory (local path)")
	cmd.Flags().IntVar(&retryAttempts, "retry-attempts", 0, "additional rounds after the first")
	cmd.Flags().DurationVar(&retryWait, "retry-wait", 30*time.Second, "delay between rounds")
	cmd.Flags().IntVar(&maxTasks, "max-tasks", 0, "max concurrently running tasks (0 = unbounded)")
	cmd.Flags().IntVar(&workers, "workers", 0, "sample workers per task")
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "abort a task on its first sample error")
	cmd.Flags().BoolVar(&cleanupLogs, "cleanup-logs", false, "delete superseded log artifacts while planning")
	cmd.Flags().StringVar(&scorerName, "scorer", "", "scorer name (exact, includes, numeric)")
	cmd.Flags().StringVar(&solverName, "solver", "", "solver name (basic, chain-of-thought)")
	cmd.Flags().StringVar(&promptTemplate, "prompt-template", "", "prompt template with {{input}} placeholder")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "wrap models with a disk response cache at this directory")
	cmd.Flags().Float64Var(&rateLimitRPS, "rate-limit-rps", 0, "max model requests per second (0 = unlimited)")
	cmd.Flags().IntVar(&rateLimitBurst, "rate-limit-burst", 1, "rate limiter burst capacity")

	return cmd
}

func wrapWithCache(models []core.Model, dir string) ([]core.Model, error) {
	c, err := cache.New(dir, 0)
	if err != nil {
		return nil, err
	}
	wrapped := make([]core.Model, len(models))
	for i, m := range models {
		wrapped[i] = model.CachedModel{Model: m, Cache: c}
	}
	return wrapped, nil
}

func buildScorer(name string) (core.Scorer, error) {
	switch name {
	case "exact":
		return scorer.ExactMatch{CaseSensitive: false, NormalizeWhitespace: true}, nil
	case "includes":
		return scorer.Includes{CaseSensitive: false, NormalizeWhitespace: true}, nil
	case "numeric":
		return scorer.NumericMatch{}, nil
	default:
		return nil, fmt.Errorf("unknown scorer: %s", name)
	}
}

func solverFactory(name, promptTemplate string) func(core.Model) core.Solver {
	switch name {
	case "chain-of-thought", "cot":
		return func(m core.Model) core.Solver {
			return solver.ChainOfThoughtSolver{
				Model:          m,
				PromptTemplate: promptTemplate,
				ExtractAnswer:  true,
			}
		}
	case "few-shot":
		return func(m core.Model) core.Solver {
			return solver.FewShotSolver{
				Model:          m,
				PromptTemplate: promptTemplate,
			}
		}
	default:
		return func(m core.Model) core.Solver {
			return solver.BasicSolver{
				Model:          m,
				PromptTemplate: promptTemplate,
			}
		}
	}
}
