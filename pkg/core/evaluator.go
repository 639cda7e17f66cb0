package core

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"
)

// Evaluator runs a dataset through a solver and scorer.
//
// Sample failures are recorded on the per-sample result and do not stop
// sibling samples. With FailOnError set, the first sample error cancels the
// remaining samples and the partial report is returned.
type Evaluator struct {
	Dataset     Dataset
	Solver      Solver
	Scorer      Scorer
	Workers     int
	FailOnError bool
	RateLimiter RateLimiter
	Progress    func(completed, total int)
}

// Run executes an evaluation and returns a report.
func (e *Evaluator) Run(ctx context.Context) (EvalReport, error) {
	if e.Dataset == nil || e.Solver == nil || e.Scorer == nil {
		return EvalReport{}, errors.New("evaluator: dataset, solver, and scorer are required")
	}

	workers := e.Workers
	if workers <= 0 {
		workers = 1
	}

	total := 0
	if count, err := e.Dataset.Len(ctx); err == nil {
		total = count
	}

	started := time.Now()
	runCtx, abort := context.WithCancel(ctx)
	defer abort()

	sampleCh, errCh := e.Dataset.Samples(runCtx)
	resultsCh := make(chan SampleResult, workers)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for sample := range sampleCh {
			if runCtx.Err() != nil {
				return
			}
			if e.RateLimiter != nil {
				if err := e.RateLimiter.Wait(runCtx); err != nil {
					return
				}
			}
			result := e.evaluateSample(runCtx, sample)
			select {
			case resultsCh <- result:
			case <-runCtx.Done():
				return
			}
		}
	}

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go worker()
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var results []SampleResult
	var datasetErr error
	for {
		select {
		case err, ok := <-errCh:
			if !ok {
				// Closed channels are always ready; nil out so the select
				// blocks on results alone instead of spinning.
				errCh = nil
				continue
			}
			if err != nil && datasetErr == nil && runCtx.Err() == nil {
				datasetErr = err
			}
		case result, ok := <-resultsCh:
			if !ok {
				if err := ctx.Err(); err != nil {
					return EvalReport{}, err
				}
				if datasetErr != nil {
					return EvalReport{}, datasetErr
				}
				return e.buildReport(results, started), nil
			}
			results = append(results, result)
			if e.Progress != nil {
				e.Progress(len(results), total)
			}
			if result.Error != "" && e.FailOnError {
				// Abort remaining samples; collected results still count.
				abort()
			}
		}
	}
}

func (e *Evaluator) evaluateSample(ctx context.Context, sample Sample) SampleResult {
	start := time.Now()
	result := SampleResult{Sample: sample}

	response, err := e.Solver.Solve(ctx, sample)
	if err != nil {
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}

	score, err := e.Scorer.Score(ctx, sample, response)
	if err != nil {
		result.Error = err.Error()
	}
	result.Response = response
	result.Score = score
	result.Duration = time.Since(start)
	return result
}

func (e *Evaluator) buildReport(results []SampleResult, started time.Time) EvalReport {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Sample.ID < results[j].Sample.ID
	})
	return EvalReport{
		TaskName:   e.Dataset.Name(),
		ModelName:  e.Solver.Name(),
		ScorerName: e.Scorer.Name(),
		Metrics:    CalculateMetrics(results),
		Results:    results,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
}

// CalculateMetrics aggregates per-sample results into summary metrics.
func CalculateMetrics(results []SampleResult) Metrics {
	if len(results) == 0 {
		return Metrics{}
	}

	var scores []float64
	var latencies []time.Duration
	var completed, passed int
	var tokens TokenUsage

	for _, result := range results {
		if result.Error == "" {
			completed++
		}
		scores = append(scores, result.Score.Value)
		latencies = append(latencies, result.Response.Latency)
		if result.Score.Passed {
			passed++
		}
		tokens.PromptTokens += result.Response.TokenUsage.PromptTokens
		tokens.CompletionTokens += result.Response.TokenUsage.CompletionTokens
		tokens.TotalTokens += result.Response.TokenUsage.TotalTokens
	}

	return Metrics{
		TotalSamples:     len(results),
		CompletedSamples: completed,
		SuccessRate:      float64(passed) / float64(len(results)),
		AverageScore:     average(scores),
		TokenUsage:       tokens,
		AvgLatency:       averageDuration(latencies),
		P95Latency:       percentileDuration(latencies, 0.95),
	}
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func averageDuration(values []time.Duration) time.Duration {
	if len(values) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range values {
		sum += v
	}
	return time.Duration(int64(sum) / int64(len(values)))
}

func percentileDuration(values []time.Duration, p float64) time.Duration {
	if len(values) == 0 {
		return 0
	}
	copied := make([]time.Duration, len(values))
	copy(copied, values)
	sort.Slice(copied, func(i, j int) bool { return copied[i] < copied[j] })

	if p <= 0 {
		return copied[0]
	}
	if p >= 1 {
		return copied[len(copied)-1]
	}

	index := p * float64(len(copied)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return copied[lower]
	}
	weight := index - float64(lower)
	return time.Duration(float64(copied[lower])*(1-weight) + float64(copied[upper])*weight)
}
