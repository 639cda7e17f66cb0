package core

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memDataset struct {
	name    string
	samples []Sample
}

func (d memDataset) Name() string { return d.name }

func (d memDataset) Len(_ context.Context) (int, error) { return len(d.samples), nil }

func (d memDataset) Samples(ctx context.Context) (<-chan Sample, <-chan error) {
	sampleCh := make(chan Sample)
	errCh := make(chan error, 1)
	go func() {
		defer close(sampleCh)
		defer close(errCh)
		for _, sample := range d.samples {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case sampleCh <- sample:
			}
		}
	}()
	return sampleCh, errCh
}

type echoSolver struct {
	failOn string
}

func (s echoSolver) Name() string { return "echo" }

func (s echoSolver) Solve(_ context.Context, sample Sample) (Response, error) {
	if s.failOn != "" && sample.ID == s.failOn {
		return Response{}, fmt.Errorf("solver failed on %s", sample.ID)
	}
	return Response{Content: sample.Input, TokenUsage: TokenUsage{TotalTokens: 10}}, nil
}

type targetScorer struct{}

func (targetScorer) Name() string { return "target" }

func (targetScorer) Score(_ context.Context, sample Sample, response Response) (Score, error) {
	passed := response.Content == sample.Target
	value := 0.0
	if passed {
		value = 1
	}
	return Score{Value: value, Max: 1, Passed: passed}, nil
}

func testSamples(n int) []Sample {
	samples := make([]Sample, n)
	for i := range samples {
		id := fmt.Sprintf("s%02d", i+1)
		samples[i] = Sample{ID: id, Input: id, Target: id}
	}
	return samples
}

func TestEvaluatorRun(t *testing.T) {
	eval := Evaluator{
		Dataset: memDataset{name: "echo", samples: testSamples(5)},
		Solver:  echoSolver{},
		Scorer:  targetScorer{},
		Workers: 3,
	}

	report, err := eval.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "echo", report.TaskName)
	require.Len(t, report.Results, 5)
	require.False(t, report.Failed())
	require.Equal(t, 5, report.Metrics.TotalSamples)
	require.Equal(t, 5, report.Metrics.CompletedSamples)
	require.Equal(t, 1.0, report.Metrics.SuccessRate)
	require.Equal(t, 50, report.Metrics.TokenUsage.TotalTokens)

	// Results come back sorted by sample ID regardless of worker order.
	for i, result := range report.Results {
		require.Equal(t, fmt.Sprintf("s%02d", i+1), result.Sample.ID)
	}
}

func TestEvaluatorRecordsSampleErrors(t *testing.T) {
	eval := Evaluator{
		Dataset: memDataset{name: "echo", samples: testSamples(4)},
		Solver:  echoSolver{failOn: "s02"},
		Scorer:  targetScorer{},
	}

	report, err := eval.Run(context.Background())
	require.NoError(t, err)
	require.True(t, report.Failed())
	require.Len(t, report.Results, 4)
	require.Equal(t, 3, report.Metrics.CompletedSamples)

	var failed int
	for _, result := range report.Results {
		if result.Error != "" {
			failed++
			require.Equal(t, "s02", result.Sample.ID)
		}
	}
	require.Equal(t, 1, failed)
}

func TestEvaluatorFailOnErrorAborts(t *testing.T) {
	eval := Evaluator{
		Dataset:     memDataset{name: "echo", samples: testSamples(50)},
		Solver:      echoSolver{failOn: "s01"},
		Scorer:      targetScorer{},
		FailOnError: true,
	}

	report, err := eval.Run(context.Background())
	require.NoError(t, err)
	require.True(t, report.Failed())
	require.Less(t, len(report.Results), 50)
}

func TestEvaluatorMissingCollaborators(t *testing.T) {
	eval := Evaluator{Solver: echoSolver{}, Scorer: targetScorer{}}
	_, err := eval.Run(context.Background())
	require.Error(t, err)
}

func TestEvaluatorContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eval := Evaluator{
		Dataset: memDataset{name: "echo", samples: testSamples(10)},
		Solver:  echoSolver{},
		Scorer:  targetScorer{},
	}
	_, err := eval.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

type sleepSolver struct {
	delay time.Duration
}

func (s sleepSolver) Name() string { return "sleep" }

func (s sleepSolver) Solve(ctx context.Context, sample Sample) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-time.After(s.delay):
	}
	return Response{Content: sample.Input}, nil
}

func cpuTime(t *testing.T) time.Duration {
	t.Helper()
	var ru syscall.Rusage
	require.NoError(t, syscall.Getrusage(syscall.RUSAGE_SELF, &ru))
	return time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
}

func TestEvaluatorCollectorIdlesDuringSlowSamples(t *testing.T) {
	eval := Evaluator{
		Dataset: memDataset{name: "slow", samples: testSamples(2)},
		Solver:  sleepSolver{delay: 300 * time.Millisecond},
		Scorer:  targetScorer{},
		Workers: 1,
	}

	before := cpuTime(t)
	report, err := eval.Run(context.Background())
	spent := cpuTime(t) - before

	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	// The dataset closes its error channel as soon as the last sample is
	// handed off; the collector must block on results after that, not spin
	// on the closed channel while the final sample is still evaluating.
	require.Less(t, spent, 200*time.Millisecond)
}

func TestCalculateMetricsEmpty(t *testing.T) {
	require.Equal(t, Metrics{}, CalculateMetrics(nil))
}

func TestPercentileDuration(t *testing.T) {
	values := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
		40 * time.Millisecond,
	}
	require.Equal(t, 10*time.Millisecond, percentileDuration(values, 0))
	require.Equal(t, 40*time.Millisecond, percentileDuration(values, 1))
	require.Equal(t, 25*time.Millisecond, percentileDuration(values, 0.5))
}

func TestReportFailed(t *testing.T) {
	require.False(t, EvalReport{}.Failed())
	require.True(t, EvalReport{Results: []SampleResult{{Error: errors.New("x").Error()}}}.Failed())
}
