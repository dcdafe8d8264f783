package crossval

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/forecastcv/forecastcv/pkg/forecast"
	"github.com/forecastcv/forecastcv/pkg/metrics"
	"github.com/forecastcv/forecastcv/pkg/timeseries"
)

// Options configures a cross-validation run.
type Options struct {
	// Metrics are metric names resolved through the metrics registry before
	// dispatch, so workers receive self-contained scorers.
	Metrics []string
	// Scorers are ready scorer objects, appended after the resolved names.
	Scorers []metrics.Scorer
	// FitOptions are handed through to every Fit call.
	FitOptions forecast.FitOptions
	// Parallelism is the worker count: n > 0 uses n workers, 0 or negative
	// uses all available execution units.
	Parallelism int
	Logger      *logrus.Logger
}

// ResolveScorers resolves the configured metric names through the registry
// and appends any ready scorers. At least one scorer must result.
func (o Options) ResolveScorers() ([]metrics.Scorer, error) {
	resolved, err := metrics.Resolve(o.Metrics...)
	if err != nil {
		return nil, err
	}
	resolved = append(resolved, o.Scorers...)
	if len(resolved) == 0 {
		return nil, NewConfigurationErrorf("crossval: at least one metric or scorer is required")
	}
	return resolved, nil
}

func (o Options) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}

// ResolveParallelism maps the configured parallelism to a concrete worker
// count. Non-positive values mean "use all available execution units".
func ResolveParallelism(n int) int {
	if n > 0 {
		return n
	}
	if count, err := cpu.Counts(true); err == nil && count > 0 {
		return count
	}
	return runtime.NumCPU()
}

// Task is one independent fit-and-score unit: a fold, optionally under a
// candidate configuration. Tasks share no mutable state.
type Task struct {
	Candidate forecast.Params
	Fold      Fold
}

// EvaluateBatch dispatches every task over a bounded worker pool and returns
// the results at each task's logical position, independent of completion
// order. The batch is dispatched atomically: the first task failure cancels
// the remaining tasks and propagates unchanged (fail-fast, no fold
// skipping).
func EvaluateBatch(
	ctx context.Context,
	f forecast.Forecaster,
	y *timeseries.Series,
	x *timeseries.ExogTable,
	tasks []Task,
	scorers []metrics.Scorer,
	opts Options,
) ([]*FoldScore, error) {
	workers := ResolveParallelism(opts.Parallelism)
	opts.logger().WithFields(logrus.Fields{
		"tasks":   len(tasks),
		"workers": workers,
	}).Debug("dispatching fit-and-score batch")

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	results := make([]*FoldScore, len(tasks))
	for i, task := range tasks {
		i, task := i, task
		group.Go(func() error {
			fs, err := FitAndScore(gctx, f, y, x, task.Fold, scorers, task.Candidate, opts.FitOptions)
			if err != nil {
				return err
			}
			results[i] = fs
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Result holds per-fold score arrays, one per metric, in fold order.
type Result struct {
	Folds      int
	Scores     map[string][]float64
	FitTimes   []time.Duration
	ScoreTimes []time.Duration
}

// CrossValidate evaluates the forecaster over every fold of the window
// policy. Output arrays are ordered by fold number regardless of completion
// order.
func CrossValidate(
	ctx context.Context,
	f forecast.Forecaster,
	y *timeseries.Series,
	x *timeseries.ExogTable,
	policy WindowPolicy,
	opts Options,
) (*Result, error) {
	scorers, err := opts.ResolveScorers()
	if err != nil {
		return nil, err
	}
	folds, err := GenerateFolds(y.Len(), policy)
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, len(folds))
	for i, fold := range folds {
		tasks[i] = Task{Fold: fold}
	}
	results, err := EvaluateBatch(ctx, f, y, x, tasks, scorers, opts)
	if err != nil {
		return nil, err
	}

	out := &Result{
		Folds:      len(folds),
		Scores:     make(map[string][]float64, len(scorers)),
		FitTimes:   make([]time.Duration, len(results)),
		ScoreTimes: make([]time.Duration, len(results)),
	}
	for _, scorer := range scorers {
		out.Scores[scorer.Name()] = make([]float64, len(results))
	}
	for i, fs := range results {
		out.FitTimes[i] = fs.FitTime
		out.ScoreTimes[i] = fs.ScoreTime
		for name, value := range fs.Scores {
			out.Scores[name][i] = value
		}
	}
	return out, nil
}
