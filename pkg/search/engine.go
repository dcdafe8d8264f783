package search

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/forecastcv/forecastcv/pkg/crossval"
	"github.com/forecastcv/forecastcv/pkg/forecast"
	"github.com/forecastcv/forecastcv/pkg/metrics"
	"github.com/forecastcv/forecastcv/pkg/timeseries"
)

// State names the phases of one search run.
type State string

const (
	StateConfigured State = "configured"
	StateSearching  State = "searching"
	StateScored     State = "scored"
	StateRefit      State = "refit"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Options configures a hyperparameter search.
type Options struct {
	Policy crossval.WindowPolicy
	// Metrics are metric names resolved through the metrics registry;
	// Scorers are ready scorer objects appended after them.
	Metrics []string
	Scorers []metrics.Scorer
	// RefitMetric ranks candidates and selects the winner. It must name one
	// of the configured scorers.
	RefitMetric string
	// Refit retrains the winning configuration on the entire series.
	Refit       bool
	FitOptions  forecast.FitOptions
	Parallelism int
	// FoldWeights, when non-nil, weight folds in mean/std aggregation. One
	// weight per fold.
	FoldWeights []float64
}

// Result is the outcome of one search run.
type Result struct {
	RunID       string
	State       State
	Table       *ResultsTable
	BestIndex   int
	BestParams  forecast.Params
	BestScore   float64
	// BestForecaster is the refit winner, nil unless refitting was
	// requested.
	BestForecaster forecast.Forecaster
	RefitTime      time.Duration
	Elapsed        time.Duration
}

// Engine runs hyperparameter searches. It holds no per-search state, so one
// engine may serve concurrent searches on different data.
type Engine struct {
	logger *logrus.Logger
}

// NewEngine creates a search engine logging to the given logger.
func NewEngine(logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{logger: logger}
}

// Search cross-validates every candidate produced by the strategy, ranks
// the results, and selects (optionally refits) the best candidate. A single
// candidate failure aborts the whole search.
func (e *Engine) Search(
	ctx context.Context,
	f forecast.Forecaster,
	y *timeseries.Series,
	x *timeseries.ExogTable,
	strategy Strategy,
	opts Options,
) (*Result, error) {
	candidates, err := strategy.Candidates()
	if err != nil {
		return nil, err
	}
	return e.run(ctx, f, y, x, candidates, nil, opts)
}

// Extend searches additional candidates and appends them to a previous
// result's table. Candidate order in the final table reflects the order
// candidates were first submitted. The window policy, metric set, and data
// must match the original run.
func (e *Engine) Extend(
	ctx context.Context,
	prev *Result,
	f forecast.Forecaster,
	y *timeseries.Series,
	x *timeseries.ExogTable,
	strategy Strategy,
	opts Options,
) (*Result, error) {
	if prev == nil || prev.Table == nil {
		return nil, crossval.NewConfigurationErrorf("search: extend requires a previous result")
	}
	candidates, err := strategy.Candidates()
	if err != nil {
		return nil, err
	}
	return e.run(ctx, f, y, x, candidates, prev.Table, opts)
}

func (e *Engine) run(
	ctx context.Context,
	f forecast.Forecaster,
	y *timeseries.Series,
	x *timeseries.ExogTable,
	candidates []forecast.Params,
	prior *ResultsTable,
	opts Options,
) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := e.logger.WithFields(logrus.Fields{
		"run_id":     runID,
		"forecaster": f.Name(),
	})
	state := StateConfigured

	fail := func(err error) (*Result, error) {
		state = StateFailed
		log.WithField("state", state).WithError(err).Error("search failed")
		return nil, err
	}

	cvOpts := crossval.Options{
		Metrics:     opts.Metrics,
		Scorers:     opts.Scorers,
		FitOptions:  opts.FitOptions,
		Parallelism: opts.Parallelism,
		Logger:      e.logger,
	}
	scorers, err := cvOpts.ResolveScorers()
	if err != nil {
		return fail(err)
	}

	metricNames := make([]string, len(scorers))
	signs := make(map[string]int, len(scorers))
	refitKnown := false
	for i, s := range scorers {
		metricNames[i] = s.Name()
		signs[s.Name()] = s.Sign()
		if s.Name() == opts.RefitMetric {
			refitKnown = true
		}
	}
	if !refitKnown {
		return fail(crossval.NewConfigurationErrorf(
			"search: refit metric %q is not among the configured scorers %v", opts.RefitMetric, metricNames))
	}

	folds, err := crossval.GenerateFolds(y.Len(), opts.Policy)
	if err != nil {
		return fail(err)
	}
	if prior != nil {
		if prior.Folds != len(folds) {
			return fail(crossval.NewConfigurationErrorf(
				"search: extension fold count %d does not match prior table's %d", len(folds), prior.Folds))
		}
		if !sameMetricSet(prior.Metrics, metricNames) {
			return fail(crossval.NewConfigurationErrorf(
				"search: extension metrics %v do not match prior table's %v", metricNames, prior.Metrics))
		}
	}

	state = StateSearching
	log.WithFields(logrus.Fields{
		"state":      state,
		"candidates": len(candidates),
		"folds":      len(folds),
	}).Info("evaluating candidates")

	// One flattened candidate-major batch, not nested per-candidate
	// batches.
	tasks := make([]crossval.Task, 0, len(candidates)*len(folds))
	for _, candidate := range candidates {
		for _, fold := range folds {
			tasks = append(tasks, crossval.Task{Candidate: candidate, Fold: fold})
		}
	}
	flat, err := crossval.EvaluateBatch(ctx, f, y, x, tasks, scorers, cvOpts)
	if err != nil {
		return fail(err)
	}

	// Regroup into candidate-major, fold-minor order.
	grouped := make([][]*crossval.FoldScore, len(candidates))
	for c := range candidates {
		grouped[c] = flat[c*len(folds) : (c+1)*len(folds)]
	}

	allCandidates := candidates
	if prior != nil {
		allCandidates = append(append([]forecast.Params{}, prior.Candidates...), candidates...)
		grouped = append(priorScores(prior), grouped...)
	}

	table, err := buildTable(allCandidates, len(folds), metricNames, signs, grouped, opts.FoldWeights, e.logger)
	if err != nil {
		return fail(err)
	}
	state = StateScored

	bestIndex, err := table.BestIndex(opts.RefitMetric)
	if err != nil {
		return fail(err)
	}
	result := &Result{
		RunID:      runID,
		Table:      table,
		BestIndex:  bestIndex,
		BestParams: allCandidates[bestIndex].Clone(),
		BestScore:  table.MeanScores[opts.RefitMetric][bestIndex],
	}

	if opts.Refit {
		state = StateRefit
		best := f.Clone()
		if err := best.Configure(result.BestParams); err != nil {
			return fail(err)
		}
		refitStart := time.Now()
		if err := best.Fit(ctx, y, x, opts.FitOptions); err != nil {
			return fail(err)
		}
		result.RefitTime = time.Since(refitStart)
		result.BestForecaster = best
	}

	state = StateDone
	result.State = state
	result.Elapsed = time.Since(start)
	log.WithFields(logrus.Fields{
		"state":      state,
		"best_index": result.BestIndex,
		"best_score": result.BestScore,
		"elapsed":    result.Elapsed,
	}).Info("search complete")
	return result, nil
}

// sameMetricSet reports whether two metric name lists contain the same
// names, ignoring order. Extensions re-aggregate prior per-fold scores, so
// every metric of the new run must already exist in the prior table.
func sameMetricSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, name := range a {
		seen[name] = true
	}
	for _, name := range b {
		if !seen[name] {
			return false
		}
	}
	return true
}

// priorScores reconstructs candidate-major fold scores from a previous
// table so an extension can re-aggregate without re-evaluating.
func priorScores(prior *ResultsTable) [][]*crossval.FoldScore {
	out := make([][]*crossval.FoldScore, len(prior.Candidates))
	for c := range prior.Candidates {
		row := make([]*crossval.FoldScore, prior.Folds)
		for k := 0; k < prior.Folds; k++ {
			scores := make(map[string]float64, len(prior.Metrics))
			for _, name := range prior.Metrics {
				scores[name] = prior.SplitScores[name][c][k]
			}
			row[k] = &crossval.FoldScore{
				FoldNumber: k,
				Scores:     scores,
				FitTime:    prior.FitTimes[c][k],
				ScoreTime:  prior.ScoreTimes[c][k],
			}
		}
		out[c] = row
	}
	return out
}
