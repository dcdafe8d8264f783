package search

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/forecastcv/forecastcv/pkg/crossval"
	"github.com/forecastcv/forecastcv/pkg/forecast"
	"github.com/forecastcv/forecastcv/pkg/timeseries"
)

// Comparison ranks a set of forecasters cross-validated under identical
// folds and metrics.
type Comparison struct {
	Names   []string
	Metrics []string

	MeanScores map[string][]float64
	StdScores  map[string][]float64
	Ranks      map[string][]int

	MeanFitTime []time.Duration
	SortMetric  string
	BestIndex   int
}

// Compare cross-validates every named forecaster from the registry under
// the same window policy and ranks them by the sort metric. Each forecaster
// runs with its default configuration; use Search to tune one of them.
func (e *Engine) Compare(
	ctx context.Context,
	names []string,
	y *timeseries.Series,
	x *timeseries.ExogTable,
	sortMetric string,
	opts Options,
) (*Comparison, error) {
	if len(names) == 0 {
		names = forecast.RegisteredNames()
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
		return nil, err
	}

	metricNames := make([]string, len(scorers))
	signs := make(map[string]int, len(scorers))
	sortKnown := false
	for i, s := range scorers {
		metricNames[i] = s.Name()
		signs[s.Name()] = s.Sign()
		if s.Name() == sortMetric {
			sortKnown = true
		}
	}
	if !sortKnown {
		return nil, crossval.NewConfigurationErrorf(
			"search: sort metric %q is not among the configured scorers %v", sortMetric, metricNames)
	}

	comparison := &Comparison{
		Names:       names,
		Metrics:     metricNames,
		MeanScores:  make(map[string][]float64, len(metricNames)),
		StdScores:   make(map[string][]float64, len(metricNames)),
		Ranks:       make(map[string][]int, len(metricNames)),
		MeanFitTime: make([]time.Duration, len(names)),
		SortMetric:  sortMetric,
	}
	for _, name := range metricNames {
		comparison.MeanScores[name] = make([]float64, len(names))
		comparison.StdScores[name] = make([]float64, len(names))
	}

	for i, name := range names {
		f, err := forecast.Create(name)
		if err != nil {
			return nil, err
		}
		e.logger.WithFields(logrus.Fields{
			"forecaster": name,
		}).Debug("cross-validating forecaster")

		result, err := crossval.CrossValidate(ctx, f, y, x, opts.Policy, cvOpts)
		if err != nil {
			return nil, err
		}
		if err := validateFoldWeights(opts.FoldWeights, result.Folds); err != nil {
			return nil, err
		}
		for _, metric := range metricNames {
			mean, std := weightedMeanStd(result.Scores[metric], opts.FoldWeights)
			comparison.MeanScores[metric][i] = mean
			comparison.StdScores[metric][i] = std
		}
		var fitSum time.Duration
		for _, d := range result.FitTimes {
			fitSum += d
		}
		comparison.MeanFitTime[i] = fitSum / time.Duration(len(result.FitTimes))
	}

	for _, metric := range metricNames {
		comparison.Ranks[metric] = rankMeans(comparison.MeanScores[metric], signs[metric])
	}
	best := 0
	for i, r := range comparison.Ranks[sortMetric] {
		if r < comparison.Ranks[sortMetric][best] {
			best = i
		}
	}
	comparison.BestIndex = best
	return comparison, nil
}
