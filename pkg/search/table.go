package search

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/forecastcv/forecastcv/pkg/crossval"
	"github.com/forecastcv/forecastcv/pkg/forecast"
)

// ResultsTable holds the per-candidate search results: per-fold scores,
// mean/std aggregates, ranks per metric, and timing statistics. Rows follow
// the order candidates were first submitted. The table is immutable after
// construction.
type ResultsTable struct {
	Candidates []forecast.Params
	Folds      int
	Metrics    []string

	// SplitScores holds the raw per-fold scores: metric -> candidate ->
	// fold, all in logical order.
	SplitScores map[string][][]float64
	MeanScores  map[string][]float64
	StdScores   map[string][]float64
	// Ranks assigns rank 1 to the best mean under the metric's sign. Tied
	// means share the minimal rank of their group.
	Ranks map[string][]int

	FitTimes      [][]time.Duration
	ScoreTimes    [][]time.Duration
	MeanFitTime   []time.Duration
	MeanScoreTime []time.Duration
}

// buildTable aggregates candidate-major fold scores. signs maps metric name
// to its orientation. weights, when non-nil, weight folds in the mean and
// standard deviation.
func buildTable(
	candidates []forecast.Params,
	folds int,
	metricNames []string,
	signs map[string]int,
	scores [][]*crossval.FoldScore,
	weights []float64,
	log *logrus.Logger,
) (*ResultsTable, error) {
	if err := validateFoldWeights(weights, folds); err != nil {
		return nil, err
	}

	table := &ResultsTable{
		Candidates:    candidates,
		Folds:         folds,
		Metrics:       metricNames,
		SplitScores:   make(map[string][][]float64, len(metricNames)),
		MeanScores:    make(map[string][]float64, len(metricNames)),
		StdScores:     make(map[string][]float64, len(metricNames)),
		Ranks:         make(map[string][]int, len(metricNames)),
		FitTimes:      make([][]time.Duration, len(candidates)),
		ScoreTimes:    make([][]time.Duration, len(candidates)),
		MeanFitTime:   make([]time.Duration, len(candidates)),
		MeanScoreTime: make([]time.Duration, len(candidates)),
	}

	for _, name := range metricNames {
		perCandidate := make([][]float64, len(candidates))
		means := make([]float64, len(candidates))
		stds := make([]float64, len(candidates))
		for c := range candidates {
			row := make([]float64, folds)
			for k := 0; k < folds; k++ {
				row[k] = scores[c][k].Scores[name]
			}
			perCandidate[c] = row
			means[c], stds[c] = weightedMeanStd(row, weights)
			if !isFinite(means[c]) {
				log.WithFields(logrus.Fields{
					"metric":    "test_" + name,
					"candidate": c,
				}).Warn("non-finite mean score")
			}
		}
		table.SplitScores[name] = perCandidate
		table.MeanScores[name] = means
		table.StdScores[name] = stds
		table.Ranks[name] = rankMeans(means, signs[name])
	}

	for c := range candidates {
		fitRow := make([]time.Duration, folds)
		scoreRow := make([]time.Duration, folds)
		var fitSum, scoreSum time.Duration
		for k := 0; k < folds; k++ {
			fitRow[k] = scores[c][k].FitTime
			scoreRow[k] = scores[c][k].ScoreTime
			fitSum += fitRow[k]
			scoreSum += scoreRow[k]
		}
		table.FitTimes[c] = fitRow
		table.ScoreTimes[c] = scoreRow
		table.MeanFitTime[c] = fitSum / time.Duration(folds)
		table.MeanScoreTime[c] = scoreSum / time.Duration(folds)
	}
	return table, nil
}

// validateFoldWeights checks that weights, when present, carry one strictly
// positive value per fold. Zero or negative weights would make the weighted
// mean divide by a non-positive sum.
func validateFoldWeights(weights []float64, folds int) error {
	if weights == nil {
		return nil
	}
	if len(weights) != folds {
		return crossval.NewConfigurationErrorf(
			"search: %d fold weights for %d folds", len(weights), folds)
	}
	for i, w := range weights {
		if w <= 0 {
			return crossval.NewConfigurationErrorf(
				"search: fold weight %d must be positive, got %v", i, w)
		}
	}
	return nil
}

// weightedMeanStd computes the (optionally fold-weighted) mean and
// population standard deviation of one candidate's fold scores.
func weightedMeanStd(values []float64, weights []float64) (float64, float64) {
	var sum, weightSum float64
	for i, v := range values {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		sum += w * v
		weightSum += w
	}
	mean := sum / weightSum

	var varSum float64
	for i, v := range values {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		d := v - mean
		varSum += w * d * d
	}
	return mean, math.Sqrt(varSum / weightSum)
}

// rankMeans assigns competition ranks: the best mean under the sign gets
// rank 1, and candidates with equal means all receive the minimal rank of
// their tie group. Non-finite means rank behind every finite one.
func rankMeans(means []float64, sign int) []int {
	type entry struct {
		index int
		value float64
	}
	order := make([]entry, len(means))
	for i, m := range means {
		v := m * float64(sign)
		if !isFinite(m) {
			v = math.Inf(-1)
		}
		order[i] = entry{index: i, value: v}
	}
	// Stable insertion order for equal values keeps submission order within
	// tie groups.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j].value > order[j-1].value; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	ranks := make([]int, len(means))
	for pos, e := range order {
		if pos > 0 && e.value == order[pos-1].value {
			ranks[e.index] = ranks[order[pos-1].index]
			continue
		}
		ranks[e.index] = pos + 1
	}
	return ranks
}

// BestIndex returns the first candidate holding rank 1 for the metric.
func (t *ResultsTable) BestIndex(metric string) (int, error) {
	ranks, ok := t.Ranks[metric]
	if !ok {
		return 0, crossval.NewConfigurationErrorf("search: metric %q not in results table", metric)
	}
	if len(ranks) == 0 {
		return 0, crossval.NewConfigurationErrorf("search: results table has no candidates")
	}
	best := 0
	for i, r := range ranks {
		if r < ranks[best] {
			best = i
		}
	}
	return best, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
