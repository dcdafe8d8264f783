package search

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forecastcv/forecastcv/pkg/crossval"
	"github.com/forecastcv/forecastcv/pkg/forecast"
	"github.com/forecastcv/forecastcv/pkg/timeseries"
)

var searchStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func lineSeries(t *testing.T, n int) *timeseries.Series {
	t.Helper()
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i + 1)
	}
	s, err := timeseries.NewRange(searchStart, 24*time.Hour, values)
	require.NoError(t, err)
	return s
}

// shiftedForecaster predicts with its index shifted one frequency step
// forward, violating alignment.
type shiftedForecaster struct {
	trained *timeseries.Series
}

func (s *shiftedForecaster) Name() string                    { return "shifted" }
func (s *shiftedForecaster) Configure(forecast.Params) error { return nil }
func (s *shiftedForecaster) Clone() forecast.Forecaster      { return &shiftedForecaster{} }

func (s *shiftedForecaster) Fit(_ context.Context, y *timeseries.Series, _ *timeseries.ExogTable, _ forecast.FitOptions) error {
	s.trained = y
	return nil
}

func (s *shiftedForecaster) Predict(fh []int, _ *timeseries.ExogTable) (*timeseries.Series, error) {
	times := s.trained.Future(fh)
	values := make([]float64, len(fh))
	for i := range times {
		times[i] = times[i].Add(s.trained.Freq())
		values[i] = s.trained.ValueAt(s.trained.Len() - 1)
	}
	return timeseries.FromForecast(times, values, s.trained.Freq())
}

func nullEngine() (*Engine, *logrustest.Hook) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewEngine(logger), hook
}

func baseOptions() Options {
	return Options{
		Policy: crossval.WindowPolicy{
			Kind:          crossval.Expanding,
			InitialWindow: 10,
			StepLength:    1,
			Horizon:       []int{1, 2, 3},
		},
		Metrics:     []string{"mape", "mae"},
		RefitMetric: "mape",
		Parallelism: 2,
	}
}

// TestGridSearchSelectsLowerError searches two naive strategies on a linear
// series: drift forecasts it exactly, last-value does not, so drift must
// take rank 1 under the smaller-better mape and become the best candidate.
func TestGridSearchSelectsLowerError(t *testing.T) {
	engine, _ := nullEngine()
	y := lineSeries(t, 14)

	grid := Grid{"strategy": {"last", "drift"}}
	result, err := engine.Search(context.Background(), forecast.NewNaive(), y, nil, grid, baseOptions())
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, forecast.Params{"strategy": "drift"}, result.BestParams)
	assert.InDelta(t, 0, result.BestScore, 1e-12)
	assert.Nil(t, result.BestForecaster)

	table := result.Table
	require.NotNil(t, table)
	require.Len(t, table.Candidates, 2)
	assert.Equal(t, 1, table.Folds)
	assert.Equal(t, []string{"mape", "mae"}, table.Metrics)

	driftIdx := result.BestIndex
	lastIdx := 1 - driftIdx
	assert.Equal(t, 1, table.Ranks["mape"][driftIdx])
	assert.Equal(t, 2, table.Ranks["mape"][lastIdx])
	assert.Less(t, table.MeanScores["mape"][driftIdx], table.MeanScores["mape"][lastIdx])
}

func TestSearchRanksRespectSign(t *testing.T) {
	engine, _ := nullEngine()
	y := lineSeries(t, 14)

	opts := baseOptions()
	opts.Metrics = []string{"mape", "r2"}
	opts.RefitMetric = "r2"

	result, err := engine.Search(context.Background(), forecast.NewNaive(), y, nil, Grid{"strategy": {"last", "drift"}}, opts)
	require.NoError(t, err)

	// r2 is larger-better: the rank-1 candidate's mean r2 is the maximum.
	table := result.Table
	best := result.BestIndex
	for i := range table.Candidates {
		assert.GreaterOrEqual(t, table.MeanScores["r2"][best], table.MeanScores["r2"][i])
	}
	assert.Equal(t, forecast.Params{"strategy": "drift"}, result.BestParams)
}

func TestSearchTiedCandidatesShareRankOne(t *testing.T) {
	engine, _ := nullEngine()
	y := lineSeries(t, 14)

	// sp is irrelevant under the last-value strategy, so both candidates
	// produce identical scores.
	grid := Grid{"strategy": {"last"}, "sp": {1, 2}}
	result, err := engine.Search(context.Background(), forecast.NewNaive(), y, nil, grid, baseOptions())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1}, result.Table.Ranks["mape"])
	assert.Equal(t, 0, result.BestIndex, "first submitted candidate wins a full tie")
}

func TestSearchUnknownRefitMetric(t *testing.T) {
	engine, _ := nullEngine()
	y := lineSeries(t, 14)

	opts := baseOptions()
	opts.RefitMetric = "sharpe"
	_, err := engine.Search(context.Background(), forecast.NewNaive(), y, nil, Grid{"strategy": {"last"}}, opts)
	require.Error(t, err)
	var cfgErr *crossval.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSearchRefitsOnFullSeries(t *testing.T) {
	engine, _ := nullEngine()
	y := lineSeries(t, 14)

	opts := baseOptions()
	opts.Refit = true
	result, err := engine.Search(context.Background(), forecast.NewNaive(), y, nil, Grid{"strategy": {"drift"}}, opts)
	require.NoError(t, err)

	require.NotNil(t, result.BestForecaster)
	assert.GreaterOrEqual(t, result.RefitTime, time.Duration(0))

	// The refit model saw the entire series: one step past the series end
	// continues the full line.
	pred, err := result.BestForecaster.Predict([]int{1}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 15, pred.ValueAt(0), 1e-12)
	assert.Equal(t, y.TimeAt(13).Add(24*time.Hour), pred.TimeAt(0))
}

// TestSearchMisalignedForecasterAborts runs a forecaster whose predictions
// come back shifted one step: the search must surface the alignment
// failure and return no partial results table.
func TestSearchMisalignedForecasterAborts(t *testing.T) {
	engine, _ := nullEngine()
	y := lineSeries(t, 14)

	result, err := engine.Search(context.Background(), &shiftedForecaster{}, y, nil, Grid{"ignored": {1, 2}}, baseOptions())
	require.Error(t, err)
	var alignErr *crossval.PredictionAlignmentError
	assert.ErrorAs(t, err, &alignErr)
	assert.Nil(t, result)
}

func TestSearchWithFoldWeights(t *testing.T) {
	engine, _ := nullEngine()
	y := lineSeries(t, 16)

	opts := baseOptions()
	opts.FoldWeights = []float64{1, 2, 1}
	result, err := engine.Search(context.Background(), forecast.NewNaive(), y, nil, Grid{"strategy": {"last", "drift"}}, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Table.Folds)
	assert.Equal(t, forecast.Params{"strategy": "drift"}, result.BestParams)

	opts.FoldWeights = []float64{1, 1}
	_, err = engine.Search(context.Background(), forecast.NewNaive(), y, nil, Grid{"strategy": {"last"}}, opts)
	require.Error(t, err)
	var cfgErr *crossval.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSearchRejectsNonPositiveFoldWeights(t *testing.T) {
	engine, _ := nullEngine()
	y := lineSeries(t, 16)

	var cfgErr *crossval.ConfigurationError
	for _, weights := range [][]float64{{1, -1, 1}, {1, 0, 1}} {
		opts := baseOptions()
		opts.FoldWeights = weights
		_, err := engine.Search(context.Background(), forecast.NewNaive(), y, nil, Grid{"strategy": {"last"}}, opts)
		require.Error(t, err)
		assert.ErrorAs(t, err, &cfgErr)

		_, err = engine.Compare(context.Background(), []string{"naive"}, y, nil, "mape", opts)
		require.Error(t, err)
		assert.ErrorAs(t, err, &cfgErr)
	}
}

func TestSearchWarnsOnNonFiniteMean(t *testing.T) {
	engine, hook := nullEngine()

	// A zero actual inside the test window makes mape infinite.
	values := make([]float64, 14)
	for i := range values {
		values[i] = float64(i - 10)
	}
	y, err := timeseries.NewRange(searchStart, 24*time.Hour, values)
	require.NoError(t, err)

	result, err := engine.Search(context.Background(), forecast.NewNaive(), y, nil, Grid{"strategy": {"last"}}, baseOptions())
	require.NoError(t, err, "non-finite means warn, they do not abort")
	require.NotNil(t, result)

	warned := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "expected a non-finite mean warning")
}

func TestRandomSearchIsReproducible(t *testing.T) {
	engine, _ := nullEngine()
	y := lineSeries(t, 20)

	opts := baseOptions()
	opts.Metrics = []string{"mae"}
	opts.RefitMetric = "mae"
	strategy := Random{
		Space: map[string]Distribution{
			"window": IntRange{Low: 2, High: 8},
		},
		Iterations: 5,
		Seed:       99,
	}

	first, err := engine.Search(context.Background(), forecast.NewMovingAverage(), y, nil, strategy, opts)
	require.NoError(t, err)
	second, err := engine.Search(context.Background(), forecast.NewMovingAverage(), y, nil, strategy, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Table.Candidates, second.Table.Candidates)
	assert.Equal(t, first.Table.MeanScores, second.Table.MeanScores)
	assert.Equal(t, first.BestParams, second.BestParams)
}

func TestExtendAppendsCandidates(t *testing.T) {
	engine, _ := nullEngine()
	y := lineSeries(t, 14)

	initial, err := engine.Search(context.Background(), forecast.NewNaive(), y, nil, Grid{"strategy": {"last"}}, baseOptions())
	require.NoError(t, err)
	require.Len(t, initial.Table.Candidates, 1)

	extended, err := engine.Extend(context.Background(), initial, forecast.NewNaive(), y, nil, Grid{"strategy": {"drift"}}, baseOptions())
	require.NoError(t, err)
	require.Len(t, extended.Table.Candidates, 2)

	// Submission order is preserved: the original candidate stays row 0.
	assert.Equal(t, forecast.Params{"strategy": "last"}, extended.Table.Candidates[0])
	assert.Equal(t, forecast.Params{"strategy": "drift"}, extended.Table.Candidates[1])
	assert.Equal(t, initial.Table.SplitScores["mape"][0], extended.Table.SplitScores["mape"][0])
	assert.Equal(t, forecast.Params{"strategy": "drift"}, extended.BestParams)

	_, err = engine.Extend(context.Background(), nil, forecast.NewNaive(), y, nil, Grid{"strategy": {"drift"}}, baseOptions())
	assert.Error(t, err)
}

func TestExtendRejectsChangedMetrics(t *testing.T) {
	engine, _ := nullEngine()
	y := lineSeries(t, 14)

	initial, err := engine.Search(context.Background(), forecast.NewNaive(), y, nil, Grid{"strategy": {"last"}}, baseOptions())
	require.NoError(t, err)

	// The prior table only holds fold scores for its own metrics; a changed
	// set cannot be re-aggregated and would read missing scores as zero.
	opts := baseOptions()
	opts.Metrics = []string{"rmse", "mae"}
	opts.RefitMetric = "mae"
	result, err := engine.Extend(context.Background(), initial, forecast.NewNaive(), y, nil, Grid{"strategy": {"drift"}}, opts)
	require.Error(t, err)
	assert.Nil(t, result)
	var cfgErr *crossval.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	// The same metrics in a different order still extend.
	opts = baseOptions()
	opts.Metrics = []string{"mae", "mape"}
	extended, err := engine.Extend(context.Background(), initial, forecast.NewNaive(), y, nil, Grid{"strategy": {"drift"}}, opts)
	require.NoError(t, err)
	assert.Equal(t, forecast.Params{"strategy": "drift"}, extended.BestParams)
}

func TestCompareRanksForecasters(t *testing.T) {
	engine, _ := nullEngine()
	y := lineSeries(t, 20)

	opts := baseOptions()
	opts.Metrics = []string{"mae", "rmse"}
	comparison, err := engine.Compare(context.Background(), []string{"naive", "ma"}, y, nil, "mae", opts)
	require.NoError(t, err)

	require.Equal(t, []string{"naive", "ma"}, comparison.Names)
	require.Len(t, comparison.Ranks["mae"], 2)
	best := comparison.BestIndex
	for i := range comparison.Names {
		assert.LessOrEqual(t, comparison.MeanScores["mae"][best], comparison.MeanScores["mae"][i])
	}

	_, err = engine.Compare(context.Background(), nil, y, nil, "sharpe", opts)
	assert.Error(t, err)
}

func TestWeightedMeanStd(t *testing.T) {
	mean, std := weightedMeanStd([]float64{1, 3}, nil)
	assert.InDelta(t, 2, mean, 1e-12)
	assert.InDelta(t, 1, std, 1e-12)

	mean, std = weightedMeanStd([]float64{1, 3}, []float64{3, 1})
	assert.InDelta(t, 1.5, mean, 1e-12)
	assert.InDelta(t, math.Sqrt((3*0.25+1*2.25)/4), std, 1e-12)
}
