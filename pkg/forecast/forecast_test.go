package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forecastcv/forecastcv/pkg/timeseries"
)

func trainSeries(t *testing.T, values []float64) *timeseries.Series {
	t.Helper()
	s, err := timeseries.NewRange(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 24*time.Hour, values)
	require.NoError(t, err)
	return s
}

func TestNaiveLast(t *testing.T) {
	y := trainSeries(t, []float64{1, 2, 3, 4, 5})
	f := NewNaive()
	require.NoError(t, f.Fit(context.Background(), y, nil, nil))

	pred, err := f.Predict([]int{1, 2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5, 5}, pred.Values())
	assert.Equal(t, y.TimeAt(4).Add(24*time.Hour), pred.TimeAt(0))
}

func TestNaiveDrift(t *testing.T) {
	y := trainSeries(t, []float64{1, 2, 3, 4, 5})
	f := NewNaive()
	require.NoError(t, f.Configure(Params{"strategy": "drift"}))
	require.NoError(t, f.Fit(context.Background(), y, nil, nil))

	pred, err := f.Predict([]int{1, 3}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 6, pred.ValueAt(0), 1e-12)
	assert.InDelta(t, 8, pred.ValueAt(1), 1e-12)
}

func TestNaiveSeasonal(t *testing.T) {
	y := trainSeries(t, []float64{10, 20, 30, 11, 21, 31})
	f := NewNaive()
	require.NoError(t, f.Configure(Params{"strategy": "seasonal", "sp": 3}))
	require.NoError(t, f.Fit(context.Background(), y, nil, nil))

	pred, err := f.Predict([]int{1, 2, 3, 4}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 21, 31, 11}, pred.Values())
}

func TestNaiveConfigureRejectsBadParams(t *testing.T) {
	f := NewNaive()
	assert.Error(t, f.Configure(Params{"strategy": "bogus"}))
	assert.Error(t, f.Configure(Params{"sp": 0}))
	assert.Error(t, f.Configure(Params{"nope": 1}))
}

func TestNaivePredictBeforeFit(t *testing.T) {
	f := NewNaive()
	_, err := f.Predict([]int{1}, nil)
	assert.Error(t, err)
}

func TestCloneIsUntrainedAndIndependent(t *testing.T) {
	y := trainSeries(t, []float64{1, 2, 3, 4})
	f := NewNaive()
	require.NoError(t, f.Configure(Params{"strategy": "drift"}))
	require.NoError(t, f.Fit(context.Background(), y, nil, nil))

	clone := f.Clone().(*Naive)
	assert.Equal(t, StrategyDrift, clone.strategy)
	_, err := clone.Predict([]int{1}, nil)
	assert.Error(t, err, "clone must not carry trained state")

	// Training the clone must not disturb the original.
	require.NoError(t, clone.Fit(context.Background(), trainSeries(t, []float64{9, 9, 9}), nil, nil))
	pred, err := f.Predict([]int{1}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 5, pred.ValueAt(0), 1e-12)
}

func TestMovingAverageSMA(t *testing.T) {
	y := trainSeries(t, []float64{2, 4, 6, 8, 10, 12})
	f := NewMovingAverage()
	require.NoError(t, f.Configure(Params{"window": 3}))
	require.NoError(t, f.Fit(context.Background(), y, nil, nil))

	pred, err := f.Predict([]int{1, 2}, nil)
	require.NoError(t, err)
	// Last SMA(3) level = mean(8, 10, 12).
	assert.InDelta(t, 10, pred.ValueAt(0), 1e-9)
	assert.InDelta(t, 10, pred.ValueAt(1), 1e-9)
}

func TestMovingAverageWindowTooLarge(t *testing.T) {
	y := trainSeries(t, []float64{1, 2, 3})
	f := NewMovingAverage()
	require.NoError(t, f.Configure(Params{"window": 10}))
	assert.Error(t, f.Fit(context.Background(), y, nil, nil))
}

func TestRegistryCreate(t *testing.T) {
	for _, name := range []string{"naive", "ma"} {
		f, err := Create(name)
		require.NoError(t, err)
		assert.Equal(t, name, f.Name())
		_, ok := f.(Tunable)
		assert.True(t, ok, "%s should expose a default grid", name)
	}
	_, err := Create("missing")
	assert.Error(t, err)
}

func TestParamsClone(t *testing.T) {
	p := Params{"a": 1}
	c := p.Clone()
	c["a"] = 2
	assert.Equal(t, 1, p["a"])
	assert.Nil(t, Params(nil).Clone())
}
