package forecast

import (
	"context"
	"fmt"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/spf13/cast"

	"github.com/forecastcv/forecastcv/pkg/timeseries"
)

// Moving-average methods.
const (
	MethodSMA = "sma"
	MethodEMA = "ema"
)

// MovingAverage forecasts a flat line at the last simple or exponential
// moving-average level of the training series.
type MovingAverage struct {
	method string
	window int

	trained *timeseries.Series
	level   float64
}

// NewMovingAverage returns an SMA forecaster with a 5-observation window.
func NewMovingAverage() *MovingAverage {
	return &MovingAverage{method: MethodSMA, window: 5}
}

// Name implements Forecaster.
func (m *MovingAverage) Name() string { return "ma" }

// Configure implements Forecaster.
func (m *MovingAverage) Configure(params Params) error {
	for key, value := range params {
		switch key {
		case "method":
			method, err := cast.ToStringE(value)
			if err != nil {
				return fmt.Errorf("forecast: ma method: %w", err)
			}
			if method != MethodSMA && method != MethodEMA {
				return fmt.Errorf("forecast: unknown ma method %q", method)
			}
			m.method = method
		case "window":
			window, err := cast.ToIntE(value)
			if err != nil {
				return fmt.Errorf("forecast: ma window: %w", err)
			}
			if window < 1 {
				return fmt.Errorf("forecast: ma window must be >= 1, got %d", window)
			}
			m.window = window
		default:
			return fmt.Errorf("forecast: ma has no parameter %q", key)
		}
	}
	return nil
}

// Fit implements Forecaster. The smoothed level is computed once at fit
// time via the indicator pipeline.
func (m *MovingAverage) Fit(ctx context.Context, y *timeseries.Series, _ *timeseries.ExogTable, _ FitOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if y == nil {
		return fmt.Errorf("forecast: ma: nil training series")
	}
	if y.Len() < m.window {
		return fmt.Errorf("forecast: ma: series length %d shorter than window %d", y.Len(), m.window)
	}

	var smoothed []float64
	switch m.method {
	case MethodEMA:
		ema := trend.NewEmaWithPeriod[float64](m.window)
		smoothed = helper.ChanToSlice(ema.Compute(helper.SliceToChan(y.Values())))
	default:
		sma := trend.NewSmaWithPeriod[float64](m.window)
		smoothed = helper.ChanToSlice(sma.Compute(helper.SliceToChan(y.Values())))
	}
	if len(smoothed) == 0 {
		return fmt.Errorf("forecast: ma: smoothing produced no output for length %d window %d", y.Len(), m.window)
	}

	m.trained = y
	m.level = smoothed[len(smoothed)-1]
	return nil
}

// Predict implements Forecaster.
func (m *MovingAverage) Predict(fh []int, _ *timeseries.ExogTable) (*timeseries.Series, error) {
	if m.trained == nil {
		return nil, fmt.Errorf("forecast: ma: predict before fit")
	}
	if len(fh) == 0 {
		return nil, fmt.Errorf("forecast: ma: empty horizon")
	}
	values := make([]float64, len(fh))
	for i := range values {
		values[i] = m.level
	}
	return timeseries.FromForecast(m.trained.Future(fh), values, m.trained.Freq())
}

// Clone implements Forecaster.
func (m *MovingAverage) Clone() Forecaster {
	return &MovingAverage{method: m.method, window: m.window}
}

// DefaultGrid implements Tunable.
func (m *MovingAverage) DefaultGrid() map[string][]any {
	return map[string][]any{
		"method": {MethodSMA, MethodEMA},
		"window": {3, 5, 10},
	}
}
