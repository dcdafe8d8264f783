package forecast

import (
	"context"
	"fmt"

	"github.com/spf13/cast"

	"github.com/forecastcv/forecastcv/pkg/timeseries"
)

// Naive strategy names.
const (
	StrategyLast     = "last"
	StrategyDrift    = "drift"
	StrategySeasonal = "seasonal"
)

// Naive is a baseline forecaster. Strategy "last" repeats the final
// observation, "drift" extrapolates the line between the first and last
// observations, and "seasonal" repeats the last full seasonal cycle of
// period sp.
type Naive struct {
	strategy string
	sp       int

	trained *timeseries.Series
}

// NewNaive returns a last-value naive forecaster.
func NewNaive() *Naive {
	return &Naive{strategy: StrategyLast, sp: 1}
}

// Name implements Forecaster.
func (n *Naive) Name() string { return "naive" }

// Configure implements Forecaster.
func (n *Naive) Configure(params Params) error {
	for key, value := range params {
		switch key {
		case "strategy":
			strategy, err := cast.ToStringE(value)
			if err != nil {
				return fmt.Errorf("forecast: naive strategy: %w", err)
			}
			switch strategy {
			case StrategyLast, StrategyDrift, StrategySeasonal:
				n.strategy = strategy
			default:
				return fmt.Errorf("forecast: unknown naive strategy %q", strategy)
			}
		case "sp":
			sp, err := cast.ToIntE(value)
			if err != nil {
				return fmt.Errorf("forecast: naive sp: %w", err)
			}
			if sp < 1 {
				return fmt.Errorf("forecast: naive sp must be >= 1, got %d", sp)
			}
			n.sp = sp
		default:
			return fmt.Errorf("forecast: naive has no parameter %q", key)
		}
	}
	return nil
}

// Fit implements Forecaster.
func (n *Naive) Fit(ctx context.Context, y *timeseries.Series, _ *timeseries.ExogTable, _ FitOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if y == nil {
		return fmt.Errorf("forecast: naive: nil training series")
	}
	if n.strategy == StrategySeasonal && y.Len() < n.sp {
		return fmt.Errorf("forecast: naive: series length %d shorter than seasonal period %d", y.Len(), n.sp)
	}
	n.trained = y
	return nil
}

// Predict implements Forecaster.
func (n *Naive) Predict(fh []int, _ *timeseries.ExogTable) (*timeseries.Series, error) {
	if n.trained == nil {
		return nil, fmt.Errorf("forecast: naive: predict before fit")
	}
	if len(fh) == 0 {
		return nil, fmt.Errorf("forecast: naive: empty horizon")
	}
	length := n.trained.Len()
	last := n.trained.ValueAt(length - 1)
	values := make([]float64, len(fh))
	for i, h := range fh {
		switch n.strategy {
		case StrategyDrift:
			slope := (last - n.trained.ValueAt(0)) / float64(length-1)
			values[i] = last + float64(h)*slope
		case StrategySeasonal:
			values[i] = n.trained.ValueAt(length - n.sp + (h-1)%n.sp)
		default:
			values[i] = last
		}
	}
	return timeseries.FromForecast(n.trained.Future(fh), values, n.trained.Freq())
}

// Clone implements Forecaster.
func (n *Naive) Clone() Forecaster {
	return &Naive{strategy: n.strategy, sp: n.sp}
}

// DefaultGrid implements Tunable.
func (n *Naive) DefaultGrid() map[string][]any {
	return map[string][]any{
		"strategy": {StrategyLast, StrategyDrift, StrategySeasonal},
		"sp":       {1, 12},
	}
}
