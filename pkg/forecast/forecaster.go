// Package forecast defines the forecaster protocol consumed by the
// cross-validation core, a registry of forecaster factories, and a small set
// of built-in baseline forecasters.
package forecast

import (
	"context"

	"github.com/forecastcv/forecastcv/pkg/timeseries"
)

// Params is one hyperparameter configuration: a sparse mapping from
// parameter name to value. Different candidates may carry different key
// sets.
type Params map[string]any

// Clone returns an independent shallow copy.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// FitOptions carries opaque keyword options handed through to Fit.
type FitOptions map[string]any

// Forecaster is the capability set the core requires of any forecasting
// model. The core never inspects forecaster internals; it only calls this
// protocol.
type Forecaster interface {
	// Name identifies the forecaster kind, matching its registry key.
	Name() string

	// Configure applies a hyperparameter configuration. It returns an error
	// for unknown parameter names or invalid values.
	Configure(params Params) error

	// Fit trains on the given series and optional exogenous table.
	Fit(ctx context.Context, y *timeseries.Series, x *timeseries.ExogTable, opts FitOptions) error

	// Predict forecasts at the given positive offsets past the end of the
	// training series. The returned series carries the predicted time index.
	Predict(fh []int, x *timeseries.ExogTable) (*timeseries.Series, error)

	// Clone returns an independent, untrained copy with the same
	// configuration.
	Clone() Forecaster
}

// Tunable is implemented by forecasters that ship a default tuning grid, so
// a search can run without an explicit candidate space.
type Tunable interface {
	DefaultGrid() map[string][]any
}
