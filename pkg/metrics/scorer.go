// Package metrics defines the scorer protocol used to evaluate forecasts and
// a registry of built-in forecasting error metrics.
package metrics

import "fmt"

// Sign of a metric: whether larger values are better.
const (
	LargerBetter  = 1
	SmallerBetter = -1
)

// Scorer is a named metric capability. Sign reports +1 when larger values
// are better and -1 when smaller values are better; ranking code uses it to
// orient comparisons without inspecting metric semantics.
type Scorer interface {
	Name() string
	Sign() int
	Evaluate(actual, predicted []float64) (float64, error)
}

type funcScorer struct {
	name string
	sign int
	fn   func(actual, predicted []float64) (float64, error)
}

func (s *funcScorer) Name() string { return s.name }
func (s *funcScorer) Sign() int    { return s.sign }

func (s *funcScorer) Evaluate(actual, predicted []float64) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, fmt.Errorf("metrics: %s: actual length %d does not match predicted length %d", s.name, len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return 0, fmt.Errorf("metrics: %s: empty input", s.name)
	}
	return s.fn(actual, predicted)
}

// NewScorer wraps a metric function as a Scorer. Self-contained scorers of
// this form are safe to hand to parallel workers.
func NewScorer(name string, sign int, fn func(actual, predicted []float64) (float64, error)) Scorer {
	return &funcScorer{name: name, sign: sign, fn: fn}
}
