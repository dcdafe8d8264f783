// Package search implements grid and random hyperparameter search over the
// rolling-origin cross-validation core.
package search

import (
	"math"
	"math/rand"
	"sort"

	"github.com/forecastcv/forecastcv/pkg/crossval"
	"github.com/forecastcv/forecastcv/pkg/forecast"
)

// Strategy generates the ordered candidate configuration sequence for one
// search.
type Strategy interface {
	Candidates() ([]forecast.Params, error)
}

// Grid is an exhaustive search space: every parameter maps to the list of
// values to try, and candidates are the full cartesian product. Enumeration
// order is deterministic: parameter names sorted, rightmost name varying
// fastest.
type Grid map[string][]any

// Candidates implements Strategy.
func (g Grid) Candidates() ([]forecast.Params, error) {
	if len(g) == 0 {
		return nil, crossval.NewConfigurationErrorf("search: empty parameter grid")
	}
	names := make([]string, 0, len(g))
	for name := range g {
		if len(g[name]) == 0 {
			return nil, crossval.NewConfigurationErrorf("search: parameter %q has no values", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	total := 1
	for _, name := range names {
		total *= len(g[name])
	}
	candidates := make([]forecast.Params, 0, total)
	odometer := make([]int, len(names))
	for {
		candidate := make(forecast.Params, len(names))
		for i, name := range names {
			candidate[name] = g[name][odometer[i]]
		}
		candidates = append(candidates, candidate)

		pos := len(names) - 1
		for pos >= 0 {
			odometer[pos]++
			if odometer[pos] < len(g[names[pos]]) {
				break
			}
			odometer[pos] = 0
			pos--
		}
		if pos < 0 {
			return candidates, nil
		}
	}
}

// Distribution draws one parameter value per sample.
type Distribution interface {
	Sample(r *rand.Rand) any
}

// IntRange samples integers uniformly from [Low, High] inclusive.
type IntRange struct {
	Low, High int
}

// Sample implements Distribution.
func (d IntRange) Sample(r *rand.Rand) any {
	return d.Low + r.Intn(d.High-d.Low+1)
}

// Uniform samples floats uniformly from [Low, High).
type Uniform struct {
	Low, High float64
}

// Sample implements Distribution.
func (d Uniform) Sample(r *rand.Rand) any {
	return d.Low + r.Float64()*(d.High-d.Low)
}

// LogUniform samples floats log-uniformly from [Low, High). Both bounds
// must be positive.
type LogUniform struct {
	Low, High float64
}

// Sample implements Distribution.
func (d LogUniform) Sample(r *rand.Rand) any {
	lo, hi := math.Log(d.Low), math.Log(d.High)
	return math.Exp(lo + r.Float64()*(hi-lo))
}

// Categorical samples uniformly from a fixed value list.
type Categorical struct {
	Values []any
}

// Sample implements Distribution.
func (d Categorical) Sample(r *rand.Rand) any {
	return d.Values[r.Intn(len(d.Values))]
}

// Random draws Iterations independent candidates from per-parameter
// distributions. The seed makes the draw reproducible.
type Random struct {
	Space      map[string]Distribution
	Iterations int
	Seed       int64
}

// Candidates implements Strategy.
func (s Random) Candidates() ([]forecast.Params, error) {
	if len(s.Space) == 0 {
		return nil, crossval.NewConfigurationErrorf("search: empty parameter space")
	}
	if s.Iterations < 1 {
		return nil, crossval.NewConfigurationErrorf("search: iterations must be >= 1, got %d", s.Iterations)
	}
	for name, dist := range s.Space {
		if dist == nil {
			return nil, crossval.NewConfigurationErrorf("search: parameter %q has no distribution", name)
		}
		if lu, ok := dist.(LogUniform); ok && (lu.Low <= 0 || lu.High <= lu.Low) {
			return nil, crossval.NewConfigurationErrorf("search: parameter %q has invalid log-uniform bounds (%v, %v)", name, lu.Low, lu.High)
		}
		if ir, ok := dist.(IntRange); ok && ir.High < ir.Low {
			return nil, crossval.NewConfigurationErrorf("search: parameter %q has invalid range [%d, %d]", name, ir.Low, ir.High)
		}
		if c, ok := dist.(Categorical); ok && len(c.Values) == 0 {
			return nil, crossval.NewConfigurationErrorf("search: parameter %q has no categories", name)
		}
	}

	names := make([]string, 0, len(s.Space))
	for name := range s.Space {
		names = append(names, name)
	}
	sort.Strings(names)

	r := rand.New(rand.NewSource(s.Seed))
	candidates := make([]forecast.Params, 0, s.Iterations)
	for i := 0; i < s.Iterations; i++ {
		candidate := make(forecast.Params, len(names))
		for _, name := range names {
			candidate[name] = s.Space[name].Sample(r)
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// DefaultGridFor returns the forecaster's shipped tuning grid, if any.
func DefaultGridFor(f forecast.Forecaster) (Grid, bool) {
	tunable, ok := f.(forecast.Tunable)
	if !ok {
		return nil, false
	}
	return Grid(tunable.DefaultGrid()), true
}
