// Package timeseries provides the immutable series and exogenous table types
// consumed by the cross-validation and search engines.
package timeseries

import (
	"fmt"
	"time"
)

// Series is an ordered sequence of float64 observations indexed by a
// monotonically increasing, regularly spaced time index. A Series is
// immutable once constructed; slicing operations return views that share
// the underlying arrays.
type Series struct {
	times  []time.Time
	values []float64
	freq   time.Duration
}

// New builds a Series from parallel time and value slices. The index must be
// strictly increasing with a constant step, which becomes the series
// frequency.
func New(times []time.Time, values []float64) (*Series, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("timeseries: index length %d does not match value length %d", len(times), len(values))
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("timeseries: need at least 2 observations, got %d", len(times))
	}
	freq := times[1].Sub(times[0])
	if freq <= 0 {
		return nil, fmt.Errorf("timeseries: index is not strictly increasing at position 1")
	}
	for i := 2; i < len(times); i++ {
		step := times[i].Sub(times[i-1])
		if step <= 0 {
			return nil, fmt.Errorf("timeseries: index is not strictly increasing at position %d", i)
		}
		if step != freq {
			return nil, fmt.Errorf("timeseries: irregular index step at position %d: got %s, want %s", i, step, freq)
		}
	}
	return &Series{times: times, values: values, freq: freq}, nil
}

// NewRange builds a Series over a regular index starting at start and
// advancing by freq per observation.
func NewRange(start time.Time, freq time.Duration, values []float64) (*Series, error) {
	if freq <= 0 {
		return nil, fmt.Errorf("timeseries: frequency must be positive, got %s", freq)
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("timeseries: need at least 2 observations, got %d", len(values))
	}
	times := make([]time.Time, len(values))
	for i := range values {
		times[i] = start.Add(time.Duration(i) * freq)
	}
	return &Series{times: times, values: values, freq: freq}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.values) }

// Freq returns the constant index step.
func (s *Series) Freq() time.Duration { return s.freq }

// TimeAt returns the time key at position i.
func (s *Series) TimeAt(i int) time.Time { return s.times[i] }

// ValueAt returns the observation at position i.
func (s *Series) ValueAt(i int) float64 { return s.values[i] }

// Times returns a copy of the full time index.
func (s *Series) Times() []time.Time {
	out := make([]time.Time, len(s.times))
	copy(out, s.times)
	return out
}

// Values returns a copy of the full observation vector.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// SliceRange returns a view over positions [i0, i1). The returned Series
// shares backing arrays with the receiver and inherits its frequency, so a
// view may hold a single observation.
func (s *Series) SliceRange(i0, i1 int) (*Series, error) {
	if i0 < 0 || i1 > len(s.values) || i1-i0 < 1 {
		return nil, fmt.Errorf("timeseries: invalid slice range [%d, %d) for length %d", i0, i1, len(s.values))
	}
	return &Series{times: s.times[i0:i1], values: s.values[i0:i1], freq: s.freq}, nil
}

// Select extracts the time keys and values at the given positions, in the
// given order. The positions need not be contiguous.
func (s *Series) Select(positions []int) ([]time.Time, []float64, error) {
	times := make([]time.Time, len(positions))
	values := make([]float64, len(positions))
	for i, p := range positions {
		if p < 0 || p >= len(s.values) {
			return nil, nil, fmt.Errorf("timeseries: position %d out of range [0, %d)", p, len(s.values))
		}
		times[i] = s.times[p]
		values[i] = s.values[p]
	}
	return times, values, nil
}

// Future returns the time keys at the given positive offsets past the last
// observation: offset 1 is one frequency step after the final time key.
func (s *Series) Future(offsets []int) []time.Time {
	last := s.times[len(s.times)-1]
	out := make([]time.Time, len(offsets))
	for i, h := range offsets {
		out[i] = last.Add(time.Duration(h) * s.freq)
	}
	return out
}

// fromParts builds a Series without revalidating the index. Used by predict
// paths that construct indexes from a trusted frequency.
func fromParts(times []time.Time, values []float64, freq time.Duration) *Series {
	return &Series{times: times, values: values, freq: freq}
}

// FromForecast assembles a predicted Series over an explicit index. Unlike
// New it permits gaps, since a sparse forecast horizon selects
// non-contiguous future points.
func FromForecast(times []time.Time, values []float64, freq time.Duration) (*Series, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("timeseries: index length %d does not match value length %d", len(times), len(values))
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("timeseries: empty forecast")
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return nil, fmt.Errorf("timeseries: forecast index is not strictly increasing at position %d", i)
		}
	}
	return fromParts(times, values, freq), nil
}
