package metrics

import (
	"fmt"
	"sort"
	"sync"
)

// registry maps metric names to scorer factories. Guarded for concurrent
// Register/Get from independent searches.
var (
	registryMu sync.RWMutex
	registry   = map[string]func() Scorer{
		"mae":   MAE,
		"rmse":  RMSE,
		"mape":  MAPE,
		"smape": SMAPE,
		"r2":    R2,
	}
)

// Register adds a custom metric factory under the given name, replacing any
// existing registration.
func Register(name string, factory func() Scorer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get resolves a metric name into its scorer.
func Get(name string) (Scorer, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("metrics: unknown metric %q (registered: %v)", name, Names())
	}
	return factory(), nil
}

// Resolve turns a list of metric names into self-contained scorers, in the
// given order.
func Resolve(names ...string) ([]Scorer, error) {
	out := make([]Scorer, 0, len(names))
	for _, name := range names {
		s, err := Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Names lists the registered metric names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
