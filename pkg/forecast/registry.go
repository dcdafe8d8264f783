package forecast

import (
	"fmt"
	"sort"
	"sync"
)

// Factory produces a fresh, unconfigured forecaster.
type Factory func() Forecaster

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func init() {
	RegisterFactory("naive", func() Forecaster { return NewNaive() })
	RegisterFactory("ma", func() Forecaster { return NewMovingAverage() })
}

// RegisterFactory adds a forecaster factory under the given name, replacing
// any existing registration.
func RegisterFactory(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Create instantiates a registered forecaster by name.
func Create(name string) (Forecaster, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("forecast: unknown forecaster %q (registered: %v)", name, RegisteredNames())
	}
	return factory(), nil
}

// RegisteredNames lists the registered forecaster names in sorted order.
func RegisteredNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
