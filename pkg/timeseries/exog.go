package timeseries

import "fmt"

// ExogTable holds named exogenous feature columns over the same index domain
// as a companion Series. A nil *ExogTable means no exogenous data.
type ExogTable struct {
	names  []string
	cols   map[string][]float64
	length int
}

// NewExogTable creates an empty table for a series of the given length.
func NewExogTable(length int) *ExogTable {
	return &ExogTable{cols: make(map[string][]float64), length: length}
}

// AddColumn registers a feature column. The column length must match the
// table's index length and the name must be unique.
func (t *ExogTable) AddColumn(name string, values []float64) error {
	if len(values) != t.length {
		return fmt.Errorf("timeseries: column %q length %d does not match table length %d", name, len(values), t.length)
	}
	if _, ok := t.cols[name]; ok {
		return fmt.Errorf("timeseries: duplicate column %q", name)
	}
	t.names = append(t.names, name)
	t.cols[name] = values
	return nil
}

// Len returns the index length of the table.
func (t *ExogTable) Len() int {
	if t == nil {
		return 0
	}
	return t.length
}

// Names returns the column names in insertion order.
func (t *ExogTable) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Column returns the values of a named column.
func (t *ExogTable) Column(name string) ([]float64, error) {
	if t == nil {
		return nil, fmt.Errorf("timeseries: no exogenous table")
	}
	col, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("timeseries: unknown column %q", name)
	}
	return col, nil
}

// Select builds a new table holding the rows at the given positions, in the
// given order. A nil receiver yields nil.
func (t *ExogTable) Select(positions []int) (*ExogTable, error) {
	if t == nil {
		return nil, nil
	}
	out := NewExogTable(len(positions))
	for _, name := range t.names {
		src := t.cols[name]
		col := make([]float64, len(positions))
		for i, p := range positions {
			if p < 0 || p >= t.length {
				return nil, fmt.Errorf("timeseries: position %d out of range [0, %d)", p, t.length)
			}
			col[i] = src[p]
		}
		if err := out.AddColumn(name, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}
