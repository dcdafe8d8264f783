// Package dataio loads univariate series and exogenous columns from CSV
// files for the CLI.
package dataio

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/forecastcv/forecastcv/pkg/timeseries"
)

// Options names the CSV columns to read.
type Options struct {
	TimeColumn  string
	TimeLayout  string
	ValueColumn string
	ExogColumns []string
}

// LoadCSV reads a series (and optional exogenous columns) from a headered
// CSV file. Values go through decimal parsing, so formatted numbers like
// "1,234.5" fail loudly instead of truncating.
func LoadCSV(path string, opts Options) (*timeseries.Series, *timeseries.ExogTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("dataio: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("dataio: reading %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("dataio: %s has no data rows", path)
	}

	header := records[0]
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	timeIdx, ok := columns[opts.TimeColumn]
	if !ok {
		return nil, nil, fmt.Errorf("dataio: %s has no column %q", path, opts.TimeColumn)
	}
	valueIdx, ok := columns[opts.ValueColumn]
	if !ok {
		return nil, nil, fmt.Errorf("dataio: %s has no column %q", path, opts.ValueColumn)
	}
	exogIdx := make([]int, len(opts.ExogColumns))
	for i, name := range opts.ExogColumns {
		idx, ok := columns[name]
		if !ok {
			return nil, nil, fmt.Errorf("dataio: %s has no column %q", path, name)
		}
		exogIdx[i] = idx
	}

	rows := records[1:]
	times := make([]time.Time, len(rows))
	values := make([]float64, len(rows))
	exogValues := make([][]float64, len(opts.ExogColumns))
	for i := range exogValues {
		exogValues[i] = make([]float64, len(rows))
	}

	for r, row := range rows {
		ts, err := time.Parse(opts.TimeLayout, row[timeIdx])
		if err != nil {
			return nil, nil, fmt.Errorf("dataio: row %d: parsing time %q: %w", r+1, row[timeIdx], err)
		}
		times[r] = ts

		value, err := parseValue(row[valueIdx])
		if err != nil {
			return nil, nil, fmt.Errorf("dataio: row %d: column %q: %w", r+1, opts.ValueColumn, err)
		}
		values[r] = value

		for c, idx := range exogIdx {
			value, err := parseValue(row[idx])
			if err != nil {
				return nil, nil, fmt.Errorf("dataio: row %d: column %q: %w", r+1, opts.ExogColumns[c], err)
			}
			exogValues[c][r] = value
		}
	}

	series, err := timeseries.New(times, values)
	if err != nil {
		return nil, nil, err
	}

	var exog *timeseries.ExogTable
	if len(opts.ExogColumns) > 0 {
		exog = timeseries.NewExogTable(len(rows))
		for i, name := range opts.ExogColumns {
			if err := exog.AddColumn(name, exogValues[i]); err != nil {
				return nil, nil, err
			}
		}
	}
	return series, exog, nil
}

func parseValue(raw string) (float64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
