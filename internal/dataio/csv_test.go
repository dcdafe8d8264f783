package dataio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, `day,sales,promo
2024-01-01,100.5,0
2024-01-02,110.25,1
2024-01-03,95,0
`)
	series, exog, err := LoadCSV(path, Options{
		TimeColumn:  "day",
		TimeLayout:  "2006-01-02",
		ValueColumn: "sales",
		ExogColumns: []string{"promo"},
	})
	require.NoError(t, err)

	require.Equal(t, 3, series.Len())
	assert.Equal(t, 100.5, series.ValueAt(0))
	assert.Equal(t, 95.0, series.ValueAt(2))

	require.NotNil(t, exog)
	promo, err := exog.Column("promo")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, promo)
}

func TestLoadCSVWithoutExog(t *testing.T) {
	path := writeCSV(t, `day,sales
2024-01-01,1
2024-01-02,2
`)
	series, exog, err := LoadCSV(path, Options{
		TimeColumn:  "day",
		TimeLayout:  "2006-01-02",
		ValueColumn: "sales",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len())
	assert.Nil(t, exog)
}

func TestLoadCSVErrors(t *testing.T) {
	base := Options{TimeColumn: "day", TimeLayout: "2006-01-02", ValueColumn: "sales"}

	_, _, err := LoadCSV("missing.csv", base)
	assert.Error(t, err)

	path := writeCSV(t, "day,sales\n")
	_, _, err = LoadCSV(path, base)
	assert.Error(t, err, "header only")

	path = writeCSV(t, `day,sales
2024-01-01,1
2024-01-02,two
`)
	_, _, err = LoadCSV(path, base)
	assert.Error(t, err, "non-numeric value")

	path = writeCSV(t, `day,sales
2024-01-01,1
bad-date,2
`)
	_, _, err = LoadCSV(path, base)
	assert.Error(t, err, "bad timestamp")

	path = writeCSV(t, `day,sales
2024-01-01,1
2024-01-05,2
2024-01-06,3
`)
	_, _, err = LoadCSV(path, base)
	assert.Error(t, err, "irregular index")

	path = writeCSV(t, `day,sales
2024-01-01,1
2024-01-02,2
`)
	_, _, err = LoadCSV(path, Options{TimeColumn: "ts", TimeLayout: "2006-01-02", ValueColumn: "sales"})
	assert.Error(t, err, "missing time column")
}
