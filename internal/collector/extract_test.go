package collector

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPredictor/internal/model"
)

func loadPage(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/history.html")
	require.NoError(t, err)
	return string(data)
}

func TestExtract_HistoryPage(t *testing.T) {
	records, skipped, err := DefaultExtractor().Extract(loadPage(t))
	require.NoError(t, err)

	assert.Equal(t, 1, skipped, "dividend row should be skipped")
	require.Len(t, records, 4)

	// source order is kept (descending on the page)
	assert.Equal(t, []int64{1573569000, 1573482600, 1573396200, 1573137000},
		[]int64{records[0].Date, records[1].Date, records[2].Date, records[3].Date})

	assert.Equal(t, model.PriceRecord{
		Date: 1573569000, Open: 355.0, High: 356.33, Low: 345.18,
		Close: 349.93, AdjClose: 349.93, Volume: 5848800,
	}, records[0])
}

func TestSlice_MissingMarkers(t *testing.T) {
	ex := DefaultExtractor()
	tests := []struct {
		name string
		page string
	}{
		{"no start", `<html>{"prices":[]}</html>`},
		{"no end", `"HistoricalPriceStore":{"prices":[{"date":1}]}`},
		{"too short", `HistoricalPriceStoreisPending`},
		{"empty", `"HistoricalPriceStore":{"prices":[],"isPending":false`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ex.Slice(tt.page)
			var pe *ParseError
			assert.True(t, errors.As(err, &pe), "got %v", err)
		})
	}
}

func TestExtract_MalformedPayload(t *testing.T) {
	page := `"HistoricalPriceStore":{"prices":[{"date":1573137000,"open":oops}],"isPending":false`
	_, _, err := DefaultExtractor().Extract(page)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "got %v", err)
}

func TestExtract_CustomMarkers(t *testing.T) {
	ex := Extractor{StartMarker: "BEGIN", EndMarker: "END", SkipPrefix: 1, TrimSuffix: 1}
	page := `xxBEGIN<{"date":10,"open":1,"high":2,"low":0.5,"close":1.5,"volume":3}>END`
	records, _, err := ex.Extract(page)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1.5, records[0].AdjClose, "adjclose falls back to close")
}

func TestMaterialize_Columnar(t *testing.T) {
	rows, err := DecodeLiteral(`{"date":[3,1,2],"open":[1,1,1],"high":[2,2,2],"low":[0,0,0],"close":[1.5,1.2,1.3],"AdjClose":[1.4,1.1,1.2],"volume":[10,20,30]}`)
	require.NoError(t, err)

	records, skipped, err := Materialize(rows)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, records, 3)
	assert.Equal(t, int64(3), records[0].Date)
	assert.Equal(t, 1.1, records[1].AdjClose)
	assert.Equal(t, int64(30), records[2].Volume)
}

func TestMaterialize_ColumnLengthMismatch(t *testing.T) {
	rows, err := DecodeLiteral(`{"date":[1,2],"close":[1.0]}`)
	require.NoError(t, err)
	_, _, err = Materialize(rows)
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestMaterialize_DuplicateDatesKeepFirst(t *testing.T) {
	rows, err := DecodeLiteral(`{"date":5,"open":1,"high":1,"low":1,"close":1,"volume":1},{"date":5,"open":2,"high":2,"low":2,"close":2,"volume":2}`)
	require.NoError(t, err)
	records, skipped, err := Materialize(rows)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, records, 1)
	assert.Equal(t, 1.0, records[0].Close)
}

func TestMaterialize_NoPriceRows(t *testing.T) {
	rows, err := DecodeLiteral(`{"date":5,"type":"DIVIDEND","amount":0.2}`)
	require.NoError(t, err)
	_, _, err = Materialize(rows)
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestMaterialize_NegativeRejected(t *testing.T) {
	rows, err := DecodeLiteral(`{"date":5,"open":-1,"high":1,"low":1,"close":1,"volume":1}`)
	require.NoError(t, err)
	_, _, err = Materialize(rows)
	assert.Error(t, err)
}
