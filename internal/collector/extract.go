package collector

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"StockPredictor/internal/model"
)

// Extractor locates the embedded price block inside a history page.
type Extractor struct {
	StartMarker string
	EndMarker   string
	SkipPrefix  int // characters dropped after the start marker
	TrimSuffix  int // characters dropped before the end marker
}

// DefaultExtractor matches the Yahoo history page layout:
//
//	"HistoricalPriceStore":{"prices":[{...},{...}],"isPending":false
//
// leaving `{...},{...}` as the payload.
func DefaultExtractor() Extractor {
	return Extractor{
		StartMarker: "HistoricalPriceStore",
		EndMarker:   "isPending",
		SkipPrefix:  13,
		TrimSuffix:  3,
	}
}

// Slice isolates the raw payload text between the markers.
func (e Extractor) Slice(page string) (string, error) {
	start := strings.Index(page, e.StartMarker)
	if start < 0 {
		return "", &ParseError{Reason: fmt.Sprintf("start marker %q not found", e.StartMarker)}
	}
	rest := page[start+len(e.StartMarker):]

	end := strings.Index(rest, e.EndMarker)
	if end < 0 {
		return "", &ParseError{Reason: fmt.Sprintf("end marker %q not found", e.EndMarker)}
	}
	block := rest[:end]

	if len(block) < e.SkipPrefix+e.TrimSuffix {
		return "", &ParseError{Reason: "data block shorter than marker boundaries"}
	}
	payload := strings.TrimSpace(block[e.SkipPrefix : len(block)-e.TrimSuffix])
	if payload == "" {
		return "", &ParseError{Reason: "empty data block"}
	}
	return payload, nil
}

// Extract slices, decodes and materializes the page into price records,
// preserving the source order. skipped counts rows that were not price rows
// (dividends, splits) or repeated a date already seen.
func (e Extractor) Extract(page string) (records []model.PriceRecord, skipped int, err error) {
	payload, err := e.Slice(page)
	if err != nil {
		return nil, 0, err
	}
	rows, err := DecodeLiteral(payload)
	if err != nil {
		return nil, 0, &ParseError{Reason: "payload is not structured data", Err: err}
	}
	return Materialize(rows)
}

// Materialize converts decoded rows into price records. Both row objects and a
// single column mapping {field: [values...]} are accepted.
func Materialize(rows []map[string]any) ([]model.PriceRecord, int, error) {
	if len(rows) == 1 && isColumnar(rows[0]) {
		var err error
		rows, err = columnsToRows(rows[0])
		if err != nil {
			return nil, 0, err
		}
	}

	records := make([]model.PriceRecord, 0, len(rows))
	seen := make(map[int64]bool, len(rows))
	skipped := 0

	for i, row := range rows {
		rec, ok, err := toRecord(row)
		if err != nil {
			return nil, 0, &ParseError{Reason: fmt.Sprintf("row %d", i), Err: err}
		}
		if !ok || seen[rec.Date] {
			skipped++
			continue
		}
		seen[rec.Date] = true
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, skipped, &ParseError{Reason: "no price rows in payload"}
	}
	return records, skipped, nil
}

var adjCloseKeys = []string{"adjclose", "adjClose", "AdjClose", "adj_close"}

// toRecord returns ok=false for rows that carry no price (event rows or null prices).
func toRecord(row map[string]any) (model.PriceRecord, bool, error) {
	date, ok, err := intField(row, "date")
	if err != nil || !ok {
		return model.PriceRecord{}, false, err
	}

	var rec model.PriceRecord
	rec.Date = date

	fields := []struct {
		key string
		dst *float64
	}{
		{"open", &rec.Open},
		{"high", &rec.High},
		{"low", &rec.Low},
		{"close", &rec.Close},
	}
	for _, f := range fields {
		v, ok, err := floatField(row, f.key)
		if err != nil {
			return rec, false, err
		}
		if !ok {
			return rec, false, nil
		}
		*f.dst = v
	}

	rec.AdjClose = rec.Close
	for _, k := range adjCloseKeys {
		if v, ok, err := floatField(row, k); err != nil {
			return rec, false, err
		} else if ok {
			rec.AdjClose = v
			break
		}
	}

	vol, ok, err := intField(row, "volume")
	if err != nil {
		return rec, false, err
	}
	if ok {
		rec.Volume = vol
	}

	if rec.Open < 0 || rec.High < 0 || rec.Low < 0 || rec.Close < 0 || rec.AdjClose < 0 || rec.Volume < 0 {
		return rec, false, fmt.Errorf("negative value at date %d", rec.Date)
	}
	return rec, true, nil
}

func floatField(row map[string]any, key string) (float64, bool, error) {
	raw, present := row[key]
	if !present || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("field %s: %w", key, err)
		}
		return f, true, nil
	case float64:
		return v, true, nil
	default:
		return 0, false, fmt.Errorf("field %s: unexpected type %T", key, raw)
	}
}

func intField(row map[string]any, key string) (int64, bool, error) {
	raw, present := row[key]
	if !present || raw == nil {
		return 0, false, nil
	}
	if n, ok := raw.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, true, nil
		}
	}
	f, ok, err := floatField(row, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	return int64(math.Round(f)), true, nil
}

func isColumnar(row map[string]any) bool {
	_, ok := row["date"].([]any)
	return ok
}

func columnsToRows(cols map[string]any) ([]map[string]any, error) {
	n := -1
	for k, v := range cols {
		list, ok := v.([]any)
		if !ok {
			return nil, &ParseError{Reason: fmt.Sprintf("column %s is not a list", k)}
		}
		if n >= 0 && len(list) != n {
			return nil, &ParseError{Reason: fmt.Sprintf("column %s has %d values, want %d", k, len(list), n)}
		}
		n = len(list)
	}
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = make(map[string]any, len(cols))
		for k, v := range cols {
			rows[i][k] = v.([]any)[i]
		}
	}
	return rows, nil
}
