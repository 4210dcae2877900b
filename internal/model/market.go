package model

import "sort"

// PriceRecord is one trading day of history for a symbol.
type PriceRecord struct {
	Date     int64 // unix seconds, unique per symbol
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// Point is the (date, close) projection the regression consumes.
type Point struct {
	Date  int64
	Close float64
}

// SymbolSeries holds every persisted record for one symbol, ascending by date.
type SymbolSeries struct {
	Symbol  string
	Records []PriceRecord
}

// Len returns the number of records in the series.
func (s SymbolSeries) Len() int { return len(s.Records) }

// Points projects the series onto (date, close) pairs.
func (s SymbolSeries) Points() []Point {
	pts := make([]Point, len(s.Records))
	for i, r := range s.Records {
		pts[i] = Point{Date: r.Date, Close: r.Close}
	}
	return pts
}

// SortPoints orders points ascending by date in place.
func SortPoints(pts []Point) {
	sort.Slice(pts, func(i, j int) bool { return pts[i].Date < pts[j].Date })
}
