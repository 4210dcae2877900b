package calculator

import (
	"errors"
	"math"

	"StockPredictor/internal/model"
)

// trading days in a year
const yearWindow = 252

// SeriesStats summarizes where the latest close sits in its recent history.
type SeriesStats struct {
	LastDate  int64    `json:"last_date"`
	LastClose float64  `json:"last_close"`
	SMA20     *float64 `json:"sma20,omitempty"` // nil when the series is shorter than the window
	SMA200    *float64 `json:"sma200,omitempty"`
	High52w   float64  `json:"high_52w"`
	Low52w    float64  `json:"low_52w"`
	Position  float64  `json:"position_52w"` // 0 at the 52-week low, 1 at the high
}

// Summarize computes SeriesStats over records sorted ascending by date.
func Summarize(records []model.PriceRecord) (SeriesStats, error) {
	if len(records) == 0 {
		return SeriesStats{}, errors.New("no price records provided")
	}
	last := records[len(records)-1]
	stats := SeriesStats{LastDate: last.Date, LastClose: last.Close}

	closes := extractCloses(records)
	if v, err := CalculateSMA(closes, 20); err == nil {
		stats.SMA20 = &v
	}
	if v, err := CalculateSMA(closes, 200); err == nil {
		stats.SMA200 = &v
	}

	high, low, err := CalculateRange(records, yearWindow)
	if err != nil {
		return SeriesStats{}, err
	}
	stats.High52w, stats.Low52w = high, low
	stats.Position, err = CalculatePosition(last.Close, high, low)
	if err != nil {
		return SeriesStats{}, err
	}
	return stats, nil
}

// CalculateRange scans the most recent window records and returns the high and low.
func CalculateRange(records []model.PriceRecord, window int) (high, low float64, err error) {
	if len(records) == 0 {
		return 0, 0, errors.New("no price records provided")
	}
	if window <= 0 {
		return 0, 0, errors.New("window must be positive")
	}
	start := max(len(records)-window, 0)
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, r := range records[start:] {
		high = math.Max(high, r.High)
		low = math.Min(low, r.Low)
	}
	return high, low, nil
}

// CalculatePosition returns where current sits within [low, high], clamped to 0..1.
func CalculatePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Min(math.Max(pos, 0), 1), nil
}
