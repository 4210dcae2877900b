package forecast

import (
	"fmt"
	"time"

	"StockPredictor/internal/model"
	"StockPredictor/internal/regression"
)

// DateLayout accepts MM/DD/YYYY with optional leading zeros on month and day.
const DateLayout = "1/2/2006"

// InvalidDateFormatError is returned when a query date does not match MM/DD/YYYY.
type InvalidDateFormatError struct {
	Input string
	Err   error
}

func (e *InvalidDateFormatError) Error() string {
	return fmt.Sprintf("incorrect date format %q, should be MM/DD/YYYY", e.Input)
}

func (e *InvalidDateFormatError) Unwrap() error { return e.Err }

// ParseDate parses s as a calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, &InvalidDateFormatError{Input: s, Err: err}
	}
	return t, nil
}

// Timestamp returns the unix seconds of local midnight for t's calendar date,
// the same representation the stored series uses.
func Timestamp(t time.Time, loc *time.Location) int64 {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Unix()
}

// Predict answers a single date query for symbol. Dates outside the fitted
// range are extrapolated without complaint.
func Predict(symbol string, m regression.LinearModel, date string, loc *time.Location) (model.Prediction, error) {
	t, err := ParseDate(date, loc)
	if err != nil {
		return model.Prediction{}, err
	}
	ts := Timestamp(t, loc)
	return model.Prediction{
		Symbol:    symbol,
		Date:      date,
		Timestamp: ts,
		Price:     m.Predict(ts),
	}, nil
}
