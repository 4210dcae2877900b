package model

// Prediction is the answer to a single point-in-time price query.
type Prediction struct {
	Symbol    string
	Date      string // as entered, MM/DD/YYYY
	Timestamp int64  // local midnight, unix seconds
	Price     float64
}
