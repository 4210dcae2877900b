package regression

import (
	"fmt"
	"math"

	"StockPredictor/internal/model"
)

// InsufficientDataError is returned when a fit is attempted on too few points.
type InsufficientDataError struct {
	Points int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for regression: %d points (%s)", e.Points, e.Reason)
}

// LinearModel maps a unix timestamp to a predicted close price.
type LinearModel struct {
	Slope     float64
	Intercept float64
}

// Predict applies the model to a single timestamp.
func (m LinearModel) Predict(date int64) float64 {
	return m.Slope*float64(date) + m.Intercept
}

// PredictAll applies the model to the dates of the given points.
func (m LinearModel) PredictAll(pts []model.Point) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = m.Predict(p.Date)
	}
	return out
}

// Fit computes the ordinary least-squares line of close on date.
// Sums are taken around the means; raw timestamps squared lose most of
// float64's precision.
func Fit(pts []model.Point) (LinearModel, error) {
	n := len(pts)
	if n < 2 {
		return LinearModel{}, &InsufficientDataError{Points: n, Reason: "need at least 2 training points"}
	}

	var meanX, meanY float64
	for _, p := range pts {
		meanX += float64(p.Date)
		meanY += p.Close
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var sxx, sxy float64
	for _, p := range pts {
		dx := float64(p.Date) - meanX
		sxx += dx * dx
		sxy += dx * (p.Close - meanY)
	}
	if sxx == 0 {
		return LinearModel{}, &InsufficientDataError{Points: n, Reason: "all dates identical"}
	}

	slope := sxy / sxx
	m := LinearModel{Slope: slope, Intercept: meanY - slope*meanX}
	if math.IsNaN(m.Slope) || math.IsInf(m.Slope, 0) || math.IsNaN(m.Intercept) {
		return LinearModel{}, fmt.Errorf("regression produced non-finite coefficients")
	}
	return m, nil
}

// Residuals returns actual minus predicted close for each point.
func Residuals(m LinearModel, pts []model.Point) []float64 {
	res := make([]float64, len(pts))
	for i, p := range pts {
		res[i] = p.Close - m.Predict(p.Date)
	}
	return res
}

// RMSE is the root mean squared residual. Returns 0 for an empty set.
func RMSE(m LinearModel, pts []model.Point) float64 {
	if len(pts) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range Residuals(m, pts) {
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(pts)))
}
