package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"StockPredictor/internal/calculator"
	"StockPredictor/internal/model"
	"StockPredictor/internal/regression"
)

// FormatPrediction renders the answer line shown to the user.
func FormatPrediction(p model.Prediction) string {
	return fmt.Sprintf("The price prediction for %s stock at %s is $ %5.2f", p.Symbol, p.Date, p.Price)
}

// RoundPrice rounds a model output to cents.
func RoundPrice(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// FormatFitSummary describes one training run for the log.
func FormatFitSummary(symbol string, res *regression.FitResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s model | %s\n", symbol, res.TrainedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("  train points: %d | test points: %d\n", len(res.Train), len(res.Test)))
	b.WriteString(fmt.Sprintf("  slope: %g per second (%s per day)\n",
		res.Model.Slope, RoundPrice(res.Model.Slope*86400).StringFixed(2)))
	b.WriteString(fmt.Sprintf("  intercept: %g\n", res.Model.Intercept))
	if len(res.Test) > 0 {
		b.WriteString(fmt.Sprintf("  test RMSE: $ %s", RoundPrice(regression.RMSE(res.Model, res.Test)).StringFixed(2)))
	}
	return b.String()
}

// FormatStats describes the latest close against its recent history.
func FormatStats(symbol string, st calculator.SeriesStats, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s last close: $ %s (%s)\n", symbol,
		RoundPrice(st.LastClose).StringFixed(2), time.Unix(st.LastDate, 0).In(loc).Format("2006-01-02")))
	if st.SMA20 != nil {
		b.WriteString(fmt.Sprintf("  SMA20: %s", RoundPrice(*st.SMA20).StringFixed(2)))
		if st.SMA200 != nil {
			b.WriteString(fmt.Sprintf(" | SMA200: %s", RoundPrice(*st.SMA200).StringFixed(2)))
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("  52w range: %s - %s (position %.0f%%)",
		RoundPrice(st.Low52w).StringFixed(2), RoundPrice(st.High52w).StringFixed(2), st.Position*100))
	return b.String()
}

// EvaluationRow is one line of the actual-vs-predicted table.
type EvaluationRow struct {
	Date      time.Time
	Actual    decimal.Decimal
	Predicted decimal.Decimal
}

// EvaluationRows pairs each held-out point with the model output, in date order.
func EvaluationRows(res *regression.FitResult, loc *time.Location) []EvaluationRow {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]EvaluationRow, len(res.Test))
	for i, p := range res.Test {
		rows[i] = EvaluationRow{
			Date:      time.Unix(p.Date, 0).In(loc),
			Actual:    RoundPrice(p.Close),
			Predicted: RoundPrice(res.Predicted[i]),
		}
	}
	return rows
}
