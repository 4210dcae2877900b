package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"StockPredictor/internal/regression"
	"StockPredictor/internal/store"
)

var evaluationHeader = []any{"Date", "Actual Close", "Predicted Close", "Residual"}

// WriteEvaluation saves the held-out actual and predicted closes of one fit
// as <dir>/<symbol>_evaluation.xlsx and returns the file path.
func WriteEvaluation(dir, symbol string, res *regression.FitResult, loc *time.Location) (string, error) {
	if err := store.ValidateTableName(symbol); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := symbol
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &evaluationHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for i, r := range EvaluationRows(res, loc) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		actual, _ := r.Actual.Float64()
		predicted, _ := r.Predicted.Float64()
		residual, _ := r.Actual.Sub(r.Predicted).Float64()
		row := []any{r.Date.Format("2006-01-02"), actual, predicted, residual}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	path := filepath.Join(dir, symbol+"_evaluation.xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}
