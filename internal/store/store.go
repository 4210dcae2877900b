package store

import (
	"context"
	"fmt"
	"regexp"

	"StockPredictor/internal/model"
)

// PriceStore persists one price table per symbol.
type PriceStore interface {
	// EnsureTable creates the symbol's table if it does not exist.
	EnsureTable(ctx context.Context, symbol string) error
	// ReplaceSeries atomically discards the table contents and writes records.
	ReplaceSeries(ctx context.Context, symbol string, records []model.PriceRecord) error
	// LoadSeries returns every record ascending by date.
	LoadSeries(ctx context.Context, symbol string) (model.SymbolSeries, error)
	// LoadPoints returns (date, close) ascending by date.
	LoadPoints(ctx context.Context, symbol string) ([]model.Point, error)
	Close() error
}

// StorageError wraps connection, schema and read/write failures.
type StorageError struct {
	Op    string
	Table string
	Msg   string // human-readable diagnosis when the cause is recognized
	Err   error
}

func (e *StorageError) Error() string {
	s := "storage " + e.Op
	if e.Table != "" {
		s += " " + e.Table
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *StorageError) Unwrap() error { return e.Err }

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// ValidateTableName rejects symbols that cannot be used verbatim as a table name.
func ValidateTableName(symbol string) error {
	if !tableNameRe.MatchString(symbol) {
		return &StorageError{Op: "validate", Table: symbol, Msg: fmt.Sprintf("invalid table name %q", symbol)}
	}
	return nil
}
