package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"StockPredictor/internal/calculator"
	"StockPredictor/internal/collector"
	"StockPredictor/internal/forecast"
	"StockPredictor/internal/model"
	"StockPredictor/internal/regression"
	"StockPredictor/internal/store"
)

// ErrNotFitted is returned when a prediction is asked of a stock with no model yet.
var ErrNotFitted = errors.New("model not fitted")

// Stock is one symbol's state: where its history comes from and its latest fit.
type Stock struct {
	Symbol    string
	URL       string
	Rows      int                   // rows persisted by the last ingest
	Result    *regression.FitResult // nil until fitted
	Stats     *calculator.SeriesStats
	UpdatedAt time.Time
}

// Fitted reports whether the stock has a usable model.
func (s Stock) Fitted() bool { return s.Result != nil }

// Predict answers a date query against the stock's current model.
func (s Stock) Predict(date string, loc *time.Location) (model.Prediction, error) {
	if !s.Fitted() {
		return model.Prediction{}, fmt.Errorf("%s: %w", s.Symbol, ErrNotFitted)
	}
	return forecast.Predict(s.Symbol, s.Result.Model, date, loc)
}

// Options tune the fit step.
type Options struct {
	TestRatio float64
	Seed      *uint64 // nil gives a different partition every fit
}

// Pipeline ingests history pages into the store and fits models from it.
type Pipeline struct {
	Collector *collector.Collector
	Store     store.PriceStore
	Options   Options
}

func New(col *collector.Collector, st store.PriceStore, opts Options) *Pipeline {
	return &Pipeline{Collector: col, Store: st, Options: opts}
}

// Ingest scrapes url and replaces the symbol's table with the result.
// A failed fetch or parse leaves the existing table untouched.
func (p *Pipeline) Ingest(ctx context.Context, symbol, url string) (*collector.Batch, error) {
	runID := uuid.NewString()

	if err := p.Store.EnsureTable(ctx, symbol); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", symbol, err)
	}

	batch, err := p.Collector.Collect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", symbol, err)
	}

	if err := p.Store.ReplaceSeries(ctx, symbol, batch.Records); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", symbol, err)
	}

	log.Printf("[INFO] ingest %s run=%s: %d rows stored (%d skipped)", symbol, runID, len(batch.Records), batch.Skipped)
	return batch, nil
}

// Fit reads the symbol's series back in date order and trains a fresh model.
func (p *Pipeline) Fit(ctx context.Context, symbol string) (*regression.FitResult, error) {
	pts, err := p.Store.LoadPoints(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", symbol, err)
	}

	opts := regression.Options{TestRatio: p.Options.TestRatio}
	if p.Options.Seed != nil {
		opts.Rand = regression.NewSeededRand(*p.Options.Seed)
	}

	res, err := regression.Train(pts, opts)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", symbol, err)
	}
	return res, nil
}

// Stats summarizes the stored series of symbol.
func (p *Pipeline) Stats(ctx context.Context, symbol string) (calculator.SeriesStats, error) {
	series, err := p.Store.LoadSeries(ctx, symbol)
	if err != nil {
		return calculator.SeriesStats{}, fmt.Errorf("stats %s: %w", symbol, err)
	}
	stats, err := calculator.Summarize(series.Records)
	if err != nil {
		return calculator.SeriesStats{}, fmt.Errorf("stats %s: %w", symbol, err)
	}
	return stats, nil
}

// Refresh runs ingest then fit for one stock and returns its new state.
func (p *Pipeline) Refresh(ctx context.Context, s Stock) (Stock, error) {
	batch, err := p.Ingest(ctx, s.Symbol, s.URL)
	if err != nil {
		return s, err
	}
	res, err := p.Fit(ctx, s.Symbol)
	if err != nil {
		return s, err
	}
	stats, err := p.Stats(ctx, s.Symbol)
	if err != nil {
		return s, err
	}
	s.Rows = len(batch.Records)
	s.Result = res
	s.Stats = &stats
	s.UpdatedAt = time.Now()
	return s, nil
}

// RefreshAll refreshes every stock in reg one after another. A failure for
// one symbol is logged and does not stop the others. It returns the symbols
// that failed.
func (p *Pipeline) RefreshAll(ctx context.Context, reg *Registry) []string {
	var failed []string
	for _, s := range reg.All() {
		if err := ctx.Err(); err != nil {
			log.Printf("[WARN] refresh aborted: %v", err)
			failed = append(failed, s.Symbol)
			continue
		}
		updated, err := p.Refresh(ctx, s)
		if err != nil {
			log.Printf("[ERROR] refresh %s: %v", s.Symbol, err)
			failed = append(failed, s.Symbol)
			continue
		}
		reg.Put(updated)
	}
	return failed
}
