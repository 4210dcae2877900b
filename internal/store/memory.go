package store

import (
	"context"
	"sort"
	"sync"

	"StockPredictor/internal/model"
)

// Compile-time interface check.
var _ PriceStore = (*MemoryStore)(nil)

// MemoryStore is an in-process PriceStore used when no database is wanted.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]model.PriceRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]model.PriceRecord)}
}

func (m *MemoryStore) EnsureTable(_ context.Context, symbol string) error {
	if err := ValidateTableName(symbol); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[symbol]; !ok {
		m.tables[symbol] = nil
	}
	return nil
}

func (m *MemoryStore) ReplaceSeries(_ context.Context, symbol string, records []model.PriceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[symbol]; !ok {
		return &StorageError{Op: "insert", Table: symbol, Msg: "no such table"}
	}
	seen := make(map[int64]bool, len(records))
	for _, r := range records {
		if seen[r.Date] {
			return &StorageError{Op: "insert", Table: symbol, Msg: "duplicate date"}
		}
		seen[r.Date] = true
	}
	cp := make([]model.PriceRecord, len(records))
	copy(cp, records)
	m.tables[symbol] = cp
	return nil
}

func (m *MemoryStore) LoadSeries(_ context.Context, symbol string) (model.SymbolSeries, error) {
	m.mu.RLock()
	recs, ok := m.tables[symbol]
	m.mu.RUnlock()
	if !ok {
		return model.SymbolSeries{}, &StorageError{Op: "query", Table: symbol, Msg: "no such table"}
	}
	sorted := make([]model.PriceRecord, len(recs))
	copy(sorted, recs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })
	return model.SymbolSeries{Symbol: symbol, Records: sorted}, nil
}

func (m *MemoryStore) LoadPoints(ctx context.Context, symbol string) ([]model.Point, error) {
	series, err := m.LoadSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return series.Points(), nil
}

func (m *MemoryStore) Close() error { return nil }
