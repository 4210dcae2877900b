package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPredictor/internal/config"
	"StockPredictor/internal/store"
)

func TestOpenStore_Memory(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "memory"

	st, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close()
	assert.IsType(t, &store.MemoryStore{}, st)
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "nested", "stock.db")

	st, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close()
	assert.IsType(t, &store.SQLStore{}, st)
}
