package scheduler

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPredictor/internal/collector"
	"StockPredictor/internal/pipeline"
	"StockPredictor/internal/store"
)

func page(n int) string {
	rows := make([]string, 0, n)
	for i := 0; i < n; i++ {
		d := 1546387200 + i*86400
		rows = append(rows, fmt.Sprintf(`{"date":%d,"open":1,"high":2,"low":0.5,"close":%d,"volume":10,"adjclose":1}`, d, 10+i))
	}
	return `"HistoricalPriceStore":{"prices":[` + strings.Join(rows, ",") + `],"isPending":false`
}

func newTestScheduler(t *testing.T) (*Scheduler, *collector.MockFetcher) {
	t.Helper()
	f := &collector.MockFetcher{Pages: map[string]string{
		"http://x/fb":   page(15),
		"http://x/tsla": page(20),
	}}
	p := pipeline.New(collector.NewCollector(f), store.NewMemoryStore(), pipeline.Options{})
	reg := pipeline.NewRegistry()
	reg.Add("facebook", "http://x/fb")
	reg.Add("tesla", "http://x/tsla")
	reg.Add("paypal", "http://x/missing")
	return NewScheduler(context.Background(), p, reg), f
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(t)
	require.NoError(t, s.RegisterAll("0 30 22 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.RegisterAll("not a cron"))
}

func TestRunNow(t *testing.T) {
	s, f := newTestScheduler(t)
	var seen []string
	s.OnRefreshed = func(st pipeline.Stock) { seen = append(seen, st.Symbol) }

	failed := s.RunNow()
	assert.Equal(t, []string{"paypal"}, failed)
	assert.Equal(t, []string{"facebook", "tesla"}, seen)
	assert.Equal(t, 3, f.Calls)

	tsla, ok := s.Registry.Get("tesla")
	require.True(t, ok)
	assert.True(t, tsla.Fitted())
	assert.Equal(t, 20, tsla.Rows)
}

func TestRefreshOne(t *testing.T) {
	s, _ := newTestScheduler(t)
	called := 0
	s.OnRefreshed = func(pipeline.Stock) { called++ }

	st, err := s.RefreshOne(context.Background(), "facebook")
	require.NoError(t, err)
	assert.True(t, st.Fitted())
	assert.Equal(t, 1, called)

	_, err = s.RefreshOne(context.Background(), "nokia")
	assert.Error(t, err)

	_, err = s.RefreshOne(context.Background(), "paypal")
	assert.Error(t, err)
	assert.Equal(t, 1, called)
}

func TestStartStop(t *testing.T) {
	s, _ := newTestScheduler(t)
	require.NoError(t, s.RegisterAll("0 0 0 1 1 *"))
	s.Start()
	s.Stop()
}
