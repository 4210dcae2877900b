package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"StockPredictor/internal/pipeline"
)

// Scheduler re-ingests and re-fits every tracked stock on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline *pipeline.Pipeline
	Registry *pipeline.Registry
	Ctx      context.Context

	// OnRefreshed, if set, runs for every stock refreshed successfully.
	OnRefreshed func(pipeline.Stock)

	running sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p *pipeline.Pipeline, reg *pipeline.Registry) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Pipeline: p,
		Registry: reg,
		Ctx:      ctx,
	}
}

// RegisterAll registers the refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh task immediately and returns the symbols that failed.
func (s *Scheduler) RunNow() []string {
	return s.refreshAll()
}

// RefreshOne refreshes a single tracked symbol outside the schedule.
func (s *Scheduler) RefreshOne(ctx context.Context, symbol string) (pipeline.Stock, error) {
	st, ok := s.Registry.Get(symbol)
	if !ok {
		return pipeline.Stock{}, fmt.Errorf("unknown symbol %q", symbol)
	}

	s.running.Lock()
	defer s.running.Unlock()

	updated, err := s.Pipeline.Refresh(ctx, st)
	if err != nil {
		return st, err
	}
	s.Registry.Put(updated)
	s.notify(updated)
	return updated, nil
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running scheduled refresh")
	if failed := s.refreshAll(); len(failed) > 0 {
		log.Printf("[WARN] refresh failed for %v", failed)
	}
}

// refreshAll runs one sweep; overlapping sweeps are serialized.
func (s *Scheduler) refreshAll() []string {
	s.running.Lock()
	defer s.running.Unlock()

	failed := s.Pipeline.RefreshAll(s.Ctx, s.Registry)
	bad := make(map[string]bool, len(failed))
	for _, f := range failed {
		bad[f] = true
	}
	for _, st := range s.Registry.All() {
		if !bad[st.Symbol] && st.Fitted() {
			s.notify(st)
		}
	}
	return failed
}

func (s *Scheduler) notify(st pipeline.Stock) {
	if s.OnRefreshed != nil {
		s.OnRefreshed(st)
	}
}
