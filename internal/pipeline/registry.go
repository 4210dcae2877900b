package pipeline

import (
	"sync"
)

// Registry holds the current Stock for every tracked symbol, in the order
// they were added.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	stocks map[string]Stock
}

func NewRegistry() *Registry {
	return &Registry{stocks: make(map[string]Stock)}
}

// Add tracks a symbol. Adding a known symbol only updates its URL.
func (r *Registry) Add(symbol, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stocks[symbol]
	if !ok {
		r.order = append(r.order, symbol)
		s.Symbol = symbol
	}
	s.URL = url
	r.stocks[symbol] = s
}

// Put stores s, replacing any previous state for its symbol.
func (r *Registry) Put(s Stock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stocks[s.Symbol]; !ok {
		r.order = append(r.order, s.Symbol)
	}
	r.stocks[s.Symbol] = s
}

func (r *Registry) Get(symbol string) (Stock, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stocks[symbol]
	return s, ok
}

// Names returns the tracked symbols in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns a snapshot of every tracked stock in insertion order.
func (r *Registry) All() []Stock {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Stock, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.stocks[name])
	}
	return out
}
