package view

import (
	"sync"

	"github.com/zappabad/newsdesk/internal/news"
)

// QueryState is the latest known state of one query.
type QueryState struct {
	Key        news.QueryKey
	Symbol     string
	Generation uint64
	Loading    bool
	Fetched    bool
	// Settled is true once a result for Symbol has landed. It survives
	// refetches of the same symbol so stored data keeps rendering.
	Settled bool
	Err     error

	Market   []news.MarketNewsItem
	Research []news.DeepResearchItem
}

// Snapshot is a point-in-time copy of every query state.
type Snapshot struct {
	Generation uint64
	Queries    map[news.QueryKey]QueryState
}

// Loading reports whether key is currently being fetched.
func (s Snapshot) Loading(key news.QueryKey) bool {
	return s.Queries[key].Loading
}

// Pending reports whether key is being fetched with nothing stored for its
// symbol yet. Background refetches are not pending.
func (s Snapshot) Pending(key news.QueryKey) bool {
	st := s.Queries[key]
	return st.Loading && !st.Settled
}

// Settled reports whether key has a result for its current symbol.
func (s Snapshot) Settled(key news.QueryKey) bool {
	return s.Queries[key].Settled
}

// MarketNews returns the market news of key. Missing or failed queries yield nil.
func (s Snapshot) MarketNews(key news.QueryKey) []news.MarketNewsItem {
	return s.Queries[key].Market
}

// DeepResearch returns the deep research items of key. Missing or failed queries yield nil.
func (s Snapshot) DeepResearch(key news.QueryKey) []news.DeepResearchItem {
	return s.Queries[key].Research
}

// Store is the authoritative query model. Only the service dispatcher writes it.
type Store struct {
	mu         sync.RWMutex
	generation uint64
	queries    map[news.QueryKey]QueryState
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{queries: make(map[news.QueryKey]QueryState)}
}

// Apply folds ev into the store. It reports false when the event belongs to an
// older generation and was dropped.
func (s *Store) Apply(ev QueryEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Generation < s.generation {
		return false
	}
	s.generation = ev.Generation

	st := s.queries[ev.Key]
	if st.Generation != ev.Generation {
		// new load: keep previous data on screen until the new result lands
		st.Generation = ev.Generation
		st.Fetched = false
		if st.Symbol != ev.Symbol {
			st.Market = nil
			st.Research = nil
			st.Settled = false
		}
	}
	st.Key = ev.Key
	st.Symbol = ev.Symbol

	switch ev.Phase {
	case PhaseStarted:
		st.Loading = true
		st.Err = nil
	case PhaseFinished:
		st.Loading = false
		st.Fetched = true
		st.Settled = true
		st.Err = ev.Err
		if ev.Err != nil {
			st.Market = nil
			st.Research = nil
		} else {
			st.Market = ev.Market
			st.Research = ev.Research
		}
	}

	s.queries[ev.Key] = st
	return true
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Snapshot{
		Generation: s.generation,
		Queries:    make(map[news.QueryKey]QueryState, len(s.queries)),
	}
	for k, st := range s.queries {
		st.Market = append([]news.MarketNewsItem(nil), st.Market...)
		st.Research = append([]news.DeepResearchItem(nil), st.Research...)
		out.Queries[k] = st
	}
	return out
}
