package view

import "github.com/zappabad/newsdesk/internal/news"

// Phase is the lifecycle step a QueryEvent reports.
type Phase int

const (
	PhaseStarted Phase = iota
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseStarted:
		return "started"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// QueryEvent reports progress of one backend query.
type QueryEvent struct {
	// Key is the unsuffixed query key.
	Key news.QueryKey
	// Generation ties the event to one load; events from older loads are ignored.
	Generation uint64
	Symbol     string
	Phase      Phase

	Market   []news.MarketNewsItem
	Research []news.DeepResearchItem
	Err      error
}
