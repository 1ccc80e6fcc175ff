package news

// QueryKey identifies one cached backend query.
type QueryKey string

const (
	KeyMarketNews          QueryKey = "stocks-news"
	KeyRelatedMarketNews   QueryKey = "related-stocks-news"
	KeyDeepResearch        QueryKey = "deep-research"
	KeyRelatedDeepResearch QueryKey = "related-deep-research"
)

// ForSymbol returns the cache key of a symbol-filtered query.
// Unfiltered keys and empty symbols are returned unchanged.
func (k QueryKey) ForSymbol(symbol string) QueryKey {
	if symbol == "" || !k.Filtered() {
		return k
	}
	return k + QueryKey(":"+symbol)
}

// Filtered reports whether the key belongs to a symbol-filtered query.
func (k QueryKey) Filtered() bool {
	base := k.Base()
	return base == KeyRelatedMarketNews || base == KeyRelatedDeepResearch
}

// Base strips the symbol suffix from a filtered key.
func (k QueryKey) Base() QueryKey {
	for i := 0; i < len(k); i++ {
		if k[i] == ':' {
			return k[:i]
		}
	}
	return k
}

// MarketNewsItem is a short-form market headline from an external provider.
type MarketNewsItem struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"` // epoch seconds
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// DeepResearchItem is an internally authored research article tied to a symbol.
type DeepResearchItem struct {
	ID          string `json:"_id"`
	Title       string `json:"newsTitle"`
	Description string `json:"newsDescription"`
	Image       string `json:"newsImage"`
	Views       int64  `json:"views"`
	Symbol      string `json:"symbol"`
	Source      string `json:"source"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	Revision    int    `json:"__v"`
}

// Envelope is the response wrapper used by every news endpoint.
type Envelope[T any] struct {
	Data []T `json:"data"`
}
