package model

// Item is a single post returned by the search API.
type Item struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	Text     string `json:"text"`
	// CreatedAt is kept as the raw wire string; formatting falls back to it.
	CreatedAt string `json:"created_at"`
}

// Author is the expanded user record for an item's author.
type Author struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// SearchQuery holds the parameters of one recent-search request.
type SearchQuery struct {
	Query      string
	StartTime  string // optional, already in wire format
	SinceID    string // optional
	MaxResults int
}

// SearchResult is the parsed response of one search call.
type SearchResult struct {
	Items       []Item
	AuthorsByID map[string]Author
	NewestID    string
}

// DispatchResult summarizes one dispatch cycle.
type DispatchResult struct {
	Success        bool   `json:"success"`
	ProcessedCount int    `json:"processed_count"`
	Message        string `json:"message"`
}

// MaxResultsCap is the free-tier page size limit for recent search.
const MaxResultsCap = 10

// MinMaxResults is the smallest page size recent search accepts.
const MinMaxResults = 10

// ClampMaxResults bounds n to [MinMaxResults, MaxResultsCap].
func ClampMaxResults(n int) int {
	if n < MinMaxResults {
		return MinMaxResults
	}
	if n > MaxResultsCap {
		return MaxResultsCap
	}
	return n
}
