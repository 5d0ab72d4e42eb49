package monitor

import (
	"context"
	"strings"
	"time"

	"tweetwatch/internal/model"
)

// FilterMode selects how the search query is built.
type FilterMode int

const (
	// ModeKeywordSearch searches for any of the keywords.
	ModeKeywordSearch FilterMode = iota
	// ModeAuthorScoped searches posts by a single account, optionally gated by keywords.
	ModeAuthorScoped
)

// FilterConfig describes what a dispatch cycle watches.
type FilterConfig struct {
	Mode     FilterMode
	Keywords []string
	Handle   string // account handle without "@", ModeAuthorScoped only
	Query    string // raw query override; wins over the generated query
}

// KeywordSearch watches any post containing one of keywords.
func KeywordSearch(keywords ...string) FilterConfig {
	return FilterConfig{Mode: ModeKeywordSearch, Keywords: keywords}
}

// AuthorScoped watches posts by handle. With no keywords every post is forwarded.
func AuthorScoped(handle string, keywords ...string) FilterConfig {
	return FilterConfig{Mode: ModeAuthorScoped, Handle: strings.TrimPrefix(handle, "@"), Keywords: keywords}
}

// QueryString renders the search query for f.
func (f FilterConfig) QueryString() string {
	if q := strings.TrimSpace(f.Query); q != "" {
		return q
	}
	switch f.Mode {
	case ModeAuthorScoped:
		return "from:" + f.Handle
	default:
		return strings.Join(usableKeywords(f.Keywords), " OR ")
	}
}

// PassThrough reports whether every fetched item is forwarded unconditionally.
func (f FilterConfig) PassThrough() bool {
	return len(usableKeywords(f.Keywords)) == 0
}

// Searcher is the search collaborator.
type Searcher interface {
	Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error)
}

// FetchOptions holds the per-cycle query knobs.
type FetchOptions struct {
	Lookback   time.Duration // zero disables start_time
	MaxResults int
	Now        time.Time
}

// BuildQuery assembles the search parameters for one cycle.
func BuildQuery(f FilterConfig, sinceID string, opts FetchOptions) model.SearchQuery {
	q := model.SearchQuery{
		Query:      f.QueryString(),
		SinceID:    sinceID,
		MaxResults: model.ClampMaxResults(opts.MaxResults),
	}
	if opts.Lookback > 0 {
		q.StartTime = LowerBound(opts.Now, opts.Lookback)
	}
	return q
}

// Fetch runs one search scoped to items newer than the watermark. It never
// mutates the watermark; an empty result is not an error.
func Fetch(ctx context.Context, s Searcher, f FilterConfig, wm *Watermark, opts FetchOptions) (model.SearchResult, error) {
	q := BuildQuery(f, wm.LastSeen(), opts)
	res, err := s.Search(ctx, q)
	if err != nil {
		return model.SearchResult{}, err
	}
	if res.AuthorsByID == nil {
		res.AuthorsByID = map[string]model.Author{}
	}
	return res, nil
}
