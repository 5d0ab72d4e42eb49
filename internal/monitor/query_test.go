package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"tweetwatch/internal/model"
)

func TestQueryString(t *testing.T) {
	tests := []struct {
		name string
		f    FilterConfig
		want string
	}{
		{"keywords", KeywordSearch("幣安", "上線", "alpha", "TGE"), "幣安 OR 上線 OR alpha OR TGE"},
		{"author", AuthorScoped("@binance"), "from:binance"},
		{"author with keywords", AuthorScoped("binance", "alpha"), "from:binance"},
		{"override", FilterConfig{Mode: ModeKeywordSearch, Keywords: []string{"x"}, Query: " #bnb -is:retweet "}, "#bnb -is:retweet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.QueryString(); got != tt.want {
				t.Errorf("QueryString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPassThrough(t *testing.T) {
	if !AuthorScoped("binance").PassThrough() {
		t.Error("author without keywords should pass through")
	}
	if AuthorScoped("binance", "alpha").PassThrough() {
		t.Error("author with keywords should be gated")
	}
	if !AuthorScoped("binance", " ").PassThrough() {
		t.Error("blank keywords should not gate")
	}
}

func TestBuildQuery(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	q := BuildQuery(KeywordSearch("alpha"), "123", FetchOptions{Lookback: time.Hour, MaxResults: 25, Now: now})
	if q.SinceID != "123" || q.MaxResults != 10 || q.StartTime != "2025-07-01T10:59:50.000Z" || q.Query != "alpha" {
		t.Errorf("unexpected query: %+v", q)
	}
	q = BuildQuery(KeywordSearch("alpha"), "", FetchOptions{})
	if q.StartTime != "" || q.SinceID != "" {
		t.Errorf("optional fields should be empty: %+v", q)
	}
}

type stubSearcher struct {
	queries []model.SearchQuery
	result  model.SearchResult
	err     error
}

func (s *stubSearcher) Search(_ context.Context, q model.SearchQuery) (model.SearchResult, error) {
	s.queries = append(s.queries, q)
	return s.result, s.err
}

func TestFetchUsesWatermarkAndDoesNotMutateIt(t *testing.T) {
	var wm Watermark
	wm.Advance("500")
	s := &stubSearcher{result: model.SearchResult{Items: []model.Item{{ID: "600"}}}}
	res, err := Fetch(context.Background(), s, KeywordSearch("a"), &wm, FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if s.queries[0].SinceID != "500" {
		t.Errorf("since_id = %q, want 500", s.queries[0].SinceID)
	}
	if wm.LastSeen() != "500" {
		t.Errorf("watermark mutated: %q", wm.LastSeen())
	}
	if res.AuthorsByID == nil {
		t.Error("authors map should never be nil")
	}
}

func TestFetchError(t *testing.T) {
	var wm Watermark
	s := &stubSearcher{err: errors.New("boom")}
	if _, err := Fetch(context.Background(), s, KeywordSearch("a"), &wm, FetchOptions{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildQueryRaisesSmallPageSize(t *testing.T) {
	q := BuildQuery(KeywordSearch("alpha"), "", FetchOptions{MaxResults: 3})
	if q.MaxResults != 10 {
		t.Errorf("max_results = %d, want 10", q.MaxResults)
	}
}
