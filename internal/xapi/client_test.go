package xapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tweetwatch/internal/model"
)

const sampleBody = `{
  "data": [
    {"id": "1002", "author_id": "7", "text": "Binance lists new Alpha token", "created_at": "2025-07-01T08:30:00.000Z"},
    {"id": "1001", "author_id": "42", "text": "TGE today", "created_at": "2025-07-01T08:00:00.000Z"}
  ],
  "includes": {"users": [{"id": "7", "name": "Binance", "username": "binance"}]},
  "meta": {"newest_id": "1002", "oldest_id": "1001", "result_count": 2}
}`

func TestSearch(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "tok", time.Second)
	res, err := c.Search(context.Background(), model.SearchQuery{
		Query:      "alpha OR TGE",
		StartTime:  "2025-07-01T07:00:00.000Z",
		SinceID:    "999",
		MaxResults: 50,
	})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if got.URL.Path != "/2/tweets/search/recent" {
		t.Errorf("path = %q", got.URL.Path)
	}
	if h := got.Header.Get("Authorization"); h != "Bearer tok" {
		t.Errorf("authorization = %q", h)
	}
	q := got.URL.Query()
	checks := map[string]string{
		"query":       "alpha OR TGE",
		"start_time":  "2025-07-01T07:00:00.000Z",
		"since_id":    "999",
		"max_results": "10",
		"sort_order":  "recency",
		"expansions":  "author_id",
	}
	for k, want := range checks {
		if q.Get(k) != want {
			t.Errorf("param %s = %q, want %q", k, q.Get(k), want)
		}
	}
	if len(res.Items) != 2 || res.Items[0].ID != "1002" || res.Items[1].ID != "1001" {
		t.Fatalf("items order not preserved: %+v", res.Items)
	}
	if res.AuthorsByID["7"].Username != "binance" {
		t.Errorf("author lookup = %+v", res.AuthorsByID)
	}
	if _, ok := res.AuthorsByID["42"]; ok {
		t.Errorf("unexpected author 42")
	}
	if res.NewestID != "1002" {
		t.Errorf("newest id = %q", res.NewestID)
	}
}

func TestSearchOmitsOptionalParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has("since_id") || q.Has("start_time") {
			t.Errorf("optional params should be omitted: %v", q)
		}
		_, _ = w.Write([]byte(`{"meta":{"result_count":0}}`))
	}))
	defer ts.Close()

	res, err := NewClient(ts.URL, "tok", time.Second).Search(context.Background(), model.SearchQuery{Query: "from:binance"})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(res.Items) != 0 || len(res.AuthorsByID) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestSearchRemoteRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"title":"Too Many Requests"}`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, "tok", time.Second).Search(context.Background(), model.SearchQuery{Query: "x"})
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Kind != KindRemoteRejected || fe.StatusCode != http.StatusTooManyRequests {
		t.Errorf("unexpected error: %+v", fe)
	}
	if fe.Body != `{"title":"Too Many Requests"}` {
		t.Errorf("body = %q", fe.Body)
	}
}

func TestSearchTransport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := NewClient(url, "tok", time.Second).Search(context.Background(), model.SearchQuery{Query: "x"})
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind != KindTransport {
		t.Fatalf("expected transport FetchError, got %v", err)
	}
}

func TestSearchDecode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": "oops"`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, "tok", time.Second).Search(context.Background(), model.SearchQuery{Query: "x"})
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind != KindDecode {
		t.Fatalf("expected decode FetchError, got %v", err)
	}
}
