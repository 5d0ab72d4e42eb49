package xapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tweetwatch/internal/model"
)

const userAgent = "tweetwatch/1.0"

// Client is a minimal X API v2 recent search client.
// Docs: https://developer.x.com/en/docs/x-api/tweets/search/api-reference/get-tweets-search-recent
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a client. baseURL defaults to https://api.twitter.com.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.twitter.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Kind classifies a FetchError.
type Kind int

const (
	KindTransport Kind = iota
	KindRemoteRejected
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRemoteRejected:
		return "remote_rejected"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// FetchError is returned by Search for every failure.
type FetchError struct {
	Kind       Kind
	StatusCode int    // set for KindRemoteRejected
	Body       string // set for KindRemoteRejected
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindRemoteRejected:
		return fmt.Sprintf("x api: status=%d body=%s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("x api %s: %v", e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// searchResponse mirrors the subset of the recent search payload we care about.
type searchResponse struct {
	Data     []tweet `json:"data"`
	Includes struct {
		Users []user `json:"users"`
	} `json:"includes"`
	Meta struct {
		NewestID    string `json:"newest_id"`
		OldestID    string `json:"oldest_id"`
		ResultCount int    `json:"result_count"`
	} `json:"meta"`
}

type tweet struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type user struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Search runs one recent search request.
// API: GET /2/tweets/search/recent
func (c *Client) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	var zero model.SearchResult
	endpoint := c.baseURL + "/2/tweets/search/recent"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+queryValues(q).Encode(), nil)
	if err != nil {
		return zero, &FetchError{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return zero, &FetchError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		ferr := &FetchError{Kind: KindRemoteRejected, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		slog.Error("xapi: search rejected", "status", resp.StatusCode, "body", ferr.Body)
		return zero, ferr
	}
	var raw searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return zero, &FetchError{Kind: KindDecode, Err: err}
	}
	return convert(raw), nil
}

func queryValues(q model.SearchQuery) url.Values {
	v := url.Values{
		"query":        {q.Query},
		"tweet.fields": {"created_at,author_id,text,public_metrics"},
		"user.fields":  {"name,username"},
		"expansions":   {"author_id"},
		"max_results":  {strconv.Itoa(model.ClampMaxResults(q.MaxResults))},
		"sort_order":   {"recency"},
	}
	if q.StartTime != "" {
		v.Set("start_time", q.StartTime)
	}
	if q.SinceID != "" {
		v.Set("since_id", q.SinceID)
	}
	return v
}

func convert(raw searchResponse) model.SearchResult {
	out := model.SearchResult{
		Items:       make([]model.Item, 0, len(raw.Data)),
		AuthorsByID: make(map[string]model.Author, len(raw.Includes.Users)),
		NewestID:    raw.Meta.NewestID,
	}
	for _, u := range raw.Includes.Users {
		out.AuthorsByID[u.ID] = model.Author{ID: u.ID, Name: u.Name, Username: u.Username}
	}
	for _, t := range raw.Data {
		out.Items = append(out.Items, model.Item{
			ID:        t.ID,
			AuthorID:  t.AuthorID,
			Text:      t.Text,
			CreatedAt: t.CreatedAt,
		})
	}
	return out
}
