package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenAIRequiresModel(t *testing.T) {
	if _, err := NewOpenAI(Config{APIKey: "k"}); err == nil {
		t.Fatal("expected error without model")
	}
}

func TestSummarize(t *testing.T) {
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"  幣安上線新代幣。 "}}]}`))
	}))
	defer ts.Close()

	c, err := NewOpenAI(Config{APIKey: "k", Model: "gpt-4o-mini", BaseURL: ts.URL, Language: "Traditional Chinese"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Summarize(context.Background(), "Binance will list XYZ")
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if got != "幣安上線新代幣。" {
		t.Errorf("summary = %q", got)
	}
	if req.Model != "gpt-4o-mini" || len(req.Messages) != 2 || req.Messages[1].Content != "Binance will list XYZ" {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestSummarizeEmptyText(t *testing.T) {
	c, _ := NewOpenAI(Config{APIKey: "k", Model: "m", BaseURL: "http://127.0.0.1:1"})
	got, err := c.Summarize(context.Background(), "   ")
	if err != nil || got != "" {
		t.Errorf("got %q, %v", got, err)
	}
}
