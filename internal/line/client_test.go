package line

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestPush(t *testing.T) {
	var body pushRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/message/push" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if h := r.Header.Get("Authorization"); h != "Bearer tok" {
			t.Errorf("authorization = %q", h)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := New(ts.URL, "tok", time.Second, 0)
	if err := c.Push(context.Background(), "C123", "hello"); err != nil {
		t.Fatalf("Push error: %v", err)
	}
	if body.To != "C123" || len(body.Messages) != 1 || body.Messages[0].Text != "hello" || body.Messages[0].Type != "text" {
		t.Errorf("unexpected payload: %+v", body)
	}
}

func TestPushRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"The property, 'to', in the request body is invalid"}`))
	}))
	defer ts.Close()

	err := New(ts.URL, "tok", time.Second, 0).Push(context.Background(), "bad", "hello")
	var pe *PushError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PushError, got %v", err)
	}
	if pe.StatusCode != http.StatusBadRequest || !strings.Contains(pe.Body, "invalid") {
		t.Errorf("unexpected error: %+v", pe)
	}
}

func TestPushEmptyDestination(t *testing.T) {
	if err := New("", "tok", time.Second, 0).Push(context.Background(), " ", "x"); err == nil {
		t.Fatal("expected error for empty destination")
	}
}

func TestReply(t *testing.T) {
	var body replyRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/message/reply" {
			t.Errorf("path = %q", r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
	}))
	defer ts.Close()

	if err := New(ts.URL, "tok", time.Second, 0).Reply(context.Background(), "rt-1", "hi"); err != nil {
		t.Fatalf("Reply error: %v", err)
	}
	if body.ReplyToken != "rt-1" || body.Messages[0].Text != "hi" {
		t.Errorf("unexpected payload: %+v", body)
	}
}

func TestRateLimitHonorsContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	c := New(ts.URL, "tok", time.Second, 0.1)
	if err := c.Push(context.Background(), "C1", "first"); err != nil {
		t.Fatalf("first push: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := c.Push(ctx, "C1", "second"); err == nil {
		t.Fatal("expected limiter wait to fail within deadline")
	}
}

func TestNewTextTruncates(t *testing.T) {
	long := strings.Repeat("幣", MaxTextRunes+10)
	m := newText(long)
	if n := utf8.RuneCountInString(m.Text); n != MaxTextRunes {
		t.Errorf("rune count = %d, want %d", n, MaxTextRunes)
	}
	if short := newText("ok"); short.Text != "ok" {
		t.Errorf("short text changed: %q", short.Text)
	}
}
