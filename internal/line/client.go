package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// MaxTextRunes is the LINE limit for a single text message.
const MaxTextRunes = 5000

// Client is a minimal HTTP client for the LINE Messaging API.
type Client struct {
	baseURL   string
	token     string
	http      *http.Client
	limiter   *rate.Limiter
	pushPath  string
	replyPath string
}

// New creates a new LINE client.
// baseURL should be like "https://api.line.me" (no trailing slash).
// ratePerSec bounds outgoing requests; zero or negative disables limiting.
func New(baseURL, token string, timeout time.Duration, ratePerSec float64) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.line.me"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if ratePerSec > 0 {
		burst := int(ratePerSec)
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(ratePerSec), burst)
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		http:      &http.Client{Timeout: timeout},
		limiter:   lim,
		pushPath:  "/v2/bot/message/push",
		replyPath: "/v2/bot/message/reply",
	}
}

// PushError is returned when LINE answers with a non-2xx status.
type PushError struct {
	StatusCode int
	Body       string
}

func (e *PushError) Error() string {
	return fmt.Sprintf("line: status=%d body=%s", e.StatusCode, e.Body)
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

// Push sends a text message to a user, group or room id.
func (c *Client) Push(ctx context.Context, to, text string) error {
	if c == nil {
		return errors.New("nil line client")
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("empty destination id")
	}
	return c.post(ctx, c.pushPath, pushRequest{To: to, Messages: []textMessage{newText(text)}})
}

// Reply answers a webhook event by its reply token.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	if c == nil {
		return errors.New("nil line client")
	}
	if strings.TrimSpace(replyToken) == "" {
		return errors.New("empty reply token")
	}
	return c.post(ctx, c.replyPath, replyRequest{ReplyToken: replyToken, Messages: []textMessage{newText(text)}})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &PushError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return nil
}

func newText(s string) textMessage {
	r := []rune(s)
	if len(r) > MaxTextRunes {
		s = string(r[:MaxTextRunes-1]) + "…"
	}
	return textMessage{Type: "text", Text: s}
}
