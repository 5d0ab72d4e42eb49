package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient condenses a post into one line using the Chat Completions API.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	language string
}

type Config struct {
	APIKey   string
	Model    string
	BaseURL  string // optional
	Language string
}

// NewOpenAI builds a client; the model is required.
func NewOpenAI(cfg Config) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("openai: model must be specified")
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:   openai.NewClientWithConfig(cc),
		model:    cfg.Model,
		language: cfg.Language,
	}, nil
}

// Summarize returns a single sentence describing text.
func (o *OpenAIClient) Summarize(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if r := []rune(text); len(r) > 1000 {
		text = string(r[:1000])
	}

	sys := fmt.Sprintf(`
		Summarize the social media post in %s in one short sentence (at most 40 words).
		Keep token names, tickers, dates and numbers exactly as written.
		Output the sentence only, no quotes, no links.
		`, langOrDefault(o.language))
	out, err := o.create(ctx, sys, text)
	if err != nil {
		slog.Error("openai: summarize error", "err", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func langOrDefault(lang string) string {
	l := strings.TrimSpace(lang)
	if l == "" {
		return "English"
	}
	return l
}
