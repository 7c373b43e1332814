// Package summarize produces AI-written summary documents for Markdown
// files via the OpenAI chat-completions API.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sashabaranov/go-openai"
)

// systemPrompt instructs the model to return a structured technical
// summary in Markdown.
const systemPrompt = `You are a documentation engineer. Summarize the content of the ` +
	`Markdown document into a clean, structured technical summary. ` +
	`Your output MUST be Markdown. Avoid opinions. Keep it concise, ` +
	`informative, and suitable for a doc-as-code environment.

Structure your output like this:

## Overview
- What the document covers

## Key Points
- Bullet list of essential concepts

## Recommended Uses
- Where this summary is useful
`

// Options configures the summarizer.
type Options struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	// BaseURL overrides the API endpoint (tests point it at a local server).
	BaseURL string

	RetryAttempts uint
	RetryDelay    time.Duration
}

// Summarizer calls the OpenAI API to summarize document bodies.
type Summarizer struct {
	client *openai.Client
	opts   Options
}

// New creates a Summarizer. The API key is required; failing here keeps
// the summarize command from touching any file before credentials are
// known to be present.
func New(opts Options) (*Summarizer, error) {
	if opts.APIKey == "" {
		return nil, errors.New("summarize: OPENAI_API_KEY is not set")
	}
	if opts.Model == "" {
		opts.Model = openai.GPT4oMini
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 600
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	return &Summarizer{
		client: openai.NewClientWithConfig(cfg),
		opts:   opts,
	}, nil
}

// Summarize sends body to the model and returns the summary text.
// Transient API failures are retried with exponential backoff.
func (s *Summarizer) Summarize(ctx context.Context, body string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.opts.Model,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: body},
		},
	}

	var resp openai.ChatCompletionResponse
	err := retry.Do(
		func() error {
			var apiErr error
			resp, apiErr = s.client.CreateChatCompletion(ctx, req)
			return apiErr
		},
		retry.RetryIf(isRetryable),
		retry.Attempts(s.opts.RetryAttempts),
		retry.Delay(s.opts.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("summarize: api call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("summarize: api returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// isRetryable reports whether an API error is worth retrying:
// rate limits, server errors, and transport failures. Auth and request
// errors fail immediately.
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	// Transport-level failure.
	return true
}
