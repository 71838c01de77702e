package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/ai-playground/internal/domain/analysis"
	"github.com/bryanwahyu/ai-playground/internal/infra/ai/prompt"
)

const (
	defaultModel = "gpt-4o"
	maxTokens    = 1024
)

type Client struct {
	api   *openai.Client
	key   string
	Model string
}

// NewClient builds the primary-llm adapter. An empty key yields a client that
// reports itself unconfigured and never dials out.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{api: openai.NewClientWithConfig(cfg), key: strings.TrimSpace(apiKey), Model: model}
}

func (c *Client) Name() string     { return "openai" }
func (c *Client) Configured() bool { return c.key != "" }

func (c *Client) DescribeImage(ctx context.Context, img analysis.Image, focus string) (analysis.Output, error) {
	mime := img.MIMEType
	if mime == "" {
		mime = http.DetectContentType(img.Data)
	}
	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)

	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.ImageSystemPrompt()},
		{Role: openai.ChatMessageRoleUser, MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt.ImageUserPrompt(focus)},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto}},
		}},
	})
}

func (c *Client) SummarizeDocument(ctx context.Context, doc analysis.Document) (analysis.Output, error) {
	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.DocumentSystemPrompt()},
		{Role: openai.ChatMessageRoleUser, Content: prompt.DocumentUserPrompt(doc.Type, doc.Text)},
	})
}

func (c *Client) complete(ctx context.Context, msgs []openai.ChatCompletionMessage) (analysis.Output, error) {
	if !c.Configured() {
		return analysis.Output{}, fmt.Errorf("openai: %w", analysis.ErrNotConfigured)
	}
	req := openai.ChatCompletionRequest{Model: c.Model, Messages: msgs}
	// reasoning models reject max_tokens
	if strings.HasPrefix(c.Model, "o1") || strings.HasPrefix(c.Model, "o3") || strings.HasPrefix(c.Model, "o4") || strings.HasPrefix(c.Model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return analysis.Output{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return analysis.Output{}, fmt.Errorf("%w: openai returned no choices", analysis.ErrBadResponse)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return analysis.Output{}, fmt.Errorf("%w: openai returned empty content", analysis.ErrBadResponse)
	}
	model := resp.Model
	if model == "" {
		model = c.Model
	}
	return analysis.Output{Text: text, Model: model}, nil
}

func classify(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w: %w", analysis.ErrUpstream, analysis.ErrQuotaExceeded, err)
	}
	if status != 0 {
		return fmt.Errorf("%w: openai status %d: %w", analysis.ErrUpstream, status, err)
	}
	return fmt.Errorf("%w: openai: %w", analysis.ErrUpstream, err)
}
