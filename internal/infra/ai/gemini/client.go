package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bryanwahyu/ai-playground/internal/domain/analysis"
	"github.com/bryanwahyu/ai-playground/internal/infra/ai/prompt"
)

const defaultModel = "gemini-2.5-flash"

type Engine struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

func New(apiKey, model string, timeout time.Duration) *Engine {
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultModel
	}
	return &Engine{APIKey: strings.TrimSpace(apiKey), Model: model, Timeout: timeout}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) Configured() bool { return e.APIKey != "" }

func (e *Engine) DescribeImage(ctx context.Context, img analysis.Image, focus string) (analysis.Output, error) {
	mime := img.MIMEType
	if mime == "" {
		mime = http.DetectContentType(img.Data)
	}
	return e.generate(ctx, prompt.ImageSystemPrompt(),
		genai.Text(prompt.ImageUserPrompt(focus)),
		genai.Blob{MIMEType: mime, Data: img.Data},
	)
}

func (e *Engine) SummarizeDocument(ctx context.Context, doc analysis.Document) (analysis.Output, error) {
	return e.generate(ctx, prompt.DocumentSystemPrompt(), genai.Text(prompt.DocumentUserPrompt(doc.Type, doc.Text)))
}

func (e *Engine) generate(ctx context.Context, system string, parts ...genai.Part) (analysis.Output, error) {
	if !e.Configured() {
		return analysis.Output{}, fmt.Errorf("gemini: %w", analysis.ErrNotConfigured)
	}
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return analysis.Output{}, fmt.Errorf("%w: gemini client: %w", analysis.ErrUpstream, err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return analysis.Output{}, classify(err)
	}
	txt := strings.TrimSpace(firstText(resp))
	if txt == "" {
		return analysis.Output{}, fmt.Errorf("%w: gemini returned empty response", analysis.ErrBadResponse)
	}
	return analysis.Output{Text: txt, Model: e.Model}, nil
}

// callContext bounds one generate call by the configured timeout.
func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.Timeout)
}

func classify(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w: %w", analysis.ErrUpstream, analysis.ErrQuotaExceeded, err)
	}
	if status.Code(err) == codes.ResourceExhausted {
		return fmt.Errorf("%w: %w: %w", analysis.ErrUpstream, analysis.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: gemini: %w", analysis.ErrUpstream, err)
}

// firstText returns the first text part across all candidates.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
