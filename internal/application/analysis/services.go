package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bryanwahyu/ai-playground/internal/application"
	domain "github.com/bryanwahyu/ai-playground/internal/domain/analysis"
)

// Recorder receives dispatch outcomes. The Prometheus collectors in
// middleware implement it; a nil Recorder disables reporting.
type Recorder interface {
	ObserveAnalysis(kind, requested, served string)
	ObserveFallback(provider, reason string)
	ObserveProviderCall(provider string, d time.Duration, err error)
}

// Service is the dispatcher. It is safe for concurrent use: all fields are
// set once at construction and only read afterwards.
type Service struct {
	Providers map[domain.ProviderChoice]domain.Provider
	Local     domain.LocalAnalyzer
	Pages     domain.PageFetcher
	Clock     application.Clock
	Metrics   Recorder
	Logger    *zerolog.Logger
}

//
// ==== USE CASES ====
//

// Command untuk describe image
type DescribeImageCommand struct {
	Image  domain.Image
	Choice string
	Focus  string
}

// Command untuk ringkas dokumen
type SummarizeDocumentCommand struct {
	Text   string
	Type   string
	Choice string
}

// Command untuk ringkas halaman web
type SummarizeURLCommand struct {
	URL    string
	Choice string
}

// DescribeImage resolves the caller's provider choice and analyzes an image.
func (s *Service) DescribeImage(ctx context.Context, cmd DescribeImageCommand) (domain.Result, error) {
	return s.Analyze(ctx, domain.Request{
		Kind:   domain.KindImage,
		Choice: s.parseChoice(cmd.Choice),
		Image:  cmd.Image,
		Focus:  cmd.Focus,
	})
}

// SummarizeDocument summarizes plain text. The word count is always taken
// from the input, whichever provider served the request.
func (s *Service) SummarizeDocument(ctx context.Context, cmd SummarizeDocumentCommand) (domain.Result, error) {
	docType := strings.TrimSpace(cmd.Type)
	if docType == "" {
		docType = "text"
	}
	res, err := s.Analyze(ctx, domain.Request{
		Kind:     domain.KindDocument,
		Choice:   s.parseChoice(cmd.Choice),
		Document: domain.Document{Text: cmd.Text, Type: docType},
	})
	if err != nil {
		return domain.Result{}, err
	}
	res.WordCount = len(strings.Fields(cmd.Text))
	res.Classification = docType
	return res, nil
}

// SummarizeURL fetches a page and summarizes its readable text as a "webpage" document.
func (s *Service) SummarizeURL(ctx context.Context, cmd SummarizeURLCommand) (domain.Result, error) {
	if s.Pages == nil {
		return domain.Result{}, fmt.Errorf("%w: no page fetcher", domain.ErrPageFetch)
	}
	page, err := s.Pages.Fetch(ctx, cmd.URL)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: %w", domain.ErrPageFetch, err)
	}
	if strings.TrimSpace(page.Text) == "" {
		return domain.Result{}, fmt.Errorf("%w: %s has no readable text", domain.ErrPageFetch, cmd.URL)
	}
	return s.SummarizeDocument(ctx, SummarizeDocumentCommand{Text: page.Text, Type: "webpage", Choice: cmd.Choice})
}

// ProviderStatus reports which providers have credentials.
func (s *Service) ProviderStatus() map[domain.ProviderChoice]bool {
	out := make(map[domain.ProviderChoice]bool, len(domain.Choices))
	for _, c := range domain.Choices {
		if c == domain.ChoiceLocal {
			out[c] = true
			continue
		}
		p, ok := s.Providers[c]
		out[c] = ok && p != nil && p.Configured()
	}
	return out
}

// Analyze dispatches req to the chosen provider and falls back to the local
// analyzer on any failure. Only empty content and a local analyzer failure
// are returned as errors.
func (s *Service) Analyze(ctx context.Context, req domain.Request) (domain.Result, error) {
	if isEmpty(req) {
		return domain.Result{}, domain.ErrEmptyContent
	}
	req.Choice, _ = domain.ParseChoice(string(req.Choice))

	if req.Choice == domain.ChoiceLocal {
		return s.analyzeLocally(req, "")
	}

	res, err := s.invoke(ctx, req)
	if err == nil {
		return res, nil
	}

	reason := domain.FailureReason(err)
	s.logger().Warn().
		Err(err).
		Str("provider", string(req.Choice)).
		Str("reason", reason).
		Str("kind", string(req.Kind)).
		Msg("provider failed, falling back to local analyzer")
	if s.Metrics != nil {
		s.Metrics.ObserveFallback(string(req.Choice), reason)
	}
	return s.analyzeLocally(req, reason)
}

func (s *Service) invoke(ctx context.Context, req domain.Request) (domain.Result, error) {
	p, ok := s.Providers[req.Choice]
	if !ok || p == nil || !p.Configured() {
		return domain.Result{}, fmt.Errorf("%s: %w", req.Choice, domain.ErrNotConfigured)
	}

	start := s.now()
	var (
		out domain.Output
		err error
	)
	switch req.Kind {
	case domain.KindImage:
		out, err = p.DescribeImage(ctx, req.Image, req.Focus)
	case domain.KindDocument:
		out, err = p.SummarizeDocument(ctx, req.Document)
	default:
		err = fmt.Errorf("%w: kind %q", domain.ErrUnsupported, req.Kind)
	}
	if s.Metrics != nil {
		s.Metrics.ObserveProviderCall(p.Name(), s.now().Sub(start), err)
	}
	if err != nil {
		return domain.Result{}, err
	}

	res, err := domain.Normalize(req.Kind, p.Name(), out)
	if err != nil {
		return domain.Result{}, err
	}
	return s.finish(req, res, ""), nil
}

func (s *Service) analyzeLocally(req domain.Request, reason string) (domain.Result, error) {
	if s.Local == nil {
		return domain.Result{}, errors.New("local analyzer missing")
	}
	var out domain.Output
	if req.Kind == domain.KindImage {
		out = s.Local.DescribeImage(req.Image, req.Focus)
	} else {
		out = s.Local.SummarizeDocument(req.Document)
	}
	res, err := domain.Normalize(req.Kind, s.Local.Name(), out)
	if err != nil {
		return domain.Result{}, fmt.Errorf("local analyzer: %w", err)
	}
	return s.finish(req, res, reason), nil
}

func (s *Service) finish(req domain.Request, res domain.Result, reason string) domain.Result {
	res.Requested = req.Choice
	res.Fallback = reason != ""
	res.FallbackReason = reason
	res.AnalyzedAt = s.now()
	if s.Metrics != nil {
		s.Metrics.ObserveAnalysis(string(req.Kind), string(req.Choice), res.Provider)
	}
	return res
}

func (s *Service) parseChoice(raw string) domain.ProviderChoice {
	c, ok := domain.ParseChoice(raw)
	if !ok && strings.TrimSpace(raw) != "" {
		s.logger().Debug().Str("apiChoice", raw).Msg("unknown provider choice, using primary")
	}
	return c
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) logger() *zerolog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return &log.Logger
}

func isEmpty(req domain.Request) bool {
	if req.Kind == domain.KindImage {
		return len(req.Image.Data) == 0
	}
	return strings.TrimSpace(req.Document.Text) == ""
}
