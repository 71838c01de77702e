package huggingface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/bryanwahyu/ai-playground/internal/domain/analysis"
)

const (
	ApiBaseUrl = "https://api-inference.huggingface.co/models"

	SummaryModel = "facebook/bart-large-cnn"

	minCaptionLen   = 10
	maxSummaryInput = 1000
)

// CaptionModels are tried in order; the first usable caption wins.
var CaptionModels = []string{
	"Salesforce/blip-image-captioning-large",
	"nlpconnect/vit-gpt2-image-captioning",
	"microsoft/git-base-coco",
}

type ClientOpts struct {
	BaseURL       string
	Token         string
	Timeout       time.Duration
	CaptionModels []string
	SummaryModel  string
}

type Client struct {
	httpClient    *resty.Client
	token         string
	captionModels []string
	summaryModel  string
}

type generated struct {
	GeneratedText string `json:"generated_text"`
}

type summary struct {
	SummaryText string `json:"summary_text"`
}

type summaryRequest struct {
	Inputs     string            `json:"inputs"`
	Parameters summaryParameters `json:"parameters"`
}

type summaryParameters struct {
	MinLength int  `json:"min_length"`
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

func NewClient(opts ClientOpts) *Client {
	c := Client{
		token:         strings.TrimSpace(opts.Token),
		captionModels: CaptionModels,
		summaryModel:  SummaryModel,
	}
	if len(opts.CaptionModels) > 0 {
		c.captionModels = opts.CaptionModels
	}
	if opts.SummaryModel != "" {
		c.summaryModel = opts.SummaryModel
	}
	baseURL := ApiBaseUrl
	if opts.BaseURL != "" {
		baseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	c.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		c.httpClient.SetTimeout(opts.Timeout)
	}
	return &c
}

func (c *Client) Name() string     { return "huggingface" }
func (c *Client) Configured() bool { return c.token != "" }

func (c *Client) req(ctx context.Context) *resty.Request {
	return c.httpClient.
		NewRequest().
		SetContext(ctx).
		SetAuthToken(c.token)
}

// DescribeImage tries each captioning model in turn, strictly one after the
// other, and stops at the first caption of at least ten characters.
func (c *Client) DescribeImage(ctx context.Context, img analysis.Image, focus string) (analysis.Output, error) {
	if !c.Configured() {
		return analysis.Output{}, fmt.Errorf("huggingface: %w", analysis.ErrNotConfigured)
	}
	mime := img.MIMEType
	if mime == "" {
		mime = "application/octet-stream"
	}

	var errs []error
	for _, model := range c.captionModels {
		if err := ctx.Err(); err != nil {
			return analysis.Output{}, fmt.Errorf("%w: %w", analysis.ErrUpstream, err)
		}
		var out []generated
		_, err := handleError(c.req(ctx).
			SetHeader("Content-Type", mime).
			SetBody(img.Data).
			SetResult(&out).
			Post("/" + model))
		if err != nil {
			log.Debug().Err(err).Str("model", model).Msg("caption candidate failed")
			errs = append(errs, err)
			continue
		}
		if len(out) == 0 || len(strings.TrimSpace(out[0].GeneratedText)) < minCaptionLen {
			errs = append(errs, fmt.Errorf("%w: %s returned no usable caption", analysis.ErrBadResponse, model))
			continue
		}
		return analysis.Output{Text: captionText(out[0].GeneratedText), Note: focusNote(focus), Model: model}, nil
	}
	return analysis.Output{}, joinCandidateErrors(errs)
}

func (c *Client) SummarizeDocument(ctx context.Context, doc analysis.Document) (analysis.Output, error) {
	if !c.Configured() {
		return analysis.Output{}, fmt.Errorf("huggingface: %w", analysis.ErrNotConfigured)
	}
	input := []rune(doc.Text)
	if len(input) > maxSummaryInput {
		input = input[:maxSummaryInput]
	}

	var out []summary
	_, err := handleError(c.req(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(summaryRequest{
			Inputs:     string(input),
			Parameters: summaryParameters{MinLength: 30, MaxLength: 150, DoSample: false},
		}).
		SetResult(&out).
		Post("/" + c.summaryModel))
	if err != nil {
		return analysis.Output{}, err
	}
	if len(out) == 0 || strings.TrimSpace(out[0].SummaryText) == "" {
		return analysis.Output{}, fmt.Errorf("%w: %s returned no summary_text", analysis.ErrBadResponse, c.summaryModel)
	}
	return analysis.Output{Text: out[0].SummaryText, Model: c.summaryModel}, nil
}

func captionText(caption string) string {
	caption = strings.TrimSpace(caption)
	if r := []rune(caption); len(r) > 0 {
		caption = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	if !strings.HasSuffix(caption, ".") {
		caption += "."
	}
	return caption
}

func focusNote(focus string) string {
	if f := strings.TrimSpace(focus); f != "" {
		return "Requested focus: " + f + ". Captioning models describe the whole image and do not take a focus hint."
	}
	return ""
}

// joinCandidateErrors reports a bad response only when every candidate
// answered with unusable output. Any transport or status failure makes the
// whole attempt an upstream failure.
func joinCandidateErrors(errs []error) error {
	if len(errs) == 0 {
		return fmt.Errorf("%w: no caption models configured", analysis.ErrUpstream)
	}
	joined := errors.Join(errs...)
	allBad := true
	for _, err := range errs {
		if errors.Is(err, analysis.ErrQuotaExceeded) {
			return fmt.Errorf("%w: %w: %v", analysis.ErrUpstream, analysis.ErrQuotaExceeded, joined)
		}
		if !errors.Is(err, analysis.ErrBadResponse) {
			allBad = false
		}
	}
	if allBad {
		return fmt.Errorf("%w: all caption models: %v", analysis.ErrBadResponse, joined)
	}
	return fmt.Errorf("%w: all caption models: %v", analysis.ErrUpstream, joined)
}

// handleError turns transport failures and >399 responses into classified
// errors. Without it a failing response would have a nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, fmt.Errorf("%w: huggingface: %w", analysis.ErrUpstream, err)
	}
	if res.IsError() {
		base := fmt.Errorf("%w: %s %s (status: %d)", analysis.ErrUpstream, res.Request.Method, res.Request.URL, res.StatusCode())
		if res.StatusCode() == http.StatusTooManyRequests {
			return res, fmt.Errorf("%w: %w", base, analysis.ErrQuotaExceeded)
		}
		return res, base
	}
	return res, nil
}
