package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/bryanwahyu/ai-playground/internal/domain/analysis"
)

const (
	maxLabels  = 10
	maxObjects = 10
	topLabels  = 5
)

type Client struct {
	key      string
	endpoint string
	timeout  time.Duration
}

// NewClient builds the vision-api adapter. endpoint overrides the Google
// endpoint and is empty in production.
func NewClient(apiKey, endpoint string, timeout time.Duration) *Client {
	return &Client{key: strings.TrimSpace(apiKey), endpoint: endpoint, timeout: timeout}
}

func (c *Client) Name() string     { return "google" }
func (c *Client) Configured() bool { return c.key != "" }

func (c *Client) SummarizeDocument(ctx context.Context, doc analysis.Document) (analysis.Output, error) {
	return analysis.Output{}, fmt.Errorf("google vision: documents: %w", analysis.ErrUnsupported)
}

// DescribeImage sends one annotate request asking for labels, text, faces
// and objects at once, and renders the answer as a readable report.
func (c *Client) DescribeImage(ctx context.Context, img analysis.Image, focus string) (analysis.Output, error) {
	if !c.Configured() {
		return analysis.Output{}, fmt.Errorf("google vision: %w", analysis.ErrNotConfigured)
	}

	opts := []option.ClientOption{option.WithAPIKey(c.key)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return analysis.Output{}, fmt.Errorf("%w: google vision client: %w", analysis.ErrUpstream, err)
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(img.Data)},
			Features: []*vision.Feature{
				{Type: "LABEL_DETECTION", MaxResults: maxLabels},
				{Type: "TEXT_DETECTION"},
				{Type: "FACE_DETECTION"},
				{Type: "OBJECT_LOCALIZATION", MaxResults: maxObjects},
			},
		}},
	}
	resp, err := svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return analysis.Output{}, classify(err)
	}
	if len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return analysis.Output{}, fmt.Errorf("%w: google vision returned no responses", analysis.ErrBadResponse)
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Code != 0 {
		return analysis.Output{}, fmt.Errorf("%w: google vision status %d: %s", analysis.ErrUpstream, r.Error.Code, r.Error.Message)
	}

	text, points := Report(r)
	out := analysis.Output{Text: text, KeyPoints: points, Model: "vision/v1"}
	if f := strings.TrimSpace(focus); f != "" {
		out.Note = "Requested focus: " + f + ". Label detection covers the whole image."
	}
	return out, nil
}

// Report renders the four annotation categories. Key points are the top labels.
func Report(r *vision.AnnotateImageResponse) (string, []string) {
	var sections []string
	var points []string

	if len(r.LabelAnnotations) > 0 {
		var b strings.Builder
		b.WriteString("Labels:")
		for _, l := range r.LabelAnnotations {
			fmt.Fprintf(&b, "\n- %s (%.1f%%)", l.Description, l.Score*100)
			if len(points) < topLabels {
				points = append(points, l.Description)
			}
		}
		sections = append(sections, b.String())
	}

	if len(r.TextAnnotations) > 0 {
		if t := strings.TrimSpace(r.TextAnnotations[0].Description); t != "" {
			sections = append(sections, "Detected text:\n"+t)
		}
	}

	if n := len(r.FaceAnnotations); n > 0 {
		noun := "faces"
		if n == 1 {
			noun = "face"
		}
		sections = append(sections, fmt.Sprintf("Faces detected: %d %s", n, noun))
	}

	if len(r.LocalizedObjectAnnotations) > 0 {
		var b strings.Builder
		b.WriteString("Objects:")
		for _, o := range r.LocalizedObjectAnnotations {
			fmt.Fprintf(&b, "\n- %s (%.1f%%)", o.Name, o.Score*100)
		}
		sections = append(sections, b.String())
	}

	if len(sections) == 0 {
		return "No labels, text, faces or objects were detected in this image.", []string{}
	}
	return strings.Join(sections, "\n\n"), points
}

func classify(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if gErr.Code == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w: %w", analysis.ErrUpstream, analysis.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("%w: google vision status %d: %w", analysis.ErrUpstream, gErr.Code, err)
	}
	return fmt.Errorf("%w: google vision: %w", analysis.ErrUpstream, err)
}
