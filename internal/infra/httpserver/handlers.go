package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appanalysis "github.com/bryanwahyu/ai-playground/internal/application/analysis"
	domain "github.com/bryanwahyu/ai-playground/internal/domain/analysis"
	"github.com/bryanwahyu/ai-playground/internal/middleware"
)

type describeImageResponse struct {
	Description    string    `json:"description"`
	APIUsed        string    `json:"apiUsed"`
	Success        bool      `json:"success"`
	RequestedAPI   string    `json:"requestedApi"`
	Fallback       bool      `json:"fallback"`
	FallbackReason string    `json:"fallbackReason,omitempty"`
	Objects        []string  `json:"objects"`
	People         []string  `json:"people"`
	Emotions       []string  `json:"emotions"`
	Colors         []string  `json:"colors"`
	Scene          string    `json:"scene"`
	Confidence     int       `json:"confidence"`
	KeyPoints      []string  `json:"keyPoints"`
	Model          string    `json:"model,omitempty"`
	AnalyzedAt     time.Time `json:"analyzedAt"`
}

type summaryResponse struct {
	Summary        string    `json:"summary"`
	WordCount      int       `json:"wordCount"`
	KeyPoints      []string  `json:"keyPoints"`
	DocumentType   string    `json:"documentType"`
	APIUsed        string    `json:"apiUsed"`
	Success        bool      `json:"success"`
	RequestedAPI   string    `json:"requestedApi"`
	Fallback       bool      `json:"fallback"`
	FallbackReason string    `json:"fallbackReason,omitempty"`
	Confidence     int       `json:"confidence"`
	Model          string    `json:"model,omitempty"`
	URL            string    `json:"url,omitempty"`
	AnalyzedAt     time.Time `json:"analyzedAt"`
}

type healthResponse struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	HasAPIKey bool            `json:"hasApiKey"`
	Providers map[string]bool `json:"providers"`
}

// GET /api/health
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) error {
	status := r.svc.ProviderStatus()
	providers := make(map[string]bool, len(status))
	for c, ok := range status {
		providers[string(c)] = ok
	}
	return writeJSON(w, http.StatusOK, healthResponse{
		Status:    "OK",
		Message:   "Backend server is running",
		HasAPIKey: status[domain.ChoicePrimary],
		Providers: providers,
	})
}

// POST /api/describe-image
// Multipart: image (file), apiChoice, focus
func (r *Router) handleDescribeImage(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.opts.UploadBytes+1<<20)
	if err := req.ParseMultipartForm(r.opts.UploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &apiError{status: http.StatusRequestEntityTooLarge, message: "Image file too large", err: err}
		}
		return badRequest("No image file provided", nil)
	}
	if req.MultipartForm != nil {
		defer req.MultipartForm.RemoveAll()
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		return badRequest("No image file provided", nil)
	}
	defer file.Close()

	if header.Size > r.opts.UploadBytes {
		return &apiError{status: http.StatusRequestEntityTooLarge, message: "Image file too large", err: fmt.Errorf("%d bytes exceeds %d", header.Size, r.opts.UploadBytes)}
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return processingFailure("Failed to analyze image", err)
	}
	if len(data) == 0 {
		return badRequest("No image file provided", nil)
	}

	focus := middleware.SanitizeString(req.FormValue("focus"))
	if err := middleware.ValidateFocus(focus); err != nil {
		return badRequest("Invalid focus", err)
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}

	res, err := r.svc.DescribeImage(req.Context(), appanalysis.DescribeImageCommand{
		Image:  domain.Image{Data: data, MIMEType: mime},
		Choice: req.FormValue("apiChoice"),
		Focus:  focus,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyContent) {
			return badRequest("No image file provided", nil)
		}
		return processingFailure("Failed to analyze image", err)
	}

	return writeJSON(w, http.StatusOK, describeImageResponse{
		Description:    res.Description,
		APIUsed:        res.Provider,
		Success:        true,
		RequestedAPI:   string(res.Requested),
		Fallback:       res.Fallback,
		FallbackReason: res.FallbackReason,
		Objects:        res.Tags.Objects,
		People:         res.Tags.People,
		Emotions:       res.Tags.Emotions,
		Colors:         res.Tags.Colors,
		Scene:          res.Classification,
		Confidence:     res.Confidence,
		KeyPoints:      res.KeyPoints,
		Model:          res.Model,
		AnalyzedAt:     res.AnalyzedAt,
	})
}

// POST /api/summarize-document
// Body: {"content": "...", "documentType": "pdf", "apiChoice": "local"}
func (r *Router) handleSummarizeDocument(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Content      string `json:"content"`
		DocumentType string `json:"documentType"`
		APIChoice    string `json:"apiChoice"`
	}
	if err := r.decodeJSON(w, req, &body); err != nil {
		return err
	}
	if strings.TrimSpace(body.Content) == "" {
		return badRequest("No content provided", nil)
	}
	docType := strings.ToLower(strings.TrimSpace(body.DocumentType))
	if err := middleware.ValidateDocumentType(docType); err != nil {
		return badRequest("Invalid documentType", err)
	}

	res, err := r.svc.SummarizeDocument(req.Context(), appanalysis.SummarizeDocumentCommand{
		Text:   body.Content,
		Type:   docType,
		Choice: body.APIChoice,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyContent) {
			return badRequest("No content provided", nil)
		}
		return processingFailure("Failed to summarize document", err)
	}
	return writeJSON(w, http.StatusOK, toSummary(res, ""))
}

// POST /api/summarize-url
// Body: {"url": "https://...", "apiChoice": "openai"}
func (r *Router) handleSummarizeURL(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		URL       string `json:"url"`
		APIChoice string `json:"apiChoice"`
	}
	if err := r.decodeJSON(w, req, &body); err != nil {
		return err
	}
	url := strings.TrimSpace(body.URL)
	if url == "" {
		return badRequest("No URL provided", nil)
	}
	if err := middleware.ValidateURL(url); err != nil {
		return badRequest("Invalid URL", err)
	}

	res, err := r.svc.SummarizeURL(req.Context(), appanalysis.SummarizeURLCommand{URL: url, Choice: body.APIChoice})
	if err != nil {
		return processingFailure("Failed to summarize URL", err)
	}
	return writeJSON(w, http.StatusOK, toSummary(res, url))
}

func (r *Router) decodeJSON(w http.ResponseWriter, req *http.Request, dst any) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.opts.JSONBodyBytes)
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &apiError{status: http.StatusRequestEntityTooLarge, message: "Request body too large", err: err}
		}
		return badRequest("Invalid JSON body", err)
	}
	return nil
}

func toSummary(res domain.Result, url string) summaryResponse {
	return summaryResponse{
		Summary:        res.Description,
		WordCount:      res.WordCount,
		KeyPoints:      res.KeyPoints,
		DocumentType:   res.Classification,
		APIUsed:        res.Provider,
		Success:        true,
		RequestedAPI:   string(res.Requested),
		Fallback:       res.Fallback,
		FallbackReason: res.FallbackReason,
		Confidence:     res.Confidence,
		Model:          res.Model,
		URL:            url,
		AnalyzedAt:     res.AnalyzedAt,
	}
}
