package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	appanalysis "github.com/bryanwahyu/ai-playground/internal/application/analysis"
	domain "github.com/bryanwahyu/ai-playground/internal/domain/analysis"
	"github.com/bryanwahyu/ai-playground/internal/middleware"
)

type Options struct {
	CORSOrigins    []string
	APIKeys        map[string]string
	JSONBodyBytes  int64
	UploadBytes    int64
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Enable only behind a reverse proxy that sets those headers.
	TrustProxy bool
	// Stop ends background work such as rate limiter cleanup.
	Stop      <-chan struct{}
	Readiness map[string]middleware.Check
}

type Router struct {
	svc  *appanalysis.Service
	opts Options
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	if opts.JSONBodyBytes <= 0 {
		opts.JSONBodyBytes = 50 << 20
	}
	if opts.UploadBytes <= 0 {
		opts.UploadBytes = 10 << 20
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	r := &Router{svc: svc, opts: opts}

	mux := chi.NewRouter()
	if opts.TrustProxy {
		mux.Use(chimw.RealIP)
	}
	mux.Use(middleware.RequestID)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	mux.Use(middleware.RateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst, opts.Stop))

	// probe & metrics, tanpa auth dan rate limit
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler(r.readinessChecks()))
	mux.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", r.wrap(r.handleHealth))
		rt.Post("/describe-image", r.wrap(r.handleDescribeImage))
		rt.Post("/summarize-document", r.wrap(r.handleSummarizeDocument))
		rt.Post("/summarize-url", r.wrap(r.handleSummarizeURL))
	})

	return mux
}

func (r *Router) readinessChecks() map[string]middleware.Check {
	if r.opts.Readiness != nil {
		return r.opts.Readiness
	}
	checks := map[string]middleware.Check{}
	for _, choice := range domain.Choices {
		choice := choice
		checks[string(choice)] = middleware.Check{
			Checker:  middleware.ProviderChecker{Configured: func() bool { return r.svc.ProviderStatus()[choice] }},
			Optional: choice != domain.ChoiceLocal,
		}
	}
	return checks
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// apiError is a handler error with a fixed status and client-facing message.
type apiError struct {
	status  int
	message string
	err     error
}

func (e *apiError) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

func (e *apiError) Unwrap() error { return e.err }

func badRequest(msg string, err error) error {
	return &apiError{status: http.StatusBadRequest, message: msg, err: err}
}

func processingFailure(msg string, err error) error {
	return &apiError{status: http.StatusInternalServerError, message: msg, err: err}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var ae *apiError
		if !errors.As(err, &ae) {
			ae = &apiError{status: http.StatusInternalServerError, message: "Internal server error", err: err}
		}
		if errors.Is(err, domain.ErrEmptyContent) {
			ae.status = http.StatusBadRequest
		}

		resp := errorResponse{Error: ae.message}
		if ae.err != nil {
			resp.Details = ae.err.Error()
		}
		if ae.status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("request_id", middleware.GetRequestID(req.Context())).Str("path", req.URL.Path).Msg("request failed")
		}
		writeJSON(w, ae.status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
