package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bryanwahyu/ai-playground/internal/application"
	appanalysis "github.com/bryanwahyu/ai-playground/internal/application/analysis"
	"github.com/bryanwahyu/ai-playground/internal/config"
	"github.com/bryanwahyu/ai-playground/internal/domain/analysis"
	"github.com/bryanwahyu/ai-playground/internal/infra/ai/gemini"
	"github.com/bryanwahyu/ai-playground/internal/infra/ai/huggingface"
	"github.com/bryanwahyu/ai-playground/internal/infra/ai/local"
	"github.com/bryanwahyu/ai-playground/internal/infra/ai/openai"
	"github.com/bryanwahyu/ai-playground/internal/infra/ai/vision"
	"github.com/bryanwahyu/ai-playground/internal/infra/httpserver"
	"github.com/bryanwahyu/ai-playground/internal/infra/webpage"
	"github.com/bryanwahyu/ai-playground/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("config load error")
	}
	setupLogger(cfg)
	middleware.Register()

	creds := cfg.Credentials()
	providers := appanalysis.LimitProviders(buildProviders(cfg), cfg.Limits.MaxConcurrentCalls)

	// init service
	svc := &appanalysis.Service{
		Providers: providers,
		Local:     local.NewAnalyzer(creds),
		Pages:     webpage.NewFetcher(cfg.Limits.FetchTimeout),
		Clock:     application.SystemClock{},
		Metrics:   middleware.AnalysisMetrics{},
	}

	// init router
	stopBackground := make(chan struct{})
	handler := httpserver.NewRouter(svc, httpserver.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		APIKeys:        cfg.Server.APIKeys,
		JSONBodyBytes:  cfg.Limits.JSONBodyBytes,
		UploadBytes:    cfg.Limits.UploadBytes,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		TrustProxy:     cfg.Server.TrustProxy,
		Stop:           stopBackground,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		// provider calls may take up to the provider timeout before falling back
		WriteTimeout: cfg.Providers.Timeout + time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	// run server
	go func() {
		log.Info().
			Str("addr", addr).
			Str("primary_backend", cfg.Providers.Primary.Backend).
			Bool("primary", creds.Has(analysis.ChoicePrimary)).
			Bool("huggingface", creds.Has(analysis.ChoiceSecondary)).
			Bool("vision", creds.Has(analysis.ChoiceVision)).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server...")
	close(stopBackground)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func buildProviders(cfg *config.Config) map[analysis.ProviderChoice]analysis.Provider {
	p := cfg.Providers
	var primary analysis.Provider
	if p.Primary.Backend == config.BackendGemini {
		primary = gemini.New(p.Primary.GeminiKey, p.Primary.GeminiModel, p.Timeout)
	} else {
		primary = openai.NewClient(p.Primary.OpenAIKey, p.Primary.Model, p.Primary.BaseURL, p.Timeout)
	}

	hf := huggingface.NewClient(huggingface.ClientOpts{
		BaseURL:       p.HuggingFace.BaseURL,
		Token:         p.HuggingFace.Token,
		Timeout:       p.Timeout,
		CaptionModels: p.HuggingFace.CaptionModels,
		SummaryModel:  p.HuggingFace.SummaryModel,
	})

	return map[analysis.ProviderChoice]analysis.Provider{
		analysis.ChoicePrimary:   primary,
		analysis.ChoiceSecondary: hf,
		analysis.ChoiceVision:    vision.NewClient(p.Vision.APIKey, p.Vision.Endpoint, p.Timeout),
	}
}
