package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/ai-playground/internal/domain/analysis"
)

const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

type Config struct {
	Server struct {
		Port            int               `yaml:"port"`
		CORSOrigins     []string          `yaml:"corsOrigins"`
		APIKeys         map[string]string `yaml:"apiKeys"`
		ShutdownTimeout time.Duration     `yaml:"shutdownTimeout"`
		TrustProxy      bool              `yaml:"trustProxy"`
	} `yaml:"server"`

	Providers struct {
		Timeout time.Duration `yaml:"timeout"`
		Primary struct {
			Backend     string `yaml:"backend"`
			OpenAIKey   string `yaml:"openaiKey"`
			Model       string `yaml:"model"`
			BaseURL     string `yaml:"baseURL"`
			GeminiKey   string `yaml:"geminiKey"`
			GeminiModel string `yaml:"geminiModel"`
		} `yaml:"primary"`
		HuggingFace struct {
			Token         string   `yaml:"token"`
			BaseURL       string   `yaml:"baseURL"`
			CaptionModels []string `yaml:"captionModels"`
			SummaryModel  string   `yaml:"summaryModel"`
		} `yaml:"huggingface"`
		Vision struct {
			APIKey   string `yaml:"apiKey"`
			Endpoint string `yaml:"endpoint"`
		} `yaml:"vision"`
	} `yaml:"providers"`

	Limits struct {
		JSONBodyBytes      int64         `yaml:"jsonBodyBytes"`
		UploadBytes        int64         `yaml:"uploadBytes"`
		MaxConcurrentCalls int64         `yaml:"maxConcurrentCalls"`
		FetchTimeout       time.Duration `yaml:"fetchTimeout"`
	} `yaml:"limits"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rateLimit"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Load reads the yaml file at path (a missing file is fine), then applies
// .env.local/.env and process environment overrides, then defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	// godotenv never overrides variables already set in the environment
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Providers.Primary.OpenAIKey, "OPENAI_API_KEY")
	setString(&c.Providers.Primary.Model, "OPENAI_MODEL")
	setString(&c.Providers.Primary.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Providers.Primary.GeminiKey, "GEMINI_API_KEY")
	setString(&c.Providers.Primary.GeminiModel, "GEMINI_MODEL")
	setString(&c.Providers.Primary.Backend, "PRIMARY_BACKEND")
	setString(&c.Providers.HuggingFace.Token, "HF_TOKEN")
	setString(&c.Providers.HuggingFace.Token, "HUGGINGFACE_API_KEY")
	setString(&c.Providers.Vision.APIKey, "GOOGLE_API_KEY")
	setString(&c.Providers.Vision.APIKey, "GOOGLE_VISION_API_KEY")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("TRUST_PROXY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Server.TrustProxy = b
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 60 * time.Second
	}
	c.Providers.Primary.Backend = strings.ToLower(strings.TrimSpace(c.Providers.Primary.Backend))
	if c.Providers.Primary.Backend == "" {
		c.Providers.Primary.Backend = BackendOpenAI
		if c.Providers.Primary.OpenAIKey == "" && c.Providers.Primary.GeminiKey != "" {
			c.Providers.Primary.Backend = BackendGemini
		}
	}
	if c.Limits.JSONBodyBytes == 0 {
		c.Limits.JSONBodyBytes = 50 << 20
	}
	if c.Limits.UploadBytes == 0 {
		c.Limits.UploadBytes = 10 << 20
	}
	if c.Limits.FetchTimeout == 0 {
		c.Limits.FetchTimeout = 15 * time.Second
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = int(c.RateLimit.RPS) + 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Credentials returns the provider keys the dispatcher sees. Only the key of
// the selected primary backend counts towards primary availability.
func (c *Config) Credentials() analysis.Credentials {
	creds := analysis.Credentials{
		HuggingFace: c.Providers.HuggingFace.Token,
		Vision:      c.Providers.Vision.APIKey,
	}
	if c.Providers.Primary.Backend == BackendGemini {
		creds.Gemini = c.Providers.Primary.GeminiKey
	} else {
		creds.OpenAI = c.Providers.Primary.OpenAIKey
	}
	return creds
}

// Helper untuk override dari env (kosong = tidak dipakai)
func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}
