package analysis

import (
	"strings"
	"time"
)

// ContentKind enum
type ContentKind string

const (
	KindImage    ContentKind = "image"
	KindDocument ContentKind = "document"
)

// ProviderChoice enum. Values are the names the frontend sends as apiChoice.
type ProviderChoice string

const (
	ChoicePrimary   ProviderChoice = "openai"
	ChoiceSecondary ProviderChoice = "huggingface"
	ChoiceVision    ProviderChoice = "google"
	ChoiceLocal     ProviderChoice = "local"
)

// Choices lists every provider choice in fallback-footer order.
var Choices = []ProviderChoice{ChoicePrimary, ChoiceSecondary, ChoiceVision, ChoiceLocal}

var choiceAliases = map[string]ProviderChoice{
	"openai":              ChoicePrimary,
	"primary-llm":         ChoicePrimary,
	"primary":             ChoicePrimary,
	"gemini":              ChoicePrimary,
	"huggingface":         ChoiceSecondary,
	"secondary-inference": ChoiceSecondary,
	"secondary":           ChoiceSecondary,
	"google":              ChoiceVision,
	"vision-api":          ChoiceVision,
	"vision":              ChoiceVision,
	"local":               ChoiceLocal,
}

// ParseChoice resolves a caller-supplied provider name. Empty or unknown
// names resolve to the primary provider; ok reports whether s was recognized.
func ParseChoice(s string) (c ProviderChoice, ok bool) {
	if c, ok := choiceAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, true
	}
	return ChoicePrimary, false
}

// Label is the human readable provider name used in report footers.
func (c ProviderChoice) Label() string {
	switch c {
	case ChoicePrimary:
		return "OpenAI / Gemini"
	case ChoiceSecondary:
		return "Hugging Face Inference"
	case ChoiceVision:
		return "Google Vision API"
	default:
		return "Local heuristic analyzer"
	}
}

// Image is the binary payload of an image request.
type Image struct {
	Data     []byte
	MIMEType string
}

// Document is the text payload of a document request.
type Document struct {
	Text string
	Type string // pdf, txt, webpage, ...
}

// Request is one analysis call. It is built once per HTTP request and never mutated.
type Request struct {
	Kind     ContentKind
	Choice   ProviderChoice
	Image    Image
	Document Document
	Focus    string
}

// Output is what an adapter returns before normalization.
type Output struct {
	Text           string
	KeyPoints      []string
	Classification string
	Confidence     int
	Model          string
	// Note is appended to the description after tagging, so it never feeds
	// the vocabulary scan.
	Note string
}

// Tags holds keyword-derived structure extracted from an image description.
type Tags struct {
	Objects  []string `json:"objects"`
	People   []string `json:"people"`
	Emotions []string `json:"emotions"`
	Colors   []string `json:"colors"`
}

// Result is the canonical analysis contract returned to callers.
type Result struct {
	Kind           ContentKind    `json:"kind"`
	Description    string         `json:"description"`
	KeyPoints      []string       `json:"keyPoints"`
	Classification string         `json:"classification"`
	Confidence     int            `json:"confidence"`
	Provider       string         `json:"apiUsed"`
	Requested      ProviderChoice `json:"requestedApi"`
	Fallback       bool           `json:"fallback"`
	FallbackReason string         `json:"fallbackReason,omitempty"`
	Tags           Tags           `json:"tags"`
	WordCount      int            `json:"wordCount,omitempty"`
	Model          string         `json:"model,omitempty"`
	AnalyzedAt     time.Time      `json:"analyzedAt"`
}

// Credentials are the provider keys resolved once at startup.
type Credentials struct {
	OpenAI      string
	Gemini      string
	HuggingFace string
	Vision      string
}

// Has reports whether the credential backing choice is present.
func (c Credentials) Has(choice ProviderChoice) bool {
	switch choice {
	case ChoicePrimary:
		return c.OpenAI != "" || c.Gemini != ""
	case ChoiceSecondary:
		return c.HuggingFace != ""
	case ChoiceVision:
		return c.Vision != ""
	case ChoiceLocal:
		return true
	}
	return false
}
