package analysis

import (
	"context"
	"errors"
)

var (
	// ErrEmptyContent is a caller error: nothing to analyze.
	ErrEmptyContent = errors.New("analysis: empty content")
	// ErrNotConfigured means the provider has no credential; no call was made.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrUpstream covers network failures, timeouts and non-2xx statuses.
	ErrUpstream = errors.New("provider request failed")
	// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
	ErrQuotaExceeded = errors.New("ai quota exceeded")
	// ErrBadResponse means the provider answered but the body broke its contract.
	ErrBadResponse = errors.New("provider response malformed")
	// ErrUnsupported means the provider cannot handle the content kind.
	ErrUnsupported = errors.New("content kind not supported by provider")
	// ErrPageFetch means the page behind a URL could not be retrieved or had no text.
	ErrPageFetch = errors.New("page fetch failed")
)

// Failure reasons used in logs and metric labels.
const (
	ReasonNotConfigured = "not_configured"
	ReasonUpstream      = "upstream"
	ReasonQuota         = "quota"
	ReasonBadResponse   = "bad_response"
	ReasonUnsupported   = "unsupported"
	ReasonCanceled      = "canceled"
	ReasonUnknown       = "unknown"
)

// FailureReason classifies an adapter error. All classes trigger the same
// fallback; the class only exists for observability.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return ReasonNotConfigured
	case errors.Is(err, ErrQuotaExceeded):
		return ReasonQuota
	case errors.Is(err, ErrBadResponse):
		return ReasonBadResponse
	case errors.Is(err, ErrUnsupported):
		return ReasonUnsupported
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	case errors.Is(err, ErrUpstream):
		return ReasonUpstream
	default:
		return ReasonUnknown
	}
}
