package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// HealthChecker defines interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to HealthChecker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

var errNotConfigured = errors.New("not configured")

// ProviderChecker reports a provider as unhealthy when it has no credential.
type ProviderChecker struct {
	Configured func() bool
}

func (p ProviderChecker) Check(context.Context) error {
	if p.Configured == nil || !p.Configured() {
		return errNotConfigured
	}
	return nil
}

// Check is one named probe. Optional checks only degrade the status.
type Check struct {
	Checker  HealthChecker
	Optional bool
}

// HealthStatus represents the health status
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus represents individual check status
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Evaluate runs every check. A failing required check makes the whole status
// unhealthy; a failing optional one makes it degraded.
func Evaluate(ctx context.Context, checks map[string]Check) HealthStatus {
	health := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckStatus, len(checks)),
	}
	for name, c := range checks {
		err := c.Checker.Check(ctx)
		switch {
		case err == nil:
			health.Checks[name] = CheckStatus{Status: "healthy"}
		case c.Optional:
			health.Checks[name] = CheckStatus{Status: "degraded", Message: err.Error()}
			if health.Status == "healthy" {
				health.Status = "degraded"
			}
		default:
			health.Checks[name] = CheckStatus{Status: "unhealthy", Message: err.Error()}
			health.Status = "unhealthy"
		}
	}
	return health
}

// ReadinessHandler answers 503 only when a required check fails.
func ReadinessHandler(checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := Evaluate(ctx, checks)
		statusCode := http.StatusOK
		if health.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(health)
	}
}

// LivenessHandler creates a liveness check handler (simplest check)
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
