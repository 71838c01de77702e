package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ai-playground/internal/domain/analysis"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-2024-08-06",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	})
	return string(b)
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient("", "", "http://127.0.0.1:1", time.Second)
	assert.False(t, c.Configured())

	_, err := c.SummarizeDocument(context.Background(), analysis.Document{Text: "x"})
	assert.ErrorIs(t, err, analysis.ErrNotConfigured)
}

func TestClient_DescribeImageSendsDataURL(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		assert.Equal(t, "gpt-4o", body["model"])
		raw, _ := json.Marshal(body["messages"])
		assert.Contains(t, string(raw), "data:image/png;base64,aGVsbG8=")
		assert.Contains(t, string(raw), "paying particular attention to: the sky")
		_, _ = w.Write([]byte(completion("A bright blue sky over a lake.")))
	})

	c := NewClient("test-key", "", srv.URL, 5*time.Second)
	out, err := c.DescribeImage(context.Background(), analysis.Image{Data: []byte("hello"), MIMEType: "image/png"}, "the sky")
	require.NoError(t, err)
	assert.Equal(t, "A bright blue sky over a lake.", out.Text)
	assert.Equal(t, "gpt-4o-2024-08-06", out.Model)
}

func TestClient_SummarizeDocumentTruncates(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		raw, _ := json.Marshal(body["messages"])
		assert.Contains(t, string(raw), "[Content truncated for length]")
		assert.Less(t, len(raw), 9000)
		_, _ = w.Write([]byte(completion("Short summary.\n- one")))
	})

	c := NewClient("test-key", "gpt-4o-mini", srv.URL, 5*time.Second)
	out, err := c.SummarizeDocument(context.Background(), analysis.Document{Text: strings.Repeat("a", 20000), Type: "txt"})
	require.NoError(t, err)
	assert.Equal(t, "Short summary.\n- one", out.Text)
}

func TestClient_ErrorClasses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		reason string
	}{
		{"quota", http.StatusTooManyRequests, `{"error":{"message":"rate limited","type":"requests"}}`, analysis.ErrQuotaExceeded, analysis.ReasonQuota},
		{"server error", http.StatusBadGateway, `{"error":{"message":"bad gateway","type":"server"}}`, analysis.ErrUpstream, analysis.ReasonUpstream},
		{"no choices", http.StatusOK, `{"id":"x","choices":[]}`, analysis.ErrBadResponse, analysis.ReasonBadResponse},
		{"empty content", http.StatusOK, completion("  "), analysis.ErrBadResponse, analysis.ReasonBadResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient("test-key", "", srv.URL, 5*time.Second)
			_, err := c.SummarizeDocument(context.Background(), analysis.Document{Text: "some text"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.reason, analysis.FailureReason(err))
		})
	}
}
