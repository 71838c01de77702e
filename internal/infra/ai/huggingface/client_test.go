package huggingface

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ai-playground/internal/domain/analysis"
)

type hit struct {
	path string
	body []byte
}

func fakeInference(t *testing.T, responses map[string]func(w http.ResponseWriter)) (*httptest.Server, *[]hit) {
	t.Helper()
	var (
		mu   sync.Mutex
		hits []hit
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		hits = append(hits, hit{path: r.URL.Path, body: body})
		mu.Unlock()

		respond, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		respond(w)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func jsonBody(status int, v any) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

func newTestClient(url string) *Client {
	return NewClient(ClientOpts{BaseURL: url, Token: "hf_test", Timeout: 5 * time.Second})
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(ClientOpts{})
	assert.False(t, c.Configured())
	_, err := c.DescribeImage(context.Background(), analysis.Image{Data: []byte{1}}, "")
	assert.ErrorIs(t, err, analysis.ErrNotConfigured)
	_, err = c.SummarizeDocument(context.Background(), analysis.Document{Text: "x"})
	assert.ErrorIs(t, err, analysis.ErrNotConfigured)
}

func TestDescribeImage_StopsAtFirstUsableCaption(t *testing.T) {
	srv, hits := fakeInference(t, map[string]func(http.ResponseWriter){
		"/Salesforce/blip-image-captioning-large": jsonBody(http.StatusServiceUnavailable, map[string]any{"error": "Model is loading"}),
		"/nlpconnect/vit-gpt2-image-captioning":   jsonBody(http.StatusOK, []map[string]string{{"generated_text": "a man riding a bike down a street"}}),
		"/microsoft/git-base-coco":                jsonBody(http.StatusOK, []map[string]string{{"generated_text": "should not be reached"}}),
	})

	out, err := newTestClient(srv.URL).DescribeImage(context.Background(), analysis.Image{Data: []byte("raw-image"), MIMEType: "image/jpeg"}, "")
	require.NoError(t, err)

	assert.Equal(t, "A man riding a bike down a street.", out.Text)
	assert.Equal(t, "nlpconnect/vit-gpt2-image-captioning", out.Model)
	require.Len(t, *hits, 2)
	assert.Equal(t, "/Salesforce/blip-image-captioning-large", (*hits)[0].path)
	assert.Equal(t, []byte("raw-image"), (*hits)[1].body)
}

func TestDescribeImage_ShortCaptionIsUnusable(t *testing.T) {
	short := jsonBody(http.StatusOK, []map[string]string{{"generated_text": "a cat"}})
	srv, hits := fakeInference(t, map[string]func(http.ResponseWriter){
		"/Salesforce/blip-image-captioning-large": short,
		"/nlpconnect/vit-gpt2-image-captioning":   short,
		"/microsoft/git-base-coco":                short,
	})

	_, err := newTestClient(srv.URL).DescribeImage(context.Background(), analysis.Image{Data: []byte("x")}, "")
	require.Error(t, err)
	assert.Len(t, *hits, 3)
	assert.Equal(t, analysis.ReasonBadResponse, analysis.FailureReason(err))
}

func TestDescribeImage_AllCandidatesFail(t *testing.T) {
	srv, hits := fakeInference(t, map[string]func(http.ResponseWriter){
		"/nlpconnect/vit-gpt2-image-captioning": jsonBody(http.StatusOK, []map[string]string{{"generated_text": "tiny"}}),
	})

	_, err := newTestClient(srv.URL).DescribeImage(context.Background(), analysis.Image{Data: []byte("x")}, "")
	require.Error(t, err)
	assert.Len(t, *hits, 3)
	assert.Equal(t, analysis.ReasonUpstream, analysis.FailureReason(err))
}

func TestDescribeImage_QuotaOnAnyCandidate(t *testing.T) {
	srv, _ := fakeInference(t, map[string]func(http.ResponseWriter){
		"/Salesforce/blip-image-captioning-large": jsonBody(http.StatusTooManyRequests, map[string]any{"error": "rate limit"}),
	})

	_, err := newTestClient(srv.URL).DescribeImage(context.Background(), analysis.Image{Data: []byte("x")}, "")
	assert.Equal(t, analysis.ReasonQuota, analysis.FailureReason(err))
}

func TestSummarizeDocument_TruncatesAndSendsParameters(t *testing.T) {
	srv, hits := fakeInference(t, map[string]func(http.ResponseWriter){
		"/facebook/bart-large-cnn": jsonBody(http.StatusOK, []map[string]string{{"summary_text": "A concise summary."}}),
	})

	out, err := newTestClient(srv.URL).SummarizeDocument(context.Background(), analysis.Document{Text: strings.Repeat("b", 1500)})
	require.NoError(t, err)
	assert.Equal(t, "A concise summary.", out.Text)
	assert.Equal(t, SummaryModel, out.Model)

	require.Len(t, *hits, 1)
	var sent summaryRequest
	require.NoError(t, json.Unmarshal((*hits)[0].body, &sent))
	assert.Len(t, sent.Inputs, maxSummaryInput)
	assert.Equal(t, summaryParameters{MinLength: 30, MaxLength: 150, DoSample: false}, sent.Parameters)
}

func TestSummarizeDocument_MissingSummaryText(t *testing.T) {
	srv, _ := fakeInference(t, map[string]func(http.ResponseWriter){
		"/facebook/bart-large-cnn": jsonBody(http.StatusOK, []map[string]string{}),
	})

	_, err := newTestClient(srv.URL).SummarizeDocument(context.Background(), analysis.Document{Text: "text"})
	assert.ErrorIs(t, err, analysis.ErrBadResponse)
}

func TestCaptionText(t *testing.T) {
	assert.Equal(t, "Two dogs playing.", captionText("two dogs playing"))
	assert.Equal(t, "A red car.", captionText(" a red car. "))
}

func TestDescribeImage_FocusIsANoteNotCaption(t *testing.T) {
	srv, _ := fakeInference(t, map[string]func(http.ResponseWriter){
		"/Salesforce/blip-image-captioning-large": jsonBody(http.StatusOK, []map[string]string{{"generated_text": "two dogs playing in the grass"}}),
	})

	out, err := newTestClient(srv.URL).DescribeImage(context.Background(), analysis.Image{Data: []byte("x"), MIMEType: "image/png"}, "the red collar")
	require.NoError(t, err)
	assert.Equal(t, "Two dogs playing in the grass.", out.Text)
	assert.True(t, strings.HasPrefix(out.Note, "Requested focus: the red collar."))
}
