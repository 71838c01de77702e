package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageUserPrompt_Focus(t *testing.T) {
	assert.Equal(t, "Please describe this image in detail.", ImageUserPrompt("  "))
	assert.Contains(t, ImageUserPrompt("the faces"), "paying particular attention to: the faces.")
}

func TestDocumentUserPrompt_Truncates(t *testing.T) {
	long := strings.Repeat("é", MaxDocumentRunes+10)
	p := DocumentUserPrompt("", long)

	assert.True(t, strings.HasPrefix(p, "Summarize the following text document:"))
	assert.True(t, strings.HasSuffix(p, truncatedMarker))
	assert.Equal(t, MaxDocumentRunes, strings.Count(p, "é"))
}

func TestTruncateRunes(t *testing.T) {
	s, cut := TruncateRunes("hello", 10)
	assert.False(t, cut)
	assert.Equal(t, "hello", s)

	s, cut = TruncateRunes("hello world", 5)
	assert.True(t, cut)
	assert.Equal(t, "hello"+truncatedMarker, s)
}

func TestSystemPromptsAreDedented(t *testing.T) {
	assert.False(t, strings.HasPrefix(ImageSystemPrompt(), "\t"))
	assert.NotContains(t, DocumentSystemPrompt(), "\n\t")
}
