package prompt

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

// MaxDocumentRunes bounds how much document text is sent to a model.
const MaxDocumentRunes = 8000

const truncatedMarker = "\n\n[Content truncated for length]"

// DocumentSystemPrompt requests a summary followed by bullet key points.
func DocumentSystemPrompt() string {
	return strings.TrimSpace(dedent.Dedent(`
		You summarize documents. Write a concise summary of two to four
		sentences, then a "Key points:" list with at most five bullet lines
		starting with "- ". Stay faithful to the text and do not invent facts.
	`))
}

// DocumentUserPrompt wraps the (possibly truncated) document text.
func DocumentUserPrompt(docType, text string) string {
	if docType == "" {
		docType = "text"
	}
	body, _ := TruncateRunes(text, MaxDocumentRunes)
	return fmt.Sprintf("Summarize the following %s document:\n\n%s", docType, body)
}

// TruncateRunes cuts s to at most n runes and appends a marker when it did.
func TruncateRunes(s string, n int) (string, bool) {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s, false
	}
	return string(r[:n]) + truncatedMarker, true
}
