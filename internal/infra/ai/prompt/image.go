package prompt

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

// ImageSystemPrompt asks for a plain-prose description the tag extractor can scan.
func ImageSystemPrompt() string {
	return strings.TrimSpace(dedent.Dedent(`
		You are an image analyst. Describe the image in detail in plain prose.
		Mention the objects you see, any people and their apparent emotions,
		the dominant colors, and whether the scene is indoor, outdoor or urban.
		Finish with a short "Key points:" list of at most five bullet lines
		starting with "- ". Do not use markdown headings or code fences.
	`))
}

// ImageUserPrompt builds the user instruction, optionally narrowed by a focus hint.
func ImageUserPrompt(focus string) string {
	focus = strings.TrimSpace(focus)
	if focus == "" {
		return "Please describe this image in detail."
	}
	return fmt.Sprintf("Please describe this image in detail, paying particular attention to: %s.", focus)
}
