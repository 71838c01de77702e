// Package local implements the offline heuristic analyzer used when no AI
// provider can serve a request. Its output is an estimate derived from
// payload size and text statistics only; it never inspects image pixels.
package local

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/bryanwahyu/ai-playground/internal/domain/analysis"
)

const (
	smallImageBytes  = 100 * 1024
	mediumImageBytes = 500 * 1024

	minSentenceLen   = 20
	summarySentences = 3
	fallbackChars    = 200
	maxKeywords      = 5
	minKeywordLen    = 4

	documentConfidence = 60
	modelName          = "heuristic"
)

const heuristicNotice = "Heuristic estimate (no AI model was used)."

type tier struct {
	name       string
	confidence int
	template   string
}

var (
	smallTier  = tier{"small", 35, "This is a small %s image (about %d KB). Files of this size are usually icons, thumbnails, screenshots or simple graphics with few distinct subjects and limited fine detail."}
	mediumTier = tier{"medium", 45, "This is a medium-sized %s image (about %d KB). Files of this size usually hold a typical photograph with a clear main subject, some background context and moderate detail."}
	highTier   = tier{"high", 55, "This is a large %s image (about %d KB). Files of this size usually hold a high-resolution photograph or a detailed composition with several subjects, rich textures and fine detail."}
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

var stopWords = map[string]bool{
	"about": true, "above": true, "after": true, "again": true, "against": true, "also": true, "because": true,
	"been": true, "before": true, "being": true, "below": true, "between": true, "both": true, "could": true,
	"does": true, "doing": true, "down": true, "during": true, "each": true, "from": true, "further": true,
	"have": true, "having": true, "here": true, "into": true, "just": true, "more": true, "most": true,
	"much": true, "must": true, "only": true, "other": true, "over": true, "same": true, "should": true,
	"some": true, "such": true, "than": true, "that": true, "their": true, "theirs": true, "them": true,
	"then": true, "there": true, "these": true, "they": true, "this": true, "those": true, "through": true,
	"under": true, "until": true, "very": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "will": true, "with": true, "would": true, "your": true, "yours": true,
}

// Analyzer is the local heuristic analyzer. The credentials only feed the
// informational footer; no request is ever made.
type Analyzer struct {
	creds analysis.Credentials
}

func NewAnalyzer(creds analysis.Credentials) *Analyzer {
	return &Analyzer{creds: creds}
}

func (a *Analyzer) Name() string { return string(analysis.ChoiceLocal) }

// DescribeImage builds a templated description from the encoded payload
// length and the MIME type alone.
func (a *Analyzer) DescribeImage(img analysis.Image, focus string) analysis.Output {
	encoded := base64.StdEncoding.EncodedLen(len(img.Data))
	approx := encoded * 3 / 4
	t := sizeTier(approx)

	var b strings.Builder
	b.WriteString(heuristicNotice)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, t.template, imageFormat(img.MIMEType), approx/1024)
	b.WriteString("\n\n")
	b.WriteString(a.footer())

	var note string
	if f := strings.TrimSpace(focus); f != "" {
		note = fmt.Sprintf("Requested focus: %s. A size-based estimate cannot examine specific regions of the image.", f)
	}

	return analysis.Output{
		Note:           note,
		Text:           b.String(),
		KeyPoints:      []string{heuristicNotice, fmt.Sprintf("Size tier: %s (about %d KB)", t.name, approx/1024)},
		Classification: analysis.SceneUnclear,
		Confidence:     t.confidence,
		Model:          modelName,
	}
}

// SummarizeDocument performs extractive summarization plus keyword ranking.
func (a *Analyzer) SummarizeDocument(doc analysis.Document) analysis.Output {
	docType := doc.Type
	if docType == "" {
		docType = "text"
	}
	return analysis.Output{
		Text:           Summary(doc.Text),
		KeyPoints:      Keywords(doc.Text),
		Classification: docType,
		Confidence:     documentConfidence,
		Model:          modelName,
	}
}

// Summary returns the first three sentence-like units longer than 20
// characters. When none qualify it falls back to the leading characters.
func Summary(text string) string {
	var picked []string
	for _, unit := range sentenceSplit.Split(text, -1) {
		unit = strings.TrimSpace(unit)
		if len(unit) <= minSentenceLen {
			continue
		}
		picked = append(picked, unit)
		if len(picked) == summarySentences {
			break
		}
	}
	if len(picked) > 0 {
		return strings.Join(picked, ". ") + "."
	}

	collapsed := []rune(strings.Join(strings.Fields(text), " "))
	if len(collapsed) > fallbackChars {
		collapsed = collapsed[:fallbackChars]
	}
	if len(collapsed) == 0 {
		return "The document contains no readable text."
	}
	return string(collapsed)
}

// Keywords ranks non stop-word tokens longer than three characters by
// frequency; ties keep first-occurrence order.
func Keywords(text string) []string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(text))

	counts := map[string]int{}
	var order []string
	for _, w := range strings.Fields(clean) {
		if len([]rune(w)) < minKeywordLen || stopWords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}

	out := make([]string, 0, len(order))
	for _, w := range order {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		out = append(out, string(r))
	}
	return out
}

func sizeTier(n int) tier {
	switch {
	case n < smallImageBytes:
		return smallTier
	case n < mediumImageBytes:
		return mediumTier
	default:
		return highTier
	}
}

func imageFormat(mime string) string {
	_, sub, ok := strings.Cut(strings.ToLower(strings.TrimSpace(mime)), "/")
	if !ok || sub == "" {
		return "unknown-format"
	}
	sub, _, _ = strings.Cut(sub, ";")
	return strings.ToUpper(strings.TrimSuffix(sub, "+xml"))
}

func (a *Analyzer) footer() string {
	var b strings.Builder
	b.WriteString("For real image analysis, configure one of:")
	for _, c := range analysis.Choices {
		if c == analysis.ChoiceLocal {
			continue
		}
		status := "not configured"
		if a.creds.Has(c) {
			status = "configured"
		}
		fmt.Fprintf(&b, "\n- %s (%s)", c.Label(), status)
	}
	return b.String()
}
