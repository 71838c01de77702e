package analysis

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxKeyPoints caps the key point list of every result.
const MaxKeyPoints = 5

// defaultConfidence is reported for model-produced descriptions that carry no score of their own.
const defaultConfidence = 90

var bulletMarkers = []string{"-", "*", "•"}

// Normalize turns adapter output into the canonical Result shape.
func Normalize(kind ContentKind, provider string, out Output) (Result, error) {
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return Result{}, fmt.Errorf("%w: %s returned empty text", ErrBadResponse, provider)
	}

	res := Result{
		Kind:        kind,
		Description: text,
		Provider:    provider,
		Model:       out.Model,
		Confidence:  out.Confidence,
	}
	if res.Confidence <= 0 {
		res.Confidence = defaultConfidence
	}
	if res.Confidence > 100 {
		res.Confidence = 100
	}

	if points := cleanPoints(out.KeyPoints); len(points) > 0 {
		res.KeyPoints = points
	} else {
		prose, bullets := SplitBullets(text)
		res.KeyPoints = capPoints(bullets)
		if len(bullets) > 0 && prose != "" {
			res.Description = prose
		}
	}

	switch kind {
	case KindImage:
		res.Tags = ExtractTags(res.Description)
		res.Classification = out.Classification
		if res.Classification == "" {
			res.Classification = ClassifyScene(res.Description)
		}
	default:
		res.Tags = Tags{Objects: []string{}, People: []string{}, Emotions: []string{}, Colors: []string{}}
		res.Classification = out.Classification
	}
	if note := strings.TrimSpace(out.Note); note != "" {
		res.Description += "\n\n" + note
	}
	return res, nil
}

// SplitBullets separates bullet lines from prose. Bullets are returned
// without their marker; headings like "Key points:" are dropped.
func SplitBullets(text string) (prose string, bullets []string) {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if item, ok := bulletItem(trimmed); ok {
			bullets = append(bullets, item)
			continue
		}
		if isKeyPointsHeading(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n")), bullets
}

func bulletItem(line string) (string, bool) {
	for _, m := range bulletMarkers {
		rest, ok := strings.CutPrefix(line, m)
		if !ok {
			continue
		}
		if rest == "" || !unicode.IsSpace([]rune(rest)[0]) {
			return "", false
		}
		item := strings.TrimSpace(rest)
		return item, item != ""
	}
	return "", false
}

func isKeyPointsHeading(line string) bool {
	l := strings.ToLower(strings.Trim(line, "*#: "))
	return l == "key points" || l == "key takeaways"
}

func cleanPoints(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return capPoints(out)
}

func capPoints(in []string) []string {
	if in == nil {
		return []string{}
	}
	if len(in) > MaxKeyPoints {
		return in[:MaxKeyPoints]
	}
	return in
}

// ExtractTags scans a description against the fixed vocabularies. Emotions
// are only scanned when people terms were found.
func ExtractTags(description string) Tags {
	idx := newTokenIndex(description)
	tags := Tags{
		Objects:  idx.matchAll(objectVocabulary),
		People:   idx.matchAll(peopleVocabulary),
		Emotions: []string{},
		Colors:   idx.matchAll(colorVocabulary),
	}
	if len(tags.People) > 0 {
		tags.Emotions = idx.matchAll(emotionVocabulary)
	}
	return tags
}

// ClassifyScene picks the first matching scene family.
func ClassifyScene(description string) string {
	idx := newTokenIndex(description)
	for _, f := range sceneFamilies {
		for _, kw := range f.keywords {
			if idx.has(kw) {
				return f.label
			}
		}
	}
	return SceneUnclear
}

type tokenIndex struct {
	tokens map[string]bool
	joined string
}

func newTokenIndex(text string) tokenIndex {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	idx := tokenIndex{tokens: make(map[string]bool, len(words)), joined: " " + strings.Join(words, " ") + " "}
	for _, w := range words {
		idx.tokens[w] = true
	}
	return idx
}

// has matches whole words, plain plurals included; multi-word keywords match as phrases.
func (t tokenIndex) has(kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(t.joined, " "+kw+" ") || strings.Contains(t.joined, " "+kw+"s ")
	}
	return t.tokens[kw] || t.tokens[kw+"s"] || t.tokens[kw+"es"]
}

func (t tokenIndex) matchAll(vocab []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(vocab))
	for _, kw := range vocab {
		if seen[kw] {
			continue
		}
		seen[kw] = true
		if t.has(kw) {
			out = append(out, kw)
		}
	}
	return out
}
