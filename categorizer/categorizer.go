// Package categorizer implements deterministic keyword-overlap
// categorization and best-effort language detection. It is pure: given the
// same catalog and text, the result ordering is stable across calls.
package categorizer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// languageSampleRunes bounds how much text feeds the language detector.
const languageSampleRunes = 1000

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// DetectLanguage returns the ISO 639-1 code of the text's language, or
// "unknown" when detection fails or the language has no two-letter code.
func DetectLanguage(text string) string {
	sample := []rune(text)
	if len(sample) > languageSampleRunes {
		sample = sample[:languageSampleRunes]
	}
	if len(sample) == 0 {
		return "unknown"
	}

	info := whatlanggo.Detect(string(sample))
	code := info.Lang.Iso6391()
	if code == "" {
		return "unknown"
	}
	return code
}

// Categorize scores every catalog category against the article text and
// returns the labels whose score exceeds zero, sorted by descending score
// with catalog order breaking ties. It never fails; an article matching no
// keywords yields an empty slice.
func (c *Catalog) Categorize(text, title, lang string) []string {
	categories := c.categoriesFor(lang)
	haystack := tokenJoin(title + " " + text)
	if haystack == "" {
		return nil
	}

	type scored struct {
		name  string
		score int
		order int
	}

	var matched []scored
	for i, cat := range categories {
		score := 0
		for _, keyword := range cat.Keywords {
			needle := tokenJoin(keyword)
			if needle == "" {
				continue
			}
			score += strings.Count(haystack, " "+needle+" ")
		}
		if score > 0 {
			matched = append(matched, scored{name: cat.Name, score: score, order: i})
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].score != matched[j].score {
			return matched[i].score > matched[j].score
		}
		return matched[i].order < matched[j].order
	})

	labels := make([]string, len(matched))
	for i, m := range matched {
		labels[i] = m.name
	}
	return labels
}

// tokenJoin lowercases and reduces text to space-separated word tokens,
// padded with spaces so whole-token sequences can be counted with
// strings.Count. Word boundaries are defined on Unicode letters and digits,
// which keeps Cyrillic keywords matching correctly.
func tokenJoin(text string) string {
	tokens := wordRe.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return ""
	}
	return " " + strings.Join(tokens, " ") + " "
}
