package feed

import (
	"html"
	"math"
	"regexp"
	"strings"
)

const summaryMaxLength = 200

const wordsPerMinute = 200

var (
	tagRe     = regexp.MustCompile(`<[^>]*>`)
	spaceRe   = regexp.MustCompile(`\s+`)
	cdataRe   = regexp.MustCompile(`<!\[CDATA\[|\]\]>`)
	wordRe    = regexp.MustCompile(`\b\w+\b`)
	hashtagRe = regexp.MustCompile(`#([A-Za-z0-9_]+)`)
)

// CleanText strips CDATA wrappers, HTML tags and entities from a text field
// and collapses runs of whitespace.
func CleanText(value string) string {
	if value == "" {
		return ""
	}
	cleaned := cdataRe.ReplaceAllString(value, "")
	cleaned = tagRe.ReplaceAllString(cleaned, " ")
	cleaned = html.UnescapeString(cleaned)
	return strings.TrimSpace(spaceRe.ReplaceAllString(cleaned, " "))
}

// Summary truncates cleaned text to the snapshot summary length, appending
// an ellipsis when cut.
func Summary(text string) string {
	clean := CleanText(text)
	if len(clean) <= summaryMaxLength {
		return clean
	}
	return clean[:summaryMaxLength] + "..."
}

// WordCount counts word tokens in already-cleaned text.
func WordCount(content string) int {
	if content == "" {
		return 0
	}
	return len(wordRe.FindAllString(content, -1))
}

// ReadingTime estimates minutes to read, never less than one.
func ReadingTime(content string) int {
	wc := WordCount(content)
	if wc == 0 {
		return 1
	}
	return int(math.Max(1, math.Ceil(float64(wc)/float64(wordsPerMinute))))
}

// ExtractHashtags returns hashtag names found in the given texts.
func ExtractHashtags(texts ...string) []string {
	var tags []string
	for _, text := range texts {
		for _, match := range hashtagRe.FindAllStringSubmatch(text, -1) {
			tags = append(tags, match[1])
		}
	}
	return tags
}

// dedupeStrings preserves first-seen order and drops empty values.
func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
