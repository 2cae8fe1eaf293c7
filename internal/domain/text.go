package domain

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// ExcerptLength is the number of characters kept in a generated excerpt.
	ExcerptLength = 150
	// WordsPerMinute drives ReadTime.
	WordsPerMinute = 200
)

// PlainText strips markup from content and collapses whitespace.
// Content that cannot be parsed as HTML is returned with whitespace collapsed.
func PlainText(content string) string {
	text := content
	if strings.ContainsRune(content, '<') {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// Excerpt returns the first ExcerptLength characters of the plain text,
// with "..." appended when truncated.
func Excerpt(content string) string {
	text := []rune(PlainText(content))
	if len(text) <= ExcerptLength {
		return string(text)
	}
	return strings.TrimSpace(string(text[:ExcerptLength])) + "..."
}

// ReadTime estimates minutes to read content. Always >= 1.
func ReadTime(content string) int {
	words := len(strings.Fields(PlainText(content)))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// SplitTags splits a comma separated tag string, trimming blanks.
// Example: "go, redis,,cache" -> ["go", "redis", "cache"]
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
