package domain

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// Field weights. A field contributes its weight once, however many
	// times the query occurs in it.
	ScoreTitleMatch    = 10
	ScoreTagMatch      = 8
	ScoreAuthorMatch   = 6
	ScoreExcerptMatch  = 4
	ScoreContentMatch  = 2
	ScoreCategoryMatch = 1

	// MinQueryLength is the shortest query that is scored at all.
	MinQueryLength = 2

	// DefaultSearchLimit caps results when the caller passes no limit.
	DefaultSearchLimit = 10
)

// SearchIndexEntry is the lowercase projection of one article.
type SearchIndexEntry struct {
	Article  *Article
	Title    string
	Content  string
	Excerpt  string
	Author   string
	Category string
	Tags     []string
}

// NewSearchIndexEntry lowercases every searchable field of a.
func NewSearchIndexEntry(a *Article) *SearchIndexEntry {
	tags := make([]string, len(a.Tags))
	for i, t := range a.Tags {
		tags[i] = strings.ToLower(t)
	}
	return &SearchIndexEntry{
		Article:  a,
		Title:    strings.ToLower(a.Title),
		Content:  strings.ToLower(a.Content),
		Excerpt:  strings.ToLower(a.Excerpt),
		Author:   strings.ToLower(a.Author),
		Category: strings.ToLower(a.Category),
		Tags:     tags,
	}
}

// Candidate represents an article candidate with its match score
type Candidate struct {
	Article *Article
	Score   int
}

// NormalizeQuery lowercases and trims a raw query.
// ok is false when the query is too short to be scored.
func NormalizeQuery(raw string) (q string, ok bool) {
	q = strings.ToLower(strings.TrimSpace(raw))
	return q, utf8.RuneCountInString(q) >= MinQueryLength
}

// Score calculates the weighted field score of an entry against a normalized query
func Score(q string, entry *SearchIndexEntry) int {
	if entry == nil || q == "" {
		return 0
	}

	score := 0
	if strings.Contains(entry.Title, q) {
		score += ScoreTitleMatch
	}
	for _, tag := range entry.Tags {
		if strings.Contains(tag, q) {
			score += ScoreTagMatch
			break
		}
	}
	if strings.Contains(entry.Author, q) {
		score += ScoreAuthorMatch
	}
	if strings.Contains(entry.Excerpt, q) {
		score += ScoreExcerptMatch
	}
	if strings.Contains(entry.Content, q) {
		score += ScoreContentMatch
	}
	if strings.Contains(entry.Category, q) {
		score += ScoreCategoryMatch
	}
	return score
}

// RankCandidates scores every entry, drops non-matches and sorts by score
// (descending). Equal scores keep index order.
func RankCandidates(rawQuery string, entries []*SearchIndexEntry) []*Candidate {
	q, ok := NormalizeQuery(rawQuery)
	if !ok {
		return nil
	}

	candidates := make([]*Candidate, 0, len(entries))
	for _, entry := range entries {
		score := Score(q, entry)

		// Skip entries with zero score (no match)
		if score == 0 {
			continue
		}

		candidates = append(candidates, &Candidate{
			Article: entry.Article,
			Score:   score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}
