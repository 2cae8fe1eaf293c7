package content

import (
	"sort"
	"time"

	"github.com/MrSnakeDoc/quill/internal/domain"
)

const (
	// DefaultRecentLimit is used by Recent when limit <= 0.
	DefaultRecentLimit = 5

	// StatsMonths is the trailing window covered by Stats.ByMonth.
	StatsMonths = 6

	monthKeyLayout = "January 2006"
)

// Stats is a lightweight report over the collection.
type Stats struct {
	Total      int            `json:"total"`
	Categories int            `json:"categories"`
	Tags       int            `json:"tags"`
	Latest     *LatestArticle `json:"latest,omitempty"`
	ByCategory map[string]int `json:"byCategory"`
	ByMonth    map[string]int `json:"byMonth"` // "Month Year" -> count
}

// LatestArticle is the most recently inserted article.
type LatestArticle struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Get returns a copy of the article id, or nil.
func (s *Store) Get(id string) *domain.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.articles[i].Clone()
	}
	return nil
}

// Count returns the number of articles.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

// List returns a copy of the collection in insertion order (newest first).
func (s *Store) List() []*domain.Article {
	return s.filter(func(*domain.Article) bool { return true })
}

// ListByCategory returns the articles whose category equals category.
func (s *Store) ListByCategory(category string) []*domain.Article {
	return s.filter(func(a *domain.Article) bool { return a.Category == category })
}

func (s *Store) filter(keep func(*domain.Article) bool) []*domain.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Article, 0, len(s.articles))
	for _, a := range s.articles {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

// Recent returns up to limit articles sorted by date, newest first.
// Equal dates keep collection order.
func (s *Store) Recent(limit int) []*domain.Article {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	articles := s.List()
	// YYYY-MM-DD sorts lexicographically in date order.
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Date > articles[j].Date
	})

	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles
}

// Categories returns the distinct categories, sorted ascending.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return categoriesOf(s.articles)
}

// Tags returns the distinct tags across all articles, sorted ascending.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tagsOf(s.articles)
}

// Stats computes counts over the collection. ByMonth only covers articles
// dated within the last StatsMonths months, up to today.
func (s *Store) Stats() Stats {
	articles := s.List()

	stats := Stats{
		Total:      len(articles),
		Categories: len(categoriesOf(articles)),
		Tags:       len(tagsOf(articles)),
		ByCategory: make(map[string]int),
		ByMonth:    make(map[string]int),
	}
	if len(articles) > 0 {
		stats.Latest = &LatestArticle{Title: articles[0].Title, Date: articles[0].Date}
	}

	now := s.now().UTC()
	today := now.Truncate(24 * time.Hour)
	cutoff := today.AddDate(0, -StatsMonths, 0)

	for _, a := range articles {
		stats.ByCategory[a.Category]++

		d, ok := a.ParsedDate()
		if !ok || d.Before(cutoff) || d.After(today) {
			continue
		}
		stats.ByMonth[d.Format(monthKeyLayout)]++
	}
	return stats
}

func categoriesOf(articles []*domain.Article) []string {
	set := make(map[string]struct{})
	for _, a := range articles {
		if a.Category != "" {
			set[a.Category] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func tagsOf(articles []*domain.Article) []string {
	set := make(map[string]struct{})
	for _, a := range articles {
		for _, t := range a.Tags {
			if t != "" {
				set[t] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
