package remote

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/quill/internal/domain"
)

// Mapper converts remote records to domain.Article entities
type Mapper struct {
	now   func() time.Time
	newID func() string
}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// MapArticles normalizes records into articles, keeping their order.
// Records without a title are skipped. Missing ids get a UUID and the first
// record wins when ids repeat. Missing derived fields are computed.
// It also returns how many records were skipped.
func (m *Mapper) MapArticles(records []*Record) ([]*domain.Article, int) {
	now := m.now().UTC()
	seen := make(map[string]struct{}, len(records))
	articles := make([]*domain.Article, 0, len(records))
	skipped := 0

	for _, r := range records {
		if r == nil || strings.TrimSpace(r.Title) == "" {
			skipped++
			continue
		}

		id := string(r.ID)
		if id == "" {
			id = m.newID()
		}
		if _, dup := seen[id]; dup {
			skipped++
			continue
		}
		seen[id] = struct{}{}

		articles = append(articles, m.mapRecord(id, r, now))
	}

	return articles, skipped
}

func (m *Mapper) mapRecord(id string, r *Record, now time.Time) *domain.Article {
	a := &domain.Article{
		ID:       id,
		Title:    r.Title,
		Author:   r.Author,
		Category: r.Category,
		Content:  r.Content,
		Excerpt:  r.Excerpt,
		Image:    r.Image,
		Tags:     append([]string{}, r.Tags...),
		Date:     r.Date,
		ReadTime: r.ReadTime,
	}

	if a.Excerpt == "" {
		a.Excerpt = domain.Excerpt(a.Content)
	}
	if a.ReadTime <= 0 {
		a.ReadTime = domain.ReadTime(a.Content)
	}

	a.CreatedAt = parseTimestamp(r.CreatedAt, now)
	a.UpdatedAt = parseTimestamp(r.UpdatedAt, a.CreatedAt)

	// Accept full timestamps in date and keep only the calendar day.
	if t, ok := parseDate(a.Date); ok {
		a.Date = t.Format(domain.DateLayout)
	} else {
		a.Date = a.CreatedAt.Format(domain.DateLayout)
	}
	return a
}

// parseTimestamp parses RFC 3339 or YYYY-MM-DD, falling back to def.
func parseTimestamp(raw string, def time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(domain.DateLayout, raw); err == nil {
		return t
	}
	return def
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(domain.DateLayout, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
