package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/quill/internal/domain"
	"github.com/MrSnakeDoc/quill/internal/events"
	"github.com/MrSnakeDoc/quill/internal/logger"
)

// ExportVersion is the format version written by Export.
const ExportVersion = "1.0"

// ExportPayload is the export file format.
type ExportPayload struct {
	ExportedAt time.Time         `json:"exportedAt"`
	Version    string            `json:"version"`
	Articles   []*domain.Article `json:"articles"`
}

// ImportPayload is the accepted import shape. Extra top-level fields are ignored.
type ImportPayload struct {
	Articles []*domain.Article `json:"articles"`
}

// Export snapshots the whole collection.
func (s *Store) Export() *ExportPayload {
	return &ExportPayload{
		ExportedAt: s.now().UTC(),
		Version:    ExportVersion,
		Articles:   s.List(),
	}
}

// ExportFileName is the download name for an export made at t.
// Example: articles-export-2024-03-01.json
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("articles-export-%s.json", t.UTC().Format(domain.DateLayout))
}

// ImportJSON decodes data as an ImportPayload and imports it.
func (s *Store) ImportJSON(ctx context.Context, data []byte) (int, error) {
	var payload ImportPayload
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return 0, &domain.ValidationError{Violations: []string{fmt.Sprintf("invalid import payload: %v", err)}}
	}
	return s.Import(ctx, payload)
}

// Import validates every article and, only if all pass, replaces the
// collection with them. On failure the collection is untouched.
//
// Ids and timestamps are kept; missing ones are generated. Missing excerpt
// and readTime are derived from content.
func (s *Store) Import(ctx context.Context, payload ImportPayload) (int, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	articles, err := s.prepareImport(payload.Articles)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.articles = articles
	s.mu.Unlock()

	_ = s.persist(ctx, "import")
	s.logger.Info("articles imported", logger.Int("count", len(articles)))
	s.bus.Emit(events.ArticlesImported, events.ImportedDetail{Count: len(articles)})
	return len(articles), nil
}

// prepareImport validates and normalizes a batch, collecting every violation
// with the position of the offending article.
func (s *Store) prepareImport(batch []*domain.Article) ([]*domain.Article, error) {
	if len(batch) == 0 {
		return nil, &domain.ValidationError{Violations: []string{"import contains no articles"}}
	}

	now := s.now().UTC()
	explicit := make(map[string]struct{}, len(batch))
	for _, in := range batch {
		if in != nil && in.ID != "" {
			explicit[in.ID] = struct{}{}
		}
	}
	seen := make(map[string]int, len(batch))
	out := make([]*domain.Article, 0, len(batch))
	var violations []string

	for i, in := range batch {
		pos := i + 1
		if err := domain.ValidateArticle(in); err != nil {
			violations = append(violations, prefixViolations(pos, err)...)
			continue
		}

		a := in.Clone()
		if a.ID == "" {
			a.ID = s.importID(explicit, seen)
		}
		if first, dup := seen[a.ID]; dup {
			violations = append(violations, fmt.Sprintf("article %d: duplicate id %q (already used by article %d)", pos, a.ID, first))
			continue
		}
		seen[a.ID] = pos

		normalizeImported(a, now)
		out = append(out, a)
	}

	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}
	return out, nil
}

// importID draws ids until one is used neither by an explicit id in the
// batch nor by an id already assigned.
func (s *Store) importID(explicit map[string]struct{}, seen map[string]int) string {
	for {
		id := s.newID()
		_, reserved := explicit[id]
		_, assigned := seen[id]
		if !reserved && !assigned {
			return id
		}
	}
}

func normalizeImported(a *domain.Article, now time.Time) {
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.Excerpt == "" {
		a.Excerpt = domain.Excerpt(a.Content)
	}
	if a.ReadTime <= 0 {
		a.ReadTime = domain.ReadTime(a.Content)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	if a.Date == "" {
		a.Date = a.CreatedAt.UTC().Format(domain.DateLayout)
	}
}

func prefixViolations(pos int, err error) []string {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return []string{fmt.Sprintf("article %d: %v", pos, err)}
	}
	out := make([]string, len(ve.Violations))
	for i, v := range ve.Violations {
		out[i] = fmt.Sprintf("article %d: %s", pos, v)
	}
	return out
}
