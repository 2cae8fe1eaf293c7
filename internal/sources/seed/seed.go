package seed

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/quill/internal/domain"
)

//go:embed sample.yaml
var sampleYAML []byte

// entry is one article as written in sample.yaml
type entry struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Author   string   `yaml:"author"`
	Category string   `yaml:"category"`
	Date     string   `yaml:"date"`
	Image    string   `yaml:"image,omitempty"`
	Tags     []string `yaml:"tags"`
	Content  string   `yaml:"content"`
}

// Parse decodes seed articles from YAML. Timestamps are set to now.
func Parse(data []byte, now time.Time) ([]*domain.Article, error) {
	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	now = now.UTC()
	articles := make([]*domain.Article, 0, len(entries))
	for i, e := range entries {
		content := strings.TrimSpace(e.Content)
		a := &domain.Article{
			ID:        e.ID,
			Title:     e.Title,
			Author:    e.Author,
			Category:  e.Category,
			Content:   content,
			Excerpt:   domain.Excerpt(content),
			Image:     e.Image,
			Tags:      append([]string{}, e.Tags...),
			Date:      e.Date,
			ReadTime:  domain.ReadTime(content),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := domain.ValidateArticle(a); err != nil {
			return nil, fmt.Errorf("seed article %d: %w", i+1, err)
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// Articles returns the built-in sample articles.
// It panics if the embedded file is invalid, which is a build defect.
func Articles() []*domain.Article {
	articles, err := Parse(sampleYAML, time.Now())
	if err != nil {
		panic(err)
	}
	return articles
}
