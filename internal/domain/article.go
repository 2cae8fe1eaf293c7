package domain

import "time"

// DateLayout is the calendar layout used by Article.Date.
const DateLayout = "2006-01-02"

// MaxTags is the upper bound on Article.Tags.
const MaxTags = 10

// Article represents a single published content item.
//
// It is NOT tied to Redis, the remote source or the HTTP layer.
// Every input (cache, remote, import, API) is normalized into this structure.
type Article struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier, generated at creation.
	ID string `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Content  string `json:"content"`

	// Excerpt is derived from Content when not provided.
	Excerpt string `json:"excerpt"`

	// Image is an optional URL to an image file.
	Image string `json:"image,omitempty"`

	// Tags keeps caller order. Duplicates are not removed.
	Tags []string `json:"tags"`

	// Date is the creation-intent date (YYYY-MM-DD), not a full timestamp.
	Date string `json:"date"`

	// ReadTime is the estimated reading time in minutes.
	ReadTime int `json:"readTime"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt never changes after creation.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is refreshed on every mutation.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers never share the Tags backing array.
// Tags is never nil on the copy.
func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}
	c := *a
	c.Tags = append(make([]string, 0, len(a.Tags)), a.Tags...)
	return &c
}

// ParsedDate returns Date as a time.Time (UTC midnight).
func (a *Article) ParsedDate() (time.Time, bool) {
	t, err := time.Parse(DateLayout, a.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ArticleInput carries the caller-supplied fields of a new article.
type ArticleInput struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Category string   `json:"category"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt,omitempty"`
	Image    string   `json:"image,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Date     string   `json:"date,omitempty"`
}

// ArticlePatch is a partial update. Nil fields are left untouched and not re-validated.
type ArticlePatch struct {
	Title    *string   `json:"title,omitempty"`
	Author   *string   `json:"author,omitempty"`
	Category *string   `json:"category,omitempty"`
	Content  *string   `json:"content,omitempty"`
	Excerpt  *string   `json:"excerpt,omitempty"`
	Image    *string   `json:"image,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Date     *string   `json:"date,omitempty"`
}

// Apply merges the patch into a copy of a and returns it.
func (p ArticlePatch) Apply(a *Article) *Article {
	out := a.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Author != nil {
		out.Author = *p.Author
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Content != nil {
		out.Content = *p.Content
	}
	if p.Excerpt != nil {
		out.Excerpt = *p.Excerpt
	}
	if p.Image != nil {
		out.Image = *p.Image
	}
	if p.Tags != nil {
		out.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Date != nil {
		out.Date = *p.Date
	}
	return out
}

// Draft is the single-slot snapshot of an in-progress edit.
// Fields are free text and never validated.
type Draft struct {
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Category  string    `json:"category"`
	Image     string    `json:"image"`
	Content   string    `json:"content"`
	Tags      string    `json:"tags"`
	LastSaved time.Time `json:"lastSaved"`
}

// Input converts the draft's free-text fields into an ArticleInput.
// Tags are split on commas; blanks are dropped.
func (d *Draft) Input() ArticleInput {
	return ArticleInput{
		Title:    d.Title,
		Author:   d.Author,
		Category: d.Category,
		Image:    d.Image,
		Content:  d.Content,
		Tags:     SplitTags(d.Tags),
	}
}
