package events

import "github.com/MrSnakeDoc/quill/internal/domain"

// Load sources reported by LoadedDetail.
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
	SourceSample = "sample"
)

// LoadedDetail accompanies ArticlesLoaded.
type LoadedDetail struct {
	Count  int    `json:"count"`
	Source string `json:"source"`
}

// ArticleDetail accompanies ArticleCreated and ArticleDeleted.
type ArticleDetail struct {
	Article *domain.Article `json:"article"`
}

// UpdatedDetail accompanies ArticleUpdated.
type UpdatedDetail struct {
	Before *domain.Article `json:"before"`
	After  *domain.Article `json:"after"`
}

// ImportedDetail accompanies ArticlesImported.
type ImportedDetail struct {
	Count int `json:"count"`
}

// DraftDetail accompanies DraftSaved.
type DraftDetail struct {
	Draft *domain.Draft `json:"draft"`
}

// ErrorDetail accompanies CMSError.
type ErrorDetail struct {
	Op    string `json:"op"`
	Error string `json:"error"`
}
