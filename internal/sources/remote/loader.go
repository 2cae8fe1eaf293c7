package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/MrSnakeDoc/quill/internal/domain"
	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/utils"
)

// DefaultTimeout bounds a single fetch when none is configured.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response is read.
const maxBodySize = 32 << 20

// Loader fetches the canonical article collection from an http(s) endpoint
// or a local JSON file.
type Loader struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	mapper   *Mapper
	logger   logger.Logger
}

// NewLoader creates a loader for endpoint. Anything that is not an http(s)
// URL is treated as a file path; a file:// prefix is accepted.
func NewLoader(endpoint string, timeout time.Duration, log logger.Logger) *Loader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
		mapper:   NewMapper(),
		logger:   log,
	}
}

// Endpoint returns the configured endpoint.
func (l *Loader) Endpoint() string { return l.endpoint }

// Fetch reads and normalizes the collection. Every failure is a *domain.SourceError.
func (l *Loader) Fetch(ctx context.Context) ([]*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	data, err := l.read(ctx)
	if err != nil {
		return nil, &domain.SourceError{Endpoint: l.endpoint, Err: err}
	}

	records, err := decode(data)
	if err != nil {
		return nil, &domain.SourceError{Endpoint: l.endpoint, Err: err}
	}

	articles, skipped := l.mapper.MapArticles(records)
	if skipped > 0 {
		l.logger.Warn("skipped remote records",
			logger.String("endpoint", l.endpoint),
			logger.Int("skipped", skipped))
	}
	l.logger.Debug("remote articles fetched",
		logger.String("endpoint", l.endpoint),
		logger.Int("count", len(articles)),
		logger.Duration("elapsed", time.Since(start)))
	return articles, nil
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if isHTTP(l.endpoint) {
		return l.get(ctx)
	}
	data, err := os.ReadFile(strings.TrimPrefix(l.endpoint, "file://"))
	if err != nil {
		return nil, fmt.Errorf("failed to read articles file: %w", err)
	}
	return data, nil
}

func (l *Loader) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching articles: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

func isHTTP(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
