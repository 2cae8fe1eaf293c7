package redis

const (
	// DefaultKeyPrefix namespaces every cache key
	DefaultKeyPrefix = "quill:cache:"
)

// CacheKey returns the Redis key for a logical cache key
func (s *Store) CacheKey(key string) string {
	return s.prefix + key
}

// pattern matches every key owned by this store
func (s *Store) pattern() string {
	return s.prefix + "*"
}
