package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Cache backends
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	SourceURL       string        // http(s) URL or file path of the canonical articles JSON
	SourceTimeout   time.Duration // timeout for one remote fetch (default: 10s)
	RefreshInterval time.Duration // interval to refresh from the remote source (0 = disabled)

	CacheBackend string // "redis" | "memory"
	CachePrefix  string // key namespace in the durable cache (default: "quill:cache:")

	DraftMaxAge     time.Duration // drafts untouched for longer are cleared (default: 720h)
	DraftGCInterval time.Duration // interval to run draft collection (default: 24h)

	// Redis (required only when CacheBackend is "redis")
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedCIDRS []string // optional, restrict infra endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	AllowedHosts []string // optional, Host headers accepted on /reload (e.g. "cms.example.com, *.example.com")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins  []string // allowed CORS origins (default: "*")

	WriteBurst        int // max burst of mutating requests per client
	WriteRefillPerMin int // tokens refilled per minute per client
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("QUILL_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("QUILL_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("QUILL_LOG_LEVEL", "info"),
		PrettyLog: mustBool("QUILL_PRETTY_LOG", true),

		// Remote source
		SourceURL:       requireEnv("QUILL_SOURCE_URL"),
		SourceTimeout:   mustDuration("QUILL_SOURCE_TIMEOUT", 10*time.Second),
		RefreshInterval: mustDuration("QUILL_REFRESH_INTERVAL", 0),

		// Durable cache
		CacheBackend: strings.ToLower(getenv("QUILL_CACHE_BACKEND", BackendRedis)),
		CachePrefix:  getenv("QUILL_CACHE_PREFIX", "quill:cache:"),

		// Drafts
		DraftMaxAge:     mustDuration("QUILL_DRAFT_MAX_AGE", 30*24*time.Hour),
		DraftGCInterval: mustDuration("QUILL_DRAFT_GC_INTERVAL", 24*time.Hour),

		// Redis settings
		RedisUser:           getenv("QUILL_REDIS_USERNAME", ""),
		RedisPassword:       getenv("QUILL_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("QUILL_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedCIDRS: parseAllowedIPs(getenv("QUILL_ALLOWED_CIDRS", "")),
		AllowedHosts: splitAndTrim(getenv("QUILL_ALLOWED_HOSTS", "")),
		TrustProxy:   mustBool("QUILL_TRUST_PROXY", true),
		CORSOrigins:  splitAndTrim(getenv("QUILL_CORS_ORIGINS", "*")),

		// Rate limiting on mutations
		WriteBurst:        getenvInt("QUILL_WRITE_BURST", 20),
		WriteRefillPerMin: getenvInt("QUILL_WRITE_REFILL_PER_MIN", 60),
	}

	switch cfg.CacheBackend {
	case BackendRedis:
		cfg.RedisAddr = requireEnv("QUILL_REDIS_ADDR")
	case BackendMemory:
		cfg.RedisAddr = getenv("QUILL_REDIS_ADDR", "")
	default:
		panic(fmt.Sprintf("❌ FATAL: QUILL_CACHE_BACKEND must be %q or %q, got %q", BackendRedis, BackendMemory, cfg.CacheBackend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
