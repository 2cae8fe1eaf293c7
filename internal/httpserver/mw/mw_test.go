package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host    string
		pattern string
		want    bool
	}{
		{"cms.example.com", "cms.example.com", true},
		{"a.example.com", "*.example.com", true},
		{"a.b.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{".example.com", "*.example.com", false},
		{"badexample.com", "*.example.com", false},
		{"other.com", "cms.example.com", false},
	}
	for _, tt := range tests {
		if got := matchHost(tt.host, tt.pattern); got != tt.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
		}
	}
}

func TestLimiterRefill(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 60})

	if ok, _, _ := l.allow("a", start); !ok {
		t.Fatal("first request should pass")
	}
	if ok, remaining, _ := l.allow("a", start); !ok || remaining != 0 {
		t.Fatalf("second request: ok=%v remaining=%d", ok, remaining)
	}
	ok, _, retry := l.allow("a", start)
	if ok || retry != 1 {
		t.Fatalf("third request: ok=%v retry=%d, want rejected with retry 1s", ok, retry)
	}

	// Other clients have their own bucket.
	if ok, _, _ := l.allow("b", start); !ok {
		t.Error("client b should not share a's bucket")
	}

	if ok, _, _ := l.allow("a", start.Add(time.Second)); !ok {
		t.Error("one token should be refilled after one second")
	}
}

func TestLimiterSweepsIdleBuckets(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1, IdleTTL: time.Minute, Now: func() time.Time { return start }})

	l.allow("a", start)
	l.sweepMaybe(start.Add(2 * time.Minute))

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.buckets) != 0 {
		t.Errorf("buckets = %d, want 0 after sweep", len(l.buckets))
	}
}

func TestCORSAllowAny(t *testing.T) {
	h := CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Origin", "https://anywhere.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want handler to run", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}

	// No Origin: not a CORS request.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles", nil))
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}

func TestStatusWriterDefaultsToOK(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}
	if _, err := sw.Write([]byte("hi")); err != nil {
		t.Fatal(err)
	}
	if sw.status != http.StatusOK || sw.bytes != 2 {
		t.Errorf("status=%d bytes=%d", sw.status, sw.bytes)
	}
	if sw.Unwrap() != rec {
		t.Error("Unwrap should expose the underlying writer")
	}
}
