package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"unilearn_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := gin.New()
	r.Use(RateLimiter(ctx, config.RateLimitConfig{MaxRequests: 2, WindowMinutes: 60}, "/health"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "exempt path is never throttled")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://allowed.test"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name       string
		method     string
		origin     string
		wantCode   int
		wantOrigin string
	}{
		{name: "allowed", method: http.MethodGet, origin: "http://allowed.test", wantCode: http.StatusOK, wantOrigin: "http://allowed.test"},
		{name: "other origin", method: http.MethodGet, origin: "http://evil.test", wantCode: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, origin: "http://allowed.test", wantCode: http.StatusNoContent, wantOrigin: "http://allowed.test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestVisitorsSweep(t *testing.T) {
	v := &visitors{every: 1, burst: 1, ttl: time.Minute, m: make(map[string]*visitor)}
	start := time.Now()
	v.get("a", start)
	v.get("b", start.Add(50*time.Second))

	v.sweep(start.Add(90 * time.Second))

	assert.NotContains(t, v.m, "a")
	assert.Contains(t, v.m, "b")
}

func TestVisitorsEvictIdleStopsWithContext(t *testing.T) {
	v := &visitors{every: 1, burst: 1, ttl: time.Millisecond, m: make(map[string]*visitor)}
	v.get("a", time.Now().Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		v.evictIdle(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		v.mu.Lock()
		defer v.mu.Unlock()
		return len(v.m) == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper kept running after cancel")
	}
}
