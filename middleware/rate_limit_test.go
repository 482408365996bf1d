package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("cca") {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
	if limiter.Allow("cca") {
		t.Error("Fourth request should be denied")
	}

	// Other keys are unaffected.
	if !limiter.Allow("acme") {
		t.Error("Different tenant should still be allowed")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	limiter := NewRateLimiter(1, 10*time.Millisecond)

	if !limiter.Allow("cca") {
		t.Fatal("First request should be allowed")
	}
	if limiter.Allow("cca") {
		t.Fatal("Second request should be denied")
	}

	time.Sleep(20 * time.Millisecond)

	if !limiter.Allow("cca") {
		t.Error("Request after window reset should be allowed")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(2, time.Minute))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := performRequest(router, "GET", "/", nil); w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	if w := performRequest(router, "GET", "/", nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", w.Code)
	}
}

func TestRateLimitKeyedByTenant(t *testing.T) {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("tenant", c.GetHeader("X-Test-Tenant"))
	})
	router.Use(RateLimit(1, time.Minute))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := performRequest(router, "GET", "/", map[string]string{"X-Test-Tenant": "cca"}); w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for cca, got %d", w.Code)
	}
	if w := performRequest(router, "GET", "/", map[string]string{"X-Test-Tenant": "cca"}); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 for cca, got %d", w.Code)
	}
	if w := performRequest(router, "GET", "/", map[string]string{"X-Test-Tenant": "acme"}); w.Code != http.StatusOK {
		t.Errorf("Expected 200 for acme, got %d", w.Code)
	}
}
