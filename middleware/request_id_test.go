package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestIDGenerated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())

	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := performRequest(router, "GET", "/", nil)

	if seen == "" {
		t.Fatal("Expected a request ID in context")
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("Expected generated request ID to be a UUID, got %s", seen)
	}
	if got := w.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("Expected response header %s, got %s", seen, got)
	}
}

func TestRequestIDHonorsValidIncoming(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	incoming := uuid.New().String()
	w := performRequest(router, "GET", "/", map[string]string{"X-Request-ID": incoming})

	if got := w.Header().Get("X-Request-ID"); got != incoming {
		t.Errorf("Expected incoming ID %s to be kept, got %s", incoming, got)
	}
}

func TestRequestIDRejectsMalformedIncoming(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(router, "GET", "/", map[string]string{"X-Request-ID": "not-a-uuid"})

	got := w.Header().Get("X-Request-ID")
	if got == "not-a-uuid" || got == "" {
		t.Errorf("Expected malformed ID to be replaced, got %q", got)
	}
}
