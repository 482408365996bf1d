package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestLoggerAllStatusClasses(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), RequestLogger())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for path, want := range map[string]int{
		"/ok":   http.StatusOK,
		"/bad":  http.StatusBadRequest,
		"/boom": http.StatusInternalServerError,
	} {
		if w := performRequest(router, "GET", path+"?q=1", nil); w.Code != want {
			t.Errorf("%s: expected %d, got %d", path, want, w.Code)
		}
	}
}
