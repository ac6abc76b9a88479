// internal/middleware/recovery_middleware_test.go
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"attendance-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestRecoveryMiddlewareTurnsPanicInto500(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.RecoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) {
		panic("identity_id not found in context")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "internal server error") {
		t.Fatalf("expected envelope message, got %s", w.Body.String())
	}
}

func TestRecoveryMiddlewarePassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.RecoveryMiddleware(zap.NewNop()))
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
