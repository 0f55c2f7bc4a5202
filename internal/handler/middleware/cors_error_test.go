//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	nethttptest "net/http/httptest"
	"testing"
	"time"

	"install-scheduler/internal/handler/httperr"
	"install-scheduler/internal/handler/middleware"
	"install-scheduler/internal/pkg/config"
	"install-scheduler/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// CORS
// =============================================================================

func TestNewCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	preflight := func(cfg config.CORSConfig, origin string) *nethttptest.ResponseRecorder {
		r := gin.New()
		r.Use(middleware.NewCORSMiddleware(cfg))
		r.GET("/availability", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := nethttptest.NewRequest(http.MethodOptions, "/availability", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := nethttptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	base := config.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}

	t.Run("success: listed origin is echoed with credentials", func(t *testing.T) {
		cfg := base
		cfg.AllowOrigins = []string{"https://shop.example.com"}

		w := preflight(cfg, "https://shop.example.com")

		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Request-Id")
	})

	t.Run("error: unlisted origin is refused", func(t *testing.T) {
		cfg := base
		cfg.AllowOrigins = []string{"https://shop.example.com"}

		w := preflight(cfg, "https://evil.example.com")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("success: wildcard allows any origin without credentials", func(t *testing.T) {
		cfg := base
		cfg.AllowOrigins = []string{"*"}

		w := preflight(cfg, "https://anywhere.example.org")

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

// =============================================================================
// Error Handling
// =============================================================================

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(h gin.HandlerFunc) *gin.Engine {
		r := gin.New()
		r.Use(middleware.CustomRecovery(), middleware.ErrorHandler())
		r.GET("/boom", h)
		return r
	}

	t.Run("success: public error recorded without a write is rendered", func(t *testing.T) {
		r := newRouter(func(c *gin.Context) {
			_ = c.Error(gin.Error{
				Err:  errors.New("slot missing"),
				Type: gin.ErrorTypePublic,
				Meta: httperr.New(http.StatusBadRequest, "invalid_slot", "Time slot not found or inactive"),
			})
		})

		w := httptest.PerformRequest(t, r, http.MethodGet, "/boom", nil, "")
		httptest.AssertErrorCode(t, w, http.StatusBadRequest, "invalid_slot")
	})

	t.Run("error: private error falls back to 500", func(t *testing.T) {
		r := newRouter(func(c *gin.Context) { _ = c.Error(errors.New("lost connection")) })

		w := httptest.PerformRequest(t, r, http.MethodGet, "/boom", nil, "")
		httptest.AssertErrorCode(t, w, http.StatusInternalServerError, httperr.CodeInternal)
	})

	t.Run("error: panic is recovered as 500", func(t *testing.T) {
		r := newRouter(func(*gin.Context) { panic("nil technician") })

		w := httptest.PerformRequest(t, r, http.MethodGet, "/boom", nil, "")
		body := httptest.AssertErrorResponse(t, w, http.StatusInternalServerError, "Internal server error")
		assert.Equal(t, httperr.CodeInternal, body.Code)
	})

	t.Run("success: abort derives the code from the status", func(t *testing.T) {
		r := newRouter(func(c *gin.Context) {
			httperr.AbortWithError(c, http.StatusNotFound, errors.New("no row"), "Appointment not found", nil)
		})

		w := httptest.PerformRequest(t, r, http.MethodGet, "/boom", nil, "")
		httptest.AssertErrorCode(t, w, http.StatusNotFound, httperr.CodeNotFound)
	})
}

// =============================================================================
// Request Logging
// =============================================================================

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := middleware.NewLogger(config.LogConfig{Level: "error"})

	r := gin.New()
	r.Use(logger.LoggingMiddleware())
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	t.Run("success: caller request ID is echoed", func(t *testing.T) {
		req := nethttptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "req-123")
		w := nethttptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "req-123", w.Body.String())
	})

	t.Run("success: missing request ID is generated", func(t *testing.T) {
		w := httptest.PerformRequest(t, r, http.MethodGet, "/health", nil, "")

		id := w.Header().Get("X-Request-ID")
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})
}
