//go:build unit

package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"install-scheduler/internal/handler/api"
	"install-scheduler/internal/handler/httperr"
	"install-scheduler/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type invalidatorFunc func(ctx context.Context) error

func (f invalidatorFunc) Invalidate(ctx context.Context) error { return f(ctx) }

func TestCatalogHandler_Invalidate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(inv invalidatorFunc) *gin.Engine {
		r := gin.New()
		r.POST("/admin/catalog/invalidate", api.NewCatalogHandler(inv).Invalidate)
		return r
	}

	t.Run("success: returns 204 No Content", func(t *testing.T) {
		calls := 0
		r := newRouter(func(context.Context) error { calls++; return nil })

		w := httptest.PerformRequest(t, r, http.MethodPost, "/admin/catalog/invalidate", nil, "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, 1, calls)
	})

	t.Run("error: cache failure is a 500", func(t *testing.T) {
		r := newRouter(func(context.Context) error { return errors.New("redis: connection refused") })

		w := httptest.PerformRequest(t, r, http.MethodPost, "/admin/catalog/invalidate", nil, "")

		body := httptest.AssertErrorResponse(t, w, http.StatusInternalServerError, "Failed to invalidate")
		assert.Equal(t, httperr.CodeInternal, body.Code)
	})
}
