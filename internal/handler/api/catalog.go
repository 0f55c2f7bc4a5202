package api

import (
	"net/http"

	"install-scheduler/internal/handler/httperr"
	"install-scheduler/internal/usecase/catalog"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	invalidator catalog.Invalidator
}

func NewCatalogHandler(invalidator catalog.Invalidator) *CatalogHandler {
	return &CatalogHandler{invalidator: invalidator}
}

// @Summary Invalidate catalog cache
// @Description Drop cached time slots and service areas after an administrative edit (admin only)
// @Tags admin
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /api/admin/catalog/invalidate [post]
func (h *CatalogHandler) Invalidate(c *gin.Context) {
	if err := h.invalidator.Invalidate(c.Request.Context()); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to invalidate catalog cache", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
