package api

import (
	"net/http"

	reqdto "install-scheduler/internal/handler/dto/request"
	"install-scheduler/internal/handler/httperr"
	"install-scheduler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	q queries.AvailabilityQueries
}

func NewAvailabilityHandler(q queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{q: q}
}

// @Summary Search installation availability
// @Description List bookable time slots per date for a region, with ranked technicians and a price estimate
// @Tags availability
// @Produce json
// @Param start_date query string true "First date (YYYY-MM-DD)"
// @Param end_date query string true "Last date (YYYY-MM-DD)"
// @Param state query string true "Installation address state"
// @Param estimated_duration query number false "Estimated job duration in hours"
// @Success 200 {object} queries.AvailabilityResult
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/installation/availability [get]
func (h *AvailabilityHandler) Search(c *gin.Context) {
	var q reqdto.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	result, err := h.q.Search(c.Request.Context(), q.ToRequest())
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
