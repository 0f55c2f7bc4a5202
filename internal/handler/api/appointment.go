package api

import (
	"errors"
	"net/http"

	"install-scheduler/internal/domain/user"
	reqdto "install-scheduler/internal/handler/dto/request"
	resdto "install-scheduler/internal/handler/dto/response"
	"install-scheduler/internal/handler/httperr"
	"install-scheduler/internal/handler/middleware"
	"install-scheduler/internal/usecase/commands"
	"install-scheduler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errNoRequester = errors.New("requester missing from context")

type AppointmentHandler struct {
	booking   commands.BookingCommands
	lifecycle commands.LifecycleCommands
	q         queries.AppointmentQueries
}

func NewAppointmentHandler(booking commands.BookingCommands, lifecycle commands.LifecycleCommands, q queries.AppointmentQueries) *AppointmentHandler {
	return &AppointmentHandler{booking: booking, lifecycle: lifecycle, q: q}
}

// @Summary Book installation appointment
// @Description Book an installation appointment for an order, auto-assigning a technician unless one is preferred
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.BookAppointmentRequest true "Booking request"
// @Success 201 {object} resdto.AppointmentResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /api/appointments [post]
func (h *AppointmentHandler) Book(c *gin.Context) {
	requester, ok := middleware.GetRequester(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoRequester, "Unauthorized", nil)
		return
	}
	var req reqdto.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.booking.Book(c.Request.Context(), req.ToCommand(), requester)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	h.respondWithAppointment(c, http.StatusCreated, result.AppointmentID)
}

// @Summary Get appointment
// @Description Get an appointment visible to the caller (owner, assigned technician or admin)
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} resdto.AppointmentResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid appointment ID format", nil)
		return
	}
	h.respondWithAppointment(c, http.StatusOK, id)
}

// @Summary List appointments
// @Description List appointments newest first; customers see their own, technicians their assigned jobs
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param order_id query string false "Order ID"
// @Param technician_id query string false "Technician ID"
// @Param status query string false "Status"
// @Param date_from query string false "First appointment date (YYYY-MM-DD)"
// @Param date_to query string false "Last appointment date (YYYY-MM-DD)"
// @Param after query string false "Cursor from a previous page"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.AppointmentListResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /api/appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	requester, ok := middleware.GetRequester(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoRequester, "Unauthorized", nil)
		return
	}
	var q reqdto.ListAppointmentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	filters, err := q.ToFilters()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	items, next, err := h.q.List(c.Request.Context(), filters, requester, q.Cursor(), q.Limit)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	res, err := resdto.FromAppointmentList(items, next)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Transition appointment status
// @Description Move an appointment from one status to the next; technicians may only move their own jobs
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param request body reqdto.TransitionRequest true "Expected and target status"
// @Success 200 {object} resdto.AppointmentResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/appointments/{id}/status [post]
func (h *AppointmentHandler) Transition(c *gin.Context) {
	id, requester, ok := h.pathAndRequester(c)
	if !ok {
		return
	}
	var req reqdto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	if err := h.lifecycle.Transition(c.Request.Context(), id, req.From, req.To, requester); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	h.respondWithAppointment(c, http.StatusOK, id)
}

// @Summary Cancel appointment
// @Description Cancel a scheduled or confirmed appointment and release the technician's slot
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} resdto.AppointmentResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/appointments/{id}/cancel [post]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, requester, ok := h.pathAndRequester(c)
	if !ok {
		return
	}
	if err := h.lifecycle.Cancel(c.Request.Context(), id, requester); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	h.respondWithAppointment(c, http.StatusOK, id)
}

// @Summary Reschedule appointment
// @Description Move an appointment to a new date and slot (admin only)
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param request body reqdto.RescheduleRequest true "New date and slot"
// @Success 200 {object} resdto.AppointmentResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/appointments/{id}/reschedule [post]
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, requester, ok := h.pathAndRequester(c)
	if !ok {
		return
	}
	var req reqdto.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	if _, err := h.lifecycle.Reschedule(c.Request.Context(), id, req.ToCommand(), requester); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	h.respondWithAppointment(c, http.StatusOK, id)
}

func (h *AppointmentHandler) pathAndRequester(c *gin.Context) (uuid.UUID, user.Requester, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid appointment ID format", nil)
		return uuid.Nil, user.Requester{}, false
	}
	requester, ok := middleware.GetRequester(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoRequester, "Unauthorized", nil)
		return uuid.Nil, user.Requester{}, false
	}
	return id, requester, true
}

func (h *AppointmentHandler) respondWithAppointment(c *gin.Context, status int, id uuid.UUID) {
	requester, ok := middleware.GetRequester(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoRequester, "Unauthorized", nil)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id, requester)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	res, err := resdto.FromAppointmentView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(status, res)
}
