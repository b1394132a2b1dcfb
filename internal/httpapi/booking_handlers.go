package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinic-booking/core/internal/calendar"
	"github.com/clinic-booking/core/internal/service"
)

// GET /api/bookings
func (h *Handler) ListBookings(c *gin.Context) {
	var input service.ListBookingsInput
	if err := c.ShouldBindQuery(&input); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	page, err := h.svc.Bookings.List(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, calendar.Page[BookingResponse]{
		Items:    toBookingResponses(page.Items),
		Page:     page.Page,
		PageSize: page.PageSize,
		HasNext:  page.HasNext,
		HasPrev:  page.HasPrev,
		Total:    page.Total,
	})
}

// GET /api/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.svc.Bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

// GET /api/bookings/:id/events
func (h *Handler) ListBookingEvents(c *gin.Context) {
	events, err := h.svc.Bookings.Events(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, toEventResponse(&events[i]))
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	var input service.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.svc.Bookings.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

// PUT /api/bookings/:id
func (h *Handler) UpdateBooking(c *gin.Context) {
	var input service.UpdateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.svc.Bookings.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

// PUT /api/bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	b, err := h.svc.Bookings.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

// DELETE /api/bookings/:id
func (h *Handler) DeleteBooking(c *gin.Context) {
	if err := h.svc.Bookings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking deleted"})
}
