package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) DailyAppointmentsCount(c *gin.Context) {
	count, err := h.svc.Dashboard.DailyCount(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) NextAppointments(c *gin.Context) {
	bookings, err := h.svc.Dashboard.NextAppointments(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *Handler) AppointmentsByService(c *gin.Context) {
	counts, err := h.svc.Dashboard.ByService(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) AppointmentsByMonth(c *gin.Context) {
	counts, err := h.svc.Dashboard.ByMonth(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
