package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinic-booking/core/internal/service"
)

// GET /api/availability?year=&month=
func (h *Handler) GetMonthAvailability(c *gin.Context) {
	year, errY := strconv.Atoi(c.Query("year"))
	month, errM := strconv.Atoi(c.Query("month"))
	if errY != nil || errM != nil {
		JSONError(c, http.StatusBadRequest, "year and month are required integers", "")
		return
	}

	view, err := h.svc.Availability.MonthAvailability(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": view})
}

// PUT /api/availability/:date
func (h *Handler) ReplaceDayAvailability(c *gin.Context) {
	var input service.ReplaceDayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := h.svc.Blocks.ReplaceDay(c.Request.Context(), c.Param("date"), input); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "availability updated"})
}

// GET /api/available-times?date=
func (h *Handler) GetAvailableTimes(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		JSONError(c, http.StatusBadRequest, "date is required", "")
		return
	}

	times, err := h.svc.Availability.DayAvailableTimes(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available_times": times})
}

// GET /api/settings/time-slots
func (h *Handler) GetPredefinedTimeSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"time_slots": h.svc.Availability.PredefinedTimeSlots()})
}

// GET /api/blocked-times?start_date=&end_date=
func (h *Handler) ListBlockedTimes(c *gin.Context) {
	rows, err := h.svc.Blocks.ListActive(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]BlockedTimeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toBlockedTimeResponse(&rows[i]))
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/blocked-times
func (h *Handler) CreateBlockedTime(c *gin.Context) {
	var input service.CreateBlockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	block, err := h.svc.Blocks.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toBlockedTimeResponse(block))
}

// DELETE /api/blocked-times/:id
func (h *Handler) DeleteBlockedTime(c *gin.Context) {
	if err := h.svc.Blocks.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "block removed"})
}

// GET /api/services
func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.svc.Catalog.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]*ServiceResponse, 0, len(services))
	for i := range services {
		out = append(out, toServiceResponse(&services[i]))
	}
	c.JSON(http.StatusOK, out)
}
