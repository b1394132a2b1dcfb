package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinic-booking/core/internal/service"
)

// Services is everything the HTTP surface calls into.
type Services struct {
	Availability *service.AvailabilityService
	Blocks       *service.BlockService
	Bookings     *service.BookingService
	Dashboard    *service.DashboardService
	Catalog      *service.CatalogService
}

type Options struct {
	CORSOrigins       []string
	BookingRatePerMin int
	// Ping backs /healthz; nil reports healthy.
	Ping func() error
}

type Handler struct {
	svc Services
	log *zap.Logger
}

// NewRouter builds the gin engine with middleware and every route under /api.
func NewRouter(svc Services, opts Options, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(log), RequestLogger(log), CORS(opts.CORSOrigins))

	h := &Handler{svc: svc, log: log}

	r.GET("/healthz", func(c *gin.Context) {
		if opts.Ping != nil {
			if err := opts.Ping(); err != nil {
				log.Warn("health check failed", zap.Error(err))
				JSONError(c, http.StatusServiceUnavailable, "unhealthy", err.Error())
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/availability", h.GetMonthAvailability)
		api.PUT("/availability/:date", h.ReplaceDayAvailability)
		api.GET("/available-times", h.GetAvailableTimes)
		api.GET("/settings/time-slots", h.GetPredefinedTimeSlots)

		api.GET("/blocked-times", h.ListBlockedTimes)
		api.POST("/blocked-times", h.CreateBlockedTime)
		api.DELETE("/blocked-times/:id", h.DeleteBlockedTime)

		api.GET("/services", h.ListServices)

		api.GET("/bookings", h.ListBookings)
		api.GET("/bookings/:id", h.GetBooking)
		api.GET("/bookings/:id/events", h.ListBookingEvents)
		api.POST("/bookings", RateLimit(opts.BookingRatePerMin, log), h.CreateBooking)
		api.PUT("/bookings/:id", h.UpdateBooking)
		api.PUT("/bookings/:id/cancel", h.CancelBooking)
		api.DELETE("/bookings/:id", h.DeleteBooking)
	}

	admin := api.Group("/admin/dashboard")
	{
		admin.GET("/daily-appointments-count", h.DailyAppointmentsCount)
		admin.GET("/next-appointments", h.NextAppointments)
		admin.GET("/appointments-by-service", h.AppointmentsByService)
		admin.GET("/appointments-by-month", h.AppointmentsByMonth)
	}

	return r
}
