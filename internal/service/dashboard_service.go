package service

import (
	"context"
	"time"

	"github.com/clinic-booking/core/internal/calendar"
	"github.com/clinic-booking/core/internal/model"
	"github.com/clinic-booking/core/internal/repository"
)

const nextAppointmentsLimit = 5

// MonthCount is the number of confirmed bookings in one month.
type MonthCount struct {
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

// DashboardService aggregates confirmed bookings for the admin dashboard.
// "Today" is evaluated in the clinic's time zone.
type DashboardService struct {
	store *repository.Store
	loc   *time.Location
	now   func() time.Time
}

func NewDashboardService(store *repository.Store, loc *time.Location, now func() time.Time) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &DashboardService{store: store, loc: loc, now: now}
}

func (s *DashboardService) DailyCount(ctx context.Context) (int64, error) {
	total, err := s.store.Bookings.CountConfirmedOn(ctx, s.now().In(s.loc))
	if err != nil {
		return 0, translate("count bookings", err)
	}
	return total, nil
}

// NextAppointments lists the upcoming confirmed bookings, soonest first.
func (s *DashboardService) NextAppointments(ctx context.Context) ([]model.Booking, error) {
	now := s.now().In(s.loc)
	bookings, err := s.store.Bookings.NextConfirmed(ctx, now, calendar.ClockOf(now), nextAppointmentsLimit)
	if err != nil {
		return nil, translate("next appointments", err)
	}
	return bookings, nil
}

func (s *DashboardService) ByService(ctx context.Context) ([]repository.ServiceCount, error) {
	counts, err := s.store.Bookings.CountConfirmedByService(ctx)
	if err != nil {
		return nil, translate("appointments by service", err)
	}
	if counts == nil {
		counts = []repository.ServiceCount{}
	}
	return counts, nil
}

// ByMonth buckets the current year's confirmed bookings into twelve months.
func (s *DashboardService) ByMonth(ctx context.Context) ([]MonthCount, error) {
	year := s.now().In(s.loc).Year()
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	dates, err := s.store.Bookings.ConfirmedDates(ctx, from, to)
	if err != nil {
		return nil, translate("appointments by month", err)
	}

	out := make([]MonthCount, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for _, d := range dates {
		out[int(d.Month())-1].Count++
	}
	return out, nil
}
