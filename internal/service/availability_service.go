package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/clinic-booking/core/internal/cache"
	"github.com/clinic-booking/core/internal/calendar"
	"github.com/clinic-booking/core/internal/model"
	"github.com/clinic-booking/core/internal/repository"
)

// DayView is the availability of one date as shown on the month calendar.
type DayView struct {
	FullDayClosed    bool             `json:"fullDayClosed"`
	UnavailableSlots []calendar.Clock `json:"unavailableSlots"`
}

// MonthView maps YYYY-MM-DD to the day's view.
type MonthView map[string]DayView

type AvailabilityService struct {
	store  *repository.Store
	engine calendar.Engine
	cache  cache.MonthCache
	loc    *time.Location
	now    func() time.Time
	log    *zap.Logger
}

// NewAvailabilityService wires the resolver. A nil now uses time.Now and a
// nil monthCache disables caching.
func NewAvailabilityService(
	store *repository.Store,
	monthCache cache.MonthCache,
	loc *time.Location,
	now func() time.Time,
	log *zap.Logger,
) *AvailabilityService {
	if monthCache == nil {
		monthCache = cache.NoopMonthCache{}
	}
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		store:  store,
		engine: calendar.Clinic,
		cache:  monthCache,
		loc:    loc,
		now:    now,
		log:    log,
	}
}

// MonthAvailability resolves every day of the month with a single ledger query.
func (s *AvailabilityService) MonthAvailability(ctx context.Context, year, month int) (MonthView, error) {
	if year < 1 || year > 9999 {
		return nil, validation("invalid year %d", year)
	}
	if month < 1 || month > 12 {
		return nil, validation("invalid month %d", month)
	}
	m := time.Month(month)

	// Taken before the ledger read; a write committed after this point bumps
	// the version and orphans whatever is stored below.
	version, err := s.cache.Version(ctx, year, m)
	cacheable := err == nil
	if err != nil {
		s.log.Warn("month cache version failed", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
	}

	if cacheable {
		if view, ok := s.cachedMonth(ctx, year, m, version); ok {
			return view, nil
		}
	}

	first := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	days := calendar.DaysInMonth(year, m)
	last := first.AddDate(0, 0, days-1)

	rows, err := s.store.BlockedTimes.ListActive(ctx, first, last)
	if err != nil {
		return nil, translate("list blocked times", err)
	}

	byDate := make(map[string][]calendar.Block, len(rows))
	for i := range rows {
		key := calendar.FormatDate(rows[i].Date())
		byDate[key] = append(byDate[key], rows[i].Block())
	}

	view := make(MonthView, days)
	for d := 0; d < days; d++ {
		date := first.AddDate(0, 0, d)
		key := calendar.FormatDate(date)
		day := s.engine.Resolve(date, byDate[key])
		view[key] = DayView{
			FullDayClosed:    day.Closed,
			UnavailableSlots: day.Unavailable,
		}
	}

	if !cacheable {
		return view, nil
	}
	if data, err := json.Marshal(view); err == nil {
		if err := s.cache.Set(ctx, year, m, version, data); err != nil {
			s.log.Warn("month cache set failed", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		}
	}

	return view, nil
}

func (s *AvailabilityService) cachedMonth(ctx context.Context, year int, m time.Month, version int64) (MonthView, bool) {
	data, ok, err := s.cache.Get(ctx, year, m, version)
	if err != nil {
		s.log.Warn("month cache get failed", zap.Int("year", year), zap.Int("month", int(m)), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var view MonthView
	if err := json.Unmarshal(data, &view); err != nil {
		s.log.Warn("month cache entry unreadable", zap.Int("year", year), zap.Int("month", int(m)))
		return nil, false
	}
	return view, true
}

// DayAvailableTimes lists the bookable slots of date. For the current day in
// the clinic's time zone, slots that already started are left out.
func (s *AvailabilityService) DayAvailableTimes(ctx context.Context, date string) ([]calendar.Clock, error) {
	d, err := calendar.ParseDate(date)
	if err != nil {
		return nil, validation("invalid date %q", date)
	}

	rows, err := s.store.BlockedTimes.ListActiveForDate(ctx, d, nil)
	if err != nil {
		return nil, translate("list blocked times", err)
	}

	return s.engine.AvailableTimes(d, model.Blocks(rows), s.now().In(s.loc)), nil
}

// PredefinedTimeSlots is the weekday slot grid offered by the admin UI.
func (s *AvailabilityService) PredefinedTimeSlots() []calendar.Clock {
	return calendar.PredefinedSlots()
}

// invalidateMonth drops the cached view of the month containing date.
func invalidateMonth(ctx context.Context, c cache.MonthCache, log *zap.Logger, date time.Time) {
	if err := c.Invalidate(ctx, date.Year(), date.Month()); err != nil {
		log.Warn("month cache invalidate failed", zap.String("date", calendar.FormatDate(date)), zap.Error(err))
	}
}
