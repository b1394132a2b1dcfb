package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinic-booking/core/internal/cache"
	"github.com/clinic-booking/core/internal/calendar"
	"github.com/clinic-booking/core/internal/model"
	"github.com/clinic-booking/core/internal/repository"
)

type CustomerInput struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

type CreateBookingInput struct {
	Customer    CustomerInput `json:"customer"`
	ServiceID   string        `json:"service_id" binding:"required"`
	BookingDate string        `json:"booking_date" binding:"required"`
	BookingTime string        `json:"booking_time" binding:"required"`
	Notes       string        `json:"notes"`
}

// UpdateBookingInput is a partial update; nil fields are left unchanged.
type UpdateBookingInput struct {
	ServiceID   *string `json:"service_id"`
	BookingDate *string `json:"booking_date"`
	BookingTime *string `json:"booking_time"`
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
}

// ListBookingsInput carries the listing filters as they arrive on the query string.
type ListBookingsInput struct {
	Date      string `form:"date"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Status    string `form:"status"`
	ServiceID string `form:"service_id"`
	OrderBy   string `form:"order_by"`
	Limit     int    `form:"limit"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// BookingService runs the reservation protocol. Availability checks are a
// pre-check only; the confirmed-slot unique index decides races.
type BookingService struct {
	store  *repository.Store
	blocks *BlockService
	engine calendar.Engine
	cache  cache.MonthCache
	log    *zap.Logger
}

func NewBookingService(store *repository.Store, monthCache cache.MonthCache, log *zap.Logger) *BookingService {
	if monthCache == nil {
		monthCache = cache.NoopMonthCache{}
	}
	return &BookingService{
		store:  store,
		blocks: NewBlockService(store, monthCache, log),
		engine: calendar.Clinic,
		cache:  monthCache,
		log:    log,
	}
}

func bookingReason(customer, service string) string {
	return fmt.Sprintf("Booking of %s for %s", customer, service)
}

// checkSlot validates (date, at) against working hours, the recurring rule
// and the active blocks of the date, returning the interval the booking
// would occupy. exclude skips the block pinned by that booking.
func (s *BookingService) checkSlot(
	ctx context.Context,
	repos repository.Repositories,
	date time.Time,
	at calendar.Clock,
	duration int,
	exclude *uuid.UUID,
) (calendar.TimeRange, error) {
	working := s.engine.WorkingSlots(date)
	if len(working) == 0 {
		return calendar.TimeRange{}, conflict(ReasonDayClosed)
	}
	if !containsClock(working, at) {
		return calendar.TimeRange{}, conflict(ReasonOutsideHours)
	}

	interval, err := calendar.NewTimeRange(at, at.Add(duration))
	if err != nil {
		return calendar.TimeRange{}, validation("booking at %s for %d minutes ends after midnight", at, duration)
	}

	if containsClock(s.engine.RecurringSlots(date), at) {
		return calendar.TimeRange{}, conflict(ReasonMaintenance)
	}

	rows, err := repos.BlockedTimes.ListActiveForDate(ctx, date, exclude)
	if err != nil {
		return calendar.TimeRange{}, err
	}
	for i := range rows {
		r := rows[i].Range()
		if r == nil {
			return calendar.TimeRange{}, conflict(ReasonDayClosed)
		}
		if interval.Overlaps(*r) {
			if rows[i].BookingID != nil {
				return calendar.TimeRange{}, conflict(ReasonSlotTaken)
			}
			return calendar.TimeRange{}, conflict(ReasonBlocked)
		}
	}

	return interval, nil
}

// Create books a confirmed slot and pins its block in one transaction.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	c := in.Customer
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Phone) == "" {
		return nil, validation("customer name, email and phone are required")
	}
	serviceID, err := uuid.Parse(in.ServiceID)
	if err != nil {
		return nil, validation("invalid service_id %q", in.ServiceID)
	}
	date, err := calendar.ParseDate(in.BookingDate)
	if err != nil {
		return nil, validation("invalid booking_date %q", in.BookingDate)
	}
	at, err := calendar.ParseClock(in.BookingTime)
	if err != nil {
		return nil, validation("invalid booking_time %q", in.BookingTime)
	}

	var booking *model.Booking
	err = s.store.Transaction(ctx, func(repos repository.Repositories) error {
		customer, err := repos.Customers.EnsureByEmail(ctx, c.Name, c.Email, c.Phone)
		if err != nil {
			return fmt.Errorf("ensure customer: %w", err)
		}

		svc, err := repos.Services.GetByID(ctx, serviceID)
		if err != nil {
			return translate("service", err)
		}

		interval, err := s.checkSlot(ctx, repos, date, at, svc.Duration(), nil)
		if err != nil {
			return err
		}

		b := &model.Booking{
			CustomerID:  customer.ID,
			ServiceID:   svc.ID,
			BookingDate: model.DateValue(date),
			BookingTime: model.TimeFromClock(at),
			Status:      model.BookingStatusConfirmed,
			Notes:       in.Notes,
		}
		if err := repos.Bookings.Create(ctx, b); err != nil {
			return err
		}
		if err := s.blocks.PinForBooking(ctx, repos, b, interval, bookingReason(customer.Name, svc.Name)); err != nil {
			return err
		}
		if err := repos.Events.Record(ctx, model.EventTypeBookingCreated, &b.ID, map[string]any{
			"date":        calendar.FormatDate(date),
			"time":        at,
			"service_id":  svc.ID,
			"customer_id": customer.ID,
		}); err != nil {
			return err
		}

		b.Customer = customer
		b.Service = svc
		booking = b
		return nil
	})
	if err != nil {
		return nil, translate("create booking", err)
	}

	invalidateMonth(ctx, s.cache, s.log, date)
	s.log.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("date", calendar.FormatDate(date)),
		zap.String("time", at.String()))

	return booking, nil
}

// Update applies a partial change. When the booking ends up confirmed and its
// slot, service or status changed, the slot is re-validated (ignoring its own
// block) and the block is re-pinned. Any other target status frees the block.
func (s *BookingService) Update(ctx context.Context, id string, in UpdateBookingInput) (*model.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, validation("invalid booking id %q", id)
	}

	var (
		booking *model.Booking
		oldDate time.Time
	)
	err = s.store.Transaction(ctx, func(repos repository.Repositories) error {
		b, err := repos.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return translate("booking", err)
		}
		oldDate = b.Date()
		prevStatus := b.Status
		changes := map[string]any{}

		if in.ServiceID != nil && *in.ServiceID != b.ServiceID.String() {
			sid, err := uuid.Parse(*in.ServiceID)
			if err != nil {
				return validation("invalid service_id %q", *in.ServiceID)
			}
			svc, err := repos.Services.GetByID(ctx, sid)
			if err != nil {
				return translate("service", err)
			}
			b.ServiceID = svc.ID
			b.Service = svc
			changes["service_id"] = svc.ID
		}
		if in.BookingDate != nil {
			d, err := calendar.ParseDate(*in.BookingDate)
			if err != nil {
				return validation("invalid booking_date %q", *in.BookingDate)
			}
			if !d.Equal(b.Date()) {
				b.BookingDate = model.DateValue(d)
				changes["date"] = calendar.FormatDate(d)
			}
		}
		if in.BookingTime != nil {
			t, err := calendar.ParseClock(*in.BookingTime)
			if err != nil {
				return validation("invalid booking_time %q", *in.BookingTime)
			}
			if t != b.Time() {
				b.BookingTime = model.TimeFromClock(t)
				changes["time"] = t
			}
		}
		if in.Status != nil {
			st := model.BookingStatus(*in.Status)
			if !st.Valid() {
				return validation("invalid status %q", *in.Status)
			}
			if st != b.Status {
				b.Status = st
				changes["status"] = st
			}
		}
		if in.Notes != nil && *in.Notes != b.Notes {
			b.Notes = *in.Notes
			changes["notes"] = true
		}

		_, slotChanged := changes["date"]
		_, timeChanged := changes["time"]
		_, serviceChanged := changes["service_id"]
		promoted := b.Status.Occupies() && !prevStatus.Occupies()

		switch {
		case !b.Status.Occupies():
			if err := s.blocks.DeactivateForBooking(ctx, repos, b.ID); err != nil {
				return err
			}
		case slotChanged || timeChanged || serviceChanged || promoted:
			svc := b.Service
			if svc == nil {
				if svc, err = repos.Services.GetByID(ctx, b.ServiceID); err != nil {
					return translate("service", err)
				}
			}
			interval, err := s.checkSlot(ctx, repos, b.Date(), b.Time(), svc.Duration(), &b.ID)
			if err != nil {
				return err
			}
			if err := s.blocks.DeactivateForBooking(ctx, repos, b.ID); err != nil {
				return err
			}
			name := ""
			if b.Customer != nil {
				name = b.Customer.Name
			}
			if err := s.blocks.PinForBooking(ctx, repos, b, interval, bookingReason(name, svc.Name)); err != nil {
				return err
			}
		}

		if len(changes) == 0 {
			booking = b
			return nil
		}

		if err := repos.Bookings.Save(ctx, b); err != nil {
			return err
		}
		if err := repos.Events.Record(ctx, model.EventTypeBookingUpdated, &b.ID, changes); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, translate("update booking", err)
	}

	invalidateMonth(ctx, s.cache, s.log, oldDate)
	if newDate := booking.Date(); !sameMonth(oldDate, newDate) {
		invalidateMonth(ctx, s.cache, s.log, newDate)
	}
	s.log.Info("booking updated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("date", calendar.FormatDate(booking.Date())),
		zap.String("time", booking.Time().String()),
		zap.String("status", string(booking.Status)))

	return booking, nil
}

// Cancel frees the slot and marks the booking cancelled. Cancelling twice is
// not an error.
func (s *BookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, validation("invalid booking id %q", id)
	}

	var (
		booking *model.Booking
		changed bool
	)
	err = s.store.Transaction(ctx, func(repos repository.Repositories) error {
		b, err := repos.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return translate("booking", err)
		}
		booking = b
		if b.Status == model.BookingStatusCancelled {
			return nil
		}

		if err := s.blocks.DeactivateForBooking(ctx, repos, b.ID); err != nil {
			return err
		}
		prev := b.Status
		b.Status = model.BookingStatusCancelled
		if err := repos.Bookings.Save(ctx, b); err != nil {
			return err
		}
		changed = true
		return repos.Events.Record(ctx, model.EventTypeBookingCancelled, &b.ID, map[string]any{
			"previous_status": prev,
		})
	})
	if err != nil {
		return nil, translate("cancel booking", err)
	}

	if changed {
		invalidateMonth(ctx, s.cache, s.log, booking.Date())
		s.log.Info("booking cancelled", zap.String("booking_id", booking.ID.String()))
	}
	return booking, nil
}

// Delete frees the slot and removes the booking row.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return validation("invalid booking id %q", id)
	}

	var date time.Time
	err = s.store.Transaction(ctx, func(repos repository.Repositories) error {
		b, err := repos.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return translate("booking", err)
		}
		date = b.Date()

		if err := s.blocks.DeactivateForBooking(ctx, repos, b.ID); err != nil {
			return err
		}
		if err := repos.Events.Record(ctx, model.EventTypeBookingDeleted, &b.ID, map[string]any{
			"booking_id": b.ID,
			"date":       calendar.FormatDate(date),
			"time":       b.Time(),
			"status":     b.Status,
		}); err != nil {
			return err
		}
		return repos.Bookings.Delete(ctx, b.ID)
	})
	if err != nil {
		return translate("delete booking", err)
	}

	invalidateMonth(ctx, s.cache, s.log, date)
	s.log.Info("booking deleted", zap.String("booking_id", bookingID.String()))
	return nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*model.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, validation("invalid booking id %q", id)
	}
	b, err := s.store.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, translate("booking", err)
	}
	return b, nil
}

// List filters bookings and pages them in the database. Without page or
// page_size every match (capped by limit) is returned on a single page.
func (s *BookingService) List(ctx context.Context, in ListBookingsInput) (calendar.Page[model.Booking], error) {
	var (
		filter repository.BookingFilter
		empty  calendar.Page[model.Booking]
	)

	parse := func(name, v string) (*time.Time, error) {
		if v == "" {
			return nil, nil
		}
		d, err := calendar.ParseDate(v)
		if err != nil {
			return nil, validation("invalid %s %q", name, v)
		}
		return &d, nil
	}

	var err error
	if filter.Date, err = parse("date", in.Date); err != nil {
		return empty, err
	}
	if filter.From, err = parse("start_date", in.StartDate); err != nil {
		return empty, err
	}
	if filter.To, err = parse("end_date", in.EndDate); err != nil {
		return empty, err
	}

	if in.Status != "" {
		st := model.BookingStatus(in.Status)
		if !st.Valid() {
			return empty, validation("invalid status %q", in.Status)
		}
		filter.Status = st
	}
	if in.ServiceID != "" {
		sid, err := uuid.Parse(in.ServiceID)
		if err != nil {
			return empty, validation("invalid service_id %q", in.ServiceID)
		}
		filter.ServiceID = &sid
	}
	filter.Latest = in.OrderBy == "latest"
	if in.Limit < 0 || in.Page < 0 || in.PageSize < 0 {
		return empty, validation("limit, page and page_size must not be negative")
	}
	filter.Limit = in.Limit
	filter.Page = calendar.PageRequest{Page: in.Page, PageSize: in.PageSize}

	bookings, total, err := s.store.Bookings.List(ctx, filter)
	if err != nil {
		return empty, translate("list bookings", err)
	}
	return calendar.NewPage(bookings, filter.Page, total), nil
}

// Events returns the audit trail of a booking, oldest first.
func (s *BookingService) Events(ctx context.Context, id string) ([]model.Event, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, validation("invalid booking id %q", id)
	}
	if _, err := s.store.Bookings.GetByID(ctx, bookingID); err != nil {
		return nil, translate("booking", err)
	}
	events, err := s.store.Events.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, translate("list events", err)
	}
	return events, nil
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
