package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinic-booking/core/internal/calendar"
	"github.com/clinic-booking/core/internal/model"
)

// BookingFilter narrows List. Date wins over From/To when set.
type BookingFilter struct {
	Date      *time.Time
	From      *time.Time
	To        *time.Time
	Status    model.BookingStatus
	ServiceID *uuid.UUID
	// Latest orders by creation time, newest first, instead of by slot.
	Latest bool
	// Limit caps an unpaged listing; it is ignored once Page asks for a page.
	Limit int
	Page  calendar.PageRequest
}

// ServiceCount is one row of the per-service dashboard aggregate.
type ServiceCount struct {
	ServiceID   uuid.UUID `json:"service_id"`
	ServiceName string    `json:"service_name"`
	Total       int64     `json:"count"`
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	// GetByID loads the booking with its customer and service.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Save writes every column of an existing booking.
	Save(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns one page of matches and the total number of matches.
	List(ctx context.Context, filter BookingFilter) ([]model.Booking, int64, error)

	CountConfirmedOn(ctx context.Context, date time.Time) (int64, error)
	// NextConfirmed lists confirmed bookings at or after (date, at), soonest first.
	NextConfirmed(ctx context.Context, date time.Time, at calendar.Clock, limit int) ([]model.Booking, error)
	CountConfirmedByService(ctx context.Context) ([]ServiceCount, error)
	// ConfirmedDates returns the date of every confirmed booking in [from, to].
	ConfirmedDates(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(booking).Error
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Service").
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) Save(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(booking).Error
}

func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Booking{}, "id = ?", id).Error
}

func (r *GormBookingRepository) List(ctx context.Context, filter BookingFilter) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := r.db.WithContext(ctx).Model(&model.Booking{})

	switch {
	case filter.Date != nil:
		q = q.Where("booking_date = ?", model.DateValue(*filter.Date))
	default:
		if filter.From != nil {
			q = q.Where("booking_date >= ?", model.DateValue(*filter.From))
		}
		if filter.To != nil {
			q = q.Where("booking_date <= ?", model.DateValue(*filter.To))
		}
	}

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ServiceID != nil {
		q = q.Where("service_id = ?", *filter.ServiceID)
	}

	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	switch {
	case !page.All():
		q = q.Limit(page.PageSize).Offset(page.Offset())
	case filter.Limit > 0:
		q = q.Limit(filter.Limit)
		if total > int64(filter.Limit) {
			total = int64(filter.Limit)
		}
	}

	if filter.Latest {
		q = q.Order("created_at DESC")
	} else {
		q = q.Order("booking_date ASC").Order("booking_time ASC")
	}

	err := q.Preload("Customer").
		Preload("Service").
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *GormBookingRepository) CountConfirmedOn(ctx context.Context, date time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("booking_date = ? AND status = ?", model.DateValue(date), model.BookingStatusConfirmed).
		Count(&total).Error
	return total, err
}

func (r *GormBookingRepository) NextConfirmed(
	ctx context.Context,
	date time.Time,
	at calendar.Clock,
	limit int,
) ([]model.Booking, error) {
	if limit <= 0 {
		limit = 5
	}
	day := model.DateValue(date)

	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Service").
		Where("status = ?", model.BookingStatusConfirmed).
		Where("(booking_date > ? OR (booking_date = ? AND booking_time >= ?))", day, day, model.TimeFromClock(at)).
		Order("booking_date ASC").
		Order("booking_time ASC").
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) CountConfirmedByService(ctx context.Context) ([]ServiceCount, error) {
	var out []ServiceCount
	err := r.db.WithContext(ctx).
		Table("bookings").
		Select("services.id AS service_id, services.name AS service_name, COUNT(bookings.id) AS total").
		Joins("JOIN services ON services.id = bookings.service_id").
		Where("bookings.status = ?", model.BookingStatusConfirmed).
		Group("services.id, services.name").
		Order("total DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormBookingRepository) ConfirmedDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var raw []datatypes.Date
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("status = ?", model.BookingStatusConfirmed).
		Where("booking_date >= ? AND booking_date <= ?", model.DateValue(from), model.DateValue(to)).
		Pluck("booking_date", &raw).Error
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, 0, len(raw))
	for _, d := range raw {
		out = append(out, calendar.DateOf(time.Time(d)))
	}
	return out, nil
}
