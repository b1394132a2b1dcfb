package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinic-booking/core/internal/model"
)

type BlockedTimeRepository interface {
	// Active rows with from <= date <= to, ordered by date then start time.
	ListActive(ctx context.Context, from, to time.Time) ([]model.BlockedTime, error)
	// Active rows of one date, optionally ignoring the block pinned by a booking.
	ListActiveForDate(ctx context.Context, date time.Time, excludeBookingID *uuid.UUID) ([]model.BlockedTime, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.BlockedTime, error)
	Create(ctx context.Context, block *model.BlockedTime) error
	// Deactivate soft-deletes one row. Already inactive rows are left as is.
	Deactivate(ctx context.Context, id uuid.UUID) error
	// DeactivateForBooking frees whatever block a booking pinned.
	DeactivateForBooking(ctx context.Context, bookingID uuid.UUID) (int64, error)
	// DeactivateManualForDate clears the active admin rows of a date.
	// Blocks pinned by bookings are left alone.
	DeactivateManualForDate(ctx context.Context, date time.Time) (int64, error)
}

type GormBlockedTimeRepository struct {
	db *gorm.DB
}

func NewGormBlockedTimeRepository(db *gorm.DB) *GormBlockedTimeRepository {
	return &GormBlockedTimeRepository{db: db}
}

func (r *GormBlockedTimeRepository) ListActive(ctx context.Context, from, to time.Time) ([]model.BlockedTime, error) {
	var rows []model.BlockedTime
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("blocked_date >= ? AND blocked_date <= ?", model.DateValue(from), model.DateValue(to)).
		Order("blocked_date ASC").
		Order("start_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormBlockedTimeRepository) ListActiveForDate(
	ctx context.Context,
	date time.Time,
	excludeBookingID *uuid.UUID,
) ([]model.BlockedTime, error) {
	q := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("blocked_date = ?", model.DateValue(date))

	if excludeBookingID != nil {
		q = q.Where("(booking_id IS NULL OR booking_id <> ?)", *excludeBookingID)
	}

	var rows []model.BlockedTime
	if err := q.Order("start_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormBlockedTimeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BlockedTime, error) {
	var b model.BlockedTime
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBlockedTimeRepository) Create(ctx context.Context, block *model.BlockedTime) error {
	block.Active = true
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(block).Error
}

func (r *GormBlockedTimeRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.BlockedTime{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false).
		Error
}

func (r *GormBlockedTimeRepository) DeactivateForBooking(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.BlockedTime{}).
		Where("booking_id = ? AND active = ?", bookingID, true).
		Update("active", false)
	return res.RowsAffected, res.Error
}

func (r *GormBlockedTimeRepository) DeactivateManualForDate(ctx context.Context, date time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.BlockedTime{}).
		Where("blocked_date = ? AND active = ?", model.DateValue(date), true).
		Where("booking_id IS NULL").
		Update("active", false)
	return res.RowsAffected, res.Error
}
