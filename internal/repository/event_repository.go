package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinic-booking/core/internal/model"
)

type EventRepository interface {
	// Record appends an audit entry; details are stored as JSON.
	Record(ctx context.Context, eventType model.EventType, bookingID *uuid.UUID, details any) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Event, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Record(ctx context.Context, eventType model.EventType, bookingID *uuid.UUID, details any) error {
	var payload datatypes.JSON
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshal event details: %w", err)
		}
		payload = datatypes.JSON(raw)
	}

	ev := &model.Event{
		EventType: eventType,
		BookingID: bookingID,
		Details:   payload,
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(ev).Error
}

func (r *GormEventRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
