package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit event type.
type EventType string

const (
	EventTypeBookingCreated   EventType = "booking_created"
	EventTypeBookingUpdated   EventType = "booking_updated"
	EventTypeBookingCancelled EventType = "booking_cancelled"
	EventTypeBookingDeleted   EventType = "booking_deleted"
	EventTypeDayReplaced      EventType = "day_availability_replaced"
	EventTypeBlockCreated     EventType = "block_created"
	EventTypeBlockRemoved     EventType = "block_removed"
)

// events: audit trail, written in the same transaction as the change.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	BookingID *uuid.UUID `gorm:"type:uuid;index"`

	Details datatypes.JSON

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
