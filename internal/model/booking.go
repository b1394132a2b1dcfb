package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/clinic-booking/core/internal/calendar"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// Occupies reports whether a booking in this status holds its slot.
func (s BookingStatus) Occupies() bool {
	return s == BookingStatusConfirmed
}

// bookings
//
// idx_bookings_confirmed_slot is the only linearization point for
// reservations: at most one confirmed row per (date, time). The index covers
// confirmed rows only on purpose, so cancelled and pending rows for the same
// slot never collide with a new reservation.
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	ServiceID  uuid.UUID `gorm:"type:uuid;not null;index"`

	BookingDate datatypes.Date `gorm:"not null;index;uniqueIndex:idx_bookings_confirmed_slot,where:status = 'confirmed'"`
	BookingTime datatypes.Time `gorm:"not null;uniqueIndex:idx_bookings_confirmed_slot,where:status = 'confirmed'"`

	Status BookingStatus `gorm:"type:varchar(20);not null;default:'confirmed';index;uniqueIndex:idx_bookings_confirmed_slot,where:status = 'confirmed'"`
	Notes  string        `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Customer *Customer `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Service  *Service  `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b *Booking) Date() time.Time {
	return calendar.DateOf(time.Time(b.BookingDate))
}

func (b *Booking) Time() calendar.Clock {
	return ClockFromTime(b.BookingTime)
}
