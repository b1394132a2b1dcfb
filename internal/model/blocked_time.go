package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/clinic-booking/core/internal/calendar"
)

// blocked_times: explicit unavailability, manual or pinned by a confirmed
// booking. Rows are never deleted, only deactivated.
//
// StartTime and EndTime are both set or both nil; nil closes the whole day.
type BlockedTime struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	BlockedDate datatypes.Date `gorm:"not null;index"`
	StartTime   *datatypes.Time
	EndTime     *datatypes.Time

	Reason string `gorm:"type:varchar(200)"`
	Active bool   `gorm:"not null;default:true;index"`

	// At most one active block per booking.
	BookingID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_blocked_times_active_booking,where:active = true"`

	CreatedAt time.Time `gorm:"not null"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (b *BlockedTime) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b *BlockedTime) Date() time.Time {
	return calendar.DateOf(time.Time(b.BlockedDate))
}

func (b *BlockedTime) WholeDay() bool {
	return b.StartTime == nil && b.EndTime == nil
}

// Range returns the blocked interval, nil for a whole-day block.
func (b *BlockedTime) Range() *calendar.TimeRange {
	if b.StartTime == nil || b.EndTime == nil {
		return nil
	}
	return &calendar.TimeRange{
		Start: ClockFromTime(*b.StartTime),
		End:   ClockFromTime(*b.EndTime),
	}
}

// Block converts the row into the engine's representation.
func (b *BlockedTime) Block() calendar.Block {
	if r := b.Range(); r != nil {
		return calendar.IntervalBlock(*r)
	}
	return calendar.WholeDayBlock()
}

// Blocks converts active rows for the engine.
func Blocks(rows []BlockedTime) []calendar.Block {
	out := make([]calendar.Block, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Block())
	}
	return out
}
