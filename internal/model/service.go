package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultServiceDuration is used when a catalog entry has no duration.
const DefaultServiceDuration = 30

// services: the catalog is managed elsewhere; the scheduler reads
// DurationMinutes to size a booking's occupied interval.
type Service struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"type:varchar(50)"`

	Price           float64 `gorm:"not null;default:0"`
	DurationMinutes int     `gorm:"not null;default:30"`

	Active bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Duration falls back to DefaultServiceDuration for unset catalog rows.
func (s *Service) Duration() int {
	if s.DurationMinutes <= 0 {
		return DefaultServiceDuration
	}
	return s.DurationMinutes
}
