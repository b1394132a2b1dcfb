package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups every repository bound to one gorm handle, either the
// root connection or a transaction.
type Repositories struct {
	Bookings     BookingRepository
	BlockedTimes BlockedTimeRepository
	Customers    CustomerRepository
	Services     ServiceRepository
	Events       EventRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Bookings:     NewGormBookingRepository(db),
		BlockedTimes: NewGormBlockedTimeRepository(db),
		Customers:    NewGormCustomerRepository(db),
		Services:     NewGormServiceRepository(db),
		Events:       NewGormEventRepository(db),
	}
}

// Store owns the root connection. Its embedded Repositories run outside any
// transaction; use Transaction for multi-row mutations.
type Store struct {
	Repositories
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Repositories: NewRepositories(db),
		db:           db,
	}
}

// Transaction runs fn with repositories bound to a single transaction.
// A returned error or a panic rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(repos Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
