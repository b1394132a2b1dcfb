package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinic-booking/core/internal/model"
)

type CustomerRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
	// EnsureByEmail returns the customer with this email, creating it when
	// missing. Existing rows keep their stored name and phone.
	EnsureByEmail(ctx context.Context, name, email, phone string) (*model.Customer, error)
}

type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	// Keep only digits and a leading plus; ignore formatting characters.
	b := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if (c >= '0' && c <= '9') || (c == '+' && len(b) == 0) {
			b = append(b, c)
		}
	}
	return string(b)
}

func (r *GormCustomerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).First(&c, "email = ?", normalizeEmail(email)).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// EnsureByEmail inserts with ON CONFLICT DO NOTHING and then reads the row
// back, so concurrent first bookings from one email share a single customer.
func (r *GormCustomerRepository) EnsureByEmail(ctx context.Context, name, email, phone string) (*model.Customer, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, gorm.ErrRecordNotFound
	}

	candidate := model.Customer{
		Name:  strings.TrimSpace(name),
		Email: email,
		Phone: normalizePhone(phone),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&candidate).Error
	if err != nil {
		return nil, err
	}

	return r.GetByEmail(ctx, email)
}
