package httpapi

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/clinic-booking/core/internal/calendar"
	"github.com/clinic-booking/core/internal/model"
)

type CustomerResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

type ServiceResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Price           float64   `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	Active          bool      `json:"active"`
}

type BookingResponse struct {
	ID          uuid.UUID         `json:"id"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	ServiceID   uuid.UUID         `json:"service_id"`
	BookingDate string            `json:"booking_date"`
	BookingTime string            `json:"booking_time"`
	Status      string            `json:"status"`
	Notes       string            `json:"notes"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Customer    *CustomerResponse `json:"customer"`
	Service     *ServiceResponse  `json:"service"`
}

type BlockedTimeResponse struct {
	ID          uuid.UUID  `json:"id"`
	BlockedDate string     `json:"blocked_date"`
	StartTime   *string    `json:"start_time"`
	EndTime     *string    `json:"end_time"`
	Reason      string     `json:"reason"`
	BookingID   *uuid.UUID `json:"booking_id"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
}

type EventResponse struct {
	ID        uuid.UUID       `json:"id"`
	EventType string          `json:"event_type"`
	BookingID *uuid.UUID      `json:"booking_id"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func toServiceResponse(s *model.Service) *ServiceResponse {
	if s == nil {
		return nil
	}
	return &ServiceResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Category:        s.Category,
		Price:           s.Price,
		DurationMinutes: s.Duration(),
		Active:          s.Active,
	}
}

func toBookingResponse(b *model.Booking) BookingResponse {
	resp := BookingResponse{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		ServiceID:   b.ServiceID,
		BookingDate: calendar.FormatDate(b.Date()),
		BookingTime: b.Time().String(),
		Status:      string(b.Status),
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Service:     toServiceResponse(b.Service),
	}
	if b.Customer != nil {
		resp.Customer = &CustomerResponse{
			ID:    b.Customer.ID,
			Name:  b.Customer.Name,
			Email: b.Customer.Email,
			Phone: b.Customer.Phone,
		}
	}
	return resp
}

func toBookingResponses(list []model.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(list))
	for i := range list {
		out = append(out, toBookingResponse(&list[i]))
	}
	return out
}

func toBlockedTimeResponse(b *model.BlockedTime) BlockedTimeResponse {
	resp := BlockedTimeResponse{
		ID:          b.ID,
		BlockedDate: calendar.FormatDate(b.Date()),
		Reason:      b.Reason,
		BookingID:   b.BookingID,
		Active:      b.Active,
		CreatedAt:   b.CreatedAt,
	}
	if r := b.Range(); r != nil {
		start, end := r.Start.String(), r.End.String()
		resp.StartTime = &start
		resp.EndTime = &end
	}
	return resp
}

func toEventResponse(e *model.Event) EventResponse {
	resp := EventResponse{
		ID:        e.ID,
		EventType: string(e.EventType),
		BookingID: e.BookingID,
		CreatedAt: e.CreatedAt,
	}
	if len(e.Details) > 0 {
		resp.Details = json.RawMessage(e.Details)
	}
	return resp
}
