package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

// ConflictReason says why a slot cannot be taken.
type ConflictReason string

const (
	ReasonMaintenance  ConflictReason = "maintenance"
	ReasonDayClosed    ConflictReason = "day_closed"
	ReasonBlocked      ConflictReason = "blocked"
	ReasonOutsideHours ConflictReason = "outside_hours"
	ReasonSlotTaken    ConflictReason = "slot_taken"
)

var conflictMessages = map[ConflictReason]string{
	ReasonMaintenance:  "slot is reserved for recurring maintenance",
	ReasonDayClosed:    "the clinic is closed on this date",
	ReasonBlocked:      "slot is blocked",
	ReasonOutsideHours: "slot is outside working hours",
	ReasonSlotTaken:    "slot was just taken, choose another time",
}

// ConflictError is returned when a slot is unavailable. It matches ErrConflict.
type ConflictError struct {
	Reason ConflictReason
}

func conflict(reason ConflictReason) error {
	return &ConflictError{Reason: reason}
}

func (e *ConflictError) Error() string {
	if msg, ok := conflictMessages[e.Reason]; ok {
		return msg
	}
	return "slot unavailable"
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// translate maps storage errors onto the service taxonomy. Everything else
// is wrapped with op and left as an unexpected error.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(op)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return conflict(ReasonSlotTaken)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
