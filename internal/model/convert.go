package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/clinic-booking/core/internal/calendar"
)

func ClockFromTime(t datatypes.Time) calendar.Clock {
	return calendar.Clock(time.Duration(t) / time.Minute)
}

func TimeFromClock(c calendar.Clock) datatypes.Time {
	return datatypes.NewTime(int(c)/60, int(c)%60, 0, 0)
}

// TimePtr is TimeFromClock for nullable columns.
func TimePtr(c calendar.Clock) *datatypes.Time {
	t := TimeFromClock(c)
	return &t
}

func DateValue(t time.Time) datatypes.Date {
	return datatypes.Date(calendar.DateOf(t))
}
