package calendar

import (
	"errors"
	"fmt"
	"time"
)

// SlotInterval is the granularity of every bookable slot.
const SlotInterval = 30

const (
	minutesPerDay = 24 * 60
	dateLayout    = "2006-01-02"
)

var (
	ErrInvalidClock = errors.New("invalid time of day")
	ErrInvalidDate  = errors.New("invalid date")
)

// Clock is a wall-clock time of day, in minutes since midnight.
type Clock int

// At builds a Clock from hours and minutes.
func At(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock accepts "HH:MM" and the "HH:MM:SS" form returned by TIME columns.
func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return At(t.Hour(), t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
}

// ClockOf returns the time of day of t in its own location.
func ClockOf(t time.Time) Clock {
	return At(t.Hour(), t.Minute())
}

func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// Valid reports whether c lies inside a single day. 24:00 is accepted as an end bound.
func (c Clock) Valid() bool {
	return c >= 0 && c <= minutesPerDay
}

// OnGrid reports whether c starts a whole slot that ends within the day.
func (c Clock) OnGrid() bool {
	return c >= 0 && int(c)%SlotInterval == 0 && c.Add(SlotInterval) <= minutesPerDay
}

func (c Clock) Duration() time.Duration {
	return time.Duration(c) * time.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// DateOf drops the time of day and the zone: calendar dates are stored as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ISOWeekday maps Monday..Sunday to 1..7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
