package calendar

import "time"

// Window is an opening window [Open, Close).
type Window struct {
	Open  Clock
	Close Clock
}

// WorkingHours maps ISO weekday (1=Monday..7=Sunday) to the opening window.
// A missing weekday means closed.
type WorkingHours map[int]Window

// ClinicHours is the only working-hours table; both the month view and the
// reservation path read it.
var ClinicHours = WorkingHours{
	1: {Open: At(9, 0), Close: At(18, 0)},
	2: {Open: At(9, 0), Close: At(18, 0)},
	3: {Open: At(9, 0), Close: At(18, 0)},
	4: {Open: At(9, 0), Close: At(18, 0)},
	5: {Open: At(9, 0), Close: At(18, 0)},
	6: {Open: At(9, 0), Close: At(13, 0)},
}

// GenerateSlots returns the slot starts from open, stepping by step minutes,
// strictly before close.
func GenerateSlots(open, close Clock, step int) []Clock {
	if step <= 0 {
		return nil
	}
	var slots []Clock
	for cur := open; cur < close; cur = cur.Add(step) {
		slots = append(slots, cur)
	}
	return slots
}

// Slots returns the working slots of the given date, empty when closed.
func (wh WorkingHours) Slots(date time.Time) []Clock {
	w, ok := wh[ISOWeekday(date)]
	if !ok {
		return []Clock{}
	}
	return GenerateSlots(w.Open, w.Close, SlotInterval)
}

// DailyWorkingSlots returns the clinic's bookable slots for date.
func DailyWorkingSlots(date time.Time) []Clock {
	return ClinicHours.Slots(date)
}

// PredefinedSlots is the widest slot list the clinic can offer (a weekday),
// used by the admin UI to render slot pickers.
func PredefinedSlots() []Clock {
	w := ClinicHours[1]
	return GenerateSlots(w.Open, w.Close, SlotInterval)
}

func containsClock(list []Clock, c Clock) bool {
	for _, s := range list {
		if s == c {
			return true
		}
	}
	return false
}
