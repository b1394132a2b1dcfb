package calendar

import "time"

// RecurringRule closes the same window on a fixed set of weekdays, every week.
// It never depends on stored data.
type RecurringRule struct {
	Weekdays []time.Weekday
	Window   TimeRange
	Reason   string
}

// MaintenanceRule: Monday, Wednesday and Friday mornings are reserved.
var MaintenanceRule = RecurringRule{
	Weekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
	Window:   TimeRange{Start: At(9, 0), End: At(11, 30)},
	Reason:   "maintenance",
}

// Applies reports whether the rule is in force on date.
func (r RecurringRule) Applies(date time.Time) bool {
	return containsWeekday(r.Weekdays, date.Weekday())
}

// Slots returns the slot labels the rule blocks on date.
func (r RecurringRule) Slots(date time.Time) []Clock {
	if !r.Applies(date) {
		return []Clock{}
	}
	slots, _ := SplitToSlots(r.Window, SlotInterval)
	return slots
}

// RecurringUnavailableSlots returns the slots closed by the weekly rule on date.
func RecurringUnavailableSlots(date time.Time) []Clock {
	return MaintenanceRule.Slots(date)
}

func containsWeekday(list []time.Weekday, w time.Weekday) bool {
	for _, d := range list {
		if d == w {
			return true
		}
	}
	return false
}
