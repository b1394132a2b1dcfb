package calendar

import (
	"sort"
	"time"
)

// Block is the engine's view of one active unavailability record.
// A nil Range closes the whole day.
type Block struct {
	Range *TimeRange
}

func WholeDayBlock() Block {
	return Block{}
}

func IntervalBlock(tr TimeRange) Block {
	return Block{Range: &tr}
}

func (b Block) WholeDay() bool {
	return b.Range == nil
}

// DayAvailability is the merged view of one date.
type DayAvailability struct {
	Date         time.Time
	Working      []Clock
	ClosedByRule bool
	Closed       bool
	Unavailable  []Clock
}

// Free returns the working slots that are not unavailable.
func (d DayAvailability) Free() []Clock {
	if d.Closed {
		return []Clock{}
	}
	free := make([]Clock, 0, len(d.Working))
	for _, s := range d.Working {
		if !containsClock(d.Unavailable, s) {
			free = append(free, s)
		}
	}
	return free
}

// Engine merges working hours, recurring rules and stored blocks.
type Engine struct {
	Hours     WorkingHours
	Recurring []RecurringRule
}

// Clinic is the engine configured with the clinic's fixed policy.
var Clinic = Engine{
	Hours:     ClinicHours,
	Recurring: []RecurringRule{MaintenanceRule},
}

func (e Engine) WorkingSlots(date time.Time) []Clock {
	return e.Hours.Slots(date)
}

// RecurringSlots returns every slot closed on date by a recurring rule.
func (e Engine) RecurringSlots(date time.Time) []Clock {
	var out []Clock
	for _, rule := range e.Recurring {
		for _, s := range rule.Slots(date) {
			if !containsClock(out, s) {
				out = append(out, s)
			}
		}
	}
	sortClocks(out)
	return out
}

// Resolve computes the availability of date from the three sources:
// working hours, recurring rules and the given active blocks.
func (e Engine) Resolve(date time.Time, blocks []Block) DayAvailability {
	working := e.WorkingSlots(date)
	day := DayAvailability{
		Date:        DateOf(date),
		Working:     working,
		Unavailable: []Clock{},
	}
	if len(working) == 0 {
		day.ClosedByRule = true
		day.Closed = true
		return day
	}

	unavailable := make(map[Clock]struct{})
	for _, s := range e.RecurringSlots(date) {
		unavailable[s] = struct{}{}
	}

	for _, b := range blocks {
		if b.WholeDay() {
			day.Closed = true
			break
		}
		for _, s := range working {
			if SlotRange(s).Overlaps(*b.Range) {
				unavailable[s] = struct{}{}
			}
		}
	}

	if day.Closed {
		day.Unavailable = append([]Clock{}, working...)
		return day
	}

	for _, s := range working {
		if _, ok := unavailable[s]; ok {
			day.Unavailable = append(day.Unavailable, s)
		}
	}
	return day
}

// AvailableTimes returns the bookable slots of date. When date is the
// current day of now, slots that have already started are dropped; now must
// be expressed in the clinic's location.
func (e Engine) AvailableTimes(date time.Time, blocks []Block, now time.Time) []Clock {
	free := e.Resolve(date, blocks).Free()
	if !sameDate(date, now) {
		return free
	}
	current := ClockOf(now)
	out := make([]Clock, 0, len(free))
	for _, s := range free {
		if s > current {
			out = append(out, s)
		}
	}
	return out
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sortClocks(list []Clock) {
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
}
