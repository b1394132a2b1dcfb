package calendar

import "errors"

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrSlotDuration     = errors.New("slot duration must be positive")
)

// TimeRange is a half-open time-of-day interval [Start, End).
type TimeRange struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// NewTimeRange validates that both bounds are inside the day and Start < End.
func NewTimeRange(start, end Clock) (TimeRange, error) {
	if !start.Valid() || !end.Valid() || end <= start {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// SlotRange is the interval occupied by a slot starting at start.
func SlotRange(start Clock) TimeRange {
	return TimeRange{Start: start, End: start.Add(SlotInterval)}
}

// Overlaps uses the open-interval test: a.Start < b.End && a.End > b.Start.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && r.End > other.Start
}

// HasOverlap reports whether newRange intersects any of existing and returns
// the conflicting ranges.
func HasOverlap(newRange TimeRange, existing []TimeRange) (bool, []TimeRange) {
	var conflicts []TimeRange
	for _, tr := range existing {
		if newRange.Overlaps(tr) {
			conflicts = append(conflicts, tr)
		}
	}
	return len(conflicts) > 0, conflicts
}

// SplitToSlots cuts tr into consecutive slot starts of slotMinutes, dropping
// a shorter tail.
func SplitToSlots(tr TimeRange, slotMinutes int) ([]Clock, error) {
	if slotMinutes <= 0 {
		return nil, ErrSlotDuration
	}
	var slots []Clock
	for cur := tr.Start; cur.Add(slotMinutes) <= tr.End; cur = cur.Add(slotMinutes) {
		slots = append(slots, cur)
	}
	return slots, nil
}
