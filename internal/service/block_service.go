package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinic-booking/core/internal/cache"
	"github.com/clinic-booking/core/internal/calendar"
	"github.com/clinic-booking/core/internal/model"
	"github.com/clinic-booking/core/internal/repository"
)

const (
	reasonDayClosed   = "Day closed"
	reasonManualBlock = "Blocked by administrator"
)

// CreateBlockInput is a manual admin block. StartTime and EndTime are both
// set or both empty; empty closes the whole day.
type CreateBlockInput struct {
	Date      string `json:"blocked_date" binding:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}

// ReplaceDayInput is the admin calendar's edit of one date.
type ReplaceDayInput struct {
	FullDayClosed    bool     `json:"fullDayClosed"`
	UnavailableSlots []string `json:"unavailableSlots"`
}

// BlockService manages the block ledger.
type BlockService struct {
	store  *repository.Store
	engine calendar.Engine
	cache  cache.MonthCache
	log    *zap.Logger
}

func NewBlockService(store *repository.Store, monthCache cache.MonthCache, log *zap.Logger) *BlockService {
	if monthCache == nil {
		monthCache = cache.NoopMonthCache{}
	}
	return &BlockService{
		store:  store,
		engine: calendar.Clinic,
		cache:  monthCache,
		log:    log,
	}
}

var (
	minDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// ListActive returns active blocks between two dates, both inclusive. An
// empty bound is open.
func (s *BlockService) ListActive(ctx context.Context, from, to string) ([]model.BlockedTime, error) {
	start, end := minDate, maxDate
	if from != "" {
		d, err := calendar.ParseDate(from)
		if err != nil {
			return nil, validation("invalid start_date %q", from)
		}
		start = d
	}
	if to != "" {
		d, err := calendar.ParseDate(to)
		if err != nil {
			return nil, validation("invalid end_date %q", to)
		}
		end = d
	}
	if end.Before(start) {
		return nil, validation("end_date is before start_date")
	}

	rows, err := s.store.BlockedTimes.ListActive(ctx, start, end)
	if err != nil {
		return nil, translate("list blocked times", err)
	}
	return rows, nil
}

// Create stores a manual block.
func (s *BlockService) Create(ctx context.Context, in CreateBlockInput) (*model.BlockedTime, error) {
	date, err := calendar.ParseDate(in.Date)
	if err != nil {
		return nil, validation("invalid blocked_date %q", in.Date)
	}

	block := &model.BlockedTime{
		BlockedDate: model.DateValue(date),
		Reason:      in.Reason,
	}

	switch {
	case in.StartTime == "" && in.EndTime == "":
		if block.Reason == "" {
			block.Reason = reasonDayClosed
		}
	case in.StartTime == "" || in.EndTime == "":
		return nil, validation("start_time and end_time must be given together")
	default:
		start, err := calendar.ParseClock(in.StartTime)
		if err != nil {
			return nil, validation("invalid start_time %q", in.StartTime)
		}
		end, err := calendar.ParseClock(in.EndTime)
		if err != nil {
			return nil, validation("invalid end_time %q", in.EndTime)
		}
		tr, err := calendar.NewTimeRange(start, end)
		if err != nil {
			return nil, validation("start_time must be before end_time")
		}
		block.StartTime = model.TimePtr(tr.Start)
		block.EndTime = model.TimePtr(tr.End)
		if block.Reason == "" {
			block.Reason = reasonManualBlock
		}
	}

	err = s.store.Transaction(ctx, func(repos repository.Repositories) error {
		if err := repos.BlockedTimes.Create(ctx, block); err != nil {
			return err
		}
		return repos.Events.Record(ctx, model.EventTypeBlockCreated, nil, map[string]any{
			"block_id": block.ID,
			"date":     calendar.FormatDate(date),
			"reason":   block.Reason,
		})
	})
	if err != nil {
		return nil, translate("create blocked time", err)
	}

	invalidateMonth(ctx, s.cache, s.log, date)
	s.log.Info("block created",
		zap.String("block_id", block.ID.String()),
		zap.String("date", calendar.FormatDate(date)),
		zap.Bool("whole_day", block.WholeDay()))

	return block, nil
}

// Remove soft-deletes a block. Removing an inactive block succeeds.
func (s *BlockService) Remove(ctx context.Context, id string) error {
	blockID, err := uuid.Parse(id)
	if err != nil {
		return validation("invalid block id %q", id)
	}

	var date time.Time
	err = s.store.Transaction(ctx, func(repos repository.Repositories) error {
		block, err := repos.BlockedTimes.GetByID(ctx, blockID)
		if err != nil {
			return err
		}
		date = block.Date()
		if !block.Active {
			return nil
		}
		if err := repos.BlockedTimes.Deactivate(ctx, blockID); err != nil {
			return err
		}
		return repos.Events.Record(ctx, model.EventTypeBlockRemoved, block.BookingID, map[string]any{
			"block_id": blockID,
			"date":     calendar.FormatDate(date),
		})
	})
	if err != nil {
		return translate("blocked time", err)
	}

	invalidateMonth(ctx, s.cache, s.log, date)
	return nil
}

// DeactivateForBooking frees the block pinned by a booking inside the
// caller's transaction. A booking without a live block is a no-op.
func (s *BlockService) DeactivateForBooking(ctx context.Context, repos repository.Repositories, bookingID uuid.UUID) error {
	n, err := repos.BlockedTimes.DeactivateForBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Debug("booking block released", zap.String("booking_id", bookingID.String()))
	}
	return nil
}

// PinForBooking links a fresh block covering interval to the booking, inside
// the caller's transaction.
func (s *BlockService) PinForBooking(
	ctx context.Context,
	repos repository.Repositories,
	b *model.Booking,
	interval calendar.TimeRange,
	reason string,
) error {
	bookingID := b.ID
	return repos.BlockedTimes.Create(ctx, &model.BlockedTime{
		BlockedDate: b.BookingDate,
		StartTime:   model.TimePtr(interval.Start),
		EndTime:     model.TimePtr(interval.End),
		Reason:      reason,
		BookingID:   &bookingID,
	})
}

// ReplaceDay rewrites the manual blocks of one date in a single transaction.
// Recurring slots are implicit and never stored; slots already pinned by a
// confirmed booking keep their booking block.
func (s *BlockService) ReplaceDay(ctx context.Context, dateStr string, in ReplaceDayInput) error {
	date, err := calendar.ParseDate(dateStr)
	if err != nil {
		return validation("invalid date %q", dateStr)
	}

	slots := make([]calendar.Clock, 0, len(in.UnavailableSlots))
	if !in.FullDayClosed {
		seen := make(map[calendar.Clock]struct{}, len(in.UnavailableSlots))
		recurring := s.engine.RecurringSlots(date)
		for _, label := range in.UnavailableSlots {
			c, err := calendar.ParseClock(label)
			if err != nil {
				return validation("invalid slot %q", label)
			}
			if !c.OnGrid() {
				return validation("slot %q is not on the %d-minute grid", label, calendar.SlotInterval)
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			if containsClock(recurring, c) {
				continue
			}
			slots = append(slots, c)
		}
	}

	var stored int
	err = s.store.Transaction(ctx, func(repos repository.Repositories) error {
		if _, err := repos.BlockedTimes.DeactivateManualForDate(ctx, date); err != nil {
			return err
		}

		if in.FullDayClosed {
			stored = 1
			if err := repos.BlockedTimes.Create(ctx, &model.BlockedTime{
				BlockedDate: model.DateValue(date),
				Reason:      reasonDayClosed,
			}); err != nil {
				return err
			}
		} else {
			pinned, err := repos.BlockedTimes.ListActiveForDate(ctx, date, nil)
			if err != nil {
				return err
			}
			for _, slot := range slots {
				if coveredByBooking(pinned, slot) {
					continue
				}
				span := calendar.TimeRange{Start: slot, End: slot.Add(calendar.SlotInterval - 1)}
				if err := repos.BlockedTimes.Create(ctx, &model.BlockedTime{
					BlockedDate: model.DateValue(date),
					StartTime:   model.TimePtr(span.Start),
					EndTime:     model.TimePtr(span.End),
					Reason:      reasonManualBlock,
				}); err != nil {
					return err
				}
				stored++
			}
		}

		return repos.Events.Record(ctx, model.EventTypeDayReplaced, nil, map[string]any{
			"date":             calendar.FormatDate(date),
			"fullDayClosed":    in.FullDayClosed,
			"unavailableSlots": slots,
		})
	})
	if err != nil {
		return translate("replace day availability", err)
	}

	invalidateMonth(ctx, s.cache, s.log, date)
	s.log.Info("day availability replaced",
		zap.String("date", calendar.FormatDate(date)),
		zap.Bool("full_day_closed", in.FullDayClosed),
		zap.Int("blocks", stored))

	return nil
}

func coveredByBooking(rows []model.BlockedTime, slot calendar.Clock) bool {
	for i := range rows {
		if rows[i].BookingID == nil {
			continue
		}
		if r := rows[i].Range(); r != nil && calendar.SlotRange(slot).Overlaps(*r) {
			return true
		}
	}
	return false
}

func containsClock(list []calendar.Clock, c calendar.Clock) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
