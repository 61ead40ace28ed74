package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/BRB-BookingService/pkg/types"
)

// ErrInvalidCalendarConfig is returned when a provider schedule violates its
// invariants. Rejected at configuration-write time; the booking and availability
// paths never see an invalid schedule.
var ErrInvalidCalendarConfig = errors.New("domain: invalid calendar configuration")

// Provider is a bookable professional
type Provider struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkingWindow is the span of time on a given weekday during which a provider
// accepts bookings. At most one window per weekday; split shifts are modeled
// with pauses instead.
type WorkingWindow struct {
	ID         int64
	ProviderID int64
	Weekday    time.Weekday
	StartTime  types.TimeString
	EndTime    types.TimeString
	Pauses     []Pause
}

// Pause is a break inside a working window during which no bookings are allowed
type Pause struct {
	ID        int64
	WindowID  int64
	StartTime types.TimeString
	EndTime   types.TimeString
}

// ProviderSchedule is the full weekly calendar of a provider.
// Configuration data: mutated only by administrative action and treated as
// immutable by the booking engine during a single availability computation.
type ProviderSchedule struct {
	ProviderID int64
	Windows    []*WorkingWindow
}

// WindowForWeekday returns the working window for the given weekday,
// or nil if the provider does not work that day
func (s *ProviderSchedule) WindowForWeekday(weekday time.Weekday) *WorkingWindow {
	for _, w := range s.Windows {
		if w.Weekday == weekday {
			return w
		}
	}
	return nil
}

// WindowForDate returns the working window applicable to the given calendar date
func (s *ProviderSchedule) WindowForDate(date time.Time) *WorkingWindow {
	return s.WindowForWeekday(date.Weekday())
}

// Validate checks the schedule invariants:
// - window start < end, valid HH:MM values
// - at most one window per weekday
// - every pause strictly within its window's bounds, start < end
// - pauses within a window never overlap each other
func (s *ProviderSchedule) Validate() error {
	seen := make(map[time.Weekday]bool)

	for _, w := range s.Windows {
		if w.Weekday < time.Sunday || w.Weekday > time.Saturday {
			return fmt.Errorf("%w: weekday %d out of range", ErrInvalidCalendarConfig, w.Weekday)
		}
		if seen[w.Weekday] {
			return fmt.Errorf("%w: more than one working window on %s", ErrInvalidCalendarConfig, w.Weekday)
		}
		seen[w.Weekday] = true

		if err := w.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (w *WorkingWindow) validate() error {
	if err := w.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: window start on %s: %v", ErrInvalidCalendarConfig, w.Weekday, err)
	}
	if err := w.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: window end on %s: %v", ErrInvalidCalendarConfig, w.Weekday, err)
	}
	if !w.StartTime.IsBefore(w.EndTime) {
		return fmt.Errorf("%w: window on %s: start %s must be before end %s",
			ErrInvalidCalendarConfig, w.Weekday, w.StartTime, w.EndTime)
	}

	for i, p := range w.Pauses {
		if err := p.StartTime.Validate(); err != nil {
			return fmt.Errorf("%w: pause start on %s: %v", ErrInvalidCalendarConfig, w.Weekday, err)
		}
		if err := p.EndTime.Validate(); err != nil {
			return fmt.Errorf("%w: pause end on %s: %v", ErrInvalidCalendarConfig, w.Weekday, err)
		}
		if !p.StartTime.IsBefore(p.EndTime) {
			return fmt.Errorf("%w: pause on %s: start %s must be before end %s",
				ErrInvalidCalendarConfig, w.Weekday, p.StartTime, p.EndTime)
		}
		// Пауза должна лежать строго внутри окна
		if p.StartTime.IsBefore(w.StartTime) || p.EndTime.IsAfter(w.EndTime) {
			return fmt.Errorf("%w: pause %s-%s outside window %s-%s on %s",
				ErrInvalidCalendarConfig, p.StartTime, p.EndTime, w.StartTime, w.EndTime, w.Weekday)
		}

		// Паузы одного окна не должны пересекаться между собой
		for j := 0; j < i; j++ {
			other := w.Pauses[j]
			if p.StartTime.IsBefore(other.EndTime) && p.EndTime.IsAfter(other.StartTime) {
				return fmt.Errorf("%w: overlapping pauses %s-%s and %s-%s on %s",
					ErrInvalidCalendarConfig, other.StartTime, other.EndTime, p.StartTime, p.EndTime, w.Weekday)
			}
		}
	}

	return nil
}
