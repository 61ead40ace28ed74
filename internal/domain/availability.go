package domain

import (
	"github.com/m04kA/BRB-BookingService/pkg/types"
)

// ComputeFreeSlots produces the ordered sequence of bookable start times for a
// single working window and service duration.
//
// Candidates are generated on a fixed 30-minute grid from the window start; a
// candidate's own end is start + durationMinutes (grid step controls candidate
// density, not occupancy length). A candidate is rejected when:
//   - the service would run past the end of the window;
//   - it overlaps any pause, where partial overlap is disqualifying
//     (cand.start < pause.end AND cand.end > pause.start);
//   - an existing slot-occupying reservation starts within [cand.start, cand.end).
//
// The computation is pure and deterministic for identical inputs. A nil window
// (provider does not work that weekday) yields an empty sequence, not an error.
func ComputeFreeSlots(window *WorkingWindow, durationMinutes int, reservations []*Reservation) []types.TimeString {
	slots := make([]types.TimeString, 0)

	if window == nil || durationMinutes <= 0 {
		return slots
	}

	windowStart := window.StartTime.Minutes()
	windowEnd := window.EndTime.Minutes()

	for candStart := windowStart; candStart < windowEnd; candStart += SlotGranularityMinutes {
		candEnd := candStart + durationMinutes

		// Услуга не успевает закончиться до конца окна; все последующие
		// кандидаты начинаются позже и тоже не успеют
		if candEnd > windowEnd {
			break
		}

		if overlapsPause(window.Pauses, candStart, candEnd) {
			continue
		}

		if slotOccupied(reservations, candStart, candEnd) {
			continue
		}

		slot, err := types.NewTimeStringFromMinutes(candStart)
		if err != nil {
			continue
		}
		slots = append(slots, slot)
	}

	return slots
}

// IsSlotFree reports whether the requested start time is one of the currently
// free slots for the window. Used by the booking path as the authoritative
// re-validation at creation time.
func IsSlotFree(window *WorkingWindow, durationMinutes int, reservations []*Reservation, start types.TimeString) bool {
	for _, slot := range ComputeFreeSlots(window, durationMinutes, reservations) {
		if slot == start {
			return true
		}
	}
	return false
}

// overlapsPause checks a candidate against every pause of the window.
// Pauses need not align to the grid; any partial overlap disqualifies.
func overlapsPause(pauses []Pause, candStart, candEnd int) bool {
	for _, p := range pauses {
		if candStart < p.EndTime.Minutes() && candEnd > p.StartTime.Minutes() {
			return true
		}
	}
	return false
}

// slotOccupied checks whether a slot-occupying reservation's start time falls
// inside the candidate window [candStart, candEnd).
//
// Occupancy is checked by start-time containment rather than full-interval
// overlap: reservations are created on the same fixed grid, so a start landing
// inside the candidate is the authoritative conflict signal.
func slotOccupied(reservations []*Reservation, candStart, candEnd int) bool {
	for _, r := range reservations {
		if !r.OccupiesSlot() {
			continue
		}
		resStart := r.StartTime.Minutes()
		if resStart >= candStart && resStart < candEnd {
			return true
		}
	}
	return false
}
