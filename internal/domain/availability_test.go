package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/BRB-BookingService/pkg/types"
)

func mustTime(t *testing.T, s string) types.TimeString {
	t.Helper()
	ts, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return ts
}

func makeWindow(t *testing.T, start, end string, pauses ...[2]string) *WorkingWindow {
	t.Helper()
	w := &WorkingWindow{
		Weekday:   time.Monday,
		StartTime: mustTime(t, start),
		EndTime:   mustTime(t, end),
	}
	for _, p := range pauses {
		w.Pauses = append(w.Pauses, Pause{
			StartTime: mustTime(t, p[0]),
			EndTime:   mustTime(t, p[1]),
		})
	}
	return w
}

func slotsToStrings(slots []types.TimeString) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.String())
	}
	return out
}

func TestComputeFreeSlots(t *testing.T) {
	t.Run("full day with pause and one booking", func(t *testing.T) {
		// Окно 09:00-18:00, перерыв 12:00-13:00, услуга 60 минут,
		// занято бронирование на 10:00
		window := makeWindow(t, "09:00", "18:00", [2]string{"12:00", "13:00"})
		reservations := []*Reservation{
			{Status: StatusConfirmed, StartTime: mustTime(t, "10:00"), DurationMinutes: 60},
		}

		got := slotsToStrings(ComputeFreeSlots(window, 60, reservations))

		// 09:30 и 10:00 исключены: старт брони 10:00 попадает в их интервал;
		// 11:30-12:30 не влезают из-за перерыва
		assert.Equal(t, []string{
			"09:00", "10:30", "11:00",
			"13:00", "13:30", "14:00", "14:30", "15:00", "15:30",
			"16:00", "16:30", "17:00",
		}, got)
	})

	t.Run("empty calendar yields full grid", func(t *testing.T) {
		window := makeWindow(t, "09:00", "12:00")
		got := slotsToStrings(ComputeFreeSlots(window, 60, nil))
		assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00"}, got)
	})

	t.Run("cancelled reservation frees the slot", func(t *testing.T) {
		window := makeWindow(t, "09:00", "11:00")
		reservations := []*Reservation{
			{Status: StatusCancelled, StartTime: mustTime(t, "09:00"), DurationMinutes: 60},
		}
		got := slotsToStrings(ComputeFreeSlots(window, 60, reservations))
		assert.Contains(t, got, "09:00")
	})

	t.Run("awaiting_payment holds the slot", func(t *testing.T) {
		window := makeWindow(t, "09:00", "11:00")
		reservations := []*Reservation{
			{Status: StatusAwaitingPayment, StartTime: mustTime(t, "09:00"), DurationMinutes: 60},
		}
		got := slotsToStrings(ComputeFreeSlots(window, 60, reservations))
		assert.NotContains(t, got, "09:00")
	})

	t.Run("service longer than remaining window is cut off", func(t *testing.T) {
		window := makeWindow(t, "09:00", "10:00")
		got := slotsToStrings(ComputeFreeSlots(window, 90, nil))
		assert.Empty(t, got)
	})

	t.Run("pause not aligned to grid still blocks overlapping candidates", func(t *testing.T) {
		// Перерыв 12:15-12:45: кандидаты 11:30 (конец 12:30), 12:00 и 12:30
		// пересекаются с ним при услуге 60 минут
		window := makeWindow(t, "11:00", "14:00", [2]string{"12:15", "12:45"})
		got := slotsToStrings(ComputeFreeSlots(window, 60, nil))
		assert.Equal(t, []string{"11:00", "13:00"}, got)
	})

	t.Run("nil window means day off", func(t *testing.T) {
		got := ComputeFreeSlots(nil, 60, nil)
		assert.Empty(t, got)
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		window := makeWindow(t, "09:00", "18:00", [2]string{"12:00", "13:00"})
		reservations := []*Reservation{
			{Status: StatusConfirmed, StartTime: mustTime(t, "10:00"), DurationMinutes: 60},
		}
		first := ComputeFreeSlots(window, 60, reservations)
		second := ComputeFreeSlots(window, 60, reservations)
		assert.Equal(t, first, second)
	})
}

func TestIsSlotFree(t *testing.T) {
	window := makeWindow(t, "09:00", "12:00")
	reservations := []*Reservation{
		{Status: StatusConfirmed, StartTime: mustTime(t, "10:00"), DurationMinutes: 60},
	}

	assert.True(t, IsSlotFree(window, 60, reservations, mustTime(t, "09:00")))
	assert.False(t, IsSlotFree(window, 60, reservations, mustTime(t, "10:00")))
	// Время вне сетки не входит в список свободных слотов
	assert.False(t, IsSlotFree(window, 60, reservations, mustTime(t, "09:15")))
	// Время вне окна
	assert.False(t, IsSlotFree(window, 60, reservations, mustTime(t, "12:00")))
}
