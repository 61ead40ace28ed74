package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSchedule(t *testing.T) *ProviderSchedule {
	t.Helper()
	return &ProviderSchedule{
		ProviderID: 1,
		Windows: []*WorkingWindow{
			makeWindow(t, "09:00", "18:00", [2]string{"12:00", "13:00"}),
		},
	}
}

func TestProviderSchedule_Validate(t *testing.T) {
	t.Run("valid schedule", func(t *testing.T) {
		require.NoError(t, validSchedule(t).Validate())
	})

	t.Run("start after end", func(t *testing.T) {
		s := &ProviderSchedule{Windows: []*WorkingWindow{makeWindow(t, "18:00", "09:00")}}
		assert.ErrorIs(t, s.Validate(), ErrInvalidCalendarConfig)
	})

	t.Run("start equals end", func(t *testing.T) {
		s := &ProviderSchedule{Windows: []*WorkingWindow{makeWindow(t, "09:00", "09:00")}}
		assert.ErrorIs(t, s.Validate(), ErrInvalidCalendarConfig)
	})

	t.Run("duplicate weekday", func(t *testing.T) {
		s := &ProviderSchedule{Windows: []*WorkingWindow{
			makeWindow(t, "09:00", "12:00"),
			makeWindow(t, "13:00", "18:00"),
		}}
		assert.ErrorIs(t, s.Validate(), ErrInvalidCalendarConfig)
	})

	t.Run("pause outside window", func(t *testing.T) {
		s := &ProviderSchedule{Windows: []*WorkingWindow{
			makeWindow(t, "09:00", "18:00", [2]string{"08:00", "10:00"}),
		}}
		assert.ErrorIs(t, s.Validate(), ErrInvalidCalendarConfig)
	})

	t.Run("pause start after end", func(t *testing.T) {
		s := &ProviderSchedule{Windows: []*WorkingWindow{
			makeWindow(t, "09:00", "18:00", [2]string{"13:00", "12:00"}),
		}}
		assert.ErrorIs(t, s.Validate(), ErrInvalidCalendarConfig)
	})

	t.Run("overlapping pauses", func(t *testing.T) {
		s := &ProviderSchedule{Windows: []*WorkingWindow{
			makeWindow(t, "09:00", "18:00", [2]string{"12:00", "13:00"}, [2]string{"12:30", "14:00"}),
		}}
		assert.ErrorIs(t, s.Validate(), ErrInvalidCalendarConfig)
	})

	t.Run("adjacent pauses do not overlap", func(t *testing.T) {
		s := &ProviderSchedule{Windows: []*WorkingWindow{
			makeWindow(t, "09:00", "18:00", [2]string{"12:00", "13:00"}, [2]string{"13:00", "14:00"}),
		}}
		require.NoError(t, s.Validate())
	})
}

func TestProviderSchedule_WindowForDate(t *testing.T) {
	s := validSchedule(t) // окно только в понедельник

	monday := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())
	assert.NotNil(t, s.WindowForDate(monday))

	tuesday := monday.AddDate(0, 0, 1)
	assert.Nil(t, s.WindowForDate(tuesday))
}
