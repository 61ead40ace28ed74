package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/BRB-BookingService/pkg/ptr"
	"github.com/m04kA/BRB-BookingService/pkg/types"
)

func TestParseReservationStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ReservationStatus
		wantErr bool
	}{
		{name: "awaiting_payment", input: "awaiting_payment", want: StatusAwaitingPayment},
		{name: "case insensitive", input: "CONFIRMED", want: StatusConfirmed},
		{name: "with spaces", input: "  completed  ", want: StatusCompleted},
		{name: "legacy pending", input: "pending", want: StatusAwaitingPayment},
		{name: "legacy paid", input: "paid", want: StatusConfirmed},
		{name: "legacy done", input: "done", want: StatusCompleted},
		{name: "american spelling", input: "canceled", want: StatusCancelled},
		{name: "awaiting payment with space", input: "awaiting payment", want: StatusAwaitingPayment},
		{name: "unknown value fails", input: "in_progress", wantErr: true},
		{name: "empty value fails", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReservationStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewReservation(t *testing.T) {
	now := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	start, err := types.NewTimeStringFromString("11:30")
	require.NoError(t, err)

	r := NewReservation(1, 2, 3, date, start, 60, "Стрижка", 1500, now, 60*time.Minute)

	assert.Equal(t, StatusAwaitingPayment, r.Status)
	require.NotNil(t, r.PaymentDeadline)
	assert.Equal(t, now.Add(60*time.Minute), *r.PaymentDeadline)
	assert.True(t, r.OccupiesSlot())
	assert.False(t, r.IsTerminal())
	assert.True(t, r.CanBeCancelled())
}

func TestReservation_Confirm(t *testing.T) {
	tests := []struct {
		name    string
		status  ReservationStatus
		wantErr bool
	}{
		{name: "from awaiting_payment", status: StatusAwaitingPayment},
		{name: "from confirmed fails", status: StatusConfirmed, wantErr: true},
		{name: "from completed fails", status: StatusCompleted, wantErr: true},
		{name: "from cancelled fails", status: StatusCancelled, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reservation{Status: tt.status}
			err := r.Confirm()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.status, r.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusConfirmed, r.Status)
		})
	}
}

func TestReservation_Complete(t *testing.T) {
	tests := []struct {
		name    string
		status  ReservationStatus
		wantErr bool
	}{
		{name: "from confirmed", status: StatusConfirmed},
		{name: "from awaiting_payment fails", status: StatusAwaitingPayment, wantErr: true},
		{name: "from completed fails", status: StatusCompleted, wantErr: true},
		{name: "from cancelled fails", status: StatusCancelled, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reservation{Status: tt.status}
			err := r.Complete()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCompleted, r.Status)
		})
	}
}

func TestReservation_Expire(t *testing.T) {
	deadline := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	t.Run("after deadline", func(t *testing.T) {
		r := &Reservation{Status: StatusAwaitingPayment, PaymentDeadline: ptr.Ptr(deadline)}
		err := r.Expire(deadline.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, r.Status)
		require.NotNil(t, r.CancellationReason)
		assert.Equal(t, "payment deadline expired", *r.CancellationReason)
		require.NotNil(t, r.CancelledAt)
	})

	t.Run("exactly at deadline", func(t *testing.T) {
		r := &Reservation{Status: StatusAwaitingPayment, PaymentDeadline: ptr.Ptr(deadline)}
		require.NoError(t, r.Expire(deadline))
		assert.Equal(t, StatusCancelled, r.Status)
	})

	t.Run("before deadline", func(t *testing.T) {
		r := &Reservation{Status: StatusAwaitingPayment, PaymentDeadline: ptr.Ptr(deadline)}
		err := r.Expire(deadline.Add(-time.Minute))
		require.ErrorIs(t, err, ErrDeadlineNotReached)
		assert.Equal(t, StatusAwaitingPayment, r.Status)
	})

	t.Run("confirmed is never expired by time", func(t *testing.T) {
		r := &Reservation{Status: StatusConfirmed, PaymentDeadline: ptr.Ptr(deadline)}
		err := r.Expire(deadline.Add(24 * time.Hour))
		require.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StatusConfirmed, r.Status)
	})

	t.Run("legacy row without deadline uses created_at fallback", func(t *testing.T) {
		createdAt := time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC)
		r := &Reservation{Status: StatusAwaitingPayment, CreatedAt: createdAt}

		// Через 59 минут после создания дедлайн еще не наступил
		require.ErrorIs(t, r.Expire(createdAt.Add(59*time.Minute)), ErrDeadlineNotReached)

		// Через 60 минут - наступил
		require.NoError(t, r.Expire(createdAt.Add(60*time.Minute)))
		assert.Equal(t, StatusCancelled, r.Status)
	})
}

func TestReservation_Cancel(t *testing.T) {
	at := time.Date(2026, 9, 14, 15, 0, 0, 0, time.UTC)

	t.Run("from awaiting_payment", func(t *testing.T) {
		r := &Reservation{Status: StatusAwaitingPayment}
		require.NoError(t, r.Cancel("клиент передумал", at))
		assert.Equal(t, StatusCancelled, r.Status)
		require.NotNil(t, r.CancellationReason)
		assert.Equal(t, "клиент передумал", *r.CancellationReason)
		assert.Equal(t, at, *r.CancelledAt)
		assert.False(t, r.OccupiesSlot())
	})

	t.Run("from confirmed", func(t *testing.T) {
		r := &Reservation{Status: StatusConfirmed}
		require.NoError(t, r.Cancel("", at))
		assert.Equal(t, StatusCancelled, r.Status)
	})

	t.Run("terminal statuses fail", func(t *testing.T) {
		for _, status := range []ReservationStatus{StatusCompleted, StatusCancelled} {
			r := &Reservation{Status: status}
			require.ErrorIs(t, r.Cancel("", at), ErrInvalidTransition)
			assert.Equal(t, status, r.Status)
		}
	})
}

func TestReservation_OccupiesSlot(t *testing.T) {
	// Слот держат все статусы, кроме cancelled: completed сохраняет историю,
	// но прошедший день никто не бронирует повторно
	assert.True(t, (&Reservation{Status: StatusAwaitingPayment}).OccupiesSlot())
	assert.True(t, (&Reservation{Status: StatusConfirmed}).OccupiesSlot())
	assert.True(t, (&Reservation{Status: StatusCompleted}).OccupiesSlot())
	assert.False(t, (&Reservation{Status: StatusCancelled}).OccupiesSlot())
}
