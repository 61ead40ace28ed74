package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/BRB-BookingService/internal/domain"
	storage "github.com/m04kA/BRB-BookingService/internal/infra/storage/reservation"
	"github.com/m04kA/BRB-BookingService/internal/service/reservations/models"
	"github.com/m04kA/BRB-BookingService/pkg/ptr"
)

var testNow = time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

// fakeRepo хранит бронирования в памяти и применяет CAS-переходы
// так же, как это делает SQL-репозиторий
type fakeRepo struct {
	byID map[int64]*domain.Reservation
}

func newFakeRepo(list ...*domain.Reservation) *fakeRepo {
	repo := &fakeRepo{byID: make(map[int64]*domain.Reservation)}
	for _, r := range list {
		repo.byID[r.ID] = r
	}
	return repo
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, storage.ErrReservationNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRepo) GetByClientID(_ context.Context, clientID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	out := make([]*domain.Reservation, 0)
	for _, r := range f.byID {
		if r.ClientID != clientID {
			continue
		}
		if status != nil && r.Status != *status {
			continue
		}
		copied := *r
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatusIf(_ context.Context, id int64, from, to domain.ReservationStatus) error {
	r, ok := f.byID[id]
	if !ok {
		return storage.ErrReservationNotFound
	}
	if r.Status != from {
		return storage.ErrStatusConflict
	}
	r.Status = to
	return nil
}

func (f *fakeRepo) CancelIf(_ context.Context, id int64, from domain.ReservationStatus, reason string, at time.Time) error {
	r, ok := f.byID[id]
	if !ok {
		return storage.ErrReservationNotFound
	}
	if r.Status != from {
		return storage.ErrStatusConflict
	}
	r.Status = domain.StatusCancelled
	r.CancellationReason = &reason
	r.CancelledAt = &at
	return nil
}

type fixedTimeProvider struct{ now time.Time }

func (p *fixedTimeProvider) Now() time.Time { return p.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, nil, &fixedTimeProvider{now: testNow}, nopLogger{})
}

func awaiting(id, clientID int64) *domain.Reservation {
	deadline := testNow.Add(30 * time.Minute)
	return &domain.Reservation{
		ID:              id,
		ClientID:        clientID,
		ProviderID:      1,
		ServiceID:       2,
		Status:          domain.StatusAwaitingPayment,
		PaymentDeadline: &deadline,
	}
}

func TestService_GetByID(t *testing.T) {
	repo := newFakeRepo(awaiting(1, 10))
	svc := newTestService(repo)

	got, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, string(domain.StatusAwaitingPayment), got.Status)

	_, err = svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestService_ConfirmPayment(t *testing.T) {
	t.Run("awaiting_payment becomes confirmed", func(t *testing.T) {
		repo := newFakeRepo(awaiting(1, 10))
		svc := newTestService(repo)

		got, err := svc.ConfirmPayment(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusConfirmed), got.Status)
	})

	t.Run("already cancelled", func(t *testing.T) {
		r := awaiting(1, 10)
		r.Status = domain.StatusCancelled
		svc := newTestService(newFakeRepo(r))

		_, err := svc.ConfirmPayment(context.Background(), 1)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestService(newFakeRepo())

		_, err := svc.ConfirmPayment(context.Background(), 1)
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})
}

func TestService_Complete(t *testing.T) {
	t.Run("confirmed becomes completed", func(t *testing.T) {
		r := awaiting(1, 10)
		r.Status = domain.StatusConfirmed
		svc := newTestService(newFakeRepo(r))

		got, err := svc.Complete(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCompleted), got.Status)
	})

	t.Run("awaiting_payment cannot be completed", func(t *testing.T) {
		svc := newTestService(newFakeRepo(awaiting(1, 10)))

		_, err := svc.Complete(context.Background(), 1)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("awaiting_payment with reason", func(t *testing.T) {
		repo := newFakeRepo(awaiting(1, 10))
		svc := newTestService(repo)

		got, err := svc.Cancel(context.Background(), 1, &models.CancelReservationRequest{Reason: "передумал"})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), got.Status)
		require.NotNil(t, got.CancelReason)
		assert.Equal(t, "передумал", *got.CancelReason)
		require.NotNil(t, got.CancelledAt)
		assert.Equal(t, testNow, *got.CancelledAt)
	})

	t.Run("confirmed can be cancelled", func(t *testing.T) {
		r := awaiting(1, 10)
		r.Status = domain.StatusConfirmed
		svc := newTestService(newFakeRepo(r))

		got, err := svc.Cancel(context.Background(), 1, &models.CancelReservationRequest{})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), got.Status)
	})

	t.Run("terminal statuses are rejected", func(t *testing.T) {
		for _, status := range []domain.ReservationStatus{domain.StatusCompleted, domain.StatusCancelled} {
			r := awaiting(1, 10)
			r.Status = status
			svc := newTestService(newFakeRepo(r))

			_, err := svc.Cancel(context.Background(), 1, &models.CancelReservationRequest{})
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	})

	t.Run("reason too long", func(t *testing.T) {
		svc := newTestService(newFakeRepo(awaiting(1, 10)))

		long := make([]byte, domain.MaxCancellationReasonLength+1)
		for i := range long {
			long[i] = 'a'
		}
		_, err := svc.Cancel(context.Background(), 1, &models.CancelReservationRequest{Reason: string(long)})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_GetClientReservations(t *testing.T) {
	confirmed := awaiting(2, 10)
	confirmed.Status = domain.StatusConfirmed
	repo := newFakeRepo(awaiting(1, 10), confirmed, awaiting(3, 20))
	svc := newTestService(repo)

	t.Run("all reservations of a client", func(t *testing.T) {
		got, err := svc.GetClientReservations(context.Background(), 10, nil)
		require.NoError(t, err)
		assert.Len(t, got.Reservations, 2)
	})

	t.Run("filtered by status", func(t *testing.T) {
		got, err := svc.GetClientReservations(context.Background(), 10, ptr.Ptr("confirmed"))
		require.NoError(t, err)
		require.Len(t, got.Reservations, 1)
		assert.Equal(t, int64(2), got.Reservations[0].ID)
	})

	t.Run("legacy status alias", func(t *testing.T) {
		got, err := svc.GetClientReservations(context.Background(), 10, ptr.Ptr("pending"))
		require.NoError(t, err)
		require.Len(t, got.Reservations, 1)
		assert.Equal(t, int64(1), got.Reservations[0].ID)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := svc.GetClientReservations(context.Background(), 10, ptr.Ptr("in_progress"))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
