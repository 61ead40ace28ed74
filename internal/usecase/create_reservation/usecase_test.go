package create_reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/BRB-BookingService/internal/domain"
	catalogRepo "github.com/m04kA/BRB-BookingService/internal/infra/storage/catalog"
	reservationRepo "github.com/m04kA/BRB-BookingService/internal/infra/storage/reservation"
	scheduleRepo "github.com/m04kA/BRB-BookingService/internal/infra/storage/schedule"
	"github.com/m04kA/BRB-BookingService/pkg/types"
)

// 2026-09-14 - понедельник
var (
	testNow  = time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	testDate = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC) // вторник
)

type fakeReservationRepo struct {
	reservations []*domain.Reservation
	createErr    error
	created      *domain.Reservation
	nextID       int64
}

func (f *fakeReservationRepo) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := *res
	created.ID = f.nextID
	created.CreatedAt = testNow
	created.UpdatedAt = testNow
	f.created = &created
	return &created, nil
}

func (f *fakeReservationRepo) GetByProviderAndDate(_ context.Context, _ int64, _ time.Time, _ bool) ([]*domain.Reservation, error) {
	return f.reservations, nil
}

type fakeScheduleRepo struct {
	provider    *domain.Provider
	providerErr error
	schedule    *domain.ProviderSchedule
}

func (f *fakeScheduleRepo) GetProvider(_ context.Context, _ int64) (*domain.Provider, error) {
	if f.providerErr != nil {
		return nil, f.providerErr
	}
	return f.provider, nil
}

func (f *fakeScheduleRepo) GetSchedule(_ context.Context, _ int64) (*domain.ProviderSchedule, error) {
	return f.schedule, nil
}

type fakeCatalogRepo struct {
	service    *domain.Service
	serviceErr error
	adjustment *domain.ProviderAdjustment
}

func (f *fakeCatalogRepo) GetService(_ context.Context, _ int64) (*domain.Service, error) {
	if f.serviceErr != nil {
		return nil, f.serviceErr
	}
	return f.service, nil
}

func (f *fakeCatalogRepo) GetAdjustment(_ context.Context, _, _ int64) (*domain.ProviderAdjustment, error) {
	if f.adjustment == nil {
		return nil, catalogRepo.ErrAdjustmentNotFound
	}
	return f.adjustment, nil
}

// fakeTxManager выполняет функцию без реальной транзакции
type fakeTxManager struct{}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTimeProvider struct{ now time.Time }

func (p *fixedTimeProvider) Now() time.Time { return p.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func mustTime(t *testing.T, s string) types.TimeString {
	t.Helper()
	ts, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return ts
}

func tuesdaySchedule(t *testing.T) *domain.ProviderSchedule {
	t.Helper()
	return &domain.ProviderSchedule{
		ProviderID: 1,
		Windows: []*domain.WorkingWindow{
			{
				Weekday:   time.Tuesday,
				StartTime: mustTime(t, "09:00"),
				EndTime:   mustTime(t, "18:00"),
			},
		},
	}
}

func newTestUseCase(resRepo *fakeReservationRepo, schRepo *fakeScheduleRepo, catRepo *fakeCatalogRepo) *UseCase {
	uc := NewUseCase(resRepo, schRepo, catRepo, nil, &fakeTxManager{}, 60*time.Minute, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}
	return uc
}

func validRequest(t *testing.T) *Request {
	t.Helper()
	return &Request{
		ClientID:   10,
		ProviderID: 1,
		ServiceID:  2,
		Date:       testDate,
		StartTime:  mustTime(t, "09:00"),
	}
}

func TestUseCase_Execute(t *testing.T) {
	t.Run("creates awaiting_payment reservation with deadline", func(t *testing.T) {
		resRepo := &fakeReservationRepo{nextID: 42}
		schRepo := &fakeScheduleRepo{provider: &domain.Provider{ID: 1}, schedule: tuesdaySchedule(t)}
		catRepo := &fakeCatalogRepo{service: &domain.Service{ID: 2, Name: "Стрижка", DurationMinutes: 60, Price: 1500}}
		uc := newTestUseCase(resRepo, schRepo, catRepo)

		resp, err := uc.Execute(context.Background(), validRequest(t))
		require.NoError(t, err)

		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, string(domain.StatusAwaitingPayment), resp.Status)
		require.NotNil(t, resp.PaymentDeadline)
		assert.Equal(t, testNow.Add(60*time.Minute), *resp.PaymentDeadline)
		assert.Equal(t, 60, resp.DurationMinutes)
		assert.Equal(t, "Стрижка", resp.ServiceName)
		assert.Equal(t, 1500.0, resp.ServicePrice)
	})

	t.Run("provider adjustment changes duration and price", func(t *testing.T) {
		resRepo := &fakeReservationRepo{nextID: 1}
		schRepo := &fakeScheduleRepo{provider: &domain.Provider{ID: 1}, schedule: tuesdaySchedule(t)}
		catRepo := &fakeCatalogRepo{
			service:    &domain.Service{ID: 2, Name: "Стрижка", DurationMinutes: 60, Price: 1500},
			adjustment: &domain.ProviderAdjustment{DurationDeltaMinutes: 30, PriceDelta: 500},
		}
		uc := newTestUseCase(resRepo, schRepo, catRepo)

		resp, err := uc.Execute(context.Background(), validRequest(t))
		require.NoError(t, err)

		assert.Equal(t, 90, resp.DurationMinutes)
		assert.Equal(t, 2000.0, resp.ServicePrice)
	})

	t.Run("occupied slot is rejected", func(t *testing.T) {
		resRepo := &fakeReservationRepo{
			reservations: []*domain.Reservation{
				{Status: domain.StatusAwaitingPayment, StartTime: mustTime(t, "09:00"), DurationMinutes: 60},
			},
		}
		schRepo := &fakeScheduleRepo{provider: &domain.Provider{ID: 1}, schedule: tuesdaySchedule(t)}
		catRepo := &fakeCatalogRepo{service: &domain.Service{ID: 2, DurationMinutes: 60}}
		uc := newTestUseCase(resRepo, schRepo, catRepo)

		_, err := uc.Execute(context.Background(), validRequest(t))
		assert.ErrorIs(t, err, ErrSlotUnavailable)
		assert.Nil(t, resRepo.created)
	})

	t.Run("day off is rejected", func(t *testing.T) {
		resRepo := &fakeReservationRepo{}
		schRepo := &fakeScheduleRepo{provider: &domain.Provider{ID: 1}, schedule: &domain.ProviderSchedule{ProviderID: 1}}
		catRepo := &fakeCatalogRepo{service: &domain.Service{ID: 2, DurationMinutes: 60}}
		uc := newTestUseCase(resRepo, schRepo, catRepo)

		_, err := uc.Execute(context.Background(), validRequest(t))
		assert.ErrorIs(t, err, ErrProviderClosed)
	})

	t.Run("unique index race maps to slot unavailable", func(t *testing.T) {
		resRepo := &fakeReservationRepo{createErr: reservationRepo.ErrSlotTaken}
		schRepo := &fakeScheduleRepo{provider: &domain.Provider{ID: 1}, schedule: tuesdaySchedule(t)}
		catRepo := &fakeCatalogRepo{service: &domain.Service{ID: 2, DurationMinutes: 60}}
		uc := newTestUseCase(resRepo, schRepo, catRepo)

		_, err := uc.Execute(context.Background(), validRequest(t))
		assert.ErrorIs(t, err, ErrSlotUnavailable)
	})

	t.Run("unknown provider", func(t *testing.T) {
		resRepo := &fakeReservationRepo{}
		schRepo := &fakeScheduleRepo{providerErr: scheduleRepo.ErrProviderNotFound}
		catRepo := &fakeCatalogRepo{service: &domain.Service{ID: 2, DurationMinutes: 60}}
		uc := newTestUseCase(resRepo, schRepo, catRepo)

		_, err := uc.Execute(context.Background(), validRequest(t))
		assert.ErrorIs(t, err, ErrProviderNotFound)
	})

	t.Run("unknown service", func(t *testing.T) {
		resRepo := &fakeReservationRepo{}
		schRepo := &fakeScheduleRepo{provider: &domain.Provider{ID: 1}}
		catRepo := &fakeCatalogRepo{serviceErr: catalogRepo.ErrServiceNotFound}
		uc := newTestUseCase(resRepo, schRepo, catRepo)

		_, err := uc.Execute(context.Background(), validRequest(t))
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		uc := newTestUseCase(&fakeReservationRepo{}, &fakeScheduleRepo{}, &fakeCatalogRepo{})

		req := validRequest(t)
		req.ClientID = 0
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)

		req = validRequest(t)
		req.StartTime = "9am"
		_, err = uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
