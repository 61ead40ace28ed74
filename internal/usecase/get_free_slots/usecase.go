package get_free_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/BRB-BookingService/internal/domain"
	catalogRepo "github.com/m04kA/BRB-BookingService/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/BRB-BookingService/internal/infra/storage/schedule"
)

// UseCase use case для получения свободных слотов мастера.
// Результат детерминирован относительно расписания и бронирований:
// текущее время на выдачу не влияет.
type UseCase struct {
	reservationRepo ReservationRepository
	scheduleRepo    ScheduleRepository
	catalogRepo     CatalogRepository
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	scheduleRepo ScheduleRepository,
	catalogRepo CatalogRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		scheduleRepo:    scheduleRepo,
		catalogRepo:     catalogRepo,
		logger:          logger,
	}
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetFreeSlots: provider=%d, service=%d, date=%s",
		req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetFreeSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем существование мастера
	if _, err := uc.scheduleRepo.GetProvider(ctx, req.ProviderID); err != nil {
		if errors.Is(err, scheduleRepo.ErrProviderNotFound) {
			uc.logger.Warn("GetFreeSlots: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("GetFreeSlots: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	// 3. Получаем услугу
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetFreeSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetFreeSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Получаем корректировку мастера (отсутствие - базовые параметры услуги)
	adjustment, err := uc.catalogRepo.GetAdjustment(ctx, req.ProviderID, req.ServiceID)
	if err != nil && !errors.Is(err, catalogRepo.ErrAdjustmentNotFound) {
		uc.logger.Error("GetFreeSlots: failed to get adjustment: %v", err)
		return nil, fmt.Errorf("%w: failed to get adjustment: %v", ErrInternal, err)
	}

	durationMinutes := service.EffectiveDurationMinutes(adjustment)

	// 5. Получаем рабочее окно мастера на этот день недели
	schedule, err := uc.scheduleRepo.GetSchedule(ctx, req.ProviderID)
	if err != nil {
		uc.logger.Error("GetFreeSlots: failed to get schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	window := schedule.WindowForDate(req.Date)
	if window == nil {
		// Выходной день мастера
		uc.logger.Info("GetFreeSlots: provider %d does not work on %s", req.ProviderID, req.Date.Weekday())
		return &Response{
			ProviderID:      req.ProviderID,
			ServiceID:       req.ServiceID,
			Date:            req.Date,
			DurationMinutes: durationMinutes,
			Slots:           []string{},
		}, nil
	}

	// 6. Получаем занимающие слот бронирования на эту дату
	reservations, err := uc.reservationRepo.GetByProviderAndDate(ctx, req.ProviderID, req.Date, false)
	if err != nil {
		uc.logger.Error("GetFreeSlots: failed to get reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
	}

	// 7. Вычисляем свободные слоты
	freeSlots := domain.ComputeFreeSlots(window, durationMinutes, reservations)

	slots := make([]string, 0, len(freeSlots))
	for _, s := range freeSlots {
		slots = append(slots, s.String())
	}

	uc.logger.Info("GetFreeSlots: %d free slots for provider=%d, service=%d, date=%s",
		len(slots), req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return &Response{
		ProviderID:      req.ProviderID,
		ServiceID:       req.ServiceID,
		Date:            req.Date,
		DurationMinutes: durationMinutes,
		Slots:           slots,
	}, nil
}
