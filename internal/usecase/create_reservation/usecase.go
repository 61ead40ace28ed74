package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/BRB-BookingService/internal/domain"
	catalogRepo "github.com/m04kA/BRB-BookingService/internal/infra/storage/catalog"
	reservationRepo "github.com/m04kA/BRB-BookingService/internal/infra/storage/reservation"
	scheduleRepo "github.com/m04kA/BRB-BookingService/internal/infra/storage/schedule"
	"github.com/m04kA/BRB-BookingService/internal/integrations/notifyservice"
)

const notifyTimeout = 5 * time.Second

// UseCase use case для создания бронирования.
// Доступность слота проверяется повторно внутри сериализуемой транзакции
// с блокировкой FOR UPDATE: выдача свободных слотов - справка, а не резерв.
// Частичный уникальный индекс по живым бронированиям страхует от гонки
// на уровне БД.
type UseCase struct {
	reservationRepo ReservationRepository
	scheduleRepo    ScheduleRepository
	catalogRepo     CatalogRepository
	notifyClient    NotifyServiceClient
	txManager       TransactionManager
	timeProvider    TimeProvider
	paymentTTL      time.Duration
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepository ReservationRepository,
	scheduleRepository ScheduleRepository,
	catalogRepository CatalogRepository,
	notifyClient NotifyServiceClient,
	txManager TransactionManager,
	paymentTTL time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepository,
		scheduleRepo:    scheduleRepository,
		catalogRepo:     catalogRepository,
		notifyClient:    notifyClient,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		paymentTTL:      paymentTTL,
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: client=%d, provider=%d, service=%d, date=%s, time=%s",
		req.ClientID, req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Проверяем существование мастера
	if _, err := uc.scheduleRepo.GetProvider(ctx, req.ProviderID); err != nil {
		if errors.Is(err, scheduleRepo.ErrProviderNotFound) {
			uc.logger.Warn("CreateReservation: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("CreateReservation: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	// 4. Получаем услугу
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateReservation: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateReservation: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 5. Получаем корректировку мастера (отсутствие - базовые параметры услуги)
	adjustment, err := uc.catalogRepo.GetAdjustment(ctx, req.ProviderID, req.ServiceID)
	if err != nil && !errors.Is(err, catalogRepo.ErrAdjustmentNotFound) {
		uc.logger.Error("CreateReservation: failed to get adjustment: %v", err)
		return nil, fmt.Errorf("%w: failed to get adjustment: %v", ErrInternal, err)
	}

	durationMinutes := service.EffectiveDurationMinutes(adjustment)
	price := service.EffectivePrice(adjustment)

	// Переменная для хранения результата
	var result *domain.Reservation

	// 6. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Получаем рабочее окно мастера на этот день недели
		schedule, err := uc.scheduleRepo.GetSchedule(txCtx, req.ProviderID)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to get schedule: %v", err)
			return fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
		}

		window := schedule.WindowForDate(req.Date)
		if window == nil {
			uc.logger.Warn("CreateReservation: provider %d does not work on %s", req.ProviderID, req.Date.Weekday())
			return ErrProviderClosed
		}

		// 6.2. Получаем живые бронирования на эту дату с блокировкой FOR UPDATE
		reservations, err := uc.reservationRepo.GetByProviderAndDate(txCtx, req.ProviderID, req.Date, false)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to get reservations: %v", err)
			return fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
		}

		// 6.3. Авторитетная проверка доступности запрошенного слота
		if !domain.IsSlotFree(window, durationMinutes, reservations, req.StartTime) {
			uc.logger.Warn("CreateReservation: slot %s not available for provider=%d, date=%s",
				req.StartTime, req.ProviderID, req.Date.Format(domain.DateFormat))
			return ErrSlotUnavailable
		}

		// 6.4. Создаем бронирование в статусе awaiting_payment с дедлайном оплаты
		reservation := domain.NewReservation(
			req.ProviderID,
			req.ServiceID,
			req.ClientID,
			req.Date,
			req.StartTime,
			durationMinutes,
			service.Name,
			price,
			now,
			uc.paymentTTL,
		)

		// 6.5. Сохраняем бронирование
		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			// Уникальный индекс по живым слотам - страховка от гонки,
			// которую не поймала проверка выше
			if errors.Is(err, reservationRepo.ErrSlotTaken) {
				uc.logger.Warn("CreateReservation: slot %s taken concurrently", req.StartTime)
				return ErrSlotUnavailable
			}
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateReservation: successfully created reservation id=%d, deadline=%v",
		result.ID, result.PaymentDeadline)

	// 7. Уведомляем клиента после коммита транзакции (fire-and-forget)
	uc.notifyCreated(result)

	// Конвертируем в response
	return &Response{
		ID:              result.ID,
		ClientID:        result.ClientID,
		ProviderID:      result.ProviderID,
		ServiceID:       result.ServiceID,
		BookingDate:     result.BookingDate,
		StartTime:       result.StartTime,
		DurationMinutes: result.DurationMinutes,
		Status:          string(result.Status),
		PaymentDeadline: result.PaymentDeadline,
		ServiceName:     result.ServiceName,
		ServicePrice:    result.ServicePrice,
		CreatedAt:       result.CreatedAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}

// notifyCreated отправляет уведомление о создании бронирования в фоне
func (uc *UseCase) notifyCreated(r *domain.Reservation) {
	if uc.notifyClient == nil {
		return
	}

	notification := &notifyservice.Notification{
		ReservationID: r.ID,
		Status:        string(r.Status),
		ClientID:      r.ClientID,
		ProviderID:    r.ProviderID,
		Message:       "Бронирование создано, ожидает оплаты",
	}

	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := uc.notifyClient.SendStatusChange(notifyCtx, notification); err != nil {
			uc.logger.Warn("CreateReservation: failed to send notification for reservation %d: %v", r.ID, err)
		}
	}()
}
