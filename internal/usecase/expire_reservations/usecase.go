package expire_reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/BRB-BookingService/internal/domain"
	reservationRepo "github.com/m04kA/BRB-BookingService/internal/infra/storage/reservation"
	"github.com/m04kA/BRB-BookingService/internal/integrations/notifyservice"
)

const notifyTimeout = 5 * time.Second

// UseCase use case просрочки неоплаченных бронирований.
// Единственный разрешенный переход - awaiting_payment -> cancelled при
// истекшем дедлайне; каждое бронирование обрабатывается отдельным CAS-запросом,
// поэтому прогон идемпотентен и безопасен при параллельном запуске:
// оплата, успевшая раньше, просто уменьшает счетчик.
type UseCase struct {
	reservationRepo ReservationRepository
	notifyClient    NotifyServiceClient
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepository ReservationRepository,
	notifyClient NotifyServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepository,
		notifyClient:    notifyClient,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет один прогон просрочки.
// Возвращает количество фактически отмененных бронирований.
func (uc *UseCase) Execute(ctx context.Context) (int, error) {
	// 1. Получаем текущее время
	now := uc.timeProvider.Now()

	// 2. Получаем кандидатов: awaiting_payment с истекшим дедлайном
	candidates, err := uc.reservationRepo.ListExpiredAwaitingPayment(ctx, now)
	if err != nil {
		uc.logger.Error("ExpireReservations: failed to list candidates: %v", err)
		return 0, fmt.Errorf("%w: failed to list expired reservations: %v", ErrInternal, err)
	}

	if len(candidates) == 0 {
		uc.logger.Info("ExpireReservations: no expired reservations")
		return 0, nil
	}

	uc.logger.Info("ExpireReservations: %d candidates to expire", len(candidates))

	// 3. Отменяем каждого кандидата отдельным CAS-переходом
	expired := 0
	for _, r := range candidates {
		if err := uc.reservationRepo.Expire(ctx, r.ID, now); err != nil {
			switch {
			case errors.Is(err, reservationRepo.ErrStatusConflict),
				errors.Is(err, reservationRepo.ErrReservationNotFound):
				// Статус изменился между выборкой и переходом
				// (например, клиент успел оплатить) - пропускаем
				uc.logger.Info("ExpireReservations: reservation %d skipped: %v", r.ID, err)
				continue
			default:
				uc.logger.Error("ExpireReservations: failed to expire reservation %d: %v", r.ID, err)
				return expired, fmt.Errorf("%w: failed to expire reservation %d: %v", ErrInternal, r.ID, err)
			}
		}

		expired++
		uc.logger.Info("ExpireReservations: reservation %d expired (deadline %v)", r.ID, r.EffectivePaymentDeadline())
		uc.notifyExpired(r)
	}

	uc.logger.Info("ExpireReservations: expired %d of %d candidates", expired, len(candidates))
	return expired, nil
}

// notifyExpired отправляет уведомление об отмене по просрочке в фоне
func (uc *UseCase) notifyExpired(r *domain.Reservation) {
	if uc.notifyClient == nil {
		return
	}

	notification := &notifyservice.Notification{
		ReservationID: r.ID,
		Status:        string(domain.StatusCancelled),
		ClientID:      r.ClientID,
		ProviderID:    r.ProviderID,
		Message:       "Бронирование отменено: истек срок оплаты",
	}

	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := uc.notifyClient.SendStatusChange(notifyCtx, notification); err != nil {
			uc.logger.Warn("ExpireReservations: failed to send notification for reservation %d: %v", r.ID, err)
		}
	}()
}
