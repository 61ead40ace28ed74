package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/BRB-BookingService/internal/domain"
	storage "github.com/m04kA/BRB-BookingService/internal/infra/storage/reservation"
	"github.com/m04kA/BRB-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/BRB-BookingService/internal/service/reservations/models"
)

const notifyTimeout = 5 * time.Second

// Service сервис управления жизненным циклом бронирований.
// Переходы статусов применяются через CAS в хранилище: проигранная гонка
// возвращает ErrInvalidTransition, а не перезаписывает чужой переход.
type Service struct {
	repo         ReservationRepository
	notifyClient NotifyServiceClient
	timeProvider TimeProvider
	log          Logger
}

// NewService создает новый сервис бронирований
func NewService(repo ReservationRepository, notifyClient NotifyServiceClient, timeProvider TimeProvider, log Logger) *Service {
	return &Service{
		repo:         repo,
		notifyClient: notifyClient,
		timeProvider: timeProvider,
		log:          log,
	}
}

// GetByID возвращает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.ReservationResponse, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrReservationNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrReservationNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get reservation: %v", ErrInternal, err)
	}

	return models.FromDomainReservation(reservation), nil
}

// GetClientReservations возвращает бронирования клиента с опциональным фильтром по статусу
func (s *Service) GetClientReservations(ctx context.Context, clientID int64, status *string) (*models.ReservationListResponse, error) {
	var statusFilter *domain.ReservationStatus
	if status != nil {
		parsed, err := domain.ParseReservationStatus(*status)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *status)
		}
		statusFilter = &parsed
	}

	list, err := s.repo.GetByClientID(ctx, clientID, statusFilter)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get client reservations: %v", ErrInternal, err)
	}

	return models.FromDomainReservations(list), nil
}

// ConfirmPayment переводит бронирование awaiting_payment -> confirmed после оплаты
func (s *Service) ConfirmPayment(ctx context.Context, id int64) (*models.ReservationResponse, error) {
	return s.transition(ctx, id, func(r *domain.Reservation) error {
		return r.Confirm()
	}, func(r *domain.Reservation) error {
		return s.repo.UpdateStatusIf(ctx, id, domain.StatusAwaitingPayment, domain.StatusConfirmed)
	}, "Ваше бронирование подтверждено")
}

// Complete переводит бронирование confirmed -> completed.
// Только явное действие администратора: по времени бронирования не завершаются.
func (s *Service) Complete(ctx context.Context, id int64) (*models.ReservationResponse, error) {
	return s.transition(ctx, id, func(r *domain.Reservation) error {
		return r.Complete()
	}, func(r *domain.Reservation) error {
		return s.repo.UpdateStatusIf(ctx, id, domain.StatusConfirmed, domain.StatusCompleted)
	}, "Ваше бронирование завершено")
}

// Cancel отменяет бронирование из любого нетерминального статуса
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelReservationRequest) (*models.ReservationResponse, error) {
	if len(req.Reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	now := s.timeProvider.Now()

	return s.transition(ctx, id, func(r *domain.Reservation) error {
		return r.Cancel(req.Reason, now)
	}, func(r *domain.Reservation) error {
		return s.repo.CancelIf(ctx, id, r.Status, req.Reason, now)
	}, "Ваше бронирование отменено")
}

// transition выполняет переход статуса: читает текущее состояние, проверяет
// допустимость перехода на доменной модели и применяет его через CAS.
// apply получает бронирование с исходным статусом (до применения check).
func (s *Service) transition(
	ctx context.Context,
	id int64,
	check func(r *domain.Reservation) error,
	apply func(r *domain.Reservation) error,
	notifyMessage string,
) (*models.ReservationResponse, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrReservationNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrReservationNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get reservation: %v", ErrInternal, err)
	}

	fromStatus := reservation.Status
	if err := check(reservation); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: reservation %d in status %q", ErrInvalidTransition, id, fromStatus)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// Восстанавливаем исходный статус для CAS-предиката
	targetStatus := reservation.Status
	reservation.Status = fromStatus
	if err := apply(reservation); err != nil {
		switch {
		case errors.Is(err, storage.ErrStatusConflict):
			// Гонка: статус изменился между чтением и обновлением
			return nil, fmt.Errorf("%w: reservation %d concurrently modified", ErrInvalidTransition, id)
		case errors.Is(err, storage.ErrReservationNotFound):
			return nil, fmt.Errorf("%w: id %d", ErrReservationNotFound, id)
		default:
			return nil, fmt.Errorf("%w: failed to apply transition: %v", ErrInternal, err)
		}
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to reload reservation: %v", ErrInternal, err)
	}

	s.log.Info("Reservation %d: %s -> %s", id, fromStatus, targetStatus)
	s.notifyStatusChange(updated, notifyMessage)

	return models.FromDomainReservation(updated), nil
}

// notifyStatusChange отправляет уведомление о смене статуса в фоне.
// Ошибка доставки логируется и не влияет на результат перехода.
func (s *Service) notifyStatusChange(r *domain.Reservation, message string) {
	if s.notifyClient == nil {
		return
	}

	notification := &notifyservice.Notification{
		ReservationID: r.ID,
		Status:        string(r.Status),
		ClientID:      r.ClientID,
		ProviderID:    r.ProviderID,
		Message:       message,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifyClient.SendStatusChange(ctx, notification); err != nil {
			s.log.Warn("Failed to send status change notification for reservation %d: %v", r.ID, err)
		}
	}()
}
