package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/BRB-BookingService/internal/domain"
	storage "github.com/m04kA/BRB-BookingService/internal/infra/storage/schedule"
	"github.com/m04kA/BRB-BookingService/internal/service/schedule/models"
)

// Service сервис управления расписаниями мастеров.
// Расписание - конфигурационные данные: валидируются на записи,
// движок бронирования читает их уже согласованными.
type Service struct {
	repo      ScheduleRepository
	txManager TxManager
	log       Logger
}

// NewService создает новый сервис расписаний
func NewService(repo ScheduleRepository, txManager TxManager, log Logger) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		log:       log,
	}
}

// GetSchedule возвращает недельное расписание мастера
func (s *Service) GetSchedule(ctx context.Context, providerID int64) (*models.ScheduleResponse, error) {
	if _, err := s.repo.GetProvider(ctx, providerID); err != nil {
		if errors.Is(err, storage.ErrProviderNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrProviderNotFound, providerID)
		}
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	sched, err := s.repo.GetSchedule(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(sched), nil
}

// UpdateSchedule полностью заменяет расписание мастера.
// Невалидная конфигурация отклоняется целиком - частичных обновлений нет.
func (s *Service) UpdateSchedule(ctx context.Context, providerID int64, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	if _, err := s.repo.GetProvider(ctx, providerID); err != nil {
		if errors.Is(err, storage.ErrProviderNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrProviderNotFound, providerID)
		}
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	windows := req.ToDomainWindows(providerID)

	candidate := &domain.ProviderSchedule{
		ProviderID: providerID,
		Windows:    windows,
	}
	if err := candidate.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	// Замена расписания атомарна: удаление старых окон и вставка новых
	// в одной транзакции
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		return s.repo.ReplaceSchedule(ctx, providerID, windows)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to replace schedule: %v", ErrInternal, err)
	}

	updated, err := s.repo.GetSchedule(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to reload schedule: %v", ErrInternal, err)
	}

	s.log.Info("Schedule replaced for provider %d: %d windows", providerID, len(windows))

	return models.FromDomainSchedule(updated), nil
}
