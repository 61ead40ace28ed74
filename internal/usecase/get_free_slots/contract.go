package get_free_slots

import (
	"context"
	"time"

	"github.com/m04kA/BRB-BookingService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	// GetByProviderAndDate получает все бронирования мастера на конкретную дату
	GetByProviderAndDate(ctx context.Context, providerID int64, date time.Time, includeCancelled bool) ([]*domain.Reservation, error)
}

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetProvider(ctx context.Context, id int64) (*domain.Provider, error)
	GetSchedule(ctx context.Context, providerID int64) (*domain.ProviderSchedule, error)
}

// CatalogRepository интерфейс репозитория каталога услуг
type CatalogRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetAdjustment(ctx context.Context, providerID, serviceID int64) (*domain.ProviderAdjustment, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
