package schedule

import (
	"context"

	"github.com/m04kA/BRB-BookingService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetProvider(ctx context.Context, id int64) (*domain.Provider, error)
	GetSchedule(ctx context.Context, providerID int64) (*domain.ProviderSchedule, error)
	ReplaceSchedule(ctx context.Context, providerID int64, windows []*domain.WorkingWindow) error
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
