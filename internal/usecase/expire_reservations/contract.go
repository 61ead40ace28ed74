package expire_reservations

import (
	"context"
	"time"

	"github.com/m04kA/BRB-BookingService/internal/domain"
	"github.com/m04kA/BRB-BookingService/internal/integrations/notifyservice"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	// ListExpiredAwaitingPayment получает бронирования awaiting_payment
	// с истекшим дедлайном оплаты
	ListExpiredAwaitingPayment(ctx context.Context, now time.Time) ([]*domain.Reservation, error)
	// Expire переводит awaiting_payment -> cancelled, только если дедлайн
	// действительно истек на момент выполнения запроса
	Expire(ctx context.Context, id int64, now time.Time) error
}

// NotifyServiceClient интерфейс клиента сервиса уведомлений
type NotifyServiceClient interface {
	SendStatusChange(ctx context.Context, n *notifyservice.Notification) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
