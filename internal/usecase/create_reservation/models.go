package create_reservation

import (
	"time"

	"github.com/m04kA/BRB-BookingService/pkg/types"
)

// Request запрос на создание бронирования
type Request struct {
	ClientID   int64
	ProviderID int64
	ServiceID  int64
	Date       time.Time
	StartTime  types.TimeString
}

// Response ответ с созданным бронированием
type Response struct {
	ID              int64            `json:"id"`
	ClientID        int64            `json:"clientId"`
	ProviderID      int64            `json:"providerId"`
	ServiceID       int64            `json:"serviceId"`
	BookingDate     time.Time        `json:"-"`
	StartTime       types.TimeString `json:"startTime"`
	DurationMinutes int              `json:"durationMinutes"`
	Status          string           `json:"status"`
	PaymentDeadline *time.Time       `json:"paymentDeadline,omitempty"`
	ServiceName     string           `json:"serviceName"`
	ServicePrice    float64          `json:"servicePrice"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}
