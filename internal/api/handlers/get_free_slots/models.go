package get_free_slots

import (
	"github.com/m04kA/BRB-BookingService/internal/domain"
	getFreeSlots "github.com/m04kA/BRB-BookingService/internal/usecase/get_free_slots"
)

// FreeSlotsResponse HTTP response model
type FreeSlotsResponse struct {
	ProviderID      int64    `json:"providerId"`
	ServiceID       int64    `json:"serviceId"`
	Date            string   `json:"date"`
	DurationMinutes int      `json:"durationMinutes"`
	Slots           []string `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getFreeSlots.Response) *FreeSlotsResponse {
	return &FreeSlotsResponse{
		ProviderID:      resp.ProviderID,
		ServiceID:       resp.ServiceID,
		Date:            resp.Date.Format(domain.DateFormat),
		DurationMinutes: resp.DurationMinutes,
		Slots:           resp.Slots,
	}
}
