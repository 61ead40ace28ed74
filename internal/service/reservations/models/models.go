package models

import (
	"time"

	"github.com/m04kA/BRB-BookingService/internal/domain"
)

// ReservationResponse модель бронирования для ответа API
type ReservationResponse struct {
	ID              int64      `json:"id"`
	ProviderID      int64      `json:"providerId"`
	ServiceID       int64      `json:"serviceId"`
	ClientID        int64      `json:"clientId"`
	BookingDate     string     `json:"bookingDate"`
	StartTime       string     `json:"startTime"`
	DurationMinutes int        `json:"durationMinutes"`
	Status          string     `json:"status"`
	PaymentDeadline *time.Time `json:"paymentDeadline,omitempty"`
	ServiceName     string     `json:"serviceName"`
	ServicePrice    float64    `json:"servicePrice"`
	CancelReason    *string    `json:"cancelReason,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CancelReservationRequest запрос на отмену бронирования
type CancelReservationRequest struct {
	Reason string `json:"reason"`
}

// ReservationListResponse список бронирований клиента
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// FromDomainReservation конвертирует доменную модель в модель ответа
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:              r.ID,
		ProviderID:      r.ProviderID,
		ServiceID:       r.ServiceID,
		ClientID:        r.ClientID,
		BookingDate:     r.BookingDate.Format(domain.DateFormat),
		StartTime:       r.StartTime.String(),
		DurationMinutes: r.DurationMinutes,
		Status:          string(r.Status),
		PaymentDeadline: r.PaymentDeadline,
		ServiceName:     r.ServiceName,
		ServicePrice:    r.ServicePrice,
		CancelReason:    r.CancellationReason,
		CancelledAt:     r.CancelledAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// FromDomainReservations конвертирует список доменных моделей в модель ответа
func FromDomainReservations(list []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(list)),
	}
	for _, r := range list {
		resp.Reservations = append(resp.Reservations, *FromDomainReservation(r))
	}
	return resp
}
