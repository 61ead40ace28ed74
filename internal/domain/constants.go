package domain

// Default configuration values
const (
	// DefaultPaymentTTLMinutes время, которое даётся клиенту на оплату брони
	DefaultPaymentTTLMinutes = 60 // 1 hour

	// SlotGranularityMinutes шаг сетки слотов.
	// Управляет плотностью кандидатов, но не длительностью занятости -
	// занятость определяется длительностью услуги.
	SlotGranularityMinutes = 30
)

// Business validation constants
const (
	MinServiceDurationMinutes = 5
	MaxServiceDurationMinutes = 480 // 8 hours

	MinPaymentTTLMinutes = 5
	MaxPaymentTTLMinutes = 1440 // 1 day

	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// TerminalStatuses список терминальных статусов бронирования.
// Из них нет ни одного допустимого перехода.
var TerminalStatuses = []ReservationStatus{
	StatusCompleted,
	StatusCancelled,
}

// OccupyingStatuses список статусов, при которых бронирование занимает слот.
// Используется при подсчёте доступных слотов: слот освобождается только отменой.
var OccupyingStatuses = []ReservationStatus{
	StatusAwaitingPayment,
	StatusConfirmed,
	StatusCompleted,
}
