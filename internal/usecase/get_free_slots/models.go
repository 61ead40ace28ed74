package get_free_slots

import "time"

// Request запрос на получение свободных слотов
type Request struct {
	ProviderID int64
	ServiceID  int64
	Date       time.Time
}

// Response ответ со свободными слотами.
// Slots - упорядоченный список времен начала в формате "HH:MM".
// Пустой список - валидный ответ: выходной день или всё занято.
type Response struct {
	ProviderID      int64     `json:"providerId"`
	ServiceID       int64     `json:"serviceId"`
	Date            time.Time `json:"-"`
	DurationMinutes int       `json:"durationMinutes"`
	Slots           []string  `json:"slots"`
}
