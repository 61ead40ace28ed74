package notifyservice

// Notification запрос на отправку уведомления о смене статуса бронирования.
// Сервис уведомлений сам выбирает канал доставки (email/push/WhatsApp)
// по предпочтениям получателей.
type Notification struct {
	ReservationID int64  `json:"reservationId"`
	Status        string `json:"status"`
	ClientID      int64  `json:"clientId"`
	ProviderID    int64  `json:"providerId"`
	Message       string `json:"message"`
}
