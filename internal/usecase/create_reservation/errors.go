package create_reservation

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrProviderNotFound возвращается, когда мастер не найден
	ErrProviderNotFound = errors.New("provider not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrProviderClosed возвращается, когда мастер не работает в запрошенный день
	ErrProviderClosed = errors.New("provider does not work on this day")

	// ErrSlotUnavailable возвращается, когда запрошенный слот занят
	// или не входит в список свободных
	ErrSlotUnavailable = errors.New("slot not available")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("internal error")
)
