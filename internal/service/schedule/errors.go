package schedule

import "errors"

var (
	// ErrProviderNotFound возвращается, когда мастер не найден
	ErrProviderNotFound = errors.New("provider not found")

	// ErrInvalidSchedule возвращается, когда расписание нарушает инварианты
	// календаря (пересекающиеся перерывы, перерыв вне окна и т.д.)
	ErrInvalidSchedule = errors.New("invalid schedule configuration")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
