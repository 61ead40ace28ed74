package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrSlotTaken возвращается при нарушении уникальности живого слота
	// (provider_id, booking_date, start_time) среди неотмененных бронирований
	ErrSlotTaken = errors.New("reservation.repository: slot already taken")

	// ErrStatusConflict возвращается, когда compare-and-set перехода статуса
	// не сработал: текущий статус уже не тот, от которого делался переход
	ErrStatusConflict = errors.New("reservation.repository: status changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")

	// ErrInvalidStatus возвращается, когда в БД хранится нераспознанный статус
	ErrInvalidStatus = errors.New("reservation.repository: invalid persisted status")
)
