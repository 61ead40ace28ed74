package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/BRB-BookingService/internal/domain"
	"github.com/m04kA/BRB-BookingService/pkg/dbmetrics"
	"github.com/m04kA/BRB-BookingService/pkg/psqlbuilder"
)

// uniqueViolation код ошибки PostgreSQL при нарушении уникального индекса
const uniqueViolation = "23505"

// reservationColumns полный набор колонок таблицы reservations
var reservationColumns = []string{
	"id",
	"provider_id",
	"service_id",
	"client_id",
	"booking_date",
	"start_time",
	"duration_minutes",
	"status",
	"payment_deadline",
	"service_name",
	"service_price",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её.
//
// Частичный уникальный индекс по (provider_id, booking_date, start_time)
// среди неотмененных строк гарантирует не более одного живого бронирования
// на слот; нарушение транслируется в ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"provider_id",
			"service_id",
			"client_id",
			"booking_date",
			"start_time",
			"duration_minutes",
			"status",
			"payment_deadline",
			"service_name",
			"service_price",
		).
		Values(
			res.ProviderID,
			res.ServiceID,
			res.ClientID,
			res.BookingDate,
			res.StartTime,
			res.DurationMinutes,
			res.Status,
			res.PaymentDeadline,
			res.ServiceName,
			res.ServicePrice,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := r.scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}

	return res, nil
}

// GetByClientID получает список бронирований клиента, новые первыми.
// Опционально фильтрует по статусу.
func (r *Repository) GetByClientID(ctx context.Context, clientID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"client_id": clientID}).
		OrderBy("booking_date DESC, start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// GetByProviderAndDate получает бронирования мастера на конкретную дату,
// отсортированные по времени начала.
//
// По умолчанию возвращает только занимающие слот бронирования (неотмененные).
// Внутри транзакции добавляет FOR UPDATE - это авторитетная проверка занятости
// слота в usecase создания бронирования.
func (r *Repository) GetByProviderAndDate(ctx context.Context, providerID int64, date time.Time, includeCancelled bool) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"booking_date": date}).
		OrderBy("start_time ASC")

	if !includeCancelled {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": string(domain.StatusCancelled)})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// UpdateStatusIf переводит бронирование из статуса from в статус to
// атомарным compare-and-set. Если текущий статус уже не from, возвращает
// ErrStatusConflict; переход никогда не применяется частично.
func (r *Repository) UpdateStatusIf(ctx context.Context, id int64, from, to domain.ReservationStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatusIf - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatusIf - execute update: %v", ErrExecQuery, err)
	}

	return r.checkTransitionApplied(ctx, result, id)
}

// CancelIf переводит бронирование из статуса from в cancelled с указанием
// причины, тем же compare-and-set что и UpdateStatusIf
func (r *Repository) CancelIf(ctx context.Context, id int64, from domain.ReservationStatus, reason string, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CancelIf - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: CancelIf - execute update: %v", ErrExecQuery, err)
	}

	return r.checkTransitionApplied(ctx, result, id)
}

// Expire отменяет неоплаченное бронирование, у которого истек дедлайн оплаты.
// Условие на статус и дедлайн входит в сам UPDATE, поэтому бронирование,
// подтвержденное за мгновение до sweep'а, остается нетронутым.
func (r *Repository) Expire(ctx context.Context, id int64, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	legacyCutoff := now.Add(-domain.DefaultPaymentTTLMinutes * time.Minute)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", "payment deadline expired").
		Set("cancelled_at", now).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusAwaitingPayment}).
		Where(squirrel.Or{
			squirrel.LtOrEq{"payment_deadline": now},
			squirrel.And{
				squirrel.Eq{"payment_deadline": nil},
				squirrel.LtOrEq{"created_at": legacyCutoff},
			},
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Expire - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Expire - execute update: %v", ErrExecQuery, err)
	}

	return r.checkTransitionApplied(ctx, result, id)
}

// ListExpiredAwaitingPayment возвращает неоплаченные бронирования с истекшим
// дедлайном оплаты. Для legacy-строк без записанного дедлайна применяется
// fallback: создано больше часа назад.
func (r *Repository) ListExpiredAwaitingPayment(ctx context.Context, now time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	legacyCutoff := now.Add(-domain.DefaultPaymentTTLMinutes * time.Minute)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"status": domain.StatusAwaitingPayment}).
		Where(squirrel.Or{
			squirrel.LtOrEq{"payment_deadline": now},
			squirrel.And{
				squirrel.Eq{"payment_deadline": nil},
				squirrel.LtOrEq{"created_at": legacyCutoff},
			},
		}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredAwaitingPayment - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredAwaitingPayment - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// checkTransitionApplied разбирает результат CAS-перехода:
// 0 затронутых строк означает либо отсутствие бронирования, либо проигранную гонку
func (r *Repository) checkTransitionApplied(ctx context.Context, result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected > 0 {
		return nil
	}

	// Переход не применился: различаем "не найдено" и "статус уже другой"
	if _, err := r.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return ErrReservationNotFound
		}
		return err
	}

	return ErrStatusConflict
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanReservation сканирует одну строку в доменную модель.
// Статус проходит через явный полный маппинг ParseReservationStatus:
// нераспознанное значение в БД - громкая ошибка, а не тихий пропуск.
func (r *Repository) scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	var rawStatus string
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&res.ID,
		&res.ProviderID,
		&res.ServiceID,
		&res.ClientID,
		&res.BookingDate,
		&res.StartTime,
		&res.DurationMinutes,
		&rawStatus,
		&res.PaymentDeadline,
		&res.ServiceName,
		&res.ServicePrice,
		&res.CancellationReason,
		&res.CancelledAt,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan reservation: %v", ErrScanRow, err)
	}

	status, err := domain.ParseReservationStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: id=%d: %v", ErrInvalidStatus, res.ID, err)
	}
	res.Status = status

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

// scanReservations сканирует результаты запроса в слайс бронирований
func (r *Repository) scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		res, err := r.scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %v", ErrScanRow, err)
	}

	return reservations, nil
}
