package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/BRB-BookingService/internal/domain"
	"github.com/m04kA/BRB-BookingService/pkg/dbmetrics"
	"github.com/m04kA/BRB-BookingService/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий каталога услуг и индивидуальных корректировок мастеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetService получает услугу по ID
func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "duration_minutes", "price", "created_at", "updated_at").
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var svc domain.Service
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&svc.ID,
		&svc.Name,
		&svc.DurationMinutes,
		&svc.Price,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	svc.CreatedAt = createdAt.Time
	svc.UpdatedAt = updatedAt.Time

	return &svc, nil
}

// GetAdjustment получает корректировку длительности/цены услуги для мастера.
// Отсутствие корректировки - нормальная ситуация (базовые параметры услуги),
// возвращается ErrAdjustmentNotFound.
func (r *Repository) GetAdjustment(ctx context.Context, providerID, serviceID int64) (*domain.ProviderAdjustment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("provider_id", "service_id", "duration_delta_minutes", "price_delta").
		From("provider_adjustments").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"service_id": serviceID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetAdjustment - build select query: %v", ErrBuildQuery, err)
	}

	var adj domain.ProviderAdjustment

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&adj.ProviderID,
		&adj.ServiceID,
		&adj.DurationDeltaMinutes,
		&adj.PriceDelta,
	)

	if err == sql.ErrNoRows {
		return nil, ErrAdjustmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetAdjustment - scan adjustment: %v", ErrScanRow, err)
	}

	return &adj, nil
}
