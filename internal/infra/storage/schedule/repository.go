package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/BRB-BookingService/internal/domain"
	"github.com/m04kA/BRB-BookingService/pkg/dbmetrics"
	"github.com/m04kA/BRB-BookingService/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий расписаний мастеров: рабочие окна и перерывы.
// Конфигурационные данные - пишутся только админским путём, движок
// бронирования их только читает.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetProvider получает мастера по ID
func (r *Repository) GetProvider(ctx context.Context, id int64) (*domain.Provider, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "created_at", "updated_at").
		From("providers").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetProvider - build select query: %v", ErrBuildQuery, err)
	}

	var provider domain.Provider
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&provider.ID,
		&provider.Name,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetProvider - scan provider: %v", ErrScanRow, err)
	}

	provider.CreatedAt = createdAt.Time
	provider.UpdatedAt = updatedAt.Time

	return &provider, nil
}

// GetSchedule получает недельное расписание мастера: рабочие окна с перерывами
func (r *Repository) GetSchedule(ctx context.Context, providerID int64) (*domain.ProviderSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	windows, err := r.getWindows(ctx, executor, providerID)
	if err != nil {
		return nil, err
	}

	if err := r.attachPauses(ctx, executor, windows); err != nil {
		return nil, err
	}

	return &domain.ProviderSchedule{
		ProviderID: providerID,
		Windows:    windows,
	}, nil
}

// ReplaceSchedule полностью заменяет расписание мастера.
// Предполагает вызов внутри транзакции: удаление старых окон (перерывы
// уходят каскадом) и вставка новых - единое действие.
func (r *Repository) ReplaceSchedule(ctx context.Context, providerID int64, windows []*domain.WorkingWindow) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("working_windows").
		Where(squirrel.Eq{"provider_id": providerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceSchedule - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: ReplaceSchedule - delete old windows: %v", ErrExecQuery, err)
	}

	for _, w := range windows {
		insertQuery, insertArgs, err := psqlbuilder.Insert("working_windows").
			Columns("provider_id", "weekday", "start_time", "end_time").
			Values(providerID, int(w.Weekday), w.StartTime, w.EndTime).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: ReplaceSchedule - build window insert: %v", ErrBuildQuery, err)
		}

		var windowID int64
		if err := executor.QueryRowContext(ctx, insertQuery, insertArgs...).Scan(&windowID); err != nil {
			return fmt.Errorf("%w: ReplaceSchedule - insert window: %v", ErrExecQuery, err)
		}

		for _, p := range w.Pauses {
			pauseQuery, pauseArgs, err := psqlbuilder.Insert("pauses").
				Columns("window_id", "start_time", "end_time").
				Values(windowID, p.StartTime, p.EndTime).
				ToSql()
			if err != nil {
				return fmt.Errorf("%w: ReplaceSchedule - build pause insert: %v", ErrBuildQuery, err)
			}

			if _, err := executor.ExecContext(ctx, pauseQuery, pauseArgs...); err != nil {
				return fmt.Errorf("%w: ReplaceSchedule - insert pause: %v", ErrExecQuery, err)
			}
		}
	}

	return nil
}

func (r *Repository) getWindows(ctx context.Context, executor DBExecutor, providerID int64) ([]*domain.WorkingWindow, error) {
	query, args, err := psqlbuilder.Select("id", "provider_id", "weekday", "start_time", "end_time").
		From("working_windows").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getWindows - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getWindows - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	windows := make([]*domain.WorkingWindow, 0)
	for rows.Next() {
		var w domain.WorkingWindow
		var weekday int

		if err := rows.Scan(&w.ID, &w.ProviderID, &weekday, &w.StartTime, &w.EndTime); err != nil {
			return nil, fmt.Errorf("%w: getWindows - scan window: %v", ErrScanRow, err)
		}

		w.Weekday = time.Weekday(weekday)
		w.Pauses = make([]domain.Pause, 0)
		windows = append(windows, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getWindows - rows error: %v", ErrScanRow, err)
	}

	return windows, nil
}

func (r *Repository) attachPauses(ctx context.Context, executor DBExecutor, windows []*domain.WorkingWindow) error {
	if len(windows) == 0 {
		return nil
	}

	windowIDs := make([]int64, len(windows))
	byID := make(map[int64]*domain.WorkingWindow, len(windows))
	for i, w := range windows {
		windowIDs[i] = w.ID
		byID[w.ID] = w
	}

	query, args, err := psqlbuilder.Select("id", "window_id", "start_time", "end_time").
		From("pauses").
		Where(squirrel.Eq{"window_id": windowIDs}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: attachPauses - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: attachPauses - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Pause
		if err := rows.Scan(&p.ID, &p.WindowID, &p.StartTime, &p.EndTime); err != nil {
			return fmt.Errorf("%w: attachPauses - scan pause: %v", ErrScanRow, err)
		}
		if w, ok := byID[p.WindowID]; ok {
			w.Pauses = append(w.Pauses, p)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: attachPauses - rows error: %v", ErrScanRow, err)
	}

	return nil
}
