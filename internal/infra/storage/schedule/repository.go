package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m1rra/MassageBookingService/internal/domain"
	"github.com/m1rra/MassageBookingService/pkg/dbmetrics"
	"github.com/m1rra/MassageBookingService/pkg/psqlbuilder"
	"github.com/m1rra/MassageBookingService/pkg/types"
)

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// settingsRowID ID единственной строки настроек
const settingsRowID = 1

// Repository репозиторий расписания: рабочие часы, блокировки времени
// и настройки бронирования
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBusinessHours возвращает рабочие часы на все дни недели,
// включая неактивные дни, отсортированные по дню недели
func (r *Repository) GetBusinessHours(ctx context.Context) ([]*domain.BusinessHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"day_of_week",
		"open_time",
		"close_time",
		"is_active",
	).
		From("business_hours").
		OrderBy("day_of_week ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	hours := make([]*domain.BusinessHours, 0, 7)
	for rows.Next() {
		var h domain.BusinessHours
		var openTime, closeTime sql.NullString
		if err := rows.Scan(&h.ID, &h.DayOfWeek, &openTime, &closeTime, &h.IsActive); err != nil {
			return nil, fmt.Errorf("%w: GetBusinessHours - scan row: %v", ErrScanRow, err)
		}
		if h.OpenTime, err = nullableTimeString(openTime); err != nil {
			return nil, fmt.Errorf("%w: GetBusinessHours - parse open_time: %v", ErrScanRow, err)
		}
		if h.CloseTime, err = nullableTimeString(closeTime); err != nil {
			return nil, fmt.Errorf("%w: GetBusinessHours - parse close_time: %v", ErrScanRow, err)
		}
		hours = append(hours, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - rows error: %v", ErrScanRow, err)
	}

	return hours, nil
}

// nullableTimeString конвертирует NULL-able колонку TIME в *types.TimeString
func nullableTimeString(ns sql.NullString) (*types.TimeString, error) {
	if !ns.Valid {
		return nil, nil
	}
	var ts types.TimeString
	if err := ts.Scan(ns.String); err != nil {
		return nil, err
	}
	return &ts, nil
}

// UpsertBusinessHours сохраняет рабочие часы на день недели
// Одна строка на день: повторное сохранение перезаписывает предыдущее
func (r *Repository) UpsertBusinessHours(ctx context.Context, h *domain.BusinessHours) (*domain.BusinessHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("business_hours").
		Columns("day_of_week", "open_time", "close_time", "is_active").
		Values(h.DayOfWeek, h.OpenTime, h.CloseTime, h.IsActive).
		Suffix(`ON CONFLICT (day_of_week) DO UPDATE
			SET open_time = EXCLUDED.open_time,
			    close_time = EXCLUDED.close_time,
			    is_active = EXCLUDED.is_active
			RETURNING id`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertBusinessHours - build upsert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&h.ID); err != nil {
		return nil, fmt.Errorf("%w: UpsertBusinessHours - execute upsert: %v", ErrExecQuery, err)
	}

	return h, nil
}

// GetTimeBlocks возвращает блокировки, пересекающиеся с интервалом [from, to)
func (r *Repository) GetTimeBlocks(ctx context.Context, from, to time.Time) ([]*domain.TimeBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// Полуоткрытое пересечение: starts_at < to AND ends_at > from
	query, args, err := psqlbuilder.Select(
		"id",
		"starts_at",
		"ends_at",
		"block_type",
		"reason",
		"created_at",
	).
		From("time_blocks").
		Where(squirrel.Lt{"starts_at": to}).
		Where(squirrel.Gt{"ends_at": from}).
		OrderBy("starts_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetTimeBlocks - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetTimeBlocks - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blocks := make([]*domain.TimeBlock, 0)
	for rows.Next() {
		var b domain.TimeBlock
		var createdAt sql.NullTime
		if err := rows.Scan(&b.ID, &b.StartsAt, &b.EndsAt, &b.Type, &b.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: GetTimeBlocks - scan row: %v", ErrScanRow, err)
		}
		b.CreatedAt = createdAt.Time
		blocks = append(blocks, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetTimeBlocks - rows error: %v", ErrScanRow, err)
	}

	return blocks, nil
}

// CreateTimeBlock создает новую блокировку времени
func (r *Repository) CreateTimeBlock(ctx context.Context, block *domain.TimeBlock) (*domain.TimeBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("time_blocks").
		Columns("starts_at", "ends_at", "block_type", "reason").
		Values(block.StartsAt, block.EndsAt, block.Type, block.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateTimeBlock - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&block.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: CreateTimeBlock - execute insert: %v", ErrExecQuery, err)
	}

	block.CreatedAt = createdAt.Time

	return block, nil
}

// GetTimeBlockByID получает блокировку по ID
func (r *Repository) GetTimeBlockByID(ctx context.Context, id int64) (*domain.TimeBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"starts_at",
		"ends_at",
		"block_type",
		"reason",
		"created_at",
	).
		From("time_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetTimeBlockByID - build select query: %v", ErrBuildQuery, err)
	}

	var b domain.TimeBlock
	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID, &b.StartsAt, &b.EndsAt, &b.Type, &b.Reason, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTimeBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetTimeBlockByID - scan row: %v", ErrScanRow, err)
	}
	b.CreatedAt = createdAt.Time

	return &b, nil
}

// DeleteTimeBlock удаляет блокировку времени
func (r *Repository) DeleteTimeBlock(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("time_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteTimeBlock - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteTimeBlock - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteTimeBlock - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTimeBlockNotFound
	}

	return nil
}

// GetSettings возвращает настройки бронирования
// Если настройки ещё не сохранялись, возвращает ErrSettingsNotFound -
// вызывающий код подставляет значения по умолчанию
func (r *Repository) GetSettings(ctx context.Context) (*domain.AppointmentSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"minimum_notice_hours",
		"advance_booking_days",
		"default_slot_duration_minutes",
		"updated_at",
	).
		From("appointment_settings").
		Where(squirrel.Eq{"id": settingsRowID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetSettings - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.AppointmentSettings
	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.MinimumNoticeHours,
		&s.AdvanceBookingDays,
		&s.DefaultSlotDurationMinutes,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSettings - scan settings: %v", ErrScanRow, err)
	}
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// UpdateSettings сохраняет настройки бронирования (upsert единственной строки)
func (r *Repository) UpdateSettings(ctx context.Context, s *domain.AppointmentSettings) (*domain.AppointmentSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointment_settings").
		Columns("id", "minimum_notice_hours", "advance_booking_days", "default_slot_duration_minutes").
		Values(settingsRowID, s.MinimumNoticeHours, s.AdvanceBookingDays, s.DefaultSlotDurationMinutes).
		Suffix(`ON CONFLICT (id) DO UPDATE
			SET minimum_notice_hours = EXCLUDED.minimum_notice_hours,
			    advance_booking_days = EXCLUDED.advance_booking_days,
			    default_slot_duration_minutes = EXCLUDED.default_slot_duration_minutes,
			    updated_at = NOW()
			RETURNING id, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpdateSettings - build upsert query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: UpdateSettings - execute upsert: %v", ErrExecQuery, err)
	}
	s.UpdatedAt = updatedAt.Time

	return s, nil
}
