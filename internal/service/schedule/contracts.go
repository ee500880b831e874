package schedule

import (
	"context"
	"time"

	"github.com/m1rra/MassageBookingService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	GetBusinessHours(ctx context.Context) ([]*domain.BusinessHours, error)
	UpsertBusinessHours(ctx context.Context, h *domain.BusinessHours) (*domain.BusinessHours, error)
	GetTimeBlocks(ctx context.Context, from, to time.Time) ([]*domain.TimeBlock, error)
	CreateTimeBlock(ctx context.Context, block *domain.TimeBlock) (*domain.TimeBlock, error)
	GetTimeBlockByID(ctx context.Context, id int64) (*domain.TimeBlock, error)
	DeleteTimeBlock(ctx context.Context, id int64) error
	GetSettings(ctx context.Context) (*domain.AppointmentSettings, error)
	UpdateSettings(ctx context.Context, s *domain.AppointmentSettings) (*domain.AppointmentSettings, error)
}

// CacheInvalidator интерфейс инвалидации кеша доступности
// Изменения расписания затрагивают неопределённое множество дат,
// поэтому кеш сбрасывается целиком
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// AdminChecker интерфейс проверки административных прав
type AdminChecker interface {
	IsAdmin(userID int64) bool
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
