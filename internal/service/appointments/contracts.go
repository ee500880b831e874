package appointments

import (
	"context"
	"time"

	"github.com/m1rra/MassageBookingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetWithFilter(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Appointment, error)
	Cancel(ctx context.Context, id int64, status domain.AppointmentStatus, reason string) error
}

// CacheInvalidator интерфейс инвалидации кеша доступности
type CacheInvalidator interface {
	InvalidateDate(ctx context.Context, date time.Time)
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
