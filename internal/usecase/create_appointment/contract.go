package create_appointment

import (
	"context"
	"time"

	"github.com/m1rra/MassageBookingService/internal/domain"
	"github.com/m1rra/MassageBookingService/internal/integrations/catalogservice"
	"github.com/m1rra/MassageBookingService/internal/integrations/clientservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	GetWithFilter(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Appointment, error)
}

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	GetBusinessHours(ctx context.Context) ([]*domain.BusinessHours, error)
	GetTimeBlocks(ctx context.Context, from, to time.Time) ([]*domain.TimeBlock, error)
	GetSettings(ctx context.Context) (*domain.AppointmentSettings, error)
}

// CatalogServiceClient интерфейс клиента каталога услуг
type CatalogServiceClient interface {
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
}

// ClientServiceClient интерфейс клиента сервиса профилей
type ClientServiceClient interface {
	GetProfileWithGracefulDegradation(ctx context.Context, clientID int64) (*clientservice.Profile, error)
}

// CacheInvalidator интерфейс инвалидации кеша доступности
type CacheInvalidator interface {
	InvalidateDate(ctx context.Context, date time.Time)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
