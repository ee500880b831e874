package get_available_slots

import (
	"context"
	"time"

	"github.com/m1rra/MassageBookingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// GetWithFilter получает записи по фильтру (дата, статусы)
	GetWithFilter(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Appointment, error)
}

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	GetBusinessHours(ctx context.Context) ([]*domain.BusinessHours, error)
	GetTimeBlocks(ctx context.Context, from, to time.Time) ([]*domain.TimeBlock, error)
	GetSettings(ctx context.Context) (*domain.AppointmentSettings, error)
}

// AvailabilityCache интерфейс кеша рассчитанных слотов
// Промах и ошибка кеша равнозначны: расчёт выполняется заново
type AvailabilityCache interface {
	Get(ctx context.Context, date time.Time, durationMinutes int) ([]domain.TimeSlot, bool)
	Set(ctx context.Context, date time.Time, durationMinutes int, slots []domain.TimeSlot)
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
