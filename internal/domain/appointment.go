package domain

import (
	"time"

	"github.com/m1rra/MassageBookingService/pkg/types"
)

// AppointmentStatus статус записи на сеанс
type AppointmentStatus string

const (
	StatusPending           AppointmentStatus = "pending"
	StatusConfirmed         AppointmentStatus = "confirmed"
	StatusCompleted         AppointmentStatus = "completed"
	StatusCancelledByClient AppointmentStatus = "cancelled_by_client"
	StatusCancelledByStudio AppointmentStatus = "cancelled_by_studio"
	StatusNoShow            AppointmentStatus = "no_show"
)

// Appointment запись клиента на сеанс массажа
type Appointment struct {
	ID              int64
	ClientID        int64
	ServiceID       int64
	AppointmentDate time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          AppointmentStatus

	// Денормализованные данные для истории
	ServiceName  string
	ServicePrice float64
	ClientName   *string
	ClientPhone  *string
	Notes        *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive возвращает true, если запись занимает время в расписании
// Отмененные записи и неявки слоты не блокируют
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelledByClient &&
		a.Status != StatusCancelledByStudio &&
		a.Status != StatusNoShow
}

// CanBeCancelled возвращает true, если запись можно отменить
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// IsCancelled возвращает true, если запись была отменена
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelledByClient || a.Status == StatusCancelledByStudio
}

// IsCompleted возвращает true, если сеанс состоялся или клиент не пришёл
func (a *Appointment) IsCompleted() bool {
	return a.Status == StatusCompleted || a.Status == StatusNoShow
}

// Interval возвращает интервал записи [start, end) в указанной локации
func (a *Appointment) Interval(loc *time.Location) (time.Time, time.Time) {
	start := a.StartTime.OnDate(a.AppointmentDate, loc)
	end := start.Add(time.Duration(a.DurationMinutes) * time.Minute)
	return start, end
}

// ScheduleFilter фильтр для выборки записей
type ScheduleFilter struct {
	ClientID        *int64             // Фильтр по клиенту (опционально)
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли отмененные записи и неявки
}
