package domain

// Значения настроек по умолчанию
const (
	DefaultSlotDurationMinutes = 30
	DefaultAdvanceBookingDays  = 30
	DefaultMinimumNoticeHours  = 24
)

// Границы валидации настроек
const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 480 // 8 часов
	MinAdvanceBookingDays  = 0
	MaxAdvanceBookingDays  = 365 // 1 год
	MinMinimumNoticeHours  = 0
	MaxMinimumNoticeHours  = 336 // 2 недели

	MinServiceDurationMinutes = 15
	MaxServiceDurationMinutes = 240 // 4 часа

	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxBlockReasonLength        = 200
)

// Форматы дат и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов, не занимающих время в расписании
// Используется при фильтрации записей для подсчёта доступных слотов
var InactiveStatuses = []AppointmentStatus{
	StatusCancelledByClient,
	StatusCancelledByStudio,
	StatusNoShow,
}

// ActiveStatuses список статусов активных записей
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}
