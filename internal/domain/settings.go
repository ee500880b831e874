package domain

import "time"

// AppointmentSettings настройки бронирования студии (singleton-запись)
type AppointmentSettings struct {
	ID                         int64
	MinimumNoticeHours         int // Минимальное время до начала сеанса
	AdvanceBookingDays         int // Горизонт бронирования: окно [сегодня, сегодня + N дней], 0 = только сегодня
	DefaultSlotDurationMinutes int // Шаг сетки слотов (не длительность услуги)
	UpdatedAt                  time.Time
}

// LastBookableDate возвращает последнюю дату внутри горизонта бронирования
// today должен быть нормализован к полуночи в таймзоне студии
func (s *AppointmentSettings) LastBookableDate(today time.Time) time.Time {
	return today.AddDate(0, 0, s.AdvanceBookingDays)
}

// DefaultSettings возвращает настройки по умолчанию
// Используются, когда в БД ещё нет сохранённой записи настроек
func DefaultSettings() *AppointmentSettings {
	return &AppointmentSettings{
		MinimumNoticeHours:         DefaultMinimumNoticeHours,
		AdvanceBookingDays:         DefaultAdvanceBookingDays,
		DefaultSlotDurationMinutes: DefaultSlotDurationMinutes,
	}
}
