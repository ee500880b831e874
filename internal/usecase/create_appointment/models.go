package create_appointment

import (
	"time"

	"github.com/m1rra/MassageBookingService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	ClientID  int64            // ID клиента (из заголовка аутентификации)
	ServiceID int64            // ID услуги из каталога
	Date      time.Time        // Дата записи (без времени)
	StartTime types.TimeString // Время начала сеанса (например, "10:00")
	Notes     *string          // Пожелания клиента (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	ID              int64
	ClientID        int64
	ServiceID       int64
	AppointmentDate time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          string

	// Денормализованные данные
	ServiceName  string
	ServicePrice float64
	ClientName   *string
	ClientPhone  *string
	Notes        *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
