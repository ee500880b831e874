package get_available_slots

import (
	"time"

	"github.com/m1rra/MassageBookingService/internal/domain"
)

// Request модель запроса на расчёт доступных слотов
type Request struct {
	Date                   time.Time // Дата, на которую считаются слоты (время игнорируется)
	ServiceDurationMinutes int       // Длительность услуги - длина резервируемого слота
}

// Response модель ответа с сеткой слотов на день
// Slots содержит ВСЕ кандидаты дня, включая недоступные:
// пустой список означает "день закрыт или вне окна бронирования",
// непустой список без available=true - "всё занято"
type Response struct {
	Date                   time.Time
	ServiceDurationMinutes int
	Slots                  []domain.TimeSlot
}
