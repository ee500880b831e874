package get_available_slots

import (
	"time"

	"github.com/m1rra/MassageBookingService/internal/domain"
	getAvailableSlots "github.com/m1rra/MassageBookingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string          `json:"date"`
	DurationMinutes int             `json:"durationMinutes"`
	Slots           []AvailableSlot `json:"slots"`
}

// AvailableSlot модель слота в сетке дня
type AvailableSlot struct {
	Start     string `json:"start"` // ISO 8601
	End       string `json:"end"`   // ISO 8601
	Available bool   `json:"available"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Start:     slot.StartsAt.Format(time.RFC3339),
			End:       slot.EndsAt.Format(time.RFC3339),
			Available: slot.Available,
		}
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		DurationMinutes: resp.ServiceDurationMinutes,
		Slots:           slots,
	}
}
