package get_available_slots

import (
	"fmt"

	"github.com/m1rra/MassageBookingService/internal/domain"
)

// validateRequest проверяет входные данные запроса
func validateRequest(req Request) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.ServiceDurationMinutes <= 0 {
		return fmt.Errorf("%w: service duration must be positive, got %d", ErrInvalidInput, req.ServiceDurationMinutes)
	}

	if req.ServiceDurationMinutes < domain.MinServiceDurationMinutes || req.ServiceDurationMinutes > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("%w: service duration must be between %d and %d minutes, got %d",
			ErrInvalidInput, domain.MinServiceDurationMinutes, domain.MaxServiceDurationMinutes, req.ServiceDurationMinutes)
	}

	return nil
}
