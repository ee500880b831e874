package update_business_hours

import (
	"github.com/m1rra/MassageBookingService/internal/service/schedule/models"
)

// UpdateBusinessHoursRequest HTTP request model
type UpdateBusinessHoursRequest struct {
	Days []models.DayHoursInput `json:"days"`
}
