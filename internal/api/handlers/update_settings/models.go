package update_settings

// UpdateSettingsRequest HTTP request model
type UpdateSettingsRequest struct {
	MinimumNoticeHours         int `json:"minimumNoticeHours"`
	AdvanceBookingDays         int `json:"advanceBookingDays"`
	DefaultSlotDurationMinutes int `json:"defaultSlotDurationMinutes"`
}
