package models

import (
	"time"

	"github.com/m1rra/MassageBookingService/internal/domain"
	"github.com/m1rra/MassageBookingService/pkg/types"
)

// Request модели

// DayHoursInput рабочие часы одного дня недели
type DayHoursInput struct {
	DayOfWeek int     `json:"dayOfWeek"` // 0 = воскресенье ... 6 = суббота
	OpenTime  *string `json:"openTime,omitempty"`
	CloseTime *string `json:"closeTime,omitempty"`
	IsActive  bool    `json:"isActive"`
}

// UpdateBusinessHoursRequest запрос на обновление рабочих часов на всю неделю
type UpdateBusinessHoursRequest struct {
	UserID int64           `json:"userId"`
	Days   []DayHoursInput `json:"days"`
}

// CreateTimeBlockRequest запрос на создание блокировки времени
type CreateTimeBlockRequest struct {
	UserID   int64     `json:"userId"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Type     string    `json:"type"`
	Reason   *string   `json:"reason,omitempty"`
}

// GetTimeBlocksRequest запрос на получение блокировок за период
type GetTimeBlocksRequest struct {
	From time.Time `json:"startDate"`
	To   time.Time `json:"endDate"`
}

// UpdateSettingsRequest запрос на обновление настроек бронирования
type UpdateSettingsRequest struct {
	UserID                     int64 `json:"userId"`
	MinimumNoticeHours         int   `json:"minimumNoticeHours"`
	AdvanceBookingDays         int   `json:"advanceBookingDays"`
	DefaultSlotDurationMinutes int   `json:"defaultSlotDurationMinutes"`
}

// Response модели

// BusinessHoursResponse рабочие часы одного дня недели
type BusinessHoursResponse struct {
	DayOfWeek int     `json:"dayOfWeek"`
	OpenTime  *string `json:"openTime,omitempty"`
	CloseTime *string `json:"closeTime,omitempty"`
	IsActive  bool    `json:"isActive"`
}

// BusinessHoursListResponse рабочие часы на всю неделю
type BusinessHoursListResponse struct {
	Days []BusinessHoursResponse `json:"days"`
}

// TimeBlockResponse блокировка времени
type TimeBlockResponse struct {
	ID        int64     `json:"id"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
	Type      string    `json:"type"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TimeBlockListResponse список блокировок
type TimeBlockListResponse struct {
	TimeBlocks []TimeBlockResponse `json:"timeBlocks"`
}

// SettingsResponse настройки бронирования
type SettingsResponse struct {
	MinimumNoticeHours         int        `json:"minimumNoticeHours"`
	AdvanceBookingDays         int        `json:"advanceBookingDays"`
	DefaultSlotDurationMinutes int        `json:"defaultSlotDurationMinutes"`
	UpdatedAt                  *time.Time `json:"updatedAt,omitempty"`
}

// Методы конвертации

// ToDomainBusinessHours конвертирует входные данные дня в domain модель
func (d *DayHoursInput) ToDomainBusinessHours() *domain.BusinessHours {
	h := &domain.BusinessHours{
		DayOfWeek: d.DayOfWeek,
		IsActive:  d.IsActive,
	}
	if d.OpenTime != nil {
		open := types.TimeString(*d.OpenTime)
		h.OpenTime = &open
	}
	if d.CloseTime != nil {
		close := types.TimeString(*d.CloseTime)
		h.CloseTime = &close
	}
	return h
}

// FromDomainBusinessHours конвертирует domain модель в DTO
func FromDomainBusinessHours(h *domain.BusinessHours) BusinessHoursResponse {
	resp := BusinessHoursResponse{
		DayOfWeek: h.DayOfWeek,
		IsActive:  h.IsActive,
	}
	if h.OpenTime != nil {
		open := h.OpenTime.String()
		resp.OpenTime = &open
	}
	if h.CloseTime != nil {
		close := h.CloseTime.String()
		resp.CloseTime = &close
	}
	return resp
}

// FromDomainBusinessHoursList конвертирует список domain моделей в DTO
func FromDomainBusinessHoursList(hours []*domain.BusinessHours) *BusinessHoursListResponse {
	resp := &BusinessHoursListResponse{
		Days: make([]BusinessHoursResponse, 0, len(hours)),
	}
	for _, h := range hours {
		resp.Days = append(resp.Days, FromDomainBusinessHours(h))
	}
	return resp
}

// FromDomainTimeBlock конвертирует domain модель в DTO
func FromDomainTimeBlock(b *domain.TimeBlock) *TimeBlockResponse {
	if b == nil {
		return nil
	}
	return &TimeBlockResponse{
		ID:        b.ID,
		StartsAt:  b.StartsAt,
		EndsAt:    b.EndsAt,
		Type:      string(b.Type),
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
	}
}

// FromDomainTimeBlockList конвертирует список domain моделей в DTO
func FromDomainTimeBlockList(blocks []*domain.TimeBlock) *TimeBlockListResponse {
	resp := &TimeBlockListResponse{
		TimeBlocks: make([]TimeBlockResponse, 0, len(blocks)),
	}
	for _, b := range blocks {
		if blockResp := FromDomainTimeBlock(b); blockResp != nil {
			resp.TimeBlocks = append(resp.TimeBlocks, *blockResp)
		}
	}
	return resp
}

// FromDomainSettings конвертирует domain модель в DTO
func FromDomainSettings(s *domain.AppointmentSettings) *SettingsResponse {
	if s == nil {
		return nil
	}
	resp := &SettingsResponse{
		MinimumNoticeHours:         s.MinimumNoticeHours,
		AdvanceBookingDays:         s.AdvanceBookingDays,
		DefaultSlotDurationMinutes: s.DefaultSlotDurationMinutes,
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
