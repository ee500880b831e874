package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/m1rra/MassageBookingService/internal/domain"
	scheduleRepo "github.com/m1rra/MassageBookingService/internal/infra/storage/schedule"
	"github.com/m1rra/MassageBookingService/internal/service/schedule/models"
)

// Service сервис для управления расписанием студии:
// рабочие часы, блокировки времени и настройки бронирования
type Service struct {
	scheduleRepo ScheduleRepository
	cache        CacheInvalidator
	txManager    TransactionManager
	adminChecker AdminChecker
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	scheduleRepo ScheduleRepository,
	cache CacheInvalidator,
	txManager TransactionManager,
	adminChecker AdminChecker,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		cache:        cache,
		txManager:    txManager,
		adminChecker: adminChecker,
		logger:       logger,
	}
}

// GetBusinessHours получает рабочие часы на всю неделю
// Публичный метод - доступен всем
func (s *Service) GetBusinessHours(ctx context.Context) (*models.BusinessHoursListResponse, error) {
	s.logger.Info("GetBusinessHours: fetching business hours")

	hours, err := s.scheduleRepo.GetBusinessHours(ctx)
	if err != nil {
		s.logger.Error("GetBusinessHours: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetBusinessHours - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBusinessHoursList(hours), nil
}

// UpdateBusinessHours обновляет рабочие часы на всю неделю одной операцией
// Доступно только администраторам студии
// Все 7 дней обновляются в одной транзакции и кеш доступности сбрасывается
func (s *Service) UpdateBusinessHours(ctx context.Context, req *models.UpdateBusinessHoursRequest) (*models.BusinessHoursListResponse, error) {
	s.logger.Info("UpdateBusinessHours: updating business hours by user=%d", req.UserID)

	if !s.adminChecker.IsAdmin(req.UserID) {
		s.logger.Warn("UpdateBusinessHours: access denied for user=%d", req.UserID)
		return nil, ErrAccessDenied
	}

	if err := validateWeek(req.Days); err != nil {
		s.logger.Warn("UpdateBusinessHours: validation failed: %v", err)
		return nil, err
	}

	updated := make([]*domain.BusinessHours, 0, len(req.Days))
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		for _, day := range req.Days {
			h, err := s.scheduleRepo.UpsertBusinessHours(txCtx, day.ToDomainBusinessHours())
			if err != nil {
				s.logger.Error("UpdateBusinessHours: repository error for day=%d: %v", day.DayOfWeek, err)
				return fmt.Errorf("%w: UpdateBusinessHours - repository error: %v", ErrInternal, err)
			}
			updated = append(updated, h)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateAll(ctx)

	s.logger.Info("UpdateBusinessHours: successfully updated %d days", len(updated))
	return models.FromDomainBusinessHoursList(updated), nil
}

// GetTimeBlocks получает блокировки времени, пересекающие указанный период
// Публичный метод - доступен всем
func (s *Service) GetTimeBlocks(ctx context.Context, req *models.GetTimeBlocksRequest) (*models.TimeBlockListResponse, error) {
	s.logger.Info("GetTimeBlocks: fetching time blocks from=%s to=%s",
		req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))

	if !req.From.Before(req.To) {
		s.logger.Warn("GetTimeBlocks: invalid period from=%s to=%s", req.From, req.To)
		return nil, fmt.Errorf("%w: startDate must be before endDate", ErrInvalidInput)
	}

	blocks, err := s.scheduleRepo.GetTimeBlocks(ctx, req.From, req.To)
	if err != nil {
		s.logger.Error("GetTimeBlocks: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetTimeBlocks - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetTimeBlocks: successfully fetched %d time blocks", len(blocks))
	return models.FromDomainTimeBlockList(blocks), nil
}

// CreateTimeBlock создает блокировку времени
// Доступно только администраторам студии
func (s *Service) CreateTimeBlock(ctx context.Context, req *models.CreateTimeBlockRequest) (*models.TimeBlockResponse, error) {
	s.logger.Info("CreateTimeBlock: creating time block type=%s from=%s to=%s by user=%d",
		req.Type, req.StartsAt, req.EndsAt, req.UserID)

	if !s.adminChecker.IsAdmin(req.UserID) {
		s.logger.Warn("CreateTimeBlock: access denied for user=%d", req.UserID)
		return nil, ErrAccessDenied
	}

	if err := validateTimeBlock(req); err != nil {
		s.logger.Warn("CreateTimeBlock: validation failed: %v", err)
		return nil, err
	}

	block := &domain.TimeBlock{
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Type:     domain.BlockType(req.Type),
		Reason:   req.Reason,
	}

	created, err := s.scheduleRepo.CreateTimeBlock(ctx, block)
	if err != nil {
		s.logger.Error("CreateTimeBlock: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateTimeBlock - repository error: %v", ErrInternal, err)
	}

	s.cache.InvalidateAll(ctx)

	s.logger.Info("CreateTimeBlock: successfully created time block id=%d", created.ID)
	return models.FromDomainTimeBlock(created), nil
}

// DeleteTimeBlock удаляет блокировку времени
// Доступно только администраторам студии
func (s *Service) DeleteTimeBlock(ctx context.Context, id int64, userID int64) error {
	s.logger.Info("DeleteTimeBlock: deleting time block id=%d by user=%d", id, userID)

	if !s.adminChecker.IsAdmin(userID) {
		s.logger.Warn("DeleteTimeBlock: access denied for user=%d", userID)
		return ErrAccessDenied
	}

	if err := s.scheduleRepo.DeleteTimeBlock(ctx, id); err != nil {
		if errors.Is(err, scheduleRepo.ErrTimeBlockNotFound) {
			s.logger.Warn("DeleteTimeBlock: time block id=%d not found", id)
			return ErrTimeBlockNotFound
		}
		s.logger.Error("DeleteTimeBlock: repository error for time block id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteTimeBlock - repository error: %v", ErrInternal, err)
	}

	s.cache.InvalidateAll(ctx)

	s.logger.Info("DeleteTimeBlock: successfully deleted time block id=%d", id)
	return nil
}

// GetSettings получает настройки бронирования
// Публичный метод - доступен всем
// Если настройки ещё не сохранялись, возвращает значения по умолчанию
func (s *Service) GetSettings(ctx context.Context) (*models.SettingsResponse, error) {
	s.logger.Info("GetSettings: fetching appointment settings")

	settings, err := s.scheduleRepo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrSettingsNotFound) {
			s.logger.Info("GetSettings: no stored settings, returning defaults")
			return models.FromDomainSettings(domain.DefaultSettings()), nil
		}
		s.logger.Error("GetSettings: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetSettings - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSettings(settings), nil
}

// UpdateSettings обновляет настройки бронирования
// Доступно только администраторам студии
func (s *Service) UpdateSettings(ctx context.Context, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error) {
	s.logger.Info("UpdateSettings: updating settings by user=%d: notice=%dh, advance=%dd, slot=%dm",
		req.UserID, req.MinimumNoticeHours, req.AdvanceBookingDays, req.DefaultSlotDurationMinutes)

	if !s.adminChecker.IsAdmin(req.UserID) {
		s.logger.Warn("UpdateSettings: access denied for user=%d", req.UserID)
		return nil, ErrAccessDenied
	}

	if err := validateSettings(req); err != nil {
		s.logger.Warn("UpdateSettings: validation failed: %v", err)
		return nil, err
	}

	updated, err := s.scheduleRepo.UpdateSettings(ctx, &domain.AppointmentSettings{
		MinimumNoticeHours:         req.MinimumNoticeHours,
		AdvanceBookingDays:         req.AdvanceBookingDays,
		DefaultSlotDurationMinutes: req.DefaultSlotDurationMinutes,
	})
	if err != nil {
		s.logger.Error("UpdateSettings: repository error: %v", err)
		return nil, fmt.Errorf("%w: UpdateSettings - repository error: %v", ErrInternal, err)
	}

	s.cache.InvalidateAll(ctx)

	s.logger.Info("UpdateSettings: successfully updated settings")
	return models.FromDomainSettings(updated), nil
}

// Вспомогательные функции валидации

// validateWeek проверяет набор рабочих часов на неделю:
// каждый день 0..6 встречается ровно один раз, у активного дня заданы
// корректные open < close
func validateWeek(days []models.DayHoursInput) error {
	if len(days) != 7 {
		return fmt.Errorf("%w: expected 7 days, got %d", ErrInvalidInput, len(days))
	}

	seen := make(map[int]bool, 7)
	for _, day := range days {
		if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
			return fmt.Errorf("%w: dayOfWeek must be between 0 and 6, got %d", ErrInvalidInput, day.DayOfWeek)
		}
		if seen[day.DayOfWeek] {
			return fmt.Errorf("%w: duplicate dayOfWeek %d", ErrInvalidInput, day.DayOfWeek)
		}
		seen[day.DayOfWeek] = true

		if !day.IsActive {
			continue
		}

		if day.OpenTime == nil || day.CloseTime == nil {
			return fmt.Errorf("%w: active day %d requires openTime and closeTime", ErrInvalidInput, day.DayOfWeek)
		}

		h := day.ToDomainBusinessHours()
		if err := h.OpenTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid openTime for day %d: %v", ErrInvalidInput, day.DayOfWeek, err)
		}
		if err := h.CloseTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid closeTime for day %d: %v", ErrInvalidInput, day.DayOfWeek, err)
		}
		if !h.OpenTime.IsBefore(*h.CloseTime) {
			return fmt.Errorf("%w: openTime must be before closeTime for day %d", ErrInvalidInput, day.DayOfWeek)
		}
	}

	return nil
}

// validateTimeBlock проверяет параметры блокировки времени
func validateTimeBlock(req *models.CreateTimeBlockRequest) error {
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return fmt.Errorf("%w: startsAt and endsAt are required", ErrInvalidInput)
	}
	if !req.StartsAt.Before(req.EndsAt) {
		return fmt.Errorf("%w: startsAt must be before endsAt", ErrInvalidInput)
	}
	if !domain.BlockType(req.Type).IsValid() {
		return fmt.Errorf("%w: unknown block type %q", ErrInvalidInput, req.Type)
	}
	if req.Reason != nil && len(*req.Reason) > domain.MaxBlockReasonLength {
		return fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput, domain.MaxBlockReasonLength)
	}
	return nil
}

// validateSettings проверяет границы настроек бронирования
func validateSettings(req *models.UpdateSettingsRequest) error {
	if req.MinimumNoticeHours < domain.MinMinimumNoticeHours || req.MinimumNoticeHours > domain.MaxMinimumNoticeHours {
		return fmt.Errorf("%w: minimumNoticeHours must be between %d and %d",
			ErrInvalidInput, domain.MinMinimumNoticeHours, domain.MaxMinimumNoticeHours)
	}
	if req.AdvanceBookingDays < domain.MinAdvanceBookingDays || req.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advanceBookingDays must be between %d and %d",
			ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}
	if req.DefaultSlotDurationMinutes < domain.MinSlotDurationMinutes || req.DefaultSlotDurationMinutes > domain.MaxSlotDurationMinutes {
		return fmt.Errorf("%w: defaultSlotDurationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}
	return nil
}
