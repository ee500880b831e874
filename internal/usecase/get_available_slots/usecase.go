package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m1rra/MassageBookingService/internal/domain"
	scheduleRepo "github.com/m1rra/MassageBookingService/internal/infra/storage/schedule"
)

// UseCase расчёт доступных слотов на дату
type UseCase struct {
	appointmentRepo AppointmentRepository
	scheduleRepo    ScheduleRepository
	cache           AvailabilityCache
	timeProvider    TimeProvider
	location        *time.Location
	log             Logger
}

// NewUseCase создает новый экземпляр UseCase для расчёта доступных слотов
func NewUseCase(
	appointmentRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	cache AvailabilityCache,
	timeProvider TimeProvider,
	location *time.Location,
	log Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		cache:           cache,
		timeProvider:    timeProvider,
		location:        location,
		log:             log,
	}
}

// Execute возвращает сетку слотов на запрошенную дату
//
// Закрытый день, прошедшая дата и дата за горизонтом бронирования - не
// ошибки, а пустой список слотов: для календаря это одинаково "записаться
// нельзя". Ошибкой считается только недоступность источников данных.
func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	uc.log.Info("Getting available slots for date=%s, duration=%d",
		req.Date.Format(domain.DateFormat), req.ServiceDurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.log.Warn("Invalid request: %v", err)
		return nil, err
	}

	// Нормализуем дату к полуночи в таймзоне студии: все дальнейшие
	// сравнения и интервалы считаются в одной локации
	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, uc.location)
	now := uc.timeProvider.Now().In(uc.location)

	// 2. Получаем настройки бронирования
	settings, err := uc.getSettings(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Прошедшие даты и даты за горизонтом бронирования - пустая сетка
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.location)
	if date.Before(today) {
		uc.log.Info("Date %s is in the past, returning empty slots", date.Format(domain.DateFormat))
		return uc.emptyResponse(date, req.ServiceDurationMinutes), nil
	}
	// Окно бронирования [сегодня, сегодня + advance_booking_days]:
	// при нуле доступен только сегодняшний день
	if date.After(settings.LastBookableDate(today)) {
		uc.log.Info("Date %s is beyond advance booking window of %d days, returning empty slots",
			date.Format(domain.DateFormat), settings.AdvanceBookingDays)
		return uc.emptyResponse(date, req.ServiceDurationMinutes), nil
	}

	// 4. Проверяем кеш
	if cached, ok := uc.cache.Get(ctx, date, req.ServiceDurationMinutes); ok {
		uc.log.Info("Cache hit for date=%s, duration=%d", date.Format(domain.DateFormat), req.ServiceDurationMinutes)
		return &Response{
			Date:                   date,
			ServiceDurationMinutes: req.ServiceDurationMinutes,
			Slots:                  cached,
		}, nil
	}

	// 5. Рабочие часы на день недели запрошенной даты
	hours, err := uc.getBusinessHoursForDay(ctx, date.Weekday())
	if err != nil {
		return nil, err
	}
	if hours == nil || !hours.IsOpen() {
		uc.log.Info("Studio is closed on %s, returning empty slots", date.Weekday())
		return uc.emptyResponse(date, req.ServiceDurationMinutes), nil
	}

	// 6. Блокировки времени, пересекающие запрошенный день
	dayEnd := date.AddDate(0, 0, 1)
	blocks, err := uc.scheduleRepo.GetTimeBlocks(ctx, date, dayEnd)
	if err != nil {
		uc.log.Error("Failed to get time blocks: %v", err)
		return nil, fmt.Errorf("%w: time blocks: %v", ErrProviderUnavailable, err)
	}

	// 7. Активные записи на дату
	appointments, err := uc.appointmentRepo.GetWithFilter(ctx, domain.ScheduleFilter{
		StartDate: &date,
		EndDate:   &date,
	})
	if err != nil {
		uc.log.Error("Failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: appointments: %v", ErrProviderUnavailable, err)
	}

	// 8. Строим сетку слотов
	slots := buildSlots(slotInputs{
		date:            date,
		now:             now,
		hours:           hours,
		blocks:          blocks,
		appointments:    appointments,
		settings:        settings,
		durationMinutes: req.ServiceDurationMinutes,
		loc:             uc.location,
	})

	// 9. Сохраняем в кеш
	uc.cache.Set(ctx, date, req.ServiceDurationMinutes, slots)

	available := 0
	for _, s := range slots {
		if s.Available {
			available++
		}
	}
	uc.log.Info("Built %d slots (%d available) for date=%s", len(slots), available, date.Format(domain.DateFormat))

	return &Response{
		Date:                   date,
		ServiceDurationMinutes: req.ServiceDurationMinutes,
		Slots:                  slots,
	}, nil
}

// getSettings получает настройки бронирования, подставляя значения
// по умолчанию, если запись настроек ещё не создана
func (uc *UseCase) getSettings(ctx context.Context) (*domain.AppointmentSettings, error) {
	settings, err := uc.scheduleRepo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrSettingsNotFound) {
			return domain.DefaultSettings(), nil
		}
		uc.log.Error("Failed to get appointment settings: %v", err)
		return nil, fmt.Errorf("%w: settings: %v", ErrProviderUnavailable, err)
	}
	return settings, nil
}

// getBusinessHoursForDay возвращает рабочие часы для дня недели
// или nil, если для этого дня часы не заданы
func (uc *UseCase) getBusinessHoursForDay(ctx context.Context, weekday time.Weekday) (*domain.BusinessHours, error) {
	allHours, err := uc.scheduleRepo.GetBusinessHours(ctx)
	if err != nil {
		uc.log.Error("Failed to get business hours: %v", err)
		return nil, fmt.Errorf("%w: business hours: %v", ErrProviderUnavailable, err)
	}

	for _, h := range allHours {
		if h.DayOfWeek == int(weekday) {
			return h, nil
		}
	}
	return nil, nil
}

func (uc *UseCase) emptyResponse(date time.Time, durationMinutes int) *Response {
	return &Response{
		Date:                   date,
		ServiceDurationMinutes: durationMinutes,
		Slots:                  []domain.TimeSlot{},
	}
}
