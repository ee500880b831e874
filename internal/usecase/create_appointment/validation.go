package create_appointment

import (
	"fmt"
	"time"

	"github.com/m1rra/MassageBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDate проверяет, что дата подходит для записи
func validateDate(date, today time.Time, settings *domain.AppointmentSettings) error {
	if date.Before(today) {
		return ErrInvalidDate
	}

	// Окно бронирования [сегодня, сегодня + advance_booking_days]:
	// при нуле записаться можно только на сегодня
	if date.After(settings.LastBookableDate(today)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, settings.AdvanceBookingDays)
	}

	return nil
}

// validateWithinBusinessHours проверяет, что сеанс целиком помещается
// в рабочие часы дня
func validateWithinBusinessHours(hours *domain.BusinessHours, startMin, durationMinutes int) error {
	openMin := hours.OpenTime.Minutes()
	closeMin := hours.CloseTime.Minutes()

	if startMin < openMin || startMin+durationMinutes > closeMin {
		return fmt.Errorf("%w: session %d minutes starting at minute %d of day, open %d..%d",
			ErrOutsideBusinessHours, durationMinutes, startMin, openMin, closeMin)
	}

	return nil
}

// validateNotice проверяет минимальное время уведомления
// Сравниваются полные метки времени: проверка работает и для записей
// на завтрашнее утро при уведомлении больше суток
func validateNotice(start, now time.Time, noticeHours int) error {
	earliestStart := now.Add(time.Duration(noticeHours) * time.Hour)
	if start.Before(earliestStart) {
		return fmt.Errorf("%w: must book at least %d hours in advance", ErrTooLateToBook, noticeHours)
	}
	return nil
}

// findConflict ищет пересечение интервала [start, end) с активными записями
// и блокировками. Полуоткрытая семантика: касание границ не конфликт
func findConflict(start, end time.Time, appointments []*domain.Appointment, blocks []*domain.TimeBlock, loc *time.Location) error {
	for _, appt := range appointments {
		if !appt.IsActive() {
			continue
		}
		apptStart, apptEnd := appt.Interval(loc)
		if apptStart.Before(end) && start.Before(apptEnd) {
			return fmt.Errorf("%w: overlaps appointment id=%d", ErrSlotNotAvailable, appt.ID)
		}
	}

	for _, block := range blocks {
		if block.Overlaps(start, end) {
			return fmt.Errorf("%w: overlaps time block id=%d", ErrSlotNotAvailable, block.ID)
		}
	}

	return nil
}
