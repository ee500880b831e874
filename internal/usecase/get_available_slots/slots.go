package get_available_slots

import (
	"time"

	"github.com/m1rra/MassageBookingService/internal/domain"
)

// slotInputs все данные, необходимые для расчёта сетки слотов на день
type slotInputs struct {
	date            time.Time // Полночь запрошенного дня в таймзоне студии
	now             time.Time
	hours           *domain.BusinessHours
	blocks          []*domain.TimeBlock
	appointments    []*domain.Appointment
	settings        *domain.AppointmentSettings
	durationMinutes int
	loc             *time.Location
}

// buildSlots строит сетку кандидатов слотов на день
//
// Кандидаты шагают по сетке с шагом DefaultSlotDurationMinutes от времени
// открытия, длина каждого кандидата равна длительности услуги. Кандидат,
// не помещающийся целиком до закрытия, в сетку не попадает.
//
// Кандидат помечается недоступным, если он пересекается с активной записью
// или блокировкой (полуоткрытые интервалы, касание границ не конфликт),
// либо начинается раньше, чем now + MinimumNoticeHours.
func buildSlots(in slotInputs) []domain.TimeSlot {
	openMin := in.hours.OpenTime.Minutes()
	closeMin := in.hours.CloseTime.Minutes()

	step := in.settings.DefaultSlotDurationMinutes
	if step <= 0 {
		step = domain.DefaultSlotDurationMinutes
	}

	earliestStart := in.now.Add(time.Duration(in.settings.MinimumNoticeHours) * time.Hour)

	slots := make([]domain.TimeSlot, 0, (closeMin-openMin)/step+1)

	for startMin := openMin; startMin+in.durationMinutes <= closeMin; startMin += step {
		slotStart := in.date.Add(time.Duration(startMin) * time.Minute)
		slotEnd := slotStart.Add(time.Duration(in.durationMinutes) * time.Minute)

		slots = append(slots, domain.TimeSlot{
			StartsAt:  slotStart,
			EndsAt:    slotEnd,
			Available: isSlotAvailable(slotStart, slotEnd, earliestStart, in),
		})
	}

	return slots
}

// isSlotAvailable проверяет кандидата [start, end) на конфликты
func isSlotAvailable(start, end, earliestStart time.Time, in slotInputs) bool {
	// Минимальное время уведомления
	if start.Before(earliestStart) {
		return false
	}

	// Пересечение с активными записями
	for _, appt := range in.appointments {
		if !appt.IsActive() {
			continue
		}
		apptStart, apptEnd := appt.Interval(in.loc)
		if apptStart.Before(end) && start.Before(apptEnd) {
			return false
		}
	}

	// Пересечение с блокировками времени
	for _, block := range in.blocks {
		if block.Overlaps(start, end) {
			return false
		}
	}

	return true
}
