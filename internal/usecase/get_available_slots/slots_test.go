package get_available_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1rra/MassageBookingService/internal/domain"
	"github.com/m1rra/MassageBookingService/pkg/ptr"
	"github.com/m1rra/MassageBookingService/pkg/types"
)

func testHours(open, close string) *domain.BusinessHours {
	return &domain.BusinessHours{
		DayOfWeek: 1,
		OpenTime:  ptr.Ptr(types.TimeString(open)),
		CloseTime: ptr.Ptr(types.TimeString(close)),
		IsActive:  true,
	}
}

func baseInputs(date time.Time, loc *time.Location) slotInputs {
	return slotInputs{
		date: date,
		// Далёкое прошлое, чтобы minimum notice не влиял на тесты сетки
		now:   date.AddDate(0, 0, -10),
		hours: testHours("09:00", "17:00"),
		settings: &domain.AppointmentSettings{
			MinimumNoticeHours:         0,
			AdvanceBookingDays:         30,
			DefaultSlotDurationMinutes: 30,
		},
		durationMinutes: 60,
		loc:             loc,
	}
}

func TestBuildSlots_GridSteppedByGranularity(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, loc)

	slots := buildSlots(baseInputs(date, loc))

	// Шаг 30 минут, услуга 60 минут, 09:00-17:00:
	// кандидаты 09:00 .. 16:00, последний заканчивается ровно в закрытие
	require.Len(t, slots, 15)
	assert.Equal(t, date.Add(9*time.Hour), slots[0].StartsAt)
	assert.Equal(t, date.Add(10*time.Hour), slots[0].EndsAt)
	assert.Equal(t, date.Add(16*time.Hour), slots[14].StartsAt)
	assert.Equal(t, date.Add(17*time.Hour), slots[14].EndsAt)

	for _, s := range slots {
		assert.True(t, s.Available, "slot %s should be available", s.StartsAt)
	}
}

func TestBuildSlots_SlotMustFitBeforeClose(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, loc)

	in := baseInputs(date, loc)
	in.durationMinutes = 90

	slots := buildSlots(in)

	// Кандидат 16:00 с услугой 90 минут вылезает за 17:00 и в сетку не попадает
	require.NotEmpty(t, slots)
	last := slots[len(slots)-1]
	assert.Equal(t, date.Add(15*time.Hour+30*time.Minute), last.StartsAt)
	assert.False(t, last.EndsAt.After(date.Add(17*time.Hour)))
}

func TestBuildSlots_AppointmentConflictMarksUnavailable(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, loc)

	in := baseInputs(date, loc)
	in.appointments = []*domain.Appointment{
		{
			ClientID:        1,
			AppointmentDate: date,
			StartTime:       types.TimeString("10:00"),
			DurationMinutes: 60,
			Status:          domain.StatusConfirmed,
		},
	}

	slots := buildSlots(in)
	bySlotStart := indexByStart(slots)

	// Запись 10:00-11:00 конфликтует с кандидатами 09:30, 10:00 и 10:30
	assert.False(t, bySlotStart[date.Add(9*time.Hour+30*time.Minute)].Available)
	assert.False(t, bySlotStart[date.Add(10*time.Hour)].Available)
	assert.False(t, bySlotStart[date.Add(10*time.Hour+30*time.Minute)].Available)

	// Касание границ конфликтом не считается: слот 09:00-10:00 доступен,
	// слот 11:00-12:00 тоже
	assert.True(t, bySlotStart[date.Add(9*time.Hour)].Available)
	assert.True(t, bySlotStart[date.Add(11*time.Hour)].Available)

	// Недоступные слоты остаются в выдаче
	assert.Len(t, slots, 15)
}

func TestBuildSlots_CancelledAppointmentDoesNotBlock(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, loc)

	in := baseInputs(date, loc)
	in.appointments = []*domain.Appointment{
		{
			AppointmentDate: date,
			StartTime:       types.TimeString("10:00"),
			DurationMinutes: 60,
			Status:          domain.StatusCancelledByClient,
		},
		{
			AppointmentDate: date,
			StartTime:       types.TimeString("12:00"),
			DurationMinutes: 60,
			Status:          domain.StatusNoShow,
		},
	}

	slots := buildSlots(in)
	for _, s := range slots {
		assert.True(t, s.Available, "slot %s should be available", s.StartsAt)
	}
}

func TestBuildSlots_TimeBlockMarksUnavailable(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, loc)

	in := baseInputs(date, loc)
	in.blocks = []*domain.TimeBlock{
		{
			StartsAt: date.Add(13 * time.Hour),
			EndsAt:   date.Add(14 * time.Hour),
			Type:     domain.BlockBreak,
		},
	}

	slots := buildSlots(in)
	bySlotStart := indexByStart(slots)

	assert.False(t, bySlotStart[date.Add(12*time.Hour+30*time.Minute)].Available)
	assert.False(t, bySlotStart[date.Add(13*time.Hour)].Available)
	assert.False(t, bySlotStart[date.Add(13*time.Hour+30*time.Minute)].Available)
	assert.True(t, bySlotStart[date.Add(12*time.Hour)].Available)
	assert.True(t, bySlotStart[date.Add(14*time.Hour)].Available)
}

func TestBuildSlots_MinimumNoticeMarksUnavailable(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, loc)

	in := baseInputs(date, loc)
	// Сейчас 08:00 того же дня, уведомление 3 часа: слоты до 11:00 недоступны
	in.now = date.Add(8 * time.Hour)
	in.settings.MinimumNoticeHours = 3

	slots := buildSlots(in)
	bySlotStart := indexByStart(slots)

	assert.False(t, bySlotStart[date.Add(9*time.Hour)].Available)
	assert.False(t, bySlotStart[date.Add(10*time.Hour+30*time.Minute)].Available)
	// Ровно now + notice - уже доступен
	assert.True(t, bySlotStart[date.Add(11*time.Hour)].Available)
	assert.True(t, bySlotStart[date.Add(16*time.Hour)].Available)

	// Сетка полная, ранние слоты не выброшены
	assert.Len(t, slots, 15)
}

func TestBuildSlots_ZeroStepFallsBackToDefault(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, loc)

	in := baseInputs(date, loc)
	in.settings.DefaultSlotDurationMinutes = 0

	slots := buildSlots(in)
	require.NotEmpty(t, slots)
	assert.Equal(t, 30*time.Minute, slots[1].StartsAt.Sub(slots[0].StartsAt))
}

func indexByStart(slots []domain.TimeSlot) map[time.Time]domain.TimeSlot {
	m := make(map[time.Time]domain.TimeSlot, len(slots))
	for _, s := range slots {
		m[s.StartsAt] = s
	}
	return m
}
