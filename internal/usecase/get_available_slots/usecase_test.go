package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1rra/MassageBookingService/internal/domain"
	scheduleRepo "github.com/m1rra/MassageBookingService/internal/infra/storage/schedule"
	"github.com/m1rra/MassageBookingService/pkg/ptr"
	"github.com/m1rra/MassageBookingService/pkg/types"
)

// --- фейки ---

type fakeAppointmentRepo struct {
	appointments []*domain.Appointment
	err          error
	calls        int
}

func (f *fakeAppointmentRepo) GetWithFilter(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Appointment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.appointments, nil
}

type fakeScheduleRepo struct {
	hours       []*domain.BusinessHours
	hoursErr    error
	blocks      []*domain.TimeBlock
	blocksErr   error
	settings    *domain.AppointmentSettings
	settingsErr error
}

func (f *fakeScheduleRepo) GetBusinessHours(ctx context.Context) ([]*domain.BusinessHours, error) {
	return f.hours, f.hoursErr
}

func (f *fakeScheduleRepo) GetTimeBlocks(ctx context.Context, from, to time.Time) ([]*domain.TimeBlock, error) {
	return f.blocks, f.blocksErr
}

func (f *fakeScheduleRepo) GetSettings(ctx context.Context) (*domain.AppointmentSettings, error) {
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	return f.settings, nil
}

type fakeCache struct {
	data map[string][]domain.TimeSlot
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]domain.TimeSlot)}
}

func (f *fakeCache) key(date time.Time, d int) string {
	return date.Format(domain.DateFormat) + ":" + time.Duration(d).String()
}

func (f *fakeCache) Get(ctx context.Context, date time.Time, durationMinutes int) ([]domain.TimeSlot, bool) {
	slots, ok := f.data[f.key(date, durationMinutes)]
	return slots, ok
}

func (f *fakeCache) Set(ctx context.Context, date time.Time, durationMinutes int, slots []domain.TimeSlot) {
	f.sets++
	f.data[f.key(date, durationMinutes)] = slots
}

type fakeTimeProvider struct {
	now time.Time
}

func (f *fakeTimeProvider) Now() time.Time {
	return f.now
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

// --- хелперы ---

func weekHours(open, close string) []*domain.BusinessHours {
	hours := make([]*domain.BusinessHours, 0, 7)
	for day := 0; day < 7; day++ {
		hours = append(hours, &domain.BusinessHours{
			DayOfWeek: day,
			OpenTime:  ptr.Ptr(types.TimeString(open)),
			CloseTime: ptr.Ptr(types.TimeString(close)),
			IsActive:  true,
		})
	}
	return hours
}

func defaultTestSettings() *domain.AppointmentSettings {
	return &domain.AppointmentSettings{
		MinimumNoticeHours:         0,
		AdvanceBookingDays:         30,
		DefaultSlotDurationMinutes: 30,
	}
}

func newTestUseCase(apptRepo *fakeAppointmentRepo, schedRepo *fakeScheduleRepo, cache *fakeCache, now time.Time) *UseCase {
	return NewUseCase(apptRepo, schedRepo, cache, &fakeTimeProvider{now: now}, time.UTC, noopLogger{})
}

// --- тесты ---

func TestExecute_Success(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	schedRepo := &fakeScheduleRepo{
		hours:    weekHours("09:00", "17:00"),
		settings: defaultTestSettings(),
	}
	cache := newFakeCache()
	uc := newTestUseCase(&fakeAppointmentRepo{}, schedRepo, cache, now)

	resp, err := uc.Execute(context.Background(), Request{Date: date, ServiceDurationMinutes: 60})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 15)
	assert.Equal(t, date, resp.Date)
	assert.Equal(t, 60, resp.ServiceDurationMinutes)
	assert.Equal(t, 1, cache.sets)
}

func TestExecute_InvalidDuration(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeScheduleRepo{settings: defaultTestSettings()}, newFakeCache(), now)

	for _, duration := range []int{0, -30, 5, 500} {
		_, err := uc.Execute(context.Background(), Request{Date: date, ServiceDurationMinutes: duration})
		assert.ErrorIs(t, err, ErrInvalidInput, "duration=%d", duration)
	}
}

func TestExecute_ZeroDate(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeScheduleRepo{settings: defaultTestSettings()}, newFakeCache(), now)

	_, err := uc.Execute(context.Background(), Request{ServiceDurationMinutes: 60})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_ClosedDayReturnsEmpty(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	// 2026-09-06 - воскресенье
	sunday := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)

	hours := weekHours("09:00", "17:00")
	hours[0].IsActive = false

	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeScheduleRepo{hours: hours, settings: defaultTestSettings()}, newFakeCache(), now)

	resp, err := uc.Execute(context.Background(), Request{Date: sunday, ServiceDurationMinutes: 60})

	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	assert.NotNil(t, resp.Slots)
}

func TestExecute_NoHoursForDayReturnsEmpty(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeScheduleRepo{settings: defaultTestSettings()}, newFakeCache(), now)

	resp, err := uc.Execute(context.Background(), Request{Date: date, ServiceDurationMinutes: 60})

	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_PastDateReturnsEmpty(t *testing.T) {
	now := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)

	apptRepo := &fakeAppointmentRepo{}
	uc := newTestUseCase(apptRepo, &fakeScheduleRepo{hours: weekHours("09:00", "17:00"), settings: defaultTestSettings()}, newFakeCache(), now)

	resp, err := uc.Execute(context.Background(), Request{Date: yesterday, ServiceDurationMinutes: 60})

	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	// До репозитория записей даже не доходим
	assert.Zero(t, apptRepo.calls)
}

func TestExecute_BeyondAdvanceWindowReturnsEmpty(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	farFuture := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	settings := defaultTestSettings()
	settings.AdvanceBookingDays = 14

	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeScheduleRepo{hours: weekHours("09:00", "17:00"), settings: settings}, newFakeCache(), now)

	resp, err := uc.Execute(context.Background(), Request{Date: farFuture, ServiceDurationMinutes: 60})

	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_LastDayOfAdvanceWindowStillBookable(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	lastDay := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	settings := defaultTestSettings()
	settings.AdvanceBookingDays = 14

	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeScheduleRepo{hours: weekHours("09:00", "17:00"), settings: settings}, newFakeCache(), now)

	// Окно [сегодня, сегодня + 14] включает границу
	resp, err := uc.Execute(context.Background(), Request{Date: lastDay, ServiceDurationMinutes: 60})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Slots)
}

func TestExecute_ZeroAdvanceWindowAllowsOnlyToday(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	settings := defaultTestSettings()
	settings.AdvanceBookingDays = 0

	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeScheduleRepo{hours: weekHours("09:00", "17:00"), settings: settings}, newFakeCache(), now)

	// Сегодняшний день внутри окна
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), Request{Date: today, ServiceDurationMinutes: 60})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Slots)

	// Уже завтра - за горизонтом
	tomorrow := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	resp, err = uc.Execute(context.Background(), Request{Date: tomorrow, ServiceDurationMinutes: 60})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)

	farFuture := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	resp, err = uc.Execute(context.Background(), Request{Date: farFuture, ServiceDurationMinutes: 60})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_MissingSettingsFallsBackToDefaults(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	schedRepo := &fakeScheduleRepo{
		hours:       weekHours("09:00", "17:00"),
		settingsErr: scheduleRepo.ErrSettingsNotFound,
	}
	uc := newTestUseCase(&fakeAppointmentRepo{}, schedRepo, newFakeCache(), now)

	resp, err := uc.Execute(context.Background(), Request{Date: date, ServiceDurationMinutes: 60})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Slots)
}

func TestExecute_ProviderErrors(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	dbErr := errors.New("connection refused")

	tests := []struct {
		name      string
		apptRepo  *fakeAppointmentRepo
		schedRepo *fakeScheduleRepo
	}{
		{
			name:      "settings error",
			apptRepo:  &fakeAppointmentRepo{},
			schedRepo: &fakeScheduleRepo{hours: weekHours("09:00", "17:00"), settingsErr: dbErr},
		},
		{
			name:      "business hours error",
			apptRepo:  &fakeAppointmentRepo{},
			schedRepo: &fakeScheduleRepo{hoursErr: dbErr, settings: defaultTestSettings()},
		},
		{
			name:      "time blocks error",
			apptRepo:  &fakeAppointmentRepo{},
			schedRepo: &fakeScheduleRepo{hours: weekHours("09:00", "17:00"), blocksErr: dbErr, settings: defaultTestSettings()},
		},
		{
			name:      "appointments error",
			apptRepo:  &fakeAppointmentRepo{err: dbErr},
			schedRepo: &fakeScheduleRepo{hours: weekHours("09:00", "17:00"), settings: defaultTestSettings()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newTestUseCase(tt.apptRepo, tt.schedRepo, newFakeCache(), now)

			_, err := uc.Execute(context.Background(), Request{Date: date, ServiceDurationMinutes: 60})
			assert.ErrorIs(t, err, ErrProviderUnavailable)
		})
	}
}

func TestExecute_CacheHitSkipsRepositories(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	apptRepo := &fakeAppointmentRepo{}
	schedRepo := &fakeScheduleRepo{hours: weekHours("09:00", "17:00"), settings: defaultTestSettings()}
	cache := newFakeCache()
	uc := newTestUseCase(apptRepo, schedRepo, cache, now)

	// Первый запрос наполняет кеш, второй должен обслуживаться из него
	first, err := uc.Execute(context.Background(), Request{Date: date, ServiceDurationMinutes: 60})
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), Request{Date: date, ServiceDurationMinutes: 60})
	require.NoError(t, err)

	assert.Equal(t, first.Slots, second.Slots)
	assert.Equal(t, 1, apptRepo.calls)
	assert.Equal(t, 1, cache.sets)
}

func TestExecute_Idempotent(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	schedRepo := &fakeScheduleRepo{
		hours:    weekHours("09:00", "17:00"),
		settings: defaultTestSettings(),
		blocks: []*domain.TimeBlock{
			{StartsAt: date.Add(13 * time.Hour), EndsAt: date.Add(14 * time.Hour), Type: domain.BlockBreak},
		},
	}

	// Без кеша, чтобы оба вызова считали сетку заново
	req := Request{Date: date, ServiceDurationMinutes: 60}
	uc1 := newTestUseCase(&fakeAppointmentRepo{}, schedRepo, newFakeCache(), now)
	uc2 := newTestUseCase(&fakeAppointmentRepo{}, schedRepo, newFakeCache(), now)

	first, err := uc1.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := uc2.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Slots, second.Slots)
}
