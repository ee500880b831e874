package create_appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1rra/MassageBookingService/internal/domain"
	"github.com/m1rra/MassageBookingService/internal/integrations/catalogservice"
	"github.com/m1rra/MassageBookingService/internal/integrations/clientservice"
	"github.com/m1rra/MassageBookingService/pkg/ptr"
	"github.com/m1rra/MassageBookingService/pkg/types"
)

// --- фейки ---

// fakeAppointmentRepo хранит записи в памяти; GetWithFilter возвращает все
// сохраненные записи, имитируя чтение дня под блокировкой
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments []*domain.Appointment
	nextID       int64
	createErr    error
	getErr       error
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	created := *appointment
	created.ID = f.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.appointments = append(f.appointments, &created)
	return &created, nil
}

func (f *fakeAppointmentRepo) GetWithFilter(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]*domain.Appointment, len(f.appointments))
	copy(out, f.appointments)
	return out, nil
}

type fakeScheduleRepo struct {
	hours    []*domain.BusinessHours
	blocks   []*domain.TimeBlock
	settings *domain.AppointmentSettings
}

func (f *fakeScheduleRepo) GetBusinessHours(ctx context.Context) ([]*domain.BusinessHours, error) {
	return f.hours, nil
}

func (f *fakeScheduleRepo) GetTimeBlocks(ctx context.Context, from, to time.Time) ([]*domain.TimeBlock, error) {
	return f.blocks, nil
}

func (f *fakeScheduleRepo) GetSettings(ctx context.Context) (*domain.AppointmentSettings, error) {
	return f.settings, nil
}

type fakeCatalogClient struct {
	service *catalogservice.Service
	err     error
}

func (f *fakeCatalogClient) GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error) {
	return f.service, f.err
}

type fakeClientClient struct {
	profile *clientservice.Profile
	err     error
}

func (f *fakeClientClient) GetProfileWithGracefulDegradation(ctx context.Context, clientID int64) (*clientservice.Profile, error) {
	return f.profile, f.err
}

type fakeCacheInvalidator struct {
	invalidated []time.Time
}

func (f *fakeCacheInvalidator) InvalidateDate(ctx context.Context, date time.Time) {
	f.invalidated = append(f.invalidated, date)
}

// fakeTxManager выполняет функцию без реальной транзакции
type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// lockingTxManager сериализует транзакции мьютексом: проверка занятости
// слота и вставка выполняются как единая критическая секция, как это
// делает serializable-транзакция с FOR UPDATE на записях дня
type lockingTxManager struct {
	mu sync.Mutex
}

func (m *lockingTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
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

func testService() *catalogservice.Service {
	return &catalogservice.Service{
		ID:              10,
		Name:            "Классический массаж",
		DurationMinutes: 60,
		Price:           ptr.Ptr(3500.0),
		IsActive:        true,
	}
}

type testEnv struct {
	uc        *UseCase
	apptRepo  *fakeAppointmentRepo
	schedRepo *fakeScheduleRepo
	cache     *fakeCacheInvalidator
}

func newTestEnv(now time.Time) *testEnv {
	apptRepo := &fakeAppointmentRepo{}
	schedRepo := &fakeScheduleRepo{
		hours: weekHours("09:00", "17:00"),
		settings: &domain.AppointmentSettings{
			MinimumNoticeHours:         0,
			AdvanceBookingDays:         30,
			DefaultSlotDurationMinutes: 30,
		},
	}
	cache := &fakeCacheInvalidator{}

	uc := NewUseCase(
		apptRepo,
		schedRepo,
		&fakeCatalogClient{service: testService()},
		&fakeClientClient{profile: &clientservice.Profile{ID: 1, Name: "Анна", Phone: "+79990001122"}},
		cache,
		fakeTxManager{},
		time.UTC,
		noopLogger{},
	)
	uc.timeProvider = &fakeTimeProvider{now: now}

	return &testEnv{uc: uc, apptRepo: apptRepo, schedRepo: schedRepo, cache: cache}
}

func validRequest(date time.Time) *Request {
	return &Request{
		ClientID:  1,
		ServiceID: 10,
		Date:      date,
		StartTime: types.TimeString("10:00"),
	}
}

// --- тесты ---

func TestExecute_Success(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)
	resp, err := env.uc.Execute(context.Background(), validRequest(date))

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, "Классический массаж", resp.ServiceName)
	assert.Equal(t, 3500.0, resp.ServicePrice)
	require.NotNil(t, resp.ClientName)
	assert.Equal(t, "Анна", *resp.ClientName)

	// Кеш доступности на дату записи инвалидирован
	require.Len(t, env.cache.invalidated, 1)
	assert.Equal(t, date, env.cache.invalidated[0])
}

func TestExecute_InvalidInput(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"zero client", func(r *Request) { r.ClientID = 0 }},
		{"zero service", func(r *Request) { r.ServiceID = 0 }},
		{"zero date", func(r *Request) { r.Date = time.Time{} }},
		{"empty start time", func(r *Request) { r.StartTime = "" }},
		{"malformed start time", func(r *Request) { r.StartTime = "25:99" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(date)
			tt.mutate(req)

			_, err := env.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_ServiceNotFound(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)
	env.uc.catalogClient = &fakeCatalogClient{err: catalogservice.ErrServiceNotFound}

	_, err := env.uc.Execute(context.Background(), validRequest(date))
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_ServiceInactive(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	service := testService()
	service.IsActive = false

	env := newTestEnv(now)
	env.uc.catalogClient = &fakeCatalogClient{service: service}

	_, err := env.uc.Execute(context.Background(), validRequest(date))
	assert.ErrorIs(t, err, ErrServiceInactive)
}

func TestExecute_ProfileDegradationCreatesWithoutProfile(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)
	env.uc.clientClient = &fakeClientClient{err: clientservice.ErrServiceDegraded}

	resp, err := env.uc.Execute(context.Background(), validRequest(date))

	require.NoError(t, err)
	assert.Nil(t, resp.ClientName)
	assert.Nil(t, resp.ClientPhone)
}

func TestExecute_PastDate(t *testing.T) {
	now := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)
	_, err := env.uc.Execute(context.Background(), validRequest(yesterday))
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_DateBeyondAdvanceWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	farFuture := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)
	env.schedRepo.settings.AdvanceBookingDays = 14

	_, err := env.uc.Execute(context.Background(), validRequest(farFuture))
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}

func TestExecute_ZeroAdvanceWindowRejectsTomorrow(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)
	env.schedRepo.settings.AdvanceBookingDays = 0
	env.schedRepo.settings.MinimumNoticeHours = 0

	// Окно [сегодня, сегодня + 0 дней]: завтра уже за горизонтом
	_, err := env.uc.Execute(context.Background(), validRequest(tomorrow))
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)

	// Сегодняшняя дата внутри окна
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err = env.uc.Execute(context.Background(), validRequest(today))
	require.NoError(t, err)
}

func TestExecute_StudioClosed(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	// 2026-09-06 - воскресенье
	sunday := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)
	env.schedRepo.hours[0].IsActive = false

	_, err := env.uc.Execute(context.Background(), validRequest(sunday))
	assert.ErrorIs(t, err, ErrStudioClosed)
}

func TestExecute_OutsideBusinessHours(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)

	tests := []struct {
		name      string
		startTime types.TimeString
	}{
		{"before open", "08:00"},
		{"runs past close", "16:30"},
		{"at close", "17:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(date)
			req.StartTime = tt.startTime

			_, err := env.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrOutsideBusinessHours)
		})
	}
}

func TestExecute_MinimumNotice(t *testing.T) {
	// Сейчас 20:00, уведомление 24 часа: завтрашние 10:00 - слишком рано,
	// проверка по полным меткам времени, а не по календарному дню
	now := time.Date(2026, 9, 6, 20, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)
	env.schedRepo.settings.MinimumNoticeHours = 24

	_, err := env.uc.Execute(context.Background(), validRequest(tomorrow))
	assert.ErrorIs(t, err, ErrTooLateToBook)

	// Послезавтрашние 10:00 дают 38 часов и проходят
	dayAfter := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	_, err = env.uc.Execute(context.Background(), validRequest(dayAfter))
	assert.NoError(t, err)
}

func TestExecute_ConflictWithExistingAppointment(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)

	// Первая запись занимает 10:00-11:00
	_, err := env.uc.Execute(context.Background(), validRequest(date))
	require.NoError(t, err)

	// Пересекающаяся попытка (10:30-11:30) отклоняется
	req := validRequest(date)
	req.ClientID = 2
	req.StartTime = types.TimeString("10:30")
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	// Касание границ (11:00-12:00) конфликтом не считается
	req = validRequest(date)
	req.ClientID = 3
	req.StartTime = types.TimeString("11:00")
	_, err = env.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_SameSlotBookedOnce(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)

	// Две последовательные попытки занять одно и то же время через общий
	// репозиторий: проходит ровно одна
	first, err := env.uc.Execute(context.Background(), validRequest(date))
	require.NoError(t, err)

	req := validRequest(date)
	req.ClientID = 2
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	assert.Len(t, env.apptRepo.appointments, 1)
	assert.Equal(t, first.ID, env.apptRepo.appointments[0].ID)
}

func TestExecute_ConcurrentSameSlotBookedOnce(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)
	env.uc.txManager = &lockingTxManager{}

	// Две конкурентные попытки занять одно и то же время
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := validRequest(date)
			req.ClientID = int64(i + 1)
			_, errs[i] = env.uc.Execute(context.Background(), req)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrSlotNotAvailable)
		}
	}

	// Ровно одна проходит, вторая видит конфликт под блокировкой
	assert.Equal(t, 1, succeeded)
	assert.Len(t, env.apptRepo.appointments, 1)
}

func TestExecute_CancelledAppointmentDoesNotBlock(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)
	env.apptRepo.appointments = []*domain.Appointment{
		{
			ID:              99,
			AppointmentDate: date,
			StartTime:       types.TimeString("10:00"),
			DurationMinutes: 60,
			Status:          domain.StatusCancelledByClient,
		},
	}
	env.apptRepo.nextID = 99

	_, err := env.uc.Execute(context.Background(), validRequest(date))
	assert.NoError(t, err)
}

func TestExecute_ConflictWithTimeBlock(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)
	env.schedRepo.blocks = []*domain.TimeBlock{
		{
			ID:       5,
			StartsAt: date.Add(10*time.Hour + 30*time.Minute),
			EndsAt:   date.Add(12 * time.Hour),
			Type:     domain.BlockPersonal,
		},
	}

	_, err := env.uc.Execute(context.Background(), validRequest(date))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_RepositoryErrorWrapped(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(now)
	env.apptRepo.getErr = errors.New("connection refused")

	_, err := env.uc.Execute(context.Background(), validRequest(date))
	assert.ErrorIs(t, err, ErrInternal)
}
