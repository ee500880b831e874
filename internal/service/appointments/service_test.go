package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1rra/MassageBookingService/internal/domain"
	appointmentRepo "github.com/m1rra/MassageBookingService/internal/infra/storage/appointment"
	"github.com/m1rra/MassageBookingService/internal/service/appointments/models"
	"github.com/m1rra/MassageBookingService/pkg/types"
)

const (
	clientID = int64(100)
	adminID  = int64(900)
	otherID  = int64(200)
)

type fakeRepo struct {
	appointments map[int64]*domain.Appointment
	cancelled    map[int64]domain.AppointmentStatus
	lastFilter   domain.ScheduleFilter
}

func newFakeRepo(appointments ...*domain.Appointment) *fakeRepo {
	f := &fakeRepo{
		appointments: make(map[int64]*domain.Appointment),
		cancelled:    make(map[int64]domain.AppointmentStatus),
	}
	for _, a := range appointments {
		f.appointments[a.ID] = a
	}
	return f
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return a, nil
}

func (f *fakeRepo) GetWithFilter(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Appointment, error) {
	f.lastFilter = filter
	out := make([]*domain.Appointment, 0, len(f.appointments))
	for _, a := range f.appointments {
		if filter.ClientID != nil && a.ClientID != *filter.ClientID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepo) Cancel(ctx context.Context, id int64, status domain.AppointmentStatus, reason string) error {
	if _, ok := f.appointments[id]; !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	f.cancelled[id] = status
	return nil
}

type fakeCache struct {
	invalidated []time.Time
}

func (f *fakeCache) InvalidateDate(ctx context.Context, date time.Time) {
	f.invalidated = append(f.invalidated, date)
}

type fakeAdmins map[int64]bool

func (f fakeAdmins) IsAdmin(userID int64) bool {
	return f[userID]
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func testAppointment(id int64, status domain.AppointmentStatus) *domain.Appointment {
	return &domain.Appointment{
		ID:              id,
		ClientID:        clientID,
		ServiceID:       10,
		AppointmentDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartTime:       types.TimeString("10:00"),
		DurationMinutes: 60,
		Status:          status,
		ServiceName:     "Классический массаж",
		ServicePrice:    3500,
	}
}

func newTestService(repo *fakeRepo) (*Service, *fakeCache) {
	cache := &fakeCache{}
	svc := NewService(repo, cache, fakeAdmins{adminID: true}, noopLogger{})
	return svc, cache
}

func TestGetByID_Owner(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(testAppointment(1, domain.StatusConfirmed)))

	resp, err := svc.GetByID(context.Background(), 1, clientID)

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "2026-09-07", resp.AppointmentDate)
	assert.Equal(t, "10:00", resp.StartTime)
}

func TestGetByID_Admin(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(testAppointment(1, domain.StatusConfirmed)))

	_, err := svc.GetByID(context.Background(), 1, adminID)
	assert.NoError(t, err)
}

func TestGetByID_Stranger(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(testAppointment(1, domain.StatusConfirmed)))

	_, err := svc.GetByID(context.Background(), 1, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newTestService(newFakeRepo())

	_, err := svc.GetByID(context.Background(), 42, clientID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestGetClientAppointments_OwnHistory(t *testing.T) {
	repo := newFakeRepo(
		testAppointment(1, domain.StatusConfirmed),
		testAppointment(2, domain.StatusCancelledByClient),
	)
	svc, _ := newTestService(repo)

	resp, err := svc.GetClientAppointments(context.Background(), &models.GetClientAppointmentsRequest{
		UserID:   clientID,
		ClientID: clientID,
	})

	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 2)
	// История включает отмененные записи
	assert.True(t, repo.lastFilter.IncludeInactive)
}

func TestGetClientAppointments_ForeignHistoryDenied(t *testing.T) {
	svc, _ := newTestService(newFakeRepo())

	_, err := svc.GetClientAppointments(context.Background(), &models.GetClientAppointmentsRequest{
		UserID:   otherID,
		ClientID: clientID,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetClientAppointments_InvalidStatus(t *testing.T) {
	svc, _ := newTestService(newFakeRepo())
	badStatus := "bogus"

	_, err := svc.GetClientAppointments(context.Background(), &models.GetClientAppointmentsRequest{
		UserID:   clientID,
		ClientID: clientID,
		Status:   &badStatus,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetSchedule_AdminOnly(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(testAppointment(1, domain.StatusConfirmed)))

	_, err := svc.GetSchedule(context.Background(), &models.GetScheduleRequest{UserID: clientID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := svc.GetSchedule(context.Background(), &models.GetScheduleRequest{UserID: adminID})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)
}

func TestCancel_ByOwner(t *testing.T) {
	repo := newFakeRepo(testAppointment(1, domain.StatusConfirmed))
	svc, cache := newTestService(repo)

	err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{
		UserID:             clientID,
		CancellationReason: "не смогу прийти",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelledByClient, repo.cancelled[1])
	require.Len(t, cache.invalidated, 1)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), cache.invalidated[0])
}

func TestCancel_ByAdmin(t *testing.T) {
	repo := newFakeRepo(testAppointment(1, domain.StatusPending))
	svc, _ := newTestService(repo)

	err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{UserID: adminID})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelledByStudio, repo.cancelled[1])
}

func TestCancel_ByStrangerDenied(t *testing.T) {
	repo := newFakeRepo(testAppointment(1, domain.StatusConfirmed))
	svc, cache := newTestService(repo)

	err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{UserID: otherID})

	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, repo.cancelled)
	assert.Empty(t, cache.invalidated)
}

func TestCancel_AlreadyCompleted(t *testing.T) {
	repo := newFakeRepo(testAppointment(1, domain.StatusCompleted))
	svc, _ := newTestService(repo)

	err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{UserID: clientID})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	repo := newFakeRepo(testAppointment(1, domain.StatusCancelledByClient))
	svc, _ := newTestService(repo)

	err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{UserID: clientID})
	assert.ErrorIs(t, err, ErrCannotCancel)
}
