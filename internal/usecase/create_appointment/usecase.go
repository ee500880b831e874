package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m1rra/MassageBookingService/internal/domain"
	scheduleRepo "github.com/m1rra/MassageBookingService/internal/infra/storage/schedule"
	catalogClient "github.com/m1rra/MassageBookingService/internal/integrations/catalogservice"
	clientClient "github.com/m1rra/MassageBookingService/internal/integrations/clientservice"
)

// UseCase use case для создания записи на сеанс
type UseCase struct {
	appointmentRepo AppointmentRepository
	scheduleRepo    ScheduleRepository
	catalogClient   CatalogServiceClient
	clientClient    ClientServiceClient
	cache           CacheInvalidator
	txManager       TransactionManager
	timeProvider    TimeProvider
	location        *time.Location
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	catalogClient CatalogServiceClient,
	clientClient ClientServiceClient,
	cache CacheInvalidator,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		catalogClient:   catalogClient,
		clientClient:    clientClient,
		cache:           cache,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		location:        location,
		logger:          logger,
	}
}

// Execute выполняет use case создания записи
// Использует сериализуемую транзакцию для предотвращения гонки данных:
// две параллельные попытки занять одно время не могут пройти обе
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: client=%d, service=%d, date=%s, time=%s",
		req.ClientID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее время в таймзоне студии
	now := uc.timeProvider.Now().In(uc.location)
	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, uc.location)

	// 3. Получаем услугу из каталога (длительность, цена, название)
	service, err := uc.catalogClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("CreateAppointment: service id=%d is not active", req.ServiceID)
		return nil, ErrServiceInactive
	}

	// 4. Получаем профиль клиента с graceful degradation: при недоступности
	// сервиса профилей запись создается без денормализованных имени и телефона
	var clientName, clientPhone *string
	profile, err := uc.clientClient.GetProfileWithGracefulDegradation(ctx, req.ClientID)
	if err != nil && !errors.Is(err, clientClient.ErrServiceDegraded) && !errors.Is(err, clientClient.ErrProfileNotFound) {
		uc.logger.Error("CreateAppointment: failed to get client profile id=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: failed to get client profile: %v", ErrInternal, err)
	}
	if profile != nil {
		clientName = &profile.Name
		clientPhone = &profile.Phone
	}

	// Переменная для хранения результата
	var result *domain.Appointment

	// 5. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Настройки бронирования (дефолтные, если не заданы)
		settings, err := uc.scheduleRepo.GetSettings(txCtx)
		if err != nil {
			if !errors.Is(err, scheduleRepo.ErrSettingsNotFound) {
				uc.logger.Error("CreateAppointment: failed to get settings: %v", err)
				return fmt.Errorf("%w: failed to get settings: %v", ErrInternal, err)
			}
			settings = domain.DefaultSettings()
		}

		// 5.2. Валидация даты с учетом горизонта бронирования
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.location)
		if err := validateDate(date, today, settings); err != nil {
			uc.logger.Warn("CreateAppointment: date validation failed: %v", err)
			return err
		}

		// 5.3. Рабочие часы на день недели
		hours, err := uc.getBusinessHoursForDay(txCtx, date.Weekday())
		if err != nil {
			return err
		}
		if hours == nil || !hours.IsOpen() {
			uc.logger.Warn("CreateAppointment: studio is closed on %s", date.Format(domain.DateFormat))
			return ErrStudioClosed
		}

		// 5.4. Сеанс должен целиком помещаться в рабочие часы
		startMin := req.StartTime.Minutes()
		if err := validateWithinBusinessHours(hours, startMin, service.DurationMinutes); err != nil {
			uc.logger.Warn("CreateAppointment: business hours validation failed: %v", err)
			return err
		}

		// 5.5. Минимальное время уведомления
		start := req.StartTime.OnDate(date, uc.location)
		end := start.Add(time.Duration(service.DurationMinutes) * time.Minute)
		if err := validateNotice(start, now, settings.MinimumNoticeHours); err != nil {
			uc.logger.Warn("CreateAppointment: notice validation failed: %v", err)
			return err
		}

		// 5.6. Активные записи дня с блокировкой (FOR UPDATE)
		appointments, err := uc.appointmentRepo.GetWithFilter(txCtx, domain.ScheduleFilter{
			StartDate: &date,
			EndDate:   &date,
		})
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		// 5.7. Блокировки времени, пересекающие день
		blocks, err := uc.scheduleRepo.GetTimeBlocks(txCtx, date, date.AddDate(0, 0, 1))
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get time blocks: %v", err)
			return fmt.Errorf("%w: failed to get time blocks: %v", ErrInternal, err)
		}

		// 5.8. Проверяем доступность времени
		if err := findConflict(start, end, appointments, blocks, uc.location); err != nil {
			uc.logger.Warn("CreateAppointment: %v", err)
			return err
		}

		// 5.9. Создаем запись с денормализацией данных услуги и клиента
		appointment := &domain.Appointment{
			ClientID:        req.ClientID,
			ServiceID:       req.ServiceID,
			AppointmentDate: date,
			StartTime:       req.StartTime,
			DurationMinutes: service.DurationMinutes,
			Status:          domain.StatusConfirmed,
			ServiceName:     service.Name,
			ServicePrice:    getServicePrice(service),
			ClientName:      clientName,
			ClientPhone:     clientPhone,
			Notes:           req.Notes,
		}

		created, err := uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 6. Инвалидируем кеш доступности на дату записи
	uc.cache.InvalidateDate(ctx, date)

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d", result.ID)

	return &Response{
		ID:              result.ID,
		ClientID:        result.ClientID,
		ServiceID:       result.ServiceID,
		AppointmentDate: result.AppointmentDate,
		StartTime:       result.StartTime,
		DurationMinutes: result.DurationMinutes,
		Status:          string(result.Status),
		ServiceName:     result.ServiceName,
		ServicePrice:    result.ServicePrice,
		ClientName:      result.ClientName,
		ClientPhone:     result.ClientPhone,
		Notes:           result.Notes,
		CreatedAt:       result.CreatedAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}

// getBusinessHoursForDay возвращает рабочие часы для дня недели
func (uc *UseCase) getBusinessHoursForDay(ctx context.Context, weekday time.Weekday) (*domain.BusinessHours, error) {
	allHours, err := uc.scheduleRepo.GetBusinessHours(ctx)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to get business hours: %v", err)
		return nil, fmt.Errorf("%w: failed to get business hours: %v", ErrInternal, err)
	}

	for _, h := range allHours {
		if h.DayOfWeek == int(weekday) {
			return h, nil
		}
	}
	return nil, nil
}

// getServicePrice извлекает цену из услуги
// Если цена не указана (nil), возвращает 0.0
func getServicePrice(service *catalogClient.Service) float64 {
	if service.Price == nil {
		return 0.0
	}
	return *service.Price
}
