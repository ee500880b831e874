package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelAppointmentHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/create_appointment"
	createTimeBlockHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/create_time_block"
	deleteTimeBlockHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/delete_time_block"
	getAppointmentHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/get_available_slots"
	getBusinessHoursHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/get_business_hours"
	getClientAppointmentsHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/get_client_appointments"
	getScheduleHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/get_schedule"
	getSettingsHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/get_settings"
	getTimeBlocksHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/get_time_blocks"
	updateBusinessHoursHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/update_business_hours"
	updateSettingsHandler "github.com/m1rra/MassageBookingService/internal/api/handlers/update_settings"
	"github.com/m1rra/MassageBookingService/internal/api/middleware"
	"github.com/m1rra/MassageBookingService/internal/config"
	"github.com/m1rra/MassageBookingService/internal/infra/cache"
	appointmentRepo "github.com/m1rra/MassageBookingService/internal/infra/storage/appointment"
	scheduleRepo "github.com/m1rra/MassageBookingService/internal/infra/storage/schedule"
	catalogServiceClient "github.com/m1rra/MassageBookingService/internal/integrations/catalogservice"
	clientServiceClient "github.com/m1rra/MassageBookingService/internal/integrations/clientservice"
	appointmentsService "github.com/m1rra/MassageBookingService/internal/service/appointments"
	scheduleService "github.com/m1rra/MassageBookingService/internal/service/schedule"
	createAppointmentUC "github.com/m1rra/MassageBookingService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m1rra/MassageBookingService/internal/usecase/get_available_slots"
	"github.com/m1rra/MassageBookingService/pkg/dbmetrics"
	"github.com/m1rra/MassageBookingService/pkg/logger"
	"github.com/m1rra/MassageBookingService/pkg/metrics"
	"github.com/m1rra/MassageBookingService/pkg/simpletxmanager"
	"github.com/m1rra/MassageBookingService/pkg/txmanager"
)

// AvailabilityCache объединяет операции чтения и инвалидации кеша доступности
type AvailabilityCache interface {
	getAvailableSlotsUC.AvailabilityCache
	createAppointmentUC.CacheInvalidator
	scheduleService.CacheInvalidator
}

// TxManager объединяет уровни изоляции, используемые сервисами и usecases
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting MassageBookingService...")
	log.Info("Configuration loaded from config.toml")

	// Часовой пояс студии: все рабочие часы и даты записи считаются в нём
	location, err := cfg.Location()
	if err != nil {
		log.Fatal("Failed to load business timezone: %v", err)
	}
	log.Info("Business timezone: %s", cfg.Business.Timezone)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Кеш доступности: redis или заглушка
	var availabilityCache AvailabilityCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		defer redisClient.Close()

		availabilityCache = cache.New(
			redisClient,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second,
			log,
		)
		log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTLSeconds)
	} else {
		availabilityCache = cache.NewNoop()
		log.Info("Availability cache disabled, slots recomputed per request")
	}

	// Инициализируем интеграционных клиентов
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	clientClient := clientServiceClient.NewClient(
		cfg.ClientService.URL,
		time.Duration(cfg.ClientService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CatalogService=%s timeout=%ds, ClientService=%s timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout, cfg.ClientService.URL, cfg.ClientService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		scheduleRepository    *scheduleRepo.Repository
		txMgr                 TxManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Администраторы расписания задаются конфигурацией
	admins := config.NewAdminList(cfg.Business.AdminIDs)
	log.Info("Admin list loaded: %d user(s)", len(cfg.Business.AdminIDs))

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		availabilityCache,
		admins,
		log,
	)
	scheduleSvc := scheduleService.NewService(
		scheduleRepository,
		availabilityCache,
		txMgr,
		admins,
		log,
	)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		scheduleRepository,
		catalogClient,
		clientClient,
		availabilityCache,
		txMgr,
		location,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		scheduleRepository,
		availabilityCache,
		&getAvailableSlotsUC.RealTimeProvider{},
		location,
		log,
	)

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	getClientAppointments := getClientAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getSchedule := getScheduleHandler.NewHandler(appointmentsSvc, log)
	getBusinessHours := getBusinessHoursHandler.NewHandler(scheduleSvc, log)
	updateBusinessHours := updateBusinessHoursHandler.NewHandler(scheduleSvc, log)
	getTimeBlocks := getTimeBlocksHandler.NewHandler(scheduleSvc, log)
	createTimeBlock := createTimeBlockHandler.NewHandler(scheduleSvc, log)
	deleteTimeBlock := deleteTimeBlockHandler.NewHandler(scheduleSvc, log)
	getSettings := getSettingsHandler.NewHandler(scheduleSvc, log)
	updateSettings := updateSettingsHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты на дату
	api.HandleFunc("/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Рабочие часы студии по дням недели
	api.HandleFunc("/business-hours", getBusinessHours.Handle).Methods(http.MethodGet)

	// Блокировки времени за период
	api.HandleFunc("/time-blocks", getTimeBlocks.Handle).Methods(http.MethodGet)

	// Настройки бронирования
	api.HandleFunc("/settings", getSettings.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	// Создание записи
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)

	// Получение записи по ID
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)

	// Отмена записи
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// История записей клиента
	protected.HandleFunc("/clients/{clientId}/appointments", getClientAppointments.Handle).Methods(http.MethodGet)

	// --- Управление расписанием (для администраторов) ---
	// Расписание студии за период
	protected.HandleFunc("/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// Обновление рабочих часов (полная неделя)
	protected.HandleFunc("/business-hours", updateBusinessHours.Handle).Methods(http.MethodPut)

	// Создание блокировки времени
	protected.HandleFunc("/time-blocks", createTimeBlock.Handle).Methods(http.MethodPost)

	// Удаление блокировки времени
	protected.HandleFunc("/time-blocks/{blockId}", deleteTimeBlock.Handle).Methods(http.MethodDelete)

	// Обновление настроек бронирования
	protected.HandleFunc("/settings", updateSettings.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
