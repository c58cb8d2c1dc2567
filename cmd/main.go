package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SchedulingService/internal/api"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/gateway"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	shiftRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/shift"
	slotRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/mailer"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/assignments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/notifications"
	"github.com/m04kA/SMC-SchedulingService/internal/service/shifts"
	"github.com/m04kA/SMC-SchedulingService/internal/service/slots"
	bookAppointmentUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/book_appointment"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// appointmentStore все операции с записями, нужные сервисам
type appointmentStore interface {
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	ExistsActiveForVehicle(ctx context.Context, vehicleID int64, scheduledAt time.Time) (bool, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, startedAt, completedAt *time.Time) error
	AddEmployees(ctx context.Context, appointmentID int64, employeeIDs []int64) error
}

// catalogStore справочники: автомобили, услуги, центры, пользователи
type catalogStore interface {
	GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error)
	UpdateVehicleLastServiceDate(ctx context.Context, vehicleID int64, date time.Time) error
	GetOffering(ctx context.Context, id int64) (*domain.Offering, error)
	GetServiceCenter(ctx context.Context, id int64) (*domain.ServiceCenter, error)
	ListServiceCenters(ctx context.Context) ([]*domain.ServiceCenter, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetEmployeeCenter(ctx context.Context, employeeID int64) (*domain.EmployeeCenter, error)
	ListEmployeesByCenter(ctx context.Context, serviceCenterID int64) ([]*domain.User, error)
}

type txManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// storage хранилище, выбранное драйвером
type storage struct {
	appointments appointmentStore
	catalog      catalogStore
	slots        slots.SlotRepository
	shifts       shifts.ShiftRepository
	tx           txManager
	close        func()
}

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
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

	log.Info("Starting SMC-SchedulingService...")
	log.Info("Configuration loaded from %s (storage=%s)", *configPath, cfg.Storage.Driver)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	var store *storage
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store, err = openMemory(cfg, log)
	default:
		store, err = openPostgres(cfg, metricsCollector, stopMetricsCh, log)
	}
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Интеграции: уведомления и почта
	var notificationSink notifications.Notifier
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unreachable at %s, notifications will fail until it recovers: %v", cfg.Redis.Addr, err)
		}
		cancel()

		notificationSink = notifier.NewRedisNotifier(redisClient, cfg.Redis.HistorySize, log)
		log.Info("Redis notifier initialized (addr=%s, history=%d)", cfg.Redis.Addr, cfg.Redis.HistorySize)
	} else {
		notificationSink = notifier.NewStubNotifier(log)
		log.Info("Redis disabled, notifications are only logged")
	}

	var emailSender mailer.EmailSender = mailer.NewStubSender(log)
	if cfg.Email.Provider == config.EmailProviderSendGrid {
		emailSender = mailer.NewSendGridSender(mailer.SendGridConfig{
			APIKey:    cfg.Email.APIKey,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		}, log)
		log.Info("SendGrid email sender initialized (from=%s)", cfg.Email.FromEmail)
	}

	dispatcher := notifications.NewDispatcher(notifications.DispatcherConfig{
		QueueSize: cfg.Notifications.QueueSize,
		Workers:   cfg.Notifications.Workers,
		Timeout:   time.Duration(cfg.Notifications.TimeoutSeconds) * time.Second,
	}, log, metricsCollector)
	events := notifications.NewService(dispatcher, notificationSink, mailer.New(emailSender), store.catalog, log)

	// Инициализируем сервисы
	slotService := slots.NewService(store.slots, store.catalog, log)
	shiftService := shifts.NewService(store.shifts, log)
	appointmentService := appointments.NewService(store.appointments, store.catalog, slotService, events, store.tx, log)
	assignmentService := assignments.NewService(store.appointments, store.catalog, shiftService, events, store.tx, log)

	// Инициализируем use cases
	bookAppointment := bookAppointmentUC.NewUseCase(store.appointments, store.catalog, slotService, events, store.tx, log)

	// Досоздаём пулы боксов под текущую ёмкость центров
	syncCtx, cancelSync := context.WithTimeout(context.Background(), 30*time.Second)
	if err := slotService.SyncPools(syncCtx); err != nil {
		log.Fatal("Failed to sync slot pools: %v", err)
	}
	cancelSync()

	scheduling := gateway.New(
		bookAppointment,
		appointmentService,
		assignmentService,
		slotService,
		shiftService,
		metricsCollector,
		log,
	)

	// Настраиваем роутер
	routerOpts := api.Options{}
	if cfg.Metrics.Enabled {
		routerOpts.HTTPMetrics = metricsCollector
		routerOpts.MetricsHandler = promhttp.Handler()
		routerOpts.MetricsPath = cfg.Metrics.Path
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}
	router := api.NewRouter(scheduling, log, routerOpts)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся уведомлений, поставленных в очередь до остановки сервера
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn("Notification queue was not drained: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

func openPostgres(cfg *config.Config, metricsCollector *metrics.Metrics, stopMetricsCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if metricsCollector != nil {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.New(db, nil)
	}

	return &storage{
		appointments: appointmentRepo.NewRepository(wrappedDB),
		catalog:      catalogRepo.NewRepository(wrappedDB),
		slots:        slotRepo.NewRepository(wrappedDB),
		shifts:       shiftRepo.NewRepository(wrappedDB),
		tx:           txmanager.NewTransactionManager(wrappedDB, txmanager.WithMaxAttempts(cfg.Database.SerializableRetries)),
		close:        func() { db.Close() },
	}, nil
}

func openMemory(cfg *config.Config, log *logger.Logger) (*storage, error) {
	store := memory.NewStore()

	if cfg.Storage.SeedFile != "" {
		seed, err := memory.LoadSeed(cfg.Storage.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := store.Apply(seed); err != nil {
			return nil, err
		}
		log.Info("In-memory storage seeded from %s (centers=%d, users=%d, vehicles=%d, offerings=%d)",
			cfg.Storage.SeedFile, len(seed.ServiceCenters), len(seed.Users), len(seed.Vehicles), len(seed.Offerings))
	} else {
		log.Warn("In-memory storage started without seed file, catalog is empty")
	}

	return &storage{
		appointments: store.Appointments(),
		catalog:      store.Catalog(),
		slots:        store.Slots(),
		shifts:       store.Shifts(),
		tx:           store,
		close:        func() {},
	}, nil
}
