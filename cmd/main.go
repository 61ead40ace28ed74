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
	"github.com/robfig/cron/v3"

	cancelReservationHandler "github.com/m04kA/BRB-BookingService/internal/api/handlers/cancel_reservation"
	completeReservationHandler "github.com/m04kA/BRB-BookingService/internal/api/handlers/complete_reservation"
	confirmPaymentHandler "github.com/m04kA/BRB-BookingService/internal/api/handlers/confirm_payment"
	createReservationHandler "github.com/m04kA/BRB-BookingService/internal/api/handlers/create_reservation"
	getClientReservationsHandler "github.com/m04kA/BRB-BookingService/internal/api/handlers/get_client_reservations"
	getFreeSlotsHandler "github.com/m04kA/BRB-BookingService/internal/api/handlers/get_free_slots"
	getProviderScheduleHandler "github.com/m04kA/BRB-BookingService/internal/api/handlers/get_provider_schedule"
	getReservationHandler "github.com/m04kA/BRB-BookingService/internal/api/handlers/get_reservation"
	runSweepHandler "github.com/m04kA/BRB-BookingService/internal/api/handlers/run_sweep"
	updateProviderScheduleHandler "github.com/m04kA/BRB-BookingService/internal/api/handlers/update_provider_schedule"
	"github.com/m04kA/BRB-BookingService/internal/api/middleware"
	"github.com/m04kA/BRB-BookingService/internal/config"
	catalogRepo "github.com/m04kA/BRB-BookingService/internal/infra/storage/catalog"
	reservationRepo "github.com/m04kA/BRB-BookingService/internal/infra/storage/reservation"
	scheduleRepo "github.com/m04kA/BRB-BookingService/internal/infra/storage/schedule"
	notifyServiceClient "github.com/m04kA/BRB-BookingService/internal/integrations/notifyservice"
	reservationsService "github.com/m04kA/BRB-BookingService/internal/service/reservations"
	scheduleService "github.com/m04kA/BRB-BookingService/internal/service/schedule"
	createReservationUC "github.com/m04kA/BRB-BookingService/internal/usecase/create_reservation"
	expireReservationsUC "github.com/m04kA/BRB-BookingService/internal/usecase/expire_reservations"
	getFreeSlotsUC "github.com/m04kA/BRB-BookingService/internal/usecase/get_free_slots"
	"github.com/m04kA/BRB-BookingService/pkg/dbmetrics"
	"github.com/m04kA/BRB-BookingService/pkg/logger"
	"github.com/m04kA/BRB-BookingService/pkg/metrics"
	"github.com/m04kA/BRB-BookingService/pkg/simpletxmanager"
	"github.com/m04kA/BRB-BookingService/pkg/txmanager"
)

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

	log.Info("Starting BRB-BookingService...")
	log.Info("Configuration loaded from config.toml")

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

	// Инициализируем клиент сервиса уведомлений
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	log.Info("NotifyService client initialized (url=%s, timeout=%ds)",
		cfg.NotifyService.URL, cfg.NotifyService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		reservationRepository *reservationRepo.Repository
		scheduleRepository    *scheduleRepo.Repository
		catalogRepository     *catalogRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		reservationRepository = reservationRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		catalogRepository = catalogRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		notifyClient,
		&reservationsService.RealTimeProvider{},
		log,
	)
	scheduleSvc := scheduleService.NewService(
		scheduleRepository,
		txMgr,
		log,
	)

	// Инициализируем use cases
	paymentTTL := time.Duration(cfg.Booking.PaymentTTLMinutes) * time.Minute

	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		scheduleRepository,
		catalogRepository,
		notifyClient,
		txMgr,
		paymentTTL,
		log,
	)

	getFreeSlotsUseCase := getFreeSlotsUC.NewUseCase(
		reservationRepository,
		scheduleRepository,
		catalogRepository,
		log,
	)

	expireReservationsUseCase := expireReservationsUC.NewUseCase(
		reservationRepository,
		notifyClient,
		log,
	)

	// Инициализируем handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getFreeSlots := getFreeSlotsHandler.NewHandler(getFreeSlotsUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	confirmPayment := confirmPaymentHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	completeReservation := completeReservationHandler.NewHandler(reservationSvc, log)
	getClientReservations := getClientReservationsHandler.NewHandler(reservationSvc, log)
	getProviderSchedule := getProviderScheduleHandler.NewHandler(scheduleSvc, log)
	updateProviderSchedule := updateProviderScheduleHandler.NewHandler(scheduleSvc, log)
	runSweep := runSweepHandler.NewHandler(expireReservationsUseCase, log)

	// Периодический прогон просрочки неоплаченных броней
	var sweepCron *cron.Cron
	if cfg.Sweep.Enabled {
		sweepCron = cron.New()
		_, err := sweepCron.AddFunc(cfg.Sweep.Schedule, func() {
			expired, err := expireReservationsUseCase.Execute(context.Background())
			if cfg.Metrics.Enabled {
				metricsCollector.IncSweepRun(err)
				metricsCollector.AddReservationsExpired(expired)
			}
			if err != nil {
				log.Error("Expiration sweep failed after %d expirations: %v", expired, err)
				return
			}
			if expired > 0 {
				log.Info("Expiration sweep finished: %d reservations expired", expired)
			}
		})
		if err != nil {
			log.Fatal("Failed to schedule expiration sweep (%q): %v", cfg.Sweep.Schedule, err)
		}
		sweepCron.Start()
		log.Info("Expiration sweep scheduled: %s", cfg.Sweep.Schedule)
	}

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

	// Свободные слоты мастера на дату
	api.HandleFunc("/providers/{providerId}/free-slots",
		getFreeSlots.Handle).Methods(http.MethodGet)

	// Расписание мастера
	api.HandleFunc("/providers/{providerId}/schedule",
		getProviderSchedule.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)

	// Подтверждение оплаты
	protected.HandleFunc("/reservations/{reservationId}/confirm", confirmPayment.Handle).Methods(http.MethodPatch)

	// Отмена бронирования
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)

	// Завершение бронирования (действие администратора)
	protected.HandleFunc("/reservations/{reservationId}/complete", completeReservation.Handle).Methods(http.MethodPatch)

	// История бронирований клиента
	protected.HandleFunc("/clients/{clientId}/reservations", getClientReservations.Handle).Methods(http.MethodGet)

	// --- Администрирование ---
	// Обновление расписания мастера
	protected.HandleFunc("/providers/{providerId}/schedule", updateProviderSchedule.Handle).Methods(http.MethodPut)

	// Ручной запуск прогона просрочки
	protected.HandleFunc("/admin/sweep", runSweep.Handle).Methods(http.MethodPost)

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

	// Останавливаем периодический прогон просрочки
	if sweepCron != nil {
		cronCtx := sweepCron.Stop()
		<-cronCtx.Done()
		log.Info("Expiration sweep stopped")
	}

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
