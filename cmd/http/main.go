package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediconnect-service/internal/app/config"
	"mediconnect-service/internal/app/contracts"
	"mediconnect-service/internal/app/delivery/http/controllers"
	"mediconnect-service/internal/app/delivery/http/middlewares"
	"mediconnect-service/internal/app/delivery/http/routers"
	"mediconnect-service/internal/app/drivers/database"
	"mediconnect-service/internal/app/drivers/logger"
	"mediconnect-service/internal/app/drivers/messaging"
	"mediconnect-service/internal/app/models"
	"mediconnect-service/internal/app/services/calendarsync"
	"mediconnect-service/internal/app/services/providers/apple"
	"mediconnect-service/internal/app/services/providers/google"
	"mediconnect-service/internal/app/services/schedules"
	"mediconnect-service/internal/app/services/shared/locker"
	"mediconnect-service/internal/app/services/shared/notifier"
	"mediconnect-service/internal/app/services/shared/redis"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	bootstrapLog := logger.NewLogrusLogger(internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		bootstrapLog.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)
	defer zapLogger.Sync()

	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		RabbitMQ:       rabbitMQ,
		Logger:         zapLogger,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}

	if err := bootstrapTheApp(bootstrap); err != nil {
		bootstrapLog.Fatalf("Bootstrap failed: %v", err)
	}

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			bootstrapLog.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	logrus.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		bootstrapLog.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		bootstrapLog.Printf("Error closing connections: %v", err)
	}

	bootstrapLog.Println("Server exiting")
}

func bootstrapTheApp(bootstrap *config.Bootstrap) error {
	// Redis
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockerService := locker.NewLockService(redisRepository, bootstrap.Logger)

	// Notifier
	syncNotifier, err := notifier.NewSyncNotifier(bootstrap.RabbitMQ, bootstrap.InternalConfig, bootstrap.Logger)
	if err != nil {
		return err
	}

	// Middlewares
	middlewares := middlewares.NewMiddlewares(bootstrap.Logger)

	// Provider clients
	providerClients := map[models.SyncProvider]contracts.CalendarProviderClient{
		models.ProviderGoogle: google.NewGoogleCalendarClient(bootstrap.InternalConfig, bootstrap.Logger),
		models.ProviderApple:  apple.NewAppleCalDAVClient(bootstrap.InternalConfig, bootstrap.Logger),
	}

	// Repositories
	scheduleMongoRepository := schedules.NewScheduleMongoRepository(
		bootstrap.MongoDB,
		bootstrap.DriverConfig.MongoDB.DbName,
	)
	connectionMongoRepository := calendarsync.NewConnectionMongoRepository(
		bootstrap.MongoDB,
		bootstrap.DriverConfig.MongoDB.DbName,
	)
	syncedEventMongoRepository := calendarsync.NewSyncedEventMongoRepository(
		bootstrap.MongoDB,
		bootstrap.DriverConfig.MongoDB.DbName,
	)

	// Calendar sync
	calendarSyncUsecase := calendarsync.NewCalendarSyncUsecase(
		scheduleMongoRepository,
		connectionMongoRepository,
		syncedEventMongoRepository,
		providerClients,
		lockerService,
		syncNotifier,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)
	syncScheduler := calendarsync.NewSyncScheduler(calendarSyncUsecase, bootstrap.InternalConfig, bootstrap.Logger)
	bootstrap.SchedulerStop = syncScheduler.StopAll

	calendarSyncController := controllers.NewCalendarSyncController(calendarSyncUsecase, syncScheduler, bootstrap.Logger)

	routers.SetupRoutes(bootstrap.Router, bootstrap.InternalConfig, middlewares, calendarSyncController)
	return nil
}
