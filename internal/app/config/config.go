package config

import (
	"mediconnect-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "mediconnect"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "defaultPassword"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Name:                      utils.GetEnvString("APP_NAME", "mediconnect-service"),
			Env:                       utils.GetEnvString("APP_ENV", "development"),
			Port:                      utils.GetEnvString("APP_PORT", ":8080"),
			Version:                   utils.GetEnvString("APP_VERSION", "v1"),
			Address:                   utils.GetEnvString("APP_ADDRESS", "localhost"),
			Timezone:                  utils.GetEnvString("APP_TIMEZONE", "America/Mexico_City"),
			EndpointPrefix:            utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			MaxRequests:               utils.GetEnvInt("APP_MAX_REQUEST", 10),
			ShutdownTimeout:           utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			RabbitMQNotificationQueue: utils.GetEnvString("APP_RABBITMQ_NOTIFICATION_QUEUE", "calendar-sync-notifications"),
		},
		Google: Google{
			ClientID:     utils.GetEnvString("GOOGLE_CLIENT_ID", ""),
			ClientSecret: utils.GetEnvString("GOOGLE_CLIENT_SECRET", ""),
			TokenURL:     utils.GetEnvString("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			CalendarURL:  utils.GetEnvString("GOOGLE_CALENDAR_URL", "https://www.googleapis.com/calendar/v3"),
		},
		Apple: Apple{
			CalDAVBaseURL: utils.GetEnvString("APPLE_CALDAV_BASE_URL", "https://caldav.icloud.com"),
		},
		Sync: Sync{
			IntervalInMinutes:   utils.GetEnvInt("SYNC_INTERVAL_IN_MINUTES", 5),
			HorizonInDays:       utils.GetEnvInt("SYNC_HORIZON_IN_DAYS", 730),
			WriteBackByDefault:  utils.GetEnvBool("SYNC_WRITE_BACK_BY_DEFAULT", true),
			ProviderMaxRPS:      utils.GetEnvInt("SYNC_PROVIDER_MAX_RPS", 5),
			ProviderTimeoutSecs: utils.GetEnvInt("SYNC_PROVIDER_TIMEOUT_IN_SECONDS", 30),
		},
	}
}
