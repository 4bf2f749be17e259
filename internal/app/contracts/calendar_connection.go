package contracts

import (
	"context"
	"mediconnect-service/internal/app/models"
)

// CalendarConnectionRepository is the connection/token store.
type CalendarConnectionRepository interface {
	FindActiveByUserID(ctx context.Context, userID string) (*models.CalendarConnection, error)
	FindByID(ctx context.Context, connectionID string) (*models.CalendarConnection, error)
	FindByUserAndProvider(ctx context.Context, userID string, provider models.SyncProvider) (*models.CalendarConnection, error)
	FindAllActive(ctx context.Context) ([]models.CalendarConnection, error)
	CreateConnection(ctx context.Context, connection *models.CalendarConnection) (string, error)
	UpdateConnection(ctx context.Context, connection *models.CalendarConnection) error
}

// SyncedEventRepository is the bookkeeping store linking external
// events to the internal entities they produced.
type SyncedEventRepository interface {
	FindByExternalAndLocal(ctx context.Context, userID, externalEventID, localEventID string) (*models.SyncedEvent, error)
	FindByUserAndExternalID(ctx context.Context, userID, externalEventID string) (*models.SyncedEvent, error)
	FindByConnection(ctx context.Context, userID, connectionID string) ([]models.SyncedEvent, error)
	FindByConnectionAndDirection(ctx context.Context, userID, connectionID string, direction models.SyncDirection) ([]models.SyncedEvent, error)
	FindCompletedByConnection(ctx context.Context, userID, connectionID string) ([]models.SyncedEvent, error)
	FindRecentByUserID(ctx context.Context, userID string, limit int) ([]models.SyncedEvent, error)
	CreateSyncedEvent(ctx context.Context, event *models.SyncedEvent) (string, error)
	UpdateSyncedEvent(ctx context.Context, event *models.SyncedEvent) error
	DeleteByID(ctx context.Context, syncedEventID string) error
}
