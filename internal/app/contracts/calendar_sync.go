package contracts

import (
	"context"
	"mediconnect-service/internal/app/models"
	"mediconnect-service/internal/pkg/dto/requests"
	"mediconnect-service/internal/pkg/dto/responses"
)

// CalendarSyncUsecase is the synchronization engine's entry surface.
type CalendarSyncUsecase interface {
	// Sync runs one full pass for the user's active connection: fetch,
	// categorize, map, write back, record bookkeeping.
	Sync(ctx context.Context, userID string, request *requests.Sync) (*responses.Sync, error)

	// ProcessExternalEvents maps already-categorized events onto
	// templates and exceptions. Exposed separately for callers that
	// fetch on their own.
	ProcessExternalEvents(ctx context.Context, userID string, connection *models.CalendarConnection, events *models.CategorizedEvents) (*models.SyncResult, error)

	ResolveConflicts(ctx context.Context, userID string, resolutions []requests.ConflictResolution) (*responses.ResolveConflicts, error)
	ClassifyRecurrentEvent(ctx context.Context, userID, externalEventID string, classification models.BlockType) error
	TrackPreExistingEvents(ctx context.Context, userID string) (int, error)
	CleanupSyncedEvents(ctx context.Context, userID, connectionID string) (int, error)

	GetConnectionStatus(ctx context.Context, userID string) (*responses.ConnectionStatus, error)
	UpdateSyncSettings(ctx context.Context, userID string, request *requests.UpdateSyncSettings) (*models.SyncSettings, error)
	Disconnect(ctx context.Context, userID string) (*responses.Disconnect, error)
	SyncHistory(ctx context.Context, userID string) ([]responses.SyncHistoryEntry, error)
}

// SyncScheduler owns the periodic auto-sync tasks, one per user.
type SyncScheduler interface {
	Start(userID, connectionID string) error
	Stop(userID string)
	StopAll()
}

// SyncNotifier publishes sync outcomes for users who opted into
// notifications.
type SyncNotifier interface {
	PublishSyncCompleted(ctx context.Context, connection *models.CalendarConnection, result *models.SyncResult) error
}
