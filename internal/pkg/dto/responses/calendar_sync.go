package responses

import (
	"mediconnect-service/internal/app/models"
	"time"
)

// Sync is the result summary of one synchronization pass.
type Sync struct {
	Success        bool                   `json:"success"`
	SyncedEvents   int                    `json:"syncedEvents"`
	Conflicts      []models.SyncConflict  `json:"conflictsFound"`
	Recurrent      []models.ExternalEvent `json:"recurrentEvents"`
	Special        []models.ExternalEvent `json:"specialEvents"`
	AllDay         []models.ExternalEvent `json:"allDayEvents"`
	SyncedEventIDs []string               `json:"syncedEventIds"`
	Debug          models.SyncDebugInfo   `json:"debugInfo"`
	Error          string                 `json:"error,omitempty"`
}

// ConnectionStatus reports whether a calendar is connected and how.
type ConnectionStatus struct {
	Connected bool                `json:"connected"`
	Provider  models.SyncProvider `json:"provider,omitempty"`
	Email     string              `json:"email,omitempty"`
	Settings  models.SyncSettings `json:"settings"`
	LastSync  *time.Time          `json:"lastSync,omitempty"`
}

// ResolveConflicts summarizes an applied batch of resolutions.
type ResolveConflicts struct {
	Resolved int                `json:"resolved"`
	Results  []models.TimeBlock `json:"results"`
}

// Disconnect reports the cleanup outcome.
type Disconnect struct {
	EventsRemoved int `json:"eventsRemoved"`
}

// SyncHistoryEntry is one row of the synchronization history view.
type SyncHistoryEntry struct {
	ID         string               `json:"id"`
	Direction  models.SyncDirection `json:"direction"`
	ExternalID string               `json:"externalId"`
	LocalID    string               `json:"localId"`
	LocalType  models.LocalEventType `json:"localType"`
	Status     models.SyncStatus    `json:"status"`
	CreatedAt  time.Time            `json:"createdAt"`
}
