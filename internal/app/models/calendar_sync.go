package models

import "time"

// SyncProvider identifies the external calendar backing a connection.
type SyncProvider string

const (
	ProviderGoogle SyncProvider = "google"
	ProviderApple  SyncProvider = "apple"
)

func (p SyncProvider) SyncSource() SyncSource {
	switch p {
	case ProviderGoogle:
		return SyncSourceGoogle
	case ProviderApple:
		return SyncSourceApple
	default:
		return SyncSourceManual
	}
}

// SyncDirection records which side originated a synced event.
type SyncDirection string

const (
	DirectionExternalToInternal SyncDirection = "external_to_internal"
	DirectionInternalToExternal SyncDirection = "internal_to_external"
)

// SyncStatus is the lifecycle state of a sync pass or synced event.
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// LocalEventType names the internal entity a synced event maps to.
type LocalEventType string

const (
	LocalEventTemplate  LocalEventType = "template"
	LocalEventException LocalEventType = "exception"
	LocalEventPending   LocalEventType = "pending"
)

// SyncSettings is the per-connection behavior toggles.
type SyncSettings struct {
	MergeCalendars       bool `json:"mergeCalendars" bson:"mergeCalendars"`
	ReceiveNotifications bool `json:"receiveNotifications" bson:"receiveNotifications"`
}

// CalendarConnection holds the provider tokens and sync bookkeeping for
// one clinician's external calendar. A disconnect deactivates the row,
// it never deletes it.
type CalendarConnection struct {
	ID             string       `json:"id" bson:"_id,omitempty"`
	UserID         string       `json:"userId" bson:"userId"`
	Provider       SyncProvider `json:"provider" bson:"provider"`
	CalendarEmail  string       `json:"calendarEmail" bson:"calendarEmail"`
	AccessToken    string       `json:"-" bson:"accessToken"`
	RefreshToken   string       `json:"-" bson:"refreshToken"`
	TokenExpiry    *time.Time   `json:"-" bson:"tokenExpiry,omitempty"`
	IsActive       bool         `json:"isActive" bson:"isActive"`
	SyncSettings   SyncSettings `json:"syncSettings" bson:"syncSettings"`
	LastSyncAt     *time.Time   `json:"lastSyncAt,omitempty" bson:"lastSyncAt,omitempty"`
	LastSyncStatus SyncStatus   `json:"lastSyncStatus,omitempty" bson:"lastSyncStatus,omitempty"`
	LastSyncError  string       `json:"lastSyncError,omitempty" bson:"lastSyncError,omitempty"`
	SyncCount      int          `json:"syncCount" bson:"syncCount"`
	TimeModel      `bson:",inline"`
}

func (c *CalendarConnection) TokenExpired(now time.Time) bool {
	return c.TokenExpiry != nil && c.TokenExpiry.Before(now)
}

// SyncedEvent links an external event to the internal entity it
// produced or consumed. Unique per (externalEventId, localEventId).
type SyncedEvent struct {
	ID               string         `json:"id" bson:"_id,omitempty"`
	UserID           string         `json:"userId" bson:"userId"`
	ConnectionID     string         `json:"connectionId" bson:"connectionId"`
	ExternalEventID  string         `json:"externalEventId" bson:"externalEventId"`
	LocalEventID     string         `json:"localEventId" bson:"localEventId"`
	LocalEventType   LocalEventType `json:"localEventType" bson:"localEventType"`
	SyncDirection    SyncDirection  `json:"syncDirection" bson:"syncDirection"`
	SyncStatus       SyncStatus     `json:"syncStatus" bson:"syncStatus"`
	RecurringGroupID string         `json:"recurringGroupId,omitempty" bson:"recurringGroupId,omitempty"`
	Classification   BlockType      `json:"classification,omitempty" bson:"classification,omitempty"`
	EventTitle       string         `json:"eventTitle,omitempty" bson:"eventTitle,omitempty"`
	EventDate        string         `json:"eventDate,omitempty" bson:"eventDate,omitempty"`
	LastSyncedAt     time.Time      `json:"lastSyncedAt" bson:"lastSyncedAt"`
	TimeModel        `bson:",inline"`
}
