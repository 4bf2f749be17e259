package constvars

import "time"

const (
	MongoCollectionScheduleTemplates   = "schedule_templates"
	MongoCollectionScheduleExceptions  = "schedule_exceptions"
	MongoCollectionCalendarConnections = "calendar_connections"
	MongoCollectionSyncedEvents        = "synced_events"
)

const (
	// DefaultOpensAt/DefaultClosesAt seed templates created on the fly
	// during a sync pass when the clinician has no schedule for that day.
	DefaultOpensAt  = "09:00"
	DefaultClosesAt = "19:00"

	// SyncHorizonDays bounds how far ahead non-weekly recurring
	// occurrences are materialized as exceptions.
	SyncHorizonDays = 730

	DefaultEventTitle    = "Untitled event"
	ClosedDayEventTitle  = "Practice closed"
	SpecialHoursTitleFmt = "Special hours %s-%s"

	SyncLockKeyFormat   = "calendar-sync:lock:%s"
	SyncLockTTL         = 4 * time.Minute
	AutoSyncInterval    = 5 * time.Minute
	SyncHistoryLimit    = 50
	ProviderHTTPTimeout = 30 * time.Second
)

// AutoGeneratedEventTitles are provider placeholder events that must
// never be mapped into the schedule (automatic birthday reminders).
var AutoGeneratedEventTitles = []string{
	"¡Feliz cumpleaños!",
	"Happy Birthday!",
	"Birthday",
}
