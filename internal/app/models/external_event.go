package models

// ExternalEvent is the normalized shape of one provider calendar event
// or expanded instance. It is rebuilt on every fetch and never stored;
// only its id is referenced from schedule blocks and sync records.
type ExternalEvent struct {
	ID               string `json:"id"`
	Summary          string `json:"summary"`
	Description      string `json:"description,omitempty"`
	Location         string `json:"location,omitempty"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	StartTime        string `json:"startTime,omitempty"`
	EndTime          string `json:"endTime,omitempty"`
	IsAllDay         bool   `json:"isAllDay"`
	IsRecurring      bool   `json:"isRecurring"`
	RecurringGroupID string `json:"recurringGroupId,omitempty"`
	Status           string `json:"status"`
}

const EventStatusCancelled = "cancelled"

// HasTime reports whether the event carries a time-of-day component.
func (e *ExternalEvent) HasTime() bool {
	return e.StartTime != "" && e.EndTime != ""
}

// PatternType classifies the cadence extracted from a recurrence rule.
type PatternType string

const (
	PatternDaily   PatternType = "daily"
	PatternWeekly  PatternType = "weekly"
	PatternMonthly PatternType = "monthly"
	PatternYearly  PatternType = "yearly"
	PatternCustom  PatternType = "custom"
)

// RecurrencePattern is the cadence descriptor derived from provider
// recurrence rules. FrequencyDays stays nil for unrecognized rules,
// which downstream code treats as "do not auto-map".
type RecurrencePattern struct {
	FrequencyDays *int        `json:"frequencyDays,omitempty"`
	DayOfWeek     *int        `json:"dayOfWeek,omitempty"`
	PatternType   PatternType `json:"patternType"`
	Rule          string      `json:"rule,omitempty"`
}

// IsWeekly reports whether the cadence maps onto a weekday template:
// a positive multiple of 7 days with a known weekday.
func (p *RecurrencePattern) IsWeekly() bool {
	return p.FrequencyDays != nil && *p.FrequencyDays > 0 && *p.FrequencyDays%7 == 0 && p.DayOfWeek != nil
}

// RecurringEventGroup collects the expanded instances of one series.
type RecurringEventGroup struct {
	GroupID     string            `json:"groupId"`
	MasterEvent *ExternalEvent    `json:"masterEvent,omitempty"`
	Pattern     RecurrencePattern `json:"pattern"`
	Instances   []ExternalEvent   `json:"instances"`
}

// SyncDebugInfo accumulates observability counters for one pass.
type SyncDebugInfo struct {
	TotalRawEvents   int      `json:"totalRawEvents"`
	FilteredEvents   int      `json:"filteredEvents"`
	SkippedEvents    int      `json:"skippedEvents"`
	FilterReasons    []string `json:"filterReasons,omitempty"`
	GroupedRecurring int      `json:"groupedRecurringCount"`
	EventsWrittenOut int      `json:"eventsWrittenToExternal"`
}

// CategorizedEvents is the categorizer's output: the three buckets plus
// the per-series grouping the mapping engine consumes.
type CategorizedEvents struct {
	Recurrent        []ExternalEvent                 `json:"recurrent"`
	Special          []ExternalEvent                 `json:"special"`
	AllDay           []ExternalEvent                 `json:"allDay"`
	GroupedRecurring map[string]*RecurringEventGroup `json:"groupedRecurring"`
	Debug            SyncDebugInfo                   `json:"debugInfo"`
}

// ConflictType locates the internal block a candidate event collides
// with.
type ConflictType string

const (
	ConflictTemplateBreak  ConflictType = "template_break"
	ConflictExceptionBreak ConflictType = "exception_break"
)

// ConflictDescriptor is the transient result of conflict detection.
// Never persisted; returned to the caller for user resolution.
type ConflictDescriptor struct {
	Type       ConflictType `json:"type"`
	DayOfWeek  *int         `json:"dayOfWeek,omitempty"`
	Date       string       `json:"date,omitempty"`
	BreakType  BlockType    `json:"breakType"`
	BreakStart string       `json:"breakStart"`
	BreakEnd   string       `json:"breakEnd"`
	OwnerID    string       `json:"ownerId"`
}

// SyncConflict pairs the offending external event with the internal
// block it overlaps.
type SyncConflict struct {
	ExternalEvent ExternalEvent      `json:"externalEvent"`
	ConflictWith  ConflictDescriptor `json:"conflictWith"`
	Kind          string             `json:"kind"`
}

// ResolutionType enumerates the user-selectable conflict strategies.
type ResolutionType string

const (
	ResolutionKeepInternal ResolutionType = "keep_internal"
	ResolutionKeepExternal ResolutionType = "keep_external"
	ResolutionMergeSum     ResolutionType = "merge_sum"
	ResolutionMergeCombine ResolutionType = "merge_combine"
)

// SyncResult is the summary returned by one sync pass.
type SyncResult struct {
	Synced         []SyncedEvent   `json:"synced"`
	Conflicts      []SyncConflict  `json:"conflicts"`
	Recurrent      []ExternalEvent `json:"recurrent"`
	Special        []ExternalEvent `json:"special"`
	AllDay         []ExternalEvent `json:"allDay"`
	SyncedEventIDs []string        `json:"syncedEventIds"`
	Errors         []string        `json:"errors,omitempty"`
	Debug          SyncDebugInfo   `json:"debugInfo"`
}

// EventsSynced is the number of external events applied this pass.
func (r *SyncResult) EventsSynced() int {
	return len(r.Synced)
}
