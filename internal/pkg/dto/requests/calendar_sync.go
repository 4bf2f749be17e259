package requests

// Sync triggers one synchronization pass.
type Sync struct {
	MergeCalendars       bool `json:"mergeCalendars"`
	ReceiveNotifications bool `json:"receiveNotifications"`
}

// ConflictResolution applies one strategy to a detected conflict.
// GroupID fans the resolution out to every instance of a series.
type ConflictResolution struct {
	EventID        string `json:"eventId" validate:"required"`
	ResolutionType string `json:"resolutionType" validate:"required,oneof=keep_internal keep_external merge_sum merge_combine"`
	GroupID        string `json:"groupId,omitempty"`
	MergeStart     string `json:"mergeStart,omitempty" validate:"omitempty,clock"`
	MergeEnd       string `json:"mergeEnd,omitempty" validate:"omitempty,clock"`
}

// RecurrentEventClassification tags the breaks produced by one external
// event with a block type.
type RecurrentEventClassification struct {
	ExternalEventID string `json:"externalEventId" validate:"required"`
	Classification  string `json:"classification" validate:"required,oneof=break lunch administrative"`
}

// UpdateSyncSettings changes the per-connection sync toggles.
type UpdateSyncSettings struct {
	MergeCalendars       bool `json:"mergeCalendars"`
	ReceiveNotifications bool `json:"receiveNotifications"`
}
