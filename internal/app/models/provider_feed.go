package models

// RawProviderEvent is a series master or standalone event as returned
// by the provider before expansion, with its recurrence rules attached.
type RawProviderEvent struct {
	Event           ExternalEvent `json:"event"`
	RecurrenceRules []string      `json:"recurrenceRules,omitempty"`
}

// ProviderFeed is what one fetch returns: the raw series/singles plus
// every concrete occurrence inside the query window.
type ProviderFeed struct {
	RawEvents []RawProviderEvent `json:"rawEvents"`
	Expanded  []ExternalEvent    `json:"expanded"`
}

// EventSpec describes an event to push to the provider during
// write-back.
type EventSpec struct {
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	DayOfWeek   *int   `json:"dayOfWeek,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	AllDay      bool   `json:"allDay"`
	Recurring   bool   `json:"recurring"`
}
