package models

import (
	"fmt"
	"mediconnect-service/internal/pkg/clock"
	"time"
)

// BlockType tags each entry of a day's time_blocks list. Everything
// that is not a consultation slot counts as a break for conflict and
// recompute purposes.
type BlockType string

const (
	BlockConsultation   BlockType = "consultation"
	BlockBreak          BlockType = "break"
	BlockLunch          BlockType = "lunch"
	BlockAdministrative BlockType = "administrative"
)

func (b BlockType) IsBreak() bool {
	return b != BlockConsultation
}

// TimeBlock is one contiguous span within a working day. Break blocks
// created by calendar sync carry the external event id that produced
// them; blocks the clinician authored before connecting a calendar are
// flagged so disconnect cleanup never removes them.
type TimeBlock struct {
	Start             string    `json:"start" bson:"start"`
	End               string    `json:"end" bson:"end"`
	Type              BlockType `json:"type" bson:"type"`
	Reason            string    `json:"reason,omitempty" bson:"reason,omitempty"`
	ExternalEventID   string    `json:"externalEventId,omitempty" bson:"externalEventId,omitempty"`
	RecurringGroupID  string    `json:"recurringGroupId,omitempty" bson:"recurringGroupId,omitempty"`
	ExistedBeforeSync bool      `json:"existedBeforeSync,omitempty" bson:"existedBeforeSync,omitempty"`
}

// ScheduleTemplate is the recurring weekly schedule for one weekday
// (0 = Monday .. 6 = Sunday). Templates are deactivated, never deleted.
type ScheduleTemplate struct {
	ID              string      `json:"id" bson:"_id,omitempty"`
	UserID          string      `json:"userId" bson:"userId"`
	DayOfWeek       int         `json:"dayOfWeek" bson:"dayOfWeek"`
	IsActive        bool        `json:"isActive" bson:"isActive"`
	OpensAt         string      `json:"opensAt" bson:"opensAt"`
	ClosesAt        string      `json:"closesAt" bson:"closesAt"`
	TimeBlocks      []TimeBlock `json:"timeBlocks" bson:"timeBlocks"`
	HasSyncedBreaks bool        `json:"hasSyncedBreaks" bson:"hasSyncedBreaks"`
	LastSyncUpdate  *time.Time  `json:"lastSyncUpdate,omitempty" bson:"lastSyncUpdate,omitempty"`
	TimeModel       `bson:",inline"`
}

// Breaks returns the non-consultation blocks in list order.
func (t *ScheduleTemplate) Breaks() []TimeBlock {
	return filterBreaks(t.TimeBlocks)
}

// SyncSource records where a schedule exception came from.
type SyncSource string

const (
	SyncSourceManual SyncSource = "manual"
	SyncSourceGoogle SyncSource = "google"
	SyncSourceApple  SyncSource = "apple"
)

// ScheduleException overrides the weekly template for one calendar
// date. At most one exception exists per (user, date).
type ScheduleException struct {
	ID                 string      `json:"id" bson:"_id,omitempty"`
	UserID             string      `json:"userId" bson:"userId"`
	Date               string      `json:"date" bson:"date"`
	IsWorkingDay       bool        `json:"isWorkingDay" bson:"isWorkingDay"`
	OpensAt            string      `json:"opensAt,omitempty" bson:"opensAt,omitempty"`
	ClosesAt           string      `json:"closesAt,omitempty" bson:"closesAt,omitempty"`
	TimeBlocks         []TimeBlock `json:"timeBlocks,omitempty" bson:"timeBlocks,omitempty"`
	Reason             string      `json:"reason,omitempty" bson:"reason,omitempty"`
	SyncSource         SyncSource  `json:"syncSource,omitempty" bson:"syncSource,omitempty"`
	ExternalCalendarID string      `json:"externalCalendarId,omitempty" bson:"externalCalendarId,omitempty"`
	IsSynced           bool        `json:"isSynced" bson:"isSynced"`
	SyncConnectionID   string      `json:"syncConnectionId,omitempty" bson:"syncConnectionId,omitempty"`
	ExistedBeforeSync  bool        `json:"existedBeforeSync,omitempty" bson:"existedBeforeSync,omitempty"`
	TimeModel          `bson:",inline"`
}

func (e *ScheduleException) Breaks() []TimeBlock {
	return filterBreaks(e.TimeBlocks)
}

func filterBreaks(blocks []TimeBlock) []TimeBlock {
	breaks := make([]TimeBlock, 0, len(blocks))
	for _, block := range blocks {
		if block.Type.IsBreak() {
			breaks = append(breaks, block)
		}
	}
	return breaks
}

// ValidateBlockPartition enforces the schedule invariant: the blocks,
// in order, cover [opensAt, closesAt] exactly, with no gap, no overlap,
// and no two breaks sharing any interval.
func ValidateBlockPartition(opensAt, closesAt string, blocks []TimeBlock) error {
	open, err := clock.Parse(opensAt)
	if err != nil {
		return fmt.Errorf("opensAt: %w", err)
	}
	close, err := clock.Parse(closesAt)
	if err != nil {
		return fmt.Errorf("closesAt: %w", err)
	}
	if close <= open {
		return fmt.Errorf("closesAt %s is not after opensAt %s", closesAt, opensAt)
	}

	cursor := open
	for i, block := range blocks {
		start, err := clock.Parse(block.Start)
		if err != nil {
			return fmt.Errorf("block %d start: %w", i, err)
		}
		end, err := clock.Parse(block.End)
		if err != nil {
			return fmt.Errorf("block %d end: %w", i, err)
		}
		if start != cursor {
			return fmt.Errorf("block %d starts at %s, expected %s", i, block.Start, clock.Format(cursor))
		}
		if end <= start {
			return fmt.Errorf("block %d ends at or before its start", i)
		}
		cursor = end
	}
	if cursor != close {
		return fmt.Errorf("blocks end at %s, expected %s", clock.Format(cursor), closesAt)
	}
	return nil
}
