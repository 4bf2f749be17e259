package calendarsync

import (
	"mediconnect-service/internal/app/models"
	"mediconnect-service/internal/pkg/clock"
)

// justSyncedSet tracks the external event ids applied earlier in the
// same pass so ordering inside one pass never produces a false
// conflict. It lives for a single pass only.
type justSyncedSet map[string]struct{}

func (s justSyncedSet) add(eventID string) {
	s[eventID] = struct{}{}
}

func (s justSyncedSet) has(eventID string) bool {
	_, ok := s[eventID]
	return ok
}

// DetectTemplateConflict tests a candidate event against the weekday
// template's existing breaks. Returns nil when the event fits.
func DetectTemplateConflict(event *models.ExternalEvent, template *models.ScheduleTemplate, justSynced justSyncedSet) *models.SyncConflict {
	descriptor := firstOverlap(event, template.Breaks(), justSynced)
	if descriptor == nil {
		return nil
	}
	descriptor.Type = models.ConflictTemplateBreak
	day := template.DayOfWeek
	descriptor.DayOfWeek = &day
	descriptor.OwnerID = template.ID
	return &models.SyncConflict{
		ExternalEvent: *event,
		ConflictWith:  *descriptor,
		Kind:          string(models.ConflictTemplateBreak),
	}
}

// DetectExceptionConflict is the dated counterpart of
// DetectTemplateConflict.
func DetectExceptionConflict(event *models.ExternalEvent, exception *models.ScheduleException, justSynced justSyncedSet) *models.SyncConflict {
	descriptor := firstOverlap(event, exception.Breaks(), justSynced)
	if descriptor == nil {
		return nil
	}
	descriptor.Type = models.ConflictExceptionBreak
	descriptor.Date = exception.Date
	descriptor.OwnerID = exception.ID
	return &models.SyncConflict{
		ExternalEvent: *event,
		ConflictWith:  *descriptor,
		Kind:          string(models.ConflictExceptionBreak),
	}
}

// firstOverlap returns the first break overlapping the event on the
// half-open interval test, skipping breaks the event itself produced
// and breaks applied earlier in this pass.
func firstOverlap(event *models.ExternalEvent, breaks []models.TimeBlock, justSynced justSyncedSet) *models.ConflictDescriptor {
	if !event.HasTime() {
		return nil
	}
	for _, brk := range breaks {
		if brk.ExternalEventID != "" {
			if brk.ExternalEventID == event.ID || justSynced.has(brk.ExternalEventID) {
				continue
			}
		}
		overlap, err := clock.Overlap(event.StartTime, event.EndTime, brk.Start, brk.End)
		if err != nil || !overlap {
			continue
		}
		return &models.ConflictDescriptor{
			BreakType:  brk.Type,
			BreakStart: brk.Start,
			BreakEnd:   brk.End,
		}
	}
	return nil
}
