package calendarsync

import (
	"testing"

	"mediconnect-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func timedEvent(id, date, start, end string) models.ExternalEvent {
	return models.ExternalEvent{
		ID:        id,
		Summary:   "Event " + id,
		StartDate: date,
		EndDate:   date,
		StartTime: start,
		EndTime:   end,
		Status:    "confirmed",
	}
}

func TestCategorizeEvents(t *testing.T) {
	t.Run("splits events into the three buckets", func(t *testing.T) {
		recurring := timedEvent("series-1:0", "2026-09-07", "13:00", "14:00")
		recurring.IsRecurring = true
		recurring.RecurringGroupID = "series-1"

		special := timedEvent("single-1", "2026-09-08", "10:00", "11:00")

		allDay := models.ExternalEvent{
			ID:        "allday-1",
			Summary:   "Conference",
			StartDate: "2026-09-09",
			EndDate:   "2026-09-10",
			IsAllDay:  true,
			Status:    "confirmed",
		}

		feed := &models.ProviderFeed{
			RawEvents: []models.RawProviderEvent{
				{
					Event:           models.ExternalEvent{ID: "series-1", Summary: "Weekly standup"},
					RecurrenceRules: []string{"RRULE:FREQ=WEEKLY;BYDAY=MO"},
				},
			},
			Expanded: []models.ExternalEvent{recurring, special, allDay},
		}

		categorized := CategorizeEvents(feed, "2026-09-01")

		assert.Len(t, categorized.Recurrent, 1)
		assert.Len(t, categorized.Special, 1)
		assert.Len(t, categorized.AllDay, 1)
		assert.Equal(t, 3, categorized.Debug.TotalRawEvents)
		assert.Equal(t, 1, categorized.Debug.GroupedRecurring)

		group := categorized.GroupedRecurring["series-1"]
		if assert.NotNil(t, group) {
			assert.Equal(t, "Weekly standup", group.MasterEvent.Summary)
			assert.True(t, group.Pattern.IsWeekly())
			assert.Len(t, group.Instances, 1)
		}
	})

	t.Run("filters cancelled events", func(t *testing.T) {
		cancelled := timedEvent("gone", "2026-09-08", "10:00", "11:00")
		cancelled.Status = models.EventStatusCancelled

		feed := &models.ProviderFeed{Expanded: []models.ExternalEvent{cancelled}}
		categorized := CategorizeEvents(feed, "")

		assert.Empty(t, categorized.Special)
		assert.Equal(t, 1, categorized.Debug.FilteredEvents)
		assert.Contains(t, categorized.Debug.FilterReasons[0], "cancelled")
	})

	t.Run("filters provider birthday placeholders", func(t *testing.T) {
		birthday := timedEvent("bday", "2026-09-08", "00:00", "01:00")
		birthday.Summary = "happy birthday!"

		feed := &models.ProviderFeed{Expanded: []models.ExternalEvent{birthday}}
		categorized := CategorizeEvents(feed, "")

		assert.Empty(t, categorized.Special)
		assert.Equal(t, 1, categorized.Debug.FilteredEvents)
	})

	t.Run("filters occurrences before the window", func(t *testing.T) {
		old := timedEvent("old", "2026-08-01", "10:00", "11:00")
		current := timedEvent("current", "2026-09-08", "10:00", "11:00")

		feed := &models.ProviderFeed{Expanded: []models.ExternalEvent{old, current}}
		categorized := CategorizeEvents(feed, "2026-09-01")

		assert.Len(t, categorized.Special, 1)
		assert.Equal(t, "current", categorized.Special[0].ID)
		assert.Equal(t, 1, categorized.Debug.FilteredEvents)
	})

	t.Run("timed event without clock goes to all-day bucket", func(t *testing.T) {
		dateOnly := models.ExternalEvent{
			ID:        "date-only",
			Summary:   "Blocked day",
			StartDate: "2026-09-08",
			EndDate:   "2026-09-08",
			Status:    "confirmed",
		}

		feed := &models.ProviderFeed{Expanded: []models.ExternalEvent{dateOnly}}
		categorized := CategorizeEvents(feed, "")

		assert.Len(t, categorized.AllDay, 1)
		assert.Empty(t, categorized.Special)
	})

	t.Run("instances are sorted by date then time", func(t *testing.T) {
		later := timedEvent("s:1", "2026-09-14", "13:00", "14:00")
		later.RecurringGroupID = "s"
		earlier := timedEvent("s:0", "2026-09-07", "13:00", "14:00")
		earlier.RecurringGroupID = "s"

		feed := &models.ProviderFeed{Expanded: []models.ExternalEvent{later, earlier}}
		categorized := CategorizeEvents(feed, "")

		group := categorized.GroupedRecurring["s"]
		if assert.NotNil(t, group) && assert.Len(t, group.Instances, 2) {
			assert.Equal(t, "s:0", group.Instances[0].ID)
			assert.Equal(t, "s:1", group.Instances[1].ID)
		}
	})
}
