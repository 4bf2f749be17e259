package calendarsync

import (
	"fmt"
	"mediconnect-service/internal/app/models"
	"mediconnect-service/internal/pkg/clock"
	"mediconnect-service/internal/pkg/constvars"
	"sort"
	"strings"
)

// CategorizeEvents splits one provider feed into the recurrent /
// special / all-day buckets and groups recurring instances by series.
// Cancelled events, occurrences starting before windowStart and
// provider-generated placeholder events are dropped and counted.
func CategorizeEvents(feed *models.ProviderFeed, windowStart string) *models.CategorizedEvents {
	categorized := &models.CategorizedEvents{
		Recurrent:        []models.ExternalEvent{},
		Special:          []models.ExternalEvent{},
		AllDay:           []models.ExternalEvent{},
		GroupedRecurring: map[string]*models.RecurringEventGroup{},
	}
	categorized.Debug.TotalRawEvents = len(feed.Expanded)

	rulesBySeries := map[string][]string{}
	masterBySeries := map[string]*models.ExternalEvent{}
	for i := range feed.RawEvents {
		raw := &feed.RawEvents[i]
		if len(raw.RecurrenceRules) == 0 {
			continue
		}
		rulesBySeries[raw.Event.ID] = raw.RecurrenceRules
		masterBySeries[raw.Event.ID] = &raw.Event
	}

	for _, event := range feed.Expanded {
		if event.Status == models.EventStatusCancelled {
			filter(categorized, "cancelled: "+event.ID)
			continue
		}
		if isAutoGeneratedTitle(event.Summary) {
			filter(categorized, "auto-generated: "+event.Summary)
			continue
		}
		if windowStart != "" && event.StartDate < windowStart {
			filter(categorized, fmt.Sprintf("before window: %s (%s)", event.ID, event.StartDate))
			continue
		}

		switch {
		case event.RecurringGroupID != "":
			groupID := event.RecurringGroupID
			group, ok := categorized.GroupedRecurring[groupID]
			if !ok {
				group = &models.RecurringEventGroup{
					GroupID:     groupID,
					MasterEvent: masterBySeries[groupID],
					Pattern:     AnalyzeRecurrenceRules(rulesBySeries[groupID]),
				}
				categorized.GroupedRecurring[groupID] = group
			}
			group.Instances = append(group.Instances, event)
			categorized.Recurrent = append(categorized.Recurrent, event)
		case event.IsAllDay || !event.HasTime():
			categorized.AllDay = append(categorized.AllDay, event)
		default:
			categorized.Special = append(categorized.Special, event)
		}
	}

	for _, group := range categorized.GroupedRecurring {
		sortInstances(group.Instances)
	}
	categorized.Debug.GroupedRecurring = len(categorized.GroupedRecurring)
	return categorized
}

func filter(categorized *models.CategorizedEvents, reason string) {
	categorized.Debug.FilteredEvents++
	categorized.Debug.FilterReasons = append(categorized.Debug.FilterReasons, reason)
}

func isAutoGeneratedTitle(summary string) bool {
	for _, title := range constvars.AutoGeneratedEventTitles {
		if strings.EqualFold(strings.TrimSpace(summary), title) {
			return true
		}
	}
	return false
}

func sortInstances(instances []models.ExternalEvent) {
	sort.SliceStable(instances, func(i, j int) bool {
		if instances[i].StartDate != instances[j].StartDate {
			return instances[i].StartDate < instances[j].StartDate
		}
		return clock.Before(instances[i].StartTime, instances[j].StartTime)
	})
}
