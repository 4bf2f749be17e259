package calendarsync

import (
	"mediconnect-service/internal/app/models"
	"strings"

	"github.com/teambition/rrule-go"
)

// AnalyzeRecurrenceRules derives the cadence descriptor for one event
// series. Rules are parsed in order and a later parseable rule replaces
// the result of an earlier one. A rule whose frequency has no day
// cadence (hourly and below, or unparsable) leaves FrequencyDays nil so
// the mapping engine never auto-maps the series.
func AnalyzeRecurrenceRules(rules []string) models.RecurrencePattern {
	pattern := models.RecurrencePattern{PatternType: models.PatternCustom}

	for _, raw := range rules {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		// Provider feeds mix RRULE with EXDATE/RDATE lines.
		upper := strings.ToUpper(trimmed)
		if strings.HasPrefix(upper, "EXDATE") || strings.HasPrefix(upper, "RDATE") || strings.HasPrefix(upper, "EXRULE") {
			continue
		}
		trimmed = strings.TrimPrefix(trimmed, "RRULE:")

		option, err := rrule.StrToROption(trimmed)
		if err != nil {
			continue
		}

		interval := option.Interval
		if interval <= 0 {
			interval = 1
		}

		next := models.RecurrencePattern{Rule: raw}
		switch option.Freq {
		case rrule.DAILY:
			days := interval
			next.FrequencyDays = &days
			next.PatternType = models.PatternDaily
		case rrule.WEEKLY:
			days := 7 * interval
			next.FrequencyDays = &days
			next.PatternType = models.PatternWeekly
			if len(option.Byweekday) > 0 {
				day := option.Byweekday[0].Day()
				next.DayOfWeek = &day
			}
		case rrule.MONTHLY:
			days := 30 * interval
			next.FrequencyDays = &days
			next.PatternType = models.PatternMonthly
		case rrule.YEARLY:
			days := 365 * interval
			next.FrequencyDays = &days
			next.PatternType = models.PatternYearly
		default:
			next.PatternType = models.PatternCustom
		}
		pattern = next
	}
	return pattern
}
