package calendarsync

import (
	"testing"

	"mediconnect-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeRecurrenceRules(t *testing.T) {
	t.Run("weekly rule with weekday", func(t *testing.T) {
		pattern := AnalyzeRecurrenceRules([]string{"RRULE:FREQ=WEEKLY;BYDAY=MO"})

		assert.Equal(t, models.PatternWeekly, pattern.PatternType)
		if assert.NotNil(t, pattern.FrequencyDays) {
			assert.Equal(t, 7, *pattern.FrequencyDays)
		}
		if assert.NotNil(t, pattern.DayOfWeek) {
			assert.Equal(t, 0, *pattern.DayOfWeek)
		}
		assert.True(t, pattern.IsWeekly())
	})

	t.Run("biweekly rule stays weekly cadence", func(t *testing.T) {
		pattern := AnalyzeRecurrenceRules([]string{"RRULE:FREQ=WEEKLY;INTERVAL=2;BYDAY=FR"})

		assert.Equal(t, models.PatternWeekly, pattern.PatternType)
		if assert.NotNil(t, pattern.FrequencyDays) {
			assert.Equal(t, 14, *pattern.FrequencyDays)
		}
		if assert.NotNil(t, pattern.DayOfWeek) {
			assert.Equal(t, 4, *pattern.DayOfWeek)
		}
		assert.True(t, pattern.IsWeekly())
	})

	t.Run("daily rule with interval", func(t *testing.T) {
		pattern := AnalyzeRecurrenceRules([]string{"FREQ=DAILY;INTERVAL=8"})

		assert.Equal(t, models.PatternDaily, pattern.PatternType)
		if assert.NotNil(t, pattern.FrequencyDays) {
			assert.Equal(t, 8, *pattern.FrequencyDays)
		}
		assert.False(t, pattern.IsWeekly())
	})

	t.Run("monthly and yearly approximations", func(t *testing.T) {
		monthly := AnalyzeRecurrenceRules([]string{"RRULE:FREQ=MONTHLY"})
		yearly := AnalyzeRecurrenceRules([]string{"RRULE:FREQ=YEARLY"})

		if assert.NotNil(t, monthly.FrequencyDays) {
			assert.Equal(t, 30, *monthly.FrequencyDays)
		}
		if assert.NotNil(t, yearly.FrequencyDays) {
			assert.Equal(t, 365, *yearly.FrequencyDays)
		}
	})

	t.Run("later rule replaces earlier one", func(t *testing.T) {
		pattern := AnalyzeRecurrenceRules([]string{
			"RRULE:FREQ=DAILY",
			"RRULE:FREQ=WEEKLY;BYDAY=WE",
		})

		assert.Equal(t, models.PatternWeekly, pattern.PatternType)
		if assert.NotNil(t, pattern.DayOfWeek) {
			assert.Equal(t, 2, *pattern.DayOfWeek)
		}
	})

	t.Run("exdate lines are skipped", func(t *testing.T) {
		pattern := AnalyzeRecurrenceRules([]string{
			"RRULE:FREQ=WEEKLY;BYDAY=TU",
			"EXDATE:20260915T100000Z",
		})

		assert.Equal(t, models.PatternWeekly, pattern.PatternType)
		if assert.NotNil(t, pattern.DayOfWeek) {
			assert.Equal(t, 1, *pattern.DayOfWeek)
		}
	})

	t.Run("unparsable rule yields custom pattern", func(t *testing.T) {
		pattern := AnalyzeRecurrenceRules([]string{"RRULE:FREQ=SOMETIMES"})

		assert.Equal(t, models.PatternCustom, pattern.PatternType)
		assert.Nil(t, pattern.FrequencyDays)
		assert.False(t, pattern.IsWeekly())
	})

	t.Run("empty input yields custom pattern", func(t *testing.T) {
		pattern := AnalyzeRecurrenceRules(nil)

		assert.Equal(t, models.PatternCustom, pattern.PatternType)
		assert.Nil(t, pattern.FrequencyDays)
	})
}
