package calendarsync

import (
	"testing"

	"mediconnect-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func TestApplyResolution(t *testing.T) {
	internal := models.TimeBlock{
		Start:  "13:00",
		End:    "14:00",
		Type:   models.BlockLunch,
		Reason: "Lunch",
	}

	t.Run("keep_internal leaves the block untouched", func(t *testing.T) {
		block, syncExternal, err := ApplyResolution(models.ResolutionKeepInternal, internal, "13:30", "15:00", "09:00", "19:00")

		assert.NoError(t, err)
		assert.False(t, syncExternal)
		assert.Equal(t, internal, block)
	})

	t.Run("keep_external replaces the span", func(t *testing.T) {
		block, syncExternal, err := ApplyResolution(models.ResolutionKeepExternal, internal, "13:30", "15:00", "09:00", "19:00")

		assert.NoError(t, err)
		assert.True(t, syncExternal)
		assert.Equal(t, "13:30", block.Start)
		assert.Equal(t, "15:00", block.End)
		assert.Equal(t, models.BlockLunch, block.Type)
		assert.Equal(t, "Lunch", block.Reason)
	})

	t.Run("merge_sum adds both durations from the earlier start", func(t *testing.T) {
		// 60min internal + 90min external from 12:30.
		block, syncExternal, err := ApplyResolution(models.ResolutionMergeSum, internal, "12:30", "14:00", "09:00", "19:00")

		assert.NoError(t, err)
		assert.True(t, syncExternal)
		assert.Equal(t, "12:30", block.Start)
		assert.Equal(t, "15:00", block.End)
	})

	t.Run("merge_combine spans min start to max end", func(t *testing.T) {
		block, syncExternal, err := ApplyResolution(models.ResolutionMergeCombine, internal, "12:30", "13:30", "09:00", "19:00")

		assert.NoError(t, err)
		assert.True(t, syncExternal)
		assert.Equal(t, "12:30", block.Start)
		assert.Equal(t, "14:00", block.End)
	})

	t.Run("merged span is clamped to working hours", func(t *testing.T) {
		late := models.TimeBlock{Start: "17:30", End: "18:30", Type: models.BlockBreak}

		block, _, err := ApplyResolution(models.ResolutionMergeSum, late, "17:00", "19:00", "09:00", "19:00")

		assert.NoError(t, err)
		assert.Equal(t, "17:00", block.Start)
		assert.Equal(t, "19:00", block.End)
	})

	t.Run("unknown resolution type errors", func(t *testing.T) {
		_, _, err := ApplyResolution("split_difference", internal, "13:30", "15:00", "09:00", "19:00")

		assert.Error(t, err)
	})

	t.Run("malformed external time errors", func(t *testing.T) {
		_, _, err := ApplyResolution(models.ResolutionMergeSum, internal, "25:99", "26:00", "09:00", "19:00")

		assert.Error(t, err)
	})
}
