package calendarsync

import (
	"testing"

	"mediconnect-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func TestInsertBreak(t *testing.T) {
	t.Run("splits a full consultation day around the break", func(t *testing.T) {
		day := []models.TimeBlock{
			{Start: "09:00", End: "19:00", Type: models.BlockConsultation},
		}

		blocks := InsertBreak("09:00", "19:00", day, models.TimeBlock{
			Start:           "13:00",
			End:             "14:00",
			Type:            models.BlockBreak,
			Reason:          "Lunch",
			ExternalEventID: "evt-lunch",
		})

		if assert.Len(t, blocks, 3) {
			assert.Equal(t, models.TimeBlock{Start: "09:00", End: "13:00", Type: models.BlockConsultation}, blocks[0])
			assert.Equal(t, "13:00", blocks[1].Start)
			assert.Equal(t, "14:00", blocks[1].End)
			assert.Equal(t, models.BlockBreak, blocks[1].Type)
			assert.Equal(t, "evt-lunch", blocks[1].ExternalEventID)
			assert.Equal(t, models.TimeBlock{Start: "14:00", End: "19:00", Type: models.BlockConsultation}, blocks[2])
		}
		assert.NoError(t, models.ValidateBlockPartition("09:00", "19:00", blocks))
	})

	t.Run("break at the opening edge produces no leading slot", func(t *testing.T) {
		blocks := InsertBreak("09:00", "19:00", nil, models.TimeBlock{
			Start: "09:00", End: "10:00", Type: models.BlockBreak,
		})

		if assert.Len(t, blocks, 2) {
			assert.Equal(t, models.BlockBreak, blocks[0].Type)
			assert.Equal(t, models.TimeBlock{Start: "10:00", End: "19:00", Type: models.BlockConsultation}, blocks[1])
		}
	})

	t.Run("keeps existing breaks and fills every gap", func(t *testing.T) {
		day := []models.TimeBlock{
			{Start: "09:00", End: "12:00", Type: models.BlockConsultation},
			{Start: "12:00", End: "13:00", Type: models.BlockLunch, Reason: "Lunch"},
			{Start: "13:00", End: "19:00", Type: models.BlockConsultation},
		}

		blocks := InsertBreak("09:00", "19:00", day, models.TimeBlock{
			Start: "16:00", End: "17:00", Type: models.BlockBreak,
		})

		assert.NoError(t, models.ValidateBlockPartition("09:00", "19:00", blocks))
		assert.Len(t, blocks, 5)
		assert.Equal(t, models.BlockLunch, blocks[1].Type)
		assert.Equal(t, models.BlockBreak, blocks[3].Type)
	})
}

func TestRecomputeBlocks(t *testing.T) {
	t.Run("no breaks yields one consultation span", func(t *testing.T) {
		blocks := RecomputeBlocks("09:00", "19:00", nil)

		if assert.Len(t, blocks, 1) {
			assert.Equal(t, models.TimeBlock{Start: "09:00", End: "19:00", Type: models.BlockConsultation}, blocks[0])
		}
	})

	t.Run("unsorted breaks are ordered before filling", func(t *testing.T) {
		blocks := RecomputeBlocks("09:00", "19:00", []models.TimeBlock{
			{Start: "16:00", End: "17:00", Type: models.BlockBreak},
			{Start: "10:00", End: "11:00", Type: models.BlockBreak},
		})

		assert.NoError(t, models.ValidateBlockPartition("09:00", "19:00", blocks))
		assert.Equal(t, "10:00", blocks[1].Start)
		assert.Equal(t, "16:00", blocks[3].Start)
	})

	t.Run("break spanning the close trims the tail slot", func(t *testing.T) {
		blocks := RecomputeBlocks("09:00", "19:00", []models.TimeBlock{
			{Start: "18:00", End: "19:00", Type: models.BlockBreak},
		})

		if assert.Len(t, blocks, 2) {
			assert.Equal(t, models.BlockBreak, blocks[1].Type)
		}
	})
}

func TestMergeOverlappingBreaks(t *testing.T) {
	t.Run("overlapping breaks collapse into one span", func(t *testing.T) {
		merged := MergeOverlappingBreaks([]models.TimeBlock{
			{Start: "12:00", End: "13:30", Type: models.BlockBreak, Reason: "Lunch"},
			{Start: "13:00", End: "14:00", Type: models.BlockBreak, Reason: "Errand"},
		})

		if assert.Len(t, merged, 1) {
			assert.Equal(t, "12:00", merged[0].Start)
			assert.Equal(t, "14:00", merged[0].End)
			assert.Equal(t, "Lunch + Errand", merged[0].Reason)
		}
	})

	t.Run("touching breaks are merged too", func(t *testing.T) {
		merged := MergeOverlappingBreaks([]models.TimeBlock{
			{Start: "12:00", End: "13:00", Type: models.BlockBreak},
			{Start: "13:00", End: "14:00", Type: models.BlockBreak},
		})

		assert.Len(t, merged, 1)
	})

	t.Run("disjoint breaks stay separate", func(t *testing.T) {
		merged := MergeOverlappingBreaks([]models.TimeBlock{
			{Start: "10:00", End: "11:00", Type: models.BlockBreak},
			{Start: "15:00", End: "16:00", Type: models.BlockBreak},
		})

		assert.Len(t, merged, 2)
	})

	t.Run("contained break inherits the outer end and event id", func(t *testing.T) {
		merged := MergeOverlappingBreaks([]models.TimeBlock{
			{Start: "12:00", End: "15:00", Type: models.BlockBreak, Reason: "Off"},
			{Start: "13:00", End: "14:00", Type: models.BlockBreak, Reason: "Off", ExternalEventID: "evt-1"},
		})

		if assert.Len(t, merged, 1) {
			assert.Equal(t, "15:00", merged[0].End)
			assert.Equal(t, "Off", merged[0].Reason)
			assert.Equal(t, "evt-1", merged[0].ExternalEventID)
		}
	})
}
