package calendarsync

import (
	"mediconnect-service/internal/app/models"
	"mediconnect-service/internal/pkg/clock"
	"sort"
)

// InsertBreak adds newBreak to an existing block list and returns the
// recomputed partition of [opensAt, closesAt]: breaks sorted by start
// with consultation blocks filling every gap.
func InsertBreak(opensAt, closesAt string, blocks []models.TimeBlock, newBreak models.TimeBlock) []models.TimeBlock {
	breaks := breaksOf(blocks)
	breaks = append(breaks, newBreak)
	return RecomputeBlocks(opensAt, closesAt, breaks)
}

// RecomputeBlocks rebuilds the full block list from the given breaks:
// sort by start, fill the gap before each break with a consultation
// block, then fill the tail up to closesAt.
func RecomputeBlocks(opensAt, closesAt string, breaks []models.TimeBlock) []models.TimeBlock {
	sortBreaks(breaks)

	result := make([]models.TimeBlock, 0, 2*len(breaks)+1)
	cursor := opensAt
	for _, brk := range breaks {
		if clock.Before(cursor, brk.Start) {
			result = append(result, models.TimeBlock{
				Start: cursor,
				End:   brk.Start,
				Type:  models.BlockConsultation,
			})
		}
		result = append(result, brk)
		cursor = clock.Max(cursor, brk.End)
	}
	if clock.Before(cursor, closesAt) {
		result = append(result, models.TimeBlock{
			Start: cursor,
			End:   closesAt,
			Type:  models.BlockConsultation,
		})
	}
	return result
}

// MergeOverlappingBreaks collapses breaks that share any interval into
// a single break spanning both, concatenating their reasons. Used
// after a conflict resolution widens a break.
func MergeOverlappingBreaks(breaks []models.TimeBlock) []models.TimeBlock {
	if len(breaks) <= 1 {
		return breaks
	}
	sortBreaks(breaks)

	merged := []models.TimeBlock{breaks[0]}
	for _, next := range breaks[1:] {
		current := &merged[len(merged)-1]
		if !clock.Before(current.End, next.Start) {
			current.End = clock.Max(current.End, next.End)
			current.Reason = joinReasons(current.Reason, next.Reason)
			if current.ExternalEventID == "" {
				current.ExternalEventID = next.ExternalEventID
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

func breaksOf(blocks []models.TimeBlock) []models.TimeBlock {
	breaks := make([]models.TimeBlock, 0, len(blocks))
	for _, block := range blocks {
		if block.Type.IsBreak() {
			breaks = append(breaks, block)
		}
	}
	return breaks
}

func sortBreaks(breaks []models.TimeBlock) {
	sort.SliceStable(breaks, func(i, j int) bool {
		return clock.Before(breaks[i].Start, breaks[j].Start)
	})
}

func joinReasons(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "" || a == b:
		return a
	default:
		return a + " + " + b
	}
}
