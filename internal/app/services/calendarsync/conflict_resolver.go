package calendarsync

import (
	"fmt"
	"mediconnect-service/internal/app/models"
	"mediconnect-service/internal/pkg/clock"
	"mediconnect-service/internal/pkg/exceptions"
)

// ApplyResolution produces the replacement break for one conflict.
// keepExternal reports whether the external event should still be
// recorded as synced (false only for keep_internal). Merged spans are
// clamped into [opensAt, closesAt] so a resolution can never push a
// break outside working hours.
func ApplyResolution(
	resolution models.ResolutionType,
	internal models.TimeBlock,
	extStart, extEnd, opensAt, closesAt string,
) (models.TimeBlock, bool, error) {
	switch resolution {
	case models.ResolutionKeepInternal:
		return internal, false, nil

	case models.ResolutionKeepExternal:
		replaced := internal
		replaced.Start = extStart
		replaced.End = extEnd
		return replaced, true, nil

	case models.ResolutionMergeSum:
		start := clock.Min(extStart, internal.Start)
		startMin, err := clock.Parse(start)
		if err != nil {
			return internal, false, exceptions.ErrCannotParseTime(err)
		}
		extDur, err := clockDuration(extStart, extEnd)
		if err != nil {
			return internal, false, err
		}
		intDur, err := clockDuration(internal.Start, internal.End)
		if err != nil {
			return internal, false, err
		}
		merged := internal
		merged.Start = clock.Clamp(start, opensAt, closesAt)
		merged.End = clock.Clamp(clock.Format(startMin+extDur+intDur), opensAt, closesAt)
		return merged, true, nil

	case models.ResolutionMergeCombine:
		merged := internal
		merged.Start = clock.Clamp(clock.Min(extStart, internal.Start), opensAt, closesAt)
		merged.End = clock.Clamp(clock.Max(extEnd, internal.End), opensAt, closesAt)
		return merged, true, nil

	default:
		err := fmt.Errorf("resolution type %q", resolution)
		return internal, false, exceptions.ErrUnknownResolutionType(err)
	}
}

func clockDuration(start, end string) (int, error) {
	s, err := clock.Parse(start)
	if err != nil {
		return 0, exceptions.ErrCannotParseTime(err)
	}
	e, err := clock.Parse(end)
	if err != nil {
		return 0, exceptions.ErrCannotParseTime(err)
	}
	if e < s {
		return 0, exceptions.ErrCannotParseTime(fmt.Errorf("range %s-%s ends before it starts", start, end))
	}
	return e - s, nil
}
