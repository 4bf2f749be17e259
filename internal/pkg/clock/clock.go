// Package clock handles the naive local times of day ("13:00") that
// schedule blocks and external event times are expressed in. Values
// are compared as minutes since midnight; no timezone arithmetic
// happens at this level.
package clock

import (
	"fmt"
	"strings"
	"time"
)

const clockLayout = "15:04"

// Parse parses "HH:MM", "HH:MM:SS" or an ISO time with fractional
// seconds into minutes since midnight.
func Parse(value string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("empty clock value")
	}
	if idx := strings.Index(value, "."); idx >= 0 {
		value = value[:idx]
	}
	for _, layout := range []string{clockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	// Full timestamps fall back to their time-of-day component.
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t.Hour()*60 + t.Minute(), nil
	}
	return 0, fmt.Errorf("cannot parse clock value %q", value)
}

func Format(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes > 24*60 {
		minutes = 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlap reports whether two half-open clock ranges share any
// interval: startA < endB && endA > startB.
func Overlap(startA, endA, startB, endB string) (bool, error) {
	sa, err := Parse(startA)
	if err != nil {
		return false, err
	}
	ea, err := Parse(endA)
	if err != nil {
		return false, err
	}
	sb, err := Parse(startB)
	if err != nil {
		return false, err
	}
	eb, err := Parse(endB)
	if err != nil {
		return false, err
	}
	return sa < eb && ea > sb, nil
}

// Before reports whether a sorts strictly before b. Unparsable values
// sort last so malformed blocks do not shadow valid ones.
func Before(a, b string) bool {
	ma, errA := Parse(a)
	mb, errB := Parse(b)
	if errA != nil {
		return false
	}
	if errB != nil {
		return true
	}
	return ma < mb
}

func Min(a, b string) string {
	if Before(b, a) {
		return b
	}
	return a
}

func Max(a, b string) string {
	if Before(a, b) {
		return b
	}
	return a
}

// Clamp bounds value into [lo, hi].
func Clamp(value, lo, hi string) string {
	if Before(value, lo) {
		return lo
	}
	if Before(hi, value) {
		return hi
	}
	return value
}

// FormatDate and ParseDate pin the date-only representation used by
// schedule exceptions ("2006-01-02").
const dateLayout = "2006-01-02"

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func ParseDate(value string) (time.Time, error) {
	if idx := strings.Index(value, "T"); idx >= 0 {
		value = value[:idx]
	}
	return time.Parse(dateLayout, value)
}
