package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		minutes int
		wantErr bool
	}{
		{name: "plain clock", value: "13:00", minutes: 780},
		{name: "with seconds", value: "09:30:15", minutes: 570},
		{name: "with fractional seconds", value: "09:30:15.123", minutes: 570},
		{name: "full timestamp", value: "2026-09-07T13:45:00", minutes: 825},
		{name: "midnight", value: "00:00", minutes: 0},
		{name: "empty", value: "", wantErr: true},
		{name: "out of range", value: "25:99", wantErr: true},
		{name: "garbage", value: "lunch", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			minutes, err := Parse(tc.value)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.minutes, minutes)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "13:00", Format(780))
	assert.Equal(t, "00:05", Format(5))
	assert.Equal(t, "00:00", Format(-10))
	assert.Equal(t, "24:00", Format(25*60))
}

func TestClockOverlap(t *testing.T) {
	cases := []struct {
		name                           string
		startA, endA, startB, endB     string
		overlap                        bool
	}{
		{"partial overlap", "13:30", "15:00", "13:00", "14:00", true},
		{"contained", "13:15", "13:45", "13:00", "14:00", true},
		{"touching end to start", "12:00", "13:00", "13:00", "14:00", false},
		{"touching start to end", "14:00", "15:00", "13:00", "14:00", false},
		{"disjoint", "09:00", "10:00", "13:00", "14:00", false},
		{"identical", "13:00", "14:00", "13:00", "14:00", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			overlap, err := Overlap(tc.startA, tc.endA, tc.startB, tc.endB)
			assert.NoError(t, err)
			assert.Equal(t, tc.overlap, overlap)

			// Overlap is symmetric.
			mirrored, err := Overlap(tc.startB, tc.endB, tc.startA, tc.endA)
			assert.NoError(t, err)
			assert.Equal(t, tc.overlap, mirrored)
		})
	}

	_, err := Overlap("bad", "14:00", "13:00", "14:00")
	assert.Error(t, err)
}

func TestClockOrdering(t *testing.T) {
	assert.True(t, Before("09:00", "13:00"))
	assert.False(t, Before("13:00", "13:00"))
	assert.False(t, Before("14:00", "13:00"))

	// Unparsable values sort last.
	assert.True(t, Before("09:00", "nope"))
	assert.False(t, Before("nope", "09:00"))

	assert.Equal(t, "09:00", Min("09:00", "13:00"))
	assert.Equal(t, "13:00", Max("09:00", "13:00"))
	assert.Equal(t, "09:00", Clamp("08:00", "09:00", "19:00"))
	assert.Equal(t, "19:00", Clamp("20:00", "09:00", "19:00"))
	assert.Equal(t, "12:00", Clamp("12:00", "09:00", "19:00"))
}

func TestDateRoundTrip(t *testing.T) {
	parsed, err := ParseDate("2026-09-07")
	assert.NoError(t, err)
	assert.Equal(t, "2026-09-07", FormatDate(parsed))
	assert.Equal(t, time.September, parsed.Month())

	// Timestamps fall back to their date component.
	parsed, err = ParseDate("2026-09-07T13:00:00Z")
	assert.NoError(t, err)
	assert.Equal(t, "2026-09-07", FormatDate(parsed))

	_, err = ParseDate("07/09/2026")
	assert.Error(t, err)
}
