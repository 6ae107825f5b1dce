package datetext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func TestExtract_StrictFull(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{
			name: "plain full format",
			text: "15.01.2026 14:00",
			want: time.Date(2026, time.January, 15, 14, 0, 0, 0, time.UTC),
		},
		{
			name: "surrounding whitespace",
			text: "  31.12.2025 09:30\n",
			want: time.Date(2025, time.December, 31, 9, 30, 0, 0, time.UTC),
		},
		{
			name: "past date still resolves",
			text: "01.02.2020 10:00",
			want: time.Date(2020, time.February, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text, testNow)
			require.True(t, got.OK)
			assert.Equal(t, tt.want, got.At)
		})
	}
}

func TestExtract_ShortFormatDefaultsToCurrentYear(t *testing.T) {
	got := Extract("15.01 14:00", testNow)
	require.True(t, got.OK)
	assert.Equal(t, time.Date(2025, time.January, 15, 14, 0, 0, 0, time.UTC), got.At)

	// No rollover: the derived date is in the past relative to testNow and
	// stays in the current year.
	assert.Equal(t, 2025, got.At.Year())
}

func TestExtract_ProseAroundDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{
			name: "russian negotiation phrase",
			text: "давайте 15.01 14:00 норм?",
			want: time.Date(2025, time.January, 15, 14, 0, 0, 0, time.UTC),
		},
		{
			name: "full date inside sentence",
			text: "ок, тогда 03.04.2026 11:15, жду",
			want: time.Date(2026, time.April, 3, 11, 15, 0, 0, time.UTC),
		},
		{
			name: "single digit day and month",
			text: "можно 5.9 10:00?",
			want: time.Date(2025, time.September, 5, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "first match wins",
			text: "15.01 14:00 или 16.01 15:00",
			want: time.Date(2025, time.January, 15, 14, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text, testNow)
			require.True(t, got.OK)
			assert.Equal(t, tt.want, got.At)
		})
	}
}

func TestExtract_Unresolved(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "no date at all", text: "hello there"},
		{name: "empty string", text: ""},
		{name: "date without time", text: "15.01.2026"},
		{name: "time without date", text: "в 14:00"},
		{name: "day 31 in april", text: "31.04 14:00"},
		{name: "day 31 in april full", text: "31.04.2026 14:00"},
		{name: "month 13", text: "01.13 14:00"},
		{name: "hour 25", text: "15.01 25:00"},
		{name: "minute 60 is not a clock", text: "15.01 14:60"},
		{name: "feb 29 outside leap year", text: "29.02 10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text, testNow)
			assert.False(t, got.OK, "expected unresolved for %q", tt.text)
		})
	}
}

func TestExtract_LeapYear(t *testing.T) {
	got := Extract("29.02.2028 10:00", testNow)
	require.True(t, got.OK)
	assert.Equal(t, time.Date(2028, time.February, 29, 10, 0, 0, 0, time.UTC), got.At)
}

func TestExtract_RoundTrip(t *testing.T) {
	// Strict full-format strings must recover every component exactly.
	for _, at := range []time.Time{
		time.Date(2026, time.January, 2, 8, 5, 0, 0, time.UTC),
		time.Date(2026, time.July, 31, 18, 45, 0, 0, time.UTC),
		time.Date(2027, time.November, 9, 23, 59, 0, 0, time.UTC),
	} {
		got := Extract(at.Format("02.01.2006 15:04"), testNow)
		require.True(t, got.OK)
		assert.True(t, got.At.Equal(at), "want %v, got %v", at, got.At)
	}
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("15.01.2026")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", day)

	_, err = ParseDay("2026-01-15")
	assert.Error(t, err)

	_, err = ParseDay("31.04.2026")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	clock, err := ParseClock(" 09:00 ")
	require.NoError(t, err)
	assert.Equal(t, "09:00", clock)

	_, err = ParseClock("9 утра")
	assert.Error(t, err)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}
