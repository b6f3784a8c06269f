package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
		wantErr  bool
	}{
		{"2024-03-01", day(2024, time.March, 1), false},
		{" 01.03.2024 ", day(2024, time.March, 1), false},
		{"03/01/2024", time.Time{}, true},
		{"", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, got)
	}
}

func TestFormatting(t *testing.T) {
	ts := time.Date(2024, time.March, 1, 14, 5, 9, 123456789, time.FixedZone("CET", 3600))

	assert.Equal(t, "2024-03-01", ToISODate(ts))
	assert.Equal(t, "01.03.2024", ToEuropeanDate(ts))
	assert.Equal(t, "", ToEuropeanDate(time.Time{}))
	assert.Equal(t, "2024-03-01T13:05:09.123Z", CreationTimestamp(ts))
	assert.Equal(t, "2024-03-01 14:05:09", ts.Format(DateLayoutMessageID))
	assert.Equal(t, "2024-03-01-14-05-09", ts.Format(DateLayoutFileStamp))
}

func TestDateOnlyAndSameDay(t *testing.T) {
	ts := time.Date(2024, time.March, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, day(2024, time.March, 1), DateOnly(ts))
	assert.True(t, SameDay(ts, day(2024, time.March, 1)))
	assert.False(t, SameDay(ts, day(2024, time.March, 2)))
}

func TestIsWeekend(t *testing.T) {
	assert.False(t, IsWeekend(day(2024, time.March, 1)))
	assert.True(t, IsWeekend(day(2024, time.March, 2)))
	assert.True(t, IsWeekend(day(2024, time.March, 3)))
	assert.False(t, IsWeekend(day(2024, time.March, 4)))
}

func TestNextBusinessDay(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected time.Time
	}{
		{"Monday → Tuesday", day(2023, time.January, 16), day(2023, time.January, 17)},
		{"Friday → Monday", day(2023, time.January, 20), day(2023, time.January, 23)},
		{"Saturday → Monday", day(2023, time.January, 21), day(2023, time.January, 23)},
		{"Sunday → Monday", day(2023, time.January, 22), day(2023, time.January, 23)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NextBusinessDay(tc.date))
		})
	}
}
