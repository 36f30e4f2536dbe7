package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(h, m int) time.Time {
	return time.Date(2026, 10, 17, h, m, 0, 0, time.UTC)
}

func TestIsOpenAt(t *testing.T) {
	tests := []struct {
		open, close string
		now         time.Time
		want        bool
	}{
		{"08:00", "22:00", at(12, 0), true},
		{"08:00", "22:00", at(7, 59), false},
		{"08:00", "22:00", at(22, 0), false},
		{"18:00", "02:00", at(23, 30), true},
		{"18:00", "02:00", at(1, 0), true},
		{"18:00", "02:00", at(3, 0), false},
	}
	for _, tt := range tests {
		got, err := IsOpenAt(tt.open, tt.close, tt.now)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s-%s at %s", tt.open, tt.close, FormatClock(tt.now))
	}

	_, err := IsOpenAt("8am", "22:00", at(12, 0))
	assert.True(t, IsKind(err, KindValidation))
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	assert.NoError(t, err)
	assert.Equal(t, 570, m)

	for _, bad := range []string{"9:30", "24:00", "12:60", ""} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestDayBoundaries(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 4, 5, 6, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), BeginningOfDay(now))
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), BeginningOfMonth(now))
	assert.Equal(t, 15, MinutesSince(now.Add(-15*time.Minute-30*time.Second), now))
}

func TestPage(t *testing.T) {
	page, limit, offset := Page(3, 0, 5)
	assert.Equal(t, []int{3, 5, 10}, []int{page, limit, offset})

	page, limit, offset = Page(0, 20, 10)
	assert.Equal(t, []int{1, 20, 0}, []int{page, limit, offset})
}
