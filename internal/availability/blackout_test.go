package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollidesWithBlackout(t *testing.T) {
	begin := baseDay.AddDays(7)
	end := baseDay.AddDays(9)
	blackouts := []Blackout{NewBlackout(begin, end)}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"first instant of the first day", at(begin, 0, 0), true},
		{"middle day", at(baseDay.AddDays(8), 11, 0), true},
		{"last second of the last day", at(end, 23, 59).Add(59 * time.Second), true},
		{"midnight after the last day", at(end.AddDays(1), 0, 0), false},
		{"second before the first day", at(begin, 0, 0).Add(-time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollidesWithBlackout(tt.at, blackouts))
		})
	}
}

func TestCollidesWithBlackoutIn_IgnoresWrittenOffset(t *testing.T) {
	day := baseDay.AddDays(7)
	blackouts := []Blackout{NewBlackout(day, day)}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"local offset early on the day", at(day, 0, 30), true},
		{"same instant written in UTC", at(day, 0, 30).UTC(), true},
		{"UTC instant on the following local day", at(day.AddDays(1), 0, 30).UTC(), false},
		{"UTC instant before the local day", at(day, 0, 0).Add(-time.Second).UTC(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollidesWithBlackoutIn(tt.at, helsinki, blackouts))
		})
	}

	// without a location the dates are read in the instant's own offset
	assert.False(t, CollidesWithBlackout(at(day, 0, 30).UTC(), blackouts))
}

func TestCollidesWithBlackout_Empty(t *testing.T) {
	assert.False(t, CollidesWithBlackout(at(baseDay, 10, 0), nil))
	assert.False(t, CollidesWithBlackout(at(baseDay, 10, 0), []Blackout{}))
}

func TestNewBlackoutOrdersBounds(t *testing.T) {
	b := NewBlackout(baseDay.AddDays(3), baseDay)
	assert.Equal(t, baseDay, b.Begin)
	assert.Equal(t, baseDay.AddDays(3), b.End)
}
