package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIntervals(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		interval StartInterval
		want     []string
	}{
		{
			name:     "quarter hours through a morning",
			start:    "09:00:00",
			end:      "12:00:00",
			interval: Interval15Minutes,
			want: []string{
				"09:00:00", "09:15:00", "09:30:00", "09:45:00",
				"10:00:00", "10:15:00", "10:30:00", "10:45:00",
				"11:00:00", "11:15:00", "11:30:00", "11:45:00",
				"12:00:00",
			},
		},
		{
			name:     "short clock format",
			start:    "10:00",
			end:      "12:00",
			interval: Interval60Minutes,
			want:     []string{"10:00:00", "11:00:00", "12:00:00"},
		},
		{
			name:     "end off the grid stops at the last boundary",
			start:    "10:00",
			end:      "12:00",
			interval: Interval90Minutes,
			want:     []string{"10:00:00", "11:30:00"},
		},
		{
			name:     "midnight end keeps the final interval",
			start:    "22:00",
			end:      "00:00",
			interval: Interval60Minutes,
			want:     []string{"22:00:00", "23:00:00"},
		},
		{name: "equal bounds", start: "09:00:00", end: "09:00:00", interval: Interval15Minutes},
		{name: "inverted bounds", start: "12:00", end: "09:00", interval: Interval30Minutes},
		{name: "unrecognized interval", start: "09:00", end: "12:00", interval: StartInterval(0)},
		{name: "out of range interval", start: "09:00", end: "12:00", interval: StartInterval(42)},
		{name: "unparsable start", start: "nine", end: "12:00", interval: Interval15Minutes},
		{name: "unparsable end", start: "09:00", end: "25:99", interval: Interval15Minutes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateIntervals(tt.start, tt.end, tt.interval)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, clocks(got))
		})
	}
}

func TestGenerateIntervals_WholeDayNeverOffersSentinel(t *testing.T) {
	got := GenerateIntervals("00:00", "00:00", Interval90Minutes)
	require.Len(t, got, 16)
	assert.Equal(t, "00:00:00", got[0].String())
	assert.Equal(t, "22:30:00", got[len(got)-1].String())

	odd := GenerateIntervals("08:59", "00:00", Interval15Minutes)
	require.NotEmpty(t, odd)
	assert.Equal(t, "23:44:00", odd[len(odd)-1].String())
}

func TestGenerateIntervals_Deterministic(t *testing.T) {
	first := GenerateIntervals("07:30", "21:00", Interval30Minutes)
	second := GenerateIntervals("07:30", "21:00", Interval30Minutes)
	assert.Equal(t, first, second)
}

func TestParseStartInterval(t *testing.T) {
	tests := []struct {
		in     string
		want   StartInterval
		wantOK bool
	}{
		{"INTERVAL_15_MINS", Interval15Minutes, true},
		{"interval_30_mins", Interval30Minutes, true},
		{"INTERVAL_60_MINUTES", Interval60Minutes, true},
		{" 90 ", Interval90Minutes, true},
		{"INTERVAL_120_MINS", StartInterval(0), false},
		{"", StartInterval(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseStartInterval(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStartIntervalString(t *testing.T) {
	assert.Equal(t, "INTERVAL_90_MINS", Interval90Minutes.String())
	assert.Equal(t, "INVALID", StartInterval(7).String())
	assert.False(t, StartInterval(0).Valid())
}

func TestFormatLabel(t *testing.T) {
	c, err := ParseClock("07:05:59")
	require.NoError(t, err)
	assert.Equal(t, "07:05", FormatLabel(c))
}
