package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildShadows(t *testing.T) {
	buffered := ExistingBooking{
		Begin:        at(baseDay, 12, 0),
		End:          at(baseDay, 13, 0),
		BufferBefore: 3600 * time.Second,
		BufferAfter:  5400 * time.Second,
	}

	shadows := BuildShadows([]ExistingBooking{buffered})
	require.Len(t, shadows, 2)

	before, after := shadows[0], shadows[1]
	assert.Equal(t, ShadowBefore, before.Side)
	assert.Equal(t, at(baseDay, 11, 0), before.Start)
	assert.Equal(t, buffered.Begin, before.End)
	assert.Equal(t, time.Hour, before.End.Sub(before.Start))

	assert.Equal(t, ShadowAfter, after.Side)
	assert.Equal(t, buffered.End, after.Start)
	assert.Equal(t, 90*time.Minute, after.End.Sub(after.Start))
	assert.Equal(t, buffered, after.Source)
}

func TestBuildShadows_NoBuffers(t *testing.T) {
	shadows := BuildShadows([]ExistingBooking{{Begin: at(baseDay, 12, 0), End: at(baseDay, 13, 0)}})
	assert.Empty(t, shadows)
}

func TestBuildShadows_KeepsInputOrderWithoutMerging(t *testing.T) {
	first := ExistingBooking{Begin: at(baseDay, 14, 0), End: at(baseDay, 15, 0), BufferAfter: time.Hour}
	missing := ExistingBooking{BufferBefore: time.Hour, BufferAfter: time.Hour}
	second := ExistingBooking{Begin: at(baseDay, 10, 0), End: at(baseDay, 14, 30), BufferBefore: 30 * time.Minute, BufferAfter: time.Hour}

	shadows := BuildShadows([]ExistingBooking{first, missing, second})
	require.Len(t, shadows, 3)
	assert.Equal(t, first, shadows[0].Source)
	assert.Equal(t, second, shadows[1].Source)
	assert.Equal(t, ShadowBefore, shadows[1].Side)
	assert.Equal(t, second, shadows[2].Source)
	// the after-shadows of both bookings overlap and stay separate
	assert.True(t, shadows[2].Start.Before(shadows[0].End))
}
