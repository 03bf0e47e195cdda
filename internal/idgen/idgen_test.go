package idgen

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestULID_SortableAndParsable(t *testing.T) {
	prev := ""
	for i := 0; i < 100; i++ {
		id := ULID()
		_, err := ulid.ParseStrict(id)
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestULIDAt_Timestamp(t *testing.T) {
	at := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	id := ulid.MustParse(ULIDAt(at))
	assert.Equal(t, ulid.Timestamp(at), id.Time())
}

func TestClock_MonotonicWhenTimeStalls(t *testing.T) {
	fixed := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	c := &Clock{now: func() time.Time { return fixed }}

	first := c.Next()
	assert.Equal(t, fixed.UnixNano()/int64(100*time.Microsecond), first)
	assert.Equal(t, first+1, c.Next())
	assert.Equal(t, first+2, c.Next())
}

func TestClock_StepBack(t *testing.T) {
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	c := &Clock{now: func() time.Time { return now }}
	a := c.Next()
	now = now.Add(-time.Second)
	b := c.Next()
	assert.Greater(t, b, a)
}
