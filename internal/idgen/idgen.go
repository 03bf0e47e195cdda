// Package idgen issues identifiers for sessions, snapshots and positions.
package idgen

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// Monotonic entropy keeps IDs from the same millisecond increasing.
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// ULID returns a time-sortable identifier string.
func ULID() string {
	return ULIDAt(time.Now().UTC())
}

// ULIDAt returns a ULID stamped with t.
func ULIDAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t), mono)
	if err != nil {
		// Monotonic entropy overflows only after 2^80 IDs in one millisecond.
		return ulid.MustNew(ulid.Timestamp(t), cryptoRand.Reader).String()
	}
	return id.String()
}

// Clock issues int64 IDs derived from wall-clock time in units of 100µs,
// strictly increasing even when the clock stalls or steps back.
type Clock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewClock returns a Clock reading time.Now.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Next returns the next ID.
func (c *Clock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.now().UnixNano() / int64(100*time.Microsecond)
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}
