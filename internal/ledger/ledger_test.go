package ledger

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/dappulse/internal/domain/models"
)

func TestLedger_AddValidation(t *testing.T) {
	cases := []struct {
		name    string
		spec    models.PositionSpec
		wantErr bool
	}{
		{name: "simple", spec: models.PositionSpec{Instrument: " CLZ5 ", Lots: 10, EntryPrice: 69}},
		{name: "structure", spec: models.PositionSpec{Name: "fly", Legs: []models.Leg{{Instrument: "CLZ5", Ratio: 1}, {Instrument: "CLF6", Ratio: -2}, {Instrument: "CLG6", Ratio: 1}}, Lots: 1}},
		{name: "zero lots allowed", spec: models.PositionSpec{Instrument: "CLZ5"}},
		{name: "nothing", spec: models.PositionSpec{Lots: 1}, wantErr: true},
		{name: "both", spec: models.PositionSpec{Instrument: "CLZ5", Legs: []models.Leg{{Instrument: "CLF6", Ratio: 1}}}, wantErr: true},
		{name: "blank leg", spec: models.PositionSpec{Legs: []models.Leg{{Instrument: "  ", Ratio: 1}}}, wantErr: true},
		{name: "zero ratio", spec: models.PositionSpec{Legs: []models.Leg{{Instrument: "CLZ5", Ratio: 0}}}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := New(nil)
			id, err := l.Add(tc.spec)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidPosition))
				assert.Zero(t, l.Len())
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, id)
			p, ok := l.Get(id)
			require.True(t, ok)
			assert.Equal(t, id, p.ID)
			assert.False(t, p.CreatedAt.IsZero())
		})
	}
}

func TestLedger_TrimsNames(t *testing.T) {
	l := New(nil)
	id, err := l.Add(models.PositionSpec{Instrument: " CLZ5 ", Lots: 1})
	require.NoError(t, err)
	p, _ := l.Get(id)
	assert.Equal(t, "CLZ5", p.Instrument)
}

func TestLedger_IDsIncreaseAndRemove(t *testing.T) {
	l := New(nil)
	a, _ := l.Add(models.PositionSpec{Instrument: "A", Lots: 1})
	b, _ := l.Add(models.PositionSpec{Instrument: "B", Lots: 1})
	c, _ := l.Add(models.PositionSpec{Instrument: "C", Lots: 1})
	assert.Less(t, a, b)
	assert.Less(t, b, c)

	assert.True(t, l.Remove(b))
	assert.False(t, l.Remove(b))
	assert.False(t, l.Remove(12345))

	list := l.List()
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Instrument)
	assert.Equal(t, "C", list[1].Instrument)

	assert.Equal(t, 2, l.Clear())
	assert.Empty(t, l.List())
}

func TestLedger_ListReturnsCopies(t *testing.T) {
	l := New(nil)
	tv := 50.0
	id, _ := l.Add(models.PositionSpec{Legs: []models.Leg{{Instrument: "A", Ratio: 1}, {Instrument: "B", Ratio: -1}}, TickValueOverride: &tv})
	tv = 1

	list := l.List()
	list[0].Legs[0].Instrument = "mutated"
	*list[0].TickValueOverride = 999

	p, _ := l.Get(id)
	assert.Equal(t, "A", p.Legs[0].Instrument)
	assert.Equal(t, 50.0, *p.TickValueOverride)
}

func TestLedger_ConcurrentAdds(t *testing.T) {
	l := New(nil)
	var wg sync.WaitGroup
	ids := make(chan int64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := l.Add(models.PositionSpec{Instrument: "CLZ5", Lots: 1})
			if err == nil {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}

func TestRegistry_IsolationAndExpiry(t *testing.T) {
	r := NewRegistry(time.Hour)
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	s1 := r.Create()
	s2 := r.Create()
	require.NotEqual(t, s1, s2)

	l1, err := r.Ledger(s1)
	require.NoError(t, err)
	_, _ = l1.Add(models.PositionSpec{Instrument: "CLZ5", Lots: 1})

	l2, err := r.Ledger(s2)
	require.NoError(t, err)
	assert.Zero(t, l2.Len())

	_, err = r.Ledger("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	now = now.Add(30 * time.Minute)
	_, err = r.Ledger(s1)
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	assert.Equal(t, 1, r.Sweep()) // s2 idle for 75 minutes
	_, err = r.Ledger(s2)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	l1again, err := r.Ledger(s1)
	require.NoError(t, err)
	assert.Equal(t, 1, l1again.Len())

	now = now.Add(61 * time.Minute)
	_, err = r.Ledger(s1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, r.Len())
}

func TestRegistry_Delete(t *testing.T) {
	r := NewRegistry(0)
	id := r.Create()
	assert.True(t, r.Delete(id))
	assert.False(t, r.Delete(id))
}
