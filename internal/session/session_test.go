package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)}
}

func TestMergeKeepsExistingFacts(t *testing.T) {
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	first := Merge(nil, Details{Destination: "פראג", Travelers: 2}, now)
	require.NotEmpty(t, first.ID)
	assert.Equal(t, now, first.CreatedAt)
	assert.Equal(t, []string{}, first.Interests)

	later := now.Add(time.Hour)
	second := Merge(first, Details{Name: "דני", Interests: []string{"אוכל"}}, later)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "פראג", second.Destination)
	assert.Equal(t, 2, second.Travelers)
	assert.Equal(t, "דני", second.Name)
	assert.Equal(t, []string{"אוכל"}, second.Interests)
	assert.Equal(t, now, second.CreatedAt)
	assert.Equal(t, later, second.LastUpdated)

	// the input snapshot is untouched
	assert.Empty(t, first.Name)
}

func TestValidRequiresNameAndDestination(t *testing.T) {
	assert.False(t, (*VacationSession)(nil).Valid())
	assert.False(t, (&VacationSession{Destination: "פריז"}).Valid())
	assert.True(t, (&VacationSession{Destination: "פריז", Name: "רותם"}).Valid())
}

func TestDetailsEmpty(t *testing.T) {
	assert.True(t, Details{}.Empty())
	assert.False(t, Details{Travelers: 3}.Empty())
}

func TestNewIDIsSortableByTime(t *testing.T) {
	a := NewID(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	b := NewID(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	clock := newClock()
	store := NewMemoryStore(DefaultTTL, clock.Now)
	ctx := context.Background()

	saved, err := store.Save(ctx, "", Details{Destination: "אמסטרדם"})
	require.NoError(t, err)

	loaded, err := store.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "אמסטרדם", loaded.Destination)

	_, err = store.Save(ctx, saved.ID, Details{Name: "נועה"})
	require.NoError(t, err)
	loaded, err = store.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "נועה", loaded.Name)
	assert.Equal(t, "אמסטרדם", loaded.Destination)

	require.NoError(t, store.Clear(ctx, saved.ID))
	_, err = store.Load(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStoreKeepsCallerID(t *testing.T) {
	store := NewMemoryStore(DefaultTTL, newClock().Now)
	saved, err := store.Save(context.Background(), "widget-1", Details{Destination: "רומא"})
	require.NoError(t, err)
	assert.Equal(t, "widget-1", saved.ID)
}

func TestMemoryStoreExpiresOnRead(t *testing.T) {
	clock := newClock()
	store := NewMemoryStore(DefaultTTL, clock.Now)
	ctx := context.Background()

	saved, err := store.Save(ctx, "", Details{Destination: "וינה"})
	require.NoError(t, err)

	clock.Advance(23 * time.Hour)
	_, err = store.Load(ctx, saved.ID)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = store.Load(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNoSession)

	// a new save after expiry starts a fresh record under the same key
	fresh, err := store.Save(ctx, saved.ID, Details{Travelers: 2})
	require.NoError(t, err)
	assert.Empty(t, fresh.Destination)
	assert.Equal(t, clock.Now(), fresh.CreatedAt)
}

func TestMemoryStoreMalformedPayloadIsAbsent(t *testing.T) {
	store := NewMemoryStore(DefaultTTL, nil)
	store.put("broken", []byte("{not json"))
	_, err := store.Load(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrNoSession)

	store.put("empty", []byte(`{"destination":"פריז"}`))
	_, err = store.Load(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrNoSession)
}
