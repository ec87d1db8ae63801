package enhance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUStoreRoundTrip(t *testing.T) {
	store := NewLRUStore(8, time.Minute)

	_, ok := store.Get("missing")
	assert.False(t, ok)

	want := validEnhancement()
	store.Add("key", want)

	got, ok := store.Get("key")
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, store.Len())
}

func TestLRUStoreExpires(t *testing.T) {
	store := NewLRUStore(8, 20*time.Millisecond)
	store.Add("key", validEnhancement())

	time.Sleep(50 * time.Millisecond)

	_, ok := store.Get("key")
	assert.False(t, ok, "expired entries are misses")
}

func TestLRUStoreEvictsOldest(t *testing.T) {
	store := NewLRUStore(2, time.Minute)
	store.Add("a", validEnhancement())
	store.Add("b", validEnhancement())
	store.Add("c", validEnhancement())

	_, ok := store.Get("a")
	assert.False(t, ok, "capacity overflow evicts the oldest entry")
	assert.Equal(t, 2, store.Len())
}

func TestLRUStorePurge(t *testing.T) {
	store := NewLRUStore(8, time.Minute)
	store.Add("a", validEnhancement())
	store.Purge()
	assert.Equal(t, 0, store.Len())
}
