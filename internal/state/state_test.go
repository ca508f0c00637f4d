package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreSnapshots(t *testing.T) {
	store := NewStore()
	assert.Equal(t, LOADING, store.Snapshot().Phase)

	store.UpdateLoad(LoadInfo{Loaded: 1, Total: 2})
	store.UpdateCard(CardInfo{Width: 10, Height: 20, Strokes: 3})
	store.SetPhase(READY)

	snap := store.Snapshot()
	assert.Equal(t, READY, snap.Phase)
	assert.Equal(t, "ready", snap.Phase.String())
	assert.Equal(t, 1, snap.Load.Loaded)
	assert.Equal(t, 3, snap.Card.Strokes)
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.UpdateCard(CardInfo{Strokes: i})
		}()
		go func() {
			defer wg.Done()
			_ = store.Snapshot()
		}()
	}
	wg.Wait()
}
