package state

import "sync"

type Phase int

const (
	LOADING Phase = iota
	READY
	FAILED
)

func (p Phase) String() string {
	switch p {
	case LOADING:
		return "loading"
	case READY:
		return "ready"
	case FAILED:
		return "failed"
	}
	return "unknown"
}

type LoadInfo struct {
	Loaded int
	Total  int
	Err    string
}

type CardInfo struct {
	Width    int
	Height   int
	Dragging bool
	Strokes  int
}

type NetworkInfo struct {
	URL string
}

type State struct {
	Phase   Phase
	Load    LoadInfo
	Card    CardInfo
	Network NetworkInfo
}

// Store holds the latest published State. The app event loop writes it;
// renderers and HTTP handlers read snapshots.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: LOADING}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.mu.Unlock()
}

func (store *Store) UpdateLoad(load LoadInfo) {
	store.mu.Lock()
	store.state.Load = load
	store.mu.Unlock()
}

func (store *Store) UpdateCard(card CardInfo) {
	store.mu.Lock()
	store.state.Card = card
	store.mu.Unlock()
}

func (store *Store) UpdateNetwork(network NetworkInfo) {
	store.mu.Lock()
	store.state.Network = network
	store.mu.Unlock()
}
