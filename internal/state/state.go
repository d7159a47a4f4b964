package state

import (
	"sync"
	"time"
)

type Phase int

const (
	BOOTING Phase = iota
	READY
	STOPPING
)

func (p Phase) String() string {
	switch p {
	case BOOTING:
		return "booting"
	case READY:
		return "ready"
	case STOPPING:
		return "stopping"
	default:
		return "unknown"
	}
}

type FontInfo struct {
	Source  string
	LastErr string
}

type RenderStats struct {
	Rendered int64
	Failed   int64
	// ByFormat counts successful renders per image format.
	ByFormat map[string]int64
}

type State struct {
	Phase     Phase
	StartedAt time.Time
	Font      FontInfo
	Renders   RenderStats
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{
		Phase:     BOOTING,
		StartedAt: time.Now(),
		Renders:   RenderStats{ByFormat: map[string]int64{}},
	}}
}

// Snapshot returns a copy of the state that is safe to keep.
func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()

	out := store.state
	out.Renders.ByFormat = make(map[string]int64, len(store.state.Renders.ByFormat))
	for k, v := range store.state.Renders.ByFormat {
		out.Renders.ByFormat[k] = v
	}
	return out
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.mu.Unlock()
}

func (store *Store) UpdateFont(font FontInfo) {
	store.mu.Lock()
	store.state.Font = font
	store.mu.Unlock()
}

// RecordRender counts one image request. format is ignored for failures.
func (store *Store) RecordRender(format string, ok bool) {
	store.mu.Lock()
	if ok {
		store.state.Renders.Rendered++
		store.state.Renders.ByFormat[format]++
	} else {
		store.state.Renders.Failed++
	}
	store.mu.Unlock()
}
