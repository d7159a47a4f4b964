package state

import (
	"sync"
	"testing"
)

func TestStorePhase(t *testing.T) {
	store := NewStore()
	if got := store.Snapshot().Phase; got != BOOTING {
		t.Fatalf("initial phase = %v, want booting", got)
	}
	store.SetPhase(READY)
	if got := store.Snapshot().Phase.String(); got != "ready" {
		t.Errorf("phase = %q, want ready", got)
	}
	if got := Phase(99).String(); got != "unknown" {
		t.Errorf("Phase(99) = %q", got)
	}
}

func TestStoreRecordRenderConcurrent(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.RecordRender("png", i%5 != 0)
		}(i)
	}
	wg.Wait()

	snap := store.Snapshot()
	if snap.Renders.Rendered != 40 || snap.Renders.Failed != 10 {
		t.Errorf("rendered/failed = %d/%d, want 40/10", snap.Renders.Rendered, snap.Renders.Failed)
	}
	if snap.Renders.ByFormat["png"] != 40 {
		t.Errorf("png count = %d, want 40", snap.Renders.ByFormat["png"])
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	store := NewStore()
	store.RecordRender("gif", true)
	snap := store.Snapshot()
	snap.Renders.ByFormat["gif"] = 100
	if got := store.Snapshot().Renders.ByFormat["gif"]; got != 1 {
		t.Errorf("store mutated through snapshot: gif = %d", got)
	}
}
