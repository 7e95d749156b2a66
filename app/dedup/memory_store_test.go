package dedup

import (
	"context"
	"testing"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	set, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	set.Record(Key{Link: "l", Title: "t"})

	// Not visible until persisted
	fresh, _ := store.Load(ctx)
	if fresh.IsDuplicate(Key{Link: "l"}) {
		t.Error("Expected unpersisted changes to stay private")
	}

	if err := store.Persist(ctx, set); err != nil {
		t.Fatal(err)
	}
	if store.PersistCount() != 1 {
		t.Errorf("Expected 1 persist, got %d", store.PersistCount())
	}

	reloaded, _ := store.Load(ctx)
	if !reloaded.IsDuplicate(Key{Link: "l"}) || !reloaded.IsDuplicate(Key{Title: "t"}) {
		t.Error("Expected persisted keys after reload")
	}
}
