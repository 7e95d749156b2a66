package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/lysyi3m/rss-relay/app/dedup"
	"github.com/lysyi3m/rss-relay/app/rejects"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	c, err := NewCache(context.Background(), mr.Addr(), "relay:")
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return c, mr
}

func TestNewCache_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := NewCache(context.Background(), addr, "relay"); err == nil {
		t.Error("Expected an error for an unreachable server")
	}
}

func TestSeenKeyStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	store := NewSeenKeyStore(c)

	set, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load on empty Redis failed: %v", err)
	}
	if links, titles := set.Len(); links != 0 || titles != 0 {
		t.Fatalf("Expected empty set, got %d links, %d titles", links, titles)
	}

	set.Record(dedup.Key{Link: "https://example.com/a", Title: "первая новость"})
	set.Record(dedup.Key{Link: "https://example.com/b", Title: ""})
	if err := store.Persist(ctx, set); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	if !mr.Exists("relay:seen:links") {
		t.Error("Expected keys under the configured prefix")
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if links, titles := loaded.Len(); links != 2 || titles != 2 {
		t.Errorf("Expected 2 links and 2 titles, got %d and %d", links, titles)
	}
	if !loaded.IsDuplicate(dedup.Key{Title: "первая новость"}) {
		t.Error("Expected stored title to be a duplicate")
	}

	// An empty set clears previous state
	if err := store.Persist(ctx, dedup.NewSet()); err != nil {
		t.Fatalf("Persist of empty set failed: %v", err)
	}
	loaded, _ = store.Load(ctx)
	if links, titles := loaded.Len(); links != 0 || titles != 0 {
		t.Errorf("Expected empty set after replace, got %d links, %d titles", links, titles)
	}
}

func TestRejectList_AppendAndList(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	list := NewRejectList(c)

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, title := range []string{"one", "two", "three"} {
		record := rejects.Record{Title: title, Link: "https://example.com/" + title, Reason: rejects.ReasonDuplicate, Time: now.Add(time.Duration(i) * time.Minute)}
		if err := list.Append(ctx, record); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	mr.RPush("relay:rejects", "{broken")

	all, err := list.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 valid records, got %d", len(all))
	}
	if !all[0].Time.Equal(now) {
		t.Errorf("Expected time %v, got %v", now, all[0].Time)
	}

	last, err := list.List(ctx, 3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(last) != 2 || last[0].Title != "two" || last[1].Title != "three" {
		t.Errorf("Expected the newest valid records, got %+v", last)
	}
}
