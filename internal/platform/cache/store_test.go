package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newClockedStore[V any](ttl time.Duration, maxEntries int) (*Store[V], *time.Time) {
	s := New[V](ttl, maxEntries)
	now := time.Date(2031, 3, 6, 19, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestStore_GetOrLoad_CollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := New[[]string](time.Minute, 0)
	var calls atomic.Int32
	load := func(context.Context) ([]string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return []string{"player-01", "player-02"}, nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "roster:thursday-ladder", load)
			if err != nil || len(v) != 2 {
				t.Errorf("unexpected result %v, %v", v, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one load, got %d", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	store := New[int](time.Minute, 0)
	boom := errors.New("boom")

	if _, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	v, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("expected reload after error, got %d %v", v, err)
	}
}

func TestStore_Expiry(t *testing.T) {
	store, now := newClockedStore[string](time.Minute, 0)
	store.Set("league:thursday-ladder", "Thursday Night Ladder")

	if _, ok := store.Get("league:thursday-ladder"); !ok {
		t.Fatalf("expected hit before expiry")
	}
	*now = now.Add(time.Minute)
	if _, ok := store.Get("league:thursday-ladder"); ok {
		t.Fatalf("expected miss at expiry")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry should be dropped on read")
	}
}

func TestStore_EvictsClosestToExpiryWhenFull(t *testing.T) {
	store, now := newClockedStore[int](time.Minute, 2)
	store.Set("a", 1)
	*now = now.Add(time.Second)
	store.Set("b", 2)
	store.Set("c", 3)

	if _, ok := store.Get("a"); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
	for _, key := range []string{"b", "c"} {
		if _, ok := store.Get(key); !ok {
			t.Fatalf("expected %s to survive", key)
		}
	}

	store.Set("b", 20)
	if store.Len() != 2 {
		t.Fatalf("overwriting an entry must not evict, len=%d", store.Len())
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	store := New[int](time.Minute, 0)
	store.Set("league:id:a", 1)
	store.Set("league:list", 2)
	store.Set("member:list:a", 3)

	store.DeletePrefix("league:")

	if store.Len() != 1 {
		t.Fatalf("expected only member entry left, got %d", store.Len())
	}
	if _, ok := store.Get("member:list:a"); !ok {
		t.Fatalf("expected member entry to remain")
	}

	store.Clear()
	if store.Len() != 0 {
		t.Fatalf("expected empty cache after clear, got %d", store.Len())
	}
}

func TestStore_NilIsDisabled(t *testing.T) {
	store := New[int](0, 10)
	if store != nil {
		t.Fatalf("expected nil store for zero ttl")
	}
	store.Set("k", 1)
	if _, ok := store.Get("k"); ok {
		t.Fatalf("nil store should never hit")
	}

	var loads int
	for range 2 {
		_, _ = store.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) {
			loads++
			return 1, nil
		})
	}
	if loads != 2 {
		t.Fatalf("nil store should load every time, got %d loads", loads)
	}
}
