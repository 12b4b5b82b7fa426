package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_CollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "line", nil
	}

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			v, err := store.GetOrLoad(context.Background(), "season:p1:PTS", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "line" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := calls.Load(); got < 1 || got > workers {
		t.Fatalf("loader called %d times", got)
	}
	if _, ok := store.Get(context.Background(), "season:p1:PTS"); !ok {
		t.Fatalf("expected loaded value to be cached")
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	for i := 0; i < 3; i++ {
		if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
			t.Fatalf("GetOrLoad error: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	boom := errors.New("boom")
	_, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store after failed load, got %d entries", store.Len())
	}
}

func TestStore_ExpiresEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "game:id:g1", 1)
	now = now.Add(59 * time.Second)
	if _, ok := store.Get(context.Background(), "game:id:g1"); !ok {
		t.Fatalf("expected entry before ttl elapsed")
	}
	now = now.Add(time.Second)
	if _, ok := store.Get(context.Background(), "game:id:g1"); ok {
		t.Fatalf("expected entry to expire at ttl")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := context.Background()
	store.Set(ctx, "game:owner:u1", 1)
	store.Set(ctx, "game:owner:u2", 2)
	store.Set(ctx, "game:id:g1", 3)

	store.DeletePrefix(ctx, "game:owner:")
	if store.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", store.Len())
	}
	if _, ok := store.Get(ctx, "game:id:g1"); !ok {
		t.Fatalf("expected unrelated key to survive")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")

func TestStore_GetOrLoad_SkipsCachingAcrossInvalidation(t *testing.T) {
	store := NewStore(time.Minute)
	ctx := context.Background()

	value, err := store.GetOrLoad(ctx, "game:id:g1", func(ctx context.Context) (any, error) {
		store.Delete(ctx, "game:id:g1")
		return "stale", nil
	})
	if err != nil || value != "stale" {
		t.Fatalf("expected loaded value returned, got %v err=%v", value, err)
	}
	if _, ok := store.Get(ctx, "game:id:g1"); ok {
		t.Fatalf("expected value loaded during an invalidation not to be cached")
	}

	if _, err := store.GetOrLoad(ctx, "game:id:g1", func(context.Context) (any, error) { return "fresh", nil }); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cached, ok := store.Get(ctx, "game:id:g1"); !ok || cached != "fresh" {
		t.Fatalf("expected fresh value cached, got %v ok=%t", cached, ok)
	}
}
