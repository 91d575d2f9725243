package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*miniredis.Miniredis, *CacheHelper) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewCacheHelper(client, "test:")
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheSetGet(t *testing.T) {
	_, helper := newTestHelper(t)
	ctx := context.Background()

	want := payload{Name: "Studio A", Count: 3}
	if err := helper.Set(ctx, "key", want, time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "key", &got); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCacheGetMiss(t *testing.T) {
	_, helper := newTestHelper(t)

	var got payload
	err := helper.Get(context.Background(), "missing", &got)
	if err != ErrCacheNotFound {
		t.Fatalf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheNilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "test:")
	ctx := context.Background()

	if err := helper.Set(ctx, "key", payload{}, time.Minute); err != nil {
		t.Errorf("Set with nil client should be a no-op, got %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "key", &got); err != ErrCacheNotAvailable {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}
}

func TestCacheOrExecute(t *testing.T) {
	_, helper := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return payload{Name: "Studio A", Count: calls}, nil
	}

	var first payload
	if err := helper.CacheOrExecute(ctx, "key", &first, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute returned error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}

	// Second call is served from cache.
	var second payload
	if err := helper.CacheOrExecute(ctx, "key", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute returned error: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
	if second != first {
		t.Errorf("cached value %+v differs from fetched %+v", second, first)
	}
}

func TestCacheOrExecuteFetchError(t *testing.T) {
	_, helper := newTestHelper(t)

	fetchErr := errors.New("db down")
	var got payload
	err := helper.CacheOrExecute(context.Background(), "key", &got, time.Minute, func() (interface{}, error) {
		return nil, fetchErr
	})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
}

func TestInvalidatePattern(t *testing.T) {
	_, helper := newTestHelper(t)
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		if err := helper.Set(ctx, fmt.Sprintf("classroom:room-1:%d", i), payload{Count: i}, time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	if err := helper.Set(ctx, "classroom:room-2:0", payload{}, time.Minute); err != nil {
		t.Fatal(err)
	}

	if err := helper.InvalidatePattern(ctx, "classroom:room-1:*"); err != nil {
		t.Fatalf("InvalidatePattern returned error: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "classroom:room-1:0", &got); err != ErrCacheNotFound {
		t.Errorf("room-1 entries should be gone, got %v", err)
	}
	if err := helper.Get(ctx, "classroom:room-2:0", &got); err != nil {
		t.Errorf("room-2 entry should survive: %v", err)
	}
}

func TestInvalidateAvailability(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	manager := NewCacheManager(client)
	ctx := context.Background()

	keys := []string{
		"classroom:room-1:day:1710374400",
		"classroom:room-2:day:1710374400",
		"all:week:1710115200",
	}
	for _, key := range keys {
		if err := manager.Availability.Set(ctx, key, payload{}, time.Minute); err != nil {
			t.Fatal(err)
		}
	}

	manager.InvalidateAvailability(ctx, "room-1")

	var got payload
	if err := manager.Availability.Get(ctx, "classroom:room-1:day:1710374400", &got); err != ErrCacheNotFound {
		t.Errorf("room-1 entry should be invalidated, got %v", err)
	}
	if err := manager.Availability.Get(ctx, "all:week:1710115200", &got); err != ErrCacheNotFound {
		t.Errorf("all-classrooms entry should be invalidated, got %v", err)
	}
	if err := manager.Availability.Get(ctx, "classroom:room-2:day:1710374400", &got); err != nil {
		t.Errorf("room-2 entry should survive: %v", err)
	}
}
