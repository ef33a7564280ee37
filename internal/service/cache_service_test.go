package service

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/curasense/auth-service/internal/dto"
	"github.com/curasense/auth-service/pkg/logger"
	"github.com/curasense/auth-service/pkg/redis"
)

func newTestProfileCache(t *testing.T) *ProfileCache {
	t.Helper()
	logger.InitNop()

	mr := miniredis.RunT(t)
	client := redis.NewClient(redis.Config{
		Addr:    mr.Addr(),
		Enabled: true,
	})
	t.Cleanup(func() { client.Close() })

	return NewProfileCache(client)
}

func TestProfileCache_RoundTrip(t *testing.T) {
	cache := newTestProfileCache(t)

	profile := &dto.UserResponse{
		ID:        7,
		Email:     "jane@example.com",
		FirstName: "Jane",
	}

	if got := cache.Get(testCtx, 7); got != nil {
		t.Error("Expected miss before Set")
	}

	cache.Set(testCtx, profile)

	got := cache.Get(testCtx, 7)
	if got == nil {
		t.Fatal("Expected hit after Set")
	}
	if got.Email != "jane@example.com" || got.ID != 7 {
		t.Errorf("Expected cached profile to round-trip, got %+v", got)
	}
}

func TestProfileCache_Invalidate(t *testing.T) {
	cache := newTestProfileCache(t)

	cache.Set(testCtx, &dto.UserResponse{ID: 7, Email: "jane@example.com"})
	cache.Invalidate(testCtx, 7)

	if got := cache.Get(testCtx, 7); got != nil {
		t.Error("Expected miss after Invalidate")
	}
}

func TestProfileCache_DisabledClient(t *testing.T) {
	logger.InitNop()
	cache := NewProfileCache(redis.NewClient(redis.Config{Enabled: false}))

	// Every operation is a no-op; nothing panics and reads miss
	cache.Set(testCtx, &dto.UserResponse{ID: 7})
	if got := cache.Get(testCtx, 7); got != nil {
		t.Error("Expected disabled cache to always miss")
	}
	cache.Invalidate(testCtx, 7)
}

func TestProfileCache_CorruptEntry(t *testing.T) {
	logger.InitNop()

	mr := miniredis.RunT(t)
	client := redis.NewClient(redis.Config{Addr: mr.Addr(), Enabled: true})
	t.Cleanup(func() { client.Close() })
	cache := NewProfileCache(client)

	mr.Set("profile:7", "{not json")

	if got := cache.Get(testCtx, 7); got != nil {
		t.Error("Expected corrupt entry to read as a miss")
	}

	// The bad entry is dropped so the next Set repairs the key
	if mr.Exists("profile:7") {
		t.Error("Expected corrupt entry to be deleted")
	}
}
