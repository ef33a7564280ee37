package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/curasense/auth-service/internal/dto"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"github.com/curasense/auth-service/pkg/redis"
)

const profileCacheTTL = 5 * time.Minute

// ProfileCache keeps serialized user projections in Redis so the /users/me
// hot path skips the database. Cache misses and Redis outages both fall
// through to the database; the cache only ever makes reads cheaper, never
// correctness-relevant.
type ProfileCache struct {
	client *redis.Client
}

func NewProfileCache(client *redis.Client) *ProfileCache {
	return &ProfileCache{client: client}
}

func profileCacheKey(userID uint) string {
	return fmt.Sprintf("profile:%d", userID)
}

// Get returns the cached projection for the user, or nil on miss.
func (c *ProfileCache) Get(ctx context.Context, userID uint) *dto.UserResponse {
	if !c.client.IsEnabled() {
		return nil
	}

	raw, ok := c.client.Get(ctx, profileCacheKey(userID))
	if !ok {
		return nil
	}

	var profile dto.UserResponse
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		// A corrupt entry is treated as a miss and overwritten on next Set
		logger.WarnWithContext(ctx, "Dropping unreadable cached profile").
			Uint("user_id", userID).
			Err(err).
			Log()
		c.client.Delete(ctx, profileCacheKey(userID))
		return nil
	}

	return &profile
}

// Set stores the projection. Serialization failures are logged and ignored.
func (c *ProfileCache) Set(ctx context.Context, profile *dto.UserResponse) {
	if !c.client.IsEnabled() || profile == nil {
		return
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to serialize profile for cache").
			Uint("user_id", profile.ID).
			Err(err).
			Log()
		return
	}

	c.client.Set(ctx, profileCacheKey(profile.ID), string(raw), profileCacheTTL)
}

// Invalidate drops the cached projection after any profile mutation.
func (c *ProfileCache) Invalidate(ctx context.Context, userID uint) {
	if !c.client.IsEnabled() {
		return
	}

	ctx = ctxutil.WithOperation(ctx, "cache", "InvalidateProfile")
	c.client.Delete(ctx, profileCacheKey(userID))
}
