package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"edufunkids/internal/logger"
	"edufunkids/internal/repository"
)

const profileKeyPrefix = "edufunkids:profile:"

// ProfileCache is a read-through cache in front of a profile store. Writes go
// to the store first and then drop the cached copy. Redis failures are logged
// and never fail the call.
type ProfileCache struct {
	next repository.ProfileStore
	rdb  *goredis.Client
	ttl  time.Duration
	log  *logger.Logger
}

// NewProfileCache wraps next with a Redis cache
func NewProfileCache(next repository.ProfileStore, rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *ProfileCache {
	return &ProfileCache{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With("service", "ProfileCache"),
	}
}

func profileKey(userID string) string {
	return profileKeyPrefix + userID
}

func (c *ProfileCache) Get(ctx context.Context, userID string) (map[string]any, error) {
	raw, err := c.rdb.Get(ctx, profileKey(userID)).Bytes()
	switch {
	case err == nil:
		var doc map[string]any
		if jsonErr := json.Unmarshal(raw, &doc); jsonErr == nil && doc != nil {
			return doc, nil
		}
		c.log.Warn("discarding unreadable cached profile", "user_id", userID)
	case !errors.Is(err, goredis.Nil):
		c.log.Warn("profile cache read failed", "user_id", userID, "error", err)
	}

	doc, err := c.next.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, userID, doc)
	return doc, nil
}

func (c *ProfileCache) store(ctx context.Context, userID string, doc map[string]any) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, profileKey(userID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("profile cache write failed", "user_id", userID, "error", err)
	}
}

func (c *ProfileCache) invalidate(ctx context.Context, userID string) {
	if err := c.rdb.Del(ctx, profileKey(userID)).Err(); err != nil {
		c.log.Warn("profile cache invalidation failed", "user_id", userID, "error", err)
	}
}

func (c *ProfileCache) Set(ctx context.Context, userID string, doc map[string]any) error {
	if err := c.next.Set(ctx, userID, doc); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

func (c *ProfileCache) Update(ctx context.Context, userID string, fields map[string]any) error {
	if err := c.next.Update(ctx, userID, fields); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

func (c *ProfileCache) Delete(ctx context.Context, userID string) error {
	if err := c.next.Delete(ctx, userID); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}
