package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// AcquireOnce tries to acquire a dedup lock for a given handler + entity id.
// Returns true if this is the FIRST time processing, false on a duplicate.
// When Redis is unreachable the guard fails open so delivery is never blocked.
func (d *Deduper) AcquireOnce(ctx context.Context, handler string, id int) bool {
	key := fmt.Sprintf("dedup:%s:%d", handler, id)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// Release frees the slot again. Called when the guarded side effect
// failed after acquisition, so a redelivery is not mistaken for a
// duplicate.
func (d *Deduper) Release(ctx context.Context, handler string, id int) {
	key := fmt.Sprintf("dedup:%s:%d", handler, id)
	d.rdb.Del(ctx, key)
}
