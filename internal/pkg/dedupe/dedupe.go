package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Deduper guards one-shot side effects across workers with a Redis SETNX key.
// A nil Redis client makes every key acquirable.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func New(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl, logger: logger}
}

// AcquireOnce reports whether the caller is the first to claim scope:id.
// Redis errors let the caller proceed.
func (d *Deduper) AcquireOnce(ctx context.Context, scope, id string) bool {
	if d == nil || d.rdb == nil {
		return true
	}

	key := fmt.Sprintf("dedup:%s:%s", scope, id)
	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		if d.logger != nil {
			d.logger.WithError(err).WithField("key", key).Warn("dedupe check failed, allowing")
		}
		return true
	}
	if !ok && d.logger != nil {
		d.logger.WithField("key", key).Debug("skipped duplicate")
	}
	return ok
}

// Release drops a claim so a later attempt can retry.
func (d *Deduper) Release(ctx context.Context, scope, id string) {
	if d == nil || d.rdb == nil {
		return
	}
	key := fmt.Sprintf("dedup:%s:%s", scope, id)
	if err := d.rdb.Del(ctx, key).Err(); err != nil && d.logger != nil {
		d.logger.WithError(err).WithField("key", key).Warn("dedupe release failed")
	}
}
