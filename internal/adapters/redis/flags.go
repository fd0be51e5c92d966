package redisad

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// Flags is the device-local key/value storage. Keys never expire and are
// namespaced by device so several app instances can share one redis.
type Flags struct {
	c      *redis.Client
	prefix string
}

func NewFlags(c *redis.Client, deviceID string) *Flags {
	return &Flags{c: c, prefix: "device:" + deviceID + ":flag:"}
}

func (f *Flags) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := f.c.Get(ctx, f.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "flag get %s", key)
	}
	return v, true, nil
}

func (f *Flags) Set(ctx context.Context, key, value string) error {
	return errors.Wrapf(f.c.Set(ctx, f.prefix+key, value, 0).Err(), "flag set %s", key)
}
