package redisad

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"hotel_booking/internal/adapters/identity"
)

// Tokens persists the signed-in user's tokens for one device.
type Tokens struct {
	c   *redis.Client
	key string
}

func NewTokens(c *redis.Client, deviceID string) *Tokens {
	return &Tokens{c: c, key: "device:" + deviceID + ":session"}
}

func (t *Tokens) Load(ctx context.Context) (identity.Tokens, bool, error) {
	b, err := t.c.Get(ctx, t.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return identity.Tokens{}, false, nil
	}
	if err != nil {
		return identity.Tokens{}, false, errors.Wrap(err, "load session tokens")
	}
	var tok identity.Tokens
	if err := json.Unmarshal(b, &tok); err != nil {
		return identity.Tokens{}, false, errors.Wrap(err, "decode session tokens")
	}
	return tok, true, nil
}

func (t *Tokens) Save(ctx context.Context, tok identity.Tokens) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return errors.Wrap(err, "encode session tokens")
	}
	return errors.Wrap(t.c.Set(ctx, t.key, b, 0).Err(), "save session tokens")
}

func (t *Tokens) Clear(ctx context.Context) error {
	return errors.Wrap(t.c.Del(ctx, t.key).Err(), "clear session tokens")
}
