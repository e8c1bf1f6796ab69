package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const comprasKeyPrefix = "compras_mes:"

type comprasEntry struct {
	Mes   string          `json:"mes"`
	Monto decimal.Decimal `json:"monto"`
}

type RedisComprasCache struct {
	client *redis.Client
}

func NewRedisComprasCache(client *redis.Client) *RedisComprasCache {
	return &RedisComprasCache{client: client}
}

// Get returns a hit only when the cached entry belongs to the requested month,
// so a stale value from last month is never served after the month rolls over.
func (c *RedisComprasCache) Get(ctx context.Context, clienteID uuid.UUID, mes string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, comprasKeyPrefix+clienteID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	var entry comprasEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return decimal.Zero, false, err
	}
	if entry.Mes != mes {
		return decimal.Zero, false, nil
	}
	return entry.Monto, true, nil
}

func (c *RedisComprasCache) Set(ctx context.Context, clienteID uuid.UUID, mes string, monto decimal.Decimal, ttl time.Duration) error {
	payload, err := json.Marshal(comprasEntry{Mes: mes, Monto: monto})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, comprasKeyPrefix+clienteID.String(), payload, ttl).Err()
}

func (c *RedisComprasCache) Invalidate(ctx context.Context, clienteID uuid.UUID) error {
	return c.client.Del(ctx, comprasKeyPrefix+clienteID.String()).Err()
}
