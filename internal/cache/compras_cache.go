// Package cache keeps the per-client monthly purchase total close to the POS.
// The authoritative value is always the compras_cliente sum; entries are
// dropped whenever a purchase is written or removed.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ComprasCache interface {
	Get(ctx context.Context, clienteID uuid.UUID, mes string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, clienteID uuid.UUID, mes string, monto decimal.Decimal, ttl time.Duration) error
	Invalidate(ctx context.Context, clienteID uuid.UUID) error
}

// NoopComprasCache always misses. Used in tests and when Redis is disabled.
type NoopComprasCache struct{}

func (NoopComprasCache) Get(_ context.Context, _ uuid.UUID, _ string) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}

func (NoopComprasCache) Set(_ context.Context, _ uuid.UUID, _ string, _ decimal.Decimal, _ time.Duration) error {
	return nil
}

func (NoopComprasCache) Invalidate(_ context.Context, _ uuid.UUID) error { return nil }
