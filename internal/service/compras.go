package service

import (
	"context"
	"time"

	"fleamarket/internal/cache"
	"fleamarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ComprasMensuales answers "how much has this client bought this calendar month".
// The value is summed from compras_cliente and cached per client and month.
type ComprasMensuales struct {
	repo  repository.ClienteRepository
	cache cache.ComprasCache
	ttl   time.Duration
	reloj Reloj
}

func NewComprasMensuales(repo repository.ClienteRepository, c cache.ComprasCache, ttl time.Duration, reloj Reloj) *ComprasMensuales {
	if c == nil {
		c = cache.NoopComprasCache{}
	}
	return &ComprasMensuales{repo: repo, cache: c, ttl: ttl, reloj: reloj}
}

func (c *ComprasMensuales) Total(ctx context.Context, clienteID uuid.UUID) (decimal.Decimal, error) {
	now := c.reloj.Ahora()
	mes := c.reloj.Mes(now)

	if v, ok, err := c.cache.Get(ctx, clienteID, mes); err == nil && ok {
		return v, nil
	} else if err != nil {
		log.Warn().Err(err).Str("cliente_id", clienteID.String()).Msg("compras cache: read failed")
	}

	desde := c.reloj.InicioMes(now)
	total, err := c.repo.SumCompras(ctx, clienteID, desde, desde.AddDate(0, 1, 0))
	if err != nil {
		return decimal.Zero, err
	}
	if err := c.cache.Set(ctx, clienteID, mes, total, c.ttl); err != nil {
		log.Warn().Err(err).Str("cliente_id", clienteID.String()).Msg("compras cache: write failed")
	}
	return total, nil
}

// Invalidar drops the cached total. Failures are logged; the entry then expires by TTL.
func (c *ComprasMensuales) Invalidar(ctx context.Context, clienteID uuid.UUID) {
	if err := c.cache.Invalidate(ctx, clienteID); err != nil {
		log.Warn().Err(err).Str("cliente_id", clienteID.String()).Msg("compras cache: invalidate failed")
	}
}
