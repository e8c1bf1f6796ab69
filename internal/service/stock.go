package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleamarket/internal/model"
	"fleamarket/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// stockMover applies a stock delta and records the matching MovimientoStock in the same tx.
type stockMover struct {
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
}

func (m stockMover) mover(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, delta int, tipo, motivo string, ref *uuid.UUID, now time.Time) error {
	antes, despues, err := m.productos.AjustarStockTx(ctx, tx, productoID, delta)
	if errors.Is(err, repository.ErrStockNegativo) {
		return fmt.Errorf("%w: producto %s", ErrStockInsuficiente, productoID)
	}
	if err != nil {
		return fmt.Errorf("ajustando stock de %s: %w", productoID, err)
	}
	return m.movimientos.CreateTx(ctx, tx, &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          tipo,
		Cantidad:      delta,
		StockAnterior: antes,
		StockNuevo:    despues,
		Motivo:        motivo,
		ReferenciaID:  ref,
		CreatedAt:     now,
	})
}
