package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrStockNegativo is returned when a decrement would leave a product below zero.
var ErrStockNegativo = errors.New("stock would become negative")

// conn returns tx when a transaction is in progress, else the base connection.
// Services open transactions and pass them down; reads outside a tx pass nil.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
