package infra

import (
	"fmt"

	"fleamarket/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the schema
// up to date. TranslateError maps unique violations to gorm.ErrDuplicatedKey.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table, then applies the DDL that
// AutoMigrate cannot express. Integration tests call it directly.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Tienda{},
		&model.Usuario{},
		&model.Producto{},
		&model.MovimientoStock{},
		&model.Cliente{},
		&model.CompraCliente{},
		&model.Promocion{},
		&model.Venta{},
		&model.VentaItem{},
		&model.Apartado{},
		&model.ApartadoItem{},
		&model.PagoApartado{},
		&model.CierreCaja{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements. Each one uses IF NOT EXISTS
// semantics so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"ticket sequence", `CREATE SEQUENCE IF NOT EXISTS ventas_numero_ticket_seq START 1`},
		{"apartado sequence", `CREATE SEQUENCE IF NOT EXISTS apartados_numero_seq START 1`},
		// Non-negative money columns. Stock may go negative only through manual adjustments, so no check there.
		{"apartado saldo check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_apartados_saldo') THEN
    ALTER TABLE apartados ADD CONSTRAINT chk_apartados_saldo
      CHECK (saldo_pendiente >= 0 AND anticipo_pagado <= total);
  END IF;
END $$`},
		{"active apartados by due date", `
CREATE INDEX IF NOT EXISTS idx_apartados_vencimiento
    ON apartados (fecha_limite)
    WHERE estado = 'activo'`},
		{"cash sales by store and day", `
CREATE INDEX IF NOT EXISTS idx_ventas_efectivo
    ON ventas (tienda_id, created_at)
    WHERE metodo_pago = 'efectivo' AND estado = 'normal'`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
