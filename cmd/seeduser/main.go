// cmd/seeduser/main.go: crea o actualiza el admin inicial y una tienda de demo.
// Uso: SEED_EMAIL=admin@fleamarket.mx SEED_PASSWORD=secreto go run ./cmd/seeduser
package main

import (
	"context"
	"os"
	"strings"

	"fleamarket/internal/config"
	"fleamarket/internal/infra"
	"fleamarket/internal/model"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	email := strings.ToLower(env("SEED_EMAIL", "admin@fleamarket.local"))
	password := env("SEED_PASSWORD", "fleamarket2026")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	ctx := context.Background()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Tienda{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			demo := &model.Tienda{
				Nombre:      env("SEED_TIENDA", "Flea Market Centro"),
				MetodosPago: pq.StringArray{model.MetodoEfectivo, model.MetodoTarjeta, model.MetodoTransferencia},
				PieTicket:   "Gracias por su compra",
				Activo:      true,
			}
			if err := tx.Create(demo).Error; err != nil {
				return err
			}
			log.Info().Str("tienda", demo.Nombre).Str("id", demo.ID.String()).Msg("tienda de demo creada")
		}

		admin := &model.Usuario{
			Nombre:       "Administrador",
			Email:        email,
			PasswordHash: string(hash),
			Rol:          model.RolAdmin,
			TipoHorario:  model.HorarioSemana,
			Activo:       true,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "rol", "activo", "updated_at"}),
		}).Create(admin).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().Str("email", email).Msg("usuario admin creado/actualizado")
}
