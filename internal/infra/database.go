package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate so a fresh deployment comes up with the full schema.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against a
// throwaway container.
func RunMigrations(db *gorm.DB) error {
	// gen_random_uuid() needs pgcrypto on Postgres < 13
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return err
	}
	return db.AutoMigrate(
		&model.Usuario{},
		&model.Proveedor{},
		&model.CierreDia{},
		&model.CanalCierre{},
		&model.ConteoBillete{},
		&model.AjusteCierre{},
	)
}
