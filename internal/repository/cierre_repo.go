package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/model"
)

type CierreRepository interface {
	Create(ctx context.Context, c *model.CierreDia) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CierreDia, error)
	FindByFechaCaja(ctx context.Context, fecha time.Time, caja string) (*model.CierreDia, error)
	// FindUltimoPorCaja returns the most recent closing of a caja — the
	// carry-over chain reads tomorrow's opening float from it.
	FindUltimoPorCaja(ctx context.Context, caja string) (*model.CierreDia, error)
	List(ctx context.Context, caja string, page, limit int) ([]model.CierreDia, error)
	SetPDFPath(ctx context.Context, id uuid.UUID, path string) error
}

type cierreRepo struct{ db *gorm.DB }

func NewCierreRepository(db *gorm.DB) CierreRepository { return &cierreRepo{db: db} }

func (r *cierreRepo) Create(ctx context.Context, c *model.CierreDia) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cierreRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CierreDia, error) {
	var c model.CierreDia
	err := r.db.WithContext(ctx).
		Preload("Canales", func(db *gorm.DB) *gorm.DB { return db.Order("posicion ASC") }).
		Preload("Conteo").
		Preload("Ajustes", func(db *gorm.DB) *gorm.DB { return db.Order("categoria ASC, posicion ASC") }).
		First(&c, id).Error
	return &c, err
}

func (r *cierreRepo) FindByFechaCaja(ctx context.Context, fecha time.Time, caja string) (*model.CierreDia, error) {
	var c model.CierreDia
	err := r.db.WithContext(ctx).
		Where("fecha = ? AND caja = ?", fecha.Format("2006-01-02"), caja).
		First(&c).Error
	return &c, err
}

func (r *cierreRepo) FindUltimoPorCaja(ctx context.Context, caja string) (*model.CierreDia, error) {
	var c model.CierreDia
	err := r.db.WithContext(ctx).
		Where("caja = ?", caja).
		Order("fecha DESC").
		First(&c).Error
	return &c, err
}

func (r *cierreRepo) List(ctx context.Context, caja string, page, limit int) ([]model.CierreDia, error) {
	var cierres []model.CierreDia
	q := r.db.WithContext(ctx).Order("fecha DESC")
	if caja != "" {
		q = q.Where("caja = ?", caja)
	}
	err := q.Offset((page - 1) * limit).Limit(limit).Find(&cierres).Error
	return cierres, err
}

func (r *cierreRepo) SetPDFPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.CierreDia{}).Where("id = ?", id).Update("pdf_path", path).Error
}
