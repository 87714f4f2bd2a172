package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/dto"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/model"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/repository"
)

// ProveedorService manages the supplier directory; closings reference
// supplier names when labeling cash payments.
type ProveedorService interface {
	Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type proveedorService struct {
	repo repository.ProveedorRepository
}

func NewProveedorService(repo repository.ProveedorRepository) ProveedorService {
	return &proveedorService{repo: repo}
}

func (s *proveedorService) Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	p := &model.Proveedor{
		RazonSocial:   req.RazonSocial,
		CUIT:          req.CUIT,
		Telefono:      req.Telefono,
		Email:         req.Email,
		Direccion:     req.Direccion,
		CondicionPago: req.CondicionPago,
		Activo:        true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return proveedorResponse(p), nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("proveedor no encontrado")
	}
	return proveedorResponse(p), nil
}

func (s *proveedorService) Listar(ctx context.Context) ([]dto.ProveedorResponse, error) {
	proveedores, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProveedorResponse, len(proveedores))
	for i := range proveedores {
		resp[i] = *proveedorResponse(&proveedores[i])
	}
	return resp, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("proveedor no encontrado")
	}
	p.RazonSocial = req.RazonSocial
	p.CUIT = req.CUIT
	p.Telefono = req.Telefono
	p.Email = req.Email
	p.Direccion = req.Direccion
	p.CondicionPago = req.CondicionPago
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return proveedorResponse(p), nil
}

func (s *proveedorService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func proveedorResponse(p *model.Proveedor) *dto.ProveedorResponse {
	return &dto.ProveedorResponse{
		ID:            p.ID.String(),
		RazonSocial:   p.RazonSocial,
		CUIT:          p.CUIT,
		Telefono:      p.Telefono,
		Email:         p.Email,
		Direccion:     p.Direccion,
		CondicionPago: p.CondicionPago,
		Activo:        p.Activo,
	}
}
