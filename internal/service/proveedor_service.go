package service

import (
	"context"
	"fmt"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/dto"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/model"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/repository"

	"github.com/google/uuid"
)

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
	if _, err := s.repo.FindByCUIT(ctx, req.CUIT); err == nil {
		return nil, fmt.Errorf("cuit %s ya registrado: %w", req.CUIT, ErrConflicto)
	}

	proveedor := &model.Proveedor{
		RazonSocial:   req.RazonSocial,
		CUIT:          req.CUIT,
		Telefono:      req.Telefono,
		Email:         req.Email,
		Direccion:     req.Direccion,
		CondicionPago: req.CondicionPago,
		Activo:        true,
		Contactos:     contactosDe(req.Contactos),
	}
	if err := s.repo.Create(ctx, proveedor); err != nil {
		return nil, err
	}
	return proveedorToResponse(proveedor), nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	proveedor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("proveedor %s: %w", id, ErrNoEncontrado)
	}
	return proveedorToResponse(proveedor), nil
}

func (s *proveedorService) Listar(ctx context.Context) ([]dto.ProveedorResponse, error) {
	proveedores, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProveedorResponse, len(proveedores))
	for i := range proveedores {
		resp[i] = *proveedorToResponse(&proveedores[i])
	}
	return resp, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	proveedor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("proveedor %s: %w", id, ErrNoEncontrado)
	}

	// CUIT uniqueness: another supplier may not hold the new value.
	if proveedor.CUIT != req.CUIT {
		if otro, err := s.repo.FindByCUIT(ctx, req.CUIT); err == nil && otro.ID != id {
			return nil, fmt.Errorf("cuit %s ya registrado: %w", req.CUIT, ErrConflicto)
		}
	}

	proveedor.RazonSocial = req.RazonSocial
	proveedor.CUIT = req.CUIT
	proveedor.Telefono = req.Telefono
	proveedor.Email = req.Email
	proveedor.Direccion = req.Direccion
	proveedor.CondicionPago = req.CondicionPago
	if err := s.repo.Update(ctx, proveedor); err != nil {
		return nil, err
	}

	if req.Contactos != nil {
		contactos := contactosDe(req.Contactos)
		if err := s.repo.ReplaceContactos(ctx, id, contactos); err != nil {
			return nil, err
		}
		proveedor.Contactos = contactos
	}
	return proveedorToResponse(proveedor), nil
}

func (s *proveedorService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("proveedor %s: %w", id, ErrNoEncontrado)
	}
	return s.repo.SoftDelete(ctx, id)
}

func contactosDe(inputs []dto.ContactoProveedorInput) []model.ContactoProveedor {
	contactos := make([]model.ContactoProveedor, len(inputs))
	for i, c := range inputs {
		contactos[i] = model.ContactoProveedor{
			Nombre:   c.Nombre,
			Cargo:    c.Cargo,
			Telefono: c.Telefono,
			Email:    c.Email,
		}
	}
	return contactos
}

func proveedorToResponse(p *model.Proveedor) *dto.ProveedorResponse {
	contactos := make([]dto.ContactoProveedorResponse, len(p.Contactos))
	for i, c := range p.Contactos {
		contactos[i] = dto.ContactoProveedorResponse{
			ID:       c.ID.String(),
			Nombre:   c.Nombre,
			Cargo:    c.Cargo,
			Telefono: c.Telefono,
			Email:    c.Email,
		}
	}
	return &dto.ProveedorResponse{
		ID:            p.ID.String(),
		RazonSocial:   p.RazonSocial,
		CUIT:          p.CUIT,
		Telefono:      p.Telefono,
		Email:         p.Email,
		Direccion:     p.Direccion,
		CondicionPago: p.CondicionPago,
		Activo:        p.Activo,
		Contactos:     contactos,
	}
}
