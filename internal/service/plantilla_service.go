package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/dto"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/importacion"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/model"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/repository"

	"github.com/google/uuid"
)

// PlantillaService manages the reusable column-mapping templates used to
// read supplier price lists.
type PlantillaService interface {
	Crear(ctx context.Context, req dto.CrearPlantillaRequest) (*dto.PlantillaResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.PlantillaResponse, error)
	ListarPorProveedor(ctx context.Context, proveedorID uuid.UUID) ([]dto.PlantillaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarPlantillaRequest) (*dto.PlantillaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type plantillaService struct {
	repo          repository.PlantillaRepository
	proveedorRepo repository.ProveedorRepository
}

func NewPlantillaService(repo repository.PlantillaRepository, proveedorRepo repository.ProveedorRepository) PlantillaService {
	return &plantillaService{repo: repo, proveedorRepo: proveedorRepo}
}

// validarMapeo enforces the mapping contract: the three logical fields must
// be present and every value must be a valid column reference.
func validarMapeo(mapeo map[string]string) error {
	if len(mapeo) == 0 {
		return fmt.Errorf("mapeo_columnas es requerido: %w", ErrValidacion)
	}
	for _, campo := range []string{model.CampoCodigoProveedor, model.CampoDescripcion, model.CampoPrecio} {
		if _, ok := mapeo[campo]; !ok {
			return fmt.Errorf("mapeo_columnas debe incluir %q: %w", campo, ErrValidacion)
		}
	}
	for campo, letra := range mapeo {
		if !importacion.EsReferenciaColumna(letra) {
			return fmt.Errorf("columna %q invalida para el campo %q: %w", letra, campo, ErrValidacion)
		}
	}
	return nil
}

func normalizarMapeo(mapeo map[string]string) model.MapeoColumnas {
	normalizado := make(model.MapeoColumnas, len(mapeo))
	for campo, letra := range mapeo {
		normalizado[campo] = strings.ToUpper(strings.TrimSpace(letra))
	}
	return normalizado
}

func (s *plantillaService) Crear(ctx context.Context, req dto.CrearPlantillaRequest) (*dto.PlantillaResponse, error) {
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, fmt.Errorf("proveedor_id invalido: %w", ErrValidacion)
	}
	if strings.TrimSpace(req.Nombre) == "" {
		return nil, fmt.Errorf("nombre es requerido: %w", ErrValidacion)
	}
	if err := validarMapeo(req.MapeoColumnas); err != nil {
		return nil, err
	}
	if _, err := s.proveedorRepo.FindByID(ctx, proveedorID); err != nil {
		return nil, fmt.Errorf("proveedor %s: %w", req.ProveedorID, ErrNoEncontrado)
	}

	p := &model.PlantillaImportacion{
		ProveedorID:     proveedorID,
		Nombre:          strings.TrimSpace(req.Nombre),
		MapeoColumnas:   normalizarMapeo(req.MapeoColumnas),
		TieneEncabezado: req.TieneEncabezado,
		FilaInicio:      req.FilaInicio,
		NombreHoja:      req.NombreHoja,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return plantillaToResponse(p), nil
}

func (s *plantillaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.PlantillaResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("plantilla %s: %w", id, ErrNoEncontrado)
	}
	return plantillaToResponse(p), nil
}

func (s *plantillaService) ListarPorProveedor(ctx context.Context, proveedorID uuid.UUID) ([]dto.PlantillaResponse, error) {
	plantillas, err := s.repo.ListByProveedor(ctx, proveedorID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PlantillaResponse, 0, len(plantillas))
	for i := range plantillas {
		out = append(out, *plantillaToResponse(&plantillas[i]))
	}
	return out, nil
}

func (s *plantillaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarPlantillaRequest) (*dto.PlantillaResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("plantilla %s: %w", id, ErrNoEncontrado)
	}

	if req.Nombre != nil {
		if strings.TrimSpace(*req.Nombre) == "" {
			return nil, fmt.Errorf("nombre no puede quedar vacio: %w", ErrValidacion)
		}
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.MapeoColumnas != nil {
		if err := validarMapeo(req.MapeoColumnas); err != nil {
			return nil, err
		}
		p.MapeoColumnas = normalizarMapeo(req.MapeoColumnas)
	}
	if req.TieneEncabezado != nil {
		p.TieneEncabezado = *req.TieneEncabezado
	}
	if req.FilaInicio != nil {
		if *req.FilaInicio < 1 {
			return nil, fmt.Errorf("fila_inicio debe ser >= 1: %w", ErrValidacion)
		}
		p.FilaInicio = *req.FilaInicio
	}
	if req.NombreHoja != nil {
		p.NombreHoja = req.NombreHoja
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return plantillaToResponse(p), nil
}

func (s *plantillaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("plantilla %s: %w", id, ErrNoEncontrado)
	}
	return s.repo.Delete(ctx, id)
}

func plantillaToResponse(p *model.PlantillaImportacion) *dto.PlantillaResponse {
	return &dto.PlantillaResponse{
		ID:              p.ID.String(),
		ProveedorID:     p.ProveedorID.String(),
		Nombre:          p.Nombre,
		MapeoColumnas:   p.MapeoColumnas,
		TieneEncabezado: p.TieneEncabezado,
		FilaInicio:      p.FilaInicio,
		NombreHoja:      p.NombreHoja,
		CreatedAt:       p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
