package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/dto"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/model"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ObtenerPorBarcode(ctx context.Context, barcode string) (*dto.ProductoResponse, error)
	// ConsultaPrecio serves the public price-check endpoint, cached in Redis.
	ConsultaPrecio(ctx context.Context, barcode string) (*dto.ConsultaPreciosResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	HistorialPrecios(ctx context.Context, id uuid.UUID, page, limit int) (*dto.HistorialPrecioListResponse, error)
}

type productoService struct {
	repo          repository.ProductoRepository
	historialRepo repository.HistorialPrecioRepository
	rdb           *redis.Client
}

func NewProductoService(repo repository.ProductoRepository, historialRepo repository.HistorialPrecioRepository, rdb *redis.Client) ProductoService {
	return &productoService{repo: repo, historialRepo: historialRepo, rdb: rdb}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if _, err := s.repo.FindByBarcode(ctx, req.CodigoBarras); err == nil {
		return nil, fmt.Errorf("codigo de barras %s ya registrado: %w", req.CodigoBarras, ErrConflicto)
	}

	producto := &model.Producto{
		CodigoBarras:    req.CodigoBarras,
		CodigoProveedor: req.CodigoProveedor,
		Nombre:          req.Nombre,
		Descripcion:     req.Descripcion,
		Categoria:       req.Categoria,
		PrecioCosto:     req.PrecioCosto,
		PrecioVenta:     req.PrecioVenta,
		MargenPct:       margenDe(req.PrecioCosto, req.PrecioVenta),
		StockActual:     req.StockActual,
		StockMinimo:     req.StockMinimo,
		UnidadMedida:    req.UnidadMedida,
		Activo:          true,
	}
	if producto.UnidadMedida == "" {
		producto.UnidadMedida = "unidad"
	}
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, fmt.Errorf("proveedor_id invalido: %w", ErrValidacion)
		}
		producto.ProveedorID = &pid
	}

	if err := s.repo.Create(ctx, producto); err != nil {
		return nil, err
	}
	return productoToResponse(producto), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("producto %s: %w", id, ErrNoEncontrado)
	}
	return productoToResponse(producto), nil
}

func (s *productoService) ObtenerPorBarcode(ctx context.Context, barcode string) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("producto %s: %w", barcode, ErrNoEncontrado)
	}
	return productoToResponse(producto), nil
}

func (s *productoService) ConsultaPrecio(ctx context.Context, barcode string) (*dto.ConsultaPreciosResponse, error) {
	clave := "precio:" + barcode
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, clave).Result(); err == nil {
			var resp dto.ConsultaPreciosResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
		}
	}

	producto, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil || !producto.Activo {
		return nil, fmt.Errorf("producto %s: %w", barcode, ErrNoEncontrado)
	}
	resp := &dto.ConsultaPreciosResponse{
		Nombre:          producto.Nombre,
		PrecioVenta:     producto.PrecioVenta,
		StockDisponible: producto.StockActual,
		Categoria:       producto.Categoria,
	}

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			// Short TTL: stock moves constantly, a minute of staleness is fine.
			if err := s.rdb.Set(ctx, clave, data, time.Minute).Err(); err != nil {
				log.Warn().Err(err).Str("barcode", barcode).Msg("no se pudo cachear precio")
			}
		}
	}
	return resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		data[i] = *productoToResponse(&productos[i])
	}
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("producto %s: %w", id, ErrNoEncontrado)
	}

	costoAntes, ventaAntes := producto.PrecioCosto, producto.PrecioVenta

	if req.Nombre != nil {
		producto.Nombre = *req.Nombre
	}
	if req.CodigoProveedor != nil {
		producto.CodigoProveedor = req.CodigoProveedor
	}
	if req.Descripcion != nil {
		producto.Descripcion = req.Descripcion
	}
	if req.Categoria != nil {
		producto.Categoria = *req.Categoria
	}
	if req.PrecioCosto != nil {
		producto.PrecioCosto = *req.PrecioCosto
	}
	if req.PrecioVenta != nil {
		producto.PrecioVenta = *req.PrecioVenta
	}
	if req.StockMinimo != nil {
		producto.StockMinimo = *req.StockMinimo
	}
	if req.UnidadMedida != nil {
		producto.UnidadMedida = *req.UnidadMedida
	}
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, fmt.Errorf("proveedor_id invalido: %w", ErrValidacion)
		}
		producto.ProveedorID = &pid
	}
	producto.MargenPct = margenDe(producto.PrecioCosto, producto.PrecioVenta)

	if err := s.repo.Update(ctx, producto); err != nil {
		return nil, err
	}

	// Manual price edits also leave an audit trail.
	cambioPrecio := !producto.PrecioCosto.Equal(costoAntes) || !producto.PrecioVenta.Equal(ventaAntes)
	if cambioPrecio {
		historial := &model.HistorialPrecio{
			ProductoID:   producto.ID,
			ProveedorID:  producto.ProveedorID,
			CostoAntes:   costoAntes,
			CostoDespues: producto.PrecioCosto,
			VentaAntes:   ventaAntes,
			VentaDespues: producto.PrecioVenta,
			Motivo:       "manual",
		}
		if err := s.historialRepo.CreateTx(s.repo.DB(), historial); err != nil {
			log.Error().Err(err).Str("producto_id", id.String()).Msg("no se pudo registrar historial de precio")
		}
		s.invalidarCache(ctx, producto.CodigoBarras)
	}

	return productoToResponse(producto), nil
}

func (s *productoService) AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("producto %s: %w", id, ErrNoEncontrado)
	}
	if producto.StockActual+req.Delta < 0 {
		return nil, fmt.Errorf("stock resultante negativo: %w", ErrValidacion)
	}
	if err := s.repo.AjustarStock(ctx, id, req.Delta); err != nil {
		return nil, err
	}
	producto.StockActual += req.Delta

	log.Info().
		Str("producto_id", id.String()).
		Int("delta", req.Delta).
		Str("motivo", req.Motivo).
		Msg("stock ajustado")

	return productoToResponse(producto), nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("producto %s: %w", id, ErrNoEncontrado)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidarCache(ctx, producto.CodigoBarras)
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("producto %s: %w", id, ErrNoEncontrado)
	}
	return s.repo.Reactivar(ctx, id)
}

func (s *productoService) HistorialPrecios(ctx context.Context, id uuid.UUID, page, limit int) (*dto.HistorialPrecioListResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("producto %s: %w", id, ErrNoEncontrado)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	registros, total, err := s.historialRepo.ListByProducto(ctx, id, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.HistorialPrecioItem, len(registros))
	for i, h := range registros {
		item := dto.HistorialPrecioItem{
			ID:           h.ID.String(),
			ProductoID:   h.ProductoID.String(),
			CostoAntes:   h.CostoAntes,
			CostoDespues: h.CostoDespues,
			VentaAntes:   h.VentaAntes,
			VentaDespues: h.VentaDespues,
			Motivo:       h.Motivo,
			CreatedAt:    h.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if h.ProveedorID != nil {
			pid := h.ProveedorID.String()
			item.ProveedorID = &pid
		}
		if h.Proveedor != nil {
			item.ProveedorNombre = &h.Proveedor.RazonSocial
		}
		if h.ActualizacionID != nil {
			aid := h.ActualizacionID.String()
			item.ActualizacionID = &aid
		}
		data[i] = item
	}
	return &dto.HistorialPrecioListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *productoService) invalidarCache(ctx context.Context, barcode string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, "precio:"+barcode).Err(); err != nil {
		log.Warn().Err(err).Str("barcode", barcode).Msg("no se pudo invalidar cache de precio")
	}
}

// margenDe = (venta - costo) / costo * 100, zero-guarded.
func margenDe(costo, venta decimal.Decimal) decimal.Decimal {
	if costo.IsZero() {
		return decimal.Zero
	}
	return venta.Sub(costo).Div(costo).Mul(cien).Round(2)
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:              p.ID.String(),
		CodigoBarras:    p.CodigoBarras,
		CodigoProveedor: p.CodigoProveedor,
		Nombre:          p.Nombre,
		Descripcion:     p.Descripcion,
		Categoria:       p.Categoria,
		PrecioCosto:     p.PrecioCosto,
		PrecioVenta:     p.PrecioVenta,
		MargenPct:       p.MargenPct,
		StockActual:     p.StockActual,
		StockMinimo:     p.StockMinimo,
		UnidadMedida:    p.UnidadMedida,
		Activo:          p.Activo,
	}
	if p.ProveedorID != nil {
		s := p.ProveedorID.String()
		resp.ProveedorID = &s
	}
	return resp
}
