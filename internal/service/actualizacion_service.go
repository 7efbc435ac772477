package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/dto"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/importacion"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/model"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/repository"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ActualizacionPrecioService drives the supplier price-update pipeline:
// analyze a parsed price list against the catalog, then apply or cancel the
// resulting log.
type ActualizacionPrecioService interface {
	// Analizar classifies every row and persists the analysis log with its
	// details in one transaction. Each call creates a new independent log.
	Analizar(ctx context.Context, req dto.AnalizarRequest) (*dto.AnalisisResponse, error)
	// AnalizarArchivo parses the uploaded file server-side with the plantilla
	// and then runs the same analysis.
	AnalizarArchivo(ctx context.Context, proveedorID, plantillaID uuid.UUID, nombreArchivo string, datos []byte) (*dto.AnalisisResponse, error)
	Aplicar(ctx context.Context, id uuid.UUID) (*dto.AplicarResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.AnalisisResponse, error)
	Listar(ctx context.Context, filter dto.ActualizacionFilter) (*dto.ActualizacionListResponse, error)
}

type actualizacionService struct {
	repo          repository.ActualizacionRepository
	plantillaRepo repository.PlantillaRepository
	proveedorRepo repository.ProveedorRepository
	productoRepo  repository.ProductoRepository
	historialRepo repository.HistorialPrecioRepository
	rdb           *redis.Client
	dispatcher    *worker.Dispatcher
	// notificacionEmail receives the post-apply summary; empty disables it.
	notificacionEmail string
}

func NewActualizacionPrecioService(
	repo repository.ActualizacionRepository,
	plantillaRepo repository.PlantillaRepository,
	proveedorRepo repository.ProveedorRepository,
	productoRepo repository.ProductoRepository,
	historialRepo repository.HistorialPrecioRepository,
	rdb *redis.Client,
	dispatcher *worker.Dispatcher,
	notificacionEmail string,
) ActualizacionPrecioService {
	return &actualizacionService{
		repo:              repo,
		plantillaRepo:     plantillaRepo,
		proveedorRepo:     proveedorRepo,
		productoRepo:      productoRepo,
		historialRepo:     historialRepo,
		rdb:               rdb,
		dispatcher:        dispatcher,
		notificacionEmail: notificacionEmail,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

var cien = decimal.NewFromInt(100)

// parsearPrecio interprets a price cell as received from supplier files.
// Handles "$ 1.234,56" (Argentine separators) as well as plain "1234.56".
// Unparsable values resolve to zero — the row still gets classified so the
// operator can see it in the analysis instead of losing the whole file.
func parsearPrecio(s string) decimal.Decimal {
	limpio := strings.TrimSpace(s)
	limpio = strings.TrimPrefix(limpio, "$")
	limpio = strings.ReplaceAll(limpio, " ", "")
	if strings.Contains(limpio, ",") {
		if strings.Contains(limpio, ".") {
			limpio = strings.ReplaceAll(limpio, ".", "")
		}
		limpio = strings.ReplaceAll(limpio, ",", ".")
	}
	d, err := decimal.NewFromString(limpio)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// variacion = (nuevo - anterior) / anterior * 100, zero-guarded.
func variacion(anterior, nuevo decimal.Decimal) decimal.Decimal {
	if anterior.IsZero() {
		return decimal.Zero
	}
	return nuevo.Sub(anterior).Div(anterior).Mul(cien).Round(2)
}

// ── Analizar ──────────────────────────────────────────────────────────────────

func (s *actualizacionService) Analizar(ctx context.Context, req dto.AnalizarRequest) (*dto.AnalisisResponse, error) {
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, fmt.Errorf("proveedor_id invalido: %w", ErrValidacion)
	}
	plantillaID, err := uuid.Parse(req.PlantillaID)
	if err != nil {
		return nil, fmt.Errorf("plantilla_id invalido: %w", ErrValidacion)
	}
	return s.analizar(ctx, proveedorID, plantillaID, req.NombreArchivo, req.Filas)
}

func (s *actualizacionService) AnalizarArchivo(ctx context.Context, proveedorID, plantillaID uuid.UUID, nombreArchivo string, datos []byte) (*dto.AnalisisResponse, error) {
	plantilla, err := s.plantillaRepo.FindByID(ctx, plantillaID)
	if err != nil {
		return nil, fmt.Errorf("plantilla %s: %w", plantillaID, ErrNoEncontrado)
	}
	filas, err := importacion.LeerArchivo(datos, plantilla)
	if err != nil {
		return nil, err
	}
	return s.analizar(ctx, proveedorID, plantillaID, nombreArchivo, filas)
}

func (s *actualizacionService) analizar(ctx context.Context, proveedorID, plantillaID uuid.UUID, nombreArchivo string, filas []importacion.FilaNormalizada) (*dto.AnalisisResponse, error) {
	if _, err := s.proveedorRepo.FindByID(ctx, proveedorID); err != nil {
		return nil, fmt.Errorf("proveedor %s: %w", proveedorID, ErrNoEncontrado)
	}
	plantilla, err := s.plantillaRepo.FindByID(ctx, plantillaID)
	if err != nil || plantilla.ProveedorID != proveedorID {
		return nil, fmt.Errorf("plantilla %s: %w", plantillaID, ErrNoEncontrado)
	}

	registro := model.ActualizacionPrecio{
		ProveedorID:   proveedorID,
		PlantillaID:   plantillaID,
		NombreArchivo: nombreArchivo,
		Estado:        model.ActualizacionPendiente,
		TotalFilas:    len(filas),
	}

	// Row processing preserves input order; Fila is the 1-based position.
	sumaVariacion := decimal.Zero
	conVariacion := 0
	for i, fila := range filas {
		precioNuevo := parsearPrecio(fila.Precio)
		detalle := model.ActualizacionPrecioDetalle{
			Fila:            i + 1,
			CodigoProveedor: fila.CodigoProveedor,
			Descripcion:     fila.Descripcion,
			PrecioNuevo:     precioNuevo,
		}

		producto, err := s.productoRepo.FindByCodigoProveedor(ctx, proveedorID, fila.CodigoProveedor)
		switch {
		case err != nil:
			detalle.Estado = model.DetalleNoEncontrado
			detalle.PrecioAnterior = decimal.Zero
			registro.NoEncontrados++
		case !producto.Activo:
			detalle.Estado = model.DetalleDiscontinuado
			s.resolverProducto(&detalle, producto)
			registro.Discontinuados++
		default:
			detalle.Estado = model.DetalleActualizar
			s.resolverProducto(&detalle, producto)
			registro.Actualizados++
			if detalle.PrecioAnterior.IsPositive() {
				sumaVariacion = sumaVariacion.Add(detalle.Variacion)
				conVariacion++
			}
		}
		registro.Detalles = append(registro.Detalles, detalle)
	}
	if conVariacion > 0 {
		registro.VariacionPromedio = sumaVariacion.Div(decimal.NewFromInt(int64(conVariacion))).Round(2)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CreateTx(tx, &registro)
	})
	if txErr != nil {
		return nil, fmt.Errorf("error al persistir el analisis: %w", txErr)
	}

	log.Info().
		Str("actualizacion_id", registro.ID.String()).
		Str("proveedor_id", proveedorID.String()).
		Int("total", registro.TotalFilas).
		Int("actualizados", registro.Actualizados).
		Int("no_encontrados", registro.NoEncontrados).
		Int("discontinuados", registro.Discontinuados).
		Msg("analisis de lista de precios creado")

	return analisisToResponse(&registro), nil
}

// resolverProducto fills the catalog side of a matched detail row.
func (s *actualizacionService) resolverProducto(detalle *model.ActualizacionPrecioDetalle, producto *model.Producto) {
	id := producto.ID
	barcode := producto.CodigoBarras
	nombre := producto.Nombre
	detalle.ProductoID = &id
	detalle.CodigoBarras = &barcode
	detalle.NombreProducto = &nombre
	detalle.PrecioAnterior = producto.PrecioCosto
	detalle.Variacion = variacion(producto.PrecioCosto, detalle.PrecioNuevo)
}

// ── Aplicar / Cancelar ────────────────────────────────────────────────────────

func (s *actualizacionService) Aplicar(ctx context.Context, id uuid.UUID) (*dto.AplicarResponse, error) {
	registro, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("actualizacion %s: %w", id, ErrNoEncontrado)
	}

	aplicados := 0
	var barcodes []string
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Single guarded UPDATE: if another Aplicar/Cancelar won the race (or
		// the log was already resolved), zero rows change and we bail out.
		filas, err := s.repo.TransicionTx(tx, id, model.ActualizacionAplicada)
		if err != nil {
			return err
		}
		if filas == 0 {
			return ErrEstadoInvalido
		}

		for _, detalle := range registro.Detalles {
			// no_encontrado and discontinuado rows never touch the catalog.
			if detalle.Estado != model.DetalleActualizar || detalle.ProductoID == nil {
				continue
			}
			producto, err := s.findProducto(ctx, tx, *detalle.ProductoID)
			if err != nil {
				return fmt.Errorf("producto %s: %w", detalle.ProductoID, err)
			}

			// Keep the product margin: the sale price follows the new cost.
			nuevaVenta := detalle.PrecioNuevo.Mul(cien.Add(producto.MargenPct)).Div(cien).Round(2)
			if err := s.productoRepo.UpdatePreciosTx(tx, producto.ID, detalle.PrecioNuevo, nuevaVenta, producto.MargenPct); err != nil {
				return err
			}

			actualizacionID := registro.ID
			historial := &model.HistorialPrecio{
				ProductoID:      producto.ID,
				ProveedorID:     producto.ProveedorID,
				CostoAntes:      detalle.PrecioAnterior,
				CostoDespues:    detalle.PrecioNuevo,
				VentaAntes:      producto.PrecioVenta,
				VentaDespues:    nuevaVenta,
				Motivo:          "importacion_lista",
				ActualizacionID: &actualizacionID,
			}
			if err := s.historialRepo.CreateTx(tx, historial); err != nil {
				return err
			}

			barcodes = append(barcodes, producto.CodigoBarras)
			aplicados++
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.invalidarCachePrecios(ctx, barcodes)
	s.notificarAplicacion(ctx, registro, aplicados)

	log.Info().
		Str("actualizacion_id", id.String()).
		Int("productos_aplicados", aplicados).
		Msg("actualizacion de precios aplicada")

	return &dto.AplicarResponse{
		ID:                 id.String(),
		Estado:             model.ActualizacionAplicada,
		ProductosAplicados: aplicados,
	}, nil
}

func (s *actualizacionService) Cancelar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("actualizacion %s: %w", id, ErrNoEncontrado)
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		filas, err := s.repo.TransicionTx(tx, id, model.ActualizacionCancelada)
		if err != nil {
			return err
		}
		if filas == 0 {
			return ErrEstadoInvalido
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	log.Info().Str("actualizacion_id", id.String()).Msg("actualizacion de precios cancelada")
	return nil
}

// findProducto reads the product inside the tx when one is open so that the
// prices written and the history recorded come from the same snapshot.
func (s *actualizacionService) findProducto(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	if tx != nil {
		return s.productoRepo.FindByIDTx(tx, id)
	}
	return s.productoRepo.FindByID(ctx, id)
}

// invalidarCachePrecios drops the public price-check cache entries of the
// mutated products. Best effort: a stale entry expires by TTL anyway.
func (s *actualizacionService) invalidarCachePrecios(ctx context.Context, barcodes []string) {
	if s.rdb == nil || len(barcodes) == 0 {
		return
	}
	claves := make([]string, 0, len(barcodes))
	for _, b := range barcodes {
		claves = append(claves, "precio:"+b)
	}
	if err := s.rdb.Del(ctx, claves...).Err(); err != nil {
		log.Warn().Err(err).Int("claves", len(claves)).Msg("no se pudo invalidar cache de precios")
	}
}

// notificarAplicacion enqueues the summary email job. Fire & forget.
func (s *actualizacionService) notificarAplicacion(ctx context.Context, registro *model.ActualizacionPrecio, aplicados int) {
	if s.dispatcher == nil || s.notificacionEmail == "" {
		return
	}
	proveedorNombre := ""
	if registro.Proveedor != nil {
		proveedorNombre = registro.Proveedor.RazonSocial
	}
	payload := worker.NotificacionPayload{
		Para:               s.notificacionEmail,
		ProveedorNombre:    proveedorNombre,
		NombreArchivo:      registro.NombreArchivo,
		ProductosAplicados: aplicados,
		VariacionPromedio:  registro.VariacionPromedio.String(),
	}
	_ = s.dispatcher.EnqueueNotificacion(ctx, payload)
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *actualizacionService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.AnalisisResponse, error) {
	registro, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("actualizacion %s: %w", id, ErrNoEncontrado)
	}
	return analisisToResponse(registro), nil
}

func (s *actualizacionService) Listar(ctx context.Context, filter dto.ActualizacionFilter) (*dto.ActualizacionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ActualizacionListItem, 0, len(logs))
	for i := range logs {
		items = append(items, *actualizacionToListItem(&logs[i]))
	}
	return &dto.ActualizacionListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Mapeos a DTO ──────────────────────────────────────────────────────────────

func resumenDe(a *model.ActualizacionPrecio) dto.ResumenActualizacion {
	return dto.ResumenActualizacion{
		Total:             a.TotalFilas,
		Actualizados:      a.Actualizados,
		NoEncontrados:     a.NoEncontrados,
		Discontinuados:    a.Discontinuados,
		VariacionPromedio: a.VariacionPromedio,
	}
}

func analisisToResponse(a *model.ActualizacionPrecio) *dto.AnalisisResponse {
	detalles := make([]dto.DetalleActualizacionItem, 0, len(a.Detalles))
	for _, d := range a.Detalles {
		detalles = append(detalles, dto.DetalleActualizacionItem{
			Fila:            d.Fila,
			CodigoProveedor: d.CodigoProveedor,
			Descripcion:     d.Descripcion,
			CodigoBarras:    d.CodigoBarras,
			NombreProducto:  d.NombreProducto,
			PrecioAnterior:  d.PrecioAnterior,
			PrecioNuevo:     d.PrecioNuevo,
			Variacion:       d.Variacion,
			Estado:          d.Estado,
		})
	}
	return &dto.AnalisisResponse{
		ID:       a.ID.String(),
		Estado:   a.Estado,
		Resumen:  resumenDe(a),
		Detalles: detalles,
	}
}

func actualizacionToListItem(a *model.ActualizacionPrecio) *dto.ActualizacionListItem {
	item := &dto.ActualizacionListItem{
		ID:            a.ID.String(),
		ProveedorID:   a.ProveedorID.String(),
		NombreArchivo: a.NombreArchivo,
		Estado:        a.Estado,
		Resumen:       resumenDe(a),
		CreatedAt:     a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if a.Proveedor != nil {
		item.ProveedorNombre = a.Proveedor.RazonSocial
	}
	if a.ResueltaAt != nil {
		s := a.ResueltaAt.Format("2006-01-02T15:04:05Z")
		item.ResueltaAt = &s
	}
	return item
}
