package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/dto"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/importacion"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory repository stubs ────────────────────────────────────────────────

type stubActualizacionRepo struct {
	logs map[uuid.UUID]*model.ActualizacionPrecio
}

func newStubActualizacionRepo() *stubActualizacionRepo {
	return &stubActualizacionRepo{logs: make(map[uuid.UUID]*model.ActualizacionPrecio)}
}

func (r *stubActualizacionRepo) CreateTx(_ *gorm.DB, a *model.ActualizacionPrecio) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	for i := range a.Detalles {
		a.Detalles[i].ID = uuid.New()
		a.Detalles[i].ActualizacionID = a.ID
	}
	r.logs[a.ID] = a
	return nil
}

func (r *stubActualizacionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ActualizacionPrecio, error) {
	a, ok := r.logs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return a, nil
}

func (r *stubActualizacionRepo) List(_ context.Context, filter dto.ActualizacionFilter) ([]model.ActualizacionPrecio, int64, error) {
	var out []model.ActualizacionPrecio
	for _, a := range r.logs {
		if filter.ProveedorID != "" && a.ProveedorID.String() != filter.ProveedorID {
			continue
		}
		if filter.Estado != "" && a.Estado != filter.Estado {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *stubActualizacionRepo) TransicionTx(_ *gorm.DB, id uuid.UUID, hacia string) (int64, error) {
	a, ok := r.logs[id]
	if !ok || a.Estado != model.ActualizacionPendiente {
		return 0, nil
	}
	now := time.Now()
	a.Estado = hacia
	a.ResueltaAt = &now
	return 1, nil
}

func (r *stubActualizacionRepo) DB() *gorm.DB { return nil }

type stubPlantillaRepo struct {
	plantillas map[uuid.UUID]*model.PlantillaImportacion
}

func newStubPlantillaRepo() *stubPlantillaRepo {
	return &stubPlantillaRepo{plantillas: make(map[uuid.UUID]*model.PlantillaImportacion)}
}

func (r *stubPlantillaRepo) Create(_ context.Context, p *model.PlantillaImportacion) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.plantillas[p.ID] = p
	return nil
}

func (r *stubPlantillaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PlantillaImportacion, error) {
	p, ok := r.plantillas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubPlantillaRepo) ListByProveedor(_ context.Context, proveedorID uuid.UUID) ([]model.PlantillaImportacion, error) {
	var out []model.PlantillaImportacion
	for _, p := range r.plantillas {
		if p.ProveedorID == proveedorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPlantillaRepo) Update(_ context.Context, p *model.PlantillaImportacion) error {
	r.plantillas[p.ID] = p
	return nil
}

func (r *stubPlantillaRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.plantillas, id)
	return nil
}

type stubProveedorRepo struct {
	proveedores map[uuid.UUID]*model.Proveedor
}

func newStubProveedorRepo() *stubProveedorRepo {
	return &stubProveedorRepo{proveedores: make(map[uuid.UUID]*model.Proveedor)}
}

func (r *stubProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.proveedores[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProveedorRepo) FindByCUIT(_ context.Context, cuit string) (*model.Proveedor, error) {
	for _, p := range r.proveedores {
		if p.CUIT == cuit {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubProveedorRepo) List(_ context.Context) ([]model.Proveedor, error) {
	var out []model.Proveedor
	for _, p := range r.proveedores {
		if p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.proveedores[id]; ok {
		p.Activo = false
		return nil
	}
	return errors.New("not found")
}

func (r *stubProveedorRepo) ReplaceContactos(_ context.Context, proveedorID uuid.UUID, contactos []model.ContactoProveedor) error {
	if p, ok := r.proveedores[proveedorID]; ok {
		p.Contactos = contactos
		return nil
	}
	return errors.New("not found")
}

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProductoRepo) FindByBarcode(_ context.Context, barcode string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.CodigoBarras == barcode {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubProductoRepo) FindByCodigoProveedor(_ context.Context, proveedorID uuid.UUID, codigo string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.ProveedorID != nil && *p.ProveedorID == proveedorID &&
			p.CodigoProveedor != nil && *p.CodigoProveedor == codigo {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubProductoRepo) FindByProveedorID(_ context.Context, proveedorID uuid.UUID) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.ProveedorID != nil && *p.ProveedorID == proveedorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
		return nil
	}
	return errors.New("not found")
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = true
		return nil
	}
	return errors.New("not found")
}

func (r *stubProductoRepo) AjustarStock(_ context.Context, id uuid.UUID, delta int) error {
	if p, ok := r.productos[id]; ok {
		p.StockActual += delta
		return nil
	}
	return errors.New("not found")
}

func (r *stubProductoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductoRepo) UpdatePreciosTx(_ *gorm.DB, id uuid.UUID, nuevoCosto, nuevaVenta, margen decimal.Decimal) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	p.PrecioCosto = nuevoCosto
	p.PrecioVenta = nuevaVenta
	p.MargenPct = margen
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

type stubHistorialRepo struct {
	registros []model.HistorialPrecio
}

func (r *stubHistorialRepo) CreateTx(_ *gorm.DB, h *model.HistorialPrecio) error {
	h.ID = uuid.New()
	h.CreatedAt = time.Now()
	r.registros = append(r.registros, *h)
	return nil
}

func (r *stubHistorialRepo) ListByProducto(_ context.Context, productoID uuid.UUID, _, _ int) ([]model.HistorialPrecio, int64, error) {
	var out []model.HistorialPrecio
	for _, h := range r.registros {
		if h.ProductoID == productoID {
			out = append(out, h)
		}
	}
	return out, int64(len(out)), nil
}

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	svc           ActualizacionPrecioService
	repo          *stubActualizacionRepo
	productoRepo  *stubProductoRepo
	historialRepo *stubHistorialRepo

	proveedor *model.Proveedor
	plantilla *model.PlantillaImportacion
	martillo  *model.Producto // codigo A1, activo, costo 90, margen 50
	pinza     *model.Producto // codigo B2, inactivo, costo 40
}

// newFixture arma el escenario tipico: dos productos del proveedor, uno
// activo y uno discontinuado, mas una plantilla estandar.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newStubActualizacionRepo()
	plantillaRepo := newStubPlantillaRepo()
	proveedorRepo := newStubProveedorRepo()
	productoRepo := newStubProductoRepo()
	historialRepo := &stubHistorialRepo{}

	proveedor := &model.Proveedor{ID: uuid.New(), RazonSocial: "ACME Herrajes", CUIT: "30-11111111-1", Activo: true}
	require.NoError(t, proveedorRepo.Create(context.Background(), proveedor))

	plantilla := &model.PlantillaImportacion{
		ID:          uuid.New(),
		ProveedorID: proveedor.ID,
		Nombre:      "Lista estandar",
		MapeoColumnas: model.MapeoColumnas{
			model.CampoCodigoProveedor: "A",
			model.CampoDescripcion:     "B",
			model.CampoPrecio:          "C",
		},
		TieneEncabezado: true,
		FilaInicio:      1,
	}
	require.NoError(t, plantillaRepo.Create(context.Background(), plantilla))

	codigoA1, codigoB2 := "A1", "B2"
	martillo := &model.Producto{
		ID: uuid.New(), CodigoBarras: "7791234500017", CodigoProveedor: &codigoA1,
		Nombre: "Martillo galponero", Categoria: "herramientas",
		PrecioCosto: decimal.NewFromInt(90), PrecioVenta: decimal.NewFromInt(135),
		MargenPct: decimal.NewFromInt(50), ProveedorID: &proveedor.ID, Activo: true,
	}
	pinza := &model.Producto{
		ID: uuid.New(), CodigoBarras: "7791234500024", CodigoProveedor: &codigoB2,
		Nombre: "Pinza universal", Categoria: "herramientas",
		PrecioCosto: decimal.NewFromInt(40), PrecioVenta: decimal.NewFromInt(60),
		MargenPct: decimal.NewFromInt(50), ProveedorID: &proveedor.ID, Activo: false,
	}
	require.NoError(t, productoRepo.Create(context.Background(), martillo))
	require.NoError(t, productoRepo.Create(context.Background(), pinza))

	svc := NewActualizacionPrecioService(repo, plantillaRepo, proveedorRepo, productoRepo, historialRepo, nil, nil, "")

	return &fixture{
		svc: svc, repo: repo, productoRepo: productoRepo, historialRepo: historialRepo,
		proveedor: proveedor, plantilla: plantilla, martillo: martillo, pinza: pinza,
	}
}

func (f *fixture) analizarRequest(filas []importacion.FilaNormalizada) dto.AnalizarRequest {
	return dto.AnalizarRequest{
		ProveedorID:   f.proveedor.ID.String(),
		PlantillaID:   f.plantilla.ID.String(),
		NombreArchivo: "lista_agosto.xlsx",
		Filas:         filas,
	}
}

func filasTipicas() []importacion.FilaNormalizada {
	return []importacion.FilaNormalizada{
		{CodigoProveedor: "A1", Descripcion: "Martillo galponero", Precio: "100"},
		{CodigoProveedor: "B2", Descripcion: "Pinza universal", Precio: "50"},
		{CodigoProveedor: "ZZZ", Descripcion: "Producto nuevo", Precio: "10"},
	}
}

// ── Analizar ──────────────────────────────────────────────────────────────────

func TestAnalizar_ClasificaFilas(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Analizar(context.Background(), f.analizarRequest(filasTipicas()))
	require.NoError(t, err)

	assert.Equal(t, model.ActualizacionPendiente, resp.Estado)
	assert.Equal(t, 3, resp.Resumen.Total)
	assert.Equal(t, 1, resp.Resumen.Actualizados)
	assert.Equal(t, 1, resp.Resumen.NoEncontrados)
	assert.Equal(t, 1, resp.Resumen.Discontinuados)

	require.Len(t, resp.Detalles, 3)

	// Fila 1: match activo → actualizar, variacion (100-90)/90*100 = 11.11
	d := resp.Detalles[0]
	assert.Equal(t, 1, d.Fila)
	assert.Equal(t, model.DetalleActualizar, d.Estado)
	assert.True(t, d.PrecioAnterior.Equal(decimal.NewFromInt(90)))
	assert.True(t, d.PrecioNuevo.Equal(decimal.NewFromInt(100)))
	assert.True(t, d.Variacion.Equal(decimal.RequireFromString("11.11")), d.Variacion.String())
	require.NotNil(t, d.NombreProducto)
	assert.Equal(t, "Martillo galponero", *d.NombreProducto)

	// Fila 2: match inactivo → discontinuado
	d = resp.Detalles[1]
	assert.Equal(t, model.DetalleDiscontinuado, d.Estado)
	assert.True(t, d.PrecioAnterior.Equal(decimal.NewFromInt(40)))

	// Fila 3: sin match → no_encontrado, sin datos de catalogo
	d = resp.Detalles[2]
	assert.Equal(t, model.DetalleNoEncontrado, d.Estado)
	assert.Nil(t, d.CodigoBarras)
	assert.True(t, d.PrecioAnterior.IsZero())

	// Promedio sobre filas actualizar con costo previo positivo
	assert.True(t, resp.Resumen.VariacionPromedio.Equal(decimal.RequireFromString("11.11")))
}

func TestAnalizar_NoMutaCatalogo(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Analizar(context.Background(), f.analizarRequest(filasTipicas()))
	require.NoError(t, err)

	assert.True(t, f.martillo.PrecioCosto.Equal(decimal.NewFromInt(90)))
	assert.True(t, f.pinza.PrecioCosto.Equal(decimal.NewFromInt(40)))
	assert.Empty(t, f.historialRepo.registros)
}

func TestAnalizar_CostoPrevioCeroExcluidoDelPromedio(t *testing.T) {
	f := newFixture(t)
	f.martillo.PrecioCosto = decimal.Zero

	resp, err := f.svc.Analizar(context.Background(), f.analizarRequest(filasTipicas()[:1]))
	require.NoError(t, err)

	require.Len(t, resp.Detalles, 1)
	assert.Equal(t, model.DetalleActualizar, resp.Detalles[0].Estado)
	assert.True(t, resp.Detalles[0].Variacion.IsZero())
	assert.True(t, resp.Resumen.VariacionPromedio.IsZero())
}

func TestAnalizar_PrecioFormatoArgentino(t *testing.T) {
	f := newFixture(t)
	filas := []importacion.FilaNormalizada{
		{CodigoProveedor: "A1", Descripcion: "Martillo", Precio: "$ 1.234,56"},
	}
	resp, err := f.svc.Analizar(context.Background(), f.analizarRequest(filas))
	require.NoError(t, err)
	assert.True(t, resp.Detalles[0].PrecioNuevo.Equal(decimal.RequireFromString("1234.56")))
}

func TestAnalizar_SinFilas(t *testing.T) {
	f := newFixture(t)
	resp, err := f.svc.Analizar(context.Background(), f.analizarRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Resumen.Total)
	assert.Empty(t, resp.Detalles)
	assert.Equal(t, model.ActualizacionPendiente, resp.Estado)
}

func TestAnalizar_ProveedorInexistente(t *testing.T) {
	f := newFixture(t)
	req := f.analizarRequest(filasTipicas())
	req.ProveedorID = uuid.NewString()
	_, err := f.svc.Analizar(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestAnalizar_PlantillaDeOtroProveedor(t *testing.T) {
	f := newFixture(t)
	otro := &model.Proveedor{ID: uuid.New(), RazonSocial: "Otro SA", CUIT: "30-22222222-2", Activo: true}
	f.plantilla.ProveedorID = otro.ID

	_, err := f.svc.Analizar(context.Background(), f.analizarRequest(filasTipicas()))
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestAnalizar_CadaCorridaCreaUnNuevoLog(t *testing.T) {
	f := newFixture(t)
	r1, err := f.svc.Analizar(context.Background(), f.analizarRequest(filasTipicas()))
	require.NoError(t, err)
	r2, err := f.svc.Analizar(context.Background(), f.analizarRequest(filasTipicas()))
	require.NoError(t, err)

	assert.NotEqual(t, r1.ID, r2.ID)
	assert.Len(t, f.repo.logs, 2)
}

// ── Aplicar / Cancelar ────────────────────────────────────────────────────────

func aplicarAnalisis(t *testing.T, f *fixture) uuid.UUID {
	t.Helper()
	resp, err := f.svc.Analizar(context.Background(), f.analizarRequest(filasTipicas()))
	require.NoError(t, err)
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	return id
}

func TestAplicar_ActualizaSoloFilasActualizar(t *testing.T) {
	f := newFixture(t)
	id := aplicarAnalisis(t, f)

	resp, err := f.svc.Aplicar(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, model.ActualizacionAplicada, resp.Estado)
	assert.Equal(t, 1, resp.ProductosAplicados)

	// Martillo: costo 100, venta recalculada con margen 50% → 150.
	assert.True(t, f.martillo.PrecioCosto.Equal(decimal.NewFromInt(100)))
	assert.True(t, f.martillo.PrecioVenta.Equal(decimal.NewFromInt(150)), f.martillo.PrecioVenta.String())
	assert.True(t, f.martillo.MargenPct.Equal(decimal.NewFromInt(50)))

	// Pinza (discontinuada) intacta.
	assert.True(t, f.pinza.PrecioCosto.Equal(decimal.NewFromInt(40)))
	assert.False(t, f.pinza.Activo)
}

func TestAplicar_RegistraHistorial(t *testing.T) {
	f := newFixture(t)
	id := aplicarAnalisis(t, f)

	_, err := f.svc.Aplicar(context.Background(), id)
	require.NoError(t, err)

	require.Len(t, f.historialRepo.registros, 1)
	h := f.historialRepo.registros[0]
	assert.Equal(t, f.martillo.ID, h.ProductoID)
	assert.True(t, h.CostoAntes.Equal(decimal.NewFromInt(90)))
	assert.True(t, h.CostoDespues.Equal(decimal.NewFromInt(100)))
	assert.True(t, h.VentaAntes.Equal(decimal.NewFromInt(135)))
	assert.True(t, h.VentaDespues.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "importacion_lista", h.Motivo)
	require.NotNil(t, h.ActualizacionID)
	assert.Equal(t, id, *h.ActualizacionID)
}

func TestAplicar_SegundaVezFalla(t *testing.T) {
	f := newFixture(t)
	id := aplicarAnalisis(t, f)

	_, err := f.svc.Aplicar(context.Background(), id)
	require.NoError(t, err)

	_, err = f.svc.Aplicar(context.Background(), id)
	assert.ErrorIs(t, err, ErrEstadoInvalido)

	// El catalogo no se toca dos veces.
	assert.True(t, f.martillo.PrecioCosto.Equal(decimal.NewFromInt(100)))
	assert.Len(t, f.historialRepo.registros, 1)
}

func TestAplicar_Inexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Aplicar(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestCancelar_NoMutaNada(t *testing.T) {
	f := newFixture(t)
	id := aplicarAnalisis(t, f)

	require.NoError(t, f.svc.Cancelar(context.Background(), id))

	assert.Equal(t, model.ActualizacionCancelada, f.repo.logs[id].Estado)
	assert.NotNil(t, f.repo.logs[id].ResueltaAt)
	assert.True(t, f.martillo.PrecioCosto.Equal(decimal.NewFromInt(90)))
	assert.Empty(t, f.historialRepo.registros)
}

func TestCancelar_LuegoAplicarFalla(t *testing.T) {
	f := newFixture(t)
	id := aplicarAnalisis(t, f)

	require.NoError(t, f.svc.Cancelar(context.Background(), id))

	_, err := f.svc.Aplicar(context.Background(), id)
	assert.ErrorIs(t, err, ErrEstadoInvalido)

	err = f.svc.Cancelar(context.Background(), id)
	assert.ErrorIs(t, err, ErrEstadoInvalido)
}

// ── parsearPrecio ─────────────────────────────────────────────────────────────

func TestParsearPrecio(t *testing.T) {
	casos := map[string]string{
		"100":        "100",
		"1500.50":    "1500.50",
		"1500,50":    "1500.50",
		"$ 1.234,56": "1234.56",
		"$1234.56":   "1234.56",
		" 99 ":       "99",
		"":           "0",
		"abc":        "0",
	}
	for entrada, esperado := range casos {
		assert.True(t, parsearPrecio(entrada).Equal(decimal.RequireFromString(esperado)),
			"entrada %q → %s", entrada, parsearPrecio(entrada).String())
	}
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func TestObtenerPorID_Y_Listar(t *testing.T) {
	f := newFixture(t)
	id := aplicarAnalisis(t, f)

	resp, err := f.svc.ObtenerPorID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id.String(), resp.ID)
	assert.Len(t, resp.Detalles, 3)

	list, err := f.svc.Listar(context.Background(), dto.ActualizacionFilter{Estado: model.ActualizacionPendiente})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "lista_agosto.xlsx", list.Data[0].NombreArchivo)
}
