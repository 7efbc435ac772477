package service

import (
	"context"
	"testing"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductoFixture() (ProductoService, *stubProductoRepo, *stubHistorialRepo) {
	repo := newStubProductoRepo()
	historialRepo := &stubHistorialRepo{}
	return NewProductoService(repo, historialRepo, nil), repo, historialRepo
}

func crearProductoRequest() dto.CrearProductoRequest {
	codigo := "MART-01"
	return dto.CrearProductoRequest{
		CodigoBarras:    "7791234500017",
		CodigoProveedor: &codigo,
		Nombre:          "Martillo galponero",
		Categoria:       "herramientas",
		PrecioCosto:     decimal.NewFromInt(90),
		PrecioVenta:     decimal.NewFromInt(135),
		StockActual:     10,
		StockMinimo:     2,
	}
}

func TestCrearProducto_CalculaMargen(t *testing.T) {
	svc, _, _ := newProductoFixture()

	resp, err := svc.Crear(context.Background(), crearProductoRequest())
	require.NoError(t, err)

	assert.Equal(t, "Martillo galponero", resp.Nombre)
	assert.True(t, resp.MargenPct.Equal(decimal.NewFromInt(50)), resp.MargenPct.String())
	assert.Equal(t, "unidad", resp.UnidadMedida)
	assert.True(t, resp.Activo)
}

func TestCrearProducto_BarcodeDuplicado(t *testing.T) {
	svc, _, _ := newProductoFixture()

	_, err := svc.Crear(context.Background(), crearProductoRequest())
	require.NoError(t, err)

	_, err = svc.Crear(context.Background(), crearProductoRequest())
	assert.ErrorIs(t, err, ErrConflicto)
}

func TestActualizarProducto_CambioDePrecioRegistraHistorial(t *testing.T) {
	svc, _, historialRepo := newProductoFixture()
	creado, err := svc.Crear(context.Background(), crearProductoRequest())
	require.NoError(t, err)
	id := uuid.MustParse(creado.ID)

	nuevoCosto := decimal.NewFromInt(100)
	nuevaVenta := decimal.NewFromInt(160)
	_, err = svc.Actualizar(context.Background(), id, dto.ActualizarProductoRequest{
		PrecioCosto: &nuevoCosto,
		PrecioVenta: &nuevaVenta,
	})
	require.NoError(t, err)

	require.Len(t, historialRepo.registros, 1)
	h := historialRepo.registros[0]
	assert.Equal(t, "manual", h.Motivo)
	assert.Nil(t, h.ActualizacionID)
	assert.True(t, h.CostoAntes.Equal(decimal.NewFromInt(90)))
	assert.True(t, h.CostoDespues.Equal(decimal.NewFromInt(100)))
}

func TestActualizarProducto_SinCambioDePrecioNoRegistra(t *testing.T) {
	svc, _, historialRepo := newProductoFixture()
	creado, err := svc.Crear(context.Background(), crearProductoRequest())
	require.NoError(t, err)
	id := uuid.MustParse(creado.ID)

	nombre := "Martillo reforzado"
	_, err = svc.Actualizar(context.Background(), id, dto.ActualizarProductoRequest{Nombre: &nombre})
	require.NoError(t, err)

	assert.Empty(t, historialRepo.registros)
}

func TestAjustarStock(t *testing.T) {
	svc, _, _ := newProductoFixture()
	creado, err := svc.Crear(context.Background(), crearProductoRequest())
	require.NoError(t, err)
	id := uuid.MustParse(creado.ID)

	resp, err := svc.AjustarStock(context.Background(), id, dto.AjustarStockRequest{Delta: -3, Motivo: "rotura en deposito"})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.StockActual)

	_, err = svc.AjustarStock(context.Background(), id, dto.AjustarStockRequest{Delta: -100, Motivo: "error"})
	assert.ErrorIs(t, err, ErrValidacion)
}

func TestDesactivarYReactivar(t *testing.T) {
	svc, repo, _ := newProductoFixture()
	creado, err := svc.Crear(context.Background(), crearProductoRequest())
	require.NoError(t, err)
	id := uuid.MustParse(creado.ID)

	require.NoError(t, svc.Desactivar(context.Background(), id))
	assert.False(t, repo.productos[id].Activo)

	require.NoError(t, svc.Reactivar(context.Background(), id))
	assert.True(t, repo.productos[id].Activo)
}

func TestConsultaPrecio_ProductoInactivo(t *testing.T) {
	svc, repo, _ := newProductoFixture()
	creado, err := svc.Crear(context.Background(), crearProductoRequest())
	require.NoError(t, err)
	repo.productos[uuid.MustParse(creado.ID)].Activo = false

	_, err = svc.ConsultaPrecio(context.Background(), "7791234500017")
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestConsultaPrecio_SinRedisVaADB(t *testing.T) {
	svc, _, _ := newProductoFixture()
	_, err := svc.Crear(context.Background(), crearProductoRequest())
	require.NoError(t, err)

	resp, err := svc.ConsultaPrecio(context.Background(), "7791234500017")
	require.NoError(t, err)
	assert.Equal(t, "Martillo galponero", resp.Nombre)
	assert.True(t, resp.PrecioVenta.Equal(decimal.NewFromInt(135)))
	assert.Equal(t, 10, resp.StockDisponible)
}

func TestHistorialPrecios_ProductoInexistente(t *testing.T) {
	svc, _, _ := newProductoFixture()
	_, err := svc.HistorialPrecios(context.Background(), uuid.New(), 1, 20)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestHistorialPrecios_ListaCambios(t *testing.T) {
	svc, _, _ := newProductoFixture()
	creado, err := svc.Crear(context.Background(), crearProductoRequest())
	require.NoError(t, err)
	id := uuid.MustParse(creado.ID)

	nuevoCosto := decimal.NewFromInt(95)
	nuevaVenta := decimal.NewFromInt(150)
	_, err = svc.Actualizar(context.Background(), id, dto.ActualizarProductoRequest{
		PrecioCosto: &nuevoCosto,
		PrecioVenta: &nuevaVenta,
	})
	require.NoError(t, err)

	resp, err := svc.HistorialPrecios(context.Background(), id, 1, 20)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "manual", resp.Data[0].Motivo)
	assert.True(t, decimal.RequireFromString("95").Equal(resp.Data[0].CostoDespues))
}
