package service

import (
	"context"
	"testing"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/dto"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crearProveedorRequest() dto.CrearProveedorRequest {
	cargo := "ventas"
	return dto.CrearProveedorRequest{
		RazonSocial: "ACME Herrajes SA",
		CUIT:        "30-11111111-1",
		Contactos: []dto.ContactoProveedorInput{
			{Nombre: "Carlos Perez", Cargo: &cargo},
		},
	}
}

func TestCrearProveedor_ConContactos(t *testing.T) {
	svc := NewProveedorService(newStubProveedorRepo())

	resp, err := svc.Crear(context.Background(), crearProveedorRequest())
	require.NoError(t, err)

	assert.Equal(t, "ACME Herrajes SA", resp.RazonSocial)
	assert.True(t, resp.Activo)
	require.Len(t, resp.Contactos, 1)
	assert.Equal(t, "Carlos Perez", resp.Contactos[0].Nombre)
}

func TestCrearProveedor_CUITDuplicado(t *testing.T) {
	svc := NewProveedorService(newStubProveedorRepo())

	_, err := svc.Crear(context.Background(), crearProveedorRequest())
	require.NoError(t, err)

	req := crearProveedorRequest()
	req.RazonSocial = "Otra Razon Social"
	_, err = svc.Crear(context.Background(), req)
	assert.ErrorIs(t, err, ErrConflicto)
}

func TestActualizarProveedor_CUITOcupado(t *testing.T) {
	repo := newStubProveedorRepo()
	svc := NewProveedorService(repo)

	_, err := svc.Crear(context.Background(), crearProveedorRequest())
	require.NoError(t, err)

	otro := &model.Proveedor{ID: uuid.New(), RazonSocial: "Bulones SRL", CUIT: "30-22222222-2", Activo: true}
	require.NoError(t, repo.Create(context.Background(), otro))

	req := crearProveedorRequest() // intenta tomar el CUIT del primero
	req.RazonSocial = "Bulones SRL"
	_, err = svc.Actualizar(context.Background(), otro.ID, req)
	assert.ErrorIs(t, err, ErrConflicto)
}

func TestEliminarProveedor_EsSoftDelete(t *testing.T) {
	repo := newStubProveedorRepo()
	svc := NewProveedorService(repo)

	creado, err := svc.Crear(context.Background(), crearProveedorRequest())
	require.NoError(t, err)
	id := uuid.MustParse(creado.ID)

	require.NoError(t, svc.Eliminar(context.Background(), id))

	// Sigue existiendo, solo inactivo: el historial de precios lo referencia.
	guardado, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, guardado.Activo)
}
