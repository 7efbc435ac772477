package dto

import (
	"github.com/shopspring/decimal"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/importacion"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AnalizarRequest carries rows already normalized by the client (the POS UI
// parses the file in the browser before calling the server). Filas may be
// empty — the analysis then yields a log with total 0.
type AnalizarRequest struct {
	ProveedorID   string                       `json:"proveedor_id"   validate:"required,uuid"`
	PlantillaID   string                       `json:"plantilla_id"   validate:"required,uuid"`
	NombreArchivo string                       `json:"nombre_archivo" validate:"required,min=1"`
	Filas         []importacion.FilaNormalizada `json:"filas"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ActualizacionFilter struct {
	ProveedorID string `form:"proveedor_id"`
	Estado      string `form:"estado"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ResumenActualizacion aggregates the per-row classification counts.
type ResumenActualizacion struct {
	Total             int             `json:"total"`
	Actualizados      int             `json:"actualizados"`
	NoEncontrados     int             `json:"no_encontrados"`
	Discontinuados    int             `json:"discontinuados"`
	VariacionPromedio decimal.Decimal `json:"variacion_promedio"`
}

type DetalleActualizacionItem struct {
	Fila            int             `json:"fila"`
	CodigoProveedor string          `json:"codigo_proveedor"`
	Descripcion     string          `json:"descripcion"`
	CodigoBarras    *string         `json:"codigo_barras"`
	NombreProducto  *string         `json:"nombre_producto"`
	PrecioAnterior  decimal.Decimal `json:"precio_anterior"`
	PrecioNuevo     decimal.Decimal `json:"precio_nuevo"`
	Variacion       decimal.Decimal `json:"variacion"`
	Estado          string          `json:"estado"`
}

type AnalisisResponse struct {
	ID       string                     `json:"id"`
	Estado   string                     `json:"estado"`
	Resumen  ResumenActualizacion       `json:"resumen"`
	Detalles []DetalleActualizacionItem `json:"detalles"`
}

type ActualizacionListItem struct {
	ID              string               `json:"id"`
	ProveedorID     string               `json:"proveedor_id"`
	ProveedorNombre string               `json:"proveedor_nombre,omitempty"`
	NombreArchivo   string               `json:"nombre_archivo"`
	Estado          string               `json:"estado"`
	Resumen         ResumenActualizacion `json:"resumen"`
	CreatedAt       string               `json:"created_at"`
	ResueltaAt      *string              `json:"resuelta_at,omitempty"`
}

type ActualizacionListResponse struct {
	Data  []ActualizacionListItem `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

// AplicarResponse reports how many catalog products were written.
type AplicarResponse struct {
	ID                 string `json:"id"`
	Estado             string `json:"estado"`
	ProductosAplicados int    `json:"productos_aplicados"`
}
