package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados of an ActualizacionPrecio. The transition pendiente → aplicada or
// pendiente → cancelada happens at most once; terminal states never change.
const (
	ActualizacionPendiente = "pendiente"
	ActualizacionAplicada  = "aplicada"
	ActualizacionCancelada = "cancelada"
)

// Estados of one detail row, decided at analysis time.
const (
	DetalleActualizar    = "actualizar"
	DetalleNoEncontrado  = "no_encontrado"
	DetalleDiscontinuado = "discontinuado"
)

// ActualizacionPrecio is the analysis log of one price-list import attempt.
// Created by the analyzer in estado pendiente together with its Detalles; a
// human then applies or cancels it. Immutable afterward.
type ActualizacionPrecio struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProveedorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	PlantillaID    uuid.UUID `gorm:"type:uuid;not null"`
	NombreArchivo  string    `gorm:"not null"`
	Estado         string    `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	TotalFilas     int       `gorm:"not null;default:0"`
	Actualizados   int       `gorm:"not null;default:0"`
	NoEncontrados  int       `gorm:"not null;default:0"`
	Discontinuados int       `gorm:"not null;default:0"`
	// VariacionPromedio is the mean variation over rows classified
	// "actualizar" (rows without a meaningful previous cost are excluded).
	VariacionPromedio decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0"`
	CreatedAt         time.Time
	// ResueltaAt marks when the terminal transition happened; nil while pendiente.
	ResueltaAt *time.Time

	Proveedor *Proveedor                   `gorm:"foreignKey:ProveedorID"`
	Plantilla *PlantillaImportacion        `gorm:"foreignKey:PlantillaID"`
	Detalles  []ActualizacionPrecioDetalle `gorm:"foreignKey:ActualizacionID"`
}

func (ActualizacionPrecio) TableName() string { return "actualizaciones_precio" }

// ActualizacionPrecioDetalle is the classification of one file row against
// the catalog. Fila preserves the input order of the price list.
type ActualizacionPrecioDetalle struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ActualizacionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Fila            int       `gorm:"not null"`
	CodigoProveedor string    `gorm:"not null"`
	// Descripcion comes from the file, not from the catalog.
	Descripcion string
	// ProductoID / CodigoBarras / NombreProducto resolve the matched catalog
	// product; all nil when the row is no_encontrado.
	ProductoID     *uuid.UUID `gorm:"type:uuid"`
	CodigoBarras   *string
	NombreProducto *string
	PrecioAnterior decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioNuevo    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// Variacion = (PrecioNuevo - PrecioAnterior) / PrecioAnterior * 100,
	// signed; zero when PrecioAnterior is zero.
	Variacion decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	Estado    string          `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time
}

func (ActualizacionPrecioDetalle) TableName() string { return "actualizaciones_precio_detalles" }
