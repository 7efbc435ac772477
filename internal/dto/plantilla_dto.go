package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearPlantillaRequest creates a column-mapping template for one supplier.
// MapeoColumnas must contain the keys codigo_proveedor, descripcion and
// precio; values are spreadsheet column references ("A".."Z", "AA"..).
type CrearPlantillaRequest struct {
	ProveedorID     string            `json:"proveedor_id"     validate:"required,uuid"`
	Nombre          string            `json:"nombre"           validate:"required,min=1,max=120"`
	MapeoColumnas   map[string]string `json:"mapeo_columnas"   validate:"required"`
	TieneEncabezado bool              `json:"tiene_encabezado"`
	FilaInicio      int               `json:"fila_inicio"      validate:"required,min=1"`
	NombreHoja      *string           `json:"nombre_hoja"`
}

type ActualizarPlantillaRequest struct {
	Nombre          *string           `json:"nombre"           validate:"omitempty,min=1,max=120"`
	MapeoColumnas   map[string]string `json:"mapeo_columnas"`
	TieneEncabezado *bool             `json:"tiene_encabezado"`
	FilaInicio      *int              `json:"fila_inicio"      validate:"omitempty,min=1"`
	NombreHoja      *string           `json:"nombre_hoja"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PlantillaResponse struct {
	ID              string            `json:"id"`
	ProveedorID     string            `json:"proveedor_id"`
	Nombre          string            `json:"nombre"`
	MapeoColumnas   map[string]string `json:"mapeo_columnas"`
	TieneEncabezado bool              `json:"tiene_encabezado"`
	FilaInicio      int               `json:"fila_inicio"`
	NombreHoja      *string           `json:"nombre_hoja"`
	CreatedAt       string            `json:"created_at"`
}
