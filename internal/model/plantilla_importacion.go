package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Logical fields every column mapping must resolve. Extra fields (e.g. a
// per-supplier "marca" column) are allowed and simply carried through.
const (
	CampoCodigoProveedor = "codigo_proveedor"
	CampoDescripcion     = "descripcion"
	CampoPrecio          = "precio"
)

// MapeoColumnas maps a logical field name to the spreadsheet column letter
// that holds it ("A".."Z", "AA".. for wide files). Stored as JSONB.
type MapeoColumnas map[string]string

func (m MapeoColumnas) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *MapeoColumnas) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("mapeo_columnas: tipo de columna no soportado")
	}
}

// PlantillaImportacion is a reusable column-mapping configuration describing
// how to read one supplier's price-list file: which column holds the supplier
// code, the description and the price, whether the file has a header row, and
// at which row the data starts. A supplier may have many plantillas (each
// supplier sends a different layout, and layouts change over time).
type PlantillaImportacion struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProveedorID   uuid.UUID     `gorm:"type:uuid;not null;index"`
	Nombre        string        `gorm:"not null"`
	MapeoColumnas MapeoColumnas `gorm:"type:jsonb;not null"`
	TieneEncabezado bool        `gorm:"not null;default:true"`
	// FilaInicio is the 1-based row where the data begins.
	FilaInicio int `gorm:"not null;default:1"`
	// NombreHoja selects the worksheet; nil = first sheet of the workbook.
	NombreHoja *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (PlantillaImportacion) TableName() string { return "plantillas_importacion" }
