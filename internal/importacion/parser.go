// Package importacion turns an uploaded price-list file (xlsx/csv) into the
// normalized rows the reconciliation analyzer consumes, using the column
// mapping of a PlantillaImportacion. Parsing is a pure transform over the
// provided bytes: no side effects, no partial results on failure.
package importacion

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/model"

	"github.com/xuri/excelize/v2"
)

// ErrArchivoInvalido signals an unreadable or malformed file. Handlers map it
// to a generic "no se pudo leer el archivo" response.
var ErrArchivoInvalido = errors.New("archivo ilegible o con formato invalido")

// FilaNormalizada is one price-list row after applying a column mapping.
// Precio stays a string here — numeric interpretation happens at analysis
// time so that a malformed price invalidates one row, not the whole file.
type FilaNormalizada struct {
	CodigoProveedor string            `json:"codigo_proveedor"`
	Descripcion     string            `json:"descripcion"`
	Precio          string            `json:"precio"`
	Extras          map[string]string `json:"extras,omitempty"`
}

// xlsx files are ZIP containers; anything else is treated as CSV.
var firmaZIP = []byte{0x50, 0x4B, 0x03, 0x04}

// IndiceColumna resolves a spreadsheet column reference ("A".."Z", "AA"..)
// to its zero-based index: A=0, B=1, ..., Z=25, AA=26.
func IndiceColumna(letra string) (int, error) {
	letra = strings.ToUpper(strings.TrimSpace(letra))
	if letra == "" {
		return 0, ErrArchivoInvalido
	}
	idx := 0
	for _, r := range letra {
		if r < 'A' || r > 'Z' {
			return 0, ErrArchivoInvalido
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1, nil
}

// EsReferenciaColumna reports whether s is a valid column reference.
// Used by the plantilla validator before a mapping is persisted.
func EsReferenciaColumna(s string) bool {
	_, err := IndiceColumna(s)
	return err == nil
}

// LeerArchivo opens the uploaded file, selects the worksheet configured in
// the plantilla (first sheet when none is set), skips to the configured start
// row and applies the column mapping to every remaining non-empty row.
//
// The effective zero-based start index is FilaInicio when the file has a
// header row, FilaInicio-1 when it does not: a header-less file skips to the
// same data row without the operator adjusting FilaInicio.
func LeerArchivo(datos []byte, p *model.PlantillaImportacion) ([]FilaNormalizada, error) {
	if len(datos) == 0 {
		return nil, ErrArchivoInvalido
	}

	var celdas [][]string
	var err error
	if bytes.HasPrefix(datos, firmaZIP) {
		celdas, err = leerWorkbook(datos, p.NombreHoja)
	} else {
		celdas, err = leerCSV(datos)
	}
	if err != nil {
		return nil, err
	}

	inicio := p.FilaInicio
	if !p.TieneEncabezado {
		inicio = p.FilaInicio - 1
	}
	if inicio < 0 {
		inicio = 0
	}
	if inicio >= len(celdas) {
		return []FilaNormalizada{}, nil
	}

	filas := make([]FilaNormalizada, 0, len(celdas)-inicio)
	for _, fila := range celdas[inicio:] {
		if filaVacia(fila) {
			continue
		}
		normalizada, err := aplicarMapeo(fila, p.MapeoColumnas)
		if err != nil {
			return nil, err
		}
		filas = append(filas, normalizada)
	}
	return filas, nil
}

func leerWorkbook(datos []byte, nombreHoja *string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(datos))
	if err != nil {
		return nil, ErrArchivoInvalido
	}
	defer f.Close()

	hojas := f.GetSheetList()
	if len(hojas) == 0 {
		return nil, ErrArchivoInvalido
	}
	hoja := hojas[0]
	if nombreHoja != nil && *nombreHoja != "" {
		encontrada := false
		for _, h := range hojas {
			if strings.EqualFold(h, *nombreHoja) {
				hoja = h
				encontrada = true
				break
			}
		}
		if !encontrada {
			return nil, ErrArchivoInvalido
		}
	}

	celdas, err := f.GetRows(hoja)
	if err != nil {
		return nil, ErrArchivoInvalido
	}
	return celdas, nil
}

func leerCSV(datos []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(datos))
	// Supplier CSVs are irregular: allow ragged rows and lazy quoting.
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var celdas [][]string
	for {
		registro, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ErrArchivoInvalido
		}
		celdas = append(celdas, registro)
	}
	return celdas, nil
}

func aplicarMapeo(fila []string, mapeo model.MapeoColumnas) (FilaNormalizada, error) {
	normalizada := FilaNormalizada{}
	for campo, letra := range mapeo {
		idx, err := IndiceColumna(letra)
		if err != nil {
			return FilaNormalizada{}, err
		}
		valor := ""
		if idx < len(fila) {
			valor = fila[idx]
		}
		switch campo {
		case model.CampoCodigoProveedor:
			normalizada.CodigoProveedor = valor
		case model.CampoDescripcion:
			normalizada.Descripcion = valor
		case model.CampoPrecio:
			normalizada.Precio = valor
		default:
			if normalizada.Extras == nil {
				normalizada.Extras = make(map[string]string)
			}
			normalizada.Extras[campo] = valor
		}
	}
	return normalizada, nil
}

func filaVacia(fila []string) bool {
	for _, celda := range fila {
		if strings.TrimSpace(celda) != "" {
			return false
		}
	}
	return true
}
