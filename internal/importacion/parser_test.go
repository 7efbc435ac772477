package importacion

import (
	"testing"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

func plantillaBasica(conEncabezado bool, filaInicio int) *model.PlantillaImportacion {
	return &model.PlantillaImportacion{
		Nombre: "Lista estandar",
		MapeoColumnas: model.MapeoColumnas{
			model.CampoCodigoProveedor: "A",
			model.CampoDescripcion:     "B",
			model.CampoPrecio:          "C",
		},
		TieneEncabezado: conEncabezado,
		FilaInicio:      filaInicio,
	}
}

// xlsxConFilas builds an in-memory workbook; cada fila va en la hoja dada.
func xlsxConFilas(t *testing.T, hoja string, filas [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if hoja != "Sheet1" {
		_, err := f.NewSheet(hoja)
		require.NoError(t, err)
	}
	for i, fila := range filas {
		for j, valor := range fila {
			celda, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(hoja, celda, valor))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// ── IndiceColumna ─────────────────────────────────────────────────────────────

func TestIndiceColumna(t *testing.T) {
	casos := []struct {
		letra string
		idx   int
	}{
		{"A", 0}, {"B", 1}, {"Z", 25},
		{"AA", 26}, {"AB", 27}, {"AZ", 51}, {"BA", 52},
		{"a", 0}, {" c ", 2},
	}
	for _, c := range casos {
		idx, err := IndiceColumna(c.letra)
		assert.NoError(t, err, c.letra)
		assert.Equal(t, c.idx, idx, c.letra)
	}
}

func TestIndiceColumna_Invalida(t *testing.T) {
	for _, letra := range []string{"", "A1", "1", "Ñ", "A-B"} {
		_, err := IndiceColumna(letra)
		assert.ErrorIs(t, err, ErrArchivoInvalido, letra)
	}
}

func TestEsReferenciaColumna(t *testing.T) {
	assert.True(t, EsReferenciaColumna("A"))
	assert.True(t, EsReferenciaColumna("AZ"))
	assert.False(t, EsReferenciaColumna("7"))
	assert.False(t, EsReferenciaColumna(""))
}

// ── CSV ───────────────────────────────────────────────────────────────────────

func TestLeerArchivo_CSVConEncabezado(t *testing.T) {
	csv := "codigo,descripcion,precio\nA1,Martillo,1500.50\nB2,Destornillador,800\n"
	filas, err := LeerArchivo([]byte(csv), plantillaBasica(true, 1))
	require.NoError(t, err)
	require.Len(t, filas, 2)

	assert.Equal(t, "A1", filas[0].CodigoProveedor)
	assert.Equal(t, "Martillo", filas[0].Descripcion)
	assert.Equal(t, "1500.50", filas[0].Precio)
	assert.Equal(t, "B2", filas[1].CodigoProveedor)
}

func TestLeerArchivo_CSVSinEncabezado(t *testing.T) {
	csv := "A1,Martillo,1500\nB2,Pinza,900\n"
	filas, err := LeerArchivo([]byte(csv), plantillaBasica(false, 1))
	require.NoError(t, err)
	require.Len(t, filas, 2)
	assert.Equal(t, "A1", filas[0].CodigoProveedor)
}

func TestLeerArchivo_FilaInicioSaltaPreambulo(t *testing.T) {
	// Listas reales traen titulo y fecha antes del encabezado.
	csv := "LISTA DE PRECIOS,,\nvigencia agosto,,\ncodigo,descripcion,precio\nA1,Martillo,1500\n"
	filas, err := LeerArchivo([]byte(csv), plantillaBasica(true, 3))
	require.NoError(t, err)
	require.Len(t, filas, 1)
	assert.Equal(t, "A1", filas[0].CodigoProveedor)
}

func TestLeerArchivo_DescartaFilasVacias(t *testing.T) {
	csv := "codigo,descripcion,precio\nA1,Martillo,1500\n,,\n   ,  ,\nB2,Pinza,900\n"
	filas, err := LeerArchivo([]byte(csv), plantillaBasica(true, 1))
	require.NoError(t, err)
	require.Len(t, filas, 2)
	assert.Equal(t, "B2", filas[1].CodigoProveedor)
}

func TestLeerArchivo_CeldaAusenteQuedaVacia(t *testing.T) {
	// Fila corta: sin columna C → precio "".
	csv := "codigo,descripcion,precio\nA1,Martillo\n"
	filas, err := LeerArchivo([]byte(csv), plantillaBasica(true, 1))
	require.NoError(t, err)
	require.Len(t, filas, 1)
	assert.Equal(t, "", filas[0].Precio)
}

func TestLeerArchivo_CamposExtras(t *testing.T) {
	p := plantillaBasica(true, 1)
	p.MapeoColumnas["moneda"] = "D"
	csv := "codigo,descripcion,precio,moneda\nA1,Martillo,1500,ARS\n"
	filas, err := LeerArchivo([]byte(csv), p)
	require.NoError(t, err)
	require.Len(t, filas, 1)
	assert.Equal(t, "ARS", filas[0].Extras["moneda"])
}

func TestLeerArchivo_InicioMasAllaDelFinal(t *testing.T) {
	csv := "codigo,descripcion,precio\nA1,Martillo,1500\n"
	filas, err := LeerArchivo([]byte(csv), plantillaBasica(true, 50))
	require.NoError(t, err)
	assert.Empty(t, filas)
}

func TestLeerArchivo_MapeoConColumnaInvalida(t *testing.T) {
	p := plantillaBasica(true, 1)
	p.MapeoColumnas[model.CampoPrecio] = "3"
	_, err := LeerArchivo([]byte("codigo,descripcion,precio\nA1,M,1\n"), p)
	assert.ErrorIs(t, err, ErrArchivoInvalido)
}

// ── XLSX ──────────────────────────────────────────────────────────────────────

func TestLeerArchivo_XLSX(t *testing.T) {
	datos := xlsxConFilas(t, "Sheet1", [][]string{
		{"codigo", "descripcion", "precio"},
		{"A1", "Martillo", "1500.50"},
		{"B2", "Pinza", "900"},
	})
	filas, err := LeerArchivo(datos, plantillaBasica(true, 1))
	require.NoError(t, err)
	require.Len(t, filas, 2)
	assert.Equal(t, "Martillo", filas[0].Descripcion)
	assert.Equal(t, "900", filas[1].Precio)
}

func TestLeerArchivo_XLSXHojaPorNombre(t *testing.T) {
	datos := xlsxConFilas(t, "Precios", [][]string{
		{"codigo", "descripcion", "precio"},
		{"A1", "Martillo", "1500"},
	})
	p := plantillaBasica(true, 1)
	hoja := "precios" // case-insensitive
	p.NombreHoja = &hoja
	filas, err := LeerArchivo(datos, p)
	require.NoError(t, err)
	require.Len(t, filas, 1)
}

func TestLeerArchivo_XLSXHojaInexistente(t *testing.T) {
	datos := xlsxConFilas(t, "Sheet1", [][]string{{"codigo", "descripcion", "precio"}})
	p := plantillaBasica(true, 1)
	hoja := "NoExiste"
	p.NombreHoja = &hoja
	_, err := LeerArchivo(datos, p)
	assert.ErrorIs(t, err, ErrArchivoInvalido)
}

// ── Archivos invalidos ────────────────────────────────────────────────────────

func TestLeerArchivo_Vacio(t *testing.T) {
	_, err := LeerArchivo(nil, plantillaBasica(true, 1))
	assert.ErrorIs(t, err, ErrArchivoInvalido)
}

func TestLeerArchivo_ZIPCorrupto(t *testing.T) {
	datos := append([]byte{0x50, 0x4B, 0x03, 0x04}, []byte("esto no es un xlsx")...)
	_, err := LeerArchivo(datos, plantillaBasica(true, 1))
	assert.ErrorIs(t, err, ErrArchivoInvalido)
}
