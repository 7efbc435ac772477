package service

import "errors"

// Sentinel errors shared by all services. Handlers translate them to HTTP
// status codes with errors.Is, so services can wrap them with context via
// fmt.Errorf("...: %w", Err...).
var (
	// ErrNoEncontrado — the referenced proveedor/plantilla/producto/log does not exist.
	ErrNoEncontrado = errors.New("no encontrado")
	// ErrValidacion — business-rule validation beyond struct tags failed.
	ErrValidacion = errors.New("validacion fallida")
	// ErrEstadoInvalido — terminal transition attempted on an already
	// applied/cancelled price update.
	ErrEstadoInvalido = errors.New("la actualizacion ya fue resuelta")
	// ErrConflicto — unique constraint style conflicts (duplicate CUIT, barcode).
	ErrConflicto = errors.New("conflicto con un registro existente")
)
