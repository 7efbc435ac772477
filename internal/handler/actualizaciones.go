package handler

import (
	"io"
	"net/http"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/apierror"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/dto"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ActualizacionesHandler struct {
	svc service.ActualizacionPrecioService
	// maxUploadBytes caps price-list uploads on the multipart endpoint.
	maxUploadBytes int64
}

func NewActualizacionesHandler(svc service.ActualizacionPrecioService, maxUploadMB int) *ActualizacionesHandler {
	return &ActualizacionesHandler{
		svc:            svc,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// Analizar receives rows already parsed by the client.
func (h *ActualizacionesHandler) Analizar(c *gin.Context) {
	var req dto.AnalizarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Analizar(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AnalizarArchivo receives the raw file as multipart/form-data and parses it
// server-side with the supplier's plantilla.
// Form fields: archivo (file), proveedor_id, plantilla_id.
func (h *ActualizacionesHandler) AnalizarArchivo(c *gin.Context) {
	proveedorID, err := uuid.Parse(c.PostForm("proveedor_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("proveedor_id invalido"))
		return
	}
	plantillaID, err := uuid.Parse(c.PostForm("plantilla_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("plantilla_id invalido"))
		return
	}

	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("archivo requerido"))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("Archivo demasiado grande"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo"))
		return
	}
	defer f.Close()
	datos, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo"))
		return
	}
	if int64(len(datos)) > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("Archivo demasiado grande"))
		return
	}

	resp, err := h.svc.AnalizarArchivo(c.Request.Context(), proveedorID, plantillaID, fileHeader.Filename, datos)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ActualizacionesHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ActualizacionesHandler) Listar(c *gin.Context) {
	var filter dto.ActualizacionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar actualizaciones"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ActualizacionesHandler) Aplicar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Aplicar(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ActualizacionesHandler) Cancelar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Cancelar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id.String(), "estado": "cancelada"})
}
