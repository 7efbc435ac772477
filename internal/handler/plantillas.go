package handler

import (
	"net/http"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/apierror"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/dto"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PlantillasHandler struct{ svc service.PlantillaService }

func NewPlantillasHandler(svc service.PlantillaService) *PlantillasHandler {
	return &PlantillasHandler{svc: svc}
}

func (h *PlantillasHandler) Crear(c *gin.Context) {
	var req dto.CrearPlantillaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PlantillasHandler) ObtenerPorID(c *gin.Context) {
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

// Listar serves GET /v1/plantillas-importacion?proveedor_id=.
func (h *PlantillasHandler) Listar(c *gin.Context) {
	proveedorID, err := uuid.Parse(c.Query("proveedor_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("proveedor_id invalido"))
		return
	}
	resp, err := h.svc.ListarPorProveedor(c.Request.Context(), proveedorID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPorProveedor serves GET /v1/proveedores/:id/plantillas-importacion.
func (h *PlantillasHandler) ListarPorProveedor(c *gin.Context) {
	proveedorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorProveedor(c.Request.Context(), proveedorID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlantillasHandler) Actualizar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarPlantillaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlantillasHandler) Eliminar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
