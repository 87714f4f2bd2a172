package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/apierror"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/dto"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/service"
)

type ProveedoresHandler struct{ svc service.ProveedorService }

func NewProveedoresHandler(svc service.ProveedorService) *ProveedoresHandler {
	return &ProveedoresHandler{svc: svc}
}

// Crear godoc
// @Summary Alta de proveedor
// @Tags proveedores
// @Accept json
// @Produce json
// @Param body body dto.CrearProveedorRequest true "Datos del proveedor"
// @Success 201 {object} dto.ProveedorResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/proveedores [post]
func (h *ProveedoresHandler) Crear(c *gin.Context) {
	var req dto.CrearProveedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProveedoresHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar proveedores"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProveedoresHandler) Obtener(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProveedoresHandler) Actualizar(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CrearProveedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProveedoresHandler) Eliminar(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
