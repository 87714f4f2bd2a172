package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/apierror"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/cierre"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/dto"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/infra"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/middleware"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/service"
)

const ultimoCambioCacheTTL = 12 * time.Hour

// CierresHandler serves the closing endpoints. The ultimo-cambio lookup is
// cached in Redis: it is hit on every closing screen load and its value only
// changes when a new closing is recorded.
type CierresHandler struct {
	svc service.CierreService
	rdb *redis.Client
}

func NewCierresHandler(svc service.CierreService, rdb *redis.Client) *CierresHandler {
	return &CierresHandler{svc: svc, rdb: rdb}
}

// Simular godoc
// @Summary Simula un cierre sin registrarlo
// @Tags cierres
// @Accept json
// @Produce json
// @Param body body dto.CierreRequest true "Datos del cierre"
// @Success 200 {object} dto.CierreResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cierres/simular [post]
func (h *CierresHandler) Simular(c *gin.Context) {
	var req dto.CierreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Simular(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusCierre(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Registra el cierre del dia
// @Tags cierres
// @Accept json
// @Produce json
// @Param body body dto.CierreRequest true "Datos del cierre"
// @Success 201 {object} dto.CierreResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/cierres [post]
func (h *CierresHandler) Cerrar(c *gin.Context) {
	var req dto.CierreRequest
	if !bindAndValidate(c, &req) {
		return
	}

	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return
	}

	resp, err := h.svc.Cerrar(c.Request.Context(), usuarioID, claims.Nombre, req)
	if err != nil {
		c.JSON(statusCierre(err), apierror.New(err.Error()))
		return
	}

	// The retained float for this caja changed — refresh the cache so the
	// next closing screen reads the new value.
	cambio := dto.UltimoCambioResponse{
		Caja:   resp.Caja,
		Cambio: resp.CambioManana,
		Fecha:  resp.Fecha,
	}
	if b, jsonErr := json.Marshal(cambio); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cambioCacheKey(resp.Caja), b, ultimoCambioCacheTTL).Err()
	}

	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Historial de cierres
// @Tags cierres
// @Produce json
// @Param caja query string false "Filtrar por caja"
// @Param page query int false "Pagina (default 1)"
// @Param limit query int false "Resultados por pagina (default 31)"
// @Success 200 {array} dto.CierreResumenResponse
// @Router /v1/cierres [get]
func (h *CierresHandler) Listar(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "31"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 31
	}

	resp, err := h.svc.Historial(c.Request.Context(), c.Query("caja"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar cierres"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary Detalle de un cierre
// @Tags cierres
// @Produce json
// @Param id path string true "ID del cierre"
// @Success 200 {object} dto.CierreResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cierres/{id} [get]
func (h *CierresHandler) Obtener(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reporte godoc
// @Summary Reporte estructurado de un cierre
// @Tags cierres
// @Produce json
// @Param id path string true "ID del cierre"
// @Success 200 {object} cierre.Documento
// @Failure 404 {object} apierror.APIError
// @Router /v1/cierres/{id}/reporte [get]
func (h *CierresHandler) Reporte(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.svc.Reporte(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, doc)
}

// PDF godoc
// @Summary Descarga el PDF de un cierre
// @Tags cierres
// @Produce application/pdf
// @Param id path string true "ID del cierre"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/cierres/{id}/pdf [get]
func (h *CierresHandler) PDF(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.PDFPath(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.FileAttachment(path, "cierre_"+id.String()+".pdf")
}

// UltimoCambio godoc
// @Summary Cambio retenido por el ultimo cierre de una caja
// @Tags cierres
// @Produce json
// @Param caja query string true "Nombre de la caja"
// @Success 200 {object} dto.UltimoCambioResponse
// @Router /v1/cierres/ultimo-cambio [get]
func (h *CierresHandler) UltimoCambio(c *gin.Context) {
	caja := c.Query("caja")
	if caja == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Parametro caja requerido"))
		return
	}
	ctx := c.Request.Context()

	if cached, err := h.rdb.Get(ctx, cambioCacheKey(caja)).Bytes(); err == nil {
		var resp dto.UltimoCambioResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	resp, err := h.svc.UltimoCambio(ctx, caja)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al consultar el cambio"))
		return
	}

	// best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cambioCacheKey(caja), b, ultimoCambioCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}

// ExportCSV godoc
// @Summary Exporta el historial de cierres como CSV
// @Tags cierres
// @Produce text/csv
// @Param caja query string false "Filtrar por caja"
// @Success 200 {file} binary
// @Router /v1/cierres/export.csv [get]
func (h *CierresHandler) ExportCSV(c *gin.Context) {
	cierres, err := h.svc.ListarParaExportar(c.Request.Context(), c.Query("caja"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al exportar cierres"))
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="cierres.csv"`)
	c.Status(http.StatusOK)
	if err := infra.WriteHistorialCSV(c.Writer, cierres); err != nil {
		// Headers are already out; nothing sane left to send.
		_ = c.Error(err)
	}
}

func cambioCacheKey(caja string) string { return "cierre:ultimo_cambio:" + caja }

// statusCierre maps service errors to HTTP: structural input errors are 422,
// the duplicate-closing conflict is 409, everything else 400.
func statusCierre(err error) int {
	switch {
	case cierre.EsErrorEstructural(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrCierreDuplicado):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
