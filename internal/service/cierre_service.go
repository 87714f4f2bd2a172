package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/cierre"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/config"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/dto"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/model"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/repository"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/worker"
)

// ErrCierreDuplicado marks an attempt to close a (fecha, caja) pair twice.
var ErrCierreDuplicado = errors.New("ya existe un cierre para esa fecha y caja")

type CierreService interface {
	// Simular computes a closing without persisting anything — the operator
	// can iterate on the numbers before committing.
	Simular(ctx context.Context, req dto.CierreRequest) (*dto.CierreResponse, error)
	// Cerrar computes, persists, and queues the report pipeline.
	Cerrar(ctx context.Context, usuarioID uuid.UUID, cajero string, req dto.CierreRequest) (*dto.CierreResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.CierreResponse, error)
	Reporte(ctx context.Context, id uuid.UUID) (*cierre.Documento, error)
	PDFPath(ctx context.Context, id uuid.UUID) (string, error)
	Historial(ctx context.Context, caja string, page, limit int) ([]dto.CierreResumenResponse, error)
	ListarParaExportar(ctx context.Context, caja string) ([]model.CierreDia, error)
	// UltimoCambio resolves the carry-over contract: yesterday's retained
	// float for a caja, zero when there is no prior closing.
	UltimoCambio(ctx context.Context, caja string) (*dto.UltimoCambioResponse, error)
}

type cierreService struct {
	repo       repository.CierreRepository
	dispatcher *worker.Dispatcher

	motor   *cierre.Motor
	canales []string
	tabla   cierre.TablaDenominaciones
	regla   cierre.ReglaActivacion
}

// NewCierreService parses the closing configuration once; a bad channel
// list, denomination table, or weekday set fails startup instead of a
// closing at 22:00.
func NewCierreService(repo repository.CierreRepository, dispatcher *worker.Dispatcher, cfg *config.Config) (CierreService, error) {
	tabla, err := cierre.NuevaTablaDenominaciones(cfg.ListaDenominaciones())
	if err != nil {
		return nil, fmt.Errorf("DENOMINACIONES: %w", err)
	}
	regla, err := cierre.NuevaReglaActivacion(cfg.ListaDescuentoDias())
	if err != nil {
		return nil, fmt.Errorf("DESCUENTO_DIAS: %w", err)
	}
	tolerancia, err := decimal.NewFromString(cfg.ToleranciaCierre)
	if err != nil || tolerancia.IsNegative() {
		return nil, fmt.Errorf("TOLERANCIA_CIERRE %q inválida", cfg.ToleranciaCierre)
	}
	canales := cfg.ListaCanales()
	if len(canales) == 0 {
		return nil, errors.New("CANALES_DIGITALES vacío")
	}

	motor := cierre.NuevoMotor()
	motor.Tolerancia = tolerancia

	return &cierreService{
		repo:       repo,
		dispatcher: dispatcher,
		motor:      motor,
		canales:    canales,
		tabla:      tabla,
		regla:      regla,
	}, nil
}

// ── Simular ───────────────────────────────────────────────────────────────────

func (s *cierreService) Simular(ctx context.Context, req dto.CierreRequest) (*dto.CierreResponse, error) {
	estado, err := s.armarEstado(ctx, "", req)
	if err != nil {
		return nil, err
	}
	resultado, err := s.motor.Calcular(estado)
	if err != nil {
		return nil, err
	}
	return construirRespuesta("", estado, resultado), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// One closing per (fecha, caja); the record is immutable once created.

func (s *cierreService) Cerrar(ctx context.Context, usuarioID uuid.UUID, cajero string, req dto.CierreRequest) (*dto.CierreResponse, error) {
	estado, err := s.armarEstado(ctx, cajero, req)
	if err != nil {
		return nil, err
	}

	// Guard: no duplicate closing for the same date and register
	if existente, err := s.repo.FindByFechaCaja(ctx, estado.Fecha, estado.Caja); err == nil && existente != nil && existente.ID != uuid.Nil {
		return nil, ErrCierreDuplicado
	}

	resultado, err := s.motor.Calcular(estado)
	if err != nil {
		return nil, err
	}

	registro := aplanarCierre(usuarioID, estado, resultado)
	if err := s.repo.Create(ctx, registro); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		payload := worker.ReporteJobPayload{CierreID: registro.ID.String()}
		if err := s.dispatcher.EnqueueReporte(ctx, payload); err != nil {
			// The closing is already recorded; the PDF can be regenerated
			// from the reporte endpoint, so only log.
			log.Error().Err(err).Str("cierre_id", registro.ID.String()).Msg("failed to enqueue reporte job")
		}
	}

	log.Info().
		Str("cierre_id", registro.ID.String()).
		Str("caja", estado.Caja).
		Str("estado", string(resultado.Estado)).
		Str("diferencia", resultado.Diferencia.StringFixed(2)).
		Msg("cierre registrado")

	return construirRespuesta(registro.ID.String(), estado, resultado), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cierreService) Obtener(ctx context.Context, id uuid.UUID) (*dto.CierreResponse, error) {
	registro, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cierre no encontrado")
	}
	estado, resultado, err := registro.Reconstruir()
	if err != nil {
		return nil, err
	}
	return construirRespuesta(registro.ID.String(), estado, resultado), nil
}

func (s *cierreService) Reporte(ctx context.Context, id uuid.UUID) (*cierre.Documento, error) {
	registro, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cierre no encontrado")
	}
	estado, resultado, err := registro.Reconstruir()
	if err != nil {
		return nil, err
	}
	return cierre.ArmarReporte(estado, resultado), nil
}

func (s *cierreService) PDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	registro, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", errors.New("cierre no encontrado")
	}
	if registro.PDFPath == nil || *registro.PDFPath == "" {
		return "", errors.New("el PDF del cierre aún no fue generado")
	}
	return *registro.PDFPath, nil
}

func (s *cierreService) Historial(ctx context.Context, caja string, page, limit int) ([]dto.CierreResumenResponse, error) {
	cierres, err := s.repo.List(ctx, caja, page, limit)
	if err != nil {
		return nil, err
	}
	resumen := make([]dto.CierreResumenResponse, len(cierres))
	for i, c := range cierres {
		resumen[i] = dto.CierreResumenResponse{
			ID:         c.ID.String(),
			Fecha:      c.Fecha.Format("2006-01-02"),
			Caja:       c.Caja,
			Cajero:     c.Cajero,
			Balanza:    c.Balanza,
			Diferencia: c.Diferencia,
			Estado:     c.Estado,
		}
	}
	return resumen, nil
}

func (s *cierreService) ListarParaExportar(ctx context.Context, caja string) ([]model.CierreDia, error) {
	// Export is bounded: a year of daily closings per register is ~365 rows.
	return s.repo.List(ctx, caja, 1, 1000)
}

func (s *cierreService) UltimoCambio(ctx context.Context, caja string) (*dto.UltimoCambioResponse, error) {
	ultimo, err := s.repo.FindUltimoPorCaja(ctx, caja)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No prior closing — a brand new register starts with zero float.
		return &dto.UltimoCambioResponse{Caja: caja, Cambio: decimal.Zero}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consultando último cierre de %s: %w", caja, err)
	}
	return &dto.UltimoCambioResponse{
		Caja:   caja,
		Cambio: ultimo.CambioManana,
		Fecha:  ultimo.Fecha.Format("2006-01-02"),
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// armarEstado turns the request into the engine's EstadoDia, resolving the
// carry-over float when the request omits it.
func (s *cierreService) armarEstado(ctx context.Context, cajero string, req dto.CierreRequest) (*cierre.EstadoDia, error) {
	fecha, err := time.Parse("2006-01-02", req.Fecha)
	if err != nil {
		return nil, fmt.Errorf("fecha inválida: %w", err)
	}

	cambioAyer := decimal.Zero
	if req.CambioAyer != nil {
		cambioAyer = *req.CambioAyer
	} else {
		ultimo, err := s.repo.FindUltimoPorCaja(ctx, req.Caja)
		switch {
		case err == nil:
			cambioAyer = ultimo.CambioManana
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First closing of this register, the chain starts at zero.
		default:
			// Never guess the float on an infrastructure failure: a wrong
			// cambio_ayer would persist a spurious faltante/sobrante.
			return nil, fmt.Errorf("resolviendo cambio de ayer de %s: %w", req.Caja, err)
		}
	}

	canales := cierre.NuevosCanales(s.canales)
	for nombre, monto := range req.Canales {
		if err := canales.Fijar(nombre, monto); err != nil {
			return nil, err
		}
	}

	estado := &cierre.EstadoDia{
		Fecha:             fecha,
		Caja:              req.Caja,
		Cajero:            cajero,
		Balanza:           req.Balanza,
		Registradora:      req.Registradora,
		CambioAyer:        cambioAyer,
		CambioManana:      req.CambioManana,
		Canales:           canales,
		Denominaciones:    s.tabla,
		Conteo:            cierre.Conteo{Cantidades: req.Conteo, Monedas: req.Monedas},
		DescuentosActivos: s.regla.ActivaEn(fecha),
	}

	for _, a := range req.Salidas {
		if err := estado.Libro(cierre.CategoriaSalidas).Agregar(cierre.EntradaDetallada{Descripcion: a.Descripcion, Monto: a.Monto}); err != nil {
			return nil, err
		}
	}
	for _, a := range req.Vales {
		if err := estado.Libro(cierre.CategoriaVales).Agregar(cierre.EntradaDetallada{Descripcion: a.Descripcion, Monto: a.Monto}); err != nil {
			return nil, err
		}
	}
	for _, a := range req.Transferencias {
		if err := estado.Libro(cierre.CategoriaTransferencias).Agregar(cierre.EntradaSimple{Monto: a.Monto}); err != nil {
			return nil, err
		}
	}
	for _, a := range req.Errores {
		if err := estado.Libro(cierre.CategoriaErrores).Agregar(cierre.EntradaSimple{Monto: a.Monto}); err != nil {
			return nil, err
		}
	}
	for _, a := range req.Descuentos {
		if err := estado.Libro(cierre.CategoriaDescuentos).Agregar(cierre.EntradaSimple{Monto: a.Monto}); err != nil {
			return nil, err
		}
	}
	for _, p := range req.Proveedores {
		if err := estado.Libro(cierre.CategoriaProveedores).Agregar(cierre.PagoProveedor{
			Proveedor: p.Proveedor,
			Metodo:    cierre.MetodoPago(p.Metodo),
			Factura:   p.Factura,
			Monto:     p.Monto,
		}); err != nil {
			return nil, err
		}
	}

	return estado, nil
}

// aplanarCierre flattens the computed closing into the persistence record.
func aplanarCierre(usuarioID uuid.UUID, e *cierre.EstadoDia, r *cierre.Resultado) *model.CierreDia {
	advertencias := ""
	for i, a := range r.Advertencias {
		if i > 0 {
			advertencias += ","
		}
		advertencias += string(a)
	}

	registro := &model.CierreDia{
		Fecha:             e.Fecha,
		Caja:              e.Caja,
		UsuarioID:         usuarioID,
		Cajero:            e.Cajero,
		Balanza:           e.Balanza,
		Registradora:      e.Registradora,
		CambioAyer:        e.CambioAyer,
		CambioManana:      e.CambioManana,
		Monedas:           e.Conteo.Monedas,
		TotalEfectivo:     r.TotalEfectivo,
		EfectivoNeto:      r.EfectivoNeto,
		TotalDigital:      r.TotalDigital,
		TotalJustificado:  r.TotalJustificado,
		Diferencia:        r.Diferencia,
		ARetirar:          r.ARetirar,
		DifRegistradora:   r.DifRegistradora,
		Estado:            string(r.Estado),
		Advertencias:      advertencias,
		DescuentosActivos: e.DescuentosActivos,
	}

	for i, nombre := range e.Canales.Nombres() {
		registro.Canales = append(registro.Canales, model.CanalCierre{
			Posicion: i,
			Nombre:   nombre,
			Monto:    e.Canales.Monto(nombre),
		})
	}
	for denominacion, cantidad := range e.Conteo.Cantidades {
		registro.Conteo = append(registro.Conteo, model.ConteoBillete{
			Denominacion: denominacion,
			Cantidad:     cantidad,
		})
	}
	for _, cat := range cierre.Categorias {
		libro, ok := e.Libros[cat]
		if !ok {
			continue
		}
		for pos, entrada := range libro.Entradas() {
			ajuste := model.AjusteCierre{
				Categoria: string(cat),
				Posicion:  pos,
				Monto:     entrada.Importe(),
			}
			switch v := entrada.(type) {
			case cierre.EntradaDetallada:
				ajuste.Descripcion = v.Descripcion
			case cierre.PagoProveedor:
				ajuste.Proveedor = v.Proveedor
				ajuste.MetodoPago = string(v.Metodo)
				ajuste.Factura = v.Factura
			}
			registro.Ajustes = append(registro.Ajustes, ajuste)
		}
	}
	return registro
}

func construirRespuesta(id string, e *cierre.EstadoDia, r *cierre.Resultado) *dto.CierreResponse {
	advertencias := make([]string, len(r.Advertencias))
	for i, a := range r.Advertencias {
		advertencias[i] = string(a)
	}
	return &dto.CierreResponse{
		ID:           id,
		Fecha:        e.Fecha.Format("2006-01-02"),
		Caja:         e.Caja,
		Cajero:       e.Cajero,
		CambioAyer:   e.CambioAyer,
		CambioManana: e.CambioManana,
		Resultado: dto.ResultadoCierreResponse{
			TotalEfectivo:    r.TotalEfectivo,
			EfectivoNeto:     r.EfectivoNeto,
			TotalDigital:     r.TotalDigital,
			TotalJustificado: r.TotalJustificado,
			Diferencia:       r.Diferencia,
			ARetirar:         r.ARetirar,
			DifRegistradora:  r.DifRegistradora,
			Estado:           string(r.Estado),
			EtiquetaEstado:   cierre.EtiquetaEstado(r.Estado, r.Diferencia),
			Advertencias:     advertencias,
		},
	}
}
