package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/config"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/dto"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/model"
)

// ── In-memory CierreRepository ───────────────────────────────────────────────

type memCierreRepo struct {
	cierres map[uuid.UUID]*model.CierreDia
}

func newMemCierreRepo() *memCierreRepo {
	return &memCierreRepo{cierres: make(map[uuid.UUID]*model.CierreDia)}
}

func (r *memCierreRepo) Create(_ context.Context, c *model.CierreDia) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	for _, existing := range r.cierres {
		if existing.Fecha.Equal(c.Fecha) && existing.Caja == c.Caja {
			return errors.New("duplicate key")
		}
	}
	r.cierres[c.ID] = c
	return nil
}

func (r *memCierreRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CierreDia, error) {
	c, ok := r.cierres[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *memCierreRepo) FindByFechaCaja(_ context.Context, fecha time.Time, caja string) (*model.CierreDia, error) {
	for _, c := range r.cierres {
		if c.Fecha.Equal(fecha) && c.Caja == caja {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCierreRepo) FindUltimoPorCaja(_ context.Context, caja string) (*model.CierreDia, error) {
	var ultimo *model.CierreDia
	for _, c := range r.cierres {
		if c.Caja != caja {
			continue
		}
		if ultimo == nil || c.Fecha.After(ultimo.Fecha) {
			ultimo = c
		}
	}
	if ultimo == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return ultimo, nil
}

func (r *memCierreRepo) List(_ context.Context, caja string, page, limit int) ([]model.CierreDia, error) {
	var out []model.CierreDia
	for _, c := range r.cierres {
		if caja == "" || c.Caja == caja {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (r *memCierreRepo) SetPDFPath(_ context.Context, id uuid.UUID, path string) error {
	c, ok := r.cierres[id]
	if !ok {
		return errors.New("not found")
	}
	c.PDFPath = &path
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{
		CanalesDigitales: "mercado_pago,getnet,clover",
		DescuentoDias:    "monday,wednesday",
		ToleranciaCierre: "0.01",
		Denominaciones:   "20000,10000,2000,1000,500,200,100,50,20,10",
	}
}

func newTestService(t *testing.T, repo *memCierreRepo) CierreService {
	t.Helper()
	svc, err := NewCierreService(repo, nil, testConfig())
	require.NoError(t, err)
	return svc
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// requestViernes builds a balanced closing for a Friday (discounts inactive):
// balanza 100000, digital 30000, count 66000, floats 1000/1000, salida 5000.
func requestViernes() dto.CierreRequest {
	ayer := dec(1000)
	return dto.CierreRequest{
		Fecha:        "2026-02-06",
		Caja:         "Caja 1",
		Balanza:      dec(100000),
		Registradora: dec(30000),
		CambioAyer:   &ayer,
		CambioManana: dec(1000),
		Canales: map[string]decimal.Decimal{
			"mercado_pago": dec(20000),
			"getnet":       dec(10000),
			"clover":       decimal.Zero,
		},
		Conteo:  map[string]int{"20000": 3, "2000": 3},
		Monedas: decimal.Zero,
		Salidas: []dto.AjusteDetalladoRequest{
			{Descripcion: "Pago fletero", Monto: dec(5000)},
		},
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestSimularNoPersiste(t *testing.T) {
	repo := newMemCierreRepo()
	svc := newTestService(t, repo)

	resp, err := svc.Simular(context.Background(), requestViernes())
	require.NoError(t, err)

	assert.Empty(t, resp.ID)
	assert.Empty(t, repo.cierres, "la simulación no debe escribir en la base")

	// 66000 count − 1000 float = 65000 net; 30000 + 65000 + 5000 = 100000
	assert.True(t, resp.Resultado.Diferencia.IsZero(), "diferencia = %s", resp.Resultado.Diferencia)
	assert.Equal(t, "cuadrada", resp.Resultado.Estado)
	assert.Equal(t, "CAJA PERFECTA", resp.Resultado.EtiquetaEstado)
}

func TestCerrarPersisteYCalcula(t *testing.T) {
	repo := newMemCierreRepo()
	svc := newTestService(t, repo)

	resp, err := svc.Cerrar(context.Background(), uuid.New(), "Santiago", requestViernes())
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, "Santiago", resp.Cajero)

	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	registro := repo.cierres[id]
	require.NotNil(t, registro)

	assert.True(t, registro.TotalEfectivo.Equal(dec(66000)))
	assert.True(t, registro.EfectivoNeto.Equal(dec(65000)))
	assert.True(t, registro.TotalDigital.Equal(dec(30000)))
	assert.True(t, registro.ARetirar.Equal(dec(65000)))
	assert.Equal(t, "cuadrada", registro.Estado)
	assert.False(t, registro.DescuentosActivos, "2026-02-06 es viernes")

	assert.Len(t, registro.Canales, 3)
	assert.Len(t, registro.Conteo, 2)
	require.Len(t, registro.Ajustes, 1)
	assert.Equal(t, "salidas", registro.Ajustes[0].Categoria)
	assert.Equal(t, "Pago fletero", registro.Ajustes[0].Descripcion)
}

func TestCerrarRechazaDuplicado(t *testing.T) {
	repo := newMemCierreRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Cerrar(ctx, uuid.New(), "Santiago", requestViernes())
	require.NoError(t, err)

	_, err = svc.Cerrar(ctx, uuid.New(), "Santiago", requestViernes())
	require.ErrorIs(t, err, ErrCierreDuplicado)
	assert.Len(t, repo.cierres, 1)
}

func TestCerrarResuelveCambioAyerDelCierreAnterior(t *testing.T) {
	repo := newMemCierreRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	primero := requestViernes()
	primero.CambioManana = dec(2000)
	_, err := svc.Cerrar(ctx, uuid.New(), "Santiago", primero)
	require.NoError(t, err)

	// Next day's request omits cambio_ayer: the service must pick up the
	// 2000 retained by the previous closing.
	segundo := requestViernes()
	segundo.Fecha = "2026-02-07"
	segundo.CambioAyer = nil
	resp, err := svc.Cerrar(ctx, uuid.New(), "Santiago", segundo)
	require.NoError(t, err)

	assert.True(t, resp.CambioAyer.Equal(dec(2000)), "cambio_ayer = %s", resp.CambioAyer)
	// Net cash dropped by 1000 against the same justification → faltante
	assert.Equal(t, "faltante", resp.Resultado.Estado)
	assert.True(t, resp.Resultado.Diferencia.Equal(dec(1000)))
}

func TestCerrarCambioAyerCajaNuevaEsCero(t *testing.T) {
	repo := newMemCierreRepo()
	svc := newTestService(t, repo)

	req := requestViernes()
	req.CambioAyer = nil
	resp, err := svc.Cerrar(context.Background(), uuid.New(), "Santiago", req)
	require.NoError(t, err)

	assert.True(t, resp.CambioAyer.IsZero())
	// Without the float deduction there is 1000 extra against the balanza
	assert.Equal(t, "sobrante", resp.Resultado.Estado)
}

// fallaUltimoRepo simulates an infrastructure failure on the carry-over query.
type fallaUltimoRepo struct {
	*memCierreRepo
}

func (r *fallaUltimoRepo) FindUltimoPorCaja(context.Context, string) (*model.CierreDia, error) {
	return nil, errors.New("driver: bad connection")
}

func TestCerrarNoAsumeCambioAyerSiElRepoFalla(t *testing.T) {
	repo := &fallaUltimoRepo{newMemCierreRepo()}
	svc, err := NewCierreService(repo, nil, testConfig())
	require.NoError(t, err)
	ctx := context.Background()

	// Omitted cambio_ayer cannot be resolved, the closing must not persist
	// with a guessed zero float.
	req := requestViernes()
	req.CambioAyer = nil
	_, err = svc.Cerrar(ctx, uuid.New(), "Santiago", req)
	require.Error(t, err)
	assert.NotErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, repo.cierres)

	// An explicit cambio_ayer never consults the chain, so it still closes.
	_, err = svc.Cerrar(ctx, uuid.New(), "Santiago", requestViernes())
	require.NoError(t, err)

	_, err = svc.UltimoCambio(ctx, "Caja Principal")
	require.Error(t, err)
}

func TestCerrarCanalDesconocido(t *testing.T) {
	repo := newMemCierreRepo()
	svc := newTestService(t, repo)

	req := requestViernes()
	req.Canales["tarjeta_naranja"] = dec(500)
	_, err := svc.Cerrar(context.Background(), uuid.New(), "Santiago", req)
	require.Error(t, err)
	assert.Empty(t, repo.cierres)
}

func TestObtenerReconstruyeResultado(t *testing.T) {
	repo := newMemCierreRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	creado, err := svc.Cerrar(ctx, uuid.New(), "Santiago", requestViernes())
	require.NoError(t, err)

	id, _ := uuid.Parse(creado.ID)
	leido, err := svc.Obtener(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, creado.Fecha, leido.Fecha)
	assert.Equal(t, creado.Caja, leido.Caja)
	assert.True(t, creado.Resultado.TotalJustificado.Equal(leido.Resultado.TotalJustificado))
	assert.True(t, creado.Resultado.Diferencia.Equal(leido.Resultado.Diferencia))
	assert.Equal(t, creado.Resultado.Estado, leido.Resultado.Estado)
}

func TestReporteDeUnCierreGuardado(t *testing.T) {
	repo := newMemCierreRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	creado, err := svc.Cerrar(ctx, uuid.New(), "Santiago", requestViernes())
	require.NoError(t, err)

	id, _ := uuid.Parse(creado.ID)
	doc, err := svc.Reporte(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "06/02/2026", doc.Fecha)
	assert.Equal(t, "Caja 1", doc.Caja)
	require.NotEmpty(t, doc.Secciones)
	assert.Equal(t, "Pagos Digitales", doc.Secciones[0].Titulo)
	assert.Equal(t, "Resultado del Cierre", doc.Secciones[len(doc.Secciones)-1].Titulo)
}

func TestUltimoCambio(t *testing.T) {
	repo := newMemCierreRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	// Register without history → zero, no date
	resp, err := svc.UltimoCambio(ctx, "Caja 9")
	require.NoError(t, err)
	assert.True(t, resp.Cambio.IsZero())
	assert.Empty(t, resp.Fecha)

	req := requestViernes()
	req.CambioManana = dec(3000)
	_, err = svc.Cerrar(ctx, uuid.New(), "Santiago", req)
	require.NoError(t, err)

	resp, err = svc.UltimoCambio(ctx, "Caja 1")
	require.NoError(t, err)
	assert.True(t, resp.Cambio.Equal(dec(3000)))
	assert.Equal(t, "2026-02-06", resp.Fecha)
}

func TestHistorialFiltraPorCaja(t *testing.T) {
	repo := newMemCierreRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Cerrar(ctx, uuid.New(), "Santiago", requestViernes())
	require.NoError(t, err)

	otra := requestViernes()
	otra.Caja = "Caja 2"
	_, err = svc.Cerrar(ctx, uuid.New(), "Marina", otra)
	require.NoError(t, err)

	todos, err := svc.Historial(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	soloUna, err := svc.Historial(ctx, "Caja 2", 1, 10)
	require.NoError(t, err)
	require.Len(t, soloUna, 1)
	assert.Equal(t, "Marina", soloUna[0].Cajero)
}

func TestDescuentosActivosSegunDia(t *testing.T) {
	repo := newMemCierreRepo()
	svc := newTestService(t, repo)

	// 2026-02-04 is a Wednesday: the discount ledger counts as justified.
	req := requestViernes()
	req.Fecha = "2026-02-04"
	req.Balanza = dec(101500)
	req.Descuentos = []dto.AjusteSimpleRequest{{Monto: dec(1500)}}

	resp, err := svc.Simular(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "cuadrada", resp.Resultado.Estado)

	// Same figures on a Friday: discounts ignored → 1500 short.
	req.Fecha = "2026-02-06"
	resp, err = svc.Simular(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "faltante", resp.Resultado.Estado)
	assert.True(t, resp.Resultado.Diferencia.Equal(dec(1500)))
}

func TestConfiguracionInvalida(t *testing.T) {
	cfg := testConfig()
	cfg.Denominaciones = "1000,abc"
	_, err := NewCierreService(newMemCierreRepo(), nil, cfg)
	require.Error(t, err)

	cfg = testConfig()
	cfg.DescuentoDias = "someday"
	_, err = NewCierreService(newMemCierreRepo(), nil, cfg)
	require.Error(t, err)

	cfg = testConfig()
	cfg.ToleranciaCierre = "-1"
	_, err = NewCierreService(newMemCierreRepo(), nil, cfg)
	require.Error(t, err)

	cfg = testConfig()
	cfg.CanalesDigitales = ""
	_, err = NewCierreService(newMemCierreRepo(), nil, cfg)
	require.Error(t, err)
}
