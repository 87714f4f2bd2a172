package cierre

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestLibro_EsquemaPorCategoria(t *testing.T) {
	salidas := NuevoLibro(CategoriaSalidas)
	require.NoError(t, salidas.Agregar(EntradaDetallada{Descripcion: "compra hielo", Monto: d(1500)}))
	assert.ErrorIs(t, salidas.Agregar(EntradaSimple{Monto: d(100)}), ErrEsquemaEntrada)
	assert.ErrorIs(t, salidas.Agregar(PagoProveedor{Proveedor: "x", Metodo: MetodoEfectivo, Monto: d(100)}), ErrEsquemaEntrada)

	transferencias := NuevoLibro(CategoriaTransferencias)
	require.NoError(t, transferencias.Agregar(EntradaSimple{Monto: d(100)}))
	assert.ErrorIs(t, transferencias.Agregar(EntradaDetallada{Descripcion: "no", Monto: d(100)}), ErrEsquemaEntrada)

	proveedores := NuevoLibro(CategoriaProveedores)
	require.NoError(t, proveedores.Agregar(PagoProveedor{Proveedor: "Almacén Norte", Metodo: MetodoOtro, Monto: d(100)}))
	assert.ErrorIs(t, proveedores.Agregar(EntradaSimple{Monto: d(100)}), ErrEsquemaEntrada)
}

func TestLibro_TotalIgnoraNoPositivas(t *testing.T) {
	l := NuevoLibro(CategoriaVales)
	require.NoError(t, l.Agregar(EntradaDetallada{Descripcion: "vale Juan", Monto: d(2000)}))
	require.NoError(t, l.Agregar(EntradaDetallada{Descripcion: "fila vacía", Monto: decimal.Zero}))
	require.NoError(t, l.Agregar(EntradaDetallada{Descripcion: "corregida", Monto: d(-500)}))
	require.NoError(t, l.Agregar(EntradaDetallada{Descripcion: "vale Ana", Monto: d(3000)}))

	assert.True(t, l.Total().Equal(d(5000)))
	assert.Len(t, l.Entradas(), 4, "drafts stay in the table")
	assert.Len(t, l.Incluidas(), 2)

	// adding more non-positive rows never changes the total
	require.NoError(t, l.Agregar(EntradaDetallada{Monto: decimal.Zero}))
	assert.True(t, l.Total().Equal(d(5000)))
}

func TestLibro_OrdenDeInsercion(t *testing.T) {
	l := NuevoLibro(CategoriaSalidas)
	for _, desc := range []string{"primera", "segunda", "tercera"} {
		require.NoError(t, l.Agregar(EntradaDetallada{Descripcion: desc, Monto: d(10)}))
	}
	incluidas := l.Incluidas()
	require.Len(t, incluidas, 3)
	assert.Equal(t, "primera", incluidas[0].Etiqueta())
	assert.Equal(t, "segunda", incluidas[1].Etiqueta())
	assert.Equal(t, "tercera", incluidas[2].Etiqueta())
}

func TestLibro_ActualizarYQuitar(t *testing.T) {
	l := NuevoLibro(CategoriaSalidas)
	require.NoError(t, l.Agregar(EntradaDetallada{Descripcion: "a", Monto: d(10)}))
	require.NoError(t, l.Agregar(EntradaDetallada{Descripcion: "b", Monto: d(20)}))

	require.NoError(t, l.Actualizar(0, EntradaDetallada{Descripcion: "a2", Monto: d(15)}))
	assert.True(t, l.Total().Equal(d(35)))
	assert.ErrorIs(t, l.Actualizar(5, EntradaDetallada{Monto: d(1)}), ErrIndiceEntrada)
	assert.ErrorIs(t, l.Actualizar(0, EntradaSimple{Monto: d(1)}), ErrEsquemaEntrada)

	require.NoError(t, l.Quitar(0))
	assert.True(t, l.Total().Equal(d(20)))
	assert.ErrorIs(t, l.Quitar(7), ErrIndiceEntrada)
}

func TestLibro_TotalProveedoresEfectivo(t *testing.T) {
	l := NuevoLibro(CategoriaProveedores)
	require.NoError(t, l.Agregar(PagoProveedor{Proveedor: "Frutas SA", Metodo: MetodoEfectivo, Monto: d(5000)}))
	require.NoError(t, l.Agregar(PagoProveedor{Proveedor: "Lácteos SRL", Metodo: MetodoOtro, Factura: "A-0042", Monto: d(8000)}))

	assert.True(t, l.Total().Equal(d(13000)))
	assert.True(t, l.TotalProveedoresEfectivo().Equal(d(5000)))

	// on any other category the helper is always zero
	otro := NuevoLibro(CategoriaSalidas)
	assert.True(t, otro.TotalProveedoresEfectivo().IsZero())
}

func TestPagoProveedor_Etiqueta(t *testing.T) {
	con := PagoProveedor{Proveedor: "Almacén Norte", Metodo: MetodoEfectivo, Factura: "A-0001", Monto: d(1)}
	assert.Equal(t, "Almacén Norte (efectivo) Fact. A-0001", con.Etiqueta())

	sin := PagoProveedor{Proveedor: "Almacén Norte", Metodo: MetodoOtro, Monto: d(1)}
	assert.Equal(t, "Almacén Norte (otro)", sin.Etiqueta())
}
