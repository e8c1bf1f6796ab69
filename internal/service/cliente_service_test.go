package service

import (
	"context"
	"testing"
	"time"

	"fleamarket/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numeros returns a generator that yields the given numbers in order, then repeats the last.
func numeros(ns ...string) func() string {
	i := 0
	return func() string {
		n := ns[i]
		if i < len(ns)-1 {
			i++
		}
		return n
	}
}

func clienteSvcCon(f *fixture, gen func() string) ClienteService {
	svc := NewClienteService(f.clientes, f.compras, f.apartados).(*clienteService)
	svc.numero = gen
	return svc
}

func TestCrearCliente_NumeroLibre(t *testing.T) {
	f := newFixture(t)
	f.cliente("Existente", 0) // takes 10000
	svc := clienteSvcCon(f, numeros("10000", "55555"))

	resp, err := svc.Crear(context.Background(), f.vendedor, dto.ClienteRequest{Nombre: "  Rosa Medina ", Email: "Rosa@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "55555", resp.Numero)
	assert.Equal(t, "Rosa Medina", resp.Nombre)
	assert.Equal(t, "rosa@example.com", resp.Email)
	assert.False(t, resp.EsVIP)

	stored := f.clientes.clientes[uuid.MustParse(resp.ID)]
	assert.Equal(t, f.vendedor.UsuarioID, *stored.RegistradoPor)
	assert.Equal(t, f.tienda.ID, *stored.TiendaRegistroID)
}

func TestCrearCliente_ReintentaTrasDuplicado(t *testing.T) {
	f := newFixture(t)
	f.clientes.duplicados["22222"] = true
	svc := clienteSvcCon(f, numeros("22222", "33333"))

	resp, err := svc.Crear(context.Background(), f.admin, dto.ClienteRequest{Nombre: "Rosa"})
	require.NoError(t, err)
	assert.Equal(t, "33333", resp.Numero)
}

func TestCrearCliente_SinNumeroDisponible(t *testing.T) {
	f := newFixture(t)
	f.cliente("Existente", 0)
	svc := clienteSvcCon(f, numeros("10000"))

	_, err := svc.Crear(context.Background(), f.admin, dto.ClienteRequest{Nombre: "Rosa"})
	assert.ErrorIs(t, err, ErrNumeroNoDisponible)
}

func TestNumeroAleatorio_CincoDigitos(t *testing.T) {
	for i := 0; i < 200; i++ {
		n := numeroAleatorio()
		require.Len(t, n, 5)
		assert.NotEqual(t, '0', rune(n[0]))
	}
}

func TestVistaPublica(t *testing.T) {
	f := newFixture(t)
	c := f.cliente("Rosa Medina", 1500)
	crearApartado(t, f, c, f.producto("Mesa", "hogar", 800, 1), "80")

	resp, err := f.clienteSv.VistaPublica(context.Background(), c.Numero)
	require.NoError(t, err)
	assert.Equal(t, "Rosa Medina", resp.Nombre)
	assert.Equal(t, "1500", resp.ComprasMes.String())
	assert.False(t, resp.EsVIP)
	assert.Equal(t, "500", resp.FaltanParaVIP.String())
	require.Len(t, resp.Apartados, 1)
	assert.Equal(t, "720", resp.Apartados[0].SaldoPendiente.String())

	_, err = f.clienteSv.VistaPublica(context.Background(), "99999")
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestVistaPublica_VIPNoDebeNada(t *testing.T) {
	f := newFixture(t)
	c := f.cliente("Rosa Medina", 2600)

	resp, err := f.clienteSv.VistaPublica(context.Background(), c.Numero)
	require.NoError(t, err)
	assert.True(t, resp.EsVIP)
	assert.True(t, resp.FaltanParaVIP.IsZero())
	assert.Empty(t, resp.Apartados)
}

func TestComprasMensuales_SoloMesEnCurso(t *testing.T) {
	f := newFixture(t)
	c := f.cliente("Rosa Medina", 0)
	inicioMes := time.Date(2026, 3, 1, 0, 0, 0, 0, tiendaLoc)
	for _, at := range []time.Time{inicioMes.Add(-time.Second), inicioMes, f.now} {
		f.clientes.compras = append(f.clientes.compras, compra(c.ID, f.tienda.ID, "100", at))
	}

	total, err := f.compras.Total(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "200", total.String())
}

// memCache is a ComprasCache backed by a map, to check hits and invalidation.
type memCache struct {
	valores map[string]decimal.Decimal
	gets    int
}

func (m *memCache) Get(_ context.Context, id uuid.UUID, mes string) (decimal.Decimal, bool, error) {
	m.gets++
	v, ok := m.valores[id.String()+mes]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, id uuid.UUID, mes string, v decimal.Decimal, _ time.Duration) error {
	m.valores[id.String()+mes] = v
	return nil
}

func (m *memCache) Invalidate(_ context.Context, id uuid.UUID) error {
	for k := range m.valores {
		if len(k) >= 36 && k[:36] == id.String() {
			delete(m.valores, k)
		}
	}
	return nil
}

func TestComprasMensuales_Cache(t *testing.T) {
	f := newFixture(t)
	c := f.cliente("Rosa Medina", 300)
	mc := &memCache{valores: map[string]decimal.Decimal{}}
	reloj := Reloj{Now: func() time.Time { return f.now }, Loc: tiendaLoc}
	compras := NewComprasMensuales(f.clientes, mc, time.Minute, reloj)
	ctx := context.Background()

	total, err := compras.Total(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "300", total.String())

	// a write that skips invalidation is not seen until the entry is dropped
	f.clientes.compras = append(f.clientes.compras, compra(c.ID, f.tienda.ID, "50", f.now))
	total, _ = compras.Total(ctx, c.ID)
	assert.Equal(t, "300", total.String())

	compras.Invalidar(ctx, c.ID)
	total, _ = compras.Total(ctx, c.ID)
	assert.Equal(t, "350", total.String())
	assert.Equal(t, 3, mc.gets)
}
