package service

import (
	"context"
	"testing"
	"time"

	"fleamarket/internal/dto"
	"fleamarket/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crearApartado(t *testing.T, f *fixture, cliente *model.Cliente, p *model.Producto, anticipo string) *dto.ApartadoResponse {
	t.Helper()
	resp, err := f.apartados.Crear(context.Background(), f.vendedor, f.tienda.ID, dto.CrearApartadoRequest{
		ClienteID:  cliente.ID.String(),
		Items:      []dto.ItemCarritoRequest{item(p, 1)},
		Anticipo:   dec(anticipo),
		MetodoPago: model.MetodoEfectivo,
	})
	require.NoError(t, err)
	return resp
}

func TestCrearApartado_AnticipoMinimo(t *testing.T) {
	f := newFixture(t)
	p := f.producto("Chamarra", "ropa", 500, 3)
	c := f.cliente("Rosa Medina", 0)

	_, err := f.apartados.Crear(context.Background(), f.vendedor, f.tienda.ID, dto.CrearApartadoRequest{
		ClienteID:  c.ID.String(),
		Items:      []dto.ItemCarritoRequest{item(p, 1)},
		Anticipo:   dec("40"),
		MetodoPago: model.MetodoEfectivo,
	})
	assert.ErrorIs(t, err, ErrAnticipoInsuficiente)
	assert.Equal(t, 3, f.stock(p.ID), "a rejected apartado reserves nothing")

	resp := crearApartado(t, f, c, p, "50")
	assert.Equal(t, model.ApartadoActivo, resp.Estado)
	assert.Equal(t, "AP-00001", resp.Numero)
	assert.Equal(t, "450", resp.SaldoPendiente.String())
	assert.Equal(t, DiasApartado, resp.DiasRestantes)
	require.Len(t, resp.Pagos, 1)
	assert.Equal(t, "50", resp.Pagos[0].Monto.String())
	assert.Equal(t, "Lucia", resp.Pagos[0].RecibidoPor)

	assert.Equal(t, 2, f.stock(p.ID))
	movs := f.movimientos.porTipo(model.MovApartado)
	require.Len(t, movs, 1)
	assert.Equal(t, -1, movs[0].Cantidad)
}

func TestCrearApartado_Rechazos(t *testing.T) {
	f := newFixture(t)
	p := f.producto("Bicicleta", "deportes", 300, 1)
	c := f.cliente("Rosa Medina", 0)
	ctx := context.Background()

	base := dto.CrearApartadoRequest{
		ClienteID:  c.ID.String(),
		Items:      []dto.ItemCarritoRequest{item(p, 1)},
		Anticipo:   dec("300"),
		MetodoPago: model.MetodoEfectivo,
	}

	_, err := f.apartados.Crear(ctx, f.vendedor, f.tienda.ID, base)
	assert.ErrorIs(t, err, ErrAnticipoExcedeTotal)

	sinCliente := base
	sinCliente.ClienteID = ""
	sinCliente.Anticipo = dec("100")
	_, err = f.apartados.Crear(ctx, f.vendedor, f.tienda.ID, sinCliente)
	assert.ErrorIs(t, err, ErrSinCliente)

	metodo := base
	metodo.Anticipo = dec("100")
	metodo.MetodoPago = model.MetodoTransferencia
	_, err = f.apartados.Crear(ctx, f.vendedor, f.tienda.ID, metodo)
	assert.ErrorIs(t, err, ErrMetodoNoAceptado)

	otra := base
	otra.Anticipo = dec("100")
	_, err = f.apartados.Crear(ctx, f.vendedor, f.otraTienda.ID, otra)
	assert.ErrorIs(t, err, ErrSinPermiso)

	agotado := base
	agotado.Anticipo = dec("100")
	agotado.Items = []dto.ItemCarritoRequest{item(p, 2)}
	_, err = f.apartados.Crear(ctx, f.vendedor, f.tienda.ID, agotado)
	assert.ErrorIs(t, err, ErrStockInsuficiente)

	assert.Empty(t, f.apartRepo.apartados)
}

func TestAgregarPago_Liquida(t *testing.T) {
	f := newFixture(t)
	p := f.producto("Bicicleta", "deportes", 300, 1)
	c := f.cliente("Rosa Medina", 0)
	ctx := context.Background()
	a := crearApartado(t, f, c, p, "100")
	id := uuid.MustParse(a.ID)

	_, err := f.apartados.AgregarPago(ctx, f.vendedor, f.tienda.ID, id, dto.PagoApartadoRequest{Monto: dec("250"), MetodoPago: model.MetodoEfectivo})
	assert.ErrorIs(t, err, ErrMontoInvalido)

	resp, err := f.apartados.AgregarPago(ctx, f.vendedor, f.tienda.ID, id, dto.PagoApartadoRequest{Monto: dec("120"), MetodoPago: model.MetodoTarjeta})
	require.NoError(t, err)
	assert.Equal(t, model.ApartadoActivo, resp.Estado)
	assert.Equal(t, "220", resp.AnticipoPagado.String())
	assert.Equal(t, "80", resp.SaldoPendiente.String())
	assert.Empty(t, f.clientes.compras, "purchase is only recorded when fully paid")

	resp, err = f.apartados.AgregarPago(ctx, f.vendedor, f.tienda.ID, id, dto.PagoApartadoRequest{Monto: dec("80"), MetodoPago: model.MetodoEfectivo})
	require.NoError(t, err)
	assert.Equal(t, model.ApartadoCompletado, resp.Estado)
	assert.True(t, resp.SaldoPendiente.IsZero())
	assert.Len(t, resp.Pagos, 3)

	require.Len(t, f.clientes.compras, 1)
	assert.Equal(t, "300", f.clientes.compras[0].Monto.String())
	assert.Equal(t, id, *f.clientes.compras[0].ApartadoID)

	stored := f.apartRepo.apartados[id]
	assert.True(t, stored.Total.Equal(stored.AnticipoPagado.Add(stored.SaldoPendiente)))
	assert.Len(t, stored.Pagos, 3)

	_, err = f.apartados.AgregarPago(ctx, f.vendedor, f.tienda.ID, id, dto.PagoApartadoRequest{Monto: dec("1"), MetodoPago: model.MetodoEfectivo})
	assert.ErrorIs(t, err, ErrEstadoInvalido)
}

func TestMontosConMasDeDosDecimales(t *testing.T) {
	f := newFixture(t)
	p := f.producto("Bicicleta", "deportes", 300, 2)
	c := f.cliente("Rosa Medina", 0)
	ctx := context.Background()

	_, err := f.apartados.Crear(ctx, f.vendedor, f.tienda.ID, dto.CrearApartadoRequest{
		ClienteID:  c.ID.String(),
		Items:      []dto.ItemCarritoRequest{item(p, 1)},
		Anticipo:   dec("30.004"),
		MetodoPago: model.MetodoEfectivo,
	})
	assert.ErrorIs(t, err, ErrMontoInvalido)
	assert.Empty(t, f.apartRepo.apartados)
	assert.Equal(t, 2, f.stock(p.ID))

	a := crearApartado(t, f, c, p, "100")
	id := uuid.MustParse(a.ID)

	_, err = f.apartados.AgregarPago(ctx, f.vendedor, f.tienda.ID, id, dto.PagoApartadoRequest{Monto: dec("199.996"), MetodoPago: model.MetodoEfectivo})
	assert.ErrorIs(t, err, ErrMontoInvalido)

	resp, err := f.apartados.AgregarPago(ctx, f.vendedor, f.tienda.ID, id, dto.PagoApartadoRequest{Monto: dec("200.000"), MetodoPago: model.MetodoEfectivo})
	require.NoError(t, err)
	assert.Equal(t, model.ApartadoCompletado, resp.Estado)
	assert.True(t, resp.SaldoPendiente.IsZero())
	assert.Len(t, f.clientes.compras, 1)
}

func TestAgregarPago_Vencido(t *testing.T) {
	f := newFixture(t)
	p := f.producto("Bicicleta", "deportes", 300, 1)
	c := f.cliente("Rosa Medina", 0)
	a := crearApartado(t, f, c, p, "100")
	id := uuid.MustParse(a.ID)
	assert.Equal(t, 0, f.stock(p.ID))

	f.now = f.now.AddDate(0, 0, DiasApartado).Add(time.Minute)

	_, err := f.apartados.AgregarPago(context.Background(), f.vendedor, f.tienda.ID, id, dto.PagoApartadoRequest{Monto: dec("200"), MetodoPago: model.MetodoEfectivo})
	assert.ErrorIs(t, err, ErrApartadoVencido)
	assert.Equal(t, model.ApartadoVencido, f.apartRepo.apartados[id].Estado)
	assert.Equal(t, 1, f.stock(p.ID), "expired apartado releases its stock")
	assert.Len(t, f.movimientos.porTipo(model.MovLiberacionApartado), 1)
}

func TestRevisarVencidos(t *testing.T) {
	f := newFixture(t)
	c := f.cliente("Rosa Medina", 0)
	viejo := crearApartado(t, f, c, f.producto("Lampara", "hogar", 200, 1), "20")

	f.now = f.now.AddDate(0, 0, 10)
	nuevo := crearApartado(t, f, c, f.producto("Mesa", "hogar", 800, 1), "80")

	f.now = f.now.AddDate(0, 0, 6)
	n, err := f.apartados.RevisarVencidos(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.ApartadoVencido, f.apartRepo.apartados[uuid.MustParse(viejo.ID)].Estado)
	assert.Equal(t, model.ApartadoActivo, f.apartRepo.apartados[uuid.MustParse(nuevo.ID)].Estado)

	n, err = f.apartados.RevisarVencidos(context.Background(), &f.tienda.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestObtener_VenceAlLeer(t *testing.T) {
	f := newFixture(t)
	p := f.producto("Lampara", "hogar", 200, 1)
	a := crearApartado(t, f, f.cliente("Rosa Medina", 0), p, "20")
	id := uuid.MustParse(a.ID)

	f.now = f.now.AddDate(0, 0, 20)
	resp, err := f.apartados.Obtener(context.Background(), f.tienda.ID, id)
	require.NoError(t, err)
	assert.Equal(t, model.ApartadoVencido, resp.Estado)
	assert.Zero(t, resp.DiasRestantes)
	assert.Equal(t, 1, f.stock(p.ID))

	_, err = f.apartados.Obtener(context.Background(), f.otraTienda.ID, id)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestCancelarApartado(t *testing.T) {
	f := newFixture(t)
	p := f.producto("Lampara", "hogar", 200, 2)
	a := crearApartado(t, f, f.cliente("Rosa Medina", 0), p, "20")
	id := uuid.MustParse(a.ID)
	ctx := context.Background()

	resp, err := f.apartados.Cancelar(ctx, f.vendedor, f.tienda.ID, id, "cliente desistio")
	require.NoError(t, err)
	assert.Equal(t, model.ApartadoCancelado, resp.Estado)
	assert.Equal(t, "cliente desistio", resp.MotivoCancelacion)
	assert.Equal(t, "20", resp.AnticipoPagado.String(), "payments are kept")
	assert.Equal(t, 2, f.stock(p.ID))

	_, err = f.apartados.Cancelar(ctx, f.vendedor, f.tienda.ID, id, "otra vez")
	assert.ErrorIs(t, err, ErrEstadoInvalido)
	assert.Equal(t, 2, f.stock(p.ID), "stock is released once")
}

func TestCompletarApartado(t *testing.T) {
	f := newFixture(t)
	p := f.producto("Lampara", "hogar", 200, 1)
	a := crearApartado(t, f, f.cliente("Rosa Medina", 0), p, "20")
	id := uuid.MustParse(a.ID)
	ctx := context.Background()

	_, err := f.apartados.Completar(ctx, f.vendedor, f.tienda.ID, id)
	assert.ErrorIs(t, err, ErrSaldoPendiente)

	_, err = f.apartados.AgregarPago(ctx, f.vendedor, f.tienda.ID, id, dto.PagoApartadoRequest{Monto: dec("180"), MetodoPago: model.MetodoEfectivo})
	require.NoError(t, err)

	resp, err := f.apartados.Completar(ctx, f.vendedor, f.tienda.ID, id)
	require.NoError(t, err)
	assert.True(t, resp.Entregado)
	assert.NotNil(t, resp.FechaEntrega)
	assert.Equal(t, 0, f.stock(p.ID), "delivered goods stay out of stock")

	_, err = f.apartados.Completar(ctx, f.vendedor, f.tienda.ID, id)
	assert.ErrorIs(t, err, ErrYaEntregado)
}

func TestListarPorCliente(t *testing.T) {
	f := newFixture(t)
	c := f.cliente("Rosa Medina", 0)
	crearApartado(t, f, c, f.producto("Lampara", "hogar", 200, 1), "20")
	crearApartado(t, f, c, f.producto("Mesa", "hogar", 800, 1), "80")
	crearApartado(t, f, f.cliente("Otro", 0), f.producto("Silla", "hogar", 100, 1), "10")

	list, err := f.apartados.ListarPorCliente(context.Background(), c.ID, model.ApartadoActivo)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	f.now = f.now.AddDate(0, 0, 16)
	list, err = f.apartados.ListarPorCliente(context.Background(), c.ID, model.ApartadoActivo)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAplicarPago_SaldoSiempreCuadra(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, tiendaLoc)
	a := &model.Apartado{
		Total:          dec("999.99"),
		AnticipoPagado: dec("100"),
		SaldoPendiente: dec("899.99"),
		Estado:         model.ApartadoActivo,
		FechaLimite:    now.AddDate(0, 0, 15),
	}
	for _, m := range []string{"0.01", "333.33", "66.65", "500"} {
		_, err := aplicarPago(a, dec(m), now)
		require.NoError(t, err, m)
		assert.True(t, a.Total.Equal(a.AnticipoPagado.Add(a.SaldoPendiente)))
	}
	assert.Equal(t, model.ApartadoCompletado, a.Estado)

	_, err := aplicarPago(&model.Apartado{Estado: model.ApartadoActivo, SaldoPendiente: dec("10"), FechaLimite: now.Add(time.Hour)}, dec("-1"), now)
	assert.ErrorIs(t, err, ErrMontoInvalido)
}
