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
	"gorm.io/gorm"
)

func (r *stubPromocionRepo) Create(_ context.Context, p *model.Promocion) error {
	p.ID = uuid.New()
	r.promos = append(r.promos, *p)
	return nil
}

func (r *stubPromocionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Promocion, error) {
	for _, p := range r.promos {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPromocionRepo) Update(_ context.Context, p *model.Promocion) error {
	for i := range r.promos {
		if r.promos[i].ID == p.ID {
			r.promos[i] = *p
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Productos ────────────────────────────────────────────────────────────────

func TestCrearProducto_SKUDuplicado(t *testing.T) {
	f := newFixture(t)
	svc := NewProductoService(f.productos, f.movimientos, nil, Reloj{Now: func() time.Time { return f.now }, Loc: tiendaLoc})
	req := dto.CrearProductoRequest{Nombre: "Jarron", Categoria: "hogar", Precio: dec("120"), SKU: "JAR-01", Stock: 3}

	resp, err := svc.Crear(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Activo)

	_, err = svc.Crear(context.Background(), req)
	assert.ErrorIs(t, err, ErrSKUDuplicado)
}

func TestAjustarStock(t *testing.T) {
	f := newFixture(t)
	svc := NewProductoService(f.productos, f.movimientos, nil, Reloj{Now: func() time.Time { return f.now }, Loc: tiendaLoc})
	p := f.producto("Jarron", "hogar", 120, 3)
	ctx := context.Background()

	resp, err := svc.AjustarStock(ctx, f.admin, p.ID, dto.AjusteStockRequest{Delta: 5, Motivo: "recepcion"})
	require.NoError(t, err)
	assert.Equal(t, 8, resp.Stock)

	_, err = svc.AjustarStock(ctx, f.admin, p.ID, dto.AjusteStockRequest{Delta: -9, Motivo: "merma"})
	assert.ErrorIs(t, err, ErrStockInsuficiente)
	assert.Equal(t, 8, f.stock(p.ID))

	_, err = svc.AjustarStock(ctx, f.admin, p.ID, dto.AjusteStockRequest{Delta: 0, Motivo: "nada"})
	assert.ErrorIs(t, err, ErrDatoInvalido)

	movs, total, err := svc.Movimientos(ctx, p.ID, dto.MovimientoFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, model.MovAjusteManual, movs[0].Tipo)
	assert.Equal(t, "recepcion (Admin)", movs[0].Motivo)
}

// ── Promociones ──────────────────────────────────────────────────────────────

func TestPromocion_FechaFinInclusiva(t *testing.T) {
	f := newFixture(t)
	svc := NewPromocionService(f.promos, Reloj{Now: func() time.Time { return f.now }, Loc: tiendaLoc})
	ctx := context.Background()

	resp, err := svc.Crear(ctx, dto.PromocionRequest{
		Titulo: "Marzo ropa", Categoria: " ropa ", Valor: dec("20"), Global: true,
		FechaInicio: "2026-03-01", FechaFin: "2026-03-10",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PromoActiva, resp.Estado)
	assert.Equal(t, "2026-03-10", resp.FechaFin)
	assert.Equal(t, "ropa", resp.Categoria)

	p := f.promos.promos[0]
	assert.True(t, p.FechaFin.Equal(time.Date(2026, 3, 10, 23, 59, 59, 0, tiendaLoc)), p.FechaFin)

	f.now = time.Date(2026, 3, 11, 0, 0, 1, 0, tiendaLoc)
	vigentes, err := svc.Vigentes(ctx, f.tienda.ID)
	require.NoError(t, err)
	assert.Empty(t, vigentes)
}

func TestPromocion_Validaciones(t *testing.T) {
	f := newFixture(t)
	svc := NewPromocionService(f.promos, Reloj{Now: func() time.Time { return f.now }, Loc: tiendaLoc})
	ctx := context.Background()

	_, err := svc.Crear(ctx, dto.PromocionRequest{Titulo: "X", Categoria: "ropa", Valor: dec("10"), FechaInicio: "2026-03-01", FechaFin: "2026-03-02"})
	assert.ErrorIs(t, err, ErrDatoInvalido, "non-global promotion without stores")

	_, err = svc.Crear(ctx, dto.PromocionRequest{Titulo: "X", Categoria: "ropa", Valor: dec("10"), Global: true, FechaInicio: "2026-03-05", FechaFin: "2026-03-02"})
	assert.ErrorIs(t, err, ErrFechaInvalida)
}

func TestPromocion_VigentesPorTienda(t *testing.T) {
	f := newFixture(t)
	svc := NewPromocionService(f.promos, Reloj{Now: func() time.Time { return f.now }, Loc: tiendaLoc})
	ctx := context.Background()

	_, err := svc.Crear(ctx, dto.PromocionRequest{
		Titulo: "Solo norte", Categoria: "ropa", Valor: dec("10"),
		Tiendas: []string{f.otraTienda.ID.String()}, FechaInicio: "2026-03-01", FechaFin: "2026-03-31",
	})
	require.NoError(t, err)
	apagada, err := svc.Crear(ctx, dto.PromocionRequest{
		Titulo: "Global", Categoria: "hogar", Valor: dec("5"), Global: true, FechaInicio: "2026-03-01", FechaFin: "2026-03-31",
	})
	require.NoError(t, err)

	centro, err := svc.Vigentes(ctx, f.tienda.ID)
	require.NoError(t, err)
	require.Len(t, centro, 1)
	assert.Equal(t, "Global", centro[0].Titulo)

	_, err = svc.CambiarActiva(ctx, uuid.MustParse(apagada.ID), false)
	require.NoError(t, err)
	centro, err = svc.Vigentes(ctx, f.tienda.ID)
	require.NoError(t, err)
	assert.Empty(t, centro)

	norte, err := svc.Vigentes(ctx, f.otraTienda.ID)
	require.NoError(t, err)
	assert.Len(t, norte, 1)
}

// ── Reportes ─────────────────────────────────────────────────────────────────

func TestReporteResumen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.producto("Vestido", "ropa", 400, 10)
	b := f.producto("Lampara", "hogar", 250, 10)

	_, err := f.ventas.RegistrarVenta(ctx, f.vendedor, f.tienda.ID, dto.RegistrarVentaRequest{
		Items: []dto.ItemCarritoRequest{item(a, 1), item(b, 2)}, MetodoPago: model.MetodoTarjeta,
	})
	require.NoError(t, err)
	_, err = f.ventas.RegistrarVenta(ctx, f.vendedor, f.otraTienda.ID, dto.RegistrarVentaRequest{
		Items: []dto.ItemCarritoRequest{item(a, 1)}, MetodoPago: model.MetodoEfectivo,
	})
	require.ErrorIs(t, err, ErrSinPermiso)
	_, err = f.ventas.RegistrarVenta(ctx, f.admin, f.otraTienda.ID, dto.RegistrarVentaRequest{
		Items: []dto.ItemCarritoRequest{item(a, 1)}, MetodoPago: model.MetodoEfectivo,
	})
	require.NoError(t, err)
	devuelta, err := f.ventas.RegistrarVenta(ctx, f.vendedor, f.tienda.ID, dto.RegistrarVentaRequest{
		Items: []dto.ItemCarritoRequest{item(b, 1)}, MetodoPago: model.MetodoEfectivo,
	})
	require.NoError(t, err)
	_, err = f.ventas.DevolverVenta(ctx, f.admin, f.tienda.ID, uuid.MustParse(devuelta.ID))
	require.NoError(t, err)

	r, err := f.reportes.Resumen(ctx, dto.ReporteFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, r.NumVentas)
	assert.Equal(t, 1, r.NumDevueltas)
	assert.Equal(t, "1300", r.TotalVentas.String())
	assert.Equal(t, "36", r.TotalComisiones.String())
	assert.Equal(t, "1264", r.TotalNeto.String())
	require.Len(t, r.PorTienda, 2)
	assert.Equal(t, "Tienda Centro", r.PorTienda[0].Nombre)
	require.NotEmpty(t, r.TopProductos)
	assert.Equal(t, "Lampara", r.TopProductos[0].Nombre)
	assert.Equal(t, 2, r.TopProductos[0].Cantidad)

	solo, err := f.reportes.Resumen(ctx, dto.ReporteFilter{TiendaID: f.otraTienda.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "400", solo.TotalVentas.String())

	vend, err := f.reportes.VentasVendedor(ctx, f.vendedor, f.tienda.ID, dto.RangoFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, vend.NumVentas)
	assert.Equal(t, "900", vend.Total.String())
}

func TestReporteExportar(t *testing.T) {
	f := newFixture(t)
	p := f.producto("Vestido", "ropa", 400, 10)
	_, err := f.ventas.RegistrarVenta(context.Background(), f.admin, f.tienda.ID, dto.RegistrarVentaRequest{
		Items: []dto.ItemCarritoRequest{item(p, 1)}, MetodoPago: model.MetodoEfectivo,
	})
	require.NoError(t, err)

	for formato, ct := range map[string]string{
		"":     "text/csv; charset=utf-8",
		"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"pdf":  "application/pdf",
	} {
		exp, err := f.reportes.Exportar(context.Background(), dto.ReporteFilter{Formato: formato})
		require.NoError(t, err, formato)
		assert.Equal(t, ct, exp.ContentType)
		assert.NotEmpty(t, exp.Datos)
		assert.Contains(t, exp.Nombre, "ventas_2026-03-10_2026-03-10")
	}

	_, err = f.reportes.Exportar(context.Background(), dto.ReporteFilter{Formato: "docx"})
	assert.ErrorIs(t, err, ErrDatoInvalido)
}
