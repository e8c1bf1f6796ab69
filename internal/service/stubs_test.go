package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"fleamarket/internal/dto"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"
	"fleamarket/internal/worker"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory repositories ────────────────────────────────────────────────────
// Each stub stores copies so a service mutating a loaded record without saving
// it does not leak into the next read, the same as a real database.

type stubProductoRepo struct {
	repository.ProductoRepository
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: map[uuid.UUID]*model.Producto{}}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, o := range r.productos {
		if strings.EqualFold(o.SKU, p.SKU) {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Producto, error) {
	out := []model.Producto{}
	for _, id := range ids {
		if p, ok := r.productos[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) AjustarStockTx(_ context.Context, _ *gorm.DB, id uuid.UUID, delta int) (int, int, error) {
	p, ok := r.productos[id]
	if !ok {
		return 0, 0, gorm.ErrRecordNotFound
	}
	antes := p.Stock
	if delta < 0 && antes+delta < 0 {
		return antes, antes, repository.ErrStockNegativo
	}
	p.Stock += delta
	return antes, p.Stock, nil
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

type stubMovimientoRepo struct {
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) CreateTx(_ context.Context, _ *gorm.DB, m *model.MovimientoStock) error {
	m.ID = uuid.New()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, f repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	out := []model.MovimientoStock{}
	for _, m := range r.movimientos {
		if f.ProductoID != nil && m.ProductoID != *f.ProductoID {
			continue
		}
		if f.Tipo != "" && m.Tipo != f.Tipo {
			continue
		}
		if f.ReferenciaID != nil && (m.ReferenciaID == nil || *m.ReferenciaID != *f.ReferenciaID) {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovimientoRepo) porTipo(tipo string) []model.MovimientoStock {
	out, _, _ := r.List(context.Background(), repository.MovimientoStockFilter{Tipo: tipo})
	return out
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

type stubPromocionRepo struct {
	repository.PromocionRepository
	promos []model.Promocion
}

func (r *stubPromocionRepo) List(_ context.Context, soloActivas bool) ([]model.Promocion, error) {
	out := []model.Promocion{}
	for _, p := range r.promos {
		if soloActivas && !p.Activa {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type stubTiendaRepo struct {
	repository.TiendaRepository
	tiendas map[uuid.UUID]*model.Tienda
}

func (r *stubTiendaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Tienda, error) {
	t, ok := r.tiendas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubTiendaRepo) List(_ context.Context, incluirInactivas bool) ([]model.Tienda, error) {
	out := []model.Tienda{}
	for _, t := range r.tiendas {
		if incluirInactivas || t.Activo {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
	compras  []model.CompraCliente
	// duplicados makes Create fail with a unique violation for these numbers.
	duplicados map[string]bool
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: map[uuid.UUID]*model.Cliente{}, duplicados: map[string]bool{}}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if r.duplicados[c.Numero] {
		return gorm.ErrDuplicatedKey
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.clientes[c.ID] = &cp
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubClienteRepo) FindByNumero(_ context.Context, numero string) (*model.Cliente, error) {
	for _, c := range r.clientes {
		if c.Numero == numero {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClienteRepo) ExisteNumero(_ context.Context, numero string) (bool, error) {
	for _, c := range r.clientes {
		if c.Numero == numero {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubClienteRepo) List(_ context.Context, _ dto.ClienteFilter) ([]model.Cliente, int64, error) {
	out := []model.Cliente{}
	for _, c := range r.clientes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	cp := *c
	r.clientes[c.ID] = &cp
	return nil
}

func (r *stubClienteRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.clientes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.clientes, id)
	return nil
}

func (r *stubClienteRepo) CreateCompraTx(_ context.Context, _ *gorm.DB, c *model.CompraCliente) error {
	c.ID = uuid.New()
	r.compras = append(r.compras, *c)
	return nil
}

func (r *stubClienteRepo) DeleteCompraPorVentaTx(_ context.Context, _ *gorm.DB, ventaID uuid.UUID) error {
	out := r.compras[:0]
	for _, c := range r.compras {
		if c.VentaID == nil || *c.VentaID != ventaID {
			out = append(out, c)
		}
	}
	r.compras = out
	return nil
}

func (r *stubClienteRepo) SumCompras(_ context.Context, clienteID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, c := range r.compras {
		if c.ClienteID == clienteID && !c.CreatedAt.Before(desde) && c.CreatedAt.Before(hasta) {
			total = total.Add(c.Monto)
		}
	}
	return total, nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

type stubVentaRepo struct {
	ventas    map[uuid.UUID]*model.Venta
	ticketSeq int
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: map[uuid.UUID]*model.Venta{}}
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	cp := *v
	cp.Items = append([]model.VentaItem(nil), v.Items...)
	r.ventas[v.ID] = &cp
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubVentaRepo) UpdateEstado(_ context.Context, _ *gorm.DB, id uuid.UUID, desde, hasta string) error {
	v, ok := r.ventas[id]
	if !ok || v.Estado != desde {
		return gorm.ErrRecordNotFound
	}
	v.Estado = hasta
	return nil
}

func (r *stubVentaRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.ticketSeq++
	return r.ticketSeq, nil
}

func (r *stubVentaRepo) ListRango(_ context.Context, rango repository.VentaRango) ([]model.Venta, error) {
	out := []model.Venta{}
	for _, v := range r.ventas {
		if rango.TiendaID != nil && v.TiendaID != *rango.TiendaID {
			continue
		}
		if rango.UsuarioID != nil && v.UsuarioID != *rango.UsuarioID {
			continue
		}
		if v.CreatedAt.Before(rango.Desde) || !v.CreatedAt.Before(rango.Hasta) {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumeroTicket < out[j].NumeroTicket })
	return out, nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

type stubApartadoRepo struct {
	apartados map[uuid.UUID]*model.Apartado
	seq       int
}

func newStubApartadoRepo() *stubApartadoRepo {
	return &stubApartadoRepo{apartados: map[uuid.UUID]*model.Apartado{}}
}

func clonarApartado(a *model.Apartado) *model.Apartado {
	cp := *a
	cp.Items = append([]model.ApartadoItem(nil), a.Items...)
	cp.Pagos = append([]model.PagoApartado(nil), a.Pagos...)
	return &cp
}

func (r *stubApartadoRepo) Create(_ context.Context, _ *gorm.DB, a *model.Apartado) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	for i := range a.Pagos {
		a.Pagos[i].ApartadoID = a.ID
	}
	r.apartados[a.ID] = clonarApartado(a)
	return nil
}

func (r *stubApartadoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Apartado, error) {
	a, ok := r.apartados[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return clonarApartado(a), nil
}

func (r *stubApartadoRepo) FindByIDForUpdate(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Apartado, error) {
	return r.FindByID(ctx, id)
}

func (r *stubApartadoRepo) UpdateTx(_ context.Context, _ *gorm.DB, a *model.Apartado) error {
	prev, ok := r.apartados[a.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cp := clonarApartado(a)
	// header only, payments are stored through CreatePagoTx
	cp.Pagos = prev.Pagos
	r.apartados[a.ID] = cp
	return nil
}

func (r *stubApartadoRepo) CreatePagoTx(_ context.Context, _ *gorm.DB, p *model.PagoApartado) error {
	a, ok := r.apartados[p.ApartadoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.ID = uuid.New()
	a.Pagos = append(a.Pagos, *p)
	return nil
}

func (r *stubApartadoRepo) List(_ context.Context, f repository.ApartadoFilter) ([]model.Apartado, error) {
	out := []model.Apartado{}
	for _, a := range r.apartados {
		if f.TiendaID != nil && a.TiendaID != *f.TiendaID {
			continue
		}
		if f.ClienteID != nil && a.ClienteID != *f.ClienteID {
			continue
		}
		if f.Estado != "" && a.Estado != f.Estado {
			continue
		}
		out = append(out, *clonarApartado(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out, nil
}

func (r *stubApartadoRepo) ListVencibles(_ context.Context, tiendaID *uuid.UUID, now time.Time) ([]model.Apartado, error) {
	out := []model.Apartado{}
	for _, a := range r.apartados {
		if a.Estado != model.ApartadoActivo || !a.FechaLimite.Before(now) {
			continue
		}
		if tiendaID != nil && a.TiendaID != *tiendaID {
			continue
		}
		out = append(out, *clonarApartado(a))
	}
	return out, nil
}

func (r *stubApartadoRepo) NextNumero(_ context.Context, _ *gorm.DB) (string, error) {
	r.seq++
	return fmt.Sprintf("AP-%05d", r.seq), nil
}

func (r *stubApartadoRepo) DB() *gorm.DB { return nil }

var _ repository.ApartadoRepository = (*stubApartadoRepo)(nil)

type stubCajaRepo struct {
	cierres []model.CierreCaja
}

func (r *stubCajaRepo) CreateCierre(_ context.Context, c *model.CierreCaja) error {
	c.ID = uuid.New()
	r.cierres = append(r.cierres, *c)
	return nil
}

func (r *stubCajaRepo) ListCierres(_ context.Context, tiendaID uuid.UUID, desde, hasta time.Time) ([]model.CierreCaja, error) {
	out := []model.CierreCaja{}
	for _, c := range r.cierres {
		if c.TiendaID == tiendaID && !c.CreatedAt.Before(desde) && c.CreatedAt.Before(hasta) {
			out = append(out, c)
		}
	}
	return out, nil
}

var _ repository.CajaRepository = (*stubCajaRepo)(nil)

// stubNotifier records queued ticket emails.
type stubNotifier struct {
	enviados []worker.EmailTicketPayload
	err      error
}

func (n *stubNotifier) EnqueueEmailTicket(_ context.Context, p worker.EmailTicketPayload) error {
	if n.err != nil {
		return n.err
	}
	n.enviados = append(n.enviados, p)
	return nil
}

var _ TicketNotifier = (*stubNotifier)(nil)

// ── Fixture ──────────────────────────────────────────────────────────────────

// tiendaLoc is a fixed offset so the tests do not depend on the tz database.
var tiendaLoc = time.FixedZone("CST", -6*3600)

type fixture struct {
	now time.Time

	tienda      *model.Tienda
	otraTienda  *model.Tienda
	tiendas     *stubTiendaRepo
	productos   *stubProductoRepo
	movimientos *stubMovimientoRepo
	promos      *stubPromocionRepo
	clientes    *stubClienteRepo
	ventasRepo  *stubVentaRepo
	apartRepo   *stubApartadoRepo
	cajaRepo    *stubCajaRepo
	notifier    *stubNotifier

	compras   *ComprasMensuales
	ventas    VentaService
	apartados ApartadoService
	caja      CajaService
	reportes  ReporteService
	clienteSv ClienteService

	admin    Actor
	vendedor Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2026, 3, 10, 10, 0, 0, 0, tiendaLoc)}
	reloj := Reloj{Now: func() time.Time { return f.now }, Loc: tiendaLoc}

	f.tienda = &model.Tienda{
		ID:          uuid.New(),
		Nombre:      "Tienda Centro",
		MetodosPago: pq.StringArray{model.MetodoEfectivo, model.MetodoTarjeta},
		Activo:      true,
	}
	f.otraTienda = &model.Tienda{
		ID:          uuid.New(),
		Nombre:      "Tienda Norte",
		MetodosPago: pq.StringArray{model.MetodoEfectivo},
		Activo:      true,
	}
	f.tiendas = &stubTiendaRepo{tiendas: map[uuid.UUID]*model.Tienda{
		f.tienda.ID:     f.tienda,
		f.otraTienda.ID: f.otraTienda,
	}}
	f.productos = newStubProductoRepo()
	f.movimientos = &stubMovimientoRepo{}
	f.promos = &stubPromocionRepo{}
	f.clientes = newStubClienteRepo()
	f.ventasRepo = newStubVentaRepo()
	f.apartRepo = newStubApartadoRepo()
	f.cajaRepo = &stubCajaRepo{}
	f.notifier = &stubNotifier{}

	f.compras = NewComprasMensuales(f.clientes, nil, time.Minute, reloj)
	f.ventas = NewVentaService(f.ventasRepo, f.tiendas, f.clientes, f.productos, f.promos, f.movimientos, f.compras, f.notifier, reloj)
	f.apartados = NewApartadoService(f.apartRepo, f.tiendas, f.clientes, f.productos, f.promos, f.movimientos, f.compras, reloj)
	f.caja = NewCajaService(f.cajaRepo, f.ventasRepo, f.tiendas, reloj)
	f.reportes = NewReporteService(f.ventasRepo, f.tiendas, reloj)
	f.clienteSv = NewClienteService(f.clientes, f.compras, f.apartados)

	f.admin = Actor{UsuarioID: uuid.New(), Nombre: "Admin", Rol: model.RolAdmin}
	f.vendedor = Actor{UsuarioID: uuid.New(), Nombre: "Lucia", Rol: model.RolVendedor, TiendaID: &f.tienda.ID}
	return f
}

func (f *fixture) producto(nombre, categoria string, precio int64, stock int) *model.Producto {
	p := &model.Producto{
		ID:        uuid.New(),
		Nombre:    nombre,
		Categoria: categoria,
		Precio:    decimal.NewFromInt(precio),
		SKU:       "SKU-" + nombre,
		Stock:     stock,
		Activo:    true,
	}
	_ = f.productos.Create(context.Background(), p)
	return p
}

func (f *fixture) cliente(nombre string, comprasMes int64) *model.Cliente {
	c := &model.Cliente{ID: uuid.New(), Numero: fmt.Sprintf("%05d", 10000+len(f.clientes.clientes)), Nombre: nombre, Email: "cliente@example.com"}
	_ = f.clientes.Create(context.Background(), c)
	if comprasMes > 0 {
		f.clientes.compras = append(f.clientes.compras, compra(c.ID, f.tienda.ID, decimal.NewFromInt(comprasMes).String(), f.now.Add(-time.Hour)))
	}
	return c
}

func compra(clienteID, tiendaID uuid.UUID, monto string, at time.Time) model.CompraCliente {
	return model.CompraCliente{ID: uuid.New(), ClienteID: clienteID, TiendaID: tiendaID, Monto: dec(monto), CreatedAt: at}
}

func (f *fixture) stock(id uuid.UUID) int { return f.productos.productos[id].Stock }

func item(p *model.Producto, cantidad int) dto.ItemCarritoRequest {
	return dto.ItemCarritoRequest{ProductoID: p.ID.String(), Cantidad: cantidad}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }
