package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"fleamarket/internal/dto"
	"fleamarket/internal/format"
	"fleamarket/internal/infra"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// topProductos is how many best sellers the summary lists.
const topProductos = 10

// Exportacion is a rendered report file.
type Exportacion struct {
	Nombre      string
	ContentType string
	Datos       []byte
}

type ReporteService interface {
	// Resumen is the admin view: every store or one, commissions included.
	Resumen(ctx context.Context, filter dto.ReporteFilter) (*dto.ResumenVentasResponse, error)
	// VentasVendedor is the seller's own summary within a store. It never carries commissions.
	VentasVendedor(ctx context.Context, actor Actor, tiendaID uuid.UUID, filter dto.RangoFilter) (*dto.VentasVendedorResponse, error)
	Exportar(ctx context.Context, filter dto.ReporteFilter) (*Exportacion, error)
}

type reporteService struct {
	ventas  repository.VentaRepository
	tiendas repository.TiendaRepository
	reloj   Reloj
}

func NewReporteService(ventas repository.VentaRepository, tiendas repository.TiendaRepository, reloj Reloj) ReporteService {
	return &reporteService{ventas: ventas, tiendas: tiendas, reloj: reloj}
}

// ── Aggregation ──────────────────────────────────────────────────────────────

type acumulador struct {
	orden  []string
	grupos map[string]*dto.TotalAgrupado
}

func nuevoAcumulador() *acumulador {
	return &acumulador{grupos: map[string]*dto.TotalAgrupado{}}
}

func (a *acumulador) sumar(clave, nombre string, total decimal.Decimal) {
	g, ok := a.grupos[clave]
	if !ok {
		g = &dto.TotalAgrupado{Clave: clave, Nombre: nombre, Total: decimal.Zero}
		a.grupos[clave] = g
		a.orden = append(a.orden, clave)
	}
	g.Num++
	g.Total = g.Total.Add(total)
}

// porTotal lists groups by descending total.
func (a *acumulador) porTotal() []dto.TotalAgrupado {
	out := a.porClave()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out
}

// porClave lists groups by ascending key, used for days.
func (a *acumulador) porClave() []dto.TotalAgrupado {
	out := make([]dto.TotalAgrupado, 0, len(a.orden))
	for _, k := range a.orden {
		out = append(out, *a.grupos[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Clave < out[j].Clave })
	return out
}

// resumir aggregates sales. Returned sales are only counted in NumDevueltas.
func (s *reporteService) resumir(ventas []model.Venta, tiendas map[uuid.UUID]string) *dto.ResumenVentasResponse {
	r := &dto.ResumenVentasResponse{
		TotalVentas:     decimal.Zero,
		TotalDescuentos: decimal.Zero,
		TotalComisiones: decimal.Zero,
		TotalNeto:       decimal.Zero,
	}
	porTienda, porMetodo, porDia, porVendedor := nuevoAcumulador(), nuevoAcumulador(), nuevoAcumulador(), nuevoAcumulador()
	productos := map[uuid.UUID]*dto.ProductoVendido{}

	for _, v := range ventas {
		if v.Estado == model.VentaDevuelta {
			r.NumDevueltas++
			continue
		}
		r.NumVentas++
		r.TotalVentas = r.TotalVentas.Add(v.Total)
		r.TotalDescuentos = r.TotalDescuentos.Add(v.DescuentoPromo).Add(v.DescuentoVIP)
		r.TotalComisiones = r.TotalComisiones.Add(v.ComisionTarjeta)

		porTienda.sumar(v.TiendaID.String(), tiendas[v.TiendaID], v.Total)
		porMetodo.sumar(v.MetodoPago, format.MetodoPago(v.MetodoPago), v.Total)
		porDia.sumar(v.CreatedAt.In(s.reloj.Ahora().Location()).Format("2006-01-02"), "", v.Total)
		porVendedor.sumar(v.UsuarioID.String(), v.UsuarioNombre, v.Total)

		for _, it := range v.Items {
			p, ok := productos[it.ProductoID]
			if !ok {
				p = &dto.ProductoVendido{ProductoID: it.ProductoID.String(), Nombre: it.Nombre, Total: decimal.Zero}
				productos[it.ProductoID] = p
			}
			p.Cantidad += it.Cantidad
			p.Total = p.Total.Add(it.PrecioFinal)
		}
	}
	r.TotalNeto = r.TotalVentas.Sub(r.TotalComisiones)
	r.PorTienda = porTienda.porTotal()
	r.PorMetodo = porMetodo.porTotal()
	r.PorDia = porDia.porClave()
	r.PorVendedor = porVendedor.porTotal()

	top := make([]dto.ProductoVendido, 0, len(productos))
	for _, p := range productos {
		top = append(top, *p)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Cantidad != top[j].Cantidad {
			return top[i].Cantidad > top[j].Cantidad
		}
		return top[i].Nombre < top[j].Nombre
	})
	if len(top) > topProductos {
		top = top[:topProductos]
	}
	r.TopProductos = top
	return r
}

// ── Operations ───────────────────────────────────────────────────────────────

func (s *reporteService) cargar(ctx context.Context, filter dto.ReporteFilter) ([]model.Venta, map[uuid.UUID]string, string, string, error) {
	desde, hasta, err := s.reloj.Rango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, nil, "", "", err
	}
	rango := repository.VentaRango{Desde: desde, Hasta: hasta}
	if filter.TiendaID != "" {
		id, err := uuid.Parse(filter.TiendaID)
		if err != nil {
			return nil, nil, "", "", fmt.Errorf("%w: tienda_id", ErrDatoInvalido)
		}
		rango.TiendaID = &id
	}
	ventas, err := s.ventas.ListRango(ctx, rango)
	if err != nil {
		return nil, nil, "", "", err
	}
	list, err := s.tiendas.List(ctx, true)
	if err != nil {
		return nil, nil, "", "", err
	}
	nombres := make(map[uuid.UUID]string, len(list))
	for _, t := range list {
		nombres[t.ID] = t.Nombre
	}
	return ventas, nombres, desde.Format("2006-01-02"), hasta.AddDate(0, 0, -1).Format("2006-01-02"), nil
}

func (s *reporteService) Resumen(ctx context.Context, filter dto.ReporteFilter) (*dto.ResumenVentasResponse, error) {
	ventas, tiendas, desde, hasta, err := s.cargar(ctx, filter)
	if err != nil {
		return nil, err
	}
	r := s.resumir(ventas, tiendas)
	r.Desde, r.Hasta = desde, hasta
	return r, nil
}

func (s *reporteService) VentasVendedor(ctx context.Context, actor Actor, tiendaID uuid.UUID, filter dto.RangoFilter) (*dto.VentasVendedorResponse, error) {
	if !actor.PuedeOperar(tiendaID) {
		return nil, ErrSinPermiso
	}
	desde, hasta, err := s.reloj.Rango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	ventas, err := s.ventas.ListRango(ctx, repository.VentaRango{TiendaID: &tiendaID, UsuarioID: &actor.UsuarioID, Desde: desde, Hasta: hasta})
	if err != nil {
		return nil, err
	}
	r := s.resumir(ventas, nil)
	return &dto.VentasVendedorResponse{
		UsuarioID: actor.UsuarioID.String(),
		Desde:     desde.Format("2006-01-02"),
		Hasta:     hasta.AddDate(0, 0, -1).Format("2006-01-02"),
		NumVentas: r.NumVentas,
		Total:     r.TotalVentas,
		PorMetodo: r.PorMetodo,
		PorDia:    r.PorDia,
	}, nil
}

func (s *reporteService) Exportar(ctx context.Context, filter dto.ReporteFilter) (*Exportacion, error) {
	ventas, tiendas, desde, hasta, err := s.cargar(ctx, filter)
	if err != nil {
		return nil, err
	}
	loc := s.reloj.Ahora().Location()
	base := fmt.Sprintf("ventas_%s_%s", desde, hasta)

	switch filter.Formato {
	case "", "csv":
		var buf bytes.Buffer
		if err := infra.VentasCSV(&buf, ventas, tiendas, loc); err != nil {
			return nil, err
		}
		return &Exportacion{Nombre: base + ".csv", ContentType: "text/csv; charset=utf-8", Datos: buf.Bytes()}, nil
	case "xlsx":
		data, err := infra.VentasExcel(ventas, tiendas, loc)
		if err != nil {
			return nil, err
		}
		return &Exportacion{Nombre: base + ".xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Datos: data}, nil
	case "pdf":
		r := s.resumir(ventas, tiendas)
		r.Desde, r.Hasta = desde, hasta
		data, err := infra.ReporteVentasPDF(r, ventas, tiendas, loc)
		if err != nil {
			return nil, err
		}
		return &Exportacion{Nombre: base + ".pdf", ContentType: "application/pdf", Datos: data}, nil
	default:
		return nil, fmt.Errorf("%w: formato %q", ErrDatoInvalido, filter.Formato)
	}
}
