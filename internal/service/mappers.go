package service

import (
	"math"
	"time"

	"fleamarket/internal/dto"
	"fleamarket/internal/format"
	"fleamarket/internal/model"

	"github.com/google/uuid"
)

// ── model → dto ──────────────────────────────────────────────────────────────

func optID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func optFecha(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := format.ISO(*t)
	return &s
}

func itemVentaResponse(it model.VentaItem) dto.ItemVentaResponse {
	return dto.ItemVentaResponse{
		ProductoID:     it.ProductoID.String(),
		Nombre:         it.Nombre,
		Categoria:      it.Categoria,
		PrecioUnitario: it.PrecioUnitario,
		Cantidad:       it.Cantidad,
		DescuentoPromo: it.DescuentoPromo,
		PrecioFinal:    it.PrecioFinal,
	}
}

// ventaResponse strips the card commission unless the viewer is an admin.
func ventaResponse(v *model.Venta, verComision bool) dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, itemVentaResponse(it))
	}
	resp := dto.VentaResponse{
		ID:             v.ID.String(),
		NumeroTicket:   v.NumeroTicket,
		TiendaID:       v.TiendaID.String(),
		UsuarioID:      v.UsuarioID.String(),
		UsuarioNombre:  v.UsuarioNombre,
		ClienteID:      optID(v.ClienteID),
		ClienteNombre:  v.ClienteNombre,
		Items:          items,
		Subtotal:       v.Subtotal,
		DescuentoPromo: v.DescuentoPromo,
		DescuentoVIP:   v.DescuentoVIP,
		Total:          v.Total,
		MetodoPago:     v.MetodoPago,
		Estado:         v.Estado,
		CreatedAt:      format.ISO(v.CreatedAt),
	}
	if verComision {
		c := v.ComisionTarjeta
		resp.ComisionTarjeta = &c
	}
	return resp
}

func apartadoItems(items []model.VentaItem) []model.ApartadoItem {
	out := make([]model.ApartadoItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.ApartadoItem{
			ProductoID:     it.ProductoID,
			Nombre:         it.Nombre,
			Categoria:      it.Categoria,
			PrecioUnitario: it.PrecioUnitario,
			Cantidad:       it.Cantidad,
			DescuentoPromo: it.DescuentoPromo,
			PrecioFinal:    it.PrecioFinal,
		})
	}
	return out
}

// diasRestantes rounds up: an apartado due in 3 hours still has 1 day left.
func diasRestantes(a *model.Apartado, now time.Time) int {
	if a.Estado != model.ApartadoActivo || !a.FechaLimite.After(now) {
		return 0
	}
	return int(math.Ceil(a.FechaLimite.Sub(now).Hours() / 24))
}

func apartadoResponse(a *model.Apartado, now time.Time) dto.ApartadoResponse {
	items := make([]dto.ItemVentaResponse, 0, len(a.Items))
	for _, it := range a.Items {
		items = append(items, dto.ItemVentaResponse{
			ProductoID:     it.ProductoID.String(),
			Nombre:         it.Nombre,
			Categoria:      it.Categoria,
			PrecioUnitario: it.PrecioUnitario,
			Cantidad:       it.Cantidad,
			DescuentoPromo: it.DescuentoPromo,
			PrecioFinal:    it.PrecioFinal,
		})
	}
	pagos := make([]dto.PagoApartadoResponse, 0, len(a.Pagos))
	for _, p := range a.Pagos {
		pagos = append(pagos, dto.PagoApartadoResponse{
			Monto:       p.Monto,
			MetodoPago:  p.MetodoPago,
			RecibidoPor: p.RecibidoPor,
			CreatedAt:   format.ISO(p.CreatedAt),
		})
	}
	return dto.ApartadoResponse{
		ID:                a.ID.String(),
		Numero:            a.Numero,
		ClienteID:         a.ClienteID.String(),
		ClienteNombre:     a.ClienteNombre,
		ClienteTelefono:   a.ClienteTelefono,
		TiendaID:          a.TiendaID.String(),
		TiendaNombre:      a.TiendaNombre,
		Items:             items,
		Total:             a.Total,
		AnticipoPagado:    a.AnticipoPagado,
		SaldoPendiente:    a.SaldoPendiente,
		Pagos:             pagos,
		Estado:            a.Estado,
		FechaLimite:       format.ISO(a.FechaLimite),
		DiasRestantes:     diasRestantes(a, now),
		Notas:             a.Notas,
		MotivoCancelacion: a.MotivoCancelacion,
		Entregado:         a.Entregado,
		FechaEntrega:      optFecha(a.FechaEntrega),
		CreatedAt:         format.ISO(a.CreatedAt),
	}
}

func productoResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:        p.ID.String(),
		Nombre:    p.Nombre,
		Categoria: p.Categoria,
		Precio:    p.Precio,
		Costo:     p.Costo,
		SKU:       p.SKU,
		Stock:     p.Stock,
		Activo:    p.Activo,
	}
}

func movimientoResponse(m *model.MovimientoStock) dto.MovimientoStockResponse {
	return dto.MovimientoStockResponse{
		ID:            m.ID.String(),
		Tipo:          m.Tipo,
		Cantidad:      m.Cantidad,
		StockAnterior: m.StockAnterior,
		StockNuevo:    m.StockNuevo,
		Motivo:        m.Motivo,
		ReferenciaID:  optID(m.ReferenciaID),
		CreatedAt:     format.ISO(m.CreatedAt),
	}
}

func tiendaResponse(t *model.Tienda) dto.TiendaResponse {
	metodos := []string(t.MetodosPago)
	if metodos == nil {
		metodos = []string{}
	}
	return dto.TiendaResponse{
		ID:          t.ID.String(),
		Nombre:      t.Nombre,
		Direccion:   t.Direccion,
		Telefono:    t.Telefono,
		MetodosPago: metodos,
		Banco:       t.Banco,
		Cuenta:      t.Cuenta,
		CLABE:       t.CLABE,
		Titular:     t.Titular,
		PieTicket:   t.PieTicket,
		Activo:      t.Activo,
	}
}

func usuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:          u.ID.String(),
		Nombre:      u.Nombre,
		Email:       u.Email,
		Rol:         u.Rol,
		TipoHorario: u.TipoHorario,
		TiendaID:    optID(u.TiendaID),
		Activo:      u.Activo,
	}
}

func promocionResponse(p *model.Promocion, now time.Time) dto.PromocionResponse {
	tiendas := []string(p.Tiendas)
	if tiendas == nil {
		tiendas = []string{}
	}
	return dto.PromocionResponse{
		ID:          p.ID.String(),
		Titulo:      p.Titulo,
		Categoria:   p.Categoria,
		Valor:       p.Valor,
		Global:      p.Global,
		Tiendas:     tiendas,
		Activa:      p.Activa,
		Estado:      p.Estado(now),
		FechaInicio: p.FechaInicio.In(now.Location()).Format("2006-01-02"),
		FechaFin:    p.FechaFin.In(now.Location()).Format("2006-01-02"),
	}
}

func cierreResponse(c *model.CierreCaja) dto.CierreCajaResponse {
	return dto.CierreCajaResponse{
		ID:            c.ID.String(),
		TiendaID:      c.TiendaID.String(),
		UsuarioID:     c.UsuarioID.String(),
		UsuarioNombre: c.UsuarioNombre,
		Tipo:          c.Tipo,
		MontoEsperado: c.MontoEsperado,
		MontoContado:  c.MontoContado,
		Diferencia:    c.Diferencia,
		Notas:         c.Notas,
		NumVentas:     c.NumVentas,
		TotalVentas:   c.TotalVentas,
		CreatedAt:     format.ISO(c.CreatedAt),
	}
}
