package service

import (
	"strings"
	"time"

	"fleamarket/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Business constants.
var (
	UmbralVIP          = decimal.NewFromInt(2000) // monthly purchases to become VIP
	PorcentajeVIP      = decimal.NewFromInt(15)
	PorcentajeComision = decimal.NewFromInt(4) // card processing, on the final total
	PorcentajeAnticipo = decimal.NewFromInt(10)

	cien = decimal.NewFromInt(100)
)

// LineaCarrito is a resolved cart line: the current product record and the quantity.
type LineaCarrito struct {
	Producto model.Producto
	Cantidad int
}

// Carrito is the priced cart. Items carry the per-line snapshot written to the sale.
type Carrito struct {
	Items           []model.VentaItem
	Subtotal        decimal.Decimal
	DescuentoPromo  decimal.Decimal
	DescuentoVIP    decimal.Decimal
	Total           decimal.Decimal
	ComisionTarjeta decimal.Decimal
	EsVIP           bool
}

// EnCentavos reports whether m carries at most two decimal places, the precision money is stored with.
func EnCentavos(m decimal.Decimal) bool {
	return m.Equal(m.Round(2))
}

// EsVIP is derived, never stored.
func EsVIP(comprasMes decimal.Decimal) bool {
	return comprasMes.GreaterThanOrEqual(UmbralVIP)
}

// PromocionVigente returns the promotion that applies to a category in a store at
// instant now, or nil. When several apply the highest percentage wins.
func PromocionVigente(promos []model.Promocion, categoria string, tiendaID uuid.UUID, now time.Time) *model.Promocion {
	var mejor *model.Promocion
	for i := range promos {
		p := &promos[i]
		if p.Estado(now) != model.PromoActiva {
			continue
		}
		if !strings.EqualFold(p.Categoria, categoria) || !p.AplicaATienda(tiendaID) {
			continue
		}
		if mejor == nil || p.Valor.GreaterThan(mejor.Valor) {
			mejor = p
		}
	}
	return mejor
}

// CalcularCarrito prices a cart. Category promotions are applied per line first;
// the VIP discount is then taken on the already discounted amount. The card
// commission is computed on the final total and does not change what the customer pays.
func CalcularCarrito(lineas []LineaCarrito, promos []model.Promocion, tiendaID uuid.UUID, comprasMes decimal.Decimal, metodo string, now time.Time) Carrito {
	c := Carrito{
		Subtotal:        decimal.Zero,
		DescuentoPromo:  decimal.Zero,
		DescuentoVIP:    decimal.Zero,
		ComisionTarjeta: decimal.Zero,
	}

	for _, l := range lineas {
		bruto := l.Producto.Precio.Mul(decimal.NewFromInt(int64(l.Cantidad))).Round(2)
		desc := decimal.Zero
		if p := PromocionVigente(promos, l.Producto.Categoria, tiendaID, now); p != nil {
			desc = bruto.Mul(p.Valor).Div(cien).Round(2)
		}
		c.Items = append(c.Items, model.VentaItem{
			ProductoID:     l.Producto.ID,
			Nombre:         l.Producto.Nombre,
			Categoria:      l.Producto.Categoria,
			PrecioUnitario: l.Producto.Precio,
			Cantidad:       l.Cantidad,
			DescuentoPromo: desc,
			PrecioFinal:    bruto.Sub(desc),
		})
		c.Subtotal = c.Subtotal.Add(bruto)
		c.DescuentoPromo = c.DescuentoPromo.Add(desc)
	}

	base := c.Subtotal.Sub(c.DescuentoPromo)
	if EsVIP(comprasMes) {
		c.EsVIP = true
		c.DescuentoVIP = base.Mul(PorcentajeVIP).Div(cien).Round(2)
	}
	c.Total = base.Sub(c.DescuentoVIP)
	if metodo == model.MetodoTarjeta {
		c.ComisionTarjeta = ComisionTarjeta(c.Total)
	}
	return c
}

// ComisionTarjeta = round(total * 0.04, 2).
func ComisionTarjeta(total decimal.Decimal) decimal.Decimal {
	return total.Mul(PorcentajeComision).Div(cien).Round(2)
}

// AnticipoMinimo = ceil(10% of total), in whole pesos.
func AnticipoMinimo(total decimal.Decimal) decimal.Decimal {
	return total.Mul(PorcentajeAnticipo).Div(cien).Ceil()
}
