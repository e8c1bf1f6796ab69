package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"fleamarket/internal/model"

	"github.com/shopspring/decimal"
)

// AnchoTicket is the column count of the 80mm thermal printers used at the counter.
const AnchoTicket = 48

const pieDefault = "Gracias por su compra"

// TicketVenta renders the printable ticket of a sale. The card commission is never printed.
func TicketVenta(t *model.Tienda, v *model.Venta) string {
	var b ticketBuilder
	b.encabezado(t)

	b.fila(fmt.Sprintf("Ticket #%06d", v.NumeroTicket), FechaHora(v.CreatedAt))
	b.texto("Atendio: " + v.UsuarioNombre)
	cliente := v.ClienteNombre
	if cliente == "" {
		cliente = "Mostrador"
	}
	b.texto("Cliente: " + cliente)
	if v.Estado == model.VentaDevuelta {
		b.centrado("*** VENTA DEVUELTA ***")
	}
	b.separador('-')

	for _, it := range v.Items {
		b.item(it.Nombre, it.Cantidad, it.PrecioUnitario, it.DescuentoPromo, it.PrecioFinal)
	}
	b.separador('-')

	b.fila("Subtotal", Moneda(v.Subtotal))
	if v.DescuentoPromo.IsPositive() {
		b.fila("Desc. promociones", Moneda(v.DescuentoPromo.Neg()))
	}
	if v.DescuentoVIP.IsPositive() {
		b.fila("Desc. cliente VIP", Moneda(v.DescuentoVIP.Neg()))
	}
	b.fila("TOTAL", Moneda(v.Total))
	b.separador('=')

	b.pago(t, v.MetodoPago)
	b.pie(t)
	return b.String()
}

// TicketApartado renders the layaway receipt with its payment history and balance.
func TicketApartado(t *model.Tienda, a *model.Apartado) string {
	var b ticketBuilder
	b.encabezado(t)

	b.fila("APARTADO "+a.Numero, FechaHora(a.CreatedAt))
	b.texto("Cliente: " + a.ClienteNombre)
	if a.ClienteTelefono != "" {
		b.texto("Tel: " + a.ClienteTelefono)
	}
	b.texto("Estado: " + strings.ToUpper(a.Estado))
	b.separador('-')

	for _, it := range a.Items {
		b.item(it.Nombre, it.Cantidad, it.PrecioUnitario, it.DescuentoPromo, it.PrecioFinal)
	}
	b.separador('-')

	b.fila("TOTAL", Moneda(a.Total))
	b.fila("Pagado", Moneda(a.AnticipoPagado))
	b.fila("SALDO PENDIENTE", Moneda(a.SaldoPendiente))
	b.fila("Fecha limite", Fecha(a.FechaLimite))
	b.separador('=')

	if len(a.Pagos) > 0 {
		b.texto("Pagos:")
		for _, p := range a.Pagos {
			b.fila("  "+Fecha(p.CreatedAt)+" "+MetodoPago(p.MetodoPago), Moneda(p.Monto))
		}
		b.separador('=')
	}
	b.pie(t)
	return b.String()
}

// ── ticketBuilder ────────────────────────────────────────────────────────────

type ticketBuilder struct {
	strings.Builder
}

func (b *ticketBuilder) encabezado(t *model.Tienda) {
	b.centrado(strings.ToUpper(t.Nombre))
	if t.Direccion != "" {
		b.centrado(t.Direccion)
	}
	if t.Telefono != "" {
		b.centrado("Tel: " + t.Telefono)
	}
	b.separador('=')
}

func (b *ticketBuilder) item(nombre string, cantidad int, precio, descuento, final decimal.Decimal) {
	bruto := precio.Mul(decimal.NewFromInt(int64(cantidad)))
	b.fila(nombre, Moneda(bruto))
	b.texto(fmt.Sprintf("  %d x %s", cantidad, Moneda(precio)))
	if descuento.IsPositive() {
		b.fila("  Promocion", Moneda(descuento.Neg()))
		b.fila("  Neto", Moneda(final))
	}
}

func (b *ticketBuilder) pago(t *model.Tienda, metodo string) {
	b.texto("Forma de pago: " + MetodoPago(metodo))
	if metodo == model.MetodoTransferencia {
		for _, kv := range [][2]string{
			{"Banco", t.Banco},
			{"Cuenta", t.Cuenta},
			{"CLABE", t.CLABE},
			{"Titular", t.Titular},
		} {
			if kv[1] != "" {
				b.texto(kv[0] + ": " + kv[1])
			}
		}
	}
	b.separador('=')
}

func (b *ticketBuilder) pie(t *model.Tienda) {
	pie := t.PieTicket
	if pie == "" {
		pie = pieDefault
	}
	for _, l := range strings.Split(pie, "\n") {
		b.centrado(l)
	}
}

func (b *ticketBuilder) separador(c byte) {
	b.WriteString(strings.Repeat(string(c), AnchoTicket))
	b.WriteByte('\n')
}

func (b *ticketBuilder) texto(s string) {
	b.WriteString(recortar(s, AnchoTicket))
	b.WriteByte('\n')
}

func (b *ticketBuilder) centrado(s string) {
	s = recortar(s, AnchoTicket)
	pad := (AnchoTicket - utf8.RuneCountInString(s)) / 2
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(s)
	b.WriteByte('\n')
}

// fila writes izq flush left and der flush right, truncating izq when both do not fit.
func (b *ticketBuilder) fila(izq, der string) {
	espacio := AnchoTicket - utf8.RuneCountInString(der) - 1
	izq = recortar(izq, espacio)
	relleno := AnchoTicket - utf8.RuneCountInString(izq) - utf8.RuneCountInString(der)
	b.WriteString(izq)
	b.WriteString(strings.Repeat(" ", relleno))
	b.WriteString(der)
	b.WriteByte('\n')
}

func recortar(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
