// Package format holds the display helpers shared by tickets, reports and exports.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Moneda renders an amount as $1,234.50. Negative amounts render as -$1,234.50.
func Moneda(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	entero, centavos, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range entero {
		if i > 0 && (len(entero)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(centavos)
	return b.String()
}

func Fecha(t time.Time) string { return t.Format("02/01/2006") }

func FechaHora(t time.Time) string { return t.Format("02/01/2006 15:04") }

// ISO is the wire format used in JSON responses.
func ISO(t time.Time) string { return t.Format(time.RFC3339) }

// MetodoPago returns the customer-facing label of a payment method.
func MetodoPago(m string) string {
	switch m {
	case "efectivo":
		return "Efectivo"
	case "tarjeta":
		return "Tarjeta"
	case "transferencia":
		return "Transferencia"
	default:
		return m
	}
}
