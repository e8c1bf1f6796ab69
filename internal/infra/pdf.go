package infra

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"fleamarket/internal/dto"
	"fleamarket/internal/format"
	"fleamarket/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// ── Ticket PDF ────────────────────────────────────────────────────────────────
// The ticket is laid out as fixed-width text (format.TicketVenta / TicketApartado).
// The PDF prints those lines in Courier on 80mm thermal paper, so screen,
// printer and email attachment all show the same ticket.

const (
	ticketAnchoMM  = 80.0
	ticketMargenMM = 4.0
	ticketFuentePt = 7.0
	ticketLineaMM  = 3.2
)

// TicketPDF renders a text ticket to PDF bytes.
func TicketPDF(texto string) ([]byte, error) {
	lineas := strings.Split(strings.TrimRight(texto, "\n"), "\n")
	alto := 2*ticketMargenMM + float64(len(lineas))*ticketLineaMM + 4

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: ticketAnchoMM, Ht: alto},
	})
	pdf.SetMargins(ticketMargenMM, ticketMargenMM, ticketMargenMM)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetFont("Courier", "", ticketFuentePt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	ancho := ticketAnchoMM - 2*ticketMargenMM
	for _, l := range lineas {
		pdf.CellFormat(ancho, ticketLineaMM, tr(l), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: ticket: %w", err)
	}
	return buf.Bytes(), nil
}

// ── Sales report PDF ──────────────────────────────────────────────────────────

// ReporteVentasPDF renders the admin sales report: summary blocks followed by
// one row per sale. Returned sales are listed but struck from the totals.
func ReporteVentasPDF(r *dto.ResumenVentasResponse, ventas []model.Venta, tiendas map[uuid.UUID]string, loc *time.Location) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 5, fmt.Sprintf("Pagina %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Reporte de ventas", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Del %s al %s", r.Desde, r.Hasta)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	totales := [][2]string{
		{"Ventas", fmt.Sprintf("%d", r.NumVentas)},
		{"Devueltas", fmt.Sprintf("%d", r.NumDevueltas)},
		{"Total vendido", format.Moneda(r.TotalVentas)},
		{"Descuentos", format.Moneda(r.TotalDescuentos)},
		{"Comisiones tarjeta", format.Moneda(r.TotalComisiones)},
		{"Neto", format.Moneda(r.TotalNeto)},
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, t := range totales {
		pdf.CellFormat(45, 5, tr(t[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 5, tr(t[1]), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	grupo := func(titulo string, filas []dto.TotalAgrupado) {
		if len(filas) == 0 {
			return
		}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 6, tr(titulo), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, f := range filas {
			nombre := f.Nombre
			if nombre == "" {
				nombre = f.Clave
			}
			pdf.CellFormat(60, 4.5, tr(nombre), "", 0, "L", false, 0, "")
			pdf.CellFormat(20, 4.5, fmt.Sprintf("%d", f.Num), "", 0, "R", false, 0, "")
			pdf.CellFormat(35, 4.5, format.Moneda(f.Total), "", 1, "R", false, 0, "")
		}
		pdf.Ln(2)
	}
	grupo("Por tienda", r.PorTienda)
	grupo("Por metodo de pago", r.PorMetodo)
	grupo("Por vendedor", r.PorVendedor)

	// ── Sales table ──────────────────────────────────────────────────────────
	cols := []struct {
		titulo string
		ancho  float64
		align  string
	}{
		{"Ticket", 18, "L"}, {"Fecha", 30, "L"}, {"Tienda", 45, "L"}, {"Vendedor", 40, "L"},
		{"Cliente", 40, "L"}, {"Metodo", 28, "L"}, {"Total", 28, "R"}, {"Comision", 22, "R"}, {"Estado", 24, "L"},
	}
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 8)
	for _, c := range cols {
		pdf.CellFormat(c.ancho, 6, c.titulo, "B", 0, c.align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 7.5)
	for _, v := range ventas {
		cliente := v.ClienteNombre
		if cliente == "" {
			cliente = "Mostrador"
		}
		celdas := []string{
			fmt.Sprintf("%06d", v.NumeroTicket),
			format.FechaHora(v.CreatedAt.In(loc)),
			tiendas[v.TiendaID],
			v.UsuarioNombre,
			cliente,
			format.MetodoPago(v.MetodoPago),
			format.Moneda(v.Total),
			format.Moneda(v.ComisionTarjeta),
			v.Estado,
		}
		for i, c := range cols {
			pdf.CellFormat(c.ancho, 5, tr(recortarPDF(celdas[i], int(c.ancho/1.6))), "", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: reporte: %w", err)
	}
	return buf.Bytes(), nil
}

func recortarPDF(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}
