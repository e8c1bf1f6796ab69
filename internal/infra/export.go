package infra

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"fleamarket/internal/format"
	"fleamarket/internal/model"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

var columnasVentas = []string{
	"ticket", "fecha", "tienda", "vendedor", "cliente", "metodo_pago",
	"subtotal", "descuento_promo", "descuento_vip", "total", "comision_tarjeta", "estado",
}

// VentasCSV writes one row per sale. Amounts are plain decimals with two places.
func VentasCSV(w io.Writer, ventas []model.Venta, tiendas map[uuid.UUID]string, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columnasVentas); err != nil {
		return err
	}
	for _, v := range ventas {
		err := cw.Write([]string{
			fmt.Sprintf("%06d", v.NumeroTicket),
			v.CreatedAt.In(loc).Format("2006-01-02 15:04"),
			tiendas[v.TiendaID],
			v.UsuarioNombre,
			v.ClienteNombre,
			v.MetodoPago,
			v.Subtotal.StringFixed(2),
			v.DescuentoPromo.StringFixed(2),
			v.DescuentoVIP.StringFixed(2),
			v.Total.StringFixed(2),
			v.ComisionTarjeta.StringFixed(2),
			v.Estado,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// VentasExcel builds a workbook with a "Ventas" sheet (one row per sale) and a
// "Items" sheet (one row per sold line).
func VentasExcel(ventas []model.Venta, tiendas map[uuid.UUID]string, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const hojaVentas, hojaItems = "Ventas", "Items"
	if err := f.SetSheetName("Sheet1", hojaVentas); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(hojaItems); err != nil {
		return nil, err
	}
	negrita, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	encabezado := func(hoja string, cols []string) error {
		fila := make([]interface{}, len(cols))
		for i, c := range cols {
			fila[i] = c
		}
		if err := f.SetSheetRow(hoja, "A1", &fila); err != nil {
			return err
		}
		fin, err := excelize.CoordinatesToCellName(len(cols), 1)
		if err != nil {
			return err
		}
		return f.SetCellStyle(hoja, "A1", fin, negrita)
	}

	columnasItems := []string{"ticket", "fecha", "tienda", "producto", "categoria", "cantidad", "precio_unitario", "descuento_promo", "precio_final", "estado"}
	if err := encabezado(hojaVentas, columnasVentas); err != nil {
		return nil, err
	}
	if err := encabezado(hojaItems, columnasItems); err != nil {
		return nil, err
	}

	filaItem := 2
	for i, v := range ventas {
		fecha := v.CreatedAt.In(loc).Format("2006-01-02 15:04")
		celda, _ := excelize.CoordinatesToCellName(1, i+2)
		fila := []interface{}{
			v.NumeroTicket, fecha, tiendas[v.TiendaID], v.UsuarioNombre, v.ClienteNombre,
			format.MetodoPago(v.MetodoPago),
			v.Subtotal.InexactFloat64(), v.DescuentoPromo.InexactFloat64(), v.DescuentoVIP.InexactFloat64(),
			v.Total.InexactFloat64(), v.ComisionTarjeta.InexactFloat64(), v.Estado,
		}
		if err := f.SetSheetRow(hojaVentas, celda, &fila); err != nil {
			return nil, err
		}
		for _, it := range v.Items {
			celda, _ := excelize.CoordinatesToCellName(1, filaItem)
			fila := []interface{}{
				v.NumeroTicket, fecha, tiendas[v.TiendaID], it.Nombre, it.Categoria, it.Cantidad,
				it.PrecioUnitario.InexactFloat64(), it.DescuentoPromo.InexactFloat64(), it.PrecioFinal.InexactFloat64(), v.Estado,
			}
			if err := f.SetSheetRow(hojaItems, celda, &fila); err != nil {
				return nil, err
			}
			filaItem++
		}
	}
	if err := f.SetColWidth(hojaVentas, "B", "E", 22); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(hojaItems, "C", "E", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
