package service

import (
	"context"
	"testing"
	"time"

	"fleamarket/internal/dto"
	"fleamarket/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) venta(tienda uuid.UUID, metodo, total, estado string, at time.Time) {
	_ = f.ventasRepo.Create(context.Background(), nil, &model.Venta{
		TiendaID:      tienda,
		UsuarioID:     f.vendedor.UsuarioID,
		UsuarioNombre: f.vendedor.Nombre,
		Subtotal:      dec(total),
		Total:         dec(total),
		MetodoPago:    metodo,
		Estado:        estado,
		CreatedAt:     at,
	})
}

func TestEfectivoEsperado(t *testing.T) {
	f := newFixture(t)
	hoy := f.now.Add(-time.Hour)
	f.venta(f.tienda.ID, model.MetodoEfectivo, "500", model.VentaNormal, hoy)
	f.venta(f.tienda.ID, model.MetodoEfectivo, "300", model.VentaDevuelta, hoy)
	f.venta(f.tienda.ID, model.MetodoTarjeta, "200", model.VentaNormal, hoy)
	f.venta(f.tienda.ID, model.MetodoEfectivo, "700", model.VentaNormal, hoy.AddDate(0, 0, -1))
	f.venta(f.otraTienda.ID, model.MetodoEfectivo, "900", model.VentaNormal, hoy)
	f.cajaRepo.cierres = append(f.cajaRepo.cierres, model.CierreCaja{
		TiendaID: f.tienda.ID, Tipo: model.CierreManual, MontoContado: dec("100"), CreatedAt: hoy,
	})

	esperado, err := f.caja.EfectivoEsperado(context.Background(), f.tienda.ID)
	require.NoError(t, err)
	assert.Equal(t, "400", esperado.String())
}

func TestRegistrarCierre_Diferencia(t *testing.T) {
	f := newFixture(t)
	f.venta(f.tienda.ID, model.MetodoEfectivo, "650", model.VentaNormal, f.now.Add(-time.Hour))
	f.venta(f.tienda.ID, model.MetodoTarjeta, "120", model.VentaNormal, f.now.Add(-time.Hour))
	ctx := context.Background()

	resp, err := f.caja.RegistrarCierre(ctx, f.vendedor, f.tienda.ID, dto.RegistrarCierreRequest{
		Tipo: model.CierreManana, MontoContado: dec("640"),
	})
	require.NoError(t, err)
	assert.Equal(t, "650", resp.MontoEsperado.String())
	assert.Equal(t, "-10", resp.Diferencia.String())
	assert.Equal(t, 2, resp.NumVentas)
	assert.Equal(t, "770", resp.TotalVentas.String())

	// the second close only expects what the first did not count
	f.venta(f.tienda.ID, model.MetodoEfectivo, "100", model.VentaNormal, f.now)
	resp, err = f.caja.RegistrarCierre(ctx, f.vendedor, f.tienda.ID, dto.RegistrarCierreRequest{
		Tipo: model.CierreTarde, MontoContado: dec("110"),
	})
	require.NoError(t, err)
	assert.Equal(t, "110", resp.MontoEsperado.String())
	assert.True(t, resp.Diferencia.IsZero())

	_, err = f.caja.RegistrarCierre(ctx, f.vendedor, f.tienda.ID, dto.RegistrarCierreRequest{
		Tipo: model.CierreNoche, MontoContado: dec("-1"),
	})
	assert.ErrorIs(t, err, ErrDatoInvalido)
	_, err = f.caja.RegistrarCierre(ctx, f.vendedor, f.tienda.ID, dto.RegistrarCierreRequest{
		Tipo: model.CierreNoche, MontoContado: dec("10.005"),
	})
	assert.ErrorIs(t, err, ErrDatoInvalido)

	_, err = f.caja.RegistrarCierre(ctx, f.vendedor, f.otraTienda.ID, dto.RegistrarCierreRequest{Tipo: model.CierreManual})
	assert.ErrorIs(t, err, ErrSinPermiso)
	assert.Len(t, f.cajaRepo.cierres, 2)
}

func TestAlertasCaja_Horarios(t *testing.T) {
	inicio := time.Date(2026, 3, 10, 0, 0, 0, 0, tiendaLoc)
	at := func(h, m int) time.Time { return inicio.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }
	tipos := func(alertas []dto.AlertaCaja) []string {
		out := []string{}
		for _, a := range alertas {
			out = append(out, a.CierreTipo)
		}
		return out
	}

	assert.Empty(t, alertasCaja(at(12, 29), inicio, nil, decimal.Zero))
	assert.Equal(t, []string{model.CierreManana}, tipos(alertasCaja(at(12, 31), inicio, nil, decimal.Zero)))

	hechos := []model.CierreCaja{{Tipo: model.CierreManana}}
	assert.Empty(t, alertasCaja(at(16, 10), inicio, hechos, decimal.Zero))
	assert.Equal(t, []string{model.CierreTarde, model.CierreNoche}, tipos(alertasCaja(at(21, 0), inicio, hechos, decimal.Zero)))

	// manual closes do not satisfy a scheduled one
	manual := []model.CierreCaja{{Tipo: model.CierreManual}}
	assert.Equal(t, []string{model.CierreManana}, tipos(alertasCaja(at(13, 0), inicio, manual, decimal.Zero)))
}

func TestAlertasCaja_LimiteEfectivo(t *testing.T) {
	inicio := time.Date(2026, 3, 10, 0, 0, 0, 0, tiendaLoc)
	now := inicio.Add(9 * time.Hour)

	assert.Empty(t, alertasCaja(now, inicio, nil, dec("1999.99")))

	alertas := alertasCaja(now, inicio, nil, dec("2000"))
	require.Len(t, alertas, 1)
	assert.Equal(t, "limite_efectivo", alertas[0].Tipo)
	assert.Equal(t, model.CierreLimite, alertas[0].CierreTipo)
}

func TestEstadoCaja(t *testing.T) {
	f := newFixture(t)
	f.now = time.Date(2026, 3, 10, 13, 0, 0, 0, tiendaLoc)
	f.venta(f.tienda.ID, model.MetodoEfectivo, "2500", model.VentaNormal, f.now.Add(-time.Hour))
	f.venta(f.tienda.ID, model.MetodoTarjeta, "80", model.VentaNormal, f.now.Add(-time.Hour))

	resp, err := f.caja.Estado(context.Background(), f.vendedor, f.tienda.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", resp.Fecha)
	assert.Equal(t, "2500", resp.EfectivoEsperado.String())
	assert.Equal(t, "80", resp.VentasTarjeta.String())
	assert.Equal(t, 2, resp.NumVentas)
	assert.False(t, resp.Completados[model.CierreManana])
	assert.Len(t, resp.Alertas, 2)
}
