package service

import (
	"context"
	"fmt"
	"time"

	"fleamarket/internal/dto"
	"fleamarket/internal/format"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LimiteEfectivo is the register amount above which a cash pickup is suggested.
var LimiteEfectivo = decimal.NewFromInt(2000)

// horarioCierre is a scheduled close: it is due at Hora and alerts 30 minutes later.
type horarioCierre struct {
	Tipo string
	Hora int
}

var horariosCierre = []horarioCierre{
	{Tipo: model.CierreManana, Hora: 12},
	{Tipo: model.CierreTarde, Hora: 16},
	{Tipo: model.CierreNoche, Hora: 20},
}

const graciaCierre = 30 * time.Minute

type CajaService interface {
	EfectivoEsperado(ctx context.Context, tiendaID uuid.UUID) (decimal.Decimal, error)
	RegistrarCierre(ctx context.Context, actor Actor, tiendaID uuid.UUID, req dto.RegistrarCierreRequest) (*dto.CierreCajaResponse, error)
	Estado(ctx context.Context, actor Actor, tiendaID uuid.UUID) (*dto.EstadoCajaResponse, error)
	Historial(ctx context.Context, actor Actor, tiendaID uuid.UUID, filter dto.RangoFilter) ([]dto.CierreCajaResponse, error)
}

type cajaService struct {
	repo    repository.CajaRepository
	ventas  repository.VentaRepository
	tiendas repository.TiendaRepository
	reloj   Reloj
}

func NewCajaService(repo repository.CajaRepository, ventas repository.VentaRepository, tiendas repository.TiendaRepository, reloj Reloj) CajaService {
	return &cajaService{repo: repo, ventas: ventas, tiendas: tiendas, reloj: reloj}
}

// ── Pure computations ────────────────────────────────────────────────────────

// resumenDia totals the day's non-returned sales by payment method.
type resumenDia struct {
	NumVentas     int
	Total         decimal.Decimal
	Efectivo      decimal.Decimal
	Tarjeta       decimal.Decimal
	Transferencia decimal.Decimal
}

func resumirVentas(ventas []model.Venta) resumenDia {
	r := resumenDia{Total: decimal.Zero, Efectivo: decimal.Zero, Tarjeta: decimal.Zero, Transferencia: decimal.Zero}
	for _, v := range ventas {
		if v.Estado == model.VentaDevuelta {
			continue
		}
		r.NumVentas++
		r.Total = r.Total.Add(v.Total)
		switch v.MetodoPago {
		case model.MetodoEfectivo:
			r.Efectivo = r.Efectivo.Add(v.Total)
		case model.MetodoTarjeta:
			r.Tarjeta = r.Tarjeta.Add(v.Total)
		case model.MetodoTransferencia:
			r.Transferencia = r.Transferencia.Add(v.Total)
		}
	}
	return r
}

// calcularEsperado = cash sales of the day minus what earlier closes already counted.
func calcularEsperado(ventas []model.Venta, cierres []model.CierreCaja) decimal.Decimal {
	esperado := resumirVentas(ventas).Efectivo
	for _, c := range cierres {
		esperado = esperado.Sub(c.MontoContado)
	}
	return esperado
}

func completados(cierres []model.CierreCaja) map[string]bool {
	out := make(map[string]bool, len(horariosCierre))
	for _, h := range horariosCierre {
		out[h.Tipo] = false
	}
	for _, c := range cierres {
		if _, ok := out[c.Tipo]; ok {
			out[c.Tipo] = true
		}
	}
	return out
}

func alertasCaja(now, inicioDia time.Time, cierres []model.CierreCaja, esperado decimal.Decimal) []dto.AlertaCaja {
	hechos := completados(cierres)
	alertas := []dto.AlertaCaja{}
	for _, h := range horariosCierre {
		limite := inicioDia.Add(time.Duration(h.Hora)*time.Hour + graciaCierre)
		if now.After(limite) && !hechos[h.Tipo] {
			alertas = append(alertas, dto.AlertaCaja{
				Tipo:       "cierre_pendiente",
				CierreTipo: h.Tipo,
				Mensaje:    fmt.Sprintf("Falta el corte de las %d:00", h.Hora),
			})
		}
	}
	if esperado.GreaterThanOrEqual(LimiteEfectivo) {
		alertas = append(alertas, dto.AlertaCaja{
			Tipo:       "limite_efectivo",
			CierreTipo: model.CierreLimite,
			Mensaje:    fmt.Sprintf("Hay %s en caja, haga un corte por limite", format.Moneda(esperado)),
		})
	}
	return alertas
}

// ── Operations ───────────────────────────────────────────────────────────────

func (s *cajaService) delDia(ctx context.Context, tiendaID uuid.UUID, now time.Time) ([]model.Venta, []model.CierreCaja, error) {
	desde := s.reloj.InicioDia(now)
	hasta := desde.AddDate(0, 0, 1)
	ventas, err := s.ventas.ListRango(ctx, repository.VentaRango{TiendaID: &tiendaID, Desde: desde, Hasta: hasta})
	if err != nil {
		return nil, nil, err
	}
	cierres, err := s.repo.ListCierres(ctx, tiendaID, desde, hasta)
	if err != nil {
		return nil, nil, err
	}
	return ventas, cierres, nil
}

func (s *cajaService) EfectivoEsperado(ctx context.Context, tiendaID uuid.UUID) (decimal.Decimal, error) {
	ventas, cierres, err := s.delDia(ctx, tiendaID, s.reloj.Ahora())
	if err != nil {
		return decimal.Zero, err
	}
	return calcularEsperado(ventas, cierres), nil
}

func (s *cajaService) RegistrarCierre(ctx context.Context, actor Actor, tiendaID uuid.UUID, req dto.RegistrarCierreRequest) (*dto.CierreCajaResponse, error) {
	if !actor.PuedeOperar(tiendaID) {
		return nil, ErrSinPermiso
	}
	if _, err := s.tiendas.FindByID(ctx, tiendaID); err != nil {
		return nil, noEncontrado(err, "tienda")
	}
	if req.MontoContado.IsNegative() {
		return nil, fmt.Errorf("%w: monto_contado no puede ser negativo", ErrDatoInvalido)
	}
	if !EnCentavos(req.MontoContado) {
		return nil, fmt.Errorf("%w: monto_contado admite maximo dos decimales", ErrDatoInvalido)
	}

	now := s.reloj.Ahora()
	ventas, cierres, err := s.delDia(ctx, tiendaID, now)
	if err != nil {
		return nil, err
	}
	esperado := calcularEsperado(ventas, cierres)
	resumen := resumirVentas(ventas)

	cierre := &model.CierreCaja{
		TiendaID:      tiendaID,
		UsuarioID:     actor.UsuarioID,
		UsuarioNombre: actor.Nombre,
		Tipo:          req.Tipo,
		MontoEsperado: esperado,
		MontoContado:  req.MontoContado,
		Diferencia:    req.MontoContado.Sub(esperado),
		Notas:         req.Notas,
		NumVentas:     resumen.NumVentas,
		TotalVentas:   resumen.Total,
		CreatedAt:     now,
	}
	if err := s.repo.CreateCierre(ctx, cierre); err != nil {
		return nil, err
	}

	ev := log.Info()
	if !cierre.Diferencia.IsZero() {
		ev = log.Warn()
	}
	ev.Str("tienda_id", tiendaID.String()).
		Str("tipo", cierre.Tipo).
		Str("esperado", esperado.StringFixed(2)).
		Str("diferencia", cierre.Diferencia.StringFixed(2)).
		Msg("cierre de caja registrado")

	resp := cierreResponse(cierre)
	return &resp, nil
}

func (s *cajaService) Estado(ctx context.Context, actor Actor, tiendaID uuid.UUID) (*dto.EstadoCajaResponse, error) {
	if !actor.PuedeOperar(tiendaID) {
		return nil, ErrSinPermiso
	}
	now := s.reloj.Ahora()
	ventas, cierres, err := s.delDia(ctx, tiendaID, now)
	if err != nil {
		return nil, err
	}
	resumen := resumirVentas(ventas)
	esperado := calcularEsperado(ventas, cierres)

	hoy := make([]dto.CierreCajaResponse, 0, len(cierres))
	for i := range cierres {
		hoy = append(hoy, cierreResponse(&cierres[i]))
	}
	return &dto.EstadoCajaResponse{
		TiendaID:         tiendaID.String(),
		Fecha:            now.Format("2006-01-02"),
		EfectivoEsperado: esperado,
		VentasEfectivo:   resumen.Efectivo,
		VentasTarjeta:    resumen.Tarjeta,
		VentasTransf:     resumen.Transferencia,
		NumVentas:        resumen.NumVentas,
		CierresHoy:       hoy,
		Completados:      completados(cierres),
		Alertas:          alertasCaja(now, s.reloj.InicioDia(now), cierres, esperado),
	}, nil
}

func (s *cajaService) Historial(ctx context.Context, actor Actor, tiendaID uuid.UUID, filter dto.RangoFilter) ([]dto.CierreCajaResponse, error) {
	if !actor.PuedeOperar(tiendaID) {
		return nil, ErrSinPermiso
	}
	desde, hasta, err := s.reloj.Rango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	cierres, err := s.repo.ListCierres(ctx, tiendaID, desde, hasta)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CierreCajaResponse, 0, len(cierres))
	for i := range cierres {
		out = append(out, cierreResponse(&cierres[i]))
	}
	return out, nil
}
