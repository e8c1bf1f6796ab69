package service

import (
	"fmt"
	"time"
)

// Reloj is the business clock. Day and month boundaries (cash closes, monthly
// purchases, report ranges) are computed in Loc, not in UTC.
type Reloj struct {
	Now func() time.Time
	Loc *time.Location
}

func NewReloj(loc *time.Location) Reloj {
	return Reloj{Now: time.Now, Loc: loc}
}

func (r Reloj) loc() *time.Location {
	if r.Loc == nil {
		return time.Local
	}
	return r.Loc
}

// Ahora returns the current instant in the business time zone.
func (r Reloj) Ahora() time.Time {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	return now().In(r.loc())
}

func (r Reloj) InicioDia(t time.Time) time.Time {
	t = t.In(r.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.loc())
}

func (r Reloj) InicioMes(t time.Time) time.Time {
	t = t.In(r.loc())
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, r.loc())
}

// Mes is the YYYY-MM key of t in the business time zone.
func (r Reloj) Mes(t time.Time) string { return t.In(r.loc()).Format("2006-01") }

// Rango turns inclusive YYYY-MM-DD bounds into a half-open [desde, hasta) interval.
// Empty bounds default to today.
func (r Reloj) Rango(desde, hasta string) (time.Time, time.Time, error) {
	hoy := r.InicioDia(r.Ahora())
	d, h := hoy, hoy
	var err error
	if desde != "" {
		if d, err = time.ParseInLocation("2006-01-02", desde, r.loc()); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: desde", ErrFechaInvalida)
		}
	}
	if hasta != "" {
		if h, err = time.ParseInLocation("2006-01-02", hasta, r.loc()); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: hasta", ErrFechaInvalida)
		}
	} else if desde != "" && d.After(hoy) {
		h = d
	}
	if h.Before(d) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: hasta es anterior a desde", ErrFechaInvalida)
	}
	return d, h.AddDate(0, 0, 1), nil
}
