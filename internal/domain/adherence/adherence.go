// Package adherence calcula el cumplimiento de un esquema de dosis.
// Son funciones puras sobre logs en memoria; no tocan el store.
package adherence

import (
	"errors"
	"math"
	"time"

	"medtracker/internal/domain/doselogs"

	"github.com/samber/lo"
)

var ErrInvalidArgument = errors.New("invalid argument")

// argumentError lleva el mensaje que se devuelve tal cual al cliente
// y matchea ErrInvalidArgument con errors.Is.
type argumentError string

func (e argumentError) Error() string { return string(e) }

func (e argumentError) Is(target error) bool { return target == ErrInvalidArgument }

// Rate es el % de logs marcados como tomados sobre el total de logs.
// Sin logs devuelve 0 (no hay nada que dividir).
func Rate(logs []doselogs.DoseLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	taken := lo.CountBy(logs, func(l doselogs.DoseLog) bool { return l.WasTaken })
	return round2(float64(taken) / float64(len(logs)) * 100)
}

// ExpectedDoses = days * perDay. Falla si el producto no entra en un int.
func ExpectedDoses(days, perDay int) (int, error) {
	if days < 0 || perDay <= 0 {
		return 0, argumentError("Days and schedule must be positive.")
	}
	if days > math.MaxInt/perDay {
		return 0, argumentError("Days and schedule are too large.")
	}
	return days * perDay, nil
}

// RateOverPeriod compara las tomas registradas en [r.Start, r.End] contra las
// esperadas por el esquema. No se recorta a 100: si se registraron más tomas
// que las programadas el resultado lo refleja.
func RateOverPeriod(logs []doselogs.DoseLog, r doselogs.DateRange, perDay int, loc *time.Location) (float64, error) {
	if r.Inverted() {
		return 0, argumentError("start_date must be before or equal to end_date")
	}

	expected, err := ExpectedDoses(r.Days(), perDay)
	if err != nil {
		return 0, err
	}
	if expected == 0 {
		return 0, nil
	}

	taken := lo.CountBy(logs, func(l doselogs.DoseLog) bool {
		return l.WasTaken && r.Contains(l.TakenAt, loc)
	})
	return round2(float64(taken) / float64(expected) * 100), nil
}

// round2 redondea a 2 decimales, mitades lejos de cero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
