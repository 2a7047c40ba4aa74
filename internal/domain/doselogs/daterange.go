package doselogs

import (
	"sort"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// parseLayout acepta mes y día con uno o dos dígitos (2025-1-5).
const parseLayout = "2006-1-2"

// InvalidDateRangeMessage es el mensaje HTTP cuando start/end faltan o no parsean.
const InvalidDateRangeMessage = "Both 'start' and 'end' query parameters are required and must be valid dates."

// DateRange es un rango de fechas calendario inclusivo en ambos extremos.
// Start y End se guardan como medianoche UTC para poder compararlas y restarlas
// sin depender de la zona de los timestamps.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDate parsea YYYY-MM-DD; mes y día pueden venir sin cero a la izquierda.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(parseLayout, strings.TrimSpace(s))
}

// ParseDateRange exige start y end válidos. No valida start <= end:
// un rango invertido simplemente no matchea nada.
func ParseDateRange(start, end string) (DateRange, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return DateRange{}, ErrInvalidDateRange
	}
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, ErrInvalidDateRange
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{Start: s, End: e}, nil
}

// NewDateRange construye el rango a partir de dos fechas cualesquiera,
// quedándose sólo con año/mes/día.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: dateOnly(start), End: dateOnly(end)}
}

func (r DateRange) Inverted() bool {
	return r.Start.After(r.End)
}

// Days cuenta días calendario del rango, inclusive. 0 si está invertido.
func (r DateRange) Days() int {
	if r.Inverted() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains indica si la fecha calendario de t (vista en loc) cae en el rango.
func (r DateRange) Contains(t time.Time, loc *time.Location) bool {
	d := DateOf(t, loc)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Bounds devuelve el intervalo de instantes [from, to) que cubre el rango en loc.
// Lo usan los stores para filtrar con índices sobre taken_at.
func (r DateRange) Bounds(loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, loc)
	to := time.Date(r.End.Year(), r.End.Month(), r.End.Day()+1, 0, 0, 0, 0, loc)
	return from, to
}

// DateOf toma la fecha calendario de t en loc como medianoche UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return dateOnly(t.In(loc))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilterByDateRange selecciona los logs del rango, ordenados por taken_at asc.
func FilterByDateRange(logs []DoseLog, r DateRange, loc *time.Location) []DoseLog {
	out := make([]DoseLog, 0)
	for _, l := range logs {
		if r.Contains(l.TakenAt, loc) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TakenAt.Before(out[j].TakenAt)
	})
	return out
}
