package doselogs

import "time"

// DoseLog registra una toma (o una omisión) de un medicamento.
type DoseLog struct {
	ID           string
	MedicationID string

	TakenAt  time.Time
	WasTaken bool
}

// Status devuelve "Taken" o "Missed".
func (l DoseLog) Status() string {
	if l.WasTaken {
		return "Taken"
	}
	return "Missed"
}
