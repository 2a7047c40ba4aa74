package notes

import "time"

// Note es un texto libre asociado a un medicamento. No se edita.
type Note struct {
	ID           string
	MedicationID string

	Text string

	CreatedAt time.Time
}
