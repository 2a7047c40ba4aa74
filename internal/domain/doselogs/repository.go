package doselogs

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l DoseLog) error
	Update(ctx context.Context, l DoseLog) error
	GetByID(ctx context.Context, id string) (DoseLog, error)
	List(ctx context.Context, filter ListFilter) ([]DoseLog, error)
	Delete(ctx context.Context, id string) error
}

// ListFilter: todos los campos son opcionales.
// From/To son instantes, From inclusivo y To exclusivo.
type ListFilter struct {
	MedicationID string
	From         *time.Time
	To           *time.Time
	Ascending    bool // default: taken_at desc
}

// MedicationChecker responde si existe un medicamento.
// Se usa para evitar ciclos de imports (doselogs <-> medications).
type MedicationChecker interface {
	Exists(ctx context.Context, medicationID string) (bool, error)
}
