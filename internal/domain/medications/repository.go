package medications

import (
	"context"

	"medtracker/internal/domain/doselogs"
)

type Repository interface {
	Create(ctx context.Context, m Medication) error
	Update(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, id string) (Medication, error)
	List(ctx context.Context) ([]Medication, error)

	// Delete borra también los logs y notas del medicamento.
	Delete(ctx context.Context, id string) error
}

// DoseLogReader es la parte del store de logs que necesita el cálculo de adherencia.
type DoseLogReader interface {
	List(ctx context.Context, filter doselogs.ListFilter) ([]doselogs.DoseLog, error)
}
