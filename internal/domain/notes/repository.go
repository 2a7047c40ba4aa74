package notes

import "context"

type Repository interface {
	Create(ctx context.Context, n Note) error
	GetByID(ctx context.Context, id string) (Note, error)

	// List devuelve por created_at desc; empates: la última insertada primero.
	// medicationID vacío => todas.
	List(ctx context.Context, medicationID string) ([]Note, error)
	Delete(ctx context.Context, id string) error
}

type MedicationChecker interface {
	Exists(ctx context.Context, medicationID string) (bool, error)
}
