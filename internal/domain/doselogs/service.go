package doselogs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("dose log not found")
	ErrMedicationNotFound = errors.New("medication does not exist")
	ErrInvalidDateRange   = errors.New("start and end must be valid YYYY-MM-DD dates")
)

type Service struct {
	repo Repository
	meds MedicationChecker
	loc  *time.Location
}

func NewService(repo Repository, meds MedicationChecker, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo: repo,
		meds: meds,
		loc:  loc,
	}
}

type CreateInput struct {
	MedicationID string
	TakenAt      time.Time
	WasTaken     *bool // nil => true
}

func (s *Service) Create(ctx context.Context, in CreateInput) (DoseLog, error) {
	l, err := s.build(ctx, uuid.NewString(), in)
	if err != nil {
		return DoseLog{}, err
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return DoseLog{}, err
	}
	return l, nil
}

// Update reemplaza todos los campos (PUT).
func (s *Service) Update(ctx context.Context, id string, in CreateInput) (DoseLog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DoseLog{}, ErrNotFound
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return DoseLog{}, err
	}

	l, err := s.build(ctx, id, in)
	if err != nil {
		return DoseLog{}, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return DoseLog{}, err
	}
	return l, nil
}

func (s *Service) build(ctx context.Context, id string, in CreateInput) (DoseLog, error) {
	medID := strings.TrimSpace(in.MedicationID)
	if medID == "" {
		return DoseLog{}, fmt.Errorf("%w: medication is required", ErrInvalidInput)
	}
	if in.TakenAt.IsZero() {
		return DoseLog{}, fmt.Errorf("%w: taken_at is required", ErrInvalidInput)
	}

	// Integridad referencial al escribir, no de forma lazy.
	ok, err := s.meds.Exists(ctx, medID)
	if err != nil {
		return DoseLog{}, err
	}
	if !ok {
		return DoseLog{}, ErrMedicationNotFound
	}

	wasTaken := true
	if in.WasTaken != nil {
		wasTaken = *in.WasTaken
	}

	return DoseLog{
		ID:           id,
		MedicationID: medID,
		TakenAt:      in.TakenAt,
		WasTaken:     wasTaken,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (DoseLog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DoseLog{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, medicationID string) ([]DoseLog, error) {
	return s.repo.List(ctx, ListFilter{MedicationID: strings.TrimSpace(medicationID)})
}

// FilterByDate devuelve los logs cuya fecha calendario cae en [start, end],
// ordenados por taken_at asc. start/end vienen crudos del query string.
// El store acota por instantes; la selección final la hace FilterByDateRange.
func (s *Service) FilterByDate(ctx context.Context, start, end string) ([]DoseLog, error) {
	r, err := ParseDateRange(start, end)
	if err != nil {
		return nil, err
	}
	if r.Inverted() {
		return []DoseLog{}, nil
	}

	from, to := r.Bounds(s.loc)
	logs, err := s.repo.List(ctx, ListFilter{
		From:      &from,
		To:        &to,
		Ascending: true,
	})
	if err != nil {
		return nil, err
	}
	return FilterByDateRange(logs, r, s.loc), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
