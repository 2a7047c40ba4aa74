package notes

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
	ErrNotFound           = errors.New("note not found")
	ErrMedicationNotFound = errors.New("medication does not exist")
)

type Service struct {
	repo Repository
	meds MedicationChecker
	now  func() time.Time
}

func NewService(repo Repository, meds MedicationChecker) *Service {
	return &Service{
		repo: repo,
		meds: meds,
		now:  time.Now,
	}
}

type CreateInput struct {
	MedicationID string
	Text         string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Note, error) {
	medID := strings.TrimSpace(in.MedicationID)
	if medID == "" {
		return Note{}, fmt.Errorf("%w: medication is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Text) == "" {
		return Note{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	ok, err := s.meds.Exists(ctx, medID)
	if err != nil {
		return Note{}, err
	}
	if !ok {
		return Note{}, ErrMedicationNotFound
	}

	n := Note{
		ID:           uuid.NewString(),
		MedicationID: medID,
		Text:         in.Text,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return Note{}, err
	}
	return n, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Note, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Note{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, medicationID string) ([]Note, error) {
	return s.repo.List(ctx, strings.TrimSpace(medicationID))
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
