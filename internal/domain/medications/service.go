package medications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"medtracker/internal/domain/adherence"
	"medtracker/internal/domain/doselogs"
	"medtracker/internal/ports/druginfo"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("medication not found")
)

type Service struct {
	repo  Repository
	logs  DoseLogReader
	drugs druginfo.Lookup
	loc   *time.Location
	now   func() time.Time
}

func NewService(repo Repository, logs DoseLogReader, drugs druginfo.Lookup, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:  repo,
		logs:  logs,
		drugs: drugs,
		loc:   loc,
		now:   time.Now,
	}
}

type Input struct {
	Name             string
	DosageMg         int
	PrescribedPerDay int
}

func (in Input) validate() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Name) > MaxNameLength {
		return in, fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, MaxNameLength)
	}
	if in.DosageMg < 0 || in.DosageMg > MaxCount {
		return in, fmt.Errorf("%w: dosage_mg must be between 0 and %d", ErrInvalidInput, MaxCount)
	}
	if in.PrescribedPerDay < 0 || in.PrescribedPerDay > MaxCount {
		return in, fmt.Errorf("%w: prescribed_per_day must be between 0 and %d", ErrInvalidInput, MaxCount)
	}
	return in, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Medication, error) {
	in, err := in.validate()
	if err != nil {
		return Medication{}, err
	}

	now := s.now().UTC()
	m := Medication{
		ID:               uuid.NewString(),
		Name:             in.Name,
		DosageMg:         in.DosageMg,
		PrescribedPerDay: in.PrescribedPerDay,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// Update reemplaza todos los campos editables (PUT).
func (s *Service) Update(ctx context.Context, id string, in Input) (Medication, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}
	in, err = in.validate()
	if err != nil {
		return Medication{}, err
	}

	current.Name = in.Name
	current.DosageMg = in.DosageMg
	current.PrescribedPerDay = in.PrescribedPerDay
	current.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, current); err != nil {
		return Medication{}, err
	}
	return current, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Medication, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Exists implementa doselogs.MedicationChecker y notes.MedicationChecker.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.GetByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Summary devuelve el medicamento con su adherencia global.
func (s *Service) Summary(ctx context.Context, id string) (Summary, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	logs, err := s.logsOf(ctx, m.ID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Medication: m, Adherence: adherence.Rate(logs)}, nil
}

// ListSummaries lista todos los medicamentos con su adherencia.
// Lee los logs una sola vez y los agrupa por medicamento.
func (s *Service) ListSummaries(ctx context.Context) ([]Summary, error) {
	meds, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.logs.List(ctx, doselogs.ListFilter{})
	if err != nil {
		return nil, err
	}

	byMed := lo.GroupBy(all, func(l doselogs.DoseLog) string { return l.MedicationID })
	return lo.Map(meds, func(m Medication, _ int) Summary {
		return Summary{Medication: m, Adherence: adherence.Rate(byMed[m.ID])}
	}), nil
}

func (s *Service) AdherenceRate(ctx context.Context, id string) (float64, error) {
	sum, err := s.Summary(ctx, id)
	if err != nil {
		return 0, err
	}
	return sum.Adherence, nil
}

func (s *Service) ExpectedDoses(ctx context.Context, id string, days int) (int, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return adherence.ExpectedDoses(days, m.PrescribedPerDay)
}

// AdherenceOverPeriod calcula la adherencia entre start y end (YYYY-MM-DD, inclusive).
// Devuelve doselogs.ErrInvalidDateRange si alguna fecha falta o no parsea
// y adherence.ErrInvalidArgument si el rango está invertido.
func (s *Service) AdherenceOverPeriod(ctx context.Context, id, start, end string) (doselogs.DateRange, float64, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return doselogs.DateRange{}, 0, err
	}
	r, err := doselogs.ParseDateRange(start, end)
	if err != nil {
		return doselogs.DateRange{}, 0, err
	}
	if r.Inverted() {
		_, err := adherence.RateOverPeriod(nil, r, m.PrescribedPerDay, s.loc)
		return r, 0, err
	}

	from, to := r.Bounds(s.loc)
	logs, err := s.logs.List(ctx, doselogs.ListFilter{MedicationID: m.ID, From: &from, To: &to})
	if err != nil {
		return doselogs.DateRange{}, 0, err
	}
	rate, err := adherence.RateOverPeriod(logs, r, m.PrescribedPerDay, s.loc)
	return r, rate, err
}

// ExternalInfo consulta la ficha pública del medicamento por su nombre.
// Sólo falla si el medicamento no existe; los errores del lookup van en Result.Err.
func (s *Service) ExternalInfo(ctx context.Context, id string) (druginfo.Result, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return druginfo.Result{}, err
	}
	if s.drugs == nil {
		return druginfo.Result{Err: druginfo.Upstream("drug info lookup not configured", nil)}, nil
	}

	info, err := s.drugs.GetDrugInfo(ctx, m.Name)
	if err != nil {
		return druginfo.Result{Err: err}, nil
	}
	return druginfo.Result{Info: info}, nil
}

func (s *Service) logsOf(ctx context.Context, medicationID string) ([]doselogs.DoseLog, error) {
	return s.logs.List(ctx, doselogs.ListFilter{MedicationID: medicationID})
}
