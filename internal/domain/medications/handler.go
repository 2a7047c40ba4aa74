package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"medtracker/internal/domain/adherence"
	"medtracker/internal/domain/doselogs"
	"medtracker/internal/platform/respond"
	"medtracker/internal/platform/validation"
	"medtracker/internal/ports/druginfo"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Get("/", listMedicationsHandler(svc))
		mr.Post("/", createMedicationHandler(svc))

		mr.Route("/{medicationID}", func(ir chi.Router) {
			ir.Get("/", getMedicationHandler(svc))
			ir.Put("/", updateMedicationHandler(svc))
			ir.Delete("/", deleteMedicationHandler(svc))

			ir.Get("/info", drugInfoHandler(svc))
			ir.Get("/expected-doses", expectedDosesHandler(svc))
			ir.Get("/adherence", adherenceOverPeriodHandler(svc))
		})
	})
}

// medicationRequest es el cuerpo para crear o reemplazar un medicamento.
type medicationRequest struct {
	Name             string `json:"name" validate:"required,max=100"`
	DosageMg         *int   `json:"dosage_mg" validate:"required,min=0,max=2147483647"`
	PrescribedPerDay *int   `json:"prescribed_per_day" validate:"required,min=0,max=2147483647"` // tomas por día
}

// medicationResponse incluye la adherencia global calculada.
type medicationResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	DosageMg         int       `json:"dosage_mg"`
	PrescribedPerDay int       `json:"prescribed_per_day"`
	Adherence        float64   `json:"adherence"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type expectedDosesResponse struct {
	MedicationID  string `json:"medication_id"`
	Days          int    `json:"days"`
	ExpectedDoses int    `json:"expected_doses"`
}

type adherenceResponse struct {
	MedicationID string  `json:"medication_id"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Adherence    float64 `json:"adherence"`
}

// listMedicationsHandler godoc
// @Summary Listar medicamentos
// @Description Lista todos los medicamentos con su adherencia global (% de logs tomados).
// @Tags medications
// @Produce json
// @Success 200 {array} medicationResponse
// @Failure 500 {object} respond.ErrorBody
// @Router /medications/ [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListSummaries(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, lo.Map(items, func(s Summary, _ int) medicationResponse {
			return toMedicationResponse(s)
		}))
	}
}

// createMedicationHandler godoc
// @Summary Crear medicamento
// @Tags medications
// @Accept json
// @Produce json
// @Param payload body medicationRequest true "Datos del medicamento"
// @Success 201 {object} medicationResponse
// @Failure 400 {object} respond.ErrorBody
// @Router /medications/ [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeMedicationRequest(w, r)
		if !ok {
			return
		}

		m, err := svc.Create(r.Context(), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		// Recién creado: no tiene logs.
		respond.JSON(w, http.StatusCreated, toMedicationResponse(Summary{Medication: m}))
	}
}

// getMedicationHandler godoc
// @Summary Obtener medicamento
// @Tags medications
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Success 200 {object} medicationResponse
// @Failure 404 {object} respond.ErrorBody
// @Router /medications/{medicationID}/ [get]
func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.Summary(r.Context(), chi.URLParam(r, "medicationID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toMedicationResponse(sum))
	}
}

// updateMedicationHandler godoc
// @Summary Reemplazar medicamento
// @Tags medications
// @Accept json
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Param payload body medicationRequest true "Todos los campos del medicamento"
// @Success 200 {object} medicationResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Router /medications/{medicationID}/ [put]
func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "medicationID")
		// 404 antes que 400 para ids inexistentes.
		if _, err := svc.GetByID(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}

		in, ok := decodeMedicationRequest(w, r)
		if !ok {
			return
		}

		if _, err := svc.Update(r.Context(), id, in); err != nil {
			writeServiceError(w, err)
			return
		}
		sum, err := svc.Summary(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toMedicationResponse(sum))
	}
}

// deleteMedicationHandler godoc
// @Summary Borrar medicamento
// @Description Borra el medicamento junto con sus logs y notas.
// @Tags medications
// @Param medicationID path string true "ID del medicamento"
// @Success 204
// @Failure 404 {object} respond.ErrorBody
// @Router /medications/{medicationID}/ [delete]
func deleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "medicationID")); err != nil {
			writeServiceError(w, err)
			return
		}
		respond.NoContent(w)
	}
}

// drugInfoHandler godoc
// @Summary Información pública del fármaco
// @Description Consulta OpenFDA (drug label) por el nombre del medicamento.
// @Tags medications
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Success 200 {object} druginfo.Info
// @Failure 404 {object} respond.ErrorBody
// @Failure 502 {object} respond.ErrorBody
// @Router /medications/{medicationID}/info/ [get]
func drugInfoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.ExternalInfo(r.Context(), chi.URLParam(r, "medicationID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !res.OK() {
			respond.Error(w, http.StatusBadGateway, res.Err.Error())
			return
		}
		respond.JSON(w, http.StatusOK, res.Info)
	}
}

// expectedDosesHandler godoc
// @Summary Dosis esperadas
// @Description days * prescribed_per_day.
// @Tags medications
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Param days query int true "Cantidad de días (>= 0)"
// @Success 200 {object} expectedDosesResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Router /medications/{medicationID}/expected-doses/ [get]
func expectedDosesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "medicationID")

		raw := strings.TrimSpace(r.URL.Query().Get("days"))
		if raw == "" {
			respond.Error(w, http.StatusBadRequest, "Missing required query parameter 'days'.")
			return
		}
		days, err := strconv.Atoi(raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "Query parameter 'days' must be an integer.")
			return
		}

		n, err := svc.ExpectedDoses(r.Context(), id, days)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, expectedDosesResponse{
			MedicationID:  id,
			Days:          days,
			ExpectedDoses: n,
		})
	}
}

// adherenceOverPeriodHandler godoc
// @Summary Adherencia en un período
// @Description Tomas registradas en [start, end] sobre las esperadas por el esquema. Puede superar 100.
// @Tags medications
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Param start query string true "Fecha inicial YYYY-MM-DD"
// @Param end query string true "Fecha final YYYY-MM-DD"
// @Success 200 {object} adherenceResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Router /medications/{medicationID}/adherence/ [get]
func adherenceOverPeriodHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "medicationID")
		q := r.URL.Query()

		rng, rate, err := svc.AdherenceOverPeriod(r.Context(), id, q.Get("start"), q.Get("end"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, adherenceResponse{
			MedicationID: id,
			Start:        rng.Start.Format(doselogs.DateLayout),
			End:          rng.End.Format(doselogs.DateLayout),
			Adherence:    rate,
		})
	}
}

func decodeMedicationRequest(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid json")
		return Input{}, false
	}
	if err := validation.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return Input{}, false
	}

	return Input{
		Name:             req.Name,
		DosageMg:         *req.DosageMg,
		PrescribedPerDay: *req.PrescribedPerDay,
	}, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	var lookupErr *druginfo.Error
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(w, http.StatusNotFound, "medication not found")
	case errors.Is(err, ErrInvalidInput):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, doselogs.ErrInvalidDateRange):
		respond.Error(w, http.StatusBadRequest, doselogs.InvalidDateRangeMessage)
	case errors.Is(err, adherence.ErrInvalidArgument):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &lookupErr):
		respond.Error(w, http.StatusBadGateway, lookupErr.Error())
	default:
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toMedicationResponse(s Summary) medicationResponse {
	return medicationResponse{
		ID:               s.ID,
		Name:             s.Name,
		DosageMg:         s.DosageMg,
		PrescribedPerDay: s.PrescribedPerDay,
		Adherence:        s.Adherence,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}
