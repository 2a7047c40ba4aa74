package doselogs

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"medtracker/internal/platform/respond"
	"medtracker/internal/platform/validation"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/logs", func(lr chi.Router) {
		lr.Get("/", listDoseLogsHandler(svc))
		lr.Post("/", createDoseLogHandler(svc))

		// Ruta estática antes que /{logID}
		lr.Get("/filter", filterDoseLogsHandler(svc))

		lr.Get("/{logID}", getDoseLogHandler(svc))
		lr.Put("/{logID}", updateDoseLogHandler(svc))
		lr.Delete("/{logID}", deleteDoseLogHandler(svc))
	})
}

// doseLogRequest es el cuerpo para crear o reemplazar un log.
type doseLogRequest struct {
	Medication string     `json:"medication" validate:"required"`
	TakenAt    *time.Time `json:"taken_at" validate:"required"` // RFC3339
	WasTaken   *bool      `json:"was_taken"`                    // opcional, default true
}

// doseLogResponse representa un log de toma devuelto por la API.
type doseLogResponse struct {
	ID         string    `json:"id"`
	Medication string    `json:"medication"`
	TakenAt    time.Time `json:"taken_at"`
	WasTaken   bool      `json:"was_taken"`
}

// listDoseLogsHandler godoc
// @Summary Listar logs de tomas
// @Description Lista todos los logs ordenados por taken_at desc. Opcionalmente filtra por medicamento.
// @Tags logs
// @Produce json
// @Param medication query string false "ID del medicamento"
// @Success 200 {array} doseLogResponse
// @Failure 500 {object} respond.ErrorBody
// @Router /logs/ [get]
func listDoseLogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), r.URL.Query().Get("medication"))
		if err != nil {
			respond.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		respond.JSON(w, http.StatusOK, toDoseLogResponses(items))
	}
}

// createDoseLogHandler godoc
// @Summary Registrar toma
// @Description Crea un log de toma. `medication` debe referenciar un medicamento existente.
// @Tags logs
// @Accept json
// @Produce json
// @Param payload body doseLogRequest true "Datos del log; taken_at en RFC3339"
// @Success 201 {object} doseLogResponse
// @Failure 400 {object} respond.ErrorBody
// @Router /logs/ [post]
func createDoseLogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeDoseLogRequest(w, r)
		if !ok {
			return
		}

		l, err := svc.Create(r.Context(), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toDoseLogResponse(l))
	}
}

// filterDoseLogsHandler godoc
// @Summary Filtrar logs por rango de fechas
// @Description Devuelve los logs cuya fecha de taken_at cae en [start, end] (inclusive), ordenados por taken_at asc. Un rango invertido devuelve lista vacía.
// @Tags logs
// @Produce json
// @Param start query string true "Fecha inicial YYYY-MM-DD"
// @Param end query string true "Fecha final YYYY-MM-DD"
// @Success 200 {array} doseLogResponse
// @Failure 400 {object} respond.ErrorBody
// @Router /logs/filter/ [get]
func filterDoseLogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := svc.FilterByDate(r.Context(), q.Get("start"), q.Get("end"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toDoseLogResponses(items))
	}
}

// getDoseLogHandler godoc
// @Summary Obtener log
// @Tags logs
// @Produce json
// @Param logID path string true "ID del log"
// @Success 200 {object} doseLogResponse
// @Failure 404 {object} respond.ErrorBody
// @Router /logs/{logID}/ [get]
func getDoseLogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := svc.GetByID(r.Context(), chi.URLParam(r, "logID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toDoseLogResponse(l))
	}
}

// updateDoseLogHandler godoc
// @Summary Reemplazar log
// @Tags logs
// @Accept json
// @Produce json
// @Param logID path string true "ID del log"
// @Param payload body doseLogRequest true "Todos los campos del log"
// @Success 200 {object} doseLogResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Router /logs/{logID}/ [put]
func updateDoseLogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeDoseLogRequest(w, r)
		if !ok {
			return
		}

		l, err := svc.Update(r.Context(), chi.URLParam(r, "logID"), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toDoseLogResponse(l))
	}
}

// deleteDoseLogHandler godoc
// @Summary Borrar log
// @Tags logs
// @Param logID path string true "ID del log"
// @Success 204
// @Failure 404 {object} respond.ErrorBody
// @Router /logs/{logID}/ [delete]
func deleteDoseLogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "logID")); err != nil {
			writeServiceError(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func decodeDoseLogRequest(w http.ResponseWriter, r *http.Request) (CreateInput, bool) {
	var req doseLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid json")
		return CreateInput{}, false
	}
	if err := validation.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return CreateInput{}, false
	}

	return CreateInput{
		MedicationID: req.Medication,
		TakenAt:      *req.TakenAt,
		WasTaken:     req.WasTaken,
	}, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidDateRange):
		respond.Error(w, http.StatusBadRequest, InvalidDateRangeMessage)
	case errors.Is(err, ErrMedicationNotFound):
		respond.Error(w, http.StatusBadRequest, "medication: object does not exist")
	case errors.Is(err, ErrInvalidInput):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(w, http.StatusNotFound, "dose log not found")
	default:
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toDoseLogResponses(items []DoseLog) []doseLogResponse {
	return lo.Map(items, func(l DoseLog, _ int) doseLogResponse {
		return toDoseLogResponse(l)
	})
}

func toDoseLogResponse(l DoseLog) doseLogResponse {
	return doseLogResponse{
		ID:         l.ID,
		Medication: l.MedicationID,
		TakenAt:    l.TakenAt,
		WasTaken:   l.WasTaken,
	}
}
