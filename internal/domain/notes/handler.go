package notes

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

// Las notas no se editan: PUT/PATCH responden 405 sin mirar el body.
const allowedDetailMethods = "GET, DELETE"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/notes", func(nr chi.Router) {
		nr.Get("/", listNotesHandler(svc))
		nr.Post("/", createNoteHandler(svc))

		nr.Get("/{noteID}", getNoteHandler(svc))
		nr.Delete("/{noteID}", deleteNoteHandler(svc))
		nr.Put("/{noteID}", updateNotAllowedHandler)
		nr.Patch("/{noteID}", updateNotAllowedHandler)
	})
}

type noteRequest struct {
	Medication string `json:"medication" validate:"required"`
	Text       string `json:"text" validate:"required"`
}

type noteResponse struct {
	ID         string    `json:"id"`
	Medication string    `json:"medication"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// listNotesHandler godoc
// @Summary Listar notas
// @Description Más recientes primero. Opcionalmente filtra por medicamento.
// @Tags notes
// @Produce json
// @Param medication query string false "ID del medicamento"
// @Success 200 {array} noteResponse
// @Router /notes/ [get]
func listNotesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), r.URL.Query().Get("medication"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, lo.Map(items, func(n Note, _ int) noteResponse {
			return toNoteResponse(n)
		}))
	}
}

// createNoteHandler godoc
// @Summary Crear nota
// @Tags notes
// @Accept json
// @Produce json
// @Param payload body noteRequest true "Nota"
// @Success 201 {object} noteResponse
// @Failure 400 {object} respond.ErrorBody
// @Router /notes/ [post]
func createNoteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req noteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := validation.Struct(req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		n, err := svc.Create(r.Context(), CreateInput{MedicationID: req.Medication, Text: req.Text})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toNoteResponse(n))
	}
}

// getNoteHandler godoc
// @Summary Obtener nota
// @Tags notes
// @Produce json
// @Param noteID path string true "ID de la nota"
// @Success 200 {object} noteResponse
// @Failure 404 {object} respond.ErrorBody
// @Router /notes/{noteID}/ [get]
func getNoteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.GetByID(r.Context(), chi.URLParam(r, "noteID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toNoteResponse(n))
	}
}

// deleteNoteHandler godoc
// @Summary Borrar nota
// @Tags notes
// @Param noteID path string true "ID de la nota"
// @Success 204
// @Failure 404 {object} respond.ErrorBody
// @Router /notes/{noteID}/ [delete]
func deleteNoteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "noteID")); err != nil {
			writeServiceError(w, err)
			return
		}
		respond.NoContent(w)
	}
}

// updateNotAllowedHandler godoc
// @Summary Editar nota (no permitido)
// @Tags notes
// @Param noteID path string true "ID de la nota"
// @Failure 405 {object} respond.ErrorBody
// @Router /notes/{noteID}/ [put]
// @Router /notes/{noteID}/ [patch]
var updateNotAllowedHandler = respond.MethodNotAllowed(allowedDetailMethods)

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMedicationNotFound):
		respond.Error(w, http.StatusBadRequest, "medication: object does not exist")
	case errors.Is(err, ErrInvalidInput):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(w, http.StatusNotFound, "note not found")
	default:
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toNoteResponse(n Note) noteResponse {
	return noteResponse{
		ID:         n.ID,
		Medication: n.MedicationID,
		Text:       n.Text,
		CreatedAt:  n.CreatedAt,
	}
}
