package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/trainiq/internal/app"
)

// TrainerHandler controls the live training session.
type TrainerHandler struct {
	trainer *app.Trainer
}

// NewTrainerHandler creates a TrainerHandler.
func NewTrainerHandler(t *app.Trainer) *TrainerHandler {
	return &TrainerHandler{trainer: t}
}

type selectExerciseRequest struct {
	Exercise string `json:"exercise"`
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// State handles GET /api/state.
func (h *TrainerHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.trainer.Summary())
}

// Stats handles GET /api/stats.
func (h *TrainerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.trainer.Stats())
}

// Reset handles POST /api/session/reset.
func (h *TrainerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.trainer.ResetSession()
	h.State(w, r)
}

// SelectExercise handles PUT /api/session/exercise.
func (h *TrainerHandler) SelectExercise(w http.ResponseWriter, r *http.Request) {
	var req selectExerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Exercise == "" {
		writeError(w, http.StatusBadRequest, "Exercise is required")
		return
	}

	if _, err := h.trainer.SelectExercise(req.Exercise); err != nil {
		if errors.Is(err, app.ErrUnknownExercise) {
			writeError(w, http.StatusNotFound, "Unknown exercise")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to select exercise")
		return
	}
	h.State(w, r)
}

// SetEnabled handles PUT /api/session/enabled.
func (h *TrainerHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "Enabled is required")
		return
	}
	h.trainer.SetEnabled(*req.Enabled)
	h.State(w, r)
}
