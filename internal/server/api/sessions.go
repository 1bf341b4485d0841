package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/trainiq/internal/fitexport"
	"github.com/ayusman/trainiq/internal/store"
)

// SessionHandler serves the workout log.
type SessionHandler struct {
	store *store.Store
	log   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(s *store.Store, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{store: s, log: logger}
}

// Routes returns the router mounted at /api/sessions.
func (h *SessionHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/export.fit", h.export)
	return r
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

type sessionResponse struct {
	*store.Session
	Reps []store.Rep `json:"reps"`
}

// list handles GET /api/sessions?limit=.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		h.log.Error("listing sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

// get handles GET /api/sessions/{id} and includes the session's reps.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	sess, reps, ok := h.load(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, Reps: reps})
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.Sessions().Delete(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// export handles GET /api/sessions/{id}/export.fit.
func (h *SessionHandler) export(w http.ResponseWriter, r *http.Request) {
	sess, reps, ok := h.load(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := fitexport.Encode(&buf, sess, reps); err != nil {
		h.log.Error("encoding fit file", "session", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to export session")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.ant.fit")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="trainiq-%s.fit"`, sess.ID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *SessionHandler) load(w http.ResponseWriter, id string) (*store.Session, []store.Rep, bool) {
	sess, err := h.store.Sessions().Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return nil, nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return nil, nil, false
	}

	reps, err := h.store.Reps().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get reps")
		return nil, nil, false
	}
	if reps == nil {
		reps = []store.Rep{}
	}
	return sess, reps, true
}
