package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"werewolf-arena/internal/app/arena"
	"werewolf-arena/internal/game"
	"werewolf-arena/internal/registry"
)

type SessionHandlers struct {
	svc *arena.Service
}

func NewSessionHandlers(svc *arena.Service) *SessionHandlers {
	return &SessionHandlers{svc: svc}
}

type createSessionRequest struct {
	SessionID string           `json:"session_id,omitempty"`
	Seats     []game.SeatSetup `json:"seats"`
}

type createSessionResponse struct {
	SessionID string      `json:"session_id"`
	Status    game.Status `json:"status"`
	SeatCount int         `json:"seat_count"`
}

func (h *SessionHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		sess, err := h.svc.Create(req.SessionID, req.Seats)
		if err != nil {
			switch {
			case errors.Is(err, registry.ErrAtCapacity):
				writeError(w, http.StatusServiceUnavailable, err.Error())
			case errors.Is(err, registry.ErrExists):
				writeError(w, http.StatusConflict, err.Error())
			case game.IsValidationError(err):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		writeJSON(w, http.StatusCreated, createSessionResponse{
			SessionID: sess.ID,
			Status:    sess.Status,
			SeatCount: len(sess.Seats),
		})
	}
}

func (h *SessionHandlers) Step() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "session_id")
		resp, err := h.svc.Step(r.Context(), id)
		if err != nil {
			writeStepError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type actionRequest struct {
	Kind   game.ActionKind `json:"action_kind"`
	Target int             `json:"target,omitempty"`
	Text   string          `json:"text,omitempty"`
}

type actionResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	State   arena.StepResponse `json:"state"`
}

func (h *SessionHandlers) Action() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "session_id")
		seatID, err := strconv.Atoi(chi.URLParam(r, "seat_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_seat_id")
			return
		}
		var req actionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Apply(r.Context(), id, seatID, req.Kind, req.Target, req.Text)
		if err != nil {
			writeStepError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, actionResponse{Success: true, State: resp})
	}
}

func (h *SessionHandlers) State() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "session_id")
		seatID, err := strconv.Atoi(r.URL.Query().Get("seat"))
		if err != nil || seatID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_seat")
			return
		}
		view, err := h.svc.View(id, seatID)
		if err != nil {
			if arena.IsNotFound(err) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (h *SessionHandlers) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "session_id")
		if !h.svc.Delete(id) {
			writeError(w, http.StatusNotFound, "session_not_found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// writeStepError maps the engine's error taxonomy onto HTTP statuses:
// validation errors are the caller's to fix, state machine faults are ours.
func writeStepError(w http.ResponseWriter, err error) {
	switch {
	case arena.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case game.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
