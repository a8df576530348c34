package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/fittra/trailstack/internal/model"
	"github.com/fittra/trailstack/internal/store"
	"github.com/fittra/trailstack/internal/websocket"
)

type ParticipantHandler struct {
	participantStore *store.ParticipantStore
	hub              *websocket.Hub
	logger           *slog.Logger
}

func NewParticipantHandler(ps *store.ParticipantStore, hub *websocket.Hub, logger *slog.Logger) *ParticipantHandler {
	return &ParticipantHandler{participantStore: ps, hub: hub, logger: logger}
}

func (h *ParticipantHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type participantRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// ListByTrip handles GET /api/trips/{id}/participants
func (h *ParticipantHandler) ListByTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trip id"})
		return
	}

	participants, err := h.participantStore.ListByTrip(tripID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list participants"})
		return
	}
	if participants == nil {
		participants = []model.Participant{}
	}
	writeJSON(w, http.StatusOK, participants)
}

// Create handles POST /api/trips/{id}/participants
func (h *ParticipantHandler) Create(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trip id"})
		return
	}

	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Name == model.Unassigned {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is reserved"})
		return
	}

	p, err := h.participantStore.Create(tripID, req.Name, req.Role)
	if err != nil {
		h.logger.Error("create participant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create participant"})
		return
	}

	h.broadcast(websocket.NewMessage("participant", "created", p.ID, nil))
	writeJSON(w, http.StatusCreated, p)
}

// Update handles PUT /api/participants/{id}. Renaming a participant also
// rewrites their gear assignments to the new name.
func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.participantStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get participant"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "participant not found"})
		return
	}

	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Name == model.Unassigned {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is reserved"})
		return
	}

	p, err := h.participantStore.Update(id, req.Name, req.Role)
	if err != nil {
		h.logger.Error("update participant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update participant"})
		return
	}

	h.broadcast(websocket.NewMessage("participant", "updated", p.ID, nil))
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/participants/{id}. The participant's gear
// assignments revert to unassigned.
func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.participantStore.Delete(id); err != nil {
		h.logger.Error("delete participant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete participant"})
		return
	}

	h.broadcast(websocket.NewMessage("participant", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
