package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fittra/trailstack/internal/model"
	"github.com/fittra/trailstack/internal/store"
	"github.com/fittra/trailstack/internal/websocket"
)

type ItineraryHandler struct {
	itineraryStore *store.ItineraryStore
	hub            *websocket.Hub
	logger         *slog.Logger
}

func NewItineraryHandler(is *store.ItineraryStore, hub *websocket.Hub, logger *slog.Logger) *ItineraryHandler {
	return &ItineraryHandler{itineraryStore: is, hub: hub, logger: logger}
}

func (h *ItineraryHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type itineraryRequest struct {
	Location string `json:"location"`
	Activity string `json:"activity"`
	Time     string `json:"time"`
}

// ListByTrip handles GET /api/trips/{id}/itinerary
func (h *ItineraryHandler) ListByTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trip id"})
		return
	}

	items, err := h.itineraryStore.ListByTrip(tripID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list itinerary"})
		return
	}
	if items == nil {
		items = []model.ItineraryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// AddDay handles POST /api/trips/{id}/itinerary. The new day is appended
// after the current highest day number.
func (h *ItineraryHandler) AddDay(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trip id"})
		return
	}

	item, err := h.itineraryStore.AddDay(tripID)
	if err != nil {
		h.logger.Error("add itinerary day", "trip_id", tripID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add day"})
		return
	}

	h.broadcast(websocket.NewMessage("itinerary", "created", item.ID, nil))
	writeJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/itinerary/{id}. Day numbers are not editable;
// they only change through add and remove.
func (h *ItineraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.itineraryStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get itinerary item"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "itinerary item not found"})
		return
	}

	var req itineraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.itineraryStore.Update(id, req.Location, req.Activity, req.Time)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update itinerary item"})
		return
	}

	h.broadcast(websocket.NewMessage("itinerary", "updated", item.ID, nil))
	writeJSON(w, http.StatusOK, item)
}

// RemoveDay handles DELETE /api/itinerary/{id}. Later days shift down so
// the trip's days stay contiguous, and the updated list is returned.
func (h *ItineraryHandler) RemoveDay(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	items, err := h.itineraryStore.RemoveDay(id)
	if err != nil {
		h.logger.Error("remove itinerary day", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to remove day"})
		return
	}
	if items == nil {
		items = []model.ItineraryItem{}
	}

	h.broadcast(websocket.NewMessage("itinerary", "deleted", id, nil))
	writeJSON(w, http.StatusOK, items)
}
