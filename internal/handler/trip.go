package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fittra/trailstack/internal/auth"
	"github.com/fittra/trailstack/internal/model"
	"github.com/fittra/trailstack/internal/store"
	"github.com/fittra/trailstack/internal/trip"
	"github.com/fittra/trailstack/internal/websocket"
)

type TripHandler struct {
	tripStore  *store.TripStore
	gearStore  *store.GearStore
	duplicator *trip.Duplicator
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewTripHandler(ts *store.TripStore, gs *store.GearStore, dup *trip.Duplicator, hub *websocket.Hub, logger *slog.Logger) *TripHandler {
	return &TripHandler{tripStore: ts, gearStore: gs, duplicator: dup, hub: hub, logger: logger}
}

func (h *TripHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type tripRequest struct {
	Title     string `json:"title"`
	Location  string `json:"location"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r *tripRequest) dates() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return
	}
	end, err = time.Parse("2006-01-02", r.EndDate)
	return
}

// ListUpcoming handles GET /api/trips/upcoming
// List handles GET /api/trips, returning every trip with its stats.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	trips, err := h.tripStore.ListAllWithStats()
	if err != nil {
		h.logger.Error("list trips", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list trips"})
		return
	}
	if trips == nil {
		trips = []model.TripWithStats{}
	}
	writeJSON(w, http.StatusOK, trips)
}

func (h *TripHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	trips, err := h.tripStore.ListUpcomingWithStats(time.Now().UTC())
	if err != nil {
		h.logger.Error("list upcoming trips", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list trips"})
		return
	}
	if trips == nil {
		trips = []model.TripWithStats{}
	}
	writeJSON(w, http.StatusOK, trips)
}

// ListPast handles GET /api/trips/past
func (h *TripHandler) ListPast(w http.ResponseWriter, r *http.Request) {
	trips, err := h.tripStore.ListPastWithStats(time.Now().UTC())
	if err != nil {
		h.logger.Error("list past trips", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list trips"})
		return
	}
	if trips == nil {
		trips = []model.TripWithStats{}
	}
	writeJSON(w, http.StatusOK, trips)
}

// Get handles GET /api/trips/{id}
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	t, err := h.tripStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get trip"})
		return
	}
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "trip not found"})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Create handles POST /api/trips
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	start, end, err := req.dates()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dates must be YYYY-MM-DD"})
		return
	}
	if end.Before(start) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date before start_date"})
		return
	}

	t, err := h.tripStore.Create(req.Title, req.Location, start, end, auth.Role(r.Context()))
	if err != nil {
		h.logger.Error("create trip", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create trip"})
		return
	}

	h.broadcast(websocket.NewMessage("trip", "created", t.ID, nil))
	writeJSON(w, http.StatusCreated, t)
}

// Update handles PUT /api/trips/{id}
func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.tripStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get trip"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "trip not found"})
		return
	}

	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	start, end, err := req.dates()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dates must be YYYY-MM-DD"})
		return
	}
	if end.Before(start) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date before start_date"})
		return
	}

	t, err := h.tripStore.Update(id, req.Title, req.Location, start, end, auth.Role(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update trip"})
		return
	}

	h.broadcast(websocket.NewMessage("trip", "updated", t.ID, nil))
	writeJSON(w, http.StatusOK, t)
}

// Delete handles DELETE /api/trips/{id}
func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.tripStore.Delete(id); err != nil {
		h.logger.Error("delete trip", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete trip"})
		return
	}

	h.broadcast(websocket.NewMessage("trip", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Duplicate handles POST /api/trips/{id}/duplicate
func (h *TripHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	h.broadcast(websocket.NewMessage("trip", "duplicating", id, nil))

	newID, err := h.duplicator.Duplicate(r.Context(), id)
	if err != nil {
		if errors.Is(err, trip.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "trip not found"})
			return
		}
		h.logger.Error("duplicate trip", "trip_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to duplicate trip"})
		return
	}

	t, err := h.tripStore.GetByID(newID)
	if err != nil || t == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load duplicated trip"})
		return
	}

	h.broadcast(websocket.NewMessage("trip", "duplicated", newID, nil))
	writeJSON(w, http.StatusCreated, t)
}

// Summary handles GET /api/trips/{id}/summary, returning packing progress.
func (h *TripHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	t, err := h.tripStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get trip"})
		return
	}
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "trip not found"})
		return
	}

	packed, total, err := h.gearStore.CountsByTrip(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to count gear"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trip":        t,
		"gear_packed": packed,
		"gear_total":  total,
	})
}
