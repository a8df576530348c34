package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fittra/trailstack/internal/auth"
	"github.com/fittra/trailstack/internal/blob"
	"github.com/fittra/trailstack/internal/model"
	"github.com/fittra/trailstack/internal/store"
	"github.com/fittra/trailstack/internal/websocket"
)

const maxPhotoSize = 10 << 20 // 10 MiB

type GearHandler struct {
	gearStore *store.GearStore
	blobs     blob.Store
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewGearHandler(gs *store.GearStore, blobs blob.Store, hub *websocket.Hub, logger *slog.Logger) *GearHandler {
	return &GearHandler{gearStore: gs, blobs: blobs, hub: hub, logger: logger}
}

func (h *GearHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type gearRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Available int    `json:"available"`
	Condition string `json:"condition"`
	Notes     string `json:"notes"`
}

func (h *GearHandler) withPhotoURL(g *model.Gear) *model.Gear {
	if g != nil && g.PhotoKey != "" {
		g.PhotoURL = h.blobs.PublicURL(g.PhotoKey)
	}
	return g
}

// List handles GET /api/gear
func (h *GearHandler) List(w http.ResponseWriter, r *http.Request) {
	gear, err := h.gearStore.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list gear"})
		return
	}
	if gear == nil {
		gear = []model.Gear{}
	}
	for i := range gear {
		h.withPhotoURL(&gear[i])
	}
	writeJSON(w, http.StatusOK, gear)
}

// Get handles GET /api/gear/{id}
func (h *GearHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	g, err := h.gearStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get gear"})
		return
	}
	if g == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "gear not found"})
		return
	}
	writeJSON(w, http.StatusOK, h.withPhotoURL(g))
}

// Create handles POST /api/gear
func (h *GearHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req gearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Condition == "" {
		req.Condition = model.ConditionGood
	}
	if !model.ValidCondition(req.Condition) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid condition"})
		return
	}
	if req.Quantity < 0 || req.Available < 0 || req.Available > req.Quantity {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
		return
	}

	g, err := h.gearStore.Create(req.Name, req.Type, req.Quantity, req.Available, req.Condition, req.Notes, auth.Role(r.Context()))
	if err != nil {
		h.logger.Error("create gear", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create gear"})
		return
	}

	h.broadcast(websocket.NewMessage("gear", "created", g.ID, nil))
	writeJSON(w, http.StatusCreated, g)
}

// Update handles PUT /api/gear/{id}
func (h *GearHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.gearStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get gear"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "gear not found"})
		return
	}

	var req gearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if !model.ValidCondition(req.Condition) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid condition"})
		return
	}
	if req.Quantity < 0 || req.Available < 0 || req.Available > req.Quantity {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
		return
	}

	g, err := h.gearStore.Update(id, req.Name, req.Type, req.Quantity, req.Available, req.Condition, req.Notes, auth.Role(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update gear"})
		return
	}

	h.broadcast(websocket.NewMessage("gear", "updated", g.ID, nil))
	writeJSON(w, http.StatusOK, h.withPhotoURL(g))
}

// Delete handles DELETE /api/gear/{id}. The photo blob, if any, is removed
// best-effort before the row.
func (h *GearHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	g, err := h.gearStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get gear"})
		return
	}
	if g == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "gear not found"})
		return
	}

	if g.PhotoKey != "" {
		if err := h.blobs.Remove(r.Context(), g.PhotoKey); err != nil {
			h.logger.Warn("remove gear photo", "key", g.PhotoKey, "error", err)
		}
	}

	if err := h.gearStore.Delete(id); err != nil {
		h.logger.Error("delete gear", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete gear"})
		return
	}

	h.broadcast(websocket.NewMessage("gear", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto handles POST /api/gear/{id}/photo with a multipart "photo" field.
func (h *GearHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	g, err := h.gearStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get gear"})
		return
	}
	if g == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "gear not found"})
		return
	}

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "photo file is required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "photo must be an image"})
		return
	}

	key := fmt.Sprintf("gear/%d/%d-%s", id, time.Now().UnixMilli(), header.Filename)
	if err := h.blobs.Put(r.Context(), key, file, contentType); err != nil {
		h.logger.Error("upload gear photo", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store photo"})
		return
	}

	// Replace drops the old photo; no reason to keep orphaned blobs around.
	if g.PhotoKey != "" {
		if err := h.blobs.Remove(r.Context(), g.PhotoKey); err != nil {
			h.logger.Warn("remove old gear photo", "key", g.PhotoKey, "error", err)
		}
	}

	updated, err := h.gearStore.SetPhotoKey(id, key)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save photo key"})
		return
	}

	h.broadcast(websocket.NewMessage("gear", "updated", id, nil))
	writeJSON(w, http.StatusOK, h.withPhotoURL(updated))
}

// DeletePhoto handles DELETE /api/gear/{id}/photo.
func (h *GearHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	g, err := h.gearStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get gear"})
		return
	}
	if g == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "gear not found"})
		return
	}
	if g.PhotoKey == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.blobs.Remove(r.Context(), g.PhotoKey); err != nil {
		h.logger.Warn("remove gear photo", "key", g.PhotoKey, "error", err)
	}
	if _, err := h.gearStore.SetPhotoKey(id, ""); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear photo key"})
		return
	}

	h.broadcast(websocket.NewMessage("gear", "updated", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type gearItemRequest struct {
	GearID     int64  `json:"gear_id"`
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
}

// ListItems handles GET /api/trips/{id}/gear
func (h *GearHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trip id"})
		return
	}

	items, err := h.gearStore.ListItemsByTrip(tripID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list gear items"})
		return
	}
	if items == nil {
		items = []model.TripGearItem{}
	}
	for i := range items {
		h.withPhotoURL(items[i].Gear)
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateItem handles POST /api/trips/{id}/gear. New checklist rows always
// start Pending.
func (h *GearHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trip id"})
		return
	}

	var req gearItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.GearID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "gear_id is required"})
		return
	}

	g, err := h.gearStore.GetByID(req.GearID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get gear"})
		return
	}
	if g == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "gear does not exist"})
		return
	}

	item, err := h.gearStore.CreateItem(tripID, req.GearID, req.AssignedTo)
	if err != nil {
		h.logger.Error("create gear item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create gear item"})
		return
	}

	h.broadcast(websocket.NewMessage("gear_item", "created", item.ID, nil))
	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /api/gear-items/{id}, toggling packed status or
// reassigning the item.
func (h *GearHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.gearStore.GetItemByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get gear item"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "gear item not found"})
		return
	}

	var req gearItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Status == "" {
		req.Status = existing.Status
	}
	if !model.ValidGearStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}
	if req.AssignedTo == "" {
		req.AssignedTo = existing.AssignedTo
	}

	item, err := h.gearStore.UpdateItem(id, req.Status, req.AssignedTo)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update gear item"})
		return
	}

	h.broadcast(websocket.NewMessage("gear_item", "updated", item.ID, nil))
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/gear-items/{id}
func (h *GearHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.gearStore.DeleteItem(id); err != nil {
		h.logger.Error("delete gear item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete gear item"})
		return
	}

	h.broadcast(websocket.NewMessage("gear_item", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
