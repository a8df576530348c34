package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fittra/trailstack/internal/model"
	"github.com/fittra/trailstack/internal/store"
	"github.com/fittra/trailstack/internal/websocket"
)

type ContactHandler struct {
	contactStore *store.ContactStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewContactHandler(cs *store.ContactStore, hub *websocket.Hub, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contactStore: cs, hub: hub, logger: logger}
}

func (h *ContactHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type contactRequest struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contact_number"`
	Type          string `json:"type"`
}

func (r *contactRequest) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.ContactNumber = strings.TrimSpace(r.ContactNumber)
	if r.Name == "" {
		return "name is required"
	}
	if r.ContactNumber == "" {
		return "contact_number is required"
	}
	if !model.ValidContactType(r.Type) {
		return "invalid contact type"
	}
	return ""
}

// ListByTrip handles GET /api/trips/{id}/contacts
func (h *ContactHandler) ListByTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trip id"})
		return
	}

	contacts, err := h.contactStore.ListByTrip(tripID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list contacts"})
		return
	}
	if contacts == nil {
		contacts = []model.EmergencyContact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

// Create handles POST /api/trips/{id}/contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trip id"})
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	c, err := h.contactStore.Create(tripID, req.Name, req.ContactNumber, req.Type)
	if err != nil {
		h.logger.Error("create contact", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create contact"})
		return
	}

	h.broadcast(websocket.NewMessage("contact", "created", c.ID, nil))
	writeJSON(w, http.StatusCreated, c)
}

// Update handles PUT /api/contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.contactStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get contact"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "contact not found"})
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	c, err := h.contactStore.Update(id, req.Name, req.ContactNumber, req.Type)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update contact"})
		return
	}

	h.broadcast(websocket.NewMessage("contact", "updated", c.ID, nil))
	writeJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/contacts/{id}
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.contactStore.Delete(id); err != nil {
		h.logger.Error("delete contact", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete contact"})
		return
	}

	h.broadcast(websocket.NewMessage("contact", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
