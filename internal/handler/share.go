package handler

import (
	"log/slog"
	"net/http"

	"github.com/skip2/go-qrcode"
	"golang.org/x/sync/errgroup"

	"github.com/fittra/trailstack/internal/model"
	"github.com/fittra/trailstack/internal/store"
)

type ShareHandler struct {
	shareStore       *store.ShareStore
	tripStore        *store.TripStore
	participantStore *store.ParticipantStore
	itineraryStore   *store.ItineraryStore
	gearStore        *store.GearStore
	contactStore     *store.ContactStore
	documentStore    *store.DocumentStore
	baseURL          string
	logger           *slog.Logger
}

func NewShareHandler(
	ss *store.ShareStore,
	ts *store.TripStore,
	ps *store.ParticipantStore,
	is *store.ItineraryStore,
	gs *store.GearStore,
	cs *store.ContactStore,
	ds *store.DocumentStore,
	baseURL string,
	logger *slog.Logger,
) *ShareHandler {
	return &ShareHandler{
		shareStore:       ss,
		tripStore:        ts,
		participantStore: ps,
		itineraryStore:   is,
		gearStore:        gs,
		contactStore:     cs,
		documentStore:    ds,
		baseURL:          baseURL,
		logger:           logger,
	}
}

// Create handles POST /api/trips/{id}/share. Repeated calls return the same
// link; a trip has at most one share token.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trip id"})
		return
	}

	t, err := h.tripStore.GetByID(tripID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get trip"})
		return
	}
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "trip not found"})
		return
	}

	share, err := h.shareStore.GetOrCreate(tripID)
	if err != nil {
		h.logger.Error("create share", "trip_id", tripID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create share"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token": share.Token,
		"url":   h.baseURL + "/share/" + share.Token,
	})
}

// Revoke handles DELETE /api/trips/{id}/share.
func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trip id"})
		return
	}

	if err := h.shareStore.Delete(tripID); err != nil {
		h.logger.Error("revoke share", "trip_id", tripID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to revoke share"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /share/{token}, the unauthenticated read-only trip view.
func (h *ShareHandler) Get(w http.ResponseWriter, r *http.Request) {
	share, t := h.resolve(w, r)
	if share == nil {
		return
	}

	var shared model.SharedTrip
	shared.Trip = *t

	g, _ := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		shared.Participants, err = h.participantStore.ListByTrip(share.TripID)
		return
	})
	g.Go(func() (err error) {
		shared.Itinerary, err = h.itineraryStore.ListByTrip(share.TripID)
		return
	})
	g.Go(func() (err error) {
		shared.GearItems, err = h.gearStore.ListItemsByTrip(share.TripID)
		return
	})
	g.Go(func() (err error) {
		shared.EmergencyContacts, err = h.contactStore.ListByTrip(share.TripID)
		return
	})
	g.Go(func() (err error) {
		shared.Documents, err = h.documentStore.ListByTrip(share.TripID)
		return
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load shared trip", "trip_id", share.TripID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load trip"})
		return
	}

	writeJSON(w, http.StatusOK, shared)
}

// QR handles GET /share/{token}/qr.png, a QR code pointing at the share URL.
func (h *ShareHandler) QR(w http.ResponseWriter, r *http.Request) {
	share, _ := h.resolve(w, r)
	if share == nil {
		return
	}

	png, err := qrcode.Encode(h.baseURL+"/share/"+share.Token, qrcode.Medium, 256)
	if err != nil {
		h.logger.Error("encode share QR", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate QR code"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// resolve looks up the share token and its trip, writing the error response
// itself when either is missing.
func (h *ShareHandler) resolve(w http.ResponseWriter, r *http.Request) (*model.TripShare, *model.Trip) {
	token := r.PathValue("token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return nil, nil
	}

	share, err := h.shareStore.GetByToken(token)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to look up share"})
		return nil, nil
	}
	if share == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "share link not found"})
		return nil, nil
	}

	t, err := h.tripStore.GetByID(share.TripID)
	if err != nil || t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "trip not found"})
		return nil, nil
	}

	return share, t
}
