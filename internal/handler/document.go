package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fittra/trailstack/internal/blob"
	"github.com/fittra/trailstack/internal/model"
	"github.com/fittra/trailstack/internal/store"
	"github.com/fittra/trailstack/internal/trip"
	"github.com/fittra/trailstack/internal/websocket"
)

const maxDocumentSize = 25 << 20 // 25 MiB

type DocumentHandler struct {
	documentStore *store.DocumentStore
	shareStore    *store.ShareStore
	blobs         blob.Store
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewDocumentHandler(ds *store.DocumentStore, ss *store.ShareStore, blobs blob.Store, hub *websocket.Hub, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{documentStore: ds, shareStore: ss, blobs: blobs, hub: hub, logger: logger}
}

func (h *DocumentHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// ListByTrip handles GET /api/trips/{id}/documents
func (h *DocumentHandler) ListByTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trip id"})
		return
	}

	docs, err := h.documentStore.ListByTrip(tripID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list documents"})
		return
	}
	if docs == nil {
		docs = []model.TripDocument{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// Upload handles POST /api/trips/{id}/documents with a multipart "file"
// field. The blob is written first; the row only exists once the upload
// succeeded.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trip id"})
		return
	}

	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	key := trip.DocumentKey(tripID, time.Now(), header.Filename)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := h.blobs.Put(r.Context(), key, file, contentType); err != nil {
		h.logger.Error("upload document", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store document"})
		return
	}

	doc, err := h.documentStore.Create(tripID, name, key)
	if err != nil {
		h.logger.Error("create document row", "error", err)
		// Orphaned blob; clean it up so storage stays consistent.
		h.blobs.Remove(r.Context(), key)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save document"})
		return
	}

	h.broadcast(websocket.NewMessage("document", "created", doc.ID, nil))
	writeJSON(w, http.StatusCreated, doc)
}

// Download handles GET /api/documents/{id}/download, streaming the blob.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	doc, err := h.documentStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get document"})
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}

	h.streamDocument(w, r, doc)
}

// DownloadShared handles GET /share/{token}/documents/{id}/download. The
// document must belong to the shared trip.
func (h *DocumentHandler) DownloadShared(w http.ResponseWriter, r *http.Request) {
	share, err := h.shareStore.GetByToken(r.PathValue("token"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to look up share"})
		return
	}
	if share == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "share link not found"})
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	doc, err := h.documentStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get document"})
		return
	}
	if doc == nil || doc.TripID != share.TripID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}

	h.streamDocument(w, r, doc)
}

func (h *DocumentHandler) streamDocument(w http.ResponseWriter, r *http.Request, doc *model.TripDocument) {
	body, err := h.blobs.Get(r.Context(), doc.FilePath)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "document content missing"})
			return
		}
		h.logger.Error("fetch document blob", "key", doc.FilePath, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch document"})
		return
	}
	defer body.Close()

	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("stream document", "key", doc.FilePath, "error", err)
	}
}

// Delete handles DELETE /api/documents/{id}. The blob goes first; a row
// without a blob would be a dead link.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	doc, err := h.documentStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get document"})
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}

	if err := h.blobs.Remove(r.Context(), doc.FilePath); err != nil && !errors.Is(err, blob.ErrNotFound) {
		h.logger.Warn("remove document blob", "key", doc.FilePath, "error", err)
	}

	if err := h.documentStore.Delete(id); err != nil {
		h.logger.Error("delete document", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete document"})
		return
	}

	h.broadcast(websocket.NewMessage("document", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
