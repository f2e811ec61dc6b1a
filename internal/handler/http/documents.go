package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/internal/service"
	"github.com/hrdocs/docvault/internal/store"
	"github.com/hrdocs/docvault/internal/utils"
	"github.com/hrdocs/docvault/internal/vault"
	"github.com/hrdocs/docvault/models"
)

// uploadMemoryLimit caps how much of a multipart upload is buffered in
// memory; anything larger spills to a temporary file.
const uploadMemoryLimit = 10 << 20

// uploadDocument accepts a multipart upload and stores it encrypted.
//
// POST /api/documents
// form fields: "file" (required), "category" (optional)
func (h *Handler) uploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	principal, err := principalFromContext(ctx)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		log.Err(err).Msg("invalid multipart form")
		writeAPIError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	document, err := h.services.DocumentService.Upload(ctx, principal, service.DocumentUpload{
		Filename: header.Filename,
		Category: r.FormValue("category"),
		Content:  file,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			writeAPIError(w, "invalid upload", http.StatusBadRequest)
		case errors.Is(err, vault.ErrStorageWrite):
			log.Err(err).Msg("storing uploaded document failed")
			writeAPIError(w, "failed to store document", http.StatusInternalServerError)
		default:
			log.Err(err).Msg("unexpected error during upload")
			writeAPIError(w, "failed to store document", http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, document, http.StatusCreated)
}

// listDocuments returns the caller's documents. Admins may pass owner_id,
// category, and include_deleted query parameters; for employees the service
// pins the filter to their own live documents.
//
// GET /api/documents
func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	principal, err := principalFromContext(ctx)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	filter := models.DocumentFilter{
		Category: r.URL.Query().Get("category"),
	}
	if rawOwner := r.URL.Query().Get("owner_id"); rawOwner != "" {
		ownerID, err := strconv.ParseInt(rawOwner, 10, 64)
		if err != nil {
			writeAPIError(w, "invalid owner_id", http.StatusBadRequest)
			return
		}
		filter.OwnerID = ownerID
	}
	filter.IncludeDeleted = r.URL.Query().Get("include_deleted") == "true"

	documents, err := h.services.DocumentService.List(ctx, principal, filter)
	if err != nil {
		log.Err(err).Msg("listing documents failed")
		writeAPIError(w, "failed to list documents", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, documents, http.StatusOK)
}

// deleteDocument soft-deletes a document.
//
// DELETE /api/documents/{documentID}
func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	h.documentLifecycle(w, r, h.services.DocumentService.Delete)
}

// restoreDocument undoes a soft delete.
//
// POST /api/documents/{documentID}/restore
func (h *Handler) restoreDocument(w http.ResponseWriter, r *http.Request) {
	h.documentLifecycle(w, r, h.services.DocumentService.Restore)
}

// documentLifecycle shares the id extraction and error mapping of the delete
// and restore endpoints.
func (h *Handler) documentLifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, principal models.Principal, documentID string) error) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	principal, err := principalFromContext(ctx)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	documentID := chi.URLParam(r, "documentID")
	if documentID == "" {
		writeAPIError(w, "document id is required", http.StatusBadRequest)
		return
	}

	if err := op(ctx, principal, documentID); err != nil {
		switch {
		case errors.Is(err, store.ErrDocumentNotFound):
			writeAPIError(w, "document not found", http.StatusNotFound)
		case errors.Is(err, service.ErrForbidden):
			writeAPIError(w, "access denied", http.StatusForbidden)
		default:
			log.Err(err).Str("document_id", documentID).Msg("document lifecycle operation failed")
			writeAPIError(w, "operation failed", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
