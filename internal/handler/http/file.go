// SPDX-License-Identifier: Apache-2.0

package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/hrdocs/docvault/internal/crypto"
	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/internal/service"
	"github.com/hrdocs/docvault/internal/store"
	"github.com/hrdocs/docvault/internal/vault"
	"github.com/hrdocs/docvault/models"
)

// mimeTypes maps known document extensions to their content type. Anything
// outside the table is served as an opaque binary.
var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".txt":  "text/plain",
}

const defaultContentType = "application/octet-stream"

// serveFile streams a document's original content to an authorized caller.
//
// GET /api/file?id=<documentID>
//
// The document is looked up by its opaque id; vault blobs are decrypted on
// the fly, legacy documents pass through as-is. The response carries the
// original filename in an inline Content-Disposition header so browsers
// render the document instead of downloading it. Storage paths never appear
// in any response, success or failure.
func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	principal, err := principalFromContext(ctx)
	if err != nil {
		log.Err(err).Msg("no principal in context behind auth middleware")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	documentID := r.URL.Query().Get("id")
	if documentID == "" {
		writeAPIError(w, "document id is required", http.StatusBadRequest)
		return
	}

	document, stream, err := h.services.DocumentService.Serve(ctx, principal, documentID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDocumentNotFound):
			writeAPIError(w, "document not found", http.StatusNotFound)
		case errors.Is(err, service.ErrForbidden):
			log.Warn().Int64("user_id", principal.UserID).Str("document_id", documentID).Msg("forbidden document access")
			writeAPIError(w, "access denied", http.StatusForbidden)
		case errors.Is(err, vault.ErrFileMissing), errors.Is(err, models.ErrNoStorageLocation):
			log.Err(err).Str("document_id", documentID).Msg("document bytes are unavailable")
			writeAPIError(w, "document not found", http.StatusNotFound)
		case errors.Is(err, crypto.ErrDecryptionFailed):
			log.Err(err).Str("document_id", documentID).Msg("document decryption failed")
			writeAPIError(w, "failed to retrieve document", http.StatusInternalServerError)
		default:
			log.Err(err).Str("document_id", documentID).Msg("unexpected error serving document")
			writeAPIError(w, "failed to retrieve document", http.StatusInternalServerError)
		}
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", contentTypeFor(document.Filename))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", sanitizeFilename(document.Filename)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, stream); err != nil {
		// Headers are gone; all that is left is to log the truncation.
		log.Err(err).Str("document_id", documentID).Msg("streaming document body failed")
	}
}

// contentTypeFor looks up the MIME type by the filename extension.
func contentTypeFor(filename string) string {
	if contentType, ok := mimeTypes[strings.ToLower(path.Ext(filename))]; ok {
		return contentType
	}

	return defaultContentType
}

// sanitizeFilename strips characters that would break the header value. The
// filename is user input and must not be able to smuggle header syntax.
func sanitizeFilename(filename string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '\r', '\n':
			return '_'
		default:
			return r
		}
	}, filename)
}
