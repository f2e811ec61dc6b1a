// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/internal/service"
	"github.com/hrdocs/docvault/internal/utils"
	"github.com/hrdocs/docvault/models"
)

// pinStatus reports whether the caller has a document PIN and whether the
// gate is locked.
//
// GET /api/document-pin
func (h *Handler) pinStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	principal, err := principalFromContext(ctx)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	status, err := h.services.PinService.Status(ctx, principal.UserID)
	if err != nil {
		log.Err(err).Msg("reading pin status failed")
		writeAPIError(w, "failed to read pin status", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

// pinSet creates or changes the caller's document PIN.
//
// POST /api/document-pin
// body: {"pin": "1234", "currentPin": "0000"} — currentPin only when changing
func (h *Handler) pinSet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	principal, err := principalFromContext(ctx)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.PinSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.services.PinService.Set(ctx, principal.UserID, req.Pin, req.CurrentPin); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPinFormat):
			writeAPIError(w, "PIN must be exactly 4 digits", http.StatusBadRequest)
		case errors.Is(err, service.ErrWrongCurrentPin):
			writeAPIError(w, "current PIN is incorrect", http.StatusForbidden)
		default:
			log.Err(err).Msg("setting pin failed")
			writeAPIError(w, "failed to set PIN", http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, models.PinVerifyResponse{Success: true, Message: "PIN saved"}, http.StatusOK)
}

// pinVerify checks a submitted PIN against the stored hash.
//
// PATCH /api/document-pin
// body: {"pin": "1234"}
func (h *Handler) pinVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	principal, err := principalFromContext(ctx)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.PinVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	err = h.services.PinService.Verify(ctx, principal.UserID, req.Pin)
	if err == nil {
		utils.WriteJSON(w, models.PinVerifyResponse{Success: true, Message: "PIN verified"}, http.StatusOK)
		return
	}

	var (
		locked  *service.PinLockedError
		invalid *service.InvalidPinError
	)
	switch {
	case errors.Is(err, service.ErrInvalidPinFormat):
		writeAPIError(w, "PIN must be exactly 4 digits", http.StatusBadRequest)
	case errors.Is(err, service.ErrPinNotSet):
		writeAPIError(w, "no PIN is set", http.StatusBadRequest)
	case errors.As(err, &locked):
		writePinLocked(w, locked)
	case errors.As(err, &invalid):
		attemptsLeft := invalid.AttemptsLeft
		utils.WriteJSON(w, models.PinVerifyResponse{
			Error:        "incorrect PIN",
			AttemptsLeft: &attemptsLeft,
		}, http.StatusForbidden)
	default:
		log.Err(err).Msg("verifying pin failed")
		writeAPIError(w, "failed to verify PIN", http.StatusInternalServerError)
	}
}

// pinReset clears the PIN state for the listed users. Admin only; the route
// sits behind the adminOnly middleware, the service re-checks regardless.
//
// POST /api/document-pin/reset
// body: {"userId": 7} or {"userIds": [7, 8, 9]}
func (h *Handler) pinReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	principal, err := principalFromContext(ctx)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.PinResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	userIDs := req.UserIDs
	if req.UserID != 0 {
		userIDs = append(userIDs, req.UserID)
	}

	affected, err := h.services.PinService.Reset(ctx, principal, userIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			writeAPIError(w, "admin role required", http.StatusForbidden)
		case errors.Is(err, service.ErrInvalidDataProvided):
			writeAPIError(w, "no user ids provided", http.StatusBadRequest)
		default:
			log.Err(err).Msg("resetting pins failed")
			writeAPIError(w, "failed to reset PINs", http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, models.PinResetResponse{
		Message: fmt.Sprintf("PIN reset for %d user(s)", affected),
		Count:   affected,
	}, http.StatusOK)
}

// writePinLocked renders the lockout response: HTTP 429 with a Retry-After
// header and the lockout expiry in the body.
func writePinLocked(w http.ResponseWriter, locked *service.PinLockedError) {
	retryAfter := locked.RetryAfter(time.Now())
	seconds := int(retryAfter.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	utils.WriteJSON(w, models.PinVerifyResponse{
		Error:       "PIN is locked, try again later",
		Locked:      true,
		LockedUntil: locked.Until.UTC().Format(time.RFC3339),
	}, http.StatusTooManyRequests)
}
