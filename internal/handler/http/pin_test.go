// SPDX-License-Identifier: Apache-2.0

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hrdocs/docvault/internal/service"
	"github.com/hrdocs/docvault/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pinEmployee = models.Principal{UserID: 7, Role: models.RoleEmployee}
	pinAdmin    = models.Principal{UserID: 1, Role: models.RoleAdmin}
)

func pinRequest(h *Handler, principal models.Principal, method, target, body string, handlerFn http.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(withPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	handlerFn(rec, req)
	return rec
}

func decodeVerifyResponse(t *testing.T, rec *httptest.ResponseRecorder) models.PinVerifyResponse {
	t.Helper()
	var resp models.PinVerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPinStatusEndpoint(t *testing.T) {
	lockedUntil := time.Now().Add(10 * time.Minute).UTC()
	pins := &mockPinService{
		statusFn: func(_ context.Context, userID int64) (models.PinStatus, error) {
			assert.Equal(t, int64(7), userID)
			return models.PinStatus{PinSet: true, Locked: true, LockedUntil: &lockedUntil, FailedAttempts: 5}, nil
		},
	}
	h := newTestHandler(nil, nil, pins)

	rec := pinRequest(h, pinEmployee, http.MethodGet, "/api/document-pin", "", h.pinStatus)

	require.Equal(t, http.StatusOK, rec.Code)
	var status models.PinStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.PinSet)
	assert.True(t, status.Locked)
	assert.Equal(t, 5, status.FailedAttempts)
}

func TestPinSetEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{name: "success", body: `{"pin":"1234"}`, wantStatus: http.StatusOK},
		{name: "bad json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "bad format", body: `{"pin":"12"}`, serviceErr: service.ErrInvalidPinFormat, wantStatus: http.StatusBadRequest},
		{name: "wrong current pin", body: `{"pin":"1234","currentPin":"0000"}`, serviceErr: service.ErrWrongCurrentPin, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pins := &mockPinService{
				setFn: func(_ context.Context, userID int64, pin, currentPin string) error {
					return tt.serviceErr
				},
			}
			h := newTestHandler(nil, nil, pins)

			rec := pinRequest(h, pinEmployee, http.MethodPost, "/api/document-pin", tt.body, h.pinSet)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestPinVerifyEndpoint_Success(t *testing.T) {
	pins := &mockPinService{
		verifyFn: func(_ context.Context, userID int64, pin string) error {
			assert.Equal(t, "1234", pin)
			return nil
		},
	}
	h := newTestHandler(nil, nil, pins)

	rec := pinRequest(h, pinEmployee, http.MethodPatch, "/api/document-pin", `{"pin":"1234"}`, h.pinVerify)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeVerifyResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestPinVerifyEndpoint_WrongPin(t *testing.T) {
	pins := &mockPinService{
		verifyFn: func(_ context.Context, _ int64, _ string) error {
			return &service.InvalidPinError{AttemptsLeft: 3}
		},
	}
	h := newTestHandler(nil, nil, pins)

	rec := pinRequest(h, pinEmployee, http.MethodPatch, "/api/document-pin", `{"pin":"0000"}`, h.pinVerify)

	require.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeVerifyResponse(t, rec)
	require.NotNil(t, resp.AttemptsLeft)
	assert.Equal(t, 3, *resp.AttemptsLeft)
	assert.False(t, resp.Success)
}

func TestPinVerifyEndpoint_Locked(t *testing.T) {
	until := time.Now().Add(10 * time.Minute)
	pins := &mockPinService{
		verifyFn: func(_ context.Context, _ int64, _ string) error {
			return &service.PinLockedError{Until: until}
		},
	}
	h := newTestHandler(nil, nil, pins)

	rec := pinRequest(h, pinEmployee, http.MethodPatch, "/api/document-pin", `{"pin":"1234"}`, h.pinVerify)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 600, retryAfter, 2)

	resp := decodeVerifyResponse(t, rec)
	assert.True(t, resp.Locked)
	assert.NotEmpty(t, resp.LockedUntil)
}

func TestPinVerifyEndpoint_NotSet(t *testing.T) {
	pins := &mockPinService{
		verifyFn: func(_ context.Context, _ int64, _ string) error {
			return service.ErrPinNotSet
		},
	}
	h := newTestHandler(nil, nil, pins)

	rec := pinRequest(h, pinEmployee, http.MethodPatch, "/api/document-pin", `{"pin":"1234"}`, h.pinVerify)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPinResetEndpoint(t *testing.T) {
	var gotIDs []int64
	pins := &mockPinService{
		resetFn: func(_ context.Context, principal models.Principal, userIDs []int64) (int64, error) {
			if !principal.IsAdmin() {
				return 0, service.ErrForbidden
			}
			gotIDs = userIDs
			return int64(len(userIDs)), nil
		},
	}
	h := newTestHandler(nil, nil, pins)

	t.Run("bulk reset", func(t *testing.T) {
		rec := pinRequest(h, pinAdmin, http.MethodPost, "/api/document-pin/reset", `{"userIds":[2,3,4]}`, h.pinReset)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []int64{2, 3, 4}, gotIDs)

		var resp models.PinResetResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(3), resp.Count)
	})

	t.Run("single user form", func(t *testing.T) {
		rec := pinRequest(h, pinAdmin, http.MethodPost, "/api/document-pin/reset", `{"userId":9}`, h.pinReset)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []int64{9}, gotIDs)
	})

	t.Run("employee is rejected", func(t *testing.T) {
		rec := pinRequest(h, pinEmployee, http.MethodPost, "/api/document-pin/reset", `{"userIds":[2]}`, h.pinReset)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
