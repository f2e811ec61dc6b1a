// SPDX-License-Identifier: Apache-2.0

package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hrdocs/docvault/internal/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogCapturingHandler(buf *bytes.Buffer) *Handler {
	return &Handler{logger: &logger.Logger{Logger: zerolog.New(buf)}}
}

func TestWithRequestLog_IssuesTraceID(t *testing.T) {
	var buf bytes.Buffer
	h := newLogCapturingHandler(&buf)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the trace-scoped logger must be reachable from the request
		logger.FromRequest(r).Info().Msg("inside handler")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()

	h.withRequestLog(next).ServeHTTP(rec, req)

	traceID := rec.Header().Get("X-Trace-ID")
	require.NotEmpty(t, traceID)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner, summary map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	require.NoError(t, json.Unmarshal(lines[1], &summary))

	assert.Equal(t, traceID, inner["trace_id"], "handler log line carries the trace id")
	assert.Equal(t, traceID, summary["trace_id"])
	assert.Equal(t, "GET", summary["method"])
	assert.Equal(t, "/api/documents", summary["uri"])
	assert.Equal(t, float64(http.StatusTeapot), summary["status"])
	assert.Equal(t, float64(len("short and stout")), summary["size"])
}

func TestWithRequestLog_HonoursInboundTraceID(t *testing.T) {
	var buf bytes.Buffer
	h := newLogCapturingHandler(&buf)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/file", nil)
	req.Header.Set("X-Trace-ID", "portal-trace-42")
	rec := httptest.NewRecorder()

	h.withRequestLog(next).ServeHTTP(rec, req)

	assert.Equal(t, "portal-trace-42", rec.Header().Get("X-Trace-ID"))

	var summary map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &summary))
	assert.Equal(t, "portal-trace-42", summary["trace_id"])
}
