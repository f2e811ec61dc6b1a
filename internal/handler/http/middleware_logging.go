// SPDX-License-Identifier: Apache-2.0

package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// traceIDHeader carries the request correlation id. Inbound values are
// honoured so the portal can stitch its own traces; otherwise a fresh UUID
// is issued, and either way the id is echoed back on the response.
const traceIDHeader = "X-Trace-ID"

// withRequestLog attaches a trace-scoped logger to the request context and
// emits one summary line per request: method, uri, status, size, duration.
// Handlers pick the logger up via logger.FromRequest, so every line they
// write carries the same trace_id.
func (h *Handler) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set(traceIDHeader, traceID)

		log := h.logger.GetChildLogger()
		log.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("trace_id", traceID)
		})
		r = r.WithContext(log.WithContext(r.Context()))

		lw := &responseWriter{ResponseWriter: w}
		start := time.Now()

		next.ServeHTTP(lw, r)

		log.Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Int("status", lw.status).
			Int("size", lw.size).
			Dur("duration", time.Since(start)).
			Send()
	})
}
