package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withRequestLog)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/user/register", h.register)
		r.Post("/api/user/login", h.login)
	})

	// routes behind JWT authentication
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/file", h.serveFile)

		r.Route("/api/documents", func(r chi.Router) {
			r.Post("/", h.uploadDocument)
			r.Get("/", h.listDocuments)
			r.Delete("/{documentID}", h.deleteDocument)
			r.Post("/{documentID}/restore", h.restoreDocument)
		})

		r.Route("/api/document-pin", func(r chi.Router) {
			r.Get("/", h.pinStatus)
			r.Post("/", h.pinSet)
			r.Patch("/", h.pinVerify)
			r.With(h.adminOnly).Post("/reset", h.pinReset)
		})
	})

	return router
}
