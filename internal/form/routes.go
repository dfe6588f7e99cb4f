package form

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the form session routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Route("/{formID}", func(r chi.Router) {
		r.Get("/", h.Show)
		r.Post("/messages", h.Dispatch)
		r.Post("/submit", h.Submit)
		r.Post("/chrome", h.Chrome)
		r.Get("/surface", h.Attach)
		r.Delete("/", h.Close)
	})
}
