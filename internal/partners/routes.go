package partners

import "github.com/go-chi/chi/v5"

// MountRoutes registers organization-scoped partner routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{partnerID}", h.Get)
	r.Put("/{partnerID}", h.Update)
	r.Post("/{partnerID}/archive", h.Archive)
	r.Post("/{partnerID}/restore", h.Restore)
}
