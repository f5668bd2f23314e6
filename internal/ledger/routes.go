package ledger

import "github.com/go-chi/chi/v5"

// MountRoutes registers organization-scoped ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.ListAccounts)
		r.Post("/", h.CreateAccount)
		r.Get("/{accountID}", h.GetAccount)
		r.Patch("/{accountID}/type", h.UpdateAccountType)
		r.Post("/{accountID}/deactivate", h.DeactivateAccount)
		r.Delete("/{accountID}", h.DeleteAccount)
	})
	r.Route("/journals", func(r chi.Router) {
		r.Get("/", h.ListEntries)
		r.Post("/", h.PostEntry)
		r.Get("/{entryID}", h.GetEntry)
		r.Post("/{entryID}/reverse", h.ReverseEntry)
	})
}
