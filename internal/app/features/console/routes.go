// internal/app/features/console/routes.go
package console

import (
	"github.com/go-chi/chi/v5"
	"github.com/wanderhub/travelhub/internal/app/system/auth"
)

// Routes returns the router for the operator console API.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Use(sm.RequireRole("admin"))
	r.Use(h.WithSession)

	r.Get("/", h.Show)
	r.Post("/view", h.SetView)
	r.Post("/filter", h.SetFilter)

	r.Route("/selection", func(r chi.Router) {
		r.Post("/toggle", h.ToggleSelection)
		r.Post("/all", h.SelectAll)
		r.Post("/none", h.SelectNone)
	})

	r.Post("/bulk", h.Bulk)
	r.Post("/refresh", h.Refresh)
	r.Post("/autorefresh", h.AutoRefresh)

	r.Route("/edits", func(r chi.Router) {
		r.Post("/", h.BeginEdit)
		r.Put("/{editID}", h.UpdateDraft)
		r.Post("/{editID}/submit", h.SubmitEdit)
		r.Delete("/{editID}", h.CancelEdit)
	})

	return r
}
