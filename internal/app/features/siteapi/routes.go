package siteapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/townlocal/minisite/internal/app/system/apicors"
	"github.com/townlocal/minisite/internal/app/system/auth"
	"go.uber.org/zap"
)

// Routes returns a router with the site management endpoints.
//
// When mounted at /api/site:
//   - GET    /api/site/{entityType}/{entityID}                       - dashboard aggregate
//   - POST   /api/site/{entityType}/{entityID}/pages                 - create page
//   - GET    /api/site/{entityType}/{entityID}/nav                   - nav tree
//   - POST   /api/site/{entityType}/{entityID}/nav                   - create nav item
//   - GET    /api/site/pages/{pageID}                                - load page
//   - PATCH  /api/site/pages/{pageID}                                - update page metadata
//   - DELETE /api/site/pages/{pageID}                                - delete page (+ nav cascade)
//   - POST   /api/site/pages/{pageID}/publish                        - toggle publish
//   - POST   /api/site/pages/{pageID}/homepage                       - set homepage
//   - POST   /api/site/pages/{pageID}/sections                       - add section
//   - POST   /api/site/pages/{pageID}/sections/move                  - reorder sections
//   - PATCH  /api/site/pages/{pageID}/sections/{sectionID}           - patch section payload
//   - DELETE /api/site/pages/{pageID}/sections/{sectionID}           - remove section
//   - PATCH  /api/site/nav/{itemID}                                  - update nav item
//   - POST   /api/site/nav/{itemID}/visibility                       - toggle visibility
//   - DELETE /api/site/nav/{itemID}                                  - delete nav item (+ children)
//
// Authentication is via API key (Bearer token in Authorization header).
// CORS is permissive (allows any origin) since API key auth is used.
func Routes(h *Handler, apiKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// API CORS - permissive for API key auth
	r.Use(apicors.Middleware())

	// API key authentication
	r.Use(auth.APIKeyAuth(apiKey, logger))

	r.Route("/pages/{pageID}", func(pr chi.Router) {
		pr.Get("/", h.GetPage)
		pr.Patch("/", h.UpdatePage)
		pr.Delete("/", h.DeletePage)
		pr.Post("/publish", h.TogglePublish)
		pr.Post("/homepage", h.SetHomepage)
		pr.Post("/sections", h.AddSection)
		pr.Post("/sections/move", h.MoveSection)
		pr.Patch("/sections/{sectionID}", h.UpdateSection)
		pr.Delete("/sections/{sectionID}", h.RemoveSection)
	})

	r.Route("/nav/{itemID}", func(nr chi.Router) {
		nr.Patch("/", h.UpdateNavItem)
		nr.Delete("/", h.DeleteNavItem)
		nr.Post("/visibility", h.ToggleNavVisibility)
	})

	r.Route("/{entityType}/{entityID}", func(er chi.Router) {
		er.Get("/", h.GetSummary)
		er.Post("/pages", h.CreatePage)
		er.Get("/nav", h.GetNavTree)
		er.Post("/nav", h.CreateNavItem)
	})

	return r
}
