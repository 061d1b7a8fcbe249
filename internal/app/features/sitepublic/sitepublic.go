// internal/app/features/sitepublic/sitepublic.go
package sitepublic

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/townlocal/minisite/internal/app/features/errors"
	sitenavstore "github.com/townlocal/minisite/internal/app/store/sitenav"
	sitepagestore "github.com/townlocal/minisite/internal/app/store/sitepages"
	"github.com/townlocal/minisite/internal/app/system/siterender"
	"github.com/townlocal/minisite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the public mini-sites.
type Handler struct {
	pages        *sitepagestore.Store
	nav          *sitenavstore.Store
	renderer     *siterender.Renderer
	errLog       *errorsfeature.ErrorLogger
	logger       *zap.Logger
	defaultTheme string
}

// NewHandler creates a new public site Handler.
func NewHandler(pages *sitepagestore.Store, nav *sitenavstore.Store, renderer *siterender.Renderer, errLog *errorsfeature.ErrorLogger, defaultTheme string, logger *zap.Logger) *Handler {
	return &Handler{
		pages:        pages,
		nav:          nav,
		renderer:     renderer,
		errLog:       errLog,
		logger:       logger,
		defaultTheme: defaultTheme,
	}
}

// Routes returns a chi.Router with the public site routes mounted.
//
// When mounted at /site:
//   - GET /site/{entityType}/{entityID}        - entity homepage
//   - GET /site/{entityType}/{entityID}/{slug} - published page by slug
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/{entityType}/{entityID}", h.Homepage)
	r.Get("/{entityType}/{entityID}/{slug}", h.Page)
	return r
}

// NavLinkVM is one resolved navigation entry.
type NavLinkVM struct {
	Label    string
	Href     string
	Children []NavLinkVM
}

// PageVM is the view model for a rendered public page.
type PageVM struct {
	EntityName      string
	ThemeColor      string
	Title           string
	MetaTitle       string
	MetaDescription string
	HomeURL         string
	Nav             []NavLinkVM
	Body            template.HTML
}

// Homepage renders the entity's homepage, or the no-homepage fallback when
// none is set or the flagged page is not published.
func (h *Handler) Homepage(w http.ResponseWriter, r *http.Request) {
	ref := entityRef(r)

	page, err := h.pages.GetHomepage(r.Context(), ref)
	if err == mongo.ErrNoDocuments || (err == nil && !page.IsPublished) {
		h.renderNoHomepage(w, r, ref)
		return
	}
	if err != nil {
		h.errLog.Log(r, "failed to load homepage", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderPage(w, r, ref, page)
}

// Page renders a published page by slug. Drafts are not visible publicly.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ref := entityRef(r)

	page, err := h.pages.GetBySlug(r.Context(), ref, chi.URLParam(r, "slug"))
	if err == mongo.ErrNoDocuments {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.errLog.Log(r, "failed to load page", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !page.IsPublished {
		http.NotFound(w, r)
		return
	}

	h.renderPage(w, r, ref, page)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, ref models.EntityRef, page *models.EntityPage) {
	entityName := displayName(r, ref)

	doc := h.renderer.Render(page.Content.Sections, siterender.Context{
		EntityName: entityName,
		ThemeColor: h.themeColor(r),
	})

	nav, err := h.navLinks(r, ref)
	if err != nil {
		h.errLog.Log(r, "failed to load navigation", err)
		// The page still renders without chrome.
		nav = nil
	}

	vm := PageVM{
		EntityName:      entityName,
		ThemeColor:      h.themeColor(r),
		Title:           page.Title,
		MetaTitle:       page.MetaTitle,
		MetaDescription: page.MetaDescription,
		HomeURL:         "/site/" + ref.EntityType + "/" + ref.EntityID,
		Nav:             nav,
		Body:            doc.HTML(),
	}
	if vm.MetaTitle == "" {
		vm.MetaTitle = page.Title + " - " + entityName
	}
	templates.Render(w, r, "sitepublic/page", vm)
}

func (h *Handler) renderNoHomepage(w http.ResponseWriter, r *http.Request, ref models.EntityRef) {
	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "sitepublic/no_homepage", PageVM{
		EntityName: displayName(r, ref),
		ThemeColor: h.themeColor(r),
		Title:      "Coming soon",
	})
}

// navLinks resolves the entity's visible navigation tree into hrefs. Items
// linking to draft or deleted pages are skipped.
func (h *Handler) navLinks(r *http.Request, ref models.EntityRef) ([]NavLinkVM, error) {
	tree, err := h.nav.ListTree(r.Context(), ref)
	if err != nil {
		return nil, err
	}

	pages, err := h.pages.ListByEntity(r.Context(), ref)
	if err != nil {
		return nil, err
	}
	slugs := make(map[primitive.ObjectID]string, len(pages))
	for _, p := range pages {
		if p.IsPublished {
			slugs[p.ID] = p.Slug
		}
	}

	base := "/site/" + ref.EntityType + "/" + ref.EntityID

	var resolve func(item models.EntityNavigationItem) (NavLinkVM, bool)
	resolve = func(item models.EntityNavigationItem) (NavLinkVM, bool) {
		if !item.IsVisible {
			return NavLinkVM{}, false
		}
		link := NavLinkVM{Label: item.Label}
		switch item.LinkType {
		case models.LinkPage:
			if item.PageID == nil {
				return NavLinkVM{}, false
			}
			slug, ok := slugs[*item.PageID]
			if !ok {
				return NavLinkVM{}, false
			}
			link.Href = base + "/" + slug
		case models.LinkURL:
			link.Href = item.ExternalURL
		default:
			// Built-in views are anchors into the rendered page.
			link.Href = "#" + string(item.LinkType)
		}
		return link, true
	}

	out := make([]NavLinkVM, 0, len(tree))
	for _, node := range tree {
		link, ok := resolve(node.Item)
		if !ok {
			continue
		}
		for _, child := range node.Children {
			if childLink, ok := resolve(child); ok {
				link.Children = append(link.Children, childLink)
			}
		}
		out = append(out, link)
	}
	return out, nil
}

func (h *Handler) themeColor(r *http.Request) string {
	if theme := r.URL.Query().Get("theme"); isHexColor(theme) {
		return theme
	}
	return h.defaultTheme
}

func entityRef(r *http.Request) models.EntityRef {
	return models.EntityRef{
		EntityType: chi.URLParam(r, "entityType"),
		EntityID:   chi.URLParam(r, "entityID"),
	}
}

// displayName returns the entity's display name. The owning directory service
// passes it as a query parameter; without one the entity id is humanized.
func displayName(r *http.Request, ref models.EntityRef) string {
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		return name
	}
	return humanize(ref.EntityID)
}

// humanize turns "blue-oak-cafe" into "Blue Oak Cafe".
func humanize(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// isHexColor accepts #rgb and #rrggbb.
func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
