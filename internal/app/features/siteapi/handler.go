// Package siteapi is the JSON API host applications use to manage an
// entity's mini-site: the dashboard aggregate, page CRUD with section
// editing, and the navigation tree. Authentication is a bearer API key;
// see routes.go for the middleware stack.
package siteapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	sitenavstore "github.com/townlocal/minisite/internal/app/store/sitenav"
	sitepagestore "github.com/townlocal/minisite/internal/app/store/sitepages"
	"github.com/townlocal/minisite/internal/app/system/jsonutil"
	"github.com/townlocal/minisite/internal/app/system/pageedit"
	"github.com/townlocal/minisite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles site management API requests.
type Handler struct {
	pages  *sitepagestore.Store
	nav    *sitenavstore.Store
	logger *zap.Logger
}

// NewHandler creates a new siteapi handler.
func NewHandler(pages *sitepagestore.Store, nav *sitenavstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		pages:  pages,
		nav:    nav,
		logger: logger,
	}
}

// entityRef pulls the entity reference out of the route.
func entityRef(r *http.Request) models.EntityRef {
	return models.EntityRef{
		EntityType: chi.URLParam(r, "entityType"),
		EntityID:   chi.URLParam(r, "entityID"),
	}
}

// pathID parses an ObjectID route parameter. Writes a 400 and returns false
// on garbage input.
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		jsonutil.BadRequest(w, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// writeStoreError maps store and editor errors onto API status codes.
// Validation problems are the caller's to fix; not-found means the data moved
// under them and they should re-fetch; anything else is logged and reported
// as a 500 without internals.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sitepagestore.ErrDuplicateSlug):
		jsonutil.Conflict(w, err.Error())
	case errors.Is(err, sitenavstore.ErrMissingTarget),
		errors.Is(err, sitenavstore.ErrInvalidNesting):
		jsonutil.UnprocessableEntity(w, err.Error())
	case errors.Is(err, models.ErrUnsupportedSectionType):
		jsonutil.BadRequest(w, err.Error())
	case errors.Is(err, pageedit.ErrSectionNotFound),
		errors.Is(err, mongo.ErrNoDocuments):
		jsonutil.NotFound(w, "not found")
	default:
		h.logger.Error("site API request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		jsonutil.InternalError(w, "internal error")
	}
}

/* ------------------------------- dashboard ------------------------------- */

// summaryResponse is the dashboard aggregate for one entity.
type summaryResponse struct {
	EntityType string               `json:"entity_type"`
	EntityID   string               `json:"entity_id"`
	Pages      []models.EntityPage  `json:"pages"`
	Nav        []models.NavTreeNode `json:"nav"`
	Counts     summaryCounts        `json:"counts"`
	LinkTypes  []models.LinkType    `json:"link_types"`
}

type summaryCounts struct {
	TotalPages     int64                     `json:"total_pages"`
	PublishedPages int64                     `json:"published_pages"`
	NavItems       int64                     `json:"nav_items"`
	NavByLinkType  map[models.LinkType]int64 `json:"nav_by_link_type"`
}

func countNavByLinkType(nodes []models.NavTreeNode) map[models.LinkType]int64 {
	counts := make(map[models.LinkType]int64)
	for _, n := range nodes {
		counts[n.Item.LinkType]++
		for _, c := range n.Children {
			counts[c.LinkType]++
		}
	}
	return counts
}

// GetSummary handles GET /{entityType}/{entityID}.
// It returns everything the dashboard needs in one response: all pages, the
// nav tree, summary counts, and the link types offered for this entity type.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ref := entityRef(r)

	pages, err := h.pages.ListByEntity(r.Context(), ref)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	nav, err := h.nav.ListTree(r.Context(), ref)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	total, published, err := h.pages.Counts(r.Context(), ref)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	navCount, err := h.nav.Count(r.Context(), ref)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	jsonutil.OK(w, summaryResponse{
		EntityType: ref.EntityType,
		EntityID:   ref.EntityID,
		Pages:      pages,
		Nav:        nav,
		Counts: summaryCounts{
			TotalPages:     total,
			PublishedPages: published,
			NavItems:       navCount,
			NavByLinkType:  countNavByLinkType(nav),
		},
		LinkTypes: models.LinkTypesForEntity(ref.EntityType),
	})
}

/* --------------------------------- pages --------------------------------- */

type createPageRequest struct {
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	IsPublished     bool   `json:"is_published"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

// CreatePage handles POST /{entityType}/{entityID}/pages.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var in createPageRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.Title == "" {
		jsonutil.BadRequest(w, "title is required")
		return
	}

	ref := entityRef(r)
	page, err := h.pages.Create(r.Context(), sitepagestore.CreateInput{
		EntityType:      ref.EntityType,
		EntityID:        ref.EntityID,
		Title:           in.Title,
		Slug:            in.Slug,
		IsPublished:     in.IsPublished,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	jsonutil.Created(w, page)
}

// GetPage handles GET /pages/{pageID}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "pageID")
	if !ok {
		return
	}
	page, err := h.pages.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	jsonutil.OK(w, page)
}

type updatePageRequest struct {
	Title           *string `json:"title"`
	Slug            *string `json:"slug"`
	IsPublished     *bool   `json:"is_published"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
}

// UpdatePage handles PATCH /pages/{pageID}. Page metadata only; section
// edits go through the section endpoints.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "pageID")
	if !ok {
		return
	}
	var in updatePageRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.Title != nil && *in.Title == "" {
		jsonutil.BadRequest(w, "title cannot be empty")
		return
	}

	err := h.pages.Update(r.Context(), id, sitepagestore.UpdateInput{
		Title:           in.Title,
		Slug:            in.Slug,
		IsPublished:     in.IsPublished,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	page, err := h.pages.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	jsonutil.OK(w, page)
}

// DeletePage handles DELETE /pages/{pageID}. Nav items pointing at the page
// go with it.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "pageID")
	if !ok {
		return
	}
	if err := h.pages.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	jsonutil.NoContent(w)
}

// TogglePublish handles POST /pages/{pageID}/publish.
func (h *Handler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "pageID")
	if !ok {
		return
	}
	published, err := h.pages.TogglePublish(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]bool{"is_published": published})
}

// SetHomepage handles POST /pages/{pageID}/homepage. The entity scope comes
// from the page itself, so a page id from another entity cannot steal the
// homepage flag.
func (h *Handler) SetHomepage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "pageID")
	if !ok {
		return
	}
	page, err := h.pages.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if err := h.pages.SetHomepage(r.Context(), id, page.Ref()); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]bool{"is_homepage": true})
}

/* -------------------------------- sections ------------------------------- */

// withPageSections loads the page, applies edit to its in-memory section
// list, and persists the result. The editor operations themselves live in
// pageedit; this wrapper owns the load/save cycle.
func (h *Handler) withPageSections(w http.ResponseWriter, r *http.Request, edit func(page *models.EntityPage) error) {
	id, ok := pathID(w, r, "pageID")
	if !ok {
		return
	}
	page, err := h.pages.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	if err := edit(page); err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	err = h.pages.Update(r.Context(), id, sitepagestore.UpdateInput{
		Sections: &page.Content.Sections,
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	jsonutil.OK(w, page)
}

type addSectionRequest struct {
	Type models.SectionType `json:"type"`
}

// AddSection handles POST /pages/{pageID}/sections.
func (h *Handler) AddSection(w http.ResponseWriter, r *http.Request) {
	var in addSectionRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	h.withPageSections(w, r, func(page *models.EntityPage) error {
		_, err := pageedit.AddSection(page, in.Type)
		return err
	})
}

// UpdateSection handles PATCH /pages/{pageID}/sections/{sectionID}. The body
// is a shallow patch of the section payload: only fields present in the body
// are replaced.
func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := jsonutil.Decode(r, &patch); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	sectionID := chi.URLParam(r, "sectionID")
	h.withPageSections(w, r, func(page *models.EntityPage) error {
		return pageedit.UpdateSectionContent(page, sectionID, patch)
	})
}

// RemoveSection handles DELETE /pages/{pageID}/sections/{sectionID}.
func (h *Handler) RemoveSection(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "sectionID")
	h.withPageSections(w, r, func(page *models.EntityPage) error {
		return pageedit.RemoveSection(page, sectionID)
	})
}

type moveSectionRequest struct {
	Index     int    `json:"index"`
	Direction string `json:"direction"`
}

// MoveSection handles POST /pages/{pageID}/sections/move. Out-of-bounds
// moves save the page unchanged rather than erroring, matching the editor's
// no-op semantics.
func (h *Handler) MoveSection(w http.ResponseWriter, r *http.Request) {
	var in moveSectionRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	dir := pageedit.Direction(in.Direction)
	if dir != pageedit.MoveUp && dir != pageedit.MoveDown {
		jsonutil.BadRequest(w, `direction must be "up" or "down"`)
		return
	}
	h.withPageSections(w, r, func(page *models.EntityPage) error {
		pageedit.MoveSection(page, in.Index, dir)
		return nil
	})
}
