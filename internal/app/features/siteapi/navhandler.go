package siteapi

import (
	"net/http"

	sitenavstore "github.com/townlocal/minisite/internal/app/store/sitenav"
	"github.com/townlocal/minisite/internal/app/system/jsonutil"
	"github.com/townlocal/minisite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createNavItemRequest struct {
	Label       string          `json:"label"`
	LinkType    models.LinkType `json:"link_type"`
	PageID      string          `json:"page_id"`
	ExternalURL string          `json:"external_url"`
	ParentID    string          `json:"parent_id"`
}

// CreateNavItem handles POST /{entityType}/{entityID}/nav.
func (h *Handler) CreateNavItem(w http.ResponseWriter, r *http.Request) {
	var in createNavItemRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.Label == "" {
		jsonutil.BadRequest(w, "label is required")
		return
	}
	if !models.IsValidLinkType(in.LinkType) {
		jsonutil.BadRequest(w, "unknown link_type")
		return
	}

	pageID, ok := optionalID(w, in.PageID, "page_id")
	if !ok {
		return
	}
	parentID, ok := optionalID(w, in.ParentID, "parent_id")
	if !ok {
		return
	}

	ref := entityRef(r)
	item, err := h.nav.Create(r.Context(), sitenavstore.CreateInput{
		EntityType:  ref.EntityType,
		EntityID:    ref.EntityID,
		Label:       in.Label,
		LinkType:    in.LinkType,
		PageID:      pageID,
		ExternalURL: in.ExternalURL,
		ParentID:    parentID,
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	jsonutil.Created(w, item)
}

// GetNavTree handles GET /{entityType}/{entityID}/nav.
func (h *Handler) GetNavTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.nav.ListTree(r.Context(), entityRef(r))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	jsonutil.OK(w, tree)
}

type updateNavItemRequest struct {
	Label       *string          `json:"label"`
	LinkType    *models.LinkType `json:"link_type"`
	PageID      *string          `json:"page_id"`
	ExternalURL *string          `json:"external_url"`
	Order       *int             `json:"order"`
	IsVisible   *bool            `json:"is_visible"`
}

// UpdateNavItem handles PATCH /nav/{itemID}.
func (h *Handler) UpdateNavItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	var in updateNavItemRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.Label != nil && *in.Label == "" {
		jsonutil.BadRequest(w, "label cannot be empty")
		return
	}
	if in.LinkType != nil && !models.IsValidLinkType(*in.LinkType) {
		jsonutil.BadRequest(w, "unknown link_type")
		return
	}

	input := sitenavstore.UpdateInput{
		Label:       in.Label,
		LinkType:    in.LinkType,
		ExternalURL: in.ExternalURL,
		Order:       in.Order,
		IsVisible:   in.IsVisible,
	}
	if in.PageID != nil {
		pageID, ok := optionalID(w, *in.PageID, "page_id")
		if !ok {
			return
		}
		input.PageID = pageID
	}

	if err := h.nav.Update(r.Context(), id, input); err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	item, err := h.nav.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	jsonutil.OK(w, item)
}

// ToggleNavVisibility handles POST /nav/{itemID}/visibility.
func (h *Handler) ToggleNavVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	visible, err := h.nav.ToggleVisibility(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]bool{"is_visible": visible})
}

// DeleteNavItem handles DELETE /nav/{itemID}. Children of a top-level item
// are deleted with it.
func (h *Handler) DeleteNavItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	if err := h.nav.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	jsonutil.NoContent(w)
}

// optionalID parses an optional hex ObjectID from a request body. Empty means
// absent; garbage gets a 400.
func optionalID(w http.ResponseWriter, hex, name string) (*primitive.ObjectID, bool) {
	if hex == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		jsonutil.BadRequest(w, "invalid "+name)
		return nil, false
	}
	return &id, true
}
