// internal/domain/models/navigation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LinkType is what a navigation item points at: a page of the mini-site,
// an external URL, or one of the built-in views.
type LinkType string

const (
	LinkPage    LinkType = "page"
	LinkURL     LinkType = "url"
	LinkMenu    LinkType = "menu"
	LinkGallery LinkType = "gallery"
	LinkContact LinkType = "contact"
	LinkHours   LinkType = "hours"
)

// LinkTypesForEntity returns the link types offered when editing navigation
// for the given owner entity type. The menu view only makes sense for food
// businesses; everything else is available to all entity types.
func LinkTypesForEntity(entityType string) []LinkType {
	switch entityType {
	case "restaurant", "cafe", "bakery":
		return []LinkType{LinkPage, LinkURL, LinkMenu, LinkGallery, LinkContact, LinkHours}
	default:
		return []LinkType{LinkPage, LinkURL, LinkGallery, LinkContact, LinkHours}
	}
}

// IsValidLinkType reports whether t is in the closed set of link types.
func IsValidLinkType(t LinkType) bool {
	switch t {
	case LinkPage, LinkURL, LinkMenu, LinkGallery, LinkContact, LinkHours:
		return true
	}
	return false
}

// EntityNavigationItem is one entry in an entity's navigation tree.
//
// The tree is exactly two levels: a top-level item (ParentID nil) may have
// children, a child may not. Siblings are ordered ascending by Order.
//
// Invariants enforced by the nav store:
//   - PageID is set iff LinkType is "page"; ExternalURL iff "url".
//   - ParentID, when set, refers to a top-level item of the same entity.
type EntityNavigationItem struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EntityType string             `bson:"entity_type" json:"entity_type"`
	EntityID   string             `bson:"entity_id" json:"entity_id"`

	Label       string              `bson:"label" json:"label"`
	LinkType    LinkType            `bson:"link_type" json:"link_type"`
	PageID      *primitive.ObjectID `bson:"page_id,omitempty" json:"page_id,omitempty"`
	ExternalURL string              `bson:"external_url,omitempty" json:"external_url,omitempty"`

	ParentID  *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	Order     int                 `bson:"order" json:"order"`
	IsVisible bool                `bson:"is_visible" json:"is_visible"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Ref returns the owner reference of the nav item.
func (n EntityNavigationItem) Ref() EntityRef {
	return EntityRef{EntityType: n.EntityType, EntityID: n.EntityID}
}

// IsTopLevel reports whether the item sits at the top of the nav tree.
func (n EntityNavigationItem) IsTopLevel() bool {
	return n.ParentID == nil
}

// NavTreeNode is one top-level nav item with its ordered children, as
// returned by the nav store's tree listing.
type NavTreeNode struct {
	Item     EntityNavigationItem   `json:"item"`
	Children []EntityNavigationItem `json:"children"`
}
