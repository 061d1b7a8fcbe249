// internal/domain/models/page.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntityRef identifies the directory entity (restaurant, church, school,
// attraction) that owns a mini-site. The pair is immutable after a page or
// nav item is created and is never empty.
type EntityRef struct {
	EntityType string `bson:"entity_type" json:"entity_type"`
	EntityID   string `bson:"entity_id" json:"entity_id"`
}

// IsZero reports whether either half of the reference is missing.
func (r EntityRef) IsZero() bool {
	return r.EntityType == "" || r.EntityID == ""
}

// PageContent is the body of a page: an ordered list of sections. Order is
// positional (array index) and is the rendering order.
type PageContent struct {
	Sections []Section `bson:"sections" json:"sections"`
}

// EntityPage is one page of an entity's mini-site.
//
// Invariants enforced by the page store:
//   - Slug is unique within the owning entity (case-insensitive).
//   - At most one page per entity has IsHomepage set.
type EntityPage struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EntityType string             `bson:"entity_type" json:"entity_type"`
	EntityID   string             `bson:"entity_id" json:"entity_id"`

	Title       string `bson:"title" json:"title"`
	Slug        string `bson:"slug" json:"slug"`
	IsPublished bool   `bson:"is_published" json:"is_published"`
	IsHomepage  bool   `bson:"is_homepage" json:"is_homepage"`

	// SEO metadata; optional, no validation beyond length guidance.
	MetaTitle       string `bson:"meta_title,omitempty" json:"meta_title,omitempty"`
	MetaDescription string `bson:"meta_description,omitempty" json:"meta_description,omitempty"`

	Content PageContent `bson:"content" json:"content"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Ref returns the owner reference of the page.
func (p EntityPage) Ref() EntityRef {
	return EntityRef{EntityType: p.EntityType, EntityID: p.EntityID}
}

// SectionByID returns the index of the section with the given id, or -1.
func (p EntityPage) SectionByID(sectionID string) int {
	for i, s := range p.Content.Sections {
		if s.ID == sectionID {
			return i
		}
	}
	return -1
}
