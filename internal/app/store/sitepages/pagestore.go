// internal/app/store/sitepages/pagestore.go
package sitepagestore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/townlocal/minisite/internal/app/system/slug"
	"github.com/townlocal/minisite/internal/app/system/txn"
	"github.com/townlocal/minisite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CollectionName is the pages collection. Exported so index and validator
// setup stay in sync with the store.
const CollectionName = "entity_pages"

// navCollectionName is where nav items live; page deletion cascades there.
const navCollectionName = "entity_nav_items"

var (
	// ErrDuplicateSlug is returned when the (entity, slug) pair is already
	// taken. Slugs are compared after normalization, so "About-Us" and
	// "about-us" collide.
	ErrDuplicateSlug = errors.New("a page with this slug already exists for this entity")

	errEmptyTitle = errors.New("page title is required")
	errBadSlug    = errors.New("slug must contain at least one letter or digit")
)

// Store provides access to the entity_pages collection. It holds the database
// handle, not just the collection, because deletes cascade into nav items and
// the homepage switch spans sibling documents.
type Store struct {
	db  *mongo.Database
	c   *mongo.Collection
	log *zap.Logger
}

// New creates a new page store.
func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		db:  db,
		c:   db.Collection(CollectionName),
		log: log,
	}
}

// CreateInput contains the input for creating a page.
type CreateInput struct {
	EntityType      string
	EntityID        string
	Title           string
	Slug            string // optional; derived from Title when empty
	IsPublished     bool
	MetaTitle       string
	MetaDescription string
}

// Create inserts a new page with an empty section list.
// Returns ErrDuplicateSlug if the slug is taken within the entity's site.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.EntityPage, error) {
	if input.Title == "" {
		return nil, errEmptyTitle
	}

	pageSlug := slug.Normalize(input.Slug)
	if pageSlug == "" {
		pageSlug = slug.Make(input.Title)
	}
	if pageSlug == "" {
		return nil, errBadSlug
	}

	now := time.Now()
	page := models.EntityPage{
		ID:              primitive.NewObjectID(),
		EntityType:      input.EntityType,
		EntityID:        input.EntityID,
		Title:           input.Title,
		Slug:            pageSlug,
		IsPublished:     input.IsPublished,
		MetaTitle:       input.MetaTitle,
		MetaDescription: input.MetaDescription,
		Content:         models.PageContent{Sections: []models.Section{}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Pre-check gives a clean error message; the unique index is the real
	// guarantee against races.
	taken, err := s.slugTaken(ctx, page.Ref(), pageSlug, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateSlug
	}

	if _, err := s.c.InsertOne(ctx, page); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return &page, nil
}

// GetByID loads a page by ObjectID. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.EntityPage, error) {
	var page models.EntityPage
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetBySlug loads a page by its slug within one entity's site. The given slug
// is normalized before lookup so URL casing does not matter.
func (s *Store) GetBySlug(ctx context.Context, ref models.EntityRef, pageSlug string) (*models.EntityPage, error) {
	var page models.EntityPage
	err := s.c.FindOne(ctx, bson.M{
		"entity_type": ref.EntityType,
		"entity_id":   ref.EntityID,
		"slug":        slug.Normalize(pageSlug),
	}).Decode(&page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetHomepage loads the page carrying the homepage flag for an entity.
// Returns mongo.ErrNoDocuments when no homepage is designated.
func (s *Store) GetHomepage(ctx context.Context, ref models.EntityRef) (*models.EntityPage, error) {
	var page models.EntityPage
	err := s.c.FindOne(ctx, bson.M{
		"entity_type": ref.EntityType,
		"entity_id":   ref.EntityID,
		"is_homepage": true,
	}).Decode(&page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ListByEntity returns all pages of one entity's site, oldest first.
func (s *Store) ListByEntity(ctx context.Context, ref models.EntityRef) ([]models.EntityPage, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{
		"entity_type": ref.EntityType,
		"entity_id":   ref.EntityID,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var pages []models.EntityPage
	if err := cur.All(ctx, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// UpdateInput holds the fields that can be updated on a page. Nil pointers
// leave the stored value untouched.
type UpdateInput struct {
	Title           *string
	Slug            *string
	IsPublished     *bool
	MetaTitle       *string
	MetaDescription *string
	Sections        *[]models.Section
}

// Update applies an update to a page. A slug change re-checks uniqueness
// within the entity's site.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	set := bson.M{"updated_at": time.Now()}

	if input.Title != nil {
		if *input.Title == "" {
			return errEmptyTitle
		}
		set["title"] = *input.Title
	}
	if input.Slug != nil {
		newSlug := slug.Normalize(*input.Slug)
		if newSlug == "" {
			return errBadSlug
		}
		page, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if newSlug != page.Slug {
			taken, err := s.slugTaken(ctx, page.Ref(), newSlug, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateSlug
			}
		}
		set["slug"] = newSlug
	}
	if input.IsPublished != nil {
		set["is_published"] = *input.IsPublished
	}
	if input.MetaTitle != nil {
		set["meta_title"] = *input.MetaTitle
	}
	if input.MetaDescription != nil {
		set["meta_description"] = *input.MetaDescription
	}
	if input.Sections != nil {
		set["content"] = models.PageContent{Sections: *input.Sections}
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// TogglePublish flips is_published and returns the new value.
func (s *Store) TogglePublish(ctx context.Context, id primitive.ObjectID) (bool, error) {
	page, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	published := !page.IsPublished
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_published": published,
		"updated_at":   time.Now(),
	}})
	if err != nil {
		return false, err
	}
	return published, nil
}

// SetHomepage marks one page as the entity's homepage and clears the flag on
// every sibling. The two writes run in a transaction where the server
// supports one, so there is never a moment with two homepages. Idempotent:
// targeting the current homepage leaves everything as is.
func (s *Store) SetHomepage(ctx context.Context, id primitive.ObjectID, ref models.EntityRef) error {
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		now := time.Now()

		// Clear siblings first: a failure here leaves zero homepages in
		// the fallback path, never two.
		_, err := s.c.UpdateMany(ctx, bson.M{
			"entity_type": ref.EntityType,
			"entity_id":   ref.EntityID,
			"is_homepage": true,
			"_id":         bson.M{"$ne": id},
		}, bson.M{"$set": bson.M{"is_homepage": false, "updated_at": now}})
		if err != nil {
			return err
		}

		res, err := s.c.UpdateOne(ctx, bson.M{
			"_id":         id,
			"entity_type": ref.EntityType,
			"entity_id":   ref.EntityID,
		}, bson.M{"$set": bson.M{"is_homepage": true, "updated_at": now}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			// Target missing or belongs to another entity.
			return mongo.ErrNoDocuments
		}
		return nil
	})
}

// Delete removes a page and every nav item that links to it, including child
// items. Orphaned nav links are a correctness bug, so the cascade is part of
// the delete, not a cleanup job.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return mongo.ErrNoDocuments
		}

		// Items linking to the page go, and so do their submenu children,
		// which would otherwise survive with a dangling parent_id.
		nav := s.db.Collection(navCollectionName)
		linked, err := nav.Distinct(ctx, "_id", bson.M{"page_id": id})
		if err != nil {
			return err
		}
		filter := bson.M{"page_id": id}
		if len(linked) > 0 {
			filter = bson.M{"$or": []bson.M{
				{"page_id": id},
				{"parent_id": bson.M{"$in": linked}},
			}}
		}
		if _, err := nav.DeleteMany(ctx, filter); err != nil {
			return err
		}
		return nil
	})
}

// Counts returns the dashboard summary for one entity: total pages and how
// many are published.
func (s *Store) Counts(ctx context.Context, ref models.EntityRef) (total, published int64, err error) {
	filter := bson.M{
		"entity_type": ref.EntityType,
		"entity_id":   ref.EntityID,
	}
	total, err = s.c.CountDocuments(ctx, filter)
	if err != nil {
		return 0, 0, err
	}

	filter["is_published"] = true
	published, err = s.c.CountDocuments(ctx, filter)
	if err != nil {
		return 0, 0, err
	}
	return total, published, nil
}

// slugTaken reports whether another page of the same entity already uses the
// slug. excludeID skips the page being updated.
func (s *Store) slugTaken(ctx context.Context, ref models.EntityRef, pageSlug string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"entity_type": ref.EntityType,
		"entity_id":   ref.EntityID,
		"slug":        pageSlug,
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	count, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
