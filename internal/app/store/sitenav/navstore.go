// internal/app/store/sitenav/navstore.go
package sitenavstore

import (
	"context"
	"errors"
	"time"

	"github.com/townlocal/minisite/internal/app/system/txn"
	"github.com/townlocal/minisite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CollectionName is the nav items collection.
const CollectionName = "entity_nav_items"

var (
	// ErrMissingTarget is returned when the link target does not match the
	// link type: a page link without a page id, a url link without a url.
	ErrMissingTarget = errors.New("navigation link is missing its target")

	// ErrInvalidNesting is returned when a nav item would be nested under an
	// item that is itself a child. The menu renders one dropdown level, so
	// depth is capped at two and enforced at write time.
	ErrInvalidNesting = errors.New("navigation items can only be nested one level deep")

	errEmptyLabel  = errors.New("navigation label is required")
	errBadLinkType = errors.New("unknown navigation link type")
)

// Store provides access to the entity_nav_items collection.
type Store struct {
	db  *mongo.Database
	c   *mongo.Collection
	log *zap.Logger
}

// New creates a new nav store.
func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		db:  db,
		c:   db.Collection(CollectionName),
		log: log,
	}
}

// CreateInput contains the input for creating a nav item.
type CreateInput struct {
	EntityType  string
	EntityID    string
	Label       string
	LinkType    models.LinkType
	PageID      *primitive.ObjectID
	ExternalURL string
	ParentID    *primitive.ObjectID
}

// Create inserts a nav item. The sibling order is max(order)+1 among items
// sharing the same parent (0 for the first); new items start visible.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.EntityNavigationItem, error) {
	if input.Label == "" {
		return nil, errEmptyLabel
	}
	if !models.IsValidLinkType(input.LinkType) {
		return nil, errBadLinkType
	}

	pageID, externalURL, err := linkTarget(input.LinkType, input.PageID, input.ExternalURL)
	if err != nil {
		return nil, err
	}

	ref := models.EntityRef{EntityType: input.EntityType, EntityID: input.EntityID}
	if input.ParentID != nil {
		if err := s.checkParent(ctx, ref, *input.ParentID); err != nil {
			return nil, err
		}
	}

	order, err := s.nextOrder(ctx, ref, input.ParentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	item := models.EntityNavigationItem{
		ID:          primitive.NewObjectID(),
		EntityType:  input.EntityType,
		EntityID:    input.EntityID,
		Label:       input.Label,
		LinkType:    input.LinkType,
		PageID:      pageID,
		ExternalURL: externalURL,
		ParentID:    input.ParentID,
		Order:       order,
		IsVisible:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.c.InsertOne(ctx, item); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByID loads a nav item by ObjectID. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.EntityNavigationItem, error) {
	var item models.EntityNavigationItem
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateInput holds the fields that can be updated on a nav item. Changing
// LinkType re-resolves the target fields: the ones that no longer apply are
// cleared, not left behind.
type UpdateInput struct {
	Label       *string
	LinkType    *models.LinkType
	PageID      *primitive.ObjectID
	ExternalURL *string
	Order       *int
	IsVisible   *bool
}

// Update applies an update to a nav item.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	set := bson.M{"updated_at": time.Now()}

	if input.Label != nil {
		if *input.Label == "" {
			return errEmptyLabel
		}
		set["label"] = *input.Label
	}

	// Any link change is validated against the merged state of the stored
	// item and the patch, so a target tweak cannot leave a url on a page
	// link and re-sending the current link type alone is not an error.
	if input.LinkType != nil || input.PageID != nil || input.ExternalURL != nil {
		item, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}

		linkType := item.LinkType
		if input.LinkType != nil {
			if !models.IsValidLinkType(*input.LinkType) {
				return errBadLinkType
			}
			linkType = *input.LinkType
		}

		pageID := item.PageID
		if input.PageID != nil {
			pageID = input.PageID
		}
		externalURL := item.ExternalURL
		if input.ExternalURL != nil {
			externalURL = *input.ExternalURL
		}
		// A link type change does not inherit the old target.
		if linkType != item.LinkType {
			if input.PageID == nil {
				pageID = nil
			}
			if input.ExternalURL == nil {
				externalURL = ""
			}
		}

		pageID, externalURL, err = linkTarget(linkType, pageID, externalURL)
		if err != nil {
			return err
		}
		set["link_type"] = linkType
		set["page_id"] = pageID
		set["external_url"] = externalURL
	}

	if input.Order != nil {
		set["order"] = *input.Order
	}
	if input.IsVisible != nil {
		set["is_visible"] = *input.IsVisible
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ToggleVisibility flips is_visible and returns the new value.
func (s *Store) ToggleVisibility(ctx context.Context, id primitive.ObjectID) (bool, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	visible := !item.IsVisible
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_visible": visible,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return false, err
	}
	return visible, nil
}

// Delete removes a nav item. A top-level item takes its children with it;
// the two deletes run in a transaction where supported.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if _, err := s.c.DeleteMany(ctx, bson.M{"parent_id": id}); err != nil {
			return err
		}
		res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})
}

// ListByEntity returns all nav items of one entity in sibling order.
func (s *Store) ListByEntity(ctx context.Context, ref models.EntityRef) ([]models.EntityNavigationItem, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "order", Value: 1},
		{Key: "_id", Value: 1}, // stable tie-break
	})
	cur, err := s.c.Find(ctx, bson.M{
		"entity_type": ref.EntityType,
		"entity_id":   ref.EntityID,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.EntityNavigationItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListTree returns the two-level nav tree: top-level items in sibling order,
// each carrying its children in sibling order.
func (s *Store) ListTree(ctx context.Context, ref models.EntityRef) ([]models.NavTreeNode, error) {
	items, err := s.ListByEntity(ctx, ref)
	if err != nil {
		return nil, err
	}

	children := make(map[primitive.ObjectID][]models.EntityNavigationItem)
	for _, item := range items {
		if item.ParentID != nil {
			children[*item.ParentID] = append(children[*item.ParentID], item)
		}
	}

	tree := make([]models.NavTreeNode, 0, len(items))
	for _, item := range items {
		if item.ParentID != nil {
			continue
		}
		tree = append(tree, models.NavTreeNode{
			Item:     item,
			Children: children[item.ID],
		})
	}
	return tree, nil
}

// Count returns the number of nav items for one entity.
func (s *Store) Count(ctx context.Context, ref models.EntityRef) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"entity_type": ref.EntityType,
		"entity_id":   ref.EntityID,
	})
}

// linkTarget validates that the target matches the link type and returns the
// normalized (page_id, external_url) pair. Built-in views carry no target.
func linkTarget(linkType models.LinkType, pageID *primitive.ObjectID, externalURL string) (*primitive.ObjectID, string, error) {
	switch linkType {
	case models.LinkPage:
		if pageID == nil || pageID.IsZero() {
			return nil, "", ErrMissingTarget
		}
		return pageID, "", nil
	case models.LinkURL:
		if externalURL == "" {
			return nil, "", ErrMissingTarget
		}
		return nil, externalURL, nil
	default:
		return nil, "", nil
	}
}

// checkParent verifies the parent exists in the same entity scope and is
// itself top-level.
func (s *Store) checkParent(ctx context.Context, ref models.EntityRef, parentID primitive.ObjectID) error {
	var parent models.EntityNavigationItem
	err := s.c.FindOne(ctx, bson.M{
		"_id":         parentID,
		"entity_type": ref.EntityType,
		"entity_id":   ref.EntityID,
	}).Decode(&parent)
	if err != nil {
		return err
	}
	if parent.ParentID != nil {
		return ErrInvalidNesting
	}
	return nil
}

// nextOrder computes max(sibling order)+1, 0 for the first sibling.
func (s *Store) nextOrder(ctx context.Context, ref models.EntityRef, parentID *primitive.ObjectID) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})
	var top models.EntityNavigationItem
	err := s.c.FindOne(ctx, bson.M{
		"entity_type": ref.EntityType,
		"entity_id":   ref.EntityID,
		"parent_id":   parentID,
	}, opts).Decode(&top)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return top.Order + 1, nil
}
