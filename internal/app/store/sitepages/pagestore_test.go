package sitepagestore

import (
	"context"
	"errors"
	"testing"

	sitenavstore "github.com/townlocal/minisite/internal/app/store/sitenav"
	"github.com/townlocal/minisite/internal/domain/models"
	"github.com/townlocal/minisite/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var testRef = models.EntityRef{EntityType: "restaurant", EntityID: "rest-1"}

func newTestStore(t *testing.T) (*Store, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return New(db, zap.NewNop()), db
}

func mustCreate(t *testing.T, ctx context.Context, store *Store, title string) *models.EntityPage {
	t.Helper()
	page, err := store.Create(ctx, CreateInput{
		EntityType: testRef.EntityType,
		EntityID:   testRef.EntityID,
		Title:      title,
	})
	if err != nil {
		t.Fatalf("Create(%q) error = %v", title, err)
	}
	return page
}

func TestStore_Create(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	page, err := store.Create(ctx, CreateInput{
		EntityType: "restaurant",
		EntityID:   "rest-1",
		Title:      "About Us",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if page.Slug != "about-us" {
		t.Errorf("Slug = %q, want about-us (derived from title)", page.Slug)
	}
	if page.IsHomepage {
		t.Error("new page should not be the homepage")
	}
	if page.Content.Sections == nil || len(page.Content.Sections) != 0 {
		t.Errorf("new page should start with an empty section list, got %v", page.Content.Sections)
	}

	got, err := store.GetByID(ctx, page.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "About Us" {
		t.Errorf("Title = %q, want About Us", got.Title)
	}
}

func TestStore_Create_DuplicateSlug(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, CreateInput{
		EntityType: "restaurant", EntityID: "rest-1", Title: "Menu",
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Same slug, same entity: rejected even with different casing.
	_, err := store.Create(ctx, CreateInput{
		EntityType: "restaurant", EntityID: "rest-1", Title: "Our Menu", Slug: "MENU",
	})
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("Create(duplicate slug) error = %v, want ErrDuplicateSlug", err)
	}

	// Same slug, different entity: fine.
	if _, err := store.Create(ctx, CreateInput{
		EntityType: "restaurant", EntityID: "rest-2", Title: "Menu",
	}); err != nil {
		t.Errorf("Create(same slug, other entity) error = %v", err)
	}
}

func TestStore_Create_EmptyTitle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, CreateInput{
		EntityType: "restaurant", EntityID: "rest-1",
	}); err == nil {
		t.Error("Create() should reject an empty title")
	}
}

func TestStore_Update_Sections(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	page := mustCreate(t, ctx, store, "Home")

	sections := []models.Section{
		{ID: "s1", Type: models.SectionHero, Content: models.HeroContent{Title: "Welcome"}},
		{ID: "s2", Type: models.SectionText, Content: models.TextContent{Body: "Hi"}},
	}
	if err := store.Update(ctx, page.ID, UpdateInput{Sections: &sections}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := store.GetByID(ctx, page.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Content.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(got.Content.Sections))
	}
	hero, ok := got.Content.Sections[0].Content.(models.HeroContent)
	if !ok {
		t.Fatalf("section content round-tripped as %T, want HeroContent", got.Content.Sections[0].Content)
	}
	if hero.Title != "Welcome" {
		t.Errorf("hero title = %q, want Welcome", hero.Title)
	}
}

func TestStore_Update_SlugCollision(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mustCreate(t, ctx, store, "Home")
	page := mustCreate(t, ctx, store, "Contact")

	newSlug := "home"
	err := store.Update(ctx, page.ID, UpdateInput{Slug: &newSlug})
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("Update(slug collision) error = %v, want ErrDuplicateSlug", err)
	}

	// Re-saving a page's own slug is not a collision.
	ownSlug := "contact"
	if err := store.Update(ctx, page.ID, UpdateInput{Slug: &ownSlug}); err != nil {
		t.Errorf("Update(own slug) error = %v", err)
	}
}

func TestStore_Update_NotFound(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	title := "New Title"
	err := store.Update(ctx, primitive.NewObjectID(), UpdateInput{Title: &title})
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("Update(missing id) error = %v, want ErrNoDocuments", err)
	}
}

func TestStore_TogglePublish(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	page := mustCreate(t, ctx, store, "Home")

	published, err := store.TogglePublish(ctx, page.ID)
	if err != nil {
		t.Fatalf("TogglePublish() error = %v", err)
	}
	if !published {
		t.Error("first toggle should publish a draft page")
	}

	published, err = store.TogglePublish(ctx, page.ID)
	if err != nil {
		t.Fatalf("second TogglePublish() error = %v", err)
	}
	if published {
		t.Error("second toggle should unpublish")
	}
}

func TestStore_SetHomepage(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pageA := mustCreate(t, ctx, store, "Home")
	pageB := mustCreate(t, ctx, store, "Specials")

	if err := store.SetHomepage(ctx, pageA.ID, testRef); err != nil {
		t.Fatalf("SetHomepage(A) error = %v", err)
	}
	if err := store.SetHomepage(ctx, pageB.ID, testRef); err != nil {
		t.Fatalf("SetHomepage(B) error = %v", err)
	}

	gotA, _ := store.GetByID(ctx, pageA.ID)
	gotB, _ := store.GetByID(ctx, pageB.ID)
	if gotA.IsHomepage {
		t.Error("previous homepage should have lost the flag")
	}
	if !gotB.IsHomepage {
		t.Error("target page should carry the homepage flag")
	}

	home, err := store.GetHomepage(ctx, testRef)
	if err != nil {
		t.Fatalf("GetHomepage() error = %v", err)
	}
	if home.ID != pageB.ID {
		t.Errorf("GetHomepage() = %s, want %s", home.ID.Hex(), pageB.ID.Hex())
	}
}

func TestStore_SetHomepage_Idempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	page := mustCreate(t, ctx, store, "Home")
	mustCreate(t, ctx, store, "About")

	if err := store.SetHomepage(ctx, page.ID, testRef); err != nil {
		t.Fatalf("SetHomepage() error = %v", err)
	}
	if err := store.SetHomepage(ctx, page.ID, testRef); err != nil {
		t.Fatalf("SetHomepage() repeat error = %v", err)
	}

	pages, err := store.ListByEntity(ctx, testRef)
	if err != nil {
		t.Fatalf("ListByEntity() error = %v", err)
	}
	homepages := 0
	for _, p := range pages {
		if p.IsHomepage {
			homepages++
		}
	}
	if homepages != 1 {
		t.Errorf("homepage count = %d, want exactly 1", homepages)
	}
}

func TestStore_SetHomepage_PreservesPublishState(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// A published homepage and a draft sibling. Moving the flag must not
	// touch either publish state.
	pageA := mustCreate(t, ctx, store, "Home")
	if _, err := store.TogglePublish(ctx, pageA.ID); err != nil {
		t.Fatalf("TogglePublish() error = %v", err)
	}
	if err := store.SetHomepage(ctx, pageA.ID, testRef); err != nil {
		t.Fatalf("SetHomepage(A) error = %v", err)
	}
	pageB := mustCreate(t, ctx, store, "Draft Page")

	if err := store.SetHomepage(ctx, pageB.ID, testRef); err != nil {
		t.Fatalf("SetHomepage(B) error = %v", err)
	}

	gotA, _ := store.GetByID(ctx, pageA.ID)
	gotB, _ := store.GetByID(ctx, pageB.ID)
	if !gotA.IsPublished || gotA.IsHomepage {
		t.Errorf("page A = published %v homepage %v, want published true homepage false", gotA.IsPublished, gotA.IsHomepage)
	}
	if gotB.IsPublished || !gotB.IsHomepage {
		t.Errorf("page B = published %v homepage %v, want published false homepage true", gotB.IsPublished, gotB.IsHomepage)
	}
}

func TestStore_SetHomepage_WrongEntity(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	page := mustCreate(t, ctx, store, "Home")

	other := models.EntityRef{EntityType: "restaurant", EntityID: "rest-other"}
	err := store.SetHomepage(ctx, page.ID, other)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("SetHomepage(wrong entity) error = %v, want ErrNoDocuments", err)
	}
}

func TestStore_Delete_CascadesNavItems(t *testing.T) {
	store, db := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	page := mustCreate(t, ctx, store, "Specials")
	keep := mustCreate(t, ctx, store, "About")

	navStore := sitenavstore.New(db, zap.NewNop())
	if _, err := navStore.Create(ctx, sitenavstore.CreateInput{
		EntityType: testRef.EntityType, EntityID: testRef.EntityID,
		Label: "Specials", LinkType: models.LinkPage, PageID: &page.ID,
	}); err != nil {
		t.Fatalf("nav Create() error = %v", err)
	}
	keepItem, err := navStore.Create(ctx, sitenavstore.CreateInput{
		EntityType: testRef.EntityType, EntityID: testRef.EntityID,
		Label: "About", LinkType: models.LinkPage, PageID: &keep.ID,
	})
	if err != nil {
		t.Fatalf("nav Create() error = %v", err)
	}

	if err := store.Delete(ctx, page.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := store.GetByID(ctx, page.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Error("deleted page should be gone")
	}

	items, err := navStore.ListByEntity(ctx, testRef)
	if err != nil {
		t.Fatalf("nav ListByEntity() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != keepItem.ID {
		t.Errorf("nav items after cascade = %v, want only the item for the surviving page", items)
	}
}

func TestStore_Delete_CascadesNavChildren(t *testing.T) {
	store, db := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	page := mustCreate(t, ctx, store, "About")

	// A page-linked top-level item with a submenu. Deleting the page must
	// take the children too, not leave them pointing at a deleted parent.
	navStore := sitenavstore.New(db, zap.NewNop())
	parent, err := navStore.Create(ctx, sitenavstore.CreateInput{
		EntityType: testRef.EntityType, EntityID: testRef.EntityID,
		Label: "About", LinkType: models.LinkPage, PageID: &page.ID,
	})
	if err != nil {
		t.Fatalf("nav Create() error = %v", err)
	}
	for _, label := range []string{"Team", "History"} {
		if _, err := navStore.Create(ctx, sitenavstore.CreateInput{
			EntityType: testRef.EntityType, EntityID: testRef.EntityID,
			Label: label, LinkType: models.LinkURL,
			ExternalURL: "https://example.com/" + label,
			ParentID:    &parent.ID,
		}); err != nil {
			t.Fatalf("nav Create(%q) error = %v", label, err)
		}
	}
	other, err := navStore.Create(ctx, sitenavstore.CreateInput{
		EntityType: testRef.EntityType, EntityID: testRef.EntityID,
		Label: "Hours", LinkType: models.LinkHours,
	})
	if err != nil {
		t.Fatalf("nav Create() error = %v", err)
	}

	if err := store.Delete(ctx, page.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	items, err := navStore.ListByEntity(ctx, testRef)
	if err != nil {
		t.Fatalf("nav ListByEntity() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != other.ID {
		t.Errorf("nav items after cascade = %d, want only the unrelated item", len(items))
	}
}

func TestStore_Delete_NotFound(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Delete(ctx, primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("Delete(missing id) error = %v, want ErrNoDocuments", err)
	}
}

func TestStore_Counts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mustCreate(t, ctx, store, "Home")
	page := mustCreate(t, ctx, store, "Menu")
	if _, err := store.TogglePublish(ctx, page.ID); err != nil {
		t.Fatalf("TogglePublish() error = %v", err)
	}

	total, published, err := store.Counts(ctx, testRef)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if total != 2 || published != 1 {
		t.Errorf("Counts() = (%d, %d), want (2, 1)", total, published)
	}
}
