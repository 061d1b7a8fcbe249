package models

import (
	"encoding/json"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestSection_JSONRoundTrip(t *testing.T) {
	in := Section{
		ID:   "s1",
		Type: SectionHero,
		Content: HeroContent{
			Title:      "Welcome",
			ButtonText: "Book now",
			ButtonURL:  "https://example.com/book",
		},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out Section
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	hero, ok := out.Content.(HeroContent)
	if !ok {
		t.Fatalf("Content type = %T, want HeroContent", out.Content)
	}
	if hero.Title != "Welcome" || hero.ButtonURL != "https://example.com/book" {
		t.Errorf("round-tripped hero = %+v", hero)
	}
}

func TestSection_UnknownTypeKeepsPayload(t *testing.T) {
	raw := []byte(`{"id":"s9","type":"countdown","content":{"target":"2027-01-01","label":"Opening"}}`)

	var sec Section
	if err := json.Unmarshal(raw, &sec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	unknown, ok := sec.Content.(UnknownContent)
	if !ok {
		t.Fatalf("Content type = %T, want UnknownContent", sec.Content)
	}
	if unknown.Fields["label"] != "Opening" {
		t.Errorf("Fields = %v, raw payload should survive", unknown.Fields)
	}

	// And it survives re-serialization unchanged.
	data, err := json.Marshal(sec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var again Section
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatalf("second Unmarshal() error = %v", err)
	}
	if again.Content.(UnknownContent).Fields["target"] != "2027-01-01" {
		t.Error("unknown payload should round-trip byte-for-meaning")
	}
}

func TestSection_BSONRoundTrip(t *testing.T) {
	in := Section{
		ID:   "s2",
		Type: SectionMenu,
		Content: MenuContent{
			Title: "Dinner",
			Sections: []MenuGroup{{
				Name:  "Mains",
				Items: []MenuItem{{Name: "Trout", Price: "$24"}},
			}},
		},
	}

	data, err := bson.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out Section
	if err := bson.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	menu, ok := out.Content.(MenuContent)
	if !ok {
		t.Fatalf("Content type = %T, want MenuContent", out.Content)
	}
	if len(menu.Sections) != 1 || menu.Sections[0].Items[0].Name != "Trout" {
		t.Errorf("round-tripped menu = %+v", menu)
	}
}

func TestDefaultContent(t *testing.T) {
	for _, st := range AllSectionTypes() {
		if _, err := DefaultContent(st); err != nil {
			t.Errorf("DefaultContent(%q) error = %v", st, err)
		}
	}

	if _, err := DefaultContent("carousel"); !errors.Is(err, ErrUnsupportedSectionType) {
		t.Errorf("DefaultContent(carousel) error = %v, want ErrUnsupportedSectionType", err)
	}

	t.Run("hours start with a full week", func(t *testing.T) {
		c, err := DefaultContent(SectionHours)
		if err != nil {
			t.Fatal(err)
		}
		if hours := c.(HoursContent); len(hours.Hours) != 7 {
			t.Errorf("default hours = %d entries, want 7", len(hours.Hours))
		}
	})
}

func TestLinkTypesForEntity(t *testing.T) {
	hasMenu := func(types []LinkType) bool {
		for _, lt := range types {
			if lt == LinkMenu {
				return true
			}
		}
		return false
	}

	if !hasMenu(LinkTypesForEntity("restaurant")) {
		t.Error("restaurants should be offered the menu link type")
	}
	if hasMenu(LinkTypesForEntity("church")) {
		t.Error("churches should not be offered the menu link type")
	}
}

func TestEntityPage_SectionByID(t *testing.T) {
	page := EntityPage{Content: PageContent{Sections: []Section{
		{ID: "a", Type: SectionText, Content: TextContent{}},
		{ID: "b", Type: SectionDivider, Content: DividerContent{}},
	}}}

	if got := page.SectionByID("b"); got != 1 {
		t.Errorf("SectionByID(b) = %d, want 1", got)
	}
	if got := page.SectionByID("zzz"); got != -1 {
		t.Errorf("SectionByID(missing) = %d, want -1", got)
	}
}
