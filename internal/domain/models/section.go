// internal/domain/models/section.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// SectionType identifies the kind of content block a Section holds.
type SectionType string

// Known section types. Pages persisted by a newer schema version may carry
// types outside this set; those decode as UnknownContent and are skipped at
// render time rather than rejected.
const (
	SectionHero     SectionType = "hero"
	SectionText     SectionType = "text"
	SectionImage    SectionType = "image"
	SectionGallery  SectionType = "gallery"
	SectionFeatures SectionType = "features"
	SectionMenu     SectionType = "menu"
	SectionHours    SectionType = "hours"
	SectionContact  SectionType = "contact"
	SectionCTA      SectionType = "cta"
	SectionHTML     SectionType = "html"
	SectionDivider  SectionType = "divider"
	SectionSpacer   SectionType = "spacer"
)

// ErrUnsupportedSectionType is returned when a caller asks for a section
// type outside the known set (e.g. DefaultContent with a typo'd type).
var ErrUnsupportedSectionType = errors.New("unsupported section type")

// AllSectionTypes returns the known section types in editor display order.
func AllSectionTypes() []SectionType {
	return []SectionType{
		SectionHero, SectionText, SectionImage, SectionGallery,
		SectionFeatures, SectionMenu, SectionHours, SectionContact,
		SectionCTA, SectionHTML, SectionDivider, SectionSpacer,
	}
}

// IsKnownSectionType reports whether t is in the closed set of section types.
func IsKnownSectionType(t SectionType) bool {
	for _, k := range AllSectionTypes() {
		if t == k {
			return true
		}
	}
	return false
}

// SectionContent is the payload of one Section. Exactly one implementation
// exists per known SectionType, plus UnknownContent for forward compatibility.
type SectionContent interface {
	sectionType() SectionType
}

// HeroContent is the payload for "hero" sections.
type HeroContent struct {
	Title      string `bson:"title" json:"title"`
	Subtitle   string `bson:"subtitle" json:"subtitle"`
	Image      string `bson:"image" json:"image"`
	ButtonText string `bson:"buttonText" json:"buttonText"`
	ButtonURL  string `bson:"buttonUrl" json:"buttonUrl"`
}

// TextContent is the payload for "text" sections.
type TextContent struct {
	Heading string `bson:"heading" json:"heading"`
	Body    string `bson:"body" json:"body"`
}

// ImageContent is the payload for "image" sections.
type ImageContent struct {
	URL     string `bson:"url" json:"url"`
	Caption string `bson:"caption" json:"caption"`
	Alt     string `bson:"alt" json:"alt"`
}

// GalleryImage is one image within a gallery section.
type GalleryImage struct {
	URL     string `bson:"url" json:"url"`
	Caption string `bson:"caption" json:"caption"`
}

// GalleryContent is the payload for "gallery" sections.
type GalleryContent struct {
	Title   string         `bson:"title" json:"title"`
	Images  []GalleryImage `bson:"images" json:"images"`
	Columns int            `bson:"columns" json:"columns"`
}

// FeatureItem is one entry within a features section.
type FeatureItem struct {
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
}

// FeaturesContent is the payload for "features" sections.
type FeaturesContent struct {
	Title    string        `bson:"title" json:"title"`
	Features []FeatureItem `bson:"features" json:"features"`
}

// MenuItem is one dish/offering within a menu section group.
type MenuItem struct {
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
	Price       string `bson:"price" json:"price"`
}

// MenuGroup is a named group of menu items (e.g. "Appetizers").
type MenuGroup struct {
	Name  string     `bson:"name" json:"name"`
	Items []MenuItem `bson:"items" json:"items"`
}

// MenuContent is the payload for "menu" sections.
type MenuContent struct {
	Title    string      `bson:"title" json:"title"`
	Sections []MenuGroup `bson:"sections" json:"sections"`
}

// HoursEntry is the open/close times for one day of the week.
type HoursEntry struct {
	Day       string `bson:"day" json:"day"`
	OpenTime  string `bson:"open_time" json:"open_time"`
	CloseTime string `bson:"close_time" json:"close_time"`
	IsClosed  bool   `bson:"is_closed" json:"is_closed"`
}

// HoursContent is the payload for "hours" sections. The content is a
// snapshot owned by the page; it is never read from the owning entity's
// live hours.
type HoursContent struct {
	Title string       `bson:"title" json:"title"`
	Hours []HoursEntry `bson:"hours" json:"hours"`
}

// ContactContent is the payload for "contact" sections. Like hours, this is
// a snapshot, not a live binding to the entity's contact record.
type ContactContent struct {
	Title   string `bson:"title" json:"title"`
	Phone   string `bson:"phone" json:"phone"`
	Email   string `bson:"email" json:"email"`
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zip_code" json:"zip_code"`
}

// CTAContent is the payload for "cta" (call to action) sections.
type CTAContent struct {
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	ButtonText  string `bson:"buttonText" json:"buttonText"`
	ButtonURL   string `bson:"buttonUrl" json:"buttonUrl"`
}

// HTMLContent is the payload for raw "html" sections. The markup is
// sanitized at render time, never trusted as stored.
type HTMLContent struct {
	HTML string `bson:"html" json:"html"`
}

// DividerContent is the (empty) payload for "divider" sections.
type DividerContent struct{}

// SpacerContent is the payload for "spacer" sections. Size is a relative
// height unit.
type SpacerContent struct {
	Size int `bson:"size" json:"size"`
}

// UnknownContent holds the raw payload of a section type this build does
// not understand. It round-trips through storage unchanged so a newer
// editor can still read what it wrote.
type UnknownContent struct {
	Fields map[string]any
}

func (HeroContent) sectionType() SectionType     { return SectionHero }
func (TextContent) sectionType() SectionType     { return SectionText }
func (ImageContent) sectionType() SectionType    { return SectionImage }
func (GalleryContent) sectionType() SectionType  { return SectionGallery }
func (FeaturesContent) sectionType() SectionType { return SectionFeatures }
func (MenuContent) sectionType() SectionType     { return SectionMenu }
func (HoursContent) sectionType() SectionType    { return SectionHours }
func (ContactContent) sectionType() SectionType  { return SectionContact }
func (CTAContent) sectionType() SectionType      { return SectionCTA }
func (HTMLContent) sectionType() SectionType     { return SectionHTML }
func (DividerContent) sectionType() SectionType  { return SectionDivider }
func (SpacerContent) sectionType() SectionType   { return SectionSpacer }
func (UnknownContent) sectionType() SectionType  { return "" }

// MarshalJSON emits the raw fields of an unknown payload unchanged.
func (c UnknownContent) MarshalJSON() ([]byte, error) {
	if c.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.Fields)
}

// MarshalBSON emits the raw fields of an unknown payload unchanged.
func (c UnknownContent) MarshalBSON() ([]byte, error) {
	fields := c.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	return bson.Marshal(fields)
}

// DefaultContent returns a valid empty payload for a new section of the
// given type. Unknown types are an error, not silently ignored.
func DefaultContent(t SectionType) (SectionContent, error) {
	switch t {
	case SectionHero:
		return HeroContent{}, nil
	case SectionText:
		return TextContent{}, nil
	case SectionImage:
		return ImageContent{}, nil
	case SectionGallery:
		return GalleryContent{Images: []GalleryImage{}, Columns: 3}, nil
	case SectionFeatures:
		return FeaturesContent{Features: []FeatureItem{}}, nil
	case SectionMenu:
		return MenuContent{Sections: []MenuGroup{}}, nil
	case SectionHours:
		return HoursContent{Hours: defaultWeekHours()}, nil
	case SectionContact:
		return ContactContent{}, nil
	case SectionCTA:
		return CTAContent{}, nil
	case SectionHTML:
		return HTMLContent{}, nil
	case SectionDivider:
		return DividerContent{}, nil
	case SectionSpacer:
		return SpacerContent{Size: 2}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSectionType, t)
	}
}

// defaultWeekHours returns one entry per day of the week, Monday first.
func defaultWeekHours() []HoursEntry {
	days := []string{
		"Monday", "Tuesday", "Wednesday", "Thursday",
		"Friday", "Saturday", "Sunday",
	}
	hours := make([]HoursEntry, 0, len(days))
	for _, day := range days {
		hours = append(hours, HoursEntry{
			Day:       day,
			OpenTime:  "09:00",
			CloseTime: "17:00",
		})
	}
	return hours
}

// Section is one content block within a page body. The ID is unique within
// the page only; it exists so editor operations (update, remove, move) can
// address a section, and is never a global identifier.
type Section struct {
	ID      string
	Type    SectionType
	Content SectionContent
}

// sectionJSON is the serialized shape of a Section.
type sectionJSON struct {
	ID      string          `json:"id"`
	Type    SectionType     `json:"type"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON writes the section with its payload under "content".
func (s Section) MarshalJSON() ([]byte, error) {
	content := s.Content
	if content == nil {
		content = UnknownContent{}
	}
	return json.Marshal(struct {
		ID      string         `json:"id"`
		Type    SectionType    `json:"type"`
		Content SectionContent `json:"content"`
	}{s.ID, s.Type, content})
}

// UnmarshalJSON decodes the payload into the typed struct for the section's
// type; unknown types keep their raw fields.
func (s *Section) UnmarshalJSON(data []byte) error {
	var wire sectionJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := DecodeContentJSON(wire.Type, wire.Content)
	if err != nil {
		return err
	}
	s.ID = wire.ID
	s.Type = wire.Type
	s.Content = content
	return nil
}

// MarshalBSON writes the section with its payload under "content".
func (s Section) MarshalBSON() ([]byte, error) {
	content := s.Content
	if content == nil {
		content = UnknownContent{}
	}
	return bson.Marshal(struct {
		ID      string         `bson:"id"`
		Type    SectionType    `bson:"type"`
		Content SectionContent `bson:"content"`
	}{s.ID, s.Type, content})
}

// UnmarshalBSON decodes the payload into the typed struct for the section's
// type; unknown types keep their raw fields.
func (s *Section) UnmarshalBSON(data []byte) error {
	var wire struct {
		ID      string      `bson:"id"`
		Type    SectionType `bson:"type"`
		Content bson.Raw    `bson:"content"`
	}
	if err := bson.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := decodeContentBSON(wire.Type, wire.Content)
	if err != nil {
		return err
	}
	s.ID = wire.ID
	s.Type = wire.Type
	s.Content = content
	return nil
}

// DecodeContentJSON decodes a JSON payload for the given section type.
// Empty payloads decode to the type's zero value; unknown types decode to
// UnknownContent. Exported for the editor kernel, which round-trips
// payloads through JSON to apply partial updates.
func DecodeContentJSON(t SectionType, data []byte) (SectionContent, error) {
	if len(data) == 0 || string(data) == "null" {
		data = []byte("{}")
	}
	switch t {
	case SectionHero:
		var c HeroContent
		return c, json.Unmarshal(data, &c)
	case SectionText:
		var c TextContent
		return c, json.Unmarshal(data, &c)
	case SectionImage:
		var c ImageContent
		return c, json.Unmarshal(data, &c)
	case SectionGallery:
		var c GalleryContent
		return c, json.Unmarshal(data, &c)
	case SectionFeatures:
		var c FeaturesContent
		return c, json.Unmarshal(data, &c)
	case SectionMenu:
		var c MenuContent
		return c, json.Unmarshal(data, &c)
	case SectionHours:
		var c HoursContent
		return c, json.Unmarshal(data, &c)
	case SectionContact:
		var c ContactContent
		return c, json.Unmarshal(data, &c)
	case SectionCTA:
		var c CTAContent
		return c, json.Unmarshal(data, &c)
	case SectionHTML:
		var c HTMLContent
		return c, json.Unmarshal(data, &c)
	case SectionDivider:
		return DividerContent{}, nil
	case SectionSpacer:
		var c SpacerContent
		return c, json.Unmarshal(data, &c)
	default:
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, err
		}
		return UnknownContent{Fields: fields}, nil
	}
}

// decodeContentBSON is the BSON counterpart of DecodeContentJSON.
func decodeContentBSON(t SectionType, raw bson.Raw) (SectionContent, error) {
	if len(raw) == 0 {
		// Absent payload: same behavior as an empty document.
		empty, err := bson.Marshal(bson.M{})
		if err != nil {
			return nil, err
		}
		raw = empty
	}
	switch t {
	case SectionHero:
		var c HeroContent
		return c, bson.Unmarshal(raw, &c)
	case SectionText:
		var c TextContent
		return c, bson.Unmarshal(raw, &c)
	case SectionImage:
		var c ImageContent
		return c, bson.Unmarshal(raw, &c)
	case SectionGallery:
		var c GalleryContent
		return c, bson.Unmarshal(raw, &c)
	case SectionFeatures:
		var c FeaturesContent
		return c, bson.Unmarshal(raw, &c)
	case SectionMenu:
		var c MenuContent
		return c, bson.Unmarshal(raw, &c)
	case SectionHours:
		var c HoursContent
		return c, bson.Unmarshal(raw, &c)
	case SectionContact:
		var c ContactContent
		return c, bson.Unmarshal(raw, &c)
	case SectionCTA:
		var c CTAContent
		return c, bson.Unmarshal(raw, &c)
	case SectionHTML:
		var c HTMLContent
		return c, bson.Unmarshal(raw, &c)
	case SectionDivider:
		return DividerContent{}, nil
	case SectionSpacer:
		var c SpacerContent
		return c, bson.Unmarshal(raw, &c)
	default:
		var fields map[string]any
		if err := bson.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		return UnknownContent{Fields: fields}, nil
	}
}
