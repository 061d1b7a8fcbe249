// Package pageedit is the editor kernel for page bodies: adding, updating,
// reordering, and removing sections. All operations mutate the in-memory
// page only; persisting the result is the caller's job, and on a persistence
// failure the caller re-fetches rather than trying to roll back.
package pageedit

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/townlocal/minisite/internal/domain/models"
)

// ErrSectionNotFound is returned when an operation addresses a section id
// that is not on the page. Callers treat this as "someone else already
// changed this" and re-fetch.
var ErrSectionNotFound = errors.New("section not found")

// Direction is the direction of a MoveSection operation.
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// AddSection appends a new section of the given type with its default
// payload and a fresh page-unique id. Returns the new section's id.
func AddSection(page *models.EntityPage, t models.SectionType) (string, error) {
	content, err := models.DefaultContent(t)
	if err != nil {
		return "", err
	}
	section := models.Section{
		ID:      uuid.NewString(),
		Type:    t,
		Content: content,
	}
	page.Content.Sections = append(page.Content.Sections, section)
	return section.ID, nil
}

// UpdateSectionContent applies a shallow merge of patch onto the payload of
// the section with the given id: top-level fields present in patch replace
// the stored values, everything else is preserved.
func UpdateSectionContent(page *models.EntityPage, sectionID string, patch map[string]any) error {
	idx := page.SectionByID(sectionID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
	}
	section := page.Content.Sections[idx]

	merged, err := mergeContent(section, patch)
	if err != nil {
		return err
	}
	page.Content.Sections[idx].Content = merged
	return nil
}

// mergeContent round-trips the typed payload through JSON to apply the
// shallow merge, then decodes back into the typed struct for the section's
// type. Unknown-type payloads merge the same way and stay raw.
func mergeContent(section models.Section, patch map[string]any) (models.SectionContent, error) {
	current, err := json.Marshal(section.Content)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if err := json.Unmarshal(current, &fields); err != nil {
		return nil, err
	}
	for k, v := range patch {
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return models.DecodeContentJSON(section.Type, merged)
}

// RemoveSection deletes the section with the given id. Order of the
// remaining sections is positional, so reindexing is implicit.
func RemoveSection(page *models.EntityPage, sectionID string) error {
	idx := page.SectionByID(sectionID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
	}
	page.Content.Sections = append(page.Content.Sections[:idx], page.Content.Sections[idx+1:]...)
	return nil
}

// MoveSection swaps the section at index with its neighbor in the given
// direction. Moves that would go out of bounds are a no-op, not an error,
// so move buttons in the editor never need disabling logic server-side.
func MoveSection(page *models.EntityPage, index int, dir Direction) {
	sections := page.Content.Sections
	if index < 0 || index >= len(sections) {
		return
	}

	target := index
	switch dir {
	case MoveUp:
		target = index - 1
	case MoveDown:
		target = index + 1
	default:
		return
	}
	if target < 0 || target >= len(sections) {
		return
	}

	sections[index], sections[target] = sections[target], sections[index]
}
