package database

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"profiledeck/internal/deck"
)

// Conversions between the persisted rows (JSON columns for open shapes) and
// the deck package's value types. The deck package stays free of gorm.

// ToDeckProfile maps a profile row onto the resolver's record type.
func ToDeckProfile(p Profile) deck.Profile {
	return deck.Profile{
		ID:             p.ID,
		FirstName:      p.FirstName,
		Age:            p.Age,
		Location:       p.Location,
		Occupation:     p.Occupation,
		Education:      p.Education,
		Interests:      p.Interests,
		Bio:            p.Bio,
		Slide1PhotoURL: p.Slide1PhotoURL,
		Slide2PhotoURL: p.Slide2PhotoURL,
		Slide3PhotoURL: p.Slide3PhotoURL,
	}
}

// PlacementsOf decodes the profile's placement column. A missing or empty
// column yields an empty map, never an error.
func PlacementsOf(p Profile) (deck.PlacementMap, error) {
	m := deck.PlacementMap{}
	if len(p.Placements) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(p.Placements, &m); err != nil {
		return nil, fmt.Errorf("decode placements for profile %d: %w", p.ID, err)
	}
	return m, nil
}

// EncodePlacements serializes a placement map back into the JSON column.
func EncodePlacements(m deck.PlacementMap) (datatypes.JSON, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode placements: %w", err)
	}
	return datatypes.JSON(data), nil
}

// ToDeckTheme maps a theme row, decoding the backgrounds column.
func ToDeckTheme(t Theme) (deck.Theme, error) {
	out := deck.Theme{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IsActive:    t.IsActive,
	}
	if len(t.Backgrounds) > 0 {
		if err := json.Unmarshal(t.Backgrounds, &out.Backgrounds); err != nil {
			return deck.Theme{}, fmt.Errorf("decode backgrounds for theme %d: %w", t.ID, err)
		}
	}
	return out, nil
}

// EncodeBackgrounds serializes the per-slide background references.
func EncodeBackgrounds(b deck.Backgrounds) (datatypes.JSON, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode backgrounds: %w", err)
	}
	return datatypes.JSON(data), nil
}

// ToDeckElement maps an element row, decoding geometry and style columns.
func ToDeckElement(e SlideElement) (deck.Element, error) {
	out := deck.Element{
		ID:          e.ID,
		ThemeID:     e.ThemeID,
		SlideNumber: e.SlideNumber,
		Type:        deck.ElementType(e.ElementType),
		Content:     e.Content,
		Style:       deck.StyleBag{},
	}
	if len(e.Geometry) > 0 {
		if err := json.Unmarshal(e.Geometry, &out.Geometry); err != nil {
			return deck.Element{}, fmt.Errorf("decode geometry for element %d: %w", e.ID, err)
		}
	}
	if len(e.Style) > 0 {
		if err := json.Unmarshal(e.Style, &out.Style); err != nil {
			return deck.Element{}, fmt.Errorf("decode style for element %d: %w", e.ID, err)
		}
	}
	return out, nil
}

// ToDeckElements maps a batch, failing on the first malformed row.
func ToDeckElements(rows []SlideElement) ([]deck.Element, error) {
	out := make([]deck.Element, 0, len(rows))
	for _, row := range rows {
		el, err := ToDeckElement(row)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

// FromDeckElement builds the row form of a new or updated element.
func FromDeckElement(el deck.Element) (SlideElement, error) {
	geometry, err := json.Marshal(el.Geometry)
	if err != nil {
		return SlideElement{}, fmt.Errorf("encode geometry: %w", err)
	}
	style, err := json.Marshal(el.Style)
	if err != nil {
		return SlideElement{}, fmt.Errorf("encode style: %w", err)
	}
	row := SlideElement{
		ThemeID:     el.ThemeID,
		SlideNumber: el.SlideNumber,
		ElementType: string(el.Type),
		Geometry:    datatypes.JSON(geometry),
		Style:       datatypes.JSON(style),
		Content:     el.Content,
	}
	row.ID = el.ID
	return row, nil
}
