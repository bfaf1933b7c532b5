// Package deck holds the slide template data model and the content
// resolution / rendering pipeline: elements placed on the three slides of a
// theme, the resolver that binds them to a profile, per-image placement
// state, and the export sequencer.
package deck

import "fmt"

// ElementType discriminates what an element renders as. The content shape
// depends on it: text may carry placeholder tokens, freeform is always
// literal, image carries an object key or URL, container carries nothing.
type ElementType string

const (
	ElementText      ElementType = "text"
	ElementFreeform  ElementType = "freeform"
	ElementContainer ElementType = "container"
	ElementImage     ElementType = "image"
)

// Valid reports whether t is one of the known element types.
func (t ElementType) Valid() bool {
	switch t {
	case ElementText, ElementFreeform, ElementContainer, ElementImage:
		return true
	}
	return false
}

// Geometry is the element's frame on the 1920x1080 slide canvas.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultGeometry is assigned to every newly created element.
func DefaultGeometry() Geometry {
	return Geometry{X: 0, Y: 0, Width: 200, Height: 100}
}

// GeometryPatch is a partial geometry update. Nil fields keep their prior
// value; each of x/y/width/height is independently overridable.
type GeometryPatch struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// Apply merges the patch key-wise over g and validates the result.
func (g Geometry) Apply(p GeometryPatch) (Geometry, error) {
	out := g
	if p.X != nil {
		out.X = *p.X
	}
	if p.Y != nil {
		out.Y = *p.Y
	}
	if p.Width != nil {
		out.Width = *p.Width
	}
	if p.Height != nil {
		out.Height = *p.Height
	}
	if err := out.Validate(); err != nil {
		return Geometry{}, err
	}
	return out, nil
}

// Validate rejects negative offsets and non-positive sizes.
func (g Geometry) Validate() error {
	if g.X < 0 || g.Y < 0 {
		return &ValidationError{Field: "geometry", Reason: "x and y must be non-negative"}
	}
	if g.Width <= 0 || g.Height <= 0 {
		return &ValidationError{Field: "geometry", Reason: "width and height must be positive"}
	}
	return nil
}

// StyleBag is an open string-keyed property map passed through to the
// renderer. Keys are not a closed enum; unknown keys survive untouched.
// Values are strings or numbers as stored.
type StyleBag map[string]any

// Merge returns a new bag with partial laid shallowly over s. Keys absent
// from partial keep their prior values.
func (s StyleBag) Merge(partial StyleBag) StyleBag {
	out := make(StyleBag, len(s)+len(partial))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// String returns the value under key when it is a string, else "".
func (s StyleBag) String(key string) string {
	if v, ok := s[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// DefaultStyle returns the type-appropriate starting style for a new element.
func DefaultStyle(t ElementType) StyleBag {
	switch t {
	case ElementContainer:
		return StyleBag{
			"backgroundColor": "#f1f5f9",
			"borderRadius":    "8px",
			"padding":         "16px",
		}
	case ElementImage:
		return StyleBag{
			"objectFit":    "cover",
			"borderRadius": "0px",
		}
	default:
		return StyleBag{
			"fontSize":        "16px",
			"color":           "#000000",
			"backgroundColor": "transparent",
			"padding":         "0px",
			"borderRadius":    "0px",
		}
	}
}

// Element is one placed item on one slide of one theme.
type Element struct {
	ID          uint        `json:"id"`
	ThemeID     uint        `json:"themeId"`
	SlideNumber int         `json:"slideNumber"`
	Type        ElementType `json:"elementType"`
	Geometry    Geometry    `json:"geometry"`
	Style       StyleBag    `json:"style"`
	Content     string      `json:"content"`
}

// BindingName returns the explicit profile-field binding carried in the
// style bag under "name", or "" when the element is unbound.
func (e Element) BindingName() string {
	return e.Style.String("name")
}

// NewElement builds an element with default geometry and type-appropriate
// default style. The id is assigned by the store on create.
func NewElement(themeID uint, slideNumber int, typ ElementType, content string) (Element, error) {
	if !ValidSlide(slideNumber) {
		return Element{}, &ValidationError{
			Field:  "slideNumber",
			Reason: fmt.Sprintf("must be between 1 and %d, got %d", SlideCount, slideNumber),
		}
	}
	if !typ.Valid() {
		return Element{}, &ValidationError{
			Field:  "elementType",
			Reason: fmt.Sprintf("unknown type %q", typ),
		}
	}
	return Element{
		ThemeID:     themeID,
		SlideNumber: slideNumber,
		Type:        typ,
		Geometry:    DefaultGeometry(),
		Style:       DefaultStyle(typ),
		Content:     content,
	}, nil
}
