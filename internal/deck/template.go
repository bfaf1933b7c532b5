package deck

import "fmt"

// SlideCount is fixed: a theme always has exactly three slide slots,
// regardless of how many elements currently sit on each (zero is valid).
const SlideCount = 3

// ValidSlide reports whether n addresses one of the theme's slide slots.
func ValidSlide(n int) bool {
	return n >= 1 && n <= SlideCount
}

// Backgrounds holds the optional per-slide background image reference.
type Backgrounds struct {
	Slide1 string `json:"slide1"`
	Slide2 string `json:"slide2"`
	Slide3 string `json:"slide3"`
}

// ForSlide returns the background for slide n, or "" when none is set or n
// is out of range.
func (b Backgrounds) ForSlide(n int) string {
	switch n {
	case 1:
		return b.Slide1
	case 2:
		return b.Slide2
	case 3:
		return b.Slide3
	}
	return ""
}

// SetSlide replaces the background for slide n. Idempotent; no history kept.
func (b *Backgrounds) SetSlide(n int, ref string) error {
	switch n {
	case 1:
		b.Slide1 = ref
	case 2:
		b.Slide2 = ref
	case 3:
		b.Slide3 = ref
	default:
		return &ValidationError{
			Field:  "slideNumber",
			Reason: fmt.Sprintf("must be between 1 and %d, got %d", SlideCount, n),
		}
	}
	return nil
}

// Theme is a reusable three-slide layout: a name, per-slide backgrounds and
// the elements placed on each slide. Elements are owned by exactly one slide
// of exactly one theme; deleting a theme cascades to them (store contract).
type Theme struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	IsActive    bool        `json:"isActive"`
	Backgrounds Backgrounds `json:"backgroundImages"`
}

// NewTheme initializes a theme with three empty slides and no backgrounds.
func NewTheme(name, description string) Theme {
	return Theme{
		Name:        name,
		Description: description,
		IsActive:    true,
	}
}
