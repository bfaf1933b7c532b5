package deck

import (
	"context"
	"fmt"
	"sort"
)

// PlacedElement is an element ready for rendering: resolved content plus the
// placement state of its image, when it has one.
type PlacedElement struct {
	Element   Element
	Content   ResolvedContent
	Placement Placement
}

// Slide is one renderable page of the deck: background, resolved elements,
// in a stable order.
type Slide struct {
	Number     int
	Background string
	Elements   []PlacedElement
}

// Deck is the full renderable output of a theme bound to a profile.
type Deck struct {
	Slides [SlideCount]Slide
}

// PlacementFor looks up the placement state for an image element. Element
// slots take precedence over the element's slide slot, so free-form themes
// can position several images on one slide independently.
func PlacementFor(m PlacementMap, el Element) Placement {
	if el.ID != 0 {
		if p, ok := m[ElementSlot(el.ID)]; ok {
			return p
		}
	}
	return m.Get(SlideSlot(el.SlideNumber))
}

// BuildDeck composes the renderable slides from a theme's elements and a
// profile. Slides are always produced in increasing slide number, whatever
// order the elements were created or fetched in; a slide with no elements
// and no background still renders blank. Elements outside the valid slide
// range are skipped.
func BuildDeck(theme Theme, elements []Element, profile Profile, placements PlacementMap) Deck {
	var d Deck
	for i := range d.Slides {
		n := i + 1
		d.Slides[i] = Slide{
			Number:     n,
			Background: theme.Backgrounds.ForSlide(n),
		}
	}

	// Stable sort keeps creation order as the stacking tiebreak within a
	// slide; z-order is not modeled.
	ordered := make([]Element, len(elements))
	copy(ordered, elements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SlideNumber < ordered[j].SlideNumber
	})

	for _, el := range ordered {
		if !ValidSlide(el.SlideNumber) {
			continue
		}
		placed := PlacedElement{
			Element: el,
			Content: Resolve(el, profile),
		}
		if el.Type == ElementImage {
			placed.Placement = PlacementFor(placements, el)
		}
		slide := &d.Slides[el.SlideNumber-1]
		slide.Elements = append(slide.Elements, placed)
	}
	return d
}

// Page is one exported artifact, named after its slide.
type Page struct {
	Name string
	Data []byte
}

// SurfaceComposer turns a renderable slide into a concrete surface the
// snapshot renderer can capture (an HTML document in this implementation).
type SurfaceComposer interface {
	ComposeSurface(slide Slide) (string, error)
}

// SurfaceCapturer is the external snapshot capability. It operates on one
// fully resolved surface at a time.
type SurfaceCapturer interface {
	CaptureSurface(ctx context.Context, surface string) ([]byte, error)
}

// ExportPages captures every slide in order, one page per slide. Capture is
// strictly sequential: each page must complete before the next begins, since
// the capturer works on a single stable surface at a time. The first failure
// aborts the whole export; no partial page set is returned. An abandoned
// context cancels between pages.
func ExportPages(ctx context.Context, d Deck, composer SurfaceComposer, capturer SurfaceCapturer) ([]Page, error) {
	pages := make([]Page, 0, SlideCount)
	for _, slide := range d.Slides {
		if err := ctx.Err(); err != nil {
			return nil, &ExportError{Slide: slide.Number, Err: err}
		}
		surface, err := composer.ComposeSurface(slide)
		if err != nil {
			return nil, &ExportError{Slide: slide.Number, Err: err}
		}
		data, err := capturer.CaptureSurface(ctx, surface)
		if err != nil {
			return nil, &ExportError{Slide: slide.Number, Err: err}
		}
		pages = append(pages, Page{
			Name: fmt.Sprintf("slide-%d.png", slide.Number),
			Data: data,
		})
	}
	return pages, nil
}
