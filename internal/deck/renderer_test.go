package deck

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type stubComposer struct{}

func (stubComposer) ComposeSurface(s Slide) (string, error) {
	return fmt.Sprintf("surface-%d", s.Number), nil
}

type recordingCapturer struct {
	captured []string
	failOn   string
}

func (c *recordingCapturer) CaptureSurface(_ context.Context, surface string) ([]byte, error) {
	if surface == c.failOn {
		return nil, errors.New("capture failed")
	}
	c.captured = append(c.captured, surface)
	return []byte(surface), nil
}

func TestBuildDeckOrdersSlides(t *testing.T) {
	theme := NewTheme("scrambled", "")
	// Elements created in reverse slide order.
	elements := []Element{
		{ID: 1, SlideNumber: 3, Type: ElementText, Content: "three"},
		{ID: 2, SlideNumber: 1, Type: ElementText, Content: "one"},
		{ID: 3, SlideNumber: 2, Type: ElementText, Content: "two"},
	}
	d := BuildDeck(theme, elements, Profile{}, PlacementMap{})

	for i, slide := range d.Slides {
		if slide.Number != i+1 {
			t.Fatalf("slide %d has number %d", i, slide.Number)
		}
		if len(slide.Elements) != 1 {
			t.Fatalf("slide %d element count %d", slide.Number, len(slide.Elements))
		}
	}
	if d.Slides[0].Elements[0].Content.Text != "one" {
		t.Fatalf("slide 1 holds %q", d.Slides[0].Elements[0].Content.Text)
	}
}

func TestBuildDeckKeepsCreationOrderWithinSlide(t *testing.T) {
	elements := []Element{
		{ID: 1, SlideNumber: 1, Type: ElementText, Content: "first"},
		{ID: 2, SlideNumber: 1, Type: ElementText, Content: "second"},
	}
	d := BuildDeck(NewTheme("t", ""), elements, Profile{}, PlacementMap{})
	got := d.Slides[0]
	if got.Elements[0].Content.Text != "first" || got.Elements[1].Content.Text != "second" {
		t.Fatalf("stacking order changed: %+v", got.Elements)
	}
}

func TestBuildDeckBlankSlideStillRenders(t *testing.T) {
	d := BuildDeck(NewTheme("empty", ""), nil, Profile{}, PlacementMap{})
	if d.Slides[1].Number != 2 || d.Slides[1].Elements != nil {
		t.Fatalf("blank slide malformed: %+v", d.Slides[1])
	}
}

func TestBuildDeckAppliesBackgrounds(t *testing.T) {
	theme := NewTheme("bg", "")
	if err := theme.Backgrounds.SetSlide(2, "backgrounds/sky.png"); err != nil {
		t.Fatalf("set background: %v", err)
	}
	d := BuildDeck(theme, nil, Profile{}, PlacementMap{})
	if d.Slides[1].Background != "backgrounds/sky.png" {
		t.Fatalf("got %q", d.Slides[1].Background)
	}
	if d.Slides[0].Background != "" {
		t.Fatalf("slide 1 should have no background")
	}
}

func TestBuildDeckImagePlacementLookup(t *testing.T) {
	placements := PlacementMap{
		"slide1":    {X: 1, Scale: 1.1},
		"element:5": {X: 9, Scale: 2},
	}
	elements := []Element{
		{ID: 4, SlideNumber: 1, Type: ElementImage, Content: "a.png"},
		{ID: 5, SlideNumber: 1, Type: ElementImage, Content: "b.png"},
	}
	d := BuildDeck(NewTheme("t", ""), elements, Profile{}, placements)

	slide := d.Slides[0]
	if slide.Elements[0].Placement.X != 1 {
		t.Fatalf("element 4 should fall back to slide slot: %+v", slide.Elements[0].Placement)
	}
	if slide.Elements[1].Placement.X != 9 {
		t.Fatalf("element 5 should use its own slot: %+v", slide.Elements[1].Placement)
	}
}

func TestExportPagesOrderAndNaming(t *testing.T) {
	elements := []Element{
		{ID: 1, SlideNumber: 2, Type: ElementText, Content: "b"},
		{ID: 2, SlideNumber: 1, Type: ElementText, Content: "a"},
	}
	d := BuildDeck(NewTheme("t", ""), elements, Profile{}, PlacementMap{})

	cap := &recordingCapturer{}
	pages, err := ExportPages(context.Background(), d, stubComposer{}, cap)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(pages) != SlideCount {
		t.Fatalf("page count %d", len(pages))
	}
	for i, page := range pages {
		want := fmt.Sprintf("slide-%d.png", i+1)
		if page.Name != want {
			t.Fatalf("page %d named %q", i, page.Name)
		}
	}
	if cap.captured[0] != "surface-1" || cap.captured[2] != "surface-3" {
		t.Fatalf("capture order wrong: %v", cap.captured)
	}
}

func TestExportPagesAbortsOnFailure(t *testing.T) {
	d := BuildDeck(NewTheme("t", ""), nil, Profile{}, PlacementMap{})
	cap := &recordingCapturer{failOn: "surface-2"}

	pages, err := ExportPages(context.Background(), d, stubComposer{}, cap)
	if pages != nil {
		t.Fatalf("no partial pages expected, got %d", len(pages))
	}
	var exportErr *ExportError
	if !errors.As(err, &exportErr) || exportErr.Slide != 2 {
		t.Fatalf("expected ExportError for slide 2, got %v", err)
	}
}

func TestExportPagesHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := BuildDeck(NewTheme("t", ""), nil, Profile{}, PlacementMap{})
	if _, err := ExportPages(ctx, d, stubComposer{}, &recordingCapturer{}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

// Renders the scenario of a first slide holding a bound text element plus an
// image slot with no photo assigned yet: the text resolves, the image slot
// resolves to the placeholder state, and the slide still exports.
func TestDeckWithMissingImageStillExports(t *testing.T) {
	elements := []Element{
		{ID: 1, SlideNumber: 1, Type: ElementText, Style: StyleBag{"name": "firstName"}},
		{ID: 2, SlideNumber: 1, Type: ElementImage},
	}
	profile := Profile{FirstName: "Jordan"}
	d := BuildDeck(NewTheme("t", ""), elements, profile, PlacementMap{})

	slide := d.Slides[0]
	if slide.Elements[0].Content.Text != "Jordan" {
		t.Fatalf("text element: %+v", slide.Elements[0].Content)
	}
	if slide.Elements[1].Content.ImageURL != "" {
		t.Fatalf("image element should be in placeholder state")
	}

	pages, err := ExportPages(context.Background(), d, stubComposer{}, &recordingCapturer{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if pages[0].Name != "slide-1.png" {
		t.Fatalf("got %q", pages[0].Name)
	}
}
