package deck

import (
	"errors"
	"testing"
)

func TestNewElementDefaults(t *testing.T) {
	el, err := NewElement(7, 2, ElementText, "New Text Element")
	if err != nil {
		t.Fatalf("new element: %v", err)
	}
	if el.ThemeID != 7 || el.SlideNumber != 2 {
		t.Fatalf("ownership not set: %+v", el)
	}
	if el.Geometry != (Geometry{X: 0, Y: 0, Width: 200, Height: 100}) {
		t.Fatalf("unexpected default geometry: %+v", el.Geometry)
	}
	if got := el.Style.String("fontSize"); got != "16px" {
		t.Fatalf("expected text default fontSize 16px, got %q", got)
	}
	if got := el.Style.String("backgroundColor"); got != "transparent" {
		t.Fatalf("expected transparent background, got %q", got)
	}
}

func TestNewElementContainerAndImageDefaults(t *testing.T) {
	container, err := NewElement(1, 1, ElementContainer, "")
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if got := container.Style.String("backgroundColor"); got != "#f1f5f9" {
		t.Fatalf("container fill: got %q", got)
	}
	if got := container.Style.String("borderRadius"); got != "8px" {
		t.Fatalf("container radius: got %q", got)
	}

	img, err := NewElement(1, 1, ElementImage, "")
	if err != nil {
		t.Fatalf("new image: %v", err)
	}
	if got := img.Style.String("objectFit"); got != "cover" {
		t.Fatalf("image fit: got %q", got)
	}
}

func TestNewElementRejectsInvalidSlide(t *testing.T) {
	for _, slide := range []int{0, 4, -1} {
		_, err := NewElement(1, slide, ElementText, "")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("slide %d: expected ValidationError, got %v", slide, err)
		}
	}
}

func TestNewElementRejectsUnknownType(t *testing.T) {
	_, err := NewElement(1, 1, ElementType("video"), "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestGeometryApplyMergesKeyWise(t *testing.T) {
	g := Geometry{X: 10, Y: 20, Width: 200, Height: 100}
	x := 50.0
	merged, err := g.Apply(GeometryPatch{X: &x})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := Geometry{X: 50, Y: 20, Width: 200, Height: 100}
	if merged != want {
		t.Fatalf("got %+v want %+v", merged, want)
	}
}

func TestGeometryApplyRejectsNonPositiveSize(t *testing.T) {
	g := DefaultGeometry()
	zero := 0.0
	if _, err := g.Apply(GeometryPatch{Width: &zero}); err == nil {
		t.Fatal("expected error for zero width")
	}
	neg := -5.0
	if _, err := g.Apply(GeometryPatch{X: &neg}); err == nil {
		t.Fatal("expected error for negative x")
	}
}

func TestStyleBagMergeIsShallow(t *testing.T) {
	base := StyleBag{"fontSize": "16px", "color": "#000000"}
	merged := base.Merge(StyleBag{"color": "#ff0000", "padding": "4px"})

	if got := merged.String("fontSize"); got != "16px" {
		t.Fatalf("unspecified key lost: %q", got)
	}
	if got := merged.String("color"); got != "#ff0000" {
		t.Fatalf("override missing: %q", got)
	}
	if got := merged.String("padding"); got != "4px" {
		t.Fatalf("new key missing: %q", got)
	}
	if got := base.String("color"); got != "#000000" {
		t.Fatalf("merge mutated receiver: %q", got)
	}
}
