package deck

import "testing"

func TestPlacementRoundTrip(t *testing.T) {
	m := PlacementMap{}
	m.Set("slide1", Placement{X: 12, Y: -8, Scale: 1.5}, 0)
	got := m.Get("slide1")
	if got != (Placement{X: 12, Y: -8, Scale: 1.5}) {
		t.Fatalf("round trip lost data: %+v", got)
	}
}

func TestPlacementDefault(t *testing.T) {
	m := PlacementMap{}
	if got := m.Get("slide2"); got != DefaultPlacement() {
		t.Fatalf("expected default {0,0,1}, got %+v", got)
	}
}

func TestPlacementScaleClampedToFloor(t *testing.T) {
	m := PlacementMap{}
	m.Set("slide1", Placement{Scale: 0.01}, 0)
	if got := m.Get("slide1").Scale; got != MinScale {
		t.Fatalf("scale below minimum must be raised, got %v", got)
	}
}

func TestPlacementScaleClampedToCeiling(t *testing.T) {
	m := PlacementMap{}
	m.Set("slide1", Placement{Scale: 9}, 0)
	if got := m.Get("slide1").Scale; got != MaxScale {
		t.Fatalf("got %v", got)
	}
}

func TestPlacementCoverMinimumRaisesFloor(t *testing.T) {
	// A 400x400 image inside an 800x600 frame needs at least scale 2 to cover.
	min := CoverMinScale(800, 600, 400, 400)
	if min != 2 {
		t.Fatalf("cover minimum: got %v want 2", min)
	}
	m := PlacementMap{}
	m.Set("slide1", Placement{Scale: 1}, min)
	if got := m.Get("slide1").Scale; got != 2 {
		t.Fatalf("scale not raised to cover minimum: %v", got)
	}
}

func TestPlacementCoverMinimumUnknownNaturalSize(t *testing.T) {
	if min := CoverMinScale(800, 600, 0, 0); min != MinScale {
		t.Fatalf("expected fixed floor without natural size, got %v", min)
	}
}

func TestPlacementResetOnNewImage(t *testing.T) {
	m := PlacementMap{}
	m.Set("slide3", Placement{X: 40, Y: 40, Scale: 2}, 0)
	m.Reset("slide3")
	if got := m.Get("slide3"); got != DefaultPlacement() {
		t.Fatalf("reset should return default, got %+v", got)
	}
}

func TestPlacementSlotsIndependent(t *testing.T) {
	m := PlacementMap{}
	m.Set("slide1", Placement{X: 1, Scale: 1}, 0)
	m.Set("element:9", Placement{X: 2, Scale: 2}, 0)
	m.Reset("slide1")
	if got := m.Get("element:9"); got.X != 2 || got.Scale != 2 {
		t.Fatalf("resetting one slot disturbed another: %+v", got)
	}
}

func TestPlacementLastWriteWins(t *testing.T) {
	m := PlacementMap{}
	m.Set("slide1", Placement{X: 1, Y: 1, Scale: 1}, 0)
	m.Set("slide1", Placement{X: 5, Scale: 1.2}, 0)
	got := m.Get("slide1")
	if got.Y != 0 {
		t.Fatalf("partial updates must not merge, got %+v", got)
	}
}

func TestSlotKeys(t *testing.T) {
	if SlideSlot(2) != "slide2" {
		t.Fatalf("slide slot: %q", SlideSlot(2))
	}
	if ElementSlot(17) != "element:17" {
		t.Fatalf("element slot: %q", ElementSlot(17))
	}
}
