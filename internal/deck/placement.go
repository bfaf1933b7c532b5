package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// Scale bounds for image placements. The lower bound may be raised per slot
// to the cover-fit minimum when the source image's natural dimensions are
// known; it never drops below MinScale.
const (
	MinScale = 0.1
	MaxScale = 3.0
)

// Placement is the user-adjusted pan/zoom of a source image inside its
// frame: a translation in canvas units and a uniform zoom factor.
type Placement struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// DefaultPlacement is the untouched state for a slot.
func DefaultPlacement() Placement {
	return Placement{X: 0, Y: 0, Scale: 1}
}

// Clamp bounds the scale into [minScale, MaxScale]. minScale values below
// MinScale are ignored in favor of the fixed floor.
func (p Placement) Clamp(minScale float64) Placement {
	if minScale < MinScale {
		minScale = MinScale
	}
	if p.Scale < minScale {
		p.Scale = minScale
	}
	if p.Scale > MaxScale {
		p.Scale = MaxScale
	}
	return p
}

// CoverMinScale returns the smallest scale that still covers a frame of
// frameW x frameH with an image of natural size naturalW x naturalH. When
// the natural size is unknown (zero), the fixed floor applies.
func CoverMinScale(frameW, frameH, naturalW, naturalH float64) float64 {
	if naturalW <= 0 || naturalH <= 0 || frameW <= 0 || frameH <= 0 {
		return MinScale
	}
	min := frameW / naturalW
	if h := frameH / naturalH; h > min {
		min = h
	}
	if min < MinScale {
		return MinScale
	}
	return min
}

// PlacementMap keys an independent Placement per image-bearing slot, so
// adjusting one image never affects another. It is shared by reference
// between editing and export: edits made while editing are reflected in the
// next export pass. Updates to one slot are last-write-wins; there is no
// merging of concurrent partial updates.
type PlacementMap map[string]Placement

// Get returns the stored placement for slot, or the default.
func (m PlacementMap) Get(slot string) Placement {
	if p, ok := m[slot]; ok {
		return p
	}
	return DefaultPlacement()
}

// Set stores an update, clamping the scale before it is persisted. Values
// below the permitted minimum are raised, never stored.
func (m PlacementMap) Set(slot string, p Placement, minScale float64) {
	m[slot] = p.Clamp(minScale)
}

// Reset restores the slot to the default. Called whenever a new image is
// assigned to the slot: stale pan/zoom values are meaningless for a
// different source image.
func (m PlacementMap) Reset(slot string) {
	delete(m, slot)
}

// SlideSlot is the placement key for the profile photo of slide n.
func SlideSlot(n int) string {
	return fmt.Sprintf("slide%d", n)
}

// ElementSlot is the placement key for a specific image element, used by
// free-form themes where several image frames can share one slide.
func ElementSlot(id uint) string {
	return fmt.Sprintf("element:%d", id)
}

// ValidSlot reports whether slot names a recognized placement key: a slide
// photo slot or an element slot.
func ValidSlot(slot string) bool {
	for n := 1; n <= SlideCount; n++ {
		if slot == SlideSlot(n) {
			return true
		}
	}
	raw, ok := strings.CutPrefix(slot, "element:")
	if !ok {
		return false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	return err == nil && id > 0
}
