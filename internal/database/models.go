package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile is the structured record bound to a theme at render time. Profiles
// are keyed by their numeric primary id; no secondary external key exists.
type Profile struct {
	gorm.Model
	FirstName  string `gorm:"size:120"`
	Age        int
	Location   string `gorm:"size:255"`
	Occupation string `gorm:"size:255"`
	Education  string `gorm:"size:255"`
	Interests  string `gorm:"type:text"`
	Bio        string `gorm:"type:text"`

	Slide1PhotoURL string `gorm:"size:512"`
	Slide2PhotoURL string `gorm:"size:512"`
	Slide3PhotoURL string `gorm:"size:512"`

	// Placements is the per-slot image pan/zoom state, stored as a JSON
	// object of slot key -> {x, y, scale}.
	Placements datatypes.JSON `gorm:"type:jsonb"`
}

// Theme is a reusable three-slide layout definition.
type Theme struct {
	gorm.Model
	Name        string `gorm:"size:255"`
	Description string `gorm:"size:512"`
	IsActive    bool   `gorm:"default:true"`

	// Backgrounds stores the optional per-slide background references as a
	// JSON object {slide1, slide2, slide3}.
	Backgrounds datatypes.JSON `gorm:"type:jsonb"`

	Elements []SlideElement `gorm:"constraint:OnDelete:CASCADE"`
}

// SlideElement is one placed item on one slide of one theme.
type SlideElement struct {
	gorm.Model
	ThemeID     uint   `gorm:"index"`
	SlideNumber int    `gorm:"index"`
	ElementType string `gorm:"size:16"`
	Geometry    datatypes.JSON `gorm:"type:jsonb"` // {x, y, width, height}
	Style       datatypes.JSON `gorm:"type:jsonb"` // open style bag
	Content     string         `gorm:"type:text"`
}

// Export tracks one deck export job from enqueue to artifact.
type Export struct {
	gorm.Model
	ProfileID     uint   `gorm:"index"`
	ThemeID       uint   `gorm:"index"`
	Format        string `gorm:"size:16"` // "pdf", "pages" or "slide"
	SlideNumber   int    // designated slide for single-slide exports
	Status        string `gorm:"size:32"` // pending / completed / failed
	ObjectKey     string `gorm:"size:512"`
	CorrelationID string `gorm:"size:64"`
	PageCount     int
}
