package api

import (
	"testing"

	"gorm.io/gorm"

	"profiledeck/internal/database"
)

func TestDownloadFilename(t *testing.T) {
	pdf := database.Export{
		Model:     gorm.Model{ID: 7},
		ProfileID: 3,
		Format:    "pdf",
	}
	if got := downloadFilename(pdf); got != "profile-3-deck.pdf" {
		t.Errorf("pdf filename = %q, want profile-3-deck.pdf", got)
	}

	slide := database.Export{
		Model:       gorm.Model{ID: 8},
		ProfileID:   3,
		Format:      "slide",
		SlideNumber: 2,
	}
	if got := downloadFilename(slide); got != "profile-3-slide-2.png" {
		t.Errorf("slide filename = %q, want profile-3-slide-2.png", got)
	}
}
