package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"profiledeck/internal/database"
)

func TestDeleteThemeCascadesElements(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)
	themeID := createTestTheme(t, router)
	createTestElement(t, router, themeID, 1, "text")
	createTestElement(t, router, themeID, 3, "image")

	otherThemeID := createTestTheme(t, router)
	keptID := createTestElement(t, router, otherThemeID, 1, "text")

	rec := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/v1/themes/%d", themeID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var count int64
	if err := db.Model(&database.SlideElement{}).
		Where("theme_id = ?", themeID).
		Count(&count).Error; err != nil {
		t.Fatalf("count elements: %v", err)
	}
	if count != 0 {
		t.Errorf("orphaned elements = %d, want 0", count)
	}

	var kept database.SlideElement
	if err := db.First(&kept, keptID).Error; err != nil {
		t.Errorf("element of the other theme was deleted: %v", err)
	}
}

func TestSetSlideBackground(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)
	themeID := createTestTheme(t, router)

	rec := doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/v1/themes/%d/slides/2/background", themeID),
		gin.H{"background": "assets/sunset.png"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/themes/%d", themeID), nil)
	var resp themeResponse
	decodeBody(t, rec, &resp)
	if resp.Backgrounds.Slide2 != "assets/sunset.png" {
		t.Errorf("slide2 background = %q, want assigned", resp.Backgrounds.Slide2)
	}
	if resp.Backgrounds.Slide1 != "" || resp.Backgrounds.Slide3 != "" {
		t.Errorf("other backgrounds touched: %+v", resp.Backgrounds)
	}
}

func TestSetSlideBackgroundRejectsBadSlide(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)
	themeID := createTestTheme(t, router)

	rec := doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/v1/themes/%d/slides/7/background", themeID),
		gin.H{"background": "assets/x.png"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
}

func TestThemeNotFound(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)

	rec := doJSON(t, router, http.MethodGet, "/v1/themes/404", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAssetKeyValidation(t *testing.T) {
	cases := []struct {
		key   string
		valid bool
	}{
		{"assets/abc.png", true},
		{"assets/abc.jpg", true},
		{"assets/thumbs/abc.png", true},
		{"", false},
		{"other/abc.png", false},
		{"assets/../secret.png", false},
		{"assets/abc.exe", false},
		{"assets//abc.png", false},
	}
	for _, tc := range cases {
		if got := isValidAssetObjectKey(tc.key); got != tc.valid {
			t.Errorf("isValidAssetObjectKey(%q) = %v, want %v", tc.key, got, tc.valid)
		}
	}
}

func TestDeleteAssetRejectsBadKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := &AssetHandler{}
	router.DELETE("/v1/assets", handler.DeleteAsset)

	for _, target := range []string{
		"/v1/assets",
		"/v1/assets?key=other/abc.png",
		"/v1/assets?key=assets/../secret.png",
	} {
		rec := doJSON(t, router, http.MethodDelete, target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("DELETE %s: status = %d, want 400", target, rec.Code)
		}
	}
}
