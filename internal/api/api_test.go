package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"profiledeck/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&database.Profile{},
		&database.Theme{},
		&database.SlideElement{},
		&database.Export{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newTestRouter wires only the database-backed handlers; queue, storage and
// pub/sub stay out of these tests.
func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	profileHandler := NewProfileHandler(db, nil)
	themeHandler := NewThemeHandler(db)
	elementHandler := NewElementHandler(db)

	v1 := router.Group("/v1")
	{
		profileGroup := v1.Group("/profiles")
		{
			profileGroup.POST("", profileHandler.CreateProfile)
			profileGroup.GET("/:id", profileHandler.GetProfile)
			profileGroup.PATCH("/:id", profileHandler.UpdateProfile)
			profileGroup.DELETE("/:id", profileHandler.DeleteProfile)
			profileGroup.PATCH("/:id/photos/:slide", profileHandler.SetSlidePhoto)
			profileGroup.PUT("/:id/placements/:slot", profileHandler.SetPlacement)
			profileGroup.DELETE("/:id/placements/:slot", profileHandler.ResetPlacement)
		}
		themeGroup := v1.Group("/themes")
		{
			themeGroup.POST("", themeHandler.CreateTheme)
			themeGroup.GET("/:id", themeHandler.GetTheme)
			themeGroup.DELETE("/:id", themeHandler.DeleteTheme)
			themeGroup.PUT("/:id/slides/:slide/background", themeHandler.SetSlideBackground)
			themeGroup.GET("/:id/slides/:slide/elements", elementHandler.ListElements)
			themeGroup.POST("/:id/slides/:slide/elements", elementHandler.CreateElement)
		}
		elementGroup := v1.Group("/elements")
		{
			elementGroup.PATCH("/:id", elementHandler.UpdateElement)
			elementGroup.DELETE("/:id", elementHandler.DeleteElement)
		}
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func createTestTheme(t *testing.T, router *gin.Engine) uint {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/v1/themes", gin.H{"name": "classic"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create theme: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID uint `json:"id"`
	}
	decodeBody(t, rec, &resp)
	return resp.ID
}

func createTestProfile(t *testing.T, router *gin.Engine) uint {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/v1/profiles", gin.H{
		"first_name": "Amy",
		"age":        29,
		"location":   "Austin",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create profile: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID uint `json:"id"`
	}
	decodeBody(t, rec, &resp)
	return resp.ID
}

func createTestElement(t *testing.T, router *gin.Engine, themeID uint, slide int, typ string) uint {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/v1/themes/%d/slides/%d/elements", themeID, slide),
		gin.H{"type": typ, "content": "hello"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create element: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID uint `json:"id"`
	}
	decodeBody(t, rec, &resp)
	return resp.ID
}
