package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"profiledeck/internal/database"
	"profiledeck/internal/deck"
)

// ThemeHandler serves the theme CRUD and per-slide backgrounds.
type ThemeHandler struct {
	db *gorm.DB
}

// NewThemeHandler constructs a ThemeHandler.
func NewThemeHandler(db *gorm.DB) *ThemeHandler {
	return &ThemeHandler{db: db}
}

type themeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type themeResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	IsActive    bool             `json:"is_active"`
	Backgrounds deck.Backgrounds `json:"backgrounds"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func newThemeResponse(t database.Theme) (themeResponse, error) {
	decoded, err := database.ToDeckTheme(t)
	if err != nil {
		return themeResponse{}, err
	}
	return themeResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IsActive:    t.IsActive,
		Backgrounds: decoded.Backgrounds,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}

// CreateTheme stores a new theme with empty slides.
func (h *ThemeHandler) CreateTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	theme := database.Theme{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		theme.IsActive = *req.IsActive
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&theme).Error; err != nil {
		Internal(c, "failed to create theme")
		return
	}

	resp, err := newThemeResponse(theme)
	if err != nil {
		Internal(c, "failed to decode theme")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListThemes lists themes; pass ?active=true to filter to active ones.
func (h *ThemeHandler) ListThemes(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Order("created_at DESC")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var themes []database.Theme
	if err := query.Find(&themes).Error; err != nil {
		Internal(c, "failed to list themes")
		return
	}

	items := make([]themeResponse, 0, len(themes))
	for _, t := range themes {
		resp, err := newThemeResponse(t)
		if err != nil {
			Internal(c, "failed to decode theme")
			return
		}
		items = append(items, resp)
	}
	c.JSON(http.StatusOK, items)
}

// GetTheme returns one theme by id.
func (h *ThemeHandler) GetTheme(c *gin.Context) {
	theme, err := h.getTheme(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondThemeError(c, err)
		return
	}

	resp, err := newThemeResponse(*theme)
	if err != nil {
		Internal(c, "failed to decode theme")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateTheme overwrites name, description and active flag.
func (h *ThemeHandler) UpdateTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	theme, err := h.getTheme(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondThemeError(c, err)
		return
	}

	updates := map[string]any{
		"name":        req.Name,
		"description": req.Description,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Model(theme).Updates(updates).Error; err != nil {
		Internal(c, "failed to update theme")
		return
	}
	if err := h.db.WithContext(ctx).First(theme, theme.ID).Error; err != nil {
		Internal(c, "failed to reload theme")
		return
	}

	resp, err := newThemeResponse(*theme)
	if err != nil {
		Internal(c, "failed to decode theme")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteTheme removes a theme and all of its elements in one transaction.
// A theme never survives with orphaned elements, and elements never outlive
// their theme.
func (h *ThemeHandler) DeleteTheme(c *gin.Context) {
	theme, err := h.getTheme(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondThemeError(c, err)
		return
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("theme_id = ?", theme.ID).
			Delete(&database.SlideElement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.Theme{}, theme.ID).Error
	})
	if err != nil {
		Internal(c, "failed to delete theme")
		return
	}
	c.Status(http.StatusNoContent)
}

type backgroundRequest struct {
	Background string `json:"background"`
}

// SetSlideBackground assigns (or clears, with an empty string) the
// background reference of one slide.
func (h *ThemeHandler) SetSlideBackground(c *gin.Context) {
	var req backgroundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	slide, err := strconv.Atoi(c.Param("slide"))
	if err != nil || !deck.ValidSlide(slide) {
		BadRequest(c, "slide number must be between 1 and 3")
		return
	}

	theme, err := h.getTheme(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondThemeError(c, err)
		return
	}

	decoded, err := database.ToDeckTheme(*theme)
	if err != nil {
		Internal(c, "failed to decode theme")
		return
	}
	if err := decoded.Backgrounds.SetSlide(slide, req.Background); err != nil {
		BadRequest(c, err.Error())
		return
	}
	encoded, err := database.EncodeBackgrounds(decoded.Backgrounds)
	if err != nil {
		Internal(c, "failed to encode backgrounds")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(theme).Update("backgrounds", encoded).Error; err != nil {
		Internal(c, "failed to update background")
		return
	}
	c.JSON(http.StatusOK, gin.H{"slide": slide, "background": req.Background})
}

func (h *ThemeHandler) getTheme(ctx context.Context, idParam string) (*database.Theme, error) {
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, errInvalidID
	}

	var theme database.Theme
	if err := h.db.WithContext(ctx).First(&theme, uint(id)).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}

func respondThemeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidID):
		BadRequest(c, "invalid theme id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "theme not found")
	default:
		Internal(c, "failed to query theme")
	}
}
