package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"profiledeck/internal/database"
	"profiledeck/internal/deck"
)

// ElementHandler serves the slide element CRUD of a theme.
type ElementHandler struct {
	db *gorm.DB
}

// NewElementHandler constructs an ElementHandler.
func NewElementHandler(db *gorm.DB) *ElementHandler {
	return &ElementHandler{db: db}
}

type createElementRequest struct {
	Type     string              `json:"type" binding:"required"`
	Content  string              `json:"content"`
	Geometry *deck.GeometryPatch `json:"geometry"`
	Style    deck.StyleBag       `json:"style"`
}

type updateElementRequest struct {
	Content  *string             `json:"content"`
	Geometry *deck.GeometryPatch `json:"geometry"`
	Style    deck.StyleBag       `json:"style"`
}

type elementResponse struct {
	ID          uint          `json:"id"`
	ThemeID     uint          `json:"theme_id"`
	SlideNumber int           `json:"slide_number"`
	Type        string        `json:"type"`
	Content     string        `json:"content"`
	Geometry    deck.Geometry `json:"geometry"`
	Style       deck.StyleBag `json:"style"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func newElementResponse(row database.SlideElement) (elementResponse, error) {
	el, err := database.ToDeckElement(row)
	if err != nil {
		return elementResponse{}, err
	}
	return elementResponse{
		ID:          row.ID,
		ThemeID:     row.ThemeID,
		SlideNumber: row.SlideNumber,
		Type:        string(el.Type),
		Content:     el.Content,
		Geometry:    el.Geometry,
		Style:       el.Style,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

// ListElements lists the elements of one slide of a theme, in creation
// order (the stacking order used at render time).
func (h *ElementHandler) ListElements(c *gin.Context) {
	themeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid theme id")
		return
	}
	slide, err := strconv.Atoi(c.Param("slide"))
	if err != nil || !deck.ValidSlide(slide) {
		BadRequest(c, "slide number must be between 1 and 3")
		return
	}

	var rows []database.SlideElement
	if err := h.db.WithContext(c.Request.Context()).
		Where("theme_id = ? AND slide_number = ?", uint(themeID), slide).
		Order("id").
		Find(&rows).Error; err != nil {
		Internal(c, "failed to list elements")
		return
	}

	items := make([]elementResponse, 0, len(rows))
	for _, row := range rows {
		resp, err := newElementResponse(row)
		if err != nil {
			Internal(c, "failed to decode element")
			return
		}
		items = append(items, resp)
	}
	c.JSON(http.StatusOK, items)
}

// CreateElement adds an element to one slide of a theme. Geometry and style
// start from the per-type defaults; any values in the request override them
// key by key.
func (h *ElementHandler) CreateElement(c *gin.Context) {
	var req createElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	themeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid theme id")
		return
	}
	slide, err := strconv.Atoi(c.Param("slide"))
	if err != nil {
		BadRequest(c, "slide number must be between 1 and 3")
		return
	}

	ctx := c.Request.Context()
	var theme database.Theme
	if err := h.db.WithContext(ctx).First(&theme, uint(themeID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "theme not found")
			return
		}
		Internal(c, "failed to query theme")
		return
	}

	el, err := deck.NewElement(theme.ID, slide, deck.ElementType(req.Type), req.Content)
	if err != nil {
		var vErr *deck.ValidationError
		if errors.As(err, &vErr) {
			BadRequest(c, vErr.Error())
			return
		}
		BadRequest(c, err.Error())
		return
	}

	if req.Geometry != nil {
		geometry, err := el.Geometry.Apply(*req.Geometry)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		el.Geometry = geometry
	}
	if len(req.Style) > 0 {
		el.Style = el.Style.Merge(req.Style)
	}

	row, err := database.FromDeckElement(el)
	if err != nil {
		Internal(c, "failed to encode element")
		return
	}
	if err := h.db.WithContext(ctx).Create(&row).Error; err != nil {
		Internal(c, "failed to create element")
		return
	}

	resp, err := newElementResponse(row)
	if err != nil {
		Internal(c, "failed to decode element")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateElement applies a partial update: content replaces, geometry merges
// key by key, style merges shallowly with incoming keys winning. Omitted
// fields are untouched.
func (h *ElementHandler) UpdateElement(c *gin.Context) {
	var req updateElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid element id")
		return
	}

	ctx := c.Request.Context()
	var row database.SlideElement
	if err := h.db.WithContext(ctx).First(&row, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "element not found")
			return
		}
		Internal(c, "failed to query element")
		return
	}

	el, err := database.ToDeckElement(row)
	if err != nil {
		Internal(c, "failed to decode element")
		return
	}

	if req.Content != nil {
		el.Content = *req.Content
	}
	if req.Geometry != nil {
		geometry, err := el.Geometry.Apply(*req.Geometry)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		el.Geometry = geometry
	}
	if len(req.Style) > 0 {
		el.Style = el.Style.Merge(req.Style)
	}

	updated, err := database.FromDeckElement(el)
	if err != nil {
		Internal(c, "failed to encode element")
		return
	}
	updates := map[string]any{
		"content":  updated.Content,
		"geometry": updated.Geometry,
		"style":    updated.Style,
	}
	if err := h.db.WithContext(ctx).Model(&row).Updates(updates).Error; err != nil {
		Internal(c, "failed to update element")
		return
	}
	if err := h.db.WithContext(ctx).First(&row, row.ID).Error; err != nil {
		Internal(c, "failed to reload element")
		return
	}

	resp, err := newElementResponse(row)
	if err != nil {
		Internal(c, "failed to decode element")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteElement removes one element. Deleting an element that does not
// exist is a 404, not a silent success.
func (h *ElementHandler) DeleteElement(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid element id")
		return
	}

	ctx := c.Request.Context()
	var row database.SlideElement
	if err := h.db.WithContext(ctx).First(&row, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "element not found")
			return
		}
		Internal(c, "failed to query element")
		return
	}

	if err := h.db.WithContext(ctx).Delete(&database.SlideElement{}, row.ID).Error; err != nil {
		Internal(c, "failed to delete element")
		return
	}
	c.Status(http.StatusNoContent)
}
