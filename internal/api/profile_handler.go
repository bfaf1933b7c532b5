package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"profiledeck/internal/api/middleware"
	"profiledeck/internal/database"
	"profiledeck/internal/deck"
)

// artifactStore is the slice of the storage client the handler needs to
// purge a profile's exported artifacts.
type artifactStore interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// ProfileHandler serves the profile record CRUD plus the per-slot image
// placement state.
type ProfileHandler struct {
	db        *gorm.DB
	artifacts artifactStore
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB, artifacts artifactStore) *ProfileHandler {
	return &ProfileHandler{db: db, artifacts: artifacts}
}

var errInvalidID = errors.New("invalid id")

type createProfileRequest struct {
	FirstName  string `json:"first_name"`
	Age        int    `json:"age"`
	Location   string `json:"location"`
	Occupation string `json:"occupation"`
	Education  string `json:"education"`
	Interests  string `json:"interests"`
	Bio        string `json:"bio"`
}

// updateProfileRequest carries pointers so a patch only touches the fields
// it names; omitted fields keep their stored values.
type updateProfileRequest struct {
	FirstName  *string `json:"first_name"`
	Age        *int    `json:"age"`
	Location   *string `json:"location"`
	Occupation *string `json:"occupation"`
	Education  *string `json:"education"`
	Interests  *string `json:"interests"`
	Bio        *string `json:"bio"`
}

type profileResponse struct {
	ID             uint                      `json:"id"`
	FirstName      string                    `json:"first_name"`
	Age            int                       `json:"age"`
	Location       string                    `json:"location"`
	Occupation     string                    `json:"occupation"`
	Education      string                    `json:"education"`
	Interests      string                    `json:"interests"`
	Bio            string                    `json:"bio"`
	Slide1PhotoURL string                    `json:"slide1_photo_url,omitempty"`
	Slide2PhotoURL string                    `json:"slide2_photo_url,omitempty"`
	Slide3PhotoURL string                    `json:"slide3_photo_url,omitempty"`
	Placements     map[string]deck.Placement `json:"placements"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

func newProfileResponse(p database.Profile) profileResponse {
	placements, err := database.PlacementsOf(p)
	if err != nil {
		placements = deck.PlacementMap{}
	}
	return profileResponse{
		ID:             p.ID,
		FirstName:      p.FirstName,
		Age:            p.Age,
		Location:       p.Location,
		Occupation:     p.Occupation,
		Education:      p.Education,
		Interests:      p.Interests,
		Bio:            p.Bio,
		Slide1PhotoURL: p.Slide1PhotoURL,
		Slide2PhotoURL: p.Slide2PhotoURL,
		Slide3PhotoURL: p.Slide3PhotoURL,
		Placements:     placements,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// CreateProfile stores a new profile record.
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Age < 0 {
		BadRequest(c, "age must not be negative")
		return
	}

	profile := database.Profile{
		FirstName:  req.FirstName,
		Age:        req.Age,
		Location:   req.Location,
		Occupation: req.Occupation,
		Education:  req.Education,
		Interests:  req.Interests,
		Bio:        req.Bio,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&profile).Error; err != nil {
		Internal(c, "failed to create profile")
		return
	}

	c.JSON(http.StatusCreated, newProfileResponse(profile))
}

// ListProfiles lists every profile, newest first.
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	var profiles []database.Profile
	if err := h.db.WithContext(c.Request.Context()).
		Order("created_at DESC").
		Find(&profiles).Error; err != nil {
		Internal(c, "failed to list profiles")
		return
	}

	items := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, newProfileResponse(p))
	}
	c.JSON(http.StatusOK, items)
}

// GetProfile returns one profile by id.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.getProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(*profile))
}

// UpdateProfile applies a partial update to the record fields: only the
// fields present in the request are written, everything else keeps its
// stored value. Photos and placements have dedicated endpoints.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Age != nil && *req.Age < 0 {
		BadRequest(c, "age must not be negative")
		return
	}

	profile, err := h.getProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProfileError(c, err)
		return
	}

	updates := map[string]any{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Occupation != nil {
		updates["occupation"] = *req.Occupation
	}
	if req.Education != nil {
		updates["education"] = *req.Education
	}
	if req.Interests != nil {
		updates["interests"] = *req.Interests
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	ctx := c.Request.Context()
	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
			Internal(c, "failed to update profile")
			return
		}
		if err := h.db.WithContext(ctx).First(profile, profile.ID).Error; err != nil {
			Internal(c, "failed to reload profile")
			return
		}
	}

	c.JSON(http.StatusOK, newProfileResponse(*profile))
}

// DeleteProfile removes a profile, its export records and the exported
// artifacts under the profile's object prefix, so nothing orphans in the
// object store.
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	profile, err := h.getProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProfileError(c, err)
		return
	}

	ctx := c.Request.Context()
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", profile.ID).
			Delete(&database.Export{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.Profile{}, profile.ID).Error
	})
	if err != nil {
		Internal(c, "failed to delete profile")
		return
	}

	if h.artifacts != nil {
		prefix := fmt.Sprintf("exports/%d/", profile.ID)
		if err := h.artifacts.DeletePrefix(ctx, prefix); err != nil {
			middleware.LoggerFromContext(c).Error("purge export artifacts",
				slog.String("prefix", prefix),
				slog.Any("error", err),
			)
		}
	}
	c.Status(http.StatusNoContent)
}

type slidePhotoRequest struct {
	URL string `json:"url"`
}

// SetSlidePhoto assigns the photo for one slide. Assigning a new image
// drops the slide's stored pan/zoom: the old placement is meaningless for a
// different source image.
func (h *ProfileHandler) SetSlidePhoto(c *gin.Context) {
	var req slidePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	slide, err := strconv.Atoi(c.Param("slide"))
	if err != nil || !deck.ValidSlide(slide) {
		BadRequest(c, "slide number must be between 1 and 3")
		return
	}

	profile, err := h.getProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProfileError(c, err)
		return
	}

	placements, err := database.PlacementsOf(*profile)
	if err != nil {
		Internal(c, "failed to decode placements")
		return
	}
	placements.Reset(deck.SlideSlot(slide))
	encoded, err := database.EncodePlacements(placements)
	if err != nil {
		Internal(c, "failed to encode placements")
		return
	}

	column := map[int]string{1: "slide1_photo_url", 2: "slide2_photo_url", 3: "slide3_photo_url"}[slide]
	updates := map[string]any{
		column:       req.URL,
		"placements": encoded,
	}
	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
		Internal(c, "failed to update photo")
		return
	}
	if err := h.db.WithContext(ctx).First(profile, profile.ID).Error; err != nil {
		Internal(c, "failed to reload profile")
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(*profile))
}

type placementRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`

	// Optional frame and natural image dimensions. When both are known the
	// scale floor is raised to the cover-fit minimum for this slot.
	FrameWidth    float64 `json:"frame_width"`
	FrameHeight   float64 `json:"frame_height"`
	NaturalWidth  float64 `json:"natural_width"`
	NaturalHeight float64 `json:"natural_height"`
}

// SetPlacement stores the pan/zoom state for one image slot. The scale is
// clamped before persisting; out-of-range values are never stored.
func (h *ProfileHandler) SetPlacement(c *gin.Context) {
	var req placementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	slot := c.Param("slot")
	if !deck.ValidSlot(slot) {
		BadRequest(c, "unknown placement slot")
		return
	}

	profile, err := h.getProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProfileError(c, err)
		return
	}

	placements, err := database.PlacementsOf(*profile)
	if err != nil {
		Internal(c, "failed to decode placements")
		return
	}

	minScale := deck.CoverMinScale(req.FrameWidth, req.FrameHeight, req.NaturalWidth, req.NaturalHeight)
	placements.Set(slot, deck.Placement{X: req.X, Y: req.Y, Scale: req.Scale}, minScale)

	if err := h.savePlacements(c.Request.Context(), profile, placements); err != nil {
		Internal(c, "failed to store placement")
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot, "placement": placements.Get(slot)})
}

// ResetPlacement restores one slot to the default pan/zoom.
func (h *ProfileHandler) ResetPlacement(c *gin.Context) {
	slot := c.Param("slot")
	if !deck.ValidSlot(slot) {
		BadRequest(c, "unknown placement slot")
		return
	}

	profile, err := h.getProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProfileError(c, err)
		return
	}

	placements, err := database.PlacementsOf(*profile)
	if err != nil {
		Internal(c, "failed to decode placements")
		return
	}
	placements.Reset(slot)

	if err := h.savePlacements(c.Request.Context(), profile, placements); err != nil {
		Internal(c, "failed to store placement")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProfileHandler) savePlacements(ctx context.Context, profile *database.Profile, placements deck.PlacementMap) error {
	encoded, err := database.EncodePlacements(placements)
	if err != nil {
		return err
	}
	return h.db.WithContext(ctx).Model(profile).Update("placements", encoded).Error
}

func (h *ProfileHandler) getProfile(ctx context.Context, idParam string) (*database.Profile, error) {
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, errInvalidID
	}

	var profile database.Profile
	if err := h.db.WithContext(ctx).First(&profile, uint(id)).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidID):
		BadRequest(c, "invalid profile id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "profile not found")
	default:
		Internal(c, "failed to query profile")
	}
}
