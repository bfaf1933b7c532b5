package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"profiledeck/internal/api/middleware"
	"profiledeck/internal/database"
	"profiledeck/internal/deck"
	"profiledeck/internal/storage"
	"profiledeck/internal/tasks"
	"profiledeck/internal/worker"
)

// Per-profile cap on export enqueues, to keep one client from saturating
// the render workers.
const (
	exportRateLimit  = 10
	exportRateWindow = time.Minute
)

// ExportHandler accepts export jobs and serves their status and artifacts.
type ExportHandler struct {
	db          *gorm.DB
	asynqClient *asynq.Client
	redisClient *redis.Client
	storage     *storage.Client
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(db *gorm.DB, asynqClient *asynq.Client, redisClient *redis.Client, storageClient *storage.Client) *ExportHandler {
	return &ExportHandler{
		db:          db,
		asynqClient: asynqClient,
		redisClient: redisClient,
		storage:     storageClient,
	}
}

type createExportRequest struct {
	ProfileID uint   `json:"profile_id" binding:"required"`
	ThemeID   uint   `json:"theme_id" binding:"required"`
	Format    string `json:"format" binding:"required"`

	// SlideNumber designates the slide for single-slide exports; ignored for
	// the other formats.
	SlideNumber int `json:"slide_number"`
}

type exportResponse struct {
	ID            uint      `json:"id"`
	ProfileID     uint      `json:"profile_id"`
	ThemeID       uint      `json:"theme_id"`
	Format        string    `json:"format"`
	SlideNumber   int       `json:"slide_number,omitempty"`
	Status        string    `json:"status"`
	PageCount     int       `json:"page_count,omitempty"`
	CorrelationID string    `json:"correlation_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newExportResponse(e database.Export) exportResponse {
	return exportResponse{
		ID:            e.ID,
		ProfileID:     e.ProfileID,
		ThemeID:       e.ThemeID,
		Format:        e.Format,
		SlideNumber:   e.SlideNumber,
		Status:        e.Status,
		PageCount:     e.PageCount,
		CorrelationID: e.CorrelationID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// CreateExport records an export job and enqueues it, returning 202
// immediately. Completion is announced over the profile's notify channel.
func (h *ExportHandler) CreateExport(c *gin.Context) {
	var req createExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	switch req.Format {
	case worker.FormatPDF, worker.FormatPages:
	case worker.FormatSlide:
		if req.SlideNumber == 0 {
			req.SlideNumber = 1
		}
		if !deck.ValidSlide(req.SlideNumber) {
			BadRequest(c, "slide number must be between 1 and 3")
			return
		}
	default:
		BadRequest(c, fmt.Sprintf("format must be %q, %q or %q",
			worker.FormatPDF, worker.FormatPages, worker.FormatSlide))
		return
	}

	ctx := c.Request.Context()
	var profile database.Profile
	if err := h.db.WithContext(ctx).First(&profile, req.ProfileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "profile not found")
			return
		}
		Internal(c, "failed to query profile")
		return
	}
	var theme database.Theme
	if err := h.db.WithContext(ctx).First(&theme, req.ThemeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "theme not found")
			return
		}
		Internal(c, "failed to query theme")
		return
	}

	rateKey := fmt.Sprintf("export_rate:%d", req.ProfileID)
	if count, err := incrWithTTL(ctx, h.redisClient, rateKey, exportRateWindow); err == nil && count > exportRateLimit {
		TooManyRequests(c, "too many export requests, slow down")
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	export := database.Export{
		ProfileID:     profile.ID,
		ThemeID:       theme.ID,
		Format:        req.Format,
		SlideNumber:   req.SlideNumber,
		Status:        "pending",
		CorrelationID: correlationID,
	}
	if err := h.db.WithContext(ctx).Create(&export).Error; err != nil {
		Internal(c, "failed to create export")
		return
	}

	task, err := tasks.NewDeckExportTask(export.ID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}
	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	if err != nil {
		Internal(c, "failed to enqueue export")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"export":  newExportResponse(export),
		"task_id": info.ID,
	})
}

// GetExport returns the current status of one export job.
func (h *ExportHandler) GetExport(c *gin.Context) {
	export, err := h.getExport(c)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, newExportResponse(*export))
}

// GetDownloadLink returns presigned download links for a finished export:
// one link for a PDF, one per page in slide order for a page set.
func (h *ExportHandler) GetDownloadLink(c *gin.Context) {
	export, err := h.getExport(c)
	if err != nil {
		return
	}
	if export.Status != "completed" || export.ObjectKey == "" {
		Conflict(c, "export not ready")
		return
	}

	ctx := c.Request.Context()
	if export.Format == worker.FormatPDF || export.Format == worker.FormatSlide {
		filename := downloadFilename(*export)
		signedURL, err := h.storage.GeneratePresignedURLWithParams(ctx, export.ObjectKey, 5*time.Minute, map[string]string{
			"response-content-disposition": fmt.Sprintf("attachment; filename=%q", filename),
		})
		if err != nil {
			Internal(c, "failed to generate download link")
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": signedURL, "filename": filename})
		return
	}

	// Page sets store one PNG per slide under the export's key prefix.
	urls := make([]gin.H, 0, deck.SlideCount)
	for n := 1; n <= deck.SlideCount; n++ {
		if export.PageCount > 0 && n > export.PageCount {
			break
		}
		objectKey := fmt.Sprintf("%s/slide-%d.png", export.ObjectKey, n)
		signedURL, err := h.storage.GeneratePresignedURL(ctx, objectKey, 5*time.Minute)
		if err != nil {
			Internal(c, "failed to generate download link")
			return
		}
		urls = append(urls, gin.H{"slide": n, "url": signedURL})
	}
	c.JSON(http.StatusOK, gin.H{"pages": urls})
}

// downloadFilename names the attachment after the profile and format.
func downloadFilename(e database.Export) string {
	if e.Format == worker.FormatSlide {
		n := e.SlideNumber
		if n == 0 {
			n = 1
		}
		return fmt.Sprintf("profile-%d-slide-%d.png", e.ProfileID, n)
	}
	return fmt.Sprintf("profile-%d-deck.pdf", e.ProfileID)
}

// getExport resolves the :id parameter, writing the error response itself
// when the lookup fails.
func (h *ExportHandler) getExport(c *gin.Context) (*database.Export, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid export id")
		return nil, errInvalidID
	}

	var export database.Export
	if err := h.db.WithContext(c.Request.Context()).First(&export, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "export not found")
		} else {
			Internal(c, "failed to query export")
		}
		return nil, err
	}
	return &export, nil
}
