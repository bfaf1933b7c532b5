package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"profiledeck/internal/database"
	"profiledeck/internal/deck"
	"profiledeck/internal/errcode"
	"profiledeck/internal/render"
	"profiledeck/internal/storage"
	"profiledeck/internal/tasks"
)

// Export formats accepted by the task handler.
const (
	FormatPDF   = "pdf"
	FormatPages = "pages"
	FormatSlide = "slide"
)

// snapshotRenderer is the capture capability the handler drives, one surface
// at a time.
type snapshotRenderer interface {
	CaptureSurface(ctx context.Context, surface string) ([]byte, error)
	RenderPDF(ctx context.Context, document string) ([]byte, error)
}

// ExportTaskHandler consumes deck export tasks: it resolves the deck,
// captures its pages in slide order and stores the artifacts.
type ExportTaskHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	redisClient *redis.Client
	logger      *slog.Logger
	composer    *render.Composer
	renderer    snapshotRenderer
}

// NewExportTaskHandler wires the handler.
func NewExportTaskHandler(
	db *gorm.DB,
	storageClient *storage.Client,
	redisClient *redis.Client,
	logger *slog.Logger,
	composer *render.Composer,
	renderer snapshotRenderer,
) *ExportTaskHandler {
	return &ExportTaskHandler{
		db:          db,
		storage:     storageClient,
		redisClient: redisClient,
		logger:      logger,
		composer:    composer,
		renderer:    renderer,
	}
}

// ProcessTask implements asynq.Handler.
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.DeckExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("export_id", uint64(payload.ExportID)),
	)
	log.Info("starting deck export task")

	var export database.Export
	if err := h.db.WithContext(ctx).First(&export, payload.ExportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("export not found, skipping task")
			return nil
		}
		log.Error("query export failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.Uint64("profile_id", uint64(export.ProfileID)),
		slog.Uint64("theme_id", uint64(export.ThemeID)),
		slog.String("format", export.Format),
	)

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}
		if err := h.db.WithContext(context.WithoutCancel(ctx)).
			Model(&export).Update("status", "failed").Error; err != nil {
			log.Error("mark export failed", slog.Any("error", err))
		}
		notify := DeckExportNotifyMessage{
			Status:        "error",
			ExportID:      export.ID,
			ProfileID:     export.ProfileID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.publishExportNotify(ctx, export.ProfileID, notify); err != nil {
			log.Error("publish export error notification failed", slog.Any("error", err))
		}
	}()

	builtDeck, missingKeys, err := h.resolveDeck(ctx, export)
	if err != nil {
		log.Error("resolve deck failed", slog.Any("error", err))
		return err
	}

	objectKey, pageCount, err := h.renderAndStore(ctx, export, builtDeck)
	if err != nil {
		log.Error("render deck failed", slog.Any("error", err))
		return err
	}

	update := map[string]any{
		"object_key": objectKey,
		"status":     "completed",
		"page_count": pageCount,
	}
	if err := h.db.WithContext(ctx).Model(&export).Updates(update).Error; err != nil {
		log.Error("update export failed", slog.Any("error", err))
		return err
	}

	notify := DeckExportNotifyMessage{
		Status:        "completed",
		ExportID:      export.ID,
		ProfileID:     export.ProfileID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if len(missingKeys) > 0 {
		notify.ErrorCode = errcode.ResourceMissing
		notify.ErrorMessage = "some image assets were missing and were skipped"
		notify.MissingKeys = missingKeys
		log.Warn("deck exported with missing assets",
			slog.Int("missing_count", len(missingKeys)),
			slog.Any("missing_keys", missingKeys),
		)
	}
	if err := h.publishExportNotify(ctx, export.ProfileID, notify); err != nil {
		log.Error("publish export notification failed", slog.Any("error", err))
		return err
	}

	log.Info("deck export task completed", slog.String("object_key", objectKey))
	return nil
}

// resolveDeck loads and binds everything the renderer needs: profile, theme,
// elements, placements, with object-store images inlined.
func (h *ExportTaskHandler) resolveDeck(ctx context.Context, export database.Export) (deck.Deck, []string, error) {
	var profileRow database.Profile
	if err := h.db.WithContext(ctx).First(&profileRow, export.ProfileID).Error; err != nil {
		return deck.Deck{}, nil, fmt.Errorf("load profile %d: %w", export.ProfileID, err)
	}
	var themeRow database.Theme
	if err := h.db.WithContext(ctx).First(&themeRow, export.ThemeID).Error; err != nil {
		return deck.Deck{}, nil, fmt.Errorf("load theme %d: %w", export.ThemeID, err)
	}
	var elementRows []database.SlideElement
	if err := h.db.WithContext(ctx).
		Where("theme_id = ?", export.ThemeID).
		Order("slide_number, id").
		Find(&elementRows).Error; err != nil {
		return deck.Deck{}, nil, fmt.Errorf("load elements for theme %d: %w", export.ThemeID, err)
	}

	theme, err := database.ToDeckTheme(themeRow)
	if err != nil {
		return deck.Deck{}, nil, err
	}
	elements, err := database.ToDeckElements(elementRows)
	if err != nil {
		return deck.Deck{}, nil, err
	}
	placements, err := database.PlacementsOf(profileRow)
	if err != nil {
		return deck.Deck{}, nil, err
	}

	built := deck.BuildDeck(theme, elements, database.ToDeckProfile(profileRow), placements)
	missing, err := inlineDeckImages(ctx, h.storage, &built)
	if err != nil {
		return deck.Deck{}, missing, err
	}
	return built, missing, nil
}

// renderAndStore captures the deck in the requested format and uploads the
// artifacts. Page order always follows slide order.
func (h *ExportTaskHandler) renderAndStore(ctx context.Context, export database.Export, built deck.Deck) (string, int, error) {
	prefix := fmt.Sprintf("exports/%d/%s", export.ProfileID, uuid.NewString())

	switch export.Format {
	case FormatPDF:
		document, err := h.composer.ComposeDocument(built)
		if err != nil {
			return "", 0, err
		}
		pdfBytes, err := h.renderer.RenderPDF(ctx, document)
		if err != nil {
			return "", 0, &deck.UpstreamError{Op: "render pdf", Err: err}
		}
		objectKey := prefix + "/deck.pdf"
		if err := h.storage.UploadBytes(ctx, objectKey, pdfBytes, "application/pdf"); err != nil {
			return "", 0, &deck.UpstreamError{Op: "upload pdf", Err: err}
		}
		return objectKey, deck.SlideCount, nil

	case FormatPages:
		pages, err := deck.ExportPages(ctx, built, h.composer, h.renderer)
		if err != nil {
			return "", 0, err
		}
		for _, page := range pages {
			objectKey := prefix + "/" + page.Name
			if err := h.storage.UploadBytes(ctx, objectKey, page.Data, "image/png"); err != nil {
				return "", 0, &deck.UpstreamError{Op: "upload " + page.Name, Err: err}
			}
		}
		return prefix, len(pages), nil

	case FormatSlide:
		n := export.SlideNumber
		if !deck.ValidSlide(n) {
			n = 1
		}
		surface, err := h.composer.ComposeSurface(built.Slides[n-1])
		if err != nil {
			return "", 0, err
		}
		data, err := h.renderer.CaptureSurface(ctx, surface)
		if err != nil {
			return "", 0, &deck.UpstreamError{Op: "capture slide", Err: err}
		}
		objectKey := fmt.Sprintf("%s/slide-%d.png", prefix, n)
		if err := h.storage.UploadBytes(ctx, objectKey, data, "image/png"); err != nil {
			return "", 0, &deck.UpstreamError{Op: "upload slide", Err: err}
		}
		return objectKey, 1, nil

	default:
		return "", 0, fmt.Errorf("unknown export format %q", export.Format)
	}
}

func (h *ExportTaskHandler) publishExportNotify(ctx context.Context, profileID uint, notify DeckExportNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := NotifyChannel(profileID)
	if err := h.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

// NotifyChannel is the Redis pub/sub channel carrying export notifications
// for one profile.
func NotifyChannel(profileID uint) string {
	return fmt.Sprintf("export_notify:%d", profileID)
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
