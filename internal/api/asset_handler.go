package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"profiledeck/internal/api/middleware"
	"profiledeck/internal/storage"
)

const (
	assetPrefix      = "assets/"
	assetThumbPrefix = "assets/thumbs/"
	thumbSize        = 200
)

// AssetHandler handles image uploads and access. Uploaded images are
// optionally scanned through clamd, then stored alongside a small cover
// thumbnail for pickers.
type AssetHandler struct {
	Storage   *storage.Client
	ClamdAddr string
}

// NewAssetHandler returns an AssetHandler. An empty clamd address disables
// scanning. Logging goes through the request-scoped logger so every line
// carries the correlation ID.
func NewAssetHandler(storageClient *storage.Client, clamdAddr string) *AssetHandler {
	return &AssetHandler{
		Storage:   storageClient,
		ClamdAddr: clamdAddr,
	}
}

// UploadAsset stores one uploaded image plus its thumbnail, returning the
// object key callers bind into photos, backgrounds or image elements.
func (h *AssetHandler) UploadAsset(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	log := middleware.LoggerFromContext(c)

	if h.ClamdAddr != "" {
		clean, err := h.scanUpload(file)
		if err != nil {
			log.Error("scan file", slog.String("error", err.Error()))
			Internal(c, "failed to scan file")
			return
		}
		if !clean {
			BadRequest(c, "malicious file detected")
			return
		}
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer fileReader.Close()

	img, err := imaging.Decode(fileReader)
	if err != nil {
		BadRequest(c, "file is not a decodable image")
		return
	}

	ext := strings.ToLower(path.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg":
	default:
		ext = ".png"
	}

	name := uuid.NewString()
	objectKey := assetPrefix + name + ext
	thumbKey := assetThumbPrefix + name + ".png"
	ctx := c.Request.Context()

	var original bytes.Buffer
	if err := imaging.Encode(&original, img, formatForExt(ext)); err != nil {
		Internal(c, "failed to encode image")
		return
	}
	if err := h.Storage.UploadBytes(ctx, objectKey, original.Bytes(), contentTypeForExt(ext)); err != nil {
		log.Error("upload file", slog.String("error", err.Error()))
		Internal(c, "failed to upload file")
		return
	}

	thumb := imaging.Fill(img, thumbSize, thumbSize, imaging.Center, imaging.Lanczos)
	var thumbBuf bytes.Buffer
	if err := imaging.Encode(&thumbBuf, thumb, imaging.PNG); err != nil {
		Internal(c, "failed to encode thumbnail")
		return
	}
	if err := h.Storage.UploadBytes(ctx, thumbKey, thumbBuf.Bytes(), "image/png"); err != nil {
		log.Error("upload thumbnail", slog.String("error", err.Error()))
		Internal(c, "failed to upload thumbnail")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"objectKey":    objectKey,
		"thumbnailKey": thumbKey,
	})
}

// scanUpload streams the file through clamd.
func (h *AssetHandler) scanUpload(file *multipart.FileHeader) (bool, error) {
	fileReader, err := file.Open()
	if err != nil {
		return false, fmt.Errorf("open upload: %w", err)
	}
	defer fileReader.Close()

	clamdClient := clamd.NewClamd(h.ClamdAddr)
	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(fileReader, abortChan)
	if err != nil {
		return false, fmt.Errorf("scan stream: %w", err)
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return false, nil
		}
	}
	return true, nil
}

// ListAssets lists uploaded images, newest first, with presigned thumbnail
// links for pickers.
func (h *AssetHandler) ListAssets(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "60")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 60
	}
	if limit > 200 {
		limit = 200
	}

	log := middleware.LoggerFromContext(c)
	objects, err := h.Storage.ListObjects(c.Request.Context(), assetPrefix, limit)
	if err != nil {
		log.Error("list assets", slog.String("error", err.Error()))
		Internal(c, "failed to list assets")
		return
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	items := make([]gin.H, 0, len(objects))
	for _, obj := range objects {
		if strings.HasPrefix(obj.Key, assetThumbPrefix) {
			continue
		}
		url, err := h.Storage.GeneratePresignedURL(c.Request.Context(), thumbKeyFor(obj.Key), 10*time.Minute)
		if err != nil {
			// Fall back to the original when the thumbnail is gone.
			url, err = h.Storage.GeneratePresignedURL(c.Request.Context(), obj.Key, 10*time.Minute)
			if err != nil {
				log.Error("generate asset url", slog.String("objectKey", obj.Key), slog.String("error", err.Error()))
				continue
			}
		}
		items = append(items, gin.H{
			"objectKey":    obj.Key,
			"previewUrl":   url,
			"size":         obj.Size,
			"lastModified": obj.LastModified,
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetAssetURL returns a temporary presigned URL for one asset.
func (h *AssetHandler) GetAssetURL(c *gin.Context) {
	objectKey := c.Query("key")
	if objectKey == "" {
		BadRequest(c, "missing key")
		return
	}
	if !isValidAssetObjectKey(objectKey) {
		BadRequest(c, "invalid object key")
		return
	}

	signedURL, err := h.Storage.GeneratePresignedURL(c.Request.Context(), objectKey, 15*time.Minute)
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate presigned url", slog.String("error", err.Error()))
		Internal(c, "failed to generate url")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

// DeleteAsset removes an uploaded image and its thumbnail. Deleting a key
// that is already gone succeeds.
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	objectKey := c.Query("key")
	if objectKey == "" {
		BadRequest(c, "missing key")
		return
	}
	if !isValidAssetObjectKey(objectKey) {
		BadRequest(c, "invalid object key")
		return
	}

	ctx := c.Request.Context()
	if err := h.Storage.DeleteObject(ctx, objectKey); err != nil {
		middleware.LoggerFromContext(c).Error("delete asset", slog.String("objectKey", objectKey), slog.String("error", err.Error()))
		Internal(c, "failed to delete asset")
		return
	}
	if err := h.Storage.DeleteObject(ctx, thumbKeyFor(objectKey)); err != nil {
		middleware.LoggerFromContext(c).Error("delete asset thumbnail", slog.String("objectKey", objectKey), slog.String("error", err.Error()))
	}
	c.Status(http.StatusNoContent)
}

func thumbKeyFor(objectKey string) string {
	name := strings.TrimPrefix(objectKey, assetPrefix)
	if dot := strings.LastIndex(name, "."); dot > 0 {
		name = name[:dot]
	}
	return assetThumbPrefix + name + ".png"
}

func formatForExt(ext string) imaging.Format {
	switch ext {
	case ".jpg", ".jpeg":
		return imaging.JPEG
	default:
		return imaging.PNG
	}
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
