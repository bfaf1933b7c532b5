package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"profiledeck/internal/storage"
)

// RegisterRoutes registers the API routes, without an /api prefix.
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	asynqClient *asynq.Client,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient *storage.Client,
	clamdAddr string,
) {
	profileHandler := NewProfileHandler(db, storageClient)
	themeHandler := NewThemeHandler(db)
	elementHandler := NewElementHandler(db)
	exportHandler := NewExportHandler(db, asynqClient, redisClient, storageClient)
	assetHandler := NewAssetHandler(storageClient, clamdAddr)
	wsHandler := NewWsHandler(redisClient, logger)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		profileGroup := v1.Group("/profiles")
		{
			profileGroup.POST("", profileHandler.CreateProfile)
			profileGroup.GET("", profileHandler.ListProfiles)
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
			themeGroup.GET("", themeHandler.ListThemes)
			themeGroup.GET("/:id", themeHandler.GetTheme)
			themeGroup.PUT("/:id", themeHandler.UpdateTheme)
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

		exportGroup := v1.Group("/exports")
		{
			exportGroup.POST("", exportHandler.CreateExport)
			exportGroup.GET("/:id", exportHandler.GetExport)
			exportGroup.GET("/:id/download", exportHandler.GetDownloadLink)
		}

		assetGroup := v1.Group("/assets")
		{
			assetGroup.POST("/upload", assetHandler.UploadAsset)
			assetGroup.GET("", assetHandler.ListAssets)
			assetGroup.GET("/view", assetHandler.GetAssetURL)
			assetGroup.DELETE("", assetHandler.DeleteAsset)
		}
	}
}
