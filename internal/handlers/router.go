package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront-ops/import-service/internal/services"
	"github.com/storefront-ops/import-service/internal/utils"
)

type HandlerManager struct {
	importHandler *ImportHandler
	exportHandler *ExportHandler
}

func NewHandlerManager(
	importService services.ImportService,
	exportService services.ExportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		importHandler: NewImportHandler(importService, exportService, logger),
		exportHandler: NewExportHandler(exportService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "import-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		imports := v1.Group("/imports")
		{
			imports.POST("", hm.importHandler.CreateImport)
			imports.GET("", hm.importHandler.ListImports)
			imports.GET("/template", hm.importHandler.GetTemplate)
			imports.GET("/:id", hm.importHandler.GetImport)
			imports.POST("/:id/validate", hm.importHandler.ValidateImport)
			imports.POST("/:id/process", hm.importHandler.ProcessImport)
			imports.DELETE("/:id", hm.importHandler.DeleteImport)
		}

		exports := v1.Group("/exports")
		{
			exports.GET("/:entity_type", hm.exportHandler.Export)
		}
	}
}
