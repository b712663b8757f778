package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront-ops/import-service/internal/models"
	"github.com/storefront-ops/import-service/internal/services"
	"github.com/storefront-ops/import-service/internal/utils"
)

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

var exportContentTypes = map[models.FileFormat]string{
	models.FormatCSV:  "text/csv",
	models.FormatJSON: "application/json",
	models.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Export streams one entity table as a downloadable file.
// GET /api/v1/exports/:entity_type
func (h *ExportHandler) Export(c *gin.Context) {
	entityType := models.EntityType(c.Param("entity_type"))
	if !entityType.Valid() {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid entity type", nil)
		return
	}

	format := models.FileFormat(c.DefaultQuery("format", string(models.FormatCSV)))
	limit := ParseIntQuery(c, "limit", 0)
	offset := ParseIntQuery(c, "offset", 0)

	data, fileName, err := h.exportService.Export(c.Request.Context(), entityType, format, limit, offset, ActorFromRequest(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnsupportedFormat):
			h.RespondWithError(c, http.StatusBadRequest, "Unsupported file format", nil)
		case errors.Is(err, services.ErrUnsupportedEntity):
			h.RespondWithError(c, http.StatusBadRequest, "Unsupported entity type", nil)
		default:
			h.RespondWithError(c, http.StatusInternalServerError, "Export failed", err)
		}
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, exportContentTypes[format], data)
}
