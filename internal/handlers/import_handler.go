package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront-ops/import-service/internal/importer"
	"github.com/storefront-ops/import-service/internal/models"
	"github.com/storefront-ops/import-service/internal/repositories"
	"github.com/storefront-ops/import-service/internal/services"
	"github.com/storefront-ops/import-service/internal/utils"
)

type ImportHandler struct {
	BaseHandler
	importService services.ImportService
	exportService services.ExportService
}

func NewImportHandler(importService services.ImportService, exportService services.ExportService, logger utils.Logger) *ImportHandler {
	return &ImportHandler{
		BaseHandler:   NewBaseHandler(logger),
		importService: importService,
		exportService: exportService,
	}
}

// maxUploadSize caps import uploads at 50MB.
const maxUploadSize = 50 << 20

// CreateImport accepts a multipart upload and registers a PENDING job.
// POST /api/v1/imports
func (h *ImportHandler) CreateImport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	var req services.CreateImportRequest
	if err := c.ShouldBind(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Missing file", nil, "multipart field 'file' is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Unreadable file", nil, err.Error())
		return
	}
	defer file.Close()

	job, err := h.importService.CreateJob(c.Request.Context(), &req, file, fileHeader.Filename, ActorFromRequest(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// ListImports returns jobs filtered by entity type and status.
// GET /api/v1/imports
func (h *ImportHandler) ListImports(c *gin.Context) {
	filters := repositories.ImportJobFilters{
		Limit:  ParseIntQuery(c, "limit", 20),
		Offset: ParseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("entity_type"); raw != "" {
		entityType := models.EntityType(raw)
		if !entityType.Valid() {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid entity_type filter", nil)
			return
		}
		filters.EntityType = &entityType
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ImportStatus(raw)
		filters.Status = &status
	}

	jobs, total, err := h.importService.ListJobs(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":   jobs,
		"total":  total,
		"limit":  filters.Limit,
		"offset": filters.Offset,
	})
}

// GetImport returns one job with its counters and row errors.
// GET /api/v1/imports/:id
func (h *ImportHandler) GetImport(c *gin.Context) {
	jobID := ParseStringIDParam(c, "id")
	if jobID == "" {
		return
	}

	job, err := h.importService.GetJob(c.Request.Context(), jobID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ValidateImport runs the read-only validation phase and returns the
// report. POST /api/v1/imports/:id/validate
func (h *ImportHandler) ValidateImport(c *gin.Context) {
	jobID := ParseStringIDParam(c, "id")
	if jobID == "" {
		return
	}

	job, report, err := h.importService.ValidateJob(c.Request.Context(), jobID, ActorFromRequest(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if report == nil {
		// Decode failed; the job carries the failure reason.
		c.JSON(http.StatusUnprocessableEntity, job)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job":    job,
		"report": report,
	})
}

// ProcessImport runs the batch and returns the finished job.
// POST /api/v1/imports/:id/process
func (h *ImportHandler) ProcessImport(c *gin.Context) {
	jobID := ParseStringIDParam(c, "id")
	if jobID == "" {
		return
	}

	job, err := h.importService.ProcessJob(c.Request.Context(), jobID, ActorFromRequest(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteImport removes a finished or never-started job and its file.
// DELETE /api/v1/imports/:id
func (h *ImportHandler) DeleteImport(c *gin.Context) {
	jobID := ParseStringIDParam(c, "id")
	if jobID == "" {
		return
	}

	if err := h.importService.DeleteJob(c.Request.Context(), jobID, ActorFromRequest(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Import job deleted", nil, "job_id", jobID)
}

// GetTemplate describes the expected columns for an entity type. With
// ?format= it serves a starter file instead of the column description.
// GET /api/v1/imports/template
func (h *ImportHandler) GetTemplate(c *gin.Context) {
	entityType := models.EntityType(c.Query("entity_type"))
	if !entityType.Valid() {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid entity_type", nil, "query parameter 'entity_type' is required")
		return
	}

	if raw := c.Query("format"); raw != "" {
		format := models.FileFormat(raw)
		data, fileName, err := h.exportService.Template(entityType, format)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
		c.Data(http.StatusOK, exportContentTypes[format], data)
		return
	}

	c.JSON(http.StatusOK, importer.TemplateFor(entityType))
}

func (h *ImportHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", nil, validationErrors)
		return
	}

	switch {
	case errors.Is(err, services.ErrImportJobNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Import job not found", nil)
	case errors.Is(err, services.ErrImportAlreadyDone):
		h.RespondWithError(c, http.StatusConflict, "Import already processed", nil)
	case errors.Is(err, services.ErrImportInProgress):
		h.RespondWithError(c, http.StatusConflict, "Import is currently processing", nil)
	case errors.Is(err, services.ErrImportNotDeletable):
		h.RespondWithError(c, http.StatusConflict, "Import job cannot be deleted while processing", nil)
	case errors.Is(err, services.ErrUnsupportedFormat):
		h.RespondWithError(c, http.StatusBadRequest, "Unsupported file format", nil)
	case errors.Is(err, services.ErrUnsupportedEntity):
		h.RespondWithError(c, http.StatusBadRequest, "Unsupported entity type", nil)
	case errors.Is(err, services.ErrValidationFailed):
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", nil, err.Error())
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
