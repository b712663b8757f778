package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront-ops/import-service/internal/models"
	"github.com/storefront-ops/import-service/internal/repositories"
	"github.com/storefront-ops/import-service/internal/services"
	"github.com/storefront-ops/import-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubImportService returns a fixed job or error for every operation.
type stubImportService struct {
	job *models.ImportJob
	err error
}

func (s *stubImportService) CreateJob(ctx context.Context, req *services.CreateImportRequest, file io.Reader, fileName string, actor string) (*models.ImportJob, error) {
	return s.job, s.err
}

func (s *stubImportService) ValidateJob(ctx context.Context, jobID string, actor string) (*models.ImportJob, *models.ValidationReport, error) {
	return s.job, nil, s.err
}

func (s *stubImportService) ProcessJob(ctx context.Context, jobID string, actor string) (*models.ImportJob, error) {
	return s.job, s.err
}

func (s *stubImportService) GetJob(ctx context.Context, jobID string) (*models.ImportJob, error) {
	return s.job, s.err
}

func (s *stubImportService) ListJobs(ctx context.Context, filters repositories.ImportJobFilters) ([]*models.ImportJob, int64, error) {
	return nil, 0, s.err
}

func (s *stubImportService) DeleteJob(ctx context.Context, jobID string, actor string) error {
	return s.err
}

type stubExportService struct{}

func (stubExportService) Export(ctx context.Context, entityType models.EntityType, format models.FileFormat, limit, offset int, actor string) ([]byte, string, error) {
	return []byte("sku\n"), "products_export.csv", nil
}

func (stubExportService) Template(entityType models.EntityType, format models.FileFormat) ([]byte, string, error) {
	return []byte("sku\nSKU-1001\n"), "products_template.csv", nil
}

func newTestRouter(importService services.ImportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := gin.New()
	NewHandlerManager(importService, stubExportService{}, utils.NewSlogLogger(slogger)).SetupRoutes(router)
	return router
}

func TestGetImport_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", services.ErrImportJobNotFound, http.StatusNotFound},
		{"already processed", services.ErrImportAlreadyDone, http.StatusConflict},
		{"in progress", services.ErrImportInProgress, http.StatusConflict},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubImportService{err: tc.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/job-1", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestDeleteImport_SuccessEnvelope(t *testing.T) {
	router := newTestRouter(&stubImportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/imports/job-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Import job deleted", resp.Message)
}

func TestGetTemplate_FileDownload(t *testing.T) {
	router := newTestRouter(&stubImportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/template?entity_type=PRODUCTS&format=CSV", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "products_template.csv")
	assert.Equal(t, "sku\nSKU-1001\n", w.Body.String())
}

func TestGetTemplate_InvalidEntity(t *testing.T) {
	router := newTestRouter(&stubImportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/template?entity_type=ORDERS", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
