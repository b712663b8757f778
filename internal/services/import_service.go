package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront-ops/import-service/internal/events"
	"github.com/storefront-ops/import-service/internal/importer"
	"github.com/storefront-ops/import-service/internal/media"
	"github.com/storefront-ops/import-service/internal/models"
	"github.com/storefront-ops/import-service/internal/repositories"
	"github.com/storefront-ops/import-service/internal/utils"
	"github.com/storefront-ops/import-service/internal/validator"
)

// ImportService drives the import job lifecycle: accept an upload,
// validate it read-only, and process it row by row inside one bounded
// transaction.
type ImportService interface {
	CreateJob(ctx context.Context, req *CreateImportRequest, file io.Reader, fileName string, actor string) (*models.ImportJob, error)
	ValidateJob(ctx context.Context, jobID string, actor string) (*models.ImportJob, *models.ValidationReport, error)
	ProcessJob(ctx context.Context, jobID string, actor string) (*models.ImportJob, error)
	GetJob(ctx context.Context, jobID string) (*models.ImportJob, error)
	ListJobs(ctx context.Context, filters repositories.ImportJobFilters) ([]*models.ImportJob, int64, error)
	DeleteJob(ctx context.Context, jobID string, actor string) error
}

// CreateImportRequest carries the declared shape of an upload.
type CreateImportRequest struct {
	EntityType models.EntityType   `form:"entity_type" json:"entity_type" validate:"required,entity_type"`
	Format     models.FileFormat   `form:"format" json:"format" validate:"omitempty,file_format"`
	Mode       models.ConflictMode `form:"mode" json:"mode" validate:"required,conflict_mode"`
}

type importService struct {
	repo      repositories.Repository
	files     media.FileStore
	resolver  *importer.Resolver
	publisher events.ActivityPublisher
	validator *validator.Validator
	logger    utils.Logger
	txTimeout time.Duration
}

// DefaultTxTimeout is the whole-batch transaction budget: if the row
// loop does not finish within it, the transaction rolls back and the
// job fails. Nothing is partially committed.
const DefaultTxTimeout = 2 * time.Minute

func NewImportService(
	repo repositories.Repository,
	files media.FileStore,
	resolver *importer.Resolver,
	publisher events.ActivityPublisher,
	v *validator.Validator,
	logger utils.Logger,
	txTimeout time.Duration,
) ImportService {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &importService{
		repo:      repo,
		files:     files,
		resolver:  resolver,
		publisher: publisher,
		validator: v,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

// ===== JOB CREATION =====

func (s *importService) CreateJob(ctx context.Context, req *CreateImportRequest, file io.Reader, fileName string, actor string) (*models.ImportJob, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	format := req.Format
	if format == "" {
		inferred, err := formatFromName(fileName)
		if err != nil {
			return nil, err
		}
		format = inferred
	}

	location, size, err := s.files.Save(fileName, file)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	job := &models.ImportJob{
		ID:         uuid.NewString(),
		EntityType: req.EntityType,
		Format:     format,
		Mode:       req.Mode,
		FileName:   fileName,
		FilePath:   location,
		FileSize:   size,
		Status:     models.ImportPending,
	}
	if err := s.repo.ImportJobs().Create(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Import job created",
		"job_id", job.ID,
		"entity_type", job.EntityType,
		"mode", job.Mode,
		"file_name", fileName,
		"file_size", size)

	s.recordActivity(ctx, actor, events.ActionImportCreated, job.ID,
		fmt.Sprintf("Import of %s created from %s (%s, %s mode)", job.EntityType, fileName, format, job.Mode))

	return job, nil
}

func formatFromName(fileName string) (models.FileFormat, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return models.FormatCSV, nil
	case ".json":
		return models.FormatJSON, nil
	case ".xlsx", ".xls":
		return models.FormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// ===== VALIDATION PHASE =====

// ValidateJob runs the read-only validation phase. It never touches
// the catalog and is repeatable: re-validating yields the same report.
func (s *importService) ValidateJob(ctx context.Context, jobID string, actor string) (*models.ImportJob, *models.ValidationReport, error) {
	job, err := s.getForTransition(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	job.Status = models.ImportValidating
	if err := s.repo.ImportJobs().Update(ctx, job); err != nil {
		return nil, nil, err
	}

	rows, err := s.fetchAndDecode(ctx, job)
	if err != nil {
		failed := s.failJob(ctx, job, err)
		return failed, nil, nil
	}

	report := importer.Validate(job.EntityType, rows)

	encoded, err := json.Marshal(report)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to serialize validation report: %w", err)
	}
	job.Validation = encoded
	job.TotalRows = report.TotalRows
	job.Status = models.ImportValidated
	if err := s.repo.ImportJobs().Update(ctx, job); err != nil {
		return nil, nil, err
	}

	s.recordActivity(ctx, actor, events.ActionImportValidated, job.ID,
		fmt.Sprintf("Validated %s import: %d rows, %d valid, %d invalid",
			job.EntityType, report.TotalRows, report.ValidRows, report.InvalidRows))

	return job, &report, nil
}

// ===== PROCESSING PHASE =====

// ProcessJob runs the batch: decode, then one transaction over every
// row in order. Row-scoped failures are recorded and the loop
// continues; only decode and transaction failures fail the whole job.
func (s *importService) ProcessJob(ctx context.Context, jobID string, actor string) (*models.ImportJob, error) {
	job, err := s.getForTransition(ctx, jobID)
	if err != nil {
		return nil, err
	}

	job.Status = models.ImportInProgress
	if err := s.repo.ImportJobs().Update(ctx, job); err != nil {
		return nil, err
	}
	s.recordActivity(ctx, actor, events.ActionImportStarted, job.ID,
		fmt.Sprintf("Processing %s import from %s (%s mode)", job.EntityType, job.FileName, job.Mode))

	rows, err := s.fetchAndDecode(ctx, job)
	if err != nil {
		failed := s.failJob(ctx, job, err)
		s.recordActivity(ctx, actor, events.ActionImportFailed, job.ID,
			fmt.Sprintf("Import of %s failed: %v", job.EntityType, err))
		return failed, nil
	}

	var success, failed, skipped int
	var rowErrors []models.RowError

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	txErr := s.repo.InTransaction(txCtx, func(tx repositories.CatalogTx) error {
		for _, row := range rows {
			outcome := s.processRow(txCtx, tx, job, row)
			switch outcome.Status {
			case importer.OutcomeSuccess:
				success++
			case importer.OutcomeSkipped:
				skipped++
			case importer.OutcomeFailed:
				failed++
				rowErrors = append(rowErrors, models.RowError{
					Row:     row.Number,
					Field:   outcome.Field,
					Message: outcome.Reason,
				})
			}
			if err := txCtx.Err(); err != nil {
				return err // budget exceeded, roll everything back
			}
		}
		return nil
	})
	if txErr != nil {
		// In-memory row accounting is not durable once the transaction
		// fails; none of it is trusted.
		failedJob := s.failJob(ctx, job, fmt.Errorf("transaction failed: %w", txErr))
		s.recordActivity(ctx, actor, events.ActionImportFailed, job.ID,
			fmt.Sprintf("Import of %s failed: %v", job.EntityType, txErr))
		return failedJob, nil
	}

	now := time.Now()
	job.TotalRows = len(rows)
	job.SuccessCount = success
	job.FailedCount = failed
	job.SkippedCount = skipped
	job.CompletedAt = &now

	encoded, err := json.Marshal(rowErrors)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize row errors: %w", err)
	}
	job.Errors = encoded

	action := events.ActionImportCompleted
	job.Status = models.ImportCompleted
	if failed > 0 {
		job.Status = models.ImportPartial
		action = events.ActionImportPartial
	}
	if err := s.repo.ImportJobs().Update(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Import processed",
		"job_id", job.ID,
		"entity_type", job.EntityType,
		"status", job.Status,
		"total", job.TotalRows,
		"success", success,
		"failed", failed,
		"skipped", skipped)

	s.recordActivity(ctx, actor, action, job.ID,
		fmt.Sprintf("Imported %s: %d rows, %d succeeded, %d failed, %d skipped",
			job.EntityType, job.TotalRows, success, failed, skipped))

	return job, nil
}

// processRow resolves and applies one row. Every row-scoped error is
// converted to a Failed outcome here; nothing escapes the loop.
func (s *importService) processRow(ctx context.Context, tx repositories.CatalogTx, job *models.ImportJob, row importer.Row) importer.RowOutcome {
	entity, err := s.resolver.Resolve(ctx, tx, job.EntityType, row)
	if err != nil {
		var resErr *importer.ResolutionError
		if errors.As(err, &resErr) {
			return importer.RowOutcome{Status: importer.OutcomeFailed, Field: resErr.Field, Reason: resErr.Message}
		}
		return importer.RowOutcome{Status: importer.OutcomeFailed, Reason: err.Error()}
	}
	return importer.Apply(ctx, tx, job.Mode, entity)
}

// ===== QUERIES AND DELETION =====

func (s *importService) GetJob(ctx context.Context, jobID string) (*models.ImportJob, error) {
	job, err := s.repo.ImportJobs().GetByID(ctx, jobID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrImportJobNotFound
		}
		return nil, err
	}
	return job, nil
}

func (s *importService) ListJobs(ctx context.Context, filters repositories.ImportJobFilters) ([]*models.ImportJob, int64, error) {
	return s.repo.ImportJobs().List(ctx, filters)
}

func (s *importService) DeleteJob(ctx context.Context, jobID string, actor string) error {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status == models.ImportInProgress {
		return ErrImportNotDeletable
	}
	if err := s.repo.ImportJobs().Delete(ctx, jobID); err != nil {
		return err
	}
	if err := s.files.Remove(job.FilePath); err != nil {
		s.logger.Warn("failed to remove import file", "job_id", jobID, "path", job.FilePath, "error", err)
	}
	s.recordActivity(ctx, actor, events.ActionImportDeleted, jobID,
		fmt.Sprintf("Import of %s from %s deleted", job.EntityType, job.FileName))
	return nil
}

// ===== HELPERS =====

// getForTransition loads a job and enforces the re-entry guards: a
// terminal job is never processed again, and a job cannot be entered
// while another worker holds it.
func (s *importService) getForTransition(ctx context.Context, jobID string) (*models.ImportJob, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return nil, ErrImportAlreadyDone
	}
	if job.Status == models.ImportInProgress {
		return nil, ErrImportInProgress
	}
	return job, nil
}

func (s *importService) fetchAndDecode(ctx context.Context, job *models.ImportJob) ([]importer.Row, error) {
	data, err := s.files.Fetch(ctx, job.FilePath)
	if err != nil {
		return nil, err
	}
	rows, err := importer.Decode(job.Format, data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// failJob moves a job to FAILED with the captured cause. Row counters
// are zeroed: the job either never reached per-row accounting or its
// accounting was discarded with the transaction.
func (s *importService) failJob(ctx context.Context, job *models.ImportJob, cause error) *models.ImportJob {
	now := time.Now()
	msg := cause.Error()
	job.Status = models.ImportFailed
	job.FailReason = &msg
	job.SuccessCount = 0
	job.FailedCount = 0
	job.SkippedCount = 0
	job.Errors = nil
	job.CompletedAt = &now

	if err := s.repo.ImportJobs().Update(ctx, job); err != nil {
		s.logger.Error("failed to persist failed import job", "job_id", job.ID, "error", err)
	}
	s.logger.Warn("Import job failed", "job_id", job.ID, "entity_type", job.EntityType, "reason", msg)
	return job
}

// recordActivity notifies the external activity log. Fire-and-forget:
// a publish failure is logged and swallowed.
func (s *importService) recordActivity(ctx context.Context, actor string, action events.ActivityAction, jobID, summary string) {
	event := &events.ActivityEvent{
		ID:           uuid.NewString(),
		Actor:        actor,
		Action:       action,
		ResourceType: "import_job",
		ResourceID:   jobID,
		Summary:      summary,
		Timestamp:    time.Now(),
		Source:       "import-service",
	}
	if err := s.publisher.PublishActivity(ctx, event); err != nil {
		s.logger.Warn("failed to record activity", "job_id", jobID, "action", action, "error", err)
	}
}
