package repositories

import (
	"context"
	"errors"

	"github.com/storefront-ops/import-service/internal/importer"
	"github.com/storefront-ops/import-service/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError checks if error represents a "not found" condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type ImportJobFilters struct {
	EntityType *models.EntityType   `json:"entity_type"`
	Status     *models.ImportStatus `json:"status"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

// ImportJobRepository persists import job lifecycles.
type ImportJobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, id string) (*models.ImportJob, error)
	Update(ctx context.Context, job *models.ImportJob) error
	List(ctx context.Context, filters ImportJobFilters) ([]*models.ImportJob, int64, error)
	Delete(ctx context.Context, id string) error
}

// CatalogTx is the transaction-scoped view of the record store: the
// applier's typed mutations plus the resolver's natural-key lookups,
// all running on one ambient transaction handle for the whole batch.
type CatalogTx interface {
	importer.Store
	importer.Lookups
}

// CatalogRepository is the non-transactional read surface (exports,
// previews).
type CatalogRepository interface {
	List(ctx context.Context, dest any, limit, offset int) error
}

// Repository aggregates the persistence surface of the service.
type Repository interface {
	ImportJobs() ImportJobRepository
	Catalog() CatalogRepository

	// InTransaction runs fn against a transaction-scoped catalog. The
	// transaction commits when fn returns nil and rolls back otherwise;
	// ctx carries the batch's time budget.
	InTransaction(ctx context.Context, fn func(tx CatalogTx) error) error
}
