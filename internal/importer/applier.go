package importer

import (
	"context"
	"fmt"

	"github.com/storefront-ops/import-service/internal/models"
)

// OutcomeStatus is the tri-state result of one processed row.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "SUCCESS"
	OutcomeFailed  OutcomeStatus = "FAILED"
	OutcomeSkipped OutcomeStatus = "SKIPPED"
)

// RowOutcome records what happened to one row. Skipped means the
// conflict policy deliberately declined to act; Failed means something
// went wrong.
type RowOutcome struct {
	Status OutcomeStatus
	Field  string
	Reason string
}

// Store is the mutation surface the applier drives, scoped to the
// job's ambient transaction.
type Store interface {
	Exists(ctx context.Context, entityType models.EntityType, key NaturalKey) (bool, error)
	Create(ctx context.Context, entity *ResolvedEntity) error
	Update(ctx context.Context, entity *ResolvedEntity) error
}

// Apply performs the store mutation for one resolved entity under the
// job's conflict mode:
//
//	mode   | record exists        | record absent
//	CREATE | Skipped              | Success (insert)
//	UPDATE | Success (overwrite)  | Skipped
//	UPSERT | Success (overwrite)  | Success (insert)
//
// Existing/absent are expected outcomes, never failures. Only store
// errors (constraint violation, connectivity) produce Failed, carrying
// the store's message. The natural key itself is never rewritten.
func Apply(ctx context.Context, store Store, mode models.ConflictMode, entity *ResolvedEntity) RowOutcome {
	exists, err := store.Exists(ctx, entity.Type, entity.Key)
	if err != nil {
		return RowOutcome{Status: OutcomeFailed, Reason: err.Error()}
	}

	switch mode {
	case models.ModeCreate:
		if exists {
			return RowOutcome{Status: OutcomeSkipped, Reason: fmt.Sprintf("%s already exists", entity.Label)}
		}
		return insert(ctx, store, entity)
	case models.ModeUpdate:
		if !exists {
			return RowOutcome{Status: OutcomeSkipped, Reason: fmt.Sprintf("%s not found, nothing to update", entity.Label)}
		}
		return overwrite(ctx, store, entity)
	case models.ModeUpsert:
		if exists {
			return overwrite(ctx, store, entity)
		}
		return insert(ctx, store, entity)
	default:
		return RowOutcome{Status: OutcomeFailed, Reason: fmt.Sprintf("unknown conflict mode %q", mode)}
	}
}

func insert(ctx context.Context, store Store, entity *ResolvedEntity) RowOutcome {
	if err := store.Create(ctx, entity); err != nil {
		return RowOutcome{Status: OutcomeFailed, Reason: err.Error()}
	}
	return RowOutcome{Status: OutcomeSuccess}
}

func overwrite(ctx context.Context, store Store, entity *ResolvedEntity) RowOutcome {
	if err := store.Update(ctx, entity); err != nil {
		return RowOutcome{Status: OutcomeFailed, Reason: err.Error()}
	}
	return RowOutcome{Status: OutcomeSuccess}
}
