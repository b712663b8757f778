package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/storefront-ops/import-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store keyed by entity type and natural
// key. Error injection simulates constraint or connectivity failures.
type fakeStore struct {
	records map[string]*ResolvedEntity
	updates int

	existsErr error
	createErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*ResolvedEntity)}
}

func storeKey(entityType models.EntityType, key NaturalKey) string {
	fields := make([]string, 0, len(key))
	for field := range key {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields)+1)
	parts = append(parts, string(entityType))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", field, key[field]))
	}
	return strings.Join(parts, "|")
}

func (s *fakeStore) Exists(ctx context.Context, entityType models.EntityType, key NaturalKey) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.records[storeKey(entityType, key)]
	return ok, nil
}

func (s *fakeStore) Create(ctx context.Context, entity *ResolvedEntity) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.records[storeKey(entity.Type, entity.Key)] = entity
	return nil
}

func (s *fakeStore) Update(ctx context.Context, entity *ResolvedEntity) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.records[storeKey(entity.Type, entity.Key)] = entity
	s.updates++
	return nil
}

func testEntity(sku string) *ResolvedEntity {
	return &ResolvedEntity{
		Type:   models.EntityProducts,
		Key:    NaturalKey{"sku": sku},
		Model:  &models.Product{SKU: sku},
		Fields: map[string]any{"name": "Widget"},
		Label:  sku,
	}
}

func TestApply_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts when absent", func(t *testing.T) {
		store := newFakeStore()

		outcome := Apply(ctx, store, models.ModeCreate, testEntity("SKU-1"))

		assert.Equal(t, OutcomeSuccess, outcome.Status)
		assert.Len(t, store.records, 1)
	})

	t.Run("skips when present", func(t *testing.T) {
		store := newFakeStore()
		require.Equal(t, OutcomeSuccess, Apply(ctx, store, models.ModeCreate, testEntity("SKU-1")).Status)

		outcome := Apply(ctx, store, models.ModeCreate, testEntity("SKU-1"))

		assert.Equal(t, OutcomeSkipped, outcome.Status)
		assert.Equal(t, "SKU-1 already exists", outcome.Reason)
		assert.Len(t, store.records, 1)
	})
}

func TestApply_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("skips when absent", func(t *testing.T) {
		store := newFakeStore()

		outcome := Apply(ctx, store, models.ModeUpdate, testEntity("SKU-1"))

		assert.Equal(t, OutcomeSkipped, outcome.Status)
		assert.Equal(t, "SKU-1 not found, nothing to update", outcome.Reason)
		assert.Empty(t, store.records)
	})

	t.Run("overwrites when present", func(t *testing.T) {
		store := newFakeStore()
		require.Equal(t, OutcomeSuccess, Apply(ctx, store, models.ModeCreate, testEntity("SKU-1")).Status)

		outcome := Apply(ctx, store, models.ModeUpdate, testEntity("SKU-1"))

		assert.Equal(t, OutcomeSuccess, outcome.Status)
		assert.Equal(t, 1, store.updates)
	})
}

func TestApply_Upsert(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	first := Apply(ctx, store, models.ModeUpsert, testEntity("SKU-1"))
	second := Apply(ctx, store, models.ModeUpsert, testEntity("SKU-1"))

	assert.Equal(t, OutcomeSuccess, first.Status)
	assert.Equal(t, OutcomeSuccess, second.Status)
	assert.Len(t, store.records, 1)
	assert.Equal(t, 1, store.updates)
}

func TestApply_StoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("exists failure", func(t *testing.T) {
		store := newFakeStore()
		store.existsErr = errors.New("connection reset")

		outcome := Apply(ctx, store, models.ModeUpsert, testEntity("SKU-1"))

		assert.Equal(t, OutcomeFailed, outcome.Status)
		assert.Equal(t, "connection reset", outcome.Reason)
	})

	t.Run("create failure carries the store message", func(t *testing.T) {
		store := newFakeStore()
		store.createErr = errors.New("null value in column \"name\"")

		outcome := Apply(ctx, store, models.ModeCreate, testEntity("SKU-1"))

		assert.Equal(t, OutcomeFailed, outcome.Status)
		assert.Contains(t, outcome.Reason, "null value")
	})
}

func TestApply_UnknownMode(t *testing.T) {
	store := newFakeStore()

	outcome := Apply(context.Background(), store, models.ConflictMode("MERGE"), testEntity("SKU-1"))

	assert.Equal(t, OutcomeFailed, outcome.Status)
	assert.Contains(t, outcome.Reason, "MERGE")
}
