package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront-ops/import-service/internal/importer"
	"github.com/storefront-ops/import-service/internal/models"
	"github.com/storefront-ops/import-service/internal/repositories"
	"gorm.io/gorm"
)

// modelFor maps an entity type to a zero record for query building.
func modelFor(entityType models.EntityType) (any, error) {
	switch entityType {
	case models.EntityProducts:
		return &models.Product{}, nil
	case models.EntityProductVariants:
		return &models.ProductVariant{}, nil
	case models.EntityProductImages:
		return &models.ProductImage{}, nil
	case models.EntityCustomers:
		return &models.Customer{}, nil
	case models.EntityCategories:
		return &models.Category{}, nil
	case models.EntityInventory:
		return &models.InventoryLevel{}, nil
	case models.EntityBlogPosts:
		return &models.BlogPost{}, nil
	case models.EntityPages:
		return &models.Page{}, nil
	case models.EntityMediaLibrary:
		return &models.MediaAsset{}, nil
	case models.EntityReviews:
		return &models.Review{}, nil
	case models.EntityNewsletterSubscribers:
		return &models.NewsletterSubscriber{}, nil
	case models.EntityDiscountCodes:
		return &models.DiscountCode{}, nil
	default:
		return nil, fmt.Errorf("no store mapping for entity type %q", entityType)
	}
}

// CatalogPostgreSQL serves both the transaction-scoped import surface
// (repositories.CatalogTx) and plain reads, depending on the handle it
// wraps.
type CatalogPostgreSQL struct {
	db *gorm.DB
}

func NewCatalogPostgreSQL(db *gorm.DB) *CatalogPostgreSQL {
	return &CatalogPostgreSQL{db: db}
}

// ===== STORE (applier surface) =====

func (c *CatalogPostgreSQL) Exists(ctx context.Context, entityType models.EntityType, key importer.NaturalKey) (bool, error) {
	model, err := modelFor(entityType)
	if err != nil {
		return false, err
	}
	var count int64
	if err := c.db.WithContext(ctx).Model(model).Where(map[string]any(key)).Count(&count).Error; err != nil {
		return false, fmt.Errorf("existence check failed: %w", err)
	}
	return count > 0, nil
}

func (c *CatalogPostgreSQL) Create(ctx context.Context, entity *importer.ResolvedEntity) error {
	if err := c.db.WithContext(ctx).Create(entity.Model).Error; err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	return nil
}

func (c *CatalogPostgreSQL) Update(ctx context.Context, entity *importer.ResolvedEntity) error {
	model, err := modelFor(entity.Type)
	if err != nil {
		return err
	}
	result := c.db.WithContext(ctx).Model(model).Where(map[string]any(entity.Key)).Updates(entity.Fields)
	if result.Error != nil {
		return fmt.Errorf("update failed: %w", result.Error)
	}
	return nil
}

// ===== LOOKUPS (resolver surface) =====

func (c *CatalogPostgreSQL) ProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := c.db.WithContext(ctx).First(&product, "sku = ?", sku).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *CatalogPostgreSQL) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := c.db.WithContext(ctx).First(&category, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *CatalogPostgreSQL) CustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := c.db.WithContext(ctx).First(&customer, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *CatalogPostgreSQL) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := c.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ===== READS (export surface) =====

func (c *CatalogPostgreSQL) List(ctx context.Context, dest any, limit, offset int) error {
	query := c.db.WithContext(ctx)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Offset(offset).Find(dest).Error; err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	return nil
}

// ===== AGGREGATE REPOSITORY =====

type Repository struct {
	db         *gorm.DB
	importJobs repositories.ImportJobRepository
	catalog    *CatalogPostgreSQL
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:         db,
		importJobs: NewImportJobPostgreSQL(db),
		catalog:    NewCatalogPostgreSQL(db),
	}
}

func (r *Repository) ImportJobs() repositories.ImportJobRepository {
	return r.importJobs
}

func (r *Repository) Catalog() repositories.CatalogRepository {
	return r.catalog
}

func (r *Repository) InTransaction(ctx context.Context, fn func(tx repositories.CatalogTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewCatalogPostgreSQL(tx))
	})
}
