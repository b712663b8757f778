package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/storefront-ops/import-service/internal/events"
	"github.com/storefront-ops/import-service/internal/models"
	"github.com/storefront-ops/import-service/internal/repositories"
	"github.com/storefront-ops/import-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// exportRepo serves canned entity lists to the snapshot path.
type exportRepo struct {
	products []models.Product
	variants []models.ProductVariant
}

func (r exportRepo) ImportJobs() repositories.ImportJobRepository { return nil }

func (r exportRepo) Catalog() repositories.CatalogRepository { return exportCatalog(r) }

func (r exportRepo) InTransaction(ctx context.Context, fn func(tx repositories.CatalogTx) error) error {
	return nil
}

type exportCatalog struct {
	products []models.Product
	variants []models.ProductVariant
}

func (c exportCatalog) List(ctx context.Context, dest any, limit, offset int) error {
	switch out := dest.(type) {
	case *[]models.Product:
		*out = c.products
	case *[]models.ProductVariant:
		*out = c.variants
	}
	return nil
}

func newExportFixture(repo exportRepo) (ExportService, *events.MockActivityPublisher) {
	slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	publisher := events.NewMockActivityPublisher(slogger)
	service := NewExportService(repo, publisher, utils.NewSlogLogger(slogger))
	return service, publisher
}

func sampleProducts() []models.Product {
	description := "A very good widget"
	return []models.Product{
		{
			SKU:         "SKU-1",
			Name:        "Widget",
			Description: &description,
			Price:       9.99,
			Stock:       5,
			Status:      models.StatusPublished,
			Featured:    true,
			Tags:        datatypes.JSON(`["new","sale"]`),
		},
		{SKU: "SKU-2", Name: "Gadget", Price: 19.5, Status: models.StatusDraft},
	}
}

func TestExport_CSV(t *testing.T) {
	service, publisher := newExportFixture(exportRepo{products: sampleProducts()})

	data, fileName, err := service.Export(context.Background(), models.EntityProducts, models.FormatCSV, 0, 0, "tester@example.com")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(fileName, "products_"))
	assert.True(t, strings.HasSuffix(fileName, ".csv"))

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"sku", "name", "description", "price", "compare_at_price", "stock", "status", "featured", "tags"}, records[0])
	assert.Equal(t, []string{"SKU-1", "Widget", "A very good widget", "9.99", "", "5", "PUBLISHED", "true", "new,sale"}, records[1])
	assert.Equal(t, "SKU-2", records[2][0])
	assert.Empty(t, records[2][2]) // nil description exports blank

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.ActionExportDownloaded, published[0].Action)
	assert.Equal(t, "tester@example.com", published[0].Actor)
}

func TestExport_JSON(t *testing.T) {
	service, _ := newExportFixture(exportRepo{products: sampleProducts()})

	data, fileName, err := service.Export(context.Background(), models.EntityProducts, models.FormatJSON, 0, 0, "tester@example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(fileName, ".json"))

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "SKU-1", rows[0]["sku"])
	assert.Equal(t, "9.99", rows[0]["price"])
	assert.Equal(t, "DRAFT", rows[1]["status"])
}

func TestExport_VariantsCarryParentSKU(t *testing.T) {
	price := 11.99
	service, _ := newExportFixture(exportRepo{
		products: []models.Product{{ID: "p1", SKU: "SKU-1", Name: "Widget", Price: 9.99}},
		variants: []models.ProductVariant{{ProductID: "p1", SKU: "SKU-1-L", Name: "Large", Price: &price, Stock: 4}},
	})

	data, _, err := service.Export(context.Background(), models.EntityProductVariants, models.FormatCSV, 0, 0, "tester@example.com")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	// The parent key is denormalized back to its SKU so the file can be
	// re-imported as-is.
	assert.Equal(t, []string{"sku", "product_sku", "name", "price", "stock"}, records[0])
	assert.Equal(t, []string{"SKU-1-L", "SKU-1", "Large", "11.99", "4"}, records[1])
}

func TestExport_Rejections(t *testing.T) {
	service, publisher := newExportFixture(exportRepo{})
	ctx := context.Background()

	_, _, err := service.Export(ctx, models.EntityType("ORDERS"), models.FormatCSV, 0, 0, "tester@example.com")
	assert.ErrorIs(t, err, ErrUnsupportedEntity)

	_, _, err = service.Export(ctx, models.EntityProducts, models.FileFormat("PARQUET"), 0, 0, "tester@example.com")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	// Failed exports publish nothing.
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestTemplate(t *testing.T) {
	service, _ := newExportFixture(exportRepo{})

	t.Run("csv", func(t *testing.T) {
		data, fileName, err := service.Template(models.EntityProducts, models.FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, "products_template.csv", fileName)

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2) // header plus one example row
		assert.Equal(t, "sku", records[0][0])
		assert.Equal(t, "SKU-1001", records[1][0])
	})

	t.Run("json", func(t *testing.T) {
		data, fileName, err := service.Template(models.EntityCustomers, models.FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, "customers_template.json", fileName)

		var rows []map[string]string
		require.NoError(t, json.Unmarshal(data, &rows))
		require.Len(t, rows, 1)
		assert.Contains(t, rows[0], "email")
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, _, err := service.Template(models.EntityType("ORDERS"), models.FormatCSV)
		assert.ErrorIs(t, err, ErrUnsupportedEntity)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := service.Template(models.EntityProducts, models.FileFormat("PARQUET"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}
