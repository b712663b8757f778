package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront-ops/import-service/internal/events"
	"github.com/storefront-ops/import-service/internal/importer"
	"github.com/storefront-ops/import-service/internal/models"
	"github.com/storefront-ops/import-service/internal/repositories"
	"github.com/storefront-ops/import-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

// ExportService produces downloadable snapshots of stored entities.
// Column layout mirrors the import templates, so an export can be fed
// straight back through an UPDATE or UPSERT import.
type ExportService interface {
	Export(ctx context.Context, entityType models.EntityType, format models.FileFormat, limit, offset int, actor string) ([]byte, string, error)
	// Template renders a starter file for an entity type: the expected
	// header row plus one example row.
	Template(entityType models.EntityType, format models.FileFormat) ([]byte, string, error)
}

type exportService struct {
	repo      repositories.Repository
	publisher events.ActivityPublisher
	logger    utils.Logger
}

func NewExportService(repo repositories.Repository, publisher events.ActivityPublisher, logger utils.Logger) ExportService {
	return &exportService{repo: repo, publisher: publisher, logger: logger}
}

const defaultExportLimit = 10000

func (s *exportService) Export(ctx context.Context, entityType models.EntityType, format models.FileFormat, limit, offset int, actor string) ([]byte, string, error) {
	if !entityType.Valid() {
		return nil, "", ErrUnsupportedEntity
	}
	if limit <= 0 {
		limit = defaultExportLimit
	}

	headers, rows, err := s.snapshot(ctx, entityType, limit, offset)
	if err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("%s_%s", strings.ToLower(string(entityType)), time.Now().Format("2006-01-02"))

	var data []byte
	switch format {
	case models.FormatCSV:
		data, err = writeCSV(headers, rows)
		name += ".csv"
	case models.FormatXLSX:
		data, err = writeXLSX(string(entityType), headers, rows)
		name += ".xlsx"
	case models.FormatJSON:
		data, err = writeJSON(headers, rows)
		name += ".json"
	default:
		return nil, "", ErrUnsupportedFormat
	}
	if err != nil {
		return nil, "", err
	}

	event := &events.ActivityEvent{
		ID:           uuid.NewString(),
		Actor:        actor,
		Action:       events.ActionExportDownloaded,
		ResourceType: "export",
		ResourceID:   string(entityType),
		Summary:      fmt.Sprintf("Exported %d %s rows as %s", len(rows), entityType, format),
		Timestamp:    time.Now(),
		Source:       "import-service",
	}
	if err := s.publisher.PublishActivity(ctx, event); err != nil {
		s.logger.Warn("failed to record export activity", "entity_type", entityType, "error", err)
	}

	return data, name, nil
}

func (s *exportService) Template(entityType models.EntityType, format models.FileFormat) ([]byte, string, error) {
	if !entityType.Valid() {
		return nil, "", ErrUnsupportedEntity
	}

	template := importer.TemplateFor(entityType)
	headers := make([]string, 0, len(template.Columns))
	example := make([]string, 0, len(template.Columns))
	for _, column := range template.Columns {
		headers = append(headers, column.Name)
		example = append(example, column.Example)
	}
	rows := [][]string{example}

	name := strings.ToLower(string(entityType)) + "_template"
	switch format {
	case models.FormatCSV:
		data, err := writeCSV(headers, rows)
		return data, name + ".csv", err
	case models.FormatXLSX:
		data, err := writeXLSX(string(entityType), headers, rows)
		return data, name + ".xlsx", err
	case models.FormatJSON:
		data, err := writeJSON(headers, rows)
		return data, name + ".json", err
	default:
		return nil, "", ErrUnsupportedFormat
	}
}

// ===== SNAPSHOTS =====

// snapshot fetches one page of an entity table and flattens it into
// template-shaped string rows.
func (s *exportService) snapshot(ctx context.Context, entityType models.EntityType, limit, offset int) ([]string, [][]string, error) {
	catalog := s.repo.Catalog()

	switch entityType {
	case models.EntityProducts:
		var records []models.Product
		if err := catalog.List(ctx, &records, limit, offset); err != nil {
			return nil, nil, err
		}
		headers := []string{"sku", "name", "description", "price", "compare_at_price", "stock", "status", "featured", "tags"}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				r.SKU, r.Name, strPtr(r.Description), fmtFloat(r.Price), floatPtr(r.CompareAtPrice),
				strconv.Itoa(r.Stock), string(r.Status), strconv.FormatBool(r.Featured), tagsString(r.Tags),
			})
		}
		return headers, rows, nil

	case models.EntityProductVariants:
		var records []models.ProductVariant
		if err := catalog.List(ctx, &records, limit, offset); err != nil {
			return nil, nil, err
		}
		skus, err := productSKUs(ctx, catalog)
		if err != nil {
			return nil, nil, err
		}
		headers := []string{"sku", "product_sku", "name", "price", "stock"}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.SKU, skus[r.ProductID], r.Name, floatPtr(r.Price), strconv.Itoa(r.Stock)})
		}
		return headers, rows, nil

	case models.EntityProductImages:
		var records []models.ProductImage
		if err := catalog.List(ctx, &records, limit, offset); err != nil {
			return nil, nil, err
		}
		skus, err := productSKUs(ctx, catalog)
		if err != nil {
			return nil, nil, err
		}
		headers := []string{"product_sku", "url", "source_url", "alt", "position"}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{skus[r.ProductID], r.URL, r.SourceURL, strPtr(r.Alt), strconv.Itoa(r.Position)})
		}
		return headers, rows, nil

	case models.EntityCustomers:
		var records []models.Customer
		if err := catalog.List(ctx, &records, limit, offset); err != nil {
			return nil, nil, err
		}
		headers := []string{"email", "name", "phone", "accepts_marketing"}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.Email, r.Name, strPtr(r.Phone), strconv.FormatBool(r.AcceptsMarketing)})
		}
		return headers, rows, nil

	case models.EntityCategories:
		var records []models.Category
		if err := catalog.List(ctx, &records, limit, offset); err != nil {
			return nil, nil, err
		}
		headers := []string{"slug", "name", "description"}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.Slug, r.Name, strPtr(r.Description)})
		}
		return headers, rows, nil

	case models.EntityInventory:
		var records []models.InventoryLevel
		if err := catalog.List(ctx, &records, limit, offset); err != nil {
			return nil, nil, err
		}
		headers := []string{"sku", "quantity", "low_stock_threshold"}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.SKU, strconv.Itoa(r.Quantity), intPtr(r.LowStockThreshold)})
		}
		return headers, rows, nil

	case models.EntityBlogPosts:
		var records []models.BlogPost
		if err := catalog.List(ctx, &records, limit, offset); err != nil {
			return nil, nil, err
		}
		headers := []string{"slug", "title", "body", "status", "published_at"}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.Slug, r.Title, r.Body, string(r.Status), timePtr(r.PublishedAt)})
		}
		return headers, rows, nil

	case models.EntityPages:
		var records []models.Page
		if err := catalog.List(ctx, &records, limit, offset); err != nil {
			return nil, nil, err
		}
		headers := []string{"slug", "title", "body", "status"}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.Slug, r.Title, r.Body, string(r.Status)})
		}
		return headers, rows, nil

	case models.EntityMediaLibrary:
		var records []models.MediaAsset
		if err := catalog.List(ctx, &records, limit, offset); err != nil {
			return nil, nil, err
		}
		headers := []string{"url", "source_url", "file_name", "alt"}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.URL, r.SourceURL, r.FileName, strPtr(r.Alt)})
		}
		return headers, rows, nil

	case models.EntityReviews:
		var records []models.Review
		if err := catalog.List(ctx, &records, limit, offset); err != nil {
			return nil, nil, err
		}
		skus, err := productSKUs(ctx, catalog)
		if err != nil {
			return nil, nil, err
		}
		headers := []string{"product_sku", "customer_email", "rating", "title", "body"}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{skus[r.ProductID], r.CustomerEmail, strconv.Itoa(r.Rating), strPtr(r.Title), r.Body})
		}
		return headers, rows, nil

	case models.EntityNewsletterSubscribers:
		var records []models.NewsletterSubscriber
		if err := catalog.List(ctx, &records, limit, offset); err != nil {
			return nil, nil, err
		}
		headers := []string{"email", "name", "subscribed"}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.Email, strPtr(r.Name), strconv.FormatBool(r.Subscribed)})
		}
		return headers, rows, nil

	case models.EntityDiscountCodes:
		var records []models.DiscountCode
		if err := catalog.List(ctx, &records, limit, offset); err != nil {
			return nil, nil, err
		}
		headers := []string{"code", "type", "value", "min_purchase", "usage_limit", "starts_at", "expires_at", "active"}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				r.Code, string(r.Type), fmtFloat(r.Value), floatPtr(r.MinPurchase),
				intPtr(r.UsageLimit), timePtr(r.StartsAt), timePtr(r.ExpiresAt), strconv.FormatBool(r.Active),
			})
		}
		return headers, rows, nil

	default:
		return nil, nil, ErrUnsupportedEntity
	}
}

// productSKUs maps product IDs back to SKUs so child-entity exports
// can carry the parent key the importer expects.
func productSKUs(ctx context.Context, catalog repositories.CatalogRepository) (map[string]string, error) {
	var products []models.Product
	if err := catalog.List(ctx, &products, defaultExportLimit, 0); err != nil {
		return nil, err
	}
	skus := make(map[string]string, len(products))
	for _, p := range products {
		skus[p.ID] = p.SKU
	}
	return skus, nil
}

// ===== WRITERS =====

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func writeXLSX(sheetName string, headers []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
	}
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeJSON(headers []string, rows [][]string) ([]byte, error) {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				obj[h] = row[i]
			}
		}
		out = append(out, obj)
	}
	return json.MarshalIndent(out, "", "  ")
}

// ===== CELL FORMATTING =====

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func strPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func floatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return fmtFloat(*v)
}

func intPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func timePtr(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(time.RFC3339)
}

func tagsString(tags []byte) string {
	if len(tags) == 0 {
		return ""
	}
	var parts []string
	if err := json.Unmarshal(tags, &parts); err != nil {
		return ""
	}
	return strings.Join(parts, ",")
}
