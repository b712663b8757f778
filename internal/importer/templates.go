package importer

import "github.com/storefront-ops/import-service/internal/models"

// TemplateColumn describes one column of a downloadable import
// template.
type TemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// ImportTemplate is the file layout operators fill in for one entity
// type.
type ImportTemplate struct {
	EntityType models.EntityType `json:"entity_type"`
	Columns    []TemplateColumn  `json:"columns"`
}

var templates = map[models.EntityType][]TemplateColumn{
	models.EntityProducts: {
		{Name: "sku", Description: "Unique product SKU", Required: true, Type: "string", Example: "SKU-1001"},
		{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Widget"},
		{Name: "price", Description: "Unit price", Required: true, Type: "number", Example: "9.99"},
		{Name: "stock", Description: "Units in stock", Required: false, Type: "integer", Example: "10"},
		{Name: "description", Description: "Product description", Required: false, Type: "string", Example: "A very good widget"},
		{Name: "compare_at_price", Description: "Strike-through price", Required: false, Type: "number", Example: "12.99"},
		{Name: "status", Description: "DRAFT or PUBLISHED", Required: false, Type: "enum", Example: "PUBLISHED"},
		{Name: "featured", Description: "Feature on the storefront", Required: false, Type: "boolean", Example: "yes"},
		{Name: "category", Description: "Category slug, must exist", Required: false, Type: "string", Example: "tools"},
		{Name: "tags", Description: "Comma-separated tags", Required: false, Type: "string", Example: "sale,summer"},
	},
	models.EntityProductVariants: {
		{Name: "sku", Description: "Unique variant SKU", Required: true, Type: "string", Example: "SKU-1001-L"},
		{Name: "product_sku", Description: "Parent product SKU, must exist", Required: true, Type: "string", Example: "SKU-1001"},
		{Name: "name", Description: "Variant name", Required: true, Type: "string", Example: "Large"},
		{Name: "price", Description: "Variant price override", Required: false, Type: "number", Example: "11.99"},
		{Name: "stock", Description: "Units in stock", Required: false, Type: "integer", Example: "4"},
	},
	models.EntityProductImages: {
		{Name: "product_sku", Description: "Parent product SKU, must exist", Required: true, Type: "string", Example: "SKU-1001"},
		{Name: "url", Description: "External image URL to re-host", Required: true, Type: "string", Example: "https://cdn.example.com/widget.jpg"},
		{Name: "alt", Description: "Alt text", Required: false, Type: "string", Example: "Widget, front view"},
		{Name: "position", Description: "Display order", Required: false, Type: "integer", Example: "1"},
	},
	models.EntityCustomers: {
		{Name: "email", Description: "Unique customer email", Required: true, Type: "email", Example: "bob@example.com"},
		{Name: "name", Description: "Full name", Required: true, Type: "string", Example: "Bob Smith"},
		{Name: "phone", Description: "Phone number", Required: false, Type: "string", Example: "+1 555 0100"},
		{Name: "accepts_marketing", Description: "Opted in to marketing", Required: false, Type: "boolean", Example: "no"},
	},
	models.EntityCategories: {
		{Name: "slug", Description: "Unique category slug", Required: true, Type: "string", Example: "tools"},
		{Name: "name", Description: "Category name", Required: true, Type: "string", Example: "Tools"},
		{Name: "description", Description: "Category description", Required: false, Type: "string", Example: "Hand and power tools"},
		{Name: "parent_slug", Description: "Parent category slug, must exist", Required: false, Type: "string", Example: "hardware"},
	},
	models.EntityInventory: {
		{Name: "sku", Description: "Product SKU, must exist", Required: true, Type: "string", Example: "SKU-1001"},
		{Name: "quantity", Description: "On-hand quantity", Required: true, Type: "integer", Example: "25"},
		{Name: "low_stock_threshold", Description: "Restock alert level", Required: false, Type: "integer", Example: "5"},
	},
	models.EntityBlogPosts: {
		{Name: "slug", Description: "Unique post slug", Required: true, Type: "string", Example: "summer-sale"},
		{Name: "title", Description: "Post title", Required: true, Type: "string", Example: "Summer Sale"},
		{Name: "body", Description: "Post body", Required: false, Type: "string", Example: "Everything must go."},
		{Name: "author_email", Description: "Author account email, must exist", Required: false, Type: "email", Example: "ann@example.com"},
		{Name: "status", Description: "DRAFT or PUBLISHED", Required: false, Type: "enum", Example: "DRAFT"},
		{Name: "published_at", Description: "Publication date", Required: false, Type: "date", Example: "2026-06-01"},
	},
	models.EntityPages: {
		{Name: "slug", Description: "Unique page slug", Required: true, Type: "string", Example: "about-us"},
		{Name: "title", Description: "Page title", Required: true, Type: "string", Example: "About Us"},
		{Name: "body", Description: "Page body", Required: false, Type: "string", Example: "We sell widgets."},
		{Name: "status", Description: "DRAFT or PUBLISHED", Required: false, Type: "enum", Example: "PUBLISHED"},
	},
	models.EntityMediaLibrary: {
		{Name: "url", Description: "External file URL to re-host", Required: true, Type: "string", Example: "https://cdn.example.com/banner.png"},
		{Name: "file_name", Description: "File name override", Required: false, Type: "string", Example: "banner.png"},
		{Name: "alt", Description: "Alt text", Required: false, Type: "string", Example: "Store banner"},
	},
	models.EntityReviews: {
		{Name: "product_sku", Description: "Reviewed product SKU, must exist", Required: true, Type: "string", Example: "SKU-1001"},
		{Name: "customer_email", Description: "Reviewer email", Required: true, Type: "email", Example: "bob@example.com"},
		{Name: "rating", Description: "1 to 5", Required: true, Type: "integer", Example: "5"},
		{Name: "title", Description: "Review title", Required: false, Type: "string", Example: "Great widget"},
		{Name: "body", Description: "Review body", Required: false, Type: "string", Example: "Does what it says."},
	},
	models.EntityNewsletterSubscribers: {
		{Name: "email", Description: "Unique subscriber email", Required: true, Type: "email", Example: "bob@example.com"},
		{Name: "name", Description: "Subscriber name", Required: false, Type: "string", Example: "Bob Smith"},
		{Name: "subscribed", Description: "Currently subscribed", Required: false, Type: "boolean", Example: "yes"},
	},
	models.EntityDiscountCodes: {
		{Name: "code", Description: "Unique discount code", Required: true, Type: "string", Example: "SUMMER20"},
		{Name: "type", Description: "PERCENTAGE or FIXED", Required: true, Type: "enum", Example: "PERCENTAGE"},
		{Name: "value", Description: "Discount amount", Required: true, Type: "number", Example: "20"},
		{Name: "min_purchase", Description: "Minimum order value", Required: false, Type: "number", Example: "50"},
		{Name: "usage_limit", Description: "Maximum redemptions", Required: false, Type: "integer", Example: "100"},
		{Name: "starts_at", Description: "Valid from", Required: false, Type: "date", Example: "2026-06-01"},
		{Name: "expires_at", Description: "Valid until", Required: false, Type: "date", Example: "2026-08-31"},
		{Name: "active", Description: "Code is redeemable", Required: false, Type: "boolean", Example: "yes"},
	},
}

// TemplateFor returns the import template for an entity type.
func TemplateFor(entityType models.EntityType) ImportTemplate {
	return ImportTemplate{EntityType: entityType, Columns: templates[entityType]}
}
