package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront-ops/import-service/internal/models"
	"gorm.io/datatypes"
)

// ResolutionError is a row-scoped, fatal-to-that-row failure: a
// required field that cannot be coerced, or a cross-reference that
// cannot be found. The orchestrator records it as a Failed outcome and
// moves on to the next row.
type ResolutionError struct {
	Field   string
	Message string
}

func (e *ResolutionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NaturalKey maps store columns to the business-meaningful identifier
// values used for existence checks (SKU, email, slug, code, or a
// composite).
type NaturalKey map[string]any

// ResolvedEntity is the typed, cross-referenced form of one row, ready
// to persist. It lives for exactly one row's processing step.
type ResolvedEntity struct {
	Type   models.EntityType
	Key    NaturalKey
	Model  any            // populated record for an insert
	Fields map[string]any // mutable columns for an update; never the key
	Label  string         // identifier shown in messages and summaries
}

// Lookups are the natural-key cross-reference reads a resolver needs,
// served by the same transaction handle the applier mutates through.
// A missing record is (nil, nil), not an error.
type Lookups interface {
	ProductBySKU(ctx context.Context, sku string) (*models.Product, error)
	CategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	CustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Rehoster fetches an external media source and stores it under a
// canonical URL. Image and media rows resolve through it; the
// canonical URL becomes part of the entity's natural key.
type Rehoster interface {
	Rehost(ctx context.Context, sourceURL string) (string, error)
}

// Resolver maps decoded rows to resolved entities, one entity type at
// a time.
type Resolver struct {
	media Rehoster
}

func NewResolver(media Rehoster) *Resolver {
	return &Resolver{media: media}
}

// Resolve builds the resolved entity for one row. Every failure path
// returns a *ResolutionError; store connectivity problems pass through
// unwrapped.
func (r *Resolver) Resolve(ctx context.Context, store Lookups, entityType models.EntityType, row Row) (*ResolvedEntity, error) {
	switch entityType {
	case models.EntityProducts:
		return r.resolveProduct(ctx, store, row)
	case models.EntityProductVariants:
		return r.resolveProductVariant(ctx, store, row)
	case models.EntityProductImages:
		return r.resolveProductImage(ctx, store, row)
	case models.EntityCustomers:
		return r.resolveCustomer(row)
	case models.EntityCategories:
		return r.resolveCategory(ctx, store, row)
	case models.EntityInventory:
		return r.resolveInventory(ctx, store, row)
	case models.EntityBlogPosts:
		return r.resolveBlogPost(ctx, store, row)
	case models.EntityPages:
		return r.resolvePage(row)
	case models.EntityMediaLibrary:
		return r.resolveMediaAsset(ctx, row)
	case models.EntityReviews:
		return r.resolveReview(ctx, store, row)
	case models.EntityNewsletterSubscribers:
		return r.resolveSubscriber(row)
	case models.EntityDiscountCodes:
		return r.resolveDiscountCode(row)
	default:
		return nil, &ResolutionError{Message: fmt.Sprintf("unknown entity type %q", entityType)}
	}
}

// ===== PER-TYPE RESOLUTION =====

func (r *Resolver) resolveProduct(ctx context.Context, store Lookups, row Row) (*ResolvedEntity, error) {
	sku, err := reqString(row, "sku")
	if err != nil {
		return nil, err
	}
	name, err := reqString(row, "name")
	if err != nil {
		return nil, err
	}
	price, err := reqFloat(row, "price")
	if err != nil {
		return nil, err
	}
	compareAt, err := optFloat(row, "compare_at_price")
	if err != nil {
		return nil, err
	}
	stock, err := optIntDefault(row, "stock", 0)
	if err != nil {
		return nil, err
	}
	status, err := publishStatus(row, "status")
	if err != nil {
		return nil, err
	}

	var categoryID *string
	if slug := row.Get("category"); slug != "" {
		category, lookupErr := store.CategoryBySlug(ctx, slug)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if category == nil {
			return nil, &ResolutionError{Field: "category", Message: fmt.Sprintf("Category with slug %s not found", slug)}
		}
		categoryID = &category.ID
	}

	tags := tagsJSON(row.Get("tags"))

	product := &models.Product{
		ID:             uuid.NewString(),
		SKU:            sku,
		Name:           name,
		Description:    optString(row, "description"),
		Price:          price,
		CompareAtPrice: compareAt,
		Stock:          stock,
		Status:         status,
		Featured:       boolField(row, "featured"),
		CategoryID:     categoryID,
		Tags:           tags,
	}

	return &ResolvedEntity{
		Type:  models.EntityProducts,
		Key:   NaturalKey{"sku": sku},
		Model: product,
		Fields: map[string]any{
			"name":             name,
			"description":      product.Description,
			"price":            price,
			"compare_at_price": compareAt,
			"stock":            stock,
			"status":           status,
			"featured":         product.Featured,
			"category_id":      categoryID,
			"tags":             tags,
		},
		Label: sku,
	}, nil
}

func (r *Resolver) resolveProductVariant(ctx context.Context, store Lookups, row Row) (*ResolvedEntity, error) {
	sku, err := reqString(row, "sku")
	if err != nil {
		return nil, err
	}
	productSKU, err := reqString(row, "product_sku")
	if err != nil {
		return nil, err
	}
	name, err := reqString(row, "name")
	if err != nil {
		return nil, err
	}
	price, err := optFloat(row, "price")
	if err != nil {
		return nil, err
	}
	stock, err := optIntDefault(row, "stock", 0)
	if err != nil {
		return nil, err
	}

	product, lookupErr := store.ProductBySKU(ctx, productSKU)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if product == nil {
		return nil, &ResolutionError{Field: "product_sku", Message: fmt.Sprintf("Product with SKU %s not found", productSKU)}
	}

	variant := &models.ProductVariant{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		SKU:       sku,
		Name:      name,
		Price:     price,
		Stock:     stock,
	}

	return &ResolvedEntity{
		Type:  models.EntityProductVariants,
		Key:   NaturalKey{"sku": sku},
		Model: variant,
		Fields: map[string]any{
			"product_id": product.ID,
			"name":       name,
			"price":      price,
			"stock":      stock,
		},
		Label: sku,
	}, nil
}

func (r *Resolver) resolveProductImage(ctx context.Context, store Lookups, row Row) (*ResolvedEntity, error) {
	productSKU, err := reqString(row, "product_sku")
	if err != nil {
		return nil, err
	}
	sourceURL, err := reqString(row, "url")
	if err != nil {
		return nil, err
	}
	position, err := optIntDefault(row, "position", 0)
	if err != nil {
		return nil, err
	}

	product, lookupErr := store.ProductBySKU(ctx, productSKU)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if product == nil {
		return nil, &ResolutionError{Field: "product_sku", Message: fmt.Sprintf("Product with SKU %s not found", productSKU)}
	}

	canonicalURL, rehostErr := r.media.Rehost(ctx, sourceURL)
	if rehostErr != nil {
		return nil, &ResolutionError{Field: "url", Message: fmt.Sprintf("failed to re-host image %s: %v", sourceURL, rehostErr)}
	}

	image := &models.ProductImage{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		URL:       canonicalURL,
		SourceURL: sourceURL,
		Alt:       optString(row, "alt"),
		Position:  position,
	}

	return &ResolvedEntity{
		Type:  models.EntityProductImages,
		Key:   NaturalKey{"product_id": product.ID, "url": canonicalURL},
		Model: image,
		Fields: map[string]any{
			"source_url": sourceURL,
			"alt":        image.Alt,
			"position":   position,
		},
		Label: fmt.Sprintf("%s %s", productSKU, sourceURL),
	}, nil
}

func (r *Resolver) resolveCustomer(row Row) (*ResolvedEntity, error) {
	email, err := reqEmail(row, "email")
	if err != nil {
		return nil, err
	}
	name, err := reqString(row, "name")
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{
		ID:               uuid.NewString(),
		Email:            email,
		Name:             name,
		Phone:            optString(row, "phone"),
		AcceptsMarketing: boolField(row, "accepts_marketing"),
	}

	return &ResolvedEntity{
		Type:  models.EntityCustomers,
		Key:   NaturalKey{"email": email},
		Model: customer,
		Fields: map[string]any{
			"name":              name,
			"phone":             customer.Phone,
			"accepts_marketing": customer.AcceptsMarketing,
		},
		Label: email,
	}, nil
}

func (r *Resolver) resolveCategory(ctx context.Context, store Lookups, row Row) (*ResolvedEntity, error) {
	slug, err := reqString(row, "slug")
	if err != nil {
		return nil, err
	}
	name, err := reqString(row, "name")
	if err != nil {
		return nil, err
	}

	var parentID *string
	if parentSlug := row.Get("parent_slug"); parentSlug != "" {
		parent, lookupErr := store.CategoryBySlug(ctx, parentSlug)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if parent == nil {
			return nil, &ResolutionError{Field: "parent_slug", Message: fmt.Sprintf("Category with slug %s not found", parentSlug)}
		}
		parentID = &parent.ID
	}

	category := &models.Category{
		ID:          uuid.NewString(),
		Slug:        slug,
		Name:        name,
		Description: optString(row, "description"),
		ParentID:    parentID,
	}

	return &ResolvedEntity{
		Type:  models.EntityCategories,
		Key:   NaturalKey{"slug": slug},
		Model: category,
		Fields: map[string]any{
			"name":        name,
			"description": category.Description,
			"parent_id":   parentID,
		},
		Label: slug,
	}, nil
}

func (r *Resolver) resolveInventory(ctx context.Context, store Lookups, row Row) (*ResolvedEntity, error) {
	sku, err := reqString(row, "sku")
	if err != nil {
		return nil, err
	}
	quantity, err := reqInt(row, "quantity")
	if err != nil {
		return nil, err
	}
	threshold, err := optInt(row, "low_stock_threshold")
	if err != nil {
		return nil, err
	}

	product, lookupErr := store.ProductBySKU(ctx, sku)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if product == nil {
		return nil, &ResolutionError{Field: "sku", Message: fmt.Sprintf("Product with SKU %s not found", sku)}
	}

	level := &models.InventoryLevel{
		ID:                uuid.NewString(),
		SKU:               sku,
		ProductID:         product.ID,
		Quantity:          quantity,
		LowStockThreshold: threshold,
	}

	return &ResolvedEntity{
		Type:  models.EntityInventory,
		Key:   NaturalKey{"sku": sku},
		Model: level,
		Fields: map[string]any{
			"product_id":          product.ID,
			"quantity":            quantity,
			"low_stock_threshold": threshold,
		},
		Label: sku,
	}, nil
}

func (r *Resolver) resolveBlogPost(ctx context.Context, store Lookups, row Row) (*ResolvedEntity, error) {
	slug, err := reqString(row, "slug")
	if err != nil {
		return nil, err
	}
	title, err := reqString(row, "title")
	if err != nil {
		return nil, err
	}
	status, err := publishStatus(row, "status")
	if err != nil {
		return nil, err
	}
	publishedAt, err := optDate(row, "published_at")
	if err != nil {
		return nil, err
	}

	var authorID *string
	if email := row.Get("author_email"); email != "" {
		author, lookupErr := store.UserByEmail(ctx, email)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if author == nil {
			return nil, &ResolutionError{Field: "author_email", Message: fmt.Sprintf("User with email %s not found", email)}
		}
		authorID = &author.ID
	}

	post := &models.BlogPost{
		ID:          uuid.NewString(),
		Slug:        slug,
		Title:       title,
		Body:        row.Get("body"),
		AuthorID:    authorID,
		Status:      status,
		PublishedAt: publishedAt,
	}

	return &ResolvedEntity{
		Type:  models.EntityBlogPosts,
		Key:   NaturalKey{"slug": slug},
		Model: post,
		Fields: map[string]any{
			"title":        title,
			"body":         post.Body,
			"author_id":    authorID,
			"status":       status,
			"published_at": publishedAt,
		},
		Label: slug,
	}, nil
}

func (r *Resolver) resolvePage(row Row) (*ResolvedEntity, error) {
	slug, err := reqString(row, "slug")
	if err != nil {
		return nil, err
	}
	title, err := reqString(row, "title")
	if err != nil {
		return nil, err
	}
	status, err := publishStatus(row, "status")
	if err != nil {
		return nil, err
	}

	page := &models.Page{
		ID:     uuid.NewString(),
		Slug:   slug,
		Title:  title,
		Body:   row.Get("body"),
		Status: status,
	}

	return &ResolvedEntity{
		Type:  models.EntityPages,
		Key:   NaturalKey{"slug": slug},
		Model: page,
		Fields: map[string]any{
			"title":  title,
			"body":   page.Body,
			"status": status,
		},
		Label: slug,
	}, nil
}

func (r *Resolver) resolveMediaAsset(ctx context.Context, row Row) (*ResolvedEntity, error) {
	sourceURL, err := reqString(row, "url")
	if err != nil {
		return nil, err
	}

	canonicalURL, rehostErr := r.media.Rehost(ctx, sourceURL)
	if rehostErr != nil {
		return nil, &ResolutionError{Field: "url", Message: fmt.Sprintf("failed to re-host media %s: %v", sourceURL, rehostErr)}
	}

	fileName := row.Get("file_name")
	if fileName == "" {
		fileName = baseName(sourceURL)
	}

	asset := &models.MediaAsset{
		ID:        uuid.NewString(),
		URL:       canonicalURL,
		SourceURL: sourceURL,
		FileName:  fileName,
		Alt:       optString(row, "alt"),
	}

	return &ResolvedEntity{
		Type:  models.EntityMediaLibrary,
		Key:   NaturalKey{"url": canonicalURL},
		Model: asset,
		Fields: map[string]any{
			"source_url": sourceURL,
			"file_name":  fileName,
			"alt":        asset.Alt,
		},
		Label: sourceURL,
	}, nil
}

func (r *Resolver) resolveReview(ctx context.Context, store Lookups, row Row) (*ResolvedEntity, error) {
	productSKU, err := reqString(row, "product_sku")
	if err != nil {
		return nil, err
	}
	email, err := reqEmail(row, "customer_email")
	if err != nil {
		return nil, err
	}
	rating, err := reqInt(row, "rating")
	if err != nil {
		return nil, err
	}
	if rating < 1 || rating > 5 {
		return nil, &ResolutionError{Field: "rating", Message: "must be between 1 and 5"}
	}

	product, lookupErr := store.ProductBySKU(ctx, productSKU)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if product == nil {
		return nil, &ResolutionError{Field: "product_sku", Message: fmt.Sprintf("Product with SKU %s not found", productSKU)}
	}

	review := &models.Review{
		ID:            uuid.NewString(),
		ProductID:     product.ID,
		CustomerEmail: email,
		Rating:        rating,
		Title:         optString(row, "title"),
		Body:          row.Get("body"),
	}

	return &ResolvedEntity{
		Type:  models.EntityReviews,
		Key:   NaturalKey{"product_id": product.ID, "customer_email": email},
		Model: review,
		Fields: map[string]any{
			"rating": rating,
			"title":  review.Title,
			"body":   review.Body,
		},
		Label: fmt.Sprintf("%s %s", productSKU, email),
	}, nil
}

func (r *Resolver) resolveSubscriber(row Row) (*ResolvedEntity, error) {
	email, err := reqEmail(row, "email")
	if err != nil {
		return nil, err
	}

	subscribed := true
	if row.Has("subscribed") {
		subscribed = boolField(row, "subscribed")
	}

	subscriber := &models.NewsletterSubscriber{
		ID:         uuid.NewString(),
		Email:      email,
		Name:       optString(row, "name"),
		Subscribed: subscribed,
	}

	return &ResolvedEntity{
		Type:  models.EntityNewsletterSubscribers,
		Key:   NaturalKey{"email": email},
		Model: subscriber,
		Fields: map[string]any{
			"name":       subscriber.Name,
			"subscribed": subscribed,
		},
		Label: email,
	}, nil
}

func (r *Resolver) resolveDiscountCode(row Row) (*ResolvedEntity, error) {
	code, err := reqString(row, "code")
	if err != nil {
		return nil, err
	}
	typeStr, err := reqString(row, "type")
	if err != nil {
		return nil, err
	}
	var discountType models.DiscountType
	switch strings.ToUpper(typeStr) {
	case string(models.DiscountPercentage):
		discountType = models.DiscountPercentage
	case string(models.DiscountFixed):
		discountType = models.DiscountFixed
	default:
		return nil, &ResolutionError{Field: "type", Message: "must be PERCENTAGE or FIXED"}
	}
	value, err := reqFloat(row, "value")
	if err != nil {
		return nil, err
	}
	minPurchase, err := optFloat(row, "min_purchase")
	if err != nil {
		return nil, err
	}
	usageLimit, err := optInt(row, "usage_limit")
	if err != nil {
		return nil, err
	}
	startsAt, err := optDate(row, "starts_at")
	if err != nil {
		return nil, err
	}
	expiresAt, err := optDate(row, "expires_at")
	if err != nil {
		return nil, err
	}

	active := true
	if row.Has("active") {
		active = boolField(row, "active")
	}

	discount := &models.DiscountCode{
		ID:          uuid.NewString(),
		Code:        code,
		Type:        discountType,
		Value:       value,
		MinPurchase: minPurchase,
		UsageLimit:  usageLimit,
		StartsAt:    startsAt,
		ExpiresAt:   expiresAt,
		Active:      active,
	}

	return &ResolvedEntity{
		Type:  models.EntityDiscountCodes,
		Key:   NaturalKey{"code": code},
		Model: discount,
		Fields: map[string]any{
			"type":         discountType,
			"value":        value,
			"min_purchase": minPurchase,
			"usage_limit":  usageLimit,
			"starts_at":    startsAt,
			"expires_at":   expiresAt,
			"active":       active,
		},
		Label: code,
	}, nil
}

// ===== COERCION HELPERS =====

func reqString(row Row, field string) (string, *ResolutionError) {
	v := row.Get(field)
	if v == "" {
		return "", &ResolutionError{Field: field, Message: "is required"}
	}
	return v, nil
}

func optString(row Row, field string) *string {
	v := row.Get(field)
	if v == "" {
		return nil
	}
	return &v
}

func reqEmail(row Row, field string) (string, *ResolutionError) {
	v, err := reqString(row, field)
	if err != nil {
		return "", err
	}
	v = strings.ToLower(v)
	if !emailPattern.MatchString(v) {
		return "", &ResolutionError{Field: field, Message: "must be a valid email address"}
	}
	return v, nil
}

func reqFloat(row Row, field string) (float64, *ResolutionError) {
	v, err := reqString(row, field)
	if err != nil {
		return 0, err
	}
	n, parseErr := strconv.ParseFloat(v, 64)
	if parseErr != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, &ResolutionError{Field: field, Message: fmt.Sprintf("%q is not a valid number", v)}
	}
	return n, nil
}

func optFloat(row Row, field string) (*float64, *ResolutionError) {
	if !row.Has(field) {
		return nil, nil
	}
	n, err := reqFloat(row, field)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func reqInt(row Row, field string) (int, *ResolutionError) {
	v, err := reqString(row, field)
	if err != nil {
		return 0, err
	}
	n, parseErr := strconv.Atoi(v)
	if parseErr != nil {
		return 0, &ResolutionError{Field: field, Message: fmt.Sprintf("%q is not a whole number", v)}
	}
	return n, nil
}

func optInt(row Row, field string) (*int, *ResolutionError) {
	if !row.Has(field) {
		return nil, nil
	}
	n, err := reqInt(row, field)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func optIntDefault(row Row, field string, def int) (int, *ResolutionError) {
	if !row.Has(field) {
		return def, nil
	}
	return reqInt(row, field)
}

// boolField coerces via the fixed truthy token set; anything else,
// including absence, is false.
func boolField(row Row, field string) bool {
	return truthyTokens[strings.ToLower(row.Get(field))]
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func optDate(row Row, field string) (*time.Time, *ResolutionError) {
	v := row.Get(field)
	if v == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, &ResolutionError{Field: field, Message: fmt.Sprintf("%q is not a valid date", v)}
}

func publishStatus(row Row, field string) (models.PublishStatus, *ResolutionError) {
	v := row.Get(field)
	if v == "" {
		return models.StatusDraft, nil
	}
	switch strings.ToUpper(v) {
	case string(models.StatusDraft):
		return models.StatusDraft, nil
	case string(models.StatusPublished):
		return models.StatusPublished, nil
	default:
		return "", &ResolutionError{Field: field, Message: "must be DRAFT or PUBLISHED"}
	}
}

func tagsJSON(raw string) datatypes.JSON {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	encoded, _ := json.Marshal(tags)
	return datatypes.JSON(encoded)
}

func baseName(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
