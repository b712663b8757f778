package models

import (
	"time"

	"gorm.io/datatypes"
)

// PublishStatus is shared by products, blog posts and pages.
type PublishStatus string

const (
	StatusDraft     PublishStatus = "DRAFT"
	StatusPublished PublishStatus = "PUBLISHED"
)

// DiscountType distinguishes percentage from fixed-amount codes.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// Product is keyed by SKU.
type Product struct {
	ID             string         `json:"id" gorm:"primaryKey;size:36"`
	SKU            string         `json:"sku" gorm:"not null;uniqueIndex;size:100"`
	Name           string         `json:"name" gorm:"not null;size:255"`
	Description    *string        `json:"description,omitempty"`
	Price          float64        `json:"price" gorm:"not null"`
	CompareAtPrice *float64       `json:"compare_at_price,omitempty"`
	Stock          int            `json:"stock" gorm:"default:0"`
	Status         PublishStatus  `json:"status" gorm:"size:20;default:DRAFT"`
	Featured       bool           `json:"featured" gorm:"default:false"`
	CategoryID     *string        `json:"category_id,omitempty" gorm:"size:36;index"`
	Tags           datatypes.JSON `json:"tags,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ProductVariant is keyed by its own SKU and references its parent
// product.
type ProductVariant struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ProductID string    `json:"product_id" gorm:"not null;size:36;index"`
	SKU       string    `json:"sku" gorm:"not null;uniqueIndex;size:100"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	Price     *float64  `json:"price,omitempty"`
	Stock     int       `json:"stock" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductImage is keyed by (product, canonical URL). URL is the
// re-hosted location, SourceURL the original upload reference.
type ProductImage struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ProductID string    `json:"product_id" gorm:"not null;size:36;uniqueIndex:idx_product_image_url"`
	URL       string    `json:"url" gorm:"not null;size:500;uniqueIndex:idx_product_image_url"`
	SourceURL string    `json:"source_url" gorm:"size:500"`
	Alt       *string   `json:"alt,omitempty" gorm:"size:255"`
	Position  int       `json:"position" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Customer is keyed by email.
type Customer struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	Email            string    `json:"email" gorm:"not null;uniqueIndex;size:255"`
	Name             string    `json:"name" gorm:"not null;size:255"`
	Phone            *string   `json:"phone,omitempty" gorm:"size:50"`
	AcceptsMarketing bool      `json:"accepts_marketing" gorm:"default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Category is keyed by slug. A row may reference its parent by slug.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Slug        string    `json:"slug" gorm:"not null;uniqueIndex;size:255"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	Description *string   `json:"description,omitempty"`
	ParentID    *string   `json:"parent_id,omitempty" gorm:"size:36;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InventoryLevel is keyed by product SKU.
type InventoryLevel struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	SKU               string    `json:"sku" gorm:"not null;uniqueIndex;size:100"`
	ProductID         string    `json:"product_id" gorm:"not null;size:36;index"`
	Quantity          int       `json:"quantity" gorm:"default:0"`
	LowStockThreshold *int      `json:"low_stock_threshold,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BlogPost is keyed by slug; the author is resolved by email.
type BlogPost struct {
	ID          string        `json:"id" gorm:"primaryKey;size:36"`
	Slug        string        `json:"slug" gorm:"not null;uniqueIndex;size:255"`
	Title       string        `json:"title" gorm:"not null;size:255"`
	Body        string        `json:"body"`
	AuthorID    *string       `json:"author_id,omitempty" gorm:"size:36;index"`
	Status      PublishStatus `json:"status" gorm:"size:20;default:DRAFT"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Page is keyed by slug.
type Page struct {
	ID        string        `json:"id" gorm:"primaryKey;size:36"`
	Slug      string        `json:"slug" gorm:"not null;uniqueIndex;size:255"`
	Title     string        `json:"title" gorm:"not null;size:255"`
	Body      string        `json:"body"`
	Status    PublishStatus `json:"status" gorm:"size:20;default:DRAFT"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// MediaAsset is keyed by its canonical (re-hosted) URL.
type MediaAsset struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	URL       string    `json:"url" gorm:"not null;uniqueIndex;size:500"`
	SourceURL string    `json:"source_url" gorm:"size:500"`
	FileName  string    `json:"file_name" gorm:"size:255"`
	Alt       *string   `json:"alt,omitempty" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Review is keyed by (product, reviewer email).
type Review struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	ProductID     string    `json:"product_id" gorm:"not null;size:36;uniqueIndex:idx_review_product_email"`
	CustomerEmail string    `json:"customer_email" gorm:"not null;size:255;uniqueIndex:idx_review_product_email"`
	Rating        int       `json:"rating" gorm:"not null"`
	Title         *string   `json:"title,omitempty" gorm:"size:255"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewsletterSubscriber is keyed by email.
type NewsletterSubscriber struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Email      string    `json:"email" gorm:"not null;uniqueIndex;size:255"`
	Name       *string   `json:"name,omitempty" gorm:"size:255"`
	Subscribed bool      `json:"subscribed" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DiscountCode is keyed by code.
type DiscountCode struct {
	ID          string       `json:"id" gorm:"primaryKey;size:36"`
	Code        string       `json:"code" gorm:"not null;uniqueIndex;size:100"`
	Type        DiscountType `json:"type" gorm:"not null;size:20"`
	Value       float64      `json:"value" gorm:"not null"`
	MinPurchase *float64     `json:"min_purchase,omitempty"`
	UsageLimit  *int         `json:"usage_limit,omitempty"`
	StartsAt    *time.Time   `json:"starts_at,omitempty"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
	Active      bool         `json:"active" gorm:"default:true"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// User is a platform account referenced by imports (blog post authors).
// Accounts are provisioned outside this service; imports only look
// them up by email.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex;size:255"`
	Name      string    `json:"name" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
}
