package models

import (
	"time"

	"gorm.io/datatypes"
)

// EntityType identifies which kind of record a file imports.
type EntityType string

const (
	EntityProducts              EntityType = "PRODUCTS"
	EntityProductImages         EntityType = "PRODUCT_IMAGES"
	EntityProductVariants       EntityType = "PRODUCT_VARIANTS"
	EntityCustomers             EntityType = "CUSTOMERS"
	EntityCategories            EntityType = "CATEGORIES"
	EntityInventory             EntityType = "INVENTORY"
	EntityBlogPosts             EntityType = "BLOG_POSTS"
	EntityPages                 EntityType = "PAGES"
	EntityMediaLibrary          EntityType = "MEDIA_LIBRARY"
	EntityReviews               EntityType = "REVIEWS"
	EntityNewsletterSubscribers EntityType = "NEWSLETTER_SUBSCRIBERS"
	EntityDiscountCodes         EntityType = "DISCOUNT_CODES"
)

// EntityTypes lists every importable entity type in a stable order.
var EntityTypes = []EntityType{
	EntityProducts,
	EntityProductImages,
	EntityProductVariants,
	EntityCustomers,
	EntityCategories,
	EntityInventory,
	EntityBlogPosts,
	EntityPages,
	EntityMediaLibrary,
	EntityReviews,
	EntityNewsletterSubscribers,
	EntityDiscountCodes,
}

func (t EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// FileFormat is the declared source format of an uploaded file.
type FileFormat string

const (
	FormatCSV  FileFormat = "CSV"
	FormatJSON FileFormat = "JSON"
	FormatXLSX FileFormat = "XLSX"
)

func (f FileFormat) Valid() bool {
	return f == FormatCSV || f == FormatJSON || f == FormatXLSX
}

// ConflictMode governs how an existing record under the same natural
// key is treated for every row of a job.
type ConflictMode string

const (
	ModeCreate ConflictMode = "CREATE"
	ModeUpdate ConflictMode = "UPDATE"
	ModeUpsert ConflictMode = "UPSERT"
)

func (m ConflictMode) Valid() bool {
	return m == ModeCreate || m == ModeUpdate || m == ModeUpsert
}

// ImportStatus is the job state machine.
//
// PENDING -> VALIDATING -> VALIDATED -> IN_PROGRESS -> COMPLETED | PARTIAL | FAILED
//
// COMPLETED, PARTIAL and FAILED are terminal; a terminal job is never
// processed again (reprocessing means a new job).
type ImportStatus string

const (
	ImportPending    ImportStatus = "PENDING"
	ImportValidating ImportStatus = "VALIDATING"
	ImportValidated  ImportStatus = "VALIDATED"
	ImportInProgress ImportStatus = "IN_PROGRESS"
	ImportCompleted  ImportStatus = "COMPLETED"
	ImportPartial    ImportStatus = "PARTIAL"
	ImportFailed     ImportStatus = "FAILED"
)

// Terminal reports whether no further processing transition is allowed.
func (s ImportStatus) Terminal() bool {
	return s == ImportCompleted || s == ImportPartial || s == ImportFailed
}

// ImportJob represents one upload-to-completion lifecycle.
type ImportJob struct {
	ID         string       `json:"id" gorm:"primaryKey;size:36"` // UUID
	EntityType EntityType   `json:"entity_type" gorm:"not null;size:40;index"`
	Format     FileFormat   `json:"format" gorm:"not null;size:10"`
	Mode       ConflictMode `json:"mode" gorm:"not null;size:10"`

	// File info
	FileName string `json:"file_name" gorm:"not null;size:255"`
	FilePath string `json:"file_path" gorm:"not null;size:500"`
	FileSize int64  `json:"file_size" gorm:"not null"`

	Status ImportStatus `json:"status" gorm:"default:PENDING;size:20;index"`

	// Row accounting. total == success + failed + skipped holds for
	// every terminal job that reached per-row processing.
	TotalRows    int `json:"total_rows"`
	SuccessCount int `json:"success_count"`
	FailedCount  int `json:"failed_count"`
	SkippedCount int `json:"skipped_count"`

	// Results
	Errors     datatypes.JSON `json:"errors,omitempty" gorm:"type:jsonb"`     // []RowError
	Validation datatypes.JSON `json:"validation,omitempty" gorm:"type:jsonb"` // ValidationReport
	FailReason *string        `json:"fail_reason,omitempty" gorm:"size:1000"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RowError is the persisted shape of one row-scoped error. It is
// redisplayed verbatim to operators, so the JSON layout must
// round-trip exactly.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Severity distinguishes blocking validation errors from advisory
// warnings.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// ValidationIssue is one entry of a validation report.
type ValidationIssue struct {
	Row      int      `json:"row"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationReport is attached to a job after the read-only validation
// phase. IsValid is derived: no ERROR-severity issues.
type ValidationReport struct {
	IsValid     bool              `json:"is_valid"`
	TotalRows   int               `json:"total_rows"`
	ValidRows   int               `json:"valid_rows"`
	InvalidRows int               `json:"invalid_rows"`
	Issues      []ValidationIssue `json:"issues,omitempty"`
	Preview     []map[string]any  `json:"preview,omitempty"`
}
