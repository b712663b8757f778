package importer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/storefront-ops/import-service/internal/models"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// truthy/falsy token sets accepted for boolean fields, matched
// case-insensitively.
var (
	truthyTokens = map[string]bool{"yes": true, "y": true, "true": true, "1": true}
	falsyTokens  = map[string]bool{"no": true, "n": true, "false": true, "0": true}
)

// ruleSet declares the per-entity-type validation rules. All rules for
// a row are evaluated independently; one row can contribute several
// issues and never blocks validation of another row.
type ruleSet struct {
	required    []string
	numeric     []string
	integer     []string
	email       []string
	boolean     []string
	enums       map[string][]string
	ranges      map[string][2]float64
	recommended []string // blank value yields a WARNING, not an ERROR
}

var publishStatuses = []string{string(models.StatusDraft), string(models.StatusPublished)}

var ruleSets = map[models.EntityType]ruleSet{
	models.EntityProducts: {
		required:    []string{"sku", "name", "price"},
		numeric:     []string{"price", "compare_at_price"},
		integer:     []string{"stock"},
		boolean:     []string{"featured"},
		enums:       map[string][]string{"status": publishStatuses},
		recommended: []string{"description"},
	},
	models.EntityProductVariants: {
		required: []string{"sku", "product_sku", "name"},
		numeric:  []string{"price"},
		integer:  []string{"stock"},
	},
	models.EntityProductImages: {
		required: []string{"product_sku", "url"},
		integer:  []string{"position"},
	},
	models.EntityCustomers: {
		required: []string{"email", "name"},
		email:    []string{"email"},
		boolean:  []string{"accepts_marketing"},
	},
	models.EntityCategories: {
		required: []string{"slug", "name"},
	},
	models.EntityInventory: {
		required: []string{"sku", "quantity"},
		integer:  []string{"quantity", "low_stock_threshold"},
	},
	models.EntityBlogPosts: {
		required: []string{"slug", "title"},
		email:    []string{"author_email"},
		enums:    map[string][]string{"status": publishStatuses},
	},
	models.EntityPages: {
		required: []string{"slug", "title"},
		enums:    map[string][]string{"status": publishStatuses},
	},
	models.EntityMediaLibrary: {
		required: []string{"url"},
	},
	models.EntityReviews: {
		required: []string{"product_sku", "customer_email", "rating"},
		email:    []string{"customer_email"},
		integer:  []string{"rating"},
		ranges:   map[string][2]float64{"rating": {1, 5}},
	},
	models.EntityNewsletterSubscribers: {
		required: []string{"email"},
		email:    []string{"email"},
		boolean:  []string{"subscribed"},
	},
	models.EntityDiscountCodes: {
		required: []string{"code", "type", "value"},
		numeric:  []string{"value", "min_purchase"},
		integer:  []string{"usage_limit"},
		boolean:  []string{"active"},
		enums: map[string][]string{
			"type": {string(models.DiscountPercentage), string(models.DiscountFixed)},
		},
	},
}

// Validate checks every row against the entity type's rule set and
// aggregates a report. It is pure and repeatable: no store access, no
// counters consumed; calling it twice on the same rows yields the same
// report.
func Validate(entityType models.EntityType, rows []Row) models.ValidationReport {
	rules := ruleSets[entityType]

	report := models.ValidationReport{TotalRows: len(rows)}
	for _, row := range rows {
		issues := validateRow(rules, row)
		hasError := false
		for _, issue := range issues {
			if issue.Severity == models.SeverityError {
				hasError = true
			}
		}
		if hasError {
			report.InvalidRows++
		} else {
			report.ValidRows++
		}
		report.Issues = append(report.Issues, issues...)
	}
	report.IsValid = report.InvalidRows == 0

	const previewRows = 5
	for i, row := range rows {
		if i == previewRows {
			break
		}
		preview := make(map[string]any, len(row.Values)+1)
		for k, v := range row.Values {
			preview[k] = v
		}
		preview["row"] = row.Number
		report.Preview = append(report.Preview, preview)
	}
	return report
}

func validateRow(rules ruleSet, row Row) []models.ValidationIssue {
	var issues []models.ValidationIssue

	addError := func(field, message string) {
		issues = append(issues, models.ValidationIssue{
			Row: row.Number, Field: field, Message: message, Severity: models.SeverityError,
		})
	}
	addWarning := func(field, message string) {
		issues = append(issues, models.ValidationIssue{
			Row: row.Number, Field: field, Message: message, Severity: models.SeverityWarning,
		})
	}

	for _, field := range rules.required {
		if !row.Has(field) {
			addError(field, "is required")
		}
	}
	for _, field := range rules.numeric {
		if v := row.Get(field); v != "" && !isNumeric(v) {
			addError(field, "must be a valid number")
		}
	}
	for _, field := range rules.integer {
		if v := row.Get(field); v != "" {
			if _, err := strconv.Atoi(v); err != nil {
				addError(field, "must be a whole number")
			}
		}
	}
	for _, field := range rules.email {
		if v := row.Get(field); v != "" && !emailPattern.MatchString(v) {
			addError(field, "must be a valid email address")
		}
	}
	for _, field := range rules.boolean {
		if v := strings.ToLower(row.Get(field)); v != "" && !truthyTokens[v] && !falsyTokens[v] {
			addError(field, "must be yes/no or true/false")
		}
	}
	for field, allowed := range rules.enums {
		v := row.Get(field)
		if v == "" {
			continue
		}
		if !containsFold(allowed, v) {
			addError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
		}
	}
	for field, bounds := range rules.ranges {
		v := row.Get(field)
		if v == "" || !isNumeric(v) {
			continue // absence and parseability are covered above
		}
		n, _ := strconv.ParseFloat(v, 64)
		if n < bounds[0] || n > bounds[1] {
			addError(field, fmt.Sprintf("must be between %g and %g", bounds[0], bounds[1]))
		}
	}
	for _, field := range rules.recommended {
		if !row.Has(field) {
			addWarning(field, "is empty")
		}
	}
	return issues
}

func isNumeric(v string) bool {
	n, err := strconv.ParseFloat(v, 64)
	return err == nil && !math.IsNaN(n) && !math.IsInf(n, 0)
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}
