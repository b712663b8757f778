package importer

import (
	"testing"

	"github.com/storefront-ops/import-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(num int, values map[string]any) Row {
	return Row{Number: num, Values: values}
}

func TestValidate_Customers(t *testing.T) {
	rows := []Row{
		row(2, map[string]any{"email": "good@example.com", "name": "Alice"}),
		row(3, map[string]any{"email": "not-an-email", "name": "Bob"}),
	}

	report := Validate(models.EntityCustomers, rows)

	assert.False(t, report.IsValid)
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 1, report.ValidRows)
	assert.Equal(t, 1, report.InvalidRows)

	// The malformed email yields exactly one error, scoped to its row.
	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, 3, issue.Row)
	assert.Equal(t, "email", issue.Field)
	assert.Equal(t, models.SeverityError, issue.Severity)
}

func TestValidate_Products(t *testing.T) {
	t.Run("missing required fields", func(t *testing.T) {
		rows := []Row{
			row(2, map[string]any{"sku": "SKU-1"}),
		}

		report := Validate(models.EntityProducts, rows)

		assert.Equal(t, 1, report.InvalidRows)
		fields := make(map[string]models.Severity)
		for _, issue := range report.Issues {
			fields[issue.Field] = issue.Severity
		}
		assert.Equal(t, models.SeverityError, fields["name"])
		assert.Equal(t, models.SeverityError, fields["price"])
		// Blank description is only advisory.
		assert.Equal(t, models.SeverityWarning, fields["description"])
	})

	t.Run("warnings do not invalidate a row", func(t *testing.T) {
		rows := []Row{
			row(2, map[string]any{"sku": "SKU-1", "name": "Widget", "price": "9.99"}),
		}

		report := Validate(models.EntityProducts, rows)

		assert.True(t, report.IsValid)
		assert.Equal(t, 1, report.ValidRows)
		require.Len(t, report.Issues, 1)
		assert.Equal(t, models.SeverityWarning, report.Issues[0].Severity)
	})

	t.Run("numeric and enum rules", func(t *testing.T) {
		rows := []Row{
			row(2, map[string]any{"sku": "SKU-1", "name": "Widget", "price": "cheap", "status": "LIVE", "featured": "maybe"}),
		}

		report := Validate(models.EntityProducts, rows)

		assert.Equal(t, 1, report.InvalidRows)
		fields := map[string]bool{}
		for _, issue := range report.Issues {
			if issue.Severity == models.SeverityError {
				fields[issue.Field] = true
			}
		}
		assert.True(t, fields["price"])
		assert.True(t, fields["status"])
		assert.True(t, fields["featured"])
	})
}

func TestValidate_Reviews(t *testing.T) {
	rows := []Row{
		row(1, map[string]any{"product_sku": "SKU-1", "customer_email": "a@b.co", "rating": "6"}),
		row(2, map[string]any{"product_sku": "SKU-1", "customer_email": "a@b.co", "rating": "4.5"}),
		row(3, map[string]any{"product_sku": "SKU-1", "customer_email": "a@b.co", "rating": "5"}),
	}

	report := Validate(models.EntityReviews, rows)

	assert.Equal(t, 1, report.ValidRows)
	assert.Equal(t, 2, report.InvalidRows)
}

func TestValidate_DiscountCodes(t *testing.T) {
	rows := []Row{
		row(2, map[string]any{"code": "SAVE10", "type": "PERCENTAGE", "value": "10"}),
		row(3, map[string]any{"code": "SAVE20", "type": "BOGOF", "value": "20"}),
	}

	report := Validate(models.EntityDiscountCodes, rows)

	assert.Equal(t, 1, report.ValidRows)
	assert.Equal(t, 1, report.InvalidRows)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "type", report.Issues[0].Field)
}

func TestValidate_IsRepeatable(t *testing.T) {
	rows := []Row{
		row(2, map[string]any{"email": "bad", "name": "Alice"}),
		row(3, map[string]any{"email": "ok@example.com", "name": "Bob"}),
	}

	first := Validate(models.EntityCustomers, rows)
	second := Validate(models.EntityCustomers, rows)

	assert.Equal(t, first.ValidRows, second.ValidRows)
	assert.Equal(t, first.InvalidRows, second.InvalidRows)
	assert.Equal(t, first.Issues, second.Issues)
}

func TestValidate_PreviewCappedAtFive(t *testing.T) {
	var rows []Row
	for i := 0; i < 8; i++ {
		rows = append(rows, row(i+2, map[string]any{"email": "a@b.co"}))
	}

	report := Validate(models.EntityNewsletterSubscribers, rows)

	require.Len(t, report.Preview, 5)
	assert.Equal(t, 2, report.Preview[0]["row"])
	assert.Equal(t, 6, report.Preview[4]["row"])
}

func TestValidate_BooleanTokens(t *testing.T) {
	for _, token := range []string{"yes", "Y", "TRUE", "1", "no", "N", "false", "0"} {
		report := Validate(models.EntityCustomers, []Row{
			row(2, map[string]any{"email": "a@b.co", "name": "A", "accepts_marketing": token}),
		})
		assert.True(t, report.IsValid, "token %q should be accepted", token)
	}

	report := Validate(models.EntityCustomers, []Row{
		row(2, map[string]any{"email": "a@b.co", "name": "A", "accepts_marketing": "maybe"}),
	})
	assert.False(t, report.IsValid)
}
