package importer

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one decoded record of an import file: a loosely typed mapping
// of normalized field name to raw value. Values are strings for
// CSV/XLSX sources and native JSON values for JSON sources. A Row is
// consumed once by validation and once by resolution and never
// persisted; Number is its position in the original file and is the
// identity used in every error report.
type Row struct {
	Number int
	Values map[string]any
}

// Get returns the trimmed string form of a field, or "" when the field
// is absent or null.
func (r Row) Get(field string) string {
	v, ok := r.Values[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// Has reports whether the field is present with a non-blank value.
func (r Row) Has(field string) bool {
	return r.Get(field) != ""
}

// normalizeField canonicalizes a header cell or JSON key: surrounding
// quotes and required-column markers are stripped, spaces collapse to
// underscores, and the result is lowercased so "Product SKU",
// `"product_sku"` and "product_sku" all address the same field.
func normalizeField(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, `"`)
	name = strings.TrimSuffix(name, " *")
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "_")
}
