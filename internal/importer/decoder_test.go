package importer

import (
	"testing"

	"github.com/storefront-ops/import-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV_QuotedFields(t *testing.T) {
	t.Run("comma inside quoted field", func(t *testing.T) {
		data := []byte("name,stock\n\"Acme, Inc.\",5\n")

		rows, err := Decode(models.FormatCSV, data)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		assert.Equal(t, "Acme, Inc.", rows[0].Get("name"))
		assert.Equal(t, "5", rows[0].Get("stock"))
	})

	t.Run("doubled quotes inside quoted field", func(t *testing.T) {
		data := []byte("name,stock\n\"She said \"\"hi\"\"\",1\n")

		rows, err := Decode(models.FormatCSV, data)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		assert.Equal(t, `She said "hi"`, rows[0].Get("name"))
	})

	t.Run("newline inside quoted field", func(t *testing.T) {
		data := []byte("name,stock\n\"line one\nline two\",3\n")

		rows, err := Decode(models.FormatCSV, data)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		assert.Equal(t, "line one\nline two", rows[0].Get("name"))
		assert.Equal(t, "3", rows[0].Get("stock"))
	})
}

func TestDecodeCSV_RowNumbering(t *testing.T) {
	data := []byte("sku,name\nSKU-1,First\nSKU-2,Second\n")

	rows, err := Decode(models.FormatCSV, data)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Header is row 1; the first data row reports as row 2.
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, 3, rows[1].Number)
}

func TestDecodeCSV_BlankLinesKeepFilePositions(t *testing.T) {
	data := []byte("sku,name\nSKU-1,First\n\nSKU-2,Second\n\n\nSKU-3,Third\n")

	rows, err := Decode(models.FormatCSV, data)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Blank lines are skipped as records but still count toward the
	// positions operators see in error reports.
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, 4, rows[1].Number)
	assert.Equal(t, 7, rows[2].Number)
}

func TestDecodeCSV_HeaderNormalization(t *testing.T) {
	data := []byte("SKU *,Product Name,\"price\"\nSKU-1,Widget,9.99\n")

	rows, err := Decode(models.FormatCSV, data)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "SKU-1", rows[0].Get("sku"))
	assert.Equal(t, "Widget", rows[0].Get("product_name"))
	assert.Equal(t, "9.99", rows[0].Get("price"))
}

func TestDecodeCSV_ShortRecord(t *testing.T) {
	data := []byte("sku,name,price\nSKU-1,Widget\n")

	rows, err := Decode(models.FormatCSV, data)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "", rows[0].Get("price"))
	assert.False(t, rows[0].Has("price"))
}

func TestDecodeCSV_HeaderOnly(t *testing.T) {
	rows, err := Decode(models.FormatCSV, []byte("sku,name\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeJSON(t *testing.T) {
	t.Run("array of objects with native types", func(t *testing.T) {
		data := []byte(`[{"SKU": "SKU-1", "price": 9.99, "featured": true}, {"sku": "SKU-2"}]`)

		rows, err := Decode(models.FormatJSON, data)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		// JSON rows are numbered by array index + 1.
		assert.Equal(t, 1, rows[0].Number)
		assert.Equal(t, 2, rows[1].Number)

		assert.Equal(t, "SKU-1", rows[0].Get("sku"))
		assert.Equal(t, "9.99", rows[0].Get("price"))
		assert.Equal(t, "true", rows[0].Get("featured"))
	})

	t.Run("root object is fatal", func(t *testing.T) {
		_, err := Decode(models.FormatJSON, []byte(`{"sku": "SKU-1"}`))
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("malformed body is fatal", func(t *testing.T) {
		_, err := Decode(models.FormatJSON, []byte(`[{"sku":`))
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestDecodeXLSX(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "SKU")
	f.SetCellValue("Sheet1", "B1", "Name")
	f.SetCellValue("Sheet1", "A2", "SKU-1")
	f.SetCellValue("Sheet1", "B2", "Widget")
	f.SetCellValue("Sheet1", "A3", "SKU-2")
	f.SetCellValue("Sheet1", "B3", "Gadget")
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Decode(models.FormatXLSX, buf.Bytes())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "SKU-1", rows[0].Get("sku"))
	assert.Equal(t, "Gadget", rows[1].Get("name"))
}

func TestDecodeXLSX_InvalidBody(t *testing.T) {
	_, err := Decode(models.FormatXLSX, []byte("not a workbook"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := Decode(models.FileFormat("YAML"), []byte("a: 1"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
