package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/storefront-ops/import-service/internal/models"
	"github.com/xuri/excelize/v2"
)

// ErrInvalidFormat is the fatal, whole-job decode failure: an
// undeclared format or a body that cannot be interpreted as one.
var ErrInvalidFormat = errors.New("unsupported or invalid file format")

// Decode turns raw file bytes into an ordered sequence of rows. It is
// purely structural: no field semantics are checked here.
//
// Row numbering is what operators see in error reports: CSV and XLSX
// rows are numbered by file position (first data row is row 2, after
// the header); JSON rows are numbered by array index + 1.
func Decode(format models.FileFormat, data []byte) ([]Row, error) {
	switch format {
	case models.FormatCSV:
		return decodeCSV(data), nil
	case models.FormatJSON:
		return decodeJSON(data)
	case models.FormatXLSX:
		return decodeXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
}

// decodeCSV never fails: malformed quoting degrades to incorrectly
// split fields at worst. Quoted fields may contain commas, newlines
// and doubled quotes; missing trailing fields read as empty.
func decodeCSV(data []byte) []Row {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil
	}
	fields := make([]string, len(header))
	for i, cell := range header {
		fields[i] = normalizeField(cell)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Unrecoverable reader state; keep what decoded cleanly.
			break
		}
		// Number rows by the line the record starts on, so blank lines
		// the reader swallows do not shift reported positions.
		num, _ := reader.FieldPos(0)
		values := make(map[string]any, len(fields))
		for i, field := range fields {
			if field == "" {
				continue
			}
			if i < len(record) {
				values[field] = strings.TrimSpace(record[i])
			} else {
				values[field] = ""
			}
		}
		rows = append(rows, Row{Number: num, Values: values})
	}
	return rows
}

// decodeJSON requires the root to be an array of objects; anything
// else is a fatal decode failure that aborts before row processing.
func decodeJSON(data []byte) ([]Row, error) {
	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("%w: body is not a JSON array of objects", ErrInvalidFormat)
	}

	rows := make([]Row, 0, len(objects))
	for i, obj := range objects {
		values := make(map[string]any, len(obj))
		for k, v := range obj {
			values[normalizeField(k)] = v
		}
		rows = append(rows, Row{Number: i + 1, Values: values})
	}
	return rows, nil
}

func decodeXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidFormat)
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	fields := make([]string, len(cells[0]))
	for i, cell := range cells[0] {
		fields[i] = normalizeField(cell)
	}

	var rows []Row
	for idx, record := range cells[1:] {
		values := make(map[string]any, len(fields))
		for i, field := range fields {
			if field == "" {
				continue
			}
			if i < len(record) {
				values[field] = strings.TrimSpace(record[i])
			} else {
				values[field] = ""
			}
		}
		rows = append(rows, Row{Number: idx + 2, Values: values})
	}
	return rows, nil
}
