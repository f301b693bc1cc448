package dataset

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/svrkit/pkg/errors"
)

// SupportedExtensions lists the recognized upload formats.
var SupportedExtensions = []string{"csv", "xlsx", "xls"}

// maxXLSRows bounds legacy .xls parsing; the format itself cannot hold more.
const maxXLSRows = 65536

// Read parses raw uploaded bytes into a Table, dispatching on the filename
// extension. The first row is always treated as the header.
func Read(filename string, data []byte) (*Table, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	switch ext {
	case "csv":
		return readCSV(filename, data)
	case "xlsx":
		return readXLSX(filename, data)
	case "xls":
		return readXLS(filename, data)
	default:
		return nil, errors.NewUnsupportedFormatError(filename, ext, SupportedExtensions)
	}
}

func readCSV(filename string, data []byte) (*Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewEmptyDatasetError(filename)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParseError(filename, "csv", err)
	}
	if len(records) == 0 {
		return nil, errors.NewEmptyDatasetError(filename)
	}

	return newTable(filename, records[0], records[1:])
}

func readXLSX(filename string, data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, errors.NewEmptyDatasetError(filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewParseError(filename, "xlsx", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewEmptyDatasetError(filename)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParseError(filename, "xlsx", err)
	}
	return tableFromSheet(filename, rows)
}

func readXLS(filename string, data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, errors.NewEmptyDatasetError(filename)
	}

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, errors.NewParseError(filename, "xls", err)
	}

	rows := wb.ReadAllCells(maxXLSRows)
	return tableFromSheet(filename, rows)
}

// tableFromSheet converts spreadsheet rows to a Table. Spreadsheet readers
// drop trailing empty cells, so short rows are padded back out to the header
// width and the padding counts as missing.
func tableFromSheet(filename string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.NewEmptyDatasetError(filename)
	}

	header := rows[0]
	width := len(header)
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) > width {
			return nil, errors.NewDimensionError("dataset.tableFromSheet", width, len(row), 1)
		}
		padded := make([]string, width)
		copy(padded, row)
		records = append(records, padded)
	}

	return newTable(filename, header, records)
}
