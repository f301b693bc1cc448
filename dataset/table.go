// Package dataset parses uploaded tabular files into an in-memory table and
// derives the schema view the upload endpoint reports: column names, inferred
// dtypes, missing-value counts and a bounded preview.
//
// A table lives for exactly one request. It is parsed from the uploaded
// bytes, inspected or converted into matrices for training, and discarded
// with the response.
package dataset

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/svrkit/pkg/errors"
)

// DType is the inferred semantic type of a column. Labels follow the pandas
// naming the original frontend already displays.
type DType string

const (
	DTypeInt    DType = "int64"
	DTypeFloat  DType = "float64"
	DTypeObject DType = "object"
)

// PreviewRows is the number of rows returned in a schema preview.
const PreviewRows = 5

// Table is an immutable tabular dataset: ordered named columns of equal
// length. Cells are kept in their raw string form with an explicit missing
// flag; dtype inference decides how they are interpreted.
type Table struct {
	filename string
	columns  []string
	cells    [][]string // row-major
	missing  [][]bool
	dtypes   []DType
}

// missingMarkers are the cell spellings treated as null, matching what
// pandas.read_csv recognizes for the files this service sees in practice.
var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"nan":  true,
}

func isMissing(cell string) bool {
	return missingMarkers[strings.ToLower(strings.TrimSpace(cell))]
}

// newTable builds a Table from a header and raw records, inferring dtypes.
// Every record must have exactly len(header) fields.
func newTable(filename string, header []string, records [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, errors.NewEmptyDatasetError(filename)
	}

	nCols := len(header)
	cells := make([][]string, len(records))
	missing := make([][]bool, len(records))
	for i, rec := range records {
		if len(rec) != nCols {
			return nil, errors.NewDimensionError("dataset.newTable", nCols, len(rec), 1)
		}
		row := make([]string, nCols)
		miss := make([]bool, nCols)
		for j, cell := range rec {
			row[j] = strings.TrimSpace(cell)
			miss[j] = isMissing(cell)
		}
		cells[i] = row
		missing[i] = miss
	}

	t := &Table{
		filename: filename,
		columns:  append([]string(nil), header...),
		cells:    cells,
		missing:  missing,
	}
	t.inferDTypes()
	return t, nil
}

// inferDTypes classifies each column from its non-missing cells: all integers
// give int64, otherwise all floats give float64, anything else is object.
// A column with no observed values is float64, the pandas convention for an
// all-NaN column.
func (t *Table) inferDTypes() {
	t.dtypes = make([]DType, len(t.columns))
	for j := range t.columns {
		allInt, allFloat, seen := true, true, false
		for i := range t.cells {
			if t.missing[i][j] {
				continue
			}
			seen = true
			cell := t.cells[i][j]
			if allInt {
				if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
					allInt = false
				}
			}
			if !allInt && allFloat {
				if _, err := strconv.ParseFloat(cell, 64); err != nil {
					allFloat = false
					break
				}
			}
		}

		switch {
		case !seen:
			t.dtypes[j] = DTypeFloat
		case allInt:
			t.dtypes[j] = DTypeInt
		case allFloat:
			t.dtypes[j] = DTypeFloat
		default:
			t.dtypes[j] = DTypeObject
		}
	}
}

// Filename returns the client-supplied name the table was parsed from.
func (t *Table) Filename() string { return t.filename }

// Rows returns the number of data rows (excluding the header).
func (t *Table) Rows() int { return len(t.cells) }

// Cols returns the number of columns.
func (t *Table) Cols() int { return len(t.columns) }

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether name exists in the table.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columnIndex(name)
	return ok
}

func (t *Table) columnIndex(name string) (int, bool) {
	for j, col := range t.columns {
		if col == name {
			return j, true
		}
	}
	return 0, false
}

// DTypes maps each column name to its inferred dtype label.
func (t *Table) DTypes() map[string]string {
	out := make(map[string]string, len(t.columns))
	for j, col := range t.columns {
		out[col] = string(t.dtypes[j])
	}
	return out
}

// IsNumeric reports whether the named column holds int64 or float64 values.
func (t *Table) IsNumeric(name string) bool {
	j, ok := t.columnIndex(name)
	if !ok {
		return false
	}
	return t.dtypes[j] == DTypeInt || t.dtypes[j] == DTypeFloat
}

// NumericColumns returns the names of all numeric columns, in table order.
func (t *Table) NumericColumns() []string {
	var out []string
	for j, col := range t.columns {
		if t.dtypes[j] == DTypeInt || t.dtypes[j] == DTypeFloat {
			out = append(out, col)
		}
	}
	return out
}

// MissingCounts maps each column name to its count of missing cells.
func (t *Table) MissingCounts() map[string]int {
	out := make(map[string]int, len(t.columns))
	for j, col := range t.columns {
		count := 0
		for i := range t.cells {
			if t.missing[i][j] {
				count++
			}
		}
		out[col] = count
	}
	return out
}

// Preview returns up to n leading rows as column→value maps. Missing cells
// are nil so they serialize as JSON null rather than a sentinel string.
func (t *Table) Preview(n int) []map[string]interface{} {
	if n > len(t.cells) {
		n = len(t.cells)
	}
	out := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		row := make(map[string]interface{}, len(t.columns))
		for j, col := range t.columns {
			if t.missing[i][j] {
				row[col] = nil
				continue
			}
			row[col] = t.cellValue(i, j)
		}
		out = append(out, row)
	}
	return out
}

// cellValue interprets a non-missing cell according to the column dtype.
func (t *Table) cellValue(i, j int) interface{} {
	cell := t.cells[i][j]
	switch t.dtypes[j] {
	case DTypeInt:
		v, err := strconv.ParseInt(cell, 10, 64)
		if err == nil {
			return v
		}
	case DTypeFloat:
		v, err := strconv.ParseFloat(cell, 64)
		if err == nil {
			return v
		}
	}
	return cell
}

// NumericMatrix extracts the feature matrix and target vector for the given
// columns, dropping every row that has a missing value in the target or any
// feature. All columns must be numeric; dropped reports how many rows were
// removed.
func (t *Table) NumericMatrix(features []string, target string) (X *mat.Dense, y *mat.VecDense, dropped int, err error) {
	featIdx := make([]int, len(features))
	for k, name := range features {
		j, ok := t.columnIndex(name)
		if !ok {
			return nil, nil, 0, errors.NewValidationError("feature_columns", "column not found", name)
		}
		if t.dtypes[j] != DTypeInt && t.dtypes[j] != DTypeFloat {
			return nil, nil, 0, errors.NewValidationError("feature_columns", "column is not numeric", name)
		}
		featIdx[k] = j
	}
	targetIdx, ok := t.columnIndex(target)
	if !ok {
		return nil, nil, 0, errors.NewValidationError("target_column", "column not found", target)
	}
	if t.dtypes[targetIdx] != DTypeInt && t.dtypes[targetIdx] != DTypeFloat {
		return nil, nil, 0, errors.NewValidationError("target_column", "column is not numeric", target)
	}

	var keep []int
	for i := range t.cells {
		complete := !t.missing[i][targetIdx]
		for _, j := range featIdx {
			if t.missing[i][j] {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	dropped = len(t.cells) - len(keep)

	if len(keep) == 0 {
		return nil, nil, dropped, errors.NewInsufficientDataError("NumericMatrix", 0, 1)
	}

	X = mat.NewDense(len(keep), len(featIdx), nil)
	y = mat.NewVecDense(len(keep), nil)
	for row, i := range keep {
		for k, j := range featIdx {
			v, perr := strconv.ParseFloat(t.cells[i][j], 64)
			if perr != nil {
				return nil, nil, dropped, errors.Wrapf(perr, "parse cell (%d, %s)", i, t.columns[j])
			}
			X.Set(row, k, v)
		}
		v, perr := strconv.ParseFloat(t.cells[i][targetIdx], 64)
		if perr != nil {
			return nil, nil, dropped, errors.Wrapf(perr, "parse cell (%d, %s)", i, target)
		}
		y.SetVec(row, v)
	}

	return X, y, dropped, nil
}
