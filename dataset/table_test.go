package dataset

import (
	"strings"
	"testing"

	"github.com/YuminosukeSato/svrkit/pkg/errors"
)

const sampleCSV = `age,height,city,score
25,170.5,tokyo,88
30,165.2,osaka,
,180.0,kyoto,75
41,,tokyo,90
38,172.3,,61
`

func mustRead(t *testing.T, filename, content string) *Table {
	t.Helper()
	table, err := Read(filename, []byte(content))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return table
}

func TestReadCSVShape(t *testing.T) {
	table := mustRead(t, "people.csv", sampleCSV)

	if table.Rows() != 5 || table.Cols() != 4 {
		t.Errorf("shape = (%d, %d), want (5, 4)", table.Rows(), table.Cols())
	}
	want := []string{"age", "height", "city", "score"}
	got := table.Columns()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("columns = %v, want %v", got, want)
	}
}

func TestDTypeInference(t *testing.T) {
	table := mustRead(t, "people.csv", sampleCSV)

	dtypes := table.DTypes()
	tests := map[string]string{
		"age":    "int64",
		"height": "float64",
		"city":   "object",
		"score":  "int64",
	}
	for col, want := range tests {
		if dtypes[col] != want {
			t.Errorf("dtype[%s] = %s, want %s", col, dtypes[col], want)
		}
	}
}

func TestMissingCounts(t *testing.T) {
	table := mustRead(t, "people.csv", sampleCSV)

	counts := table.MissingCounts()
	tests := map[string]int{
		"age":    1,
		"height": 1,
		"city":   1,
		"score":  1,
	}
	for col, want := range tests {
		if counts[col] != want {
			t.Errorf("missing[%s] = %d, want %d", col, counts[col], want)
		}
	}
}

func TestMissingMarkerSpellings(t *testing.T) {
	csv := "x,y\n1,NA\n2,null\n3,NaN\n4,n/a\n5,\n6,7\n"
	table := mustRead(t, "markers.csv", csv)

	if got := table.MissingCounts()["y"]; got != 5 {
		t.Errorf("missing[y] = %d, want 5", got)
	}
}

func TestPreviewNullsAreNil(t *testing.T) {
	table := mustRead(t, "people.csv", sampleCSV)

	preview := table.Preview(PreviewRows)
	if len(preview) != 5 {
		t.Fatalf("preview length = %d, want 5", len(preview))
	}

	// 行2の score は欠損 → nil、行0は int64 として型付けされる
	if preview[1]["score"] != nil {
		t.Errorf("preview[1][score] = %v, want nil", preview[1]["score"])
	}
	if v, ok := preview[0]["score"].(int64); !ok || v != 88 {
		t.Errorf("preview[0][score] = %v (%T), want int64 88", preview[0]["score"], preview[0]["score"])
	}
	if v, ok := preview[0]["height"].(float64); !ok || v != 170.5 {
		t.Errorf("preview[0][height] = %v (%T), want float64 170.5", preview[0]["height"], preview[0]["height"])
	}
	if v, ok := preview[0]["city"].(string); !ok || v != "tokyo" {
		t.Errorf("preview[0][city] = %v (%T), want string tokyo", preview[0]["city"], preview[0]["city"])
	}
}

func TestPreviewBounded(t *testing.T) {
	table := mustRead(t, "short.csv", "a\n1\n2\n")
	if got := len(table.Preview(PreviewRows)); got != 2 {
		t.Errorf("preview length = %d, want 2", got)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Read("data.json", []byte(`{"a": 1}`))
	if err == nil {
		t.Fatal("Read() with .json should return an error")
	}
	var ufe *errors.UnsupportedFormatError
	if !errors.As(err, &ufe) {
		t.Errorf("error type = %T, want *UnsupportedFormatError", err)
	}
}

func TestEmptyFile(t *testing.T) {
	_, err := Read("empty.csv", []byte(""))
	if err == nil {
		t.Fatal("Read() with empty content should return an error")
	}
	var ede *errors.EmptyDatasetError
	if !errors.As(err, &ede) {
		t.Errorf("error type = %T, want *EmptyDatasetError", err)
	}
}

func TestMalformedCSV(t *testing.T) {
	_, err := Read("bad.csv", []byte("a,b\n1,2,3,4\n\"unclosed\n"))
	if err == nil {
		t.Fatal("Read() with malformed CSV should return an error")
	}
	var pe *errors.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error type = %T, want *ParseError", err)
	}
}

func TestHeaderOnlyCSV(t *testing.T) {
	table := mustRead(t, "header.csv", "a,b,c\n")
	if table.Rows() != 0 || table.Cols() != 3 {
		t.Errorf("shape = (%d, %d), want (0, 3)", table.Rows(), table.Cols())
	}
}

func TestNumericColumns(t *testing.T) {
	table := mustRead(t, "people.csv", sampleCSV)
	want := []string{"age", "height", "score"}
	got := table.NumericColumns()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("NumericColumns() = %v, want %v", got, want)
	}
}

func TestNumericMatrixDropsIncompleteRows(t *testing.T) {
	table := mustRead(t, "people.csv", sampleCSV)

	X, y, dropped, err := table.NumericMatrix([]string{"age", "height"}, "score")
	if err != nil {
		t.Fatalf("NumericMatrix() error = %v", err)
	}

	// 完全な行は行0 (25,170.5,88) と行4 (38,172.3,61) のみ
	r, c := X.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("X dims = (%d, %d), want (2, 2)", r, c)
	}
	if dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
	if X.At(0, 0) != 25 || X.At(0, 1) != 170.5 || y.AtVec(0) != 88 {
		t.Errorf("first kept row = (%v, %v, %v), want (25, 170.5, 88)", X.At(0, 0), X.At(0, 1), y.AtVec(0))
	}
	if X.At(1, 0) != 38 || X.At(1, 1) != 172.3 || y.AtVec(1) != 61 {
		t.Errorf("second kept row = (%v, %v, %v), want (38, 172.3, 61)", X.At(1, 0), X.At(1, 1), y.AtVec(1))
	}
}

func TestNumericMatrixAllTargetMissing(t *testing.T) {
	csv := "x,y\n1,\n2,\n3,\n"
	table := mustRead(t, "hollow.csv", csv)

	_, _, _, err := table.NumericMatrix([]string{"x"}, "y")
	if err == nil {
		t.Fatal("NumericMatrix() with all-missing target should return an error")
	}
	var ide *errors.InsufficientDataError
	if !errors.As(err, &ide) {
		t.Errorf("error type = %T, want *InsufficientDataError", err)
	}
}

func TestNumericMatrixRejectsNonNumeric(t *testing.T) {
	table := mustRead(t, "people.csv", sampleCSV)

	if _, _, _, err := table.NumericMatrix([]string{"city"}, "score"); err == nil {
		t.Error("non-numeric feature should return an error")
	}
	if _, _, _, err := table.NumericMatrix([]string{"age"}, "city"); err == nil {
		t.Error("non-numeric target should return an error")
	}
	if _, _, _, err := table.NumericMatrix([]string{"ghost"}, "score"); err == nil {
		t.Error("unknown feature should return an error")
	}
}
