package dataset

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func mustTable(t *testing.T, csv string) *Table {
	t.Helper()
	tbl, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	return tbl
}

func TestReadWriteCSV(t *testing.T) {
	in := "name,age,city\nalice,30,\"New York, NY\"\nbob,,Paris\n"
	tbl := mustTable(t, in)

	if got := strings.Join(tbl.Columns, "|"); got != "name|age|city" {
		t.Errorf("Columns = %s", got)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	if tbl.Rows[0][2] != "New York, NY" {
		t.Errorf("quoted cell = %q", tbl.Rows[0][2])
	}

	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if buf.String() != in {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", buf.String(), in)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", " ", "NA", "nan", "NaN", "null", "None", "n/a"} {
		if !IsMissing(v) {
			t.Errorf("IsMissing(%q) = false", v)
		}
	}
	for _, v := range []string{"0", "x", "nana"} {
		if IsMissing(v) {
			t.Errorf("IsMissing(%q) = true", v)
		}
	}
}

func TestColumnKinds(t *testing.T) {
	tbl := mustTable(t, "a,b,c,d\n1,x,,1.5\n2,y,,NA\n")
	if got := strings.Join(tbl.NumericColumns(), ","); got != "a,d" {
		t.Errorf("NumericColumns() = %s", got)
	}
	if got := strings.Join(tbl.CategoricalColumns(), ","); got != "b,c" {
		t.Errorf("CategoricalColumns() = %s", got)
	}
}

func TestClone(t *testing.T) {
	tbl := mustTable(t, "a\n1\n")
	c := tbl.Clone()
	c.Rows[0][0] = "2"
	c.Columns[0] = "z"
	if tbl.Rows[0][0] != "1" || tbl.Columns[0] != "a" {
		t.Error("Clone() shares storage")
	}
}

func TestColumn(t *testing.T) {
	tbl := mustTable(t, "a,b\n1,2\n3,4\n")
	col, err := tbl.Column("b")
	if err != nil || strings.Join(col, ",") != "2,4" {
		t.Errorf("Column(b) = %v, %v", col, err)
	}
	if _, err := tbl.Column("zz"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}
