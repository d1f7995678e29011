package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestRead_NullsAndPadding(t *testing.T) {
	tb, err := Read(strings.NewReader("韵,声组,汉字\n东,端,东\n,见\n"), Format{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff([]string{"韵", "声组", "汉字"}, tb.Columns); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if tb.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tb.Len())
	}

	row := tb.Rows[1]
	if got := tb.Get(row, "韵"); got.Valid {
		t.Errorf("empty field should be null, got %+v", got)
	}
	if got := tb.Get(row, "声组"); got != Str("见") {
		t.Errorf("声组 = %+v, want 见", got)
	}
	if got := tb.Get(row, "汉字"); got.Valid {
		t.Errorf("short row should be padded with null, got %+v", got)
	}
}

func TestRead_HeaderNormalization(t *testing.T) {
	// BOM, surrounding spaces and a decomposed é in the header.
	input := "\ufeff 韵 ,cafe\u0301\nx,y\n"
	tb, err := Read(strings.NewReader(input), Format{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !tb.Has("韵") {
		t.Errorf("expected column 韵, got %q", tb.Columns)
	}
	if !tb.Has("café") {
		t.Errorf("expected NFC column café, got %q", tb.Columns)
	}
}

func TestRead_Encoding(t *testing.T) {
	src := "韵,读音\n东,toŋ\n"
	encoded, err := simplifiedchinese.GB18030.NewEncoder().String(src)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	tb, err := Read(strings.NewReader(encoded), Format{Encoding: "gb18030"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := tb.Get(tb.Rows[0], "读音"); got.Value != "toŋ" {
		t.Errorf("读音 = %q, want toŋ", got.Value)
	}
}

func TestRead_UnsupportedEncoding(t *testing.T) {
	if _, err := Read(strings.NewReader("a\n1\n"), Format{Encoding: "klingon"}); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestRead_Delimiters(t *testing.T) {
	tests := []struct {
		delim string
		input string
	}{
		{"", "a,b\n1,2\n"},
		{";", "a;b\n1;2\n"},
		{`\t`, "a\tb\n1\t2\n"},
		{"tab", "a\tb\n1\t2\n"},
	}
	for _, tt := range tests {
		tb, err := Read(strings.NewReader(tt.input), Format{Delimiter: tt.delim})
		if err != nil {
			t.Fatalf("Read(%q): %v", tt.delim, err)
		}
		if got := tb.Get(tb.Rows[0], "b"); got.Value != "2" {
			t.Errorf("delimiter %q: b = %q, want 2", tt.delim, got.Value)
		}
	}

	if _, err := Read(strings.NewReader("a\n"), Format{Delimiter: ";;"}); err == nil {
		t.Error("expected error for multi-character delimiter")
	}
}

func TestRead_Empty(t *testing.T) {
	if _, err := Read(strings.NewReader(""), Format{}); err != ErrNoHeader {
		t.Errorf("err = %v, want ErrNoHeader", err)
	}
}

func TestWrite(t *testing.T) {
	tb := New("a", "b")
	tb.Append(Row{Str("1"), Null()})
	tb.Append(Row{Str("x,y"), Str("")})

	var buf bytes.Buffer
	if err := Write(&buf, tb); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "a,b\n1,\n\"x,y\",\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestRenameSetSelect(t *testing.T) {
	tb := New("汉字", "读音")
	tb.Append(Row{Str("东"), Str("toŋ")})

	tb.Rename("读音", "phonetic")
	tb.Rename("absent", "whatever")
	if !tb.Has("phonetic") || tb.Has("读音") {
		t.Fatalf("rename failed: %q", tb.Columns)
	}

	tb.Set("layer", func(Row) Cell { return Str("main") })
	tb.Set("phonetic", func(r Row) Cell { return Str(r[1].Value + "˥") })

	out := tb.Select("layer", "missing", "phonetic")
	if diff := cmp.Diff([]string{"layer", "phonetic"}, out.Columns); diff != "" {
		t.Errorf("select columns (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Row{Str("main"), Str("toŋ˥")}, out.Rows[0]); diff != "" {
		t.Errorf("select row (-want +got):\n%s", diff)
	}
}

func TestFilterCopiesRows(t *testing.T) {
	tb := New("a")
	tb.Append(Row{Str("1")})
	tb.Append(Row{Str("2")})

	out := tb.Filter(func(r Row) bool { return r[0].Value == "2" })
	out.Rows[0][0] = Str("changed")
	if tb.Rows[1][0].Value != "2" {
		t.Error("Filter output shares rows with its input")
	}
}

func TestConcat(t *testing.T) {
	a := New("x", "y")
	a.Append(Row{Str("a1"), Str("a2")})
	b := New("y", "z")
	b.Append(Row{Str("b2"), Str("b3")})

	got := Concat(a, b)
	if diff := cmp.Diff([]string{"x", "y", "z"}, got.Columns); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	want := []Row{
		{Str("a1"), Str("a2"), Null()},
		{Null(), Str("b2"), Str("b3")},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
}

func TestMissing(t *testing.T) {
	tb := New("a", "b")
	if diff := cmp.Diff([]string{"c", "d"}, tb.Missing("a", "c", "b", "d")); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}
}

func TestDrop(t *testing.T) {
	tb := New("a", "b", "c")
	tb.Append(Row{Str("1"), Str("2"), Str("3")})

	out := tb.Drop("b", "missing")
	if diff := cmp.Diff([]string{"a", "c"}, out.Columns); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Row{Str("1"), Str("3")}, out.Rows[0]); diff != "" {
		t.Errorf("row (-want +got):\n%s", diff)
	}
	if len(tb.Columns) != 3 {
		t.Error("Drop modified its input")
	}
}
