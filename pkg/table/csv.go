package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Format describes the delimited-text layout of a source file.
type Format struct {
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
}

func (f Format) comma() (rune, error) {
	switch f.Delimiter {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	d := []rune(f.Delimiter)
	if len(d) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character", f.Delimiter)
	}
	return d[0], nil
}

// decoder wraps r with a transcoder when the declared encoding is not UTF-8.
func (f Format) decoder(r io.Reader) (io.Reader, error) {
	if isUTF8(f.Encoding) {
		return r, nil
	}
	e, err := htmlindex.Get(f.Encoding)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", f.Encoding, err)
	}
	return transform.NewReader(r, e.NewDecoder()), nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}

// ErrNoHeader is returned when a file holds no header row.
var ErrNoHeader = errors.New("no header row")

// Read parses delimited text with a header row. Empty fields become null
// cells; short rows are padded with nulls.
func Read(r io.Reader, f Format) (*Table, error) {
	comma, err := f.comma()
	if err != nil {
		return nil, err
	}
	src, err := f.decoder(r)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(src)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := New(NormalizeHeader(header)...)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make(Row, len(t.Columns))
		for i := 0; i < len(row) && i < len(record); i++ {
			if record[i] != "" {
				row[i] = Str(record[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string, f Format) (*Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	t, err := Read(fh, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Write emits t as comma-separated UTF-8 text with a header row and LF line
// endings. Null cells are written as empty fields.
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) && row[i].Valid {
				record[i] = row[i].Value
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
