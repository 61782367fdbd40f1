// Package sheetfile reads spreadsheet exports into the same row grid the
// values API returns, so a sheet can be checked offline.
package sheetfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/towerdash/pkg/sheets"
)

// Options configures Read.
type Options struct {
	// Sheet selects a worksheet by name in .xlsx files. When empty the first
	// worksheet is used.
	Sheet string
}

// Read loads path based on its extension: .xlsx, .csv or .json (a saved
// values API response).
func Read(path string, opts Options) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path, opts.Sheet)
	case ".csv", ".tsv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "sheetfile: open")
		}
		defer f.Close() //nolint:errcheck
		return ReadCSV(f)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "sheetfile: open")
		}
		defer f.Close() //nolint:errcheck
		return ReadJSON(f)
	default:
		return nil, eris.Errorf("sheetfile: unsupported file type %q", filepath.Ext(path))
	}
}

// ReadCSV reads delimited text. The delimiter is sniffed from the first line
// among comma, semicolon and tab; Brazilian spreadsheet exports commonly use
// semicolons because the comma is the decimal separator.
func ReadCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, eris.Wrap(err, "csv: peek")
	}

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(first)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func sniffDelimiter(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	best, bestCount := ',', bytes.Count(head, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(head, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// ReadJSON reads a values API response body.
func ReadJSON(r io.Reader) ([][]string, error) {
	var resp sheets.ValuesResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, eris.Wrap(err, "json: decode values")
	}
	return resp.Values, nil
}

// ReadXLSX reads one worksheet of an .xlsx file.
func ReadXLSX(path, sheetName string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, sheetName)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		rows = append(rows, rowToStrings(row))
	}
	return rows, nil
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: file has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
