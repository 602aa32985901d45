package roster

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"famdir/internal"
	"famdir/internal/util"
)

var ErrMissingWithholdingColumn = errors.New("directory withholding column not found, not safe to load this roster")

// WithholdingColumns are the accepted spellings of the consent column header.
var WithholdingColumns = []string{
	"Directory Withholding-YN",
	"Directory Withholding YN",
	"Directory Withholding",
}

func ReadFile(path string) (internal.Pool, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.Pool{}, err
	}
	pool, err := Read(blob)
	if err != nil {
		return internal.Pool{}, fmt.Errorf("%s: %w", path, err)
	}
	sum := sha256.Sum256(blob)
	pool.Source = path
	pool.SourceHash = hex.EncodeToString(sum[:])
	return pool, nil
}

// Read accepts an xlsx workbook or an HTML table export (some student information systems
// save those with an .xls extension).
func Read(content []byte) (internal.Pool, error) {
	var table [][]string
	var err error
	switch {
	case bytes.HasPrefix(content, []byte("PK\x03\x04")):
		table, err = xlsxTable(content)
	case looksLikeHTML(content):
		table, err = htmlTable(content)
	default:
		return internal.Pool{}, errors.New("unsupported roster format")
	}
	if err != nil {
		return internal.Pool{}, err
	}
	return poolFromTable(table)
}

func xlsxTable(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func looksLikeHTML(content []byte) bool {
	head := content
	if len(head) > 4096 {
		head = head[:4096]
	}
	lower := strings.ToLower(string(head))
	return strings.Contains(lower, "<table") || strings.Contains(lower, "<html")
}

func htmlTable(content []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var out [][]string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return true
		}
		rows.Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, cell.Text())
			})
			out = append(out, cells)
		})
		return false
	})
	if len(out) == 0 {
		return nil, errors.New("no roster table found")
	}
	return out, nil
}

func poolFromTable(table [][]string) (internal.Pool, error) {
	if len(table) == 0 {
		return internal.Pool{}, errors.New("roster is empty")
	}

	headers := make([]string, 0, len(table[0]))
	for _, h := range table[0] {
		headers = append(headers, util.NormalizeCell(h))
	}
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}

	pool := internal.Pool{Headers: headers}
	for _, candidate := range WithholdingColumns {
		for _, h := range headers {
			if h == candidate {
				pool.WithholdingKey = h
				break
			}
		}
		if pool.WithholdingKey != "" {
			break
		}
	}
	if pool.WithholdingKey == "" {
		return internal.Pool{}, ErrMissingWithholdingColumn
	}

	for i, raw := range table[1:] {
		cells := map[string]string{}
		empty := true
		for col, h := range headers {
			if h == "" || col >= len(raw) {
				continue
			}
			if _, dup := cells[h]; dup {
				continue
			}
			v := util.NormalizeCell(raw[col])
			if v != "" {
				empty = false
			}
			cells[h] = v
		}
		if empty {
			continue
		}
		pool.Rows = append(pool.Rows, internal.RawRow{LineNo: i + 2, Cells: cells})
	}
	return pool, nil
}
