// Package tabular reads decision matrices from spreadsheets and writes
// ranking reports back out as .xlsx workbooks or CSV.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
)

// headerScanLimit bounds how far down a sheet the header row is searched for.
const headerScanLimit = 20

var labelHeaders = []string{"alternative", "alternatif", "name", "nama", "provider"}

// Options controls parsing. Aliases maps criterion ids to extra header
// spellings, matched case-insensitively.
type Options struct {
	Sheet   string
	Aliases map[string][]string
}

// Table is a parsed sheet ready for scoring.BuildDecisionMatrix.
type Table struct {
	Sheet     string               `json:"sheet,omitempty"`
	HeaderRow int                  `json:"header_row"`
	Header    []string             `json:"header"`
	Rows      []scoring.RawRow     `json:"rows"`
	Skipped   []scoring.SkippedRow `json:"skipped,omitempty"`
}

// Reader parses .xlsx and .csv files against a criterion registry.
type Reader struct {
	criteria scoring.Criteria
	opts     Options
}

func NewReader(criteria scoring.Criteria, opts Options) *Reader {
	return &Reader{criteria: criteria, opts: opts}
}

// ReadFile parses the file at path, choosing the format by extension.
func (r *Reader) ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return r.Read(filepath.Base(path), f)
}

// Read parses src; name is only used for its extension.
func (r *Reader) Read(name string, src io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return r.readCSV(src)
	case ".xlsx", ".xlsm":
		return r.readXLSX(src)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", scoring.ErrInvalidInput, filepath.Ext(name))
	}
}

func (r *Reader) readXLSX(src io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := r.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", scoring.ErrInvalidInput)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	t, err := r.ParseRows(rows)
	if err != nil {
		return nil, err
	}
	t.Sheet = sheet
	return t, nil
}

func (r *Reader) readCSV(src io.Reader) (*Table, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return r.ParseRows(rows)
}

// ParseRows locates the header row, maps columns to criteria and returns
// the data rows below it. Blank rows are ignored; rows with values but no
// alternative name are reported as skipped.
func (r *Reader) ParseRows(rows [][]string) (*Table, error) {
	headerIdx, cols, label := -1, []int(nil), -1
	for i := 0; i < len(rows) && i < headerScanLimit; i++ {
		if c, ok := r.mapHeader(rows[i]); ok {
			headerIdx, cols = i, c
			label = labelColumn(rows[i], c)
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: no header row names all criteria (%s)",
			scoring.ErrInvalidInput, strings.Join(r.criteria.IDs(), ", "))
	}
	if label < 0 {
		return nil, fmt.Errorf("%w: no alternative name column", scoring.ErrInvalidInput)
	}

	t := &Table{HeaderRow: headerIdx + 1, Header: trimAll(rows[headerIdx])}
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		name := strings.TrimSpace(cell(row, label))
		if name == "" {
			t.Skipped = append(t.Skipped, scoring.SkippedRow{
				Name:   fmt.Sprintf("row %d", i+1),
				Reason: "missing alternative name",
			})
			continue
		}
		cells := make([]any, len(cols))
		for j, c := range cols {
			if v := strings.TrimSpace(cell(row, c)); v != "" {
				cells[j] = v
			}
		}
		t.Rows = append(t.Rows, scoring.RawRow{Name: name, Cells: cells})
	}
	return t, nil
}

// mapHeader returns, per criterion, the column holding it. ok is false
// unless every criterion is found.
func (r *Reader) mapHeader(row []string) ([]int, bool) {
	cols := make([]int, len(r.criteria))
	for j := range cols {
		cols[j] = -1
	}
	found := 0
	for c, h := range row {
		h = normalizeHeader(h)
		if h == "" {
			continue
		}
		for j, cr := range r.criteria {
			if cols[j] >= 0 || !r.matches(h, cr) {
				continue
			}
			cols[j] = c
			found++
			break
		}
	}
	return cols, found == len(r.criteria)
}

func (r *Reader) matches(h string, cr scoring.Criterion) bool {
	candidates := append([]string{cr.ID, cr.Name}, r.opts.Aliases[cr.ID]...)
	for _, cand := range candidates {
		cand = normalizeHeader(cand)
		if cand == "" {
			continue
		}
		if h == cand || strings.HasPrefix(h, cand+" ") || strings.HasPrefix(h, cand+"(") {
			return true
		}
	}
	return false
}

func labelColumn(header []string, criterionCols []int) int {
	used := make(map[int]bool, len(criterionCols))
	for _, c := range criterionCols {
		used[c] = true
	}
	for c, h := range header {
		h = normalizeHeader(h)
		for _, l := range labelHeaders {
			if h == l && !used[c] {
				return c
			}
		}
	}
	for c := range header {
		if !used[c] {
			return c
		}
	}
	return -1
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func cell(row []string, c int) string {
	if c < len(row) {
		return row[c]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
