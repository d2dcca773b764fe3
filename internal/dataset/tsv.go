package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/autextification/scorer/internal/models"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column names every label table must carry.
const (
	IDColumn    = "id"
	LabelColumn = "label"
)

var (
	// ErrMissingColumn is returned when a table lacks the id or label column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrDuplicateIDs is returned when ids must be unique but are not.
	ErrDuplicateIDs = errors.New("duplicate ids")
)

// Row represents a single TSV row with column name to value mapping.
type Row map[string]string

// LoadRows reads a tab-separated file and returns rows as maps of column to value.
// The first row is treated as headers (column names). Files ending in .gz are
// decompressed and a leading byte order mark is dropped.
func LoadRows(path string) ([]Row, error) {
	var records [][]string
	err := withReader(path, func(reader *csv.Reader) error {
		var err error
		records, err = reader.ReadAll()
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("tsv: %s is empty (no header row)", path)
	}

	headers := records[0]
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	rows := make([]Row, 0, len(records)-1)

	for _, record := range records[1:] {
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = record[j]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// LabelTable is an (id, label) table in file order with an id index.
type LabelTable struct {
	Records []models.Record
	index   map[string]int
	dupes   []string
}

// LoadLabels reads a TSV file that carries at least the id and label columns.
// Extra columns are ignored. Duplicate ids are kept and reported by Duplicates.
func LoadLabels(path string) (*LabelTable, error) {
	rows, err := LoadRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		for _, col := range []string{IDColumn, LabelColumn} {
			if _, ok := rows[0][col]; !ok {
				return nil, fmt.Errorf("tsv: %s: %w %q", path, ErrMissingColumn, col)
			}
		}
	} else if err := checkHeader(path); err != nil {
		return nil, err
	}

	records := make([]models.Record, len(rows))
	for i, row := range rows {
		records[i] = models.Record{
			ID:    strings.TrimSpace(row[IDColumn]),
			Label: strings.TrimSpace(row[LabelColumn]),
		}
	}
	normalizeNumericIDs(records)
	return NewLabelTable(records), nil
}

// normalizeNumericIDs rewrites ids to a canonical number form when the whole
// id column is numeric, so "01", "1" and "1.0" name the same row. A column with
// any non-numeric id is left as text.
func normalizeNumericIDs(records []models.Record) {
	if len(records) == 0 {
		return
	}

	allInt := true
	for _, r := range records {
		if _, err := strconv.ParseInt(r.ID, 10, 64); err != nil {
			allInt = false
			break
		}
	}
	if allInt {
		for i := range records {
			n, _ := strconv.ParseInt(records[i].ID, 10, 64)
			records[i].ID = strconv.FormatInt(n, 10)
		}
		return
	}

	values := make([]float64, len(records))
	for i, r := range records {
		f, ok := parseDecimal(r.ID)
		if !ok {
			return
		}
		values[i] = f
	}
	for i, f := range values {
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			records[i].ID = strconv.FormatInt(int64(f), 10)
		} else {
			records[i].ID = strconv.FormatFloat(f, 'g', -1, 64)
		}
	}
}

// parseDecimal accepts finite decimal numbers only; hex floats, NaN and Inf
// stay text.
func parseDecimal(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "xXpPnNiI") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// checkHeader verifies the header of a table with no data rows.
func checkHeader(path string) error {
	var header []string
	err := withReader(path, func(reader *csv.Reader) error {
		var err error
		header, err = reader.Read()
		return err
	})
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[strings.TrimSpace(h)] = true
	}
	for _, col := range []string{IDColumn, LabelColumn} {
		if !seen[col] {
			return fmt.Errorf("tsv: %s: %w %q", path, ErrMissingColumn, col)
		}
	}
	return nil
}

// withReader opens path and hands fn a tab-separated reader over it. The file
// is closed before withReader returns.
func withReader(path string, fn func(*csv.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("tsv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("tsv: gunzip %s: %w", path, err)
		}
		defer zr.Close() //nolint:errcheck
		src = zr
	}

	reader := csv.NewReader(transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.Comma = '\t'
	reader.LazyQuotes = true
	if err := fn(reader); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("tsv: %s is empty (no header row)", path)
		}
		return fmt.Errorf("tsv: parse %s: %w", path, err)
	}
	return nil
}

// NewLabelTable indexes records by id. The first occurrence of an id wins.
func NewLabelTable(records []models.Record) *LabelTable {
	t := &LabelTable{
		Records: records,
		index:   make(map[string]int, len(records)),
	}
	for i, r := range records {
		if _, ok := t.index[r.ID]; ok {
			t.dupes = append(t.dupes, r.ID)
			continue
		}
		t.index[r.ID] = i
	}
	return t
}

// LoadTruth loads a ground-truth table. Unlike LoadLabels it requires ids to
// be unique.
func LoadTruth(path string) (*LabelTable, error) {
	t, err := LoadLabels(path)
	if err != nil {
		return nil, err
	}
	if d := t.Duplicates(); len(d) > 0 {
		return nil, fmt.Errorf("tsv: %s: %w: %s", path, ErrDuplicateIDs, strings.Join(d, ", "))
	}
	return t, nil
}

// Len returns the number of rows, duplicates included.
func (t *LabelTable) Len() int { return len(t.Records) }

// Label returns the label of the first row carrying id.
func (t *LabelTable) Label(id string) (string, bool) {
	i, ok := t.index[id]
	if !ok {
		return "", false
	}
	return t.Records[i].Label, true
}

// Has reports whether id is present.
func (t *LabelTable) Has(id string) bool {
	_, ok := t.index[id]
	return ok
}

// Duplicates returns ids that appear more than once, in order of their repeat.
func (t *LabelTable) Duplicates() []string { return t.dupes }

// Overlap counts the distinct ids shared with other.
func (t *LabelTable) Overlap(other *LabelTable) int {
	n := 0
	for id := range t.index {
		if other.Has(id) {
			n++
		}
	}
	return n
}
