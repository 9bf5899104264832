package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"ventas-dashboard/internal/config"
	"ventas-dashboard/internal/models"
)

const (
	batchSize  = 256
	maxWorkers = 8
)

var errEmptyCell = errors.New("empty value")

// CellError reports a cell that could not be converted to its field type.
type CellError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d, column %q: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

type columnIndex struct {
	branch, product, date, pending, total, quantity int
}

func resolveColumns(header []string, h config.HeaderConfig) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	lookup := func(name string) (int, error) {
		idx, ok := positions[strings.TrimSpace(name)]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrHeaderMissing, name)
		}
		return idx, nil
	}

	var (
		cols columnIndex
		err  error
	)
	for _, c := range []struct {
		dst  *int
		name string
	}{
		{&cols.branch, h.Branch},
		{&cols.product, h.Product},
		{&cols.date, h.Date},
		{&cols.pending, h.Pending},
		{&cols.total, h.Total},
		{&cols.quantity, h.Quantity},
	} {
		if *c.dst, err = lookup(c.name); err != nil {
			return columnIndex{}, err
		}
	}
	return cols, nil
}

// Parse converts grid rows into sales records, preserving row order. The first
// unparseable cell aborts the whole parse.
func Parse(ctx context.Context, grid *Grid, cfg config.SpreadsheetConfig) ([]models.SalesRecord, error) {
	cols, err := resolveColumns(grid.Header, cfg.Headers)
	if err != nil {
		return nil, err
	}

	records := make([]models.SalesRecord, len(grid.Rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(grid.Rows); start += batchSize {
		end := min(start+batchSize, len(grid.Rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := parseRecord(grid.Rows[i], cols, cfg, grid.Date1904)
				if err != nil {
					return err
				}
				records[i] = rec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseRecord(row Row, cols columnIndex, cfg config.SpreadsheetConfig, date1904 bool) (models.SalesRecord, error) {
	cell := func(idx int) string {
		if idx < len(row.Cells) {
			return strings.TrimSpace(row.Cells[idx])
		}
		return ""
	}
	fail := func(column, value string, err error) error {
		return &CellError{Line: row.Line, Column: column, Value: value, Err: err}
	}

	var rec models.SalesRecord
	h := cfg.Headers

	if rec.Branch = cell(cols.branch); rec.Branch == "" {
		return rec, fail(h.Branch, "", errEmptyCell)
	}
	if rec.Product = cell(cols.product); rec.Product == "" {
		return rec, fail(h.Product, "", errEmptyCell)
	}

	raw := cell(cols.date)
	date, err := ParseDate(raw, cfg.DateLayouts, date1904)
	if err != nil {
		return rec, fail(h.Date, raw, err)
	}
	rec.Date = date

	for _, f := range []struct {
		dst    *decimal.Decimal
		idx    int
		column string
	}{
		{&rec.Pending, cols.pending, h.Pending},
		{&rec.Total, cols.total, h.Total},
		{&rec.Quantity, cols.quantity, h.Quantity},
	} {
		raw := cell(f.idx)
		if *f.dst, err = ParseAmount(raw); err != nil {
			return rec, fail(f.column, raw, err)
		}
	}

	return rec, nil
}

// ParseDate accepts an Excel serial number or any of the given layouts and
// returns the calendar date at UTC midnight. date1904 selects the 1904 epoch
// for serial numbers.
func ParseDate(value string, layouts []string, date1904 bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errEmptyCell
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return time.Time{}, err
		}
		return dateOnly(t), nil
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches (tried %s)", strings.Join(layouts, ", "))
}

// amountNoise is dropped from amount cells before parsing. It covers the
// "MX $ 1,234" form the dashboard itself displays.
var amountNoise = strings.NewReplacer("MX", "", "$", "", ",", "", " ", "", "\u00a0", "")

// ParseAmount parses a numeric cell. Currency prefixes and thousands
// separators are ignored and an empty cell is zero.
func ParseAmount(value string) (decimal.Decimal, error) {
	value = amountNoise.Replace(strings.TrimSpace(value))
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
