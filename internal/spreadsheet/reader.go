package spreadsheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"ventas-dashboard/internal/config"
)

var (
	ErrSourceMissing = errors.New("spreadsheet source missing")
	ErrSheetMissing  = errors.New("sheet not found")
	ErrHeaderMissing = errors.New("header not found")
	ErrUnsupported   = errors.New("unsupported spreadsheet format")
	ErrColumnRange   = errors.New("invalid column range")
)

// Row is one data row cut to the configured column window.
type Row struct {
	// Line is the 1-based row number in the sheet.
	Line  int
	Cells []string
}

// Grid is the header row and the data rows of the configured window.
type Grid struct {
	Header []string
	Rows   []Row
	// Date1904 is set when the workbook counts serial dates from 1904.
	Date1904 bool
}

// ReadRows reads the configured sheet and returns the window of cells the
// layout describes: SkipRows rows are dropped, the next row is the header and
// at most MaxRows data rows follow. Blank rows are skipped.
func ReadRows(ctx context.Context, cfg config.SpreadsheetConfig) (*Grid, error) {
	first, last, err := parseColumnRange(cfg.Columns)
	if err != nil {
		return nil, err
	}

	raw, date1904, err := readRaw(ctx, cfg.Path, cfg.Sheet)
	if err != nil {
		return nil, err
	}

	if len(raw) <= cfg.SkipRows {
		return nil, fmt.Errorf("%w: sheet %q has no row %d", ErrHeaderMissing, cfg.Sheet, cfg.SkipRows+1)
	}

	grid := &Grid{Header: cut(raw[cfg.SkipRows], first, last), Date1904: date1904}
	for i := range grid.Header {
		grid.Header[i] = strings.TrimSpace(grid.Header[i])
	}

	data := raw[cfg.SkipRows+1:]
	if len(data) > cfg.MaxRows {
		data = data[:cfg.MaxRows]
	}

	grid.Rows = make([]Row, 0, len(data))
	for i, cells := range data {
		row := cut(cells, first, last)
		if isBlank(row) {
			continue
		}
		grid.Rows = append(grid.Rows, Row{Line: cfg.SkipRows + 2 + i, Cells: row})
	}

	return grid, nil
}

// readRaw returns every row of the sheet and whether its serial dates use
// the 1904 epoch. Only xlsx workbooks can carry that flag.
func readRaw(ctx context.Context, path, sheet string) ([][]string, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrSourceMissing, err)
	}
	if info.IsDir() {
		return nil, false, fmt.Errorf("%w: %s is a directory", ErrSourceMissing, path)
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path, sheet)
	case ".xls":
		rows, err = readXLS(path, sheet)
	case ".csv":
		rows, err = readCSV(path)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	return rows, false, err
}

func readXLSX(path, sheet string) ([][]string, bool, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: open %s: %v", ErrSourceMissing, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if !slices.Contains(sheets, sheet) {
		return nil, false, fmt.Errorf("%w: %q (available: %s)", ErrSheetMissing, sheet, strings.Join(sheets, ", "))
	}

	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	// Raw values keep dates as serial numbers and amounts without number formats.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, false, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, date1904, nil
}

func readXLS(path, sheet string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrSourceMissing, path, err)
	}

	var ws *xls.WorkSheet
	names := make([]string, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		s := wb.GetSheet(i)
		if s == nil {
			continue
		}
		names = append(names, s.Name)
		if s.Name == sheet {
			ws = s
			break
		}
	}
	if ws == nil {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrSheetMissing, sheet, strings.Join(names, ", "))
	}

	rows := make([][]string, 0, int(ws.MaxRow)+1)
	for r := 0; r <= int(ws.MaxRow); r++ {
		row := ws.Row(r)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		last := row.LastCol()
		cells := make([]string, max(last, 0))
		for c := row.FirstCol(); c < last; c++ {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceMissing, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// parseColumnRange turns a lettered range such as "C:N" into 1-based column
// numbers. An empty range selects every column and returns 0, 0.
func parseColumnRange(columns string) (int, int, error) {
	columns = strings.TrimSpace(columns)
	if columns == "" {
		return 0, 0, nil
	}

	from, to, found := strings.Cut(columns, ":")
	if !found {
		to = from
	}

	first, err := excelize.ColumnNameToNumber(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, fmt.Errorf("%w %q: %v", ErrColumnRange, columns, err)
	}
	last, err := excelize.ColumnNameToNumber(strings.TrimSpace(to))
	if err != nil {
		return 0, 0, fmt.Errorf("%w %q: %v", ErrColumnRange, columns, err)
	}
	if last < first {
		return 0, 0, fmt.Errorf("%w %q: end before start", ErrColumnRange, columns)
	}
	return first, last, nil
}

// cut returns the cells between columns first and last (1-based, inclusive),
// padding short rows with empty strings.
func cut(cells []string, first, last int) []string {
	if first == 0 {
		return slices.Clone(cells)
	}

	out := make([]string, last-first+1)
	for i := range out {
		if idx := first - 1 + i; idx < len(cells) {
			out[i] = cells[idx]
		}
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
