package table

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DecodeXLSX reads the first sheet of a workbook. The first row is the
// header; fully empty rows are dropped.
func DecodeXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return New(), nil
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return New(), nil
	}

	t := New(headerNames(rows[0])...)
	cells := &cellReader{f: f, sheet: sheet, dates: map[int]bool{}}
	for r := 1; r < len(rows); r++ {
		row := make(Row, len(t.Columns))
		for c, raw := range rows[r] {
			if c >= len(t.Columns) || raw == "" {
				continue
			}
			v, err := cells.value(c+1, r+1, raw)
			if err != nil {
				return nil, err
			}
			row[t.Columns[c]] = v
		}
		if len(row) > 0 {
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}

// headerNames trims header cells, names blank ones and suffixes duplicates
// with ".1", ".2" so every column stays addressable.
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := map[string]int{}
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}
		names[i] = name
	}
	return names
}

type cellReader struct {
	f     *excelize.File
	sheet string
	dates map[int]bool // style id -> has a date number format
}

func (cr *cellReader) value(col, row int, raw string) (any, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	typ, err := cr.f.GetCellType(cr.sheet, cell)
	if err != nil {
		return nil, err
	}
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return raw, nil
	case excelize.CellTypeDate:
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return ts, nil
		}
		return raw, nil
	}

	// Untyped cells hold numbers; dates are numbers with a date format.
	if !looksNumeric(raw) {
		return raw, nil
	}
	isDate, err := cr.isDate(cell)
	if err != nil {
		return nil, err
	}
	if isDate {
		serial, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			if ts, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return ts, nil
			}
		}
	}
	if !strings.ContainsAny(raw, ".eE") {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, nil
		}
	}
	if x, err := strconv.ParseFloat(raw, 64); err == nil {
		return x, nil
	}
	return raw, nil
}

func (cr *cellReader) isDate(cell string) (bool, error) {
	id, err := cr.f.GetCellStyle(cr.sheet, cell)
	if err != nil {
		return false, err
	}
	if v, ok := cr.dates[id]; ok {
		return v, nil
	}
	style, err := cr.f.GetStyle(id)
	if err != nil {
		// Unknown style ids are treated as plain numbers.
		cr.dates[id] = false
		return false, nil
	}
	v := isDateFormat(style)
	cr.dates[id] = v
	return v, nil
}

var numericRe = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][-+]?\d+)?$`)

func looksNumeric(s string) bool { return numericRe.MatchString(s) }

var quotedRe = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]`)

func isDateFormat(s *excelize.Style) bool {
	switch {
	case s.NumFmt >= 14 && s.NumFmt <= 22,
		s.NumFmt >= 27 && s.NumFmt <= 36,
		s.NumFmt >= 45 && s.NumFmt <= 47,
		s.NumFmt >= 50 && s.NumFmt <= 58:
		return true
	}
	if s.CustomNumFmt == nil {
		return false
	}
	code := strings.ToLower(quotedRe.ReplaceAllString(*s.CustomNumFmt, ""))
	return strings.ContainsAny(code, "yd") || strings.Contains(code, "h:m") || strings.Contains(code, "mm:ss")
}

// EncodeXLSX writes the table as a single-sheet workbook with a header row.
func EncodeXLSX(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	values := make([]interface{}, len(t.Columns))
	for r, row := range t.Rows {
		for i, c := range t.Columns {
			values[i] = cellValue(row[c])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellValue(v any) interface{} {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x
	default:
		return v
	}
}
