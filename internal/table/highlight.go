package table

import (
	"bytes"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lukman83/wbops/internal/apperr"
)

// Moscow is the zone of timestamps written without an offset. Russia has
// kept UTC+3 all year since 2014.
var Moscow = time.FixedZone("MSK", 3*60*60)

// MoscowWallClock converts ts to Moscow time and drops the zone, which is
// how workbook cells store timestamps.
func MoscowWallClock(ts time.Time) time.Time {
	m := ts.In(Moscow)
	return time.Date(m.Year(), m.Month(), m.Day(), m.Hour(), m.Minute(), m.Second(), 0, time.UTC)
}

// Aging configures row colouring by the age of a timestamp column.
type Aging struct {
	Column     string
	Warn       time.Duration // age >= Warn gets WarnColor
	Alert      time.Duration // age > Alert gets AlertColor
	WarnColor  string
	AlertColor string
}

var ageLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
}

// parseAge turns a cell into an instant. Times without a zone, including
// spreadsheet date cells, are wall-clock Moscow time.
func parseAge(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return time.Date(x.Year(), x.Month(), x.Day(), x.Hour(), x.Minute(), x.Second(), x.Nanosecond(), Moscow), true
	case string:
		s := strings.TrimSpace(x)
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts, true
		}
		for _, layout := range ageLayouts {
			if ts, err := time.ParseInLocation(layout, s, Moscow); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// HighlightAging fills whole rows of the workbook's first sheet according to
// the age of a.Column at now. Existing cell formats are kept. It returns the
// new workbook and the number of coloured rows.
func HighlightAging(data []byte, a Aging, now time.Time) ([]byte, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, &apperr.SchemaError{Missing: []string{a.Column}}
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, &apperr.SchemaError{Missing: []string{a.Column}}
	}
	header := headerNames(rows[0])
	col := -1
	for i, h := range header {
		if h == strings.TrimSpace(a.Column) {
			col = i
		}
	}
	if col < 0 {
		return nil, 0, &apperr.SchemaError{Missing: []string{a.Column}, Present: header}
	}

	cells := &cellReader{f: f, sheet: sheet, dates: map[int]bool{}}
	painter := &rowPainter{f: f, sheet: sheet, width: len(header), styles: map[paintKey]int{}}
	painted := 0
	for r := 1; r < len(rows); r++ {
		if col >= len(rows[r]) || rows[r][col] == "" {
			continue
		}
		v, err := cells.value(col+1, r+1, rows[r][col])
		if err != nil {
			return nil, 0, err
		}
		ts, ok := parseAge(v)
		if !ok {
			continue
		}
		age := now.Sub(ts)
		color := ""
		switch {
		case age > a.Alert:
			color = a.AlertColor
		case age >= a.Warn:
			color = a.WarnColor
		}
		if color == "" {
			continue
		}
		if err := painter.paint(r+1, color); err != nil {
			return nil, 0, err
		}
		painted++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), painted, nil
}

type paintKey struct {
	style int
	color string
}

type rowPainter struct {
	f      *excelize.File
	sheet  string
	width  int
	styles map[paintKey]int
}

func (p *rowPainter) paint(row int, color string) error {
	for c := 1; c <= p.width; c++ {
		cell, err := excelize.CoordinatesToCellName(c, row)
		if err != nil {
			return err
		}
		base, err := p.f.GetCellStyle(p.sheet, cell)
		if err != nil {
			return err
		}
		key := paintKey{style: base, color: color}
		id, ok := p.styles[key]
		if !ok {
			style, err := p.f.GetStyle(base)
			if err != nil {
				style = &excelize.Style{}
			}
			style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
			if id, err = p.f.NewStyle(style); err != nil {
				return err
			}
			p.styles[key] = id
		}
		if err := p.f.SetCellStyle(p.sheet, cell, cell, id); err != nil {
			return err
		}
	}
	return nil
}
