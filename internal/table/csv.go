package table

import (
	"bytes"
	"encoding/csv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeCSV reads a CSV file. UTF-8 input is tried first; anything else is
// decoded as Windows-1251, which is what spreadsheet exports on Russian
// locales produce. The separator is sniffed from the header line.
// Values stay strings; empty cells are absent from the row.
func DecodeCSV(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	sep := ','
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
		if err != nil {
			return nil, err
		}
		data, sep = decoded, ';'
	}
	if firstLine, _, _ := strings.Cut(string(data), "\n"); strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		sep = ';'
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return New(), nil
	}

	t := New(headerNames(records[0])...)
	for _, rec := range records[1:] {
		row := make(Row, len(t.Columns))
		for i, v := range rec {
			if i < len(t.Columns) && v != "" {
				row[t.Columns[i]] = v
			}
		}
		if len(row) > 0 {
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}
