// Package csvio parses raw CSV text into a header/row table and renders
// CSV templates for download.
//
// Parsing is deliberately hand-rolled rather than delegated to encoding/csv:
// the files come from spreadsheet exports in the wild, so the parser has to
// detect the delimiter, tolerate a UTF-8 BOM, accept both CRLF and bare LF
// row endings, and flush unterminated trailing content as a final row. The
// tokenizer follows RFC 4180 quoting ("" inside a quoted field is a literal
// quote).
package csvio

import (
	"fmt"
	"strings"
)

// MaxDataRows is the hard ceiling on data rows per file. It bounds worst-case
// import duration since execution is strictly sequential.
const MaxDataRows = 10000

// ParsedCSV is the in-memory table produced by Parse. Headers preserve the
// source column order; each row maps header name to its trimmed cell value.
// It is transient pipeline state and is never persisted.
type ParsedCSV struct {
	Headers []string            `json:"headers"`
	Rows    []map[string]string `json:"rows"`
}

// Parse turns raw CSV text into a ParsedCSV. It never panics; all failure
// modes are returned as errors with a message specific enough to show to the
// operator directly.
func Parse(raw string) (*ParsedCSV, error) {
	raw = strings.TrimPrefix(raw, "\uFEFF")

	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("file is empty")
	}

	delim := detectDelimiter(raw)
	records := tokenize(raw, delim)

	if len(records) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	headers := records[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		if h == "" {
			return nil, fmt.Errorf("column header %d is empty", i+1)
		}
		if seen[h] {
			return nil, fmt.Errorf("duplicate column header: %q", h)
		}
		seen[h] = true
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlankRecord(rec) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows found")
	}
	if len(rows) > MaxDataRows {
		return nil, fmt.Errorf("too many rows: file has %d data rows, the limit is %d", len(rows), MaxDataRows)
	}

	return &ParsedCSV{Headers: headers, Rows: rows}, nil
}

// detectDelimiter counts candidate delimiters on the first physical line.
// Tab wins only if strictly more frequent than both comma and semicolon;
// semicolon beats comma the same way; comma is the default.
func detectDelimiter(raw string) byte {
	line := raw
	if i := strings.IndexAny(raw, "\r\n"); i >= 0 {
		line = raw[:i]
	}

	commas := strings.Count(line, ",")
	semis := strings.Count(line, ";")
	tabs := strings.Count(line, "\t")

	switch {
	case tabs > commas && tabs > semis:
		return '\t'
	case semis > commas:
		return ';'
	default:
		return ','
	}
}

// tokenize splits raw text into records character by character with an
// explicit quote state. Delimiters and quotes are ASCII so byte iteration is
// safe for UTF-8 content.
func tokenize(raw string, delim byte) [][]string {
	var (
		records  [][]string
		current  []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		current = append(current, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		if !isBlankRecord(current) || len(current) > 1 {
			records = append(records, current)
		}
		current = nil
	}

	for i := 0; i < len(raw); {
		c := raw[i]

		if inQuotes {
			if c == '"' {
				if i+1 < len(raw) && raw[i+1] == '"' {
					field.WriteByte('"')
					i += 2
					continue
				}
				inQuotes = false
				i++
				continue
			}
			field.WriteByte(c)
			i++
			continue
		}

		switch c {
		case '"':
			inQuotes = true
			i++
		case delim:
			endField()
			i++
		case '\r':
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			endRow()
			i++
		case '\n':
			endRow()
			i++
		default:
			field.WriteByte(c)
			i++
		}
	}

	// Unterminated trailing content is flushed as a final row.
	if field.Len() > 0 || len(current) > 0 {
		endRow()
	}

	return records
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
