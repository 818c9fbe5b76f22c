package csvio

import "strings"

// Render builds CSV text from a header row and data rows, quoting any value
// that contains a comma, quote, or newline. Parse(Render(h, rows)) reproduces
// the same headers and values.
func Render(headers []string, rows [][]string) string {
	var b strings.Builder
	writeRecord(&b, headers)
	for _, row := range rows {
		writeRecord(&b, row)
	}
	return b.String()
}

func writeRecord(b *strings.Builder, rec []string) {
	for i, v := range rec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(v))
	}
	b.WriteString("\r\n")
}

// quote wraps a value in double quotes when it contains a character that
// would otherwise break the record, doubling embedded quotes per RFC 4180.
func quote(v string) string {
	if !strings.ContainsAny(v, ",\"\n\r") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
