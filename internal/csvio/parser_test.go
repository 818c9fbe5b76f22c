package csvio

import (
	"fmt"
	"strings"
	"testing"
)

func TestParse_Basic(t *testing.T) {
	parsed, err := Parse("Name,Age\nEmma,7\nLiam,8\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(parsed.Headers) != 2 || parsed.Headers[0] != "Name" || parsed.Headers[1] != "Age" {
		t.Errorf("Headers = %v, want [Name Age]", parsed.Headers)
	}
	if len(parsed.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(parsed.Rows))
	}
	if parsed.Rows[0]["Name"] != "Emma" || parsed.Rows[1]["Age"] != "8" {
		t.Errorf("unexpected row values: %v", parsed.Rows)
	}
}

func TestParse_BOMAndCRLF(t *testing.T) {
	parsed, err := Parse("\uFEFFName,Age\r\nEmma,7\r\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.Headers[0] != "Name" {
		t.Errorf("BOM not stripped: first header = %q", parsed.Headers[0])
	}
}

func TestParse_QuotedFields(t *testing.T) {
	input := `Name,Notes
"Johnson, Emma","said ""hi""
on two lines"
`
	parsed, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	row := parsed.Rows[0]
	if row["Name"] != "Johnson, Emma" {
		t.Errorf("Name = %q, want %q", row["Name"], "Johnson, Emma")
	}
	if row["Notes"] != "said \"hi\"\non two lines" {
		t.Errorf("Notes = %q", row["Notes"])
	}
}

func TestParse_DelimiterDetection(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		header string
		want   string
	}{
		{"comma", "a,b\n1,2\n", "b", "2"},
		{"semicolon", "a;b\n1;2\n", "b", "2"},
		{"tab", "a\tb\n1\t2\n", "b", "2"},
		{"comma wins semicolon tie", "a,b;c\n1,2;3\n", "b;c", "2;3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := parsed.Rows[0][tt.header]; got != tt.want {
				t.Errorf("Rows[0][%s] = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestParse_MissingAndExtraCells(t *testing.T) {
	parsed, err := Parse("a,b,c\n1,2\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.Rows[0]["c"] != "" {
		t.Errorf("missing cell should read as empty, got %q", parsed.Rows[0]["c"])
	}
}

func TestParse_BlankRowsSkipped(t *testing.T) {
	parsed, err := Parse("a,b\n1,2\n\n ,\n3,4\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(parsed.Rows) != 2 {
		t.Errorf("len(Rows) = %d, want 2 (blank rows skipped)", len(parsed.Rows))
	}
}

func TestParse_NoTrailingNewline(t *testing.T) {
	parsed, err := Parse("a,b\n1,2")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(parsed.Rows) != 1 || parsed.Rows[0]["b"] != "2" {
		t.Errorf("trailing row not flushed: %v", parsed.Rows)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty file", "", "empty"},
		{"whitespace only", "  \n\n", "empty"},
		{"header only", "a,b\n", "no data rows"},
		{"duplicate header", "a,a\n1,2\n", "duplicate column header"},
		{"empty header", "a,,c\n1,2,3\n", "column header 2 is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_RowLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("a\n")
	for i := 0; i < MaxDataRows+1; i++ {
		fmt.Fprintf(&b, "%d\n", i)
	}

	_, err := Parse(b.String())
	if err == nil {
		t.Fatal("Parse() expected error for too many rows")
	}
	if !strings.Contains(err.Error(), "too many rows") {
		t.Errorf("error = %q, want too many rows", err)
	}
}

func TestParse_HeaderValuesTrimmed(t *testing.T) {
	parsed, err := Parse(" Name , Age \n Emma , 7 \n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.Headers[0] != "Name" {
		t.Errorf("header not trimmed: %q", parsed.Headers[0])
	}
	if parsed.Rows[0]["Name"] != "Emma" {
		t.Errorf("value not trimmed: %q", parsed.Rows[0]["Name"])
	}
}
