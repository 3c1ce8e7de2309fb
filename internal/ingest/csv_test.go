package ingest

import (
	"strings"
	"testing"

	"statflow/internal/errors"
)

func TestParse_CommaDelimited(t *testing.T) {
	table, err := Parse("name,age\nAlice,30\nBob,\n")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(table.Headers) != 2 || table.Headers[0] != "name" || table.Headers[1] != "age" {
		t.Fatalf("Expected headers [name age], got %v", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[1][1] != "" {
		t.Errorf("Missing cell should stay empty, got %q", table.Rows[1][1])
	}
}

// TestParse_SemicolonSniffing verifies ';' in the header line switches the
// delimiter for the whole file
func TestParse_SemicolonSniffing(t *testing.T) {
	table, err := Parse("name;score\nAlice;1,5\nBob;2,0\n")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(table.Headers) != 2 {
		t.Fatalf("Expected 2 headers, got %v", table.Headers)
	}
	// Comma is a decimal separator here, not a field separator
	if table.Rows[0][1] != "1,5" {
		t.Errorf("Expected value '1,5' kept intact, got %q", table.Rows[0][1])
	}
}

func TestParse_QuoteStripping(t *testing.T) {
	table, err := Parse("\"name\",'city'\n\"Alice\",'Oslo'\n")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if table.Headers[0] != "name" || table.Headers[1] != "city" {
		t.Errorf("Quotes should be stripped from headers, got %v", table.Headers)
	}
	if table.Rows[0][0] != "Alice" || table.Rows[0][1] != "Oslo" {
		t.Errorf("Quotes should be stripped from values, got %v", table.Rows[0])
	}
}

func TestParse_SingleQuoteLayer(t *testing.T) {
	// Only one layer of quotes is removed
	if got := cleanValue(`""double""`); got != `"double"` {
		t.Errorf("Expected one quote layer stripped, got %q", got)
	}
	if got := cleanValue(` " padded " `); got != "padded" {
		t.Errorf("Expected trimmed unquoted value, got %q", got)
	}
}

func TestParse_RowPadding(t *testing.T) {
	table, err := Parse("a,b,c\n1,2\n")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(table.Rows[0]) != 3 {
		t.Fatalf("Short row should be padded to header width, got %v", table.Rows[0])
	}
	if table.Rows[0][2] != "" {
		t.Errorf("Padding cells should be empty, got %q", table.Rows[0][2])
	}
}

func TestParse_SkipsBlankLines(t *testing.T) {
	table, err := Parse("a,b\n\n1,2\n\r\n3,4\n")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Errorf("Blank lines should be skipped, got %d rows", len(table.Rows))
	}
}

func TestParse_MalformedInput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"header only", "name,age\n"},
		{"whitespace only", "  \n \n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.raw)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !errors.HasCode(err, errors.CodeMalformedInput) {
				t.Errorf("Expected MALFORMED_INPUT, got %v", err)
			}
		})
	}
}

func TestParse_PreviewRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 10; i++ {
		b.WriteString("1\n")
	}

	table, err := Parse(b.String())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(table.PreviewRows) != PreviewRowCount {
		t.Errorf("Expected %d preview rows, got %d", PreviewRowCount, len(table.PreviewRows))
	}
	if len(table.Rows) != 10 {
		t.Errorf("Preview must not truncate the full row set, got %d", len(table.Rows))
	}
}
