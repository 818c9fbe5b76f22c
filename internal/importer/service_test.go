package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/brightclass/dataimport/internal/csvio"
)

func newTestService(store *memStore) *Service {
	return NewService(store, discardLogger())
}

func TestService_Template(t *testing.T) {
	svc := newTestService(newMemStore())

	fileName, content, err := svc.Template(TypeStudents)
	if err != nil {
		t.Fatalf("Template() error = %v", err)
	}
	if fileName != "students_template.csv" {
		t.Errorf("fileName = %q", fileName)
	}

	parsed, err := csvio.Parse(content)
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	if len(parsed.Rows) != 1 {
		t.Errorf("template rows = %d, want 1 example row", len(parsed.Rows))
	}
	if parsed.Headers[0] != "First Name" {
		t.Errorf("template headers use labels, got %q", parsed.Headers[0])
	}

	// Template headers must map cleanly back onto the field registry.
	suggestions, _ := SuggestMapping(TypeStudents, parsed.Headers)
	if len(suggestions) != len(parsed.Headers) {
		t.Errorf("only %d of %d template headers map back", len(suggestions), len(parsed.Headers))
	}

	if _, _, err := svc.Template(ImportType("books")); err == nil {
		t.Error("Template(unknown) should fail")
	}
}

func TestService_Types(t *testing.T) {
	infos := newTestService(newMemStore()).Types()
	if len(infos) != len(allTypes) {
		t.Fatalf("Types() = %d, want %d", len(infos), len(allTypes))
	}
	if infos[0].Type != TypeStudents {
		t.Errorf("registration order not preserved: first type is %s", infos[0].Type)
	}
	for _, info := range infos {
		if info.Label == "" || len(info.Fields) == 0 {
			t.Errorf("incomplete type info: %+v", info.Type)
		}
	}
}

func TestService_ValidateCSVUsesSnapshot(t *testing.T) {
	store := newMemStore()
	store.addStudent("Emma", "Johnson")
	svc := newTestService(store)

	parsed := &csvio.ParsedCSV{
		Headers: []string{"First", "Last"},
		Rows:    []map[string]string{{"First": "Emma", "Last": "Johnson"}},
	}
	mapping := ColumnMapping{"First": "first_name", "Last": "last_name"}

	result, err := svc.ValidateCSV(context.Background(), "tenant-1", TypeStudents, parsed, mapping)
	if err != nil {
		t.Fatalf("ValidateCSV() error = %v", err)
	}
	if !result.Rows[0].IsDuplicate {
		t.Error("existing student from snapshot not flagged as duplicate")
	}
}

func TestService_JobDetailNotFound(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.Job(context.Background(), "tenant-1", "missing")
	if err == nil || !strings.Contains(MapError(err).Code, "not_found") {
		t.Errorf("Job(missing) error = %v, want not found", err)
	}
}
