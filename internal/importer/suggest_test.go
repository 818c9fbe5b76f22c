package importer

import "testing"

func suggestionFor(suggestions []MappingSuggestion, header string) (MappingSuggestion, bool) {
	for _, s := range suggestions {
		if s.CSVHeader == header {
			return s, true
		}
	}
	return MappingSuggestion{}, false
}

func TestSuggestMapping_ExactAndAlias(t *testing.T) {
	headers := []string{"first_name", "Surname", "DOB", "Sex"}
	suggestions, ok := SuggestMapping(TypeStudents, headers)
	if !ok {
		t.Fatal("SuggestMapping() unknown type")
	}

	tests := []struct {
		header     string
		wantField  string
		confidence float64
	}{
		{"first_name", "first_name", 1.0},
		{"Surname", "last_name", 0.95},
		{"DOB", "date_of_birth", 0.95},
		{"Sex", "gender", 0.95},
	}
	for _, tt := range tests {
		s, found := suggestionFor(suggestions, tt.header)
		if !found {
			t.Errorf("no suggestion for %q", tt.header)
			continue
		}
		if s.TargetField != tt.wantField {
			t.Errorf("%q mapped to %q, want %q", tt.header, s.TargetField, tt.wantField)
		}
		if s.Confidence != tt.confidence {
			t.Errorf("%q confidence = %v, want %v", tt.header, s.Confidence, tt.confidence)
		}
	}
}

func TestSuggestMapping_LabelAndSeparators(t *testing.T) {
	suggestions, _ := SuggestMapping(TypeStudents, []string{"First Name", "LAST-NAME"})

	if s, ok := suggestionFor(suggestions, "First Name"); !ok || s.TargetField != "first_name" {
		t.Errorf("First Name -> %v", s)
	}
	if s, ok := suggestionFor(suggestions, "LAST-NAME"); !ok || s.TargetField != "last_name" {
		t.Errorf("LAST-NAME -> %v", s)
	}
}

func TestSuggestMapping_NoDoubleAssignment(t *testing.T) {
	// Two headers competing for the same field: only one wins.
	suggestions, _ := SuggestMapping(TypeStudents, []string{"email", "Email Address"})

	fields := make(map[string]int)
	for _, s := range suggestions {
		fields[s.TargetField]++
	}
	if fields["email"] > 1 {
		t.Errorf("field email claimed %d times", fields["email"])
	}
}

func TestSuggestMapping_TieBreakFavorsEarlierHeader(t *testing.T) {
	suggestions, _ := SuggestMapping(TypeStudents, []string{"email", "Email Address"})

	s, ok := suggestionFor(suggestions, "email")
	if !ok || s.TargetField != "email" || s.Confidence != 1.0 {
		t.Errorf("earlier exact header should claim the field, got %v", s)
	}
}

func TestSuggestMapping_SortedByConfidence(t *testing.T) {
	// The exact key match outranks the alias match even though its header
	// comes later in the file.
	suggestions, _ := SuggestMapping(TypeStudents, []string{"Surname", "first_name"})
	if len(suggestions) != 2 {
		t.Fatalf("suggestions = %d, want 2", len(suggestions))
	}
	if suggestions[0].CSVHeader != "first_name" {
		t.Errorf("first suggestion = %q, want the 1.0-confidence match first", suggestions[0].CSVHeader)
	}
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].Confidence > suggestions[i-1].Confidence {
			t.Errorf("suggestions not in descending confidence order: %v", suggestions)
		}
	}
}

func TestSuggestMapping_BelowThresholdDropped(t *testing.T) {
	suggestions, _ := SuggestMapping(TypeStudents, []string{"zzz_unrelated_column"})
	if s, ok := suggestionFor(suggestions, "zzz_unrelated_column"); ok {
		t.Errorf("unrelated header should have no suggestion, got %v", s)
	}
}

func TestSuggestMapping_UnknownType(t *testing.T) {
	if _, ok := SuggestMapping(ImportType("books"), []string{"title"}); ok {
		t.Error("SuggestMapping() should report unknown type")
	}
}
