package importer

import (
	"strings"
	"testing"

	"github.com/brightclass/dataimport/internal/csvio"
)

func studentCSV(rows ...map[string]string) *csvio.ParsedCSV {
	return &csvio.ParsedCSV{
		Headers: []string{"First", "Last", "Born", "Class"},
		Rows:    rows,
	}
}

var studentMapping = ColumnMapping{
	"First": "first_name",
	"Last":  "last_name",
	"Born":  "date_of_birth",
	"Class": "class_name",
}

func hasError(row ValidatedRow, field, substr string) bool {
	for _, e := range row.Errors {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func hasWarning(row ValidatedRow, field, substr string) bool {
	for _, w := range row.Warnings {
		if w.Field == field && strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidate_PreparsedRowCeiling(t *testing.T) {
	rows := make([]map[string]string, csvio.MaxDataRows+1)
	for i := range rows {
		rows[i] = map[string]string{"First": "Emma", "Last": "Johnson"}
	}
	parsed := &csvio.ParsedCSV{Headers: []string{"First", "Last"}, Rows: rows}

	_, err := Validate(TypeStudents, parsed, studentMapping, nil, DefaultSynonyms())
	if err == nil {
		t.Fatal("a pre-parsed table over the row ceiling must be rejected")
	}
	if got := MapError(err).Code; got != "too_many_rows" {
		t.Errorf("error code = %q, want too_many_rows: %v", got, err)
	}
}

func TestValidate_PreparsedEmpty(t *testing.T) {
	parsed := &csvio.ParsedCSV{Headers: []string{"First", "Last"}}
	_, err := Validate(TypeStudents, parsed, studentMapping, nil, DefaultSynonyms())
	if err == nil || MapError(err).Code != "no_data_rows" {
		t.Errorf("Validate() of empty table = %v, want no-data-rows error", err)
	}
}

func TestValidate_RequiredFieldMissing(t *testing.T) {
	parsed := studentCSV(map[string]string{"First": "Emma", "Last": "", "Born": "2015-04-23"})

	result, err := Validate(TypeStudents, parsed, studentMapping, nil, DefaultSynonyms())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	row := result.Rows[0]
	if row.IsValid {
		t.Error("row with blank last name should be invalid")
	}
	if !hasError(row, "last_name", "Last Name is required") {
		t.Errorf("want 'Last Name is required' error, got %v", row.Errors)
	}
	if result.Summary.ErrorRows != 1 || result.Summary.ValidRows != 0 {
		t.Errorf("summary = %+v", result.Summary)
	}
	if result.Summary.ErrorsByField["last_name"] != 1 {
		t.Errorf("ErrorsByField = %v", result.Summary.ErrorsByField)
	}
}

func TestValidate_DateCoercion(t *testing.T) {
	parsed := studentCSV(
		map[string]string{"First": "Emma", "Last": "Johnson", "Born": "23/04/2015"},
		map[string]string{"First": "Liam", "Last": "Smith", "Born": "not a date"},
	)

	result, err := Validate(TypeStudents, parsed, studentMapping, nil, DefaultSynonyms())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if got := result.Rows[0].MappedData["date_of_birth"]; got != "2015-04-23" {
		t.Errorf("date not normalized: %q", got)
	}
	if result.Rows[1].IsValid {
		t.Error("unparseable date should block the row")
	}
	if !hasError(result.Rows[1], "date_of_birth", "valid date") {
		t.Errorf("want date error, got %v", result.Rows[1].Errors)
	}
}

func TestValidate_UnmappedHeadersDropped(t *testing.T) {
	parsed := &csvio.ParsedCSV{
		Headers: []string{"First", "Last", "Internal ID"},
		Rows:    []map[string]string{{"First": "Emma", "Last": "Johnson", "Internal ID": "X9"}},
	}
	mapping := ColumnMapping{"First": "first_name", "Last": "last_name"}

	result, err := Validate(TypeStudents, parsed, mapping, nil, DefaultSynonyms())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	row := result.Rows[0]
	if _, ok := row.MappedData["Internal ID"]; ok {
		t.Error("unmapped header leaked into MappedData")
	}
	if row.RawData["Internal ID"] != "X9" {
		t.Error("RawData should keep the original row untouched")
	}
}

func TestValidate_StudentDuplicates(t *testing.T) {
	existing := &ExistingData{
		StudentNames: map[string]string{"emma johnson": "stu-1"},
	}
	parsed := studentCSV(
		map[string]string{"First": "Emma", "Last": "Johnson"},
		map[string]string{"First": "emma", "Last": "JOHNSON"},
	)

	result, err := Validate(TypeStudents, parsed, studentMapping, existing, DefaultSynonyms())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// Both rows collide with the existing student: warning + duplicate flag,
	// never a blocking error.
	for i, row := range result.Rows {
		if !row.IsValid {
			t.Errorf("row %d: duplicate must not block", i)
		}
		if !row.IsDuplicate {
			t.Errorf("row %d: IsDuplicate not set", i)
		}
		if !hasWarning(row, "first_name", "already exists") {
			t.Errorf("row %d: want already-exists warning, got %v", i, row.Warnings)
		}
	}

	// The second row additionally duplicates the first within the file.
	if !hasWarning(result.Rows[1], "first_name", "row 1 of this file") {
		t.Errorf("want in-file duplicate warning, got %v", result.Rows[1].Warnings)
	}
	if result.Summary.DuplicateRows != 2 {
		t.Errorf("DuplicateRows = %d, want 2", result.Summary.DuplicateRows)
	}
}

func TestValidate_StudentUnknownClassWarns(t *testing.T) {
	parsed := studentCSV(map[string]string{"First": "Emma", "Last": "Johnson", "Class": "Grade 9Z"})

	result, err := Validate(TypeStudents, parsed, studentMapping, &ExistingData{}, DefaultSynonyms())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	row := result.Rows[0]
	if !row.IsValid {
		t.Error("unknown class must not block a student row")
	}
	if !hasWarning(row, "class_name", "will be created") {
		t.Errorf("want will-be-created warning, got %v", row.Warnings)
	}
}

func TestValidate_GuardianMissingStudentBlocks(t *testing.T) {
	parsed := &csvio.ParsedCSV{
		Headers: []string{"Student", "First", "Last", "Email", "Rel"},
		Rows: []map[string]string{{
			"Student": "Ghost Child", "First": "Sarah", "Last": "Johnson",
			"Email": "sarah@example.com", "Rel": "Mum",
		}},
	}
	mapping := ColumnMapping{
		"Student": "student_name", "First": "first_name", "Last": "last_name",
		"Email": "email", "Rel": "relationship",
	}

	result, err := Validate(TypeGuardians, parsed, mapping, &ExistingData{}, DefaultSynonyms())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	row := result.Rows[0]
	if row.IsValid {
		t.Error("guardian referencing a missing student must be blocked")
	}
	if !hasError(row, "student_name", `"Ghost Child" was not found`) {
		t.Errorf("want student-not-found error, got %v", row.Errors)
	}
	// Relationship synonym still normalized on the failing row.
	if got := row.MappedData["relationship"]; got != "mother" {
		t.Errorf("relationship = %q, want mother", got)
	}
}

func TestValidate_GuardianExistingEmailWarns(t *testing.T) {
	existing := &ExistingData{
		StudentNames:   map[string]string{"emma johnson": "stu-1"},
		GuardianEmails: map[string]string{"sarah@example.com": "user-1"},
	}
	parsed := &csvio.ParsedCSV{
		Headers: []string{"Student", "First", "Last", "Email"},
		Rows: []map[string]string{{
			"Student": "Emma Johnson", "First": "Sarah", "Last": "Johnson",
			"Email": "Sarah@Example.com",
		}},
	}
	mapping := ColumnMapping{
		"Student": "student_name", "First": "first_name", "Last": "last_name", "Email": "email",
	}

	result, err := Validate(TypeGuardians, parsed, mapping, existing, DefaultSynonyms())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	row := result.Rows[0]
	if !row.IsValid {
		t.Errorf("existing email is a warning, not an error: %v", row.Errors)
	}
	if !hasWarning(row, "email", "linked to it") {
		t.Errorf("want link-to-existing warning, got %v", row.Warnings)
	}
}

func TestValidate_StaffUnknownRoleBlocks(t *testing.T) {
	existing := &ExistingData{
		Roles: map[string]string{"teacher": "role-1", "admin": "role-2"},
	}
	parsed := &csvio.ParsedCSV{
		Headers: []string{"First", "Last", "Email", "Role"},
		Rows: []map[string]string{{
			"First": "Daniel", "Last": "Okafor", "Email": "d@school.example", "Role": "Janitor",
		}},
	}
	mapping := ColumnMapping{
		"First": "first_name", "Last": "last_name", "Email": "email", "Role": "role",
	}

	result, err := Validate(TypeStaff, parsed, mapping, existing, DefaultSynonyms())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	row := result.Rows[0]
	if row.IsValid {
		t.Error("unknown role must block a staff row")
	}
	if !hasError(row, "role", "available roles: admin, teacher") {
		t.Errorf("want available-roles listing, got %v", row.Errors)
	}
}

func TestValidate_StaffCaseInsensitiveRole(t *testing.T) {
	existing := &ExistingData{Roles: map[string]string{"teacher": "role-1"}}
	parsed := &csvio.ParsedCSV{
		Headers: []string{"First", "Last", "Email", "Role"},
		Rows: []map[string]string{{
			"First": "Daniel", "Last": "Okafor", "Email": "d@school.example", "Role": "TEACHER",
		}},
	}
	mapping := ColumnMapping{
		"First": "first_name", "Last": "last_name", "Email": "email", "Role": "role",
	}

	result, err := Validate(TypeStaff, parsed, mapping, existing, DefaultSynonyms())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !result.Rows[0].IsValid {
		t.Errorf("role match must be case-insensitive: %v", result.Rows[0].Errors)
	}
}

func attendanceParsed(rows ...map[string]string) (*csvio.ParsedCSV, ColumnMapping) {
	parsed := &csvio.ParsedCSV{
		Headers: []string{"Student", "Date", "Status", "In", "Out"},
		Rows:    rows,
	}
	mapping := ColumnMapping{
		"Student": "student_name", "Date": "date", "Status": "status",
		"In": "check_in_time", "Out": "check_out_time",
	}
	return parsed, mapping
}

func TestValidate_AttendanceStatusSynonyms(t *testing.T) {
	existing := &ExistingData{StudentNames: map[string]string{"emma johnson": "stu-1"}}

	tests := []struct {
		input string
		want  string
	}{
		{"P", "present"}, {"✓", "present"}, {"a", "absent"}, {"x", "absent"},
		{"tardy", "late"}, {"Half Day", "half_day"}, {"am only", "half_day"},
		{"present", "present"},
	}
	for _, tt := range tests {
		parsed, mapping := attendanceParsed(map[string]string{
			"Student": "Emma Johnson", "Date": "2024-03-15", "Status": tt.input,
		})
		result, err := Validate(TypeAttendance, parsed, mapping, existing, DefaultSynonyms())
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if got := result.Rows[0].MappedData["status"]; got != tt.want {
			t.Errorf("status %q normalized to %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidate_AttendanceBadTimeWarnsAndDrops(t *testing.T) {
	existing := &ExistingData{StudentNames: map[string]string{"emma johnson": "stu-1"}}
	parsed, mapping := attendanceParsed(map[string]string{
		"Student": "Emma Johnson", "Date": "2024-03-15", "Status": "present",
		"In": "around nine", "Out": "15:30",
	})

	result, err := Validate(TypeAttendance, parsed, mapping, existing, DefaultSynonyms())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	row := result.Rows[0]
	if !row.IsValid {
		t.Errorf("bad clock time must not block the row: %v", row.Errors)
	}
	if _, ok := row.MappedData["check_in_time"]; ok {
		t.Error("unparseable check-in should be dropped from MappedData")
	}
	if got := row.MappedData["check_out_time"]; got != "15:30" {
		t.Errorf("check_out_time = %q, want 15:30", got)
	}
	if !hasWarning(row, "check_in_time", "ignored") {
		t.Errorf("want ignored warning, got %v", row.Warnings)
	}
}

func TestValidate_AttendanceDuplicateKeys(t *testing.T) {
	existing := &ExistingData{
		StudentNames:   map[string]string{"emma johnson": "stu-1"},
		AttendanceKeys: map[string]bool{"emma johnson|2024-03-14": true},
	}
	parsed, mapping := attendanceParsed(
		map[string]string{"Student": "Emma Johnson", "Date": "2024-03-14", "Status": "present"},
		map[string]string{"Student": "Emma Johnson", "Date": "15/03/2024", "Status": "absent"},
		map[string]string{"Student": "Emma Johnson", "Date": "2024-03-15", "Status": "late"},
	)

	result, err := Validate(TypeAttendance, parsed, mapping, existing, DefaultSynonyms())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// Row 1 collides with an existing record.
	if !result.Rows[0].IsDuplicate || !hasWarning(result.Rows[0], "date", "overwritten") {
		t.Errorf("row 1 should warn about overwriting existing record: %v", result.Rows[0].Warnings)
	}
	// Row 3 duplicates row 2 in-file; the key uses the normalized date.
	if !hasWarning(result.Rows[2], "date", "later row will overwrite") {
		t.Errorf("row 3 should warn about in-file duplicate: %v", result.Rows[2].Warnings)
	}
	// All three stay valid: duplicates never block attendance.
	for i, row := range result.Rows {
		if !row.IsValid {
			t.Errorf("row %d should be valid: %v", i+1, row.Errors)
		}
	}
}

func TestValidate_AttendanceFutureDateWarns(t *testing.T) {
	existing := &ExistingData{StudentNames: map[string]string{"emma johnson": "stu-1"}}
	parsed, mapping := attendanceParsed(map[string]string{
		"Student": "Emma Johnson", "Date": "2099-01-01", "Status": "present",
	})

	result, err := Validate(TypeAttendance, parsed, mapping, existing, DefaultSynonyms())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	row := result.Rows[0]
	if !row.IsValid {
		t.Error("future date is a warning, not an error")
	}
	if !hasWarning(row, "date", "future") {
		t.Errorf("want future-date warning, got %v", row.Warnings)
	}
}

func TestValidate_UnknownType(t *testing.T) {
	if _, err := Validate(ImportType("books"), &csvio.ParsedCSV{}, nil, nil, DefaultSynonyms()); err == nil {
		t.Error("Validate() expected error for unknown type")
	}
}
