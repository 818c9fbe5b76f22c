package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/brightclass/dataimport/internal/csvio"
)

// dateFormatsHint is appended to date errors so the operator knows what the
// parser accepts.
const dateFormatsHint = "accepted formats: YYYY-MM-DD, DD/MM/YYYY, DD-MM-YYYY, DD.MM.YYYY"

// Validate runs the full validation pass for one import type: project each
// parsed row through the confirmed column mapping, check required fields,
// coerce typed values, apply the type's cross-entity rules, and aggregate
// the summary. Pure: it reads the snapshot and synonyms but touches no
// storage, so the same inputs always produce the same result.
//
// Row numbers are 1-indexed over the parsed data rows and stable through
// execution and job records.
//
// The parser's row ceiling is enforced here too: callers may hand in a
// pre-parsed table that never went through csvio.Parse, and the ceiling is
// the only bound on how long the sequential executor can run.
func Validate(t ImportType, parsed *csvio.ParsedCSV, mapping ColumnMapping, existing *ExistingData, syn Synonyms) (*ValidationResult, error) {
	strategy, ok := StrategyFor(t)
	if !ok {
		return nil, fmt.Errorf("unknown import type: %s", t)
	}
	if len(parsed.Rows) == 0 {
		return nil, fmt.Errorf("no data rows found")
	}
	if len(parsed.Rows) > csvio.MaxDataRows {
		return nil, fmt.Errorf("too many rows: file has %d data rows, the limit is %d", len(parsed.Rows), csvio.MaxDataRows)
	}

	fields := strategy.Fields()
	vc := NewValidationContext(existing, syn, time.Now().UTC())

	result := &ValidationResult{
		Rows: make([]ValidatedRow, 0, len(parsed.Rows)),
		Summary: ValidationSummary{
			TotalRows:     len(parsed.Rows),
			ErrorsByField: make(map[string]int),
		},
	}

	for i, raw := range parsed.Rows {
		row := ValidatedRow{
			RowNumber:  i + 1,
			RawData:    raw,
			MappedData: project(raw, mapping),
			IsValid:    true,
		}

		for _, field := range fields {
			checkField(&row, field, t, vc.Synonyms)
		}
		strategy.ValidateRow(&row, vc)

		if row.IsValid {
			result.Summary.ValidRows++
		} else {
			result.Summary.ErrorRows++
		}
		if len(row.Warnings) > 0 {
			result.Summary.WarningRows++
		}
		if row.IsDuplicate {
			result.Summary.DuplicateRows++
		}
		for _, e := range row.Errors {
			result.Summary.ErrorsByField[e.Field]++
		}

		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// project applies the column mapping to one raw row: every mapped header's
// value lands under its target field key, unmapped headers are dropped.
func project(raw map[string]string, mapping ColumnMapping) map[string]string {
	mapped := make(map[string]string, len(mapping))
	for header, fieldKey := range mapping {
		if fieldKey == "" {
			continue
		}
		mapped[fieldKey] = raw[header]
	}
	return mapped
}

// checkField enforces one field's required flag and coerces its value in
// place. Coercion failures are blocking except for attendance clock times,
// which are dropped with a warning so one bad timestamp never discards the
// day's attendance mark.
func checkField(row *ValidatedRow, field Field, t ImportType, syn Synonyms) {
	value := row.MappedData[field.Key]

	if value == "" {
		if field.Required {
			addError(row, field.Key, fmt.Sprintf("%s is required", field.Label))
		}
		return
	}

	switch field.Type {
	case FieldDate:
		iso, ok := ParseFlexibleDate(value)
		if !ok {
			addError(row, field.Key, fmt.Sprintf("%s must be a valid date (%s)", field.Label, dateFormatsHint))
			return
		}
		row.MappedData[field.Key] = iso

	case FieldEmail:
		email, ok := NormalizeEmail(value)
		if !ok {
			addError(row, field.Key, fmt.Sprintf("%s must be a valid email address", field.Label))
			return
		}
		row.MappedData[field.Key] = email

	case FieldPhone:
		row.MappedData[field.Key] = NormalizePhone(value)

	case FieldEnum:
		table := syn.Enum
		if t == TypeAttendance && field.Key == "status" {
			table = syn.AttendanceStatus
		}
		canonical, ok := NormalizeEnum(value, field.EnumValues, table)
		if !ok {
			addError(row, field.Key,
				fmt.Sprintf("%s must be one of: %s", field.Label, strings.Join(field.EnumValues, ", ")))
			return
		}
		row.MappedData[field.Key] = canonical

	case FieldBoolean:
		b, ok := ParseBool(value)
		if !ok {
			addError(row, field.Key, fmt.Sprintf("%s must be a yes/no value", field.Label))
			return
		}
		row.MappedData[field.Key] = fmt.Sprintf("%t", b)

	case FieldTime:
		clock, ok := ParseClockTime(value)
		if !ok {
			addWarning(row, field.Key,
				fmt.Sprintf("%s value %q could not be parsed and will be ignored", field.Label, value))
			delete(row.MappedData, field.Key)
			return
		}
		row.MappedData[field.Key] = clock
	}
}
