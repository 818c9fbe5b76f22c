package importer

// coerce.go provides type coercion for mapped CSV values.
//
// These functions handle the messy reality of spreadsheet exports: regional
// date formats, phone punctuation, yes/no booleans, 12-hour clock times.
// Each returns a normalized value plus an ok flag; callers decide whether a
// failed coercion is a blocking error (date, email, enum, boolean) or a
// warning (attendance times). Phone numbers are normalized but never
// rejected.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Calendar bounds accepted by ParseFlexibleDate.
const (
	minDateYear = 1900
	maxDateYear = 2100
)

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// ParseFlexibleDate parses a date in one of the accepted regional formats and
// normalizes it to ISO YYYY-MM-DD. Slash dates are tried day-first, then
// month-first when the day-first read is not a real calendar date. The
// function is idempotent: feeding its output back yields the same value.
func ParseFlexibleDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	// ISO: YYYY-MM-DD
	if y, m, d, ok := splitDate(s, "-"); ok && len(strings.SplitN(s, "-", 2)[0]) == 4 {
		if validDate(y, m, d) {
			return isoDate(y, m, d), true
		}
		return "", false
	}

	// DD/MM/YYYY, falling back to MM/DD/YYYY when day-first is invalid.
	if d, m, y, ok := splitDate(s, "/"); ok {
		if validDate(y, m, d) {
			return isoDate(y, m, d), true
		}
		if validDate(y, d, m) {
			return isoDate(y, d, m), true
		}
		return "", false
	}

	// DD-MM-YYYY and DD.MM.YYYY are strictly day-first.
	for _, sep := range []string{"-", "."} {
		if d, m, y, ok := splitDate(s, sep); ok && validDate(y, m, d) {
			return isoDate(y, m, d), true
		}
	}

	return "", false
}

// splitDate splits s on sep into three integer parts, returned in source
// order. ok is false unless exactly three numeric parts are present.
func splitDate(s, sep string) (int, int, int, bool) {
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], true
}

// validDate reports whether year/month/day form a real calendar date within
// the accepted year range, including leap-year handling.
func validDate(year, month, day int) bool {
	if year < minDateYear || year > maxDateYear {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= daysInMonth(year, month)
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	}
}

func isoDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// NormalizeEmail lowercases and trims an email address and checks it has a
// local@domain.tld shape.
func NormalizeEmail(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !emailRegex.MatchString(s) {
		return "", false
	}
	return s, true
}

// ParseBool maps common truthy/falsy spellings. The empty string is false,
// so optional boolean columns default off.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "y", "on":
		return true, true
	case "no", "false", "0", "n", "off", "":
		return false, true
	default:
		return false, false
	}
}

// NormalizePhone strips spaces, dashes, and parentheses. Phone values are
// never rejected.
func NormalizePhone(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return r.Replace(strings.TrimSpace(s))
}

// ParseClockTime parses a wall-clock time ("9:30", "14:05", "09:30:00",
// "2:15 PM") and normalizes it to 24-hour HH:MM.
func ParseClockTime(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}

	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", false
	}
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return "", false
		}
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return "", false
		}
	}
	if minute < 0 || minute > 59 {
		return "", false
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// CombineDateTime anchors a normalized HH:MM clock time to an ISO date,
// producing a UTC timestamp.
func CombineDateTime(isoDate, clock string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", isoDate+" "+clock)
}

// NormalizeEnum resolves a source value against an enum domain: exact match,
// then case-insensitive match, then the synonym table. A synonym target that
// is not itself in the domain does not match.
func NormalizeEnum(value string, allowed []string, synonyms map[string]string) (string, bool) {
	for _, a := range allowed {
		if value == a {
			return a, true
		}
	}
	lower := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if lower == strings.ToLower(a) {
			return a, true
		}
	}
	if target, ok := synonyms[lower]; ok {
		for _, a := range allowed {
			if target == a {
				return a, true
			}
		}
	}
	return "", false
}
