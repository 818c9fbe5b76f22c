package importer

import (
	"sort"
	"strings"
)

// minSuggestConfidence is the floor below which a header/field pair is not
// proposed at all.
const minSuggestConfidence = 0.4

// SuggestMapping proposes a column mapping for the given headers against an
// import type's field registry. Assignment is greedy: pairs are scored,
// sorted by descending confidence, and claimed first-come, so each header
// maps to at most one field and each field is claimed by at most one header.
// On tied confidence the earlier header (then the earlier field) wins; a
// later header with an equal score loses the field even when it is arguably
// the better match. The returned list keeps the descending-confidence order.
// The user confirms or overrides every suggestion, so the tie-break only
// affects the starting point.
func SuggestMapping(t ImportType, headers []string) ([]MappingSuggestion, bool) {
	fields, ok := FieldsFor(t)
	if !ok {
		return nil, false
	}

	type candidate struct {
		headerIdx int
		fieldIdx  int
		score     float64
	}

	var candidates []candidate
	for hi, header := range headers {
		for fi, field := range fields {
			score := matchScore(header, field)
			if score >= minSuggestConfidence {
				candidates = append(candidates, candidate{headerIdx: hi, fieldIdx: fi, score: score})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	usedHeader := make(map[int]bool, len(headers))
	usedField := make(map[int]bool, len(fields))

	var suggestions []MappingSuggestion
	for _, c := range candidates {
		if usedHeader[c.headerIdx] || usedField[c.fieldIdx] {
			continue
		}
		usedHeader[c.headerIdx] = true
		usedField[c.fieldIdx] = true
		suggestions = append(suggestions, MappingSuggestion{
			CSVHeader:   headers[c.headerIdx],
			TargetField: fields[c.fieldIdx].Key,
			Confidence:  c.score,
		})
	}
	return suggestions, true
}

// matchScore scores one header against one field. Exact key match is full
// confidence; alias and label matches rank just below; otherwise a substring
// containment score proportional to the length ratio, capped at 0.85 so a
// containment never outranks a declared alias.
func matchScore(header string, field Field) float64 {
	h := normalizeHeader(header)
	if h == "" {
		return 0
	}

	if h == normalizeHeader(field.Key) {
		return 1.0
	}
	for _, alias := range field.Aliases {
		if h == normalizeHeader(alias) {
			return 0.95
		}
	}
	if h == normalizeHeader(field.Label) {
		return 0.9
	}

	best := 0.0
	for _, target := range append([]string{field.Key, field.Label}, field.Aliases...) {
		t := normalizeHeader(target)
		if t == "" {
			continue
		}
		if strings.Contains(h, t) || strings.Contains(t, h) {
			shorter, longer := len(h), len(t)
			if shorter > longer {
				shorter, longer = longer, shorter
			}
			if score := float64(shorter) / float64(longer) * 0.85; score > best {
				best = score
			}
		}
	}
	return best
}

// normalizeHeader lowercases and collapses separators so "First_Name",
// "first-name", and "First Name" all compare equal.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sep := range []string{"_", "-", ".", "  "} {
		s = strings.ReplaceAll(s, sep, " ")
	}
	return strings.Join(strings.Fields(s), " ")
}
