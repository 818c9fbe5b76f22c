package importer

// Synonyms holds the lookup tables used to normalize enum values. The tables
// are immutable values injected into the validator so it stays a pure
// function; DefaultSynonyms returns the stock tables.
type Synonyms struct {
	// Enum maps lowercase source values to canonical enum members for every
	// enum field except attendance status.
	Enum map[string]string
	// AttendanceStatus is the dedicated, larger table for the attendance
	// status field: symbols, single letters, and phrasing variants.
	AttendanceStatus map[string]string
}

// DefaultSynonyms returns the stock normalization tables. Every target value
// is a member of some registered enum domain; the registry test enforces
// that closure.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		Enum: map[string]string{
			// relationship
			"mum":         "mother",
			"mom":         "mother",
			"mummy":       "mother",
			"dad":         "father",
			"daddy":       "father",
			"papa":        "father",
			"grandma":     "grandparent",
			"grandmother": "grandparent",
			"grandpa":     "grandparent",
			"grandfather": "grandparent",
			"carer":       "guardian",
			"caregiver":   "guardian",

			// gender
			"m": "male",
			"f": "female",

			// student status
			"enrolled":  "active",
			"enroled":   "active",
			"current":   "active",
			"left":      "withdrawn",
			"exited":    "withdrawn",
			"graduate":  "graduated",
			"alumni":    "graduated",
			"suspended": "inactive",

			// severity
			"low":    "mild",
			"minor":  "mild",
			"medium": "moderate",
			"high":   "severe",
			"severe": "severe",
		},
		AttendanceStatus: map[string]string{
			"p":        "present",
			"pres":     "present",
			"here":     "present",
			"attended": "present",
			"✓":        "present",
			"✔":        "present",
			"a":        "absent",
			"abs":      "absent",
			"away":     "absent",
			"x":        "absent",
			"✗":        "absent",
			"✘":        "absent",
			"l":        "late",
			"t":        "late",
			"tardy":    "late",
			"delayed":  "late",
			"e":        "excused",
			"exc":      "excused",
			"excused absence": "excused",
			"h":         "half_day",
			"half":      "half_day",
			"half day":  "half_day",
			"half-day":  "half_day",
			"halfday":   "half_day",
			"am only":   "half_day",
			"pm only":   "half_day",
		},
	}
}
