package importer

// fields.go declares the canonical field registry for every import type. The
// field list is the single source of truth consumed by the mapping suggester,
// the validator, the template generator, and the UI: key for storage, label
// for messages, aliases for header matching, type for coercion.

// Enum domains shared between the field registry and the validator.
var (
	genderValues       = []string{"male", "female", "other"}
	studentStatuses    = []string{"active", "inactive", "graduated", "withdrawn"}
	relationshipValues = []string{"mother", "father", "guardian", "grandparent", "sibling", "other"}
	severityValues     = []string{"mild", "moderate", "severe"}
	attendanceStatuses = []string{"present", "absent", "late", "excused", "half_day"}
)

var studentFields = []Field{
	{
		Key: "first_name", Label: "First Name", Required: true, Type: FieldText,
		Description: "Student's given name", Example: "Emma",
		Aliases:     []string{"first name", "firstname", "fname", "given name", "first", "forename"},
	},
	{
		Key: "last_name", Label: "Last Name", Required: true, Type: FieldText,
		Description: "Student's family name", Example: "Johnson",
		Aliases:     []string{"last name", "lastname", "lname", "surname", "family name", "last"},
	},
	{
		Key: "date_of_birth", Label: "Date of Birth", Type: FieldDate,
		Description: "Accepted formats: YYYY-MM-DD, DD/MM/YYYY, DD-MM-YYYY, DD.MM.YYYY",
		Example:     "2015-04-23",
		Aliases:     []string{"dob", "birth date", "birthdate", "date of birth", "born", "birthday"},
	},
	{
		Key: "gender", Label: "Gender", Type: FieldEnum, EnumValues: genderValues,
		Example: "female",
		Aliases: []string{"sex"},
	},
	{
		Key: "email", Label: "Email", Type: FieldEmail,
		Description: "Student's own email address, if any", Example: "emma.johnson@example.com",
		Aliases:     []string{"email address", "e-mail", "mail", "student email"},
	},
	{
		Key: "phone", Label: "Phone", Type: FieldPhone,
		Example: "+15551234567",
		Aliases: []string{"phone number", "mobile", "telephone", "tel", "cell", "contact number"},
	},
	{
		Key: "class_name", Label: "Class", Type: FieldText,
		Description: "Class to enroll the student in; created if it does not exist",
		Example:     "Grade 3A",
		Aliases:     []string{"class", "class name", "grade", "homeroom", "group", "room"},
	},
	{
		Key: "enrollment_date", Label: "Enrollment Date", Type: FieldDate,
		Example: "2024-09-01",
		Aliases: []string{"enrollment date", "enrolment date", "start date", "enrolled on", "date enrolled"},
	},
	{
		Key: "status", Label: "Status", Type: FieldEnum, EnumValues: studentStatuses,
		Example: "active",
		Aliases: []string{"enrollment status", "student status", "state"},
	},
	{
		Key: "address", Label: "Address", Type: FieldText,
		Example: "42 Maple Street",
		Aliases: []string{"home address", "street address", "residential address"},
	},
	{
		Key: "notes", Label: "Notes", Type: FieldText,
		Aliases: []string{"comments", "remarks", "additional notes"},
	},
}

var guardianFields = []Field{
	{
		Key: "student_name", Label: "Student Name", Required: true, Type: FieldText,
		Description: "Full name of an existing student, matched case-insensitively",
		Example:     "Emma Johnson",
		Aliases:     []string{"student", "student name", "child", "child name", "pupil", "student full name"},
	},
	{
		Key: "first_name", Label: "First Name", Required: true, Type: FieldText,
		Example: "Sarah",
		Aliases: []string{"first name", "firstname", "fname", "given name", "guardian first name"},
	},
	{
		Key: "last_name", Label: "Last Name", Required: true, Type: FieldText,
		Example: "Johnson",
		Aliases: []string{"last name", "lastname", "lname", "surname", "guardian last name"},
	},
	{
		Key: "email", Label: "Email", Required: true, Type: FieldEmail,
		Description: "Used to link to an existing account or send an invitation",
		Example:     "sarah.johnson@example.com",
		Aliases:     []string{"email address", "e-mail", "mail", "guardian email", "parent email"},
	},
	{
		Key: "phone", Label: "Phone", Type: FieldPhone,
		Example: "+15551234567",
		Aliases: []string{"phone number", "mobile", "telephone", "tel", "cell"},
	},
	{
		Key: "relationship", Label: "Relationship", Type: FieldEnum, EnumValues: relationshipValues,
		Description: "Relationship to the student", Example: "mother",
		Aliases:     []string{"relation", "relationship to student", "relationship to child"},
	},
	{
		Key: "is_primary", Label: "Primary Contact", Type: FieldBoolean,
		Description: "Whether this guardian is the primary contact", Example: "yes",
		Aliases:     []string{"primary", "primary contact", "is primary", "main contact"},
	},
}

var emergencyContactFields = []Field{
	{
		Key: "student_name", Label: "Student Name", Required: true, Type: FieldText,
		Example: "Emma Johnson",
		Aliases: []string{"student", "student name", "child", "child name", "pupil"},
	},
	{
		Key: "contact_name", Label: "Contact Name", Required: true, Type: FieldText,
		Example: "Robert Johnson",
		Aliases: []string{"name", "contact", "contact name", "full name", "emergency contact"},
	},
	{
		Key: "relationship", Label: "Relationship", Type: FieldText,
		Example: "Uncle",
		Aliases: []string{"relation", "relationship to student"},
	},
	{
		Key: "phone", Label: "Phone", Required: true, Type: FieldPhone,
		Example: "+15559876543",
		Aliases: []string{"phone number", "mobile", "telephone", "tel", "cell", "primary phone"},
	},
	{
		Key: "alternate_phone", Label: "Alternate Phone", Type: FieldPhone,
		Example: "+15550001111",
		Aliases: []string{"alt phone", "secondary phone", "phone 2", "other phone", "alternate phone number"},
	},
	{
		Key: "priority", Label: "Priority", Type: FieldText,
		Description: "Call order when multiple contacts exist", Example: "1",
		Aliases:     []string{"order", "priority order", "rank", "call order"},
	},
}

var medicalConditionFields = []Field{
	{
		Key: "student_name", Label: "Student Name", Required: true, Type: FieldText,
		Example: "Emma Johnson",
		Aliases: []string{"student", "student name", "child", "child name", "pupil"},
	},
	{
		Key: "condition", Label: "Condition", Required: true, Type: FieldText,
		Example: "Peanut allergy",
		Aliases: []string{"condition name", "medical condition", "diagnosis", "allergy", "health condition"},
	},
	{
		Key: "severity", Label: "Severity", Type: FieldEnum, EnumValues: severityValues,
		Example: "severe",
		Aliases: []string{"severity level", "level"},
	},
	{
		Key: "action_plan", Label: "Action Plan", Type: FieldText,
		Description: "What staff should do if the condition presents",
		Example:     "Administer EpiPen, call emergency services",
		Aliases:     []string{"plan", "action", "treatment plan", "emergency plan"},
	},
	{
		Key: "medication", Label: "Medication", Type: FieldText,
		Example: "EpiPen",
		Aliases: []string{"medications", "medicine", "meds"},
	},
	{
		Key: "notes", Label: "Notes", Type: FieldText,
		Aliases: []string{"comments", "remarks"},
	},
}

var staffFields = []Field{
	{
		Key: "first_name", Label: "First Name", Required: true, Type: FieldText,
		Example: "Daniel",
		Aliases: []string{"first name", "firstname", "fname", "given name"},
	},
	{
		Key: "last_name", Label: "Last Name", Required: true, Type: FieldText,
		Example: "Okafor",
		Aliases: []string{"last name", "lastname", "lname", "surname"},
	},
	{
		Key: "email", Label: "Email", Required: true, Type: FieldEmail,
		Description: "Used to link to an existing account or create a new one",
		Example:     "daniel.okafor@school.example",
		Aliases:     []string{"email address", "e-mail", "mail", "work email", "staff email"},
	},
	{
		Key: "role", Label: "Role", Required: true, Type: FieldText,
		Description: "Must match an existing role, matched case-insensitively",
		Example:     "Teacher",
		Aliases:     []string{"position", "job title", "title", "staff role", "job role"},
	},
	{
		Key: "phone", Label: "Phone", Type: FieldPhone,
		Example: "+15552223333",
		Aliases: []string{"phone number", "mobile", "telephone", "tel", "cell"},
	},
	{
		Key: "start_date", Label: "Start Date", Type: FieldDate,
		Example: "2024-08-15",
		Aliases: []string{"hire date", "joined", "employment start", "date joined", "start"},
	},
}

var attendanceFields = []Field{
	{
		Key: "student_name", Label: "Student Name", Required: true, Type: FieldText,
		Example: "Emma Johnson",
		Aliases: []string{"student", "student name", "child", "child name", "pupil"},
	},
	{
		Key: "date", Label: "Date", Required: true, Type: FieldDate,
		Example: "2024-03-15",
		Aliases: []string{"attendance date", "day", "record date"},
	},
	{
		Key: "status", Label: "Status", Required: true, Type: FieldEnum, EnumValues: attendanceStatuses,
		Description: "Accepts common shorthand such as P, A, L, tardy, or half day",
		Example:     "present",
		Aliases:     []string{"attendance", "attendance status", "mark", "presence"},
	},
	{
		Key: "class_name", Label: "Class", Type: FieldText,
		Description: "Existing class the record belongs to", Example: "Grade 3A",
		Aliases:     []string{"class", "class name", "grade", "homeroom", "group"},
	},
	{
		Key: "check_in_time", Label: "Check-in Time", Type: FieldTime,
		Example: "08:45",
		Aliases: []string{"check in", "check-in", "time in", "arrival", "arrival time", "checkin"},
	},
	{
		Key: "check_out_time", Label: "Check-out Time", Type: FieldTime,
		Example: "15:30",
		Aliases: []string{"check out", "check-out", "time out", "departure", "departure time", "checkout"},
	},
	{
		Key: "notes", Label: "Notes", Type: FieldText,
		Aliases: []string{"comments", "remarks", "reason"},
	},
}
