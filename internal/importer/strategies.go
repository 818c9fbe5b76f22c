package importer

// strategies.go implements the per-type import strategies: cross-entity
// validation rules and transactional write behavior for each of the six
// import types. Field-level coercion happens in the validator before
// ValidateRow runs, so MappedData here always carries normalized values.

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// parentInvitationTTL is how long a deferred guardian invitation stays
// redeemable.
const parentInvitationTTL = 30 * 24 * time.Hour

// guardianRoleName is the role granted to guardians linked to an existing
// account.
const guardianRoleName = "parent"

func init() {
	RegisterStrategy(studentStrategy{})
	RegisterStrategy(guardianStrategy{})
	RegisterStrategy(emergencyContactStrategy{})
	RegisterStrategy(medicalConditionStrategy{})
	RegisterStrategy(staffStrategy{})
	RegisterStrategy(attendanceStrategy{})
}

// ValidationContext carries the shared state for one validation pass: the
// point-in-time snapshot of existing records, the synonym tables, and the
// in-file bookkeeping strategies use to detect duplicates within the same
// upload. Seen maps record the first row number a key appeared on.
type ValidationContext struct {
	Existing *ExistingData
	Synonyms Synonyms
	Now      time.Time

	SeenStudentNames   map[string]int
	SeenAttendanceKeys map[string]int
}

// NewValidationContext builds a context for one validation pass.
func NewValidationContext(existing *ExistingData, syn Synonyms, now time.Time) *ValidationContext {
	if existing == nil {
		existing = &ExistingData{}
	}
	return &ValidationContext{
		Existing:           existing,
		Synonyms:           syn,
		Now:                now,
		SeenStudentNames:   make(map[string]int),
		SeenAttendanceKeys: make(map[string]int),
	}
}

// nameKey normalizes a person name for case-insensitive matching.
func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// attendanceKey builds the duplicate key for one attendance record.
func attendanceKey(studentName, isoDate string) string {
	return nameKey(studentName) + "|" + isoDate
}

func addError(row *ValidatedRow, field, message string) {
	row.Errors = append(row.Errors, RowError{Row: row.RowNumber, Field: field, Message: message})
	row.IsValid = false
}

func addWarning(row *ValidatedRow, field, message string) {
	row.Warnings = append(row.Warnings, RowError{Row: row.RowNumber, Field: field, Message: message})
}

// resolveStudent looks up the student a child-record row references,
// rechecking inside the transaction what validation already checked against
// the snapshot.
func resolveStudent(ctx context.Context, rs RowStore, tenantID, studentName string) (string, error) {
	id, err := rs.FindStudentByName(ctx, tenantID, studentName)
	if errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("student %q not found", studentName)
	}
	return id, err
}

// studentStrategy imports student roster rows, optionally creating the named
// class and an enrollment.
type studentStrategy struct{}

func (studentStrategy) Type() ImportType   { return TypeStudents }
func (studentStrategy) Label() string      { return "Students" }
func (studentStrategy) Fields() []Field    { return studentFields }
func (studentStrategy) EntityTable() string { return "students" }

func (studentStrategy) ValidateRow(row *ValidatedRow, vc *ValidationContext) {
	md := row.MappedData
	fullName := strings.TrimSpace(md["first_name"] + " " + md["last_name"])
	key := nameKey(fullName)
	if key == "" {
		return
	}

	if first, seen := vc.SeenStudentNames[key]; seen {
		addWarning(row, "first_name",
			fmt.Sprintf("duplicate name %q also appears on row %d of this file", fullName, first))
	} else {
		vc.SeenStudentNames[key] = row.RowNumber
	}

	if _, exists := vc.Existing.StudentNames[key]; exists {
		addWarning(row, "first_name", fmt.Sprintf("a student named %q already exists", fullName))
		row.IsDuplicate = true
	}

	if class := md["class_name"]; class != "" {
		if _, ok := vc.Existing.ClassNames[strings.ToLower(class)]; !ok {
			addWarning(row, "class_name", fmt.Sprintf("class %q does not exist and will be created", class))
		}
	}
}

func (studentStrategy) Insert(ctx context.Context, rs RowStore, tenantID string, row *ValidatedRow, metadata map[string]string) (WriteResult, error) {
	md := row.MappedData

	status := md["status"]
	if status == "" {
		status = metadata["default_status"]
	}
	if status == "" {
		status = "active"
	}

	studentID, err := rs.InsertStudent(ctx, tenantID, StudentParams{
		FirstName:      md["first_name"],
		LastName:       md["last_name"],
		DateOfBirth:    md["date_of_birth"],
		Gender:         md["gender"],
		Email:          md["email"],
		Phone:          md["phone"],
		EnrollmentDate: md["enrollment_date"],
		Status:         status,
		Address:        md["address"],
		Notes:          md["notes"],
	})
	if err != nil {
		return WriteResult{}, err
	}

	class := md["class_name"]
	if class == "" {
		class = metadata["default_class"]
	}
	if class != "" {
		classID, err := rs.FindOrCreateClass(ctx, tenantID, class)
		if err != nil {
			return WriteResult{}, err
		}
		if err := rs.InsertEnrollment(ctx, tenantID, studentID, classID); err != nil {
			return WriteResult{}, err
		}
	}

	return WriteResult{EntityID: studentID}, nil
}

// guardianStrategy links guardians to students. A guardian whose email
// matches an existing account is linked immediately; otherwise an invitation
// is created and the link is deferred until the invitation is redeemed.
type guardianStrategy struct{}

func (guardianStrategy) Type() ImportType    { return TypeGuardians }
func (guardianStrategy) Label() string       { return "Guardians" }
func (guardianStrategy) Fields() []Field     { return guardianFields }
func (guardianStrategy) EntityTable() string { return "guardians" }

func (guardianStrategy) ValidateRow(row *ValidatedRow, vc *ValidationContext) {
	md := row.MappedData

	if name := md["student_name"]; name != "" {
		if _, ok := vc.Existing.StudentNames[nameKey(name)]; !ok {
			addError(row, "student_name", fmt.Sprintf("student %q was not found", name))
		}
	}

	if email := md["email"]; email != "" {
		if _, ok := vc.Existing.GuardianEmails[strings.ToLower(email)]; ok {
			addWarning(row, "email",
				fmt.Sprintf("an account with email %q already exists; the guardian will be linked to it", email))
		}
	}
}

func (guardianStrategy) Insert(ctx context.Context, rs RowStore, tenantID string, row *ValidatedRow, metadata map[string]string) (WriteResult, error) {
	md := row.MappedData

	studentID, err := resolveStudent(ctx, rs, tenantID, md["student_name"])
	if err != nil {
		return WriteResult{}, err
	}

	relationship := md["relationship"]
	if relationship == "" {
		relationship = "guardian"
	}
	isPrimary, _ := ParseBool(md["is_primary"])

	userID, err := rs.FindUserByEmail(ctx, md["email"])
	switch {
	case err == nil:
		linkID, err := rs.UpsertGuardianLink(ctx, tenantID, userID, studentID, relationship, isPrimary)
		if err != nil {
			return WriteResult{}, err
		}
		roleID, err := rs.FindRoleByName(ctx, tenantID, guardianRoleName)
		if err == nil {
			if _, _, err := rs.EnsureMembership(ctx, tenantID, userID, roleID); err != nil {
				return WriteResult{}, err
			}
		} else if !errors.Is(err, ErrNotFound) {
			return WriteResult{}, err
		}
		return WriteResult{EntityID: linkID}, nil

	case errors.Is(err, ErrNotFound):
		invitationID, err := rs.CreateInvitation(ctx, tenantID, InvitationParams{
			Email:        md["email"],
			Role:         guardianRoleName,
			StudentID:    studentID,
			Relationship: relationship,
			ExpiresAt:    time.Now().UTC().Add(parentInvitationTTL),
		})
		if err != nil {
			return WriteResult{}, err
		}
		return WriteResult{Deferred: true, InvitationID: invitationID}, nil

	default:
		return WriteResult{}, err
	}
}

// emergencyContactStrategy imports emergency contacts for existing students.
type emergencyContactStrategy struct{}

func (emergencyContactStrategy) Type() ImportType    { return TypeEmergencyContacts }
func (emergencyContactStrategy) Label() string       { return "Emergency Contacts" }
func (emergencyContactStrategy) Fields() []Field     { return emergencyContactFields }
func (emergencyContactStrategy) EntityTable() string { return "emergency_contacts" }

func (emergencyContactStrategy) ValidateRow(row *ValidatedRow, vc *ValidationContext) {
	if name := row.MappedData["student_name"]; name != "" {
		if _, ok := vc.Existing.StudentNames[nameKey(name)]; !ok {
			addError(row, "student_name", fmt.Sprintf("student %q was not found", name))
		}
	}
}

func (emergencyContactStrategy) Insert(ctx context.Context, rs RowStore, tenantID string, row *ValidatedRow, metadata map[string]string) (WriteResult, error) {
	md := row.MappedData

	studentID, err := resolveStudent(ctx, rs, tenantID, md["student_name"])
	if err != nil {
		return WriteResult{}, err
	}

	id, err := rs.InsertEmergencyContact(ctx, tenantID, EmergencyContactParams{
		StudentID:      studentID,
		Name:           md["contact_name"],
		Relationship:   md["relationship"],
		Phone:          md["phone"],
		AlternatePhone: md["alternate_phone"],
		Priority:       md["priority"],
	})
	if err != nil {
		return WriteResult{}, err
	}
	return WriteResult{EntityID: id}, nil
}

// medicalConditionStrategy imports medical conditions for existing students.
type medicalConditionStrategy struct{}

func (medicalConditionStrategy) Type() ImportType    { return TypeMedicalConditions }
func (medicalConditionStrategy) Label() string       { return "Medical Conditions" }
func (medicalConditionStrategy) Fields() []Field     { return medicalConditionFields }
func (medicalConditionStrategy) EntityTable() string { return "medical_conditions" }

func (medicalConditionStrategy) ValidateRow(row *ValidatedRow, vc *ValidationContext) {
	if name := row.MappedData["student_name"]; name != "" {
		if _, ok := vc.Existing.StudentNames[nameKey(name)]; !ok {
			addError(row, "student_name", fmt.Sprintf("student %q was not found", name))
		}
	}
}

func (medicalConditionStrategy) Insert(ctx context.Context, rs RowStore, tenantID string, row *ValidatedRow, metadata map[string]string) (WriteResult, error) {
	md := row.MappedData

	studentID, err := resolveStudent(ctx, rs, tenantID, md["student_name"])
	if err != nil {
		return WriteResult{}, err
	}

	id, err := rs.InsertMedicalCondition(ctx, tenantID, MedicalConditionParams{
		StudentID:  studentID,
		Condition:  md["condition"],
		Severity:   md["severity"],
		ActionPlan: md["action_plan"],
		Medication: md["medication"],
		Notes:      md["notes"],
	})
	if err != nil {
		return WriteResult{}, err
	}
	return WriteResult{EntityID: id}, nil
}

// staffStrategy imports staff rows as tenant memberships, creating an auth
// account when the email is unknown. Memberships layered onto a pre-existing
// account carry no entity id and are never reverted by rollback.
type staffStrategy struct{}

func (staffStrategy) Type() ImportType    { return TypeStaff }
func (staffStrategy) Label() string       { return "Staff" }
func (staffStrategy) Fields() []Field     { return staffFields }
func (staffStrategy) EntityTable() string { return "memberships" }

func (staffStrategy) ValidateRow(row *ValidatedRow, vc *ValidationContext) {
	role := row.MappedData["role"]
	if role == "" {
		return
	}
	if _, ok := vc.Existing.Roles[strings.ToLower(role)]; !ok {
		available := make([]string, 0, len(vc.Existing.Roles))
		for name := range vc.Existing.Roles {
			available = append(available, name)
		}
		sort.Strings(available)
		addError(row, "role",
			fmt.Sprintf("role %q does not exist; available roles: %s", role, strings.Join(available, ", ")))
	}
}

func (staffStrategy) Insert(ctx context.Context, rs RowStore, tenantID string, row *ValidatedRow, metadata map[string]string) (WriteResult, error) {
	md := row.MappedData

	roleID, err := rs.FindRoleByName(ctx, tenantID, md["role"])
	if errors.Is(err, ErrNotFound) {
		return WriteResult{}, fmt.Errorf("role %q not found", md["role"])
	}
	if err != nil {
		return WriteResult{}, err
	}

	userID, err := rs.FindUserByEmail(ctx, md["email"])
	switch {
	case errors.Is(err, ErrNotFound):
		userID, err = rs.CreateUserAccount(ctx, tenantID, UserAccountParams{
			Email:     md["email"],
			FirstName: md["first_name"],
			LastName:  md["last_name"],
		})
		if err != nil {
			return WriteResult{}, err
		}
		membershipID, _, err := rs.EnsureMembership(ctx, tenantID, userID, roleID)
		if err != nil {
			return WriteResult{}, err
		}
		return WriteResult{EntityID: membershipID}, nil

	case err != nil:
		return WriteResult{}, err
	}

	// Existing account: grant the membership if missing, but leave no entity
	// id so rollback never detaches a live account from its tenant.
	if _, _, err := rs.EnsureMembership(ctx, tenantID, userID, roleID); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{}, nil
}

// attendanceStrategy imports daily attendance. Records are keyed on
// (student, date); re-importing the same key overwrites rather than skips, so
// corrected exports can be loaded over the top.
type attendanceStrategy struct{}

func (attendanceStrategy) Type() ImportType    { return TypeAttendance }
func (attendanceStrategy) Label() string       { return "Attendance" }
func (attendanceStrategy) Fields() []Field     { return attendanceFields }
func (attendanceStrategy) EntityTable() string { return "attendance_records" }

func (attendanceStrategy) ValidateRow(row *ValidatedRow, vc *ValidationContext) {
	md := row.MappedData

	if name := md["student_name"]; name != "" {
		if _, ok := vc.Existing.StudentNames[nameKey(name)]; !ok {
			addError(row, "student_name", fmt.Sprintf("student %q was not found", name))
		}
	}

	if date := md["date"]; date != "" {
		if d, err := time.Parse("2006-01-02", date); err == nil {
			today := vc.Now.UTC().Truncate(24 * time.Hour)
			if d.After(today) {
				addWarning(row, "date", fmt.Sprintf("date %s is in the future", date))
			}
		}
	}

	if class := md["class_name"]; class != "" {
		if _, ok := vc.Existing.ClassNames[strings.ToLower(class)]; !ok {
			addWarning(row, "class_name",
				fmt.Sprintf("class %q was not found; the record will be saved without a class", class))
		}
	}

	name, date := md["student_name"], md["date"]
	if name == "" || date == "" {
		return
	}
	key := attendanceKey(name, date)
	if first, seen := vc.SeenAttendanceKeys[key]; seen {
		addWarning(row, "date",
			fmt.Sprintf("duplicate attendance for %q on %s in this file (also row %d); the later row will overwrite", name, date, first))
	} else {
		vc.SeenAttendanceKeys[key] = row.RowNumber
	}
	if vc.Existing.AttendanceKeys[key] {
		addWarning(row, "date",
			fmt.Sprintf("attendance for %q on %s already exists and will be overwritten", name, date))
		row.IsDuplicate = true
	}
}

func (attendanceStrategy) Insert(ctx context.Context, rs RowStore, tenantID string, row *ValidatedRow, metadata map[string]string) (WriteResult, error) {
	md := row.MappedData

	studentID, err := resolveStudent(ctx, rs, tenantID, md["student_name"])
	if err != nil {
		return WriteResult{}, err
	}

	classID := ""
	if class := md["class_name"]; class != "" {
		id, err := rs.FindClassByName(ctx, tenantID, class)
		switch {
		case err == nil:
			classID = id
		case !errors.Is(err, ErrNotFound):
			return WriteResult{}, err
		}
	}

	anchor := func(clock string) *time.Time {
		if clock == "" {
			return nil
		}
		t, err := CombineDateTime(md["date"], clock)
		if err != nil {
			return nil
		}
		return &t
	}

	id, err := rs.UpsertAttendance(ctx, tenantID, AttendanceParams{
		StudentID: studentID,
		ClassID:   classID,
		Date:      md["date"],
		Status:    md["status"],
		CheckIn:   anchor(md["check_in_time"]),
		CheckOut:  anchor(md["check_out_time"]),
		Notes:     md["notes"],
	})
	if err != nil {
		return WriteResult{}, err
	}
	return WriteResult{EntityID: id}, nil
}
