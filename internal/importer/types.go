// Package importer provides the business logic for the school data import
// pipeline: column-mapping suggestion, row validation, transactional
// execution, and rollback. It has no HTTP dependencies and can be driven by
// any frontend.
package importer

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by store lookups when no matching record exists.
// Strategies branch on it to decide between link-to-existing and
// create-or-defer paths.
var ErrNotFound = errors.New("not found")

// ImportType identifies one of the six supported target entities.
type ImportType string

const (
	TypeStudents          ImportType = "students"
	TypeGuardians         ImportType = "guardians"
	TypeEmergencyContacts ImportType = "emergency_contacts"
	TypeMedicalConditions ImportType = "medical_conditions"
	TypeStaff             ImportType = "staff"
	TypeAttendance        ImportType = "attendance"
)

// FieldType declares how a target field's values are coerced and validated.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldDate    FieldType = "date"
	FieldEmail   FieldType = "email"
	FieldPhone   FieldType = "phone"
	FieldEnum    FieldType = "enum"
	FieldBoolean FieldType = "boolean"
	FieldTime    FieldType = "time"
)

// Field describes one canonical target field of an import type. The ordered
// field list drives validation, mapping suggestions, UI labels, and template
// generation.
type Field struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Required    bool      `json:"required"`
	Description string    `json:"description"`
	Example     string    `json:"example"`
	Type        FieldType `json:"type"`
	EnumValues  []string  `json:"enum_values,omitempty"`
	Aliases     []string  `json:"aliases,omitempty"`
}

// ColumnMapping maps a source CSV header to a canonical target field key.
// Partial: headers absent from the map are dropped. The mapping used
// downstream is whatever the user confirmed, which may override every
// suggestion.
type ColumnMapping map[string]string

// MappingSuggestion is one proposed header-to-field association.
type MappingSuggestion struct {
	CSVHeader   string  `json:"csv_header"`
	TargetField string  `json:"target_field"`
	Confidence  float64 `json:"confidence"`
}

// JobStatus is the lifecycle state of an ImportJob.
type JobStatus string

const (
	JobPending             JobStatus = "pending"
	JobValidating          JobStatus = "validating"
	JobPreview             JobStatus = "preview"
	JobImporting           JobStatus = "importing"
	JobCompleted           JobStatus = "completed"
	JobCompletedWithErrors JobStatus = "completed_with_errors"
	JobFailed              JobStatus = "failed"
	JobRolledBack          JobStatus = "rolled_back"
)

// RecordStatus is the per-row outcome on an ImportJobRecord.
type RecordStatus string

const (
	RecordImported RecordStatus = "imported"
	RecordSkipped  RecordStatus = "skipped"
	RecordError    RecordStatus = "error"
)

// RowError is a single row-level problem, blocking or not depending on where
// it is attached (ValidatedRow.Errors vs ValidatedRow.Warnings).
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ImportJob is one import attempt. Created when the user commits to
// importing, mutated by the executor as it processes rows, terminal once the
// status leaves importing. Owned exclusively by the creating tenant.
type ImportJob struct {
	ID            string            `json:"id"`
	TenantID      string            `json:"tenant_id"`
	CreatedBy     string            `json:"created_by"`
	Type          ImportType        `json:"import_type"`
	Status        JobStatus         `json:"status"`
	FileName      string            `json:"file_name"`
	ColumnMapping ColumnMapping     `json:"column_mapping"`
	TotalRows     int               `json:"total_rows"`
	ImportedCount int               `json:"imported_count"`
	SkippedCount  int               `json:"skipped_count"`
	ErrorCount    int               `json:"error_count"`
	RowErrors     []RowError        `json:"row_errors,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

// ImportJobRecord is the per-input-row outcome, written for every row
// regardless of outcome. It is the only structure that knows which created
// entity came from which import row, so rollback depends on it.
type ImportJobRecord struct {
	ID           string            `json:"id"`
	JobID        string            `json:"job_id"`
	RowNumber    int               `json:"row_number"`
	Status       RecordStatus      `json:"status"`
	EntityType   ImportType        `json:"entity_type"`
	EntityID     *string           `json:"entity_id,omitempty"`
	RawData      map[string]string `json:"raw_data,omitempty"`
	MappedData   map[string]string `json:"mapped_data,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ValidatedRow is the validator's verdict for one input row. Row numbers are
// 1-indexed and stable across the pipeline. Warnings never block; a row with
// any blocking error is never eligible to be written.
type ValidatedRow struct {
	RowNumber   int               `json:"row_number"`
	RawData     map[string]string `json:"raw_data"`
	MappedData  map[string]string `json:"mapped_data"`
	IsValid     bool              `json:"is_valid"`
	Errors      []RowError        `json:"errors,omitempty"`
	Warnings    []RowError        `json:"warnings,omitempty"`
	IsDuplicate bool              `json:"is_duplicate"`
}

// ValidationSummary aggregates a validation pass for the pre-import report.
type ValidationSummary struct {
	TotalRows     int            `json:"total_rows"`
	ValidRows     int            `json:"valid_rows"`
	ErrorRows     int            `json:"error_rows"`
	WarningRows   int            `json:"warning_rows"`
	DuplicateRows int            `json:"duplicate_rows"`
	ErrorsByField map[string]int `json:"errors_by_field,omitempty"`
}

// ValidationResult is the full output of a validation pass.
type ValidationResult struct {
	Rows    []ValidatedRow    `json:"rows"`
	Summary ValidationSummary `json:"summary"`
}

// ExistingData is a point-in-time read of already-present tenant records used
// for referential and duplicate checks. Fetched once per validation pass;
// staleness between fetch and execution is an accepted race.
type ExistingData struct {
	// StudentNames maps lowercase "first last" to student id.
	StudentNames map[string]string
	// ClassNames maps lowercase class name to class id.
	ClassNames map[string]string
	// GuardianEmails maps lowercase email to the existing user account id.
	GuardianEmails map[string]string
	// Roles maps lowercase role name to role id.
	Roles map[string]string
	// AttendanceKeys holds "lowercase student name|YYYY-MM-DD" keys of
	// attendance records already present for the tenant.
	AttendanceKeys map[string]bool
}

// WriteResult is the tagged outcome of a strategy insert. EntityID is empty
// when no revertible entity was created: a guardian handled via a deferred
// invitation, or a staff membership layered onto a pre-existing account.
type WriteResult struct {
	EntityID     string
	Deferred     bool
	InvitationID string
}

// AuditEvent summarizes a completed import or rollback for the audit log.
type AuditEvent struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id"`
	Action       string     `json:"action"`
	JobID        string     `json:"job_id"`
	ImportType   ImportType `json:"import_type"`
	FileName     string     `json:"file_name,omitempty"`
	Imported     int        `json:"imported"`
	Skipped      int        `json:"skipped"`
	Errors       int        `json:"errors"`
	Total        int        `json:"total"`
	RowsAffected int        `json:"rows_affected"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Audit actions recorded by the pipeline.
const (
	ActionImportCompleted  = "import_completed"
	ActionImportRolledBack = "import_rolled_back"
)

// Store is the persistence boundary the pipeline writes through. Implemented
// by the pgx-backed store; tests substitute an in-memory fake.
type Store interface {
	CreateJob(ctx context.Context, job *ImportJob) error
	FinalizeJob(ctx context.Context, job *ImportJob) error
	GetJob(ctx context.Context, tenantID, jobID string) (*ImportJob, error)
	ListJobs(ctx context.Context, tenantID string, limit int) ([]ImportJob, error)
	ListJobRecords(ctx context.Context, tenantID, jobID string) ([]ImportJobRecord, error)
	MarkJobRolledBack(ctx context.Context, tenantID, jobID string) error

	// Snapshot fetches the existing-data view needed to validate one import
	// type for a tenant.
	Snapshot(ctx context.Context, tenantID string, t ImportType) (*ExistingData, error)

	// RunRow executes fn inside a single database transaction so a row's
	// entity write and its job record commit or roll back together.
	RunRow(ctx context.Context, fn func(RowStore) error) error

	// SoftDelete marks one entity in the named table as deleted.
	SoftDelete(ctx context.Context, tenantID, table, entityID string) error

	LogAudit(ctx context.Context, ev AuditEvent) error
	ListAudit(ctx context.Context, tenantID string, limit int) ([]AuditEvent, error)
}

// RowStore is the transactional surface available while processing a single
// row: the job-record write plus every entity write a strategy may need.
type RowStore interface {
	CreateJobRecord(ctx context.Context, rec *ImportJobRecord) error

	InsertStudent(ctx context.Context, tenantID string, p StudentParams) (string, error)
	FindStudentByName(ctx context.Context, tenantID, fullName string) (string, error)
	FindClassByName(ctx context.Context, tenantID, name string) (string, error)
	FindOrCreateClass(ctx context.Context, tenantID, name string) (string, error)
	InsertEnrollment(ctx context.Context, tenantID, studentID, classID string) error
	FindRoleByName(ctx context.Context, tenantID, name string) (string, error)

	FindUserByEmail(ctx context.Context, email string) (string, error)
	UpsertGuardianLink(ctx context.Context, tenantID, userID, studentID, relationship string, isPrimary bool) (string, error)
	EnsureMembership(ctx context.Context, tenantID, userID, roleID string) (membershipID string, created bool, err error)
	CreateInvitation(ctx context.Context, tenantID string, p InvitationParams) (string, error)
	CreateUserAccount(ctx context.Context, tenantID string, p UserAccountParams) (string, error)

	InsertEmergencyContact(ctx context.Context, tenantID string, p EmergencyContactParams) (string, error)
	InsertMedicalCondition(ctx context.Context, tenantID string, p MedicalConditionParams) (string, error)

	UpsertAttendance(ctx context.Context, tenantID string, p AttendanceParams) (string, error)
}

// StudentParams carries a student insert.
type StudentParams struct {
	FirstName      string
	LastName       string
	DateOfBirth    string
	Gender         string
	Email          string
	Phone          string
	EnrollmentDate string
	Status         string
	Address        string
	Notes          string
}

// InvitationParams carries a pending invitation insert. ExpiresAt is set by
// the caller; parent invitations expire after 30 days.
type InvitationParams struct {
	Email        string
	Role         string
	StudentID    string
	Relationship string
	ExpiresAt    time.Time
}

// UserAccountParams carries a new auth account created for imported staff.
// The tenant and role binding live on the membership created right after,
// not on the account itself.
type UserAccountParams struct {
	Email     string
	FirstName string
	LastName  string
}

// EmergencyContactParams carries an emergency contact insert.
type EmergencyContactParams struct {
	StudentID      string
	Name           string
	Relationship   string
	Phone          string
	AlternatePhone string
	Priority       string
}

// MedicalConditionParams carries a medical condition insert.
type MedicalConditionParams struct {
	StudentID  string
	Condition  string
	Severity   string
	ActionPlan string
	Medication string
	Notes      string
}

// AttendanceParams carries an attendance upsert, keyed on (tenant, student,
// date). CheckIn/CheckOut are full timestamps anchored to Date, nil when the
// source time was absent or unparseable.
type AttendanceParams struct {
	StudentID string
	ClassID   string
	Date      string
	Status    string
	CheckIn   *time.Time
	CheckOut  *time.Time
	Notes     string
}
