package importer

// memstore_test.go provides the in-memory Store used by executor and
// rollback tests. It mirrors the pgx store's observable behavior: per-row
// transactions are atomic (a failed RunRow leaves nothing behind), lookups
// are case-insensitive, and soft-deletes flag rather than remove.

import (
	"context"
	"fmt"
	"strings"
)

type memEntity struct {
	table   string
	deleted bool
	fields  map[string]string
}

type memStore struct {
	jobs     map[string]*ImportJob
	records  []ImportJobRecord
	entities map[string]*memEntity
	audits   []AuditEvent

	users       map[string]string // lower(email) -> id
	roles       map[string]string // lower(name) -> id
	memberships map[string]string // userID -> membershipID
	attendance  map[string]string // studentID|date -> entityID

	nextID int

	// failOn makes the named entity write fail, for error-path tests.
	failOn string
}

func newMemStore() *memStore {
	return &memStore{
		jobs:        make(map[string]*ImportJob),
		entities:    make(map[string]*memEntity),
		users:       make(map[string]string),
		roles:       make(map[string]string),
		memberships: make(map[string]string),
		attendance:  make(map[string]string),
	}
}

func (m *memStore) genID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *memStore) CreateJob(ctx context.Context, job *ImportJob) error {
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memStore) FinalizeJob(ctx context.Context, job *ImportJob) error {
	if _, ok := m.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memStore) GetJob(ctx context.Context, tenantID, jobID string) (*ImportJob, error) {
	job, ok := m.jobs[jobID]
	if !ok || job.TenantID != tenantID {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *memStore) ListJobs(ctx context.Context, tenantID string, limit int) ([]ImportJob, error) {
	var jobs []ImportJob
	for _, job := range m.jobs {
		if job.TenantID == tenantID && len(jobs) < limit {
			jobs = append(jobs, *job)
		}
	}
	return jobs, nil
}

func (m *memStore) ListJobRecords(ctx context.Context, tenantID, jobID string) ([]ImportJobRecord, error) {
	job, ok := m.jobs[jobID]
	if !ok || job.TenantID != tenantID {
		return nil, ErrNotFound
	}
	var out []ImportJobRecord
	for _, rec := range m.records {
		if rec.JobID == jobID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) MarkJobRolledBack(ctx context.Context, tenantID, jobID string) error {
	job, ok := m.jobs[jobID]
	if !ok || job.TenantID != tenantID {
		return ErrNotFound
	}
	job.Status = JobRolledBack
	return nil
}

func (m *memStore) Snapshot(ctx context.Context, tenantID string, t ImportType) (*ExistingData, error) {
	data := &ExistingData{
		StudentNames:   make(map[string]string),
		ClassNames:     make(map[string]string),
		GuardianEmails: make(map[string]string),
		Roles:          make(map[string]string),
		AttendanceKeys: make(map[string]bool),
	}
	for id, e := range m.entities {
		if e.deleted {
			continue
		}
		switch e.table {
		case "students":
			key := strings.ToLower(e.fields["first_name"] + " " + e.fields["last_name"])
			data.StudentNames[key] = id
		case "classes":
			data.ClassNames[strings.ToLower(e.fields["name"])] = id
		}
	}
	for name, id := range m.roles {
		data.Roles[name] = id
	}
	for email, id := range m.users {
		data.GuardianEmails[email] = id
	}
	return data, nil
}

// RunRow snapshots state first so a failing fn leaves the store untouched,
// imitating transaction rollback.
func (m *memStore) RunRow(ctx context.Context, fn func(RowStore) error) error {
	backupEntities := make(map[string]*memEntity, len(m.entities))
	for id, e := range m.entities {
		cp := *e
		backupEntities[id] = &cp
	}
	backupRecords := len(m.records)

	if err := fn(&memRowStore{m}); err != nil {
		m.entities = backupEntities
		m.records = m.records[:backupRecords]
		return err
	}
	return nil
}

func (m *memStore) SoftDelete(ctx context.Context, tenantID, table, entityID string) error {
	e, ok := m.entities[entityID]
	if !ok || e.table != table {
		return ErrNotFound
	}
	e.deleted = true
	return nil
}

func (m *memStore) LogAudit(ctx context.Context, ev AuditEvent) error {
	m.audits = append(m.audits, ev)
	return nil
}

func (m *memStore) ListAudit(ctx context.Context, tenantID string, limit int) ([]AuditEvent, error) {
	return m.audits, nil
}

// liveEntities counts non-deleted entities in a table.
func (m *memStore) liveEntities(table string) int {
	n := 0
	for _, e := range m.entities {
		if e.table == table && !e.deleted {
			n++
		}
	}
	return n
}

func (m *memStore) addStudent(first, last string) string {
	id := m.genID("stu")
	m.entities[id] = &memEntity{
		table:  "students",
		fields: map[string]string{"first_name": first, "last_name": last},
	}
	return id
}

func (m *memStore) addRole(name string) string {
	id := m.genID("role")
	m.roles[strings.ToLower(name)] = id
	return id
}

func (m *memStore) addUser(email string) string {
	id := m.genID("user")
	m.users[strings.ToLower(email)] = id
	return id
}

type memRowStore struct {
	m *memStore
}

func (r *memRowStore) CreateJobRecord(ctx context.Context, rec *ImportJobRecord) error {
	r.m.records = append(r.m.records, *rec)
	return nil
}

func (r *memRowStore) insert(table string, fields map[string]string) (string, error) {
	if r.m.failOn == table {
		return "", fmt.Errorf("simulated %s write failure", table)
	}
	id := r.m.genID(table)
	r.m.entities[id] = &memEntity{table: table, fields: fields}
	return id, nil
}

func (r *memRowStore) InsertStudent(ctx context.Context, tenantID string, p StudentParams) (string, error) {
	return r.insert("students", map[string]string{"first_name": p.FirstName, "last_name": p.LastName})
}

func (r *memRowStore) FindStudentByName(ctx context.Context, tenantID, fullName string) (string, error) {
	key := strings.ToLower(strings.Join(strings.Fields(fullName), " "))
	for id, e := range r.m.entities {
		if e.table != "students" || e.deleted {
			continue
		}
		if strings.ToLower(e.fields["first_name"]+" "+e.fields["last_name"]) == key {
			return id, nil
		}
	}
	return "", ErrNotFound
}

func (r *memRowStore) FindClassByName(ctx context.Context, tenantID, name string) (string, error) {
	for id, e := range r.m.entities {
		if e.table == "classes" && !e.deleted && strings.EqualFold(e.fields["name"], name) {
			return id, nil
		}
	}
	return "", ErrNotFound
}

func (r *memRowStore) FindOrCreateClass(ctx context.Context, tenantID, name string) (string, error) {
	if id, err := r.FindClassByName(ctx, tenantID, name); err == nil {
		return id, nil
	}
	return r.insert("classes", map[string]string{"name": name})
}

func (r *memRowStore) InsertEnrollment(ctx context.Context, tenantID, studentID, classID string) error {
	_, err := r.insert("enrollments", map[string]string{"student_id": studentID, "class_id": classID})
	return err
}

func (r *memRowStore) FindRoleByName(ctx context.Context, tenantID, name string) (string, error) {
	if id, ok := r.m.roles[strings.ToLower(name)]; ok {
		return id, nil
	}
	return "", ErrNotFound
}

func (r *memRowStore) FindUserByEmail(ctx context.Context, email string) (string, error) {
	if id, ok := r.m.users[strings.ToLower(email)]; ok {
		return id, nil
	}
	return "", ErrNotFound
}

func (r *memRowStore) UpsertGuardianLink(ctx context.Context, tenantID, userID, studentID, relationship string, isPrimary bool) (string, error) {
	return r.insert("guardians", map[string]string{
		"user_id": userID, "student_id": studentID, "relationship": relationship,
	})
}

func (r *memRowStore) EnsureMembership(ctx context.Context, tenantID, userID, roleID string) (string, bool, error) {
	if id, ok := r.m.memberships[userID]; ok {
		return id, false, nil
	}
	id, err := r.insert("memberships", map[string]string{"user_id": userID, "role_id": roleID})
	if err != nil {
		return "", false, err
	}
	r.m.memberships[userID] = id
	return id, true, nil
}

func (r *memRowStore) CreateInvitation(ctx context.Context, tenantID string, p InvitationParams) (string, error) {
	return r.insert("invitations", map[string]string{"email": p.Email, "student_id": p.StudentID})
}

func (r *memRowStore) CreateUserAccount(ctx context.Context, tenantID string, p UserAccountParams) (string, error) {
	id := r.m.genID("user")
	r.m.users[strings.ToLower(p.Email)] = id
	return id, nil
}

func (r *memRowStore) InsertEmergencyContact(ctx context.Context, tenantID string, p EmergencyContactParams) (string, error) {
	return r.insert("emergency_contacts", map[string]string{"student_id": p.StudentID, "name": p.Name})
}

func (r *memRowStore) InsertMedicalCondition(ctx context.Context, tenantID string, p MedicalConditionParams) (string, error) {
	return r.insert("medical_conditions", map[string]string{"student_id": p.StudentID, "condition": p.Condition})
}

func (r *memRowStore) UpsertAttendance(ctx context.Context, tenantID string, p AttendanceParams) (string, error) {
	key := p.StudentID + "|" + p.Date
	if id, ok := r.m.attendance[key]; ok {
		e := r.m.entities[id]
		e.deleted = false
		e.fields["status"] = p.Status
		return id, nil
	}
	id, err := r.insert("attendance_records", map[string]string{
		"student_id": p.StudentID, "date": p.Date, "status": p.Status,
	})
	if err != nil {
		return "", err
	}
	r.m.attendance[key] = id
	return id, nil
}

// validRow builds an already-valid ValidatedRow for executor tests.
func validRow(n int, mapped map[string]string) ValidatedRow {
	return ValidatedRow{
		RowNumber:  n,
		RawData:    mapped,
		MappedData: mapped,
		IsValid:    true,
	}
}

func invalidRow(n int, field, msg string) ValidatedRow {
	return ValidatedRow{
		RowNumber: n,
		IsValid:   false,
		Errors:    []RowError{{Row: n, Field: field, Message: msg}},
	}
}
