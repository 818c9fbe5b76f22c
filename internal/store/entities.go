package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brightclass/dataimport/internal/importer"
)

// Entity writes available inside a row transaction. Name lookups are
// case-insensitive and ignore soft-deleted rows, matching what the
// validation snapshot sees.

func (r *rowStore) InsertStudent(ctx context.Context, tenantID string, p importer.StudentParams) (string, error) {
	id := uuid.NewString()
	_, err := r.tx.Exec(ctx, `
		INSERT INTO students (
			id, tenant_id, first_name, last_name, date_of_birth, gender,
			email, phone, enrollment_date, status, address, notes
		) VALUES ($1, $2, $3, $4, NULLIF($5, '')::date, $6, $7, $8, NULLIF($9, '')::date, $10, $11, $12)`,
		id, tenantID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.Email, p.Phone, p.EnrollmentDate, p.Status, p.Address, p.Notes,
	)
	if err != nil {
		return "", fmt.Errorf("insert student: %w", err)
	}
	return id, nil
}

func (r *rowStore) FindStudentByName(ctx context.Context, tenantID, fullName string) (string, error) {
	var id string
	err := r.tx.QueryRow(ctx, `
		SELECT id FROM students
		WHERE tenant_id = $1
		  AND lower(first_name || ' ' || last_name) = lower($2)
		  AND deleted_at IS NULL
		ORDER BY created_at
		LIMIT 1`,
		tenantID, fullName,
	).Scan(&id)
	if err != nil {
		return "", notFound(err)
	}
	return id, nil
}

func (r *rowStore) FindClassByName(ctx context.Context, tenantID, name string) (string, error) {
	var id string
	err := r.tx.QueryRow(ctx, `
		SELECT id FROM classes
		WHERE tenant_id = $1 AND lower(name) = lower($2) AND deleted_at IS NULL
		LIMIT 1`,
		tenantID, name,
	).Scan(&id)
	if err != nil {
		return "", notFound(err)
	}
	return id, nil
}

func (r *rowStore) FindOrCreateClass(ctx context.Context, tenantID, name string) (string, error) {
	id, err := r.FindClassByName(ctx, tenantID, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, importer.ErrNotFound) {
		return "", err
	}

	id = uuid.NewString()
	_, err = r.tx.Exec(ctx, `
		INSERT INTO classes (id, tenant_id, name) VALUES ($1, $2, $3)`,
		id, tenantID, name,
	)
	if err != nil {
		return "", fmt.Errorf("insert class: %w", err)
	}
	return id, nil
}

func (r *rowStore) InsertEnrollment(ctx context.Context, tenantID, studentID, classID string) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO enrollments (id, tenant_id, student_id, class_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, student_id, class_id) DO NOTHING`,
		uuid.NewString(), tenantID, studentID, classID,
	)
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func (r *rowStore) FindRoleByName(ctx context.Context, tenantID, name string) (string, error) {
	var id string
	err := r.tx.QueryRow(ctx, `
		SELECT id FROM roles
		WHERE tenant_id = $1 AND lower(name) = lower($2)
		LIMIT 1`,
		tenantID, name,
	).Scan(&id)
	if err != nil {
		return "", notFound(err)
	}
	return id, nil
}

func (r *rowStore) FindUserByEmail(ctx context.Context, email string) (string, error) {
	var id string
	err := r.tx.QueryRow(ctx, `
		SELECT id FROM users
		WHERE lower(email) = lower($1) AND deleted_at IS NULL
		LIMIT 1`,
		email,
	).Scan(&id)
	if err != nil {
		return "", notFound(err)
	}
	return id, nil
}

func (r *rowStore) UpsertGuardianLink(ctx context.Context, tenantID, userID, studentID, relationship string, isPrimary bool) (string, error) {
	var id string
	err := r.tx.QueryRow(ctx, `
		INSERT INTO guardians (id, tenant_id, user_id, student_id, relationship, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, user_id, student_id) DO UPDATE
		SET relationship = EXCLUDED.relationship,
		    is_primary   = EXCLUDED.is_primary,
		    deleted_at   = NULL
		RETURNING id`,
		uuid.NewString(), tenantID, userID, studentID, relationship, isPrimary,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert guardian link: %w", err)
	}
	return id, nil
}

func (r *rowStore) EnsureMembership(ctx context.Context, tenantID, userID, roleID string) (string, bool, error) {
	var id string
	err := r.tx.QueryRow(ctx, `
		SELECT id FROM memberships
		WHERE tenant_id = $1 AND user_id = $2 AND deleted_at IS NULL
		LIMIT 1`,
		tenantID, userID,
	).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(notFound(err), importer.ErrNotFound) {
		return "", false, err
	}

	id = uuid.NewString()
	_, err = r.tx.Exec(ctx, `
		INSERT INTO memberships (id, tenant_id, user_id, role_id)
		VALUES ($1, $2, $3, $4)`,
		id, tenantID, userID, roleID,
	)
	if err != nil {
		return "", false, fmt.Errorf("insert membership: %w", err)
	}
	return id, true, nil
}

func (r *rowStore) CreateInvitation(ctx context.Context, tenantID string, p importer.InvitationParams) (string, error) {
	id := uuid.NewString()
	_, err := r.tx.Exec(ctx, `
		INSERT INTO invitations (id, tenant_id, email, role, student_id, relationship, expires_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7)`,
		id, tenantID, p.Email, p.Role, p.StudentID, p.Relationship, p.ExpiresAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert invitation: %w", err)
	}
	return id, nil
}

func (r *rowStore) CreateUserAccount(ctx context.Context, tenantID string, p importer.UserAccountParams) (string, error) {
	id := uuid.NewString()
	_, err := r.tx.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name)
		VALUES ($1, lower($2), $3, $4)`,
		id, p.Email, p.FirstName, p.LastName,
	)
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (r *rowStore) InsertEmergencyContact(ctx context.Context, tenantID string, p importer.EmergencyContactParams) (string, error) {
	id := uuid.NewString()
	_, err := r.tx.Exec(ctx, `
		INSERT INTO emergency_contacts (
			id, tenant_id, student_id, name, relationship, phone, alternate_phone, priority
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, tenantID, p.StudentID, p.Name, p.Relationship, p.Phone, p.AlternatePhone, p.Priority,
	)
	if err != nil {
		return "", fmt.Errorf("insert emergency contact: %w", err)
	}
	return id, nil
}

func (r *rowStore) InsertMedicalCondition(ctx context.Context, tenantID string, p importer.MedicalConditionParams) (string, error) {
	id := uuid.NewString()
	_, err := r.tx.Exec(ctx, `
		INSERT INTO medical_conditions (
			id, tenant_id, student_id, condition, severity, action_plan, medication, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, tenantID, p.StudentID, p.Condition, p.Severity, p.ActionPlan, p.Medication, p.Notes,
	)
	if err != nil {
		return "", fmt.Errorf("insert medical condition: %w", err)
	}
	return id, nil
}

// UpsertAttendance writes one attendance record keyed on (tenant, student,
// date). A conflicting record is overwritten in place and revived if it had
// been soft-deleted, so corrected exports can be re-imported over the top.
func (r *rowStore) UpsertAttendance(ctx context.Context, tenantID string, p importer.AttendanceParams) (string, error) {
	var id string
	err := r.tx.QueryRow(ctx, `
		INSERT INTO attendance_records (
			id, tenant_id, student_id, class_id, date, status, check_in, check_out, notes
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5::date, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, student_id, date) DO UPDATE
		SET class_id   = EXCLUDED.class_id,
		    status     = EXCLUDED.status,
		    check_in   = EXCLUDED.check_in,
		    check_out  = EXCLUDED.check_out,
		    notes      = EXCLUDED.notes,
		    deleted_at = NULL
		RETURNING id`,
		uuid.NewString(), tenantID, p.StudentID, p.ClassID, p.Date, p.Status, p.CheckIn, p.CheckOut, p.Notes,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert attendance: %w", err)
	}
	return id, nil
}
