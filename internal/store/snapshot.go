package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/brightclass/dataimport/internal/importer"
)

// Snapshot reads the existing-data view one validation pass needs. Only the
// slices relevant to the import type are fetched; a students import never
// pays for attendance keys. The snapshot is a point-in-time read; the write
// path rechecks references inside each row's transaction.
func (s *Store) Snapshot(ctx context.Context, tenantID string, t importer.ImportType) (*importer.ExistingData, error) {
	data := &importer.ExistingData{
		StudentNames:   make(map[string]string),
		ClassNames:     make(map[string]string),
		GuardianEmails: make(map[string]string),
		Roles:          make(map[string]string),
		AttendanceKeys: make(map[string]bool),
	}

	// Every type references students except staff.
	if t != importer.TypeStaff {
		if err := s.loadStudentNames(ctx, tenantID, data); err != nil {
			return nil, err
		}
	}

	switch t {
	case importer.TypeStudents:
		if err := s.loadClassNames(ctx, tenantID, data); err != nil {
			return nil, err
		}
	case importer.TypeGuardians:
		if err := s.loadGuardianEmails(ctx, data); err != nil {
			return nil, err
		}
	case importer.TypeStaff:
		if err := s.loadRoles(ctx, tenantID, data); err != nil {
			return nil, err
		}
	case importer.TypeAttendance:
		if err := s.loadClassNames(ctx, tenantID, data); err != nil {
			return nil, err
		}
		if err := s.loadAttendanceKeys(ctx, tenantID, data); err != nil {
			return nil, err
		}
	}

	return data, nil
}

func (s *Store) loadStudentNames(ctx context.Context, tenantID string, data *importer.ExistingData) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, lower(first_name || ' ' || last_name)
		FROM students
		WHERE tenant_id = $1 AND deleted_at IS NULL`,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("load student names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		data.StudentNames[name] = id
	}
	return rows.Err()
}

func (s *Store) loadClassNames(ctx context.Context, tenantID string, data *importer.ExistingData) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, lower(name)
		FROM classes
		WHERE tenant_id = $1 AND deleted_at IS NULL`,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("load class names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		data.ClassNames[name] = id
	}
	return rows.Err()
}

// loadGuardianEmails reads accounts globally, not per tenant: the write path
// links guardians by a global email lookup, and the "will be linked to an
// existing account" warning must fire for exactly the accounts that lookup
// would find.
func (s *Store) loadGuardianEmails(ctx context.Context, data *importer.ExistingData) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, lower(email)
		FROM users
		WHERE deleted_at IS NULL`,
	)
	if err != nil {
		return fmt.Errorf("load guardian emails: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, email string
		if err := rows.Scan(&id, &email); err != nil {
			return err
		}
		data.GuardianEmails[email] = id
	}
	return rows.Err()
}

func (s *Store) loadRoles(ctx context.Context, tenantID string, data *importer.ExistingData) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name FROM roles WHERE tenant_id = $1`,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		data.Roles[strings.ToLower(name)] = id
	}
	return rows.Err()
}

func (s *Store) loadAttendanceKeys(ctx context.Context, tenantID string, data *importer.ExistingData) error {
	rows, err := s.pool.Query(ctx, `
		SELECT lower(st.first_name || ' ' || st.last_name), to_char(a.date, 'YYYY-MM-DD')
		FROM attendance_records a
		JOIN students st ON st.id = a.student_id
		WHERE a.tenant_id = $1 AND a.deleted_at IS NULL`,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("load attendance keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, date string
		if err := rows.Scan(&name, &date); err != nil {
			return err
		}
		data.AttendanceKeys[name+"|"+date] = true
	}
	return rows.Err()
}
