package store

import (
	"context"
	"fmt"

	"github.com/brightclass/dataimport/internal/importer"
)

// softDeleteTables is the allowlist of tables SoftDelete may touch. The table
// name reaches this function from strategy code, never from user input, but
// interpolating an unchecked identifier into SQL is still off the table.
var softDeleteTables = map[string]bool{
	"students":           true,
	"guardians":          true,
	"emergency_contacts": true,
	"medical_conditions": true,
	"memberships":        true,
	"attendance_records": true,
}

// SoftDelete marks one entity deleted. Rollback calls this per imported
// record; already-deleted entities are treated as done rather than failed so
// a re-run after a partial rollback converges.
func (s *Store) SoftDelete(ctx context.Context, tenantID, table, entityID string) error {
	if !softDeleteTables[table] {
		return fmt.Errorf("table not eligible for soft delete: %s", table)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = now()
		WHERE id = $1 AND tenant_id = $2`, table)

	tag, err := s.pool.Exec(ctx, query, entityID, tenantID)
	if err != nil {
		return fmt.Errorf("soft delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return importer.ErrNotFound
	}
	return nil
}
