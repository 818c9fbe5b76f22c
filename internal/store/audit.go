package store

import (
	"context"
	"fmt"

	"github.com/brightclass/dataimport/internal/importer"
)

func (s *Store) LogAudit(ctx context.Context, ev importer.AuditEvent) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_events (
			id, tenant_id, action, job_id, import_type, file_name,
			imported, skipped, errors, total, rows_affected, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		ev.ID, ev.TenantID, ev.Action, ev.JobID, ev.ImportType, ev.FileName,
		ev.Imported, ev.Skipped, ev.Errors, ev.Total, ev.RowsAffected, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, tenantID string, limit int) ([]importer.AuditEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, action, job_id, import_type, file_name,
		       imported, skipped, errors, total, rows_affected, created_at
		FROM audit_events
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		tenantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []importer.AuditEvent
	for rows.Next() {
		var ev importer.AuditEvent
		err := rows.Scan(
			&ev.ID, &ev.TenantID, &ev.Action, &ev.JobID, &ev.ImportType, &ev.FileName,
			&ev.Imported, &ev.Skipped, &ev.Errors, &ev.Total, &ev.RowsAffected, &ev.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
