package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Rollback soft-deletes every entity a completed import created and marks the
// job rolled_back. Only jobs in completed or completed_with_errors are
// eligible. Records without an entity id are skipped: rows that never
// imported, deferred guardian invitations, and staff memberships layered onto
// pre-existing accounts. The invitation gap is accepted because an
// unredeemed invitation grants nothing until a user acts on it.
//
// Returns the number of entities soft-deleted. A record whose soft-delete
// fails does not stop the sweep; the job still ends rolled_back and the
// failure is logged, matching the import side's row-isolation stance.
func Rollback(ctx context.Context, log *slog.Logger, store Store, tenantID, jobID string) (int, error) {
	job, err := store.GetJob(ctx, tenantID, jobID)
	if err != nil {
		return 0, err
	}

	if job.Status != JobCompleted && job.Status != JobCompletedWithErrors {
		return 0, fmt.Errorf("job cannot be rolled back: status is %s", job.Status)
	}

	strategy, ok := StrategyFor(job.Type)
	if !ok {
		return 0, fmt.Errorf("unknown import type: %s", job.Type)
	}

	records, err := store.ListJobRecords(ctx, tenantID, jobID)
	if err != nil {
		return 0, err
	}

	log = log.With("job_id", jobID, "tenant_id", tenantID, "import_type", job.Type)

	reverted := 0
	for _, rec := range records {
		if rec.Status != RecordImported || rec.EntityID == nil {
			continue
		}
		if err := store.SoftDelete(ctx, tenantID, strategy.EntityTable(), *rec.EntityID); err != nil {
			log.Error("rollback soft-delete failed", "row", rec.RowNumber, "entity_id", *rec.EntityID, "error", err)
			continue
		}
		reverted++
	}

	if err := store.MarkJobRolledBack(ctx, tenantID, jobID); err != nil {
		return reverted, fmt.Errorf("mark job rolled back: %w", err)
	}

	if err := store.LogAudit(ctx, AuditEvent{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Action:       ActionImportRolledBack,
		JobID:        jobID,
		ImportType:   job.Type,
		FileName:     job.FileName,
		RowsAffected: reverted,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		log.Error("audit log write failed", "error", err)
	}

	log.Info("import rolled back", "reverted", reverted)
	return reverted, nil
}
