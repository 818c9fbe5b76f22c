package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ExecuteParams carries everything the executor needs for one import run.
// SkipDuplicates skips rows the validator flagged as duplicates instead of
// writing them; attendance is exempt because its re-imports upsert.
type ExecuteParams struct {
	TenantID       string
	CreatedBy      string
	Type           ImportType
	FileName       string
	Mapping        ColumnMapping
	Rows           []ValidatedRow
	Metadata       map[string]string
	SkipDuplicates bool
}

// Execute runs one import: it creates the job, processes every validated row
// sequentially, and finalizes the job with counts and status. Each row gets
// exactly one ImportJobRecord whatever its outcome, so
// imported + skipped + errors always equals the input row count. An invalid
// row or a write failure is recorded as an error and never aborts the batch.
// The entity write and the job record for a row commit in one transaction, so
// a crash mid-import leaves no imported entity without its record.
//
// Status on return: completed when no row errored, completed_with_errors when
// some rows landed and some failed, failed when not a single row landed.
func Execute(ctx context.Context, log *slog.Logger, store Store, p ExecuteParams) (*ImportJob, error) {
	strategy, ok := StrategyFor(p.Type)
	if !ok {
		return nil, fmt.Errorf("unknown import type: %s", p.Type)
	}

	job := &ImportJob{
		ID:            uuid.NewString(),
		TenantID:      p.TenantID,
		CreatedBy:     p.CreatedBy,
		Type:          p.Type,
		Status:        JobImporting,
		FileName:      p.FileName,
		ColumnMapping: p.Mapping,
		TotalRows:     len(p.Rows),
		Metadata:      p.Metadata,
		CreatedAt:     time.Now().UTC(),
	}
	if err := store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create import job: %w", err)
	}

	log = log.With("job_id", job.ID, "tenant_id", p.TenantID, "import_type", p.Type)
	log.Info("import started", "total_rows", job.TotalRows, "file_name", p.FileName)

	for i := range p.Rows {
		row := &p.Rows[i]

		if !row.IsValid {
			job.ErrorCount++
			msg := rowErrorMessage(row)
			job.RowErrors = append(job.RowErrors, RowError{Row: row.RowNumber, Message: msg})
			if err := writeRecord(ctx, store, job, row, RecordError, nil, msg); err != nil {
				return nil, err
			}
			continue
		}

		if row.IsDuplicate && p.SkipDuplicates && p.Type != TypeAttendance {
			job.SkippedCount++
			if err := writeRecord(ctx, store, job, row, RecordSkipped, nil, "duplicate row skipped"); err != nil {
				return nil, err
			}
			continue
		}

		var result WriteResult
		err := store.RunRow(ctx, func(rs RowStore) error {
			var insertErr error
			result, insertErr = strategy.Insert(ctx, rs, p.TenantID, row, p.Metadata)
			if insertErr != nil {
				return insertErr
			}
			return rs.CreateJobRecord(ctx, newRecord(job, row, RecordImported, entityID(result), ""))
		})
		if err != nil {
			job.ErrorCount++
			msg := err.Error()
			job.RowErrors = append(job.RowErrors, RowError{Row: row.RowNumber, Message: msg})
			log.Warn("row failed", "row", row.RowNumber, "error", msg)
			if recErr := writeRecord(ctx, store, job, row, RecordError, nil, msg); recErr != nil {
				return nil, recErr
			}
			continue
		}

		job.ImportedCount++
		if result.Deferred {
			log.Debug("guardian deferred to invitation", "row", row.RowNumber, "invitation_id", result.InvitationID)
		}
	}

	job.Status = finalStatus(job)
	now := time.Now().UTC()
	job.CompletedAt = &now
	if err := store.FinalizeJob(ctx, job); err != nil {
		return nil, fmt.Errorf("finalize import job: %w", err)
	}

	if err := store.LogAudit(ctx, AuditEvent{
		ID:         uuid.NewString(),
		TenantID:   p.TenantID,
		Action:     ActionImportCompleted,
		JobID:      job.ID,
		ImportType: p.Type,
		FileName:   p.FileName,
		Imported:   job.ImportedCount,
		Skipped:    job.SkippedCount,
		Errors:     job.ErrorCount,
		Total:      job.TotalRows,
		CreatedAt:  now,
	}); err != nil {
		log.Error("audit log write failed", "error", err)
	}

	log.Info("import finished",
		"status", job.Status,
		"imported", job.ImportedCount,
		"skipped", job.SkippedCount,
		"errors", job.ErrorCount)
	return job, nil
}

// finalStatus derives the terminal status from the counters.
func finalStatus(job *ImportJob) JobStatus {
	switch {
	case job.ErrorCount == 0:
		return JobCompleted
	case job.ImportedCount > 0:
		return JobCompletedWithErrors
	default:
		return JobFailed
	}
}

// writeRecord persists a non-imported row's record in its own transaction.
func writeRecord(ctx context.Context, store Store, job *ImportJob, row *ValidatedRow, status RecordStatus, entID *string, errMsg string) error {
	err := store.RunRow(ctx, func(rs RowStore) error {
		rec := newRecord(job, row, status, entID, errMsg)
		return rs.CreateJobRecord(ctx, rec)
	})
	if err != nil {
		return fmt.Errorf("write job record for row %d: %w", row.RowNumber, err)
	}
	return nil
}

func newRecord(job *ImportJob, row *ValidatedRow, status RecordStatus, entID *string, errMsg string) *ImportJobRecord {
	return &ImportJobRecord{
		ID:           uuid.NewString(),
		JobID:        job.ID,
		RowNumber:    row.RowNumber,
		Status:       status,
		EntityType:   job.Type,
		EntityID:     entID,
		RawData:      row.RawData,
		MappedData:   row.MappedData,
		ErrorMessage: errMsg,
		CreatedAt:    time.Now().UTC(),
	}
}

func entityID(r WriteResult) *string {
	if r.EntityID == "" {
		return nil
	}
	id := r.EntityID
	return &id
}

// rowErrorMessage flattens an invalid row's validation errors into the single
// message stored on its record.
func rowErrorMessage(row *ValidatedRow) string {
	if len(row.Errors) == 0 {
		return "row failed validation"
	}
	msg := row.Errors[0].Message
	for _, e := range row.Errors[1:] {
		msg += "; " + e.Message
	}
	return msg
}
