package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brightclass/dataimport/internal/importer"
)

func (s *Store) CreateJob(ctx context.Context, job *importer.ImportJob) error {
	mapping, err := json.Marshal(job.ColumnMapping)
	if err != nil {
		return fmt.Errorf("marshal column mapping: %w", err)
	}
	metadata, err := json.Marshal(job.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO import_jobs (
			id, tenant_id, created_by, import_type, status, file_name,
			column_mapping, total_rows, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID, job.TenantID, job.CreatedBy, job.Type, job.Status, job.FileName,
		mapping, job.TotalRows, metadata, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert import job: %w", err)
	}
	return nil
}

func (s *Store) FinalizeJob(ctx context.Context, job *importer.ImportJob) error {
	rowErrors, err := json.Marshal(job.RowErrors)
	if err != nil {
		return fmt.Errorf("marshal row errors: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE import_jobs
		SET status = $1, imported_count = $2, skipped_count = $3,
		    error_count = $4, row_errors = $5, completed_at = $6
		WHERE id = $7 AND tenant_id = $8`,
		job.Status, job.ImportedCount, job.SkippedCount,
		job.ErrorCount, rowErrors, job.CompletedAt,
		job.ID, job.TenantID,
	)
	if err != nil {
		return fmt.Errorf("finalize import job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return importer.ErrNotFound
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, tenantID, jobID string) (*importer.ImportJob, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, tenant_id, created_by, import_type, status, file_name,
		       column_mapping, total_rows, imported_count, skipped_count,
		       error_count, row_errors, metadata, created_at, completed_at
		FROM import_jobs
		WHERE id = $1 AND tenant_id = $2`,
		jobID, tenantID,
	)
	job, err := scanJob(row)
	if err != nil {
		return nil, notFound(err)
	}
	return job, nil
}

func (s *Store) ListJobs(ctx context.Context, tenantID string, limit int) ([]importer.ImportJob, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, created_by, import_type, status, file_name,
		       column_mapping, total_rows, imported_count, skipped_count,
		       error_count, row_errors, metadata, created_at, completed_at
		FROM import_jobs
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		tenantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []importer.ImportJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// scanner covers pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(sc scanner) (*importer.ImportJob, error) {
	var (
		job       importer.ImportJob
		mapping   []byte
		rowErrors []byte
		metadata  []byte
	)
	err := sc.Scan(
		&job.ID, &job.TenantID, &job.CreatedBy, &job.Type, &job.Status, &job.FileName,
		&mapping, &job.TotalRows, &job.ImportedCount, &job.SkippedCount,
		&job.ErrorCount, &rowErrors, &metadata, &job.CreatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(mapping) > 0 {
		if err := json.Unmarshal(mapping, &job.ColumnMapping); err != nil {
			return nil, fmt.Errorf("unmarshal column mapping: %w", err)
		}
	}
	if len(rowErrors) > 0 {
		if err := json.Unmarshal(rowErrors, &job.RowErrors); err != nil {
			return nil, fmt.Errorf("unmarshal row errors: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &job.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &job, nil
}

func (s *Store) ListJobRecords(ctx context.Context, tenantID, jobID string) ([]importer.ImportJobRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.job_id, r.row_number, r.status, r.entity_type,
		       r.entity_id, r.raw_data, r.mapped_data, r.error_message, r.created_at
		FROM import_job_records r
		JOIN import_jobs j ON j.id = r.job_id
		WHERE r.job_id = $1 AND j.tenant_id = $2
		ORDER BY r.row_number`,
		jobID, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list job records: %w", err)
	}
	defer rows.Close()

	var records []importer.ImportJobRecord
	for rows.Next() {
		var (
			rec    importer.ImportJobRecord
			raw    []byte
			mapped []byte
		)
		err := rows.Scan(
			&rec.ID, &rec.JobID, &rec.RowNumber, &rec.Status, &rec.EntityType,
			&rec.EntityID, &raw, &mapped, &rec.ErrorMessage, &rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &rec.RawData); err != nil {
				return nil, fmt.Errorf("unmarshal raw data: %w", err)
			}
		}
		if len(mapped) > 0 {
			if err := json.Unmarshal(mapped, &rec.MappedData); err != nil {
				return nil, fmt.Errorf("unmarshal mapped data: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) MarkJobRolledBack(ctx context.Context, tenantID, jobID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE import_jobs
		SET status = $1
		WHERE id = $2 AND tenant_id = $3`,
		importer.JobRolledBack, jobID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("mark job rolled back: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return importer.ErrNotFound
	}
	return nil
}

func (r *rowStore) CreateJobRecord(ctx context.Context, rec *importer.ImportJobRecord) error {
	raw, err := json.Marshal(rec.RawData)
	if err != nil {
		return fmt.Errorf("marshal raw data: %w", err)
	}
	mapped, err := json.Marshal(rec.MappedData)
	if err != nil {
		return fmt.Errorf("marshal mapped data: %w", err)
	}

	_, err = r.tx.Exec(ctx, `
		INSERT INTO import_job_records (
			id, job_id, row_number, status, entity_type,
			entity_id, raw_data, mapped_data, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.JobID, rec.RowNumber, rec.Status, rec.EntityType,
		rec.EntityID, raw, mapped, rec.ErrorMessage, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job record: %w", err)
	}
	return nil
}
