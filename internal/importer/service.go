package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brightclass/dataimport/internal/csvio"
)

// Service is the pipeline's entry point, wiring the pure pieces (suggester,
// validator) to storage for the stateful ones (execution, history, rollback).
// One instance serves all tenants; tenant scoping rides on every call.
type Service struct {
	store Store
	log   *slog.Logger
	syn   Synonyms
}

// NewService builds a Service with the stock synonym tables.
func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log, syn: DefaultSynonyms()}
}

// TypeInfo describes one import type for the type-listing endpoint.
type TypeInfo struct {
	Type   ImportType `json:"type"`
	Label  string     `json:"label"`
	Fields []Field    `json:"fields"`
}

// Types lists the registered import types in registration order.
func (s *Service) Types() []TypeInfo {
	all := AllStrategies()
	infos := make([]TypeInfo, 0, len(all))
	for _, st := range all {
		infos = append(infos, TypeInfo{Type: st.Type(), Label: st.Label(), Fields: st.Fields()})
	}
	return infos
}

// Suggest proposes a column mapping for the given headers.
func (s *Service) Suggest(t ImportType, headers []string) ([]MappingSuggestion, error) {
	suggestions, ok := SuggestMapping(t, headers)
	if !ok {
		return nil, fmt.Errorf("unknown import type: %s", t)
	}
	return suggestions, nil
}

// ValidateCSV snapshots the tenant's existing data and validates the parsed
// rows against it. The snapshot is taken once per call; concurrent writes
// between validation and execution are an accepted race, which is why the
// write path rechecks references inside each row's transaction.
func (s *Service) ValidateCSV(ctx context.Context, tenantID string, t ImportType, parsed *csvio.ParsedCSV, mapping ColumnMapping) (*ValidationResult, error) {
	if _, ok := StrategyFor(t); !ok {
		return nil, fmt.Errorf("unknown import type: %s", t)
	}
	existing, err := s.store.Snapshot(ctx, tenantID, t)
	if err != nil {
		return nil, fmt.Errorf("snapshot existing data: %w", err)
	}
	return Validate(t, parsed, mapping, existing, s.syn)
}

// Execute runs one import over already-validated rows. Callers validate with
// ValidateCSV immediately before executing; the write path still rechecks
// references inside each row's transaction.
func (s *Service) Execute(ctx context.Context, tenantID string, p ExecuteParams) (*ImportJob, error) {
	p.TenantID = tenantID
	return Execute(ctx, s.log, s.store, p)
}

// History lists the tenant's import jobs, newest first.
func (s *Service) History(ctx context.Context, tenantID string, limit int) ([]ImportJob, error) {
	return s.store.ListJobs(ctx, tenantID, limit)
}

// JobDetail is one job with its per-row records.
type JobDetail struct {
	Job     *ImportJob        `json:"job"`
	Records []ImportJobRecord `json:"records"`
}

// Job fetches one job and its records. Tenant-scoped: a job id belonging to
// another tenant is indistinguishable from a missing one.
func (s *Service) Job(ctx context.Context, tenantID, jobID string) (*JobDetail, error) {
	job, err := s.store.GetJob(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListJobRecords(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	return &JobDetail{Job: job, Records: records}, nil
}

// Rollback reverts a finished import and returns how many entities were
// soft-deleted.
func (s *Service) Rollback(ctx context.Context, tenantID, jobID string) (int, error) {
	return Rollback(ctx, s.log, s.store, tenantID, jobID)
}

// Template renders a downloadable CSV template for an import type: one
// header row of field labels and one example row.
func (s *Service) Template(t ImportType) (fileName, content string, err error) {
	strategy, ok := StrategyFor(t)
	if !ok {
		return "", "", fmt.Errorf("unknown import type: %s", t)
	}

	fields := strategy.Fields()
	headers := make([]string, len(fields))
	example := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Label
		example[i] = f.Example
	}

	return fmt.Sprintf("%s_template.csv", t), csvio.Render(headers, [][]string{example}), nil
}

// Audit lists the tenant's import audit events, newest first.
func (s *Service) Audit(ctx context.Context, tenantID string, limit int) ([]AuditEvent, error) {
	return s.store.ListAudit(ctx, tenantID, limit)
}
