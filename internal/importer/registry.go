package importer

import (
	"context"
	"fmt"
	"sync"
)

// Strategy bundles everything type-specific about one import type: its field
// registry, its cross-entity validation rules, its write behavior, and the
// table rollback soft-deletes from. Adding a seventh import type means
// registering one new strategy.
type Strategy interface {
	Type() ImportType
	Label() string
	Fields() []Field

	// EntityTable names the table that owns entities created by this type,
	// used by rollback to soft-delete them.
	EntityTable() string

	// ValidateRow applies the type's cross-entity and duplicate rules to an
	// already-coerced row, appending errors/warnings and setting the
	// duplicate flag. Pure with respect to vc.
	ValidateRow(row *ValidatedRow, vc *ValidationContext)

	// Insert performs the type-specific write for one valid row. The RowStore
	// is transactional: the entity write and the caller's job-record write
	// commit together.
	Insert(ctx context.Context, rs RowStore, tenantID string, row *ValidatedRow, metadata map[string]string) (WriteResult, error)
}

var (
	strategies   = make(map[ImportType]Strategy)
	strategiesMu sync.RWMutex
	typeOrder    []ImportType
)

// RegisterStrategy adds a strategy to the registry. Panics on a duplicate
// type, mirroring flag.Var semantics: registration happens once at init.
func RegisterStrategy(s Strategy) {
	strategiesMu.Lock()
	defer strategiesMu.Unlock()

	if _, exists := strategies[s.Type()]; exists {
		panic(fmt.Sprintf("import strategy already registered: %s", s.Type()))
	}
	strategies[s.Type()] = s
	typeOrder = append(typeOrder, s.Type())
}

// StrategyFor returns the strategy for an import type.
func StrategyFor(t ImportType) (Strategy, bool) {
	strategiesMu.RLock()
	defer strategiesMu.RUnlock()
	s, ok := strategies[t]
	return s, ok
}

// AllStrategies returns every registered strategy in registration order.
func AllStrategies() []Strategy {
	strategiesMu.RLock()
	defer strategiesMu.RUnlock()

	result := make([]Strategy, 0, len(typeOrder))
	for _, t := range typeOrder {
		result = append(result, strategies[t])
	}
	return result
}

// FieldsFor returns the ordered target fields for an import type.
func FieldsFor(t ImportType) ([]Field, bool) {
	s, ok := StrategyFor(t)
	if !ok {
		return nil, false
	}
	return s.Fields(), true
}
