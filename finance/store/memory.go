// Package store provides RecordStore implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/praxis/finance-engine/finance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements finance.RecordStore and finance.AuditLog with the same
// guard semantics as the SQLite store: the settlement and cancel updates
// re-check the persisted status under the lock before mutating.
type Memory struct {
	mu      sync.RWMutex
	records map[string]finance.FinancialRecord
	audit   map[string][]finance.AuditEntry
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]finance.FinancialRecord),
		audit:   make(map[string][]finance.AuditEntry),
	}
}

func (m *Memory) Save(_ context.Context, rec finance.FinancialRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

// SaveBatch inserts all records or none. For the memory store the single
// lock makes the batch trivially atomic.
func (m *Memory) SaveBatch(_ context.Context, recs []finance.FinancialRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		m.records[rec.ID] = rec
	}
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*finance.FinancialRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, finance.ErrRecordNotFound
	}
	return &rec, nil
}

func (m *Memory) List(_ context.Context, filter finance.RecordFilter) ([]finance.FinancialRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []finance.FinancialRecord
	for _, rec := range m.records {
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && rec.Type != *filter.Type {
			continue
		}
		if filter.ParentID != nil && rec.ParentID != *filter.ParentID {
			continue
		}
		result = append(result, rec)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueDate.Equal(result[j].DueDate) {
			return result[i].DueDate.Before(result[j].DueDate)
		}
		return result[i].InstallmentNumber < result[j].InstallmentNumber
	})
	return result, nil
}

// ApplySettlement commits the outcome iff the stored record is still in a
// settleable status. This is the memory-store equivalent of the SQLite
// compare-and-swap UPDATE.
func (m *Memory) ApplySettlement(_ context.Context, outcome finance.SettlementOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[outcome.Record.ID]
	if !ok {
		return finance.ErrRecordNotFound
	}
	if !finance.IsSettleable(current.Status) {
		return &finance.StateConflictError{
			RecordID:  current.ID,
			Status:    current.Status,
			Operation: "settle",
		}
	}

	m.records[outcome.Record.ID] = outcome.Record
	return nil
}

func (m *Memory) Cancel(_ context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[id]
	if !ok {
		return finance.ErrRecordNotFound
	}
	if !finance.IsCancellable(current.Status) {
		return &finance.StateConflictError{
			RecordID:  id,
			Status:    current.Status,
			Operation: "cancel",
		}
	}

	current.Status = finance.StatusCancelled
	current.UpdatedAt = now
	m.records[id] = current
	return nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (m *Memory) Append(_ context.Context, entry finance.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit[entry.RecordID] = append(m.audit[entry.RecordID], entry)
	return nil
}

func (m *Memory) ByRecord(_ context.Context, recordID string) ([]finance.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]finance.AuditEntry, len(m.audit[recordID]))
	copy(entries, m.audit[recordID])
	return entries, nil
}
