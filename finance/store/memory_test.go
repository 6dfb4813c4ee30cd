package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis/finance-engine/finance"
	"github.com/praxis/finance-engine/finance/store"
)

func pending(id string, due time.Time) finance.FinancialRecord {
	return finance.FinancialRecord{
		ID:      id,
		Type:    finance.TypeIncome,
		Amount:  finance.MustParseMoney("100.00"),
		DueDate: due,
		Status:  finance.StatusPending,
	}
}

func TestMemory_SettlementGuardMatchesSQLite(t *testing.T) {
	// Same lost-update scenario the SQLite store guards with its CAS
	// UPDATE: two outcomes from one snapshot, only the first commits.

	m := store.NewMemory()
	ctx := context.Background()
	due := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	rec := pending("rec-1", due)
	require.NoError(t, m.Save(ctx, rec))

	s := finance.Settlement{
		PaymentDate:   due,
		PaymentMethod: "pix",
		BankAccountID: "acc-1",
	}
	first, err := finance.Settle(&rec, s, time.Now())
	require.NoError(t, err)
	second, err := finance.Settle(&rec, s, time.Now())
	require.NoError(t, err)

	require.NoError(t, m.ApplySettlement(ctx, *first))
	assert.True(t, finance.IsStateConflict(m.ApplySettlement(ctx, *second)))

	got, err := m.Get(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, finance.StatusPaid, got.Status)
}

func TestMemory_CancelGuard(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	due := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, m.Save(ctx, pending("rec-1", due)))
	require.NoError(t, m.Cancel(ctx, "rec-1", time.Now()))
	assert.True(t, finance.IsStateConflict(m.Cancel(ctx, "rec-1", time.Now())))
	assert.True(t, finance.IsNotFound(m.Cancel(ctx, "nope", time.Now())))
}

func TestMemory_ListOrdersByDueDateThenNumber(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	late := pending("late", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	early1 := pending("early-1", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	early1.InstallmentNumber = 1
	early2 := pending("early-2", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	early2.InstallmentNumber = 2

	require.NoError(t, m.SaveBatch(ctx, []finance.FinancialRecord{late, early2, early1}))

	all, err := m.List(ctx, finance.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"early-1", "early-2", "late"},
		[]string{all[0].ID, all[1].ID, all[2].ID})
}

func TestMemory_AuditReturnsCopies(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Append(ctx, finance.AuditEntry{ID: "a-1", RecordID: "rec-1"}))

	entries, err := m.ByRecord(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entries[0].ID = "mutated"

	again, err := m.ByRecord(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "a-1", again[0].ID, "callers must not share the backing slice")
}
