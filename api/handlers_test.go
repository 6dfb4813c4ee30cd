package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis/finance-engine/api"
	"github.com/praxis/finance-engine/finance"
	"github.com/praxis/finance-engine/finance/store"
)

var fixedNow = time.Date(2024, time.January, 25, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*store.Memory, http.Handler) {
	t.Helper()
	mem := store.NewMemory()
	h := api.NewHandler(mem, mem)
	h.Now = func() time.Time { return fixedNow }
	return mem, api.NewRouter(h)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// =============================================================================
// RECORDS
// =============================================================================

func TestCreateRecord(t *testing.T) {
	_, srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/records", api.CreateRecordRequest{
		Description: "consulting invoice",
		Type:        "INCOME",
		Amount:      "1000.00",
		DueDate:     "2024-02-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	dto := decode[api.RecordDTO](t, rec)
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "1000.00", dto.Amount)
	assert.Equal(t, "2024-02-10", dto.DueDate)
	assert.Equal(t, "PENDING", dto.Status)
}

func TestCreateRecord_DerivedOverdueInResponse(t *testing.T) {
	// GIVEN: a record created with a due date already in the past
	// THEN: the stored status is PENDING but the API reads OVERDUE

	mem, srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/records", api.CreateRecordRequest{
		ID:      "rec-1",
		Type:    "EXPENSE",
		Amount:  "50.00",
		DueDate: "2024-01-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "OVERDUE", decode[api.RecordDTO](t, rec).Status)

	stored, err := mem.Get(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, finance.StatusPending, stored.Status)
}

func TestCreateRecord_Rejections(t *testing.T) {
	_, srv := newTestServer(t)

	cases := map[string]api.CreateRecordRequest{
		"zero amount":   {Type: "INCOME", Amount: "0", DueDate: "2024-02-10"},
		"bad amount":    {Type: "INCOME", Amount: "12.345", DueDate: "2024-02-10"},
		"bad type":      {Type: "TRANSFER", Amount: "10.00", DueDate: "2024-02-10"},
		"bad due date":  {Type: "INCOME", Amount: "10.00", DueDate: "10/02/2024"},
	}
	for name, req := range cases {
		rec := doJSON(t, srv, http.MethodPost, "/api/records", req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	_, srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/records/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// PLANS
// =============================================================================

func TestCreatePlan(t *testing.T) {
	_, srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/plans", api.CreatePlanRequest{
		TotalAmount:     "100.01",
		NumInstallments: 3,
		Periodicity:     "MONTHLY",
		FirstDueDate:    "2024-01-31",
		Description:     "annual license",
		Type:            "INCOME",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	plan := decode[api.PlanDTO](t, rec)
	assert.NotEmpty(t, plan.ParentID)
	assert.Equal(t, "100.01", plan.TotalAmount)
	require.Len(t, plan.Installments, 3)
	assert.Equal(t, "33.33", plan.Installments[0].Amount)
	assert.Equal(t, "33.35", plan.Installments[2].Amount)
	assert.Equal(t, "2024-02-29", plan.Installments[1].DueDate)
	assert.True(t, plan.Installments[2].IsResidual)

	// The family is listable through the filter.
	listed := doJSON(t, srv, http.MethodGet, "/api/records?parent_id="+plan.ParentID, nil)
	require.Equal(t, http.StatusOK, listed.Code)
	assert.Len(t, decode[[]api.RecordDTO](t, listed), 3)
}

func TestCreatePlan_RejectsSingleInstallment(t *testing.T) {
	_, srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/plans", api.CreatePlanRequest{
		TotalAmount:     "100.00",
		NumInstallments: 1,
		Periodicity:     "MONTHLY",
		FirstDueDate:    "2024-02-01",
		Type:            "INCOME",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SETTLEMENT
// =============================================================================

func settleBody() api.SettleRequest {
	return api.SettleRequest{
		PaymentDate:   "2024-01-20",
		PaymentMethod: "pix",
		BankAccountID: "acc-1",
		ActorID:       "user-7",
	}
}

func createPending(t *testing.T, srv http.Handler, id, amount string) {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/records", api.CreateRecordRequest{
		ID:      id,
		Type:    "INCOME",
		Amount:  amount,
		DueDate: "2024-01-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestSettleRecord(t *testing.T) {
	_, srv := newTestServer(t)
	createPending(t, srv, "rec-1", "1000.00")

	body := settleBody()
	body.Charges = api.ChargesDTO{Fine: "20.00", Interest: "10.00"}

	rec := doJSON(t, srv, http.MethodPost, "/api/records/rec-1/settle", body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[api.SettleResponse](t, rec)
	assert.Equal(t, "PAID", resp.Record.Status)
	assert.Equal(t, "1030.00", resp.Record.AmountPaid)
	require.NotNil(t, resp.Record.PaymentDate)
	assert.Equal(t, "2024-01-20", *resp.Record.PaymentDate)
	assert.Equal(t, "30.00", resp.Delta)
	assert.Equal(t, "20.00", resp.Detail.Fine)
	assert.Equal(t, "1030.00", resp.Detail.AmountFinal)

	// The settlement left an audit entry with the delta.
	audit := doJSON(t, srv, http.MethodGet, "/api/records/rec-1/audit", nil)
	require.Equal(t, http.StatusOK, audit.Code)
	entries := decode[[]api.AuditEntryDTO](t, audit)
	require.Len(t, entries, 1)
	assert.Equal(t, "settled", entries[0].Action)
	assert.Equal(t, "user-7", entries[0].ActorID)
	assert.Equal(t, "30.00", entries[0].Delta)
}

func TestSettleRecord_SecondCallConflicts(t *testing.T) {
	_, srv := newTestServer(t)
	createPending(t, srv, "rec-1", "1000.00")

	first := doJSON(t, srv, http.MethodPost, "/api/records/rec-1/settle", settleBody())
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, srv, http.MethodPost, "/api/records/rec-1/settle", settleBody())
	assert.Equal(t, http.StatusConflict, second.Code)

	// The first settlement is untouched.
	got := doJSON(t, srv, http.MethodGet, "/api/records/rec-1", nil)
	dto := decode[api.RecordDTO](t, got)
	assert.Equal(t, "PAID", dto.Status)
	assert.Equal(t, "1000.00", dto.AmountPaid)
}

func TestSettleRecord_ValidationAndNotFound(t *testing.T) {
	_, srv := newTestServer(t)
	createPending(t, srv, "rec-1", "1000.00")

	missing := settleBody()
	missing.PaymentMethod = ""
	rec := doJSON(t, srv, http.MethodPost, "/api/records/rec-1/settle", missing)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/records/nope/settle", settleBody())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// CANCEL
// =============================================================================

func TestCancelRecord(t *testing.T) {
	_, srv := newTestServer(t)
	createPending(t, srv, "rec-1", "100.00")

	rec := doJSON(t, srv, http.MethodPost, "/api/records/rec-1/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CANCELLED", decode[api.RecordDTO](t, rec).Status)

	// Cancel is not idempotent: the second call conflicts.
	rec = doJSON(t, srv, http.MethodPost, "/api/records/rec-1/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelRecord_PaidRecordConflicts(t *testing.T) {
	_, srv := newTestServer(t)
	createPending(t, srv, "rec-1", "100.00")

	settled := doJSON(t, srv, http.MethodPost, "/api/records/rec-1/settle", settleBody())
	require.Equal(t, http.StatusOK, settled.Code)

	rec := doJSON(t, srv, http.MethodPost, "/api/records/rec-1/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// =============================================================================
// CHARGE PREVIEW
// =============================================================================

func TestPreviewCharges(t *testing.T) {
	// GIVEN: 1000.00 due Jan 10, previewed Jan 20 with the suggested charges
	// THEN: fine 2% = 20.00, interest 1 month = 10.00, final 1030.00

	_, srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/charges/preview", api.PreviewRequest{
		Amount:        "1000.00",
		DueDate:       "2024-01-10",
		ReferenceDate: "2024-01-20",
		Charges:       api.ChargesDTO{Fine: "20.00", Interest: "10.00"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[api.PreviewResponse](t, rec)
	assert.Equal(t, 10, resp.DaysLate)
	assert.Equal(t, 1, resp.MonthsLate)
	assert.Equal(t, "20.00", resp.SuggestedFine)
	assert.Equal(t, "10.00", resp.SuggestedInterest)
	assert.Equal(t, "1030.00", resp.Breakdown.AmountFinal)
}

func TestPreviewCharges_NothingPersisted(t *testing.T) {
	mem, srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/charges/preview", api.PreviewRequest{
		Amount:  "100.00",
		DueDate: "2024-01-10",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	all, err := mem.List(context.Background(), finance.RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}
