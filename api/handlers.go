/*
handlers.go - HTTP API handlers for the settlement engine

PURPOSE:
  Exposes the finance engine via REST. Handles HTTP request/response,
  JSON serialization, boundary money parsing, and delegates every
  decision to the engine. No business rule lives here.

ENDPOINTS:
  Records:
    POST   /api/records               Create a single ad-hoc record
    GET    /api/records               List (filter: status, type, parent_id)
    GET    /api/records/{id}          Fetch (status shown is the derived one)
    POST   /api/records/{id}/settle   Settle
    POST   /api/records/{id}/cancel   Cancel a non-PAID record
    GET    /api/records/{id}/audit    Settlement audit entries

  Plans:
    POST   /api/plans                 Create an installment family (atomic)

  Charges:
    POST   /api/charges/preview       Suggestion + final amount preview

ERROR HANDLING:
  Errors are returned as JSON with the status derived from the engine's
  error kind:
  - 400: validation errors (field-level message in details)
  - 404: unknown record
  - 409: state conflicts (re-settlement, cancel of PAID, CAS miss)
  - 500: invariant violations, store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/praxis/finance-engine/finance"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Records finance.RecordStore
	Audit   finance.AuditLog

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewHandler creates a new handler over the given store and audit log.
func NewHandler(records finance.RecordStore, audit finance.AuditLog) *Handler {
	return &Handler{Records: records, Audit: audit, Now: time.Now}
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// CreateRecord creates a single ad-hoc financial record.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	amount, err := finance.ParseMoney(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid due_date format (use YYYY-MM-DD)", err)
		return
	}
	recType := finance.RecordType(req.Type)
	if !recType.Valid() {
		writeError(w, http.StatusBadRequest, "type must be INCOME or EXPENSE", nil)
		return
	}

	now := h.Now()
	rec := finance.FinancialRecord{
		ID:            req.ID,
		Description:   req.Description,
		Category:      req.Category,
		Type:          recType,
		Amount:        amount,
		DueDate:       finance.TruncateToDay(dueDate),
		BankAccountID: req.BankAccountID,
		PaymentMethod: req.PaymentMethod,
		Status:        finance.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if err := rec.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Records.Save(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save record", err)
		return
	}
	writeJSON(w, http.StatusCreated, recordDTO(rec, now))
}

// ListRecords returns records matching the optional filters.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	var filter finance.RecordFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status := finance.RecordStatus(s)
		filter.Status = &status
	}
	if t := r.URL.Query().Get("type"); t != "" {
		recType := finance.RecordType(t)
		filter.Type = &recType
	}
	if p := r.URL.Query().Get("parent_id"); p != "" {
		filter.ParentID = &p
	}

	records, err := h.Records.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list records", err)
		return
	}

	now := h.Now()
	dtos := make([]RecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = recordDTO(rec, now)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRecord returns a single record with its derived status.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Records.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordDTO(*rec, h.Now()))
}

// =============================================================================
// SETTLEMENT
// =============================================================================

// SettleRecord applies a one-time settlement. The engine recomputes the
// final amount from the submitted charge fields; the store re-checks the
// status at commit time so concurrent settlements cannot both succeed.
func (h *Handler) SettleRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var paymentDate time.Time
	if req.PaymentDate != "" {
		var err error
		if paymentDate, err = time.Parse("2006-01-02", req.PaymentDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payment_date format (use YYYY-MM-DD)", err)
			return
		}
	}
	charges, err := req.Charges.toDomain()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rec, err := h.Records.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	now := h.Now()
	outcome, err := finance.Settle(rec, finance.Settlement{
		PaymentDate:   paymentDate,
		PaymentMethod: req.PaymentMethod,
		BankAccountID: req.BankAccountID,
		Charges:       charges,
	}, now)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Records.ApplySettlement(r.Context(), *outcome); err != nil {
		writeDomainError(w, err)
		return
	}

	// The engine returns the delta and breakdown precisely so the caller
	// can record them; it never writes logs itself.
	h.appendAudit(r, finance.AuditEntry{
		ID:                 uuid.NewString(),
		RecordID:           outcome.Record.ID,
		Action:             finance.AuditSettled,
		ActorID:            req.ActorID,
		At:                 now,
		Delta:              outcome.Delta,
		Fine:               outcome.Breakdown.Fine,
		Interest:           outcome.Breakdown.Interest,
		MonetaryCorrection: outcome.Breakdown.MonetaryCorrection,
		AppliedDiscount:    outcome.Breakdown.AppliedDiscount,
		AmountFinal:        outcome.Breakdown.AmountFinal,
	})

	writeJSON(w, http.StatusOK, SettleResponse{
		Record: recordDTO(outcome.Record, now),
		Delta:  outcome.Delta.String(),
		Detail: breakdownDTO(outcome.Breakdown),
	})
}

// CancelRecord marks a non-PAID record CANCELLED.
func (h *Handler) CancelRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	now := h.Now()

	if err := h.Records.Cancel(r.Context(), id, now); err != nil {
		writeDomainError(w, err)
		return
	}

	h.appendAudit(r, finance.AuditEntry{
		ID:       uuid.NewString(),
		RecordID: id,
		Action:   finance.AuditCancelled,
		At:       now,
	})

	rec, err := h.Records.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordDTO(*rec, now))
}

// GetAudit returns the audit trail of a record.
func (h *Handler) GetAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Audit.ByRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load audit trail", err)
		return
	}

	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = AuditEntryDTO{
			ID:          e.ID,
			RecordID:    e.RecordID,
			Action:      string(e.Action),
			ActorID:     e.ActorID,
			At:          e.At.Format(time.RFC3339),
			Delta:       e.Delta.String(),
			AmountFinal: e.AmountFinal.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

// CreatePlan materializes and persists an installment family atomically.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	total, err := finance.ParseMoney(req.TotalAmount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	firstDue, err := time.Parse("2006-01-02", req.FirstDueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid first_due_date format (use YYYY-MM-DD)", err)
		return
	}

	now := h.Now()
	records, err := finance.Plan(finance.PlanInput{
		TotalAmount:     total,
		NumInstallments: req.NumInstallments,
		Periodicity:     finance.Periodicity(req.Periodicity),
		FirstDueDate:    firstDue,
		Description:     req.Description,
		Category:        req.Category,
		Type:            finance.RecordType(req.Type),
		BankAccountID:   req.BankAccountID,
		PaymentMethod:   req.PaymentMethod,
	}, now)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Records.SaveBatch(r.Context(), records); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save installment plan", err)
		return
	}

	h.appendAudit(r, finance.AuditEntry{
		ID:       uuid.NewString(),
		RecordID: records[0].ParentID,
		Action:   finance.AuditPlanned,
		At:       now,
	})

	dtos := make([]RecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = recordDTO(rec, now)
	}
	writeJSON(w, http.StatusCreated, PlanDTO{
		ParentID:     records[0].ParentID,
		TotalAmount:  total.String(),
		Installments: dtos,
	})
}

// =============================================================================
// CHARGE PREVIEW
// =============================================================================

// PreviewCharges computes the default-charge suggestion and the final
// amount for the submitted charge fields. Pure computation, nothing is
// persisted; the UI calls this as the operator edits the form.
func (h *Handler) PreviewCharges(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	amount, err := finance.ParseMoney(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid due_date format (use YYYY-MM-DD)", err)
		return
	}
	reference := h.Now()
	if req.ReferenceDate != "" {
		if reference, err = time.Parse("2006-01-02", req.ReferenceDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid reference_date format (use YYYY-MM-DD)", err)
			return
		}
	}
	charges, err := req.Charges.toDomain()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	suggestion := finance.SuggestDefaultCharges(amount, dueDate, reference)
	breakdown, err := finance.ComputeFinalAmount(amount, charges)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PreviewResponse{
		DaysLate:          suggestion.DaysLate,
		MonthsLate:        suggestion.MonthsLate,
		SuggestedFine:     suggestion.Fine.String(),
		SuggestedInterest: suggestion.Interest.String(),
		Breakdown:         breakdownDTO(breakdown),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// appendAudit best-effort appends; audit failures never fail the request
// that already committed.
func (h *Handler) appendAudit(r *http.Request, entry finance.AuditEntry) {
	if h.Audit != nil {
		_ = h.Audit.Append(r.Context(), entry)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine error kinds to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case finance.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation failed", err)
	case finance.IsNotFound(err):
		writeError(w, http.StatusNotFound, "record not found", nil)
	case finance.IsStateConflict(err):
		writeError(w, http.StatusConflict, "record status forbids operation", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}
