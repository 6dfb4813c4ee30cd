/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements finance.RecordStore and finance.AuditLog using SQLite. The
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

GUARDED UPDATES:
  Settlement and cancellation are compare-and-swap UPDATEs: the WHERE
  clause re-checks the persisted status, so a record that was settled or
  cancelled by a concurrent caller is left untouched and the operation
  reports a state conflict. This is the storage-level re-check the engine
  documents as its serialization precondition.

ATOMIC BATCHES:
  SaveBatch runs inside a database transaction. An installment family is
  persisted all-or-nothing; a partial plan would break the sum invariant
  for readers.

KEY TABLES:
  financial_records: One row per record. Money columns are INTEGER minor
                     units; day-precision dates are TEXT (YYYY-MM-DD).
  audit_entries:     Append-only settlement/cancellation audit trail.

  Party and split attachments belong to the surrounding suite's contact
  store; this engine only reads them in memory and does not persist them.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers don't
  block, single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/finance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - finance/store.go: Interface definitions and guard contracts
  - finance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/praxis/finance-engine/finance"
)

const dayFormat = "2006-01-02"

// Store implements finance.RecordStore and finance.AuditLog using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS financial_records (
		id TEXT PRIMARY KEY,
		description TEXT,
		category TEXT,
		record_type TEXT NOT NULL,
		amount INTEGER NOT NULL,
		due_date TEXT NOT NULL,
		payment_date TEXT,
		payment_method TEXT,
		bank_account_id TEXT,
		fine INTEGER NOT NULL DEFAULT 0,
		interest INTEGER NOT NULL DEFAULT 0,
		monetary_correction INTEGER NOT NULL DEFAULT 0,
		discount INTEGER NOT NULL DEFAULT 0,
		discount_percent INTEGER NOT NULL DEFAULT 0,
		discount_type TEXT,
		amount_final INTEGER NOT NULL DEFAULT 0,
		amount_paid INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		parent_id TEXT,
		installment_number INTEGER NOT NULL DEFAULT 0,
		total_installments INTEGER NOT NULL DEFAULT 0,
		periodicity TEXT,
		is_residual INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_status
		ON financial_records(status);
	CREATE INDEX IF NOT EXISTS idx_records_parent
		ON financial_records(parent_id) WHERE parent_id != '';
	CREATE INDEX IF NOT EXISTS idx_records_due_date
		ON financial_records(due_date);

	-- Append-only audit trail of lifecycle events
	CREATE TABLE IF NOT EXISTS audit_entries (
		id TEXT PRIMARY KEY,
		record_id TEXT NOT NULL,
		action TEXT NOT NULL,
		actor_id TEXT,
		at TEXT NOT NULL,
		delta INTEGER NOT NULL DEFAULT 0,
		fine INTEGER NOT NULL DEFAULT 0,
		interest INTEGER NOT NULL DEFAULT 0,
		monetary_correction INTEGER NOT NULL DEFAULT 0,
		applied_discount INTEGER NOT NULL DEFAULT 0,
		amount_final INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_audit_record
		ON audit_entries(record_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE
// =============================================================================

const recordColumns = `id, description, category, record_type, amount, due_date,
	payment_date, payment_method, bank_account_id,
	fine, interest, monetary_correction, discount, discount_percent, discount_type,
	amount_final, amount_paid, status, parent_id,
	installment_number, total_installments, periodicity, is_residual,
	created_at, updated_at`

func (s *Store) Save(ctx context.Context, rec finance.FinancialRecord) error {
	return insert(ctx, s.db, rec)
}

// SaveBatch inserts an installment family atomically.
func (s *Store) SaveBatch(ctx context.Context, recs []finance.FinancialRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if err := insert(ctx, tx, rec); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// execer lets insert run against both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, e execer, rec finance.FinancialRecord) error {
	var paymentDate any
	if rec.PaymentDate != nil {
		paymentDate = rec.PaymentDate.Format(dayFormat)
	}

	_, err := e.ExecContext(ctx, `
		INSERT INTO financial_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Description, rec.Category, string(rec.Type), int64(rec.Amount),
		rec.DueDate.Format(dayFormat), paymentDate, rec.PaymentMethod, rec.BankAccountID,
		int64(rec.Charges.Fine), int64(rec.Charges.Interest), int64(rec.Charges.MonetaryCorrection),
		int64(rec.Charges.Discount), int64(rec.Charges.DiscountPercent), string(rec.Charges.DiscountType),
		int64(rec.AmountFinal), int64(rec.AmountPaid), string(rec.Status), rec.ParentID,
		rec.InstallmentNumber, rec.TotalInstallments, string(rec.Periodicity), rec.IsResidual,
		rec.CreatedAt.UTC().Format(time.RFC3339), rec.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (*finance.FinancialRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM financial_records WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, finance.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) List(ctx context.Context, filter finance.RecordFilter) ([]finance.FinancialRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM financial_records WHERE 1=1`
	var args []any

	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	if filter.Type != nil {
		query += ` AND record_type = ?`
		args = append(args, string(*filter.Type))
	}
	if filter.ParentID != nil {
		query += ` AND parent_id = ?`
		args = append(args, *filter.ParentID)
	}
	query += ` ORDER BY due_date, installment_number`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []finance.FinancialRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

// ApplySettlement commits a settlement outcome with a compare-and-swap on
// status: the UPDATE only matches rows still in PENDING/OVERDUE, so a
// concurrent settlement or cancellation makes this a no-op reported as a
// state conflict.
func (s *Store) ApplySettlement(ctx context.Context, outcome finance.SettlementOutcome) error {
	rec := outcome.Record
	if rec.PaymentDate == nil {
		return &finance.ValidationError{Field: "paymentDate", Message: "settlement outcome missing payment date"}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE financial_records SET
			status = ?, payment_date = ?, payment_method = ?, bank_account_id = ?,
			fine = ?, interest = ?, monetary_correction = ?,
			discount = ?, discount_percent = ?, discount_type = ?,
			amount_final = ?, amount_paid = ?, updated_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		string(finance.StatusPaid), rec.PaymentDate.Format(dayFormat), rec.PaymentMethod, rec.BankAccountID,
		int64(rec.Charges.Fine), int64(rec.Charges.Interest), int64(rec.Charges.MonetaryCorrection),
		int64(rec.Charges.Discount), int64(rec.Charges.DiscountPercent), string(rec.Charges.DiscountType),
		int64(rec.AmountFinal), int64(rec.AmountPaid), rec.UpdatedAt.UTC().Format(time.RFC3339),
		rec.ID, string(finance.StatusPending), string(finance.StatusOverdue),
	)
	if err != nil {
		return err
	}
	return s.checkGuarded(ctx, res, rec.ID, "settle")
}

// Cancel marks a non-PAID record CANCELLED, with the same CAS guard.
func (s *Store) Cancel(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE financial_records SET status = ?, updated_at = ?
		WHERE id = ? AND status NOT IN (?, ?)`,
		string(finance.StatusCancelled), now.UTC().Format(time.RFC3339),
		id, string(finance.StatusPaid), string(finance.StatusCancelled),
	)
	if err != nil {
		return err
	}
	return s.checkGuarded(ctx, res, id, "cancel")
}

// checkGuarded distinguishes "row missing" from "guard failed" when a
// guarded UPDATE matched nothing.
func (s *Store) checkGuarded(ctx context.Context, res sql.Result, id, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var status string
	err = s.db.QueryRowContext(ctx,
		`SELECT status FROM financial_records WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return finance.ErrRecordNotFound
	}
	if err != nil {
		return err
	}
	return &finance.StateConflictError{
		RecordID:  id,
		Status:    finance.RecordStatus(status),
		Operation: op,
	}
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*finance.FinancialRecord, error) {
	var (
		rec                                       finance.FinancialRecord
		recordType, status, periodicity, discType string
		dueDate, createdAt, updatedAt             string
		paymentDate                               sql.NullString
		amount, fine, interest, correction        int64
		discount, discountPercent                 int64
		amountFinal, amountPaid                   int64
	)

	err := row.Scan(
		&rec.ID, &rec.Description, &rec.Category, &recordType, &amount, &dueDate,
		&paymentDate, &rec.PaymentMethod, &rec.BankAccountID,
		&fine, &interest, &correction, &discount, &discountPercent, &discType,
		&amountFinal, &amountPaid, &status, &rec.ParentID,
		&rec.InstallmentNumber, &rec.TotalInstallments, &periodicity, &rec.IsResidual,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Type = finance.RecordType(recordType)
	rec.Status = finance.RecordStatus(status)
	rec.Periodicity = finance.Periodicity(periodicity)
	rec.Amount = finance.Money(amount)
	rec.Charges = finance.Charges{
		Fine:               finance.Money(fine),
		Interest:           finance.Money(interest),
		MonetaryCorrection: finance.Money(correction),
		Discount:           finance.Money(discount),
		DiscountPercent:    finance.Percent(discountPercent),
		DiscountType:       finance.DiscountType(discType),
	}
	rec.AmountFinal = finance.Money(amountFinal)
	rec.AmountPaid = finance.Money(amountPaid)

	if rec.DueDate, err = time.Parse(dayFormat, dueDate); err != nil {
		return nil, err
	}
	if paymentDate.Valid && paymentDate.String != "" {
		pd, err := time.Parse(dayFormat, paymentDate.String)
		if err != nil {
			return nil, err
		}
		rec.PaymentDate = &pd
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (s *Store) Append(ctx context.Context, entry finance.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries
			(id, record_id, action, actor_id, at, delta, fine, interest,
			 monetary_correction, applied_discount, amount_final)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.RecordID, string(entry.Action), entry.ActorID,
		entry.At.UTC().Format(time.RFC3339),
		int64(entry.Delta), int64(entry.Fine), int64(entry.Interest),
		int64(entry.MonetaryCorrection), int64(entry.AppliedDiscount), int64(entry.AmountFinal),
	)
	return err
}

func (s *Store) ByRecord(ctx context.Context, recordID string) ([]finance.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, record_id, action, actor_id, at, delta, fine, interest,
		       monetary_correction, applied_discount, amount_final
		FROM audit_entries WHERE record_id = ? ORDER BY at`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []finance.AuditEntry
	for rows.Next() {
		var (
			e                                 finance.AuditEntry
			action, at                        string
			delta, fine, interest, correction int64
			discount, amountFinal             int64
		)
		if err := rows.Scan(&e.ID, &e.RecordID, &action, &e.ActorID, &at,
			&delta, &fine, &interest, &correction, &discount, &amountFinal); err != nil {
			return nil, err
		}
		e.Action = finance.AuditAction(action)
		if e.At, err = time.Parse(time.RFC3339, at); err != nil {
			return nil, err
		}
		e.Delta = finance.Money(delta)
		e.Fine = finance.Money(fine)
		e.Interest = finance.Money(interest)
		e.MonetaryCorrection = finance.Money(correction)
		e.AppliedDiscount = finance.Money(discount)
		e.AmountFinal = finance.Money(amountFinal)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
