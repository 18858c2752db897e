/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements payroll.Store (workers + gateway orders) and reports.Store
  using SQLite. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  workers:        Worker records with the optimistic-lock version column
  shifts:         Embedded shift ledger, one row per shift, position-kept
  payments:       Settlement records with the covered shift ids as JSON
  gateway_orders: Pending/settled/expired gateway sessions
  reports:        Generated report metadata

VERSIONING:
  UpdateWorker executes
    UPDATE workers SET ... , version = version + 1
    WHERE id = ? AND version = ?
  inside a transaction that also rewrites the ledger rows. Zero rows
  affected means either the worker vanished or someone else wrote first;
  the two are distinguished and surfaced as ErrWorkerNotFound vs
  ErrConcurrentModification.

ORDERING:
  Shift and payment rows carry a position column preserving insertion
  order. Position is entry order, not date order; date-range queries
  filter by date in the domain layer.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - payroll/store.go: Interface definitions and the version contract
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/autoweave/payroll-engine/payroll"
	"github.com/autoweave/payroll-engine/reports"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection avoids
	// SQLITE_BUSY and keeps ":memory:" databases from fragmenting across
	// connections.
	db.SetMaxOpenConns(1)

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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		contact TEXT NOT NULL,
		shift_rate TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		shift_date TEXT NOT NULL,
		hours TEXT NOT NULL,
		amount TEXT NOT NULL,
		is_paid INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_worker
		ON shifts(worker_id, position);
	CREATE INDEX IF NOT EXISTS idx_shifts_worker_date
		ON shifts(worker_id, shift_date);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		paid_at TEXT NOT NULL,
		shift_ids TEXT NOT NULL,
		method TEXT NOT NULL,
		gateway_order_id TEXT,
		gateway_payment_id TEXT,
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_worker
		ON payments(worker_id, position);

	CREATE TABLE IF NOT EXISTS gateway_orders (
		order_id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		amount_minor INTEGER NOT NULL,
		receipt TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		expires_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_gateway_orders_worker
		ON gateway_orders(worker_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		report_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		format TEXT NOT NULL,
		file_name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_created
		ON reports(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WORKERS
// =============================================================================

// SaveWorker inserts a new worker at version 1, with its ledger rows.
func (s *Store) SaveWorker(ctx context.Context, w *payroll.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	w.Version = 1
	_, err = tx.ExecContext(ctx,
		`INSERT INTO workers (id, name, contact, shift_rate, version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(w.ID), w.Name, w.Contact, w.ShiftRate.String(), w.Version,
		w.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	if err := insertLedger(ctx, tx, w); err != nil {
		return err
	}
	return tx.Commit()
}

// GetWorker returns the worker with its full ledger, or nil if absent.
func (s *Store) GetWorker(ctx context.Context, id payroll.WorkerID) (*payroll.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, contact, shift_rate, version, created_at
		 FROM workers WHERE id = ?`, string(id))

	w, err := scanWorker(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadLedger(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ListWorkers returns all workers with their ledgers, newest first.
func (s *Store) ListWorkers(ctx context.Context) ([]*payroll.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, contact, shift_rate, version, created_at
		 FROM workers ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []*payroll.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, w := range workers {
		if err := s.loadLedger(ctx, w); err != nil {
			return nil, err
		}
	}
	return workers, nil
}

// UpdateWorker rewrites the aggregate under an optimistic version check.
func (s *Store) UpdateWorker(ctx context.Context, w *payroll.Worker, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE workers SET name = ?, contact = ?, shift_rate = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		w.Name, w.Contact, w.ShiftRate.String(), string(w.ID), expectedVersion)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM workers WHERE id = ?`, string(w.ID)).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return payroll.ErrWorkerNotFound
		}
		return payroll.ErrConcurrentModification
	}

	// Rewrite the ledger rows. Document-style aggregate, adequate at the
	// stated scale, and keeps position numbering dense.
	if _, err := tx.ExecContext(ctx, `DELETE FROM shifts WHERE worker_id = ?`, string(w.ID)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE worker_id = ?`, string(w.ID)); err != nil {
		return err
	}
	if err := insertLedger(ctx, tx, w); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	w.Version = expectedVersion + 1
	return nil
}

// DeleteWorker removes the worker; ledger rows cascade.
func (s *Store) DeleteWorker(ctx context.Context, id payroll.WorkerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM workers WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return payroll.ErrWorkerNotFound
	}
	return nil
}

// =============================================================================
// LEDGER ROW HELPERS
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertLedger(ctx context.Context, tx execer, w *payroll.Worker) error {
	for i, sh := range w.Shifts {
		paid := 0
		if sh.IsPaid {
			paid = 1
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO shifts (id, worker_id, shift_date, hours, amount, is_paid, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(sh.ID), string(w.ID), sh.Date.Format(time.RFC3339Nano),
			sh.Hours.String(), sh.Amount.String(), paid, i)
		if err != nil {
			return err
		}
	}

	for i, p := range w.Payments {
		ids := make([]string, len(p.ShiftIDs))
		for j, sid := range p.ShiftIDs {
			ids[j] = string(sid)
		}
		idsJSON, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO payments (id, worker_id, amount, paid_at, shift_ids, method,
			                       gateway_order_id, gateway_payment_id, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(p.ID), string(w.ID), p.Amount.String(),
			p.Date.Format(time.RFC3339Nano), string(idsJSON), string(p.Method),
			p.GatewayOrderID, p.GatewayPaymentID, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadLedger(ctx context.Context, w *payroll.Worker) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, shift_date, hours, amount, is_paid
		 FROM shifts WHERE worker_id = ? ORDER BY position`, string(w.ID))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, dateStr, hoursStr, amountStr string
			paid                             int
		)
		if err := rows.Scan(&id, &dateStr, &hoursStr, &amountStr, &paid); err != nil {
			return err
		}
		date, err := time.Parse(time.RFC3339Nano, dateStr)
		if err != nil {
			return err
		}
		hours, err := decimal.NewFromString(hoursStr)
		if err != nil {
			return err
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return err
		}
		w.Shifts = append(w.Shifts, payroll.Shift{
			ID:     payroll.ShiftID(id),
			Date:   date,
			Hours:  hours,
			Amount: amount,
			IsPaid: paid == 1,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	prows, err := s.db.QueryContext(ctx,
		`SELECT id, amount, paid_at, shift_ids, method, gateway_order_id, gateway_payment_id
		 FROM payments WHERE worker_id = ? ORDER BY position`, string(w.ID))
	if err != nil {
		return err
	}
	defer prows.Close()

	for prows.Next() {
		var (
			id, amountStr, dateStr, idsJSON, method string
			orderID, paymentID                      sql.NullString
		)
		if err := prows.Scan(&id, &amountStr, &dateStr, &idsJSON, &method, &orderID, &paymentID); err != nil {
			return err
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return err
		}
		date, err := time.Parse(time.RFC3339Nano, dateStr)
		if err != nil {
			return err
		}
		var ids []string
		if err := json.Unmarshal([]byte(idsJSON), &ids); err != nil {
			return err
		}
		shiftIDs := make([]payroll.ShiftID, len(ids))
		for i, sid := range ids {
			shiftIDs[i] = payroll.ShiftID(sid)
		}
		w.Payments = append(w.Payments, payroll.Payment{
			ID:               payroll.PaymentID(id),
			Amount:           amount,
			Date:             date,
			ShiftIDs:         shiftIDs,
			Method:           payroll.PaymentMethod(method),
			GatewayOrderID:   orderID.String,
			GatewayPaymentID: paymentID.String,
		})
	}
	return prows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanWorker(row scannable) (*payroll.Worker, error) {
	var (
		id, name, contact, rateStr, createdStr string
		version                                int64
	)
	if err := row.Scan(&id, &name, &contact, &rateStr, &version, &createdStr); err != nil {
		return nil, err
	}
	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return nil, err
	}
	created, err := time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return nil, err
	}
	return &payroll.Worker{
		ID:        payroll.WorkerID(id),
		Name:      name,
		Contact:   contact,
		ShiftRate: rate,
		Version:   version,
		CreatedAt: created,
	}, nil
}

// =============================================================================
// GATEWAY ORDERS
// =============================================================================

func (s *Store) SaveOrder(ctx context.Context, o payroll.GatewayOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gateway_orders (order_id, worker_id, amount_minor, receipt, status, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.OrderID, string(o.WorkerID), o.AmountMinor, o.Receipt, string(o.Status),
		o.CreatedAt.Format(time.RFC3339Nano), o.ExpiresAt.Format(time.RFC3339Nano))
	return err
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*payroll.GatewayOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		oid, workerID, receipt, status, createdStr, expiresStr string
		amountMinor                                            int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT order_id, worker_id, amount_minor, receipt, status, created_at, expires_at
		 FROM gateway_orders WHERE order_id = ?`, orderID).
		Scan(&oid, &workerID, &amountMinor, &receipt, &status, &createdStr, &expiresStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	created, err := time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return nil, err
	}
	expires, err := time.Parse(time.RFC3339Nano, expiresStr)
	if err != nil {
		return nil, err
	}
	return &payroll.GatewayOrder{
		OrderID:     oid,
		WorkerID:    payroll.WorkerID(workerID),
		AmountMinor: amountMinor,
		Receipt:     receipt,
		Status:      payroll.OrderStatus(status),
		CreatedAt:   created,
		ExpiresAt:   expires,
	}, nil
}

func (s *Store) SetOrderStatus(ctx context.Context, orderID string, status payroll.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE gateway_orders SET status = ? WHERE order_id = ?`, string(status), orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return payroll.ErrOrderNotFound
	}
	return nil
}

// =============================================================================
// REPORTS
// =============================================================================

func (s *Store) SaveReport(ctx context.Context, r reports.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, report_type, start_date, end_date, format, file_name, file_path, file_size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.Type), r.Start.Format(time.RFC3339Nano), r.End.Format(time.RFC3339Nano),
		string(r.Format), r.FileName, r.FilePath, r.FileSize, r.CreatedAt.Format(time.RFC3339Nano))
	return err
}

func (s *Store) GetReport(ctx context.Context, id string) (*reports.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, report_type, start_date, end_date, format, file_name, file_path, file_size, created_at
		 FROM reports WHERE id = ?`, id)

	rec, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) ListReports(ctx context.Context, limit int) ([]reports.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_type, start_date, end_date, format, file_name, file_path, file_size, created_at
		 FROM reports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []reports.Record
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

func (s *Store) DeleteReport(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return reports.ErrReportNotFound
	}
	return nil
}

func scanReport(row scannable) (*reports.Record, error) {
	var (
		id, typ, startStr, endStr, format, fileName, filePath, createdStr string
		fileSize                                                         int64
	)
	if err := row.Scan(&id, &typ, &startStr, &endStr, &format, &fileName, &filePath, &fileSize, &createdStr); err != nil {
		return nil, err
	}
	start, err := time.Parse(time.RFC3339Nano, startStr)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(time.RFC3339Nano, endStr)
	if err != nil {
		return nil, err
	}
	created, err := time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return nil, err
	}
	return &reports.Record{
		ID:        id,
		Type:      reports.Type(typ),
		Start:     start,
		End:       end,
		Format:    reports.Format(format),
		FileName:  fileName,
		FilePath:  filePath,
		FileSize:  fileSize,
		CreatedAt: created,
	}, nil
}
