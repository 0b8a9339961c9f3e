/*
Package sqlite provides the SQLite-backed persistence for the HR engine.

PURPOSE:
  Stores the collaborator data the calculators consume (employee profiles,
  rosters, raw punches, leave balances) and the outputs worth keeping
  (settlements, month summaries, month-close audit runs). The calculators
  never touch the store; the api package loads rows, calls the engine and
  saves the results.

KEY TABLES:
  employees:        HR profile, compensation and tenure facts
  rosters:          Roster definitions as factory JSON (versioned)
  attendance:       Raw punches, one row per employee per day
  leave_balances:   Unused paid and casual leave per employee
  settlements:      Computed exit settlements (result JSON, append-only)
  month_summaries:  Classified month totals written by month close
  month_close_runs: Audit trail of month-close batches

MONEY AND HOURS:
  Stored as TEXT decimal strings so values round-trip exactly. Dates are
  YYYY-MM-DD TEXT, timestamps RFC3339 UTC.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite allows one writer at a time;
  the mutex keeps month-close workers from tripping over SQLITE_BUSY.

USAGE:
  store, err := sqlite.New("./data/hr.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - api/handlers.go: Loads rows and calls the engine
  - api/scheduler.go: Month close
  - factory/roster.go: Roster JSON stored in rosters.config_json
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/generic"
)

// Store persists HR data in SQLite.
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
	// Every connection to ":memory:" is a separate database.
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

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		department TEXT,
		designation TEXT,
		date_of_joining TEXT NOT NULL,
		resignation_date TEXT,
		exit_date TEXT,
		annual_ctc TEXT NOT NULL DEFAULT '0',
		annual_bonus TEXT NOT NULL DEFAULT '0',
		pending_reimbursements TEXT NOT NULL DEFAULT '0',
		roster_id TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rosters (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- One punch record per employee and shift start date.
	-- Corrections go through UpsertPunch.
	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		clock_in TEXT,
		clock_out TEXT,
		source TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(employee_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_employee_date
		ON attendance(employee_id, date);

	CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id TEXT PRIMARY KEY,
		paid_leave TEXT NOT NULL,
		casual_leave TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Settlements are append-only; the latest row per employee is current.
	CREATE TABLE IF NOT EXISTS settlements (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		exit_date TEXT NOT NULL,
		gross_amount TEXT NOT NULL,
		net_settlement TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_settlements_employee
		ON settlements(employee_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS month_summaries (
		employee_id TEXT NOT NULL,
		month TEXT NOT NULL,
		roster_id TEXT NOT NULL,
		status_counts_json TEXT NOT NULL,
		working_days TEXT NOT NULL,
		work_hours TEXT NOT NULL,
		overtime TEXT NOT NULL,
		flagged INTEGER NOT NULL DEFAULT 0,
		run_id TEXT,
		created_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, month)
	);

	CREATE TABLE IF NOT EXISTS month_close_runs (
		id TEXT PRIMARY KEY,
		month TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		employees INTEGER DEFAULT 0,
		processed INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		errors_json TEXT,
		started_at TEXT,
		completed_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_month_close_runs_month
		ON month_close_runs(month, status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// Employee is the HR profile of one employee.
type Employee struct {
	ID                    string
	Name                  string
	Email                 string
	Department            string
	Designation           string
	DateOfJoining         string
	ResignationDate       string
	ExitDate              string
	AnnualCTC             decimal.Decimal
	AnnualBonus           decimal.Decimal
	PendingReimbursements decimal.Decimal
	RosterID              string // empty = default roster
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

const employeeColumns = `id, name, email, department, designation, date_of_joining,
	resignation_date, exit_date, annual_ctc, annual_bonus, pending_reimbursements,
	roster_id, created_at, updated_at`

// SaveEmployee inserts or updates an employee. An empty ID gets a new UUID.
func (s *Store) SaveEmployee(ctx context.Context, emp *Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}

	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			department = excluded.department,
			designation = excluded.designation,
			date_of_joining = excluded.date_of_joining,
			resignation_date = excluded.resignation_date,
			exit_date = excluded.exit_date,
			annual_ctc = excluded.annual_ctc,
			annual_bonus = excluded.annual_bonus,
			pending_reimbursements = excluded.pending_reimbursements,
			roster_id = excluded.roster_id,
			updated_at = excluded.updated_at
	`

	now := nowUTC()
	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Email, emp.Department, emp.Designation, emp.DateOfJoining,
		nullString(emp.ResignationDate), nullString(emp.ExitDate),
		emp.AnnualCTC.String(), emp.AnnualBonus.String(), emp.PendingReimbursements.String(),
		nullString(emp.RosterID), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save employee %s: %w", emp.ID, err)
	}
	return nil
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+employeeColumns+" FROM employees ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

// AssignRoster points an employee at a roster. An empty rosterID restores the default.
func (s *Store) AssignRoster(ctx context.Context, employeeID, rosterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE employees SET roster_id = ?, updated_at = ? WHERE id = ?",
		nullString(rosterID), nowUTC(), employeeID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign roster: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, employeeID)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (*Employee, error) {
	var (
		emp                         Employee
		email, dept, designation    sql.NullString
		resignation, exit, rosterID sql.NullString
		ctc, bonus, reimbursements  string
		createdAt, updatedAt        string
	)
	err := row.Scan(
		&emp.ID, &emp.Name, &email, &dept, &designation, &emp.DateOfJoining,
		&resignation, &exit, &ctc, &bonus, &reimbursements,
		&rosterID, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan employee: %w", err)
	}

	emp.Email = email.String
	emp.Department = dept.String
	emp.Designation = designation.String
	emp.ResignationDate = resignation.String
	emp.ExitDate = exit.String
	emp.RosterID = rosterID.String
	emp.AnnualCTC = generic.MustParseDecimal(ctc)
	emp.AnnualBonus = generic.MustParseDecimal(bonus)
	emp.PendingReimbursements = generic.MustParseDecimal(reimbursements)
	emp.CreatedAt = parseTime(createdAt)
	emp.UpdatedAt = parseTime(updatedAt)
	return &emp, nil
}

// =============================================================================
// ROSTER STORE
// =============================================================================

// RosterRecord is a stored roster with its factory JSON.
type RosterRecord struct {
	ID         string
	Name       string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SaveRoster inserts a roster or bumps the version of an existing one.
func (s *Store) SaveRoster(ctx context.Context, r RosterRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO rosters (id, name, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			version = rosters.version + 1,
			updated_at = excluded.updated_at
	`

	now := nowUTC()
	if _, err := s.db.ExecContext(ctx, query, r.ID, r.Name, r.ConfigJSON, now, now); err != nil {
		return fmt.Errorf("failed to save roster %s: %w", r.ID, err)
	}
	return nil
}

// GetRoster retrieves a roster by ID.
func (s *Store) GetRoster(ctx context.Context, id string) (*RosterRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r RosterRecord
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM rosters WHERE id = ?",
		id,
	).Scan(&r.ID, &r.Name, &r.ConfigJSON, &r.Version, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrRosterNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roster %s: %w", id, err)
	}

	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return &r, nil
}

// ListRosters returns all rosters ordered by name.
func (s *Store) ListRosters(ctx context.Context) ([]RosterRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM rosters ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rosters: %w", err)
	}
	defer rows.Close()

	var rosters []RosterRecord
	for rows.Next() {
		var r RosterRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&r.ID, &r.Name, &r.ConfigJSON, &r.Version, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan roster: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		r.UpdatedAt = parseTime(updatedAt)
		rosters = append(rosters, r)
	}
	return rosters, rows.Err()
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

// Punch is one day's raw clock-in/clock-out for one employee.
type Punch struct {
	ID         string
	EmployeeID string
	Date       string // YYYY-MM-DD, the day the shift started
	ClockIn    string
	ClockOut   string
	Source     string // e.g. "api", "scenario", "device"
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecordPunch stores a new punch. A second punch for the same employee and
// date returns generic.ErrDuplicatePunch.
func (s *Store) RecordPunch(ctx context.Context, p *Punch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO attendance (id, employee_id, date, clock_in, clock_out, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := nowUTC()
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.EmployeeID, p.Date, nullString(p.ClockIn), nullString(p.ClockOut), nullString(p.Source), now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s on %s", generic.ErrDuplicatePunch, p.EmployeeID, p.Date)
		}
		return fmt.Errorf("failed to record punch: %w", err)
	}
	return nil
}

// UpsertPunch records a punch or replaces the existing one for that date.
// Used for corrections, e.g. adding the clock-out to an open shift.
func (s *Store) UpsertPunch(ctx context.Context, p *Punch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO attendance (id, employee_id, date, clock_in, clock_out, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			clock_in = excluded.clock_in,
			clock_out = excluded.clock_out,
			source = excluded.source,
			updated_at = excluded.updated_at
	`

	now := nowUTC()
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.EmployeeID, p.Date, nullString(p.ClockIn), nullString(p.ClockOut), nullString(p.Source), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert punch: %w", err)
	}
	return nil
}

// GetPunches returns an employee's punches within period, ordered by date.
func (s *Store) GetPunches(ctx context.Context, employeeID string, period generic.Period) ([]Punch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, date, clock_in, clock_out, source, created_at, updated_at
		FROM attendance
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, employeeID, period.Start.String(), period.End.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query punches: %w", err)
	}
	defer rows.Close()

	var punches []Punch
	for rows.Next() {
		var p Punch
		var clockIn, clockOut, source sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.Date, &clockIn, &clockOut, &source, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		p.ClockIn = clockIn.String
		p.ClockOut = clockOut.String
		p.Source = source.String
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// =============================================================================
// LEAVE BALANCE STORE
// =============================================================================

// LeaveBalance is the unused leave an employee holds, in days.
type LeaveBalance struct {
	EmployeeID  string
	PaidLeave   decimal.Decimal
	CasualLeave decimal.Decimal
	UpdatedAt   time.Time
}

// SaveLeaveBalance replaces an employee's leave balance.
func (s *Store) SaveLeaveBalance(ctx context.Context, b LeaveBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO leave_balances (employee_id, paid_leave, casual_leave, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			paid_leave = excluded.paid_leave,
			casual_leave = excluded.casual_leave,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, b.EmployeeID, b.PaidLeave.String(), b.CasualLeave.String(), nowUTC())
	if err != nil {
		return fmt.Errorf("failed to save leave balance: %w", err)
	}
	return nil
}

// GetLeaveBalance returns the employee's balance, or nil when none was recorded.
// A missing balance is a valid input to the settlement calculator.
func (s *Store) GetLeaveBalance(ctx context.Context, employeeID string) (*LeaveBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var paid, casual, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT paid_leave, casual_leave, updated_at FROM leave_balances WHERE employee_id = ?",
		employeeID,
	).Scan(&paid, &casual, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return &LeaveBalance{
		EmployeeID:  employeeID,
		PaidLeave:   generic.MustParseDecimal(paid),
		CasualLeave: generic.MustParseDecimal(casual),
		UpdatedAt:   parseTime(updatedAt),
	}, nil
}

// =============================================================================
// SETTLEMENT STORE
// =============================================================================

// SettlementRecord is a persisted settlement. ResultJSON holds the full
// calculation as rendered by the API so a report can be rebuilt verbatim.
type SettlementRecord struct {
	ID            string
	EmployeeID    string
	ExitDate      string
	GrossAmount   decimal.Decimal
	NetSettlement decimal.Decimal
	ResultJSON    string
	CreatedAt     time.Time
}

// SaveSettlement appends a settlement. Earlier settlements are kept for audit.
func (s *Store) SaveSettlement(ctx context.Context, rec *SettlementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	query := `
		INSERT INTO settlements (id, employee_id, exit_date, gross_amount, net_settlement, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.EmployeeID, rec.ExitDate,
		rec.GrossAmount.String(), rec.NetSettlement.String(), rec.ResultJSON,
		rec.CreatedAt.Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save settlement: %w", err)
	}
	return nil
}

// GetLatestSettlement returns the most recent settlement for an employee.
func (s *Store) GetLatestSettlement(ctx context.Context, employeeID string) (*SettlementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec SettlementRecord
	var gross, net, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, exit_date, gross_amount, net_settlement, result_json, created_at
		FROM settlements
		WHERE employee_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, employeeID).Scan(&rec.ID, &rec.EmployeeID, &rec.ExitDate, &gross, &net, &rec.ResultJSON, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrSettlementNotFound, employeeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	rec.GrossAmount = generic.MustParseDecimal(gross)
	rec.NetSettlement = generic.MustParseDecimal(net)
	rec.CreatedAt = parseTime(createdAt)
	return &rec, nil
}

// =============================================================================
// MONTH SUMMARY STORE
// =============================================================================

// MonthSummary is an employee's classified attendance totals for one month.
type MonthSummary struct {
	EmployeeID   string
	Month        string // YYYY-MM
	RosterID     string
	StatusCounts map[string]int
	WorkingDays  decimal.Decimal
	WorkHours    decimal.Decimal
	Overtime     decimal.Decimal
	Flagged      int
	RunID        string
	CreatedAt    time.Time
}

// SaveMonthSummary writes or replaces a month summary.
func (s *Store) SaveMonthSummary(ctx context.Context, m MonthSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts, err := json.Marshal(m.StatusCounts)
	if err != nil {
		return fmt.Errorf("failed to encode status counts: %w", err)
	}

	query := `
		INSERT INTO month_summaries (employee_id, month, roster_id, status_counts_json,
			working_days, work_hours, overtime, flagged, run_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, month) DO UPDATE SET
			roster_id = excluded.roster_id,
			status_counts_json = excluded.status_counts_json,
			working_days = excluded.working_days,
			work_hours = excluded.work_hours,
			overtime = excluded.overtime,
			flagged = excluded.flagged,
			run_id = excluded.run_id,
			created_at = excluded.created_at
	`

	_, err = s.db.ExecContext(ctx, query,
		m.EmployeeID, m.Month, m.RosterID, string(counts),
		m.WorkingDays.String(), m.WorkHours.String(), m.Overtime.String(),
		m.Flagged, nullString(m.RunID), nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save month summary: %w", err)
	}
	return nil
}

// GetMonthSummaries returns all summaries for month (YYYY-MM), ordered by employee.
func (s *Store) GetMonthSummaries(ctx context.Context, month string) ([]MonthSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, month, roster_id, status_counts_json, working_days,
			work_hours, overtime, flagged, run_id, created_at
		FROM month_summaries
		WHERE month = ?
		ORDER BY employee_id
	`, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query month summaries: %w", err)
	}
	defer rows.Close()

	var summaries []MonthSummary
	for rows.Next() {
		var m MonthSummary
		var counts, workingDays, workHours, overtime, createdAt string
		var runID sql.NullString
		if err := rows.Scan(&m.EmployeeID, &m.Month, &m.RosterID, &counts, &workingDays,
			&workHours, &overtime, &m.Flagged, &runID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan month summary: %w", err)
		}
		if err := json.Unmarshal([]byte(counts), &m.StatusCounts); err != nil {
			return nil, fmt.Errorf("failed to decode status counts: %w", err)
		}
		m.WorkingDays = generic.MustParseDecimal(workingDays)
		m.WorkHours = generic.MustParseDecimal(workHours)
		m.Overtime = generic.MustParseDecimal(overtime)
		m.RunID = runID.String
		m.CreatedAt = parseTime(createdAt)
		summaries = append(summaries, m)
	}
	return summaries, rows.Err()
}

// =============================================================================
// MONTH CLOSE RUNS
// =============================================================================

// Month-close run statuses.
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// MonthCloseRun is the audit record of one month-close batch.
type MonthCloseRun struct {
	ID          string
	Month       string // YYYY-MM
	Status      string // pending, running, completed, failed
	Employees   int
	Processed   int
	Failed      int
	Errors      []string
	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// SaveMonthCloseRun inserts or updates a run.
func (s *Store) SaveMonthCloseRun(ctx context.Context, r *MonthCloseRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	errs, err := json.Marshal(r.Errors)
	if err != nil {
		return fmt.Errorf("failed to encode run errors: %w", err)
	}

	query := `
		INSERT INTO month_close_runs (id, month, status, employees, processed, failed,
			errors_json, started_at, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			employees = excluded.employees,
			processed = excluded.processed,
			failed = excluded.failed,
			errors_json = excluded.errors_json,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at
	`

	_, err = s.db.ExecContext(ctx, query,
		r.ID, r.Month, r.Status, r.Employees, r.Processed, r.Failed, string(errs),
		formatTimePtr(r.StartedAt), formatTimePtr(r.CompletedAt), r.CreatedAt.Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save month-close run: %w", err)
	}
	return nil
}

// GetMonthCloseRuns returns runs, newest first. An empty status returns all.
func (s *Store) GetMonthCloseRuns(ctx context.Context, status string) ([]MonthCloseRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, month, status, employees, processed, failed, errors_json,
			started_at, completed_at, created_at
		FROM month_close_runs
	`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query month-close runs: %w", err)
	}
	defer rows.Close()

	var runs []MonthCloseRun
	for rows.Next() {
		var r MonthCloseRun
		var errs, startedAt, completedAt sql.NullString
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Month, &r.Status, &r.Employees, &r.Processed, &r.Failed,
			&errs, &startedAt, &completedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan month-close run: %w", err)
		}
		if errs.Valid && errs.String != "" {
			if err := json.Unmarshal([]byte(errs.String), &r.Errors); err != nil {
				return nil, fmt.Errorf("failed to decode run errors: %w", err)
			}
		}
		r.StartedAt = parseTimePtr(startedAt)
		r.CompletedAt = parseTimePtr(completedAt)
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// IsMonthClosed reports whether a completed run exists for month.
func (s *Store) IsMonthClosed(ctx context.Context, month string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM month_close_runs WHERE month = ? AND status = ?",
		month, RunCompleted,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check month close: %w", err)
	}
	return count > 0, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"month_close_runs", "month_summaries", "settlements",
		"leave_balances", "attendance", "employees", "rosters",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// timestampLayout is fixed width so ORDER BY created_at sorts chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// parseTime accepts both RFC3339 and RFC3339Nano timestamps.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timestampLayout), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
