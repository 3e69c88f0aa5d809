/*
Package report persists calculations as an auditable workbook.

PURPOSE:
  Implements the human-auditable export: a SQLite-backed workbook where
  each calculation is one named SECTION (the spreadsheet-sheet analogue)
  holding its request metadata plus the full audit-row table. Multiple
  calculations for the same case append as separate sections without
  disturbing previously written ones.

APPEND-ONLY ENFORCEMENT:
  Audit rows are write-once:
  - No UPDATE statements on section or row tables
  - No DELETE statements on section or row tables
  A mistaken calculation is superseded by appending a new section, never
  by editing an old one.

SINK DISCIPLINE:
  Many calculations may share one workbook file. Each append acquires the
  sink, writes one complete, self-contained section inside a single SQL
  transaction, and releases on every path - a failed append rolls back,
  so a partially written section is never visible.

USAGE:
  wb, err := report.Open("./claims.db")
  defer wb.Close()
  id, err := wb.AppendSection(ctx, meta, result)

SEE ALSO:
  - engine/audit.go: the rows written here
*/
package report

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cosiris15/debt-review-sub000/engine"
)

// =============================================================================
// WORKBOOK
// =============================================================================

// Workbook is the shared output sink. Safe for concurrent appenders.
type Workbook struct {
	db *sql.DB
	mu sync.Mutex

	now func() time.Time
}

// Open creates or opens a workbook file. Use ":memory:" for tests.
func Open(path string) (*Workbook, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	wb := &Workbook{db: db, now: time.Now}
	if err := wb.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate workbook: %w", err)
	}
	return wb, nil
}

// Close closes the underlying database.
func (wb *Workbook) Close() error {
	return wb.db.Close()
}

func (wb *Workbook) migrate() error {
	schema := `
	-- Sections (one per calculation, named, append-only)
	CREATE TABLE IF NOT EXISTS sections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		case_ref TEXT NOT NULL,
		title TEXT NOT NULL,
		mode TEXT NOT NULL,
		principal TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		rate_basis TEXT,
		legal_citation TEXT,
		total_interest TEXT NOT NULL,
		capped_total TEXT,
		warnings INTEGER NOT NULL DEFAULT 0,
		snapshot_version TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(case_ref, title)
	);

	CREATE INDEX IF NOT EXISTS idx_sections_case
		ON sections(case_ref);

	-- Audit rows (write-once lines of each section's table)
	CREATE TABLE IF NOT EXISTS audit_rows (
		section_id INTEGER NOT NULL REFERENCES sections(id),
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		days INTEGER,
		principal_base TEXT,
		annual_rate TEXT,
		daily_rate TEXT,
		formula TEXT,
		interest TEXT,
		note TEXT,
		PRIMARY KEY (section_id, seq)
	);
	`
	_, err := wb.db.Exec(schema)
	return err
}

// =============================================================================
// SECTION METADATA
// =============================================================================

// SectionMeta is the request metadata recorded alongside the audit rows.
type SectionMeta struct {
	CaseRef       string
	Title         string
	RateBasis     string // human description of the rate basis used
	LegalCitation string // optional statute/contract citation from the caller

	// SnapshotVersion records which rate snapshot produced the numbers.
	SnapshotVersion string
}

// Section is a stored section header.
type Section struct {
	ID            int64
	CaseRef       string
	Title         string
	Mode          engine.Mode
	Principal     string
	Start         string
	End           string
	RateBasis     string
	LegalCitation string
	TotalInterest string
	CappedTotal   string
	Warnings      int
	CreatedAt     time.Time
}

// =============================================================================
// APPEND - One complete section per calculation
// =============================================================================

// AppendSection writes one calculation as a new named section. The whole
// section lands in a single transaction: on any failure nothing is visible.
func (wb *Workbook) AppendSection(ctx context.Context, meta SectionMeta, res *engine.CalculationResult) (int64, error) {
	if meta.CaseRef == "" || meta.Title == "" {
		return 0, fmt.Errorf("section needs a case reference and a title")
	}

	wb.mu.Lock()
	defer wb.mu.Unlock()

	tx, err := wb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin section: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	capped := sql.NullString{}
	if res.CappedTotal != nil {
		capped = sql.NullString{String: res.CappedTotal.StringFixed(2), Valid: true}
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO sections
			(case_ref, title, mode, principal, start_date, end_date,
			 rate_basis, legal_citation, total_interest, capped_total,
			 warnings, snapshot_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.CaseRef, meta.Title, string(res.Mode),
		res.Principal.StringFixed(2), res.Start.String(), res.End.String(),
		meta.RateBasis, meta.LegalCitation,
		res.TotalInterest.StringFixed(2), capped,
		len(res.Warnings), meta.SnapshotVersion,
		wb.now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to insert section: %w", err)
	}

	sectionID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO audit_rows
			(section_id, seq, kind, start_date, end_date, days,
			 principal_base, annual_rate, daily_rate, formula, interest, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, row := range engine.RenderAudit(res) {
		if _, err := stmt.ExecContext(ctx,
			sectionID, row.Seq, string(row.Kind), row.Start, row.End, row.Days,
			row.PrincipalBase, row.AnnualRate, row.DailyRate,
			row.Formula, row.Interest, row.Note); err != nil {
			return 0, fmt.Errorf("failed to insert audit row %d: %w", row.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit section: %w", err)
	}
	return sectionID, nil
}

// =============================================================================
// READS
// =============================================================================

// ListSections returns all sections for a case, oldest first.
func (wb *Workbook) ListSections(ctx context.Context, caseRef string) ([]Section, error) {
	rows, err := wb.db.QueryContext(ctx, `
		SELECT id, case_ref, title, mode, principal, start_date, end_date,
		       rate_basis, legal_citation, total_interest,
		       COALESCE(capped_total, ''), warnings, created_at
		FROM sections WHERE case_ref = ? ORDER BY id`, caseRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var s Section
		var mode, createdAt string
		if err := rows.Scan(&s.ID, &s.CaseRef, &s.Title, &mode, &s.Principal,
			&s.Start, &s.End, &s.RateBasis, &s.LegalCitation,
			&s.TotalInterest, &s.CappedTotal, &s.Warnings, &createdAt); err != nil {
			return nil, err
		}
		s.Mode = engine.Mode(mode)
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// SectionRows returns the audit rows of one section in sequence order.
func (wb *Workbook) SectionRows(ctx context.Context, sectionID int64) ([]engine.AuditRow, error) {
	rows, err := wb.db.QueryContext(ctx, `
		SELECT seq, kind, start_date, end_date, days, principal_base,
		       annual_rate, daily_rate, formula, interest, note
		FROM audit_rows WHERE section_id = ? ORDER BY seq`, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.AuditRow
	for rows.Next() {
		var r engine.AuditRow
		var kind string
		if err := rows.Scan(&r.Seq, &kind, &r.Start, &r.End, &r.Days,
			&r.PrincipalBase, &r.AnnualRate, &r.DailyRate,
			&r.Formula, &r.Interest, &r.Note); err != nil {
			return nil, err
		}
		r.Kind = engine.AuditRowKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}
