package index

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"rustdex/internal/diag"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the lifecycle state of a stored run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run describes one stored indexing run.
type Run struct {
	ID          string
	StartedAt   time.Time
	CompletedAt time.Time
	Tool        string
	BaseDir     string
	Status      RunStatus
	Files       int
	Symbols     int
	Refs        int
	Diagnostics int
}

// RunMeta is recorded alongside a run.
type RunMeta struct {
	Tool    string
	BaseDir string
}

// Store persists index runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// Open opens (creating if needed) the database at path and applies pending
// migrations. Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every connection would see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	s := &Store{db: db, path: path, log: log}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path as given to Open.
func (s *Store) Path() string { return s.path }

// Migrate runs all pending migrations.
func (s *Store) Migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Version returns the current migration version.
func (s *Store) Version(ctx context.Context) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, s.db)
}

// Save stores ix as a new run inside one transaction.
func (s *Store) Save(ctx context.Context, ix *Index, meta RunMeta) (run *Run, err error) {
	run = &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Tool:      meta.Tool,
		BaseDir:   meta.BaseDir,
		Status:    RunRunning,
	}
	s.log.Debug("creating run", slog.String("id", run.ID), slog.Int("rows", len(ix.Rows)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, tool_version, base_dir, status) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixMilli(), run.Tool, run.BaseDir, string(run.Status),
	); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	fileIDs, err := insertFiles(ctx, tx, run.ID, ix.Files)
	if err != nil {
		return nil, err
	}
	if err = insertRows(ctx, tx, run, ix.Rows, fileIDs); err != nil {
		return nil, err
	}
	if err = insertDiagnostics(ctx, tx, run.ID, ix.Diagnostics, fileIDs); err != nil {
		return nil, err
	}

	run.CompletedAt = time.Now().UTC()
	run.Status = RunCompleted
	if _, err = tx.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ? WHERE id = ?`,
		string(run.Status), run.CompletedAt.UnixMilli(), run.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to complete run: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	run.Files = len(ix.Files)
	run.Diagnostics = len(ix.Diagnostics)
	s.log.Debug("run stored", slog.String("id", run.ID),
		slog.Int("symbols", run.Symbols), slog.Int("refs", run.Refs))
	return run, nil
}

func insertFiles(ctx context.Context, tx *sql.Tx, runID string, files []FileRow) (map[string]int64, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO files (run_id, path, hash, unit) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	ids := make(map[string]int64, len(files))
	for _, f := range files {
		if _, dup := ids[f.Path]; dup {
			continue
		}
		res, err := stmt.ExecContext(ctx, runID, f.Path, f.Hash, f.Unit)
		if err != nil {
			return nil, fmt.Errorf("failed to insert file %s: %w", f.Path, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids[f.Path] = id
	}
	return ids, nil
}

func fileRef(ids map[string]int64, path string) sql.NullInt64 {
	id, ok := ids[path]
	return sql.NullInt64{Int64: id, Valid: ok}
}

func insertRows(ctx context.Context, tx *sql.Tx, run *Run, rows []Row, fileIDs map[string]int64) error {
	defStmt, err := tx.PrepareContext(ctx, `INSERT INTO symbols
		(run_id, file_id, symbol_id, scope_id, kind, name, qualname, file_line, file_col, extent_start, extent_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare symbol insert: %w", err)
	}
	defer func() { _ = defStmt.Close() }()
	refStmt, err := tx.PrepareContext(ctx, `INSERT INTO refs
		(run_id, file_id, refid, scope_id, kind, name, qualname, file_line, file_col, extent_start, extent_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare ref insert: %w", err)
	}
	defer func() { _ = refStmt.Close() }()

	for _, r := range rows {
		stmt, id := defStmt, r.ID
		if r.IsRef() {
			stmt, id = refStmt, r.RefID
		}
		if _, err := stmt.ExecContext(ctx, run.ID, fileRef(fileIDs, r.File), id, r.Scope,
			r.Kind, r.Name, r.Qualname, r.Line, r.Col, r.ExtentStart, r.ExtentEnd); err != nil {
			return fmt.Errorf("failed to insert %s %s: %w", r.Kind, r.Qualname, err)
		}
		if r.IsRef() {
			run.Refs++
		} else {
			run.Symbols++
		}
	}
	return nil
}

func insertDiagnostics(ctx context.Context, tx *sql.Tx, runID string, recs []diag.Record, fileIDs map[string]int64) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO diagnostics
		(run_id, file_id, severity, code, message, file_line, file_col, extent_start, extent_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare diagnostic insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, d := range recs {
		if _, err := stmt.ExecContext(ctx, runID, fileRef(fileIDs, d.Span.File),
			d.Severity, d.Code, d.Message, d.Span.Line, d.Span.Col, d.Span.Start, d.Span.End); err != nil {
			return fmt.Errorf("failed to insert diagnostic %s: %w", d.Code, err)
		}
	}
	return nil
}

const runColumns = `r.id, r.started_at, r.completed_at, r.tool_version, r.base_dir, r.status,
	(SELECT COUNT(*) FROM files f WHERE f.run_id = r.id),
	(SELECT COUNT(*) FROM symbols s WHERE s.run_id = r.id),
	(SELECT COUNT(*) FROM refs x WHERE x.run_id = r.id),
	(SELECT COUNT(*) FROM diagnostics d WHERE d.run_id = r.id)`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run       Run
		started   int64
		completed sql.NullInt64
		status    string
	)
	if err := sc.Scan(&run.ID, &started, &completed, &run.Tool, &run.BaseDir, &status,
		&run.Files, &run.Symbols, &run.Refs, &run.Diagnostics); err != nil {
		return nil, err
	}
	run.StartedAt = time.UnixMilli(started).UTC()
	if completed.Valid {
		run.CompletedAt = time.UnixMilli(completed.Int64).UTC()
	}
	run.Status = RunStatus(status)
	return &run, nil
}

// Run returns one stored run with its row counts.
func (s *Store) Run(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs r ORDER BY r.started_at DESC, r.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

// Latest returns the most recent run.
func (s *Store) Latest(ctx context.Context) (*Run, error) {
	runs, err := s.Runs(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return &runs[0], nil
}

// DeleteRun removes a run and everything recorded for it.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Load rebuilds the index stored for a run. Diagnostic notes are not stored.
func (s *Store) Load(ctx context.Context, id string) (*Index, error) {
	if _, err := s.Run(ctx, id); err != nil {
		return nil, err
	}
	ix := &Index{}
	if err := s.loadFiles(ctx, id, ix); err != nil {
		return nil, err
	}
	defs, err := s.loadRows(ctx, id, "symbols", "symbol_id", "")
	if err != nil {
		return nil, err
	}
	refs, err := s.loadRows(ctx, id, "refs", "refid", "")
	if err != nil {
		return nil, err
	}
	for i := range refs {
		refs[i].RefID, refs[i].ID = refs[i].ID, 0
	}
	ix.Rows = append(defs, refs...)
	sortRows(ix.Rows)
	if err := s.loadDiagnostics(ctx, id, ix); err != nil {
		return nil, err
	}
	return ix, nil
}

func (s *Store) loadFiles(ctx context.Context, id string, ix *Index) error {
	rows, err := s.db.QueryContext(ctx, `SELECT path, hash, unit FROM files WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return fmt.Errorf("failed to load files: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var f FileRow
		if err := rows.Scan(&f.Path, &f.Hash, &f.Unit); err != nil {
			return err
		}
		ix.Files = append(ix.Files, f)
	}
	return rows.Err()
}

// loadRows reads symbols or refs, optionally of one qualname; the id
// column lands in Row.ID.
func (s *Store) loadRows(ctx context.Context, id, table, idCol, qualname string) ([]Row, error) {
	query := fmt.Sprintf(`SELECT t.kind, t.name, t.qualname, COALESCE(f.path, ''), t.file_line, t.file_col,
		t.extent_start, t.extent_end, t.%s, t.scope_id
		FROM %s t LEFT JOIN files f ON f.id = t.file_id
		WHERE t.run_id = ?`, idCol, table)
	args := []any{id}
	if qualname != "" {
		query += ` AND t.qualname = ?`
		args = append(args, qualname)
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY t.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()
	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Kind, &r.Name, &r.Qualname, &r.File, &r.Line, &r.Col,
			&r.ExtentStart, &r.ExtentEnd, &r.ID, &r.Scope); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) loadDiagnostics(ctx context.Context, id string, ix *Index) error {
	rows, err := s.db.QueryContext(ctx, `SELECT d.severity, d.code, d.message, COALESCE(f.path, ''),
		d.file_line, d.file_col, d.extent_start, d.extent_end
		FROM diagnostics d LEFT JOIN files f ON f.id = d.file_id
		WHERE d.run_id = ? ORDER BY d.id`, id)
	if err != nil {
		return fmt.Errorf("failed to load diagnostics: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var d diag.Record
		if err := rows.Scan(&d.Severity, &d.Code, &d.Message, &d.Span.File,
			&d.Span.Line, &d.Span.Col, &d.Span.Start, &d.Span.End); err != nil {
			return err
		}
		ix.Diagnostics = append(ix.Diagnostics, d)
	}
	return rows.Err()
}

// FindQualname returns the definitions of qualname recorded in a run.
func (s *Store) FindQualname(ctx context.Context, runID, qualname string) ([]Row, error) {
	return s.loadRows(ctx, runID, "symbols", "symbol_id", qualname)
}
