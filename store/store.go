package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/tsawler/ledger/dataset"
	"github.com/tsawler/ledger/model"
	"github.com/tsawler/ledger/store/migrations"
)

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("store: run not found")

// Store is a SQLite-backed archive of normalization runs.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one merged normalization run.
type Run struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	Sources     []string
	Rows        []dataset.Row
	Diagnostics []model.Diagnostic
}

// RunInfo summarizes a stored run.
type RunInfo struct {
	ID              uuid.UUID
	CreatedAt       time.Time
	Sources         []string
	RecordCount     int
	DiagnosticCount int
}

// Open opens or creates the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Version returns the highest applied migration.
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// migrate runs every NNN_name.up.sql file newer than the current version,
// each in its own transaction together with its schema_migrations row.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	current, err := s.Version(context.Background())
	if err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

// SaveRun stores a run in one transaction. A nil ID is replaced with a new
// time-ordered UUID and a zero CreatedAt with the current time.
func (s *Store) SaveRun(ctx context.Context, run Run) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return uuid.Nil, fmt.Errorf("generating run id: %w", err)
		}
		run.ID = id
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	sources, err := json.Marshal(run.Sources)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshalling sources: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, sources, record_count, diagnostic_count)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID.String(), run.CreatedAt.UTC(), string(sources), len(run.Rows), len(run.Diagnostics)); err != nil {
		return uuid.Nil, fmt.Errorf("saving run: %w", err)
	}

	recStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (run_id, seq, source, name, year, object, place, state, count_1, count_2, count_3, count_4, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return uuid.Nil, err
	}
	defer recStmt.Close()

	for i, r := range run.Rows {
		if _, err := recStmt.ExecContext(ctx, run.ID.String(), i, r.Source,
			r.Name, r.Year.String(), r.Object, r.Place, r.State,
			r.Count1.String(), r.Count2.String(), r.Count3.String(), r.Count4.String(), r.Total.String(),
		); err != nil {
			return uuid.Nil, fmt.Errorf("saving record %d: %w", i, err)
		}
	}

	diagStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO diagnostics (run_id, seq, source, row, field, raw, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return uuid.Nil, err
	}
	defer diagStmt.Close()

	for i, d := range run.Diagnostics {
		if _, err := diagStmt.ExecContext(ctx, run.ID.String(), i, d.Source, d.Row, d.Field, d.Raw, d.Message); err != nil {
			return uuid.Nil, fmt.Errorf("saving diagnostic %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("committing run: %w", err)
	}
	return run.ID, nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, sources, record_count, diagnostic_count
		FROM runs ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		info, err := scanRunInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Run returns the summary of one run.
func (s *Store) Run(ctx context.Context, id uuid.UUID) (RunInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, sources, record_count, diagnostic_count
		FROM runs WHERE id = ?
	`, id.String())

	info, err := scanRunInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, ErrRunNotFound
	}
	return info, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRunInfo(sc scanner) (RunInfo, error) {
	var (
		info    RunInfo
		id      string
		sources string
	)
	if err := sc.Scan(&id, &info.CreatedAt, &sources, &info.RecordCount, &info.DiagnosticCount); err != nil {
		return RunInfo{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return RunInfo{}, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	info.ID = parsed

	if err := json.Unmarshal([]byte(sources), &info.Sources); err != nil {
		return RunInfo{}, fmt.Errorf("unmarshalling sources: %w", err)
	}
	return info, nil
}

// Records returns a run's rows in their original order.
func (s *Store) Records(ctx context.Context, id uuid.UUID) ([]dataset.Row, error) {
	if _, err := s.Run(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, name, year, object, place, state, count_1, count_2, count_3, count_4, total
		FROM records WHERE run_id = ? ORDER BY seq
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []dataset.Row
	for rows.Next() {
		var (
			r      dataset.Row
			year   string
			counts [5]string
		)
		if err := rows.Scan(&r.Source, &r.Name, &year, &r.Object, &r.Place, &r.State,
			&counts[0], &counts[1], &counts[2], &counts[3], &counts[4]); err != nil {
			return nil, err
		}
		if err := r.Year.UnmarshalCSV(year); err != nil {
			return nil, err
		}
		for i, dst := range []*model.Count{&r.Count1, &r.Count2, &r.Count3, &r.Count4, &r.Total} {
			if err := dst.UnmarshalCSV(counts[i]); err != nil {
				return nil, err
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Diagnostics returns a run's diagnostics in their original order.
func (s *Store) Diagnostics(ctx context.Context, id uuid.UUID) ([]model.Diagnostic, error) {
	if _, err := s.Run(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, row, field, raw, message
		FROM diagnostics WHERE run_id = ? ORDER BY seq
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("querying diagnostics: %w", err)
	}
	defer rows.Close()

	var out []model.Diagnostic
	for rows.Next() {
		var d model.Diagnostic
		if err := rows.Scan(&d.Source, &d.Row, &d.Field, &d.Raw, &d.Message); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and everything recorded under it.
func (s *Store) DeleteRun(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}
