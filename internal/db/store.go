package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNoRuns   = errors.New("no check has been recorded yet")
	ErrNotFound = errors.New("not found")
)

type Run struct {
	ID        string
	Seq       int64
	StartedAt string
}

type FunctionRecord struct {
	File        string
	Name        string
	Summary     string
	State       string // ok, warn, error, broken, undocumented
	SymbolsPath string // symbol table the function was checked against
	Diagnostics int    // filled in by queries
}

type DiagnosticRecord struct {
	File     string
	Function string // empty for file-level findings
	Severity string
	Code     string
	Message  string
	Offset   int
	Line     int
	Col      int
}

// FileRecord groups everything one check found in one file.
type FileRecord struct {
	Path        string
	SymbolsPath string
	Functions   []FunctionRecord
	Diagnostics []DiagnosticRecord
}

// SaveRun stores a complete check run in one transaction.
func SaveRun(sqlDB *sql.DB, files []FileRecord) (Run, error) {
	tx, err := sqlDB.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("beginning run: %w", err)
	}
	defer tx.Rollback()

	run := Run{ID: uuid.New().String()}
	err = tx.QueryRow(`
		INSERT INTO runs (id, seq) VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs))
		RETURNING seq, started_at
	`, run.ID).Scan(&run.Seq, &run.StartedAt)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	for _, f := range files {
		fileID, err := upsertFile(tx, f.Path)
		if err != nil {
			return Run{}, err
		}
		for _, fn := range f.Functions {
			_, err := tx.Exec(`INSERT INTO functions (run_id, file_id, name, summary, state, symbols_path) VALUES (?, ?, ?, ?, ?, ?)`,
				run.ID, fileID, fn.Name, fn.Summary, fn.State, f.SymbolsPath)
			if err != nil {
				return Run{}, fmt.Errorf("inserting function %s: %w", fn.Name, err)
			}
		}
		for _, d := range f.Diagnostics {
			_, err := tx.Exec(`
				INSERT INTO diagnostics (run_id, file_id, function_name, severity, code, message, byte_offset, line, col)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, run.ID, fileID, d.Function, d.Severity, d.Code, d.Message, d.Offset, d.Line, d.Col)
			if err != nil {
				return Run{}, fmt.Errorf("inserting diagnostic: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

func upsertFile(tx *sql.Tx, path string) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT id FROM files WHERE file_path = ?`, path).Scan(&id)
	if err == sql.ErrNoRows {
		res, err := tx.Exec(`INSERT INTO files (file_path) VALUES (?)`, path)
		if err != nil {
			return 0, fmt.Errorf("inserting %s: %w", path, err)
		}
		return res.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("querying %s: %w", path, err)
	}
	return id, nil
}

func LatestRun(sqlDB *sql.DB) (Run, error) {
	var run Run
	err := sqlDB.QueryRow(`SELECT id, seq, started_at FROM runs ORDER BY seq DESC LIMIT 1`).
		Scan(&run.ID, &run.Seq, &run.StartedAt)
	if err == sql.ErrNoRows {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("querying latest run: %w", err)
	}
	return run, nil
}

const functionsQuery = `
	SELECT f.file_path, fn.name, fn.summary, fn.state, fn.symbols_path,
		(SELECT COUNT(*) FROM diagnostics d
			WHERE d.run_id = fn.run_id AND d.file_id = fn.file_id AND d.function_name = fn.name)
	FROM functions fn
	JOIN files f ON fn.file_id = f.id
	WHERE fn.run_id = ?`

// ListFunctions returns the functions of a run ordered by file then name.
func ListFunctions(sqlDB *sql.DB, runID string) ([]FunctionRecord, error) {
	rows, err := sqlDB.Query(functionsQuery+` ORDER BY f.file_path, fn.name`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying functions: %w", err)
	}
	defer rows.Close()

	var out []FunctionRecord
	for rows.Next() {
		var r FunctionRecord
		if err := rows.Scan(&r.File, &r.Name, &r.Summary, &r.State, &r.SymbolsPath, &r.Diagnostics); err != nil {
			return nil, fmt.Errorf("scanning function row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FindFunction returns the first recorded function called name in a run.
func FindFunction(sqlDB *sql.DB, runID, name string) (FunctionRecord, error) {
	var r FunctionRecord
	err := sqlDB.QueryRow(functionsQuery+` AND fn.name = ? ORDER BY f.file_path LIMIT 1`, runID, name).
		Scan(&r.File, &r.Name, &r.Summary, &r.State, &r.SymbolsPath, &r.Diagnostics)
	if err == sql.ErrNoRows {
		return FunctionRecord{}, fmt.Errorf("function %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return FunctionRecord{}, fmt.Errorf("querying function %s: %w", name, err)
	}
	return r, nil
}

// ListDiagnostics returns a run's diagnostics in file and offset order.
func ListDiagnostics(sqlDB *sql.DB, runID string) ([]DiagnosticRecord, error) {
	rows, err := sqlDB.Query(`
		SELECT f.file_path, d.function_name, d.severity, d.code, d.message, d.byte_offset, d.line, d.col
		FROM diagnostics d
		JOIN files f ON d.file_id = f.id
		WHERE d.run_id = ?
		ORDER BY f.file_path, d.byte_offset, d.id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying diagnostics: %w", err)
	}
	defer rows.Close()

	var out []DiagnosticRecord
	for rows.Next() {
		var d DiagnosticRecord
		if err := rows.Scan(&d.File, &d.Function, &d.Severity, &d.Code, &d.Message, &d.Offset, &d.Line, &d.Col); err != nil {
			return nil, fmt.Errorf("scanning diagnostic row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type Count struct {
	Key   string
	Count int
}

// CountDiagnostics groups a run's diagnostics by column ("code" or
// "severity"), most frequent first.
func CountDiagnostics(sqlDB *sql.DB, runID, column string) ([]Count, error) {
	if column != "code" && column != "severity" {
		return nil, fmt.Errorf("cannot group diagnostics by %q", column)
	}
	rows, err := sqlDB.Query(`
		SELECT `+column+`, COUNT(*) AS cnt
		FROM diagnostics
		WHERE run_id = ?
		GROUP BY `+column+`
		ORDER BY cnt DESC, `+column, runID)
	if err != nil {
		return nil, fmt.Errorf("counting diagnostics: %w", err)
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
