package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// HistoryStore keeps an append-only log of execution results in a
// SQLite database. It backs the audit surface of the service; losing
// it never affects session state.
type HistoryStore struct {
	db *sql.DB
}

const historySchema = `
CREATE TABLE IF NOT EXISTS execution_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	token TEXT NOT NULL,
	command TEXT NOT NULL,
	success INTEGER NOT NULL,
	method TEXT NOT NULL,
	output TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	exec_time_ms INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
)`

// OpenHistory opens (creating if needed) the history database at path.
func OpenHistory(path string) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

// Record appends one execution result.
func (h *HistoryStore) Record(result *ExecutionResult) error {
	success := 0
	if result.Success {
		success = 1
	}
	_, err := h.db.Exec(
		`INSERT INTO execution_history (token, command, success, method, output, error, exec_time_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Token, result.Command, success, result.Method,
		result.Output, result.Error, result.ExecTimeMS,
		result.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record execution: %w", err)
	}
	return nil
}

// Recent returns up to limit results, newest first.
func (h *HistoryStore) Recent(limit int) ([]*ExecutionResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.Query(
		`SELECT token, command, success, method, output, error, exec_time_ms, created_at
		 FROM execution_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*ExecutionResult
	for rows.Next() {
		var res ExecutionResult
		var success int
		var createdAt string
		if err := rows.Scan(&res.Token, &res.Command, &success, &res.Method,
			&res.Output, &res.Error, &res.ExecTimeMS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		res.Success = success != 0
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			res.Timestamp = ts
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}

// Close releases the underlying database handle.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}
