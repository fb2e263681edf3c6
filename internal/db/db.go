// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
	_ "modernc.org/sqlite"
)

// Lookup records one resolved contract interface.
type Lookup struct {
	ContractID string    `json:"contract_id"`
	Network    string    `json:"network"`
	WasmHash   string    `json:"wasm_hash"`
	LookedUpAt time.Time `json:"looked_up_at"`
}

// Stats summarizes the cache contents.
type Stats struct {
	WasmEntries int   `json:"wasm_entries"`
	WasmBytes   int64 `json:"wasm_bytes"`
	Lookups     int   `json:"lookups"`
}

// ClearResult reports how many rows a clear removed, or would remove on a
// dry run.
type ClearResult struct {
	WasmEntries int64 `json:"wasm_entries"`
	Lookups     int64 `json:"lookups"`
	DryRun      bool  `json:"dry_run"`
}

// Store is the SQLite-backed contract code cache. Code is keyed by its hash
// and never goes stale.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating parent directories.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.WrapCacheError("failed to create data dir", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapCacheError("failed to open db", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Logger.Debug("Opened cache database", "path", path)
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS wasm_code (
		hash TEXT PRIMARY KEY,
		code BLOB NOT NULL,
		size INTEGER NOT NULL,
		fetched_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS lookups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contract_id TEXT NOT NULL,
		network TEXT NOT NULL,
		wasm_hash TEXT,
		looked_up_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_lookups_contract ON lookups(contract_id);
	`
	if _, err := db.Exec(query); err != nil {
		return errors.WrapCacheError("failed to init schema", err)
	}
	return nil
}

// GetWasm returns the cached code for hash.
func (s *Store) GetWasm(ctx context.Context, hash string) ([]byte, bool, error) {
	var code []byte
	err := s.db.QueryRowContext(ctx, "SELECT code FROM wasm_code WHERE hash = ?", hash).Scan(&code)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.WrapCacheError("query failed", err)
	}
	return code, true, nil
}

// PutWasm stores code under hash. Storing the same hash twice is a no-op.
func (s *Store) PutWasm(ctx context.Context, hash string, code []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO wasm_code (hash, code, size, fetched_at) VALUES (?, ?, ?, ?)",
		hash, code, len(code), time.Now().UTC(),
	)
	if err != nil {
		return errors.WrapCacheError("failed to insert code", err)
	}
	return nil
}

// RecordLookup appends a lookup to the history. wasmHash is empty for
// contracts that carry no WASM.
func (s *Store) RecordLookup(ctx context.Context, contractID, network, wasmHash string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO lookups (contract_id, network, wasm_hash, looked_up_at) VALUES (?, ?, ?, ?)",
		contractID, network, wasmHash, time.Now().UTC(),
	)
	if err != nil {
		return errors.WrapCacheError("failed to record lookup", err)
	}
	return nil
}

// RecentLookups returns up to limit lookups, newest first.
func (s *Store) RecentLookups(ctx context.Context, limit int) ([]Lookup, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT contract_id, network, COALESCE(wasm_hash, ''), looked_up_at FROM lookups ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, errors.WrapCacheError("query failed", err)
	}
	defer rows.Close()

	var out []Lookup
	for rows.Next() {
		var l Lookup
		if err := rows.Scan(&l.ContractID, &l.Network, &l.WasmHash, &l.LookedUpAt); err != nil {
			return nil, errors.WrapCacheError("scan failed", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapCacheError("query failed", err)
	}
	return out, nil
}

// Stats counts cached code and recorded lookups.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(size), 0) FROM wasm_code").Scan(&st.WasmEntries, &st.WasmBytes)
	if err != nil {
		return Stats{}, errors.WrapCacheError("query failed", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lookups").Scan(&st.Lookups); err != nil {
		return Stats{}, errors.WrapCacheError("query failed", err)
	}
	return st, nil
}

// Clear removes all cached code and lookup history. With dryRun set nothing
// is deleted and the result reports what would be.
func (s *Store) Clear(ctx context.Context, dryRun bool) (ClearResult, error) {
	if dryRun {
		st, err := s.Stats(ctx)
		if err != nil {
			return ClearResult{}, err
		}
		logger.Logger.Warn("[DRY-RUN] cache clear skipped", "wasm_entries", st.WasmEntries, "lookups", st.Lookups)
		return ClearResult{WasmEntries: int64(st.WasmEntries), Lookups: int64(st.Lookups), DryRun: true}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ClearResult{}, errors.WrapCacheError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var res ClearResult
	for table, n := range map[string]*int64{"wasm_code": &res.WasmEntries, "lookups": &res.Lookups} {
		r, err := tx.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			return ClearResult{}, errors.WrapCacheError(fmt.Sprintf("failed to clear %s", table), err)
		}
		if *n, err = r.RowsAffected(); err != nil {
			return ClearResult{}, errors.WrapCacheError("failed to count rows", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ClearResult{}, errors.WrapCacheError("failed to commit", err)
	}
	return res, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
