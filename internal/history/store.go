package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"studyclock/internal/core/model"
	"studyclock/internal/core/session"
)

// Store records completed intervals and chains in a sqlite database.
type Store struct {
	db *sql.DB
}

// Interval is one recorded study or break interval.
type Interval struct {
	ChainID   string
	Kind      session.Kind
	Limit     time.Duration
	StartedAt time.Time
	EndedAt   time.Time
	Completed bool
}

// ChainSummary describes one recorded chain.
type ChainSummary struct {
	ChainID     string
	StudyLimit  time.Duration
	BreakLimit  time.Duration
	Sessions    int
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history tables: %w", err)
	}
	return store, nil
}

func (store *Store) initTables() error {
	_, err := store.db.Exec(`
        CREATE TABLE IF NOT EXISTS chains (
            chain_id TEXT PRIMARY KEY,
            study_seconds REAL NOT NULL,
            break_seconds REAL NOT NULL,
            sessions INTEGER NOT NULL,
            started_at DATETIME NOT NULL,
            completed_at DATETIME
        )
    `)
	if err != nil {
		return err
	}

	_, err = store.db.Exec(`
        CREATE TABLE IF NOT EXISTS intervals (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            chain_id TEXT NOT NULL,
            kind TEXT NOT NULL,
            limit_seconds REAL NOT NULL,
            started_at DATETIME NOT NULL,
            ended_at DATETIME NOT NULL,
            completed INTEGER NOT NULL
        )
    `)
	return err
}

// RecordChainStart inserts a new chain row.
func (store *Store) RecordChainStart(chainID string, config model.ChainConfig, startedAt time.Time) error {
	_, err := store.db.Exec(`
        INSERT INTO chains (chain_id, study_seconds, break_seconds, sessions, started_at)
        VALUES (?, ?, ?, ?, ?)
    `, chainID, config.StudyLimit.Seconds(), config.BreakLimit.Seconds(), config.TotalSessions, startedAt)
	return err
}

// MarkChainComplete stamps the chain's completion time.
func (store *Store) MarkChainComplete(chainID string, completedAt time.Time) error {
	_, err := store.db.Exec(`
        UPDATE chains SET completed_at = ? WHERE chain_id = ?
    `, completedAt, chainID)
	return err
}

// RecordInterval inserts one finished interval, completed or halted.
func (store *Store) RecordInterval(interval Interval) error {
	_, err := store.db.Exec(`
        INSERT INTO intervals (chain_id, kind, limit_seconds, started_at, ended_at, completed)
        VALUES (?, ?, ?, ?, ?, ?)
    `, interval.ChainID, string(interval.Kind), interval.Limit.Seconds(),
		interval.StartedAt, interval.EndedAt, interval.Completed)
	return err
}

// RecentChains returns up to limit chains, newest first.
func (store *Store) RecentChains(limit int) ([]ChainSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := store.db.Query(`
        SELECT chain_id, study_seconds, break_seconds, sessions, started_at, completed_at
        FROM chains ORDER BY started_at DESC LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chains []ChainSummary
	for rows.Next() {
		var chain ChainSummary
		var studySeconds, breakSeconds float64
		var completedAt sql.NullTime
		if err := rows.Scan(&chain.ChainID, &studySeconds, &breakSeconds,
			&chain.Sessions, &chain.StartedAt, &completedAt); err != nil {
			return nil, err
		}
		chain.StudyLimit = time.Duration(studySeconds * float64(time.Second))
		chain.BreakLimit = time.Duration(breakSeconds * float64(time.Second))
		if completedAt.Valid {
			chain.CompletedAt = &completedAt.Time
		}
		chains = append(chains, chain)
	}
	return chains, rows.Err()
}

// ChainIntervals returns the recorded intervals of one chain in order.
func (store *Store) ChainIntervals(chainID string) ([]Interval, error) {
	rows, err := store.db.Query(`
        SELECT chain_id, kind, limit_seconds, started_at, ended_at, completed
        FROM intervals WHERE chain_id = ? ORDER BY id
    `, chainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intervals []Interval
	for rows.Next() {
		var interval Interval
		var kind string
		var limitSeconds float64
		if err := rows.Scan(&interval.ChainID, &kind, &limitSeconds,
			&interval.StartedAt, &interval.EndedAt, &interval.Completed); err != nil {
			return nil, err
		}
		interval.Kind = session.Kind(kind)
		interval.Limit = time.Duration(limitSeconds * float64(time.Second))
		intervals = append(intervals, interval)
	}
	return intervals, rows.Err()
}

// Close closes the underlying database.
func (store *Store) Close() error {
	return store.db.Close()
}
