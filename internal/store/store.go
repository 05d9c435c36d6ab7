// Package store provides a local SQLite implementation of the persistence
// interfaces, used when no Postgres connection string is configured.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"isthatstilltrue/internal/core"
	"isthatstilltrue/internal/persistence"
)

// Store represents the SQLite-based caching store
type Store struct {
	db   *sql.DB
	path string
}

// Store implements the same surface as the Postgres database.
var _ persistence.Database = (*Store)(nil)

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "isthatstilltrue.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	factCacheTable := `
	CREATE TABLE IF NOT EXISTS fact_cache (
		country TEXT NOT NULL,
		graduation_year INTEGER NOT NULL,
		facts TEXT NOT NULL,
		education_problems TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		PRIMARY KEY (country, graduation_year)
	);`

	schoolCacheTable := `
	CREATE TABLE IF NOT EXISTS school_memories_cache (
		school_name TEXT NOT NULL,
		city TEXT NOT NULL,
		graduation_year INTEGER NOT NULL,
		memories TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (school_name, city, graduation_year)
	);`

	reportsTable := `
	CREATE TABLE IF NOT EXISTS fact_reports (
		fact_hash TEXT NOT NULL,
		country TEXT NOT NULL,
		graduation_year INTEGER NOT NULL,
		reason TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (fact_hash, country, graduation_year, fingerprint)
	);`

	tables := []string{factCacheTable, schoolCacheTable, reportsTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Cache returns the cache repository backed by this store.
func (s *Store) Cache() persistence.CacheRepository { return &sqliteCacheRepo{db: s.db} }

// Reports returns the report repository backed by this store.
func (s *Store) Reports() persistence.ReportRepository { return &sqliteReportRepo{db: s.db} }

type sqliteCacheRepo struct {
	db *sql.DB
}

func (r *sqliteCacheRepo) GetGeneration(ctx context.Context, country string, year int) (*core.CachedGeneration, error) {
	query := `
		SELECT facts, education_problems, created_at
		FROM fact_cache
		WHERE country = ? AND graduation_year = ?
	`
	var (
		factsJSON    string
		problemsJSON string
		createdAt    time.Time
	)
	err := r.db.QueryRowContext(ctx, query, country, year).Scan(&factsJSON, &problemsJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fact cache: %w", err)
	}

	entry := &core.CachedGeneration{
		Country:        country,
		GraduationYear: year,
		CreatedAt:      createdAt,
	}
	if err := json.Unmarshal([]byte(factsJSON), &entry.Facts); err != nil {
		return nil, fmt.Errorf("failed to decode cached facts: %w", err)
	}
	if problemsJSON != "" {
		if err := json.Unmarshal([]byte(problemsJSON), &entry.Problems); err != nil {
			return nil, fmt.Errorf("failed to decode cached problems: %w", err)
		}
	}
	return entry, nil
}

func (r *sqliteCacheRepo) UpsertGeneration(ctx context.Context, country string, year int, facts []core.FactRecord, problems []core.EducationProblem) error {
	factsJSON, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("failed to encode facts: %w", err)
	}
	problemsJSON, err := json.Marshal(problems)
	if err != nil {
		return fmt.Errorf("failed to encode problems: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO fact_cache (country, graduation_year, facts, education_problems, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, country, year, string(factsJSON), string(problemsJSON), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert fact cache: %w", err)
	}
	return nil
}

func (r *sqliteCacheRepo) GetSchoolMemories(ctx context.Context, schoolName, city string, year int) (*core.CachedSchoolMemories, error) {
	query := `
		SELECT memories, created_at
		FROM school_memories_cache
		WHERE school_name = ? AND city = ? AND graduation_year = ?
	`
	var (
		memoriesJSON string
		createdAt    time.Time
	)
	err := r.db.QueryRowContext(ctx, query, schoolName, city, year).Scan(&memoriesJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read school cache: %w", err)
	}

	entry := &core.CachedSchoolMemories{
		SchoolName:     schoolName,
		City:           city,
		GraduationYear: year,
		CreatedAt:      createdAt,
	}
	if err := json.Unmarshal([]byte(memoriesJSON), &entry.Memories); err != nil {
		return nil, fmt.Errorf("failed to decode cached memories: %w", err)
	}
	return entry, nil
}

func (r *sqliteCacheRepo) UpsertSchoolMemories(ctx context.Context, schoolName, city string, year int, memories core.SchoolMemories) error {
	memoriesJSON, err := json.Marshal(memories)
	if err != nil {
		return fmt.Errorf("failed to encode memories: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO school_memories_cache (school_name, city, graduation_year, memories, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, schoolName, city, year, string(memoriesJSON), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert school cache: %w", err)
	}
	return nil
}

func (r *sqliteCacheRepo) Stats(ctx context.Context) (persistence.CacheStats, error) {
	var stats persistence.CacheStats
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fact_cache`).Scan(&stats.Generations); err != nil {
		return stats, fmt.Errorf("failed to count fact cache: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM school_memories_cache`).Scan(&stats.SchoolMemories); err != nil {
		return stats, fmt.Errorf("failed to count school cache: %w", err)
	}
	return stats, nil
}

func (r *sqliteCacheRepo) Clear(ctx context.Context) (int64, error) {
	var deleted int64
	for _, table := range []string{"fact_cache", "school_memories_cache"} {
		res, err := r.db.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			return deleted, fmt.Errorf("failed to clear %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted += n
		}
	}
	return deleted, nil
}

type sqliteReportRepo struct {
	db *sql.DB
}

func (r *sqliteReportRepo) Create(ctx context.Context, report *core.FactReport) error {
	query := `
		INSERT OR IGNORE INTO fact_reports (fact_hash, country, graduation_year, reason, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, report.FactHash, report.Country, report.GraduationYear, report.Reason, report.Fingerprint, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to create fact report: %w", err)
	}
	return nil
}

func (r *sqliteReportRepo) CountForFact(ctx context.Context, factHash string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fact_reports WHERE fact_hash = ?`, factHash).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fact reports: %w", err)
	}
	return count, nil
}
