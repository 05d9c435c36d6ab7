package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"isthatstilltrue/internal/core"
)

// PostgresDB implements the Database interface for PostgreSQL
type PostgresDB struct {
	db      *sql.DB
	cache   CacheRepository
	reports ReportRepository
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{
		db:      db,
		cache:   &postgresCacheRepo{db: db},
		reports: &postgresReportRepo{db: db},
	}, nil
}

func (p *PostgresDB) Cache() CacheRepository { return p.cache }

func (p *PostgresDB) Reports() ReportRepository { return p.reports }

func (p *PostgresDB) Close() error { return p.db.Close() }

func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// postgresCacheRepo implements CacheRepository against Postgres. Fact and
// problem payloads are stored as opaque JSON blobs.
type postgresCacheRepo struct {
	db *sql.DB
}

func (r *postgresCacheRepo) GetGeneration(ctx context.Context, country string, year int) (*core.CachedGeneration, error) {
	query := `
		SELECT facts, education_problems, created_at
		FROM fact_cache
		WHERE country = $1 AND graduation_year = $2
	`
	var (
		factsJSON    []byte
		problemsJSON []byte
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
	if err := json.Unmarshal(factsJSON, &entry.Facts); err != nil {
		return nil, fmt.Errorf("failed to decode cached facts: %w", err)
	}
	if len(problemsJSON) > 0 {
		if err := json.Unmarshal(problemsJSON, &entry.Problems); err != nil {
			return nil, fmt.Errorf("failed to decode cached problems: %w", err)
		}
	}
	return entry, nil
}

func (r *postgresCacheRepo) UpsertGeneration(ctx context.Context, country string, year int, facts []core.FactRecord, problems []core.EducationProblem) error {
	factsJSON, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("failed to encode facts: %w", err)
	}
	problemsJSON, err := json.Marshal(problems)
	if err != nil {
		return fmt.Errorf("failed to encode problems: %w", err)
	}

	query := `
		INSERT INTO fact_cache (country, graduation_year, facts, education_problems, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (country, graduation_year)
		DO UPDATE SET facts = $3, education_problems = $4, created_at = NOW(), updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, country, year, factsJSON, problemsJSON); err != nil {
		return fmt.Errorf("failed to upsert fact cache: %w", err)
	}
	return nil
}

func (r *postgresCacheRepo) GetSchoolMemories(ctx context.Context, schoolName, city string, year int) (*core.CachedSchoolMemories, error) {
	query := `
		SELECT memories, created_at
		FROM school_memories_cache
		WHERE school_name = $1 AND city = $2 AND graduation_year = $3
	`
	var (
		memoriesJSON []byte
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
	if err := json.Unmarshal(memoriesJSON, &entry.Memories); err != nil {
		return nil, fmt.Errorf("failed to decode cached memories: %w", err)
	}
	return entry, nil
}

func (r *postgresCacheRepo) UpsertSchoolMemories(ctx context.Context, schoolName, city string, year int, memories core.SchoolMemories) error {
	memoriesJSON, err := json.Marshal(memories)
	if err != nil {
		return fmt.Errorf("failed to encode memories: %w", err)
	}

	query := `
		INSERT INTO school_memories_cache (school_name, city, graduation_year, memories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (school_name, city, graduation_year)
		DO UPDATE SET memories = $4, created_at = NOW(), updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, schoolName, city, year, memoriesJSON); err != nil {
		return fmt.Errorf("failed to upsert school cache: %w", err)
	}
	return nil
}

func (r *postgresCacheRepo) Stats(ctx context.Context) (CacheStats, error) {
	var stats CacheStats
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fact_cache`).Scan(&stats.Generations); err != nil {
		return stats, fmt.Errorf("failed to count fact cache: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM school_memories_cache`).Scan(&stats.SchoolMemories); err != nil {
		return stats, fmt.Errorf("failed to count school cache: %w", err)
	}
	return stats, nil
}

func (r *postgresCacheRepo) Clear(ctx context.Context) (int64, error) {
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

// postgresReportRepo implements ReportRepository against Postgres.
type postgresReportRepo struct {
	db *sql.DB
}

func (r *postgresReportRepo) Create(ctx context.Context, report *core.FactReport) error {
	query := `
		INSERT INTO fact_reports (fact_hash, country, graduation_year, reason, fingerprint, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (fact_hash, country, graduation_year, fingerprint) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, report.FactHash, report.Country, report.GraduationYear, report.Reason, report.Fingerprint); err != nil {
		return fmt.Errorf("failed to create fact report: %w", err)
	}
	return nil
}

func (r *postgresReportRepo) CountForFact(ctx context.Context, factHash string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fact_reports WHERE fact_hash = $1`, factHash).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fact reports: %w", err)
	}
	return count, nil
}
