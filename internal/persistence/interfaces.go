// Package persistence provides database implementations
package persistence

import (
	"context"

	"isthatstilltrue/internal/core"
)

// Database is the storage surface of the service. Postgres backs production;
// the local SQLite store implements the same interface for development.
type Database interface {
	Cache() CacheRepository
	Reports() ReportRepository
	Ping(ctx context.Context) error
	Close() error
}

// CacheRepository stores generation and school research results. Both caches
// have at-most-one-row-per-key upsert semantics; stale rows are superseded by
// the next write, never deleted.
type CacheRepository interface {
	GetGeneration(ctx context.Context, country string, year int) (*core.CachedGeneration, error)
	UpsertGeneration(ctx context.Context, country string, year int, facts []core.FactRecord, problems []core.EducationProblem) error
	GetSchoolMemories(ctx context.Context, schoolName, city string, year int) (*core.CachedSchoolMemories, error)
	UpsertSchoolMemories(ctx context.Context, schoolName, city string, year int, memories core.SchoolMemories) error
	Stats(ctx context.Context) (CacheStats, error)
	Clear(ctx context.Context) (int64, error)
}

// CacheStats summarizes the cache tables.
type CacheStats struct {
	Generations    int
	SchoolMemories int
}

// ReportRepository stores user-submitted fact reports.
type ReportRepository interface {
	Create(ctx context.Context, report *core.FactReport) error
	CountForFact(ctx context.Context, factHash string) (int, error)
}
