package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/catalog"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/stores"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/database"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/security"
)

// ScoreRepository reads and writes historical placement score records
type ScoreRepository struct {
	db     *database.Database
	cache  *stores.CatalogStore
	logger *logging.ChanneledLogger
}

func NewScoreRepository(db *database.Database, cache *stores.CatalogStore, logger *logging.ChanneledLogger) *ScoreRepository {
	return &ScoreRepository{db: db, cache: cache, logger: logger}
}

// FindByPlacement returns all score records for one university and
// department pair, newest year first, cache-first.
func (r *ScoreRepository) FindByPlacement(ctx context.Context, university, department string) ([]*catalog.ScoreRecord, error) {
	if cached, ok := r.cache.GetScoreRecords(university, department); ok {
		return cached, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, university, department, score_type, year, min_score, min_rank, quota, imported_at
		FROM score_records
		WHERE university = ? AND department = ?
		ORDER BY year DESC, score_type`,
		university, department)
	if err != nil {
		return nil, fmt.Errorf("failed to query score records: %w", err)
	}
	defer rows.Close()

	var records []*catalog.ScoreRecord
	for rows.Next() {
		var rec catalog.ScoreRecord
		if err := rows.Scan(&rec.ID, &rec.University, &rec.Department, &rec.ScoreType,
			&rec.Year, &rec.MinScore, &rec.MinRank, &rec.Quota, &rec.Imported); err != nil {
			return nil, fmt.Errorf("failed to scan score record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.cache.SetScoreRecords(university, department, records)
	return records, nil
}

// FindLatest returns the newest record for a placement and score type.
// Returns nil without error when no data exists.
func (r *ScoreRepository) FindLatest(ctx context.Context, university, department, scoreType string) (*catalog.ScoreRecord, error) {
	var rec catalog.ScoreRecord
	err := r.db.QueryRow(ctx, `
		SELECT id, university, department, score_type, year, min_score, min_rank, quota, imported_at
		FROM score_records
		WHERE university = ? AND department = ? AND score_type = ?
		ORDER BY year DESC
		LIMIT 1`,
		university, department, scoreType).Scan(
		&rec.ID, &rec.University, &rec.Department, &rec.ScoreType,
		&rec.Year, &rec.MinScore, &rec.MinRank, &rec.Quota, &rec.Imported)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest score record: %w", err)
	}
	return &rec, nil
}

// Upsert inserts or refreshes one record keyed by placement and year
func (r *ScoreRepository) Upsert(ctx context.Context, rec *catalog.ScoreRecord) error {
	if rec.ID == "" {
		rec.ID = security.GenerateULID()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO score_records (id, university, department, score_type, year, min_score, min_rank, quota)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(university, department, score_type, year) DO UPDATE SET
			min_score = excluded.min_score,
			min_rank = excluded.min_rank,
			quota = excluded.quota,
			imported_at = CURRENT_TIMESTAMP`,
		rec.ID, rec.University, rec.Department, rec.ScoreType,
		rec.Year, rec.MinScore, rec.MinRank, rec.Quota)
	if err != nil {
		return fmt.Errorf("failed to upsert score record: %w", err)
	}
	return nil
}

// Count returns the number of stored score records
func (r *ScoreRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM score_records`).Scan(&count)
	return count, err
}
