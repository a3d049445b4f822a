// Package repositories implements cache-first persistence access for
// catalog reference data and chat history.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/catalog"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/stores"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/database"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/security"
)

// UniversityRepository reads and writes the universities table with a
// cache-first lookup path.
type UniversityRepository struct {
	db     *database.Database
	cache  *stores.CatalogStore
	logger *logging.ChanneledLogger
}

func NewUniversityRepository(db *database.Database, cache *stores.CatalogStore, logger *logging.ChanneledLogger) *UniversityRepository {
	return &UniversityRepository{db: db, cache: cache, logger: logger}
}

// FindAll returns every university, serving from cache when fresh
func (r *UniversityRepository) FindAll(ctx context.Context) ([]*catalog.University, error) {
	if cached, ok := r.cache.GetUniversities(); ok {
		return cached, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id, name, city, aliases FROM universities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query universities: %w", err)
	}
	defer rows.Close()

	var universities []*catalog.University
	for rows.Next() {
		u, err := scanUniversity(rows)
		if err != nil {
			return nil, err
		}
		universities = append(universities, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.cache.SetUniversities(universities)
	return universities, nil
}

// FindByName resolves a university by canonical name or alias,
// case-insensitively. Returns nil without error when unknown.
func (r *UniversityRepository) FindByName(ctx context.Context, name string) (*catalog.University, error) {
	universities, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	for _, u := range universities {
		if strings.ToLower(u.Name) == needle {
			return u, nil
		}
		for _, alias := range u.Aliases {
			if strings.ToLower(alias) == needle {
				return u, nil
			}
		}
	}
	return nil, nil
}

// Upsert inserts or updates a university by canonical name
func (r *UniversityRepository) Upsert(ctx context.Context, u *catalog.University) error {
	if u.ID == "" {
		u.ID = security.GenerateULID()
	}
	aliases, err := json.Marshal(u.Aliases)
	if err != nil {
		return fmt.Errorf("failed to encode aliases: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO universities (id, name, city, aliases)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET city = excluded.city, aliases = excluded.aliases`,
		u.ID, u.Name, u.City, string(aliases))
	if err != nil {
		return fmt.Errorf("failed to upsert university %s: %w", u.Name, err)
	}

	r.cache.InvalidateAll()
	return nil
}

// Count returns the number of stored universities
func (r *UniversityRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM universities`).Scan(&count)
	return count, err
}

func scanUniversity(rows *sql.Rows) (*catalog.University, error) {
	var u catalog.University
	var aliases string
	if err := rows.Scan(&u.ID, &u.Name, &u.City, &aliases); err != nil {
		return nil, fmt.Errorf("failed to scan university: %w", err)
	}
	if err := json.Unmarshal([]byte(aliases), &u.Aliases); err != nil {
		return nil, fmt.Errorf("failed to decode aliases for %s: %w", u.Name, err)
	}
	return &u, nil
}
