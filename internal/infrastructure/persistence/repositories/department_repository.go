package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/catalog"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/stores"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/database"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/security"
)

// DepartmentRepository reads and writes the departments table
type DepartmentRepository struct {
	db     *database.Database
	cache  *stores.CatalogStore
	logger *logging.ChanneledLogger
}

func NewDepartmentRepository(db *database.Database, cache *stores.CatalogStore, logger *logging.ChanneledLogger) *DepartmentRepository {
	return &DepartmentRepository{db: db, cache: cache, logger: logger}
}

// FindAll returns every department, serving from cache when fresh
func (r *DepartmentRepository) FindAll(ctx context.Context) ([]*catalog.Department, error) {
	if cached, ok := r.cache.GetDepartments(); ok {
		return cached, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id, name, aliases FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var departments []*catalog.Department
	for rows.Next() {
		var d catalog.Department
		var aliases string
		if err := rows.Scan(&d.ID, &d.Name, &aliases); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		if err := json.Unmarshal([]byte(aliases), &d.Aliases); err != nil {
			return nil, fmt.Errorf("failed to decode aliases for %s: %w", d.Name, err)
		}
		departments = append(departments, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.cache.SetDepartments(departments)
	return departments, nil
}

// FindByName resolves a department by canonical name or alias
func (r *DepartmentRepository) FindByName(ctx context.Context, name string) (*catalog.Department, error) {
	departments, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	for _, d := range departments {
		if strings.ToLower(d.Name) == needle {
			return d, nil
		}
		for _, alias := range d.Aliases {
			if strings.ToLower(alias) == needle {
				return d, nil
			}
		}
	}
	return nil, nil
}

// Upsert inserts or updates a department by canonical name
func (r *DepartmentRepository) Upsert(ctx context.Context, d *catalog.Department) error {
	if d.ID == "" {
		d.ID = security.GenerateULID()
	}
	aliases, err := json.Marshal(d.Aliases)
	if err != nil {
		return fmt.Errorf("failed to encode aliases: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO departments (id, name, aliases)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET aliases = excluded.aliases`,
		d.ID, d.Name, string(aliases))
	if err != nil {
		return fmt.Errorf("failed to upsert department %s: %w", d.Name, err)
	}

	r.cache.InvalidateAll()
	return nil
}

// Count returns the number of stored departments
func (r *DepartmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&count)
	return count, err
}
