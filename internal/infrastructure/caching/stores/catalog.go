package stores

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/catalog"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
)

// CatalogStore caches reference data (universities, departments, score
// records) loaded from the database. Entries share a single TTL; a stale
// cache returns a miss so the repository reloads from persistence.
type CatalogStore struct {
	mu sync.RWMutex

	universities []*catalog.University
	departments  []*catalog.Department
	scoreRecords map[string][]*catalog.ScoreRecord

	universitiesLoaded time.Time
	departmentsLoaded  time.Time
	scoreLoaded        map[string]time.Time

	ttl    time.Duration
	nowFn  func() time.Time
	logger *logging.ChanneledLogger
}

// NewCatalogStore creates an empty catalog cache with the given TTL
func NewCatalogStore(ttl time.Duration, now func() time.Time, logger *logging.ChanneledLogger) *CatalogStore {
	if now == nil {
		now = time.Now
	}
	return &CatalogStore{
		scoreRecords: make(map[string][]*catalog.ScoreRecord),
		scoreLoaded:  make(map[string]time.Time),
		ttl:          ttl,
		nowFn:        now,
		logger:       logger,
	}
}

func (s *CatalogStore) fresh(loaded time.Time) bool {
	return !loaded.IsZero() && s.nowFn().Sub(loaded) <= s.ttl
}

// GetUniversities returns the cached university list, missing when stale
func (s *CatalogStore) GetUniversities() ([]*catalog.University, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.fresh(s.universitiesLoaded) {
		return nil, false
	}
	return s.universities, true
}

// SetUniversities replaces the cached university list
func (s *CatalogStore) SetUniversities(universities []*catalog.University) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universities = universities
	s.universitiesLoaded = s.nowFn()

	if s.logger != nil {
		s.logger.Cache().Debug("University catalog cached",
			slog.Int("count", len(universities)))
	}
}

// GetDepartments returns the cached department list, missing when stale
func (s *CatalogStore) GetDepartments() ([]*catalog.Department, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.fresh(s.departmentsLoaded) {
		return nil, false
	}
	return s.departments, true
}

// SetDepartments replaces the cached department list
func (s *CatalogStore) SetDepartments(departments []*catalog.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments = departments
	s.departmentsLoaded = s.nowFn()

	if s.logger != nil {
		s.logger.Cache().Debug("Department catalog cached",
			slog.Int("count", len(departments)))
	}
}

func scoreKey(university, department string) string {
	return strings.ToLower(university) + "|" + strings.ToLower(department)
}

// GetScoreRecords returns cached score records for one placement pair
func (s *CatalogStore) GetScoreRecords(university, department string) ([]*catalog.ScoreRecord, bool) {
	key := scoreKey(university, department)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.fresh(s.scoreLoaded[key]) {
		return nil, false
	}
	return s.scoreRecords[key], true
}

// SetScoreRecords caches score records for one placement pair
func (s *CatalogStore) SetScoreRecords(university, department string, records []*catalog.ScoreRecord) {
	key := scoreKey(university, department)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scoreRecords[key] = records
	s.scoreLoaded[key] = s.nowFn()
}

// InvalidateAll drops every cached entry, used after an import run
func (s *CatalogStore) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.universities = nil
	s.departments = nil
	s.universitiesLoaded = time.Time{}
	s.departmentsLoaded = time.Time{}
	s.scoreRecords = make(map[string][]*catalog.ScoreRecord)
	s.scoreLoaded = make(map[string]time.Time)

	if s.logger != nil {
		s.logger.Cache().Info("Catalog cache invalidated")
	}
}

// EvictStale drops score-record entries past the TTL and returns the
// eviction count. List caches stay put; staleness already hides them.
func (s *CatalogStore) EvictStale() int {
	now := s.nowFn()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, loaded := range s.scoreLoaded {
		if now.Sub(loaded) > s.ttl {
			delete(s.scoreRecords, key)
			delete(s.scoreLoaded, key)
			removed++
		}
	}
	return removed
}
