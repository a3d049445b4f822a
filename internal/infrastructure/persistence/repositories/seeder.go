package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/catalog"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
)

// seedUniversities is the bootstrap catalog used until an import run
// replaces it with scraped data.
var seedUniversities = []*catalog.University{
	{Name: "Marmara Üniversitesi", City: "İstanbul", Aliases: []string{"marmara"}},
	{Name: "Boğaziçi Üniversitesi", City: "İstanbul", Aliases: []string{"boğaziçi", "boun"}},
	{Name: "İstanbul Teknik Üniversitesi", City: "İstanbul", Aliases: []string{"itü"}},
	{Name: "İstanbul Üniversitesi", City: "İstanbul", Aliases: []string{}},
	{Name: "Orta Doğu Teknik Üniversitesi", City: "Ankara", Aliases: []string{"odtü"}},
	{Name: "Hacettepe Üniversitesi", City: "Ankara", Aliases: []string{"hacettepe"}},
	{Name: "Ankara Üniversitesi", City: "Ankara", Aliases: []string{}},
	{Name: "Gazi Üniversitesi", City: "Ankara", Aliases: []string{}},
	{Name: "Ege Üniversitesi", City: "İzmir", Aliases: []string{}},
	{Name: "Dokuz Eylül Üniversitesi", City: "İzmir", Aliases: []string{"dokuz eylül"}},
	{Name: "Yıldız Teknik Üniversitesi", City: "İstanbul", Aliases: []string{"ytü"}},
	{Name: "Koç Üniversitesi", City: "İstanbul", Aliases: []string{"koç"}},
	{Name: "Sabancı Üniversitesi", City: "İstanbul", Aliases: []string{"sabancı"}},
	{Name: "İhsan Doğramacı Bilkent Üniversitesi", City: "Ankara", Aliases: []string{"bilkent"}},
}

var seedDepartments = []*catalog.Department{
	{Name: "Bilgisayar Mühendisliği", Aliases: []string{"bilgisayar müh"}},
	{Name: "Yazılım Mühendisliği", Aliases: []string{}},
	{Name: "Elektrik-Elektronik Mühendisliği", Aliases: []string{"elektrik elektronik"}},
	{Name: "Makine Mühendisliği", Aliases: []string{"makina mühendisliği"}},
	{Name: "Endüstri Mühendisliği", Aliases: []string{}},
	{Name: "İnşaat Mühendisliği", Aliases: []string{}},
	{Name: "Tıp", Aliases: []string{"tıp fakültesi"}},
	{Name: "Diş Hekimliği", Aliases: []string{}},
	{Name: "Eczacılık", Aliases: []string{}},
	{Name: "Hemşirelik", Aliases: []string{}},
	{Name: "Hukuk", Aliases: []string{"hukuk fakültesi"}},
	{Name: "Psikoloji", Aliases: []string{}},
	{Name: "İşletme", Aliases: []string{}},
	{Name: "İktisat", Aliases: []string{"ekonomi"}},
	{Name: "Mimarlık", Aliases: []string{}},
	{Name: "İngilizce Öğretmenliği", Aliases: []string{}},
	{Name: "Sınıf Öğretmenliği", Aliases: []string{}},
}

var seedScoreRecords = []*catalog.ScoreRecord{
	{University: "Marmara Üniversitesi", Department: "Bilgisayar Mühendisliği", ScoreType: "SAY", Year: 2025, MinScore: 488.7, MinRank: 21400, Quota: 110},
	{University: "Marmara Üniversitesi", Department: "Bilgisayar Mühendisliği", ScoreType: "SAY", Year: 2024, MinScore: 484.2, MinRank: 23150, Quota: 105},
	{University: "Marmara Üniversitesi", Department: "Hukuk", ScoreType: "EA", Year: 2025, MinScore: 472.1, MinRank: 9800, Quota: 250},
	{University: "Boğaziçi Üniversitesi", Department: "Bilgisayar Mühendisliği", ScoreType: "SAY", Year: 2025, MinScore: 540.3, MinRank: 850, Quota: 100},
	{University: "İstanbul Teknik Üniversitesi", Department: "Bilgisayar Mühendisliği", ScoreType: "SAY", Year: 2025, MinScore: 528.9, MinRank: 2300, Quota: 130},
	{University: "Orta Doğu Teknik Üniversitesi", Department: "Bilgisayar Mühendisliği", ScoreType: "SAY", Year: 2025, MinScore: 531.4, MinRank: 1900, Quota: 120},
	{University: "İstanbul Üniversitesi", Department: "Hukuk", ScoreType: "EA", Year: 2025, MinScore: 478.5, MinRank: 7600, Quota: 400},
	{University: "İstanbul Üniversitesi", Department: "Tıp", ScoreType: "SAY", Year: 2025, MinScore: 545.8, MinRank: 620, Quota: 350},
	{University: "Hacettepe Üniversitesi", Department: "Tıp", ScoreType: "SAY", Year: 2025, MinScore: 543.2, MinRank: 710, Quota: 320},
	{University: "Hacettepe Üniversitesi", Department: "Psikoloji", ScoreType: "EA", Year: 2025, MinScore: 465.3, MinRank: 14200, Quota: 90},
	{University: "Yıldız Teknik Üniversitesi", Department: "Bilgisayar Mühendisliği", ScoreType: "SAY", Year: 2025, MinScore: 512.6, MinRank: 6100, Quota: 140},
}

// Seeder bootstraps empty catalog tables with a starter dataset
type Seeder struct {
	universities *UniversityRepository
	departments  *DepartmentRepository
	scores       *ScoreRepository
	logger       *logging.ChanneledLogger
}

func NewSeeder(universities *UniversityRepository, departments *DepartmentRepository, scores *ScoreRepository, logger *logging.ChanneledLogger) *Seeder {
	return &Seeder{
		universities: universities,
		departments:  departments,
		scores:       scores,
		logger:       logger,
	}
}

// SeedIfEmpty populates each empty catalog table. Non-empty tables are
// left untouched so import runs stay authoritative.
func (s *Seeder) SeedIfEmpty(ctx context.Context) error {
	count, err := s.universities.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count universities: %w", err)
	}
	if count == 0 {
		for _, u := range seedUniversities {
			if err := s.universities.Upsert(ctx, u); err != nil {
				return err
			}
		}
	}

	count, err = s.departments.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count departments: %w", err)
	}
	if count == 0 {
		for _, d := range seedDepartments {
			if err := s.departments.Upsert(ctx, d); err != nil {
				return err
			}
		}
	}

	count, err = s.scores.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count score records: %w", err)
	}
	if count == 0 {
		for _, rec := range seedScoreRecords {
			if err := s.scores.Upsert(ctx, rec); err != nil {
				return err
			}
		}
	}

	if s.logger != nil {
		s.logger.Database().Info("Catalog seed check completed",
			slog.Int("universities", len(seedUniversities)),
			slog.Int("departments", len(seedDepartments)),
			slog.Int("scoreRecords", len(seedScoreRecords)))
	}
	return nil
}
