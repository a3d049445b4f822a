package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tercihrehberi/tercihbot-go/internal/application/services"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/repositories"
)

// CatalogHandlers serves the reference-data read endpoints
type CatalogHandlers struct {
	universities *repositories.UniversityRepository
	departments  *repositories.DepartmentRepository
	score        *services.ScoreService
	logger       *logging.ChanneledLogger
}

func NewCatalogHandlers(
	universities *repositories.UniversityRepository,
	departments *repositories.DepartmentRepository,
	score *services.ScoreService,
	logger *logging.ChanneledLogger,
) *CatalogHandlers {
	return &CatalogHandlers{
		universities: universities,
		departments:  departments,
		score:        score,
		logger:       logger,
	}
}

// ListUniversities processes GET /api/v1/universities
func (h *CatalogHandlers) ListUniversities(c *gin.Context) {
	universities, err := h.universities.FindAll(c.Request.Context())
	if err != nil {
		h.logger.Database().Error("University listing failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load universities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"universities": universities})
}

// ListDepartments processes GET /api/v1/departments
func (h *CatalogHandlers) ListDepartments(c *gin.Context) {
	departments, err := h.departments.FindAll(c.Request.Context())
	if err != nil {
		h.logger.Database().Error("Department listing failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load departments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

// GetScores processes GET /api/v1/scores?university=...&department=...
func (h *CatalogHandlers) GetScores(c *gin.Context) {
	university := c.Query("university")
	department := c.Query("department")
	if university == "" || department == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "university and department query parameters are required"})
		return
	}

	records, err := h.score.History(c.Request.Context(), university, department)
	if err != nil {
		h.logger.Database().Error("Score history lookup failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load score records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"university": university,
		"department": department,
		"records":    records,
	})
}
