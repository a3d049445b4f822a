package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tercihrehberi/tercihbot-go/internal/application/services"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/manager"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/performance"
)

// AdminHandlers serves the authenticated operations surface
type AdminHandlers struct {
	importer *services.ImportService
	cache    *manager.Manager
	logger   *logging.ChanneledLogger
	perf     *performance.Tracker
}

func NewAdminHandlers(
	importer *services.ImportService,
	cache *manager.Manager,
	logger *logging.ChanneledLogger,
	perf *performance.Tracker,
) *AdminHandlers {
	return &AdminHandlers{
		importer: importer,
		cache:    cache,
		logger:   logger,
		perf:     perf,
	}
}

type importRequest struct {
	URLs []string `json:"urls"`
}

// RunImport processes POST /api/v1/admin/import
func (h *AdminHandlers) RunImport(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid import request"})
		return
	}

	written, err := h.importer.Run(c.Request.Context(), req.URLs)
	if err != nil {
		h.logger.Import().Error("Import run failed", slog.Any("error", err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "recordsWritten": written})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recordsWritten": written})
}

// GetStats processes GET /api/v1/admin/stats
func (h *AdminHandlers) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cache":       h.cache.GetStats(),
		"performance": h.perf.GetStats(),
	})
}

type logLevelRequest struct {
	Channel string `json:"channel" binding:"required"`
	Level   string `json:"level" binding:"required"`
}

// SetLogLevel processes PUT /api/v1/admin/log-level
func (h *AdminHandlers) SetLogLevel(c *gin.Context) {
	var req logLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel and level are required"})
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(req.Level)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown level, use DEBUG, INFO, WARN or ERROR"})
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"levels": h.logger.GetChannelLevels()})
}
