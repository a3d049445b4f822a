package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/manager"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/database"
)

// HealthHandlers serves liveness and readiness probes
type HealthHandlers struct {
	db    *database.Database
	cache *manager.Manager
}

func NewHealthHandlers(db *database.Database, cache *manager.Manager) *HealthHandlers {
	return &HealthHandlers{db: db, cache: cache}
}

// Health processes GET /health
func (h *HealthHandlers) Health(c *gin.Context) {
	if err := h.db.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"driver":       h.db.Driver(),
		"liveSessions": h.cache.GetStats().LiveSessions,
	})
}
