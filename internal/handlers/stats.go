// internal/handlers/stats.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"campus-findu/internal/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) GetMatchingStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := h.statsService.GetMatchingStats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error building statistics",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
