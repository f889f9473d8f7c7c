package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kasuganosora/tilepathd/nav"
)

const statsTop = 100

// StatsHandler exposes the hot-route ranking.
type StatsHandler struct {
	nav *nav.Navigator
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(n *nav.Navigator) *StatsHandler {
	return &StatsHandler{nav: n}
}

// Routes returns the most requested routes of one map, busiest first.
// GET /api/stats/routes?map_id=1&limit=20
func (h *StatsHandler) Routes(c *gin.Context) {
	mapID, err := strconv.Atoi(c.Query("map_id"))
	if err != nil || mapID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad map_id"})
		return
	}
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= statsTop {
		limit = l
	}

	stats, err := h.nav.HotRoutes(c.Request.Context(), mapID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"map_id": mapID, "routes": stats})
}
