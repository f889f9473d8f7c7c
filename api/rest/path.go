package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kasuganosora/tilepathd/audit"
	mw "github.com/kasuganosora/tilepathd/middleware"
	"github.com/kasuganosora/tilepathd/nav"
	"github.com/kasuganosora/tilepathd/pathfind"
)

// PathHandler answers path queries.
type PathHandler struct {
	nav    *nav.Navigator
	audit  *audit.Service
	logger *zap.Logger
}

// NewPathHandler creates a PathHandler.
func NewPathHandler(n *nav.Navigator, auditSvc *audit.Service, logger *zap.Logger) *PathHandler {
	return &PathHandler{nav: n, audit: auditSvc, logger: logger}
}

// Find handles POST /api/path. An off-map coordinate is a 400, an unknown
// map a 404, and an unreachable goal a 200 with found=false.
func (h *PathHandler) Find(c *gin.Context) {
	started := time.Now()
	var req nav.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.nav.FindPath(c.Request.Context(), req)
	entry := audit.Entry{
		TraceID:    mw.GetTraceID(c),
		ClientID:   mw.GetClientID(c),
		MapID:      req.MapID,
		Request:    req,
		Heuristic:  req.Heuristic,
		IP:         c.ClientIP(),
		DurationMs: int(time.Since(started).Milliseconds()),
	}
	if err != nil {
		entry.Error = err.Error()
		h.audit.Log(entry)
		switch {
		case errors.Is(err, nav.ErrMapNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "map not found"})
		case errors.Is(err, pathfind.ErrNodeNotInGraph):
			c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates outside map"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	entry.Response = res
	entry.PathLen = len(res.Path)
	entry.Cost = res.Cost
	entry.Cached = res.Cached
	h.audit.Log(entry)

	c.JSON(http.StatusOK, res)
}
