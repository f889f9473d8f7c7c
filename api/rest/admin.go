package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kasuganosora/tilepathd/model"
	"github.com/kasuganosora/tilepathd/nav"
	"github.com/kasuganosora/tilepathd/scheduler"
)

// AdminHandler exposes operator endpoints behind the admin key.
type AdminHandler struct {
	db     *gorm.DB
	nav    *nav.Navigator
	sched  *scheduler.Scheduler
	logger *zap.Logger
	start  time.Time
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(db *gorm.DB, n *nav.Navigator, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, nav: n, sched: sched, logger: logger, start: time.Now()}
}

// Metrics handles GET /api/admin/metrics.
func (h *AdminHandler) Metrics(c *gin.Context) {
	var audits int64
	h.db.Model(&model.PathAudit{}).Count(&audits)
	c.JSON(http.StatusOK, gin.H{
		"uptime_s":    int(time.Since(h.start).Seconds()),
		"maps_loaded": len(h.nav.Maps()),
		"path_audits": audits,
	})
}

// FlushCache handles POST /api/admin/cache/flush, invalidating every
// cached path across all instances.
func (h *AdminHandler) FlushCache(c *gin.Context) {
	if err := h.nav.Flush(c.Request.Context()); err != nil {
		// local flush already happened; only the fan-out failed
		h.logger.Error("flush broadcast failed", zap.Error(err))
	}
	h.logger.Info("admin cache flush", zap.String("ip", c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{"message": "flushed"})
}

// ListSchedulerTasks handles GET /api/admin/scheduler.
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tickers": h.sched.ListTickers()})
}
