package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/kasuganosora/tilepathd/audit"
	"github.com/kasuganosora/tilepathd/cache"
	"github.com/kasuganosora/tilepathd/config"
	mw "github.com/kasuganosora/tilepathd/middleware"
	"github.com/kasuganosora/tilepathd/nav"
	"github.com/kasuganosora/tilepathd/scheduler"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Cfg    *config.Config
	DB     *gorm.DB
	Cache  cache.Cache
	Nav    *nav.Navigator
	Audit  *audit.Service
	Sched  *scheduler.Scheduler
	Logger *zap.Logger
}

// NewRouter assembles the gin engine with the full middleware chain and all
// API routes.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(d.Logger), mw.Recovery(d.Logger))
	r.Use(mw.RateLimit(rate.Limit(d.Cfg.Security.RateLimitRPS), d.Cfg.Security.RateLimitBurst))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authH := NewAuthHandler(d.Cache, d.Cfg.Security)
	mapsH := NewMapsHandler(d.DB, d.Nav, d.Logger)
	pathH := NewPathHandler(d.Nav, d.Audit, d.Logger)
	statsH := NewStatsHandler(d.Nav)
	adminH := NewAdminHandler(d.DB, d.Nav, d.Sched, d.Logger)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/token", authH.Token)
		authG.POST("/revoke", mw.Auth(d.Cfg.Security, d.Cache), authH.Revoke)

		mapsG := api.Group("/maps")
		mapsG.GET("", mapsH.List)
		mapsG.GET("/:id", mapsH.Get)
		mapsG.PUT("/:id", mw.Auth(d.Cfg.Security, d.Cache), mapsH.Update)

		api.POST("/path", mw.Auth(d.Cfg.Security, d.Cache), pathH.Find)

		statsG := api.Group("/stats")
		statsG.GET("/routes", statsH.Routes)

		adminG := api.Group("/admin")
		adminG.Use(mw.AdminAuth(d.Cfg.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.POST("/cache/flush", adminH.FlushCache)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	}

	return r
}
