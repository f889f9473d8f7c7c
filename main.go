package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kasuganosora/tilepathd/api/rest"
	"github.com/kasuganosora/tilepathd/audit"
	"github.com/kasuganosora/tilepathd/cache"
	"github.com/kasuganosora/tilepathd/config"
	dbadapter "github.com/kasuganosora/tilepathd/db"
	"github.com/kasuganosora/tilepathd/model"
	"github.com/kasuganosora/tilepathd/nav"
	"github.com/kasuganosora/tilepathd/resource"
	"github.com/kasuganosora/tilepathd/scheduler"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// Warn loudly if admin endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}
	if len(cfg.Security.Clients) == 0 {
		logger.Warn("security.clients is empty; no client can obtain a token")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop()

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Navigator ----
	navigator := nav.New(c, pubsub, logger, nav.Options{
		PathCacheTTL:  cfg.Pathfind.PathCacheTTL,
		HotRoutesSize: cfg.Pathfind.HotRoutesSize,
	})

	// Seed maps from the data directory, then let uploaded revisions from the
	// DB override them.
	if cfg.Maps.Dir != "" {
		loader := resource.NewLoader(cfg.Maps.Dir)
		if err := loader.Load(); err != nil {
			logger.Warn("map dir load warning", zap.Error(err))
		}
		for _, m := range loader.Maps {
			if err := navigator.RegisterMap(m); err != nil {
				logger.Error("map register failed", zap.Int("map_id", m.ID), zap.Error(err))
			}
		}
	}
	var records []model.MapRecord
	if err := db.Find(&records).Error; err != nil {
		logger.Warn("stored map load warning", zap.Error(err))
	}
	for _, rec := range records {
		doc, err := resource.ParseMap(rec.Document)
		if err != nil {
			logger.Error("stored map invalid", zap.Int("map_id", rec.ID), zap.Error(err))
			continue
		}
		if err := navigator.RegisterMap(doc); err != nil {
			logger.Error("stored map register failed", zap.Int("map_id", rec.ID), zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := navigator.WatchUpdates(ctx, rest.DBMapSource(db)); err != nil {
		log.Fatalf("map update subscription: %v", err)
	}

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("hot_routes_trim", cfg.Pathfind.StatsTrimInterval, func() {
		navigator.TrimHotRoutes(context.Background())
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := rest.NewRouter(rest.Deps{
		Cfg:    cfg,
		DB:     db,
		Cache:  c,
		Nav:    navigator,
		Audit:  auditSvc,
		Sched:  sched,
		Logger: logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
