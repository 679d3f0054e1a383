// Package api serves the planner over HTTP with gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/julianstephens/studyplan/internal/config"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/metrics"
	"github.com/julianstephens/studyplan/internal/mw"
	"github.com/julianstephens/studyplan/internal/planner"
)

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	svc *planner.Service
}

func NewHandler(svc *planner.Service) *Handler {
	return &Handler{svc: svc}
}

// NewRouter wires the API routes, rate limiting and read caching. A nil collector
// disables /metrics.
func NewRouter(svc *planner.Service, collector *metrics.Collector, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.LoggerWithWriter(logger.Writer()),
		gin.RecoveryWithWriter(logger.Writer()),
	)

	h := NewHandler(svc)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	responses := mw.NewResponseCache(cache.New(ttl, 2*ttl))
	var caching gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if ttl > 0 {
		caching = mw.Cache(responses, ttl)
	}

	r.GET("/healthz", h.Health)
	if collector != nil {
		r.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	api := r.Group("/api")
	if cfg.RateLimitPerSec > 0 {
		api.Use(mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader))
	}
	api.Use(mw.Invalidate(responses))
	{
		api.POST("/plans/generate", h.GeneratePlan)
		api.POST("/plans/accept", h.AcceptPlan)

		api.GET("/sessions", caching, h.ListSessions)
		api.GET("/sessions/:id", h.GetSession)
		api.POST("/sessions/:id/checkin", h.CheckIn)

		api.GET("/adherence", caching, h.Adherence)

		api.GET("/mutes", h.ListMutes)
		api.POST("/mutes", h.AddMute)
		api.DELETE("/mutes/:day/:scope", h.DeleteMute)

		api.GET("/deadlines", caching, h.ListDeadlines)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "code": "not_found"})
	})

	return r
}
