package system

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/julianstephens/studyplan/internal/api"
	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/config"
	"github.com/julianstephens/studyplan/internal/metrics"
	"github.com/julianstephens/studyplan/internal/planner"
)

type ServeCmd struct {
	Port int `help:"Port to listen on. Overrides server.port from the config file."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	cfg := ctx.Config
	if cfg == nil {
		cfg = config.Default()
	}
	serverCfg := cfg.Server
	if c.Port != 0 {
		serverCfg.Port = c.Port
	}
	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	svc := ctx.Planner(planner.WithMetrics(collector))
	router := api.NewRouter(svc, collector, serverCfg)

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving studyplan API on :%d\n", serverCfg.Port)
	return api.Serve(sigCtx, serverCfg.Port, router)
}
