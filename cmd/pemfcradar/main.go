// cmd/pemfcradar/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/carverauto/pemfcradar/pkg/chart"
	"github.com/carverauto/pemfcradar/pkg/config"
	"github.com/carverauto/pemfcradar/pkg/dashboard"
	"github.com/carverauto/pemfcradar/pkg/heatmap"
	"github.com/carverauto/pemfcradar/pkg/lifecycle"
	"github.com/carverauto/pemfcradar/pkg/logger"
	"github.com/carverauto/pemfcradar/pkg/pemfcapi"
	"github.com/carverauto/pemfcradar/pkg/rank"
	"github.com/carverauto/pemfcradar/pkg/registry"
	"github.com/carverauto/pemfcradar/pkg/web"
)

const serviceName = "pemfcradar"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/pemfcradar/pemfcradar.json", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog := logger.New(serviceName, cfg.LogLevel)
	defer func() { _ = zlog.Flush() }()

	api, err := pemfcapi.NewClient(pemfcapi.Options{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   time.Duration(cfg.RequestTimeout),
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Logger:    zlog,
	})
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	hub := web.NewHub(zlog)

	dashboards := dashboard.NewManager(api, dashboard.ManagerOptions{
		PollInterval: time.Duration(cfg.PollInterval),
		IdleTimeout:  time.Duration(cfg.DashboardIdleTimeout),
		OnUpdate:     hub.Broadcast,
		Logger:       zlog,
	})

	server, err := web.NewServer(web.Options{
		ListenAddr:     cfg.ListenAddr,
		MaxZoom:        cfg.MaxZoom,
		DisableZoom:    cfg.DisableZoom,
		ForecastWindow: cfg.ForecastWindow,
		PollInterval:   time.Duration(cfg.PollInterval),
		API:            api,
		Registry:       registry.New(api, cfg.ClientID, zlog),
		Dashboards:     dashboards,
		Charts: chart.NewService(api, chart.ServiceOptions{
			RecentRecords:  cfg.RecentRecords,
			ForecastWindow: cfg.ForecastWindow,
			Logger:         zlog,
		}),
		Heatmaps: heatmap.NewService(api, zlog),
		Ranks:    rank.NewService(api, zlog),
		Hub:      hub,
		Logger:   zlog,
	})
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	zlog.Infof("Monitoring client %d via %s", cfg.ClientID, cfg.APIBaseURL)

	// Stopped in reverse order: web server first, then dashboard pollers.
	return lifecycle.RunServer(context.Background(), &lifecycle.ServerOptions{
		ServiceName: serviceName,
		Services:    []lifecycle.Service{dashboards, server},
		Logger:      zlog,
	})
}
