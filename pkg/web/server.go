/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package web serves the registry and dashboard pages and the JSON, SVG and
// websocket endpoints behind them.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/carverauto/pemfcradar/pkg/chart"
	"github.com/carverauto/pemfcradar/pkg/dashboard"
	"github.com/carverauto/pemfcradar/pkg/heatmap"
	httpx "github.com/carverauto/pemfcradar/pkg/http"
	"github.com/carverauto/pemfcradar/pkg/logger"
	"github.com/carverauto/pemfcradar/pkg/pemfcapi"
	"github.com/carverauto/pemfcradar/pkg/rank"
	"github.com/carverauto/pemfcradar/pkg/registry"
	"github.com/gorilla/mux"
)

const readHeaderTimeout = 10 * time.Second

//go:embed templates/*.html static/*
var webContent embed.FS

// Options wires the server to its collaborators.
type Options struct {
	ListenAddr     string
	MaxZoom        float64
	DisableZoom    bool
	ForecastWindow int
	PollInterval   time.Duration

	API        pemfcapi.Service
	Registry   *registry.Registry
	Dashboards *dashboard.Manager
	Charts     *chart.Service
	Heatmaps   *heatmap.Service
	Ranks      *rank.Service
	Hub        *Hub
	Logger     logger.Logger
}

// Server is the HTTP front end. It implements lifecycle.Service.
type Server struct {
	opts   Options
	log    logger.Logger
	router *mux.Router
	pages  *template.Template

	mu  sync.Mutex
	srv *http.Server
}

func NewServer(opts Options) (*Server, error) {
	if opts.API == nil || opts.Registry == nil || opts.Dashboards == nil || opts.Charts == nil ||
		opts.Heatmaps == nil || opts.Ranks == nil || opts.Hub == nil {
		return nil, errMissingDependency
	}

	pages, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errTemplates, err)
	}

	s := &Server{
		opts:   opts,
		log:    logger.OrNop(opts.Logger).With("component", "web"),
		router: mux.NewRouter(),
		pages:  pages,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	return s, nil
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() error {
	s.router.Use(httpx.CommonMiddleware)
	s.router.Use(httpx.RequestLogger(s.opts.Logger))

	s.router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	// Pages
	s.router.HandleFunc("/", s.registryPage).Methods(http.MethodGet)
	s.router.HandleFunc("/pemfc", s.register).Methods(http.MethodPost)
	s.router.HandleFunc("/pemfc/reload", s.reload).Methods(http.MethodPost)
	s.router.HandleFunc("/pemfc/delete-all", s.deleteAll).Methods(http.MethodPost)
	s.router.HandleFunc("/pemfc/{id:[0-9]+}/delete", s.deleteOne).Methods(http.MethodPost)
	s.router.HandleFunc("/{id:[0-9]+}/dashboard", s.dashboardPage).Methods(http.MethodGet)

	// JSON and SVG endpoints
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/registry", s.getRegistry).Methods(http.MethodGet)
	api.HandleFunc("/rank/{signal}", s.getRank).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id:[0-9]+}/snapshot", s.getSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id:[0-9]+}/chart/{signal:[A-Za-z0-9_]+}.svg", s.getChart).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id:[0-9]+}/chart/{signal:[A-Za-z0-9_]+}/inspect", s.inspectChart).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id:[0-9]+}/impact/{signal:[A-Za-z0-9_]+}.svg", s.getImpact).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id:[0-9]+}/status/{signal:[A-Za-z0-9_]+}.svg", s.getStatus).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id:[0-9]+}/csv", s.getCSV).Methods(http.MethodGet)

	s.router.HandleFunc("/ws/devices/{id:[0-9]+}", s.serveWS).Methods(http.MethodGet)

	// Serve static files
	fsys, err := fs.Sub(webContent, "static")
	if err != nil {
		return fmt.Errorf("%w: %w", errTemplates, err)
	}

	s.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(fsys))))

	// Anything else lands on the registry page.
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})

	return nil
}

// Start serves until Stop is called.
func (s *Server) Start(context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	s.log.Infof("Starting web server on %s", s.opts.ListenAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%w: %w", errServe, err)
	}

	return nil
}

// Stop disconnects websocket subscribers and drains in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.opts.Hub.Close()

	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}

func (*Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
