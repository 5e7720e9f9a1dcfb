package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/theoremus-urban-solutions/schedule-analytics/analysis"
	"github.com/theoremus-urban-solutions/schedule-analytics/config"
	"github.com/theoremus-urban-solutions/schedule-analytics/gtfs"
	"github.com/theoremus-urban-solutions/schedule-analytics/regions"
)

// Server exposes the analytics engine over HTTP. The schedule index is
// loaded once and shared read-only across requests; every analysis is a
// pure function of the request, so no per-request locking is needed.
type Server struct {
	ix      *gtfs.Index
	cls     *regions.Classifier
	labels  *analysis.DirectionLabels
	cfg     config.AppConfig
	metrics *Collector
	httpSrv *http.Server
}

func New(ix *gtfs.Index, cls *regions.Classifier, labels *analysis.DirectionLabels, cfg config.AppConfig) *Server {
	s := &Server{ix: ix, cls: cls, labels: labels, cfg: cfg, metrics: NewCollector()}
	s.metrics.ScheduleTrips.Set(float64(ix.TripCount()))
	s.metrics.ScheduleStops.Set(float64(ix.StopCount()))
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/routes", s.handleRoutes)
	r.Get("/api/station-order", s.handleStationOrder)
	r.Get("/api/express-local", s.handleExpressLocal)
	r.Get("/api/express-windows", s.handleExpressWindows)
	r.Get("/api/travel-times", s.handleTravelTimes)
	r.Get("/api/headways", s.handleHeadways)
	r.Handle("/metrics", s.metrics.Handler())
	return r
}

// Start begins serving in the background.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", addr)
}

// HandleGracefulShutdown blocks until SIGINT/SIGTERM, then drains the
// server.
func (s *Server) HandleGracefulShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Printf("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			log.Printf("server shutdown error: %v", err)
		} else {
			log.Printf("server shut down successfully")
		}
	}
}
