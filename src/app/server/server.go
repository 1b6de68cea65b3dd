// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"goblet/src/app/http/handler"
	"goblet/src/app/middleware"
	"goblet/src/core/ports"
	"goblet/src/core/usecase"
	"goblet/src/infra/config"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	router *gin.Engine
	http   *http.Server

	// Handlers
	healthHandler     *handler.HealthHandler
	lockHandler       *handler.LockHandler
	teamHandler       *handler.TeamHandler
	roundHandler      *handler.RoundHandler
	quaffleHandler    *handler.QuaffleHandler
	transitionHandler *handler.TransitionHandler
	potionHandler     *handler.PotionHandler
	standingsHandler  *handler.StandingsHandler
}

// New creates a new Server with all dependencies wired up.
func New(cfg *config.Config, log *slog.Logger, repo ports.TournamentRepository) *Server {
	// Set Gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()

	// Create services
	healthService := usecase.NewHealthService(repo, log)
	gate := usecase.NewLockGateService(repo, log)
	ledger := usecase.NewScoreLedgerService(repo, log)
	teamService := usecase.NewTeamService(repo, ledger, gate, log)
	resultsService := usecase.NewRoundResultsService(repo, gate, log)
	creditService := usecase.NewHouseCreditService(repo, gate, log)
	eliminationService := usecase.NewEliminationService(repo, gate, log)
	potionService := usecase.NewPotionService(repo, gate, log)
	standingsService := usecase.NewStandingsService(repo, log)
	activityService := usecase.NewActivityService(repo, log)
	reconcilerService := usecase.NewReconcilerService(repo, log)

	s := &Server{
		cfg:               cfg,
		log:               log,
		router:            router,
		healthHandler:     handler.NewHealthHandler(healthService),
		lockHandler:       handler.NewLockHandler(gate),
		teamHandler:       handler.NewTeamHandler(teamService),
		roundHandler:      handler.NewRoundHandler(resultsService),
		quaffleHandler:    handler.NewQuaffleHandler(creditService),
		transitionHandler: handler.NewTransitionHandler(eliminationService),
		potionHandler:     handler.NewPotionHandler(potionService),
		standingsHandler:  handler.NewStandingsHandler(standingsService, activityService, reconcilerService),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// Order matters: Recovery should be first to catch all panics
	s.router.Use(middleware.Recovery(s.log))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.Metrics())
	s.router.Use(middleware.Logging(s.log))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health and metrics endpoints (no auth required)
	s.router.GET("/health", s.healthHandler.Health)
	s.router.GET("/health/detailed", s.healthHandler.DetailedHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes: everything behind bearer-token actor auth. Reads are
	// polled by the themed UI; mutations are additionally policy-gated in
	// the usecases.
	v1 := s.router.Group("/v1")
	v1.Use(middleware.ActorAuth(s.cfg.Auth.JWTSecret))
	{
		// Lock gate
		v1.GET("/round-status", s.lockHandler.Status)
		v1.POST("/round-status", s.lockHandler.Set)

		// Teams and scoring
		v1.POST("/teams", s.teamHandler.Upsert)
		v1.GET("/teams", s.teamHandler.List)
		v1.DELETE("/teams", s.teamHandler.Delete)

		// Round results
		v1.POST("/rounds/:round_id", s.roundHandler.Record)
		v1.GET("/rounds/:round_id", s.roundHandler.Get)

		// House credit
		v1.POST("/award-quaffle", s.quaffleHandler.Award)
		v1.POST("/revert-quaffle", s.quaffleHandler.Revert)

		// Round transition / elimination
		v1.POST("/start-round", s.transitionHandler.StartRound)

		// Potion catalog
		v1.POST("/potions", s.potionHandler.Create)
		v1.GET("/potions", s.potionHandler.List)
		v1.POST("/potions/choose", s.potionHandler.Choose)
		v1.DELETE("/potions", s.potionHandler.Delete)

		// Standings, activity log, reconciliation
		v1.GET("/standings", s.standingsHandler.List)
		v1.GET("/activity", s.standingsHandler.Activity)
		v1.POST("/reconcile", s.standingsHandler.Reconcile)
	}

	// Handle 404
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":       "NOT_FOUND",
				"message":    "The requested resource was not found",
				"request_id": middleware.GetRequestID(c),
			},
		})
	})
}

// setupHTTPServer configures the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.http = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
// It handles graceful shutdown on SIGINT/SIGTERM.
func (s *Server) Run() error {
	// Channel to receive shutdown signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.log.Info("starting HTTP server",
			"addr", s.cfg.Server.Addr(),
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-quit:
		s.log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	// Graceful shutdown
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// WaitForReady waits until the server is ready to accept connections.
// Useful for integration tests.
func (s *Server) WaitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(fmt.Sprintf("http://%s/health", s.cfg.Server.Addr()))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}
