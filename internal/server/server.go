package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"live-poll/config"
	"live-poll/internal/handler"
	"live-poll/internal/middleware"
	"live-poll/internal/redis"
	"live-poll/internal/services"
	"live-poll/internal/transport/httpdto"
	"live-poll/internal/websocket"
	"live-poll/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Admin       *handler.AdminHandler
	Participant *handler.ParticipantHandler
	Results     *handler.ResultsHandler
	Realtime    *websocket.Handler
}

// Dependencies are the pieces routes need besides the handlers. Limiter may
// be nil when redis is disabled.
type Dependencies struct {
	Identity *services.ClientIdentityService
	Limiter  *redis.RateLimiter
	Health   func(ctx context.Context) error
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	// Meme uploads are capped by the upload service; keep the form in memory up to that size.
	engine.MaxMultipartMemory = cfg.UploadMaxBytes + 1<<20

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) SetupRoutes(h *Handlers, deps Dependencies) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
				return
			}
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	v1 := s.engine.Group("/v1")

	questions := v1.Group("/questions")
	{
		questions.GET("", h.Admin.List)
		questions.POST("", h.Admin.Create)
		questions.PUT("/:id", h.Admin.Update)
		questions.DELETE("/:id", h.Admin.Delete)
		questions.POST("/:id/activate", h.Admin.Activate)
	}

	v1.GET("/active", h.Admin.Active)
	v1.DELETE("/active", h.Admin.Deactivate)

	v1.POST("/clients", h.Participant.RegisterClient)

	poll := v1.Group("/poll", middleware.ClientIdentityMiddleware(deps.Identity))
	{
		poll.GET("", h.Participant.View)
		poll.POST("/responses", middleware.SubmitRateLimitMiddleware(deps.Limiter), h.Participant.Submit)
	}

	v1.GET("/results", h.Results.Current)

	if h.Realtime != nil {
		ws := v1.Group("/ws")
		{
			ws.GET("/admin", h.Realtime.Admin)
			ws.GET("/results", h.Realtime.Results)
			ws.GET("/participant", h.Realtime.Participant)
		}
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if s.logger != nil {
		s.logger.Infof("Shutting down the server, waiting up to 5 seconds")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		if s.logger != nil {
			s.logger.Errorf("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}
	return nil
}
