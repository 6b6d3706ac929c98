package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/api/handlers"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/api/middleware"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/config"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/database"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/events"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/pipeline"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, publisher *events.Publisher, p *pipeline.Pipeline) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	syncHandler := handlers.NewSyncHandler(db, publisher, p, logger)

	// Routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/syncs", syncHandler.Trigger)

		runs := v1.Group("/runs")
		{
			runs.GET("", syncHandler.ListRuns)
			runs.GET("/:id", syncHandler.GetRun)
		}
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}
