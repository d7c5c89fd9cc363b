// Package server exposes the intake pipeline, stores, and dashboards
// over HTTP. It only drives pipeline transitions and renders results;
// all domain rules live below it.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medichain/internal/auth"
	"medichain/internal/intake"
	"medichain/internal/types"
)

// Server wires the HTTP surface to the domain services.
type Server struct {
	engine    *gin.Engine
	auth      *auth.Service
	requester intake.Requester
	users     types.UserStore
	reports   types.ReportStore
	log       *zap.Logger
}

// New builds the router. Each analyze request runs on a fresh pipeline
// instance; the single-submission gate is a per-form concern that the
// client enforces, while store-level safety covers concurrent writers.
func New(authSvc *auth.Service, requester intake.Requester, users types.UserStore, reports types.ReportStore, log *zap.Logger) *Server {
	s := &Server{
		auth:      authSvc,
		requester: requester,
		users:     users,
		reports:   reports,
		log:       log,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/healthz", s.handleHealth)

	api := engine.Group("/api/v1")
	{
		api.POST("/auth/signup", s.handleSignup)
		api.POST("/auth/login", s.handleLogin)

		// Anonymous submissions are allowed; they are just not
		// persisted.
		api.POST("/analyze", s.optionalSession(), s.handleAnalyze)

		api.GET("/reports", s.requireSession(), s.handleListReports)
		api.GET("/users", s.requireSession(), s.requireRole(types.RoleAdmin), s.handleListUsers)
		api.GET("/patients", s.requireSession(), s.requireRole(types.RoleDoctor, types.RoleAdmin), s.handleListPatients)
		api.PUT("/reports/notes", s.requireSession(), s.requireRole(types.RoleDoctor), s.handleUpdateNotes)
	}

	s.engine = engine
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
