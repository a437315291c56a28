// Package server exposes the topic lifecycle over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/learnify/learnify/internal/identity"
	"github.com/learnify/learnify/internal/lifecycle"
	"github.com/learnify/learnify/internal/logging"
	"github.com/learnify/learnify/internal/store"
)

// Lifecycle is the set of operations the HTTP API serves.
type Lifecycle interface {
	CreateSubject(ctx context.Context, userID, title, description string, isPublic bool) (*store.Subject, error)
	ListSubjects(ctx context.Context, userID string) ([]store.Subject, error)
	ListPublicSubjects(ctx context.Context, limit int) ([]store.Subject, error)
	GetSubjectGraph(ctx context.Context, userID, subjectID string) (*lifecycle.SubjectGraph, error)
	SetSubjectVisibility(ctx context.Context, userID, subjectID string, public bool) error
	DeleteSubject(ctx context.Context, userID, subjectID string) error
	GenerateSubjectGraph(ctx context.Context, userID string, req lifecycle.GraphRequest) (*lifecycle.SubjectGraph, error)
	UnlockReachableTopics(ctx context.Context, userID, subjectID string) ([]string, error)

	AddTopic(ctx context.Context, userID, subjectID, title, description string) (*store.Topic, error)
	GenerateTopicContent(ctx context.Context, userID, topicID string) (*lifecycle.TopicContent, error)
	GetTopicContent(ctx context.Context, userID, topicID string) (*lifecycle.TopicContent, error)
	CompleteTopic(ctx context.Context, userID, topicID string) ([]string, error)
	MoveTopic(ctx context.Context, userID, topicID string, x, y float64) error
	LinkTopics(ctx context.Context, userID, parentID, childID string) error
	UnlinkTopics(ctx context.Context, userID, parentID, childID string) ([]string, error)

	GetProfile(ctx context.Context, userID string) (*store.Profile, error)
	UpdateProfile(ctx context.Context, userID string, u lifecycle.ProfileUpdate) (*store.Profile, error)
	SetAPIKey(ctx context.Context, userID, apiKey string) error
	ClearAPIKey(ctx context.Context, userID string) error
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds HTTP server settings.
type Config struct {
	Addr        string
	CORSOrigins []string
	Production  bool
}

// Server wires the lifecycle manager to gin routes.
type Server struct {
	cfg      Config
	svc      Lifecycle
	db       Pinger
	verifier *identity.Verifier
	logger   *logging.Logger
	engine   *gin.Engine
	http     *http.Server
}

// New creates a Server and registers its routes.
func New(cfg Config, svc Lifecycle, db Pinger, verifier *identity.Verifier, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		svc:      svc,
		db:       db,
		verifier: verifier,
		logger:   logger.With("component", "http"),
	}
	s.engine = s.routes()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", s.healthz)

	api := r.Group("/api/v1")
	{
		// Public
		public := api.Group("/public")
		public.Use(s.optionalAuth())
		public.GET("/subjects", s.listPublicSubjects)
		public.GET("/subjects/:id", s.getSubjectGraph)
	}

	protected := api.Group("/")
	protected.Use(s.requireAuth())
	{
		// Subjects
		protected.GET("/subjects", s.listSubjects)
		protected.POST("/subjects", s.createSubject)
		protected.POST("/subjects/generate", s.generateSubject)
		protected.GET("/subjects/:id", s.getSubjectGraph)
		protected.PATCH("/subjects/:id", s.setSubjectVisibility)
		protected.DELETE("/subjects/:id", s.deleteSubject)
		protected.POST("/subjects/:id/unlock", s.unlockSubject)
		protected.POST("/subjects/:id/topics", s.addTopic)

		// Topics
		protected.POST("/topics/:id/generate", s.generateTopic)
		protected.GET("/topics/:id/content", s.getTopicContent)
		protected.POST("/topics/:id/complete", s.completeTopic)
		protected.PATCH("/topics/:id/position", s.moveTopic)

		// Edges
		protected.POST("/edges", s.linkTopics)
		protected.DELETE("/edges", s.unlinkTopics)

		// Profile
		protected.GET("/profile", s.getProfile)
		protected.PUT("/profile", s.updateProfile)
		protected.PUT("/profile/api-key", s.setAPIKey)
		protected.DELETE("/profile/api-key", s.clearAPIKey)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", "addr", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("Shutting down HTTP server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
