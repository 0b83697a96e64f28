package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hupe1980/intentflow/core"
	"github.com/hupe1980/intentflow/evaluation"
	"github.com/hupe1980/intentflow/logging"
	"github.com/hupe1980/intentflow/orchestrator"
)

// Options configure a Server.
type Options struct {
	// Addr is the listen address (default ":8080").
	Addr string
	// Store, when set, lets /chat seed caller-supplied conversation history
	// before the query runs.
	Store core.ConversationStore
	// Runner enables the POST /evaluate endpoint; nil leaves it unregistered.
	Runner *evaluation.Runner
	// Voice, when set, is mounted at GET /voice for the realtime relay.
	Voice http.Handler

	Logger logging.Logger
}

// Server is the HTTP boundary over the orchestrator.
type Server struct {
	engine *gin.Engine
	orch   *orchestrator.Orchestrator
	store  core.ConversationStore
	runner *evaluation.Runner
	addr   string
	logger logging.Logger
}

// New constructs a Server and registers its routes.
func New(orch *orchestrator.Orchestrator, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:   ":8080",
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine: gin.New(),
		orch:   orch,
		store:  opts.Store,
		runner: opts.Runner,
		addr:   opts.Addr,
		logger: opts.Logger,
	}
	s.engine.Use(gin.Recovery())

	s.engine.GET("/health", s.handleHealth)
	s.engine.POST("/chat", s.handleChat)
	if s.runner != nil {
		s.engine.POST("/evaluate", s.handleEvaluate)
	}
	if opts.Voice != nil {
		s.engine.GET("/voice", gin.WrapH(opts.Voice))
	}
	return s
}

// Handler returns the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// chatRequest is the /chat payload. Only the message is required; every other
// field has a documented absent-value behavior.
type chatRequest struct {
	UserID              string         `json:"user_id"`
	Message             string         `json:"message" binding:"required"`
	CustomerContext     map[string]any `json:"customer_context"`
	ConversationHistory []core.Message `json:"conversation_history"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.seedHistory(c.Request.Context(), req)

	resp, err := s.orch.ProcessQuery(c.Request.Context(), req.UserID, req.Message, req.CustomerContext)
	if err != nil {
		s.logger.Error("query processing failed", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// seedHistory imports caller-supplied prior turns so a stateless client can
// still get context-aware answers. Failures are advisory only.
func (s *Server) seedHistory(ctx context.Context, req chatRequest) {
	if s.store == nil || req.UserID == "" || len(req.ConversationHistory) == 0 {
		return
	}
	for _, msg := range req.ConversationHistory {
		if err := s.store.Append(ctx, req.UserID, msg); err != nil {
			s.logger.Warn("failed to seed conversation history", "user_id", req.UserID, "error", err)
			return
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	agents := make([]string, 0, 3)
	for _, sp := range s.orch.Specialists() {
		agents = append(agents, sp.Name())
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"agents": agents,
	})
}

func (s *Server) handleEvaluate(c *gin.Context) {
	report, err := s.runner.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
