package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/agentdocs/agentdocs/pkg/config"
	"github.com/agentdocs/agentdocs/pkg/events"
	"github.com/agentdocs/agentdocs/pkg/locks"
	"github.com/agentdocs/agentdocs/pkg/log"
	"github.com/agentdocs/agentdocs/pkg/metrics"
	"github.com/agentdocs/agentdocs/pkg/ratelimit"
	"github.com/agentdocs/agentdocs/pkg/storage"
)

// Server is the HTTP surface of Agent Docs: the REST API, the SSE stream,
// service discovery endpoints, and the optional static frontend.
type Server struct {
	cfg     *config.Config
	store   storage.Store
	bus     *events.Bus
	locks   *locks.Manager
	limiter *ratelimit.Limiter
	logger  zerolog.Logger

	router *gin.Engine
	http   *http.Server
}

// NewServer wires the API against its dependencies and builds the route
// table.
func NewServer(cfg *config.Config, store storage.Store, bus *events.Bus) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:     cfg,
		store:   store,
		bus:     bus,
		locks:   locks.NewManager(store),
		limiter: ratelimit.NewLimiter(time.Hour, cfg.WorkspaceRateLimit),
		logger:  log.WithComponent("api"),
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	// Service discovery and operations endpoints.
	router.GET("/health", gin.WrapF(metrics.HealthHandler()))
	router.GET("/ready", gin.WrapF(metrics.ReadyHandler()))
	router.GET("/health/live", gin.WrapF(metrics.LivenessHandler()))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/openapi.json", s.openAPISpec)
	router.GET("/llms.txt", s.llmsTxt)

	api := router.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/openapi.json", s.openAPISpec)
	api.GET("/llms.txt", s.llmsTxt)

	// Workspace creation is the only unauthenticated mutation; it is
	// rate-limited per client IP instead.
	api.POST("/workspaces", s.rateLimitWorkspaceCreation(), s.createWorkspace)
	api.GET("/workspaces", s.listPublicWorkspaces)

	ws := api.Group("/workspaces/:workspace_id", s.resolveWorkspace())
	ws.GET("", s.getWorkspace)
	ws.PATCH("", s.requireManageKey(), s.updateWorkspace)

	// Anyone who knows the workspace ID can read; the manage key gates
	// mutations and draft visibility. Comment creation is deliberately open
	// so reviewing agents can leave feedback without holding the key.
	ws.GET("/docs", s.listDocuments)
	ws.POST("/docs", s.requireManageKey(), s.createDocument)

	doc := ws.Group("/docs/:document_id")
	doc.GET("", s.getDocument)
	doc.PATCH("", s.requireManageKey(), s.updateDocument)
	doc.DELETE("", s.requireManageKey(), s.deleteDocument)

	doc.GET("/versions", s.listVersions)
	doc.GET("/versions/:number", s.getVersion)
	doc.POST("/versions/:number/restore", s.requireManageKey(), s.restoreVersion)
	doc.GET("/diff", s.diffVersions)

	doc.POST("/lock", s.requireManageKey(), s.acquireLock)
	doc.POST("/lock/renew", s.requireManageKey(), s.renewLock)
	doc.DELETE("/lock", s.requireManageKey(), s.releaseLock)

	doc.GET("/comments", s.listComments)
	doc.POST("/comments", s.createComment)
	doc.PATCH("/comments/:comment_id", s.requireManageKey(), s.updateComment)
	doc.DELETE("/comments/:comment_id", s.requireManageKey(), s.deleteComment)

	ws.GET("/search", s.searchDocuments)
	ws.GET("/events/stream", s.streamEvents)

	s.registerStatic(router)

	return router
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving on the configured address and blocks until the
// listener fails or Shutdown is called. The server deliberately sets no
// write timeout: the SSE stream holds response writers open indefinitely.
func (s *Server) Start() error {
	s.limiter.Start()

	s.http = &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info().Str("addr", s.cfg.ListenAddr()).Msg("API server listening")
	metrics.RegisterComponent("api", true, "")

	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.bus.Close()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// publish emits a workspace event and counts it.
func (s *Server) publish(workspaceID string, eventType events.EventType, data map[string]any) {
	s.bus.Publish(workspaceID, &events.Event{Type: eventType, Data: data})
	metrics.EventsPublished.WithLabelValues(string(eventType)).Inc()
}
