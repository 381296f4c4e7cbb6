package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agentdocs/agentdocs/pkg/auth"
	"github.com/agentdocs/agentdocs/pkg/metrics"
	"github.com/agentdocs/agentdocs/pkg/ratelimit"
	"github.com/agentdocs/agentdocs/pkg/types"
)

const (
	workspaceContextKey = "workspace"
	authedContextKey    = "workspace_authed"
)

// requestLogger logs every request and feeds the API metrics.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		// FullPath is the registered route pattern; it is empty for
		// unmatched requests, which would blow up label cardinality if
		// recorded raw.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.APIRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.APIRequestDuration.WithLabelValues(c.Request.Method).Observe(elapsed.Seconds())

		event := s.logger.Info()
		if status >= 500 {
			event = s.logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", elapsed).
			Str("client_ip", ratelimit.ClientIP(c.Request)).
			Msg("request completed")
	}
}

// resolveWorkspace loads the workspace from the URL and records whether the
// request presented its manage key. Reads stay open to anyone who knows the
// workspace ID; mutating routes sit behind requireManageKey. The authed flag
// also controls draft visibility on listings.
func (s *Server) resolveWorkspace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := s.store.GetWorkspace(c.Param("workspace_id"))
		if err != nil {
			abortNotFound(c, "workspace not found")
			return
		}

		c.Set(workspaceContextKey, ws)
		key, err := auth.ExtractKey(c.Request)
		c.Set(authedContextKey, err == nil && auth.VerifyKey(key, ws.ManageKeyHash))
		c.Next()
	}
}

// requireManageKey guards mutating routes. A missing key and a wrong key get
// the same 401 so callers cannot confirm key guesses.
func (s *Server) requireManageKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authed(c) {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

// workspace returns the workspace resolved by resolveWorkspace.
func workspace(c *gin.Context) *types.Workspace {
	return c.MustGet(workspaceContextKey).(*types.Workspace)
}

// authed reports whether the request carried the workspace's manage key.
func authed(c *gin.Context) bool {
	return c.GetBool(authedContextKey)
}

// rateLimitWorkspaceCreation enforces the per-IP creation budget.
func (s *Server) rateLimitWorkspaceCreation() gin.HandlerFunc {
	return func(c *gin.Context) {
		res := s.limiter.Allow(ratelimit.ClientIP(c.Request))

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			metrics.RateLimited.Inc()
			retryAfter := int(res.ResetAfter.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abortError(c, http.StatusTooManyRequests, "rate_limited",
				fmt.Sprintf("workspace creation limit reached, retry in %ds", retryAfter))
			return
		}
		c.Next()
	}
}
