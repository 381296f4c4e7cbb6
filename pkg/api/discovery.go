package api

import (
	_ "embed"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed llms.txt
var llmsTxtContent string

// llmsTxt serves the agent-facing plain-text API guide.
func (s *Server) llmsTxt(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(llmsTxtContent))
}

// registerStatic mounts the optional single-page frontend. Unknown routes
// outside /api fall back to index.html so client-side routing works.
func (s *Server) registerStatic(router *gin.Engine) {
	dir := s.cfg.StaticDir
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); err != nil {
		s.logger.Warn().Str("dir", dir).Err(err).Msg("static directory not usable, skipping")
		return
	}

	fileServer := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			abortNotFound(c, "route not found")
			return
		}
		path := filepath.Join(dir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.File(index)
	})
}

// openAPISpec serves a machine-readable description of the REST surface.
func (s *Server) openAPISpec(c *gin.Context) {
	c.JSON(http.StatusOK, openAPIDocument)
}

var openAPIDocument = gin.H{
	"openapi": "3.0.3",
	"info": gin.H{
		"title":       "Agent Docs API",
		"description": "Collaborative Markdown documents for autonomous agents",
		"version":     "1.0.0",
	},
	"components": gin.H{
		"securitySchemes": gin.H{
			"bearerAuth": gin.H{"type": "http", "scheme": "bearer"},
			"apiKey":     gin.H{"type": "apiKey", "in": "header", "name": "X-API-Key"},
			"queryKey":   gin.H{"type": "apiKey", "in": "query", "name": "key"},
		},
	},
	"paths": gin.H{
		"/api/v1/workspaces": gin.H{
			"post": gin.H{
				"summary":     "Create a workspace",
				"description": "Returns the manage key exactly once. Rate limited per client IP.",
			},
			"get": gin.H{"summary": "List public workspaces"},
		},
		"/api/v1/workspaces/{workspace_id}": gin.H{
			"get":   gin.H{"summary": "Get workspace metadata"},
			"patch": gin.H{"summary": "Update workspace metadata (manage key required)"},
		},
		"/api/v1/workspaces/{workspace_id}/docs": gin.H{
			"get":  gin.H{"summary": "List documents (published only; with manage key, drafts too)"},
			"post": gin.H{"summary": "Create a document (manage key required)"},
		},
		"/api/v1/workspaces/{workspace_id}/docs/{slug_or_id}": gin.H{
			"get":    gin.H{"summary": "Get a document by slug or ID"},
			"patch":  gin.H{"summary": "Update a document; content changes record a new version (manage key required)"},
			"delete": gin.H{"summary": "Delete a document with its versions and comments (manage key required)"},
		},
		"/api/v1/workspaces/{workspace_id}/docs/{doc_id}/versions": gin.H{
			"get": gin.H{"summary": "List version history, newest first"},
		},
		"/api/v1/workspaces/{workspace_id}/docs/{doc_id}/versions/{number}": gin.H{
			"get": gin.H{"summary": "Get one version snapshot"},
		},
		"/api/v1/workspaces/{workspace_id}/docs/{doc_id}/versions/{number}/restore": gin.H{
			"post": gin.H{"summary": "Re-apply an old version as a new head version (manage key required)"},
		},
		"/api/v1/workspaces/{workspace_id}/docs/{doc_id}/diff": gin.H{
			"get": gin.H{"summary": "Unified diff between two versions (?from=N&to=M)"},
		},
		"/api/v1/workspaces/{workspace_id}/docs/{doc_id}/lock": gin.H{
			"post":   gin.H{"summary": "Acquire the advisory edit lock (manage key required)"},
			"delete": gin.H{"summary": "Release the lock (?editor=...; manage key required)"},
		},
		"/api/v1/workspaces/{workspace_id}/docs/{doc_id}/lock/renew": gin.H{
			"post": gin.H{"summary": "Renew a held lock (manage key required)"},
		},
		"/api/v1/workspaces/{workspace_id}/docs/{doc_id}/comments": gin.H{
			"get":  gin.H{"summary": "List comments, oldest first"},
			"post": gin.H{"summary": "Add a comment or reply (no key needed)"},
		},
		"/api/v1/workspaces/{workspace_id}/docs/{doc_id}/comments/{comment_id}": gin.H{
			"patch":  gin.H{"summary": "Edit or resolve a comment (manage key required)"},
			"delete": gin.H{"summary": "Delete a comment and its replies (manage key required)"},
		},
		"/api/v1/workspaces/{workspace_id}/search": gin.H{
			"get": gin.H{"summary": "Search documents (?q=...&limit=20&offset=0)"},
		},
		"/api/v1/workspaces/{workspace_id}/events/stream": gin.H{
			"get": gin.H{"summary": "Server-sent events stream of workspace changes"},
		},
		"/api/v1/health": gin.H{"get": gin.H{"summary": "Liveness check"}},
		"/health":        gin.H{"get": gin.H{"summary": "Detailed health check"}},
		"/metrics":       gin.H{"get": gin.H{"summary": "Prometheus metrics"}},
		"/llms.txt":      gin.H{"get": gin.H{"summary": "Plain-text API guide for agents"}},
		"/openapi.json":  gin.H{"get": gin.H{"summary": "This document"}},
	},
}
