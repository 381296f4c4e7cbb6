package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentdocs/agentdocs/pkg/events"
	"github.com/agentdocs/agentdocs/pkg/metrics"
	"github.com/agentdocs/agentdocs/pkg/storage"
	"github.com/agentdocs/agentdocs/pkg/types"
)

type createWorkspaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type createWorkspaceResponse struct {
	Workspace *types.Workspace `json:"workspace"`
	// ManageKey is returned exactly once, here. It cannot be recovered
	// later; only its hash is stored.
	ManageKey string `json:"manage_key"`
	// Convenience links: the frontend view, the same view with the key
	// baked in, and the API root for this workspace.
	ViewURL   string `json:"view_url"`
	ManageURL string `json:"manage_url"`
	APIBase   string `json:"api_base"`
}

func (s *Server) createWorkspace(c *gin.Context) {
	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ws, manageKey, err := s.store.CreateWorkspace(req.Name, req.Description, req.IsPublic)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	metrics.WorkspacesCreated.Inc()
	s.publish(ws.ID, events.EventWorkspaceCreated, map[string]any{
		"workspace_id": ws.ID,
		"name":         ws.Name,
	})
	s.logger.Info().Str("workspace_id", ws.ID).Str("name", ws.Name).Msg("workspace created")

	viewURL := "/workspace/" + ws.ID
	c.JSON(http.StatusCreated, createWorkspaceResponse{
		Workspace: ws,
		ManageKey: manageKey,
		ViewURL:   viewURL,
		ManageURL: viewURL + "?key=" + manageKey,
		APIBase:   "/api/v1/workspaces/" + ws.ID,
	})
}

func (s *Server) listPublicWorkspaces(c *gin.Context) {
	workspaces, err := s.store.ListPublicWorkspaces()
	if err != nil {
		abortStoreError(c, err)
		return
	}
	if workspaces == nil {
		workspaces = []*types.Workspace{}
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": workspaces})
}

func (s *Server) getWorkspace(c *gin.Context) {
	c.JSON(http.StatusOK, workspace(c))
}

type updateWorkspaceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

func (s *Server) updateWorkspace(c *gin.Context) {
	var req updateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ws, err := s.store.UpdateWorkspace(workspace(c).ID, storage.WorkspacePatch{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}
