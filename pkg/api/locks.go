package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agentdocs/agentdocs/pkg/events"
)

// anonymousEditor names leases taken without an editor identity.
const anonymousEditor = "anonymous"

// lockRequest accepts "editor" with "editor_name" as an alias; an absent
// editor falls back to anonymous.
type lockRequest struct {
	Editor     string `json:"editor"`
	EditorName string `json:"editor_name"`
	TTLSeconds int    `json:"ttl_seconds"`
}

func (r lockRequest) editor() string {
	switch {
	case r.Editor != "":
		return r.Editor
	case r.EditorName != "":
		return r.EditorName
	}
	return anonymousEditor
}

func bindLockRequest(c *gin.Context) (lockRequest, bool) {
	var req lockRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBadRequest(c, "invalid request body: "+err.Error())
			return req, false
		}
	}
	return req, true
}

func (s *Server) acquireLock(c *gin.Context) {
	doc, ok := s.workspaceDocument(c)
	if !ok {
		return
	}

	req, ok := bindLockRequest(c)
	if !ok {
		return
	}
	editor := req.editor()

	locked, err := s.locks.Acquire(doc.ID, editor, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	s.publish(doc.WorkspaceID, events.EventLockAcquired, map[string]any{
		"document_id": doc.ID,
		"editor_name": editor,
		"expires_at":  locked.LockExpiresAt,
	})

	c.JSON(http.StatusOK, locked)
}

func (s *Server) renewLock(c *gin.Context) {
	doc, ok := s.workspaceDocument(c)
	if !ok {
		return
	}

	req, ok := bindLockRequest(c)
	if !ok {
		return
	}
	editor := req.editor()

	renewed, err := s.locks.Renew(doc.ID, editor, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	s.publish(doc.WorkspaceID, events.EventLockRenewed, map[string]any{
		"document_id": doc.ID,
		"editor_name": editor,
		"expires_at":  renewed.LockExpiresAt,
	})

	c.JSON(http.StatusOK, renewed)
}

func (s *Server) releaseLock(c *gin.Context) {
	doc, ok := s.workspaceDocument(c)
	if !ok {
		return
	}

	// DELETE may carry the editor as a query parameter; without one the
	// release is attributed to anonymous, which a live foreign lease
	// rejects with 409.
	editor := c.Query("editor")
	if editor == "" {
		editor = c.Query("editor_name")
	}
	if editor == "" {
		editor = anonymousEditor
	}

	if _, err := s.locks.Release(doc.ID, editor); err != nil {
		abortStoreError(c, err)
		return
	}

	s.publish(doc.WorkspaceID, events.EventLockReleased, map[string]any{
		"document_id": doc.ID,
		"editor_name": editor,
	})

	c.Status(http.StatusNoContent)
}
