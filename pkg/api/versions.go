package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agentdocs/agentdocs/pkg/diffutil"
	"github.com/agentdocs/agentdocs/pkg/events"
	"github.com/agentdocs/agentdocs/pkg/types"
)

const defaultVersionPageSize = 20

func (s *Server) listVersions(c *gin.Context) {
	doc, ok := s.workspaceDocument(c)
	if !ok {
		return
	}

	limit, err := positiveQueryInt(c, "limit", defaultVersionPageSize)
	if err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	offset, err := positiveQueryInt(c, "offset", 0)
	if err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	versions, err := s.store.ListVersions(doc.ID, limit, offset)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	if versions == nil {
		versions = []*types.DocumentVersion{}
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions, "count": len(versions)})
}

func (s *Server) getVersion(c *gin.Context) {
	doc, ok := s.workspaceDocument(c)
	if !ok {
		return
	}

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		abortBadRequest(c, "version number must be a positive integer")
		return
	}

	version, err := s.store.GetVersion(doc.ID, number)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, version)
}

type restoreVersionRequest struct {
	AuthorName string `json:"author_name"`
}

func (s *Server) restoreVersion(c *gin.Context) {
	doc, ok := s.workspaceDocument(c)
	if !ok {
		return
	}

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		abortBadRequest(c, "version number must be a positive integer")
		return
	}

	var req restoreVersionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	restored, err := s.store.RestoreVersion(doc.ID, number, req.AuthorName)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	s.publish(doc.WorkspaceID, events.EventDocumentUpdated, map[string]any{
		"document_id": restored.ID,
		"slug":        restored.Slug,
		"restored":    number,
	})

	c.JSON(http.StatusOK, restored)
}

// diffVersions produces a unified diff between two stored versions, given as
// ?from=N&to=M.
func (s *Server) diffVersions(c *gin.Context) {
	doc, ok := s.workspaceDocument(c)
	if !ok {
		return
	}

	from, err := strconv.Atoi(c.Query("from"))
	if err != nil || from < 1 {
		abortBadRequest(c, "from must be a positive version number")
		return
	}
	to, err := strconv.Atoi(c.Query("to"))
	if err != nil || to < 1 {
		abortBadRequest(c, "to must be a positive version number")
		return
	}

	fromVer, err := s.store.GetVersion(doc.ID, from)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	toVer, err := s.store.GetVersion(doc.ID, to)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	diff, stats, err := diffutil.Unified(
		fromVer.Content, toVer.Content,
		fmt.Sprintf("version %d", from), fmt.Sprintf("version %d", to),
	)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document_id":  doc.ID,
		"from_version": from,
		"to_version":   to,
		"diff":         diff,
		"insertions":   stats.Insertions,
		"removals":     stats.Removals,
	})
}

func positiveQueryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}
