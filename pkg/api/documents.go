package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentdocs/agentdocs/pkg/events"
	"github.com/agentdocs/agentdocs/pkg/metrics"
	"github.com/agentdocs/agentdocs/pkg/storage"
	"github.com/agentdocs/agentdocs/pkg/types"
)

type createDocumentRequest struct {
	Title      string               `json:"title" binding:"required"`
	Slug       string               `json:"slug"`
	Content    string               `json:"content"`
	Summary    string               `json:"summary"`
	Tags       []string             `json:"tags"`
	Status     types.DocumentStatus `json:"status"`
	AuthorName string               `json:"author_name"`
}

func (s *Server) createDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ws := workspace(c)
	doc, err := s.store.CreateDocument(storage.CreateDocumentParams{
		WorkspaceID: ws.ID,
		Title:       req.Title,
		Slug:        req.Slug,
		Content:     req.Content,
		Summary:     req.Summary,
		Tags:        req.Tags,
		Status:      req.Status,
		AuthorName:  req.AuthorName,
	})
	if err != nil {
		abortStoreError(c, err)
		return
	}

	metrics.DocumentsCreated.Inc()
	s.publish(ws.ID, events.EventDocumentCreated, map[string]any{
		"document_id": doc.ID,
		"slug":        doc.Slug,
		"title":       doc.Title,
	})

	c.JSON(http.StatusCreated, doc)
}

// workspaceDocument loads the document from the URL and checks that it
// belongs to the workspace from the URL; a mismatch reads as not found so a
// key for one workspace cannot probe another's document IDs.
func (s *Server) workspaceDocument(c *gin.Context) (*types.Document, bool) {
	doc, err := s.store.GetDocumentByID(c.Param("document_id"))
	if err != nil {
		abortStoreError(c, err)
		return nil, false
	}
	if doc.WorkspaceID != workspace(c).ID {
		abortNotFound(c, "document not found")
		return nil, false
	}
	return doc, true
}

// getDocument resolves the path segment as a slug first, since slugs are how
// documents are linked, and falls back to a document ID for API callers that
// track IDs.
func (s *Server) getDocument(c *gin.Context) {
	ws := workspace(c)
	ref := c.Param("document_id")

	doc, err := s.store.GetDocumentBySlug(ws.ID, ref)
	if errors.Is(err, storage.ErrNotFound) {
		doc, err = s.store.GetDocumentByID(ref)
		if err == nil && doc.WorkspaceID != ws.ID {
			err = storage.ErrNotFound
		}
	}
	if err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// listDocuments shows published documents to everyone; drafts appear only
// when the manage key was presented.
func (s *Server) listDocuments(c *gin.Context) {
	docs, err := s.store.ListDocuments(workspace(c).ID, authed(c))
	if err != nil {
		abortStoreError(c, err)
		return
	}
	if docs == nil {
		docs = []*types.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

type updateDocumentRequest struct {
	Title             *string               `json:"title"`
	Content           *string               `json:"content"`
	Summary           *string               `json:"summary"`
	Tags              []string              `json:"tags"`
	Status            *types.DocumentStatus `json:"status"`
	AuthorName        string                `json:"author_name"`
	ChangeDescription string                `json:"change_description"`
}

func (s *Server) updateDocument(c *gin.Context) {
	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	doc, ok := s.workspaceDocument(c)
	if !ok {
		return
	}

	updated, err := s.store.UpdateDocument(doc.ID, storage.DocumentPatch{
		Title:             req.Title,
		Content:           req.Content,
		Summary:           req.Summary,
		Tags:              req.Tags,
		Status:            req.Status,
		AuthorName:        req.AuthorName,
		ChangeDescription: req.ChangeDescription,
	})
	if err != nil {
		abortStoreError(c, err)
		return
	}

	s.publish(doc.WorkspaceID, events.EventDocumentUpdated, map[string]any{
		"document_id": updated.ID,
		"slug":        updated.Slug,
	})

	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteDocument(c *gin.Context) {
	doc, ok := s.workspaceDocument(c)
	if !ok {
		return
	}

	if err := s.store.DeleteDocument(doc.ID); err != nil {
		abortStoreError(c, err)
		return
	}

	s.publish(doc.WorkspaceID, events.EventDocumentDeleted, map[string]any{
		"document_id": doc.ID,
		"slug":        doc.Slug,
	})

	c.Status(http.StatusNoContent)
}
