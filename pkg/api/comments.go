package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentdocs/agentdocs/pkg/events"
	"github.com/agentdocs/agentdocs/pkg/storage"
	"github.com/agentdocs/agentdocs/pkg/types"
)

type createCommentRequest struct {
	ParentID   *string `json:"parent_id"`
	AuthorName string  `json:"author_name" binding:"required"`
	Content    string  `json:"content" binding:"required"`
}

func (s *Server) createComment(c *gin.Context) {
	doc, ok := s.workspaceDocument(c)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	comment, err := s.store.CreateComment(doc.ID, req.ParentID, req.AuthorName, req.Content)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	s.publish(doc.WorkspaceID, events.EventCommentCreated, map[string]any{
		"document_id": doc.ID,
		"comment_id":  comment.ID,
	})

	c.JSON(http.StatusCreated, comment)
}

func (s *Server) listComments(c *gin.Context) {
	doc, ok := s.workspaceDocument(c)
	if !ok {
		return
	}

	comments, err := s.store.ListComments(doc.ID)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	if comments == nil {
		comments = []*types.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// workspaceComment loads a comment and verifies it belongs to the document
// and workspace from the URL. A mismatch reads as not found.
func (s *Server) workspaceComment(c *gin.Context) (*types.Comment, bool) {
	doc, ok := s.workspaceDocument(c)
	if !ok {
		return nil, false
	}
	comment, err := s.store.GetComment(c.Param("comment_id"))
	if err != nil {
		abortStoreError(c, err)
		return nil, false
	}
	if comment.DocumentID != doc.ID {
		abortNotFound(c, "comment not found")
		return nil, false
	}
	return comment, true
}

type updateCommentRequest struct {
	Content  *string `json:"content"`
	Resolved *bool   `json:"resolved"`
}

func (s *Server) updateComment(c *gin.Context) {
	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	existing, ok := s.workspaceComment(c)
	if !ok {
		return
	}

	comment, err := s.store.UpdateComment(existing.ID, storage.CommentPatch{
		Content:  req.Content,
		Resolved: req.Resolved,
	})
	if err != nil {
		abortStoreError(c, err)
		return
	}

	s.publish(workspace(c).ID, events.EventCommentUpdated, map[string]any{
		"document_id": comment.DocumentID,
		"comment_id":  comment.ID,
	})

	c.JSON(http.StatusOK, comment)
}

func (s *Server) deleteComment(c *gin.Context) {
	existing, ok := s.workspaceComment(c)
	if !ok {
		return
	}

	if err := s.store.DeleteComment(existing.ID); err != nil {
		abortStoreError(c, err)
		return
	}

	s.publish(workspace(c).ID, events.EventCommentDeleted, map[string]any{
		"document_id": existing.DocumentID,
		"comment_id":  existing.ID,
	})

	c.Status(http.StatusNoContent)
}
