package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentdocs/agentdocs/pkg/types"
)

const maxSearchPageSize = 100

// searchDocuments performs a case-insensitive substring search over title,
// content, summary, and tags. A blank query returns an empty result rather
// than everything.
func (s *Server) searchDocuments(c *gin.Context) {
	query := c.Query("q")

	limit, err := positiveQueryInt(c, "limit", 20)
	if err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	if limit > maxSearchPageSize {
		limit = maxSearchPageSize
	}
	offset, err := positiveQueryInt(c, "offset", 0)
	if err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	results, err := s.store.SearchDocuments(workspace(c).ID, query)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	if offset >= len(results) {
		results = nil
	} else if end := offset + limit; end < len(results) {
		results = results[offset:end]
	} else {
		results = results[offset:]
	}
	if results == nil {
		results = []*types.Document{}
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}
