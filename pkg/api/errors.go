package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentdocs/agentdocs/pkg/locks"
	"github.com/agentdocs/agentdocs/pkg/storage"
)

// errorBody is the uniform error envelope: {"error": {"code": ..., "message": ...}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func abortBadRequest(c *gin.Context, message string) {
	abortError(c, http.StatusBadRequest, "bad_request", message)
}

// abortUnauthorized gives the same response for a missing and a wrong key so
// the error does not reveal whether a workspace key exists.
func abortUnauthorized(c *gin.Context) {
	abortError(c, http.StatusUnauthorized, "unauthorized", "valid workspace key required")
}

func abortNotFound(c *gin.Context, message string) {
	abortError(c, http.StatusNotFound, "not_found", message)
}

// abortStoreError maps the storage failure taxonomy onto HTTP statuses. Lock
// conflicts carry the holder and expiry so a client can back off until the
// lease lapses.
func abortStoreError(c *gin.Context, err error) {
	var lockConflict *locks.ConflictError
	switch {
	case errors.As(err, &lockConflict):
		c.AbortWithStatusJSON(http.StatusConflict, errorBody{Error: errorDetail{
			Code:    "locked",
			Message: lockConflict.Error(),
			Details: map[string]any{
				"holder":     lockConflict.Holder,
				"expires_at": lockConflict.ExpiresAt,
			},
		}})
	case errors.Is(err, locks.ErrNoLease):
		abortError(c, http.StatusConflict, "no_lease", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		abortError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, storage.ErrConflict):
		abortError(c, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, storage.ErrInvalid):
		abortError(c, http.StatusBadRequest, "bad_request", err.Error())
	default:
		abortError(c, http.StatusInternalServerError, "internal", "internal server error")
	}
}
