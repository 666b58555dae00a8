package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placekeeper/placekeeper/internal/common"
)

// handleError maps a service error to an HTTP status and the JSON error
// envelope {error, code}. Anything not in the taxonomy is reported as a 500
// without leaking the underlying message.
func (s *Server) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "validation_error"})
	case errors.Is(err, common.ErrorEmailTaken):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "email already taken", "code": "email_taken"})
	case errors.Is(err, common.ErrorInvalidCredentials):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid credentials", "code": "invalid_credentials"})
	case errors.Is(err, common.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session token", "code": "invalid_token"})
	case errors.Is(err, common.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner", "code": "forbidden"})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "code": "not_found"})
	case errors.Is(err, common.ErrorDownloadFailed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "download_failed"})
	default:
		s.logger.Error(c.Request.Context(), "internal error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal_error"})
	}
}
