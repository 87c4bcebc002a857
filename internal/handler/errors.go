package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jocilejr/whatsbot/internal/middleware"
	"github.com/jocilejr/whatsbot/internal/store"
)

// respondError maps store errors to HTTP responses. notFound is the message
// used for ErrNotFound.
func respondError(c *gin.Context, err error, notFound string) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func invalidRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "detail": err.Error()})
}

// authOwner returns the authenticated owner. Routes under /users/:userId have
// already checked it matches the path.
func authOwner(c *gin.Context) (string, bool) {
	id, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
	}
	return id, ok
}
