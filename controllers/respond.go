package controllers

import (
	"log"
	"net/http"

	"journal-editorial-api/services"

	"github.com/gin-gonic/gin"
)

// currentActor pulls the authenticated actor out of the gin context set by
// the auth middleware.
func currentActor(c *gin.Context) services.Actor {
	userID, _ := c.Get("userID")
	role, _ := c.Get("role")
	actor := services.Actor{}
	if id, ok := userID.(int); ok {
		actor.ID = id
	}
	if r, ok := role.(string); ok {
		actor.Role = r
	}
	return actor
}

// respondError maps the workflow error taxonomy onto HTTP statuses. The
// message goes to the client unchanged so the UI can say which
// precondition failed; unknown errors become an opaque 500.
func respondError(c *gin.Context, err error) {
	kind, ok := services.KindOf(err)
	if !ok {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindInvalidState:
		status = http.StatusConflict
	case services.KindPrecondition:
		status = http.StatusPreconditionFailed
	case services.KindConflict:
		status = http.StatusConflict
	case services.KindPermission:
		status = http.StatusForbidden
	case services.KindNotFound:
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
