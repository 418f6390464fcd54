package controllers

import (
	"net/http"
	"strconv"

	"journal-editorial-api/config"
	"journal-editorial-api/services"

	"github.com/gin-gonic/gin"
)

func discussionIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid discussion ID"})
		return 0, false
	}
	return id, true
}

// CreateDiscussion opens a thread on a copyediting or production assignment.
func CreateDiscussion(c *gin.Context) {
	var req struct {
		ContextType  string `json:"context_type" binding:"required"`
		ContextID    int    `json:"context_id" binding:"required"`
		Subject      string `json:"subject" binding:"required"`
		Participants []int  `json:"participants"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewDiscussionService(config.DB)
	discussion, err := svc.Create(currentActor(c), services.CreateDiscussionInput{
		ContextType:  req.ContextType,
		ContextID:    req.ContextID,
		Subject:      req.Subject,
		Participants: req.Participants,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "discussion": discussion})
}

// GetDiscussion returns a thread with participants and messages.
func GetDiscussion(c *gin.Context) {
	id, ok := discussionIDParam(c)
	if !ok {
		return
	}
	svc := services.NewDiscussionService(config.DB)
	discussion, err := svc.Get(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "discussion": discussion})
}

// GetDiscussions lists threads for an assignment context.
func GetDiscussions(c *gin.Context) {
	contextType := c.Query("context_type")
	contextID, _ := strconv.Atoi(c.Query("context_id"))
	if contextID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "context_type and context_id are required"})
		return
	}

	svc := services.NewDiscussionService(config.DB)
	rows, err := svc.ListForContext(currentActor(c), contextType, contextID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "discussions": rows, "total": len(rows)})
}

// AddDiscussionMessage appends to an open thread.
func AddDiscussionMessage(c *gin.Context) {
	id, ok := discussionIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewDiscussionService(config.DB)
	message, err := svc.AddMessage(currentActor(c), id, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message})
}

// ResolveDiscussion marks a thread resolved.
func ResolveDiscussion(c *gin.Context) {
	id, ok := discussionIDParam(c)
	if !ok {
		return
	}
	svc := services.NewDiscussionService(config.DB)
	discussion, err := svc.Resolve(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "discussion": discussion})
}

// CloseDiscussion closes a thread.
func CloseDiscussion(c *gin.Context) {
	id, ok := discussionIDParam(c)
	if !ok {
		return
	}
	svc := services.NewDiscussionService(config.DB)
	discussion, err := svc.Close(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "discussion": discussion})
}

// ReopenDiscussion reopens a resolved or closed thread.
func ReopenDiscussion(c *gin.Context) {
	id, ok := discussionIDParam(c)
	if !ok {
		return
	}
	svc := services.NewDiscussionService(config.DB)
	discussion, err := svc.Reopen(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "discussion": discussion})
}
