package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"journal-editorial-api/config"
	"journal-editorial-api/services"

	"github.com/gin-gonic/gin"
)

func galleyIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("galley_id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid galley ID"})
		return 0, false
	}
	return id, true
}

// AssignProduction adds a production assignment to a submission.
func AssignProduction(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}
	var req struct {
		AssignedTo   int        `json:"assigned_to" binding:"required"`
		Role         string     `json:"role" binding:"required"`
		DueDate      *time.Time `json:"due_date"`
		Instructions string     `json:"instructions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewProductionService(config.DB)
	assignment, err := svc.Assign(currentActor(c), submissionID, services.AssignProductionInput{
		AssignedTo:   req.AssignedTo,
		Role:         req.Role,
		DueDate:      req.DueDate,
		Instructions: req.Instructions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "assignment": assignment})
}

// GetProductionAssignment returns the assignment with its galleys.
func GetProductionAssignment(c *gin.Context) {
	id, ok := assignmentIDParam(c)
	if !ok {
		return
	}
	svc := services.NewProductionService(config.DB)
	assignment, err := svc.Get(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "assignment": assignment})
}

// UploadGalley stores a galley file and registers it on the assignment.
func UploadGalley(c *gin.Context) {
	id, ok := assignmentIDParam(c)
	if !ok {
		return
	}
	format := c.PostForm("galley_format")
	label := c.PostForm("label")

	objectKey, name, size, ok := storeUpload(c, fmt.Sprintf("galleys/%d", id))
	if !ok {
		return
	}

	svc := services.NewProductionService(config.DB)
	galley, err := svc.UploadGalley(currentActor(c), id, services.UploadGalleyInput{
		GalleyFormat: format,
		Label:        label,
		ObjectKey:    objectKey,
		OriginalName: name,
		FileSize:     size,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "galley": galley})
}

// ApproveGalley is the editor's sign-off on a galley.
func ApproveGalley(c *gin.Context) {
	id, ok := galleyIDParam(c)
	if !ok {
		return
	}
	svc := services.NewProductionService(config.DB)
	galley, err := svc.ApproveGalley(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "galley": galley})
}

// PublishGalley makes an approved galley publicly visible.
func PublishGalley(c *gin.Context) {
	id, ok := galleyIDParam(c)
	if !ok {
		return
	}
	svc := services.NewProductionService(config.DB)
	galley, err := svc.PublishGalley(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "galley": galley})
}

// CompleteProduction closes a production assignment.
func CompleteProduction(c *gin.Context) {
	id, ok := assignmentIDParam(c)
	if !ok {
		return
	}
	svc := services.NewProductionService(config.DB)
	assignment, err := svc.CompleteAssignment(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Production completed", "assignment": assignment})
}

// SchedulePublication places the article in an issue.
func SchedulePublication(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}
	var req struct {
		ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
		Volume        int       `json:"volume" binding:"required"`
		Issue         int       `json:"issue" binding:"required"`
		Year          int       `json:"year" binding:"required"`
		DOI           string    `json:"doi"`
		Pages         string    `json:"pages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewProductionService(config.DB)
	schedule, err := svc.Schedule(currentActor(c), submissionID, services.ScheduleInput{
		ScheduledDate: req.ScheduledDate,
		Volume:        req.Volume,
		Issue:         req.Issue,
		Year:          req.Year,
		DOI:           req.DOI,
		Pages:         req.Pages,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "schedule": schedule})
}

// PublishSubmission publishes a scheduled article immediately.
func PublishSubmission(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}
	svc := services.NewProductionService(config.DB)
	schedule, err := svc.PublishNow(currentActor(c), submissionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Article published", "schedule": schedule})
}

// CancelPublication cancels a scheduled publication.
func CancelPublication(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}
	svc := services.NewProductionService(config.DB)
	schedule, err := svc.Cancel(currentActor(c), submissionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Publication cancelled", "schedule": schedule})
}
