package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"journal-editorial-api/config"
	"journal-editorial-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func assignmentIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return 0, false
	}
	return id, true
}

func fileIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("file_id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file ID"})
		return 0, false
	}
	return id, true
}

// storeUpload streams a multipart file into the blob store under the given
// key prefix and returns the upload metadata.
func storeUpload(c *gin.Context, keyPrefix string) (objectKey, name string, size int64, ok bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return "", "", 0, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read uploaded file"})
		return "", "", 0, false
	}
	defer file.Close()

	objectKey = fmt.Sprintf("%s/%s%s", keyPrefix, uuid.NewString(), filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")
	if err := config.Storage.Store(c.Request.Context(), objectKey, file, fileHeader.Size, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return "", "", 0, false
	}
	return objectKey, fileHeader.Filename, fileHeader.Size, true
}

// AssignCopyeditor creates (or supersedes) the copyediting assignment.
func AssignCopyeditor(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}
	var req struct {
		CopyeditorID int        `json:"copyeditor_id" binding:"required"`
		DueDate      *time.Time `json:"due_date"`
		Instructions string     `json:"instructions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewCopyeditingService(config.DB)
	assignment, err := svc.Assign(currentActor(c), submissionID, services.AssignCopyeditorInput{
		CopyeditorID: req.CopyeditorID,
		DueDate:      req.DueDate,
		Instructions: req.Instructions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "assignment": assignment})
}

// GetCopyeditingAssignment returns the assignment with its files.
func GetCopyeditingAssignment(c *gin.Context) {
	id, ok := assignmentIDParam(c)
	if !ok {
		return
	}
	svc := services.NewCopyeditingService(config.DB)
	assignment, err := svc.Get(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "assignment": assignment})
}

// UploadCopyeditingFile registers a new draft file on the assignment.
func UploadCopyeditingFile(c *gin.Context) {
	id, ok := assignmentIDParam(c)
	if !ok {
		return
	}
	objectKey, name, size, ok := storeUpload(c, fmt.Sprintf("copyediting/%d", id))
	if !ok {
		return
	}

	svc := services.NewCopyeditingService(config.DB)
	file, err := svc.UploadFile(currentActor(c), id, services.UploadCopyeditFileInput{
		ObjectKey:    objectKey,
		OriginalName: name,
		FileSize:     size,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "file": file})
}

// ReplaceCopyeditingFile uploads a new revision of a draft file.
func ReplaceCopyeditingFile(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	objectKey, name, size, ok := storeUpload(c, fmt.Sprintf("copyediting/file-%d", id))
	if !ok {
		return
	}

	svc := services.NewCopyeditingService(config.DB)
	file, err := svc.ReplaceFile(currentActor(c), id, services.UploadCopyeditFileInput{
		ObjectKey:    objectKey,
		OriginalName: name,
		FileSize:     size,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "file": file})
}

// SubmitCopyedit marks a draft file as copyedited, awaiting the author.
func SubmitCopyedit(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	svc := services.NewCopyeditingService(config.DB)
	file, err := svc.SubmitCopyedit(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "file": file})
}

// ConfirmFinal is the author's confirmation of a copyedited file.
func ConfirmFinal(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req)

	svc := services.NewCopyeditingService(config.DB)
	file, err := svc.ConfirmFinal(currentActor(c), id, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "file": file})
}

// CompleteCopyediting finalizes the assignment once every file is
// confirmed, moving the submission into production.
func CompleteCopyediting(c *gin.Context) {
	id, ok := assignmentIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req)

	svc := services.NewCopyeditingService(config.DB)
	assignment, err := svc.CompleteAssignment(currentActor(c), id, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Copyediting completed", "assignment": assignment})
}
