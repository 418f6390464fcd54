package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"journal-editorial-api/config"
	"journal-editorial-api/models"
	"journal-editorial-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func submissionIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return 0, false
	}
	return id, true
}

// CreateSubmission opens a new draft for the authenticated author.
func CreateSubmission(c *gin.Context) {
	var req struct {
		Title     string `json:"title" binding:"required"`
		Abstract  string `json:"abstract"`
		JournalID int    `json:"journal_id"`
		CoAuthors []int  `json:"co_authors"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewSubmissionService(config.DB)
	sub, err := svc.Create(currentActor(c), services.CreateSubmissionInput{
		Title:     req.Title,
		Abstract:  req.Abstract,
		JournalID: req.JournalID,
		CoAuthors: req.CoAuthors,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "submission": sub})
}

// GetSubmissions lists submissions visible to the actor.
func GetSubmissions(c *gin.Context) {
	svc := services.NewSubmissionService(config.DB)
	subs, err := svc.List(currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submissions": subs, "total": len(subs)})
}

// GetSubmission returns one submission with its children and derived status.
func GetSubmission(c *gin.Context) {
	id, ok := submissionIDParam(c)
	if !ok {
		return
	}
	svc := services.NewSubmissionService(config.DB)
	sub, err := svc.Get(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submission": sub})
}

// UpdateSubmission edits a draft.
func UpdateSubmission(c *gin.Context) {
	id, ok := submissionIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Title    *string `json:"title"`
		Abstract *string `json:"abstract"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewSubmissionService(config.DB)
	sub, err := svc.Update(currentActor(c), id, services.UpdateSubmissionInput{
		Title:    req.Title,
		Abstract: req.Abstract,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submission": sub})
}

// SubmitSubmission sends a complete draft out for review.
func SubmitSubmission(c *gin.Context) {
	id, ok := submissionIDParam(c)
	if !ok {
		return
	}
	svc := services.NewSubmissionService(config.DB)
	sub, err := svc.Submit(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Submission sent for review", "submission": sub})
}

// ResubmitSubmission records a revised manuscript.
func ResubmitSubmission(c *gin.Context) {
	id, ok := submissionIDParam(c)
	if !ok {
		return
	}
	svc := services.NewSubmissionService(config.DB)
	sub, err := svc.Resubmit(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	message := "Revision submitted"
	if sub.RevisedLate {
		message = "Revision submitted after the deadline and flagged for the editor"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "submission": sub})
}

// WithdrawSubmission is author-initiated and terminal.
func WithdrawSubmission(c *gin.Context) {
	id, ok := submissionIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	svc := services.NewSubmissionService(config.DB)
	sub, err := svc.Withdraw(currentActor(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Submission withdrawn", "submission": sub})
}

// GetSubmissionHistory returns the status-history audit trail.
func GetSubmissionHistory(c *gin.Context) {
	id, ok := submissionIDParam(c)
	if !ok {
		return
	}
	svc := services.NewSubmissionService(config.DB)
	rows, err := svc.History(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": rows})
}

// UploadSubmissionDocument streams a document to the blob store and records
// its metadata against the submission.
func UploadSubmissionDocument(c *gin.Context) {
	id, ok := submissionIDParam(c)
	if !ok {
		return
	}
	actor := currentActor(c)

	m, err := services.ResolveMembership(config.DB, actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := services.RequireAllowed(actor, services.ActionDocumentUpload, m); err != nil {
		respondError(c, err)
		return
	}

	documentTypeID, err := strconv.Atoi(c.PostForm("document_type_id"))
	if err != nil || documentTypeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document type"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read uploaded file"})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("submissions/%d/%s%s", id, uuid.NewString(), filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")
	if err := config.Storage.Store(c.Request.Context(), objectKey, file, fileHeader.Size, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	doc := models.Document{
		SubmissionID:   id,
		DocumentTypeID: documentTypeID,
		ObjectKey:      objectKey,
		OriginalName:   fileHeader.Filename,
		FileSize:       fileHeader.Size,
		MimeType:       contentType,
		UploadedBy:     actor.ID,
		UploadedAt:     time.Now(),
	}
	if err := config.DB.Create(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save document"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "document": doc})
}

// DownloadSubmissionDocument hands out a presigned URL for a document.
func DownloadSubmissionDocument(c *gin.Context) {
	documentID, err := strconv.Atoi(c.Param("document_id"))
	if err != nil || documentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}

	var doc models.Document
	if err := config.DB.Where("document_id = ? AND deleted_at IS NULL", documentID).First(&doc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	// Visibility follows the submission.
	svc := services.NewSubmissionService(config.DB)
	if _, err := svc.Get(currentActor(c), doc.SubmissionID); err != nil {
		respondError(c, err)
		return
	}

	url, err := config.Storage.PresignURL(c.Request.Context(), doc.ObjectKey, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign download URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url, "expires_in": 900})
}
