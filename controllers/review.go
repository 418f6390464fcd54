package controllers

import (
	"net/http"
	"strconv"
	"time"

	"journal-editorial-api/config"
	"journal-editorial-api/services"

	"github.com/gin-gonic/gin"
)

func reviewIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return 0, false
	}
	return id, true
}

// InviteReviewer creates a review invitation on a submission.
func InviteReviewer(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}
	var req struct {
		ReviewerID int       `json:"reviewer_id" binding:"required"`
		DueDate    time.Time `json:"due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewReviewService(config.DB)
	assignment, err := svc.Invite(currentActor(c), submissionID, req.ReviewerID, req.DueDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "review": assignment})
}

// AcceptReview lets the invited reviewer take the assignment.
func AcceptReview(c *gin.Context) {
	id, ok := reviewIDParam(c)
	if !ok {
		return
	}
	svc := services.NewReviewService(config.DB)
	assignment, err := svc.Accept(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "review": assignment})
}

// DeclineReview records the reviewer's refusal with an optional reason.
func DeclineReview(c *gin.Context) {
	id, ok := reviewIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	svc := services.NewReviewService(config.DB)
	assignment, err := svc.Decline(currentActor(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "review": assignment})
}

// CompleteReview records the review payload and closes the assignment.
func CompleteReview(c *gin.Context) {
	id, ok := reviewIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Recommendation    string `json:"recommendation" binding:"required"`
		ScoreOverall      int    `json:"score_overall" binding:"required"`
		ScoreOriginality  int    `json:"score_originality" binding:"required"`
		CommentsForAuthor string `json:"comments_for_author"`
		CommentsForEditor string `json:"comments_for_editor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewReviewService(config.DB)
	assignment, err := svc.Complete(currentActor(c), id, services.ReviewPayload{
		Recommendation:    req.Recommendation,
		ScoreOverall:      req.ScoreOverall,
		ScoreOriginality:  req.ScoreOriginality,
		CommentsForAuthor: req.CommentsForAuthor,
		CommentsForEditor: req.CommentsForEditor,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "review": assignment})
}

// GetReviews lists assignments, optionally filtered by submission_id.
func GetReviews(c *gin.Context) {
	submissionID, _ := strconv.Atoi(c.Query("submission_id"))

	svc := services.NewReviewService(config.DB)
	rows, err := svc.List(currentActor(c), submissionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reviews": rows, "total": len(rows)})
}

// GetReviewerRecommendations returns the advisory ranked reviewer list.
func GetReviewerRecommendations(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}
	svc := services.NewReviewService(config.DB)
	ranked, err := svc.RecommendReviewers(currentActor(c), submissionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recommendations": ranked})
}
