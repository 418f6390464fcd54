package controllers

import (
	"net/http"
	"time"

	"journal-editorial-api/config"
	"journal-editorial-api/services"

	"github.com/gin-gonic/gin"
)

// RecordDecision appends the editorial decision for the current round.
func RecordDecision(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}
	var req struct {
		DecisionType      string     `json:"decision_type" binding:"required"`
		DecisionLetter    string     `json:"decision_letter" binding:"required"`
		ConfidentialNotes string     `json:"confidential_notes"`
		RevisionDeadline  *time.Time `json:"revision_deadline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewDecisionService(config.DB)
	decision, err := svc.Record(currentActor(c), submissionID, services.RecordDecisionInput{
		DecisionType:      req.DecisionType,
		DecisionLetter:    req.DecisionLetter,
		ConfidentialNotes: req.ConfidentialNotes,
		RevisionDeadline:  req.RevisionDeadline,
		IPAddress:         c.ClientIP(),
		UserAgent:         c.GetHeader("User-Agent"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "decision": decision})
}

// GetDecisions lists a submission's decisions, oldest first. Confidential
// notes are only included for editors.
func GetDecisions(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}
	svc := services.NewDecisionService(config.DB)
	rows, err := svc.List(currentActor(c), submissionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "decisions": rows, "total": len(rows)})
}
