package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"journal-editorial-api/models"

	"gorm.io/gorm"
)

// MinDecisionLetterLength is the floor for a meaningful decision letter.
const MinDecisionLetterLength = 50

// ValidateDecision checks the decision invariants: a substantive letter,
// and a revision deadline present exactly when a revision is requested.
func ValidateDecision(decisionType, letter string, revisionDeadline *time.Time) error {
	switch decisionType {
	case models.DecisionAccept, models.DecisionReject,
		models.DecisionMinorRevision, models.DecisionMajorRevision:
	default:
		return NewValidationError("decision type must be one of ACCEPT, REJECT, MINOR_REVISION, MAJOR_REVISION")
	}
	if len(strings.TrimSpace(letter)) < MinDecisionLetterLength {
		return NewValidationError("decision letter must be at least %d characters", MinDecisionLetterLength)
	}

	needsDeadline := decisionType == models.DecisionMinorRevision || decisionType == models.DecisionMajorRevision
	if needsDeadline && revisionDeadline == nil {
		return NewValidationError("revision decisions require a revision deadline")
	}
	if !needsDeadline && revisionDeadline != nil {
		return NewValidationError("revision deadline is only valid for revision decisions")
	}
	return nil
}

type DecisionService struct {
	db        *gorm.DB
	lifecycle *LifecycleService
	notifier  *NotificationService
}

func NewDecisionService(db *gorm.DB) *DecisionService {
	return &DecisionService{
		db:        db,
		lifecycle: NewLifecycleService(db),
		notifier:  NewNotificationService(db),
	}
}

type RecordDecisionInput struct {
	DecisionType      string
	DecisionLetter    string
	ConfidentialNotes string
	RevisionDeadline  *time.Time
	IPAddress         string
	UserAgent         string
}

// Record appends the authoritative decision for the current review round.
// Decisions are immutable; a later round appends a new one, and the latest
// decision drives the derived lifecycle stage.
func (s *DecisionService) Record(actor Actor, submissionID int, in RecordDecisionInput) (*models.EditorialDecision, error) {
	if err := RequireAllowed(actor, ActionDecisionRecord, Membership{}); err != nil {
		return nil, err
	}
	if err := ValidateDecision(in.DecisionType, in.DecisionLetter, in.RevisionDeadline); err != nil {
		return nil, err
	}

	snap, err := s.lifecycle.Snapshot(submissionID)
	if err != nil {
		return nil, err
	}
	status := DeriveStatus(*snap)
	switch status {
	case models.StatusUnderReview, models.StatusRevised:
	default:
		return nil, NewInvalidStateError("submission is not awaiting an editorial decision", status, "UNDER_REVIEW or REVISED")
	}

	round := 1
	if snap.LatestDecision != nil {
		round = snap.LatestDecision.ReviewRound + 1
	}
	if snap.MaxReviewRound > round {
		round = snap.MaxReviewRound
	}

	decision := models.EditorialDecision{
		SubmissionID:     submissionID,
		EditorID:         actor.ID,
		ReviewRound:      round,
		DecisionType:     in.DecisionType,
		DecisionLetter:   strings.TrimSpace(in.DecisionLetter),
		RevisionDeadline: in.RevisionDeadline,
		CreatedAt:        time.Now(),
	}
	if notes := strings.TrimSpace(in.ConfidentialNotes); notes != "" {
		decision.ConfidentialNotes = &notes
	}

	newStatus := map[string]string{
		models.DecisionAccept:        models.StatusAccepted,
		models.DecisionReject:        models.StatusRejected,
		models.DecisionMinorRevision: models.StatusRevisionRequired,
		models.DecisionMajorRevision: models.StatusRevisionRequired,
	}[in.DecisionType]

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&decision).Error; err != nil {
			return fmt.Errorf("create decision: %w", err)
		}
		if err := recordHistory(tx, submissionID, status, newStatus, actor.ID,
			fmt.Sprintf("editorial decision: %s (round %d)", in.DecisionType, round)); err != nil {
			return err
		}

		serialized, _ := json.Marshal(map[string]interface{}{
			"decision_type": in.DecisionType,
			"review_round":  round,
		})
		values := string(serialized)
		description := fmt.Sprintf("Editorial decision recorded for submission %d", submissionID)
		entityID := decision.DecisionID
		audit := models.AuditLog{
			UserID:      actor.ID,
			Action:      "decision.record",
			EntityType:  "editorial_decision",
			EntityID:    &entityID,
			NewValues:   &values,
			Description: &description,
			IPAddress:   in.IPAddress,
			CreatedAt:   time.Now(),
		}
		if strings.TrimSpace(in.UserAgent) != "" {
			ua := in.UserAgent
			audit.UserAgent = &ua
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recipients := []int{snap.Submission.AuthorID}
	s.notifier.Notify(recipients, "Editorial decision",
		fmt.Sprintf("A decision (%s) was recorded for \"%s\"", in.DecisionType, snap.Submission.Title),
		"info", &submissionID)

	return &decision, nil
}

// List returns decisions oldest first. Confidential notes are stripped for
// anyone who is not an editor.
func (s *DecisionService) List(actor Actor, submissionID int) ([]models.EditorialDecision, error) {
	m, err := ResolveMembership(s.db, actor, submissionID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleEditor && !m.CorrespondingAuthor && !m.CoAuthor {
		return nil, NewPermissionError("only editors and the submission's authors may view decisions")
	}

	var rows []models.EditorialDecision
	if err := s.db.Preload("Editor").
		Where("submission_id = ?", submissionID).
		Order("created_at ASC, decision_id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}

	if actor.Role != models.RoleEditor {
		for i := range rows {
			rows[i].ConfidentialNotes = nil
		}
	}
	return rows, nil
}
