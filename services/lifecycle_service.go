package services

import (
	"errors"
	"fmt"
	"time"

	"journal-editorial-api/models"

	"gorm.io/gorm"
)

// LifecycleSnapshot is everything the status projection needs. It is
// assembled in one read pass so the derived status is consistent with a
// single point in time.
type LifecycleSnapshot struct {
	Submission        *models.Submission
	LatestDecision    *models.EditorialDecision
	ReviewCount       int64
	MaxReviewRound    int
	ActiveCopyediting *models.CopyeditingAssignment
	LatestSchedule    *models.PublicationSchedule
}

// DeriveStatus projects the submission lifecycle state from child-entity
// facts. Pure function: the status column does not exist, so it can never
// drift from the entities that define it.
func DeriveStatus(snap LifecycleSnapshot) string {
	sub := snap.Submission

	if sub.WithdrawnAt != nil {
		return models.StatusWithdrawn
	}
	if snap.LatestSchedule != nil && snap.LatestSchedule.Status == models.SchedulePublished {
		return models.StatusPublished
	}
	if ce := snap.ActiveCopyediting; ce != nil {
		if ce.Status == models.AssignmentCompleted {
			return models.StatusProduction
		}
		return models.StatusCopyediting
	}
	if d := snap.LatestDecision; d != nil {
		switch d.DecisionType {
		case models.DecisionAccept:
			return models.StatusAccepted
		case models.DecisionReject:
			return models.StatusRejected
		default:
			// Revision requested. A later review round means the revised
			// manuscript went back out for review.
			if snap.MaxReviewRound > d.ReviewRound {
				return models.StatusUnderReview
			}
			if sub.RevisedAt != nil && sub.RevisedAt.After(d.CreatedAt) {
				return models.StatusRevised
			}
			return models.StatusRevisionRequired
		}
	}
	if snap.ReviewCount > 0 {
		return models.StatusUnderReview
	}
	if sub.SubmittedAt != nil {
		return models.StatusSubmitted
	}
	return models.StatusDraft
}

// IsOpenState reports whether the state permits author withdrawal
// (any pre-terminal state before copyediting begins).
func IsOpenState(status string) bool {
	switch status {
	case models.StatusDraft, models.StatusSubmitted, models.StatusUnderReview,
		models.StatusRevisionRequired, models.StatusRevised:
		return true
	}
	return false
}

// LifecycleService loads snapshots and projects the derived status.
type LifecycleService struct {
	db *gorm.DB
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db}
}

// Snapshot loads the submission and the child facts the projection reads.
func (s *LifecycleService) Snapshot(submissionID int) (*LifecycleSnapshot, error) {
	return snapshotWith(s.db, submissionID)
}

// snapshotWith runs against the given handle so gate checks inside a
// transaction see transactional state.
func snapshotWith(db *gorm.DB, submissionID int) (*LifecycleSnapshot, error) {
	var sub models.Submission
	if err := db.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("submission", submissionID)
		}
		return nil, fmt.Errorf("load submission: %w", err)
	}

	snap := &LifecycleSnapshot{Submission: &sub}

	var decision models.EditorialDecision
	err := db.Where("submission_id = ?", submissionID).
		Order("created_at DESC, decision_id DESC").
		First(&decision).Error
	if err == nil {
		snap.LatestDecision = &decision
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load latest decision: %w", err)
	}

	if err := db.Model(&models.ReviewAssignment{}).
		Where("submission_id = ?", submissionID).
		Count(&snap.ReviewCount).Error; err != nil {
		return nil, fmt.Errorf("count review assignments: %w", err)
	}
	if snap.ReviewCount > 0 {
		var maxRound *int
		if err := db.Model(&models.ReviewAssignment{}).
			Where("submission_id = ?", submissionID).
			Select("MAX(review_round)").Scan(&maxRound).Error; err != nil {
			return nil, fmt.Errorf("max review round: %w", err)
		}
		if maxRound != nil {
			snap.MaxReviewRound = *maxRound
		}
	}

	var ce models.CopyeditingAssignment
	err = db.Where("submission_id = ? AND superseded_at IS NULL", submissionID).
		Order("created_at DESC, assignment_id DESC").
		First(&ce).Error
	if err == nil {
		snap.ActiveCopyediting = &ce
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load copyediting assignment: %w", err)
	}

	var sched models.PublicationSchedule
	err = db.Where("submission_id = ?", submissionID).
		Order("created_at DESC, schedule_id DESC").
		First(&sched).Error
	if err == nil {
		snap.LatestSchedule = &sched
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load publication schedule: %w", err)
	}

	return snap, nil
}

// Status projects the current lifecycle state for one submission.
func (s *LifecycleService) Status(submissionID int) (string, error) {
	snap, err := s.Snapshot(submissionID)
	if err != nil {
		return "", err
	}
	return DeriveStatus(*snap), nil
}

// Attach fills the derived Status field on loaded submissions.
func (s *LifecycleService) Attach(subs []models.Submission) error {
	for i := range subs {
		status, err := s.Status(subs[i].SubmissionID)
		if err != nil {
			return err
		}
		subs[i].Status = status
	}
	return nil
}

// recordHistory appends a status-history row inside the caller's
// transaction. Derived old/new values are captured at command time so the
// audit trail shows the transition the command caused.
func recordHistory(tx *gorm.DB, submissionID int, oldStatus, newStatus string, actorID int, reason string) error {
	row := models.StatusHistory{
		SubmissionID: submissionID,
		NewStatus:    newStatus,
		ChangedBy:    actorID,
		CreatedAt:    time.Now(),
	}
	if oldStatus != "" {
		row.OldStatus = &oldStatus
	}
	if reason != "" {
		row.Reason = &reason
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("record status history: %w", err)
	}
	return nil
}
