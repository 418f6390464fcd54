package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"journal-editorial-api/models"

	"gorm.io/gorm"
)

// IsOverdue derives the overdue flag against the given clock. Pure and
// never persisted, so it cannot go stale.
func IsOverdue(r *models.ReviewAssignment, now time.Time) bool {
	return r.Status == models.ReviewAccepted && r.DueDate.Before(now)
}

// DaysRemaining is due_date - now in whole days, signed: negative values
// give the overdue magnitude.
func DaysRemaining(r *models.ReviewAssignment, now time.Time) int {
	return int(r.DueDate.Sub(now).Hours() / 24)
}

// ApplyReviewDerived fills the computed fields on a loaded assignment.
func ApplyReviewDerived(r *models.ReviewAssignment, now time.Time) {
	r.IsOverdue = IsOverdue(r, now)
	r.DaysRemaining = DaysRemaining(r, now)
}

type ReviewService struct {
	db        *gorm.DB
	lifecycle *LifecycleService
	notifier  *NotificationService
	now       func() time.Time
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{
		db:        db,
		lifecycle: NewLifecycleService(db),
		notifier:  NewNotificationService(db),
		now:       time.Now,
	}
}

// Invite creates an INVITED assignment for the current review round. A
// reviewer with a live (non-declined) assignment on the submission cannot
// be invited again.
func (s *ReviewService) Invite(actor Actor, submissionID, reviewerID int, dueDate time.Time) (*models.ReviewAssignment, error) {
	if err := RequireAllowed(actor, ActionReviewInvite, Membership{}); err != nil {
		return nil, err
	}
	if !dueDate.After(s.now()) {
		return nil, NewValidationError("due date must be in the future")
	}

	var reviewer models.User
	if err := s.db.Where("user_id = ? AND role = ? AND deleted_at IS NULL", reviewerID, models.RoleReviewer).
		First(&reviewer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("reviewer", reviewerID)
		}
		return nil, fmt.Errorf("load reviewer: %w", err)
	}

	snap, err := s.lifecycle.Snapshot(submissionID)
	if err != nil {
		return nil, err
	}
	status := DeriveStatus(*snap)
	switch status {
	case models.StatusSubmitted, models.StatusUnderReview, models.StatusRevised:
	default:
		return nil, NewInvalidStateError("submission is not open for review", status, "SUBMITTED, UNDER_REVIEW or REVISED")
	}

	var existing int64
	if err := s.db.Model(&models.ReviewAssignment{}).
		Where("submission_id = ? AND reviewer_id = ? AND status <> ?", submissionID, reviewerID, models.ReviewDeclined).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check existing assignments: %w", err)
	}
	if existing > 0 {
		return nil, NewConflictError("reviewer already has an active assignment for this submission")
	}

	round := 1
	if snap.LatestDecision != nil {
		round = snap.LatestDecision.ReviewRound + 1
	}

	assignment := models.ReviewAssignment{
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		ReviewRound:  round,
		Status:       models.ReviewInvited,
		InvitedAt:    s.now(),
		DueDate:      dueDate,
		Version:      1,
		CreatedAt:    s.now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("create review assignment: %w", err)
		}
		return recordHistory(tx, submissionID, status, models.StatusUnderReview, actor.ID,
			fmt.Sprintf("reviewer invited (round %d)", round))
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify([]int{reviewerID}, "Review invitation",
		fmt.Sprintf("You have been invited to review \"%s\"", snap.Submission.Title),
		"info", &submissionID)

	ApplyReviewDerived(&assignment, s.now())
	return &assignment, nil
}

func (s *ReviewService) load(reviewID int) (*models.ReviewAssignment, error) {
	var r models.ReviewAssignment
	if err := s.db.Where("review_id = ?", reviewID).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("review assignment", reviewID)
		}
		return nil, fmt.Errorf("load review assignment: %w", err)
	}
	return &r, nil
}

// Accept moves INVITED -> ACCEPTED for the assigned reviewer.
func (s *ReviewService) Accept(actor Actor, reviewID int) (*models.ReviewAssignment, error) {
	r, err := s.load(reviewID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionReviewAccept, Membership{AssignedReviewer: r.ReviewerID == actor.ID}); err != nil {
		return nil, err
	}
	if r.Status != models.ReviewInvited {
		return nil, NewInvalidStateError("invitation can no longer be accepted", r.Status, models.ReviewInvited)
	}

	now := s.now()
	if err := conditionalUpdate(s.db, &models.ReviewAssignment{}, "review_id", r.ReviewID, r.Version, map[string]interface{}{
		"status":      models.ReviewAccepted,
		"accepted_at": &now,
	}); err != nil {
		return nil, err
	}
	return s.Get(actor, reviewID)
}

// Decline moves INVITED -> DECLINED, recording the reviewer's reason.
func (s *ReviewService) Decline(actor Actor, reviewID int, reason string) (*models.ReviewAssignment, error) {
	r, err := s.load(reviewID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionReviewDecline, Membership{AssignedReviewer: r.ReviewerID == actor.ID}); err != nil {
		return nil, err
	}
	if r.Status != models.ReviewInvited {
		return nil, NewInvalidStateError("invitation can no longer be declined", r.Status, models.ReviewInvited)
	}

	now := s.now()
	updates := map[string]interface{}{
		"status":      models.ReviewDeclined,
		"declined_at": &now,
	}
	if strings.TrimSpace(reason) != "" {
		updates["decline_note"] = strings.TrimSpace(reason)
	}
	if err := conditionalUpdate(s.db, &models.ReviewAssignment{}, "review_id", r.ReviewID, r.Version, updates); err != nil {
		return nil, err
	}

	s.notifier.NotifyEditors("Review invitation declined",
		fmt.Sprintf("Reviewer declined the invitation for submission %d", r.SubmissionID),
		r.SubmissionID)

	return s.Get(actor, reviewID)
}

type ReviewPayload struct {
	Recommendation    string
	ScoreOverall      int
	ScoreOriginality  int
	CommentsForAuthor string
	CommentsForEditor string
}

func (p ReviewPayload) validate() error {
	switch p.Recommendation {
	case models.RecommendAccept, models.RecommendReject,
		models.RecommendMinorRevision, models.RecommendMajorRevision:
	default:
		return NewValidationError("recommendation must be one of ACCEPT, REJECT, MINOR_REVISION, MAJOR_REVISION")
	}
	if p.ScoreOverall < 1 || p.ScoreOverall > 5 {
		return NewValidationError("overall score must be between 1 and 5")
	}
	if p.ScoreOriginality < 1 || p.ScoreOriginality > 5 {
		return NewValidationError("originality score must be between 1 and 5")
	}
	return nil
}

// Complete moves ACCEPTED -> COMPLETED with the review payload. The
// assignment is immutable afterwards.
func (s *ReviewService) Complete(actor Actor, reviewID int, payload ReviewPayload) (*models.ReviewAssignment, error) {
	r, err := s.load(reviewID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionReviewComplete, Membership{AssignedReviewer: r.ReviewerID == actor.ID}); err != nil {
		return nil, err
	}
	if r.Status != models.ReviewAccepted {
		return nil, NewInvalidStateError("only an accepted review can be completed", r.Status, models.ReviewAccepted)
	}
	if err := payload.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	updates := map[string]interface{}{
		"status":            models.ReviewCompleted,
		"completed_at":      &now,
		"recommendation":    payload.Recommendation,
		"score_overall":     payload.ScoreOverall,
		"score_originality": payload.ScoreOriginality,
	}
	if strings.TrimSpace(payload.CommentsForAuthor) != "" {
		updates["comments_for_author"] = payload.CommentsForAuthor
	}
	if strings.TrimSpace(payload.CommentsForEditor) != "" {
		updates["comments_for_editor"] = payload.CommentsForEditor
	}
	if err := conditionalUpdate(s.db, &models.ReviewAssignment{}, "review_id", r.ReviewID, r.Version, updates); err != nil {
		return nil, err
	}

	s.notifier.NotifyEditors("Review completed",
		fmt.Sprintf("A review was completed for submission %d", r.SubmissionID),
		r.SubmissionID)

	return s.Get(actor, reviewID)
}

// Get returns one assignment with derived fields, visible to the assigned
// reviewer and to editors.
func (s *ReviewService) Get(actor Actor, reviewID int) (*models.ReviewAssignment, error) {
	r, err := s.load(reviewID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleEditor && r.ReviewerID != actor.ID {
		return nil, NewNotFoundError("review assignment", reviewID)
	}
	ApplyReviewDerived(r, s.now())
	return r, nil
}

// List returns assignments scoped by role: reviewers get their own,
// editors everything, optionally filtered by submission.
func (s *ReviewService) List(actor Actor, submissionID int) ([]models.ReviewAssignment, error) {
	query := s.db.Preload("Reviewer")
	switch actor.Role {
	case models.RoleEditor:
		if submissionID > 0 {
			query = query.Where("submission_id = ?", submissionID)
		}
	case models.RoleReviewer:
		query = query.Where("reviewer_id = ?", actor.ID)
		if submissionID > 0 {
			query = query.Where("submission_id = ?", submissionID)
		}
	default:
		return []models.ReviewAssignment{}, nil
	}

	var rows []models.ReviewAssignment
	if err := query.Order("invited_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list review assignments: %w", err)
	}
	now := s.now()
	for i := range rows {
		ApplyReviewDerived(&rows[i], now)
	}
	return rows, nil
}

// RankedReviewer is an advisory recommendation entry. Scores never gate
// anything; editors remain free to invite whoever they want.
type RankedReviewer struct {
	Reviewer     models.User `json:"reviewer"`
	Score        float64     `json:"score"`
	InterestHits int         `json:"interest_hits"`
	OpenReviews  int         `json:"open_reviews"`
}

// RecommendReviewers ranks reviewers by interest overlap with the
// manuscript's title/abstract, penalized by open review load.
func (s *ReviewService) RecommendReviewers(actor Actor, submissionID int) ([]RankedReviewer, error) {
	if err := RequireAllowed(actor, ActionReviewInvite, Membership{}); err != nil {
		return nil, err
	}

	var sub models.Submission
	if err := s.db.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("submission", submissionID)
		}
		return nil, fmt.Errorf("load submission: %w", err)
	}

	var reviewers []models.User
	if err := s.db.Where("role = ? AND deleted_at IS NULL", models.RoleReviewer).Find(&reviewers).Error; err != nil {
		return nil, fmt.Errorf("load reviewers: %w", err)
	}

	text := strings.ToLower(sub.Title + " " + sub.Abstract)
	ranked := make([]RankedReviewer, 0, len(reviewers))
	for _, reviewer := range reviewers {
		hits := 0
		if reviewer.Interests != nil {
			for _, keyword := range strings.Split(*reviewer.Interests, ",") {
				keyword = strings.ToLower(strings.TrimSpace(keyword))
				if keyword != "" && strings.Contains(text, keyword) {
					hits++
				}
			}
		}

		var open int64
		if err := s.db.Model(&models.ReviewAssignment{}).
			Where("reviewer_id = ? AND status IN ?", reviewer.UserID,
				[]string{models.ReviewInvited, models.ReviewAccepted}).
			Count(&open).Error; err != nil {
			return nil, fmt.Errorf("count open reviews: %w", err)
		}

		ranked = append(ranked, RankedReviewer{
			Reviewer:     reviewer,
			Score:        float64(hits) - 0.5*float64(open),
			InterestHits: hits,
			OpenReviews:  int(open),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}
