package services

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"journal-editorial-api/models"

	"gorm.io/gorm"
)

// Late-resubmission policies. The default accepts late revisions but flags
// them for the editor.
const (
	LatePolicyAcceptFlagged = "accept_flagged"
	LatePolicyReject        = "reject"
)

// LateResubmissionPolicy reads the configured policy, defaulting to
// accept-but-flag.
func LateResubmissionPolicy() string {
	policy := strings.ToLower(strings.TrimSpace(os.Getenv("LATE_RESUBMISSION_POLICY")))
	if policy == LatePolicyReject {
		return LatePolicyReject
	}
	return LatePolicyAcceptFlagged
}

// conditionalUpdate commits a check-and-set keyed on the row version.
// RowsAffected == 0 means another actor got there first.
func conditionalUpdate(tx *gorm.DB, model interface{}, idColumn string, id, version int, updates map[string]interface{}) error {
	now := time.Now()
	updates["version"] = version + 1
	updates["updated_at"] = &now
	res := tx.Model(model).
		Where(idColumn+" = ? AND version = ?", id, version).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("conditional update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return NewConflictError("entity was modified concurrently, re-read and retry")
	}
	return nil
}

// ResolveMembership loads the actor's relationships to a submission for the
// permission gate. Review/discussion membership is per-entity and resolved
// by the owning service instead.
func ResolveMembership(db *gorm.DB, actor Actor, submissionID int) (Membership, error) {
	var m Membership

	var sub models.Submission
	if err := db.Select("submission_id, author_id").
		Where("submission_id = ? AND deleted_at IS NULL", submissionID).
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return m, NewNotFoundError("submission", submissionID)
		}
		return m, fmt.Errorf("load submission: %w", err)
	}
	m.CorrespondingAuthor = sub.AuthorID == actor.ID

	var coCount int64
	if err := db.Model(&models.SubmissionAuthor{}).
		Where("submission_id = ? AND user_id = ?", submissionID, actor.ID).
		Count(&coCount).Error; err != nil {
		return m, fmt.Errorf("load co-authors: %w", err)
	}
	m.CoAuthor = coCount > 0

	var ceCount int64
	if err := db.Model(&models.CopyeditingAssignment{}).
		Where("submission_id = ? AND copyeditor_id = ? AND superseded_at IS NULL", submissionID, actor.ID).
		Count(&ceCount).Error; err != nil {
		return m, fmt.Errorf("load copyediting assignment: %w", err)
	}
	m.AssignedCopyeditor = ceCount > 0

	var prodCount int64
	if err := db.Model(&models.ProductionAssignment{}).
		Where("submission_id = ? AND assigned_to = ?", submissionID, actor.ID).
		Count(&prodCount).Error; err != nil {
		return m, fmt.Errorf("load production assignment: %w", err)
	}
	m.ProductionAssignee = prodCount > 0

	return m, nil
}

type SubmissionService struct {
	db        *gorm.DB
	lifecycle *LifecycleService
	notifier  *NotificationService
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{
		db:        db,
		lifecycle: NewLifecycleService(db),
		notifier:  NewNotificationService(db),
	}
}

type CreateSubmissionInput struct {
	Title      string
	Abstract   string
	JournalID  int
	CoAuthors  []int
}

// Create opens a new DRAFT submission owned by the actor.
func (s *SubmissionService) Create(actor Actor, in CreateSubmissionInput) (*models.Submission, error) {
	if err := RequireAllowed(actor, ActionSubmissionCreate, Membership{}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewValidationError("title is required")
	}

	sub := models.Submission{
		Title:     strings.TrimSpace(in.Title),
		Abstract:  in.Abstract,
		AuthorID:  actor.ID,
		JournalID: in.JournalID,
		Version:   1,
		CreatedAt: time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			return fmt.Errorf("create submission: %w", err)
		}
		for i, userID := range in.CoAuthors {
			co := models.SubmissionAuthor{
				SubmissionID: sub.SubmissionID,
				UserID:       userID,
				AuthorOrder:  i + 1,
				CreatedAt:    time.Now(),
			}
			if err := tx.Create(&co).Error; err != nil {
				return fmt.Errorf("create co-author: %w", err)
			}
		}
		return recordHistory(tx, sub.SubmissionID, "", models.StatusDraft, actor.ID, "submission created")
	})
	if err != nil {
		return nil, err
	}

	sub.Status = models.StatusDraft
	return &sub, nil
}

type UpdateSubmissionInput struct {
	Title    *string
	Abstract *string
}

// Update edits title/abstract while the submission is still a DRAFT.
func (s *SubmissionService) Update(actor Actor, submissionID int, in UpdateSubmissionInput) (*models.Submission, error) {
	m, err := ResolveMembership(s.db, actor, submissionID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionSubmissionUpdate, m); err != nil {
		return nil, err
	}

	snap, err := s.lifecycle.Snapshot(submissionID)
	if err != nil {
		return nil, err
	}
	status := DeriveStatus(*snap)
	if status != models.StatusDraft {
		return nil, NewInvalidStateError("submission can only be edited while in draft", status, models.StatusDraft)
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, NewValidationError("title cannot be empty")
		}
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Abstract != nil {
		updates["abstract"] = *in.Abstract
	}
	if len(updates) == 0 {
		return snap.Submission, nil
	}

	sub := snap.Submission
	if err := conditionalUpdate(s.db, &models.Submission{}, "submission_id", sub.SubmissionID, sub.Version, updates); err != nil {
		return nil, err
	}
	return s.Get(actor, submissionID)
}

// MissingRequiredDocuments lists required document types that have no
// uploaded document yet. Empty result means the submission is complete.
func (s *SubmissionService) MissingRequiredDocuments(submissionID int) ([]models.DocumentType, error) {
	var required []models.DocumentType
	if err := s.db.Where("required = ? AND deleted_at IS NULL", true).
		Order("display_order ASC").
		Find(&required).Error; err != nil {
		return nil, fmt.Errorf("load document types: %w", err)
	}

	var docs []models.Document
	if err := s.db.Where("submission_id = ? AND deleted_at IS NULL", submissionID).
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	present := make(map[int]bool, len(docs))
	for _, d := range docs {
		present[d.DocumentTypeID] = true
	}

	missing := make([]models.DocumentType, 0)
	for _, dt := range required {
		if !present[dt.DocumentTypeID] {
			missing = append(missing, dt)
		}
	}
	return missing, nil
}

// Submit moves DRAFT -> SUBMITTED once all required documents are present.
func (s *SubmissionService) Submit(actor Actor, submissionID int) (*models.Submission, error) {
	m, err := ResolveMembership(s.db, actor, submissionID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionSubmissionSubmit, m); err != nil {
		return nil, err
	}

	snap, err := s.lifecycle.Snapshot(submissionID)
	if err != nil {
		return nil, err
	}
	status := DeriveStatus(*snap)
	if status != models.StatusDraft {
		return nil, NewInvalidStateError("submission has already been submitted", status, models.StatusDraft)
	}

	missing, err := s.MissingRequiredDocuments(submissionID)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		codes := make([]string, len(missing))
		for i, dt := range missing {
			codes[i] = dt.Code
		}
		return nil, NewPreconditionError("required documents missing: %s", strings.Join(codes, ", "))
	}

	sub := snap.Submission
	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := conditionalUpdate(tx, &models.Submission{}, "submission_id", sub.SubmissionID, sub.Version, map[string]interface{}{
			"submitted_at": &now,
		}); err != nil {
			return err
		}
		return recordHistory(tx, sub.SubmissionID, status, models.StatusSubmitted, actor.ID, "submitted for review")
	})
	if err != nil {
		return nil, err
	}

	return s.Get(actor, submissionID)
}

// Resubmit records the author's revised manuscript. Late resubmission is
// policy-controlled: flagged by default, rejected when configured so.
func (s *SubmissionService) Resubmit(actor Actor, submissionID int) (*models.Submission, error) {
	m, err := ResolveMembership(s.db, actor, submissionID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionSubmissionRevise, m); err != nil {
		return nil, err
	}

	snap, err := s.lifecycle.Snapshot(submissionID)
	if err != nil {
		return nil, err
	}
	status := DeriveStatus(*snap)
	if status != models.StatusRevisionRequired {
		return nil, NewInvalidStateError("no revision is pending for this submission", status, models.StatusRevisionRequired)
	}

	now := time.Now()
	late := false
	if d := snap.LatestDecision; d != nil && d.RevisionDeadline != nil && now.After(*d.RevisionDeadline) {
		if LateResubmissionPolicy() == LatePolicyReject {
			return nil, NewValidationError("revision deadline %s has passed", d.RevisionDeadline.Format("2006-01-02"))
		}
		late = true
	}

	sub := snap.Submission
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := conditionalUpdate(tx, &models.Submission{}, "submission_id", sub.SubmissionID, sub.Version, map[string]interface{}{
			"revised_at":   &now,
			"revised_late": late,
		}); err != nil {
			return err
		}
		reason := "revision submitted"
		if late {
			reason = "revision submitted after deadline"
		}
		return recordHistory(tx, sub.SubmissionID, status, models.StatusRevised, actor.ID, reason)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyEditors("Revision received",
		fmt.Sprintf("A revised manuscript was submitted for \"%s\"", sub.Title),
		sub.SubmissionID)

	return s.Get(actor, submissionID)
}

// Withdraw is author-initiated and terminal, legal from any open state.
func (s *SubmissionService) Withdraw(actor Actor, submissionID int, reason string) (*models.Submission, error) {
	m, err := ResolveMembership(s.db, actor, submissionID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionSubmissionWithdraw, m); err != nil {
		return nil, err
	}

	snap, err := s.lifecycle.Snapshot(submissionID)
	if err != nil {
		return nil, err
	}
	status := DeriveStatus(*snap)
	if !IsOpenState(status) {
		return nil, NewInvalidStateError("submission can no longer be withdrawn", status, "an open pre-copyediting state")
	}

	sub := snap.Submission
	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := conditionalUpdate(tx, &models.Submission{}, "submission_id", sub.SubmissionID, sub.Version, map[string]interface{}{
			"withdrawn_at": &now,
		}); err != nil {
			return err
		}
		return recordHistory(tx, sub.SubmissionID, status, models.StatusWithdrawn, actor.ID, reason)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyEditors("Submission withdrawn",
		fmt.Sprintf("\"%s\" was withdrawn by its author", sub.Title),
		sub.SubmissionID)

	return s.Get(actor, submissionID)
}

// Get loads one submission with children, role-scoped: authors see their
// own, reviewers see assigned ones, editors see everything.
func (s *SubmissionService) Get(actor Actor, submissionID int) (*models.Submission, error) {
	var sub models.Submission
	err := s.db.Preload("Author").
		Preload("CoAuthors.User").
		Preload("Documents.DocumentType").
		Where("submission_id = ? AND deleted_at IS NULL", submissionID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("submission", submissionID)
		}
		return nil, fmt.Errorf("load submission: %w", err)
	}

	visible, err := s.visibleTo(actor, &sub)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, NewNotFoundError("submission", submissionID)
	}

	status, err := s.lifecycle.Status(submissionID)
	if err != nil {
		return nil, err
	}
	sub.Status = status
	return &sub, nil
}

// List returns the submissions the actor may see, newest first.
func (s *SubmissionService) List(actor Actor) ([]models.Submission, error) {
	query := s.db.Preload("Author").Where("deleted_at IS NULL")

	switch actor.Role {
	case models.RoleEditor:
		// editors see everything
	case models.RoleAuthor:
		query = query.Where(
			"author_id = ? OR submission_id IN (?)",
			actor.ID,
			s.db.Model(&models.SubmissionAuthor{}).Select("submission_id").Where("user_id = ?", actor.ID),
		)
	case models.RoleReviewer:
		query = query.Where(
			"submission_id IN (?)",
			s.db.Model(&models.ReviewAssignment{}).Select("submission_id").Where("reviewer_id = ?", actor.ID),
		)
	case models.RoleCopyeditor:
		query = query.Where(
			"submission_id IN (?)",
			s.db.Model(&models.CopyeditingAssignment{}).Select("submission_id").Where("copyeditor_id = ?", actor.ID),
		)
	case models.RoleProduction:
		query = query.Where(
			"submission_id IN (?)",
			s.db.Model(&models.ProductionAssignment{}).Select("submission_id").Where("assigned_to = ?", actor.ID),
		)
	default:
		return []models.Submission{}, nil
	}

	var subs []models.Submission
	if err := query.Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if err := s.lifecycle.Attach(subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *SubmissionService) visibleTo(actor Actor, sub *models.Submission) (bool, error) {
	if actor.Role == models.RoleEditor {
		return true, nil
	}
	m, err := ResolveMembership(s.db, actor, sub.SubmissionID)
	if err != nil {
		return false, err
	}
	if m.CorrespondingAuthor || m.CoAuthor || m.AssignedCopyeditor || m.ProductionAssignee {
		return true, nil
	}
	if actor.Role == models.RoleReviewer {
		var count int64
		if err := s.db.Model(&models.ReviewAssignment{}).
			Where("submission_id = ? AND reviewer_id = ?", sub.SubmissionID, actor.ID).
			Count(&count).Error; err != nil {
			return false, fmt.Errorf("load review assignments: %w", err)
		}
		return count > 0, nil
	}
	return false, nil
}

// History returns the status-history audit trail, oldest first.
func (s *SubmissionService) History(actor Actor, submissionID int) ([]models.StatusHistory, error) {
	if _, err := s.Get(actor, submissionID); err != nil {
		return nil, err
	}
	var rows []models.StatusHistory
	if err := s.db.Where("submission_id = ?", submissionID).
		Order("created_at ASC, history_id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load status history: %w", err)
	}
	return rows, nil
}
