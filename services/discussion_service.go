package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"journal-editorial-api/models"

	"gorm.io/gorm"
)

// DiscussionService owns the OPEN/RESOLVED/CLOSED thread lifecycle shared
// by the copyediting and production workflows. Discussions are advisory:
// nothing here gates a file or assignment transition.
type DiscussionService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewDiscussionService(db *gorm.DB) *DiscussionService {
	return &DiscussionService{db: db, notifier: NewNotificationService(db)}
}

// resolveContext maps an owning context onto its submission and assignee.
func (s *DiscussionService) resolveContext(contextType string, contextID int) (submissionID, assigneeID int, err error) {
	switch contextType {
	case models.ContextCopyediting:
		var a models.CopyeditingAssignment
		if err := s.db.Where("assignment_id = ?", contextID).First(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, 0, NewNotFoundError("copyediting assignment", contextID)
			}
			return 0, 0, fmt.Errorf("load copyediting assignment: %w", err)
		}
		return a.SubmissionID, a.CopyeditorID, nil
	case models.ContextProduction:
		var a models.ProductionAssignment
		if err := s.db.Where("assignment_id = ?", contextID).First(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, 0, NewNotFoundError("production assignment", contextID)
			}
			return 0, 0, fmt.Errorf("load production assignment: %w", err)
		}
		return a.SubmissionID, a.AssignedTo, nil
	default:
		return 0, 0, NewValidationError("context type must be COPYEDITING or PRODUCTION")
	}
}

type CreateDiscussionInput struct {
	ContextType  string
	ContextID    int
	Subject      string
	Participants []int
}

// Create opens a discussion on an assignment. The creator and the
// assignment's assignee always end up in the participant set.
func (s *DiscussionService) Create(actor Actor, in CreateDiscussionInput) (*models.Discussion, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, NewValidationError("subject is required")
	}

	submissionID, assigneeID, err := s.resolveContext(in.ContextType, in.ContextID)
	if err != nil {
		return nil, err
	}

	m, err := ResolveMembership(s.db, actor, submissionID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionDiscussionCreate, m); err != nil {
		return nil, err
	}

	participants := map[int]bool{actor.ID: true, assigneeID: true}
	for _, id := range in.Participants {
		participants[id] = true
	}

	discussion := models.Discussion{
		ContextType:  in.ContextType,
		ContextID:    in.ContextID,
		SubmissionID: submissionID,
		Subject:      strings.TrimSpace(in.Subject),
		Status:       models.DiscussionOpen,
		CreatedBy:    actor.ID,
		Version:      1,
		CreatedAt:    time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&discussion).Error; err != nil {
			return fmt.Errorf("create discussion: %w", err)
		}
		for userID := range participants {
			p := models.DiscussionParticipant{
				DiscussionID: discussion.DiscussionID,
				UserID:       userID,
				CreatedAt:    time.Now(),
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("add participant: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(actor, discussion.DiscussionID)
}

func (s *DiscussionService) load(discussionID int) (*models.Discussion, error) {
	var d models.Discussion
	if err := s.db.Where("discussion_id = ?", discussionID).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("discussion", discussionID)
		}
		return nil, fmt.Errorf("load discussion: %w", err)
	}
	return &d, nil
}

func (s *DiscussionService) isParticipant(discussionID, userID int) (bool, error) {
	var count int64
	if err := s.db.Model(&models.DiscussionParticipant{}).
		Where("discussion_id = ? AND user_id = ?", discussionID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("load participants: %w", err)
	}
	return count > 0, nil
}

// AddMessage appends to an OPEN discussion. The closed-thread check lives
// here, server-side; a disabled reply form in the UI is not trusted.
func (s *DiscussionService) AddMessage(actor Actor, discussionID int, body string) (*models.DiscussionMessage, error) {
	d, err := s.load(discussionID)
	if err != nil {
		return nil, err
	}
	participant, err := s.isParticipant(discussionID, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionDiscussionMessage, Membership{DiscussionParticipant: participant}); err != nil {
		return nil, err
	}
	if d.Status != models.DiscussionOpen {
		return nil, NewInvalidStateError("discussion is not open for replies", d.Status, models.DiscussionOpen)
	}
	if strings.TrimSpace(body) == "" {
		return nil, NewValidationError("message body is required")
	}

	message := models.DiscussionMessage{
		DiscussionID: discussionID,
		AuthorID:     actor.ID,
		Body:         body,
		CreatedAt:    time.Now(),
	}
	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Guard against a concurrent resolve/close between the read above
		// and this write.
		res := tx.Model(&models.Discussion{}).
			Where("discussion_id = ? AND status = ?", discussionID, models.DiscussionOpen).
			Updates(map[string]interface{}{"updated_at": &now})
		if res.Error != nil {
			return fmt.Errorf("touch discussion: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return NewInvalidStateError("discussion is not open for replies", "not OPEN", models.DiscussionOpen)
		}
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var others []models.DiscussionParticipant
	if err := s.db.Where("discussion_id = ? AND user_id <> ?", discussionID, actor.ID).Find(&others).Error; err == nil {
		ids := make([]int, len(others))
		for i, p := range others {
			ids[i] = p.UserID
		}
		s.notifier.Notify(ids, "New discussion message",
			fmt.Sprintf("New message in %q", d.Subject),
			"info", &d.SubmissionID)
	}

	return &message, nil
}

// Resolve is editor-only: OPEN -> RESOLVED.
func (s *DiscussionService) Resolve(actor Actor, discussionID int) (*models.Discussion, error) {
	return s.transition(actor, discussionID, ActionDiscussionResolve, models.DiscussionOpen, models.DiscussionResolved)
}

// Close moves OPEN -> CLOSED, available to any participant.
func (s *DiscussionService) Close(actor Actor, discussionID int) (*models.Discussion, error) {
	return s.transition(actor, discussionID, ActionDiscussionClose, models.DiscussionOpen, models.DiscussionClosed)
}

// Reopen is editor-only and treats RESOLVED and CLOSED symmetrically.
func (s *DiscussionService) Reopen(actor Actor, discussionID int) (*models.Discussion, error) {
	d, err := s.load(discussionID)
	if err != nil {
		return nil, err
	}
	participant, err := s.isParticipant(discussionID, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionDiscussionReopen, Membership{DiscussionParticipant: participant}); err != nil {
		return nil, err
	}
	if d.Status != models.DiscussionResolved && d.Status != models.DiscussionClosed {
		return nil, NewInvalidStateError("only resolved or closed discussions can be reopened", d.Status, "RESOLVED or CLOSED")
	}

	if err := conditionalUpdate(s.db, &models.Discussion{}, "discussion_id", d.DiscussionID, d.Version, map[string]interface{}{
		"status": models.DiscussionOpen,
	}); err != nil {
		return nil, err
	}
	return s.Get(actor, discussionID)
}

func (s *DiscussionService) transition(actor Actor, discussionID int, action Action, from, to string) (*models.Discussion, error) {
	d, err := s.load(discussionID)
	if err != nil {
		return nil, err
	}
	participant, err := s.isParticipant(discussionID, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, action, Membership{DiscussionParticipant: participant}); err != nil {
		return nil, err
	}
	if d.Status != from {
		return nil, NewInvalidStateError("discussion is not in the required state", d.Status, from)
	}

	if err := conditionalUpdate(s.db, &models.Discussion{}, "discussion_id", d.DiscussionID, d.Version, map[string]interface{}{
		"status": to,
	}); err != nil {
		return nil, err
	}
	return s.Get(actor, discussionID)
}

// Get loads a discussion with participants and messages, visible to
// participants and editors.
func (s *DiscussionService) Get(actor Actor, discussionID int) (*models.Discussion, error) {
	var d models.Discussion
	if err := s.db.Preload("Participants.User").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, message_id ASC")
		}).
		Preload("Messages.Author").
		Where("discussion_id = ?", discussionID).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("discussion", discussionID)
		}
		return nil, fmt.Errorf("load discussion: %w", err)
	}

	if actor.Role != models.RoleEditor {
		participant, err := s.isParticipant(discussionID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !participant {
			return nil, NewNotFoundError("discussion", discussionID)
		}
	}
	return &d, nil
}

// ListForContext returns an assignment's discussions, newest first.
func (s *DiscussionService) ListForContext(actor Actor, contextType string, contextID int) ([]models.Discussion, error) {
	if _, _, err := s.resolveContext(contextType, contextID); err != nil {
		return nil, err
	}
	query := s.db.Where("context_type = ? AND context_id = ?", contextType, contextID)
	if actor.Role != models.RoleEditor {
		query = query.Where(
			"discussion_id IN (?)",
			s.db.Model(&models.DiscussionParticipant{}).Select("discussion_id").Where("user_id = ?", actor.ID),
		)
	}
	var rows []models.Discussion
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	return rows, nil
}
