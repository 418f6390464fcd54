package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"journal-editorial-api/models"

	"gorm.io/gorm"
)

func validGalleyFormat(format string) bool {
	switch format {
	case models.GalleyPDF, models.GalleyHTML, models.GalleyXML,
		models.GalleyEPUB, models.GalleyMOBI, models.GalleyOther:
		return true
	}
	return false
}

func validProductionRole(role string) bool {
	switch role {
	case models.ProductionAssistant, models.LayoutEditor, models.Proofreader:
		return true
	}
	return false
}

type ProductionService struct {
	db        *gorm.DB
	lifecycle *LifecycleService
	notifier  *NotificationService
}

func NewProductionService(db *gorm.DB) *ProductionService {
	return &ProductionService{
		db:        db,
		lifecycle: NewLifecycleService(db),
		notifier:  NewNotificationService(db),
	}
}

type AssignProductionInput struct {
	AssignedTo   int
	Role         string
	DueDate      *time.Time
	Instructions string
}

// Assign creates a production assignment. Unlike copyediting, several can
// run in parallel (layout editor and proofreader work side by side).
func (s *ProductionService) Assign(actor Actor, submissionID int, in AssignProductionInput) (*models.ProductionAssignment, error) {
	if err := RequireAllowed(actor, ActionProductionAssign, Membership{}); err != nil {
		return nil, err
	}
	if !validProductionRole(in.Role) {
		return nil, NewValidationError("role must be one of PRODUCTION_ASSISTANT, LAYOUT_EDITOR, PROOFREADER")
	}

	var assignee models.User
	if err := s.db.Where("user_id = ? AND deleted_at IS NULL", in.AssignedTo).First(&assignee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user", in.AssignedTo)
		}
		return nil, fmt.Errorf("load assignee: %w", err)
	}

	snap, err := s.lifecycle.Snapshot(submissionID)
	if err != nil {
		return nil, err
	}
	status := DeriveStatus(*snap)
	if status != models.StatusProduction {
		return nil, NewInvalidStateError("submission has not reached production", status, models.StatusProduction)
	}

	assignment := models.ProductionAssignment{
		SubmissionID: submissionID,
		AssignedTo:   in.AssignedTo,
		Role:         in.Role,
		Status:       models.AssignmentPending,
		DueDate:      in.DueDate,
		Version:      1,
		CreatedAt:    time.Now(),
	}
	if instructions := strings.TrimSpace(in.Instructions); instructions != "" {
		assignment.Instructions = &instructions
	}
	if err := s.db.Create(&assignment).Error; err != nil {
		return nil, fmt.Errorf("create production assignment: %w", err)
	}

	s.notifier.Notify([]int{in.AssignedTo}, "Production assignment",
		fmt.Sprintf("You have been assigned (%s) to \"%s\"", in.Role, snap.Submission.Title),
		"info", &submissionID)

	return &assignment, nil
}

func (s *ProductionService) loadAssignment(assignmentID int) (*models.ProductionAssignment, error) {
	var a models.ProductionAssignment
	if err := s.db.Where("assignment_id = ?", assignmentID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("production assignment", assignmentID)
		}
		return nil, fmt.Errorf("load production assignment: %w", err)
	}
	return &a, nil
}

func (s *ProductionService) loadGalley(galleyID int) (*models.ProductionFile, *models.ProductionAssignment, error) {
	var g models.ProductionFile
	if err := s.db.Where("galley_id = ?", galleyID).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewNotFoundError("galley", galleyID)
		}
		return nil, nil, fmt.Errorf("load galley: %w", err)
	}
	a, err := s.loadAssignment(g.AssignmentID)
	if err != nil {
		return nil, nil, err
	}
	return &g, a, nil
}

type UploadGalleyInput struct {
	GalleyFormat string
	Label        string
	ObjectKey    string
	OriginalName string
	FileSize     int64
}

// UploadGalley registers a galley (unapproved). The first upload moves a
// pending assignment to IN_PROGRESS.
func (s *ProductionService) UploadGalley(actor Actor, assignmentID int, in UploadGalleyInput) (*models.ProductionFile, error) {
	a, err := s.loadAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionGalleyUpload, Membership{ProductionAssignee: a.AssignedTo == actor.ID}); err != nil {
		return nil, err
	}
	if a.Status == models.AssignmentCompleted {
		return nil, NewInvalidStateError("assignment is already completed", a.Status, "PENDING or IN_PROGRESS")
	}
	if !validGalleyFormat(in.GalleyFormat) {
		return nil, NewValidationError("galley format must be one of PDF, HTML, XML, EPUB, MOBI, OTHER")
	}

	galley := models.ProductionFile{
		AssignmentID: assignmentID,
		GalleyFormat: in.GalleyFormat,
		Label:        strings.TrimSpace(in.Label),
		FileVersion:  1,
		ObjectKey:    in.ObjectKey,
		OriginalName: in.OriginalName,
		FileSize:     in.FileSize,
		UploadedBy:   actor.ID,
		Version:      1,
		CreatedAt:    time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&galley).Error; err != nil {
			return fmt.Errorf("create galley: %w", err)
		}
		if a.Status == models.AssignmentPending {
			if err := conditionalUpdate(tx, &models.ProductionAssignment{}, "assignment_id", a.AssignmentID, a.Version, map[string]interface{}{
				"status": models.AssignmentInProgress,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &galley, nil
}

// ApproveGalley marks a galley approved. Approving twice is rejected so
// the UI can tell the second editor what happened.
func (s *ProductionService) ApproveGalley(actor Actor, galleyID int) (*models.ProductionFile, error) {
	g, a, err := s.loadGalley(galleyID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionGalleyApprove, Membership{}); err != nil {
		return nil, err
	}
	if g.IsApproved {
		return nil, NewInvalidStateError("galley is already approved", "approved", "an unapproved galley")
	}

	now := time.Now()
	if err := conditionalUpdate(s.db, &models.ProductionFile{}, "galley_id", g.GalleyID, g.Version, map[string]interface{}{
		"is_approved": true,
		"approved_at": &now,
	}); err != nil {
		return nil, err
	}

	s.notifier.Notify([]int{a.AssignedTo}, "Galley approved",
		fmt.Sprintf("Galley %q (%s) was approved", g.Label, g.GalleyFormat),
		"success", &a.SubmissionID)

	g, _, err = s.loadGalley(galleyID)
	return g, err
}

// PublishGalley makes an approved galley publicly visible. Publishing an
// unapproved galley is a precondition failure, never a silent approve.
func (s *ProductionService) PublishGalley(actor Actor, galleyID int) (*models.ProductionFile, error) {
	g, _, err := s.loadGalley(galleyID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionGalleyPublish, Membership{}); err != nil {
		return nil, err
	}
	if !g.IsApproved {
		return nil, NewPreconditionError("galley must be approved before it can be published")
	}
	if g.IsPublished {
		return nil, NewInvalidStateError("galley is already published", "published", "an approved unpublished galley")
	}

	now := time.Now()
	if err := conditionalUpdate(s.db, &models.ProductionFile{}, "galley_id", g.GalleyID, g.Version, map[string]interface{}{
		"is_published": true,
		"published_at": &now,
	}); err != nil {
		return nil, err
	}
	g, _, err = s.loadGalley(galleyID)
	return g, err
}

// CompleteAssignment closes a production assignment once at least one of
// its galleys is approved. Completion does not publish the article; the
// publication schedule governs that independently.
func (s *ProductionService) CompleteAssignment(actor Actor, assignmentID int) (*models.ProductionAssignment, error) {
	if err := RequireAllowed(actor, ActionProductionComplete, Membership{}); err != nil {
		return nil, err
	}
	a, err := s.loadAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if a.Status == models.AssignmentCompleted {
		return nil, NewInvalidStateError("assignment is already completed", a.Status, "PENDING or IN_PROGRESS")
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var approved int64
		if err := tx.Model(&models.ProductionFile{}).
			Where("assignment_id = ? AND is_approved = ?", assignmentID, true).
			Count(&approved).Error; err != nil {
			return fmt.Errorf("count approved galleys: %w", err)
		}
		if approved == 0 {
			return NewPreconditionError("at least one galley must be approved before completing production")
		}
		return conditionalUpdate(tx, &models.ProductionAssignment{}, "assignment_id", a.AssignmentID, a.Version, map[string]interface{}{
			"status":       models.AssignmentCompleted,
			"completed_at": &now,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadAssignment(assignmentID)
}

type ScheduleInput struct {
	ScheduledDate time.Time
	Volume        int
	Issue         int
	Year          int
	DOI           string
	Pages         string
}

func (in ScheduleInput) validate() error {
	if in.ScheduledDate.IsZero() {
		return NewValidationError("scheduled date is required")
	}
	if in.Volume <= 0 || in.Issue <= 0 {
		return NewValidationError("volume and issue must be positive")
	}
	if in.Year < 1900 {
		return NewValidationError("year is out of range")
	}
	return nil
}

// Schedule places the article in an issue. An existing SCHEDULED record is
// updated in place; after a cancellation a fresh record is created so the
// cancelled one stays in the history untouched.
func (s *ProductionService) Schedule(actor Actor, submissionID int, in ScheduleInput) (*models.PublicationSchedule, error) {
	if err := RequireAllowed(actor, ActionScheduleCreate, Membership{}); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	snap, err := s.lifecycle.Snapshot(submissionID)
	if err != nil {
		return nil, err
	}
	status := DeriveStatus(*snap)
	if status != models.StatusProduction {
		return nil, NewInvalidStateError("only submissions in production can be scheduled", status, models.StatusProduction)
	}

	if prev := snap.LatestSchedule; prev != nil && prev.Status == models.ScheduleScheduled {
		updates := map[string]interface{}{
			"scheduled_date": in.ScheduledDate,
			"volume":         in.Volume,
			"issue":          in.Issue,
			"year":           in.Year,
		}
		if doi := strings.TrimSpace(in.DOI); doi != "" {
			updates["doi"] = doi
		}
		if pages := strings.TrimSpace(in.Pages); pages != "" {
			updates["pages"] = pages
		}
		if err := conditionalUpdate(s.db, &models.PublicationSchedule{}, "schedule_id", prev.ScheduleID, prev.Version, updates); err != nil {
			return nil, err
		}
		return s.latestSchedule(submissionID)
	}

	schedule := models.PublicationSchedule{
		SubmissionID:  submissionID,
		Status:        models.ScheduleScheduled,
		ScheduledDate: in.ScheduledDate,
		Volume:        in.Volume,
		Issue:         in.Issue,
		Year:          in.Year,
		Version:       1,
		CreatedAt:     time.Now(),
	}
	if doi := strings.TrimSpace(in.DOI); doi != "" {
		schedule.DOI = &doi
	}
	if pages := strings.TrimSpace(in.Pages); pages != "" {
		schedule.Pages = &pages
	}
	if err := s.db.Create(&schedule).Error; err != nil {
		return nil, fmt.Errorf("create publication schedule: %w", err)
	}
	return &schedule, nil
}

func (s *ProductionService) latestSchedule(submissionID int) (*models.PublicationSchedule, error) {
	var sched models.PublicationSchedule
	if err := s.db.Where("submission_id = ?", submissionID).
		Order("created_at DESC, schedule_id DESC").
		First(&sched).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("publication schedule", submissionID)
		}
		return nil, fmt.Errorf("load publication schedule: %w", err)
	}
	return &sched, nil
}

// PublishNow flips SCHEDULED -> PUBLISHED, which in turn moves the derived
// submission stage to PUBLISHED.
func (s *ProductionService) PublishNow(actor Actor, submissionID int) (*models.PublicationSchedule, error) {
	if err := RequireAllowed(actor, ActionSchedulePublish, Membership{}); err != nil {
		return nil, err
	}

	sched, err := s.latestSchedule(submissionID)
	if err != nil {
		return nil, err
	}
	if sched.Status != models.ScheduleScheduled {
		return nil, NewInvalidStateError("publication is not scheduled", sched.Status, models.ScheduleScheduled)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := conditionalUpdate(tx, &models.PublicationSchedule{}, "schedule_id", sched.ScheduleID, sched.Version, map[string]interface{}{
			"status":         models.SchedulePublished,
			"published_date": &now,
		}); err != nil {
			return err
		}
		return recordHistory(tx, submissionID, models.StatusProduction, models.StatusPublished, actor.ID, "article published")
	})
	if err != nil {
		return nil, err
	}

	var sub models.Submission
	if err := s.db.Select("submission_id, author_id, title").
		Where("submission_id = ?", submissionID).First(&sub).Error; err == nil {
		s.notifier.Notify([]int{sub.AuthorID}, "Article published",
			fmt.Sprintf("\"%s\" has been published", sub.Title),
			"success", &submissionID)
	}

	return s.latestSchedule(submissionID)
}

// Cancel flips SCHEDULED -> CANCELLED. Terminal: re-scheduling later
// creates a new record.
func (s *ProductionService) Cancel(actor Actor, submissionID int) (*models.PublicationSchedule, error) {
	if err := RequireAllowed(actor, ActionScheduleCancel, Membership{}); err != nil {
		return nil, err
	}

	sched, err := s.latestSchedule(submissionID)
	if err != nil {
		return nil, err
	}
	if sched.Status != models.ScheduleScheduled {
		return nil, NewInvalidStateError("only a scheduled publication can be cancelled", sched.Status, models.ScheduleScheduled)
	}

	if err := conditionalUpdate(s.db, &models.PublicationSchedule{}, "schedule_id", sched.ScheduleID, sched.Version, map[string]interface{}{
		"status": models.ScheduleCancelled,
	}); err != nil {
		return nil, err
	}
	return s.latestSchedule(submissionID)
}

// Get loads a production assignment with galleys, visible to editors and
// the assignee.
func (s *ProductionService) Get(actor Actor, assignmentID int) (*models.ProductionAssignment, error) {
	var a models.ProductionAssignment
	if err := s.db.Preload("Assignee").Preload("Galleys").
		Where("assignment_id = ?", assignmentID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("production assignment", assignmentID)
		}
		return nil, fmt.Errorf("load production assignment: %w", err)
	}
	if actor.Role != models.RoleEditor && a.AssignedTo != actor.ID {
		return nil, NewNotFoundError("production assignment", assignmentID)
	}
	return &a, nil
}
