package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"journal-editorial-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CanCompleteCopyediting is the central gate of the subsystem: completion
// requires a non-empty file set in which every file has reached
// AUTHOR_FINAL or FINAL. A file still in DRAFT or COPYEDITED blocks it.
func CanCompleteCopyediting(files []models.CopyeditingFile) error {
	if len(files) == 0 {
		return NewPreconditionError("assignment has no files to finalize")
	}
	for _, f := range files {
		switch f.FileType {
		case models.FileAuthorFinal, models.FileFinal:
		case models.FileCopyedited:
			return NewPreconditionError("file %q is awaiting author confirmation", f.OriginalName)
		default:
			return NewPreconditionError("file %q has not been copyedited yet", f.OriginalName)
		}
	}
	return nil
}

type CopyeditingService struct {
	db        *gorm.DB
	lifecycle *LifecycleService
	notifier  *NotificationService
}

func NewCopyeditingService(db *gorm.DB) *CopyeditingService {
	return &CopyeditingService{
		db:        db,
		lifecycle: NewLifecycleService(db),
		notifier:  NewNotificationService(db),
	}
}

type AssignCopyeditorInput struct {
	CopyeditorID int
	DueDate      *time.Time
	Instructions string
}

// Assign creates the copyediting assignment, moving the submission into
// COPYEDITING. An existing active assignment is superseded, never run in
// parallel; its files stay attached for audit.
func (s *CopyeditingService) Assign(actor Actor, submissionID int, in AssignCopyeditorInput) (*models.CopyeditingAssignment, error) {
	if err := RequireAllowed(actor, ActionCopyeditAssign, Membership{}); err != nil {
		return nil, err
	}

	var copyeditor models.User
	if err := s.db.Where("user_id = ? AND role = ? AND deleted_at IS NULL", in.CopyeditorID, models.RoleCopyeditor).
		First(&copyeditor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("copyeditor", in.CopyeditorID)
		}
		return nil, fmt.Errorf("load copyeditor: %w", err)
	}

	snap, err := s.lifecycle.Snapshot(submissionID)
	if err != nil {
		return nil, err
	}
	status := DeriveStatus(*snap)
	switch status {
	case models.StatusAccepted, models.StatusCopyediting:
	default:
		return nil, NewInvalidStateError("submission must be accepted before copyediting", status, "ACCEPTED or COPYEDITING")
	}
	if prev := snap.ActiveCopyediting; prev != nil && prev.Status == models.AssignmentCompleted {
		return nil, NewInvalidStateError("copyediting is already complete for this submission", models.AssignmentCompleted, "an uncompleted assignment")
	}

	assignment := models.CopyeditingAssignment{
		SubmissionID: submissionID,
		CopyeditorID: in.CopyeditorID,
		Status:       models.AssignmentPending,
		DueDate:      in.DueDate,
		Version:      1,
		CreatedAt:    time.Now(),
	}
	if instructions := strings.TrimSpace(in.Instructions); instructions != "" {
		assignment.Instructions = &instructions
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if prev := snap.ActiveCopyediting; prev != nil {
			if err := conditionalUpdate(tx, &models.CopyeditingAssignment{}, "assignment_id", prev.AssignmentID, prev.Version, map[string]interface{}{
				"superseded_at": time.Now(),
			}); err != nil {
				return err
			}
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("create copyediting assignment: %w", err)
		}
		return recordHistory(tx, submissionID, status, models.StatusCopyediting, actor.ID, "copyeditor assigned")
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify([]int{in.CopyeditorID}, "Copyediting assignment",
		fmt.Sprintf("You have been assigned to copyedit \"%s\"", snap.Submission.Title),
		"info", &submissionID)

	return &assignment, nil
}

func (s *CopyeditingService) loadAssignment(assignmentID int) (*models.CopyeditingAssignment, error) {
	var a models.CopyeditingAssignment
	if err := s.db.Where("assignment_id = ?", assignmentID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("copyediting assignment", assignmentID)
		}
		return nil, fmt.Errorf("load copyediting assignment: %w", err)
	}
	return &a, nil
}

func (s *CopyeditingService) loadFile(fileID int) (*models.CopyeditingFile, *models.CopyeditingAssignment, error) {
	var f models.CopyeditingFile
	if err := s.db.Where("file_id = ?", fileID).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewNotFoundError("copyediting file", fileID)
		}
		return nil, nil, fmt.Errorf("load copyediting file: %w", err)
	}
	a, err := s.loadAssignment(f.AssignmentID)
	if err != nil {
		return nil, nil, err
	}
	return &f, a, nil
}

type UploadCopyeditFileInput struct {
	ObjectKey    string
	OriginalName string
	FileSize     int64
}

// UploadFile registers a new logical file (DRAFT, version 1) on the
// assignment. Bytes are already in the blob store; only metadata lands
// here.
func (s *CopyeditingService) UploadFile(actor Actor, assignmentID int, in UploadCopyeditFileInput) (*models.CopyeditingFile, error) {
	a, err := s.loadAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionCopyeditUpload, Membership{AssignedCopyeditor: a.CopyeditorID == actor.ID && a.SupersededAt == nil}); err != nil {
		return nil, err
	}
	if a.Status == models.AssignmentCompleted {
		return nil, NewInvalidStateError("assignment is already completed", a.Status, "PENDING or IN_PROGRESS")
	}
	if strings.TrimSpace(in.OriginalName) == "" {
		return nil, NewValidationError("file name is required")
	}

	file := models.CopyeditingFile{
		AssignmentID: assignmentID,
		LineageID:    uuid.NewString(),
		FileType:     models.FileDraft,
		FileVersion:  1,
		ObjectKey:    in.ObjectKey,
		OriginalName: in.OriginalName,
		FileSize:     in.FileSize,
		UploadedBy:   actor.ID,
		Version:      1,
		CreatedAt:    time.Now(),
	}
	if err := s.db.Create(&file).Error; err != nil {
		return nil, fmt.Errorf("create copyediting file: %w", err)
	}
	return &file, nil
}

// ReplaceFile uploads a new revision of a DRAFT logical file. The lineage
// keeps its id; the file version increments strictly.
func (s *CopyeditingService) ReplaceFile(actor Actor, fileID int, in UploadCopyeditFileInput) (*models.CopyeditingFile, error) {
	f, a, err := s.loadFile(fileID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionCopyeditUpload, Membership{AssignedCopyeditor: a.CopyeditorID == actor.ID && a.SupersededAt == nil}); err != nil {
		return nil, err
	}
	if f.FileType != models.FileDraft {
		return nil, NewInvalidStateError("only draft files can be replaced", f.FileType, models.FileDraft)
	}

	updates := map[string]interface{}{
		"file_version":  f.FileVersion + 1,
		"object_key":    in.ObjectKey,
		"original_name": in.OriginalName,
		"file_size":     in.FileSize,
		"uploaded_by":   actor.ID,
	}
	if err := conditionalUpdate(s.db, &models.CopyeditingFile{}, "file_id", f.FileID, f.Version, updates); err != nil {
		return nil, err
	}
	f, _, err = s.loadFile(fileID)
	return f, err
}

// SubmitCopyedit moves a file DRAFT -> COPYEDITED. The first submission on
// a pending assignment also flips the assignment to IN_PROGRESS.
func (s *CopyeditingService) SubmitCopyedit(actor Actor, fileID int) (*models.CopyeditingFile, error) {
	f, a, err := s.loadFile(fileID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionCopyeditSubmit, Membership{AssignedCopyeditor: a.CopyeditorID == actor.ID && a.SupersededAt == nil}); err != nil {
		return nil, err
	}
	if a.Status != models.AssignmentPending && a.Status != models.AssignmentInProgress {
		return nil, NewInvalidStateError("assignment is not open for copyediting", a.Status, "PENDING or IN_PROGRESS")
	}
	if f.FileType != models.FileDraft {
		return nil, NewInvalidStateError("file has already been copyedited", f.FileType, models.FileDraft)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := conditionalUpdate(tx, &models.CopyeditingFile{}, "file_id", f.FileID, f.Version, map[string]interface{}{
			"file_type": models.FileCopyedited,
		}); err != nil {
			return err
		}
		if a.Status == models.AssignmentPending {
			if err := conditionalUpdate(tx, &models.CopyeditingAssignment{}, "assignment_id", a.AssignmentID, a.Version, map[string]interface{}{
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

	var sub models.Submission
	if err := s.db.Select("submission_id, author_id, title").
		Where("submission_id = ?", a.SubmissionID).First(&sub).Error; err == nil {
		s.notifier.Notify([]int{sub.AuthorID}, "Copyedited file ready",
			fmt.Sprintf("A copyedited file for \"%s\" is ready for your confirmation", sub.Title),
			"info", &a.SubmissionID)
	}

	f, _, err = s.loadFile(fileID)
	return f, err
}

// ConfirmFinal is the author's confirmation: COPYEDITED -> AUTHOR_FINAL.
// Confirming twice fails with InvalidStateError rather than silently
// succeeding, so the UI can surface the duplicate action. Files on a
// superseded assignment are frozen for audit and cannot be confirmed.
func (s *CopyeditingService) ConfirmFinal(actor Actor, fileID int, notes string) (*models.CopyeditingFile, error) {
	f, a, err := s.loadFile(fileID)
	if err != nil {
		return nil, err
	}
	if a.SupersededAt != nil {
		return nil, NewInvalidStateError("assignment was superseded by a reassignment", "superseded", "the active assignment")
	}
	m, err := ResolveMembership(s.db, actor, a.SubmissionID)
	if err != nil {
		return nil, err
	}
	if err := RequireAllowed(actor, ActionCopyeditConfirm, m); err != nil {
		return nil, err
	}
	if f.FileType != models.FileCopyedited {
		return nil, NewInvalidStateError("file is not awaiting author confirmation", f.FileType, models.FileCopyedited)
	}

	updates := map[string]interface{}{
		"file_type": models.FileAuthorFinal,
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		updates["confirm_notes"] = notes
	}
	if err := conditionalUpdate(s.db, &models.CopyeditingFile{}, "file_id", f.FileID, f.Version, updates); err != nil {
		return nil, err
	}

	s.notifier.Notify([]int{a.CopyeditorID}, "Author confirmation",
		fmt.Sprintf("The author confirmed file %q", f.OriginalName),
		"success", &a.SubmissionID)

	f, _, err = s.loadFile(fileID)
	return f, err
}

// CompleteAssignment closes copyediting once every file is confirmed. The
// gate check, the AUTHOR_FINAL -> FINAL promotion and the status flip are
// one transaction keyed on the assignment version, so two racing editors
// cannot both finalize.
func (s *CopyeditingService) CompleteAssignment(actor Actor, assignmentID int, notes string) (*models.CopyeditingAssignment, error) {
	if err := RequireAllowed(actor, ActionCopyeditComplete, Membership{}); err != nil {
		return nil, err
	}

	a, err := s.loadAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if a.SupersededAt != nil {
		return nil, NewInvalidStateError("assignment was superseded by a reassignment", "superseded", "the active assignment")
	}
	if a.Status == models.AssignmentCompleted {
		return nil, NewInvalidStateError("assignment is already completed", a.Status, "PENDING or IN_PROGRESS")
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var files []models.CopyeditingFile
		if err := tx.Where("assignment_id = ?", assignmentID).Find(&files).Error; err != nil {
			return fmt.Errorf("load assignment files: %w", err)
		}
		if err := CanCompleteCopyediting(files); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":       models.AssignmentCompleted,
			"completed_at": &now,
		}
		if notes = strings.TrimSpace(notes); notes != "" {
			updates["completion_notes"] = notes
		}
		if err := conditionalUpdate(tx, &models.CopyeditingAssignment{}, "assignment_id", a.AssignmentID, a.Version, updates); err != nil {
			return err
		}

		if err := tx.Model(&models.CopyeditingFile{}).
			Where("assignment_id = ? AND file_type = ?", assignmentID, models.FileAuthorFinal).
			Updates(map[string]interface{}{
				"file_type":  models.FileFinal,
				"updated_at": &now,
			}).Error; err != nil {
			return fmt.Errorf("promote files to final: %w", err)
		}

		return recordHistory(tx, a.SubmissionID, models.StatusCopyediting, models.StatusProduction, actor.ID, "copyediting completed")
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify([]int{a.CopyeditorID}, "Copyediting completed",
		fmt.Sprintf("Copyediting assignment %d was completed", a.AssignmentID),
		"success", &a.SubmissionID)

	return s.Get(actor, assignmentID)
}

// Get loads the assignment with its files, visible to editors, the
// copyeditor, and the submission's authors.
func (s *CopyeditingService) Get(actor Actor, assignmentID int) (*models.CopyeditingAssignment, error) {
	var a models.CopyeditingAssignment
	if err := s.db.Preload("Copyeditor").Preload("Files").
		Where("assignment_id = ?", assignmentID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("copyediting assignment", assignmentID)
		}
		return nil, fmt.Errorf("load copyediting assignment: %w", err)
	}

	if actor.Role != models.RoleEditor && a.CopyeditorID != actor.ID {
		m, err := ResolveMembership(s.db, actor, a.SubmissionID)
		if err != nil {
			return nil, err
		}
		if !m.CorrespondingAuthor && !m.CoAuthor {
			return nil, NewNotFoundError("copyediting assignment", assignmentID)
		}
	}
	return &a, nil
}
