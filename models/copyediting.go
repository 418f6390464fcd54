package models

import "time"

// Assignment states shared by copyediting and production.
const (
	AssignmentPending    = "PENDING"
	AssignmentInProgress = "IN_PROGRESS"
	AssignmentCompleted  = "COMPLETED"
)

// Per-file copyediting states. Transitions move strictly forward:
// DRAFT -> COPYEDITED -> AUTHOR_FINAL -> FINAL.
const (
	FileDraft       = "DRAFT"
	FileCopyedited  = "COPYEDITED"
	FileAuthorFinal = "AUTHOR_FINAL"
	FileFinal       = "FINAL"
)

// CopyeditingAssignment is the copyeditor's work order for a submission. At
// most one active assignment exists per submission; reassignment supersedes
// the previous one instead of running in parallel.
type CopyeditingAssignment struct {
	AssignmentID    int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	SubmissionID    int        `gorm:"column:submission_id" json:"submission_id"`
	CopyeditorID    int        `gorm:"column:copyeditor_id" json:"copyeditor_id"`
	Status          string     `gorm:"column:status" json:"status"`
	DueDate         *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	Instructions    *string    `gorm:"column:instructions" json:"instructions,omitempty"`
	CompletionNotes *string    `gorm:"column:completion_notes" json:"completion_notes,omitempty"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	SupersededAt    *time.Time `gorm:"column:superseded_at" json:"superseded_at,omitempty"`
	Version         int        `gorm:"column:version" json:"version"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Copyeditor *User             `gorm:"foreignKey:CopyeditorID" json:"copyeditor,omitempty"`
	Files      []CopyeditingFile `gorm:"foreignKey:AssignmentID" json:"files,omitempty"`
}

func (CopyeditingAssignment) TableName() string {
	return "copyediting_assignments"
}

// CopyeditingFile is one version of a logical file in the copyediting
// pipeline. LineageID groups successive versions of the same logical file;
// Version increases strictly within a lineage.
type CopyeditingFile struct {
	FileID       int        `gorm:"primaryKey;column:file_id" json:"file_id"`
	AssignmentID int        `gorm:"column:assignment_id" json:"assignment_id"`
	LineageID    string     `gorm:"column:lineage_id" json:"lineage_id"`
	FileType     string     `gorm:"column:file_type" json:"file_type"`
	FileVersion  int        `gorm:"column:file_version" json:"file_version"`
	ObjectKey    string     `gorm:"column:object_key" json:"-"`
	OriginalName string     `gorm:"column:original_name" json:"original_name"`
	FileSize     int64      `gorm:"column:file_size" json:"file_size"`
	UploadedBy   int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	ConfirmNotes *string    `gorm:"column:confirm_notes" json:"confirm_notes,omitempty"`
	Version      int        `gorm:"column:version" json:"version"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (CopyeditingFile) TableName() string {
	return "copyediting_files"
}
