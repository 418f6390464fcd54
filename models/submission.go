package models

import "time"

// Submission lifecycle states. The state itself is never stored: it is
// derived from the submission's event timestamps and child entities (see
// services.DeriveStatus), so it cannot desynchronize from them.
const (
	StatusDraft            = "DRAFT"
	StatusSubmitted        = "SUBMITTED"
	StatusUnderReview      = "UNDER_REVIEW"
	StatusRevisionRequired = "REVISION_REQUIRED"
	StatusRevised          = "REVISED"
	StatusAccepted         = "ACCEPTED"
	StatusRejected         = "REJECTED"
	StatusCopyediting      = "COPYEDITING"
	StatusProduction       = "PRODUCTION"
	StatusPublished        = "PUBLISHED"
	StatusWithdrawn        = "WITHDRAWN"
)

// Submission is the aggregate root. Every other workflow entity references
// it directly or transitively.
type Submission struct {
	SubmissionID int        `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	Title        string     `gorm:"column:title" json:"title"`
	Abstract     string     `gorm:"column:abstract" json:"abstract"`
	AuthorID     int        `gorm:"column:author_id" json:"author_id"` // corresponding author
	JournalID    int        `gorm:"column:journal_id" json:"journal_id"`
	SubmittedAt  *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	RevisedAt    *time.Time `gorm:"column:revised_at" json:"revised_at,omitempty"`
	RevisedLate  bool       `gorm:"column:revised_late" json:"revised_late"`
	WithdrawnAt  *time.Time `gorm:"column:withdrawn_at" json:"withdrawn_at,omitempty"`
	Version      int        `gorm:"column:version" json:"version"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
	DeletedAt    *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Derived on read, never written to storage.
	Status string `gorm:"-" json:"status"`

	// Relations
	Author    *User              `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CoAuthors []SubmissionAuthor `gorm:"foreignKey:SubmissionID" json:"co_authors,omitempty"`
	Documents []Document         `gorm:"foreignKey:SubmissionID" json:"documents,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// SubmissionAuthor links co-authors to a submission. The corresponding
// author lives on the submission itself.
type SubmissionAuthor struct {
	SubmissionAuthorID int       `gorm:"primaryKey;column:submission_author_id" json:"submission_author_id"`
	SubmissionID       int       `gorm:"column:submission_id" json:"submission_id"`
	UserID             int       `gorm:"column:user_id" json:"user_id"`
	AuthorOrder        int       `gorm:"column:author_order" json:"author_order"`
	CreatedAt          time.Time `gorm:"column:created_at" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (SubmissionAuthor) TableName() string {
	return "submission_authors"
}

// DocumentType defines the document slots a submission must fill before it
// can be sent for review (manuscript, cover letter, ...).
type DocumentType struct {
	DocumentTypeID int        `gorm:"primaryKey;column:document_type_id" json:"document_type_id"`
	Name           string     `gorm:"column:name" json:"name"`
	Code           string     `gorm:"column:code" json:"code"`
	Required       bool       `gorm:"column:required" json:"required"`
	DisplayOrder   int        `gorm:"column:display_order" json:"display_order"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (DocumentType) TableName() string {
	return "document_types"
}

// Document is submission-level file metadata. Bytes live in the blob store;
// the engine only tracks the object key.
type Document struct {
	DocumentID     int        `gorm:"primaryKey;column:document_id" json:"document_id"`
	SubmissionID   int        `gorm:"column:submission_id" json:"submission_id"`
	DocumentTypeID int        `gorm:"column:document_type_id" json:"document_type_id"`
	ObjectKey      string     `gorm:"column:object_key" json:"-"`
	OriginalName   string     `gorm:"column:original_name" json:"original_name"`
	FileSize       int64      `gorm:"column:file_size" json:"file_size"`
	MimeType       string     `gorm:"column:mime_type" json:"mime_type"`
	UploadedBy     int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt     time.Time  `gorm:"column:uploaded_at" json:"uploaded_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	DocumentType *DocumentType `gorm:"foreignKey:DocumentTypeID" json:"document_type,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}

// StatusHistory tracks lifecycle-affecting commands for audit. Old/new hold
// the derived status at the time of the command.
type StatusHistory struct {
	HistoryID    int       `gorm:"primaryKey;column:history_id" json:"history_id"`
	SubmissionID int       `gorm:"column:submission_id" json:"submission_id"`
	OldStatus    *string   `gorm:"column:old_status" json:"old_status"`
	NewStatus    string    `gorm:"column:new_status" json:"new_status"`
	ChangedBy    int       `gorm:"column:changed_by" json:"changed_by"`
	Reason       *string   `gorm:"column:reason" json:"reason"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (StatusHistory) TableName() string {
	return "submission_status_history"
}
