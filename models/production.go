package models

import "time"

// Production assignment roles.
const (
	ProductionAssistant = "PRODUCTION_ASSISTANT"
	LayoutEditor        = "LAYOUT_EDITOR"
	Proofreader         = "PROOFREADER"
)

// Galley formats.
const (
	GalleyPDF   = "PDF"
	GalleyHTML  = "HTML"
	GalleyXML   = "XML"
	GalleyEPUB  = "EPUB"
	GalleyMOBI  = "MOBI"
	GalleyOther = "OTHER"
)

// Publication schedule states.
const (
	ScheduleScheduled = "SCHEDULED"
	SchedulePublished = "PUBLISHED"
	ScheduleCancelled = "CANCELLED"
)

// ProductionAssignment is a production staffer's work order. Status uses the
// shared PENDING/IN_PROGRESS/COMPLETED set from copyediting.go.
type ProductionAssignment struct {
	AssignmentID int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	SubmissionID int        `gorm:"column:submission_id" json:"submission_id"`
	AssignedTo   int        `gorm:"column:assigned_to" json:"assigned_to"`
	Role         string     `gorm:"column:role" json:"role"`
	Status       string     `gorm:"column:status" json:"status"`
	DueDate      *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	Instructions *string    `gorm:"column:instructions" json:"instructions,omitempty"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Version      int        `gorm:"column:version" json:"version"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Assignee *User            `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Galleys  []ProductionFile `gorm:"foreignKey:AssignmentID" json:"galleys,omitempty"`
}

func (ProductionAssignment) TableName() string {
	return "production_assignments"
}

// ProductionFile is a galley. IsPublished implies IsApproved; the service
// layer enforces the ordering.
type ProductionFile struct {
	GalleyID     int        `gorm:"primaryKey;column:galley_id" json:"galley_id"`
	AssignmentID int        `gorm:"column:assignment_id" json:"assignment_id"`
	GalleyFormat string     `gorm:"column:galley_format" json:"galley_format"`
	Label        string     `gorm:"column:label" json:"label"`
	FileVersion  int        `gorm:"column:file_version" json:"file_version"`
	ObjectKey    string     `gorm:"column:object_key" json:"-"`
	OriginalName string     `gorm:"column:original_name" json:"original_name"`
	FileSize     int64      `gorm:"column:file_size" json:"file_size"`
	UploadedBy   int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	IsApproved   bool       `gorm:"column:is_approved" json:"is_approved"`
	IsPublished  bool       `gorm:"column:is_published" json:"is_published"`
	ApprovedAt   *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	PublishedAt  *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	Version      int        `gorm:"column:version" json:"version"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (ProductionFile) TableName() string {
	return "production_files"
}

// PublicationSchedule places an accepted article into a volume/issue.
// Cancelled schedules stay in the table untouched; re-scheduling inserts a
// new row.
type PublicationSchedule struct {
	ScheduleID    int        `gorm:"primaryKey;column:schedule_id" json:"schedule_id"`
	SubmissionID  int        `gorm:"column:submission_id" json:"submission_id"`
	Status        string     `gorm:"column:status" json:"status"`
	ScheduledDate time.Time  `gorm:"column:scheduled_date" json:"scheduled_date"`
	Volume        int        `gorm:"column:volume" json:"volume"`
	Issue         int        `gorm:"column:issue" json:"issue"`
	Year          int        `gorm:"column:year" json:"year"`
	DOI           *string    `gorm:"column:doi" json:"doi,omitempty"`
	Pages         *string    `gorm:"column:pages" json:"pages,omitempty"`
	PublishedDate *time.Time `gorm:"column:published_date" json:"published_date,omitempty"`
	Version       int        `gorm:"column:version" json:"version"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (PublicationSchedule) TableName() string {
	return "publication_schedules"
}
