package models

import "time"

// Review assignment states.
const (
	ReviewInvited   = "INVITED"
	ReviewAccepted  = "ACCEPTED"
	ReviewDeclined  = "DECLINED"
	ReviewCompleted = "COMPLETED"
)

// Reviewer recommendations recorded on completion.
const (
	RecommendAccept        = "ACCEPT"
	RecommendReject        = "REJECT"
	RecommendMinorRevision = "MINOR_REVISION"
	RecommendMajorRevision = "MAJOR_REVISION"
)

// ReviewAssignment tracks one reviewer's invitation through completion.
// Exactly one of AcceptedAt/DeclinedAt/CompletedAt is set, matching the
// current status; CompletedAt implies AcceptedAt was set earlier and cleared
// is never the case — completion keeps AcceptedAt and adds CompletedAt.
type ReviewAssignment struct {
	ReviewID     int        `gorm:"primaryKey;column:review_id" json:"review_id"`
	SubmissionID int        `gorm:"column:submission_id" json:"submission_id"`
	ReviewerID   int        `gorm:"column:reviewer_id" json:"reviewer_id"`
	ReviewRound  int        `gorm:"column:review_round" json:"review_round"`
	Status       string     `gorm:"column:status" json:"status"`
	InvitedAt    time.Time  `gorm:"column:invited_at" json:"invited_at"`
	DueDate      time.Time  `gorm:"column:due_date" json:"due_date"`
	AcceptedAt   *time.Time `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	DeclinedAt   *time.Time `gorm:"column:declined_at" json:"declined_at,omitempty"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	DeclineNote  *string    `gorm:"column:decline_note" json:"decline_note,omitempty"`

	// Review payload, set on completion and immutable thereafter.
	Recommendation    *string `gorm:"column:recommendation" json:"recommendation,omitempty"`
	ScoreOverall      *int    `gorm:"column:score_overall" json:"score_overall,omitempty"`
	ScoreOriginality  *int    `gorm:"column:score_originality" json:"score_originality,omitempty"`
	CommentsForAuthor *string `gorm:"column:comments_for_author" json:"comments_for_author,omitempty"`
	CommentsForEditor *string `gorm:"column:comments_for_editor" json:"comments_for_editor,omitempty"`

	Version   int        `gorm:"column:version" json:"version"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`

	// Derived on read against the current clock, never persisted.
	IsOverdue     bool `gorm:"-" json:"is_overdue"`
	DaysRemaining int  `gorm:"-" json:"days_remaining"`
}

func (ReviewAssignment) TableName() string {
	return "review_assignments"
}
